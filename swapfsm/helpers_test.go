package swapfsm_test

import (
	"context"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/btcxmr/swapcore/swapid"
	"github.com/btcxmr/swapcore/swapnet"
	"github.com/btcxmr/swapcore/swapstate"
	"github.com/btcxmr/swapcore/swapstore"
	"github.com/btcxmr/swapcore/swapwire"
	"github.com/btcxmr/swapcore/txbuilder"
	"github.com/btcxmr/swapcore/walletadapter"
	"github.com/btcxmr/swapcore/xmrbtccrypto"
)

const (
	testFee     = btcutil.Amount(10_000)
	testBtcAmt  = btcutil.Amount(1_000_000)
	testXmrAmt  = uint64(1_500_000_000_000)
	testTCancel = uint32(144)
	testTPunish = uint32(288)
)

// fixture bundles the keys and Params a matched pair of Alice/Bob tasks
// need, everything derivable independently by both sides during a real
// handshake collapsed into one constructor for test setup.
type fixture struct {
	params      swapstate.Params
	aliceMyKey  *xmrbtccrypto.PrivateKeyK1
	bobMyKey    *xmrbtccrypto.PrivateKeyK1
	aliceSpend  *xmrbtccrypto.SpendScalar // s_a
	bobSpend    *xmrbtccrypto.SpendScalar // s_b
}

func dummyAddr(t *testing.T, fill byte) btcutil.Address {
	t.Helper()
	hash := make([]byte, 20)
	hash[19] = fill
	addr, err := btcutil.NewAddressWitnessPubKeyHash(hash, &chaincfg.RegressionNetParams)
	require.NoError(t, err)
	return addr
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	id, err := swapid.New()
	require.NoError(t, err)

	aliceMyKey, aPub, err := xmrbtccrypto.KeypairK1()
	require.NoError(t, err)
	bobMyKey, bPub, err := xmrbtccrypto.KeypairK1()
	require.NoError(t, err)

	aliceSpend, saEd, saBtc, _, err := xmrbtccrypto.KeypairEd()
	require.NoError(t, err)
	bobSpend, sbEd, sbBtc, _, err := xmrbtccrypto.KeypairEd()
	require.NoError(t, err)

	changeAddr := dummyAddr(t, 0x09)
	utxo := txbuilder.Utxo{
		OutPoint: wire.OutPoint{Index: 0},
		Value:    testBtcAmt + 3*testFee,
		PkScript: []byte{0x00, 0x14},
	}
	_, lockOut, err := txbuilder.BuildLock([]txbuilder.Utxo{utxo}, aPub, bPub, testBtcAmt, changeAddr, 2*testFee)
	require.NoError(t, err)

	params := swapstate.Params{
		SwapID:           id,
		A:                aPub,
		B:                bPub,
		SaBtc:            saBtc,
		SbBtc:            sbBtc,
		SaEd:             saEd,
		SbEd:             sbEd,
		AliceRedeemAddr:  dummyAddr(t, 0x01),
		AlicePunishAddr:  dummyAddr(t, 0x02),
		BobRefundAddr:    dummyAddr(t, 0x03),
		XmrLockAddress:   "4-dummy-xmr-lock-address",
		XmrViewKeyShared: [32]byte{0xaa},
		TCancel:          testTCancel,
		TPunish:          testTPunish,
		BtcAmount:        testBtcAmt,
		XmrAmount:        testXmrAmt,
		LockOut:          lockOut,
	}

	return fixture{
		params:     params,
		aliceMyKey: aliceMyKey,
		bobMyKey:   bobMyKey,
		aliceSpend: aliceSpend,
		bobSpend:   bobSpend,
	}
}

func openTestStore(t *testing.T) *swapstore.DB {
	t.Helper()
	db, err := swapstore.Open(t.TempDir(), &chaincfg.RegressionNetParams)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// mockBitcoinWallet is a minimal walletadapter.BitcoinWallet double:
// SignAndFinalize is a no-op pass-through (tests never exercise real
// PSBT signing, only that the resulting tx is broadcast), Broadcast
// records every transaction handed to it for assertions.
type mockBitcoinWallet struct {
	mu          sync.Mutex
	broadcasted []*wire.MsgTx
	blockHeight uint32
	feeRate     btcutil.Amount
}

func (w *mockBitcoinWallet) NewAddress(ctx context.Context) (btcutil.Address, error) {
	return nil, nil
}

func (w *mockBitcoinWallet) Balance(ctx context.Context) (btcutil.Amount, error) { return 0, nil }

func (w *mockBitcoinWallet) Sync(ctx context.Context) error { return nil }

func (w *mockBitcoinWallet) SignAndFinalize(ctx context.Context, pkt *psbt.Packet) (*wire.MsgTx, error) {
	return pkt.UnsignedTx, nil
}

func (w *mockBitcoinWallet) Broadcast(ctx context.Context, tx *wire.MsgTx) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.broadcasted = append(w.broadcasted, tx)
	return nil
}

func (w *mockBitcoinWallet) Subscribe(ctx context.Context, txid chainhash.Hash) (<-chan walletadapter.ChainEvent, error) {
	ch := make(chan walletadapter.ChainEvent)
	close(ch)
	return ch, nil
}

func (w *mockBitcoinWallet) StatusOf(ctx context.Context, txid chainhash.Hash) (walletadapter.TxStatus, error) {
	return walletadapter.TxStatus{}, nil
}

func (w *mockBitcoinWallet) BlockHeight(ctx context.Context) (uint32, error) {
	return w.blockHeight, nil
}

func (w *mockBitcoinWallet) TransactionFee(ctx context.Context, confTarget uint32) (btcutil.Amount, error) {
	return w.feeRate, nil
}

func (w *mockBitcoinWallet) lastBroadcast() *wire.MsgTx {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.broadcasted) == 0 {
		return nil
	}
	return w.broadcasted[len(w.broadcasted)-1]
}

// mockMoneroWallet is a minimal walletadapter.MoneroWallet double.
type mockMoneroWallet struct {
	mu          sync.Mutex
	mainAddr    string
	transferTx  string
	transferErr error
	verifyErr   error
	sweepTx     string
	sweepErr    error
	sweptTo     []string
}

func (w *mockMoneroWallet) MainAddress(ctx context.Context) (string, error) {
	return w.mainAddr, nil
}

func (w *mockMoneroWallet) Refresh(ctx context.Context) error { return nil }

func (w *mockMoneroWallet) GetBalance(ctx context.Context) (uint64, uint64, error) {
	return 0, 0, nil
}

func (w *mockMoneroWallet) Transfer(ctx context.Context, addr string, amount uint64) (string, walletadapter.MoneroTransferProof, error) {
	if w.transferErr != nil {
		return "", nil, w.transferErr
	}
	return w.transferTx, walletadapter.MoneroTransferProof("proof"), nil
}

func (w *mockMoneroWallet) VerifyTransfer(ctx context.Context, txID, addr string, amount uint64, proof walletadapter.MoneroTransferProof) error {
	return w.verifyErr
}

func (w *mockMoneroWallet) SweepTo(ctx context.Context, addr string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sweepErr != nil {
		return "", w.sweepErr
	}
	w.sweptTo = append(w.sweptTo, addr)
	return w.sweepTx, nil
}

// mockKeyImporter records the key material it was asked to import and
// hands back a fixed wallet double to sweep from.
type mockKeyImporter struct {
	wallet *mockMoneroWallet

	mu            sync.Mutex
	gotSpendKey   [32]byte
	gotViewKey    [32]byte
	gotRestoreHgt uint64
}

func (m *mockKeyImporter) CreateFromKeys(ctx context.Context, spendKey, viewKey [32]byte, restoreHeight uint64) (walletadapter.MoneroWallet, error) {
	m.mu.Lock()
	m.gotSpendKey = spendKey
	m.gotViewKey = viewKey
	m.gotRestoreHgt = restoreHeight
	m.mu.Unlock()
	return m.wallet, nil
}

// recordingNetwork is a swapnet.Network double that never actually
// delivers anything; it just records what was sent, enough for tests
// that only need to assert a message went out.
type recordingNetwork struct {
	mu   sync.Mutex
	sent []swapwire.Message

	discon chan swapnet.DisconnectEvent
}

func newRecordingNetwork() *recordingNetwork {
	return &recordingNetwork{discon: make(chan swapnet.DisconnectEvent)}
}

func (n *recordingNetwork) Send(ctx context.Context, peer swapnet.PeerID, msg swapwire.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNetwork) Recv(ctx context.Context) (swapnet.PeerID, swapwire.Message, error) {
	<-ctx.Done()
	return "", nil, ctx.Err()
}

func (n *recordingNetwork) Disconnected() <-chan swapnet.DisconnectEvent { return n.discon }

func (n *recordingNetwork) Close() error { return nil }

func (n *recordingNetwork) messages() []swapwire.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]swapwire.Message(nil), n.sent...)
}
