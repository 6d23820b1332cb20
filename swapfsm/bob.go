package swapfsm

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/btcxmr/swapcore/swapid"
	"github.com/btcxmr/swapcore/swapnet"
	"github.com/btcxmr/swapcore/swapstate"
	"github.com/btcxmr/swapcore/swapstore"
	"github.com/btcxmr/swapcore/swapwire"
	"github.com/btcxmr/swapcore/txbuilder"
	"github.com/btcxmr/swapcore/walletadapter"
	"github.com/btcxmr/swapcore/xmrbtccrypto"
)

// BobDeps mirrors AliceDeps for Bob's side of the swap.
type BobDeps struct {
	BTC         walletadapter.BitcoinWallet
	XMR         walletadapter.MoneroWallet
	XMRImporter walletadapter.MoneroKeyImporter
	Net         swapnet.Network
	Peer        swapnet.PeerID
	Store       *swapstore.DB
	Fee         btcutil.Amount
	Policy      Policy
}

// BobTask drives Bob's automaton for a single swap.
type BobTask struct {
	deps  BobDeps
	id    swapid.ID
	state swapstate.BobState
}

// NewBobTask wraps an already-handshaken initial state (normally
// BobStarted) for driving forward.
func NewBobTask(deps BobDeps, id swapid.ID, initial swapstate.BobState) *BobTask {
	return &BobTask{deps: deps, id: id, state: initial}
}

// State returns the task's current state value.
func (t *BobTask) State() swapstate.BobState { return t.state }

func (t *BobTask) transition(next swapstate.BobState) error {
	t.state = next
	if err := t.deps.Store.Put(swapstore.Record{SwapID: t.id, Role: swapstore.RoleBob, State: next}); err != nil {
		return &StoreError{Code: StoreIO, Err: err}
	}
	return nil
}

func unexpectedBobState(got swapstate.BobState) error {
	return &ProtocolError{Code: ProtocolOutOfOrder, Err: fmt.Errorf("unexpected state %T", got)}
}

// AttemptBroadcastLock completes and broadcasts TxLock from a
// PSBT funding pkt's single output to Params.LockOut's target script.
// Building pkt (selecting Bob's own UTXOs) happens outside swapfsm, in
// the handshake layer that already derived LockOut; this method only
// signs and publishes it once that handshake has completed.
func (t *BobTask) AttemptBroadcastLock(ctx context.Context, pkt *psbt.Packet) error {
	if _, ok := t.state.(swapstate.BobStarted); !ok {
		return unexpectedBobState(t.state)
	}
	tx, err := t.deps.BTC.SignAndFinalize(ctx, pkt)
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}
	if err := t.deps.BTC.Broadcast(ctx, tx); err != nil {
		return &ChainError{Code: ChainRejected, Fatal: false, Err: err}
	}
	return nil
}

// HandleBobTxLockConfirmed moves BobStarted -> BobBtcLocked.
func (t *BobTask) HandleBobTxLockConfirmed(ctx context.Context, ev BobTxLockConfirmed) error {
	cur, ok := t.state.(swapstate.BobStarted)
	if !ok {
		return unexpectedBobState(t.state)
	}
	return t.transition(swapstate.BobBtcLocked{
		Params:      cur.Params,
		SpendScalar: cur.SpendScalar,
		MyKey:       cur.MyKey,
		LockHeight:  ev.Height,
	})
}

// HandleXmrLockProofReceived verifies Alice's Monero transfer proof and
// moves BobBtcLocked -> BobXmrLockProofReceived.
func (t *BobTask) HandleXmrLockProofReceived(ctx context.Context, ev XmrLockProofReceived) error {
	cur, ok := t.state.(swapstate.BobBtcLocked)
	if !ok {
		return unexpectedBobState(t.state)
	}

	if err := t.deps.XMR.VerifyTransfer(
		ctx, ev.TxID, cur.Params.XmrLockAddress, cur.Params.XmrAmount, walletadapter.MoneroTransferProof(ev.Proof),
	); err != nil {
		return &ChainError{Code: ChainNotFound, Fatal: false, Err: err}
	}

	return t.transition(swapstate.BobXmrLockProofReceived{
		Params:      cur.Params,
		SpendScalar: cur.SpendScalar,
		MyKey:       cur.MyKey,
		LockHeight:  cur.LockHeight,
		XmrLockTxID: ev.TxID,
	})
}

// HandleBobXmrLockFinalized moves BobXmrLockProofReceived ->
// BobXmrLocked once Alice's Monero lock reaches its confirmation depth.
func (t *BobTask) HandleBobXmrLockFinalized(ctx context.Context, ev BobXmrLockFinalized) error {
	cur, ok := t.state.(swapstate.BobXmrLockProofReceived)
	if !ok {
		return unexpectedBobState(t.state)
	}
	return t.transition(swapstate.BobXmrLocked{
		Params:      cur.Params,
		SpendScalar: cur.SpendScalar,
		MyKey:       cur.MyKey,
		LockHeight:  cur.LockHeight,
		XmrLockTxID: cur.XmrLockTxID,
	})
}

// SendEncSigRedeem computes Bob's adaptor signature over TxRedeem,
// encrypted to S_a^btc, sends it to Alice, and moves BobXmrLocked ->
// BobEncSigSent. This is the step that lets Alice redeem once she
// chooses to.
func (t *BobTask) SendEncSigRedeem(ctx context.Context) error {
	cur, ok := t.state.(swapstate.BobXmrLocked)
	if !ok {
		return unexpectedBobState(t.state)
	}

	redeemTx, err := txbuilder.BuildRedeem(cur.Params.LockOut, cur.Params.AliceRedeemAddr, t.deps.Fee)
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}
	digest, err := redeemTx.Digest()
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}

	encSig, err := xmrbtccrypto.EncSign(cur.MyKey, cur.Params.SaBtc, digest)
	if err != nil {
		return &CryptoError{Code: CryptoBadAdaptor, Err: err}
	}

	if err := t.transition(swapstate.BobEncSigSent{
		Params:           cur.Params,
		SpendScalar:      cur.SpendScalar,
		MyKey:            cur.MyKey,
		LockHeight:       cur.LockHeight,
		XmrLockTxID:      cur.XmrLockTxID,
		EncSigRedeemSent: encSig,
	}); err != nil {
		return err
	}

	sigCancel := xmrbtccrypto.DERBytes(t.signCancel(cur.Params, cur.MyKey))
	sigPunish := xmrbtccrypto.DERBytes(t.signPunish(cur.Params, cur.MyKey))

	msg := &swapwire.EncSigRedeem{SwapID: t.id, EncSig: mustMarshalEncSig(encSig)}
	if err := t.deps.Net.Send(ctx, t.deps.Peer, msg); err != nil {
		return &NetworkError{Code: NetworkTimeout, Err: err}
	}
	if err := t.deps.Net.Send(ctx, t.deps.Peer, &swapwire.SigCancel{SwapID: t.id, Sig: sigCancel}); err != nil {
		return &NetworkError{Code: NetworkTimeout, Err: err}
	}
	return t.deps.Net.Send(ctx, t.deps.Peer, &swapwire.SigPunish{SwapID: t.id, Sig: sigPunish})
}

func (t *BobTask) signCancel(params swapstate.Params, myKey *xmrbtccrypto.PrivateKeyK1) *xmrbtccrypto.Signature {
	cancelTx, _, err := txbuilder.BuildCancel(params.LockOut, params.TCancel, params.TPunish, params.A, params.B, t.deps.Fee)
	if err != nil {
		return nil
	}
	digest, err := cancelTx.Digest()
	if err != nil {
		return nil
	}
	return xmrbtccrypto.Sign(myKey, digest)
}

func (t *BobTask) signPunish(params swapstate.Params, myKey *xmrbtccrypto.PrivateKeyK1) *xmrbtccrypto.Signature {
	_, cancelOut, err := txbuilder.BuildCancel(params.LockOut, params.TCancel, params.TPunish, params.A, params.B, t.deps.Fee)
	if err != nil {
		return nil
	}
	punishTx, err := txbuilder.BuildPunish(cancelOut, params.TPunish, params.AlicePunishAddr, t.deps.Fee)
	if err != nil {
		return nil
	}
	digest, err := punishTx.Digest()
	if err != nil {
		return nil
	}
	return xmrbtccrypto.Sign(myKey, digest)
}

func mustMarshalEncSig(sig *xmrbtccrypto.EncSignature) []byte {
	raw, err := sig.MarshalBinary()
	if err != nil {
		return nil
	}
	return raw
}

// HandleBobCancelTimelockElapsed moves BobEncSigSent ->
// BobCancelTimelockExpired, from which TxCancel can be completed and
// broadcast unilaterally.
func (t *BobTask) HandleBobCancelTimelockElapsed(ctx context.Context, ev BobCancelTimelockElapsed) error {
	cur, ok := t.state.(swapstate.BobEncSigSent)
	if !ok {
		return unexpectedBobState(t.state)
	}
	return t.transition(swapstate.BobCancelTimelockExpired{
		Params:           cur.Params,
		SpendScalar:      cur.SpendScalar,
		MyKey:            cur.MyKey,
		EncSigRedeemSent: cur.EncSigRedeemSent,
	})
}

// AttemptCancel completes and broadcasts TxCancel using Alice's
// handshake-time signature plus Bob's own.
func (t *BobTask) AttemptCancel(ctx context.Context, sigCancelAlice []byte) error {
	cur, ok := t.state.(swapstate.BobCancelTimelockExpired)
	if !ok {
		return unexpectedBobState(t.state)
	}

	cancelTx, cancelOut, err := txbuilder.BuildCancel(
		cur.Params.LockOut, cur.Params.TCancel, cur.Params.TPunish,
		cur.Params.A, cur.Params.B, t.deps.Fee,
	)
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}
	digest, err := cancelTx.Digest()
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}
	sigBob := xmrbtccrypto.Sign(cur.MyKey, digest)

	if err := txbuilder.CompleteCancel(
		cancelTx,
		sigCancelAlice, xmrbtccrypto.DERBytes(sigBob),
		cur.Params.A, cur.Params.B,
	); err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}

	if err := t.deps.BTC.Broadcast(ctx, cancelTx.MsgTx); err != nil {
		return &ChainError{Code: ChainRejected, Fatal: false, Err: err}
	}

	return t.transition(swapstate.BobBtcCancelled{
		Params:      cur.Params,
		SpendScalar: cur.SpendScalar,
		MyKey:       cur.MyKey,
		CancelOut:   cancelOut,
	})
}

// HandleBobCancelConfirmed lets a task that was not the one to
// broadcast TxCancel catch up to BobBtcCancelled.
func (t *BobTask) HandleBobCancelConfirmed(ctx context.Context, ev BobCancelConfirmed) error {
	if _, ok := t.state.(swapstate.BobBtcCancelled); ok {
		return nil
	}
	cur, ok := t.state.(swapstate.BobCancelTimelockExpired)
	if !ok {
		return unexpectedBobState(t.state)
	}

	_, cancelOut, err := txbuilder.BuildCancel(
		cur.Params.LockOut, cur.Params.TCancel, cur.Params.TPunish,
		cur.Params.A, cur.Params.B, t.deps.Fee,
	)
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}

	return t.transition(swapstate.BobBtcCancelled{
		Params:      cur.Params,
		SpendScalar: cur.SpendScalar,
		MyKey:       cur.MyKey,
		CancelOut:   cancelOut,
	})
}

// HandleEncSigRefundReceived decrypts Alice's adaptor signature over
// TxRefund with s_b, completes TxRefund with Bob's own plain signature,
// and broadcasts it. This stays in BobBtcCancelled — TxRefund's
// confirmation is observed via BobRefundConfirmed, not a state shape
// change, since nothing further needs remembering before it.
func (t *BobTask) HandleEncSigRefundReceived(ctx context.Context, ev EncSigRefundReceived) error {
	cur, ok := t.state.(swapstate.BobBtcCancelled)
	if !ok {
		return unexpectedBobState(t.state)
	}

	refundTx, err := txbuilder.BuildRefund(cur.CancelOut, cur.Params.BobRefundAddr, t.deps.Fee)
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}
	digest, err := refundTx.Digest()
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}

	sigAlice := xmrbtccrypto.Decrypt(ev.EncSig, cur.SpendScalar.Secp256k1())
	if err := xmrbtccrypto.Verify(cur.Params.A, digest, sigAlice); err != nil {
		return &CryptoError{Code: CryptoBadAdaptor, Err: err}
	}
	sigBob := xmrbtccrypto.Sign(cur.MyKey, digest)

	if err := txbuilder.CompleteRefund(
		refundTx,
		xmrbtccrypto.DERBytes(sigAlice), xmrbtccrypto.DERBytes(sigBob),
		cur.Params.A, cur.Params.B,
	); err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}

	return t.deps.BTC.Broadcast(ctx, refundTx.MsgTx)
}

// HandleBobRefundConfirmed moves BobBtcCancelled -> BobBtcRefunded, a
// terminal state.
func (t *BobTask) HandleBobRefundConfirmed(ctx context.Context, ev BobRefundConfirmed) error {
	cur, ok := t.state.(swapstate.BobBtcCancelled)
	if !ok {
		return unexpectedBobState(t.state)
	}
	return t.transition(swapstate.BobBtcRefunded{Params: cur.Params, TxID: ev.TxID})
}

// HandleTxRedeemObserved fires once Alice's completed TxRedeem appears
// on chain, from either BobEncSigSent or BobCancelTimelockExpired
// (Alice may still redeem right up until Bob's own cancel broadcast
// lands). Bob recovers s_a by extracting the signature matching his own
// key B from the witness and calling Recover against the adaptor
// signature he originally sent her, assembles s = s_a + s_b, and
// returns it for an immediate sweep. The scalar is not persisted
// (BobXmrRedeemed has no field for it), unlike AliceTask, which records
// its assembled scalar in AliceBtcRefunded on the refund path.
func (t *BobTask) HandleTxRedeemObserved(ctx context.Context, ev TxRedeemObserved) (*xmrbtccrypto.SpendScalar, error) {
	var params swapstate.Params
	var spendScalar *xmrbtccrypto.SpendScalar
	var encSigRedeemSent *xmrbtccrypto.EncSignature
	var xmrLockTxID string

	switch cur := t.state.(type) {
	case swapstate.BobEncSigSent:
		params, spendScalar, encSigRedeemSent, xmrLockTxID = cur.Params, cur.SpendScalar, cur.EncSigRedeemSent, cur.XmrLockTxID
	case swapstate.BobCancelTimelockExpired:
		params, spendScalar, encSigRedeemSent = cur.Params, cur.SpendScalar, cur.EncSigRedeemSent
	default:
		return nil, unexpectedBobState(t.state)
	}

	redeemTx, err := txbuilder.BuildRedeem(params.LockOut, params.AliceRedeemAddr, t.deps.Fee)
	if err != nil {
		return nil, &BuildError{Code: BuildBadDescriptor, Err: err}
	}
	digest, err := redeemTx.Digest()
	if err != nil {
		return nil, &BuildError{Code: BuildBadDescriptor, Err: err}
	}

	der, err := txbuilder.ExtractSignature(ev.Tx, params.B, digest)
	if err != nil {
		return nil, &ChainError{Code: ChainRejected, Fatal: true, Err: err}
	}
	sigBob, err := xmrbtccrypto.SignatureFromDER(der)
	if err != nil {
		return nil, &CryptoError{Code: CryptoSignatureMismatch, Err: err}
	}

	sA, err := xmrbtccrypto.Recover(sigBob, encSigRedeemSent)
	if err != nil {
		return nil, &CryptoError{Code: CryptoSignatureMismatch, Err: err}
	}

	sharedBytes := new(secp256k1.ModNScalar).Add2(spendScalar.Secp256k1(), sA).Bytes()
	shared, err := xmrbtccrypto.SpendScalarFromBytes(sharedBytes)
	if err != nil {
		return nil, &CryptoError{Code: CryptoSignatureMismatch, Err: err}
	}

	if err := t.transition(swapstate.BobXmrRedeemed{
		Params:      params,
		TxLockID:    params.LockOut.OutPoint.Hash,
		XmrLockTxID: xmrLockTxID,
	}); err != nil {
		return nil, err
	}
	return shared, nil
}

// SweepRedeem imports the shared spend key recovered by
// HandleTxRedeemObserved into a spendable Monero wallet and sweeps it
// to Bob's own wallet, recording the sweep's txid.
func (t *BobTask) SweepRedeem(ctx context.Context, shared *xmrbtccrypto.SpendScalar) (string, error) {
	cur, ok := t.state.(swapstate.BobXmrRedeemed)
	if !ok {
		return "", unexpectedBobState(t.state)
	}

	spendKey := shared.Bytes()
	wallet, err := t.deps.XMRImporter.CreateFromKeys(ctx, spendKey, cur.Params.XmrViewKeyShared, 0)
	if err != nil {
		return "", &ChainError{Code: ChainRejected, Fatal: false, Err: err}
	}
	mine, err := t.deps.XMR.MainAddress(ctx)
	if err != nil {
		return "", &ChainError{Code: ChainRejected, Fatal: false, Err: err}
	}
	txID, err := wallet.SweepTo(ctx, mine)
	if err != nil {
		return "", &ChainError{Code: ChainRejected, Fatal: false, Err: err}
	}

	return txID, t.transition(swapstate.BobXmrRedeemed{
		Params:      cur.Params,
		TxLockID:    cur.TxLockID,
		SweepTxID:   txID,
		XmrLockTxID: cur.XmrLockTxID,
	})
}

// HandleBobPunishConfirmed moves BobBtcCancelled -> BobBtcPunished, a
// terminal state, once T_punish elapsed with no refund and TxPunish
// confirmed instead.
func (t *BobTask) HandleBobPunishConfirmed(ctx context.Context, ev BobPunishConfirmed) error {
	cur, ok := t.state.(swapstate.BobBtcCancelled)
	if !ok {
		return unexpectedBobState(t.state)
	}
	return t.transition(swapstate.BobBtcPunished{Params: cur.Params, TxID: ev.TxID})
}
