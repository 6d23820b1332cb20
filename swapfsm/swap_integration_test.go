package swapfsm_test

import (
	"context"
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"

	"github.com/btcxmr/swapcore/swapfsm"
	"github.com/btcxmr/swapcore/swapnet"
	"github.com/btcxmr/swapcore/swapstate"
	"github.com/btcxmr/swapcore/swapwire"
	"github.com/btcxmr/swapcore/xmrbtccrypto"
)

// TestHappyPathEndToEndOverMemoryNetwork drives a matched AliceTask and
// BobTask through scenario S1 over a real swapnet.MemoryNetwork link.
// Bob's EncSigRedeem, SigCancel and SigPunish messages are received on
// Alice's end and decoded the way a real dispatcher would; the Monero
// lock txid Bob verifies is read from Alice's state, and her
// XmrTransferProof message is left unread. This is the one test that
// exercises swapnet, swapwire, and swapfsm together.
func TestHappyPathEndToEndOverMemoryNetwork(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	aliceNet, bobNet := swapnet.NewMemoryLink("alice", "bob", 8)

	aliceBtc := &mockBitcoinWallet{}
	aliceXmr := &mockMoneroWallet{mainAddr: "alice-main", transferTx: "xmr-lock-txid"}
	aliceDeps := swapfsm.AliceDeps{
		BTC: aliceBtc, XMR: aliceXmr, XMRImporter: &mockKeyImporter{wallet: aliceXmr},
		Net: aliceNet, Peer: "bob", Store: openTestStore(t), Fee: testFee, Policy: swapfsm.DefaultPolicy(),
	}
	alice := swapfsm.NewAliceTask(aliceDeps, f.params.SwapID,
		swapstate.AliceStarted{Params: f.params, SpendScalar: f.aliceSpend, MyKey: f.aliceMyKey})

	bobBtc := &mockBitcoinWallet{}
	bobXmr := &mockMoneroWallet{mainAddr: "bob-main", sweepTx: "bob-sweep-txid"}
	bobImp := &mockKeyImporter{wallet: bobXmr}
	bobDeps := swapfsm.BobDeps{
		BTC: bobBtc, XMR: bobXmr, XMRImporter: bobImp,
		Net: bobNet, Peer: "alice", Store: openTestStore(t), Fee: testFee, Policy: swapfsm.DefaultPolicy(),
	}
	bob := swapfsm.NewBobTask(bobDeps, f.params.SwapID,
		swapstate.BobStarted{Params: f.params, SpendScalar: f.bobSpend, MyKey: f.bobMyKey})

	require.NoError(t, alice.HandleTxLockConfirmed(ctx, swapfsm.TxLockConfirmed{Height: 100}))
	require.NoError(t, bob.HandleBobTxLockConfirmed(ctx, swapfsm.BobTxLockConfirmed{Height: 100}))

	lockedAlice := alice.State().(swapstate.AliceXmrLocked)
	require.NoError(t, bob.HandleXmrLockProofReceived(ctx, swapfsm.XmrLockProofReceived{
		TxID: lockedAlice.XmrLockTxID, Proof: []byte("xmr-transfer-proof"),
	}))
	require.NoError(t, alice.HandleXmrLockFinalized(ctx, swapfsm.XmrLockFinalized{TxID: lockedAlice.XmrLockTxID}))
	require.NoError(t, bob.HandleBobXmrLockFinalized(ctx, swapfsm.BobXmrLockFinalized{}))

	// Bob sends his adaptor signature and handshake sigs over the real
	// network link.
	require.NoError(t, bob.SendEncSigRedeem(ctx))

	recvCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var encSig *xmrbtccrypto.EncSignature
	var sigCancelBob, sigPunishBob []byte
	for i := 0; i < 3; i++ {
		_, msg, err := aliceNet.Recv(recvCtx)
		require.NoError(t, err)
		switch m := msg.(type) {
		case *swapwire.EncSigRedeem:
			decoded := new(xmrbtccrypto.EncSignature)
			require.NoError(t, decoded.UnmarshalBinary(m.EncSig))
			encSig = decoded
		case *swapwire.SigCancel:
			sigCancelBob = m.Sig
		case *swapwire.SigPunish:
			sigPunishBob = m.Sig
		default:
			t.Fatalf("unexpected message type %T", m)
		}
	}
	require.NotNil(t, encSig)
	require.NotEmpty(t, sigCancelBob)
	require.NotEmpty(t, sigPunishBob)

	require.NoError(t, alice.HandleEncSigRedeemReceived(ctx, swapfsm.EncSigRedeemReceived{
		EncSig: encSig, SigCancelBob: sigCancelBob, SigPunishBob: sigPunishBob,
	}))

	require.NoError(t, alice.AttemptRedeem(ctx))
	redeemTx := aliceBtc.lastBroadcast()
	require.NotNil(t, redeemTx)

	require.NoError(t, alice.HandleRedeemConfirmed(ctx, swapfsm.RedeemConfirmed{TxID: redeemTx.TxHash()}))
	aliceFinal, ok := alice.State().(swapstate.AliceBtcRedeemed)
	require.True(t, ok)
	require.Equal(t, redeemTx.TxHash(), aliceFinal.TxID)

	shared, err := bob.HandleTxRedeemObserved(ctx, swapfsm.TxRedeemObserved{
		Tx: redeemTx, TxID: redeemTx.TxHash(),
	})
	require.NoError(t, err)

	wantShared := new(secp256k1.ModNScalar).Add2(f.aliceSpend.Secp256k1(), f.bobSpend.Secp256k1())
	require.Equal(t, wantShared.Bytes(), shared.Bytes())

	sweepTxID, err := bob.SweepRedeem(ctx, shared)
	require.NoError(t, err)
	require.Equal(t, "bob-sweep-txid", sweepTxID)
	require.Equal(t, shared.Bytes(), bobImp.gotSpendKey)

	bobFinal, ok := bob.State().(swapstate.BobXmrRedeemed)
	require.True(t, ok)
	require.Equal(t, sweepTxID, bobFinal.SweepTxID)
}
