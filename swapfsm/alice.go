package swapfsm

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
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

// AliceDeps are the external collaborators an AliceTask drives. Nothing
// here is owned by the task; it is wired in by whatever assembles the
// swap (a daemon, or a test harness).
type AliceDeps struct {
	BTC         walletadapter.BitcoinWallet
	XMR         walletadapter.MoneroWallet
	XMRImporter walletadapter.MoneroKeyImporter
	Net         swapnet.Network
	Peer        swapnet.PeerID
	Store       *swapstore.DB
	Fee         btcutil.Amount
	Policy      Policy
}

// AliceTask drives Alice's automaton for a single swap: one per active
// swap, holding the current state in memory and persisting every
// transition before any externally-observable side effect it cannot
// later re-derive.
type AliceTask struct {
	deps  AliceDeps
	id    swapid.ID
	state swapstate.AliceState

	// sentEncSigRefund caches the adaptor signature EncSigRefund last
	// handed to Bob. Recover needs the exact nonce that produced the
	// signature Bob decrypted and broadcast, so this cannot be
	// recomputed fresh once TxRefund is observed. Deliberately
	// in-memory only, not part of persisted state: after a restart
	// Alice simply regenerates and resends it if Bob asks again.
	sentEncSigRefund *xmrbtccrypto.EncSignature
}

// NewAliceTask wraps an already-handshaken initial state (normally
// AliceStarted) for driving forward.
func NewAliceTask(deps AliceDeps, id swapid.ID, initial swapstate.AliceState) *AliceTask {
	return &AliceTask{deps: deps, id: id, state: initial}
}

// State returns the task's current state value.
func (t *AliceTask) State() swapstate.AliceState { return t.state }

func (t *AliceTask) transition(next swapstate.AliceState) error {
	t.state = next
	if err := t.deps.Store.Put(swapstore.Record{SwapID: t.id, Role: swapstore.RoleAlice, State: next}); err != nil {
		return &StoreError{Code: StoreIO, Err: err}
	}
	return nil
}

func unexpectedAliceState(got swapstate.AliceState) error {
	return &ProtocolError{Code: ProtocolOutOfOrder, Err: fmt.Errorf("unexpected state %T", got)}
}

// HandleTxLockConfirmed moves AliceStarted -> AliceXmrLocked: TxLock
// has reached finality, so Alice funds the joint Monero output.
func (t *AliceTask) HandleTxLockConfirmed(ctx context.Context, ev TxLockConfirmed) error {
	cur, ok := t.state.(swapstate.AliceStarted)
	if !ok {
		return unexpectedAliceState(t.state)
	}

	txID, proof, err := t.deps.XMR.Transfer(ctx, cur.Params.XmrLockAddress, cur.Params.XmrAmount)
	if err != nil {
		return &ChainError{Code: ChainRejected, Fatal: false, Err: err}
	}

	if err := t.transition(swapstate.AliceXmrLocked{
		Params:      cur.Params,
		SpendScalar: cur.SpendScalar,
		MyKey:       cur.MyKey,
		LockHeight:  ev.Height,
		XmrLockTxID: txID,
	}); err != nil {
		return err
	}

	msg := &swapwire.XmrTransferProof{SwapID: t.id, TxID: txID, Proof: proof}
	if err := t.deps.Net.Send(ctx, t.deps.Peer, msg); err != nil {
		return &NetworkError{Code: NetworkTimeout, Err: err}
	}
	return nil
}

// HandleXmrLockFinalized moves AliceXmrLocked -> waiting for Bob's
// EncSigRedeem; the swap's own state doesn't change shape here since
// nothing new needs to be remembered, so this is a no-op guard check
// kept symmetric with the other Handle* methods for the caller's
// dispatch table.
func (t *AliceTask) HandleXmrLockFinalized(ctx context.Context, ev XmrLockFinalized) error {
	if _, ok := t.state.(swapstate.AliceXmrLocked); !ok {
		return unexpectedAliceState(t.state)
	}
	return nil
}

// HandleEncSigRedeemReceived moves AliceXmrLocked -> AliceEncSigLearned.
// Per the spec's crypto-first-before-broadcast rule, the adaptor
// signature is verified before it is ever stored or acted on: a bad
// adaptor signature aborts with CryptoBadAdaptor, not a cancel.
func (t *AliceTask) HandleEncSigRedeemReceived(ctx context.Context, ev EncSigRedeemReceived) error {
	cur, ok := t.state.(swapstate.AliceXmrLocked)
	if !ok {
		return unexpectedAliceState(t.state)
	}

	redeemTx, err := txbuilder.BuildRedeem(cur.Params.LockOut, cur.Params.AliceRedeemAddr, t.deps.Fee)
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}
	digest, err := redeemTx.Digest()
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}

	if err := xmrbtccrypto.EncVerify(cur.Params.B, cur.Params.SaBtc, digest, ev.EncSig); err != nil {
		return &CryptoError{Code: CryptoBadAdaptor, Err: err}
	}

	return t.transition(swapstate.AliceEncSigLearned{
		Params:       cur.Params,
		SpendScalar:  cur.SpendScalar,
		MyKey:        cur.MyKey,
		LockHeight:   cur.LockHeight,
		XmrLockTxID:  cur.XmrLockTxID,
		EncSigRedeem: ev.EncSig,
		SigCancelBob: ev.SigCancelBob,
		SigPunishBob: ev.SigPunishBob,
	})
}

// AttemptRedeem decrypts Bob's adaptor signature with s_a, completes
// and broadcasts TxRedeem. The caller's event loop calls this only
// while Policy.ShouldRedeem still holds for the current chain height;
// past the safety margin it should drive CancelTimelockElapsed instead.
func (t *AliceTask) AttemptRedeem(ctx context.Context) error {
	cur, ok := t.state.(swapstate.AliceEncSigLearned)
	if !ok {
		return unexpectedAliceState(t.state)
	}

	redeemTx, err := txbuilder.BuildRedeem(cur.Params.LockOut, cur.Params.AliceRedeemAddr, t.deps.Fee)
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}
	digest, err := redeemTx.Digest()
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}

	sigBob := xmrbtccrypto.Decrypt(cur.EncSigRedeem, cur.SpendScalar.Secp256k1())
	if err := xmrbtccrypto.Verify(cur.Params.B, digest, sigBob); err != nil {
		return &CryptoError{Code: CryptoBadAdaptor, Err: err}
	}

	sigAlice := xmrbtccrypto.Sign(cur.MyKey, digest)

	if err := txbuilder.CompleteRedeem(
		redeemTx,
		xmrbtccrypto.DERBytes(sigAlice), xmrbtccrypto.DERBytes(sigBob),
		cur.Params.A, cur.Params.B,
	); err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}

	if err := t.deps.BTC.Broadcast(ctx, redeemTx.MsgTx); err != nil {
		return &ChainError{Code: ChainRejected, Fatal: false, Err: err}
	}
	return nil
}

// HandleRedeemConfirmed moves AliceEncSigLearned -> AliceBtcRedeemed,
// a terminal state.
func (t *AliceTask) HandleRedeemConfirmed(ctx context.Context, ev RedeemConfirmed) error {
	cur, ok := t.state.(swapstate.AliceEncSigLearned)
	if !ok {
		return unexpectedAliceState(t.state)
	}
	return t.transition(swapstate.AliceBtcRedeemed{Params: cur.Params, TxID: ev.TxID})
}

// HandleCancelTimelockElapsed moves AliceEncSigLearned into
// AliceCancelTimelockExpired, from which TxCancel can be completed and
// broadcast unilaterally. Every other state, including AliceStarted and
// AliceXmrLocked, is rejected with a ProtocolError; those states hold
// no TxCancel signature from Bob.
func (t *AliceTask) HandleCancelTimelockElapsed(ctx context.Context, ev CancelTimelockElapsed) error {
	cur, ok := t.state.(swapstate.AliceEncSigLearned)
	if !ok {
		return unexpectedAliceState(t.state)
	}
	return t.transition(swapstate.AliceCancelTimelockExpired{
		Params:       cur.Params,
		SpendScalar:  cur.SpendScalar,
		MyKey:        cur.MyKey,
		EncSigRedeem: cur.EncSigRedeem,
		SigCancelBob: cur.SigCancelBob,
		SigPunishBob: cur.SigPunishBob,
	})
}

// AttemptCancel completes and broadcasts TxCancel using Bob's
// handshake-time signature plus Alice's own. Broadcasting is
// idempotent — if Bob beat her to it, HandleCancelConfirmed still
// fires off the observed confirmation either way.
func (t *AliceTask) AttemptCancel(ctx context.Context) error {
	cur, ok := t.state.(swapstate.AliceCancelTimelockExpired)
	if !ok {
		return unexpectedAliceState(t.state)
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
	sigAlice := xmrbtccrypto.Sign(cur.MyKey, digest)

	if err := txbuilder.CompleteCancel(
		cancelTx,
		xmrbtccrypto.DERBytes(sigAlice), cur.SigCancelBob,
		cur.Params.A, cur.Params.B,
	); err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}

	if err := t.deps.BTC.Broadcast(ctx, cancelTx.MsgTx); err != nil {
		return &ChainError{Code: ChainRejected, Fatal: false, Err: err}
	}

	return t.transition(swapstate.AliceBtcCancelled{
		Params:       cur.Params,
		SpendScalar:  cur.SpendScalar,
		MyKey:        cur.MyKey,
		CancelOut:    cancelOut,
		SigPunishBob: cur.SigPunishBob,
	})
}

// HandleCancelConfirmed lets a task that was not the one to broadcast
// TxCancel (because Bob raced it) catch up to AliceBtcCancelled.
func (t *AliceTask) HandleCancelConfirmed(ctx context.Context, ev CancelConfirmed) error {
	if _, ok := t.state.(swapstate.AliceBtcCancelled); ok {
		return nil
	}
	cur, ok := t.state.(swapstate.AliceCancelTimelockExpired)
	if !ok {
		return unexpectedAliceState(t.state)
	}

	// TxCancel is fully determined by Params, so whichever party
	// broadcast it, rebuilding from the same inputs yields the same
	// cancelOut descriptor.
	_, cancelOut, err := txbuilder.BuildCancel(
		cur.Params.LockOut, cur.Params.TCancel, cur.Params.TPunish,
		cur.Params.A, cur.Params.B, t.deps.Fee,
	)
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}

	return t.transition(swapstate.AliceBtcCancelled{
		Params:       cur.Params,
		SpendScalar:  cur.SpendScalar,
		MyKey:        cur.MyKey,
		CancelOut:    cancelOut,
		SigPunishBob: cur.SigPunishBob,
	})
}

// EncSigRefund computes Alice's adaptor signature over TxRefund,
// encrypted to S_b^btc, for Bob to request once he is ready to
// broadcast TxRefund. It is recomputed on demand rather than persisted,
// since it costs nothing to regenerate and Bob can simply ask again.
func (t *AliceTask) EncSigRefund() (*xmrbtccrypto.EncSignature, error) {
	cur, ok := t.state.(swapstate.AliceBtcCancelled)
	if !ok {
		return nil, unexpectedAliceState(t.state)
	}

	refundTx, err := txbuilder.BuildRefund(cur.CancelOut, cur.Params.BobRefundAddr, t.deps.Fee)
	if err != nil {
		return nil, &BuildError{Code: BuildBadDescriptor, Err: err}
	}
	digest, err := refundTx.Digest()
	if err != nil {
		return nil, &BuildError{Code: BuildBadDescriptor, Err: err}
	}

	encSig, err := xmrbtccrypto.EncSign(cur.MyKey, cur.Params.SbBtc, digest)
	if err != nil {
		return nil, &CryptoError{Code: CryptoBadAdaptor, Err: err}
	}
	t.sentEncSigRefund = encSig
	return encSig, nil
}

// HandleTxRefundObserved fires once Bob's completed TxRefund appears on
// chain: Alice recovers s_b from the decrypted half of her own adaptor
// signature, assembles s = s_a + s_b, and moves to AliceBtcRefunded.
func (t *AliceTask) HandleTxRefundObserved(ctx context.Context, ev TxRefundObserved) error {
	cur, ok := t.state.(swapstate.AliceBtcCancelled)
	if !ok {
		return unexpectedAliceState(t.state)
	}

	refundTx, err := txbuilder.BuildRefund(cur.CancelOut, cur.Params.BobRefundAddr, t.deps.Fee)
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}
	digest, err := refundTx.Digest()
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}

	der, err := txbuilder.ExtractSignature(ev.Tx, cur.Params.A, digest)
	if err != nil {
		return &ChainError{Code: ChainRejected, Fatal: true, Err: err}
	}
	sigAlice, err := parseDERAsScalars(der)
	if err != nil {
		return &CryptoError{Code: CryptoSignatureMismatch, Err: err}
	}

	if t.sentEncSigRefund == nil {
		return &ProtocolError{Code: ProtocolOutOfOrder, Err: fmt.Errorf("observed TxRefund before ever sending an adaptor signature for it")}
	}

	sB, err := xmrbtccrypto.Recover(sigAlice, t.sentEncSigRefund)
	if err != nil {
		return &CryptoError{Code: CryptoSignatureMismatch, Err: err}
	}

	shared := new(secp256k1.ModNScalar).Add2(cur.SpendScalar.Secp256k1(), sB)
	sharedBytes := shared.Bytes()
	sharedScalar, err := xmrbtccrypto.SpendScalarFromBytes(sharedBytes)
	if err != nil {
		return &CryptoError{Code: CryptoSignatureMismatch, Err: err}
	}

	return t.transition(swapstate.AliceBtcRefunded{
		Params:       cur.Params,
		RefundTxID:   ev.TxID,
		SharedScalar: sharedScalar,
	})
}

// HandleXmrRefundSwept moves AliceBtcRefunded -> AliceXmrRefunded, a
// terminal state, once Alice's sweep of the joint Monero output using
// the recovered shared scalar has broadcast.
func (t *AliceTask) HandleXmrRefundSwept(ctx context.Context, ev XmrRefundSwept) error {
	cur, ok := t.state.(swapstate.AliceBtcRefunded)
	if !ok {
		return unexpectedAliceState(t.state)
	}
	return t.transition(swapstate.AliceXmrRefunded{Params: cur.Params, SweepTxID: ev.TxID})
}

// SweepRefund imports the shared spend key into a spendable Monero
// wallet and sweeps it to Alice's own wallet.
func (t *AliceTask) SweepRefund(ctx context.Context) (string, error) {
	cur, ok := t.state.(swapstate.AliceBtcRefunded)
	if !ok {
		return "", unexpectedAliceState(t.state)
	}
	spendKey := cur.SharedScalar.Bytes()

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
	return txID, nil
}

// HandlePunishTimelockElapsed moves AliceBtcCancelled ->
// AliceBtcPunishable: T_punish elapsed with no TxRefund observed.
func (t *AliceTask) HandlePunishTimelockElapsed(ctx context.Context, ev PunishTimelockElapsed) error {
	cur, ok := t.state.(swapstate.AliceBtcCancelled)
	if !ok {
		return unexpectedAliceState(t.state)
	}
	return t.transition(swapstate.AliceBtcPunishable{
		Params:       cur.Params,
		MyKey:        cur.MyKey,
		CancelOut:    cur.CancelOut,
		SigPunishBob: cur.SigPunishBob,
	})
}

// AttemptPunish completes and broadcasts TxPunish using Bob's
// handshake-time signature plus Alice's own.
func (t *AliceTask) AttemptPunish(ctx context.Context) error {
	cur, ok := t.state.(swapstate.AliceBtcPunishable)
	if !ok {
		return unexpectedAliceState(t.state)
	}

	punishTx, err := txbuilder.BuildPunish(cur.CancelOut, cur.Params.TPunish, cur.Params.AlicePunishAddr, t.deps.Fee)
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}
	digest, err := punishTx.Digest()
	if err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}
	sigAlice := xmrbtccrypto.Sign(cur.MyKey, digest)

	if err := txbuilder.CompletePunish(
		punishTx,
		xmrbtccrypto.DERBytes(sigAlice), cur.SigPunishBob,
		cur.Params.A, cur.Params.B,
	); err != nil {
		return &BuildError{Code: BuildBadDescriptor, Err: err}
	}

	return t.deps.BTC.Broadcast(ctx, punishTx.MsgTx)
}

// HandlePunishConfirmed moves AliceBtcPunishable -> AliceBtcPunished, a
// terminal state delivering both locked amounts to Alice.
func (t *AliceTask) HandlePunishConfirmed(ctx context.Context, ev PunishConfirmed) error {
	cur, ok := t.state.(swapstate.AliceBtcPunishable)
	if !ok {
		return unexpectedAliceState(t.state)
	}
	return t.transition(swapstate.AliceBtcPunished{Params: cur.Params, TxID: ev.TxID})
}

// parseDERAsScalars decodes a DER-encoded ECDSA signature (stripped of
// any trailing sighash-type byte by the caller) into xmrbtccrypto's
// (R, S) scalar form, as Recover needs.
func parseDERAsScalars(der []byte) (*xmrbtccrypto.Signature, error) {
	return xmrbtccrypto.SignatureFromDER(der)
}
