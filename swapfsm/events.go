package swapfsm

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/btcxmr/swapcore/xmrbtccrypto"
)

// AliceEvent is one input to Alice's transition function. Every
// variant already carries its guard satisfied (e.g. TxLockConfirmed is
// only delivered once the confirmation depth policy is met) — guard
// evaluation is the event loop's job, transition functions assume it
// has already happened.
type AliceEvent interface {
	isAliceEvent()
}

// TxLockConfirmed reports that TxLock reached finality at height.
type TxLockConfirmed struct{ Height uint32 }

func (TxLockConfirmed) isAliceEvent() {}

// XmrLockFinalized reports that Alice's own Monero lock transaction
// reached env_config.xmr_lock_confirmations.
type XmrLockFinalized struct{ TxID string }

func (XmrLockFinalized) isAliceEvent() {}

// EncSigRedeemReceived carries Bob's adaptor-encrypted signature over
// TxRedeem.
type EncSigRedeemReceived struct {
	EncSig       *xmrbtccrypto.EncSignature
	SigCancelBob []byte
	SigPunishBob []byte
}

func (EncSigRedeemReceived) isAliceEvent() {}

// RedeemConfirmed reports that Alice's completed TxRedeem confirmed.
type RedeemConfirmed struct{ TxID chainhash.Hash }

func (RedeemConfirmed) isAliceEvent() {}

// CancelTimelockElapsed reports T_cancel blocks have passed since
// TxLock confirmed, from any pre-terminal state.
type CancelTimelockElapsed struct{}

func (CancelTimelockElapsed) isAliceEvent() {}

// CancelConfirmed reports TxCancel confirmed, whoever broadcast it.
type CancelConfirmed struct{ CancelTx *wire.MsgTx }

func (CancelConfirmed) isAliceEvent() {}

// TxRefundObserved reports Bob's completed TxRefund appeared on chain.
type TxRefundObserved struct {
	Tx   *wire.MsgTx
	TxID chainhash.Hash
}

func (TxRefundObserved) isAliceEvent() {}

// XmrRefundSwept reports Alice's Monero sweep-back transaction was
// broadcast (a terminal, re-observable effect).
type XmrRefundSwept struct{ TxID string }

func (XmrRefundSwept) isAliceEvent() {}

// PunishTimelockElapsed reports T_punish blocks have passed since
// TxCancel confirmed with no TxRefund observed.
type PunishTimelockElapsed struct{}

func (PunishTimelockElapsed) isAliceEvent() {}

// PunishConfirmed reports TxPunish confirmed.
type PunishConfirmed struct{ TxID chainhash.Hash }

func (PunishConfirmed) isAliceEvent() {}

// BobEvent is one input to Bob's transition function, with the same
// pre-guarded-delivery convention as AliceEvent.
type BobEvent interface {
	isBobEvent()
}

// HandshakeComplete reports Bob has gathered everything needed to
// broadcast TxLock.
type HandshakeComplete struct{}

func (HandshakeComplete) isBobEvent() {}

// BobTxLockConfirmed reports TxLock reached finality.
type BobTxLockConfirmed struct{ Height uint32 }

func (BobTxLockConfirmed) isBobEvent() {}

// XmrLockProofReceived carries Alice's Monero transfer proof.
type XmrLockProofReceived struct {
	TxID  string
	Proof []byte
}

func (XmrLockProofReceived) isBobEvent() {}

// BobXmrLockFinalized reports Alice's Monero lock reached
// env_config.xmr_lock_confirmations.
type BobXmrLockFinalized struct{}

func (BobXmrLockFinalized) isBobEvent() {}

// BobCancelTimelockElapsed mirrors CancelTimelockElapsed for Bob.
type BobCancelTimelockElapsed struct{}

func (BobCancelTimelockElapsed) isBobEvent() {}

// BobCancelConfirmed mirrors CancelConfirmed for Bob.
type BobCancelConfirmed struct{ CancelTx *wire.MsgTx }

func (BobCancelConfirmed) isBobEvent() {}

// EncSigRefundReceived carries Alice's adaptor-encrypted signature over
// TxRefund, encrypted to S_b^btc. Bob requests this once TxCancel has
// confirmed and he is ready to broadcast TxRefund; it is not persisted
// across restarts, since Alice can simply resend it on request.
type EncSigRefundReceived struct {
	EncSig *xmrbtccrypto.EncSignature
}

func (EncSigRefundReceived) isBobEvent() {}

// BobRefundConfirmed reports Bob's own completed TxRefund confirmed.
type BobRefundConfirmed struct{ TxID chainhash.Hash }

func (BobRefundConfirmed) isBobEvent() {}

// TxRedeemObserved reports Alice's completed TxRedeem appeared on
// chain, letting Bob recover s_a.
type TxRedeemObserved struct {
	Tx   *wire.MsgTx
	TxID chainhash.Hash
}

func (TxRedeemObserved) isBobEvent() {}

// XmrRedeemSwept reports Bob's Monero sweep transaction was broadcast.
type XmrRedeemSwept struct{ TxID string }

func (XmrRedeemSwept) isBobEvent() {}

// BobPunishConfirmed reports TxPunish confirmed, ending Bob's side
// with nothing recovered.
type BobPunishConfirmed struct{ TxID chainhash.Hash }

func (BobPunishConfirmed) isBobEvent() {}
