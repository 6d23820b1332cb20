package swapstate

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/btcxmr/swapcore/txbuilder"
	"github.com/btcxmr/swapcore/xmrbtccrypto"
)

// AliceState is the marker interface every Alice-side per-step state
// value implements. A type switch over AliceState, not a discriminant
// field, is the tagged union's operative shape.
type AliceState interface {
	isAliceState()
}

// AliceStarted is Alice's initial state, before TxLock has confirmed.
type AliceStarted struct {
	Params      Params
	SpendScalar *xmrbtccrypto.SpendScalar // s_a
	// MyKey is Alice's secp256k1 multisig signing key `a`, distinct
	// from SpendScalar: `a` signs TxRedeem/TxCancel/TxRefund/TxPunish
	// inputs, while s_a is the cross-curve scalar funding the joint
	// Monero output. The two secrets never mix.
	MyKey *xmrbtccrypto.PrivateKeyK1
}

func (AliceStarted) isAliceState() {}

// AliceXmrLocked records that Alice has broadcast her Monero lock
// transaction funding S_a+S_b. It is entered as soon as the transfer is
// broadcast; the lock's confirmation depth is not tracked by this state.
type AliceXmrLocked struct {
	Params      Params
	SpendScalar *xmrbtccrypto.SpendScalar
	MyKey       *xmrbtccrypto.PrivateKeyK1
	LockHeight  uint32
	XmrLockTxID string
}

func (AliceXmrLocked) isAliceState() {}

// AliceEncSigLearned records receipt of Bob's encrypted signature over
// TxRedeem. This is the state from which the redeem-vs-cancel policy
// switch is evaluated.
type AliceEncSigLearned struct {
	Params       Params
	SpendScalar  *xmrbtccrypto.SpendScalar
	MyKey        *xmrbtccrypto.PrivateKeyK1
	LockHeight   uint32
	XmrLockTxID  string
	EncSigRedeem *xmrbtccrypto.EncSignature
	SigCancelBob SigCancelBob
	SigPunishBob SigPunishBob
}

func (AliceEncSigLearned) isAliceState() {}

// AliceBtcRedeemed is terminal: Alice's redeem transaction confirmed
// and she received btc_amount - TX_FEE.
type AliceBtcRedeemed struct {
	Params Params
	TxID   chainhash.Hash
}

func (AliceBtcRedeemed) isAliceState() {}

// AliceCancelTimelockExpired records that T_cancel elapsed while Alice
// was in AliceEncSigLearned, the only state HandleCancelTimelockElapsed
// accepts; Alice may now complete and broadcast TxCancel.
type AliceCancelTimelockExpired struct {
	Params       Params
	SpendScalar  *xmrbtccrypto.SpendScalar
	MyKey        *xmrbtccrypto.PrivateKeyK1
	EncSigRedeem *xmrbtccrypto.EncSignature
	SigCancelBob SigCancelBob
	SigPunishBob SigPunishBob
}

func (AliceCancelTimelockExpired) isAliceState() {}

// AliceBtcCancelled records that TxCancel has been broadcast by Alice
// (AttemptCancel) or observed confirmed (HandleCancelConfirmed, possibly
// after Bob broadcast it instead — broadcasting is idempotent).
type AliceBtcCancelled struct {
	Params       Params
	SpendScalar  *xmrbtccrypto.SpendScalar
	MyKey        *xmrbtccrypto.PrivateKeyK1
	CancelOut    *txbuilder.CancelOutput
	SigPunishBob SigPunishBob
}

func (AliceBtcCancelled) isAliceState() {}

// AliceBtcRefunded records that Bob's TxRefund confirmed; Alice has
// recovered s_b from it and is sweeping her Monero lock output.
type AliceBtcRefunded struct {
	Params        Params
	RefundTxID    chainhash.Hash
	SharedScalar  *xmrbtccrypto.SpendScalar // s = s_a + s_b, assembled for the sweep
}

func (AliceBtcRefunded) isAliceState() {}

// AliceXmrRefunded is terminal: Alice has swept the Monero lock output
// back to her own wallet using the recovered shared spend key.
type AliceXmrRefunded struct {
	Params    Params
	SweepTxID string
}

func (AliceXmrRefunded) isAliceState() {}

// AliceBtcPunishable records that T_punish elapsed with no TxRefund
// observed; Alice may now complete and broadcast TxPunish.
type AliceBtcPunishable struct {
	Params       Params
	MyKey        *xmrbtccrypto.PrivateKeyK1
	CancelOut    *txbuilder.CancelOutput
	SigPunishBob SigPunishBob
}

func (AliceBtcPunishable) isAliceState() {}

// AliceBtcPunished is terminal: Alice's punish transaction confirmed,
// delivering both locked amounts to her as the honest party.
type AliceBtcPunished struct {
	Params Params
	TxID   chainhash.Hash
}

func (AliceBtcPunished) isAliceState() {}
