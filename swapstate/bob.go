package swapstate

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/btcxmr/swapcore/txbuilder"
	"github.com/btcxmr/swapcore/xmrbtccrypto"
)

// BobState is the marker interface every Bob-side per-step state value
// implements.
type BobState interface {
	isBobState()
}

// BobStarted is Bob's initial state, before TxLock is broadcast.
type BobStarted struct {
	Params      Params
	SpendScalar *xmrbtccrypto.SpendScalar // s_b
	// MyKey is Bob's secp256k1 multisig signing key `b`, distinct from
	// SpendScalar; see AliceStarted.MyKey for the reason the two
	// secrets are kept separate.
	MyKey *xmrbtccrypto.PrivateKeyK1
}

func (BobStarted) isBobState() {}

// BobBtcLocked records that TxLock has confirmed.
type BobBtcLocked struct {
	Params      Params
	SpendScalar *xmrbtccrypto.SpendScalar
	MyKey       *xmrbtccrypto.PrivateKeyK1
	LockHeight  uint32
}

func (BobBtcLocked) isBobState() {}

// BobXmrLockProofReceived records receipt and verification of Alice's
// Monero transfer proof, before the proof's confirmation depth is met.
type BobXmrLockProofReceived struct {
	Params      Params
	SpendScalar *xmrbtccrypto.SpendScalar
	MyKey       *xmrbtccrypto.PrivateKeyK1
	LockHeight  uint32
	XmrLockTxID string
}

func (BobXmrLockProofReceived) isBobState() {}

// BobXmrLocked records that Alice's Monero lock has reached
// env_config.xmr_lock_confirmations.
type BobXmrLocked struct {
	Params      Params
	SpendScalar *xmrbtccrypto.SpendScalar
	MyKey       *xmrbtccrypto.PrivateKeyK1
	LockHeight  uint32
	XmrLockTxID string
}

func (BobXmrLocked) isBobState() {}

// BobEncSigSent records that Bob's encrypted signature over TxRedeem
// has been sent to Alice (during the handshake, or here if it was not
// already).
type BobEncSigSent struct {
	Params           Params
	SpendScalar      *xmrbtccrypto.SpendScalar
	MyKey            *xmrbtccrypto.PrivateKeyK1
	LockHeight       uint32
	XmrLockTxID      string
	EncSigRedeemSent *xmrbtccrypto.EncSignature
}

func (BobEncSigSent) isBobState() {}

// BobCancelTimelockExpired records that T_cancel elapsed while Bob was
// in BobEncSigSent, the only state HandleBobCancelTimelockElapsed
// accepts.
type BobCancelTimelockExpired struct {
	Params           Params
	SpendScalar      *xmrbtccrypto.SpendScalar
	MyKey            *xmrbtccrypto.PrivateKeyK1
	EncSigRedeemSent *xmrbtccrypto.EncSignature
}

func (BobCancelTimelockExpired) isBobState() {}

// BobBtcCancelled records that TxCancel was broadcast by Bob
// (AttemptCancel) or observed confirmed (HandleBobCancelConfirmed).
type BobBtcCancelled struct {
	Params      Params
	SpendScalar *xmrbtccrypto.SpendScalar
	MyKey       *xmrbtccrypto.PrivateKeyK1
	CancelOut   *txbuilder.CancelOutput
}

func (BobBtcCancelled) isBobState() {}

// BobBtcRefunded is terminal: Bob completed and broadcast TxRefund by
// decrypting Alice's encsig_a(TxRefund) with s_b.
type BobBtcRefunded struct {
	Params Params
	TxID   chainhash.Hash
}

func (BobBtcRefunded) isBobState() {}

// BobBtcPunished is terminal: T_punish elapsed and TxPunish was
// observed confirmed; Bob recovers nothing further.
type BobBtcPunished struct {
	Params Params
	TxID   chainhash.Hash
}

func (BobBtcPunished) isBobState() {}

// BobXmrRedeemed is terminal: Bob observed TxRedeem, recovered s_a from
// its witness, assembled s = s_a + s_b, and swept the Monero lock
// output to his own wallet. TxLockID identifies the swap's lock
// transaction for the record, per the spec's `XmrRedeemed{tx_lock_id}`
// variant.
type BobXmrRedeemed struct {
	Params      Params
	TxLockID    chainhash.Hash
	SweepTxID   string
	XmrLockTxID string
}

func (BobXmrRedeemed) isBobState() {}
