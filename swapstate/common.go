// Package swapstate defines the immutable per-step state values of
// both swap roles: each value carries exactly the secrets, signatures,
// and observations its next transition needs, per the state-as-variant
// design (see swapfsm, which defines the transition functions over
// these values).
package swapstate

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"

	"github.com/btcxmr/swapcore/swapid"
	"github.com/btcxmr/swapcore/txbuilder"
	"github.com/btcxmr/swapcore/xmrbtccrypto"
)

// Params is the handshake-agreed descriptor carried unchanged by every
// state past Started: the keys, DLEQ-proved point pairs, addresses,
// timelocks and amounts fixed for the swap's lifetime.
type Params struct {
	SwapID swapid.ID

	A, B         *btcec.PublicKey
	SaBtc, SbBtc *btcec.PublicKey
	SaEd, SbEd   *xmrbtccrypto.Ed25519Point

	AliceRedeemAddr btcutil.Address
	AlicePunishAddr btcutil.Address
	BobRefundAddr   btcutil.Address

	// XmrLockAddress is the Monero address controlled jointly by
	// S_a^ed + S_b^ed, derived during handshake setup (outside
	// swapfsm's scope — deriving a spend+view keypair into a Monero
	// address is an application/wallet-layer concern, not part of the
	// swap's own cryptographic core).
	XmrLockAddress string

	// XmrViewKeyShared is v_a + v_b, the combined private view key for
	// XmrLockAddress. Unlike the spend scalar, the view key carries no
	// spending power, so both parties exchange their half in the clear
	// during handshake; it lets whichever party later recovers the
	// shared spend scalar re-import the funding output as a
	// spendable wallet via a MoneroKeyImporter.
	XmrViewKeyShared [32]byte

	TCancel, TPunish uint32

	BtcAmount btcutil.Amount
	// XmrAmount is denominated in piconero, matching the Monero
	// wallet adapter's transfer() unit.
	XmrAmount uint64

	// LockOut is populated once TxLock's descriptor is known — both
	// parties derive it independently in handshake round 3, before
	// TxLock is even signed, since segwit txid hashing ignores
	// witness data.
	LockOut *txbuilder.LockOutput
}

// SigCancelBob is Bob's signature over TxCancel's digest, exchanged
// during the handshake so either party can complete TxCancel
// unilaterally once T_cancel elapses.
type SigCancelBob = []byte

// SigPunishBob is Bob's signature over TxPunish's digest, exchanged
// during the handshake so Alice can complete TxPunish unilaterally.
type SigPunishBob = []byte
