package swapwire

import (
	"io"

	"github.com/btcxmr/swapcore/swapid"
)

// SwapRequest is Alice's round-1 handshake payload: her share of every
// key, her cross-curve DLEQ proof, her BTC destination addresses, and
// her proposed timelocks.
type SwapRequest struct {
	SwapID           swapid.ID
	BtcAmount        int64
	XmrAmount        uint64
	A                [33]byte // Alice's TxLock multisig key
	SaBtc            [33]byte // S_a on secp256k1
	SaEd             [32]byte // S_a on ed25519, compressed
	DLEQProofA       []byte   // marshaled xmrbtccrypto.DLEQProof
	AliceRedeemAddr  string
	AlicePunishAddr  string
	TCancel          uint32
	TPunish          uint32
}

func (m *SwapRequest) MsgType() MessageType { return MsgSwapRequest }

func (m *SwapRequest) Encode(w io.Writer, pver uint32) error {
	if err := writeSwapID(w, m.SwapID); err != nil {
		return err
	}
	if err := writeInt64(w, m.BtcAmount); err != nil {
		return err
	}
	if err := writeUint64(w, m.XmrAmount); err != nil {
		return err
	}
	if err := writePubKeyCompressed(w, m.A[:]); err != nil {
		return err
	}
	if err := writePubKeyCompressed(w, m.SaBtc[:]); err != nil {
		return err
	}
	if _, err := w.Write(m.SaEd[:]); err != nil {
		return err
	}
	if err := writeVarBytes(w, m.DLEQProofA); err != nil {
		return err
	}
	if err := writeString(w, m.AliceRedeemAddr); err != nil {
		return err
	}
	if err := writeString(w, m.AlicePunishAddr); err != nil {
		return err
	}
	if err := writeUint32(w, m.TCancel); err != nil {
		return err
	}
	return writeUint32(w, m.TPunish)
}

func (m *SwapRequest) Decode(r io.Reader, pver uint32) error {
	var err error
	if m.SwapID, err = readSwapID(r); err != nil {
		return err
	}
	if m.BtcAmount, err = readInt64(r); err != nil {
		return err
	}
	if m.XmrAmount, err = readUint64(r); err != nil {
		return err
	}
	if m.A, err = readPubKeyCompressed(r); err != nil {
		return err
	}
	if m.SaBtc, err = readPubKeyCompressed(r); err != nil {
		return err
	}
	if _, err = io.ReadFull(r, m.SaEd[:]); err != nil {
		return err
	}
	if m.DLEQProofA, err = readVarBytes(r); err != nil {
		return err
	}
	if m.AliceRedeemAddr, err = readString(r); err != nil {
		return err
	}
	if m.AlicePunishAddr, err = readString(r); err != nil {
		return err
	}
	if m.TCancel, err = readUint32(r); err != nil {
		return err
	}
	m.TPunish, err = readUint32(r)
	return err
}

// SwapResponse is Bob's round-2 handshake payload: his share of every
// key, his DLEQ proof, his refund address, and the TxLock output
// descriptor both sides will build the downstream transactions from.
type SwapResponse struct {
	SwapID            swapid.ID
	B                 [33]byte // Bob's TxLock multisig key
	SbBtc             [33]byte // S_b on secp256k1
	SbEd              [32]byte // S_b on ed25519, compressed
	DLEQProofB        []byte
	BobRefundAddr     string
	LockTxID          [32]byte
	LockOutputIndex   uint32
	LockValue         int64
	LockWitnessScript []byte
}

func (m *SwapResponse) MsgType() MessageType { return MsgSwapResponse }

func (m *SwapResponse) Encode(w io.Writer, pver uint32) error {
	if err := writeSwapID(w, m.SwapID); err != nil {
		return err
	}
	if err := writePubKeyCompressed(w, m.B[:]); err != nil {
		return err
	}
	if err := writePubKeyCompressed(w, m.SbBtc[:]); err != nil {
		return err
	}
	if _, err := w.Write(m.SbEd[:]); err != nil {
		return err
	}
	if err := writeVarBytes(w, m.DLEQProofB); err != nil {
		return err
	}
	if err := writeString(w, m.BobRefundAddr); err != nil {
		return err
	}
	if _, err := w.Write(m.LockTxID[:]); err != nil {
		return err
	}
	if err := writeUint32(w, m.LockOutputIndex); err != nil {
		return err
	}
	if err := writeInt64(w, m.LockValue); err != nil {
		return err
	}
	return writeVarBytes(w, m.LockWitnessScript)
}

func (m *SwapResponse) Decode(r io.Reader, pver uint32) error {
	var err error
	if m.SwapID, err = readSwapID(r); err != nil {
		return err
	}
	if m.B, err = readPubKeyCompressed(r); err != nil {
		return err
	}
	if m.SbBtc, err = readPubKeyCompressed(r); err != nil {
		return err
	}
	if _, err = io.ReadFull(r, m.SbEd[:]); err != nil {
		return err
	}
	if m.DLEQProofB, err = readVarBytes(r); err != nil {
		return err
	}
	if m.BobRefundAddr, err = readString(r); err != nil {
		return err
	}
	if _, err = io.ReadFull(r, m.LockTxID[:]); err != nil {
		return err
	}
	if m.LockOutputIndex, err = readUint32(r); err != nil {
		return err
	}
	if m.LockValue, err = readInt64(r); err != nil {
		return err
	}
	m.LockWitnessScript, err = readVarBytes(r)
	return err
}

// TxLockProof carries the fully signed TxLock, sent once its owner has
// broadcast it, so the counterparty need not poll a block explorer to
// learn its witness.
type TxLockProof struct {
	SwapID swapid.ID
	RawTx  []byte
}

func (m *TxLockProof) MsgType() MessageType { return MsgTxLockProof }

func (m *TxLockProof) Encode(w io.Writer, pver uint32) error {
	if err := writeSwapID(w, m.SwapID); err != nil {
		return err
	}
	return writeVarBytes(w, m.RawTx)
}

func (m *TxLockProof) Decode(r io.Reader, pver uint32) error {
	var err error
	if m.SwapID, err = readSwapID(r); err != nil {
		return err
	}
	m.RawTx, err = readVarBytes(r)
	return err
}

// XmrTransferProof carries Alice's proof that her Monero lock
// transaction pays the joint S_a+S_b output, so Bob can verify it
// without his own synced Monero daemon trusting Alice's word alone.
type XmrTransferProof struct {
	SwapID swapid.ID
	TxID   string
	Proof  []byte
}

func (m *XmrTransferProof) MsgType() MessageType { return MsgXmrTransferProof }

func (m *XmrTransferProof) Encode(w io.Writer, pver uint32) error {
	if err := writeSwapID(w, m.SwapID); err != nil {
		return err
	}
	if err := writeString(w, m.TxID); err != nil {
		return err
	}
	return writeVarBytes(w, m.Proof)
}

func (m *XmrTransferProof) Decode(r io.Reader, pver uint32) error {
	var err error
	if m.SwapID, err = readSwapID(r); err != nil {
		return err
	}
	if m.TxID, err = readString(r); err != nil {
		return err
	}
	m.Proof, err = readVarBytes(r)
	return err
}

// EncSigRedeem carries Bob's adaptor-encrypted signature over TxRedeem,
// encrypted under S_a, the payload that lets Alice redeem and that
// leaks s_a to Bob only once she does.
type EncSigRedeem struct {
	SwapID swapid.ID
	EncSig []byte // marshaled xmrbtccrypto.EncSignature
}

func (m *EncSigRedeem) MsgType() MessageType { return MsgEncSigRedeem }

func (m *EncSigRedeem) Encode(w io.Writer, pver uint32) error {
	if err := writeSwapID(w, m.SwapID); err != nil {
		return err
	}
	return writeVarBytes(w, m.EncSig)
}

func (m *EncSigRedeem) Decode(r io.Reader, pver uint32) error {
	var err error
	if m.SwapID, err = readSwapID(r); err != nil {
		return err
	}
	m.EncSig, err = readVarBytes(r)
	return err
}

// EncSigRefund carries Alice's adaptor-encrypted signature over
// TxRefund, encrypted under S_b, the symmetric counterpart to
// EncSigRedeem that lets Bob refund after cancellation.
type EncSigRefund struct {
	SwapID swapid.ID
	EncSig []byte
}

func (m *EncSigRefund) MsgType() MessageType { return MsgEncSigRefund }

func (m *EncSigRefund) Encode(w io.Writer, pver uint32) error {
	if err := writeSwapID(w, m.SwapID); err != nil {
		return err
	}
	return writeVarBytes(w, m.EncSig)
}

func (m *EncSigRefund) Decode(r io.Reader, pver uint32) error {
	var err error
	if m.SwapID, err = readSwapID(r); err != nil {
		return err
	}
	m.EncSig, err = readVarBytes(r)
	return err
}

// SigCancel carries a plain (non-adaptor) signature over TxCancel.
// Both parties exchange one each during the handshake so either can
// complete and broadcast TxCancel unilaterally once T_cancel elapses.
type SigCancel struct {
	SwapID swapid.ID
	Sig    []byte // DER-encoded
}

func (m *SigCancel) MsgType() MessageType { return MsgSigCancel }

func (m *SigCancel) Encode(w io.Writer, pver uint32) error {
	if err := writeSwapID(w, m.SwapID); err != nil {
		return err
	}
	return writeVarBytes(w, m.Sig)
}

func (m *SigCancel) Decode(r io.Reader, pver uint32) error {
	var err error
	if m.SwapID, err = readSwapID(r); err != nil {
		return err
	}
	m.Sig, err = readVarBytes(r)
	return err
}

// SigPunish carries Bob's plain signature over TxPunish, handed to
// Alice during the handshake so she alone can complete and broadcast
// it if Bob never refunds within T_punish.
type SigPunish struct {
	SwapID swapid.ID
	Sig    []byte
}

func (m *SigPunish) MsgType() MessageType { return MsgSigPunish }

func (m *SigPunish) Encode(w io.Writer, pver uint32) error {
	if err := writeSwapID(w, m.SwapID); err != nil {
		return err
	}
	return writeVarBytes(w, m.Sig)
}

func (m *SigPunish) Decode(r io.Reader, pver uint32) error {
	var err error
	if m.SwapID, err = readSwapID(r); err != nil {
		return err
	}
	m.Sig, err = readVarBytes(r)
	return err
}

// SwapAck is a generic positive acknowledgement, used where the
// protocol needs a receipt but carries no further payload (e.g.
// confirming XmrTransferProof was accepted).
type SwapAck struct {
	SwapID swapid.ID
}

func (m *SwapAck) MsgType() MessageType { return MsgSwapAck }

func (m *SwapAck) Encode(w io.Writer, pver uint32) error {
	return writeSwapID(w, m.SwapID)
}

func (m *SwapAck) Decode(r io.Reader, pver uint32) error {
	var err error
	m.SwapID, err = readSwapID(r)
	return err
}

// SwapFail aborts a swap still in its handshake phase (before TxLock
// funds move), carrying a human-readable reason for logging.
type SwapFail struct {
	SwapID swapid.ID
	Reason string
}

func (m *SwapFail) MsgType() MessageType { return MsgSwapFail }

func (m *SwapFail) Encode(w io.Writer, pver uint32) error {
	if err := writeSwapID(w, m.SwapID); err != nil {
		return err
	}
	return writeString(w, m.Reason)
}

func (m *SwapFail) Decode(r io.Reader, pver uint32) error {
	var err error
	if m.SwapID, err = readSwapID(r); err != nil {
		return err
	}
	m.Reason, err = readString(r)
	return err
}
