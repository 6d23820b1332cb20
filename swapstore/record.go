package swapstore

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/btcxmr/swapcore/swapid"
	"github.com/btcxmr/swapcore/swapstate"
)

// Role distinguishes which automaton a persisted record belongs to.
type Role byte

const (
	RoleAlice Role = 1
	RoleBob   Role = 2
)

// StateKind tags a record's concrete swapstate type, so it can be
// decoded back into the right Go type without relying on gob's
// interface registry (several state fields — btcutil.Address,
// xmrbtccrypto's curve points — have no gob-friendly representation,
// so this package rolls its own tagged encoding instead, the same
// choice xmrbtccrypto/marshal.go and swapwire/messages.go made for the
// same reason).
type StateKind uint16

const (
	KindAliceStarted StateKind = iota + 1
	KindAliceXmrLocked
	KindAliceEncSigLearned
	KindAliceBtcRedeemed
	KindAliceCancelTimelockExpired
	KindAliceBtcCancelled
	KindAliceBtcRefunded
	KindAliceXmrRefunded
	KindAliceBtcPunishable
	KindAliceBtcPunished

	KindBobStarted
	KindBobBtcLocked
	KindBobXmrLockProofReceived
	KindBobXmrLocked
	KindBobEncSigSent
	KindBobCancelTimelockExpired
	KindBobBtcCancelled
	KindBobBtcRefunded
	KindBobBtcPunished
	KindBobXmrRedeemed
)

// Record is one swap's persisted snapshot: its id, which automaton it
// belongs to, and its current state value.
type Record struct {
	SwapID swapid.ID
	Role   Role
	// State holds an swapstate.AliceState or swapstate.BobState value,
	// matching Role.
	State interface{}
}

// Encode serializes rec as: version byte, swap id, role byte, state
// kind, then the kind-specific payload.
func Encode(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(recordVersion)
	if err := writeSwapID(&buf, rec.SwapID); err != nil {
		return nil, err
	}
	buf.WriteByte(byte(rec.Role))

	kind, err := kindOf(rec.State)
	if err != nil {
		return nil, err
	}
	if err := writeUint16(&buf, uint16(kind)); err != nil {
		return nil, err
	}
	if err := encodeState(&buf, kind, rec.State); err != nil {
		return nil, fmt.Errorf("encoding state %v: %w", kind, err)
	}
	return buf.Bytes(), nil
}

// Decode parses a Record previously produced by Encode. params is
// needed to decode the embedded Bitcoin addresses.
func Decode(data []byte, params *chaincfg.Params) (Record, error) {
	var rec Record
	r := bytes.NewReader(data)

	ver, err := r.ReadByte()
	if err != nil {
		return rec, err
	}
	if ver != recordVersion {
		return rec, fmt.Errorf("unsupported swap record version %d", ver)
	}

	if rec.SwapID, err = readSwapID(r); err != nil {
		return rec, err
	}
	roleByte, err := r.ReadByte()
	if err != nil {
		return rec, err
	}
	rec.Role = Role(roleByte)

	kindRaw, err := readUint16(r)
	if err != nil {
		return rec, err
	}
	kind := StateKind(kindRaw)

	rec.State, err = decodeState(r, kind, params)
	if err != nil {
		return rec, fmt.Errorf("decoding state %v: %w", kind, err)
	}
	return rec, nil
}

func kindOf(state interface{}) (StateKind, error) {
	switch state.(type) {
	case swapstate.AliceStarted:
		return KindAliceStarted, nil
	case swapstate.AliceXmrLocked:
		return KindAliceXmrLocked, nil
	case swapstate.AliceEncSigLearned:
		return KindAliceEncSigLearned, nil
	case swapstate.AliceBtcRedeemed:
		return KindAliceBtcRedeemed, nil
	case swapstate.AliceCancelTimelockExpired:
		return KindAliceCancelTimelockExpired, nil
	case swapstate.AliceBtcCancelled:
		return KindAliceBtcCancelled, nil
	case swapstate.AliceBtcRefunded:
		return KindAliceBtcRefunded, nil
	case swapstate.AliceXmrRefunded:
		return KindAliceXmrRefunded, nil
	case swapstate.AliceBtcPunishable:
		return KindAliceBtcPunishable, nil
	case swapstate.AliceBtcPunished:
		return KindAliceBtcPunished, nil
	case swapstate.BobStarted:
		return KindBobStarted, nil
	case swapstate.BobBtcLocked:
		return KindBobBtcLocked, nil
	case swapstate.BobXmrLockProofReceived:
		return KindBobXmrLockProofReceived, nil
	case swapstate.BobXmrLocked:
		return KindBobXmrLocked, nil
	case swapstate.BobEncSigSent:
		return KindBobEncSigSent, nil
	case swapstate.BobCancelTimelockExpired:
		return KindBobCancelTimelockExpired, nil
	case swapstate.BobBtcCancelled:
		return KindBobBtcCancelled, nil
	case swapstate.BobBtcRefunded:
		return KindBobBtcRefunded, nil
	case swapstate.BobBtcPunished:
		return KindBobBtcPunished, nil
	case swapstate.BobXmrRedeemed:
		return KindBobXmrRedeemed, nil
	default:
		return 0, fmt.Errorf("unrecognized swap state type %T", state)
	}
}

func encodeState(w io.Writer, kind StateKind, state interface{}) error {
	switch kind {
	case KindAliceStarted:
		s := state.(swapstate.AliceStarted)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		if err := writeSpendScalar(w, s.SpendScalar); err != nil {
			return err
		}
		return writeMyKey(w, s.MyKey)

	case KindAliceXmrLocked:
		s := state.(swapstate.AliceXmrLocked)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		if err := writeSpendScalar(w, s.SpendScalar); err != nil {
			return err
		}
		if err := writeMyKey(w, s.MyKey); err != nil {
			return err
		}
		if err := writeUint32(w, s.LockHeight); err != nil {
			return err
		}
		return writeString(w, s.XmrLockTxID)

	case KindAliceEncSigLearned:
		s := state.(swapstate.AliceEncSigLearned)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		if err := writeSpendScalar(w, s.SpendScalar); err != nil {
			return err
		}
		if err := writeMyKey(w, s.MyKey); err != nil {
			return err
		}
		if err := writeUint32(w, s.LockHeight); err != nil {
			return err
		}
		if err := writeString(w, s.XmrLockTxID); err != nil {
			return err
		}
		if err := writeEncSig(w, s.EncSigRedeem); err != nil {
			return err
		}
		if err := writeVarBytes(w, s.SigCancelBob); err != nil {
			return err
		}
		return writeVarBytes(w, s.SigPunishBob)

	case KindAliceBtcRedeemed:
		s := state.(swapstate.AliceBtcRedeemed)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		return writeHash(w, s.TxID)

	case KindAliceCancelTimelockExpired:
		s := state.(swapstate.AliceCancelTimelockExpired)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		if err := writeSpendScalar(w, s.SpendScalar); err != nil {
			return err
		}
		if err := writeMyKey(w, s.MyKey); err != nil {
			return err
		}
		if err := writeEncSig(w, s.EncSigRedeem); err != nil {
			return err
		}
		if err := writeVarBytes(w, s.SigCancelBob); err != nil {
			return err
		}
		return writeVarBytes(w, s.SigPunishBob)

	case KindAliceBtcCancelled:
		s := state.(swapstate.AliceBtcCancelled)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		if err := writeSpendScalar(w, s.SpendScalar); err != nil {
			return err
		}
		if err := writeMyKey(w, s.MyKey); err != nil {
			return err
		}
		if err := writeCancelOutput(w, s.CancelOut); err != nil {
			return err
		}
		return writeVarBytes(w, s.SigPunishBob)

	case KindAliceBtcRefunded:
		s := state.(swapstate.AliceBtcRefunded)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		if err := writeHash(w, s.RefundTxID); err != nil {
			return err
		}
		return writeSpendScalar(w, s.SharedScalar)

	case KindAliceXmrRefunded:
		s := state.(swapstate.AliceXmrRefunded)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		return writeString(w, s.SweepTxID)

	case KindAliceBtcPunishable:
		s := state.(swapstate.AliceBtcPunishable)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		if err := writeMyKey(w, s.MyKey); err != nil {
			return err
		}
		if err := writeCancelOutput(w, s.CancelOut); err != nil {
			return err
		}
		return writeVarBytes(w, s.SigPunishBob)

	case KindAliceBtcPunished:
		s := state.(swapstate.AliceBtcPunished)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		return writeHash(w, s.TxID)

	case KindBobStarted:
		s := state.(swapstate.BobStarted)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		if err := writeSpendScalar(w, s.SpendScalar); err != nil {
			return err
		}
		return writeMyKey(w, s.MyKey)

	case KindBobBtcLocked:
		s := state.(swapstate.BobBtcLocked)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		if err := writeSpendScalar(w, s.SpendScalar); err != nil {
			return err
		}
		if err := writeMyKey(w, s.MyKey); err != nil {
			return err
		}
		return writeUint32(w, s.LockHeight)

	case KindBobXmrLockProofReceived:
		s := state.(swapstate.BobXmrLockProofReceived)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		if err := writeSpendScalar(w, s.SpendScalar); err != nil {
			return err
		}
		if err := writeMyKey(w, s.MyKey); err != nil {
			return err
		}
		if err := writeUint32(w, s.LockHeight); err != nil {
			return err
		}
		return writeString(w, s.XmrLockTxID)

	case KindBobXmrLocked:
		s := state.(swapstate.BobXmrLocked)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		if err := writeSpendScalar(w, s.SpendScalar); err != nil {
			return err
		}
		if err := writeMyKey(w, s.MyKey); err != nil {
			return err
		}
		if err := writeUint32(w, s.LockHeight); err != nil {
			return err
		}
		return writeString(w, s.XmrLockTxID)

	case KindBobEncSigSent:
		s := state.(swapstate.BobEncSigSent)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		if err := writeSpendScalar(w, s.SpendScalar); err != nil {
			return err
		}
		if err := writeMyKey(w, s.MyKey); err != nil {
			return err
		}
		if err := writeUint32(w, s.LockHeight); err != nil {
			return err
		}
		if err := writeString(w, s.XmrLockTxID); err != nil {
			return err
		}
		return writeEncSig(w, s.EncSigRedeemSent)

	case KindBobCancelTimelockExpired:
		s := state.(swapstate.BobCancelTimelockExpired)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		if err := writeSpendScalar(w, s.SpendScalar); err != nil {
			return err
		}
		if err := writeMyKey(w, s.MyKey); err != nil {
			return err
		}
		return writeEncSig(w, s.EncSigRedeemSent)

	case KindBobBtcCancelled:
		s := state.(swapstate.BobBtcCancelled)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		if err := writeSpendScalar(w, s.SpendScalar); err != nil {
			return err
		}
		if err := writeMyKey(w, s.MyKey); err != nil {
			return err
		}
		return writeCancelOutput(w, s.CancelOut)

	case KindBobBtcRefunded:
		s := state.(swapstate.BobBtcRefunded)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		return writeHash(w, s.TxID)

	case KindBobBtcPunished:
		s := state.(swapstate.BobBtcPunished)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		return writeHash(w, s.TxID)

	case KindBobXmrRedeemed:
		s := state.(swapstate.BobXmrRedeemed)
		if err := writeParams(w, s.Params); err != nil {
			return err
		}
		if err := writeHash(w, s.TxLockID); err != nil {
			return err
		}
		if err := writeString(w, s.SweepTxID); err != nil {
			return err
		}
		return writeString(w, s.XmrLockTxID)

	default:
		return fmt.Errorf("unrecognized state kind %v", kind)
	}
}

func decodeState(r io.Reader, kind StateKind, cp *chaincfg.Params) (interface{}, error) {
	switch kind {
	case KindAliceStarted:
		var s swapstate.AliceStarted
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		if s.SpendScalar, err = readSpendScalar(r); err != nil {
			return nil, err
		}
		s.MyKey, err = readMyKey(r)
		return s, err

	case KindAliceXmrLocked:
		var s swapstate.AliceXmrLocked
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		if s.SpendScalar, err = readSpendScalar(r); err != nil {
			return nil, err
		}
		if s.MyKey, err = readMyKey(r); err != nil {
			return nil, err
		}
		if s.LockHeight, err = readUint32(r); err != nil {
			return nil, err
		}
		s.XmrLockTxID, err = readString(r)
		return s, err

	case KindAliceEncSigLearned:
		var s swapstate.AliceEncSigLearned
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		if s.SpendScalar, err = readSpendScalar(r); err != nil {
			return nil, err
		}
		if s.MyKey, err = readMyKey(r); err != nil {
			return nil, err
		}
		if s.LockHeight, err = readUint32(r); err != nil {
			return nil, err
		}
		if s.XmrLockTxID, err = readString(r); err != nil {
			return nil, err
		}
		if s.EncSigRedeem, err = readEncSig(r); err != nil {
			return nil, err
		}
		if s.SigCancelBob, err = readVarBytes(r); err != nil {
			return nil, err
		}
		s.SigPunishBob, err = readVarBytes(r)
		return s, err

	case KindAliceBtcRedeemed:
		var s swapstate.AliceBtcRedeemed
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		s.TxID, err = readHash(r)
		return s, err

	case KindAliceCancelTimelockExpired:
		var s swapstate.AliceCancelTimelockExpired
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		if s.SpendScalar, err = readSpendScalar(r); err != nil {
			return nil, err
		}
		if s.MyKey, err = readMyKey(r); err != nil {
			return nil, err
		}
		if s.EncSigRedeem, err = readEncSig(r); err != nil {
			return nil, err
		}
		if s.SigCancelBob, err = readVarBytes(r); err != nil {
			return nil, err
		}
		s.SigPunishBob, err = readVarBytes(r)
		return s, err

	case KindAliceBtcCancelled:
		var s swapstate.AliceBtcCancelled
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		if s.SpendScalar, err = readSpendScalar(r); err != nil {
			return nil, err
		}
		if s.MyKey, err = readMyKey(r); err != nil {
			return nil, err
		}
		if s.CancelOut, err = readCancelOutput(r); err != nil {
			return nil, err
		}
		s.SigPunishBob, err = readVarBytes(r)
		return s, err

	case KindAliceBtcRefunded:
		var s swapstate.AliceBtcRefunded
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		if s.RefundTxID, err = readHash(r); err != nil {
			return nil, err
		}
		s.SharedScalar, err = readSpendScalar(r)
		return s, err

	case KindAliceXmrRefunded:
		var s swapstate.AliceXmrRefunded
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		s.SweepTxID, err = readString(r)
		return s, err

	case KindAliceBtcPunishable:
		var s swapstate.AliceBtcPunishable
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		if s.MyKey, err = readMyKey(r); err != nil {
			return nil, err
		}
		if s.CancelOut, err = readCancelOutput(r); err != nil {
			return nil, err
		}
		s.SigPunishBob, err = readVarBytes(r)
		return s, err

	case KindAliceBtcPunished:
		var s swapstate.AliceBtcPunished
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		s.TxID, err = readHash(r)
		return s, err

	case KindBobStarted:
		var s swapstate.BobStarted
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		if s.SpendScalar, err = readSpendScalar(r); err != nil {
			return nil, err
		}
		s.MyKey, err = readMyKey(r)
		return s, err

	case KindBobBtcLocked:
		var s swapstate.BobBtcLocked
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		if s.SpendScalar, err = readSpendScalar(r); err != nil {
			return nil, err
		}
		if s.MyKey, err = readMyKey(r); err != nil {
			return nil, err
		}
		s.LockHeight, err = readUint32(r)
		return s, err

	case KindBobXmrLockProofReceived:
		var s swapstate.BobXmrLockProofReceived
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		if s.SpendScalar, err = readSpendScalar(r); err != nil {
			return nil, err
		}
		if s.MyKey, err = readMyKey(r); err != nil {
			return nil, err
		}
		if s.LockHeight, err = readUint32(r); err != nil {
			return nil, err
		}
		s.XmrLockTxID, err = readString(r)
		return s, err

	case KindBobXmrLocked:
		var s swapstate.BobXmrLocked
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		if s.SpendScalar, err = readSpendScalar(r); err != nil {
			return nil, err
		}
		if s.MyKey, err = readMyKey(r); err != nil {
			return nil, err
		}
		if s.LockHeight, err = readUint32(r); err != nil {
			return nil, err
		}
		s.XmrLockTxID, err = readString(r)
		return s, err

	case KindBobEncSigSent:
		var s swapstate.BobEncSigSent
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		if s.SpendScalar, err = readSpendScalar(r); err != nil {
			return nil, err
		}
		if s.MyKey, err = readMyKey(r); err != nil {
			return nil, err
		}
		if s.LockHeight, err = readUint32(r); err != nil {
			return nil, err
		}
		if s.XmrLockTxID, err = readString(r); err != nil {
			return nil, err
		}
		s.EncSigRedeemSent, err = readEncSig(r)
		return s, err

	case KindBobCancelTimelockExpired:
		var s swapstate.BobCancelTimelockExpired
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		if s.SpendScalar, err = readSpendScalar(r); err != nil {
			return nil, err
		}
		if s.MyKey, err = readMyKey(r); err != nil {
			return nil, err
		}
		s.EncSigRedeemSent, err = readEncSig(r)
		return s, err

	case KindBobBtcCancelled:
		var s swapstate.BobBtcCancelled
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		if s.SpendScalar, err = readSpendScalar(r); err != nil {
			return nil, err
		}
		if s.MyKey, err = readMyKey(r); err != nil {
			return nil, err
		}
		s.CancelOut, err = readCancelOutput(r)
		return s, err

	case KindBobBtcRefunded:
		var s swapstate.BobBtcRefunded
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		s.TxID, err = readHash(r)
		return s, err

	case KindBobBtcPunished:
		var s swapstate.BobBtcPunished
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		s.TxID, err = readHash(r)
		return s, err

	case KindBobXmrRedeemed:
		var s swapstate.BobXmrRedeemed
		var err error
		if s.Params, err = readParams(r, cp); err != nil {
			return nil, err
		}
		if s.TxLockID, err = readHash(r); err != nil {
			return nil, err
		}
		if s.SweepTxID, err = readString(r); err != nil {
			return nil, err
		}
		s.XmrLockTxID, err = readString(r)
		return s, err

	default:
		return nil, fmt.Errorf("unrecognized state kind %v", kind)
	}
}
