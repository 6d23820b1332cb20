package swapstore

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/btcxmr/swapcore/swapid"
	"github.com/btcxmr/swapcore/txbuilder"
	"github.com/btcxmr/swapcore/xmrbtccrypto"
)

// recordVersion is written as the first byte of every encoded record,
// so a record written under a different codec layout is recognised:
// Decode rejects any version byte other than this one. This borrows
// channeldb's dbVersions idiom at the record rather than
// whole-database granularity, without a migration list.
const recordVersion = 1

// maxFieldSize bounds any length-prefixed field, generous enough for a
// marshaled DLEQProof (~57KB).
const maxFieldSize = 1 << 20

func writeUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func writeInt64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return err
}

func readInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

func writeUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func writeBool(w io.Writer, b bool) error {
	var v byte
	if b {
		v = 1
	}
	_, err := w.Write([]byte{v})
	return err
}

func readBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

func writeVarBytes(w io.Writer, b []byte) error {
	if len(b) > maxFieldSize {
		return fmt.Errorf("field of %d bytes exceeds maximum %d", len(b), maxFieldSize)
	}
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readVarBytes(r io.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if n > maxFieldSize {
		return nil, fmt.Errorf("declared field length %d exceeds maximum %d", n, maxFieldSize)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeString(w io.Writer, s string) error {
	return writeVarBytes(w, []byte(s))
}

func readString(r io.Reader) (string, error) {
	b, err := readVarBytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeSwapID(w io.Writer, id swapid.ID) error {
	_, err := w.Write(id[:])
	return err
}

func readSwapID(r io.Reader) (swapid.ID, error) {
	var id swapid.ID
	_, err := io.ReadFull(r, id[:])
	return id, err
}

func writeHash(w io.Writer, h chainhash.Hash) error {
	_, err := w.Write(h[:])
	return err
}

func readHash(r io.Reader) (chainhash.Hash, error) {
	var h chainhash.Hash
	_, err := io.ReadFull(r, h[:])
	return h, err
}

func writePubKey(w io.Writer, k *btcec.PublicKey) error {
	_, err := w.Write(k.SerializeCompressed())
	return err
}

func readPubKey(r io.Reader) (*btcec.PublicKey, error) {
	var buf [33]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	return btcec.ParsePubKey(buf[:])
}

func writeEdPoint(w io.Writer, p *xmrbtccrypto.Ed25519Point) error {
	_, err := w.Write(p.Bytes())
	return err
}

func readEdPoint(r io.Reader) (*xmrbtccrypto.Ed25519Point, error) {
	var buf [32]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	return xmrbtccrypto.Ed25519PointFromBytes(buf[:])
}

func writeSpendScalar(w io.Writer, s *xmrbtccrypto.SpendScalar) error {
	raw := s.Bytes()
	_, err := w.Write(raw[:])
	return err
}

func readSpendScalar(r io.Reader) (*xmrbtccrypto.SpendScalar, error) {
	var raw [32]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, err
	}
	return xmrbtccrypto.SpendScalarFromBytes(raw)
}

func writeMyKey(w io.Writer, k *xmrbtccrypto.PrivateKeyK1) error {
	raw := k.Bytes()
	_, err := w.Write(raw[:])
	return err
}

func readMyKey(r io.Reader) (*xmrbtccrypto.PrivateKeyK1, error) {
	var raw [32]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, err
	}
	return xmrbtccrypto.PrivateKeyK1FromBytes(raw), nil
}

func writeAddress(w io.Writer, addr btcutil.Address) error {
	if addr == nil {
		return writeString(w, "")
	}
	return writeString(w, addr.EncodeAddress())
}

func readAddress(r io.Reader, params *chaincfg.Params) (btcutil.Address, error) {
	s, err := readString(r)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	return btcutil.DecodeAddress(s, params)
}

func writeAmount(w io.Writer, a btcutil.Amount) error {
	return writeInt64(w, int64(a))
}

func readAmount(r io.Reader) (btcutil.Amount, error) {
	v, err := readInt64(r)
	return btcutil.Amount(v), err
}

func writeOutPoint(w io.Writer, op wire.OutPoint) error {
	if err := writeHash(w, chainhash.Hash(op.Hash)); err != nil {
		return err
	}
	return writeUint32(w, op.Index)
}

func readOutPoint(r io.Reader) (wire.OutPoint, error) {
	h, err := readHash(r)
	if err != nil {
		return wire.OutPoint{}, err
	}
	idx, err := readUint32(r)
	if err != nil {
		return wire.OutPoint{}, err
	}
	return wire.OutPoint{Hash: chainhash.Hash(h), Index: idx}, nil
}

func writeLockOutput(w io.Writer, lo *txbuilder.LockOutput) error {
	if err := writeBool(w, lo != nil); err != nil {
		return err
	}
	if lo == nil {
		return nil
	}
	if err := writeOutPoint(w, lo.OutPoint); err != nil {
		return err
	}
	if err := writeAmount(w, lo.Value); err != nil {
		return err
	}
	if err := writeVarBytes(w, lo.WitnessScript); err != nil {
		return err
	}
	return writeVarBytes(w, lo.PkScript)
}

func readLockOutput(r io.Reader) (*txbuilder.LockOutput, error) {
	present, err := readBool(r)
	if err != nil || !present {
		return nil, err
	}
	op, err := readOutPoint(r)
	if err != nil {
		return nil, err
	}
	val, err := readAmount(r)
	if err != nil {
		return nil, err
	}
	ws, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	pk, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	return &txbuilder.LockOutput{OutPoint: op, Value: val, WitnessScript: ws, PkScript: pk}, nil
}

func writeCancelOutput(w io.Writer, co *txbuilder.CancelOutput) error {
	if err := writeBool(w, co != nil); err != nil {
		return err
	}
	if co == nil {
		return nil
	}
	if err := writeOutPoint(w, co.OutPoint); err != nil {
		return err
	}
	if err := writeAmount(w, co.Value); err != nil {
		return err
	}
	if err := writeVarBytes(w, co.WitnessScript); err != nil {
		return err
	}
	return writeVarBytes(w, co.PkScript)
}

func readCancelOutput(r io.Reader) (*txbuilder.CancelOutput, error) {
	present, err := readBool(r)
	if err != nil || !present {
		return nil, err
	}
	op, err := readOutPoint(r)
	if err != nil {
		return nil, err
	}
	val, err := readAmount(r)
	if err != nil {
		return nil, err
	}
	ws, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	pk, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	return &txbuilder.CancelOutput{OutPoint: op, Value: val, WitnessScript: ws, PkScript: pk}, nil
}

func writeEncSig(w io.Writer, sig *xmrbtccrypto.EncSignature) error {
	if err := writeBool(w, sig != nil); err != nil {
		return err
	}
	if sig == nil {
		return nil
	}
	b, err := sig.MarshalBinary()
	if err != nil {
		return err
	}
	return writeVarBytes(w, b)
}

func readEncSig(r io.Reader) (*xmrbtccrypto.EncSignature, error) {
	present, err := readBool(r)
	if err != nil || !present {
		return nil, err
	}
	b, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	sig := new(xmrbtccrypto.EncSignature)
	if err := sig.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return sig, nil
}
