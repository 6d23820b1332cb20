package swapwire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcxmr/swapcore/swapid"
)

// maxBlobSize bounds any single length-prefixed variable field, large
// enough to carry a marshaled DLEQProof (~57KB) with headroom.
const maxBlobSize = 1 << 20

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
	return writeUint64(w, uint64(v))
}

func readInt64(r io.Reader) (int64, error) {
	v, err := readUint64(r)
	return int64(v), err
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

func writeSwapID(w io.Writer, id swapid.ID) error {
	_, err := w.Write(id[:])
	return err
}

func readSwapID(r io.Reader) (swapid.ID, error) {
	var id swapid.ID
	_, err := io.ReadFull(r, id[:])
	return id, err
}

func writeVarBytes(w io.Writer, b []byte) error {
	if len(b) > maxBlobSize {
		return fmt.Errorf("field of %d bytes exceeds maximum %d", len(b), maxBlobSize)
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
	if n > maxBlobSize {
		return nil, fmt.Errorf("declared field length %d exceeds maximum %d", n, maxBlobSize)
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

// writePubKeyCompressed writes a compressed secp256k1 public key, which
// the caller has already serialized.
func writePubKeyCompressed(w io.Writer, compressed []byte) error {
	if len(compressed) != 33 {
		return fmt.Errorf("expected 33-byte compressed pubkey, got %d", len(compressed))
	}
	_, err := w.Write(compressed)
	return err
}

func readPubKeyCompressed(r io.Reader) ([33]byte, error) {
	var buf [33]byte
	_, err := io.ReadFull(r, buf[:])
	return buf, err
}
