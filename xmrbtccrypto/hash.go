package xmrbtccrypto

import (
	"crypto/sha256"
	"hash"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// transcriptHasher accumulates a Fiat-Shamir transcript for the
// same-curve Chaum-Pedersen proof embedded in an encrypted signature.
type transcriptHasher struct {
	h hash.Hash
}

func newAdaptorHasher() *transcriptHasher {
	return &transcriptHasher{h: sha256.New()}
}

func (t *transcriptHasher) write(b []byte) {
	t.h.Write(b)
}

func (t *transcriptHasher) writeField(f *secp256k1.FieldVal) {
	b := f.Bytes()
	t.h.Write(b[:])
}

func (t *transcriptHasher) sum() []byte {
	return t.h.Sum(nil)
}
