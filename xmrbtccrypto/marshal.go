package xmrbtccrypto

import (
	"bytes"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// MarshalBinary encodes a DLEQProof as a fixed-layout sequence of
// per-bit commitments (ed25519 point, secp256k1 compressed point, two
// 16-byte challenges, four scalar responses) followed by the two
// blinding-factor sums, matching the framing swapwire uses for
// EncSigRedeem/EncSigRefund-adjacent handshake messages.
func (p *DLEQProof) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	for i := range p.bits {
		bc := &p.bits[i]
		buf.Write(bc.cEd.Bytes())

		k1Pub := btcec.NewPublicKey(&bc.cK1.X, &bc.cK1.Y)
		buf.Write(k1Pub.SerializeCompressed())

		buf.Write(bc.c0[:])
		buf.Write(bc.c1[:])
		buf.Write(bc.z0Ed.Bytes())
		buf.Write(bc.z1Ed.Bytes())
		buf.Write(bc.z0K1.Bytes()[:])
		buf.Write(bc.z1K1.Bytes()[:])
	}

	buf.Write(p.blindSumE.Bytes())
	buf.Write(p.blindSumK.Bytes()[:])

	return buf.Bytes(), nil
}

// bitCommitmentEncodedSize is the byte length of one marshaled
// bitCommitment: 32 (cEd) + 33 (cK1 compressed) + 16 + 16 (challenges) +
// 32*2 (ed responses) + 32*2 (k1 responses).
const bitCommitmentEncodedSize = 32 + 33 + challengeBytes*2 + 32*2 + 32*2

// UnmarshalBinary decodes a DLEQProof previously produced by
// MarshalBinary.
func (p *DLEQProof) UnmarshalBinary(data []byte) error {
	want := dleqBits*bitCommitmentEncodedSize + 32 + 32
	if len(data) != want {
		return fmt.Errorf("invalid DLEQProof encoding: got %d bytes, want %d", len(data), want)
	}

	bits := make([]bitCommitment, dleqBits)
	off := 0
	for i := 0; i < dleqBits; i++ {
		var bc bitCommitment

		edPoint, err := new(edwards25519.Point).SetBytes(data[off : off+32])
		if err != nil {
			return fmt.Errorf("decoding bit %d cEd: %w", i, err)
		}
		bc.cEd = edPoint
		off += 32

		k1Pub, err := btcec.ParsePubKey(data[off : off+33])
		if err != nil {
			return fmt.Errorf("decoding bit %d cK1: %w", i, err)
		}
		k1Pub.AsJacobian(&bc.cK1)
		off += 33

		copy(bc.c0[:], data[off:off+challengeBytes])
		off += challengeBytes
		copy(bc.c1[:], data[off:off+challengeBytes])
		off += challengeBytes

		z0Ed, err := new(edwards25519.Scalar).SetCanonicalBytes(data[off : off+32])
		if err != nil {
			return fmt.Errorf("decoding bit %d z0Ed: %w", i, err)
		}
		bc.z0Ed = z0Ed
		off += 32

		z1Ed, err := new(edwards25519.Scalar).SetCanonicalBytes(data[off : off+32])
		if err != nil {
			return fmt.Errorf("decoding bit %d z1Ed: %w", i, err)
		}
		bc.z1Ed = z1Ed
		off += 32

		z0K1 := new(secp256k1.ModNScalar)
		z0K1.SetByteSlice(data[off : off+32])
		bc.z0K1 = z0K1
		off += 32

		z1K1 := new(secp256k1.ModNScalar)
		z1K1.SetByteSlice(data[off : off+32])
		bc.z1K1 = z1K1
		off += 32

		bits[i] = bc
	}

	blindSumE, err := new(edwards25519.Scalar).SetCanonicalBytes(data[off : off+32])
	if err != nil {
		return fmt.Errorf("decoding blindSumE: %w", err)
	}
	off += 32

	blindSumK := new(secp256k1.ModNScalar)
	blindSumK.SetByteSlice(data[off : off+32])

	p.bits = bits
	p.blindSumE = blindSumE
	p.blindSumK = blindSumK
	return nil
}

// MarshalBinary encodes an encrypted signature.
func (s *EncSignature) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	buf.Write(s.RPrime.SerializeCompressed())
	buf.Write(s.R.Bytes()[:])
	buf.Write(s.SPrime.Bytes()[:])

	if s.Proof == nil {
		return nil, fmt.Errorf("encrypted signature missing its adaptor proof")
	}
	tPub := btcec.NewPublicKey(&s.Proof.t.X, &s.Proof.t.Y)
	uPub := btcec.NewPublicKey(&s.Proof.u.X, &s.Proof.u.Y)
	buf.Write(tPub.SerializeCompressed())
	buf.Write(uPub.SerializeCompressed())
	buf.Write(s.Proof.c.Bytes()[:])
	buf.Write(s.Proof.z.Bytes()[:])

	return buf.Bytes(), nil
}

// encSignatureEncodedSize is the byte length of a marshaled
// EncSignature: 33 (R') + 32 (r) + 32 (s') + 33 (t) + 33 (u) + 32 (c) +
// 32 (z).
const encSignatureEncodedSize = 33 + 32 + 32 + 33 + 33 + 32 + 32

// UnmarshalBinary decodes an EncSignature previously produced by
// MarshalBinary.
func (s *EncSignature) UnmarshalBinary(data []byte) error {
	if len(data) != encSignatureEncodedSize {
		return fmt.Errorf("invalid EncSignature encoding: got %d bytes, want %d",
			len(data), encSignatureEncodedSize)
	}

	off := 0
	rPrime, err := btcec.ParsePubKey(data[off : off+33])
	if err != nil {
		return fmt.Errorf("decoding R': %w", err)
	}
	off += 33

	r := new(secp256k1.ModNScalar)
	r.SetByteSlice(data[off : off+32])
	off += 32

	sPrime := new(secp256k1.ModNScalar)
	sPrime.SetByteSlice(data[off : off+32])
	off += 32

	tPub, err := btcec.ParsePubKey(data[off : off+33])
	if err != nil {
		return fmt.Errorf("decoding proof t: %w", err)
	}
	off += 33
	uPub, err := btcec.ParsePubKey(data[off : off+33])
	if err != nil {
		return fmt.Errorf("decoding proof u: %w", err)
	}
	off += 33

	c := new(secp256k1.ModNScalar)
	c.SetByteSlice(data[off : off+32])
	off += 32
	z := new(secp256k1.ModNScalar)
	z.SetByteSlice(data[off : off+32])

	var tJac, uJac secp256k1.JacobianPoint
	tPub.AsJacobian(&tJac)
	uPub.AsJacobian(&uJac)

	s.RPrime = rPrime
	s.R = r
	s.SPrime = sPrime
	s.Proof = &adaptorProof{t: &tJac, u: &uJac, c: c, z: z}
	return nil
}

// MarshalBinary encodes an ordinary (decrypted/plain) signature as its
// two 32-byte scalars.
func (s *Signature) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(s.R.Bytes()[:])
	buf.Write(s.S.Bytes()[:])
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a Signature previously produced by
// MarshalBinary.
func (s *Signature) UnmarshalBinary(data []byte) error {
	if len(data) != 64 {
		return fmt.Errorf("invalid Signature encoding: got %d bytes, want 64", len(data))
	}
	r := new(secp256k1.ModNScalar)
	r.SetByteSlice(data[:32])
	sVal := new(secp256k1.ModNScalar)
	sVal.SetByteSlice(data[32:])
	s.R = r
	s.S = sVal
	return nil
}
