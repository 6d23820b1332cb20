package xmrbtccrypto

import (
	"crypto/rand"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// spendScalarBytes is the size, in bytes, of the shared scalar s_a/s_b.
// The scalar is sampled from [0, 2^252), which is strictly below both the
// ed25519 group order L (~2^252.38) and the secp256k1 group order n
// (~2^256), so the *same* integer is a valid scalar on both curves with
// no modular reduction mismatch between them. This is what makes the
// cross-curve DLEQ proof in dleq.go possible.
const spendScalarBytes = 32

// spendScalarTopByteMask keeps only the low 4 bits of the top byte,
// bounding the sampled value to 252 bits.
const spendScalarTopByteMask = 0x0f

// PrivateKeyK1 is a secp256k1 signing key, e.g. Alice's `a` or Bob's `b`.
type PrivateKeyK1 struct {
	key *btcec.PrivateKey
}

// PubKey returns the associated public point.
func (p *PrivateKeyK1) PubKey() *btcec.PublicKey {
	return p.key.PubKey()
}

// Scalar exposes the underlying secp256k1 scalar for low-level adaptor
// signature math.
func (p *PrivateKeyK1) Scalar() *secp256k1.ModNScalar {
	return &p.key.Key
}

// Zero clears the private scalar from memory. swapfsm does not call
// it; the key's holder decides when it is no longer needed.
func (p *PrivateKeyK1) Zero() {
	p.key.Key.Zero()
}

// KeypairK1 generates a fresh secp256k1 signing keypair: `keypair_k1() ->
// (a, A)`.
func KeypairK1() (*PrivateKeyK1, *btcec.PublicKey, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("generating secp256k1 keypair: %w", err)
	}
	return &PrivateKeyK1{key: priv}, priv.PubKey(), nil
}

// Bytes returns the private key's canonical 32-byte encoding.
func (p *PrivateKeyK1) Bytes() [32]byte {
	var out [32]byte
	copy(out[:], p.key.Serialize())
	return out
}

// PrivateKeyK1FromBytes reconstructs a signing key from its canonical
// encoding, as produced by Bytes. Used to restore the multisig keys
// a/b from persisted state after a process restart.
func PrivateKeyK1FromBytes(raw [32]byte) *PrivateKeyK1 {
	return &PrivateKeyK1{key: btcec.PrivKeyFromBytes(raw[:])}
}

// SpendScalar is the shared ed25519/secp256k1 scalar s_a or s_b: the
// value that is split across the two curves via the DLEQ proof, and
// whose disclosure (via BTC redeem or refund) is the "adaptor linkage"
// that makes the swap atomic.
type SpendScalar struct {
	ed  *edwards25519.Scalar
	k1  *secp256k1.ModNScalar
	raw [spendScalarBytes]byte
}

// Bytes returns the canonical 32-byte big-endian encoding of the scalar.
func (s *SpendScalar) Bytes() [spendScalarBytes]byte {
	return s.raw
}

// Ed25519 returns the scalar's ed25519 representation, used to build the
// Monero spend/view key material.
func (s *SpendScalar) Ed25519() *edwards25519.Scalar {
	return s.ed
}

// Secp256k1 exposes the scalar's secp256k1 representation, used directly
// in the ECDSA adaptor signature math of adaptor.go.
func (s *SpendScalar) Secp256k1() *secp256k1.ModNScalar {
	return s.k1
}

// Zero clears the scalar from memory in all three representations.
func (s *SpendScalar) Zero() {
	for i := range s.raw {
		s.raw[i] = 0
	}
	s.k1.Zero()
	zero := new(edwards25519.Scalar)
	s.ed.Set(zero)
}

// Ed25519Point is S_a or S_b on curve25519: S_ed = s*G_ed.
type Ed25519Point struct {
	point *edwards25519.Point
}

// Bytes returns the 32-byte compressed encoding.
func (p *Ed25519Point) Bytes() []byte {
	return p.point.Bytes()
}

// Point exposes the raw edwards25519 point.
func (p *Ed25519Point) Point() *edwards25519.Point {
	return p.point
}

// KeypairEd generates the shared spend scalar and its paired images on
// both curves, together with a DLEQ proof binding them: `keypair_ed() ->
// (s, S_ed, S_k1, π)`.
func KeypairEd() (*SpendScalar, *Ed25519Point, *btcec.PublicKey, *DLEQProof, error) {
	raw, err := randomSpendScalarBytes()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	edScalar, err := new(edwards25519.Scalar).SetCanonicalBytes(reverse(raw[:]))
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("invalid ed25519 scalar: %w", err)
	}

	k1Scalar := new(secp256k1.ModNScalar)
	if overflow := k1Scalar.SetByteSlice(raw[:]); overflow {
		return nil, nil, nil, nil, fmt.Errorf("unexpected secp256k1 scalar overflow")
	}

	s := &SpendScalar{ed: edScalar, k1: k1Scalar, raw: raw}

	sEd := &Ed25519Point{point: new(edwards25519.Point).ScalarBaseMult(edScalar)}

	var k1Pub secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(k1Scalar, &k1Pub)
	k1Pub.ToAffine()
	sK1 := btcec.NewPublicKey(&k1Pub.X, &k1Pub.Y)

	proof, err := proveDLEQ(s)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return s, sEd, sK1, proof, nil
}

// SpendScalarFromBytes reconstructs a SpendScalar from its canonical
// 32-byte encoding, as produced by Bytes. Used to restore s_a/s_b from
// persisted state after a process restart.
func SpendScalarFromBytes(raw [32]byte) (*SpendScalar, error) {
	edScalar, err := new(edwards25519.Scalar).SetCanonicalBytes(reverse(raw[:]))
	if err != nil {
		return nil, fmt.Errorf("invalid ed25519 scalar: %w", err)
	}

	k1Scalar := new(secp256k1.ModNScalar)
	if overflow := k1Scalar.SetByteSlice(raw[:]); overflow {
		return nil, fmt.Errorf("unexpected secp256k1 scalar overflow")
	}

	return &SpendScalar{ed: edScalar, k1: k1Scalar, raw: raw}, nil
}

// Ed25519PointFromBytes parses a 32-byte compressed ed25519 point, as
// produced by Ed25519Point.Bytes.
func Ed25519PointFromBytes(b []byte) (*Ed25519Point, error) {
	p, err := new(edwards25519.Point).SetBytes(b)
	if err != nil {
		return nil, fmt.Errorf("invalid ed25519 point: %w", err)
	}
	return &Ed25519Point{point: p}, nil
}

// randomSpendScalarBytes samples a uniformly random value in [0, 2^252)
// as a 32-byte big-endian buffer.
func randomSpendScalarBytes() ([32]byte, error) {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return raw, fmt.Errorf("sampling spend scalar: %w", err)
	}
	raw[0] &= spendScalarTopByteMask
	return raw, nil
}

// reverse returns a reversed copy of b, used to convert between the
// big-endian convention used for the secp256k1 scalar and the
// little-endian convention edwards25519.Scalar expects.
func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
