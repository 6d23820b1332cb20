package xmrbtccrypto

import (
	"crypto/rand"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// EncSignature is an ECDSA adaptor (encrypted) signature: a normal
// signature with its s-value blinded by the statement point's scalar,
// plus the proof point R' and a same-curve NIZK binding R' to the
// signature's public nonce commitment. Broadcasting the transaction
// this signs, then subtracting the counterparty's own signature,
// discloses y — the "adaptor linkage" at the heart of the swap.
type EncSignature struct {
	// RPrime is k*Y, the encrypted nonce commitment, where Y = y*G is
	// the statement point whose scalar y is being encrypted into the
	// signature.
	RPrime *btcec.PublicKey

	// R is the x-coordinate of k*G reduced mod n, forming the ordinary
	// ECDSA signature's r value.
	R *secp256k1.ModNScalar

	// SPrime is the blinded response: s' = k^-1 * (h + r*x), analogous
	// to ordinary ECDSA's s but never divided by y.
	SPrime *secp256k1.ModNScalar

	// Proof shows R' = k*Y and k*G share the same scalar k, so a
	// verifier without k can still confirm R' is well-formed relative
	// to the expected R.
	Proof *adaptorProof
}

// adaptorProof is a Chaum-Pedersen proof, over secp256k1 alone, that
// R' = k*Y and R'' = k*G (the latter implicit in R) share the discrete
// log k. Unlike the cross-curve DLEQ in dleq.go, both statements live
// on the same curve and order, so an ordinary Schnorr-style
// challenge/response pair suffices.
type adaptorProof struct {
	t *secp256k1.JacobianPoint // k_rand*Y
	u *secp256k1.JacobianPoint // k_rand*G
	c *secp256k1.ModNScalar
	z *secp256k1.ModNScalar
}

// EncSign produces an encrypted signature on hash under signing key x,
// encrypted to statement point y*G: `encsign(x, Y, m) -> σ̂`.
func EncSign(x *PrivateKeyK1, y *btcec.PublicKey, hash [32]byte) (*EncSignature, error) {
	var k secp256k1.ModNScalar
	for {
		var buf [32]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return nil, fmt.Errorf("sampling adaptor nonce: %w", err)
		}
		if overflow := k.SetByteSlice(buf[:]); !overflow && !k.IsZero() {
			break
		}
	}

	var yJac secp256k1.JacobianPoint
	y.AsJacobian(&yJac)

	var rPrimeJac secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&k, &yJac, &rPrimeJac)
	rPrimeJac.ToAffine()
	rPrime := btcec.NewPublicKey(&rPrimeJac.X, &rPrimeJac.Y)

	var rJac secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&k, &rJac)
	rJac.ToAffine()

	var r secp256k1.ModNScalar
	overflow := r.SetByteSlice(rJac.X.Bytes()[:])
	if overflow || r.IsZero() {
		return nil, fmt.Errorf("degenerate adaptor nonce, retry")
	}

	var hScalar secp256k1.ModNScalar
	hScalar.SetByteSlice(hash[:])

	var rx secp256k1.ModNScalar
	rx.Mul2(&r, x.Scalar())

	var num secp256k1.ModNScalar
	num.Add2(&hScalar, &rx)

	kInv := new(secp256k1.ModNScalar).Set(&k)
	kInv.InverseNonConst()

	sPrime := new(secp256k1.ModNScalar).Mul2(kInv, &num)

	proof, err := proveAdaptor(&k, y, &rJac)
	if err != nil {
		return nil, err
	}

	return &EncSignature{RPrime: rPrime, R: &r, SPrime: sPrime, Proof: proof}, nil
}

// proveAdaptor builds the Chaum-Pedersen proof that rPrimeJac = k*Y and
// rJac = k*G share k.
func proveAdaptor(k *secp256k1.ModNScalar, y *btcec.PublicKey, rJac *secp256k1.JacobianPoint) (*adaptorProof, error) {
	var kRand secp256k1.ModNScalar
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, fmt.Errorf("sampling adaptor proof nonce: %w", err)
	}
	kRand.SetByteSlice(buf[:])

	var yJac secp256k1.JacobianPoint
	y.AsJacobian(&yJac)

	var t, u secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&kRand, &yJac, &t)
	t.ToAffine()
	secp256k1.ScalarBaseMultNonConst(&kRand, &u)
	u.ToAffine()

	c := fiatShamirAdaptorChallenge(y, rJac, &t, &u)

	z := new(secp256k1.ModNScalar).Mul2(&c, k)
	z.Add(&kRand)

	return &adaptorProof{t: &t, u: &u, c: &c, z: z}, nil
}

func fiatShamirAdaptorChallenge(y *btcec.PublicKey, rJac *secp256k1.JacobianPoint, t, u *secp256k1.JacobianPoint) secp256k1.ModNScalar {
	h := newAdaptorHasher()
	h.write(y.SerializeCompressed())
	rAffine := *rJac
	rAffine.ToAffine()
	h.writeField(&rAffine.X)
	h.writeField(&rAffine.Y)
	h.writeField(&t.X)
	h.writeField(&t.Y)
	h.writeField(&u.X)
	h.writeField(&u.Y)

	var c secp256k1.ModNScalar
	c.SetByteSlice(h.sum())
	return c
}

// EncVerify checks an encrypted signature against the signer's public
// key X and statement point Y: `encverify(X, Y, m, σ̂) -> ok | BadAdaptor`.
func EncVerify(x *btcec.PublicKey, y *btcec.PublicKey, hash [32]byte, sig *EncSignature) error {
	if sig.R.IsZero() || sig.SPrime.IsZero() {
		return newErr(CodeBadAdaptor, "zero r or s'")
	}

	if err := verifyAdaptorProof(y, sig); err != nil {
		return err
	}

	var hScalar secp256k1.ModNScalar
	hScalar.SetByteSlice(hash[:])

	sInv := new(secp256k1.ModNScalar).Set(sig.SPrime)
	sInv.InverseNonConst()

	var u1 secp256k1.ModNScalar
	u1.Mul2(&hScalar, sInv)
	var u2 secp256k1.ModNScalar
	u2.Mul2(sig.R, sInv)

	var xJac secp256k1.JacobianPoint
	x.AsJacobian(&xJac)

	var p1, p2, sum secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&u1, &p1)
	secp256k1.ScalarMultNonConst(&u2, &xJac, &p2)
	secp256k1.AddNonConst(&p1, &p2, &sum)
	sum.ToAffine()

	var rPrimeJac secp256k1.JacobianPoint
	sig.RPrime.AsJacobian(&rPrimeJac)

	// The recomputed point should be the same secret nonce's base-point
	// image that the embedded proof already bound R' to; the proof
	// (verified above) establishes k*G == the point behind R, so here
	// we only need R (sig.R, the x-coordinate) to match that point's
	// x-coordinate.
	sum.X.Normalize()
	var rField secp256k1.FieldVal
	rField.SetByteSlice(sig.R.Bytes()[:])
	if !sum.X.Equals(&rField) {
		return newErr(CodeBadAdaptor, "recomputed nonce does not match r")
	}

	return nil
}

func verifyAdaptorProof(y *btcec.PublicKey, sig *EncSignature) error {
	proof := sig.Proof
	if proof == nil {
		return newErr(CodeBadAdaptor, "missing adaptor proof")
	}

	var yJac secp256k1.JacobianPoint
	y.AsJacobian(&yJac)

	var zY, cRPrime, lhs1 secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(proof.z, &yJac, &zY)

	var rPrimeJac secp256k1.JacobianPoint
	sig.RPrime.AsJacobian(&rPrimeJac)
	secp256k1.ScalarMultNonConst(proof.c, &rPrimeJac, &cRPrime)
	secp256k1.AddNonConst(proof.t, &cRPrime, &lhs1)
	lhs1.ToAffine()

	zY.ToAffine()
	if !zY.X.Equals(&lhs1.X) || !zY.Y.Equals(&lhs1.Y) {
		return newErr(CodeBadAdaptor, "adaptor proof first equation failed")
	}

	var zG, cR, lhs2 secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(proof.z, &zG)
	zG.ToAffine()

	var rJac secp256k1.JacobianPoint
	var rField secp256k1.FieldVal
	rField.SetByteSlice(sig.R.Bytes()[:])
	var yField secp256k1.FieldVal
	if !secp256k1.DecompressY(&rField, false, &yField) {
		return newErr(CodeBadAdaptor, "r does not correspond to a curve point")
	}
	rJac.X = rField
	rJac.Y = yField
	rJac.Z.SetInt(1)

	secp256k1.ScalarMultNonConst(proof.c, &rJac, &cR)
	secp256k1.AddNonConst(proof.u, &cR, &lhs2)
	lhs2.ToAffine()

	if !zG.X.Equals(&lhs2.X) || !zG.Y.Equals(&lhs2.Y) {
		return newErr(CodeBadAdaptor, "adaptor proof second equation failed")
	}

	return nil
}

// Signature is an ordinary ECDSA signature in (r, s) scalar form.
type Signature struct {
	R *secp256k1.ModNScalar
	S *secp256k1.ModNScalar
}

// Decrypt reveals the full signature by multiplying s' by the
// statement scalar y, normalizing to low-s per BIP-146:
// `decrypt(σ̂, y) -> σ`.
func Decrypt(sig *EncSignature, y *secp256k1.ModNScalar) *Signature {
	s := new(secp256k1.ModNScalar).Mul2(sig.SPrime, y)
	if s.IsOverHalfOrder() {
		s.Negate()
	}
	return &Signature{R: sig.R, S: s}
}

// Recover extracts the statement scalar y from a decrypted signature
// and its originating encrypted signature: `recover(σ, σ̂) -> y |
// SignatureMismatch`. Since decrypt may have negated s for low-s
// normalization, both y = s'^-1*s and its negation are tried.
func Recover(sig *Signature, encSig *EncSignature) (*secp256k1.ModNScalar, error) {
	sPrimeInv := new(secp256k1.ModNScalar).Set(encSig.SPrime)
	sPrimeInv.InverseNonConst()

	candidate := new(secp256k1.ModNScalar).Mul2(sPrimeInv, sig.S)

	var rPrimeJac secp256k1.JacobianPoint
	encSig.RPrime.AsJacobian(&rPrimeJac)

	var check secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(candidate, &check)
	check.ToAffine()
	rPrimeJac.ToAffine()

	if check.X.Equals(&rPrimeJac.X) && check.Y.Equals(&rPrimeJac.Y) {
		return candidate, nil
	}

	negated := new(secp256k1.ModNScalar).Set(candidate)
	negated.Negate()
	secp256k1.ScalarBaseMultNonConst(negated, &check)
	check.ToAffine()
	if check.X.Equals(&rPrimeJac.X) && check.Y.Equals(&rPrimeJac.Y) {
		return negated, nil
	}

	return nil, newErr(CodeSignatureMismatch, "decrypted signature does not match any candidate scalar")
}
