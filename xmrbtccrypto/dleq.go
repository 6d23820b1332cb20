package xmrbtccrypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"math/big"

	"filippo.io/edwards25519"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// dleqBits is the number of bits of the shared spend scalar the proof
// commits to. 252 bits is enough to cover the full range a SpendScalar
// is sampled from (see spendScalarTopByteMask) with no information
// loss, while staying comfortably below both group orders.
const dleqBits = 252

// challengeBytes bounds each per-bit OR-proof challenge to 128 bits, far
// below both the ed25519 order L (~2^252.38) and the secp256k1 order n
// (~2^256), so the identical challenge bytes can be fed to both groups'
// scalar types with no reduction mismatch between them.
const challengeBytes = 16

// DLEQProof is a cross-curve discrete-log-equality proof: it shows that
// a secp256k1 point and an ed25519 point are both s*G for the same
// scalar s, without revealing s. Ordinary (same-group) Chaum-Pedersen
// proofs don't apply here because ed25519 and secp256k1 have different
// group orders, so a single Schnorr-style response can't be checked
// against both moduli at once. Instead the proof commits to s bit by
// bit, on both curves, and proves each pair of commitments opens to the
// same bit (0 or 1) via a 1-of-2 OR proof; the verifier then checks that
// the weighted sum of the bit commitments reconstructs the claimed
// points.
type DLEQProof struct {
	bits      []bitCommitment
	blindSumE *edwards25519.Scalar
	blindSumK *secp256k1.ModNScalar
}

// bitCommitment is one bit's pair of Pedersen commitments plus the
// OR-proof that both commit to the same bit value.
type bitCommitment struct {
	cEd *edwards25519.Point
	cK1 secp256k1.JacobianPoint

	// c0, c1 are the two branch challenges; exactly one branch was
	// honestly computed by the prover, the other simulated. Their sum
	// (mod 2^128) must equal the Fiat-Shamir challenge over the
	// transcript.
	c0, c1 [challengeBytes]byte

	z0Ed *edwards25519.Scalar
	z1Ed *edwards25519.Scalar
	z0K1 *secp256k1.ModNScalar
	z1K1 *secp256k1.ModNScalar
}

// hEd, hK1, gK1 are fixed points used by the Pedersen commitments: hEd
// and hK1 are nothing-up-my-sleeve auxiliary generators, derived by
// hash-to-curve over a fixed domain-separation string so that no party
// (including the prover) knows their discrete log relative to the
// standard base points — the same role BIP341's NUMS point H plays for
// Taproot, applied to both curves here. gK1 caches the secp256k1 base
// point in Jacobian form.
var (
	hEd = hashToEd25519("xmrbtcswap/dleq/H_ed")
	hK1 = hashToSecp256k1("xmrbtcswap/dleq/H_k1")
	gK1 = computeGK1()
)

func computeGK1() secp256k1.JacobianPoint {
	var g secp256k1.JacobianPoint
	one := new(secp256k1.ModNScalar).SetInt(1)
	secp256k1.ScalarBaseMultNonConst(one, &g)
	g.ToAffine()
	return g
}

func hashToEd25519(domain string) *edwards25519.Point {
	for ctr := uint32(0); ; ctr++ {
		h := sha512.New()
		h.Write([]byte(domain))
		h.Write([]byte{byte(ctr), byte(ctr >> 8), byte(ctr >> 16), byte(ctr >> 24)})
		digest := h.Sum(nil)

		p, err := new(edwards25519.Point).SetBytes(digest[:32])
		if err == nil {
			return p
		}
	}
}

func hashToSecp256k1(domain string) secp256k1.JacobianPoint {
	for ctr := uint32(0); ; ctr++ {
		h := sha256.New()
		h.Write([]byte(domain))
		h.Write([]byte{byte(ctr), byte(ctr >> 8), byte(ctr >> 16), byte(ctr >> 24)})
		digest := h.Sum(nil)

		var x secp256k1.FieldVal
		if overflow := x.SetByteSlice(digest); overflow {
			continue
		}

		var y secp256k1.FieldVal
		if !secp256k1.DecompressY(&x, false, &y) {
			continue
		}

		var p secp256k1.JacobianPoint
		p.X = x
		p.Y = y
		p.Z.SetInt(1)
		return p
	}
}

// negateK1 returns -p (affine), used to implement point subtraction via
// AddNonConst.
func negateK1(p *secp256k1.JacobianPoint) secp256k1.JacobianPoint {
	var out secp256k1.JacobianPoint
	out.X = p.X
	out.Y.Set(&p.Y).Negate(1).Normalize()
	out.Z.SetInt(1)
	return out
}

func addK1(a, b *secp256k1.JacobianPoint) secp256k1.JacobianPoint {
	var out secp256k1.JacobianPoint
	secp256k1.AddNonConst(a, b, &out)
	out.ToAffine()
	return out
}

// proveDLEQ builds a DLEQProof that S_ed = s*G_ed and S_k1 = s*G_k1 share
// the scalar s carried by the SpendScalar.
func proveDLEQ(s *SpendScalar) (*DLEQProof, error) {
	sInt := new(big.Int).SetBytes(s.raw[:])

	bits := make([]bitCommitment, dleqBits)
	blindSumE := new(edwards25519.Scalar)
	blindSumK := new(secp256k1.ModNScalar)

	for i := 0; i < dleqBits; i++ {
		bit := sInt.Bit(i)

		bc, rEd, rK1, err := commitBit(bit)
		if err != nil {
			return nil, fmt.Errorf("committing bit %d: %w", i, err)
		}

		weight := weightScalars(i)
		blindSumE.Add(blindSumE, new(edwards25519.Scalar).Multiply(weight.ed, rEd))
		blindSumK.Add(blindSumK, new(secp256k1.ModNScalar).Mul2(weight.k1, rK1))

		if err := proveBitOR(&bc, bit, rEd, rK1); err != nil {
			return nil, fmt.Errorf("proving bit %d: %w", i, err)
		}
		bits[i] = bc
	}

	return &DLEQProof{bits: bits, blindSumE: blindSumE, blindSumK: blindSumK}, nil
}

// commitBit samples fresh blinding for both curves and produces the
// Pedersen commitments C_ed = bit*G_ed + r_ed*H_ed and C_k1 = bit*G_k1 +
// r_k1*H_k1.
func commitBit(bit uint) (bitCommitment, *edwards25519.Scalar, *secp256k1.ModNScalar, error) {
	rEd, err := randomEdScalar()
	if err != nil {
		return bitCommitment{}, nil, nil, err
	}
	rK1, err := randomK1Scalar()
	if err != nil {
		return bitCommitment{}, nil, nil, err
	}

	cEd := new(edwards25519.Point).ScalarMult(rEd, hEd)
	if bit == 1 {
		cEd.Add(cEd, edwards25519.NewGeneratorPoint())
	}

	var rK1H secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(rK1, &hK1, &rK1H)

	var cK1 secp256k1.JacobianPoint
	if bit == 1 {
		cK1 = addK1(&rK1H, &gK1)
	} else {
		rK1H.ToAffine()
		cK1 = rK1H
	}

	return bitCommitment{cEd: cEd, cK1: cK1}, rEd, rK1, nil
}

// proveBitOR produces the 1-of-2 OR proof that (cEd, cK1) commit to the
// same bit, which is either 0 or 1, without revealing which.
func proveBitOR(bc *bitCommitment, bit uint, rEd *edwards25519.Scalar, rK1 *secp256k1.ModNScalar) error {
	// The "false" branch (the one NOT matching bit) is simulated: pick
	// its challenge and responses at random, then derive the
	// commitment points (t-values) that make its verification equation
	// hold.
	falseChallenge, err := randomChallenge()
	if err != nil {
		return err
	}
	zFalseEd, err := randomEdScalar()
	if err != nil {
		return err
	}
	zFalseK1, err := randomK1Scalar()
	if err != nil {
		return err
	}

	residualEd, residualK1 := residualPoints(bc, 1-bit)
	tFalseEd := simulateEd(zFalseEd, falseChallenge, residualEd)
	tFalseK1 := simulateK1(zFalseK1, falseChallenge, residualK1)

	// Honest branch: real nonce, real commitment.
	tEd, err := randomEdScalar()
	if err != nil {
		return err
	}
	tK1, err := randomK1Scalar()
	if err != nil {
		return err
	}
	tTrueEd := new(edwards25519.Point).ScalarMult(tEd, hEd)
	var tTrueK1 secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(tK1, &hK1, &tTrueK1)
	tTrueK1.ToAffine()

	var t0Ed, t1Ed *edwards25519.Point
	var t0K1, t1K1 secp256k1.JacobianPoint
	if bit == 0 {
		t0Ed, t1Ed = tTrueEd, tFalseEd
		t0K1, t1K1 = tTrueK1, tFalseK1
	} else {
		t0Ed, t1Ed = tFalseEd, tTrueEd
		t0K1, t1K1 = tFalseK1, tTrueK1
	}

	totalChallenge := fiatShamirChallenge(bc, t0Ed, t1Ed, &t0K1, &t1K1)
	trueChallenge := subChallenge(totalChallenge, falseChallenge)

	zTrueEd := new(edwards25519.Scalar).Add(tEd, new(edwards25519.Scalar).Multiply(challengeToEd(trueChallenge), rEd))
	zTrueK1 := new(secp256k1.ModNScalar).Add2(tK1, new(secp256k1.ModNScalar).Mul2(challengeToK1(trueChallenge), rK1))

	if bit == 0 {
		bc.c0, bc.c1 = trueChallenge, falseChallenge
		bc.z0Ed, bc.z1Ed = zTrueEd, zFalseEd
		bc.z0K1, bc.z1K1 = zTrueK1, zFalseK1
	} else {
		bc.c0, bc.c1 = falseChallenge, trueChallenge
		bc.z0Ed, bc.z1Ed = zFalseEd, zTrueEd
		bc.z0K1, bc.z1K1 = zFalseK1, zTrueK1
	}

	return nil
}

// residualPoints returns, for the given candidate bit value, the points
// C_ed - bit*G_ed and C_k1 - bit*G_k1 that a branch proof must show are
// r*H_ed / r*H_k1 for some known r.
func residualPoints(bc *bitCommitment, bit uint) (*edwards25519.Point, secp256k1.JacobianPoint) {
	resEd := new(edwards25519.Point).Set(bc.cEd)
	if bit == 1 {
		resEd.Subtract(resEd, edwards25519.NewGeneratorPoint())
	}

	if bit == 1 {
		neg := negateK1(&gK1)
		return resEd, addK1(&bc.cK1, &neg)
	}

	return resEd, bc.cK1
}

// simulateEd derives the t-point that makes z*H_ed == t + c*residual
// hold for chosen z and c, i.e. t = z*H_ed - c*residual. Used both to
// simulate the false branch when proving, and to recompute the
// transcript when verifying.
func simulateEd(z *edwards25519.Scalar, c [challengeBytes]byte, residual *edwards25519.Point) *edwards25519.Point {
	zH := new(edwards25519.Point).ScalarMult(z, hEd)
	cRes := new(edwards25519.Point).ScalarMult(challengeToEd(c), residual)
	return new(edwards25519.Point).Subtract(zH, cRes)
}

func simulateK1(z *secp256k1.ModNScalar, c [challengeBytes]byte, residual secp256k1.JacobianPoint) secp256k1.JacobianPoint {
	var zH, cRes secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(z, &hK1, &zH)
	secp256k1.ScalarMultNonConst(challengeToK1(c), &residual, &cRes)
	cRes.ToAffine()
	neg := negateK1(&cRes)
	return addK1(&zH, &neg)
}

// fiatShamirChallenge hashes the full per-bit transcript into a 128-bit
// challenge.
func fiatShamirChallenge(bc *bitCommitment, t0Ed, t1Ed *edwards25519.Point, t0K1, t1K1 *secp256k1.JacobianPoint) [challengeBytes]byte {
	h := sha256.New()
	h.Write(bc.cEd.Bytes())
	x, y := bc.cK1.X.Bytes(), bc.cK1.Y.Bytes()
	h.Write(x[:])
	h.Write(y[:])
	h.Write(t0Ed.Bytes())
	h.Write(t1Ed.Bytes())
	x0, y0 := t0K1.X.Bytes(), t0K1.Y.Bytes()
	x1, y1 := t1K1.X.Bytes(), t1K1.Y.Bytes()
	h.Write(x0[:])
	h.Write(y0[:])
	h.Write(x1[:])
	h.Write(y1[:])

	digest := h.Sum(nil)
	var out [challengeBytes]byte
	copy(out[:], digest[:challengeBytes])
	return out
}

func subChallenge(total, sub [challengeBytes]byte) [challengeBytes]byte {
	totalInt := new(big.Int).SetBytes(total[:])
	subInt := new(big.Int).SetBytes(sub[:])

	mod := new(big.Int).Lsh(big.NewInt(1), challengeBytes*8)
	diff := new(big.Int).Sub(totalInt, subInt)
	diff.Mod(diff, mod)

	var out [challengeBytes]byte
	diff.FillBytes(out[:])
	return out
}

func challengeToEd(c [challengeBytes]byte) *edwards25519.Scalar {
	var buf [32]byte
	copy(buf[:], reverse(c[:]))
	s, _ := new(edwards25519.Scalar).SetCanonicalBytes(buf[:])
	return s
}

func challengeToK1(c [challengeBytes]byte) *secp256k1.ModNScalar {
	var buf [32]byte
	copy(buf[16:], c[:])
	s := new(secp256k1.ModNScalar)
	s.SetByteSlice(buf[:])
	return s
}

func weightScalars(bitIndex int) struct {
	ed *edwards25519.Scalar
	k1 *secp256k1.ModNScalar
} {
	var buf [32]byte
	buf[31-bitIndex/8] = 1 << uint(bitIndex%8)

	ed, _ := new(edwards25519.Scalar).SetCanonicalBytes(reverse(buf[:]))
	k1 := new(secp256k1.ModNScalar)
	k1.SetByteSlice(buf[:])

	return struct {
		ed *edwards25519.Scalar
		k1 *secp256k1.ModNScalar
	}{ed: ed, k1: k1}
}

func randomEdScalar() (*edwards25519.Scalar, error) {
	var buf [64]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, err
	}
	return new(edwards25519.Scalar).SetUniformBytes(buf[:])
}

func randomK1Scalar() (*secp256k1.ModNScalar, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, err
	}
	s := new(secp256k1.ModNScalar)
	s.SetByteSlice(buf[:])
	return s, nil
}

func randomChallenge() ([challengeBytes]byte, error) {
	var buf [challengeBytes]byte
	_, err := rand.Read(buf[:])
	return buf, err
}

// verifyBitOR checks a single bit's OR proof by recomputing both
// branches' commitment points from (z, c, residual) and checking that
// the branch challenges reconstruct the Fiat-Shamir challenge over the
// resulting transcript.
func verifyBitOR(bc *bitCommitment) error {
	res0Ed, res0K1 := residualPoints(bc, 0)
	res1Ed, res1K1 := residualPoints(bc, 1)

	t0Ed := simulateEd(bc.z0Ed, bc.c0, res0Ed)
	t1Ed := simulateEd(bc.z1Ed, bc.c1, res1Ed)
	t0K1 := simulateK1(bc.z0K1, bc.c0, res0K1)
	t1K1 := simulateK1(bc.z1K1, bc.c1, res1K1)

	challenge := fiatShamirChallenge(bc, t0Ed, t1Ed, &t0K1, &t1K1)
	wantC1 := subChallenge(challenge, bc.c0)
	if wantC1 != bc.c1 {
		return newErr(CodeInvalidDLEQ, "bit OR-proof challenge mismatch")
	}

	return nil
}

// verifyDLEQ checks that sEd and sK1 are both s*G for the scalar s
// committed to, bit by bit, across proof.
func verifyDLEQ(sEd *edwards25519.Point, sK1 *btcec.PublicKey, proof *DLEQProof) error {
	if len(proof.bits) != dleqBits {
		return newErr(CodeInvalidDLEQ, "expected %d bit commitments, got %d",
			dleqBits, len(proof.bits))
	}

	sumEd := edwards25519.NewIdentityPoint()
	var sumK1 secp256k1.JacobianPoint
	haveSumK1 := false

	for i := range proof.bits {
		bc := &proof.bits[i]
		if err := verifyBitOR(bc); err != nil {
			return err
		}

		w := weightScalars(i)
		sumEd.Add(sumEd, new(edwards25519.Point).ScalarMult(w.ed, bc.cEd))

		var term secp256k1.JacobianPoint
		secp256k1.ScalarMultNonConst(w.k1, &bc.cK1, &term)
		term.ToAffine()
		if !haveSumK1 {
			sumK1 = term
			haveSumK1 = true
		} else {
			sumK1 = addK1(&sumK1, &term)
		}
	}

	expectedEd := new(edwards25519.Point).ScalarMult(proof.blindSumE, hEd)
	expectedEd.Add(expectedEd, sEd)
	if sumEd.Equal(expectedEd) != 1 {
		return newErr(CodeInvalidDLEQ, "ed25519 commitment sum mismatch")
	}

	var blindHK1 secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(proof.blindSumK, &hK1, &blindHK1)
	blindHK1.ToAffine()

	var sK1Jacobian secp256k1.JacobianPoint
	sK1.AsJacobian(&sK1Jacobian)

	expectedK1 := addK1(&blindHK1, &sK1Jacobian)

	sumK1.X.Normalize()
	sumK1.Y.Normalize()
	expectedK1.X.Normalize()
	expectedK1.Y.Normalize()
	if !sumK1.X.Equals(&expectedK1.X) || !sumK1.Y.Equals(&expectedK1.Y) {
		return newErr(CodeInvalidDLEQ, "secp256k1 commitment sum mismatch")
	}

	return nil
}

// VerifyDLEQ checks that sEd and sK1 are commitments to the same scalar
// under proof π: `dleq_verify(S_ed, S_k1, π) -> ok | InvalidDLEQ`.
func VerifyDLEQ(sEd *Ed25519Point, sK1 *btcec.PublicKey, proof *DLEQProof) error {
	return verifyDLEQ(sEd.point, sK1, proof)
}
