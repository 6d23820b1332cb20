package xmrbtccrypto

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// Sign produces a deterministic (RFC6979) ECDSA signature over hash,
// used for ordinary (non-adaptor) transaction signatures such as a
// refund or punish input that is not gated by the adaptor linkage.
func Sign(key *PrivateKeyK1, hash [32]byte) *Signature {
	sig := ecdsa.Sign(key.key, hash[:])
	r := sig.R()
	s := sig.S()
	return &Signature{R: &r, S: &s}
}

// Verify checks sig against pubKey and hash: `verify(X, m, σ) -> ok |
// SignatureMismatch`.
func Verify(pubKey *btcec.PublicKey, hash [32]byte, sig *Signature) error {
	wireSig := ecdsaSignatureFromScalars(sig)
	if !wireSig.Verify(hash[:], pubKey) {
		return newErr(CodeSignatureMismatch, "signature does not verify")
	}
	return nil
}

func ecdsaSignatureFromScalars(sig *Signature) *ecdsa.Signature {
	return ecdsa.NewSignature(sig.R, sig.S)
}

// DERBytes returns sig's DER encoding, the form txbuilder's witness
// completion functions expect (it appends the trailing sighash-type
// byte itself).
func DERBytes(sig *Signature) []byte {
	return ecdsaSignatureFromScalars(sig).Serialize()
}

// SignatureFromDER parses a DER-encoded ECDSA signature (stripped of
// any trailing sighash-type byte) back into (R, S) scalar form, as
// needed to feed an extracted witness signature into Recover.
func SignatureFromDER(der []byte) (*Signature, error) {
	sig, err := ecdsa.ParseDERSignature(der)
	if err != nil {
		return nil, fmt.Errorf("parsing DER signature: %w", err)
	}
	r := sig.R()
	s := sig.S()
	return &Signature{R: &r, S: &s}, nil
}
