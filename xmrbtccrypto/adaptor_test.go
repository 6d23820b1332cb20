package xmrbtccrypto

import (
	"crypto/sha256"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

func negatedEquals(a, b *secp256k1.ModNScalar) bool {
	neg := new(secp256k1.ModNScalar).Set(b)
	neg.Negate()
	return a.Equals(neg)
}

func TestEncSignEncVerifyRoundTrip(t *testing.T) {
	signer, signerPub, err := KeypairK1()
	if err != nil {
		t.Fatalf("KeypairK1 (signer): %v", err)
	}
	defer signer.Zero()

	yPriv, yPub, err := KeypairK1()
	if err != nil {
		t.Fatalf("KeypairK1 (statement): %v", err)
	}
	defer yPriv.Zero()

	hash := sha256.Sum256([]byte("txid to be signed"))

	encSig, err := EncSign(signer, yPub, hash)
	if err != nil {
		t.Fatalf("EncSign: %v", err)
	}

	if err := EncVerify(signerPub, yPub, hash, encSig); err != nil {
		t.Fatalf("EncVerify rejected a valid encrypted signature: %v", err)
	}
}

func TestDecryptThenVerify(t *testing.T) {
	signer, signerPub, err := KeypairK1()
	if err != nil {
		t.Fatalf("KeypairK1 (signer): %v", err)
	}
	defer signer.Zero()

	yPriv, yPub, err := KeypairK1()
	if err != nil {
		t.Fatalf("KeypairK1 (statement): %v", err)
	}
	defer yPriv.Zero()

	hash := sha256.Sum256([]byte("txid to be signed"))

	encSig, err := EncSign(signer, yPub, hash)
	if err != nil {
		t.Fatalf("EncSign: %v", err)
	}

	sig := Decrypt(encSig, yPriv.Scalar())

	if err := Verify(signerPub, hash, sig); err != nil {
		t.Fatalf("Verify rejected decrypted signature: %v", err)
	}
}

func TestRecoverExtractsStatementScalar(t *testing.T) {
	signer, _, err := KeypairK1()
	if err != nil {
		t.Fatalf("KeypairK1 (signer): %v", err)
	}
	defer signer.Zero()

	yPriv, yPub, err := KeypairK1()
	if err != nil {
		t.Fatalf("KeypairK1 (statement): %v", err)
	}
	defer yPriv.Zero()

	hash := sha256.Sum256([]byte("txid to be signed"))

	encSig, err := EncSign(signer, yPub, hash)
	if err != nil {
		t.Fatalf("EncSign: %v", err)
	}

	sig := Decrypt(encSig, yPriv.Scalar())

	recovered, err := Recover(sig, encSig)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}

	if !recovered.Equals(yPriv.Scalar()) && !negatedEquals(recovered, yPriv.Scalar()) {
		t.Fatal("recovered scalar does not match the statement scalar (or its negation)")
	}
}
