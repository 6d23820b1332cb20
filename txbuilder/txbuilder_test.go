package txbuilder

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
)

const (
	testFee    = btcutil.Amount(10_000)
	testAmount = btcutil.Amount(1_000_000)
)

func mustKey(t *testing.T) (*btcec.PrivateKey, *btcec.PublicKey) {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	return priv, priv.PubKey()
}

func signDigest(priv *btcec.PrivateKey, digest [32]byte) []byte {
	sig := ecdsa.Sign(priv, digest[:])
	return sig.Serialize()
}

func testLockOutput(t *testing.T, a, b *btcec.PublicKey) *LockOutput {
	t.Helper()

	utxo := Utxo{
		OutPoint: wire.OutPoint{Index: 0},
		Value:    testAmount + testFee,
		PkScript: []byte{0x00, 0x14},
	}
	changeAddr, err := btcutil.NewAddressWitnessPubKeyHash(make([]byte, 20), &chaincfg.RegressionNetParams)
	if err != nil {
		t.Fatalf("change address: %v", err)
	}

	_, lockOut, err := BuildLock([]Utxo{utxo}, a, b, testAmount, changeAddr, 0)
	if err != nil {
		t.Fatalf("BuildLock: %v", err)
	}
	return lockOut
}

func TestBuildLockRejectsDustAmount(t *testing.T) {
	privA, pubA := mustKey(t)
	_, pubB := mustKey(t)
	defer privA.Zero()

	utxo := Utxo{OutPoint: wire.OutPoint{Index: 0}, Value: 1000, PkScript: []byte{0x00, 0x14}}
	changeAddr, _ := btcutil.NewAddressWitnessPubKeyHash(make([]byte, 20), &chaincfg.RegressionNetParams)

	_, _, err := BuildLock([]Utxo{utxo}, pubA, pubB, 1, changeAddr, 0)
	if err == nil {
		t.Fatal("expected BuildLock to reject a dust amount")
	}
	if be, ok := err.(*BuildError); !ok || be.Code != BuildErrorUnderflow {
		t.Fatalf("expected BuildErrorUnderflow, got %v", err)
	}
}

func TestRedeemRoundTrip(t *testing.T) {
	privA, pubA := mustKey(t)
	privB, pubB := mustKey(t)
	defer privA.Zero()
	defer privB.Zero()

	lockOut := testLockOutput(t, pubA, pubB)

	aliceAddr, err := btcutil.NewAddressWitnessPubKeyHash(make([]byte, 20), &chaincfg.RegressionNetParams)
	if err != nil {
		t.Fatalf("alice address: %v", err)
	}

	tx, err := BuildRedeem(lockOut, aliceAddr, testFee)
	if err != nil {
		t.Fatalf("BuildRedeem: %v", err)
	}

	digest, err := tx.Digest()
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}

	sigA := signDigest(privA, digest)
	sigB := signDigest(privB, digest)

	if err := CompleteRedeem(tx, sigA, sigB, pubA, pubB); err != nil {
		t.Fatalf("CompleteRedeem: %v", err)
	}

	if err := CompleteRedeem(tx, sigA, sigB, pubA, pubB); err == nil {
		t.Fatal("expected second CompleteRedeem call to fail with AlreadySigned")
	}
}

func TestCancelThenRefundAndPunishBranches(t *testing.T) {
	privA, pubA := mustKey(t)
	privB, pubB := mustKey(t)
	defer privA.Zero()
	defer privB.Zero()

	lockOut := testLockOutput(t, pubA, pubB)

	cancelTx, cancelOut, err := BuildCancel(lockOut, 144, 144, pubA, pubB, testFee)
	if err != nil {
		t.Fatalf("BuildCancel: %v", err)
	}

	digest, err := cancelTx.Digest()
	if err != nil {
		t.Fatalf("cancel Digest: %v", err)
	}
	if err := CompleteCancel(cancelTx, signDigest(privA, digest), signDigest(privB, digest), pubA, pubB); err != nil {
		t.Fatalf("CompleteCancel: %v", err)
	}

	bobAddr, _ := btcutil.NewAddressWitnessPubKeyHash(make([]byte, 20), &chaincfg.RegressionNetParams)
	refundTx, err := BuildRefund(cancelOut, bobAddr, testFee)
	if err != nil {
		t.Fatalf("BuildRefund: %v", err)
	}
	refundDigest, err := refundTx.Digest()
	if err != nil {
		t.Fatalf("refund Digest: %v", err)
	}
	if err := CompleteRefund(refundTx, signDigest(privA, refundDigest), signDigest(privB, refundDigest), pubA, pubB); err != nil {
		t.Fatalf("CompleteRefund: %v", err)
	}
	if len(refundTx.MsgTx.TxIn[0].Witness) != 5 {
		t.Fatalf("expected refund witness of 5 items (dummy, 2 sigs, selector, script), got %d", len(refundTx.MsgTx.TxIn[0].Witness))
	}

	aliceAddr, _ := btcutil.NewAddressWitnessPubKeyHash(make([]byte, 20), &chaincfg.RegressionNetParams)
	punishTx, err := BuildPunish(cancelOut, 144, aliceAddr, testFee)
	if err != nil {
		t.Fatalf("BuildPunish: %v", err)
	}
	punishDigest, err := punishTx.Digest()
	if err != nil {
		t.Fatalf("punish Digest: %v", err)
	}
	if err := CompletePunish(punishTx, signDigest(privA, punishDigest), signDigest(privB, punishDigest), pubA, pubB); err != nil {
		t.Fatalf("CompletePunish: %v", err)
	}
}

func TestExtractSignatureFindsMatchingKey(t *testing.T) {
	privA, pubA := mustKey(t)
	privB, pubB := mustKey(t)
	defer privA.Zero()
	defer privB.Zero()

	lockOut := testLockOutput(t, pubA, pubB)
	aliceAddr, _ := btcutil.NewAddressWitnessPubKeyHash(make([]byte, 20), &chaincfg.RegressionNetParams)

	tx, err := BuildRedeem(lockOut, aliceAddr, testFee)
	if err != nil {
		t.Fatalf("BuildRedeem: %v", err)
	}
	digest, err := tx.Digest()
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}

	sigA := signDigest(privA, digest)
	sigB := signDigest(privB, digest)
	if err := CompleteRedeem(tx, sigA, sigB, pubA, pubB); err != nil {
		t.Fatalf("CompleteRedeem: %v", err)
	}

	extracted, err := ExtractSignature(tx.MsgTx, pubB, digest)
	if err != nil {
		t.Fatalf("ExtractSignature: %v", err)
	}
	if len(extracted) == 0 {
		t.Fatal("expected a non-empty extracted signature")
	}
}

func TestExtractSignatureNoMatch(t *testing.T) {
	privA, pubA := mustKey(t)
	privB, pubB := mustKey(t)
	_, otherPub := mustKey(t)
	defer privA.Zero()
	defer privB.Zero()

	lockOut := testLockOutput(t, pubA, pubB)
	aliceAddr, _ := btcutil.NewAddressWitnessPubKeyHash(make([]byte, 20), &chaincfg.RegressionNetParams)

	tx, err := BuildRedeem(lockOut, aliceAddr, testFee)
	if err != nil {
		t.Fatalf("BuildRedeem: %v", err)
	}
	digest, err := tx.Digest()
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if err := CompleteRedeem(tx, signDigest(privA, digest), signDigest(privB, digest), pubA, pubB); err != nil {
		t.Fatalf("CompleteRedeem: %v", err)
	}

	if _, err := ExtractSignature(tx.MsgTx, otherPub, digest); err == nil {
		t.Fatal("expected ExtractSignature to fail for a non-participating key")
	}
}
