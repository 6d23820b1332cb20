package xmrbtccrypto

import "testing"

func TestKeypairEdDLEQRoundTrip(t *testing.T) {
	s, sEd, sK1, proof, err := KeypairEd()
	if err != nil {
		t.Fatalf("KeypairEd: %v", err)
	}
	defer s.Zero()

	if err := VerifyDLEQ(sEd, sK1, proof); err != nil {
		t.Fatalf("VerifyDLEQ rejected a valid proof: %v", err)
	}
}

func TestVerifyDLEQRejectsMismatchedPoint(t *testing.T) {
	_, sEd, _, proof, err := KeypairEd()
	if err != nil {
		t.Fatalf("KeypairEd: %v", err)
	}

	_, _, otherK1, _, err := KeypairEd()
	if err != nil {
		t.Fatalf("KeypairEd (second): %v", err)
	}

	if err := VerifyDLEQ(sEd, otherK1, proof); err == nil {
		t.Fatal("expected VerifyDLEQ to reject mismatched secp256k1 point")
	}
}

func TestVerifyDLEQRejectsTamperedChallenge(t *testing.T) {
	_, sEd, sK1, proof, err := KeypairEd()
	if err != nil {
		t.Fatalf("KeypairEd: %v", err)
	}

	proof.bits[0].c0[0] ^= 0xff

	if err := VerifyDLEQ(sEd, sK1, proof); err == nil {
		t.Fatal("expected VerifyDLEQ to reject a tampered bit challenge")
	}
}
