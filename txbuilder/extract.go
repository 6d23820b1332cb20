package txbuilder

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/wire"
)

// ExtractSignature locates the signature over hash that verifies
// against pubKey in an observed TxRedeem (or TxRefund/TxPunish)
// witness stack. Bob uses this to pull his own decrypted signature
// (key B) off TxRedeem, and Alice hers (key A) off TxRefund, so each can
// Recover the counterparty's spend scalar, without assuming which
// witness slot belongs to which party — the original implementation this core is
// based on does the same trial-verification rather than trusting
// witness order, since a witness-completing party could in principle
// swap the two signature pushes without invalidating the script.
func ExtractSignature(tx *wire.MsgTx, pubKey *btcec.PublicKey, hash [32]byte) ([]byte, error) {
	if len(tx.TxIn) == 0 {
		return nil, newWitnessErr(WitnessNoInputs, "observed transaction has no inputs")
	}
	if len(tx.TxIn) > 1 {
		return nil, newWitnessErr(WitnessTooManyInputs, "observed transaction has %d inputs", len(tx.TxIn))
	}

	witness := tx.TxIn[0].Witness
	if len(witness) == 0 {
		return nil, newWitnessErr(WitnessEmptyWitnessStack, "input carries no witness data")
	}

	// Plain 2-of-2 completion: [dummy, sigA, sigB, witnessScript] (4
	// items). A cancel-output spend (TxRefund/TxPunish) carries an
	// extra branch-selector element before the script (5 items). The
	// two signatures are always the second and third stack elements
	// either way.
	if len(witness) != 4 && len(witness) != 5 {
		return nil, newWitnessErr(WitnessNotThreeWitnesses,
			"expected 4 or 5 witness stack items, got %d", len(witness))
	}

	for _, candidate := range [][]byte{witness[1], witness[2]} {
		if len(candidate) == 0 {
			continue
		}
		// Strip the trailing sighash-type byte before DER parsing.
		der := candidate[:len(candidate)-1]
		sig, err := ecdsa.ParseDERSignature(der)
		if err != nil {
			continue
		}
		if sig.Verify(hash[:], pubKey) {
			return der, nil
		}
	}

	return nil, newWitnessErr(WitnessNoMatchingSignature, "no witness signature verifies against the given key")
}
