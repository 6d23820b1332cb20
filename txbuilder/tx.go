package txbuilder

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// sigHashAllSuffix is appended to a raw DER signature to form the
// witness-stack encoding of a SIGHASH_ALL signature.
const sigHashAllSuffix = byte(txscript.SigHashAll)

// Tx wraps one of the five swap transactions together with the data
// needed to compute its sighash and, later, to complete its witness.
// The underlying wire.MsgTx is built once at construction time and
// never mutated except to attach the final witness.
type Tx struct {
	MsgTx *wire.MsgTx

	prevOutScript []byte
	prevOutValue  btcutil.Amount
	witnessScript []byte

	// hasSelector is true for a transaction spending a
	// cancelOutputScript output (refund or punish), whose witness
	// stack carries an extra OP_IF branch selector.
	hasSelector bool
}

// Digest returns the segwit v0 sighash over the single input's
// scriptCode, using SIGHASH_ALL.
func (t *Tx) Digest() ([32]byte, error) {
	fetcher := txscript.NewCannedPrevOutputFetcher(t.prevOutScript, int64(t.prevOutValue))
	sigHashes := txscript.NewTxSigHashes(t.MsgTx, fetcher)

	digest, err := txscript.CalcWitnessSigHash(
		t.witnessScript, sigHashes, txscript.SigHashAll, t.MsgTx, 0, int64(t.prevOutValue),
	)
	if err != nil {
		return [32]byte{}, err
	}

	var out [32]byte
	copy(out[:], digest)
	return out, nil
}

// TxID returns the transaction's txid. Segwit witness data does not
// factor into this hash, so it is stable before the witness is
// attached.
func (t *Tx) TxID() chainhash.Hash {
	return t.MsgTx.TxHash()
}

// isSigned reports whether the single input already carries witness
// data.
func (t *Tx) isSigned() bool {
	return len(t.MsgTx.TxIn[0].Witness) > 0
}

// complete populates the input's witness stack with the two
// signatures in lexicographic-pubkey order, followed (for a
// cancel-output spend) by an OP_IF branch selector, then the witness
// script.
// sigForA and sigForB are raw DER-encoded ECDSA signatures over
// Digest().
func (t *Tx) complete(sigForA, sigForB []byte, pubA, pubB *btcec.PublicKey, selector *bool) error {
	if t.isSigned() {
		return newWitnessErr(WitnessAlreadySigned, "input already carries witness data")
	}

	first, _ := sortPubKeys(pubA, pubB)

	var sigFirst, sigSecond []byte
	if first.IsEqual(pubA) {
		sigFirst, sigSecond = sigForA, sigForB
	} else {
		sigFirst, sigSecond = sigForB, sigForA
	}

	witness := wire.TxWitness{
		nil,
		append(append([]byte{}, sigFirst...), sigHashAllSuffix),
		append(append([]byte{}, sigSecond...), sigHashAllSuffix),
	}

	if t.hasSelector {
		if selector == nil {
			return newBuildErr(BuildErrorBadDescriptor, "missing branch selector for cancel-output spend")
		}
		if *selector {
			witness = append(witness, []byte{1})
		} else {
			witness = append(witness, nil)
		}
	}

	witness = append(witness, t.witnessScript)
	t.MsgTx.TxIn[0].Witness = witness

	return nil
}
