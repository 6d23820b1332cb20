package txbuilder

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// BuildRedeem constructs TxRedeem: the single input spending lockOut,
// paying aliceAddr the locked amount minus fee.
func BuildRedeem(lockOut *LockOutput, aliceAddr btcutil.Address, fee btcutil.Amount) (*Tx, error) {
	outAmount, err := deductFee(lockOut.Value, fee)
	if err != nil {
		return nil, err
	}

	pkScript, err := txscriptPayToAddr(aliceAddr)
	if err != nil {
		return nil, newBuildErr(BuildErrorBadDescriptor, "alice address: %v", err)
	}

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: lockOut.OutPoint,
		Sequence:         wire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(&wire.TxOut{Value: int64(outAmount), PkScript: pkScript})

	return &Tx{
		MsgTx:         tx,
		prevOutScript: lockOut.PkScript,
		prevOutValue:  lockOut.Value,
		witnessScript: lockOut.WitnessScript,
	}, nil
}

// CompleteRedeem populates TxRedeem's witness from Alice's and Bob's
// signatures over its digest.
func CompleteRedeem(tx *Tx, sigA, sigB []byte, pubA, pubB *btcec.PublicKey) error {
	return tx.complete(sigA, sigB, pubA, pubB, nil)
}
