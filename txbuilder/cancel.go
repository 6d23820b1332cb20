package txbuilder

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// CancelOutput describes the second 2-of-2 output TxCancel creates,
// which TxRefund and TxPunish spend along their respective branches.
type CancelOutput struct {
	OutPoint      wire.OutPoint
	Value         btcutil.Amount
	WitnessScript []byte
	PkScript      []byte
}

// BuildCancel constructs TxCancel: the single input spending lockOut
// after sequence tCancel, paying a fresh {A, B} 2-of-2 output gated by
// tPunish on its punish branch.
func BuildCancel(lockOut *LockOutput, tCancel, tPunish uint32, a, b *btcec.PublicKey, fee btcutil.Amount) (*Tx, *CancelOutput, error) {
	sequence, err := lockTimeToSequence(tCancel)
	if err != nil {
		return nil, nil, err
	}
	if _, err := lockTimeToSequence(tPunish); err != nil {
		return nil, nil, err
	}

	outAmount, err := deductFee(lockOut.Value, fee)
	if err != nil {
		return nil, nil, err
	}

	witnessScript, err := cancelOutputScript(a, b, tPunish)
	if err != nil {
		return nil, nil, newBuildErr(BuildErrorBadDescriptor, "building cancel output script: %v", err)
	}
	pkScript, err := genP2WSHPkScript(witnessScript)
	if err != nil {
		return nil, nil, newBuildErr(BuildErrorBadDescriptor, "building P2WSH script: %v", err)
	}

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: lockOut.OutPoint,
		Sequence:         sequence,
	})
	tx.AddTxOut(&wire.TxOut{Value: int64(outAmount), PkScript: pkScript})

	cancelOut := &CancelOutput{
		OutPoint:      wire.OutPoint{Hash: tx.TxHash(), Index: 0},
		Value:         outAmount,
		WitnessScript: witnessScript,
		PkScript:      pkScript,
	}

	return &Tx{
		MsgTx:         tx,
		prevOutScript: lockOut.PkScript,
		prevOutValue:  lockOut.Value,
		witnessScript: lockOut.WitnessScript,
	}, cancelOut, nil
}

// CompleteCancel populates TxCancel's witness. TxCancel spends
// TxLock's plain 2-of-2 output, so it carries no branch selector.
func CompleteCancel(tx *Tx, sigA, sigB []byte, pubA, pubB *btcec.PublicKey) error {
	return tx.complete(sigA, sigB, pubA, pubB, nil)
}
