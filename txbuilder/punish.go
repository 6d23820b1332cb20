package txbuilder

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// BuildPunish constructs TxPunish: the single input spending
// cancelOut's punish branch after sequence tPunish, paying
// alicePunishAddr.
func BuildPunish(cancelOut *CancelOutput, tPunish uint32, alicePunishAddr btcutil.Address, fee btcutil.Amount) (*Tx, error) {
	sequence, err := lockTimeToSequence(tPunish)
	if err != nil {
		return nil, err
	}

	outAmount, err := deductFee(cancelOut.Value, fee)
	if err != nil {
		return nil, err
	}

	pkScript, err := txscriptPayToAddr(alicePunishAddr)
	if err != nil {
		return nil, newBuildErr(BuildErrorBadDescriptor, "alice punish address: %v", err)
	}

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: cancelOut.OutPoint,
		Sequence:         sequence,
	})
	tx.AddTxOut(&wire.TxOut{Value: int64(outAmount), PkScript: pkScript})

	return &Tx{
		MsgTx:         tx,
		prevOutScript: cancelOut.PkScript,
		prevOutValue:  cancelOut.Value,
		witnessScript: cancelOut.WitnessScript,
		hasSelector:   true,
	}, nil
}

// CompletePunish populates TxPunish's witness, selecting the
// timelocked punish branch of the cancel output script.
func CompletePunish(tx *Tx, sigA, sigB []byte, pubA, pubB *btcec.PublicKey) error {
	punishBranch := true
	return tx.complete(sigA, sigB, pubA, pubB, &punishBranch)
}
