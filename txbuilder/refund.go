package txbuilder

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// BuildRefund constructs TxRefund: the single input spending
// cancelOut's refund branch (no additional relative timelock — the
// wait already happened via TxCancel's own sequence), paying
// bobRefundAddr.
func BuildRefund(cancelOut *CancelOutput, bobRefundAddr btcutil.Address, fee btcutil.Amount) (*Tx, error) {
	outAmount, err := deductFee(cancelOut.Value, fee)
	if err != nil {
		return nil, err
	}

	pkScript, err := txscriptPayToAddr(bobRefundAddr)
	if err != nil {
		return nil, newBuildErr(BuildErrorBadDescriptor, "bob refund address: %v", err)
	}

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: cancelOut.OutPoint,
		Sequence:         wire.MaxTxInSequenceNum,
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

// CompleteRefund populates TxRefund's witness, selecting the refund
// (non-timelocked) branch of the cancel output script.
func CompleteRefund(tx *Tx, sigA, sigB []byte, pubA, pubB *btcec.PublicKey) error {
	refundBranch := false
	return tx.complete(sigA, sigB, pubA, pubB, &refundBranch)
}
