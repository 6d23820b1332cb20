package txbuilder

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
)

// Utxo is one of Bob's wallet outputs offered to fund TxLock. Signing
// these inputs is the wallet's responsibility (sign_and_finalise(psbt)
// per the external wallet interface); the builder only needs each
// input's previous output value and script to produce a valid PSBT.
type Utxo struct {
	OutPoint wire.OutPoint
	Value    btcutil.Amount
	PkScript []byte
}

// LockOutput describes the 2-of-2 output TxLock creates, everything the
// other four builders need to reference it. It is fully determined at
// build_lock time: segwit txid hashing ignores witness data, so the
// txid is stable even though TxLock is not yet signed.
type LockOutput struct {
	OutPoint      wire.OutPoint
	Value         btcutil.Amount
	WitnessScript []byte
	PkScript      []byte
}

// BuildLock constructs the unsigned PSBT funding the {A, B} 2-of-2
// output with amount, spending utxos and returning any change to
// changeAddr. The wallet adapter signs and finalizes the returned
// packet and broadcasts the result; build_lock itself never signs.
func BuildLock(
	utxos []Utxo,
	a, b *btcec.PublicKey,
	amount btcutil.Amount,
	changeAddr btcutil.Address,
	changeAmount btcutil.Amount,
) (*psbt.Packet, *LockOutput, error) {

	if len(utxos) == 0 {
		return nil, nil, newBuildErr(BuildErrorBadDescriptor, "no funding utxos supplied")
	}
	if amount <= 0 || outputIsDust(amount) {
		return nil, nil, newBuildErr(BuildErrorUnderflow, "lock amount %s at or below dust", amount)
	}

	witnessScript, err := genMultiSigScript(a, b)
	if err != nil {
		return nil, nil, newBuildErr(BuildErrorBadDescriptor, "building 2-of-2 script: %v", err)
	}
	pkScript, err := genP2WSHPkScript(witnessScript)
	if err != nil {
		return nil, nil, newBuildErr(BuildErrorBadDescriptor, "building P2WSH script: %v", err)
	}

	tx := wire.NewMsgTx(2)
	for _, u := range utxos {
		tx.AddTxIn(&wire.TxIn{
			PreviousOutPoint: u.OutPoint,
			Sequence:         wire.MaxTxInSequenceNum,
		})
	}

	tx.AddTxOut(&wire.TxOut{Value: int64(amount), PkScript: pkScript})

	if changeAmount > 0 {
		changeScript, err := txscriptPayToAddr(changeAddr)
		if err != nil {
			return nil, nil, newBuildErr(BuildErrorBadDescriptor, "change address: %v", err)
		}
		tx.AddTxOut(&wire.TxOut{Value: int64(changeAmount), PkScript: changeScript})
	}

	packet, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return nil, nil, newBuildErr(BuildErrorBadDescriptor, "wrapping PSBT: %v", err)
	}
	for i, u := range utxos {
		packet.Inputs[i].WitnessUtxo = &wire.TxOut{
			Value:    int64(u.Value),
			PkScript: u.PkScript,
		}
	}

	lockOut := &LockOutput{
		OutPoint:      wire.OutPoint{Hash: tx.TxHash(), Index: 0},
		Value:         amount,
		WitnessScript: witnessScript,
		PkScript:      pkScript,
	}

	return packet, lockOut, nil
}
