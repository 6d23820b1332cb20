package txbuilder

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcwallet/wallet/txrules"
)

// outputIsDust reports whether value, locked under a P2WSH output,
// would be rejected as dust at the default relay fee rate. Builders
// fail with BuildError::Underflow rather than construct a transaction
// the network would reject.
func outputIsDust(value btcutil.Amount) bool {
	pkScript := make([]byte, txscript.WitnessV0ScriptHashDataSize+2)
	return txrules.IsDustAmount(value, len(pkScript), txrules.DefaultRelayFeePerKb)
}

// deductFee subtracts fee from amount, failing with BuildError::Underflow
// if the result is dust or negative.
func deductFee(amount, fee btcutil.Amount) (btcutil.Amount, error) {
	remaining := amount - fee
	if remaining <= 0 || outputIsDust(remaining) {
		return 0, newBuildErr(BuildErrorUnderflow,
			"amount %s minus fee %s is at or below dust", amount, fee)
	}
	return remaining, nil
}
