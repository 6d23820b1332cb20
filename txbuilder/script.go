package txbuilder

import (
	"bytes"
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// sortPubKeys returns a and b in lexicographic order of their
// compressed serialization, the order the 2-of-2 descriptor's
// satisfaction rule (and OP_CHECKMULTISIG itself) requires.
func sortPubKeys(a, b *btcec.PublicKey) (*btcec.PublicKey, *btcec.PublicKey) {
	aBytes := a.SerializeCompressed()
	bBytes := b.SerializeCompressed()
	if bytes.Compare(aBytes, bBytes) <= 0 {
		return a, b
	}
	return b, a
}

// genMultiSigScript returns the raw 2-of-2 OP_CHECKMULTISIG script
// controlled by {a, b}, in lexicographic pubkey order.
func genMultiSigScript(a, b *btcec.PublicKey) ([]byte, error) {
	first, second := sortPubKeys(a, b)

	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_2)
	builder.AddData(first.SerializeCompressed())
	builder.AddData(second.SerializeCompressed())
	builder.AddOp(txscript.OP_2)
	builder.AddOp(txscript.OP_CHECKMULTISIG)
	return builder.Script()
}

// cancelOutputScript is the witness script controlling the 2-of-2
// output produced by TxCancel. It has two spending paths, selected by
// the first witness stack element: the refund path (immediate 2-of-2),
// taken when the selector is false, and the punish path (2-of-2 gated
// by a relative timelock of tPunish blocks), taken when true. This
// mirrors the IF/ELSE timeout-vs-immediate shape of a Lightning
// to-local output, with the roles of the two branches swapped (here
// the *timelocked* branch is the OP_IF arm).
func cancelOutputScript(a, b *btcec.PublicKey, tPunish uint32) ([]byte, error) {
	first, second := sortPubKeys(a, b)

	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_IF)
	builder.AddInt64(int64(tPunish))
	builder.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)
	builder.AddOp(txscript.OP_DROP)
	builder.AddOp(txscript.OP_ENDIF)
	builder.AddOp(txscript.OP_2)
	builder.AddData(first.SerializeCompressed())
	builder.AddData(second.SerializeCompressed())
	builder.AddOp(txscript.OP_2)
	builder.AddOp(txscript.OP_CHECKMULTISIG)
	return builder.Script()
}

// witnessScriptHash returns the SHA-256 of script, the value committed
// to by a P2WSH output's pkScript.
func witnessScriptHash(script []byte) [32]byte {
	return sha256.Sum256(script)
}

// genP2WSHPkScript returns the P2WSH scriptPubKey committing to
// witnessScript.
func genP2WSHPkScript(witnessScript []byte) ([]byte, error) {
	hash := witnessScriptHash(witnessScript)
	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_0)
	builder.AddData(hash[:])
	return builder.Script()
}

// p2wshAddress returns the bech32 address for a P2WSH script, used for
// operator-facing descriptor display (not consumed by the builders
// themselves, which work directly in scriptPubKey bytes).
func p2wshAddress(witnessScript []byte, params *chaincfg.Params) (*btcutil.AddressWitnessScriptHash, error) {
	hash := witnessScriptHash(witnessScript)
	return btcutil.NewAddressWitnessScriptHash(hash[:], params)
}

// txscriptPayToAddr returns the scriptPubKey paying addr, used for
// TxLock's change output and the four builders' destination outputs.
func txscriptPayToAddr(addr btcutil.Address) ([]byte, error) {
	return txscript.PayToAddrScript(addr)
}

// maxRelativeTimelock is the largest relative-locktime block delta
// representable in a BIP-68 sequence number (bits 0-15, with bit 22 and
// the disable-flag bit left clear for block-unit, enabled locks).
const maxRelativeTimelock = wire.SequenceLockTimeMask

// lockTimeToSequence encodes a relative block-count delta as a BIP-68
// sequence number. All of the core's timelocks are block-denominated,
// so the seconds-granularity flag is never set.
func lockTimeToSequence(blocks uint32) (uint32, error) {
	if blocks == 0 {
		return 0, newBuildErr(BuildErrorBadDescriptor, "relative timelock must be >= 1 block")
	}
	if blocks > maxRelativeTimelock {
		return 0, newBuildErr(BuildErrorBadDescriptor,
			"relative timelock %d exceeds maximum %d", blocks, maxRelativeTimelock)
	}
	return blocks, nil
}
