// Package txbuilder constructs and completes the five Bitcoin
// transactions of a swap — lock, redeem, cancel, refund, punish — as
// pure functions of shared keys, timelocks, and addresses.
package txbuilder

import "fmt"

// BuildErrorCode enumerates why a transaction could not be constructed.
type BuildErrorCode int

const (
	// BuildErrorUnderflow indicates the output amount, after the fixed
	// per-hop fee, is at or below the dust threshold.
	BuildErrorUnderflow BuildErrorCode = iota

	// BuildErrorBadDescriptor indicates the supplied descriptor (keys,
	// timelocks, previous-output reference) is malformed or internally
	// inconsistent.
	BuildErrorBadDescriptor
)

func (c BuildErrorCode) String() string {
	switch c {
	case BuildErrorUnderflow:
		return "Underflow"
	case BuildErrorBadDescriptor:
		return "BadDescriptor"
	default:
		return "UnknownBuildError"
	}
}

// BuildError is returned by the build_* constructors.
type BuildError struct {
	Code BuildErrorCode
	Msg  string
}

func (e *BuildError) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func newBuildErr(c BuildErrorCode, format string, args ...interface{}) *BuildError {
	return &BuildError{Code: c, Msg: fmt.Sprintf(format, args...)}
}

// WitnessErrorCode enumerates why witness completion or extraction
// failed.
type WitnessErrorCode int

const (
	// WitnessAlreadySigned indicates Complete was called on a
	// transaction whose input already carries witness data.
	WitnessAlreadySigned WitnessErrorCode = iota

	// WitnessNoInputs indicates the observed transaction has no
	// inputs to extract a signature from.
	WitnessNoInputs

	// WitnessTooManyInputs indicates the observed transaction has more
	// than the single input expected of TxRedeem/TxRefund/TxPunish.
	WitnessTooManyInputs

	// WitnessEmptyWitnessStack indicates the input carries no witness
	// data at all.
	WitnessEmptyWitnessStack

	// WitnessNotThreeWitnesses indicates the witness stack does not
	// have the expected {nil, sigA, sigB, script} (or OP_IF-selector
	// variant) shape.
	WitnessNotThreeWitnesses

	// WitnessNoMatchingSignature indicates none of the candidate
	// signatures in the witness stack verify against the expected
	// public key.
	WitnessNoMatchingSignature
)

func (c WitnessErrorCode) String() string {
	switch c {
	case WitnessAlreadySigned:
		return "AlreadySigned"
	case WitnessNoInputs:
		return "NoInputs"
	case WitnessTooManyInputs:
		return "TooManyInputs"
	case WitnessEmptyWitnessStack:
		return "EmptyWitnessStack"
	case WitnessNotThreeWitnesses:
		return "NotThreeWitnesses"
	case WitnessNoMatchingSignature:
		return "NoMatchingSignature"
	default:
		return "UnknownWitnessError"
	}
}

// WitnessError is returned by witness completion and signature
// extraction.
type WitnessError struct {
	Code WitnessErrorCode
	Msg  string
}

func (e *WitnessError) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func newWitnessErr(c WitnessErrorCode, format string, args ...interface{}) *WitnessError {
	return &WitnessError{Code: c, Msg: fmt.Sprintf(format, args...)}
}
