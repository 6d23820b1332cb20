package xmrbtccrypto

import "fmt"

// Code enumerates the CryptoError taxonomy of the core (see error
// handling design): every verification failure returns one of these
// rather than constructing a partial value.
type Code int

const (
	// CodeInvalidDLEQ indicates a DLEQ proof failed to verify against
	// its claimed secp256k1/ed25519 point pair.
	CodeInvalidDLEQ Code = iota

	// CodeBadAdaptor indicates an encrypted (adaptor) signature did not
	// verify against its claimed public key and statement point.
	CodeBadAdaptor

	// CodeSignatureMismatch indicates recover() was given a signature
	// that is not the decryption of the supplied encrypted signature
	// under any scalar matching the expected statement point.
	CodeSignatureMismatch
)

func (c Code) String() string {
	switch c {
	case CodeInvalidDLEQ:
		return "InvalidDLEQ"
	case CodeBadAdaptor:
		return "BadAdaptor"
	case CodeSignatureMismatch:
		return "SignatureMismatch"
	default:
		return "UnknownCryptoError"
	}
}

// Error is the fatal CryptoError of spec §7: every cryptographic
// verification failure surfaces as one of these, and the swap aborts
// before any broadcast.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func newErr(c Code, format string, args ...interface{}) *Error {
	return &Error{Code: c, Msg: fmt.Sprintf(format, args...)}
}
