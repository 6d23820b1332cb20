// Package swapfsm implements the two swap automatons (Alice's and
// Bob's) as per-swap task types whose methods are the transitions over
// swapstate values. The event loop that feeds wallet, network, and
// timer events to those methods is not part of this package.
package swapfsm

import "fmt"

// CryptoCode enumerates CryptoError's fatal failure modes: a
// cryptographic check failed, so the swap aborts before any broadcast.
type CryptoCode int

const (
	CryptoInvalidDLEQ CryptoCode = iota
	CryptoBadAdaptor
	CryptoSignatureMismatch
)

// CryptoError is fatal: abort the swap, no broadcast.
type CryptoError struct {
	Code CryptoCode
	Err  error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("crypto error (%v): %v", e.Code, e.Err)
}

func (e *CryptoError) Unwrap() error { return e.Err }

// ChainCode enumerates ChainError's failure modes.
type ChainCode int

const (
	// ChainRejected is fatal when it reflects persistent rejection
	// (the counterparty double-spent our input); retriable for
	// transient broadcast failures.
	ChainRejected ChainCode = iota
	// ChainNotFound is retriable: the transaction simply hasn't
	// propagated yet.
	ChainNotFound
	ChainReorg
)

// ChainError reports a chain-observation or broadcast problem.
// Fatal reports whether the condition is terminal (persistent
// rejection) rather than transient (still propagating).
type ChainError struct {
	Code  ChainCode
	Fatal bool
	Err   error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("chain error (%v, fatal=%v): %v", e.Code, e.Fatal, e.Err)
}

func (e *ChainError) Unwrap() error { return e.Err }

// NetworkCode enumerates NetworkError's failure modes.
type NetworkCode int

const (
	NetworkTimeout NetworkCode = iota
	NetworkPeerGone
	NetworkMalformed
)

// NetworkError is bounded-retriable during the handshake; after the
// handshake the state machine never blocks on the network for a
// safety-critical transition, since all safety-critical information is
// already on chain by then.
type NetworkError struct {
	Code NetworkCode
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error (%v): %v", e.Code, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StoreCode enumerates StoreError's failure modes.
type StoreCode int

const (
	StoreIO StoreCode = iota
	StoreCorrupt
)

// StoreError is fatal: it indicates operator intervention is needed.
type StoreError struct {
	Code StoreCode
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error (%v): %v", e.Code, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ProtocolCode enumerates ProtocolError's failure modes.
type ProtocolCode int

const (
	ProtocolUnexpectedMessage ProtocolCode = iota
	ProtocolOutOfOrder
)

// ProtocolError means: discard the message, log it, do not transition.
// It is never fatal on its own.
type ProtocolError struct {
	Code ProtocolCode
	Err  error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error (%v): %v", e.Code, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// BuildCode mirrors txbuilder.BuildErrorCode; swapfsm wraps build
// failures surfaced from txbuilder in its own taxonomy entry so
// callers can type-switch over one error family.
type BuildCode int

const (
	BuildUnderflow BuildCode = iota
	BuildBadDescriptor
)

// BuildError is fatal at handshake time: it indicates the two parties
// disagree on a parameter (amount, fee, timelock) that can't be
// reconciled without renegotiating.
type BuildError struct {
	Code BuildCode
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build error (%v): %v", e.Code, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
