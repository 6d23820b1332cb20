// Package walletadapter defines the capability interfaces swapfsm uses
// to drive an externally managed Bitcoin wallet and Monero wallet.
// Concrete backends (RPC clients, embedded wallets) are out of scope;
// this package specifies only the narrow, composable surface the core
// calls, following the teacher's preference for several small
// interfaces over one fat one.
package walletadapter

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// ChainStatus describes a transaction's on-chain confirmation state.
type ChainStatus int

const (
	// StatusUnknown means the wallet has no record of the transaction.
	StatusUnknown ChainStatus = iota
	// StatusMempool means the transaction is known but unconfirmed.
	StatusMempool
	// StatusConfirmed means the transaction has at least one
	// confirmation; Confirmations reports the exact depth.
	StatusConfirmed
)

// TxStatus is the result of a status_of query.
type TxStatus struct {
	Status        ChainStatus
	Confirmations uint32
	BlockHeight   uint32
}

// ChainEvent is delivered on a Watcher's subscription channel as a
// watched transaction's confirmation state changes.
type ChainEvent struct {
	TxID   chainhash.Hash
	Status TxStatus
	// SpentBy is set when the watched output was spent by a different
	// transaction than the one being tracked (e.g. TxCancel observed
	// instead of the expected TxRedeem).
	SpentBy *chainhash.Hash
}

// AddressSource mints fresh receive addresses.
type AddressSource interface {
	NewAddress(ctx context.Context) (btcutil.Address, error)
}

// Balancer reports spendable funds.
type Balancer interface {
	Balance(ctx context.Context) (btcutil.Amount, error)
}

// Refresher synchronizes the wallet's view of the chain before a
// balance or UTXO query is trusted.
type Refresher interface {
	Sync(ctx context.Context) error
}

// Signer completes a partially signed transaction with this wallet's
// keys and returns the finalized transaction.
type Signer interface {
	SignAndFinalize(ctx context.Context, pkt *psbt.Packet) (*wire.MsgTx, error)
}

// Broadcaster publishes a finalized transaction to the network.
type Broadcaster interface {
	Broadcast(ctx context.Context, tx *wire.MsgTx) error
}

// Watcher reports confirmation-depth changes for a chosen transaction,
// and the current chain tip.
type Watcher interface {
	Subscribe(ctx context.Context, txid chainhash.Hash) (<-chan ChainEvent, error)
	StatusOf(ctx context.Context, txid chainhash.Hash) (TxStatus, error)
	BlockHeight(ctx context.Context) (uint32, error)
}

// FeeEstimator reports the wallet's fee policy for building transactions.
type FeeEstimator interface {
	// TransactionFee returns the fee rate, in satoshis per vbyte, to
	// use for a transaction that should confirm within confTarget
	// blocks.
	TransactionFee(ctx context.Context, confTarget uint32) (btcutil.Amount, error)
}

// BitcoinWallet is the full capability set swapfsm needs from a
// Bitcoin wallet, composed from the narrower interfaces above. Callers
// that only need one capability (e.g. a test stub that only signs)
// should depend on that capability interface instead of this one.
type BitcoinWallet interface {
	AddressSource
	Balancer
	Refresher
	Signer
	Broadcaster
	Watcher
	FeeEstimator
}
