package walletadapter

import "context"

// MoneroTransferProof is the opaque, wallet-specific evidence a
// transfer took place, handed to the counterparty so they can verify
// it without their own synced daemon trusting the sender's word alone.
type MoneroTransferProof []byte

// MoneroRefresher synchronizes the wallet's view of the Monero chain.
type MoneroRefresher interface {
	Refresh(ctx context.Context) error
}

// MoneroBalancer reports spendable and total Monero balance, in atomic
// units (piconero).
type MoneroBalancer interface {
	GetBalance(ctx context.Context) (spendable, total uint64, err error)
}

// MoneroTransferrer sends funds and produces a verifiable proof of
// having done so.
type MoneroTransferrer interface {
	Transfer(ctx context.Context, addr string, amount uint64) (txID string, proof MoneroTransferProof, err error)
	VerifyTransfer(ctx context.Context, txID string, addr string, amount uint64, proof MoneroTransferProof) error
}

// MoneroKeyImporter creates a watch-or-spend wallet from a raw keypair,
// the mechanism both parties use once they have assembled the shared
// spend scalar s = s_a + s_b.
type MoneroKeyImporter interface {
	CreateFromKeys(ctx context.Context, spendKey, viewKey [32]byte, restoreHeight uint64) (MoneroWallet, error)
}

// MoneroSweeper empties the wallet to a single destination address,
// used by whichever party recovers the shared spend key to claim or
// reclaim the locked Monero.
type MoneroSweeper interface {
	SweepTo(ctx context.Context, addr string) (txID string, err error)
}

// MoneroWallet is the full capability set swapfsm needs from a Monero
// wallet.
type MoneroWallet interface {
	MainAddress(ctx context.Context) (string, error)
	MoneroRefresher
	MoneroBalancer
	MoneroTransferrer
	MoneroSweeper
}
