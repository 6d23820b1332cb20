// Package swapnet defines the transport abstraction swapfsm tasks use
// to exchange swapwire messages with a counterparty, and a disconnect
// event feed that lets a task notice when its peer has gone away.
// Concrete transports (noise-encrypted TCP, a test harness, etc.) are
// out of scope; this package specifies only the interface the core
// calls and a couple of reference implementations.
package swapnet

import (
	"context"
	"errors"

	"github.com/btcxmr/swapcore/swapid"
	"github.com/btcxmr/swapcore/swapwire"
)

// PeerID identifies a swap counterparty. Concrete transports are free
// to key this however suits them (a pubkey hex string, a connection
// handle's string form); swapfsm treats it as an opaque comparable
// value.
type PeerID string

// ErrDisconnected is returned by Send/Recv once the peer identified by
// the call is known to be gone.
var ErrDisconnected = errors.New("swapnet: peer disconnected")

// DisconnectEvent reports that a previously reachable peer has gone
// away, for whatever swaps that peer was a counterparty to.
type DisconnectEvent struct {
	Peer PeerID
}

// Network is the minimal transport a swap task needs: ordered,
// per-peer message delivery, addressed by PeerID, plus a feed of
// disconnect events a task can select on alongside its own timers.
//
// Implementations MUST preserve per-peer message order (messages for a
// single swap's handshake must arrive in the order they were sent) but
// need not order messages across distinct peers.
type Network interface {
	// Send delivers msg to peer. It returns once the message has been
	// handed to the transport, not once the peer has acknowledged it.
	Send(ctx context.Context, peer PeerID, msg swapwire.Message) error

	// Recv blocks until a message arrives from any peer, ctx is
	// cancelled, or the network is closed.
	Recv(ctx context.Context) (PeerID, swapwire.Message, error)

	// Disconnected returns a channel on which a DisconnectEvent is
	// delivered each time a peer is lost. The channel is closed when
	// the network itself shuts down.
	Disconnected() <-chan DisconnectEvent

	// Close releases the network's resources. Subsequent Send/Recv
	// calls return an error.
	Close() error
}

// SwapAddressBook resolves a swap id to the peer it is being run
// against, letting a long-lived Network implementation route inbound
// messages without every swap task needing to track connection state
// itself.
type SwapAddressBook interface {
	PeerForSwap(id swapid.ID) (PeerID, bool)
	BindSwap(id swapid.ID, peer PeerID)
	UnbindSwap(id swapid.ID)
}
