package swapnet

import (
	"context"
	"fmt"
	"sync"

	"github.com/btcxmr/swapcore/swapwire"
)

// outgoingMsg packages a message to be delivered to a peer, mirroring
// the teacher's peer.go outgoinMsg queueing idiom: a value object
// carrying everything the delivery goroutine needs, passed over a
// channel rather than touched by the sender after handoff.
type outgoingMsg struct {
	from PeerID
	msg  swapwire.Message
}

// MemoryNetwork is an in-process Network that connects a fixed set of
// named peers via buffered channels. It is intended for swapfsm's test
// harness and for package tests that need two ends of a handshake
// without a real transport.
type MemoryNetwork struct {
	self PeerID

	mu     sync.Mutex
	peers  map[PeerID]*MemoryNetwork
	inbox  chan outgoingMsg
	discon chan DisconnectEvent
	closed bool
}

// NewMemoryLink builds a connected pair of MemoryNetworks, one for
// each side, each addressed by the other's PeerID.
func NewMemoryLink(a, b PeerID, bufSize int) (*MemoryNetwork, *MemoryNetwork) {
	na := &MemoryNetwork{
		self:   a,
		peers:  make(map[PeerID]*MemoryNetwork),
		inbox:  make(chan outgoingMsg, bufSize),
		discon: make(chan DisconnectEvent, 1),
	}
	nb := &MemoryNetwork{
		self:   b,
		peers:  make(map[PeerID]*MemoryNetwork),
		inbox:  make(chan outgoingMsg, bufSize),
		discon: make(chan DisconnectEvent, 1),
	}
	na.peers[b] = nb
	nb.peers[a] = na
	return na, nb
}

func (n *MemoryNetwork) Send(ctx context.Context, peer PeerID, msg swapwire.Message) error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return ErrDisconnected
	}
	target, ok := n.peers[peer]
	n.mu.Unlock()
	if !ok {
		return fmt.Errorf("swapnet: unknown peer %q", peer)
	}

	target.mu.Lock()
	closed := target.closed
	target.mu.Unlock()
	if closed {
		return ErrDisconnected
	}

	select {
	case target.inbox <- outgoingMsg{from: n.self, msg: msg}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *MemoryNetwork) Recv(ctx context.Context) (PeerID, swapwire.Message, error) {
	select {
	case m, ok := <-n.inbox:
		if !ok {
			return "", nil, ErrDisconnected
		}
		return m.from, m.msg, nil
	case <-ctx.Done():
		return "", nil, ctx.Err()
	}
}

func (n *MemoryNetwork) Disconnected() <-chan DisconnectEvent {
	return n.discon
}

// Disconnect simulates the named peer going away: future Sends to it
// fail with an unknown-peer error (not ErrDisconnected), and a
// DisconnectEvent is delivered on this side.
func (n *MemoryNetwork) Disconnect(peer PeerID) {
	n.mu.Lock()
	delete(n.peers, peer)
	n.mu.Unlock()

	select {
	case n.discon <- DisconnectEvent{Peer: peer}:
	default:
	}
}

func (n *MemoryNetwork) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	close(n.inbox)
	close(n.discon)
	return nil
}
