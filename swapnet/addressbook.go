package swapnet

import (
	"sync"

	"github.com/btcxmr/swapcore/swapid"
)

// memAddressBook is a concurrency-safe SwapAddressBook backed by a map,
// suitable for a single swapd process tracking which connected peer
// each of its locally running swaps belongs to.
type memAddressBook struct {
	mu    sync.RWMutex
	peers map[swapid.ID]PeerID
}

// NewAddressBook returns an empty, concurrency-safe SwapAddressBook.
func NewAddressBook() SwapAddressBook {
	return &memAddressBook{peers: make(map[swapid.ID]PeerID)}
}

func (b *memAddressBook) PeerForSwap(id swapid.ID) (PeerID, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.peers[id]
	return p, ok
}

func (b *memAddressBook) BindSwap(id swapid.ID, peer PeerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.peers[id] = peer
}

func (b *memAddressBook) UnbindSwap(id swapid.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.peers, id)
}
