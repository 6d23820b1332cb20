package swapnet

import (
	"context"
	"testing"
	"time"

	"github.com/btcxmr/swapcore/swapid"
	"github.com/btcxmr/swapcore/swapwire"
)

func TestMemoryNetworkSendRecv(t *testing.T) {
	alice, bob := NewMemoryLink("alice", "bob", 4)
	defer alice.Close()
	defer bob.Close()

	id, err := swapid.New()
	if err != nil {
		t.Fatalf("swapid.New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	want := &swapwire.SwapAck{SwapID: id}
	if err := alice.Send(ctx, "bob", want); err != nil {
		t.Fatalf("Send: %v", err)
	}

	from, got, err := bob.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if from != "alice" {
		t.Errorf("got sender %q, want alice", from)
	}
	ack, ok := got.(*swapwire.SwapAck)
	if !ok {
		t.Fatalf("got %T, want *swapwire.SwapAck", got)
	}
	if ack.SwapID != id {
		t.Errorf("swap id mismatch")
	}
}

func TestMemoryNetworkDisconnect(t *testing.T) {
	alice, bob := NewMemoryLink("alice", "bob", 4)
	defer alice.Close()
	defer bob.Close()

	alice.Disconnect("bob")

	select {
	case ev := <-alice.Disconnected():
		if ev.Peer != "bob" {
			t.Errorf("got disconnect for %q, want bob", ev.Peer)
		}
	default:
		t.Fatal("expected a disconnect event")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	id, _ := swapid.New()
	if err := alice.Send(ctx, "bob", &swapwire.SwapAck{SwapID: id}); err == nil {
		t.Fatal("expected Send to a disconnected peer to fail")
	}
}

func TestAddressBookBindUnbind(t *testing.T) {
	book := NewAddressBook()
	id, _ := swapid.New()

	if _, ok := book.PeerForSwap(id); ok {
		t.Fatal("expected no peer bound yet")
	}

	book.BindSwap(id, "bob")
	peer, ok := book.PeerForSwap(id)
	if !ok || peer != "bob" {
		t.Fatalf("got (%q, %v), want (bob, true)", peer, ok)
	}

	book.UnbindSwap(id)
	if _, ok := book.PeerForSwap(id); ok {
		t.Fatal("expected peer to be unbound")
	}
}
