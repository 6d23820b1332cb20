package walletadapter

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
)

// stubBalancer is a minimal Balancer used to confirm the capability
// interfaces compose the way callers expect: a function that only
// needs a balance should be able to depend on Balancer alone, not the
// full BitcoinWallet.
type stubBalancer struct {
	amount btcutil.Amount
}

func (s stubBalancer) Balance(ctx context.Context) (btcutil.Amount, error) {
	return s.amount, nil
}

func sumBalance(ctx context.Context, b Balancer) (btcutil.Amount, error) {
	return b.Balance(ctx)
}

func TestBalancerCapabilityIsIndependentlyUsable(t *testing.T) {
	got, err := sumBalance(context.Background(), stubBalancer{amount: 42})
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}
