package swapfsm

// DefaultSafetyMargin is the minimum number of blocks of headroom
// before T_cancel that Alice still pursues a redeem rather than
// switching to cancel/refund, per the spec's SAFETY_MARGIN design
// value (default >= 10 blocks).
const DefaultSafetyMargin = 10

// Policy is Alice's redeem-vs-cancel decision at EncSigLearned,
// operator-tunable via SafetyMargin.
type Policy struct {
	// SafetyMargin is the number of blocks of headroom required before
	// T_cancel for Alice to still attempt a redeem.
	SafetyMargin uint32
}

// DefaultPolicy returns a Policy using DefaultSafetyMargin.
func DefaultPolicy() Policy {
	return Policy{SafetyMargin: DefaultSafetyMargin}
}

// ShouldRedeem reports whether Alice should still pursue TxRedeem
// given the current chain height, the height TxLock confirmed at, and
// T_cancel: true while currentHeight < lockHeight + tCancel -
// safetyMargin.
func (p Policy) ShouldRedeem(currentHeight, lockHeight, tCancel uint32) bool {
	deadline := lockHeight + tCancel
	if p.SafetyMargin >= deadline {
		return false
	}
	return currentHeight < deadline-p.SafetyMargin
}
