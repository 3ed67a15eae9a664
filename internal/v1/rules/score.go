package rules

// Score computes one seat's round score from its declaration, its actual
// captures, and the round's redeal multiplier (§4.6.7). The formula itself
// is an opaque house rule, not a contract the rest of the core depends on:
// an exact match earns a bonus, a zero-zero round earns a smaller flat
// bonus, and any miss costs the size of the miss. All of it scales with the
// redeal multiplier accepted during Preparation.
func Score(declared, captured, redealMultiplier int) int {
	switch {
	case declared == captured && declared == 0:
		return 3 * redealMultiplier
	case declared == captured:
		return (declared + 5) * redealMultiplier
	default:
		miss := declared - captured
		if miss < 0 {
			miss = -miss
		}
		return -miss * redealMultiplier
	}
}
