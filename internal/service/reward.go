package service

// Reward pool granted when a task completes. The pool is fixed; it is
// divided among the participants, not multiplied by them.
const (
	RewardPoolXP       = 10
	RewardPoolCurrency = 5
)

// RewardShare is the per-participant cut of the completion pool.
type RewardShare struct {
	XP       int
	Currency int
}

// SplitReward divides the fixed reward pool among n participants using
// integer division. The remainder is dropped, not redistributed, so
// e.g. n=3 yields (3, 1) per participant. n < 1 is treated as 1.
func SplitReward(n int) RewardShare {
	if n < 1 {
		n = 1
	}
	return RewardShare{
		XP:       RewardPoolXP / n,
		Currency: RewardPoolCurrency / n,
	}
}
