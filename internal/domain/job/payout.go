package job

// Split is the per-student share and the undistributed remainder of a
// job's rewards.
type Split struct {
	XPPerStudent    int
	MoneyPerStudent int
	XPRemainder     int
	MoneyRemainder  int
}

// SplitReward divides a job's rewards among n approved students by floor
// division: every student receives the identical integer share, and the
// leftover (reward mod n) stays unallocated. With n == 0 the entire reward
// is remainder and nothing is paid out.
func SplitReward(xpReward, moneyReward, n int) Split {
	if n <= 0 {
		return Split{XPRemainder: xpReward, MoneyRemainder: moneyReward}
	}

	xpPer := xpReward / n
	moneyPer := moneyReward / n

	return Split{
		XPPerStudent:    xpPer,
		MoneyPerStudent: moneyPer,
		XPRemainder:     xpReward - xpPer*n,
		MoneyRemainder:  moneyReward - moneyPer*n,
	}
}
