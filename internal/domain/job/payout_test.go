package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitReward(t *testing.T) {
	tests := []struct {
		name        string
		xpReward    int
		moneyReward int
		n           int
		want        Split
	}{
		{
			name:        "even split",
			xpReward:    100,
			moneyReward: 50,
			n:           2,
			want:        Split{XPPerStudent: 50, MoneyPerStudent: 25},
		},
		{
			name:        "uneven split leaves remainder",
			xpReward:    101,
			moneyReward: 51,
			n:           2,
			want:        Split{XPPerStudent: 50, MoneyPerStudent: 25, XPRemainder: 1, MoneyRemainder: 1},
		},
		{
			name:        "single student takes everything",
			xpReward:    101,
			moneyReward: 51,
			n:           1,
			want:        Split{XPPerStudent: 101, MoneyPerStudent: 51},
		},
		{
			name:        "no approved students, full remainder",
			xpReward:    100,
			moneyReward: 50,
			n:           0,
			want:        Split{XPRemainder: 100, MoneyRemainder: 50},
		},
		{
			name:        "more students than xp",
			xpReward:    2,
			moneyReward: 0,
			n:           3,
			want:        Split{XPRemainder: 2},
		},
		{
			name:        "zero money reward",
			xpReward:    90,
			moneyReward: 0,
			n:           3,
			want:        Split{XPPerStudent: 30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitReward(tt.xpReward, tt.moneyReward, tt.n))
		})
	}
}

// The shares plus the remainder must always reconstruct the original reward.
func TestSplitRewardConservation(t *testing.T) {
	for xp := 0; xp <= 25; xp++ {
		for money := 0; money <= 25; money += 5 {
			for n := 0; n <= 7; n++ {
				s := SplitReward(xp, money, n)

				assert.Equal(t, xp, s.XPPerStudent*n+s.XPRemainder,
					"xp=%d money=%d n=%d", xp, money, n)
				assert.Equal(t, money, s.MoneyPerStudent*n+s.MoneyRemainder,
					"xp=%d money=%d n=%d", xp, money, n)
				assert.GreaterOrEqual(t, s.XPRemainder, 0)
				assert.GreaterOrEqual(t, s.MoneyRemainder, 0)
				if n > 0 {
					assert.Less(t, s.XPRemainder, n)
					assert.Less(t, s.MoneyRemainder, n)
				}
			}
		}
	}
}
