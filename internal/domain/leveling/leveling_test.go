package leveling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXPForLevelBaseCases(t *testing.T) {
	assert.Equal(t, 0, XPForLevel(-3))
	assert.Equal(t, 0, XPForLevel(0))
	assert.Equal(t, 0, XPForLevel(1))
}

func TestXPForLevelBands(t *testing.T) {
	// floor(50*2^1.5 + 20) = 161, early band ×0.8
	assert.Equal(t, 128, XPForLevel(2))

	// Band boundaries: 20 is still early, 21 is mid.
	early := XPForLevel(20)
	mid := XPForLevel(21)
	assert.Less(t, early, mid)

	// Mid band has no scaling: floor(50*30^1.5 + 300) = 8515.
	assert.Equal(t, 8515, XPForLevel(30))

	// Top bands scale up.
	assert.Equal(t, int(float64(43590)*1.2), XPForLevel(90))
}

func TestXPForLevelMonotonicAcrossBands(t *testing.T) {
	prev := 0
	for level := 2; level <= 120; level++ {
		cur := XPForLevel(level)
		assert.Greater(t, cur, prev, "level %d", level)
		prev = cur
	}
}

func TestTotalXPForLevel(t *testing.T) {
	assert.Equal(t, 0, TotalXPForLevel(0))
	assert.Equal(t, 0, TotalXPForLevel(1))

	sum := 0
	for i := 1; i <= 25; i++ {
		sum += XPForLevel(i)
		assert.Equal(t, sum, TotalXPForLevel(i))
	}
}

func TestLevelFromXP(t *testing.T) {
	assert.Equal(t, 0, LevelFromXP(-10))
	assert.Equal(t, 1, LevelFromXP(0))

	// One XP short of level 2 stays at level 1.
	need := TotalXPForLevel(2)
	assert.Equal(t, 1, LevelFromXP(need-1))
	assert.Equal(t, 2, LevelFromXP(need))
}

func TestLevelRoundTrip(t *testing.T) {
	// LevelFromXP(TotalXPForLevel(L)) == L holds by construction.
	for _, level := range []int{1, 2, 5, 10, 19, 20, 21, 42, 60, 61, 90, 91, 100} {
		assert.Equal(t, level, LevelFromXP(TotalXPForLevel(level)), "level %d", level)
	}
}

func TestLevelInfo(t *testing.T) {
	need2 := TotalXPForLevel(2)
	info := LevelInfo(need2 - 5)

	require.Equal(t, 1, info.Level)
	assert.Equal(t, 5, info.XPRequiredToNextLevel)
	assert.Equal(t, 0, info.TotalXPForCurrentLevel)
	assert.Equal(t, need2, info.XPForNextLevel)

	// Negative XP stays at level 0, below the level-1 floor at zero XP.
	neg := LevelInfo(-100)
	assert.Equal(t, 0, neg.Level)
	assert.Equal(t, 0, neg.TotalXPForCurrentLevel)
}

func TestReadPathsAgreeOnLevel(t *testing.T) {
	// Every derived view must report the same level as LevelFromXP,
	// negative inputs included.
	for _, xp := range []int{-100, -1, 0, 1, 127, 128, 5000} {
		assert.Equal(t, LevelFromXP(xp), LevelInfo(xp).Level, "xp %d", xp)
	}

	assert.Equal(t, 0, LevelInfo(-1).Level)
	assert.Equal(t, 0.0, ProgressToNextLevel(-1))
}

func TestProgressToNextLevel(t *testing.T) {
	assert.Equal(t, 0.0, ProgressToNextLevel(0))

	need2 := TotalXPForLevel(2)
	half := ProgressToNextLevel(need2 / 2)
	assert.InDelta(t, 50.0, half, 1.0)

	// Exactly at a level boundary the new band starts at 0%.
	assert.InDelta(t, 0.0, ProgressToNextLevel(need2), 0.01)

	assert.GreaterOrEqual(t, ProgressToNextLevel(-50), 0.0)
}
