// Package leveling maps cumulative XP to levels. It is pure math with no
// persistence; the XP domain derives level info from it on every read.
package leveling

import "math"

// Band multipliers shape the curve: quick level-ups early, slow growth at
// the top end.
const (
	earlyBandCap = 20
	midBandCap   = 60
	highBandCap  = 90

	earlyMultiplier = 0.8
	midMultiplier   = 1.0
	highMultiplier  = 1.2
	topMultiplier   = 1.5
)

// XPForLevel returns the XP needed to advance from level-1 to level.
// Level 1 and below cost nothing.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}

	base := math.Floor(50*math.Pow(float64(level), 1.5) + 10*float64(level))

	var mult float64
	switch {
	case level <= earlyBandCap:
		mult = earlyMultiplier
	case level <= midBandCap:
		mult = midMultiplier
	case level <= highBandCap:
		mult = highMultiplier
	default:
		mult = topMultiplier
	}

	return int(base * mult)
}

// TotalXPForLevel returns the cumulative XP required to reach level.
// Monotonically increasing; TotalXPForLevel(0) == 0.
func TotalXPForLevel(level int) int {
	total := 0
	for i := 1; i <= level; i++ {
		total += XPForLevel(i)
	}
	return total
}

// LevelFromXP returns the largest level whose cumulative requirement is
// within totalXP. Negative input is treated as zero XP, not an error.
func LevelFromXP(totalXP int) int {
	if totalXP < 0 {
		return 0
	}

	level := 0
	for TotalXPForLevel(level+1) <= totalXP {
		level++
	}
	return level
}

// Info describes a user's position on the curve.
type Info struct {
	Level                  int `json:"level"`
	XPRequiredToNextLevel  int `json:"xp_required_to_next_level"`
	TotalXPForCurrentLevel int `json:"total_xp_for_current_level"`
	XPForNextLevel         int `json:"xp_for_next_level"`
}

// LevelInfo derives the full level summary from total XP. The level comes
// from the raw input so negative XP stays at level 0; only the arithmetic
// below clamps.
func LevelInfo(totalXP int) Info {
	level := LevelFromXP(totalXP)
	if totalXP < 0 {
		totalXP = 0
	}
	return Info{
		Level:                  level,
		XPRequiredToNextLevel:  TotalXPForLevel(level+1) - totalXP,
		TotalXPForCurrentLevel: TotalXPForLevel(level),
		XPForNextLevel:         XPForLevel(level + 1),
	}
}

// ProgressToNextLevel returns the percentage (0-100, clamped) of the current
// level band already accumulated.
func ProgressToNextLevel(totalXP int) float64 {
	level := LevelFromXP(totalXP)
	if totalXP < 0 {
		totalXP = 0
	}
	band := XPForLevel(level + 1)
	if band <= 0 {
		return 0
	}

	progress := float64(totalXP-TotalXPForLevel(level)) / float64(band) * 100
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}
