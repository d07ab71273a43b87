// Package progression converts trade outcomes into XP, levels, and
// leaderboard points.
package progression

import (
	"math"

	"tradeos-core/internal/trading"
)

func xpMultiplier(d trading.Difficulty) float64 {
	switch d {
	case trading.DifficultyPro:
		return 1.5
	case trading.DifficultyDegen:
		return 1.2
	default:
		return 1.0
	}
}

func pointsMultiplier(d trading.Difficulty) float64 {
	switch d {
	case trading.DifficultyPro:
		return 2.0
	case trading.DifficultyDegen:
		return 1.5
	default:
		return 1.0
	}
}

// XP awards experience for a realized gain. Losses award nothing.
func XP(gain float64, d trading.Difficulty) int {
	base := math.Floor(gain / 10)
	if base < 0 {
		base = 0
	}
	return int(math.Floor(base * xpMultiplier(d)))
}

// Level derives the level from accumulated XP. Level 1 is the floor.
func Level(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return int(math.Floor(math.Sqrt(float64(xp)/100))) + 1
}

// XPForNextLevel returns the XP threshold at which the given level is left
// behind.
func XPForNextLevel(level int) int {
	return level * level * 100
}

// Points scores a trade by its quote value, scaled by difficulty, with a
// 10% bonus on realized profit.
func Points(quoteValue, pnlChange float64, d trading.Difficulty) int {
	pts := int(math.Floor(quoteValue * pointsMultiplier(d)))
	if pnlChange > 0 {
		pts += int(math.Floor(pnlChange * 0.1))
	}
	return pts
}
