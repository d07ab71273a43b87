package progression

import (
	"testing"

	"tradeos-core/internal/trading"
)

func TestXP(t *testing.T) {
	tests := []struct {
		name string
		gain float64
		diff trading.Difficulty
		want int
	}{
		{"loss awards nothing", -50, trading.DifficultyNoob, 0},
		{"zero gain", 0, trading.DifficultyNoob, 0},
		{"noob base", 100, trading.DifficultyNoob, 10},
		{"degen multiplier", 100, trading.DifficultyDegen, 12},
		{"pro multiplier", 100, trading.DifficultyPro, 15},
		{"floors before multiplying", 95, trading.DifficultyDegen, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := XP(tt.gain, tt.diff); got != tt.want {
				t.Fatalf("XP(%v, %s) = %d, want %d", tt.gain, tt.diff, got, tt.want)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{900, 4},
		{-5, 1},
	}
	for _, tt := range tests {
		if got := Level(tt.xp); got != tt.want {
			t.Fatalf("Level(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestXPForNextLevel(t *testing.T) {
	if got := XPForNextLevel(1); got != 100 {
		t.Fatalf("XPForNextLevel(1) = %d, want 100", got)
	}
	if got := XPForNextLevel(3); got != 900 {
		t.Fatalf("XPForNextLevel(3) = %d, want 900", got)
	}
}

func TestLevelMonotonicAcrossThresholds(t *testing.T) {
	prev := Level(0)
	for xp := 1; xp <= 2500; xp++ {
		cur := Level(xp)
		if cur < prev {
			t.Fatalf("level decreased at xp=%d: %d -> %d", xp, prev, cur)
		}
		prev = cur
	}
}

func TestPoints(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		pnl   float64
		diff  trading.Difficulty
		want  int
	}{
		{"noob flat", 100, 0, trading.DifficultyNoob, 100},
		{"degen scaled", 100, 0, trading.DifficultyDegen, 150},
		{"pro scaled", 100, 0, trading.DifficultyPro, 200},
		{"profit bonus", 100, 55, trading.DifficultyNoob, 105},
		{"loss has no bonus", 100, -55, trading.DifficultyNoob, 100},
		{"fractional value floors", 33.7, 0, trading.DifficultyNoob, 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Points(tt.value, tt.pnl, tt.diff); got != tt.want {
				t.Fatalf("Points(%v, %v, %s) = %d, want %d",
					tt.value, tt.pnl, tt.diff, got, tt.want)
			}
		})
	}
}
