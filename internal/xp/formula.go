// Package xp implements the XP formula and the square-root level curve.
// Everything here is pure: no I/O, deterministic for given inputs.
package xp

import (
	"math"

	"lingoclash/internal/models"
)

// Bounds describes the XP range covered by a single level.
type Bounds struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Span  int `json:"span"`
}

// LevelProgress locates a total XP value within its level.
type LevelProgress struct {
	Level int `json:"level"`
	Start int `json:"start"`
	End   int `json:"end"`
	Into  int `json:"into"`
	Span  int `json:"span"`
	Pct   int `json:"pct"`
}

// ComputeXP returns the XP earned for a completed quiz attempt:
// 10 XP per correct answer, 20 XP for finishing, and a 50 XP bonus for a
// perfect score. The bonus is all-or-nothing, not interpolated.
func ComputeXP(r models.AttemptResult) int {
	earned := r.NumCorrect*10 + 20
	if r.ScorePercent == 100 {
		earned += 50
	}
	return earned
}

// LevelFromXP derives the level tier for a total: level = floor(sqrt(xp/100)) + 1.
// LevelFromXP(0) is 1; exact multiples resolve to the higher level.
func LevelFromXP(totalXP int) int {
	return int(math.Sqrt(float64(totalXP)/100)) + 1
}

// LevelBounds returns the XP range for a level: [ (level-1)^2*100, level^2*100 ).
func LevelBounds(level int) Bounds {
	start := (level - 1) * (level - 1) * 100
	end := level * level * 100
	return Bounds{Start: start, End: end, Span: end - start}
}

// Progress reports how far into its level a total XP value sits.
// Pct is rounded and always within [0, 100] for non-negative totals.
func Progress(totalXP int) LevelProgress {
	level := LevelFromXP(totalXP)
	b := LevelBounds(level)

	into := totalXP - b.Start
	if into < 0 {
		into = 0
	}

	pct := 100
	if b.Span > 0 {
		pct = int(math.Round(float64(into) / float64(b.Span) * 100))
	}

	return LevelProgress{
		Level: level,
		Start: b.Start,
		End:   b.End,
		Into:  into,
		Span:  b.Span,
		Pct:   pct,
	}
}
