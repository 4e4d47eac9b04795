// Package threat classifies creature danger and derives baseline hit chances.
package threat

import (
	"strings"

	apperrors "github.com/fableforge/fableforge/internal/errors"
)

// Level is a coarse severity classification for a creature.
type Level string

const (
	LevelNone         Level = "none"
	LevelNegligible   Level = "negligible"
	LevelLow          Level = "low"
	LevelModerate     Level = "moderate"
	LevelHigh         Level = "high"
	LevelDeadly       Level = "deadly"
	LevelCertainDeath Level = "certain_death"
)

// Levels returns all threat levels ordered by severity.
func Levels() []Level {
	return []Level{
		LevelNone,
		LevelNegligible,
		LevelLow,
		LevelModerate,
		LevelHigh,
		LevelDeadly,
		LevelCertainDeath,
	}
}

// hitChances maps each threat level to the probability an attack by a
// creature of that level lands. Values are monotonically non-decreasing
// with severity.
var hitChances = map[Level]float64{
	LevelNone:         0.10,
	LevelNegligible:   0.25,
	LevelLow:          0.35,
	LevelModerate:     0.50,
	LevelHigh:         0.65,
	LevelDeadly:       0.80,
	LevelCertainDeath: 0.95,
}

// HitChanceFor returns the hit chance for a threat level.
// Unknown levels fail with INVALID_THREAT_LEVEL.
func HitChanceFor(level Level) (float64, error) {
	chance, ok := hitChances[level]
	if !ok {
		return 0, apperrors.Newf(apperrors.CodeInvalidThreatLevel, "unknown threat level %q", level)
	}
	return chance, nil
}

// Parse normalizes a stored or caller-supplied threat level string.
func Parse(value string) (Level, error) {
	level := Level(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := hitChances[level]; !ok {
		return "", apperrors.Newf(apperrors.CodeInvalidThreatLevel, "unknown threat level %q", value)
	}
	return level, nil
}
