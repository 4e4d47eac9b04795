// Package dice implements dice-formula parsing and seeded rolls.
package dice

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/fableforge/fableforge/internal/errors"
)

// formulaPattern matches XdY, XdY+Z, and XdY-Z notations.
var formulaPattern = regexp.MustCompile(`^(\d+)?d(\d+)([+-]\d+)?$`)

// Formula is a parsed dice expression such as "2d6+1" or a flat value.
type Formula struct {
	Count    int
	Sides    int
	Modifier int
	// Flat holds the value of a bare-number formula; Sides is zero in that case.
	Flat int
}

// Parse parses standard dice notation (XdY, XdY+Z, XdY-Z) or a bare integer.
// Anything else fails with INVALID_DICE_FORMULA.
func Parse(formula string) (Formula, error) {
	normalized := strings.ToLower(strings.TrimSpace(formula))
	if normalized == "" {
		return Formula{}, apperrors.New(apperrors.CodeInvalidDiceFormula, "formula is required")
	}

	if flat, err := strconv.Atoi(normalized); err == nil {
		if flat < 0 {
			return Formula{}, apperrors.Newf(apperrors.CodeInvalidDiceFormula, "flat value %d must be non-negative", flat)
		}
		return Formula{Flat: flat}, nil
	}

	match := formulaPattern.FindStringSubmatch(normalized)
	if match == nil {
		return Formula{}, apperrors.Newf(apperrors.CodeInvalidDiceFormula, "cannot parse formula %q", formula)
	}

	count := 1
	if match[1] != "" {
		count, _ = strconv.Atoi(match[1])
	}
	sides, _ := strconv.Atoi(match[2])
	modifier := 0
	if match[3] != "" {
		modifier, _ = strconv.Atoi(match[3])
	}

	if count <= 0 || sides <= 0 {
		return Formula{}, apperrors.Newf(apperrors.CodeInvalidDiceFormula, "formula %q must have positive count and sides", formula)
	}

	return Formula{Count: count, Sides: sides, Modifier: modifier}, nil
}

// Roll evaluates the formula against the provided source.
//
// Roll is deterministic with respect to the source: the same formula rolled
// against rand.New(rand.NewSource(seed)) always yields the same total.
func (f Formula) Roll(rng *rand.Rand) int {
	if f.Sides == 0 {
		return f.Flat
	}
	total := f.Modifier
	for i := 0; i < f.Count; i++ {
		total += rng.Intn(f.Sides) + 1
	}
	return total
}

// Max returns the largest total the formula can produce.
func (f Formula) Max() int {
	if f.Sides == 0 {
		return f.Flat
	}
	return f.Count*f.Sides + f.Modifier
}

// RollFormula parses and rolls in one step.
func RollFormula(formula string, rng *rand.Rand) (int, error) {
	parsed, err := Parse(formula)
	if err != nil {
		return 0, err
	}
	return parsed.Roll(rng), nil
}
