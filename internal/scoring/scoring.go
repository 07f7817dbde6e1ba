// Package scoring turns the summed check credits into a compliance
// percentage and a recommendation tier.
package scoring

import (
	"fmt"

	"github.com/hardenaudit/hardenaudit/internal/errors"
)

// Tier is the coarse classification of a compliance percentage.
type Tier int

const (
	TierCritical Tier = iota
	TierNeedsWork
	TierSecure
)

// Tier thresholds, in percent.
const (
	NeedsWorkThreshold = 50.0
	SecureThreshold    = 75.0
)

var recommendations = map[Tier]string{
	TierCritical:  "System is critically vulnerable. Immediate hardening recommended.",
	TierNeedsWork: "System has several issues. Consider applying hardening steps.",
	TierSecure:    "System is reasonably secure. Keep monitoring and updating.",
}

func (t Tier) String() string {
	switch t {
	case TierCritical:
		return "critical"
	case TierNeedsWork:
		return "needs-work"
	case TierSecure:
		return "secure"
	default:
		return "unknown"
	}
}

// Recommendation is the text written under "=== RECOMMENDATIONS ===".
func (t Tier) Recommendation() string {
	return recommendations[t]
}

// Verdict is the outcome of one audit.
type Verdict struct {
	Total          float64 `json:"total"`
	Maximum        float64 `json:"maximum"`
	Percentage     float64 `json:"percentage"`
	Tier           Tier    `json:"-"`
	TierName       string  `json:"tier"`
	Recommendation string  `json:"recommendation"`
}

// Classify computes the percentage and picks the first tier whose bound it
// falls under. It has no side effects.
func Classify(total, maximum float64) (Verdict, error) {
	if maximum <= 0 {
		return Verdict{}, errors.Wrap(errors.ErrInvalidInput, "maximum score must be positive, got %v", maximum)
	}

	pct := 100 * total / maximum
	tier := TierFor(pct)
	return Verdict{
		Total:          total,
		Maximum:        maximum,
		Percentage:     pct,
		Tier:           tier,
		TierName:       tier.String(),
		Recommendation: tier.Recommendation(),
	}, nil
}

// TierFor maps a percentage onto its tier.
func TierFor(pct float64) Tier {
	switch {
	case pct < NeedsWorkThreshold:
		return TierCritical
	case pct < SecureThreshold:
		return TierNeedsWork
	default:
		return TierSecure
	}
}

// ScoreLine renders the percentage with two decimals.
func (v Verdict) ScoreLine() string {
	return fmt.Sprintf("Compliance Score: %.2f%%", v.Percentage)
}

// LineWriter is the part of the report sink the summary needs.
type LineWriter interface {
	Record(line string) error
}

// WriteSummary appends the final score and recommendation block.
// Individual write failures are already reported by the sink; the first one
// is returned for the caller's information.
func WriteSummary(w LineWriter, v Verdict) error {
	lines := []string{
		"",
		"=== FINAL SCORE ===",
		v.ScoreLine(),
		"",
		"=== RECOMMENDATIONS ===",
		v.Recommendation,
	}
	var first error
	for _, line := range lines {
		if err := w.Record(line); err != nil && first == nil {
			first = err
		}
	}
	return first
}
