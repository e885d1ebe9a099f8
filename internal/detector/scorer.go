// Package detector scores inbound messages for scam signals. Scoring is
// additive over independent signal groups and deterministic for a given
// message and history window.
package detector

import (
	"fmt"
	"math"
	"strings"

	"github.com/MikeSquared-Agency/jaal/internal/patterns"
)

// Threshold is the confidence at or above which a message counts as a scam.
const Threshold = 0.30

// Signal weights and per-group caps.
const (
	categoryWeight   = 0.15
	urgencyWeight    = 0.10
	urgencyCap       = 0.30
	credentialWeight = 0.15
	credentialCap    = 0.40
	financialWeight  = 0.08
	financialCap     = 0.25
	urlWeight        = 0.20
	phoneWeight      = 0.10
	phraseWeight     = 0.12
	phraseCap        = 0.35
	harvestingWeight = 0.25
)

// Result is the outcome of scoring one message.
type Result struct {
	IsScam        bool
	Confidence    float64
	Category      string
	AllCategories []string
	Indicators    []string
	Reasoning     string
}

type Detector struct {
	lib *patterns.Library
}

func New(lib *patterns.Library) *Detector {
	return &Detector{lib: lib}
}

// Score evaluates a single message. recentScammer is the trailing window of
// scammer messages including this one; it feeds the progressive harvesting
// check and nothing else.
func (d *Detector) Score(message string, recentScammer []string) Result {
	lower := strings.ToLower(message)

	var (
		score      float64
		indicators []string
		categories []string
	)

	// Each category contributes at most once, on its first matching pattern.
	for _, cp := range d.lib.Scam {
		for _, re := range cp.Patterns {
			if re.MatchString(lower) {
				score += categoryWeight
				categories = append(categories, cp.Category)
				indicators = append(indicators, fmt.Sprintf("Matched %s pattern", cp.Category))
				break
			}
		}
	}

	if n := countKeywords(lower, d.lib.UrgencyKeywords); n > 0 {
		score += math.Min(float64(n)*urgencyWeight, urgencyCap)
		indicators = append(indicators, fmt.Sprintf("Contains urgency language (%d instances)", n))
	}

	if n := countKeywords(lower, d.lib.CredentialKeywords); n > 0 {
		score += math.Min(float64(n)*credentialWeight, credentialCap)
		indicators = append(indicators, fmt.Sprintf("Requests sensitive credentials (%d types)", n))
	}

	if n := countKeywords(lower, d.lib.FinancialKeywords); n > 0 {
		score += math.Min(float64(n)*financialWeight, financialCap)
		indicators = append(indicators, fmt.Sprintf("Contains financial terminology (%d instances)", n))
	}

	if d.lib.URLSignal.MatchString(message) {
		score += urlWeight
		indicators = append(indicators, "Contains external link")
	}

	if d.lib.PhoneSignal.MatchString(message) {
		score += phoneWeight
		indicators = append(indicators, "Contains phone number")
	}

	if n := countKeywords(lower, d.lib.ScamPhrases); n > 0 {
		score += math.Min(float64(n)*phraseWeight, phraseCap)
		indicators = append(indicators, fmt.Sprintf("Contains common scam phrases (%d matches)", n))
	}

	if progressiveHarvesting(recentScammer, d.lib.CredentialKeywords) {
		score += harvestingWeight
		indicators = append(indicators, "Progressive credential harvesting detected")
	}

	confidence := roundConfidence(math.Min(score, 1.0))

	category := patterns.CategoryUnknown
	if len(categories) > 0 {
		category = categories[0]
	}

	return Result{
		IsScam:        confidence >= Threshold,
		Confidence:    confidence,
		Category:      category,
		AllCategories: categories,
		Indicators:    indicators,
		Reasoning:     buildReasoning(confidence, indicators),
	}
}

// countKeywords counts how many distinct keywords appear in the lowered
// message. Repeats of the same keyword count once.
func countKeywords(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}

// progressiveHarvesting reports whether the last three scammer messages
// collectively ask for two or more distinct credential types. A single
// message cannot trigger it.
func progressiveHarvesting(recent []string, credentials []string) bool {
	if len(recent) <= 1 {
		return false
	}
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	seen := make(map[string]struct{})
	for _, msg := range recent {
		lower := strings.ToLower(msg)
		for _, kw := range credentials {
			if strings.Contains(lower, kw) {
				seen[kw] = struct{}{}
			}
		}
	}
	return len(seen) >= 2
}

func buildReasoning(confidence float64, indicators []string) string {
	if confidence < Threshold {
		return "Message does not contain sufficient scam indicators."
	}
	top := indicators
	if len(top) > 3 {
		top = top[:3]
	}
	reasoning := fmt.Sprintf("Scam detected with %.1f%% confidence. Key indicators: %s",
		confidence*100, strings.Join(top, ", "))
	if len(indicators) > 3 {
		reasoning += fmt.Sprintf(" and %d more.", len(indicators)-3)
	}
	return reasoning
}

func roundConfidence(v float64) float64 {
	return math.Round(v*1000) / 1000
}
