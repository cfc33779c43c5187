// Package fieldmatch infers which fields of an arbitrary API response carry
// the four canonical budget metrics, using keyword and alias scoring.
package fieldmatch

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

const (
	// aliasScore is awarded for an exact (case/separator-insensitive) alias match.
	aliasScore = 100
	// minScore is the eligibility threshold; candidates below it are ignored.
	minScore = 15
	// fullScore is the raw score treated as 100% confidence.
	fullScore = 25
)

// Match is one suggested field assignment for a target metric.
type Match struct {
	Field           string   `json:"field"`
	Confidence      int      `json:"confidence"` // 0..100
	MatchedKeywords []string `json:"matchedKeywords"`
	Reason          string   `json:"reason"`
}

// Result maps each target to its best match, if any.
type Result map[Target]Match

// normalizeFieldName lowercases, splits separators and camelCase boundaries,
// and returns the individual words.
func normalizeFieldName(field string) []string {
	var sb strings.Builder
	runes := []rune(field)
	for i, r := range runes {
		switch {
		case r == '-' || r == '_':
			sb.WriteRune(' ')
		case unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]):
			sb.WriteRune(' ')
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return strings.Fields(sb.String())
}

func stripSeparators(s string) string {
	return strings.NewReplacer("-", "", "_", "").Replace(s)
}

func containsWord(words []string, w string) bool {
	for _, word := range words {
		if word == w {
			return true
		}
	}
	return false
}

type scored struct {
	score           int
	matchedKeywords []string
	reason          string
}

// scoreField computes the raw match score of one candidate field against one
// rule. An alias hit short-circuits at the maximum score; otherwise one time
// keyword and one type keyword each add their weight, a combined hit adds a
// bonus, and overly long names are penalized.
func scoreField(field string, rule matchRule) scored {
	words := normalizeFieldName(field)
	fieldLower := strings.ToLower(field)

	for _, alias := range rule.aliases {
		if fieldLower == alias || stripSeparators(fieldLower) == stripSeparators(alias) {
			return scored{
				score:           aliasScore,
				matchedKeywords: []string{alias},
				reason:          fmt.Sprintf("exact alias match %q", alias),
			}
		}
	}

	score := 0
	var matched []string
	var reasons []string

	timeMatched := false
	for _, kw := range rule.timeKeywords {
		if containsWord(words, kw) || strings.Contains(fieldLower, kw) {
			score += rule.timeWeight
			matched = append(matched, kw)
			timeMatched = true
			reasons = append(reasons, fmt.Sprintf("time keyword %q", kw))
			break
		}
	}

	typeMatched := false
	for _, kw := range rule.typeKeywords {
		if containsWord(words, kw) || strings.Contains(fieldLower, kw) {
			score += rule.typeWeight
			matched = append(matched, kw)
			typeMatched = true
			reasons = append(reasons, fmt.Sprintf("type keyword %q", kw))
			break
		}
	}

	if timeMatched && typeMatched {
		score += 5
		reasons = append(reasons, "time+type combination")
	}

	// Overly generic long field names are discouraged.
	if len(words) > 4 {
		score -= 2
	}

	if score < 0 {
		score = 0
	}

	return scored{
		score:           score,
		matchedKeywords: matched,
		reason:          strings.Join(reasons, ", "),
	}
}

// AutoMatch assigns candidate field names to the four targets.
//
// Assignment is greedy per target in the fixed Targets order: each target
// takes its best-scoring eligible candidate, which is then excluded for
// later targets. Ties keep the first-encountered candidate (strict > best-so-far).
// This first-come exclusivity is deliberate; there is no global optimal
// assignment or backtracking.
func AutoMatch(fieldKeys []string) Result {
	result := make(Result)
	used := make(map[string]bool)

	for _, target := range Targets {
		rule := matchRules[target]

		bestField := ""
		var best scored
		found := false

		for _, field := range fieldKeys {
			if used[field] {
				continue
			}

			s := scoreField(field, rule)
			if s.score < minScore {
				continue
			}
			if !found || s.score > best.score {
				bestField = field
				best = s
				found = true
			}
		}

		if !found {
			continue
		}

		used[bestField] = true
		confidence := int(math.Round(float64(best.score) / fullScore * 100))
		if confidence > 100 {
			confidence = 100
		}

		result[target] = Match{
			Field:           bestField,
			Confidence:      confidence,
			MatchedKeywords: best.matchedKeywords,
			Reason:          best.reason,
		}
	}

	return result
}

// QualityDescription bands a confidence value for display.
func QualityDescription(confidence int) string {
	switch {
	case confidence >= 90:
		return "high confidence"
	case confidence >= 70:
		return "medium confidence"
	case confidence >= 50:
		return "low confidence"
	default:
		return "weak match"
	}
}
