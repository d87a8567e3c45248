package interview

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ClassifyLevel buckets an initial score on a 10-point scale.
func ClassifyLevel(score float64) CandidateLevel {
	switch {
	case score < 5.0:
		return Weak
	case score <= 6.5:
		return Average
	case score <= 8.0:
		return Good
	case score <= 9.0:
		return VeryGood
	default:
		return Excellent
	}
}

var initialScorePattern = regexp.MustCompile(`(?i)(?:initial\s+score|score\s+40%|40%\s+score)\s*[:=]?\s*([0-9]+(?:[.,][0-9]+)?)`)

// ParseInitialScore extracts the initial score recorded in a profile.
func ParseInitialScore(profile string) (float64, bool) {
	m := initialScorePattern.FindStringSubmatch(profile)
	if m == nil {
		return 0, false
	}
	score, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return score, true
}

// LevelFromProfile classifies a candidate from the score in the profile,
// defaulting to Average when no score is present.
func LevelFromProfile(profile string) CandidateLevel {
	score, ok := ParseInitialScore(profile)
	if !ok {
		return Average
	}
	return ClassifyLevel(score)
}

const (
	contextScanLines    = 15
	contextMaxLines     = 10
	contextFallbackSize = 500
)

var profileKeywords = []string{"name", "class", "score", "skill", "project", "experience", "interest", "hobby"}

// ExtractCandidateContext keeps the profile lines that describe the
// candidate, falling back to the head of the profile.
func ExtractCandidateContext(profile string) string {
	lines := strings.Split(profile, "\n")
	if len(lines) > contextScanLines {
		lines = lines[:contextScanLines]
	}

	selected := make([]string, 0, contextMaxLines)
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, kw := range profileKeywords {
			if strings.Contains(lower, kw) {
				selected = append(selected, line)
				break
			}
		}
		if len(selected) == contextMaxLines {
			break
		}
	}

	if len(selected) > 0 {
		return strings.Join(selected, "\n")
	}

	runes := []rune(profile)
	if len(runes) > contextFallbackSize {
		return string(runes[:contextFallbackSize])
	}
	return profile
}

// ShortName returns the part of a candidate name before the first comma.
func ShortName(name string) string {
	if i := strings.Index(name, ","); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// QuestionHash fingerprints a question text.
func QuestionHash(question string) string {
	sum := sha256.Sum256([]byte(question))
	return fmt.Sprintf("%x", sum[:])
}
