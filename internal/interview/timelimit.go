package interview

import "strings"

const (
	WarmupTimeLimit = 90
	codeBlockBonus  = 30
	codeBlockMarker = "<pre><code"
)

var baseTimeLimits = map[DifficultyLevel]int{
	VeryEasy: 90,
	Easy:     120,
	Medium:   180,
	Hard:     240,
	VeryHard: 300,
}

// EstimateTimeLimit suggests answer time in seconds for a technical question.
func EstimateTimeLimit(d DifficultyLevel, question string) int {
	limit, ok := baseTimeLimits[d]
	if !ok {
		limit = baseTimeLimits[Medium]
	}
	if strings.Contains(question, codeBlockMarker) {
		limit += codeBlockBonus
	}
	return limit
}
