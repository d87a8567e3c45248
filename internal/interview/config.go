package interview

import (
	"errors"
	"fmt"
)

const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Config holds the adaptation and termination policy of a batch.
type Config struct {
	ThresholdHigh       float64 `json:"threshold_high"`
	ThresholdLow        float64 `json:"threshold_low"`
	MaxAttemptsPerLevel int     `json:"max_attempts_per_level"`
	MaxTotalQuestions   int     `json:"max_total_questions"`
	// MaxUpperLevel caps the number of net promotions before the interview ends.
	MaxUpperLevel      int  `json:"max_upper_level"`
	MaxMemoryTurns     int  `json:"max_memory_turns"`
	MaxWarmupQuestions int  `json:"max_warmup_questions"`
	DemoMode           bool `json:"demo_mode"`

	DifficultyMap map[CandidateLevel][]DifficultyLevel `json:"difficulty_map"`
}

// DefaultConfig returns the policy used when a batch does not override it.
func DefaultConfig() Config {
	return Config{
		ThresholdHigh:       7.0,
		ThresholdLow:        4.0,
		MaxAttemptsPerLevel: 2,
		MaxTotalQuestions:   8,
		MaxUpperLevel:       2,
		MaxMemoryTurns:      6,
		MaxWarmupQuestions:  0,
		DifficultyMap:       DefaultDifficultyMap(),
	}
}

// DefaultDifficultyMap returns the starting difficulty range per level.
func DefaultDifficultyMap() map[CandidateLevel][]DifficultyLevel {
	return map[CandidateLevel][]DifficultyLevel{
		Weak:      {VeryEasy, Easy},
		Average:   {Easy, Easy},
		Good:      {Medium, Hard},
		VeryGood:  {Medium, VeryHard},
		Excellent: {Medium, VeryHard},
	}
}

// Validate reports the first policy inconsistency.
func (c Config) Validate() error {
	if c.ThresholdLow < MinScore || c.ThresholdHigh > MaxScore {
		return fmt.Errorf("thresholds must be within [%.0f, %.0f]", MinScore, MaxScore)
	}
	if c.ThresholdLow > c.ThresholdHigh {
		return fmt.Errorf("threshold_low (%.2f) must not exceed threshold_high (%.2f)", c.ThresholdLow, c.ThresholdHigh)
	}
	if c.MaxAttemptsPerLevel <= 0 {
		return errors.New("max_attempts_per_level must be greater than 0")
	}
	if c.MaxTotalQuestions <= 0 {
		return errors.New("max_total_questions must be greater than 0")
	}
	if c.MaxUpperLevel < 0 {
		return errors.New("max_upper_level must not be negative")
	}
	if c.MaxMemoryTurns <= 0 {
		return errors.New("max_memory_turns must be greater than 0")
	}
	if c.MaxWarmupQuestions < 0 {
		return errors.New("max_warmup_questions must not be negative")
	}

	for _, level := range CandidateLevels() {
		levels, ok := c.DifficultyMap[level]
		if !ok || len(levels) == 0 {
			return fmt.Errorf("difficulty_map has no range for level %s", level)
		}
		for _, d := range levels {
			if !d.Valid() {
				return fmt.Errorf("difficulty_map for level %s contains %s", level, d)
			}
		}
	}

	return nil
}

// InitialDifficulty resolves the starting difficulty for a candidate level.
// Demo mode always starts at the easiest level.
func (c Config) InitialDifficulty(level CandidateLevel) DifficultyLevel {
	if c.DemoMode {
		return VeryEasy
	}
	if levels := c.DifficultyMap[level]; len(levels) > 0 {
		return levels[0]
	}
	return VeryEasy
}

// InitialPhase is warmup when warm-up questions are enabled.
func (c Config) InitialPhase() Phase {
	if c.MaxWarmupQuestions > 0 {
		return PhaseWarmup
	}
	return PhaseTechnical
}
