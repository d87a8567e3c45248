package interview

// Action is the adaptation decision taken after a scored answer.
type Action string

const (
	ActionHarder Action = "harder"
	ActionSame   Action = "same"
	ActionEasier Action = "easier"
)

// DecideAction maps a score onto an adaptation action using the configured
// thresholds.
func DecideAction(score float64, cfg Config) Action {
	if score >= cfg.ThresholdHigh {
		return ActionHarder
	}
	if score >= cfg.ThresholdLow {
		return ActionSame
	}
	return ActionEasier
}

// NextDifficulty moves one step along the scale. Moving past either end
// returns the current level.
func NextDifficulty(current DifficultyLevel, action Action) DifficultyLevel {
	switch action {
	case ActionHarder:
		if current < VeryHard {
			return current + 1
		}
	case ActionEasier:
		if current > VeryEasy {
			return current - 1
		}
	}
	return current
}
