package interview

// advance applies one scored technical answer to the progression counters
// and evaluates the termination rules.
//
// The max_attempts rule overwrites a max_upper_level reason set by the same
// answer, while max_questions only fills an empty reason. Stored records
// depend on this precedence, so it is kept as is.
func advance(rec *Record, score float64, cfg Config) Action {
	rec.TotalQuestionsAsked++

	action := DecideAction(score, cfg)
	switch action {
	case ActionHarder:
		rec.UpperLevelReached++
		if rec.UpperLevelReached <= cfg.MaxUpperLevel {
			rec.CurrentDifficulty = NextDifficulty(rec.CurrentDifficulty, ActionHarder)
			rec.AttemptsAtCurrentLevel = 0
		} else {
			rec.IsFinished = true
			rec.FinishReason = ReasonMaxUpperLevel
		}
	case ActionSame:
		rec.AttemptsAtCurrentLevel++
	default:
		rec.CurrentDifficulty = NextDifficulty(rec.CurrentDifficulty, ActionEasier)
		rec.AttemptsAtCurrentLevel++
		if rec.UpperLevelReached > 0 {
			rec.UpperLevelReached--
		}
	}

	if rec.AttemptsAtCurrentLevel >= cfg.MaxAttemptsPerLevel {
		rec.IsFinished = true
		rec.FinishReason = ReasonMaxAttempts
	}

	if rec.TotalQuestionsAsked >= cfg.MaxTotalQuestions {
		rec.IsFinished = true
		if rec.FinishReason == "" {
			rec.FinishReason = ReasonMaxQuestions
		}
	}

	if rec.IsFinished {
		final := finalScore(rec.History)
		rec.FinalScore = &final
	}

	return action
}

// finalScore is the mean of all scored technical attempts.
func finalScore(history []QuestionAttempt) float64 {
	var (
		sum   float64
		count int
	)
	for _, a := range history {
		if a.Phase != PhaseTechnical || a.Score <= 0 {
			continue
		}
		sum += a.Score
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
