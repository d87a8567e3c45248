package interview

import "testing"

func TestDecideAction(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		score float64
		want  Action
	}{
		{score: 10, want: ActionHarder},
		{score: 7, want: ActionHarder},
		{score: 6.99, want: ActionSame},
		{score: 4, want: ActionSame},
		{score: 3.99, want: ActionEasier},
		{score: 0, want: ActionEasier},
	}

	for _, tt := range tests {
		if got := DecideAction(tt.score, cfg); got != tt.want {
			t.Fatalf("DecideAction(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestNextDifficultyClamps(t *testing.T) {
	if got := NextDifficulty(VeryHard, ActionHarder); got != VeryHard {
		t.Fatalf("expected very_hard to stay, got %s", got)
	}
	if got := NextDifficulty(VeryEasy, ActionEasier); got != VeryEasy {
		t.Fatalf("expected very_easy to stay, got %s", got)
	}
	if got := NextDifficulty(Medium, ActionSame); got != Medium {
		t.Fatalf("expected medium to stay, got %s", got)
	}

	d := VeryEasy
	for range Difficulties() {
		next := NextDifficulty(d, ActionHarder)
		if !next.Valid() {
			t.Fatalf("stepped off the scale from %s", d)
		}
		d = next
	}
	if d != VeryHard {
		t.Fatalf("expected to reach very_hard, got %s", d)
	}
}

func TestAdvanceReasonPrecedence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxUpperLevel = 0
	cfg.MaxAttemptsPerLevel = 2
	cfg.MaxTotalQuestions = 1

	rec := &Record{
		CurrentDifficulty:      Easy,
		AttemptsAtCurrentLevel: 2,
		History:                []QuestionAttempt{{Phase: PhaseTechnical, Score: 9, Difficulty: Easy}},
	}

	advance(rec, 9, cfg)

	if !rec.IsFinished {
		t.Fatal("expected a finished record")
	}
	if rec.FinishReason != ReasonMaxAttempts {
		t.Fatalf("max_attempts must overwrite max_upper_level, got %s", rec.FinishReason)
	}
	if rec.CurrentDifficulty != Easy {
		t.Fatalf("difficulty must not move past the promotion budget, got %s", rec.CurrentDifficulty)
	}
	if *rec.FinalScore != 9 {
		t.Fatalf("expected final score 9, got %v", *rec.FinalScore)
	}
}

func TestAdvanceQuestionCapKeepsEarlierReason(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAttemptsPerLevel = 1
	cfg.MaxTotalQuestions = 1

	rec := &Record{CurrentDifficulty: Medium}
	advance(rec, 5, cfg)

	if rec.FinishReason != ReasonMaxAttempts {
		t.Fatalf("expected max_attempts to be kept, got %s", rec.FinishReason)
	}
	if *rec.FinalScore != 0 {
		t.Fatalf("expected 0 with no scored technical attempts, got %v", *rec.FinalScore)
	}
}
