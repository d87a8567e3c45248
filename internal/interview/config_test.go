package interview

import (
	"encoding/json"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
	if cfg.InitialPhase() != PhaseTechnical {
		t.Fatalf("expected technical start without warm-up, got %s", cfg.InitialPhase())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "low above high", mutate: func(c *Config) { c.ThresholdLow = 8 }},
		{name: "high above max score", mutate: func(c *Config) { c.ThresholdHigh = 11 }},
		{name: "no attempts", mutate: func(c *Config) { c.MaxAttemptsPerLevel = 0 }},
		{name: "no questions", mutate: func(c *Config) { c.MaxTotalQuestions = 0 }},
		{name: "negative upper level", mutate: func(c *Config) { c.MaxUpperLevel = -1 }},
		{name: "no memory", mutate: func(c *Config) { c.MaxMemoryTurns = 0 }},
		{name: "negative warm-up", mutate: func(c *Config) { c.MaxWarmupQuestions = -1 }},
		{name: "missing level range", mutate: func(c *Config) { delete(c.DifficultyMap, Good) }},
		{name: "invalid difficulty", mutate: func(c *Config) { c.DifficultyMap[Weak] = []DifficultyLevel{DifficultyLevel(9)} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestInitialDifficulty(t *testing.T) {
	cfg := DefaultConfig()

	want := map[CandidateLevel]DifficultyLevel{
		Weak:      VeryEasy,
		Average:   Easy,
		Good:      Medium,
		VeryGood:  Medium,
		Excellent: Medium,
	}
	for level, d := range want {
		if got := cfg.InitialDifficulty(level); got != d {
			t.Fatalf("InitialDifficulty(%s) = %s, want %s", level, got, d)
		}
	}

	cfg.DemoMode = true
	if got := cfg.InitialDifficulty(Excellent); got != VeryEasy {
		t.Fatalf("demo mode must start at very_easy, got %s", got)
	}
}

func TestConfigJSONUsesLabels(t *testing.T) {
	raw, err := json.Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Config
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := decoded.DifficultyMap[VeryGood]; len(got) != 2 || got[1] != VeryHard {
		t.Fatalf("unexpected range for very_good: %v", got)
	}
}
