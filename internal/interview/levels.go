package interview

import (
	"fmt"
	"strings"
)

// DifficultyLevel is a step on the ordered question difficulty scale.
type DifficultyLevel int

const (
	VeryEasy DifficultyLevel = iota
	Easy
	Medium
	Hard
	VeryHard
)

var difficultyNames = [...]string{"very_easy", "easy", "medium", "hard", "very_hard"}

// Difficulties returns the scale from the easiest to the hardest level.
func Difficulties() []DifficultyLevel {
	return []DifficultyLevel{VeryEasy, Easy, Medium, Hard, VeryHard}
}

func (d DifficultyLevel) Valid() bool { return d >= VeryEasy && d <= VeryHard }

func (d DifficultyLevel) String() string {
	if !d.Valid() {
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
	return difficultyNames[d]
}

func (d DifficultyLevel) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid difficulty %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *DifficultyLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDifficulty resolves a difficulty label such as "medium".
func ParseDifficulty(s string) (DifficultyLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range difficultyNames {
		if name == s {
			return DifficultyLevel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

// CandidateLevel is the one-time classification of a candidate.
type CandidateLevel int

const (
	Weak CandidateLevel = iota
	Average
	Good
	VeryGood
	Excellent
)

var candidateLevelNames = [...]string{"weak", "average", "good", "very_good", "excellent"}

// CandidateLevels returns all classification buckets in ascending order.
func CandidateLevels() []CandidateLevel {
	return []CandidateLevel{Weak, Average, Good, VeryGood, Excellent}
}

func (l CandidateLevel) Valid() bool { return l >= Weak && l <= Excellent }

func (l CandidateLevel) String() string {
	if !l.Valid() {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return candidateLevelNames[l]
}

func (l CandidateLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid candidate level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *CandidateLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseCandidateLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseCandidateLevel resolves a level label such as "very_good".
func ParseCandidateLevel(s string) (CandidateLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range candidateLevelNames {
		if name == s {
			return CandidateLevel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown candidate level %q", s)
}

// Phase is the coarse stage of an interview. Phases only move forward.
type Phase int

const (
	PhaseWarmup Phase = iota
	PhaseTechnical
	PhaseClosing
)

var phaseNames = [...]string{"warmup", "technical", "closing"}

func (p Phase) Valid() bool { return p >= PhaseWarmup && p <= PhaseClosing }

func (p Phase) String() string {
	if !p.Valid() {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid phase %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, name := range phaseNames {
		if name == s {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", s)
}

// FinishReason names the rule that terminated an interview.
type FinishReason string

const (
	ReasonMaxUpperLevel FinishReason = "max_upper_level"
	ReasonMaxAttempts   FinishReason = "max_attempts"
	ReasonMaxQuestions  FinishReason = "max_questions"
	// ReasonCompleted is only stored when a record enters the closing
	// handler without any termination rule having fired.
	ReasonCompleted FinishReason = "completed"
)
