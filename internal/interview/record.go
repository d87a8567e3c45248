package interview

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyHistory    = errors.New("interview record has no question history")
	ErrNoOpenAttempt   = errors.New("interview record has no open question")
	ErrScoreOutOfRange = errors.New("stored score is out of range")
	ErrCorruptRecord   = errors.New("interview record is corrupt")
	ErrInvalidAnswer   = errors.New("invalid answer submission")
	ErrNotFinished     = errors.New("interview is not finished")
)

// QuestionAttempt is one asked question with its eventual answer.
type QuestionAttempt struct {
	Question   string          `json:"question"`
	Answer     string          `json:"answer"`
	Score      float64         `json:"score"`
	Analysis   string          `json:"analysis"`
	Difficulty DifficultyLevel `json:"difficulty"`
	Phase      Phase           `json:"phase"`
	Timestamp  time.Time       `json:"timestamp"`
	// QuestionHash is kept for downstream duplicate analytics; the
	// processor never rejects repeated questions.
	QuestionHash string     `json:"question_hash"`
	TimeLimit    int        `json:"time_limit"`
	TimeSpent    *int       `json:"time_spent,omitempty"`
	AnsweredAt   *time.Time `json:"answered_at,omitempty"`
}

// Open reports whether the attempt still waits for an answer.
func (a *QuestionAttempt) Open() bool { return a.AnsweredAt == nil }

// Context is the read-only per-batch bundle shared by all candidates.
type Context struct {
	BatchID        string   `json:"batch_id"`
	Topic          string   `json:"topic"`
	Outline        []string `json:"outline,omitempty"`
	KnowledgeText  string   `json:"knowledge_text"`
	OutlineSummary string   `json:"outline_summary"`
	Config         Config   `json:"config"`
}

// Record is the full progression state of one candidate.
type Record struct {
	BatchID          string         `json:"batch_id"`
	CandidateName    string         `json:"candidate_name"`
	CandidateProfile string         `json:"candidate_profile"`
	CandidateContext string         `json:"candidate_context"`
	ClassifiedLevel  CandidateLevel `json:"classified_level"`

	CurrentDifficulty      DifficultyLevel `json:"current_difficulty"`
	CurrentPhase           Phase           `json:"current_phase"`
	AttemptsAtCurrentLevel int             `json:"attempts_at_current_level"`
	TotalQuestionsAsked    int             `json:"total_questions_asked"`
	UpperLevelReached      int             `json:"upper_level_reached"`
	WarmupQuestionsAsked   int             `json:"warmup_questions_asked"`

	History []QuestionAttempt `json:"history"`
	Memory  []Turn            `json:"conversation_memory"`

	IsFinished     bool         `json:"is_finished"`
	FinishReason   FinishReason `json:"finish_reason,omitempty"`
	FinalScore     *float64     `json:"final_score,omitempty"`
	ClosingMessage string       `json:"closing_message,omitempty"`
	FinishedAt     *time.Time   `json:"finished_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Clone returns a deep copy so the processor never mutates caller state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	c := *r
	c.History = make([]QuestionAttempt, len(r.History))
	for i, a := range r.History {
		if a.TimeSpent != nil {
			v := *a.TimeSpent
			a.TimeSpent = &v
		}
		if a.AnsweredAt != nil {
			v := *a.AnsweredAt
			a.AnsweredAt = &v
		}
		c.History[i] = a
	}
	c.Memory = append([]Turn(nil), r.Memory...)
	if r.FinalScore != nil {
		v := *r.FinalScore
		c.FinalScore = &v
	}
	if r.FinishedAt != nil {
		v := *r.FinishedAt
		c.FinishedAt = &v
	}
	return &c
}

// LastAttempt returns the most recent attempt or nil for an empty history.
func (r *Record) LastAttempt() *QuestionAttempt {
	if len(r.History) == 0 {
		return nil
	}
	return &r.History[len(r.History)-1]
}

// Validate checks the structural invariants a caller must uphold before
// handing a record to the processor.
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil record", ErrCorruptRecord)
	}
	if !r.ClassifiedLevel.Valid() || !r.CurrentDifficulty.Valid() || !r.CurrentPhase.Valid() {
		return fmt.Errorf("%w: invalid level, difficulty or phase", ErrCorruptRecord)
	}
	if r.AttemptsAtCurrentLevel < 0 || r.TotalQuestionsAsked < 0 || r.UpperLevelReached < 0 || r.WarmupQuestionsAsked < 0 {
		return fmt.Errorf("%w: negative counter", ErrCorruptRecord)
	}

	for i, a := range r.History {
		if a.Score < MinScore || a.Score > MaxScore {
			return fmt.Errorf("%w: attempt %d has score %.2f", ErrScoreOutOfRange, i+1, a.Score)
		}
		if !a.Difficulty.Valid() {
			return fmt.Errorf("%w: attempt %d has invalid difficulty", ErrCorruptRecord, i+1)
		}
	}

	if r.IsFinished {
		if r.FinalScore == nil {
			return fmt.Errorf("%w: finished without final score", ErrCorruptRecord)
		}
		return nil
	}

	last := r.LastAttempt()
	if last == nil {
		return ErrEmptyHistory
	}
	if !last.Open() {
		return ErrNoOpenAttempt
	}
	for i := range r.History[:len(r.History)-1] {
		if r.History[i].Open() {
			return fmt.Errorf("%w: attempt %d is still open", ErrCorruptRecord, i+1)
		}
	}

	return nil
}
