package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Summary is produced once an interview terminates.
type Summary struct {
	Candidate      CandidateInfo     `json:"candidate_info"`
	Stats          InterviewStats    `json:"interview_stats"`
	ClosingMessage string            `json:"closing_message"`
	History        []NumberedAttempt `json:"question_history"`
}

type CandidateInfo struct {
	Name            string         `json:"name"`
	Profile         string         `json:"profile"`
	ClassifiedLevel CandidateLevel `json:"classified_level"`
}

type InterviewStats struct {
	Timestamp      time.Time    `json:"timestamp"`
	TotalQuestions int          `json:"total_questions"`
	FinalScore     float64      `json:"final_score"`
	FinishReason   FinishReason `json:"finish_reason"`
	Topic          string       `json:"topic"`
	Outline        []string     `json:"outline,omitempty"`
}

type NumberedAttempt struct {
	Number int `json:"question_number"`
	QuestionAttempt
}

// summarize builds the summary of a finished record. The closing message is
// generated once and stored on the record so repeated calls agree.
func (p *Processor) summarize(ctx context.Context, rec *Record, ictx *Context) *Summary {
	var final float64
	if rec.FinalScore != nil {
		final = *rec.FinalScore
	}

	if rec.ClosingMessage == "" {
		rec.ClosingMessage = p.closingMessage(ctx, rec, ictx, final)
	}

	var ts time.Time
	if rec.FinishedAt != nil {
		ts = *rec.FinishedAt
	}

	history := make([]NumberedAttempt, 0, len(rec.History))
	for i, a := range rec.History {
		history = append(history, NumberedAttempt{Number: i + 1, QuestionAttempt: a})
	}

	return &Summary{
		Candidate: CandidateInfo{
			Name:            rec.CandidateName,
			Profile:         rec.CandidateProfile,
			ClassifiedLevel: rec.ClassifiedLevel,
		},
		Stats: InterviewStats{
			Timestamp:      ts,
			TotalQuestions: len(rec.History),
			FinalScore:     final,
			FinishReason:   rec.FinishReason,
			Topic:          ictx.Topic,
			Outline:        append([]string(nil), ictx.Outline...),
		},
		ClosingMessage: rec.ClosingMessage,
		History:        history,
	}
}

func (p *Processor) closingMessage(ctx context.Context, rec *Record, ictx *Context, final float64) string {
	name := ShortName(rec.CandidateName)
	reason := rec.FinishReason
	if reason == "" {
		reason = ReasonCompleted
	}

	if p.closing != nil {
		msg, err := p.closing.ClosingMessage(ctx, ClosingRequest{
			CandidateName:  name,
			FinishReason:   reason,
			FinalScore:     final,
			TotalQuestions: len(rec.History),
			Topic:          ictx.Topic,
		})
		if msg = strings.TrimSpace(msg); err == nil && msg != "" {
			return msg
		}
		p.recordLogger(rec).Warn("closing message generation failed, using template", zap.Error(err))
	}

	return FallbackClosing(name, final)
}

// FallbackClosing returns a templated closing message keyed by score band.
func FallbackClosing(name string, final float64) string {
	switch {
	case final >= 7.0:
		return fmt.Sprintf("Thank you for taking part in the interview, %s! You performed very well throughout. Best of luck!", name)
	case final >= 5.0:
		return fmt.Sprintf("Thank you, %s! You made a solid effort. Keep learning and growing. Good luck!", name)
	default:
		return fmt.Sprintf("Thank you for participating, %s! This was a valuable experience. Keep practising and you will improve!", name)
	}
}
