package interview

import "context"

// WarmupRequest describes an ice-breaker question to generate.
type WarmupRequest struct {
	CandidateName    string
	CandidateContext string
	Topic            string
	// Index is the number of warm-up questions already asked.
	Index int
}

// TechnicalRequest describes a technical question to generate.
type TechnicalRequest struct {
	Topic            string
	Difficulty       DifficultyLevel
	KnowledgeText    string
	Transcript       string
	CandidateContext string
	OutlineSummary   string
}

// GeneratedQuestion is a well-formed question returned by a generator.
// A zero TimeLimit lets the processor derive one from the difficulty.
type GeneratedQuestion struct {
	Question   string
	Difficulty string
	TimeLimit  int
}

// Evaluation is the scored judgement of an answer.
type Evaluation struct {
	Score    float64
	Analysis string
}

// ClosingRequest carries what a closing message may refer to.
type ClosingRequest struct {
	CandidateName  string
	FinishReason   FinishReason
	FinalScore     float64
	TotalQuestions int
	Topic          string
}

type QuestionGenerator interface {
	WarmupQuestion(ctx context.Context, req WarmupRequest) (*GeneratedQuestion, error)
	TechnicalQuestion(ctx context.Context, req TechnicalRequest) (*GeneratedQuestion, error)
}

type AnswerEvaluator interface {
	EvaluateAnswer(ctx context.Context, question, answer, knowledgeText string) (*Evaluation, error)
}

type ClosingGenerator interface {
	ClosingMessage(ctx context.Context, req ClosingRequest) (string, error)
}
