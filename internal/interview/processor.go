package interview

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spigell/adaptive-interviewer/internal/logger"
	"go.uber.org/zap"
)

const (
	analysisWarmupPending = "(warmup - not scored)"
	analysisPending       = "(pending)"
	analysisWarmupAnswer  = "Thanks for sharing!"
	warmupMemoryAck       = "Thank you!"
	warmupNextAnalysis    = "Great!"
	warmupDoneAnalysis    = "Warm-up complete! Let's move on to the technical part."
	warmupDifficultyLabel = "warmup"

	fallbackScore    = 5.0
	fallbackAnalysis = "Automatic scoring failed; a neutral 5/10 was assigned."
)

var errEmptyQuestion = errors.New("generator returned an empty question")

// QuestionPayload describes the question that was just asked.
type QuestionPayload struct {
	Question   string `json:"question"`
	Difficulty string `json:"difficulty"`
	TimeLimit  int    `json:"time_limit"`
	Phase      Phase  `json:"phase"`
}

// Result is the outward-facing outcome of processing an answer.
type Result struct {
	Finished bool     `json:"finished"`
	Phase    Phase    `json:"phase"`
	Score    *float64 `json:"score,omitempty"`
	Analysis string   `json:"analysis,omitempty"`

	Next    *QuestionPayload `json:"next,omitempty"`
	Summary *Summary         `json:"summary,omitempty"`
}

// Processor drives the interview state machine. It keeps no state between
// calls: every call receives the record and returns an updated copy.
type Processor struct {
	questions QuestionGenerator
	evaluator AnswerEvaluator
	closing   ClosingGenerator
	logger    *zap.Logger
	now       func() time.Time
}

// NewProcessor wires the generation ports into a processor.
func NewProcessor(questions QuestionGenerator, evaluator AnswerEvaluator, closing ClosingGenerator, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}

	return &Processor{
		questions: questions,
		evaluator: evaluator,
		closing:   closing,
		logger:    log,
		now:       time.Now,
	}
}

// StartNewRecord creates the record of a new candidate and asks the first question.
func (p *Processor) StartNewRecord(ctx context.Context, name, profile string, level CandidateLevel, ictx *Context) (*Record, *QuestionPayload, error) {
	if ictx == nil {
		return nil, nil, errors.New("interview context is required")
	}
	if !level.Valid() {
		return nil, nil, fmt.Errorf("%w: candidate level %d", ErrCorruptRecord, int(level))
	}

	cfg := ictx.Config
	rec := &Record{
		BatchID:           ictx.BatchID,
		CandidateName:     name,
		CandidateProfile:  profile,
		CandidateContext:  ExtractCandidateContext(profile),
		ClassifiedLevel:   level,
		CurrentDifficulty: cfg.InitialDifficulty(level),
		CurrentPhase:      cfg.InitialPhase(),
		History:           []QuestionAttempt{},
		Memory:            []Turn{},
		CreatedAt:         p.now().UTC(),
	}

	log := p.recordLogger(rec)

	var (
		payload *QuestionPayload
		err     error
	)
	if rec.CurrentPhase == PhaseWarmup {
		payload, err = p.askWarmup(ctx, rec, ictx)
	} else {
		payload, err = p.askTechnical(ctx, rec, ictx, NewMemory(nil, cfg.MaxMemoryTurns))
	}
	if err != nil {
		return nil, nil, err
	}

	log.Info("interview started",
		zap.String("phase", rec.CurrentPhase.String()),
		zap.String("level", level.String()),
		zap.String("difficulty", rec.CurrentDifficulty.String()),
	)

	return rec, payload, nil
}

// ProcessAnswer applies a submitted answer to a copy of the record. The
// input record is never modified; on error the caller keeps its version.
func (p *Processor) ProcessAnswer(ctx context.Context, in *Record, ictx *Context, answer string, timeSpent int) (*Record, *Result, error) {
	if ictx == nil {
		return nil, nil, errors.New("interview context is required")
	}
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	rec := in.Clone()

	if rec.IsFinished {
		return rec, &Result{Finished: true, Phase: rec.CurrentPhase, Summary: p.summarize(ctx, rec, ictx)}, nil
	}

	if timeSpent < 0 {
		return nil, nil, fmt.Errorf("%w: negative time spent %d", ErrInvalidAnswer, timeSpent)
	}
	spent := timeSpent
	rec.LastAttempt().TimeSpent = &spent

	switch rec.CurrentPhase {
	case PhaseWarmup:
		return p.handleWarmup(ctx, rec, ictx, answer)
	case PhaseTechnical:
		return p.handleTechnical(ctx, rec, ictx, answer)
	default:
		return p.handleClosing(ctx, rec, ictx)
	}
}

// Summary returns the summary of a finished record together with the copy
// it was built from, which carries the closing message if it was generated
// by this call.
func (p *Processor) Summary(ctx context.Context, in *Record, ictx *Context) (*Record, *Summary, error) {
	if ictx == nil {
		return nil, nil, errors.New("interview context is required")
	}
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}
	if !in.IsFinished {
		return nil, nil, ErrNotFinished
	}

	rec := in.Clone()
	return rec, p.summarize(ctx, rec, ictx), nil
}

func (p *Processor) handleWarmup(ctx context.Context, rec *Record, ictx *Context, answer string) (*Record, *Result, error) {
	cfg := ictx.Config

	last := rec.LastAttempt()
	last.Answer = answer
	last.Analysis = analysisWarmupAnswer
	answeredAt := p.now().UTC()
	last.AnsweredAt = &answeredAt

	memory := NewMemory(rec.Memory, cfg.MaxMemoryTurns)
	memory.Add(RoleCandidate, answer)
	memory.Add(RoleInterviewer, warmupMemoryAck)
	rec.Memory = memory.Turns()

	rec.WarmupQuestionsAsked++

	result := &Result{Phase: rec.CurrentPhase, Analysis: warmupNextAnalysis}

	var (
		next *QuestionPayload
		err  error
	)
	if rec.WarmupQuestionsAsked >= cfg.MaxWarmupQuestions {
		rec.CurrentPhase = PhaseTechnical
		result.Phase = PhaseTechnical
		result.Analysis = warmupDoneAnalysis

		p.recordLogger(rec).Debug("warm-up finished", zap.Int("warmup_questions", rec.WarmupQuestionsAsked))

		next, err = p.askTechnical(ctx, rec, ictx, memory)
	} else {
		next, err = p.askWarmup(ctx, rec, ictx)
	}
	if err != nil {
		return nil, nil, err
	}

	result.Next = next
	return rec, result, nil
}

func (p *Processor) handleTechnical(ctx context.Context, rec *Record, ictx *Context, answer string) (*Record, *Result, error) {
	cfg := ictx.Config
	log := p.recordLogger(rec)
	last := rec.LastAttempt()

	evaluation := p.evaluate(ctx, log, last.Question, answer, ictx.KnowledgeText)

	last.Answer = answer
	last.Score = evaluation.Score
	last.Analysis = evaluation.Analysis
	answeredAt := p.now().UTC()
	last.AnsweredAt = &answeredAt

	memory := NewMemory(rec.Memory, cfg.MaxMemoryTurns)
	memory.Add(RoleCandidate, answer)
	memory.Add(RoleInterviewer, fmt.Sprintf("Score: %.1f/10 - %s", evaluation.Score, evaluation.Analysis))
	rec.Memory = memory.Turns()

	action := advance(rec, evaluation.Score, cfg)

	log.Debug("answer scored",
		zap.Float64("score", evaluation.Score),
		zap.String("action", string(action)),
		zap.String("difficulty", rec.CurrentDifficulty.String()),
		zap.Int("attempts_at_level", rec.AttemptsAtCurrentLevel),
		zap.Int("total_questions", rec.TotalQuestionsAsked),
		zap.Int("upper_level_reached", rec.UpperLevelReached),
	)

	score := evaluation.Score
	result := &Result{Phase: rec.CurrentPhase, Score: &score, Analysis: evaluation.Analysis}

	if rec.IsFinished {
		p.finish(rec)
		result.Finished = true
		result.Phase = rec.CurrentPhase
		result.Summary = p.summarize(ctx, rec, ictx)
		return rec, result, nil
	}

	next, err := p.askTechnical(ctx, rec, ictx, memory)
	if err != nil {
		return nil, nil, err
	}

	result.Next = next
	return rec, result, nil
}

// handleClosing terminates a record that reached the closing phase without
// being finished.
func (p *Processor) handleClosing(ctx context.Context, rec *Record, ictx *Context) (*Record, *Result, error) {
	rec.IsFinished = true
	if rec.FinishReason == "" {
		rec.FinishReason = ReasonCompleted
	}
	if rec.FinalScore == nil {
		score := finalScore(rec.History)
		rec.FinalScore = &score
	}
	p.finish(rec)

	return rec, &Result{Finished: true, Phase: rec.CurrentPhase, Summary: p.summarize(ctx, rec, ictx)}, nil
}

func (p *Processor) finish(rec *Record) {
	rec.CurrentPhase = PhaseClosing
	if rec.FinishedAt == nil {
		at := p.now().UTC()
		rec.FinishedAt = &at
	}

	p.recordLogger(rec).Info("interview finished",
		zap.String("reason", string(rec.FinishReason)),
		zap.Float64("final_score", *rec.FinalScore),
		zap.Int("total_questions", rec.TotalQuestionsAsked),
	)
}

func (p *Processor) evaluate(ctx context.Context, log *zap.Logger, question, answer, knowledge string) Evaluation {
	evaluation, err := p.evaluator.EvaluateAnswer(ctx, question, answer, knowledge)
	if err != nil || evaluation == nil || math.IsNaN(evaluation.Score) {
		log.Warn("answer evaluation failed, using neutral score",
			zap.Error(err),
			zap.Float64("score", fallbackScore),
		)
		return Evaluation{Score: fallbackScore, Analysis: fallbackAnalysis}
	}

	return Evaluation{
		Score:    clampScore(evaluation.Score),
		Analysis: strings.TrimSpace(evaluation.Analysis),
	}
}

func (p *Processor) askWarmup(ctx context.Context, rec *Record, ictx *Context) (*QuestionPayload, error) {
	q, err := p.questions.WarmupQuestion(ctx, WarmupRequest{
		CandidateName:    ShortName(rec.CandidateName),
		CandidateContext: rec.CandidateContext,
		Topic:            ictx.Topic,
		Index:            rec.WarmupQuestionsAsked,
	})
	if err == nil {
		err = checkQuestion(q)
	}
	if err != nil {
		return nil, fmt.Errorf("generate warm-up question: %w", err)
	}

	label := q.Difficulty
	if label == "" {
		label = warmupDifficultyLabel
	}
	limit := q.TimeLimit
	if limit <= 0 {
		limit = WarmupTimeLimit
	}

	rec.History = append(rec.History, p.newAttempt(q.Question, VeryEasy, PhaseWarmup, analysisWarmupPending, limit))

	return &QuestionPayload{Question: q.Question, Difficulty: label, TimeLimit: limit, Phase: PhaseWarmup}, nil
}

func (p *Processor) askTechnical(ctx context.Context, rec *Record, ictx *Context, memory *Memory) (*QuestionPayload, error) {
	q, err := p.questions.TechnicalQuestion(ctx, TechnicalRequest{
		Topic:            ictx.Topic,
		Difficulty:       rec.CurrentDifficulty,
		KnowledgeText:    ictx.KnowledgeText,
		Transcript:       memory.Render(),
		CandidateContext: rec.CandidateContext,
		OutlineSummary:   ictx.OutlineSummary,
	})
	if err == nil {
		err = checkQuestion(q)
	}
	if err != nil {
		return nil, fmt.Errorf("generate %s question: %w", rec.CurrentDifficulty, err)
	}

	label := q.Difficulty
	if label == "" {
		label = rec.CurrentDifficulty.String()
	}
	limit := q.TimeLimit
	if limit <= 0 {
		limit = EstimateTimeLimit(rec.CurrentDifficulty, q.Question)
	}

	rec.History = append(rec.History, p.newAttempt(q.Question, rec.CurrentDifficulty, PhaseTechnical, analysisPending, limit))

	return &QuestionPayload{Question: q.Question, Difficulty: label, TimeLimit: limit, Phase: PhaseTechnical}, nil
}

func (p *Processor) newAttempt(question string, d DifficultyLevel, phase Phase, analysis string, limit int) QuestionAttempt {
	return QuestionAttempt{
		Question:     question,
		Analysis:     analysis,
		Difficulty:   d,
		Phase:        phase,
		Timestamp:    p.now().UTC(),
		QuestionHash: QuestionHash(question),
		TimeLimit:    limit,
	}
}

func (p *Processor) recordLogger(rec *Record) *zap.Logger {
	return logger.WithFields(p.logger, logger.InterviewFields("", rec.BatchID, rec.CandidateName)...)
}

func checkQuestion(q *GeneratedQuestion) error {
	if q == nil || strings.TrimSpace(q.Question) == "" {
		return errEmptyQuestion
	}
	return nil
}

func clampScore(score float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, score))
}
