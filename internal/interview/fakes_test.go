package interview

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type fakeQuestions struct {
	warmupRequests    []WarmupRequest
	technicalRequests []TechnicalRequest
	timeLimit         int
	err               error
}

func (f *fakeQuestions) WarmupQuestion(_ context.Context, req WarmupRequest) (*GeneratedQuestion, error) {
	f.warmupRequests = append(f.warmupRequests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &GeneratedQuestion{
		Question:   fmt.Sprintf("warm-up %d for %s", req.Index, req.CandidateName),
		Difficulty: "warmup",
		TimeLimit:  90,
	}, nil
}

func (f *fakeQuestions) TechnicalQuestion(_ context.Context, req TechnicalRequest) (*GeneratedQuestion, error) {
	f.technicalRequests = append(f.technicalRequests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &GeneratedQuestion{
		Question:   fmt.Sprintf("technical %d at %s", len(f.technicalRequests), req.Difficulty),
		Difficulty: req.Difficulty.String(),
		TimeLimit:  f.timeLimit,
	}, nil
}

type fakeEvaluator struct {
	scores []float64
	err    error
	calls  int
}

func (f *fakeEvaluator) EvaluateAnswer(_ context.Context, question, answer, _ string) (*Evaluation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.scores) == 0 {
		return nil, errors.New("no scores queued")
	}
	score := f.scores[0]
	f.scores = f.scores[1:]
	return &Evaluation{Score: score, Analysis: fmt.Sprintf("scored %.1f", score)}, nil
}

type fakeClosing struct {
	message string
	err     error
	calls   int
	last    ClosingRequest
}

func (f *fakeClosing) ClosingMessage(_ context.Context, req ClosingRequest) (string, error) {
	f.calls++
	f.last = req
	return f.message, f.err
}

type fixture struct {
	questions *fakeQuestions
	evaluator *fakeEvaluator
	closing   *fakeClosing
	processor *Processor
	ctx       *Context
}

func newFixture(cfg Config, scores ...float64) *fixture {
	f := &fixture{
		questions: &fakeQuestions{},
		evaluator: &fakeEvaluator{scores: scores},
		closing:   &fakeClosing{message: "Goodbye and thanks."},
		ctx: &Context{
			BatchID:        "batch-1",
			Topic:          "Go concurrency",
			Outline:        []string{"goroutines", "channels"},
			KnowledgeText:  "Goroutines are lightweight threads.",
			OutlineSummary: "Covers goroutines and channels.",
			Config:         cfg,
		},
	}
	f.processor = NewProcessor(f.questions, f.evaluator, f.closing, nil)

	clock := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	f.processor.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return f
}

func scenarioConfig() Config {
	cfg := DefaultConfig()
	cfg.ThresholdHigh = 7
	cfg.ThresholdLow = 4
	cfg.MaxAttemptsPerLevel = 2
	cfg.MaxTotalQuestions = 3
	cfg.MaxUpperLevel = 1
	cfg.DifficultyMap[Average] = []DifficultyLevel{Easy, Medium}
	return cfg
}
