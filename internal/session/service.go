package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/adaptive-interviewer/internal/interview"
	"github.com/spigell/adaptive-interviewer/internal/logger"
	"github.com/spigell/adaptive-interviewer/internal/store"
	"go.uber.org/zap"
)

// Store is the persistence the service needs.
type Store interface {
	Insert(ctx context.Context, rec *interview.Record) (*store.Entry, error)
	Get(ctx context.Context, id string) (*store.Entry, error)
	FindByCandidate(ctx context.Context, batchID, candidateName string) (*store.Entry, error)
	Replace(ctx context.Context, id string, expectedVersion int64, rec *interview.Record) (*store.Entry, error)
	Reset(ctx context.Context, id string, expectedVersion int64, rec *interview.Record) (*store.Entry, error)
}

// Contexts resolves the shared context of a batch.
type Contexts interface {
	Get(ctx context.Context, batchID string) (*interview.Context, error)
}

// StartResult is returned when a candidate starts or resumes an interview.
type StartResult struct {
	RecordID         string                     `json:"record_id"`
	Level            interview.CandidateLevel   `json:"level"`
	AlreadyCompleted bool                       `json:"already_completed"`
	Reset            bool                       `json:"reset"`
	Question         *interview.QuestionPayload `json:"question,omitempty"`
	Summary          *interview.Summary         `json:"summary,omitempty"`
}

// AnswerResult is returned for a submitted answer.
type AnswerResult struct {
	RecordID string `json:"record_id"`
	*interview.Result
}

// Service runs interviews against stored records. Calls for the same record
// are serialised in process; concurrent writers elsewhere are detected by the
// store's version check.
type Service struct {
	processor *interview.Processor
	store     Store
	contexts  Contexts
	logger    *zap.Logger
	locks     *keyedMutex
}

func NewService(processor *interview.Processor, st Store, contexts Contexts, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		processor: processor,
		store:     st,
		contexts:  contexts,
		logger:    log,
		locks:     newKeyedMutex(),
	}
}

// Start begins an interview for a candidate. A finished interview returns its
// summary; an unfinished one is restarted from scratch.
func (s *Service) Start(ctx context.Context, batchID, candidateName, profile string) (*StartResult, error) {
	candidateName = strings.TrimSpace(candidateName)
	if candidateName == "" {
		return nil, errors.New("candidate name is required")
	}

	ictx, err := s.contexts.Get(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("load batch %s: %w", batchID, err)
	}

	unlock := s.locks.Lock("candidate:" + batchID + "/" + candidateName)
	defer unlock()

	log := logger.WithFields(s.logger, logger.InterviewFields("", batchID, candidateName)...)

	existing, err := s.store.FindByCandidate(ctx, batchID, candidateName)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if existing != nil && existing.Record.IsFinished {
		summary, err := s.summarize(ctx, existing, ictx)
		if err != nil {
			return nil, err
		}
		log.Info("interview already completed", zap.String(logger.FieldRecordID, existing.ID))
		return &StartResult{
			RecordID:         existing.ID,
			Level:            existing.Record.ClassifiedLevel,
			AlreadyCompleted: true,
			Summary:          summary,
		}, nil
	}

	level := interview.LevelFromProfile(profile)
	rec, question, err := s.processor.StartNewRecord(ctx, candidateName, profile, level, ictx)
	if err != nil {
		return nil, err
	}

	result := &StartResult{Level: level, Question: question}

	if existing == nil {
		entry, err := s.store.Insert(ctx, rec)
		if err != nil {
			return nil, err
		}
		result.RecordID = entry.ID
		log.Info("interview record created", zap.String(logger.FieldRecordID, entry.ID))
		return result, nil
	}

	unlockRecord := s.locks.Lock("record:" + existing.ID)
	defer unlockRecord()

	entry, err := s.store.Reset(ctx, existing.ID, existing.Version, rec)
	if err != nil {
		return nil, err
	}
	result.RecordID = entry.ID
	result.Reset = true
	log.Info("unfinished interview restarted",
		zap.String(logger.FieldRecordID, entry.ID),
		zap.Int("reset_count", entry.ResetCount),
	)

	return result, nil
}

// Answer applies an answer to the open question of a record.
func (s *Service) Answer(ctx context.Context, recordID, answer string, timeSpent int) (*AnswerResult, error) {
	unlock := s.locks.Lock("record:" + recordID)
	defer unlock()

	entry, err := s.store.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}

	ictx, err := s.contexts.Get(ctx, entry.BatchID)
	if err != nil {
		return nil, fmt.Errorf("load batch %s: %w", entry.BatchID, err)
	}

	updated, result, err := s.processor.ProcessAnswer(ctx, entry.Record, ictx, answer, timeSpent)
	if err != nil {
		return nil, err
	}

	if changed(entry.Record, updated) {
		if _, err := s.store.Replace(ctx, entry.ID, entry.Version, updated); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("answer processed",
		append(logger.InterviewFields(entry.ID, entry.BatchID, entry.CandidateName),
			zap.Bool("finished", result.Finished),
			zap.String("phase", result.Phase.String()),
		)...,
	)

	return &AnswerResult{RecordID: entry.ID, Result: result}, nil
}

// Summary returns the summary of a finished record.
func (s *Service) Summary(ctx context.Context, recordID string) (*interview.Summary, error) {
	unlock := s.locks.Lock("record:" + recordID)
	defer unlock()

	entry, err := s.store.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}

	ictx, err := s.contexts.Get(ctx, entry.BatchID)
	if err != nil {
		return nil, fmt.Errorf("load batch %s: %w", entry.BatchID, err)
	}

	return s.summarize(ctx, entry, ictx)
}

// summarize builds the summary and stores a newly generated closing message.
// The caller holds the lock for the record or its candidate.
func (s *Service) summarize(ctx context.Context, entry *store.Entry, ictx *interview.Context) (*interview.Summary, error) {
	rec, summary, err := s.processor.Summary(ctx, entry.Record, ictx)
	if err != nil {
		return nil, err
	}

	if changed(entry.Record, rec) {
		if _, err := s.store.Replace(ctx, entry.ID, entry.Version, rec); err != nil {
			s.logger.Warn("could not store closing message",
				append(logger.InterviewFields(entry.ID, entry.BatchID, entry.CandidateName), zap.Error(err))...,
			)
		}
	}

	return summary, nil
}

// changed reports whether processing produced something worth storing. A
// finished record only changes when its closing message is first generated.
func changed(before, after *interview.Record) bool {
	if !before.IsFinished {
		return true
	}
	return before.ClosingMessage != after.ClosingMessage
}
