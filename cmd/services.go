package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spigell/adaptive-interviewer/internal/ai"
	"github.com/spigell/adaptive-interviewer/internal/batch"
	"github.com/spigell/adaptive-interviewer/internal/interview"
	"github.com/spigell/adaptive-interviewer/internal/logger"
	"github.com/spigell/adaptive-interviewer/internal/session"
	"github.com/spigell/adaptive-interviewer/internal/store"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// services holds everything a command needs to run interviews.
type services struct {
	logger  *zap.Logger
	config  *Config
	store   *store.Store
	batches *batch.Cache
	session *session.Service
}

func newServices(ctx context.Context) (*services, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}

	log.Debug("starting with config",
		zap.String("batches_dir", config.BatchesDir),
		zap.String("store_path", config.Store.Path),
		zap.String("ai_provider", config.AI.Provider),
		zap.String("version", version),
	)

	model, err := ai.New(ctx, config.AI, log)
	if err != nil {
		return nil, fmt.Errorf("building ai interviewer: %w", err)
	}

	st, err := store.Open(config.Store.Path)
	if err != nil {
		return nil, err
	}

	batches := batch.NewCache(batch.NewLoader(config.BatchesDir, model, log))
	processor := interview.NewProcessor(model, model, model, log)

	return &services{
		logger:  log,
		config:  config,
		store:   st,
		batches: batches,
		session: session.NewService(processor, st, batches, log),
	}, nil
}

func (s *services) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing the store", zap.Error(err))
	}
	_ = s.logger.Sync()
}

func printJSON(w io.Writer, v any) error {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(pretty))
	return err
}
