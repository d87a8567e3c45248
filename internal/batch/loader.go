package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/adaptive-interviewer/internal/interview"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	ErrNotFound  = errors.New("batch not found")
	ErrInvalidID = errors.New("invalid batch id")
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

var extensions = []string{".yaml", ".yml"}

// Summarizer condenses the reference material of a batch.
type Summarizer interface {
	SummarizeKnowledge(ctx context.Context, topic string, outline []string, knowledge string) (string, error)
}

type definition struct {
	ID             string   `mapstructure:"id"`
	Topic          string   `mapstructure:"topic"`
	Outline        []string `mapstructure:"outline"`
	Knowledge      string   `mapstructure:"knowledge"`
	KnowledgeFile  string   `mapstructure:"knowledge-file"`
	OutlineSummary string   `mapstructure:"outline-summary"`
	Interview      settings `mapstructure:"interview"`
}

type settings struct {
	ThresholdHigh       float64             `mapstructure:"threshold-high"`
	ThresholdLow        float64             `mapstructure:"threshold-low"`
	MaxAttemptsPerLevel int                 `mapstructure:"max-attempts-per-level"`
	MaxTotalQuestions   int                 `mapstructure:"max-total-questions"`
	MaxUpperLevel       int                 `mapstructure:"max-upper-level"`
	MaxMemoryTurns      int                 `mapstructure:"max-memory-turns"`
	MaxWarmupQuestions  int                 `mapstructure:"max-warmup-questions"`
	DemoMode            bool                `mapstructure:"demo-mode"`
	DifficultyMap       map[string][]string `mapstructure:"difficulty-map"`
}

func defaultSettings() settings {
	cfg := interview.DefaultConfig()

	levels := make(map[string][]string, len(cfg.DifficultyMap))
	for level, difficulties := range cfg.DifficultyMap {
		names := make([]string, 0, len(difficulties))
		for _, d := range difficulties {
			names = append(names, d.String())
		}
		levels[level.String()] = names
	}

	return settings{
		ThresholdHigh:       cfg.ThresholdHigh,
		ThresholdLow:        cfg.ThresholdLow,
		MaxAttemptsPerLevel: cfg.MaxAttemptsPerLevel,
		MaxTotalQuestions:   cfg.MaxTotalQuestions,
		MaxUpperLevel:       cfg.MaxUpperLevel,
		MaxMemoryTurns:      cfg.MaxMemoryTurns,
		MaxWarmupQuestions:  cfg.MaxWarmupQuestions,
		DemoMode:            cfg.DemoMode,
		DifficultyMap:       levels,
	}
}

func (s settings) config() (interview.Config, error) {
	levels := make(map[interview.CandidateLevel][]interview.DifficultyLevel, len(s.DifficultyMap))
	for name, difficulties := range s.DifficultyMap {
		level, err := interview.ParseCandidateLevel(name)
		if err != nil {
			return interview.Config{}, fmt.Errorf("difficulty-map: %w", err)
		}
		parsed := make([]interview.DifficultyLevel, 0, len(difficulties))
		for _, d := range difficulties {
			difficulty, err := interview.ParseDifficulty(d)
			if err != nil {
				return interview.Config{}, fmt.Errorf("difficulty-map %s: %w", name, err)
			}
			parsed = append(parsed, difficulty)
		}
		levels[level] = parsed
	}

	cfg := interview.Config{
		ThresholdHigh:       s.ThresholdHigh,
		ThresholdLow:        s.ThresholdLow,
		MaxAttemptsPerLevel: s.MaxAttemptsPerLevel,
		MaxTotalQuestions:   s.MaxTotalQuestions,
		MaxUpperLevel:       s.MaxUpperLevel,
		MaxMemoryTurns:      s.MaxMemoryTurns,
		MaxWarmupQuestions:  s.MaxWarmupQuestions,
		DemoMode:            s.DemoMode,
		DifficultyMap:       levels,
	}
	if err := cfg.Validate(); err != nil {
		return interview.Config{}, err
	}
	return cfg, nil
}

// Loader reads batch definitions from <dir>/<batch-id>.yaml.
type Loader struct {
	dir        string
	summarizer Summarizer
	logger     *zap.Logger
}

// NewLoader creates a loader. The summarizer is optional and only used for
// batches without an outline summary.
func NewLoader(dir string, summarizer Summarizer, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{dir: dir, summarizer: summarizer, logger: logger}
}

// Load parses and validates the batch definition into an interview context.
func (l *Loader) Load(ctx context.Context, id string) (*interview.Context, error) {
	id = strings.TrimSpace(id)
	if !idPattern.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	path, data, err := l.read(id)
	if err != nil {
		return nil, err
	}

	def, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("batch %s (%s): %w", id, path, err)
	}

	if def.ID != "" && def.ID != id {
		return nil, fmt.Errorf("batch %s (%s): file declares id %q", id, path, def.ID)
	}
	if strings.TrimSpace(def.Topic) == "" {
		return nil, fmt.Errorf("batch %s (%s): topic is required", id, path)
	}

	cfg, err := def.Interview.config()
	if err != nil {
		return nil, fmt.Errorf("batch %s (%s): %w", id, path, err)
	}

	knowledge, err := l.knowledge(*def)
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", id, err)
	}

	ictx := &interview.Context{
		BatchID:        id,
		Topic:          strings.TrimSpace(def.Topic),
		Outline:        def.Outline,
		KnowledgeText:  knowledge,
		OutlineSummary: strings.TrimSpace(def.OutlineSummary),
		Config:         cfg,
	}

	if ictx.OutlineSummary == "" && knowledge != "" && l.summarizer != nil {
		summary, err := l.summarizer.SummarizeKnowledge(ctx, ictx.Topic, ictx.Outline, knowledge)
		if err != nil {
			l.logger.Warn("knowledge summary failed, continuing without it",
				zap.String("batch_id", id),
				zap.Error(err),
			)
		} else {
			ictx.OutlineSummary = strings.TrimSpace(summary)
		}
	}

	l.logger.Debug("batch loaded",
		zap.String("batch_id", id),
		zap.String("path", path),
		zap.Int("outline_items", len(ictx.Outline)),
		zap.Int("knowledge_length", len(knowledge)),
	)

	return ictx, nil
}

func (l *Loader) read(id string) (string, []byte, error) {
	for _, ext := range extensions {
		path := filepath.Join(l.dir, id+ext)
		data, err := os.ReadFile(path)
		if err == nil {
			return path, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("read batch %s: %w", id, err)
		}
	}
	return "", nil, fmt.Errorf("%w: %s in %s", ErrNotFound, id, l.dir)
}

func (l *Loader) knowledge(def definition) (string, error) {
	parts := make([]string, 0, 2)
	if text := strings.TrimSpace(def.Knowledge); text != "" {
		parts = append(parts, text)
	}

	if file := strings.TrimSpace(def.KnowledgeFile); file != "" {
		if !filepath.IsAbs(file) {
			file = filepath.Join(l.dir, file)
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read knowledge file: %w", err)
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

func decode(data []byte) (*definition, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	def := &definition{Interview: defaultSettings()}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           def,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}

	return def, nil
}
