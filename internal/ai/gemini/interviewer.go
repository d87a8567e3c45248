package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/adaptive-interviewer/internal/interview"
	"github.com/spigell/adaptive-interviewer/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

var (
	//go:embed prompts/warmup_greeting.md
	warmupGreetingTemplate string
	//go:embed prompts/warmup_followup.md
	warmupFollowupTemplate string
	//go:embed prompts/technical.md
	technicalTemplate string
	//go:embed prompts/evaluation.md
	evaluationTemplate string
	//go:embed prompts/closing.md
	closingTemplate string
	//go:embed prompts/knowledge_summary.md
	knowledgeSummaryTemplate string
)

const (
	interviewerPersona = "You are a friendly, professional and experienced interviewer assessing a candidate in a spoken technical interview."
	examinerPersona    = "You are a professional technical examiner. You grade a candidate's answer strictly against the reference material."
	expertPersona      = "You are a subject matter expert preparing material for an interviewer."

	defaultQuestion     = "Could you explain that in a bit more detail?"
	noMaterial          = "No reference material."
	noConversation      = "No conversation yet."
	noSummary           = "None."
	defaultMaxLogLength = 200
)

var difficultyDescriptions = map[interview.DifficultyLevel]string{
	interview.VeryEasy: "very basic. Check foundational understanding such as concepts, definitions or a simple illustrative example. " +
		"The answer is short (1 to 2 sentences) and needs no deep analysis. For programming topics ask about syntax, a feature or its basic purpose.",
	interview.Easy: "basic. Ask the candidate to explain a meaning, compare, or give a small real example. " +
		"For technical topics a short snippet (under 10 lines) or a simple technical situation may be analysed.",
	interview.Medium: "intermediate. Check the ability to apply knowledge to a concrete situation or relate concepts to each other. " +
		"For programming topics the candidate may analyse a 15 to 25 line snippet or describe how to solve a small real problem.",
	interview.Hard: "advanced. Require critical thinking, evaluation or synthesis from several sources, such as justifying a decision, " +
		"proposing a solution or comparing approaches. For technical topics this can be module design or performance analysis.",
	interview.VeryHard: "very hard. Require synthesis, creativity or application to a complex situation with many variables. " +
		"The question is open ended and asks for reasoned arguments. For technical topics this can be a whole system or a large design problem.",
}

// Interviewer implements the interview generation ports on top of Gemini.
type Interviewer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewInterviewer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Interviewer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Interviewer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (i *Interviewer) WarmupQuestion(ctx context.Context, req interview.WarmupRequest) (*interview.GeneratedQuestion, error) {
	template := warmupFollowupTemplate
	if req.Index <= 0 {
		template = warmupGreetingTemplate
	}

	message := fill(template, map[string]string{
		"CANDIDATE_NAME":    req.CandidateName,
		"CANDIDATE_CONTEXT": orDefault(req.CandidateContext, req.CandidateName),
		"TOPIC":             req.Topic,
	})

	raw, err := i.generate(ctx, "warmup", interviewerPersona, message)
	if err != nil {
		return nil, err
	}

	question := parseQuestionResponse(raw).Question
	if question == "" {
		question = fmt.Sprintf("Hello %s! Are you ready for the interview?", req.CandidateName)
	}

	return &interview.GeneratedQuestion{
		Question:   question,
		Difficulty: "warmup",
		TimeLimit:  interview.WarmupTimeLimit,
	}, nil
}

func (i *Interviewer) TechnicalQuestion(ctx context.Context, req interview.TechnicalRequest) (*interview.GeneratedQuestion, error) {
	message := fill(technicalTemplate, map[string]string{
		"CANDIDATE_CONTEXT":      req.CandidateContext,
		"TOPIC":                  req.Topic,
		"TRANSCRIPT":             orDefault(req.Transcript, noConversation),
		"KNOWLEDGE":              orDefault(req.KnowledgeText, noMaterial),
		"OUTLINE_SUMMARY":        orDefault(req.OutlineSummary, noSummary),
		"DIFFICULTY":             req.Difficulty.String(),
		"DIFFICULTY_DESCRIPTION": difficultyDescriptions[req.Difficulty],
	})

	raw, err := i.generate(ctx, "technical", interviewerPersona, message)
	if err != nil {
		return nil, err
	}

	parsed := parseQuestionResponse(raw)
	question := parsed.Question
	if question == "" {
		question = defaultQuestion
	}

	return &interview.GeneratedQuestion{
		Question:   formatCodeBlocks(question),
		Difficulty: req.Difficulty.String(),
		TimeLimit:  parsed.TimeLimit,
	}, nil
}

func (i *Interviewer) EvaluateAnswer(ctx context.Context, question, answer, knowledgeText string) (*interview.Evaluation, error) {
	message := fill(evaluationTemplate, map[string]string{
		"QUESTION":  question,
		"ANSWER":    answer,
		"KNOWLEDGE": orDefault(knowledgeText, noMaterial),
	})

	raw, err := i.generate(ctx, "evaluation", examinerPersona, message)
	if err != nil {
		return nil, err
	}

	parsed, err := parseEvaluationResponse(raw)
	if err != nil {
		return nil, err
	}

	return &interview.Evaluation{Score: parsed.Score, Analysis: parsed.Analysis}, nil
}

func (i *Interviewer) ClosingMessage(ctx context.Context, req interview.ClosingRequest) (string, error) {
	message := fill(closingTemplate, map[string]string{
		"CANDIDATE_NAME": req.CandidateName,
		"TOPIC":          req.Topic,
		"REASON_CONTEXT": reasonContext(req),
		"FINAL_SCORE":    fmt.Sprintf("%.1f", req.FinalScore),
	})

	raw, err := i.generate(ctx, "closing", interviewerPersona, message)
	if err != nil {
		return "", err
	}

	return cleanClosing(raw), nil
}

// SummarizeKnowledge condenses the reference material of a batch and flags
// outline items it does not cover.
func (i *Interviewer) SummarizeKnowledge(ctx context.Context, topic string, outline []string, knowledge string) (string, error) {
	if strings.TrimSpace(knowledge) == "" {
		return "(no reference material)", nil
	}

	items := make([]string, 0, len(outline))
	for _, item := range outline {
		items = append(items, "- "+item)
	}

	message := fill(knowledgeSummaryTemplate, map[string]string{
		"TOPIC":     topic,
		"OUTLINE":   orDefault(strings.Join(items, "\n"), noSummary),
		"KNOWLEDGE": knowledge,
	})

	return i.generate(ctx, "knowledge_summary", expertPersona, message)
}

func (i *Interviewer) generate(ctx context.Context, kind, system, message string) (string, error) {
	i.logger.Debug("gemini generate content request",
		zap.String("kind", kind),
		zap.Int("prompt_length", utf8.RuneCountInString(message)),
		zap.String("prompt_preview", utils.TruncateForLog(message, i.maxLogLen)),
	)

	raw, err := i.generator.GenerateContent(ctx, system, message)
	if err != nil {
		return "", fmt.Errorf("%s: %w", kind, err)
	}

	i.logger.Debug("gemini generate content response",
		zap.String("kind", kind),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, i.maxLogLen)),
	)

	return raw, nil
}

func reasonContext(req interview.ClosingRequest) string {
	switch req.FinishReason {
	case interview.ReasonMaxAttempts:
		return fmt.Sprintf("The candidate completed %d questions at the current level.", req.TotalQuestions)
	case interview.ReasonMaxQuestions:
		return fmt.Sprintf("We went through %d questions about %s.", req.TotalQuestions, req.Topic)
	case interview.ReasonMaxUpperLevel:
		return fmt.Sprintf("The candidate climbed through several difficulty levels in %d questions.", req.TotalQuestions)
	default:
		return fmt.Sprintf("We completed %d questions.", req.TotalQuestions)
	}
}

func fill(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
