package evaluator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"intervuai/backend/internal/llm"
	"intervuai/backend/internal/metrics"
	"intervuai/backend/internal/models"
	"intervuai/backend/internal/prompts"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errNoProvider = errors.New("no AI provider configured")

// Context is what the model is told about the interview.
type Context struct {
	InterviewType   string
	DifficultyLevel string
	AnalysisType    string
	QuestionNumber  int
}

// ScoredAnswer is one evaluated Q/A pair fed into the summary.
type ScoredAnswer struct {
	Question string
	Response string
	Score    int
}

// Service generates questions, evaluations and summaries through an LLM.
// With fallbacks enabled, question and evaluation failures degrade to
// deterministic local answers instead of returning an error.
type Service struct {
	provider llm.Provider
	prompts  prompts.PromptProvider
	logger   *zap.Logger
	fallback bool
	pick     func(n int) int
}

type Option func(*Service)

func WithFallback(enabled bool) Option {
	return func(s *Service) { s.fallback = enabled }
}

// WithPicker replaces the random index picker used for the question bank.
func WithPicker(pick func(n int) int) Option {
	return func(s *Service) { s.pick = pick }
}

func New(provider llm.Provider, pm prompts.PromptProvider, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		provider: provider,
		prompts:  pm,
		logger:   logger,
		fallback: true,
		pick:     rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) InitialQuestion(ctx context.Context, interviewType, difficulty string) (string, error) {
	question, err := s.generate(ctx, prompts.ModeQuestion, difficulty, map[string]string{
		"InterviewType":   interviewType,
		"DifficultyLevel": difficulty,
	})
	if err == nil {
		return question, nil
	}
	if !s.useFallback(ctx, "question", err) {
		return "", err
	}

	pool := fallbackQuestions(interviewType, difficulty)
	return pool[s.pick(len(pool))], nil
}

func (s *Service) Evaluate(ctx context.Context, question, response string, c Context) (models.Evaluation, error) {
	text, err := s.generate(ctx, prompts.ModeEvaluation, analysisLevel(c.AnalysisType), map[string]string{
		"Question":        question,
		"Response":        response,
		"InterviewType":   orDefault(c.InterviewType, "general"),
		"DifficultyLevel": orDefault(c.DifficultyLevel, models.DefaultDifficulty),
		"QuestionNumber":  strconv.Itoa(max(c.QuestionNumber, 1)),
	})
	if err == nil {
		var eval models.Evaluation
		if eval, err = parseEvaluation(text); err == nil {
			return eval, nil
		}
	}
	if !s.useFallback(ctx, "evaluation", err) {
		return models.Evaluation{}, err
	}
	return heuristicEvaluation(response), nil
}

// Summarize has no local fallback; callers substitute their own closing text.
func (s *Service) Summarize(ctx context.Context, answers []ScoredAnswer, c Context) (string, error) {
	if len(answers) == 0 {
		return "", errors.New("no scored answers to summarize")
	}

	var (
		transcript strings.Builder
		total      int
	)
	for i, a := range answers {
		if i > 0 {
			transcript.WriteString("\n\n")
		}
		fmt.Fprintf(&transcript, "Q%d: %s\nResponse: %s\nScore: %d", i+1, a.Question, a.Response, a.Score)
		total += a.Score
	}
	avg := int(math.Floor(float64(total)/float64(len(answers)) + 0.5))

	return s.generate(ctx, prompts.ModeSummary, analysisLevel(c.AnalysisType), map[string]string{
		"InterviewType":   c.InterviewType,
		"DifficultyLevel": c.DifficultyLevel,
		"OverallScore":    strconv.Itoa(avg),
		"Transcript":      transcript.String(),
	})
}

func (s *Service) generate(ctx context.Context, mode, level string, data map[string]string) (string, error) {
	if s.provider == nil {
		return "", errNoProvider
	}
	prompt, err := s.prompts.BuildPrompt(mode, level, data)
	if err != nil {
		return "", err
	}
	resp, err := s.provider.GenerateContent(ctx, prompt, uuid.NewString())
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// useFallback logs the failure and reports whether a local answer should replace it.
// A cancelled caller never gets a fallback.
func (s *Service) useFallback(ctx context.Context, operation string, err error) bool {
	if ctx.Err() != nil || !s.fallback {
		s.logger.Error("AI generation failed",
			zap.String("operation", operation),
			zap.String("code", llm.CodeOf(err)),
			zap.Error(err))
		return false
	}
	s.logger.Warn("AI generation failed, using fallback",
		zap.String("operation", operation),
		zap.String("code", llm.CodeOf(err)),
		zap.Error(err))
	metrics.AIFallbacks.WithLabelValues(operation).Inc()
	return true
}

func analysisLevel(analysis string) string {
	return models.NormalizeAnalysis(analysis)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
