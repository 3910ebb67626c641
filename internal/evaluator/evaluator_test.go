package evaluator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"intervuai/backend/internal/llm"
	"intervuai/backend/internal/prompts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProvider struct {
	generateContentFn func(ctx context.Context, prompt llm.Prompt, requestID string) (*llm.GenerationResponse, error)
	prompts           []llm.Prompt
}

func (m *mockProvider) GenerateContent(ctx context.Context, prompt llm.Prompt, requestID string) (*llm.GenerationResponse, error) {
	m.prompts = append(m.prompts, prompt)
	if m.generateContentFn == nil {
		panic("unexpected call to GenerateContent")
	}
	return m.generateContentFn(ctx, prompt, requestID)
}

func (m *mockProvider) GetProviderName() string { return "mock" }

func replying(content string) *mockProvider {
	return &mockProvider{generateContentFn: func(context.Context, llm.Prompt, string) (*llm.GenerationResponse, error) {
		return &llm.GenerationResponse{Content: content}, nil
	}}
}

func failing() *mockProvider {
	return &mockProvider{generateContentFn: func(context.Context, llm.Prompt, string) (*llm.GenerationResponse, error) {
		return nil, &llm.ProviderError{Provider: "mock", Code: llm.ErrCodeServiceDown, Message: "down"}
	}}
}

func newService(t *testing.T, provider llm.Provider, opts ...Option) *Service {
	t.Helper()
	pm, err := prompts.NewPromptManager()
	require.NoError(t, err)
	return New(provider, pm, zap.NewNop(), opts...)
}

func TestInitialQuestionFromProvider(t *testing.T) {
	provider := replying("What is a goroutine?")
	svc := newService(t, provider)

	q, err := svc.InitialQuestion(context.Background(), "backend", "beginner")
	require.NoError(t, err)
	assert.Equal(t, "What is a goroutine?", q)
	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0].User, "beginner level backend interview")
}

func TestInitialQuestionFallsBackToBank(t *testing.T) {
	svc := newService(t, failing(), WithPicker(func(int) int { return 1 }))

	q, err := svc.InitialQuestion(context.Background(), "devops", "advanced")
	require.NoError(t, err)
	assert.Equal(t, questionBank["devops"]["advanced"][1], q)

	q, err = svc.InitialQuestion(context.Background(), "mlops_engineer", "beginner")
	require.NoError(t, err)
	assert.Equal(t, questionBank["devops"]["beginner"][1], q, "aliased tracks share a bank")

	q, err = svc.InitialQuestion(context.Background(), "gen_ai_engineer", "beginner")
	require.NoError(t, err)
	assert.Equal(t, questionBank["fullstack"]["intermediate"][1], q, "unknown tracks use the default bank")
}

func TestInitialQuestionWithoutFallbackFails(t *testing.T) {
	svc := newService(t, failing(), WithFallback(false))

	_, err := svc.InitialQuestion(context.Background(), "backend", "beginner")
	require.Error(t, err)
	assert.Equal(t, llm.ErrCodeServiceDown, llm.CodeOf(err))
}

func TestInitialQuestionNilProvider(t *testing.T) {
	svc := newService(t, nil, WithFallback(false))
	_, err := svc.InitialQuestion(context.Background(), "backend", "beginner")
	assert.ErrorIs(t, err, errNoProvider)

	svc = newService(t, nil, WithPicker(func(int) int { return 0 }))
	q, err := svc.InitialQuestion(context.Background(), "backend", "beginner")
	require.NoError(t, err)
	assert.Equal(t, questionBank["backend"]["beginner"][0], q)
}

func TestInitialQuestionCancelledContextSkipsFallback(t *testing.T) {
	svc := newService(t, failing())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.InitialQuestion(ctx, "backend", "beginner")
	assert.Error(t, err)
}

func TestEvaluateParsesModelJSON(t *testing.T) {
	provider := replying("```json\n{\"score\": 82, \"feedback\": \"Clear.\", \"followUpQuestion\": \"Why?\"}\n```")
	svc := newService(t, provider)

	eval, err := svc.Evaluate(context.Background(), "Q?", "An answer.", Context{
		InterviewType: "backend", DifficultyLevel: "advanced", AnalysisType: "premium", QuestionNumber: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 82, eval.Score)
	assert.Equal(t, "Clear.", eval.Feedback)
	assert.Equal(t, "Why?", eval.FollowUpQuestion)

	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0].User, "Question Number: 3")
	assert.Contains(t, provider.prompts[0].User, "model answer", "premium tier asks for a model answer")
}

func TestEvaluateMalformedReplyUsesHeuristic(t *testing.T) {
	svc := newService(t, replying("I think this answer is pretty good!"))

	answer := strings.Repeat("word ", 50)
	eval, err := svc.Evaluate(context.Background(), "Q?", answer, Context{})
	require.NoError(t, err)
	assert.Equal(t, 65, eval.Score)
	assert.Equal(t, defaultFollowUp, eval.FollowUpQuestion)
}

func TestEvaluateMalformedReplyWithoutFallback(t *testing.T) {
	svc := newService(t, replying(`{"feedback": "no score"}`), WithFallback(false))

	_, err := svc.Evaluate(context.Background(), "Q?", "A", Context{})
	assert.ErrorIs(t, err, ErrMalformedEvaluation)
}

func TestSummarize(t *testing.T) {
	provider := replying("Strong candidate.")
	svc := newService(t, provider)

	summary, err := svc.Summarize(context.Background(), []ScoredAnswer{
		{Question: "Q1", Response: "R1", Score: 80},
		{Question: "Q2", Response: "R2", Score: 71},
	}, Context{InterviewType: "frontend", DifficultyLevel: "beginner"})
	require.NoError(t, err)
	assert.Equal(t, "Strong candidate.", summary)

	require.Len(t, provider.prompts, 1)
	user := provider.prompts[0].User
	assert.Contains(t, user, "Overall Score: 76/100")
	assert.Contains(t, user, "Q2: Q2\nResponse: R2\nScore: 71")
}

func TestSummarizeErrors(t *testing.T) {
	svc := newService(t, failing())
	_, err := svc.Summarize(context.Background(), []ScoredAnswer{{Question: "Q", Response: "R", Score: 10}}, Context{})
	assert.Error(t, err, "summary never falls back inside the service")

	_, err = svc.Summarize(context.Background(), nil, Context{})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformedEvaluation))
}
