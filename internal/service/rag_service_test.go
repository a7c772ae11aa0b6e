package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"podatkobot/internal/models"
	"podatkobot/pkg/config"
)

type fakeRetriever struct {
	results []models.RetrievedContext
	err     error
	calls   int
}

func (f *fakeRetriever) Search(_ context.Context, _ string, _ int) ([]models.RetrievedContext, error) {
	f.calls++
	return f.results, f.err
}

type fakeGenerator struct {
	answer  string
	err     error
	calls   int
	prompts []PromptVars
}

func (g *fakeGenerator) Complete(_ context.Context, vars PromptVars) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, vars)
	return g.answer, g.err
}

func passAll(string) models.ValidationResult {
	return models.ValidationResult{IsValid: true}
}

func failAll(string) models.ValidationResult {
	return models.ValidationResult{
		IsValid: false,
		Errors:  []string{"відповідь занадто коротка або беззмістовна"},
	}
}

func testRAGConfig() *config.RAGConfig {
	return &config.RAGConfig{
		TopK:          3,
		MaxRetries:    3,
		ContextLimit:  8192,
		HistoryWindow: 5,
	}
}

func someContext() []models.RetrievedContext {
	return []models.RetrievedContext{
		{Content: "Стаття 164 пункт 164.2 визначає базу оподаткування.", Score: 0.1},
	}
}

func TestAnswerEmptyIndex(t *testing.T) {
	retriever := &fakeRetriever{}
	generator := &fakeGenerator{answer: validAnswer}
	svc := NewAssistantService(retriever, generator, testRAGConfig(), zap.NewNop())

	got := svc.Answer(context.Background(), "s1", "Скільки податку сплачує ФОП?")

	assert.Equal(t, NoContextResponse, got)
	assert.Equal(t, 1, retriever.calls)
	assert.Zero(t, generator.calls, "no context means no generation")
}

func TestAnswerSuccessAppendsSources(t *testing.T) {
	retriever := &fakeRetriever{results: someContext()}
	generator := &fakeGenerator{answer: validAnswer}
	svc := NewAssistantService(retriever, generator, testRAGConfig(), zap.NewNop())

	got := svc.Answer(context.Background(), "s1", "Що є базою оподаткування?")

	assert.Equal(t, 1, generator.calls)
	assert.True(t, strings.HasPrefix(got, validAnswer))
	assert.Contains(t, got, "\n\nДжерела:\n")
	assert.Contains(t, got, "Податковий кодекс України, Стаття 164, пункти 164.2")
}

func TestAnswerPassesContextAndQuestion(t *testing.T) {
	retriever := &fakeRetriever{results: someContext()}
	generator := &fakeGenerator{answer: validAnswer}
	svc := NewAssistantService(retriever, generator, testRAGConfig(), zap.NewNop()).
		WithValidator(passAll)

	svc.Answer(context.Background(), "s1", "Що є базою оподаткування?")

	require.Len(t, generator.prompts, 1)
	vars := generator.prompts[0]
	assert.Equal(t, "Що є базою оподаткування?", vars.Question)
	assert.Contains(t, vars.Context, "Стаття 164")
	assert.Empty(t, vars.ChatHistory)
}

func TestAnswerContextTruncatedToLimit(t *testing.T) {
	cfg := testRAGConfig()
	cfg.ContextLimit = 10
	retriever := &fakeRetriever{results: []models.RetrievedContext{
		{Content: strings.Repeat("а", 50), Score: 0.1},
	}}
	generator := &fakeGenerator{answer: validAnswer}
	svc := NewAssistantService(retriever, generator, cfg, zap.NewNop()).
		WithValidator(passAll)

	svc.Answer(context.Background(), "s1", "питання")

	require.Len(t, generator.prompts, 1)
	assert.Equal(t, strings.Repeat("а", 10)+"...", generator.prompts[0].Context)
}

func TestAnswerRetriesUntilExhausted(t *testing.T) {
	cfg := testRAGConfig()
	retriever := &fakeRetriever{results: someContext()}
	generator := &fakeGenerator{answer: validAnswer}
	svc := NewAssistantService(retriever, generator, cfg, zap.NewNop()).
		WithValidator(failAll)

	got := svc.Answer(context.Background(), "s1", "питання про податки")

	assert.Equal(t, cfg.MaxRetries, generator.calls)
	assert.Contains(t, got, "не можу надати коректну відповідь")
	assert.Contains(t, got, "відповідь занадто коротка або беззмістовна")
}

func TestAnswerRetrievalErrorExhausts(t *testing.T) {
	cfg := testRAGConfig()
	retriever := &fakeRetriever{err: errors.New("connection refused")}
	generator := &fakeGenerator{answer: validAnswer}
	svc := NewAssistantService(retriever, generator, cfg, zap.NewNop())

	got := svc.Answer(context.Background(), "s1", "питання про податки")

	assert.Equal(t, cfg.MaxRetries, retriever.calls)
	assert.Zero(t, generator.calls)
	assert.Contains(t, got, "Виникла помилка при генерації відповіді")
	assert.Contains(t, got, "connection refused")
}

func TestAnswerGenerationErrorExhausts(t *testing.T) {
	retriever := &fakeRetriever{results: someContext()}
	generator := &fakeGenerator{err: errors.New("model unavailable")}
	svc := NewAssistantService(retriever, generator, testRAGConfig(), zap.NewNop())

	got := svc.Answer(context.Background(), "s1", "питання про податки")

	assert.Contains(t, got, "Виникла помилка при генерації відповіді")
	assert.Contains(t, got, "model unavailable")
}

func TestAnswerRemembersConversation(t *testing.T) {
	retriever := &fakeRetriever{results: someContext()}
	generator := &fakeGenerator{answer: validAnswer}
	svc := NewAssistantService(retriever, generator, testRAGConfig(), zap.NewNop()).
		WithValidator(passAll)

	svc.Answer(context.Background(), "s1", "Перше питання про податки?")
	svc.Answer(context.Background(), "s1", "Друге питання про збори?")

	require.Len(t, generator.prompts, 2)
	assert.Contains(t, generator.prompts[1].ChatHistory, "Питання: Перше питання про податки?")
	assert.Contains(t, generator.prompts[1].ChatHistory, validAnswer)
}

func TestAnswerSessionsAreIsolated(t *testing.T) {
	retriever := &fakeRetriever{results: someContext()}
	generator := &fakeGenerator{answer: validAnswer}
	svc := NewAssistantService(retriever, generator, testRAGConfig(), zap.NewNop()).
		WithValidator(passAll)

	svc.Answer(context.Background(), "s1", "Перше питання про податки?")
	svc.Answer(context.Background(), "s2", "Питання з іншої сесії?")

	require.Len(t, generator.prompts, 2)
	assert.Empty(t, generator.prompts[1].ChatHistory)
}

func TestEndSessionClearsMemory(t *testing.T) {
	retriever := &fakeRetriever{results: someContext()}
	generator := &fakeGenerator{answer: validAnswer}
	svc := NewAssistantService(retriever, generator, testRAGConfig(), zap.NewNop()).
		WithValidator(passAll)

	svc.Answer(context.Background(), "s1", "Перше питання про податки?")
	svc.EndSession("s1")
	svc.Answer(context.Background(), "s1", "Друге питання про збори?")

	require.Len(t, generator.prompts, 2)
	assert.Empty(t, generator.prompts[1].ChatHistory)
}

func TestFormatSourcesPointOrdering(t *testing.T) {
	retrieved := []models.RetrievedContext{
		{
			Content: "Стаття 12 пункт 12.10 та пункт 12.2, а також 12.9.1 і 12.15.",
			Score:   0.1,
		},
	}

	got := formatSources(retrieved)

	assert.Equal(t, "Податковий кодекс України, Стаття 12, пункти 12.2, 12.9.1, 12.10", got)
}

func TestFormatSourcesScoreOrderAndCaps(t *testing.T) {
	retrieved := []models.RetrievedContext{
		{Content: "Стаття 170 пункт 170.1.", Score: 0.5},
		{Content: "Стаття 164 пункт 164.2.", Score: 0.1},
		{Content: "Стаття 165.", Score: 0.3},
		{Content: "Стаття 166.", Score: 0.35},
		{Content: "Стаття 167.", Score: 0.4},
		{Content: "Стаття 168.", Score: 0.45},
	}

	got := formatSources(retrieved)
	lines := strings.Split(got, "\n")

	require.Len(t, lines, 5, "at most five articles are cited")
	assert.Equal(t, "Податковий кодекс України, Стаття 164, пункти 164.2", lines[0])
	assert.NotContains(t, got, "Стаття 170")
}

func TestFormatSourcesNoArticles(t *testing.T) {
	retrieved := []models.RetrievedContext{
		{Content: "Текст без посилань на статті.", Score: 0.1},
	}

	assert.Equal(t, "Податковий кодекс України", formatSources(retrieved))
}
