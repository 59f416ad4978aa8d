package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/arenalab/promptarena/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newMockService() *Service {
	service := NewService(NewMockStrategy(StyleStandard, 0, 0), newTestLogger())
	service.Register("claude-3-opus", NewMockStrategy(StyleDetailed, 0, 0))
	service.Register("claude-3-sonnet", NewMockStrategy(StyleBalanced, 0, 0))
	return service
}

func TestService_ModelSpecificFraming(t *testing.T) {
	service := newMockService()
	ctx := context.Background()

	text, err := service.Generate(ctx, "What should I read?", "claude-3-opus", models.CategoryAll)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "[Claude-3-Opus Response]"))
	assert.Contains(t, text, "What should I read?")

	text, err = service.Generate(ctx, "What should I read?", "claude-3-sonnet", models.CategoryAll)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "[Claude-3-Sonnet Response]"))
}

func TestService_FallbackForUnknownModel(t *testing.T) {
	service := newMockService()

	text, err := service.Generate(context.Background(), "anything", "mystery-model-9000", models.CategoryAll)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "[mystery-model-9000 Response]"))
}

func TestService_StyleChangesPhrasing(t *testing.T) {
	ctx := context.Background()
	prompt := "recommend a laptop"

	detailed, err := NewMockStrategy(StyleDetailed, 0, 0).Generate(ctx, prompt, "m", models.CategoryAll)
	require.NoError(t, err)
	standard, err := NewMockStrategy(StyleStandard, 0, 0).Generate(ctx, prompt, "m", models.CategoryAll)
	require.NoError(t, err)

	assert.NotEqual(t, detailed, standard)
	assert.Contains(t, detailed, "several factors")
}

func TestService_GreetingShortcut(t *testing.T) {
	text, err := NewMockStrategy(StyleStandard, 0, 0).Generate(context.Background(), "hello there", "m", models.CategoryAll)
	require.NoError(t, err)
	assert.Contains(t, text, "How can I assist you today?")
}

func TestService_WrapsStrategyFailure(t *testing.T) {
	service := NewService(&failingStrategy{}, newTestLogger())

	_, err := service.Generate(context.Background(), "prompt", "broken-model", models.CategoryAll)
	require.Error(t, err)

	var genErr *models.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "broken-model", genErr.ModelID)
}

type failingStrategy struct{}

func (f *failingStrategy) Generate(ctx context.Context, prompt, modelID, category string) (string, error) {
	return "", errors.New("backend down")
}

func TestMockStrategy_DelayWithinBounds(t *testing.T) {
	strategy := NewMockStrategy(StyleStandard, 20*time.Millisecond, 60*time.Millisecond)

	start := time.Now()
	_, err := strategy.Generate(context.Background(), "prompt", "m", models.CategoryAll)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestMockStrategy_DelayHonorsCancellation(t *testing.T) {
	strategy := NewMockStrategy(StyleStandard, time.Second, 2*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := strategy.Generate(ctx, "prompt", "m", models.CategoryAll)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSystemInstruction_PerCategory(t *testing.T) {
	assert.Contains(t, systemInstruction(models.CategoryCreative), "creative writing")
	assert.Contains(t, systemInstruction(models.CategoryTechnical), "technical")
	assert.Contains(t, systemInstruction(models.CategorySummarization), "concise summaries")
	assert.Contains(t, systemInstruction(models.CategoryConversation), "conversational")
	assert.Equal(t, "You are a helpful AI assistant.", systemInstruction(models.CategoryAll))
	assert.Equal(t, "You are a helpful AI assistant.", systemInstruction(""))
}

func TestService_Registered(t *testing.T) {
	service := newMockService()
	assert.ElementsMatch(t, []string{"claude-3-opus", "claude-3-sonnet"}, service.Registered())
}
