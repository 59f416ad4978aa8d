package generator

import (
	"context"

	"github.com/arenalab/promptarena/internal/models"
	"github.com/sirupsen/logrus"
)

// Strategy produces a response for one model backend.
type Strategy interface {
	Generate(ctx context.Context, prompt, modelID, category string) (string, error)
}

// Service routes a model identifier to its backing strategy. Unrecognized
// identifiers use the fallback strategy so a stale model list never breaks
// a generate cycle.
type Service struct {
	strategies map[string]Strategy
	fallback   Strategy
	logger     *logrus.Logger
}

func NewService(fallback Strategy, logger *logrus.Logger) *Service {
	return &Service{
		strategies: make(map[string]Strategy),
		fallback:   fallback,
		logger:     logger,
	}
}

// Register binds a model identifier to a strategy. Registration happens at
// composition time; the map is read-only afterwards.
func (s *Service) Register(modelID string, strategy Strategy) {
	s.strategies[modelID] = strategy
}

// Registered reports which model identifiers have a dedicated strategy.
func (s *Service) Registered() []string {
	ids := make([]string, 0, len(s.strategies))
	for id := range s.strategies {
		ids = append(ids, id)
	}
	return ids
}

func (s *Service) Generate(ctx context.Context, prompt, modelID, category string) (string, error) {
	strategy, ok := s.strategies[modelID]
	if !ok {
		s.logger.WithField("model", modelID).Debug("No dedicated strategy, using fallback")
		strategy = s.fallback
	}

	text, err := strategy.Generate(ctx, prompt, modelID, category)
	if err != nil {
		return "", &models.GenerationError{ModelID: modelID, Err: err}
	}

	return text, nil
}

// systemInstruction maps a prompt category to the instruction a real
// provider call would receive as its system prompt.
func systemInstruction(category string) string {
	switch category {
	case models.CategoryCreative:
		return "You are a creative writing assistant. Be imaginative and descriptive."
	case models.CategoryTechnical:
		return "You are a technical assistant. Provide accurate, detailed technical information."
	case models.CategorySummarization:
		return "You are a summarization assistant. Provide concise summaries."
	case models.CategoryConversation:
		return "You are a conversational assistant. Be friendly and engaging."
	default:
		return "You are a helpful AI assistant."
	}
}
