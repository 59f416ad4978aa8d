package generator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Response styles for the mock path. A real provider would instead receive
// the category-derived system instruction.
const (
	StyleDetailed = "detailed"
	StyleBalanced = "balanced"
	StyleStandard = "standard"
)

// MockStrategy fabricates a model-flavored response after a bounded random
// delay, standing in for a provider we have no API access to. The delay is
// what exercises loading-state handling under realistic timing skew; zero
// bounds disable it for tests.
type MockStrategy struct {
	Style    string
	MinDelay time.Duration
	MaxDelay time.Duration
}

func NewMockStrategy(style string, minDelay, maxDelay time.Duration) *MockStrategy {
	return &MockStrategy{
		Style:    style,
		MinDelay: minDelay,
		MaxDelay: maxDelay,
	}
}

func (m *MockStrategy) Generate(ctx context.Context, prompt, modelID, category string) (string, error) {
	if m.MaxDelay > 0 {
		delay := m.MinDelay
		if spread := m.MaxDelay - m.MinDelay; spread > 0 {
			delay += time.Duration(rand.Int63n(int64(spread)))
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	body := mockBody(prompt, m.Style)

	switch modelID {
	case "claude-3-opus":
		return fmt.Sprintf("[Claude-3-Opus Response]\n\nI'd be happy to help with your query: %q\n\n%s\n\nIs there anything specific about this response you'd like me to elaborate on?", prompt, body), nil
	case "claude-3-sonnet":
		return fmt.Sprintf("[Claude-3-Sonnet Response]\n\nRegarding your question: %q\n\n%s\n\nHope this helps! Let me know if you need any clarification.", prompt, body), nil
	default:
		return fmt.Sprintf("[%s Response]\n\n%s", modelID, body), nil
	}
}

// mockBody picks a canned answer keyed on crude prompt inspection, phrased
// per the strategy's style.
func mockBody(prompt, style string) string {
	promptLower := strings.ToLower(prompt)

	switch {
	case strings.Contains(promptLower, "hello") || strings.Contains(promptLower, "hi"):
		return "Hello! How can I assist you today?"
	case strings.Contains(promptLower, "weather"):
		return "I don't have access to real-time weather data, but I can help you understand weather patterns or direct you to reliable weather services."
	case strings.Contains(promptLower, "recommend") || strings.Contains(promptLower, "suggestion"):
		if style == StyleDetailed {
			return "I'd be happy to provide recommendations. To give you the most helpful suggestions, I should consider several factors:\n\n1. Your specific preferences\n2. Any constraints (budget, time, etc.)\n3. Your past experiences\n4. Your goals\n\nCould you provide more details about what you're looking for?"
		}
		return "I'd be happy to provide recommendations. Could you share more details about what you're looking for?"
	default:
		switch style {
		case StyleDetailed:
			return "Thank you for your query. I've analyzed it carefully and would like to provide a comprehensive response. However, I need to consider multiple perspectives and ensure accuracy. Could you provide additional context or clarify your specific needs?"
		case StyleBalanced:
			return "I understand your question and would like to help. To provide a useful response, could you share a bit more context?"
		default:
			return "I'd be happy to help with your question. Could you provide more details?"
		}
	}
}
