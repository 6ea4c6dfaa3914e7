package mock

import (
	"context"
)

// defaultCompletion is the canned answer returned when no custom
// CompleteFunc is installed.
const defaultCompletion = "The talks describe awareness as something discovered rather than produced. Several passages return to the same point from different directions."

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// CompleteFunc is called by Complete if set.
	// If nil, a fixed two-sentence completion is returned.
	CompleteFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	callCount int

	// LastSystemPrompt and LastUserPrompt record the most recent call
	// so tests can assert on prompt construction.
	LastSystemPrompt string
	LastUserPrompt   string
}

// NewMockGenerator creates a mock generator with default canned behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Complete returns a canned completion or delegates to CompleteFunc.
func (m *MockGenerator) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.callCount++
	m.LastSystemPrompt = systemPrompt
	m.LastUserPrompt = userPrompt

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, userPrompt)
	}

	return defaultCompletion, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.CompleteFunc = nil
	m.LastSystemPrompt = ""
	m.LastUserPrompt = ""
}
