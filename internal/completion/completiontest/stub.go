// Package completiontest provides a completion.Client double for tests.
package completiontest

import (
	"context"

	"github.com/SaadHafeez466/qa-app/internal/completion"
)

// StubClient replays fixed responses keyed by category.
type StubClient struct {
	Responses map[string]string
	Errors    map[string]error // per category, checked before Err
	Err       error
	Prompts   []completion.Prompt
}

var _ completion.Client = (*StubClient)(nil)

// Complete records prompt and returns the canned response or an error.
func (s *StubClient) Complete(_ context.Context, prompt completion.Prompt) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if err := s.Errors[string(prompt.Category)]; err != nil {
		return "", err
	}
	if s.Err != nil {
		return "", s.Err
	}
	return s.Responses[string(prompt.Category)], nil
}
