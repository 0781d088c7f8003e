package completion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SaadHafeez466/qa-app/internal/apperrors"
	"github.com/SaadHafeez466/qa-app/internal/pipeline"
	"github.com/SaadHafeez466/qa-app/internal/testcase"
)

// Providers understood by New.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// Defaults for unset settings. Temperature is taken as given, since zero is a
// valid sampling temperature; config.SetDefaults supplies DefaultTemperature.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
	DefaultTimeout     = 60 * time.Second
)

// Client sends one prompt and returns the model's text.
type Client interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Settings configures a concrete client.
type Settings struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NeedsAPIKey reports whether provider talks to a real service.
func NeedsAPIKey(provider string) bool {
	return normalizeProvider(provider) != ProviderMock
}

// New builds the client for s.Provider. An empty provider means OpenAI.
func New(s Settings) (Client, error) {
	switch normalizeProvider(s.Provider) {
	case ProviderOpenAI:
		c, err := NewOpenAIClient(s)
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderGemini:
		c, err := NewGeminiClient(s)
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderMock:
		return MockClient{}, nil
	default:
		return nil, apperrors.New("completion.New", apperrors.ErrInvalidInput,
			fmt.Sprintf("llm provider %s not supported", s.Provider))
	}
}

func normalizeProvider(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return ProviderOpenAI
	}
	return p
}

// Func adapts c to the pipeline's completion capability, building the
// prompt for each category.
func Func(c Client) pipeline.CompleteFunc {
	return func(ctx context.Context, category testcase.Category, narrative string) (string, error) {
		return c.Complete(ctx, BuildPrompt(category, narrative))
	}
}

func applyDefaults(s *Settings, model string) {
	if s.Model == "" {
		s.Model = model
	}
	if s.MaxTokens == 0 {
		s.MaxTokens = DefaultMaxTokens
	}
	if s.Timeout == 0 {
		s.Timeout = DefaultTimeout
	}
}
