package completion

import (
	"context"
	"errors"

	"github.com/SaadHafeez466/qa-app/internal/apperrors"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4"

// generateFunc is the raw chat call, replaced in tests.
type generateFunc func(ctx context.Context, prompt Prompt) (string, error)

// OpenAIClient sends chat completions through the official SDK. BaseURL
// may point at any OpenAI-compatible endpoint.
type OpenAIClient struct {
	cfg      Settings
	generate generateFunc
}

// NewOpenAIClient returns an error if the API key is empty.
func NewOpenAIClient(s Settings) (*OpenAIClient, error) {
	if s.APIKey == "" {
		return nil, apperrors.New("completion.NewOpenAIClient", apperrors.ErrInvalidInput,
			"please enter your OpenAI API key (flag --api-key, env OPENAI_API_KEY, or `qa-app key set`)")
	}
	applyDefaults(&s, DefaultOpenAIModel)

	opts := []option.RequestOption{option.WithAPIKey(s.APIKey)}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	client := openai.NewClient(opts...)

	gen := func(ctx context.Context, prompt Prompt) (string, error) {
		resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(s.Model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(prompt.System),
				openai.UserMessage(prompt.User),
			},
			Temperature: openai.Float(s.Temperature),
			MaxTokens:   openai.Int(int64(s.MaxTokens)),
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("openai: empty choices")
		}
		return resp.Choices[0].Message.Content, nil
	}

	return &OpenAIClient{cfg: s, generate: gen}, nil
}

// Complete sends prompt, bounded by the configured timeout.
func (c *OpenAIClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	text, err := c.generate(callCtx, prompt)
	if err != nil {
		return "", apperrors.Wrapf("completion.OpenAIClient.Complete", err, "model %s", c.cfg.Model)
	}
	return text, nil
}
