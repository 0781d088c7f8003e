package completion

import (
	"context"
	"fmt"

	"github.com/SaadHafeez466/qa-app/internal/apperrors"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash-lite"

// GeminiClient sends prompts to the Gemini API. The response is plain text;
// no response schema is requested.
type GeminiClient struct {
	cfg      Settings
	generate generateFunc
}

// NewGeminiClient returns an error if the API key is empty.
func NewGeminiClient(s Settings) (*GeminiClient, error) {
	if s.APIKey == "" {
		return nil, apperrors.New("completion.NewGeminiClient", apperrors.ErrInvalidInput,
			"GEMINI_API_KEY is required. Set the environment variable: export GEMINI_API_KEY=your-key")
	}
	applyDefaults(&s, DefaultGeminiModel)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  s.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperrors.Wrap("completion.NewGeminiClient", err)
	}

	temp := float32(s.Temperature)
	gen := func(ctx context.Context, prompt Prompt) (string, error) {
		result, err := client.Models.GenerateContent(ctx, s.Model, genai.Text(prompt.User), &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: prompt.System}}},
			Temperature:       &temp,
			MaxOutputTokens:   int32(s.MaxTokens),
		})
		if err != nil {
			return "", err
		}
		if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
			return "", fmt.Errorf("empty response from Gemini API")
		}
		return result.Candidates[0].Content.Parts[0].Text, nil
	}

	return &GeminiClient{cfg: s, generate: gen}, nil
}

// Complete sends prompt, bounded by the configured timeout.
func (c *GeminiClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	text, err := c.generate(callCtx, prompt)
	if err != nil {
		return "", apperrors.Wrapf("completion.GeminiClient.Complete", err, "model %s", c.cfg.Model)
	}
	return text, nil
}
