package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/SaadHafeez466/qa-app/internal/apperrors"
	"github.com/SaadHafeez466/qa-app/internal/completion"
	"github.com/SaadHafeez466/qa-app/internal/config"
	"github.com/SaadHafeez466/qa-app/internal/csvout"
	"github.com/SaadHafeez466/qa-app/internal/pipeline"
	"github.com/SaadHafeez466/qa-app/internal/progress"
	"github.com/SaadHafeez466/qa-app/internal/testcase"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate test cases for a user story and save them as CSV",
	Long: `Generate test cases for a user story and save them as CSV.

One request is sent per category, in the order given. If any request fails
nothing is written. An existing output file is never overwritten; a numbered
sibling (test_cases_output_1.csv, ...) is used instead.

Without --category every category is generated.`,
	Example: `  qa-app generate --story-file story.txt -c negative -c edge
  qa-app generate -i
  echo "As a user I want to reset my password" | qa-app generate --story-file -`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

// Seams replaced in tests.
var (
	// testClient, when set, is used instead of a real completion client.
	testClient completion.Client
	askOneFunc = survey.AskOne
	revealFunc = csvout.Reveal
)

func init() {
	rootCmd.AddCommand(generateCmd)

	f := generateCmd.Flags()
	f.String("story", "", "User story text")
	f.String("story-file", "", "Read the user story from a file (- for stdin)")
	f.StringSliceP("category", "c", nil, "Category name or alias, repeatable (see `qa-app categories`)")
	f.StringP("output", "o", "", "Output CSV path (default test_cases_output.csv)")
	f.BoolP("interactive", "i", false, "Prompt for missing story, categories and API key")
	f.Bool("no-open", false, "Do not open the output folder when done")
	f.String("provider", "", "Completion provider: openai, gemini or mock")
	f.String("model", "", "Model name (default gpt-4 for openai, gemini-2.5-flash-lite for gemini)")
	f.String("base-url", "", "OpenAI-compatible endpoint URL")
	f.Float64("temperature", completion.DefaultTemperature, "Sampling temperature")
	f.Int("max-tokens", completion.DefaultMaxTokens, "Maximum output tokens per category")
	f.Duration("timeout", completion.DefaultTimeout, "Timeout for each completion call")
	f.String("api-key", "", "API key for the completion service")
	f.Bool("save-key", false, "Store the API key in the credentials file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := GetLogger().WithComponent("generate")
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return report(errOut, err)
	}

	interactive, _ := cmd.Flags().GetBool("interactive")

	req, err := collectRequest(cmd, interactive)
	if err != nil {
		return report(errOut, err)
	}
	if err := req.Validate(); err != nil {
		return report(errOut, err)
	}

	client, err := buildClient(cmd, cfg, interactive)
	if err != nil {
		return report(errOut, err)
	}

	observer := progress.New(errOut)

	runner, err := pipeline.NewRunner(pipeline.RunnerConfig{
		Complete: completion.Func(client),
		Observer: observer,
		Logger:   GetLogger(),
	})
	if err != nil {
		return report(errOut, err)
	}

	log.Debug("generation started",
		"categories", len(req.Categories),
		"provider", cfg.Completion.Provider,
		"output", cfg.Output.Path)
	started := time.Now()

	task, err := runner.Start(ctx, req)
	if err != nil {
		return report(errOut, err)
	}
	result, err := task.Wait()
	observer.Clear()
	if err != nil {
		return report(errOut, err)
	}

	path, err := csvout.Write(result, cfg.Output.Path)
	if err != nil {
		return report(errOut, err)
	}
	log.Debug("generation finished", "rows", len(result), "path", path, "elapsed", time.Since(started).Round(time.Millisecond))

	if path == "" {
		fmt.Fprintln(out, "No test cases could be read from the responses; nothing was written.")
		return nil
	}

	fmt.Fprintln(out, progress.Success(fmt.Sprintf("Successfully generated %d test cases", len(result))))
	fmt.Fprintf(out, "saved: %s\n", path)

	if cfg.Output.Reveal {
		if err := revealFunc(path); err != nil {
			log.Warn("could not open output folder", "path", path, "error", err)
		}
	}
	return nil
}

// report prints the single failure line for a run and hands err back to cobra.
func report(w io.Writer, err error) error {
	fmt.Fprintln(w, progress.Failure(apperrors.Title(err), apperrors.UserMessage(err)))
	return err
}

// loadConfig merges config file, env and explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("provider") {
		cfg.Completion.Provider, _ = f.GetString("provider")
	}
	if f.Changed("model") {
		cfg.Completion.Model, _ = f.GetString("model")
	}
	if f.Changed("base-url") {
		cfg.Completion.BaseURL, _ = f.GetString("base-url")
	}
	if f.Changed("temperature") {
		cfg.Completion.Temperature, _ = f.GetFloat64("temperature")
	}
	if f.Changed("max-tokens") {
		cfg.Completion.MaxTokens, _ = f.GetInt("max-tokens")
	}
	if f.Changed("timeout") {
		cfg.Completion.Timeout, _ = f.GetDuration("timeout")
	}
	if f.Changed("output") {
		cfg.Output.Path, _ = f.GetString("output")
	}
	if noOpen, _ := f.GetBool("no-open"); noOpen {
		cfg.Output.Reveal = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// collectRequest gathers the story and categories from flags, falling back
// to prompts when interactive.
func collectRequest(cmd *cobra.Command, interactive bool) (testcase.Request, error) {
	f := cmd.Flags()

	story, _ := f.GetString("story")
	if storyFile, _ := f.GetString("story-file"); storyFile != "" {
		text, err := readStory(cmd.InOrStdin(), storyFile)
		if err != nil {
			return testcase.Request{}, err
		}
		story = text
	}

	if strings.TrimSpace(story) == "" && interactive {
		err := askOneFunc(&survey.Multiline{
			Message: fmt.Sprintf("User story (%d characters max, finish with an empty line):", testcase.MaxNarrativeLength),
		}, &story, survey.WithValidator(survey.Required), survey.WithValidator(survey.MaxLength(testcase.MaxNarrativeLength)))
		if err != nil {
			return testcase.Request{}, err
		}
	}
	story = strings.TrimSpace(story)

	var categories []testcase.Category
	raw, _ := f.GetStringSlice("category")
	switch {
	case len(raw) > 0:
		for _, r := range raw {
			c, err := testcase.ParseCategory(r)
			if err != nil {
				return testcase.Request{}, err
			}
			categories = append(categories, c)
		}
	case interactive:
		picked, err := askCategories()
		if err != nil {
			return testcase.Request{}, err
		}
		categories = picked
	default:
		categories = testcase.Categories()
	}

	return testcase.Request{Narrative: story, Categories: categories}, nil
}

func askCategories() ([]testcase.Category, error) {
	all := testcase.Categories()
	options := make([]string, len(all))
	for i, c := range all {
		options[i] = string(c)
	}

	var picked []string
	err := askOneFunc(&survey.MultiSelect{
		Message: "Test case categories:",
		Options: options,
		Default: options,
	}, &picked, survey.WithValidator(survey.MinItems(1)))
	if err != nil {
		return nil, err
	}

	// keep display order regardless of selection order
	selected := make(map[string]bool, len(picked))
	for _, p := range picked {
		selected[p] = true
	}
	var categories []testcase.Category
	for _, c := range all {
		if selected[string(c)] {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

func readStory(stdin io.Reader, path string) (string, error) {
	const op = "cmd.readStory"

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", apperrors.Kind(op, apperrors.ErrInvalidInput, err, "reading user story from %s", path)
	}
	return string(data), nil
}

// buildClient resolves the credential and constructs the completion client.
func buildClient(cmd *cobra.Command, cfg *config.Config, interactive bool) (completion.Client, error) {
	if testClient != nil {
		return testClient, nil
	}

	provider := cfg.Completion.Provider
	if !completion.NeedsAPIKey(provider) {
		return completion.New(cfg.Settings(""))
	}

	store := config.NewCredentialStore(cfg.App.CredentialsFile)
	apiKey, fromUser, err := resolveAPIKey(cmd, store, provider)
	if err != nil {
		return nil, err
	}

	if apiKey == "" && interactive {
		err := askOneFunc(&survey.Password{
			Message: fmt.Sprintf("%s API key:", provider),
		}, &apiKey)
		if err != nil {
			return nil, err
		}
		apiKey = strings.TrimSpace(apiKey)
		fromUser = true
	}

	if apiKey == "" {
		return nil, apperrors.New("cmd.buildClient", apperrors.ErrInvalidInput,
			fmt.Sprintf("please enter your %s API key (--api-key, %s, or `qa-app key set`)", provider, providerEnv(provider)))
	}

	if save, _ := cmd.Flags().GetBool("save-key"); save && fromUser {
		if err := store.Set(storeKeyName(provider), apiKey); err != nil {
			GetLogger().Warn("could not save API key", "path", store.Path, "error", err)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "API key saved to %s\n", store.Path)
		}
	}

	return completion.New(cfg.Settings(apiKey))
}

// resolveAPIKey checks the flag, env and credentials file in that order.
// fromUser reports whether the key was typed on this invocation.
func resolveAPIKey(cmd *cobra.Command, store *config.CredentialStore, provider string) (key string, fromUser bool, err error) {
	if k, _ := cmd.Flags().GetString("api-key"); strings.TrimSpace(k) != "" {
		return strings.TrimSpace(k), true, nil
	}
	if k := viper.GetString("api_key"); k != "" {
		return k, false, nil
	}
	if k := os.Getenv(providerEnv(provider)); k != "" {
		return k, false, nil
	}

	k, err := store.APIKey(provider)
	if err != nil {
		return "", false, err
	}
	return k, false, nil
}

func providerEnv(provider string) string {
	return strings.ToUpper(strings.TrimSpace(provider)) + "_API_KEY"
}

// storeKeyName keeps OpenAI on the shared api_key entry.
func storeKeyName(provider string) string {
	if strings.EqualFold(provider, completion.ProviderOpenAI) || provider == "" {
		return config.KeyAPIKey
	}
	return config.ProviderKey(provider)
}
