package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/SaadHafeez466/qa-app/internal/apperrors"
	"github.com/SaadHafeez466/qa-app/internal/completion"
	"github.com/SaadHafeez466/qa-app/internal/completion/completiontest"
	"github.com/SaadHafeez466/qa-app/internal/config"
	"github.com/SaadHafeez466/qa-app/internal/csvout"
	"github.com/SaadHafeez466/qa-app/internal/testcase"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const story = "As a user I want to reset my password so that I can log in again"

// resetFlags returns every flag to its default so commands can be executed
// repeatedly within one test binary.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	for _, c := range []*cobra.Command{rootCmd, generateCmd, keyCmd, categoriesCmd, versionCmd, docsCmd, initCmd, completionCmd} {
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}
}

// executeCommand runs the root command with args and captures both streams.
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// setupWorkspace isolates a test in a fresh directory with seams stubbed.
// It returns a pointer to the paths passed to revealFunc.
func setupWorkspace(t *testing.T, client completion.Client) *[]string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("QA_APP_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	viper.Reset()

	revealed := []string{}
	testClient = client
	revealFunc = func(path string) error {
		revealed = append(revealed, path)
		return nil
	}
	t.Cleanup(func() {
		testClient = nil
		revealFunc = csvout.Reveal
		askOneFunc = survey.AskOne
		viper.Reset()
	})
	return &revealed
}

func row(id string) string {
	return id + " | Verify that the reset link is sent when the email is known | Link is sent"
}

func TestGenerateCommand(t *testing.T) {
	if generateCmd.Use != "generate" {
		t.Errorf("generateCmd.Use = %q, want %q", generateCmd.Use, "generate")
	}

	flags := []string{"story", "story-file", "category", "output", "interactive", "no-open",
		"provider", "model", "base-url", "temperature", "max-tokens", "timeout", "api-key", "save-key"}
	for _, name := range flags {
		if generateCmd.Flags().Lookup(name) == nil {
			t.Errorf("flag %q not found", name)
		}
	}
}

func TestGenerate_WritesCSV(t *testing.T) {
	stub := &completiontest.StubClient{Responses: map[string]string{
		string(testcase.CategoryNegative): row("NEG-01") + "\n" + row("NEG-02"),
		string(testcase.CategoryEdge):     row("EDGE-01"),
	}}
	revealed := setupWorkspace(t, stub)

	out, errOut, err := executeCommand(t, "", "generate", "--story", story, "-c", "negative", "-c", "edge")
	if err != nil {
		t.Fatalf("generate returned error: %v\nstderr: %s", err, errOut)
	}

	if !strings.Contains(out, "Successfully generated 3 test cases") {
		t.Errorf("stdout = %q, want success message", out)
	}
	if !strings.Contains(out, csvout.DefaultPath) {
		t.Errorf("stdout = %q, want saved path", out)
	}

	for _, want := range []string{"[  0%] Generating Negative test cases...", "[ 50%] Generating Edge cases..."} {
		if !strings.Contains(errOut, want) {
			t.Errorf("stderr missing %q, got: %s", want, errOut)
		}
	}

	if len(stub.Prompts) != 2 {
		t.Fatalf("completion calls = %d, want 2", len(stub.Prompts))
	}
	if stub.Prompts[0].Category != testcase.CategoryNegative || stub.Prompts[1].Category != testcase.CategoryEdge {
		t.Errorf("call order = [%s, %s], want [Negative, Edge]", stub.Prompts[0].Category, stub.Prompts[1].Category)
	}
	if !strings.Contains(stub.Prompts[0].User, story) {
		t.Error("prompt does not embed the user story")
	}

	rows, err := csvout.Read(csvout.DefaultPath)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[2].ID != "EDGE-01" || rows[2].Category != testcase.CategoryEdge {
		t.Errorf("last row = %+v, want EDGE-01 for edge cases", rows[2])
	}

	if len(*revealed) != 1 || (*revealed)[0] != csvout.DefaultPath {
		t.Errorf("revealed = %v, want [%s]", *revealed, csvout.DefaultPath)
	}
}

func TestGenerate_VersionsExistingFile(t *testing.T) {
	stub := &completiontest.StubClient{Responses: map[string]string{
		string(testcase.CategorySecurity): row("SEC-01"),
	}}
	setupWorkspace(t, stub)

	for i := 0; i < 2; i++ {
		if _, errOut, err := executeCommand(t, "", "generate", "--story", story, "-c", "security", "--no-open"); err != nil {
			t.Fatalf("run %d error: %v\nstderr: %s", i, err, errOut)
		}
	}

	for _, name := range []string{"test_cases_output.csv", "test_cases_output_1.csv"} {
		if _, err := os.Stat(name); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}

func TestGenerate_AllCategoriesByDefault(t *testing.T) {
	stub := &completiontest.StubClient{Responses: map[string]string{}}
	for _, c := range testcase.Categories() {
		stub.Responses[string(c)] = row(strings.ToUpper(c.Alias()) + "-01")
	}
	setupWorkspace(t, stub)

	out, errOut, err := executeCommand(t, "", "generate", "--story", story)
	if err != nil {
		t.Fatalf("generate returned error: %v\nstderr: %s", err, errOut)
	}

	all := testcase.Categories()
	if len(stub.Prompts) != len(all) {
		t.Fatalf("completion calls = %d, want %d", len(stub.Prompts), len(all))
	}
	for i, c := range all {
		if stub.Prompts[i].Category != c {
			t.Errorf("call %d category = %s, want %s", i, stub.Prompts[i].Category, c)
		}
	}
	if !strings.Contains(out, "Successfully generated 8 test cases") {
		t.Errorf("stdout = %q, want 8 test cases", out)
	}
}

func TestGenerate_CompletionFailureWritesNothing(t *testing.T) {
	stub := &completiontest.StubClient{
		Responses: map[string]string{
			string(testcase.CategoryFunctional): row("FUN-01"),
			string(testcase.CategoryNegative):   row("NEG-01"),
		},
		Errors: map[string]error{
			string(testcase.CategoryNegative): errors.New("status 500"),
		},
	}
	revealed := setupWorkspace(t, stub)

	out, errOut, err := executeCommand(t, "", "generate", "--story", story, "-c", "functional", "-c", "negative", "-c", "edge")
	if err == nil {
		t.Fatal("generate returned nil error, want completion failure")
	}
	if !apperrors.IsCompletion(err) {
		t.Errorf("error = %v, want completion failure", err)
	}

	if len(stub.Prompts) != 2 {
		t.Errorf("completion calls = %d, want 2", len(stub.Prompts))
	}
	if !strings.Contains(errOut, "Generation error:") || !strings.Contains(errOut, "status 500") {
		t.Errorf("stderr = %q, want generation error with cause", errOut)
	}
	if strings.Contains(out, "Successfully") {
		t.Errorf("stdout = %q, want no success message", out)
	}
	if _, statErr := os.Stat(csvout.DefaultPath); !os.IsNotExist(statErr) {
		t.Errorf("output file exists after failed run: %v", statErr)
	}
	if len(*revealed) != 0 {
		t.Errorf("revealed = %v, want nothing", *revealed)
	}
}

func TestGenerate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "blank story",
			args: []string{"generate", "--story", "   "},
			want: "please enter a user story",
		},
		{
			name: "story too long",
			args: []string{"generate", "--story", strings.Repeat("a", testcase.MaxNarrativeLength+1)},
			want: "limit is 5000",
		},
		{
			name: "unknown category",
			args: []string{"generate", "--story", story, "-c", "usability"},
			want: `unknown category "usability"`,
		},
		{
			name: "bad temperature",
			args: []string{"generate", "--story", story, "--temperature", "3"},
			want: "completion.temperature",
		},
		{
			name: "missing story file",
			args: []string{"generate", "--story-file", "nope.txt"},
			want: "reading user story from nope.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &completiontest.StubClient{}
			setupWorkspace(t, stub)

			_, errOut, err := executeCommand(t, "", tt.args...)
			if err == nil {
				t.Fatal("generate returned nil error, want validation error")
			}
			if !apperrors.IsInvalidInput(err) {
				t.Errorf("error = %v, want invalid input", err)
			}
			if !strings.Contains(errOut, "Validation error:") {
				t.Errorf("stderr = %q, want validation title", errOut)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Errorf("stderr = %q, want to contain %q", errOut, tt.want)
			}
			if len(stub.Prompts) != 0 {
				t.Errorf("completion calls = %d, want 0", len(stub.Prompts))
			}
		})
	}
}

func TestGenerate_StoryFromStdin(t *testing.T) {
	stub := &completiontest.StubClient{Responses: map[string]string{
		string(testcase.CategoryAcceptance): row("ACC-01"),
	}}
	setupWorkspace(t, stub)

	_, errOut, err := executeCommand(t, story+"\n", "generate", "--story-file", "-", "-c", "acceptance", "--no-open")
	if err != nil {
		t.Fatalf("generate returned error: %v\nstderr: %s", err, errOut)
	}
	if len(stub.Prompts) != 1 || !strings.Contains(stub.Prompts[0].User, story) {
		t.Errorf("prompts = %+v, want one prompt with the stdin story", stub.Prompts)
	}
}

func TestGenerate_NoParsableRows(t *testing.T) {
	stub := &completiontest.StubClient{Responses: map[string]string{
		string(testcase.CategoryEdge): "Sorry, I cannot help with that.",
	}}
	revealed := setupWorkspace(t, stub)

	out, errOut, err := executeCommand(t, "", "generate", "--story", story, "-c", "edge", "-o", "edge.csv")
	if err != nil {
		t.Fatalf("generate returned error: %v\nstderr: %s", err, errOut)
	}
	if !strings.Contains(out, "nothing was written") {
		t.Errorf("stdout = %q, want nothing-written notice", out)
	}
	if _, statErr := os.Stat("edge.csv"); !os.IsNotExist(statErr) {
		t.Errorf("edge.csv exists: %v", statErr)
	}
	if len(*revealed) != 0 {
		t.Errorf("revealed = %v, want nothing", *revealed)
	}
}

func TestGenerate_Interactive(t *testing.T) {
	stub := &completiontest.StubClient{Responses: map[string]string{
		string(testcase.CategoryFunctional): row("FUN-01"),
		string(testcase.CategoryEdge):       row("EDGE-01"),
	}}
	setupWorkspace(t, stub)

	var asked []string
	askOneFunc = func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
		switch p.(type) {
		case *survey.Multiline:
			asked = append(asked, "story")
			*(response.(*string)) = story
		case *survey.MultiSelect:
			asked = append(asked, "categories")
			// selection order differs from display order
			*(response.(*[]string)) = []string{string(testcase.CategoryEdge), string(testcase.CategoryFunctional)}
		default:
			t.Fatalf("unexpected prompt %T", p)
		}
		return nil
	}

	_, errOut, err := executeCommand(t, "", "generate", "-i", "--no-open")
	if err != nil {
		t.Fatalf("generate returned error: %v\nstderr: %s", err, errOut)
	}

	if strings.Join(asked, ",") != "story,categories" {
		t.Errorf("prompts asked = %v, want story then categories", asked)
	}
	if len(stub.Prompts) != 2 {
		t.Fatalf("completion calls = %d, want 2", len(stub.Prompts))
	}
	if stub.Prompts[0].Category != testcase.CategoryFunctional {
		t.Errorf("first category = %s, want display order", stub.Prompts[0].Category)
	}
}

func TestGenerate_MockProvider(t *testing.T) {
	setupWorkspace(t, nil)

	out, errOut, err := executeCommand(t, "", "generate", "--story", story, "-c", "security", "--provider", "mock", "--no-open")
	if err != nil {
		t.Fatalf("generate returned error: %v\nstderr: %s", err, errOut)
	}
	if !strings.Contains(out, "Successfully generated 3 test cases") {
		t.Errorf("stdout = %q, want three mock rows", out)
	}

	rows, err := csvout.Read(csvout.DefaultPath)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 3 || rows[0].ID != "SECURITY-01" {
		t.Errorf("rows = %+v, want SECURITY-01..03", rows)
	}
}

func TestBuildClient_MissingKey(t *testing.T) {
	setupWorkspace(t, nil)
	resetFlags()

	cfg := config.DefaultConfig()
	_, err := buildClient(generateCmd, cfg, false)
	if err == nil {
		t.Fatal("buildClient() = nil error, want missing key")
	}
	if !apperrors.IsInvalidInput(err) {
		t.Errorf("error = %v, want invalid input", err)
	}
	if !strings.Contains(apperrors.UserMessage(err), "OPENAI_API_KEY") {
		t.Errorf("message = %q, want hint about OPENAI_API_KEY", apperrors.UserMessage(err))
	}
}

func TestBuildClient_SaveKey(t *testing.T) {
	setupWorkspace(t, nil)
	resetFlags()

	cfg := config.DefaultConfig()
	cfg.App.CredentialsFile = filepath.Join(t.TempDir(), "credentials.yml")

	_ = generateCmd.Flags().Set("api-key", "sk-test-1234")
	_ = generateCmd.Flags().Set("save-key", "true")
	t.Cleanup(resetFlags)

	client, err := buildClient(generateCmd, cfg, false)
	if err != nil {
		t.Fatalf("buildClient() error = %v", err)
	}
	if _, ok := client.(*completion.OpenAIClient); !ok {
		t.Errorf("client = %T, want *completion.OpenAIClient", client)
	}

	key, err := config.NewCredentialStore(cfg.App.CredentialsFile).APIKey(completion.ProviderOpenAI)
	if err != nil {
		t.Fatalf("APIKey() error = %v", err)
	}
	if key != "sk-test-1234" {
		t.Errorf("stored key = %q, want %q", key, "sk-test-1234")
	}
}

func TestResolveAPIKey(t *testing.T) {
	tests := []struct {
		name         string
		provider     string
		flag         string
		viperKey     string
		env          map[string]string
		stored       map[string]string
		want         string
		wantFromUser bool
	}{
		{
			name:         "flag wins",
			provider:     "openai",
			flag:         "from-flag",
			viperKey:     "from-viper",
			env:          map[string]string{"OPENAI_API_KEY": "from-env"},
			want:         "from-flag",
			wantFromUser: true,
		},
		{
			name:     "app env before provider env",
			provider: "openai",
			viperKey: "from-viper",
			env:      map[string]string{"OPENAI_API_KEY": "from-env"},
			want:     "from-viper",
		},
		{
			name:     "provider env",
			provider: "gemini",
			env:      map[string]string{"GEMINI_API_KEY": "from-env"},
			stored:   map[string]string{"gemini_api_key": "from-store"},
			want:     "from-env",
		},
		{
			name:     "provider entry in store",
			provider: "gemini",
			stored:   map[string]string{"api_key": "shared", "gemini_api_key": "from-store"},
			want:     "from-store",
		},
		{
			name:     "shared entry in store",
			provider: "openai",
			stored:   map[string]string{"api_key": "shared"},
			want:     "shared",
		},
		{
			name:     "nothing configured",
			provider: "openai",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupWorkspace(t, nil)
			resetFlags()
			t.Cleanup(resetFlags)

			if tt.flag != "" {
				_ = generateCmd.Flags().Set("api-key", tt.flag)
			}
			if tt.viperKey != "" {
				viper.Set("api_key", tt.viperKey)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			store := config.NewCredentialStore(filepath.Join(t.TempDir(), "credentials.yml"))
			for k, v := range tt.stored {
				if err := store.Set(k, v); err != nil {
					t.Fatalf("Set() error = %v", err)
				}
			}

			got, fromUser, err := resolveAPIKey(generateCmd, store, tt.provider)
			if err != nil {
				t.Fatalf("resolveAPIKey() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("key = %q, want %q", got, tt.want)
			}
			if fromUser != tt.wantFromUser {
				t.Errorf("fromUser = %v, want %v", fromUser, tt.wantFromUser)
			}
		})
	}
}

func TestStoreKeyName(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{provider: "", want: "api_key"},
		{provider: "openai", want: "api_key"},
		{provider: "OpenAI", want: "api_key"},
		{provider: "gemini", want: "gemini_api_key"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			if got := storeKeyName(tt.provider); got != tt.want {
				t.Errorf("storeKeyName(%q) = %q, want %q", tt.provider, got, tt.want)
			}
		})
	}
}
