package cmd

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/SaadHafeez466/qa-app/internal/apperrors"
	"github.com/SaadHafeez466/qa-app/internal/completion"
	"github.com/SaadHafeez466/qa-app/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var keyProvider string

// keyCmd manages the stored API key
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the stored API key",
	Long: `Manage the API key kept in the credentials file
(app.credentials_file, default .qa-app/credentials.yml).

A key given with --api-key or through the environment takes precedence over
the stored one.`,
}

var keySetCmd = &cobra.Command{
	Use:   "set [value]",
	Short: "Store an API key",
	Long: `Store an API key in the credentials file.

Without an argument the key is read from a masked prompt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKeySet,
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored API key, masked",
	Args:  cobra.NoArgs,
	RunE:  runKeyShow,
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE:  runKeyClear,
}

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keySetCmd, keyShowCmd, keyClearCmd)

	keyCmd.PersistentFlags().StringVar(&keyProvider, "provider", completion.ProviderOpenAI, "Provider the key belongs to (openai or gemini)")
}

func credentialStore() (*config.CredentialStore, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return config.NewCredentialStore(cfg.App.CredentialsFile), nil
}

func runKeySet(cmd *cobra.Command, args []string) error {
	log := GetLogger().WithComponent("key")

	store, err := credentialStore()
	if err != nil {
		return err
	}

	var value string
	if len(args) == 1 {
		value = args[0]
	} else {
		err := askOneFunc(&survey.Password{
			Message: fmt.Sprintf("%s API key:", keyProvider),
		}, &value, survey.WithValidator(survey.Required))
		if err != nil {
			return err
		}
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return apperrors.New("cmd.key.set", apperrors.ErrInvalidInput, "API key must not be blank")
	}

	name := storeKeyName(keyProvider)
	if err := store.Set(name, value); err != nil {
		return err
	}

	log.Debug("API key stored", "entry", name, "path", store.Path)
	fmt.Fprintf(cmd.OutOrStdout(), "API key saved to %s\n", store.Path)
	return nil
}

func runKeyShow(cmd *cobra.Command, args []string) error {
	store, err := credentialStore()
	if err != nil {
		return err
	}

	entries, err := store.Load()
	if err != nil {
		return err
	}

	name := storeKeyName(keyProvider)
	value, ok := entries[name]
	if !ok || value == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "No %s API key stored in %s\n", keyProvider, store.Path)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, config.Mask(value))
	return nil
}

func runKeyClear(cmd *cobra.Command, args []string) error {
	store, err := credentialStore()
	if err != nil {
		return err
	}

	if err := store.Delete(storeKeyName(keyProvider)); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s API key from %s\n", keyProvider, store.Path)
	return nil
}
