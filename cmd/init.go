package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/SaadHafeez466/qa-app/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config.yaml with the default settings",
	Long: `Write a config.yaml with the default settings to the current directory.

An existing file is left untouched. API keys are not written; use
qa-app key set or the environment for those.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := GetLogger().WithComponent("init")

		path := config.DefaultConfigPath
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "config already exists: %s\n", path)
			return nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}

		if err := config.Save(path, config.DefaultConfig()); err != nil {
			log.Error("Failed to write config", "path", path, "error", err)
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
