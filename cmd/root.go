package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/SaadHafeez466/qa-app/internal/config"
	"github.com/SaadHafeez466/qa-app/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix namespaces every environment override, e.g. QA_APP_OUTPUT_PATH.
const envPrefix = "QA_APP"

var (
	cfgFile   string
	debug     bool
	logFormat string
	appLogger *logger.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "qa-app",
	Short: "Generate QA test cases from a user story",
	Long: `Generate QA test cases from a user story with a large language model.

For every selected category the story is sent to the completion service,
the returned table is parsed into rows, and all rows are written to a CSV
file next to any earlier results.

Settings come from config.yaml (see qa-app init), QA_APP_* environment
variables, a .env file in the working directory, and flags, with flags
taking precedence.`,
}

// Execute runs the root command. An interrupt cancels the in-flight
// completion call and ends the process without writing a file.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ./config/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.StringVar(&logFormat, "log-format", logger.FormatText, "log format (text or json)")
}

// initConfig wires viper to the config file, .env and QA_APP_* variables.
func initConfig() {
	// existing variables win over .env entries
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(strings.TrimSuffix(config.DefaultConfigPath, ".yaml"))
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Could not read config file %s: %v\n", cfgFile, err)
	}
}

// initLogger installs the process logger; app.debug in config also enables
// debug output.
func initLogger() {
	if viper.GetBool("app.debug") {
		debug = true
	}

	format, err := logger.ParseFormat(logFormat)
	appLogger = logger.NewFromFlags(debug, format)
	slog.SetDefault(appLogger.Logger)
	if err != nil {
		appLogger.Warn("falling back to text logs", "error", err)
	}
}

// GetLogger returns the global logger
func GetLogger() *logger.Logger {
	if appLogger == nil {
		appLogger = logger.NewFromFlags(false, logger.FormatText)
	}
	return appLogger
}
