// Package commands provides the CLI commands for LingoFlow.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lingoflow-ai/lingoflow/internal/config"
	"github.com/lingoflow-ai/lingoflow/internal/logging"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	printLogs bool
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "lingoflow",
	Short: "LingoFlow - streaming LLM translation",
	Long: `LingoFlow translates text through LLM providers (OpenAI, Anthropic,
Gemini, Ollama and compatible servers), streaming the result as it is
generated and separating the model's reasoning from the translation.

Run 'lingoflow translate "text" --to Spanish' for a one-off translation,
or 'lingoflow serve' to start the HTTP API server.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := logging.Config{Level: logging.ParseLevel(logLevel)}
		if printLogs {
			cfg.Output = os.Stderr
			cfg.Pretty = true
		} else {
			cfg.File = filepath.Join(config.GetPaths().State, "lingoflow.log")
		}
		if err := logging.Init(cfg); err != nil {
			// Fall back to stderr rather than refusing to run.
			logging.Init(logging.Config{Level: logging.ParseLevel(logLevel), Output: os.Stderr})
		}
	},
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVar(&printLogs, "print-logs", false, "Print logs to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")

	// Version template
	rootCmd.SetVersionTemplate(fmt.Sprintf("lingoflow %s (%s)\n", Version, BuildTime))

	// Add subcommands
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetWorkDir returns the working directory from flag or current directory.
func GetWorkDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return os.Getwd()
}
