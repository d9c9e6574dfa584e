package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/muse/pkg/cli"
)

var (
	// Persistent flags shared by every subcommand.
	flagContext  string
	flagDataDir  string
	flagRules    string
	flagOutput   string
	flagRender   bool
	flagNoSave   bool
	flagLogLevel string
	verbose      bool

	// Loaded once by initConfig, lazily by GetConfig after that.
	globalConfig *cli.Config
)

var rootCmd = &cobra.Command{
	Use:   "muse",
	Short: "Deterministic reasoning companion",
	Long: `muse - a deterministic reasoning companion.

muse turns queries, tasks, goals, and situation reports into structured
markdown analyses. There is no model behind it: every report is
assembled from canned templates selected by keyword rules, so output is
reproducible and fully offline.

Agent state (reasoning history, learned patterns, tool statistics)
persists between runs in a local badger database.

Settings live in the OS config directory:
  macOS:   ~/Library/Application Support/muse/
  Linux:   ~/.config/muse/
  Windows: %AppData%/muse/

Examples:
  # Ask a question
  muse think "Why is the sky blue?"

  # Set up a context with custom rules and a tool catalog
  muse config add-context dev --rules rules.yaml --catalog tools.yaml
  muse config use-context dev

  # Match tools against a task and inspect the agent
  muse tools analyze "search the web for Go release notes"
  muse info

  # Export history and state
  muse history export --dir ./exports`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging, initConfig)

	rootCmd.PersistentFlags().StringVarP(&flagContext, "context", "c", "", "config context to use (default: current context)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "agent state directory (or MUSE_DATA_DIR env)")
	rootCmd.PersistentFlags().StringVar(&flagRules, "rules", "", "classifier rule file overriding the built-in rules")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "output format for structured commands (yaml, json, table)")
	rootCmd.PersistentFlags().BoolVar(&flagRender, "render", false, "apply terminal styling to markdown reports")
	rootCmd.PersistentFlags().BoolVar(&flagNoSave, "no-save", false, "do not persist agent state after the command")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initLogging() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(flagLogLevel)); err != nil {
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// configLoadErr is the init-time load failure, surfaced later by GetConfig.
var configLoadErr error

func initConfig() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		// Hold the error for GetConfig so config-free commands like
		// 'muse version' still run.
		configLoadErr = err
		return
	}
	globalConfig = cfg
}

// GetConfig hands back the loaded configuration. Commands that need one
// call this and turn the held load error into their own failure.
func GetConfig() (*cli.Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}
	if configLoadErr != nil {
		return nil, fmt.Errorf("config not available: %w", configLoadErr)
	}
	// Init never ran; load on demand.
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("config not available: %w", err)
	}
	globalConfig = cfg
	return globalConfig, nil
}

// IsVerbose reports whether --verbose was given.
func IsVerbose() bool {
	return verbose
}

// shouldRender reports whether markdown reports get terminal styling:
// the --render flag when given, otherwise the context setting.
func shouldRender(cliCtx *cli.Context) bool {
	if rootCmd.PersistentFlags().Changed("render") {
		return flagRender
	}
	return cliCtx != nil && cliCtx.Render
}

// resolveFormat picks the output format for structured commands: the
// --output flag, then the context setting, then the given fallback.
func resolveFormat(cliCtx *cli.Context, fallback cli.OutputFormat) cli.OutputFormat {
	if flagOutput != "" {
		return cli.OutputFormat(flagOutput)
	}
	if cliCtx != nil && cliCtx.Output != "" {
		return cli.OutputFormat(cliCtx.Output)
	}
	return fallback
}
