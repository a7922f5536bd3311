// Package cli provides the command-line interface for Arborist
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Didstopia/arborist/internal/config"
	"github.com/Didstopia/arborist/internal/git"
	"github.com/Didstopia/arborist/internal/runner"
	"github.com/Didstopia/arborist/internal/state"
	"github.com/Didstopia/arborist/internal/workspace"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Global flags
var (
	verbose bool
	random  bool
	keep    bool
)

// Global logger
var log = logrus.New()

// Config loader
var configLoader *config.Loader

// Exit code of the wrapped command, propagated from Execute
var commandExitCode int

// Root command
var rootCmd = &cobra.Command{
	Use:   "arborist [flags] -- command [args...]",
	Short: "Run commands inside isolated git workspaces",
	Long: `Run any command inside an isolated git worktree on its own branch.

The worktree is created before the command starts and removed afterwards
unless the command left uncommitted changes or unpushed commits behind.
Outside a git repository the command runs directly, unchanged.

Examples:
  arborist make test
  arborist -r npm run build
  arborist -k -- ./scripts/migrate.sh --dry-run`,
	Args: cobra.MinimumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Inject config file values
		configLoader.InjectToCommand(cmd)

		// Re-read flags after injection
		verbose, _ = cmd.Flags().GetBool("verbose")
		random, _ = cmd.Flags().GetBool("random")
		keep, _ = cmd.Flags().GetBool("keep")

		// Set log level
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		} else {
			log.SetLevel(logrus.InfoLevel)
		}

		return nil
	},
	RunE: runRoot,
}

func init() {
	// Initialize config loader
	configLoader = config.NewLoader()
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.Flags().BoolVarP(&random, "random", "r", false, "Pick a random workspace label instead of the deterministic one")
	rootCmd.Flags().BoolVarP(&keep, "keep", "k", false, "Keep the workspace even when the command leaves no changes")

	// Stop flag parsing at the first positional token so the wrapped
	// command keeps its own flags.
	rootCmd.Flags().SetInterspersed(false)
}

func initConfig() {
	if err := configLoader.Initialize(); err != nil {
		// Config initialization failure is not fatal for all commands
		log.Debugf("Config initialization: %v", err)
	}

	// Bind flags to viper
	viper := configLoader.Viper()
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("random", rootCmd.Flags().Lookup("random"))
	viper.BindPFlag("keep", rootCmd.Flags().Lookup("keep"))

	viper.SetDefault("verbose", false)
	viper.SetDefault("random", false)
	viper.SetDefault("keep", false)
	viper.SetDefault("palette", []string{})
	viper.SetDefault("auto_clean", "")
}

func runRoot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	g, err := git.New()
	if err != nil {
		return err
	}

	session, err := workspace.NewSession(g, runner.New(), openRegistry(), currentConfig(), log)
	if err != nil {
		return err
	}

	code, err := session.Run(ctx, args)
	if err != nil {
		return err
	}

	commandExitCode = code
	return nil
}

// currentConfig assembles the effective configuration from flags and
// the loaded config file.
func currentConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Verbose = verbose
	cfg.Random = random
	cfg.Keep = keep
	if palette := configLoader.GetStringSlice("palette"); len(palette) > 0 {
		cfg.Palette = palette
	}
	cfg.AutoClean = configLoader.GetString("auto_clean")
	return cfg
}

// openRegistry opens the retained-session registry. The registry is
// advisory, so any failure downgrades to a nil registry rather than
// aborting the run.
func openRegistry() *state.Storage {
	registry, err := state.NewStorage()
	if err != nil {
		log.WithError(err).Debug("Failed to initialize session registry")
		return nil
	}
	if err := registry.Load(); err != nil {
		log.WithError(err).Debug("Failed to load session registry, starting fresh")
	}
	return registry
}

// Execute runs the root command
func Execute() {
	// Create context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// An interrupt reaches the wrapped command through the shared
	// process group; the wrapper only cancels its context and lets
	// the run settle into the retain path.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	// Store context for subcommands
	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Surface the wrapped command's exit code as our own
	if commandExitCode != 0 {
		os.Exit(commandExitCode)
	}
}

// GetLogger returns the global logger
func GetLogger() *logrus.Logger {
	return log
}

// GetVerbose returns the verbose flag
func GetVerbose() bool {
	return verbose
}
