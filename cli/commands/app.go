// Package commands implements the CLI command structure using Cobra.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/petal-labs/quill/cli/config"
	"github.com/petal-labs/quill/core"
)

// ConfigLoader loads CLI config from a path.
type ConfigLoader func(path string) (*config.Config, error)

// ProviderFactory creates a provider using CLI config context.
type ProviderFactory func(providerID string, cfg *config.Config, logger *slog.Logger) (core.Provider, error)

// TerminalCheck reports whether w is an interactive terminal.
type TerminalCheck func(w io.Writer) bool

// AppOption customizes App dependencies.
type AppOption func(*App)

// App holds CLI state and runtime dependencies.
type App struct {
	root *cobra.Command

	loadConfig     ConfigLoader
	createProvider ProviderFactory
	isTerminal     TerminalCheck
	stdin          io.Reader
	stdout         io.Writer
	stderr         io.Writer
	cfgFile        string
	provider       string
	model          string
	jsonOutput     bool
	verbose        bool
	cfg            *config.Config
	logger         *slog.Logger

	completePrompt    string
	completeMaxTokens int
	completeStop      []string
	completeEcho      bool
	completeStream    bool
	editInstruction   string
	editInput         string
	initForce         bool
}

// WithConfigLoader injects a config loader dependency.
func WithConfigLoader(loader ConfigLoader) AppOption {
	return func(a *App) {
		if loader != nil {
			a.loadConfig = loader
		}
	}
}

// WithProviderFactory injects a provider factory dependency.
func WithProviderFactory(factory ProviderFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.createProvider = factory
		}
	}
}

// WithTerminalCheck injects the terminal detection used for stream output.
func WithTerminalCheck(check TerminalCheck) AppOption {
	return func(a *App) {
		if check != nil {
			a.isTerminal = check
		}
	}
}

// WithIO injects process I/O streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdin != nil {
			a.stdin = stdin
		}
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// NewApp creates a new CLI app with default dependencies.
func NewApp(opts ...AppOption) *App {
	a := &App{
		loadConfig:     config.LoadConfig,
		createProvider: defaultProviderFactory,
		isTerminal:     isTerminalWriter,
		stdin:          os.Stdin,
		stdout:         os.Stdout,
		stderr:         os.Stderr,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.root = a.newRootCommand()
	return a
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "quill",
		Short: "Quill - text completions and edits from the command line",
		Long: `Quill is a command-line interface for hosted text-generation APIs.

Use Quill to complete prompts, stream completions, and edit text.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags available to all commands.
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.quill/config.yaml)")
	root.PersistentFlags().StringVar(&a.provider, "provider", "", "provider ID (default openai)")
	root.PersistentFlags().StringVar(&a.model, "model", "", "model ID (e.g. text-davinci-003)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "emit JSON output")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")

	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.AddCommand(a.newCompleteCommand())
	root.AddCommand(a.newEditCommand())
	root.AddCommand(a.newInitCommand())
	root.AddCommand(a.newVersionCommand())

	return root
}

// Execute runs the root command. Errors not already reported by a command
// are printed to stderr.
func (a *App) Execute() error {
	err := a.root.Execute()
	if err != nil {
		var ee *exitError
		if !errors.As(err, &ee) || !ee.reported {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
	}
	return err
}

// SetArgs overrides the arguments passed to the root command.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

func (a *App) configPath() string {
	if a.cfgFile != "" {
		return a.cfgFile
	}
	return config.DefaultConfigPath()
}

func (a *App) initConfig() error {
	a.logger = newLogger(a.stderr, a.verbose)

	cfg, err := a.loadConfig(a.configPath())
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}
	a.cfg = cfg

	// Apply config defaults if flags not set.
	if a.provider == "" {
		a.provider = cfg.DefaultProvider
	}
	if a.provider == "" {
		a.provider = defaultProviderID
	}

	a.logger.Debug("config loaded", "path", a.configPath(), "provider", a.provider)
	return nil
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var defaultApp = NewApp()

// Execute runs the default app root command.
func Execute() error {
	return defaultApp.Execute()
}
