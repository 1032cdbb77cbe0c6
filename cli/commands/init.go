package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/petal-labs/quill/cli/config"
	"github.com/petal-labs/quill/providers/openai"
)

func (a *App) newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long: `Write a starter config file with default models and the environment
variable that holds the API token.

Example:
  quill init
  quill init --config ./quill.yaml --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit()
		},
	}

	cmd.Flags().BoolVar(&a.initForce, "force", false, "Overwrite an existing config file")
	return cmd
}

func starterConfig() *config.Config {
	return &config.Config{
		DefaultProvider:  defaultProviderID,
		DefaultModel:     string(openai.DefaultCompletionModel),
		DefaultEditModel: string(openai.DefaultEditModel),
		Providers: map[string]config.ProviderConfig{
			defaultProviderID: {APIKeyEnv: openai.DefaultAPIKeyEnvVar},
		},
	}
}

func (a *App) runInit() error {
	path := a.configPath()

	if _, err := os.Stat(path); err == nil && !a.initForce {
		return exitWithCode(ExitValidation, fmt.Errorf("config %s already exists (use --force to overwrite)", path))
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return exitWithCode(ExitValidation, err)
	}

	if err := config.SaveConfig(path, starterConfig()); err != nil {
		return exitWithCode(ExitValidation, fmt.Errorf("write config: %w", err))
	}

	fmt.Fprintf(a.stdout, "Wrote %s\n", path)
	fmt.Fprintf(a.stdout, "Set %s to your API token before running 'quill complete'.\n", openai.DefaultAPIKeyEnvVar)
	return nil
}
