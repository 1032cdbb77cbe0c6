package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/petal-labs/quill/cli/config"
	"github.com/petal-labs/quill/providers/openai"
)

// Build metadata, set with
// -ldflags "-X github.com/petal-labs/quill/cli/commands.Version=v1.0.0".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// versionInfo is the build plus the request defaults the other commands
// would use with the current flags and config.
type versionInfo struct {
	Version         string `json:"version"`
	Commit          string `json:"commit"`
	BuildDate       string `json:"buildDate"`
	GoVersion       string `json:"goVersion"`
	Platform        string `json:"platform"`
	Provider        string `json:"provider"`
	BaseURL         string `json:"baseUrl,omitempty"`
	CompletionModel string `json:"completionModel,omitempty"`
	EditModel       string `json:"editModel,omitempty"`
	TokenEnv        string `json:"tokenEnv,omitempty"`
	TokenSet        bool   `json:"tokenSet"`
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information and request defaults",
		Long: `Print the build version, then the provider, endpoint, and models that
complete and edit would use with the current flags and config file.
The API token itself is never printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := a.versionInfo()
			if a.jsonOutput {
				return a.outputJSON(info)
			}

			fmt.Fprintf(a.stdout, "quill %s\n", info.Version)
			fmt.Fprintf(a.stdout, "  commit:     %s\n", info.Commit)
			fmt.Fprintf(a.stdout, "  built:      %s\n", info.BuildDate)
			fmt.Fprintf(a.stdout, "  go version: %s\n", info.GoVersion)
			fmt.Fprintf(a.stdout, "  platform:   %s\n", info.Platform)
			fmt.Fprintf(a.stdout, "  provider:   %s\n", info.Provider)
			fmt.Fprintf(a.stdout, "  base url:   %s\n", orNone(info.BaseURL))
			fmt.Fprintf(a.stdout, "  complete:   %s\n", orNone(info.CompletionModel))
			fmt.Fprintf(a.stdout, "  edit:       %s\n", orNone(info.EditModel))

			token := "not set"
			if info.TokenSet {
				token = "set"
			}
			fmt.Fprintf(a.stdout, "  token:      %s (%s)\n", info.TokenEnv, token)
			return nil
		},
	}
}

func (a *App) versionInfo() versionInfo {
	cfg := a.cfg
	if cfg == nil {
		cfg = &config.Config{}
	}

	info := versionInfo{
		Version:         Version,
		Commit:          Commit,
		BuildDate:       BuildDate,
		GoVersion:       runtime.Version(),
		Platform:        runtime.GOOS + "/" + runtime.GOARCH,
		Provider:        a.provider,
		CompletionModel: string(a.completionModel()),
		EditModel:       string(a.editModel()),
		TokenEnv:        envVarForProvider(a.provider),
	}

	if pc := cfg.GetProvider(a.provider); pc != nil {
		info.BaseURL = pc.BaseURL
		if pc.APIKeyEnv != "" {
			info.TokenEnv = pc.APIKeyEnv
		}
	}
	if info.BaseURL == "" && a.provider == defaultProviderID {
		info.BaseURL = openai.DefaultBaseURL
	}
	info.TokenSet = cfg.APIKey(a.provider, envVarForProvider(a.provider)) != ""
	return info
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
