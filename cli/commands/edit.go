package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/petal-labs/quill/core"
	"github.com/petal-labs/quill/providers/openai"
)

func (a *App) newEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Send an edit request",
		Long: `Ask a model to rewrite input text according to an instruction.

Examples:
  quill edit --instruction "Fix the spelling mistakes" --input "Wat day of the wek is it?"
  echo "teh quick fox" | quill edit --instruction "Fix the spelling" --input -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEdit(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&a.editInstruction, "instruction", "", "How to edit the input (required)")
	cmd.Flags().StringVar(&a.editInput, "input", "", `Text to edit; "-" reads stdin`)

	_ = cmd.MarkFlagRequired("instruction")
	return cmd
}

// editModel resolves the model from the flag, then config, then the
// provider default.
func (a *App) editModel() core.ModelID {
	switch {
	case a.model != "":
		return core.ModelID(a.model)
	case a.cfg != nil && a.cfg.DefaultEditModel != "":
		return core.ModelID(a.cfg.DefaultEditModel)
	case a.provider == defaultProviderID:
		return openai.DefaultEditModel
	default:
		return ""
	}
}

func (a *App) runEdit(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	model := a.editModel()
	if a.provider == defaultProviderID && model != "" && !openai.IsEditModel(model) {
		a.logger.Warn("model is not served by the edits endpoint", "model", model)
	}

	input := a.editInput
	if input == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return exitWithCode(ExitValidation, fmt.Errorf("read input: %w", err))
		}
		input = string(data)
	}

	client, release, err := a.newClient()
	if err != nil {
		return err
	}
	defer release()

	resp, err := client.Edit(model).
		Instruction(a.editInstruction).
		Input(input).
		GetResponse(ctx)
	if err != nil {
		return a.handleError(err)
	}
	return a.printResult(resp)
}
