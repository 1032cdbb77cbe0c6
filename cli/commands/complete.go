package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/petal-labs/quill/core"
	"github.com/petal-labs/quill/providers/openai"
)

func (a *App) newCompleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Send a completion request",
		Long: `Send a text completion request to a provider.

Examples:
  quill complete --prompt "Say this is a test"
  quill complete --prompt "Count to three:" --stream
  quill complete --model text-davinci-003 --prompt "Hello" --max-tokens 64 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runComplete(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&a.completePrompt, "prompt", "", "Prompt text (required)")
	cmd.Flags().IntVar(&a.completeMaxTokens, "max-tokens", 0, "Max tokens (0 = use default)")
	cmd.Flags().StringArrayVar(&a.completeStop, "stop", nil, "Stop sequence (repeatable)")
	cmd.Flags().BoolVar(&a.completeEcho, "echo", false, "Echo the prompt in the output")
	cmd.Flags().BoolVar(&a.completeStream, "stream", false, "Enable streaming output")

	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

// completionModel resolves the model from the flag, then config, then the
// provider default.
func (a *App) completionModel() core.ModelID {
	switch {
	case a.model != "":
		return core.ModelID(a.model)
	case a.cfg != nil && a.cfg.DefaultModel != "":
		return core.ModelID(a.cfg.DefaultModel)
	case a.provider == defaultProviderID:
		return openai.DefaultCompletionModel
	default:
		return ""
	}
}

// newClient creates the provider and wraps it in a client. The returned
// function releases the provider.
func (a *App) newClient() (*core.Client, func(), error) {
	provider, err := a.createProvider(a.provider, a.cfg, a.logger)
	if err != nil {
		return nil, nil, exitWithCode(ExitValidation, err)
	}

	release := func() {}
	if c, ok := provider.(io.Closer); ok {
		release = func() { _ = c.Close() }
	}
	return core.NewClient(provider, core.WithTelemetry(logTelemetry{logger: a.logger})), release, nil
}

func (a *App) runComplete(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	client, release, err := a.newClient()
	if err != nil {
		return err
	}
	defer release()

	builder := client.Completion(a.completionModel()).
		Prompt(a.completePrompt).
		Echo(a.completeEcho)
	if len(a.completeStop) > 0 {
		builder = builder.Stop(a.completeStop...)
	}
	if a.completeMaxTokens > 0 {
		builder = builder.MaxTokens(a.completeMaxTokens)
	}

	if a.completeStream {
		return a.runStreamingComplete(ctx, builder)
	}

	resp, err := builder.GetResponse(ctx)
	if err != nil {
		return a.handleError(err)
	}
	return a.printResult(resp)
}

func (a *App) runStreamingComplete(ctx context.Context, builder *core.CompletionBuilder) error {
	stream, err := builder.Stream(ctx)
	if err != nil {
		return a.handleError(err)
	}
	defer stream.Close()

	if a.jsonOutput {
		result, err := core.DrainStream(ctx, stream)
		if err != nil {
			return a.handleError(err)
		}
		return a.outputJSON(streamOutput{
			ID:           result.ID,
			Model:        result.Model,
			Text:         result.Text,
			FinishReason: result.FinishReason.String(),
			Chunks:       result.Chunks,
		})
	}

	// Read chunks as they arrive
	for chunk := range stream.Ch {
		fmt.Fprint(a.stdout, chunk.Text())
	}

	// Err and Final are closed once the stream ends, so these reads return.
	streamErr := <-stream.Err
	final := <-stream.Final

	interactive := a.isTerminal(a.stdout)
	if interactive {
		fmt.Fprintln(a.stdout)
	}
	if streamErr != nil {
		return a.handleError(streamErr)
	}
	if final != nil && interactive && final.FinishReason == core.FinishReasonLength {
		fmt.Fprintln(a.stderr, "(stopped: max tokens reached)")
	}
	return nil
}

type generationOutput struct {
	ID           string          `json:"id"`
	Model        string          `json:"model,omitempty"`
	Text         string          `json:"text"`
	FinishReason string          `json:"finish_reason"`
	Usage        core.TokenUsage `json:"usage"`
}

type streamOutput struct {
	ID           string `json:"id"`
	Model        string `json:"model,omitempty"`
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
	Chunks       int    `json:"chunks"`
}

func (a *App) printResult(resp *core.GenerationResult) error {
	if a.jsonOutput {
		return a.outputJSON(generationOutput{
			ID:           resp.ID,
			Model:        resp.Model,
			Text:         resp.Text(),
			FinishReason: resp.FinishReason().String(),
			Usage:        resp.Usage,
		})
	}

	fmt.Fprintln(a.stdout, resp.Text())
	if a.verbose {
		fmt.Fprintf(a.stderr, "Usage: %d prompt + %d completion = %d total tokens\n",
			resp.Usage.PromptTokens,
			resp.Usage.CompletionTokens,
			resp.Usage.TotalTokens)
	}
	return nil
}

func (a *App) outputJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
