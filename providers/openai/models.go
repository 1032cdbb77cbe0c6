// Package openai provides an OpenAI completions and edits provider for Quill.
package openai

import "github.com/petal-labs/quill/core"

// Completion models.
const (
	ModelTextDavinci003     core.ModelID = "text-davinci-003"
	ModelTextDavinci002     core.ModelID = "text-davinci-002"
	ModelTextCurie001       core.ModelID = "text-curie-001"
	ModelTextBabbage001     core.ModelID = "text-babbage-001"
	ModelTextAda001         core.ModelID = "text-ada-001"
	ModelDavinci002         core.ModelID = "davinci-002"
	ModelBabbage002         core.ModelID = "babbage-002"
	ModelGPT35TurboInstruct core.ModelID = "gpt-3.5-turbo-instruct"
	ModelCodeDavinci002     core.ModelID = "code-davinci-002"
	ModelTextDavinciEdit001 core.ModelID = "text-davinci-edit-001"
	ModelCodeDavinciEdit001 core.ModelID = "code-davinci-edit-001"
)

// Defaults used by the CLI and examples when no model is given.
const (
	DefaultCompletionModel = ModelTextDavinci003
	DefaultEditModel       = ModelTextDavinciEdit001
)

// editModels lists the models served by the edits endpoint.
var editModels = map[core.ModelID]bool{
	ModelTextDavinciEdit001: true,
	ModelCodeDavinciEdit001: true,
}

// IsEditModel reports whether model is served by /v1/edits.
func IsEditModel(model core.ModelID) bool {
	return editModels[model]
}
