package openai

// completionRequest is the body of POST /v1/completions.
type completionRequest struct {
	Prompt    string   `json:"prompt"`
	Model     string   `json:"model"`
	MaxTokens int      `json:"max_tokens"`
	Stream    bool     `json:"stream"`
	Stop      []string `json:"stop,omitempty"`
	Echo      bool     `json:"echo,omitempty"`
}

// editRequest is the body of POST /v1/edits.
type editRequest struct {
	Instruction string `json:"instruction"`
	Model       string `json:"model"`
	Input       string `json:"input"`
}
