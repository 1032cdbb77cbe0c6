package openai

import (
	"testing"

	"github.com/petal-labs/quill/core"
)

func TestDefaultModels(t *testing.T) {
	if DefaultCompletionModel != "text-davinci-003" {
		t.Errorf("DefaultCompletionModel = %q, want text-davinci-003", DefaultCompletionModel)
	}
	if DefaultEditModel != "text-davinci-edit-001" {
		t.Errorf("DefaultEditModel = %q, want text-davinci-edit-001", DefaultEditModel)
	}
}

func TestIsEditModel(t *testing.T) {
	tests := []struct {
		model core.ModelID
		want  bool
	}{
		{ModelTextDavinciEdit001, true},
		{ModelCodeDavinciEdit001, true},
		{ModelTextDavinci003, false},
		{ModelGPT35TurboInstruct, false},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.model), func(t *testing.T) {
			if got := IsEditModel(tt.model); got != tt.want {
				t.Errorf("IsEditModel(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}
