package core

import (
	"encoding/json"
	"strings"
)

// DoneSentinel is the SSE payload prefix that terminates a generation stream.
const DoneSentinel = "[DONE]"

// PayloadKind classifies the result of decoding one SSE payload.
type PayloadKind int

const (
	// PayloadIgnored means the payload was not a decodable chunk and is dropped.
	PayloadIgnored PayloadKind = iota
	// PayloadChunk means a GenerationChunk was decoded.
	PayloadChunk
	// PayloadDone means the stream terminator was received.
	PayloadDone
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadChunk:
		return "chunk"
	case PayloadDone:
		return "done"
	default:
		return "ignored"
	}
}

// wireChunk mirrors GenerationChunk with pointer fields so that missing
// required keys can be told apart from zero values.
type wireChunk struct {
	ID      *string       `json:"id"`
	Object  *string       `json:"object"`
	Model   *string       `json:"model"`
	Choices *[]wireChoice `json:"choices"`
}

type wireChoice struct {
	Index        *int         `json:"index"`
	Text         *string      `json:"text"`
	FinishReason FinishReason `json:"finish_reason"`
}

// DecodePayload decodes one raw SSE message payload.
//
// A payload starting with [DONE] yields PayloadDone. A payload matching the
// chunk shape yields the chunk and PayloadChunk. Anything else, including
// malformed JSON, missing required keys, and unknown finish reasons, yields
// PayloadIgnored; partial or noisy frames must not fail a stream.
//
// DecodePayload is pure and safe for concurrent use.
func DecodePayload(data string) (*GenerationChunk, PayloadKind) {
	if strings.HasPrefix(data, DoneSentinel) {
		return nil, PayloadDone
	}
	chunk, err := decodeChunk([]byte(data))
	if err != nil {
		return nil, PayloadIgnored
	}
	return chunk, PayloadChunk
}

// DecodeGeneration decodes a one-shot response body. Unlike DecodePayload it
// reports why decoding failed.
func DecodeGeneration(body []byte) (*GenerationResult, error) {
	chunk, err := decodeChunk(body)
	if err != nil {
		return nil, err
	}
	var usage struct {
		Usage TokenUsage `json:"usage"`
	}
	// Usage is optional and never fails the decode.
	_ = json.Unmarshal(body, &usage)
	return &GenerationResult{GenerationChunk: *chunk, Usage: usage.Usage}, nil
}

func decodeChunk(data []byte) (*GenerationChunk, error) {
	var w wireChunk
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w.ID == nil {
		return nil, &shapeError{field: "id"}
	}
	if w.Object == nil {
		return nil, &shapeError{field: "object"}
	}
	if w.Choices == nil {
		return nil, &shapeError{field: "choices"}
	}

	chunk := &GenerationChunk{
		ID:      *w.ID,
		Object:  *w.Object,
		Choices: make([]Choice, 0, len(*w.Choices)),
	}
	if w.Model != nil {
		chunk.Model = *w.Model
	}
	for _, c := range *w.Choices {
		if c.Index == nil {
			return nil, &shapeError{field: "choices.index"}
		}
		if c.Text == nil {
			return nil, &shapeError{field: "choices.text"}
		}
		chunk.Choices = append(chunk.Choices, Choice{
			Index:        *c.Index,
			Text:         *c.Text,
			FinishReason: c.FinishReason,
		})
	}
	return chunk, nil
}

// shapeError reports a JSON document that parsed but lacks a required key.
type shapeError struct {
	field string
}

func (e *shapeError) Error() string {
	return "missing required field " + e.field
}
