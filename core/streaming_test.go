package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testChunk(text string, reason FinishReason) *GenerationChunk {
	return &GenerationChunk{
		ID:      "cmpl-1",
		Object:  "text_completion",
		Model:   "text-davinci-003",
		Choices: []Choice{{Index: 0, Text: text, FinishReason: reason}},
	}
}

// closedStream builds a finished stream from fixed values.
func closedStream(chunks []*GenerationChunk, err error, final *StreamResult) *CompletionStream {
	ch := make(chan *GenerationChunk, len(chunks))
	errCh := make(chan error, 1)
	finalCh := make(chan *StreamResult, 1)

	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	if err != nil {
		errCh <- err
	}
	close(errCh)
	if final != nil {
		finalCh <- final
	}
	close(finalCh)

	return NewCompletionStream(ch, errCh, finalCh, nil)
}

func TestDrainStreamAccumulatesText(t *testing.T) {
	s := closedStream([]*GenerationChunk{
		testChunk("Hello", ""),
		testChunk(", ", ""),
		testChunk("world", FinishReasonStop),
	}, nil, nil)

	result, err := DrainStream(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "Hello, world" {
		t.Errorf("Text = %q, want %q", result.Text, "Hello, world")
	}
	if result.FinishReason != FinishReasonStop {
		t.Errorf("FinishReason = %q, want stop", result.FinishReason)
	}
	if result.Chunks != 3 {
		t.Errorf("Chunks = %d, want 3", result.Chunks)
	}
	if result.ID != "cmpl-1" {
		t.Errorf("ID = %q, want cmpl-1", result.ID)
	}
}

func TestDrainStreamFirstFinishReasonWins(t *testing.T) {
	s := closedStream([]*GenerationChunk{
		testChunk("a", FinishReasonLength),
		testChunk("b", FinishReasonStop),
	}, nil, nil)

	result, err := DrainStream(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FinishReason != FinishReasonLength {
		t.Errorf("FinishReason = %q, want length", result.FinishReason)
	}
}

func TestDrainStreamPrefersFinal(t *testing.T) {
	final := &StreamResult{ID: "cmpl-final", Text: "from final", FinishReason: FinishReasonStop, Chunks: 1}
	s := closedStream([]*GenerationChunk{testChunk("from chunks", "")}, nil, final)

	result, err := DrainStream(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != final {
		t.Errorf("result = %+v, want the Final value", result)
	}
}

func TestDrainStreamErrorPropagates(t *testing.T) {
	streamErr := NewStreamError("openai", errors.New("connection reset"))
	s := closedStream([]*GenerationChunk{testChunk("partial", "")}, streamErr, nil)

	result, err := DrainStream(context.Background(), s)
	if result != nil {
		t.Errorf("result = %+v, want nil", result)
	}
	if !errors.Is(err, ErrStream) {
		t.Errorf("error = %v, want ErrStream", err)
	}
}

func TestDrainStreamEmptyStream(t *testing.T) {
	result, err := DrainStream(context.Background(), closedStream(nil, nil, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "" || result.Chunks != 0 || result.FinishReason.IsSet() {
		t.Errorf("result = %+v, want empty", result)
	}
}

func TestDrainStreamContextCancellation(t *testing.T) {
	ch := make(chan *GenerationChunk)
	errCh := make(chan error)
	finalCh := make(chan *StreamResult)
	s := NewCompletionStream(ch, errCh, finalCh, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := DrainStream(ctx, s)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}

func TestDrainStreamNilStream(t *testing.T) {
	_, err := DrainStream(context.Background(), nil)
	if !errors.Is(err, ErrBadRequest) {
		t.Errorf("error = %v, want ErrBadRequest", err)
	}
}

func TestDrainStreamFromSession(t *testing.T) {
	s := NewStreamSession(context.Background(), SessionConfig{})
	go func() {
		for _, text := range []string{"1", "2", "3"} {
			s.OnMessage("message", chunkPayload(text, ""))
		}
		s.OnMessage("message", DoneSentinel)
	}()

	result, err := DrainStream(context.Background(), s.Stream())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "123" {
		t.Errorf("Text = %q, want 123", result.Text)
	}
}

func TestCompletionStreamAll(t *testing.T) {
	s := closedStream([]*GenerationChunk{testChunk("a", ""), testChunk("b", "")}, nil, nil)

	var text string
	for c, err := range s.All() {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text += c.Text()
	}
	if text != "ab" {
		t.Errorf("text = %q, want ab", text)
	}
}

func TestCompletionStreamAllYieldsError(t *testing.T) {
	streamErr := NewStreamError("openai", errors.New("eof"))
	s := closedStream([]*GenerationChunk{testChunk("a", "")}, streamErr, nil)

	var chunks int
	var gotErr error
	for c, err := range s.All() {
		if err != nil {
			gotErr = err
			if c != nil {
				t.Error("error pair should carry a nil chunk")
			}
			continue
		}
		chunks++
	}
	if chunks != 1 {
		t.Errorf("chunks = %d, want 1", chunks)
	}
	if !errors.Is(gotErr, ErrStream) {
		t.Errorf("error = %v, want ErrStream", gotErr)
	}
}

func TestCompletionStreamAllBreakCloses(t *testing.T) {
	closed := 0
	ch := make(chan *GenerationChunk, 2)
	ch <- testChunk("a", "")
	ch <- testChunk("b", "")
	s := NewCompletionStream(ch, make(chan error), make(chan *StreamResult), func() { closed++ })

	for range s.All() {
		break
	}
	if closed != 1 {
		t.Errorf("cancel called %d times, want 1", closed)
	}
}

func TestCompletionStreamCloseNil(t *testing.T) {
	var s *CompletionStream
	s.Close()
	NewCompletionStream(nil, nil, nil, nil).Close()
}

func TestCompletionStreamChannelDirections(t *testing.T) {
	s := closedStream(nil, nil, nil)

	var _ <-chan *GenerationChunk = s.Ch
	var _ <-chan error = s.Err
	var _ <-chan *StreamResult = s.Final
}
