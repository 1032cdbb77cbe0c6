package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mockProvider is a test implementation of Provider.
type mockProvider struct {
	id           string
	completeFunc func(ctx context.Context, req *CompletionRequest) (*GenerationResult, error)
	editFunc     func(ctx context.Context, req *EditRequest) (*GenerationResult, error)
	streamFunc   func(ctx context.Context, req *CompletionRequest) (*CompletionStream, error)

	mu          sync.Mutex
	callCount   int
	lastRequest *CompletionRequest
	lastEdit    *EditRequest
}

func (m *mockProvider) ID() string {
	return m.id
}

func (m *mockProvider) Complete(ctx context.Context, req *CompletionRequest) (*GenerationResult, error) {
	m.mu.Lock()
	m.callCount++
	m.lastRequest = req
	m.mu.Unlock()

	if m.completeFunc != nil {
		return m.completeFunc(ctx, req)
	}
	return &GenerationResult{
		GenerationChunk: *chunkWith("cmpl-1", "Hello!", FinishReasonStop),
		Usage:           TokenUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
	}, nil
}

func (m *mockProvider) Edit(ctx context.Context, req *EditRequest) (*GenerationResult, error) {
	m.mu.Lock()
	m.callCount++
	m.lastEdit = req
	m.mu.Unlock()

	if m.editFunc != nil {
		return m.editFunc(ctx, req)
	}
	return &GenerationResult{GenerationChunk: *chunkWith("edit-1", "Fixed text", "")}, nil
}

func (m *mockProvider) StreamComplete(ctx context.Context, req *CompletionRequest) (*CompletionStream, error) {
	m.mu.Lock()
	m.callCount++
	m.lastRequest = req
	m.mu.Unlock()

	if m.streamFunc != nil {
		return m.streamFunc(ctx, req)
	}
	return closedStream(
		[]*GenerationChunk{testChunk("Hel", ""), testChunk("lo", FinishReasonStop)},
		nil,
		&StreamResult{ID: "cmpl-1", Text: "Hello", FinishReason: FinishReasonStop, Chunks: 2},
	), nil
}

func (m *mockProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func chunkWith(id, text string, reason FinishReason) *GenerationChunk {
	return &GenerationChunk{
		ID:      id,
		Object:  "text_completion",
		Choices: []Choice{{Index: 0, Text: text, FinishReason: reason}},
	}
}

func waitEnded(t *testing.T, hook *testTelemetryHook) {
	t.Helper()
	select {
	case <-hook.ended:
	case <-time.After(5 * time.Second):
		t.Fatal("telemetry end event not emitted")
	}
}

func TestNewClient(t *testing.T) {
	p := &mockProvider{id: "test"}
	c := NewClient(p)

	if c == nil {
		t.Fatal("NewClient returned nil")
	}
	if c.Provider() != p {
		t.Error("provider not set correctly")
	}
	if _, ok := c.telemetry.(NoopTelemetryHook); !ok {
		t.Errorf("default telemetry = %T, want NoopTelemetryHook", c.telemetry)
	}
}

func TestNewClientWithTelemetry(t *testing.T) {
	hook := newTestTelemetryHook()
	c := NewClient(&mockProvider{id: "test"}, WithTelemetry(hook))

	if c.telemetry != hook {
		t.Error("telemetry hook not set")
	}

	c = NewClient(&mockProvider{id: "test"}, WithTelemetry(nil))
	if _, ok := c.telemetry.(NoopTelemetryHook); !ok {
		t.Error("nil hook should keep the no-op default")
	}
}

func TestCompletionBuilderFluentAPI(t *testing.T) {
	c := NewClient(&mockProvider{id: "test"})

	req := c.Completion("text-davinci-003").
		Prompt("Say hi").
		MaxTokens(64).
		Stop("\n", "END").
		Echo(true).
		Request()

	if req.Model != "text-davinci-003" {
		t.Errorf("Model = %q", req.Model)
	}
	if req.Prompt != "Say hi" {
		t.Errorf("Prompt = %q", req.Prompt)
	}
	if req.MaxTokens != 64 {
		t.Errorf("MaxTokens = %d, want 64", req.MaxTokens)
	}
	if len(req.Stop) != 2 || req.Stop[1] != "END" {
		t.Errorf("Stop = %v", req.Stop)
	}
	if !req.Echo {
		t.Error("Echo = false, want true")
	}
}

func TestCompletionBuilderDefaults(t *testing.T) {
	req := NewClient(&mockProvider{id: "test"}).Completion("m").Prompt("p").Request()

	if req.MaxTokens != DefaultMaxTokens {
		t.Errorf("MaxTokens = %d, want %d", req.MaxTokens, DefaultMaxTokens)
	}
	if req.Stop != nil || req.Echo {
		t.Errorf("optional fields set by default: %+v", req)
	}
}

func TestCompletionBuilderCloneIsIndependent(t *testing.T) {
	base := NewClient(&mockProvider{id: "test"}).Completion("m").Prompt("p").Stop("a")
	clone := base.Clone().Prompt("q").Stop("b", "c")

	if base.Request().Prompt != "p" {
		t.Errorf("base prompt changed to %q", base.Request().Prompt)
	}
	if got := base.Request().Stop; len(got) != 1 || got[0] != "a" {
		t.Errorf("base stop changed to %v", got)
	}
	if clone.Request().Prompt != "q" {
		t.Errorf("clone prompt = %q, want q", clone.Request().Prompt)
	}
}

func TestCompletionValidation(t *testing.T) {
	c := NewClient(&mockProvider{id: "test"})

	tests := []struct {
		name    string
		builder *CompletionBuilder
		want    error
	}{
		{"model required", c.Completion("").Prompt("p"), ErrModelRequired},
		{"prompt required", c.Completion("m"), ErrPromptRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.builder.GetResponse(context.Background()); !errors.Is(err, tt.want) {
				t.Errorf("GetResponse() error = %v, want %v", err, tt.want)
			}
			if _, err := tt.builder.Stream(context.Background()); !errors.Is(err, tt.want) {
				t.Errorf("Stream() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEditValidation(t *testing.T) {
	c := NewClient(&mockProvider{id: "test"})

	if _, err := c.Edit("").Instruction("i").GetResponse(context.Background()); !errors.Is(err, ErrModelRequired) {
		t.Errorf("error = %v, want ErrModelRequired", err)
	}
	if _, err := c.Edit("m").Input("x").GetResponse(context.Background()); !errors.Is(err, ErrInstructionRequired) {
		t.Errorf("error = %v, want ErrInstructionRequired", err)
	}
}

func TestValidationDoesNotCallProvider(t *testing.T) {
	p := &mockProvider{id: "test"}
	c := NewClient(p)

	c.Completion("m").GetResponse(context.Background())
	c.Completion("m").Stream(context.Background())
	c.Edit("m").GetResponse(context.Background())

	if p.calls() != 0 {
		t.Errorf("provider called %d times, want 0", p.calls())
	}
}

func TestCompletionGetResponse(t *testing.T) {
	p := &mockProvider{id: "test"}
	c := NewClient(p)

	resp, err := c.Completion("text-davinci-003").Prompt("Say hi").GetResponse(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "Hello!" {
		t.Errorf("Text() = %q, want Hello!", resp.Text())
	}
	if p.lastRequest.Prompt != "Say hi" || p.lastRequest.MaxTokens != DefaultMaxTokens {
		t.Errorf("provider got %+v", p.lastRequest)
	}
}

func TestEditGetResponse(t *testing.T) {
	p := &mockProvider{id: "test"}
	c := NewClient(p)

	resp, err := c.Edit("text-davinci-edit-001").
		Instruction("Fix the spelling mistakes").
		Input("Wat day of the wek is it?").
		GetResponse(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "Fixed text" {
		t.Errorf("Text() = %q", resp.Text())
	}
	if p.lastEdit.Instruction != "Fix the spelling mistakes" || p.lastEdit.Input != "Wat day of the wek is it?" {
		t.Errorf("provider got %+v", p.lastEdit)
	}
}

func TestEditEmptyInputAllowed(t *testing.T) {
	p := &mockProvider{id: "test"}

	_, err := NewClient(p).Edit("m").Instruction("Write a haiku").GetResponse(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.lastEdit.Input != "" {
		t.Errorf("Input = %q, want empty", p.lastEdit.Input)
	}
}

func TestGetResponseTelemetry(t *testing.T) {
	hook := newTestTelemetryHook()
	c := NewClient(&mockProvider{id: "test"}, WithTelemetry(hook))

	if _, err := c.Completion("m").Prompt("p").GetResponse(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	starts, ends := hook.events()
	if len(starts) != 1 || len(ends) != 1 {
		t.Fatalf("events = %d/%d, want 1/1", len(starts), len(ends))
	}
	if starts[0].Provider != "test" || starts[0].Operation != OperationComplete || starts[0].Model != "m" {
		t.Errorf("start = %+v", starts[0])
	}
	end := ends[0]
	if end.Err != nil {
		t.Errorf("end.Err = %v", end.Err)
	}
	if end.Usage.TotalTokens != 5 {
		t.Errorf("end.Usage.TotalTokens = %d, want 5", end.Usage.TotalTokens)
	}
	if end.FinishReason != FinishReasonStop {
		t.Errorf("end.FinishReason = %q, want stop", end.FinishReason)
	}
	if end.Duration() < 0 {
		t.Errorf("negative duration %v", end.Duration())
	}
}

func TestEditTelemetryRecordsError(t *testing.T) {
	hook := newTestTelemetryHook()
	providerErr := &ProviderError{Provider: "test", Status: 401, Err: ErrUnauthorized}
	p := &mockProvider{
		id: "test",
		editFunc: func(context.Context, *EditRequest) (*GenerationResult, error) {
			return nil, providerErr
		},
	}
	c := NewClient(p, WithTelemetry(hook))

	_, err := c.Edit("m").Instruction("i").GetResponse(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}

	_, ends := hook.events()
	if len(ends) != 1 || ends[0].Operation != OperationEdit || !errors.Is(ends[0].Err, ErrUnauthorized) {
		t.Errorf("end events = %+v", ends)
	}
}

func TestGetResponseDoesNotRetry(t *testing.T) {
	p := &mockProvider{
		id: "test",
		completeFunc: func(context.Context, *CompletionRequest) (*GenerationResult, error) {
			return nil, &ProviderError{Provider: "test", Status: 503, Err: ErrServer}
		},
	}

	_, err := NewClient(p).Completion("m").Prompt("p").GetResponse(context.Background())
	if !errors.Is(err, ErrServer) {
		t.Errorf("error = %v, want ErrServer", err)
	}
	if p.calls() != 1 {
		t.Errorf("provider called %d times, want 1", p.calls())
	}
}

func TestGetResponseContextPassedThrough(t *testing.T) {
	p := &mockProvider{
		id: "test",
		completeFunc: func(ctx context.Context, _ *CompletionRequest) (*GenerationResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(p).Completion("m").Prompt("p").GetResponse(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestStreamSuccess(t *testing.T) {
	c := NewClient(&mockProvider{id: "test"})

	stream, err := c.Completion("m").Prompt("p").Stream(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := DrainStream(context.Background(), stream)
	if err != nil {
		t.Fatalf("DrainStream error: %v", err)
	}
	if result.Text != "Hello" || result.FinishReason != FinishReasonStop {
		t.Errorf("result = %+v", result)
	}
}

func TestStreamTelemetry(t *testing.T) {
	hook := newTestTelemetryHook()
	c := NewClient(&mockProvider{id: "test"}, WithTelemetry(hook))

	stream, err := c.Completion("m").Prompt("p").Stream(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := DrainStream(context.Background(), stream); err != nil {
		t.Fatalf("DrainStream error: %v", err)
	}
	waitEnded(t, hook)

	starts, ends := hook.events()
	if len(starts) != 1 || starts[0].Operation != OperationStreamComplete {
		t.Errorf("start events = %+v", starts)
	}
	if len(ends) != 1 {
		t.Fatalf("end events = %d, want 1", len(ends))
	}
	if ends[0].Err != nil || ends[0].FinishReason != FinishReasonStop {
		t.Errorf("end = %+v", ends[0])
	}
}

func TestStreamTelemetryRecordsStreamError(t *testing.T) {
	hook := newTestTelemetryHook()
	streamErr := NewStreamError("test", errors.New("reset"))
	p := &mockProvider{
		id: "test",
		streamFunc: func(context.Context, *CompletionRequest) (*CompletionStream, error) {
			return closedStream([]*GenerationChunk{testChunk("a", "")}, streamErr, nil), nil
		},
	}
	c := NewClient(p, WithTelemetry(hook))

	stream, err := c.Completion("m").Prompt("p").Stream(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := DrainStream(context.Background(), stream); !errors.Is(err, ErrStream) {
		t.Errorf("DrainStream error = %v, want ErrStream", err)
	}
	waitEnded(t, hook)

	_, ends := hook.events()
	if !errors.Is(ends[0].Err, ErrStream) {
		t.Errorf("end.Err = %v, want ErrStream", ends[0].Err)
	}
}

func TestStreamOpenErrorRecorded(t *testing.T) {
	hook := newTestTelemetryHook()
	p := &mockProvider{
		id: "test",
		streamFunc: func(context.Context, *CompletionRequest) (*CompletionStream, error) {
			return nil, &ProviderError{Provider: "test", Err: ErrNoCredential}
		},
	}
	c := NewClient(p, WithTelemetry(hook))

	stream, err := c.Completion("m").Prompt("p").Stream(context.Background())
	if stream != nil {
		t.Error("expected nil stream")
	}
	if !errors.Is(err, ErrNoCredential) {
		t.Errorf("error = %v, want ErrNoCredential", err)
	}

	_, ends := hook.events()
	if len(ends) != 1 || !errors.Is(ends[0].Err, ErrNoCredential) {
		t.Errorf("end events = %+v", ends)
	}
}

func TestStreamCloseReachesProvider(t *testing.T) {
	closed := make(chan struct{})
	p := &mockProvider{
		id: "test",
		streamFunc: func(ctx context.Context, _ *CompletionRequest) (*CompletionStream, error) {
			s := NewStreamSession(ctx, SessionConfig{Provider: "test"})
			s.Attach(func() { close(closed) })
			return s.Stream(), nil
		},
	}

	stream, err := NewClient(p).Completion("m").Prompt("p").Stream(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stream.Close()

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not release the provider stream")
	}
	if err, ok := <-stream.Err; ok {
		t.Errorf("closed stream delivered error %v", err)
	}
}

func TestClientConcurrentUse(t *testing.T) {
	p := &mockProvider{id: "test"}
	c := NewClient(p)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Completion("m").Prompt("p").GetResponse(context.Background()); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if p.calls() != 10 {
		t.Errorf("provider called %d times, want 10", p.calls())
	}
}
