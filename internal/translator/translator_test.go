package translator

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/lingoflow-ai/lingoflow/internal/event"
	"github.com/lingoflow-ai/lingoflow/internal/history"
	"github.com/lingoflow-ai/lingoflow/internal/logging"
	"github.com/lingoflow-ai/lingoflow/internal/provider"
	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

func TestMain(m *testing.M) {
	logging.Init(logging.Config{Level: logging.FatalLevel, Output: io.Discard})
	goleak.VerifyTestMain(m)
}

// fakeProvider streams a scripted sequence of chunks through the
// normalized callback model. The first blockCalls invocations stall
// after the first chunk until their context is cancelled.
type fakeProvider struct {
	id         string
	chunks     []string
	err        error
	blockCalls int

	mu    sync.Mutex
	calls int
}

func (f *fakeProvider) ID() string   { return f.id }
func (f *fakeProvider) Name() string { return f.id }

func (f *fakeProvider) Translate(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig) (types.TranslationResult, error) {
	res, err := f.TranslateStream(ctx, req, cfg, provider.Callbacks{})
	return res, err
}

func (f *fakeProvider) TranslateStream(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig, cb provider.Callbacks) (types.TranslationResult, error) {
	if f.err != nil {
		if cb.OnError != nil {
			cb.OnError(f.err)
		}
		return types.TranslationResult{}, f.err
	}

	f.mu.Lock()
	f.calls++
	blocked := f.calls <= f.blockCalls
	f.mu.Unlock()

	var acc string
	for _, chunk := range f.chunks {
		if ctx.Err() != nil {
			return types.TranslationResult{}, provider.ErrCancelled
		}
		acc += chunk
		if cb.OnContent != nil {
			cb.OnContent(acc)
		}
		if blocked {
			<-ctx.Done()
			return types.TranslationResult{}, provider.ErrCancelled
		}
	}
	if cb.OnDone != nil {
		cb.OnDone(acc, "")
	}
	return types.TranslationResult{Text: acc}, nil
}

func (f *fakeProvider) FetchModels(ctx context.Context, cfg types.ProviderConfig) []types.Model {
	return []types.Model{{ID: "fake-model", ProviderID: f.id}}
}

func newTestService(t *testing.T, p provider.Provider, withStore bool) (*Service, *event.Bus, *history.Store) {
	t.Helper()
	reg := provider.NewRegistry()
	reg.Register(p)

	bus := event.NewBus()
	t.Cleanup(func() { bus.Close() })

	var store *history.Store
	if withStore {
		var err error
		store, err = history.Open(filepath.Join(t.TempDir(), "h.db"), 10)
		if err != nil {
			t.Fatalf("history.Open: %v", err)
		}
		t.Cleanup(func() { store.Close() })
	}

	cfg := &types.Config{Model: p.ID() + "/fake-model"}
	return New(reg, bus, store, nil, cfg), bus, store
}

func TestTranslatePublishesOrderedEvents(t *testing.T) {
	fake := &fakeProvider{id: "fake", chunks: []string{"Ho", "la"}}
	svc, bus, _ := newTestService(t, fake, false)

	var mu sync.Mutex
	var seen []event.Type
	var content []string
	bus.SubscribeAll(func(e event.Event) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.Type)
		if e.Type == event.TranslationContent {
			content = append(content, e.Data.(event.TranslationProgressData).Text)
		}
	})

	res, err := svc.Translate(context.Background(), types.TranslationRequest{SourceText: "Hello"}, "", "", provider.Callbacks{})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "Hola" {
		t.Errorf("result = %q", res.Text)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []event.Type{
		event.TranslationStarted,
		event.TranslationContent,
		event.TranslationContent,
		event.TranslationDone,
	}
	if len(seen) != len(want) {
		t.Fatalf("events = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, seen[i], want[i])
		}
	}
	if content[0] != "Ho" || content[1] != "Hola" {
		t.Errorf("content events = %v", content)
	}
}

func TestTranslateRecordsHistory(t *testing.T) {
	fake := &fakeProvider{id: "fake", chunks: []string{"Hola"}}
	svc, _, store := newTestService(t, fake, true)

	_, err := svc.Translate(context.Background(), types.TranslationRequest{
		SourceText: "Hello", SourceLang: "en", TargetLang: "es",
	}, "", "", provider.Callbacks{})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	recs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("history len = %d, want 1", len(recs))
	}
	if recs[0].TranslatedText != "Hola" || recs[0].Provider != "fake" {
		t.Errorf("record = %+v", recs[0])
	}
}

func TestTranslateErrorDoesNotRecord(t *testing.T) {
	fake := &fakeProvider{id: "fake", err: errors.New("boom")}
	svc, bus, store := newTestService(t, fake, true)

	var gotErr bool
	bus.Subscribe(event.TranslationError, func(e event.Event) { gotErr = true })

	_, err := svc.Translate(context.Background(), types.TranslationRequest{SourceText: "x"}, "", "", provider.Callbacks{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !gotErr {
		t.Error("no translation.error event published")
	}

	recs, _ := store.List(context.Background())
	if len(recs) != 0 {
		t.Errorf("failed translation was recorded: %v", recs)
	}
}

func TestCancelAbortsRunning(t *testing.T) {
	fake := &fakeProvider{id: "fake", chunks: []string{"a", "b"}, blockCalls: 1}
	svc, bus, store := newTestService(t, fake, true)

	var cancelled bool
	var mu sync.Mutex
	bus.Subscribe(event.TranslationCancelled, func(e event.Event) {
		mu.Lock()
		cancelled = true
		mu.Unlock()
	})

	errCh := make(chan error, 1)
	started := make(chan struct{})
	go func() {
		_, err := svc.Translate(context.Background(), types.TranslationRequest{SourceText: "x"}, "", "", provider.Callbacks{
			OnContent: func(string) {
				select {
				case started <- struct{}{}:
				default:
				}
			},
		})
		errCh <- err
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("translation never started")
	}
	svc.Cancel()

	select {
	case err := <-errCh:
		if !provider.IsCancelled(err) {
			t.Errorf("err = %v, want cancellation", err)
		}
	case <-time.After(time.Second):
		t.Fatal("translation did not stop after Cancel")
	}

	mu.Lock()
	if !cancelled {
		t.Error("no translation.cancelled event published")
	}
	mu.Unlock()

	recs, _ := store.List(context.Background())
	if len(recs) != 0 {
		t.Errorf("cancelled translation was recorded: %v", recs)
	}
	if svc.State() != StateIdle {
		t.Errorf("state = %v after cancel, want idle", svc.State())
	}
}

func TestNewTranslationCancelsPrevious(t *testing.T) {
	blocked := &fakeProvider{id: "fake", chunks: []string{"a", "b"}, blockCalls: 1}
	svc, _, _ := newTestService(t, blocked, false)

	firstErr := make(chan error, 1)
	started := make(chan struct{})
	go func() {
		_, err := svc.Translate(context.Background(), types.TranslationRequest{SourceText: "first"}, "", "", provider.Callbacks{
			OnContent: func(string) {
				select {
				case started <- struct{}{}:
				default:
				}
			},
		})
		firstErr <- err
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first translation never started")
	}

	// A second call must cancel the first and run to completion.
	_, err := svc.Translate(context.Background(), types.TranslationRequest{SourceText: "second"}, "", "", provider.Callbacks{})
	if err != nil {
		t.Fatalf("second Translate: %v", err)
	}

	select {
	case err := <-firstErr:
		if !provider.IsCancelled(err) {
			t.Errorf("first err = %v, want cancellation", err)
		}
	case <-time.After(time.Second):
		t.Fatal("first translation never returned")
	}
}

func TestTranslateUnknownProvider(t *testing.T) {
	fake := &fakeProvider{id: "fake", chunks: []string{"x"}}
	svc, _, _ := newTestService(t, fake, false)

	var cbErr error
	_, err := svc.Translate(context.Background(), types.TranslationRequest{SourceText: "x"}, "nope", "", provider.Callbacks{
		OnError: func(e error) { cbErr = e },
	})
	if !errors.Is(err, provider.ErrUnknownProvider) {
		t.Fatalf("err = %v, want ErrUnknownProvider", err)
	}
	if !errors.Is(cbErr, provider.ErrUnknownProvider) {
		t.Errorf("OnError got %v", cbErr)
	}
}

func TestModels(t *testing.T) {
	fake := &fakeProvider{id: "fake", chunks: []string{"x"}}
	svc, _, _ := newTestService(t, fake, false)

	models := svc.Models(context.Background())
	if len(models) != 1 || models[0].ID != "fake-model" {
		t.Errorf("models = %v", models)
	}
}
