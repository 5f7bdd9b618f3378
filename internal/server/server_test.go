package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lingoflow-ai/lingoflow/internal/event"
	"github.com/lingoflow-ai/lingoflow/internal/history"
	"github.com/lingoflow-ai/lingoflow/internal/logging"
	"github.com/lingoflow-ai/lingoflow/internal/provider"
	"github.com/lingoflow-ai/lingoflow/internal/settings"
	"github.com/lingoflow-ai/lingoflow/internal/translator"
	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

func TestMain(m *testing.M) {
	logging.Init(logging.Config{Level: logging.FatalLevel, Output: io.Discard})
	os.Exit(m.Run())
}

// fakeProvider streams scripted chunks.
type fakeProvider struct {
	chunks []string
	err    error
}

func (f *fakeProvider) ID() string   { return "fake" }
func (f *fakeProvider) Name() string { return "Fake" }

func (f *fakeProvider) Translate(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig) (types.TranslationResult, error) {
	return f.TranslateStream(ctx, req, cfg, provider.Callbacks{})
}

func (f *fakeProvider) TranslateStream(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig, cb provider.Callbacks) (types.TranslationResult, error) {
	if f.err != nil {
		if cb.OnError != nil {
			cb.OnError(f.err)
		}
		return types.TranslationResult{}, f.err
	}
	var acc string
	for _, c := range f.chunks {
		acc += c
		if cb.OnContent != nil {
			cb.OnContent(acc)
		}
	}
	if cb.OnDone != nil {
		cb.OnDone(acc, "")
	}
	return types.TranslationResult{Text: acc}, nil
}

func (f *fakeProvider) FetchModels(ctx context.Context, cfg types.ProviderConfig) []types.Model {
	return []types.Model{{ID: "fake-model", ProviderID: "fake"}}
}

func newTestServer(t *testing.T, p provider.Provider) *Server {
	t.Helper()
	reg := provider.NewRegistry()
	reg.Register(p)

	bus := event.NewBus()
	t.Cleanup(func() { bus.Close() })

	store, err := history.Open(filepath.Join(t.TempDir(), "h.db"), 10)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settingsStore, err := settings.Open(filepath.Join(t.TempDir(), "settings.json"), bus)
	if err != nil {
		t.Fatalf("settings.Open: %v", err)
	}

	cfg := &types.Config{
		Model: "fake/fake-model",
		Provider: map[string]types.ProviderConfig{
			"fake": {APIKey: "secret-key"},
		},
	}
	svc := translator.New(reg, bus, store, nil, cfg)
	return New(DefaultConfig(), cfg, svc, store, settingsStore, bus)
}

// sseEvents parses "event:"/"data:" pairs from an SSE body.
func sseEvents(t *testing.T, body string) []struct{ Event, Data string } {
	t.Helper()
	var out []struct{ Event, Data string }
	var cur struct{ Event, Data string }
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			cur.Event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			cur.Data = strings.TrimPrefix(line, "data: ")
		case line == "" && cur.Event != "":
			out = append(out, cur)
			cur = struct{ Event, Data string }{}
		}
	}
	return out
}

func TestTranslateStreamsSSE(t *testing.T) {
	s := newTestServer(t, &fakeProvider{chunks: []string{"Ho", "la"}})

	req := httptest.NewRequest("POST", "/translate", strings.NewReader(
		`{"text":"Hello","sourceLang":"English","targetLang":"Spanish"}`))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	events := sseEvents(t, rec.Body.String())
	var kinds []string
	for _, e := range events {
		kinds = append(kinds, e.Event)
	}
	want := []string{"content", "content", "done"}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, kinds[i], want[i])
		}
	}

	var done struct{ Text string }
	json.Unmarshal([]byte(events[len(events)-1].Data), &done)
	if done.Text != "Hola" {
		t.Errorf("done text = %q", done.Text)
	}
}

func TestTranslateErrorEvent(t *testing.T) {
	s := newTestServer(t, &fakeProvider{err: &provider.TransportError{StatusCode: 500, Message: "upstream broke"}})

	req := httptest.NewRequest("POST", "/translate", strings.NewReader(
		`{"text":"Hello","targetLang":"Spanish"}`))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	events := sseEvents(t, rec.Body.String())
	if len(events) != 1 || events[0].Event != "error" {
		t.Fatalf("events = %v, want one error", events)
	}
	var data struct{ Code, Message string }
	json.Unmarshal([]byte(events[0].Data), &data)
	if data.Code != ErrCodeProviderError || data.Message != "upstream broke" {
		t.Errorf("error data = %+v", data)
	}
}

func TestTranslateValidation(t *testing.T) {
	s := newTestServer(t, &fakeProvider{chunks: []string{"x"}})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing target", `{"text":"hi"}`},
		{"malformed json", `{`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/translate", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			s.Router().ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCancelEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeProvider{chunks: []string{"x"}})

	req := httptest.NewRequest("POST", "/translate/cancel", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestListModels(t *testing.T) {
	s := newTestServer(t, &fakeProvider{chunks: []string{"x"}})

	req := httptest.NewRequest("GET", "/models", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var body struct{ Models []types.Model }
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Models) != 1 || body.Models[0].ID != "fake-model" {
		t.Errorf("models = %v", body.Models)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	s := newTestServer(t, &fakeProvider{chunks: []string{"Hola"}})

	// Run a translation so something lands in history.
	req := httptest.NewRequest("POST", "/translate", strings.NewReader(
		`{"text":"Hello","targetLang":"Spanish"}`))
	s.Router().ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("GET", "/history/", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var body struct{ Records []types.HistoryRecord }
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Records) != 1 || body.Records[0].TranslatedText != "Hola" {
		t.Fatalf("records = %v", body.Records)
	}
	id := body.Records[0].ID

	// Fetch one record.
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/history/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("get record status = %d", rec.Code)
	}

	// Delete it.
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("DELETE", "/history/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("delete status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/history/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get deleted record status = %d, want 404", rec.Code)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	s := newTestServer(t, &fakeProvider{chunks: []string{"x"}})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("PUT", "/settings/", strings.NewReader(
		`{"path":"theme","value":"dark"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/settings/", nil))
	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc["theme"] != "dark" {
		t.Errorf("settings = %v", doc)
	}

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("PUT", "/settings/", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("put without path status = %d", rec.Code)
	}
}

func TestConfigRedactsKeys(t *testing.T) {
	s := newTestServer(t, &fakeProvider{chunks: []string{"x"}})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/config", nil))

	if strings.Contains(rec.Body.String(), "secret-key") {
		t.Error("API key leaked in /config response")
	}
	var cfg types.Config
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.Provider["fake"].APIKey != "redacted" {
		t.Errorf("APIKey = %q", cfg.Provider["fake"].APIKey)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeProvider{chunks: []string{"x"}})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestEventStream(t *testing.T) {
	s := newTestServer(t, &fakeProvider{chunks: []string{"x"}})
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", srv.URL+"/event", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /event: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(line, "event: message") {
		t.Errorf("first line = %q", line)
	}
	data, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(data, "server.connected") {
		t.Errorf("connected event = %q", data)
	}
	cancel()
}
