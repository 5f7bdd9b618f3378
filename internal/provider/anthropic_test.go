package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

func TestAnthropicStreamTypedBlocks(t *testing.T) {
	srv := sseServer(t,
		`{"type":"message_start"}`,
		`{"type":"content_block_start","content_block":{"type":"thinking"}}`,
		`{"type":"content_block_delta","delta":{"type":"thinking_delta","thinking":"plan"}}`,
		`{"type":"content_block_stop"}`,
		`{"type":"content_block_start","content_block":{"type":"text"}}`,
		`{"type":"content_block_delta","delta":{"type":"text_delta","text":"Ho"}}`,
		`{"type":"content_block_delta","delta":{"type":"text_delta","text":"la"}}`,
		`{"type":"message_stop"}`,
	)
	defer srv.Close()

	var rec recorder
	p := NewAnthropic()
	cfg := types.ProviderConfig{APIKey: "k", BaseURL: srv.URL}
	res, err := p.TranslateStream(context.Background(), testReq, cfg, rec.callbacks())
	if err != nil {
		t.Fatalf("TranslateStream: %v", err)
	}

	if !reflect.DeepEqual(rec.reasoning, []string{"plan"}) {
		t.Errorf("reasoning callbacks = %v", rec.reasoning)
	}
	if !reflect.DeepEqual(rec.content, []string{"Ho", "Hola"}) {
		t.Errorf("content callbacks = %v", rec.content)
	}
	if res.Text != "Hola" || res.Reasoning != "plan" {
		t.Errorf("result = %+v", res)
	}
	if rec.doneCount != 1 {
		t.Errorf("OnDone fired %d times, want 1", rec.doneCount)
	}
}

func TestAnthropicStreamErrorEvent(t *testing.T) {
	srv := sseServer(t,
		`{"type":"message_start"}`,
		`{"type":"error","error":{"type":"overloaded_error","message":"overloaded"}}`,
	)
	defer srv.Close()

	var rec recorder
	p := NewAnthropic()
	cfg := types.ProviderConfig{APIKey: "k", BaseURL: srv.URL}
	_, err := p.TranslateStream(context.Background(), testReq, cfg, rec.callbacks())

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if te.Message != "overloaded" {
		t.Errorf("message = %q, want %q", te.Message, "overloaded")
	}
	if rec.doneCount != 0 {
		t.Error("OnDone fired after an error event")
	}
	if len(rec.errs) != 1 {
		t.Errorf("OnError fired %d times, want 1", len(rec.errs))
	}
}

func TestAnthropicMissingKey(t *testing.T) {
	p := NewAnthropic()
	_, err := p.Translate(context.Background(), testReq, types.ProviderConfig{})
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
}

func TestAnthropicTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "k" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != anthropicVersion {
			t.Errorf("anthropic-version = %q", got)
		}
		fmt.Fprint(w, `{"content":[{"type":"thinking","thinking":"plan"},{"type":"text","text":"Hola"}]}`)
	}))
	defer srv.Close()

	p := NewAnthropic()
	cfg := types.ProviderConfig{APIKey: "k", BaseURL: srv.URL}
	res, err := p.Translate(context.Background(), testReq, cfg)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "Hola" || res.Reasoning != "plan" {
		t.Errorf("result = %+v", res)
	}
}

func TestAnthropicFetchModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":"claude-3-5-haiku-latest","display_name":"Claude 3.5 Haiku"}]}`)
	}))
	defer srv.Close()

	p := NewAnthropic()
	models := p.FetchModels(context.Background(), types.ProviderConfig{APIKey: "k", BaseURL: srv.URL})
	if len(models) != 1 || models[0].Name != "Claude 3.5 Haiku" {
		t.Errorf("models = %v", models)
	}
}
