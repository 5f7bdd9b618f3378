package stream

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"
)

// testParser decodes {"text": "..."} payloads into content events.
func testParser(payload []byte) []Event {
	var frame struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return nil
	}
	if frame.Text == nil {
		return nil
	}
	return []Event{Content(*frame.Text)}
}

// decodeAll runs a full byte sequence through a fresh decoder split at
// the given boundary, then flushes.
func decodeSplit(t *testing.T, newDecoder func() Decoder, input []byte, at int) []Event {
	t.Helper()
	d := newDecoder()
	events := d.Decode(input[:at])
	events = append(events, d.Decode(input[at:])...)
	return append(events, d.Flush()...)
}

func TestSSEDecoder_ChunkBoundaryInvariance(t *testing.T) {
	input := []byte("data: {\"text\":\"Hel\"}\n\ndata: {\"text\":\"lo\"}\n\ndata: [DONE]\n\n")
	newDecoder := func() Decoder { return NewSSEDecoder(testParser) }

	d := newDecoder()
	want := append(d.Decode(input), d.Flush()...)

	for at := 0; at <= len(input); at++ {
		got := decodeSplit(t, newDecoder, input, at)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("split at %d: got %v, want %v", at, got, want)
		}
	}
}

func TestSSEDecoder_PartialLineRebuffered(t *testing.T) {
	d := NewSSEDecoder(testParser)

	events := d.Decode([]byte("data: {\"te"))
	if len(events) != 0 {
		t.Fatalf("partial line produced events: %v", events)
	}

	events = d.Decode([]byte("xt\":\"hi\"}\n"))
	if len(events) != 1 || events[0] != Content("hi") {
		t.Fatalf("got %v, want single content event", events)
	}
}

func TestSSEDecoder_DoneSentinel(t *testing.T) {
	d := NewSSEDecoder(testParser)

	events := d.Decode([]byte("data: {\"text\":\"a\"}\ndata: [DONE]\ndata: {\"text\":\"late\"}\n"))
	want := []Event{Content("a"), Done()}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("got %v, want %v", events, want)
	}

	// Nothing after Done, not even from Flush.
	if extra := d.Decode([]byte("data: {\"text\":\"more\"}\n")); extra != nil {
		t.Errorf("events after Done: %v", extra)
	}
	if extra := d.Flush(); extra != nil {
		t.Errorf("flush after Done: %v", extra)
	}
}

func TestSSEDecoder_SkipsMalformedAndComments(t *testing.T) {
	d := NewSSEDecoder(testParser)

	input := []byte(": heartbeat\nevent: ping\ndata: {not json}\ndata: {\"text\":\"ok\"}\n")
	events := d.Decode(input)
	want := []Event{Content("ok")}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("got %v, want %v", events, want)
	}
}

func TestSSEDecoder_FlushEmitsSingleDone(t *testing.T) {
	d := NewSSEDecoder(testParser)
	d.Decode([]byte("data: {\"text\":\"x\"}\n"))

	events := d.Flush()
	if !reflect.DeepEqual(events, []Event{Done()}) {
		t.Fatalf("got %v, want [Done]", events)
	}
	if extra := d.Flush(); extra != nil {
		t.Errorf("second flush produced events: %v", extra)
	}
}

func ollamaTestParser(payload []byte) []Event {
	var frame struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Done bool `json:"done"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return nil
	}
	var events []Event
	if frame.Message.Content != "" {
		events = append(events, Content(frame.Message.Content))
	}
	if frame.Done {
		events = append(events, Done())
	}
	return events
}

func TestNDJSONDecoder_Stream(t *testing.T) {
	d := NewNDJSONDecoder(ollamaTestParser)

	input := "{\"message\":{\"content\":\"Bon\"},\"done\":false}\n" +
		"not json at all\n" +
		"{\"message\":{\"content\":\"jour\"},\"done\":false}\n" +
		"{\"message\":{\"content\":\"\"},\"done\":true}\n"

	events := d.Decode([]byte(input))
	want := []Event{Content("Bon"), Content("jour"), Done()}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("got %v, want %v", events, want)
	}
	if extra := d.Flush(); extra != nil {
		t.Errorf("flush after done: %v", extra)
	}
}

func TestNDJSONDecoder_ChunkBoundaryInvariance(t *testing.T) {
	input := []byte("{\"message\":{\"content\":\"He\"},\"done\":false}\n" +
		"{\"message\":{\"content\":\"j\"},\"done\":false}\n" +
		"{\"message\":{\"content\":\"\"},\"done\":true}\n")
	newDecoder := func() Decoder { return NewNDJSONDecoder(ollamaTestParser) }

	d := newDecoder()
	want := append(d.Decode(input), d.Flush()...)

	for at := 0; at <= len(input); at++ {
		got := decodeSplit(t, newDecoder, input, at)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("split at %d: got %v, want %v", at, got, want)
		}
	}
}

func typedEvent(typ, body string) string {
	return fmt.Sprintf("event: %s\ndata: {\"type\":\"%s\"%s}\n\n", typ, typ, body)
}

func TestTypedDecoder_ContentAndThinking(t *testing.T) {
	d := NewTypedDecoder()

	input := typedEvent("message_start", "") +
		typedEvent("content_block_start", ",\"content_block\":{\"type\":\"thinking\"}") +
		typedEvent("content_block_delta", ",\"delta\":{\"type\":\"thinking_delta\",\"thinking\":\"plan\"}") +
		typedEvent("content_block_stop", "") +
		typedEvent("content_block_start", ",\"content_block\":{\"type\":\"text\"}") +
		typedEvent("content_block_delta", ",\"delta\":{\"type\":\"text_delta\",\"text\":\"Hola\"}") +
		typedEvent("content_block_stop", "") +
		typedEvent("message_stop", "")

	events := append(d.Decode([]byte(input)), d.Flush()...)
	want := []Event{Reasoning("plan"), Content("Hola"), Done()}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("got %v, want %v", events, want)
	}
}

func TestTypedDecoder_ChunkBoundaryInvariance(t *testing.T) {
	input := []byte(typedEvent("content_block_start", ",\"content_block\":{\"type\":\"text\"}") +
		typedEvent("content_block_delta", ",\"delta\":{\"type\":\"text_delta\",\"text\":\"Hi\"}") +
		typedEvent("message_stop", ""))
	newDecoder := func() Decoder { return NewTypedDecoder() }

	d := newDecoder()
	want := append(d.Decode(input), d.Flush()...)

	for at := 0; at <= len(input); at++ {
		got := decodeSplit(t, newDecoder, input, at)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("split at %d: got %v, want %v", at, got, want)
		}
	}
}

func TestTypedDecoder_ErrorEvent(t *testing.T) {
	d := NewTypedDecoder()

	input := "data: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"overloaded\"}}\n"
	events := d.Decode([]byte(input))
	want := []Event{Errorf("overloaded")}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("got %v, want %v", events, want)
	}
}
