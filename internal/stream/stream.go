// Package stream provides incremental decoders that turn raw network
// bytes from a provider's streaming response into a uniform sequence of
// events.
//
// Three framing disciplines are supported:
//
//   - Server-Sent Events: "data: <json>" lines with a "[DONE]" sentinel
//     (OpenAI-compatible chat completions, Gemini with alt=sse)
//   - Newline-delimited JSON: one JSON object per line (Ollama chat)
//   - Typed content-block events: SSE frames whose payload carries an
//     explicit event type and delta sub-type (Anthropic messages)
//
// Decoders are called repeatedly as chunks arrive and buffer any
// trailing partial line internally, so a frame split across chunk
// boundaries decodes identically to the unsplit byte sequence. Lines
// that cannot be parsed are skipped silently; some providers interleave
// comment and heartbeat lines, so a malformed frame is not an error.
package stream

import "bytes"

// Kind discriminates stream events.
type Kind int

const (
	// KindContent carries an increment of visible output text.
	KindContent Kind = iota
	// KindReasoning carries an increment of model reasoning text.
	KindReasoning
	// KindDone marks the end of the stream. A decoder emits it exactly
	// once and produces no events after it.
	KindDone
	// KindError carries an in-band protocol error.
	KindError
)

// Event is one decoded frame from a provider stream.
type Event struct {
	Kind Kind
	Text string
	Err  string
}

// Content returns a content delta event.
func Content(text string) Event { return Event{Kind: KindContent, Text: text} }

// Reasoning returns a reasoning delta event.
func Reasoning(text string) Event { return Event{Kind: KindReasoning, Text: text} }

// Done returns the terminal event.
func Done() Event { return Event{Kind: KindDone} }

// Errorf returns an in-band error event.
func Errorf(msg string) Event { return Event{Kind: KindError, Err: msg} }

// Decoder incrementally decodes a raw byte stream into events.
type Decoder interface {
	// Decode consumes one chunk and returns the events completed by it.
	// The undecoded remainder is buffered until the next call.
	Decode(chunk []byte) []Event

	// Flush signals transport end-of-stream. It drains any buffered
	// remainder and guarantees a single terminal Done event if one has
	// not been emitted yet.
	Flush() []Event
}

// lineSplitter accumulates chunks and yields complete lines, holding
// back a trailing partial line until its terminator arrives.
type lineSplitter struct {
	rest []byte
}

func (s *lineSplitter) split(chunk []byte) [][]byte {
	s.rest = append(s.rest, chunk...)
	var lines [][]byte
	for {
		i := bytes.IndexByte(s.rest, '\n')
		if i < 0 {
			return lines
		}
		line := bytes.TrimSuffix(s.rest[:i], []byte{'\r'})
		lines = append(lines, line)
		s.rest = s.rest[i+1:]
	}
}

// flush returns the held partial line, if any.
func (s *lineSplitter) flush() []byte {
	line := bytes.TrimSuffix(s.rest, []byte{'\r'})
	s.rest = nil
	if len(line) == 0 {
		return nil
	}
	return line
}
