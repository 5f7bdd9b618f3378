package stream

import "bytes"

// doneSentinel is the payload value OpenAI-compatible streams send as
// their final data line. It is dropped, never surfaced as content.
const doneSentinel = "[DONE]"

var dataPrefix = []byte("data:")

// PayloadParser turns one frame payload into zero or more events.
// Returning nil skips the payload; decoders treat unparsable frames as
// noise rather than errors.
type PayloadParser func(payload []byte) []Event

// SSEDecoder decodes Server-Sent Events framing: lines prefixed with
// "data:" carry a JSON payload, everything else (event names, comments,
// heartbeats, blank separators) is ignored.
type SSEDecoder struct {
	lines lineSplitter
	parse PayloadParser
	done  bool
}

// NewSSEDecoder returns a decoder that hands each data payload to parse.
func NewSSEDecoder(parse PayloadParser) *SSEDecoder {
	return &SSEDecoder{parse: parse}
}

// Decode implements Decoder.
func (d *SSEDecoder) Decode(chunk []byte) []Event {
	if d.done {
		return nil
	}
	var events []Event
	for _, line := range d.lines.split(chunk) {
		evs, terminal := d.decodeLine(line)
		events = append(events, evs...)
		if terminal {
			d.done = true
			break
		}
	}
	return events
}

// Flush implements Decoder.
func (d *SSEDecoder) Flush() []Event {
	if d.done {
		return nil
	}
	d.done = true
	var events []Event
	if line := d.lines.flush(); line != nil {
		evs, terminal := d.decodeLine(line)
		events = append(events, evs...)
		if terminal {
			return events
		}
	}
	return append(events, Done())
}

// decodeLine decodes a single complete line. terminal reports whether
// the stream ended with this line.
func (d *SSEDecoder) decodeLine(line []byte) (events []Event, terminal bool) {
	payload, ok := ssePayload(line)
	if !ok {
		return nil, false
	}
	if string(payload) == doneSentinel {
		return []Event{Done()}, true
	}
	events = d.parse(payload)
	for _, e := range events {
		if e.Kind == KindDone {
			return events, true
		}
	}
	return events, false
}

// ssePayload extracts the payload from a "data:" line. Any other line
// is not a payload.
func ssePayload(line []byte) ([]byte, bool) {
	if !bytes.HasPrefix(line, dataPrefix) {
		return nil, false
	}
	return bytes.TrimSpace(line[len(dataPrefix):]), true
}
