package stream

import "bytes"

// NDJSONDecoder decodes newline-delimited JSON framing: every non-empty
// line is one complete JSON object. Local chat servers (Ollama) stream
// this way and signal completion in-band, so the terminal Done comes
// from the payload parser or from Flush at transport EOF.
type NDJSONDecoder struct {
	lines lineSplitter
	parse PayloadParser
	done  bool
}

// NewNDJSONDecoder returns a decoder that hands each line to parse.
func NewNDJSONDecoder(parse PayloadParser) *NDJSONDecoder {
	return &NDJSONDecoder{parse: parse}
}

// Decode implements Decoder.
func (d *NDJSONDecoder) Decode(chunk []byte) []Event {
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
func (d *NDJSONDecoder) Flush() []Event {
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

func (d *NDJSONDecoder) decodeLine(line []byte) (events []Event, terminal bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, false
	}
	events = d.parse(line)
	for _, e := range events {
		if e.Kind == KindDone {
			return events, true
		}
	}
	return events, false
}
