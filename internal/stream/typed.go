package stream

import "encoding/json"

// typedFrame is the payload shape of block-typed streaming (Anthropic
// messages API). The event type is carried inside the JSON payload.
type typedFrame struct {
	Type         string `json:"type"`
	ContentBlock struct {
		Type string `json:"type"`
	} `json:"content_block"`
	Delta struct {
		Type     string `json:"type"`
		Text     string `json:"text"`
		Thinking string `json:"thinking"`
	} `json:"delta"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// TypedDecoder decodes block-typed event streams. The transport framing
// is SSE; each payload names an event type (content_block_start,
// content_block_delta, message_stop, ...) and deltas carry a sub-type
// (text_delta, thinking_delta). The decoder tracks the currently open
// block type across deltas, although the delta sub-type alone
// disambiguates content from reasoning in practice.
type TypedDecoder struct {
	sse          *SSEDecoder
	currentBlock string
}

// NewTypedDecoder returns a decoder for block-typed streams.
func NewTypedDecoder() *TypedDecoder {
	d := &TypedDecoder{}
	d.sse = NewSSEDecoder(d.parseFrame)
	return d
}

// Decode implements Decoder.
func (d *TypedDecoder) Decode(chunk []byte) []Event {
	return d.sse.Decode(chunk)
}

// Flush implements Decoder.
func (d *TypedDecoder) Flush() []Event {
	return d.sse.Flush()
}

func (d *TypedDecoder) parseFrame(payload []byte) []Event {
	var frame typedFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return nil
	}
	switch frame.Type {
	case "content_block_start":
		d.currentBlock = frame.ContentBlock.Type
	case "content_block_delta":
		switch frame.Delta.Type {
		case "text_delta":
			return []Event{Content(frame.Delta.Text)}
		case "thinking_delta":
			return []Event{Reasoning(frame.Delta.Thinking)}
		}
	case "content_block_stop":
		d.currentBlock = ""
	case "message_stop":
		return []Event{Done()}
	case "error":
		return []Event{Errorf(frame.Error.Message)}
	}
	return nil
}
