package provider

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/lingoflow-ai/lingoflow/internal/stream"
	"github.com/lingoflow-ai/lingoflow/internal/thinking"
	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

// readBufSize is the chunk size for reading streaming response bodies.
const readBufSize = 4096

// runStream drives a decoder over a streaming response body and fires
// callbacks with accumulated-so-far text. When extractTags is set,
// content passes through the inline-tag reasoning extractor; providers
// whose protocol already separates reasoning bypass it.
//
// Cancellation is observed at every chunk-read boundary: once the
// context is done the body is abandoned, buffered partial frames are
// discarded and ErrCancelled is returned with no further callbacks.
func runStream(ctx context.Context, body io.ReadCloser, dec stream.Decoder, extractTags bool, cb Callbacks) (types.TranslationResult, error) {
	defer body.Close()

	var ext *thinking.Extractor
	if extractTags {
		ext = thinking.NewExtractor()
	}
	var visible, native strings.Builder

	accumReasoning := func() string {
		if ext == nil {
			return native.String()
		}
		return joinReasoning(native.String(), ext.Reasoning())
	}

	buf := make([]byte, readBufSize)
	for {
		if ctx.Err() != nil {
			return types.TranslationResult{}, ErrCancelled
		}

		n, readErr := body.Read(buf)
		var events []stream.Event
		if n > 0 {
			events = dec.Decode(buf[:n])
		}
		if readErr != nil {
			switch {
			case errors.Is(readErr, io.EOF):
				events = append(events, dec.Flush()...)
			case ctx.Err() != nil:
				return types.TranslationResult{}, ErrCancelled
			default:
				return types.TranslationResult{}, &TransportError{Message: readErr.Error()}
			}
		}

		for _, ev := range events {
			switch ev.Kind {
			case stream.KindContent:
				if ext != nil {
					prevVisible := len(ext.Visible())
					prevReasoning := len(ext.Reasoning())
					ext.Feed(ev.Text)
					if v := ext.Visible(); len(v) > prevVisible {
						cb.content(v)
					}
					if len(ext.Reasoning()) > prevReasoning {
						cb.reasoning(accumReasoning())
					}
				} else {
					visible.WriteString(ev.Text)
					cb.content(visible.String())
				}

			case stream.KindReasoning:
				native.WriteString(ev.Text)
				cb.reasoning(accumReasoning())

			case stream.KindDone:
				res := types.TranslationResult{
					Text:      visible.String(),
					Reasoning: native.String(),
				}
				if ext != nil {
					v, r := ext.Final()
					res.Text = v
					res.Reasoning = joinReasoning(native.String(), r)
				}
				cb.done(res.Text, res.Reasoning)
				return res, nil

			case stream.KindError:
				return types.TranslationResult{}, &TransportError{Message: ev.Err}
			}
		}
	}
}
