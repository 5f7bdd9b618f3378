// Package thinking separates a model's visible answer from inline
// chain-of-thought markup arriving mid-stream.
//
// Some providers have no protocol-level notion of reasoning and instead
// interleave it into the generated text as <think>...</think>,
// <thinking>...</thinking> or <reasoning>...</reasoning> blocks. The
// Extractor splits the two as the text grows, across arbitrary chunk
// boundaries, without ever retracting text it has already classified.
package thinking

import "strings"

type tagKind int

const (
	tagNone tagKind = iota
	tagThink
	tagThinking
	tagReasoning
)

// tagSet lists the supported kinds in resolution order. Kinds are
// independent and non-nesting; behavior for mixed or nested kinds in a
// single response is undefined input, the only promise is not to crash.
var tagSet = []struct {
	kind  tagKind
	open  string
	close string
}{
	{tagThink, "<think>", "</think>"},
	{tagThinking, "<thinking>", "</thinking>"},
	{tagReasoning, "<reasoning>", "</reasoning>"},
}

// allMarkers is every open and close marker, used for residual cleanup
// and partial-suffix holdback.
var allMarkers = func() []string {
	m := make([]string, 0, len(tagSet)*2)
	for _, t := range tagSet {
		m = append(m, t.open, t.close)
	}
	return m
}()

// Extractor incrementally splits streamed text into visible output and
// reasoning. Both accumulators are append-only for the lifetime of one
// stream; a partial tag marker at the end of the processed input is
// held back until the next chunk resolves it, so no marker bytes ever
// reach either accumulator.
type Extractor struct {
	visible   strings.Builder
	reasoning strings.Builder

	// pending is the unclassified tail: either empty or a strict
	// prefix of some tag marker.
	pending string
	inside  bool
	kind    tagKind
}

// NewExtractor returns an extractor for one streamed response.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Feed appends a chunk of streamed text and classifies as much of it as
// possible.
func (e *Extractor) Feed(chunk string) {
	e.pending += chunk
	e.advance()
}

// Visible returns the visible text accumulated so far.
func (e *Extractor) Visible() string { return e.visible.String() }

// Reasoning returns the reasoning text accumulated so far.
func (e *Extractor) Reasoning() string { return e.reasoning.String() }

// Final ends the stream and returns the terminal visible and reasoning
// text. Leading and trailing whitespace is trimmed here only; the
// incremental accessors never trim.
func (e *Extractor) Final() (visible, reasoning string) {
	if e.pending != "" && !e.inside {
		// The tail is at most a partial marker; once the stream is
		// over it can no longer complete, so it is plain text.
		e.visible.WriteString(e.pending)
	}
	// Inside a block the tail can only be partial close-marker bytes;
	// those are markup debris, not reasoning.
	e.pending = ""
	return strings.TrimSpace(e.visible.String()), strings.TrimSpace(e.reasoning.String())
}

// advance consumes pending until only an unresolvable tail remains.
func (e *Extractor) advance() {
	for {
		if e.inside {
			closing := closeMarker(e.kind)
			if i := strings.Index(e.pending, closing); i >= 0 {
				e.reasoning.WriteString(e.pending[:i])
				e.pending = e.pending[i+len(closing):]
				e.inside = false
				continue
			}
			hold := partialSuffix(e.pending, []string{closing})
			e.reasoning.WriteString(e.pending[:len(e.pending)-hold])
			e.pending = e.pending[len(e.pending)-hold:]
			return
		}

		idx, marker, kind, opens := earliestMarker(e.pending)
		if idx < 0 {
			hold := partialSuffix(e.pending, allMarkers)
			e.visible.WriteString(e.pending[:len(e.pending)-hold])
			e.pending = e.pending[len(e.pending)-hold:]
			return
		}
		e.visible.WriteString(e.pending[:idx])
		e.pending = e.pending[idx+len(marker):]
		if opens {
			e.inside = true
			e.kind = kind
		}
		// A stray close marker outside a block is stripped and
		// otherwise ignored.
	}
}

// Extract runs the one-shot split over a fully formed text: complete
// tag pairs of each kind are removed in order of appearance, an
// unclosed opening tag claims the rest of the text as reasoning, and
// residual bare markers are stripped from the visible remainder.
// Extract is idempotent on its own visible output.
func Extract(text string) (visible, reasoning string) {
	var r strings.Builder
	for _, tag := range tagSet {
		for {
			open := strings.Index(text, tag.open)
			if open < 0 {
				break
			}
			rest := text[open+len(tag.open):]
			end := strings.Index(rest, tag.close)
			if end < 0 {
				break
			}
			r.WriteString(rest[:end])
			text = text[:open] + rest[end+len(tag.close):]
		}
	}

	if idx, marker, _, opens := earliestMarker(text); idx >= 0 && opens {
		tail := text[idx+len(marker):]
		r.WriteString(stripMarkers(tail))
		text = text[:idx]
	}

	return strings.TrimSpace(stripMarkers(text)), strings.TrimSpace(r.String())
}

// earliestMarker finds the first occurrence of any tag marker. opens
// reports whether it is an opening marker.
func earliestMarker(s string) (idx int, marker string, kind tagKind, opens bool) {
	idx = -1
	for _, tag := range tagSet {
		if i := strings.Index(s, tag.open); i >= 0 && (idx < 0 || i < idx) {
			idx, marker, kind, opens = i, tag.open, tag.kind, true
		}
		if i := strings.Index(s, tag.close); i >= 0 && (idx < 0 || i < idx) {
			idx, marker, kind, opens = i, tag.close, tag.kind, false
		}
	}
	return idx, marker, kind, opens
}

func closeMarker(kind tagKind) string {
	for _, tag := range tagSet {
		if tag.kind == kind {
			return tag.close
		}
	}
	return ""
}

// partialSuffix returns the length of the longest suffix of s that is a
// strict prefix of one of the markers.
func partialSuffix(s string, markers []string) int {
	max := 0
	for _, m := range markers {
		limit := len(m) - 1
		if limit > len(s) {
			limit = len(s)
		}
		for k := limit; k > max; k-- {
			if strings.HasSuffix(s, m[:k]) {
				max = k
				break
			}
		}
	}
	return max
}

// stripMarkers removes every bare tag marker from s.
func stripMarkers(s string) string {
	for _, m := range allMarkers {
		s = strings.ReplaceAll(s, m, "")
	}
	return s
}
