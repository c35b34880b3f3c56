// Package sse decodes Server-Sent-Events byte streams into discrete events.
//
// The reader only handles framing. Every data payload stays uninterpreted, so
// vendor sentinels such as OpenAI's "[DONE]" marker are the caller's business.
package sse

import (
	"bufio"
	"io"
	"strings"
)

// Event is one dispatched server-sent event. Type is empty when the event
// carried no "event:" line, which is the normal case for OpenAI-style streams.
type Event struct {
	Type string
	Data string
}

// Reader incrementally decodes an SSE stream. It is not safe for concurrent
// use; every stream gets its own Reader.
type Reader struct {
	scanner   *bufio.Scanner
	eventType string
	data      []string
}

// NewReader returns a Reader decoding events from r. The line buffer starts at
// 64KB and grows up to 1MB so that unusually large deltas still fit on a line.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Next returns the next complete event, or io.EOF once the stream is
// exhausted. An event still being accumulated when the stream ends is
// discarded rather than returned: a truncated payload is not a complete event.
// Multiple "data:" lines within one event are joined with a newline.
func (r *Reader) Next() (Event, error) {
	for r.scanner.Scan() {
		line := strings.TrimSuffix(r.scanner.Text(), "\r")
		switch {
		case line == "":
			// Dispatch boundary. An event with no data lines is dropped,
			// type and all; none of the supported vendors emit dataless
			// events. Revisit if one ever sends a bare "event: ping".
			if len(r.data) == 0 {
				r.eventType = ""
				continue
			}
			ev := Event{Type: r.eventType, Data: strings.Join(r.data, "\n")}
			r.eventType = ""
			r.data = nil
			return ev, nil
		case strings.HasPrefix(line, ":"):
			// Comment line, typically a keep-alive.
		case strings.HasPrefix(line, "event:"):
			r.eventType = trimFieldValue(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			r.data = append(r.data, trimFieldValue(line[len("data:"):]))
		default:
			// Other fields (id, retry, ...) don't affect framing.
		}
	}
	if err := r.scanner.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}

// trimFieldValue strips the single optional space that may follow a field's
// colon.
func trimFieldValue(v string) string {
	return strings.TrimPrefix(v, " ")
}
