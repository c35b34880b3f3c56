package sse

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSingleEvent(t *testing.T) {
	r := NewReader(strings.NewReader("data: hello\n\n"))

	ev, err := r.Next()
	require.NoError(t, err, "Expected a complete event")
	assert.Equal(t, "", ev.Type, "Untyped events should have an empty type")
	assert.Equal(t, "hello", ev.Data)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err, "Expected io.EOF after the last event")
}

func TestNextEventType(t *testing.T) {
	r := NewReader(strings.NewReader("event: message_start\ndata: {\"type\":\"message_start\"}\n\n"))

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "message_start", ev.Type)
	assert.Equal(t, `{"type":"message_start"}`, ev.Data)
}

func TestNextJoinsMultiLineData(t *testing.T) {
	r := NewReader(strings.NewReader("data: first\ndata: second\n\n"))

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", ev.Data, "Multiple data lines must be joined with a newline")
}

func TestNextEmptyDataLine(t *testing.T) {
	r := NewReader(strings.NewReader("data: a\ndata:\ndata: b\n\n"))

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "a\n\nb", ev.Data, "Empty data lines still contribute a newline")
}

func TestNextSkipsComments(t *testing.T) {
	r := NewReader(strings.NewReader(": keep-alive\ndata: x\n\n"))

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "x", ev.Data, "Comment lines must not end up in event data")
}

func TestNextIgnoresUnknownFields(t *testing.T) {
	r := NewReader(strings.NewReader("id: 3\nretry: 1000\ndata: x\n\n"))

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "x", ev.Data)
}

func TestNextNoSpaceAfterColon(t *testing.T) {
	r := NewReader(strings.NewReader("data:x\n\n"))

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "x", ev.Data, "Only a single optional space after the colon is stripped")
}

func TestNextCarriageReturns(t *testing.T) {
	r := NewReader(strings.NewReader("event: ping\r\ndata: {}\r\n\r\n"))

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "ping", ev.Type)
	assert.Equal(t, "{}", ev.Data)
}

func TestNextMultipleEvents(t *testing.T) {
	r := NewReader(strings.NewReader("data: one\n\ndata: two\n\ndata: three\n\n"))

	var got []string
	for {
		ev, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, ev.Data)
	}
	assert.Equal(t, []string{"one", "two", "three"}, got)
}

func TestNextDiscardsPartialEventAtEOF(t *testing.T) {
	r := NewReader(strings.NewReader("data: complete\n\ndata: {\"trunca"))

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "complete", ev.Data)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err, "A partial event at EOF must be discarded, not returned")
}

func TestNextDropsTypeOnlyEvent(t *testing.T) {
	r := NewReader(strings.NewReader("event: ping\n\ndata: x\n\n"))

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "", ev.Type, "The dataless ping event should have been dropped")
	assert.Equal(t, "x", ev.Data)
}

// failingReader yields some valid bytes and then a read error.
type failingReader struct {
	data string
	err  error
	read bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if !f.read {
		f.read = true
		return copy(p, f.data), nil
	}
	return 0, f.err
}

func TestNextSurfacesReadError(t *testing.T) {
	readErr := errors.New("connection reset")
	r := NewReader(&failingReader{data: "data: ok\n\n", err: readErr})

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "ok", ev.Data)

	_, err = r.Next()
	assert.ErrorIs(t, err, readErr, "Transport errors must surface through Next")
}
