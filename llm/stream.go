package llm

import (
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/parlancehq/parlance/sse"
)

// ErrStreamClosed is returned by Recv after Close has been called.
var ErrStreamClosed = errors.New("llm: stream is closed")

// Stream delivers canonical chunks as the consumer asks for them. The
// consumer paces the stream: each Recv pulls just enough bytes off the
// connection to decode the next event, so a slow consumer simply leaves the
// response on the wire.
type Stream interface {
	// Recv returns the next chunk. After the Finish chunk it returns io.EOF.
	// Any other error is terminal and will be returned again on later calls.
	Recv() (StreamChunk, error)
	// Close releases the underlying connection. Abandoning a stream early
	// needs nothing beyond Close; accumulated state is simply dropped.
	Close() error
}

type chunkStream struct {
	vendor   string
	body     io.ReadCloser
	events   *sse.Reader
	mapper   EventMapper
	acc      *ToolCallAccumulator
	pending  []StreamChunk
	finish   *StreamChunk
	finished bool
	err      error
	closed   bool
}

// NewStream wires an SSE byte stream through the vendor's event mapper and a
// tool-call accumulator. Tool-call chunks coming out of the stream are always
// complete snapshots; argument fragments for incomplete calls stay internal.
func NewStream(vendor string, body io.ReadCloser, mapper EventMapper) Stream {
	return &chunkStream{
		vendor: vendor,
		body:   body,
		events: sse.NewReader(body),
		mapper: mapper,
		acc:    NewToolCallAccumulator(),
	}
}

func (s *chunkStream) Recv() (StreamChunk, error) {
	if s.closed {
		return StreamChunk{}, ErrStreamClosed
	}
	if s.err != nil {
		return StreamChunk{}, s.err
	}
	for {
		if len(s.pending) > 0 {
			chunk := s.pending[0]
			s.pending = s.pending[1:]
			return chunk, nil
		}
		if s.finished {
			return StreamChunk{}, io.EOF
		}
		ev, err := s.events.Next()
		if err == io.EOF {
			s.finished = true
			if s.finish != nil {
				return *s.finish, nil
			}
			// The vendor closed the connection without an explicit finish
			// signal. Synthesize one so the stream still ends in exactly one
			// Finish chunk.
			return FinishChunk(FinishStop), nil
		}
		if err != nil {
			s.err = TransportError(s.vendor, err)
			return StreamChunk{}, s.err
		}
		chunks, err := s.mapper.MapEvent(ev)
		if err != nil {
			s.err = err
			return StreamChunk{}, s.err
		}
		for _, chunk := range chunks {
			switch chunk.Kind {
			case ChunkToolCall:
				snapshot, ready := s.acc.Apply(*chunk.ToolCall)
				if !ready {
					continue
				}
				s.pending = append(s.pending, ToolCallChunk(snapshot))
			case ChunkFinish:
				// The Finish chunk must come last, but OpenAI-style streams
				// report usage after the finish reason. Hold it back and keep
				// reading; the wire's end releases it.
				if s.finish != nil {
					continue
				}
				held := chunk
				s.finish = &held
			default:
				s.pending = append(s.pending, chunk)
			}
		}
	}
}

func (s *chunkStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

// Collect consumes a stream to its end and assembles a ChatResponse from the
// chunks: concatenated text, the final snapshot of every tool call, the last
// reported usage, and the finish reason. The stream is closed afterwards.
func Collect(stream Stream) (*ChatResponse, error) {
	defer stream.Close()

	resp := &ChatResponse{}
	var text strings.Builder
	calls := make(map[int]ToolCall)
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch chunk.Kind {
		case ChunkText:
			text.WriteString(chunk.Text)
		case ChunkToolCall:
			// Re-emitted snapshots replace earlier ones for the same index.
			calls[chunk.ToolCall.Index] = *chunk.ToolCall
		case ChunkUsage:
			usage := *chunk.Usage
			resp.Usage = &usage
		case ChunkFinish:
			resp.FinishReason = chunk.FinishReason
		}
	}
	resp.Content = text.String()

	indexes := make([]int, 0, len(calls))
	for index := range calls {
		indexes = append(indexes, index)
	}
	slices.Sort(indexes)
	for _, index := range indexes {
		resp.ToolCalls = append(resp.ToolCalls, calls[index])
	}
	return resp, nil
}
