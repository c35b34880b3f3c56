package google

import (
	"encoding/json"

	"github.com/parlancehq/parlance/llm"
	"github.com/parlancehq/parlance/sse"
)

// eventMapper numbers function calls in arrival order across the stream and
// remembers whether a finish was already emitted. Gemini sends unnamed
// events whose data is a complete response chunk, and function calls arrive
// whole rather than as fragments.
type eventMapper struct {
	vendor     string
	toolCount  int
	sentFinish bool
}

func (m *eventMapper) MapEvent(ev sse.Event) ([]llm.StreamChunk, error) {
	// The stream only carries unnamed events; anything with an explicit
	// event type is outside the known taxonomy and is skipped.
	if ev.Type != "" {
		return nil, nil
	}
	var chunk generateResponse
	if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
		return nil, llm.ParseError(m.vendor, err)
	}

	var chunks []llm.StreamChunk
	if chunk.UsageMetadata != nil {
		chunks = append(chunks, llm.UsageChunk(chunk.UsageMetadata.toLLM()))
	}
	if len(chunk.Candidates) == 0 {
		return chunks, nil
	}

	cand := chunk.Candidates[0]
	for _, p := range cand.Content.Parts {
		if p.Text != nil && *p.Text != "" {
			chunks = append(chunks, llm.TextChunk(*p.Text))
		}
		if p.FunctionCall != nil {
			call := callFromWire(m.toolCount, *p.FunctionCall)
			m.toolCount++
			chunks = append(chunks, llm.ToolCallChunk(call))
		}
	}
	if cand.FinishReason != "" && !m.sentFinish {
		m.sentFinish = true
		reason := finishReasonFromWire(cand.FinishReason, m.toolCount > 0)
		chunks = append(chunks, llm.FinishChunk(reason))
	}
	return chunks, nil
}
