package openai

import (
	"encoding/json"
	"strings"

	"github.com/parlancehq/parlance/llm"
	"github.com/parlancehq/parlance/sse"
)

// doneMarker is the terminal data payload on chat-completion streams.
const doneMarker = "[DONE]"

// eventMapper decodes the untyped data events of a chat-completions stream.
// One instance serves one stream.
type eventMapper struct {
	vendor     string
	sentFinish bool
}

func (m *eventMapper) MapEvent(ev sse.Event) ([]llm.StreamChunk, error) {
	// Chat-completion streams only use untyped data events; anything with an
	// explicit event type is outside the known taxonomy and is skipped.
	if ev.Type != "" {
		return nil, nil
	}
	if ev.Data == doneMarker {
		// The finish reason already arrived on the last content chunk.
		return nil, nil
	}

	var chunk chatCompletionChunk
	if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
		return nil, llm.ParseError(m.vendor, err)
	}
	if chunk.Error != nil {
		return nil, &llm.Error{
			Vendor:  m.vendor,
			Kind:    kindFromErrorType(chunk.Error.Type),
			Message: chunk.Error.Message,
			Raw:     ev.Data,
		}
	}

	var chunks []llm.StreamChunk
	if chunk.Usage != nil {
		chunks = append(chunks, llm.UsageChunk(chunk.Usage.toLLM()))
	}
	if len(chunk.Choices) == 0 {
		return chunks, nil
	}
	choice := chunk.Choices[0]
	if choice.Delta.Content != "" {
		chunks = append(chunks, llm.TextChunk(choice.Delta.Content))
	}
	for _, delta := range choice.Delta.ToolCalls {
		call := delta.toLLM(delta.Index)
		// A fragment that introduces a call may leave the type implicit;
		// there is only one call type, so fill it in.
		if call.Type == "" && (call.ID != "" || call.Function.Name != "") {
			call.Type = llm.ToolTypeFunction
		}
		chunks = append(chunks, llm.ToolCallChunk(call))
	}
	if choice.FinishReason != "" && !m.sentFinish {
		m.sentFinish = true
		chunks = append(chunks, llm.FinishChunk(finishReasonFromWire(choice.FinishReason)))
	}
	return chunks, nil
}

// kindFromErrorType classifies a mid-stream error by the vendor's type tag.
func kindFromErrorType(errorType string) llm.ErrorKind {
	switch {
	case strings.Contains(errorType, "rate_limit"):
		return llm.ErrKindRateLimit
	case strings.Contains(errorType, "invalid"):
		return llm.ErrKindBadRequest
	default:
		return llm.ErrKindServer
	}
}
