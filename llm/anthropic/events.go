package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/parlancehq/parlance/llm"
	"github.com/parlancehq/parlance/sse"
)

// eventMapper tracks one stream's state across events: the input-token count
// arrives once in message_start but belongs on the usage emitted at the end,
// and tool_use blocks get renumbered so tool call indexes stay dense even
// when text blocks are interleaved.
type eventMapper struct {
	vendor      string
	inputTokens int
	toolIndexes map[int]int
	toolCount   int
	sentFinish  bool
}

func (m *eventMapper) MapEvent(ev sse.Event) ([]llm.StreamChunk, error) {
	var event streamEvent
	if err := json.Unmarshal([]byte(ev.Data), &event); err != nil {
		return nil, llm.ParseError(m.vendor, err)
	}
	eventType := ev.Type
	if eventType == "" {
		eventType = event.Type
	}

	switch eventType {
	case "message_start":
		return m.mapMessageStart(event)
	case "content_block_start":
		return m.mapBlockStart(event)
	case "content_block_delta":
		return m.mapBlockDelta(event)
	case "message_delta":
		return m.mapMessageDelta(event)
	case "message_stop":
		if m.sentFinish {
			return nil, nil
		}
		m.sentFinish = true
		return []llm.StreamChunk{llm.FinishChunk(llm.FinishStop)}, nil
	case "error":
		return nil, m.mapError(event)
	default:
		// content_block_stop, ping and anything added later.
		return nil, nil
	}
}

func (m *eventMapper) mapMessageStart(event streamEvent) ([]llm.StreamChunk, error) {
	if event.Message == nil {
		return nil, nil
	}
	var chunks []llm.StreamChunk
	if event.Message.Usage != nil {
		m.inputTokens = event.Message.Usage.InputTokens
		chunks = append(chunks, llm.UsageChunk(event.Message.Usage.toLLM(0)))
	}
	return chunks, nil
}

func (m *eventMapper) mapBlockStart(event streamEvent) ([]llm.StreamChunk, error) {
	block := event.ContentBlock
	if block == nil || block.Type != "tool_use" {
		return nil, nil
	}
	index := m.toolCount
	m.toolCount++
	m.toolIndexes[event.Index] = index
	return []llm.StreamChunk{llm.ToolCallChunk(llm.ToolCall{
		ID:    block.ID,
		Type:  llm.ToolTypeFunction,
		Index: index,
		Function: llm.FunctionCall{
			Name: block.Name,
		},
	})}, nil
}

func (m *eventMapper) mapBlockDelta(event streamEvent) ([]llm.StreamChunk, error) {
	delta := event.Delta
	if delta == nil {
		return nil, nil
	}
	switch delta.Type {
	case "text_delta":
		if delta.Text == "" {
			return nil, nil
		}
		return []llm.StreamChunk{llm.TextChunk(delta.Text)}, nil
	case "input_json_delta":
		index, ok := m.toolIndexes[event.Index]
		if !ok || delta.PartialJSON == "" {
			return nil, nil
		}
		return []llm.StreamChunk{llm.ToolCallChunk(llm.ToolCall{
			Index: index,
			Function: llm.FunctionCall{
				Arguments: delta.PartialJSON,
			},
		})}, nil
	default:
		// thinking_delta and friends.
		return nil, nil
	}
}

func (m *eventMapper) mapMessageDelta(event streamEvent) ([]llm.StreamChunk, error) {
	var chunks []llm.StreamChunk
	if event.Usage != nil {
		chunks = append(chunks, llm.UsageChunk(event.Usage.toLLM(m.inputTokens)))
	}
	if event.Delta != nil && event.Delta.StopReason != "" && !m.sentFinish {
		m.sentFinish = true
		chunks = append(chunks, llm.FinishChunk(finishReasonFromWire(event.Delta.StopReason)))
	}
	return chunks, nil
}

func (m *eventMapper) mapError(event streamEvent) error {
	apiErr := &llm.Error{
		Vendor: m.vendor,
		Kind:   llm.ErrKindServer,
	}
	if event.Error != nil {
		apiErr.Kind = kindFromErrorType(event.Error.Type)
		apiErr.Message = event.Error.Message
	}
	return apiErr
}

func kindFromErrorType(errorType string) llm.ErrorKind {
	switch {
	case errorType == "authentication_error" || errorType == "permission_error":
		return llm.ErrKindAuth
	case errorType == "rate_limit_error":
		return llm.ErrKindRateLimit
	case errorType == "not_found_error":
		return llm.ErrKindNotFound
	case strings.Contains(errorType, "invalid"):
		return llm.ErrKindBadRequest
	default:
		return llm.ErrKindServer
	}
}
