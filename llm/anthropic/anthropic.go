// Package anthropic speaks the Anthropic messages API, including its
// server-sent event stream flavor.
package anthropic

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/parlancehq/parlance/llm"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"

	// The messages API rejects requests without max_tokens, so one is
	// always sent even when the caller didn't set it.
	defaultMaxTokens = 1024
)

// Option configures the codec.
type Option func(*Codec)

// WithBaseURL points the codec at a different API host, e.g. a proxy.
func WithBaseURL(baseURL string) Option {
	return func(c *Codec) {
		c.baseURL = baseURL
	}
}

// Codec translates between the canonical chat types and the Anthropic
// messages API wire format.
type Codec struct {
	apiKey  string
	baseURL string
}

// New returns a codec for the Anthropic messages API.
func New(apiKey string, opts ...Option) *Codec {
	c := &Codec{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) Vendor() string {
	return "anthropic"
}

func (c *Codec) Endpoint(baseURL, model string, stream bool) string {
	base := baseURL
	if base == "" {
		base = c.baseURL
	}
	base = strings.TrimSuffix(base, "/")
	if strings.HasSuffix(base, "/v1") {
		return base + "/messages"
	}
	return base + "/v1/messages"
}

func (c *Codec) Headers() http.Header {
	headers := http.Header{}
	headers.Set("x-api-key", c.apiKey)
	headers.Set("anthropic-version", apiVersion)
	return headers
}

func (c *Codec) BuildRequest(req *llm.ChatRequest, stream bool) ([]byte, error) {
	maxTokens := defaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	payload := map[string]any{
		"model":      req.Model,
		"max_tokens": maxTokens,
		"messages":   messagesFromLLM(req.Messages),
	}
	if system := systemPrompt(req.Messages); system != "" {
		payload["system"] = system
	}
	if len(req.Tools) > 0 {
		tools := make([]toolDefinition, 0, len(req.Tools))
		for _, t := range req.Tools {
			tools = append(tools, toolDefinition{
				Name:        t.Name,
				Description: t.Description,
				InputSchema: t.Parameters,
			})
		}
		payload["tools"] = tools
		if req.ToolChoice != "" {
			payload["tool_choice"] = toolChoiceFromLLM(req.ToolChoice)
		}
	}
	if req.Temperature != nil {
		payload["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		payload["top_p"] = *req.TopP
	}
	if len(req.Stop) > 0 {
		payload["stop_sequences"] = req.Stop
	}
	if stream {
		payload["stream"] = true
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error encoding JSON: %w", err)
	}
	return body, nil
}

// systemPrompt collects system messages into the top-level system field. The
// messages list itself only carries user and assistant turns.
func systemPrompt(messages []llm.Message) string {
	var parts []string
	for _, msg := range messages {
		if msg.Role == llm.RoleSystem {
			if text := flatText(msg.Content); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

func messagesFromLLM(messages []llm.Message) []message {
	var apiMessages []message
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			// Hoisted into the system field.
		case llm.RoleTool:
			block := contentBlock{
				Type:      "tool_result",
				ToolUseID: msg.ToolCallID,
				Content:   flatText(msg.Content),
			}
			// Results for parallel tool calls share one user turn,
			// since the API wants strictly alternating roles.
			if n := len(apiMessages); n > 0 && isToolResultTurn(apiMessages[n-1]) {
				apiMessages[n-1].Content = append(apiMessages[n-1].Content, block)
			} else {
				apiMessages = append(apiMessages, message{
					Role:    "user",
					Content: []contentBlock{block},
				})
			}
		case llm.RoleAssistant:
			blocks := contentBlocksFromLLM(msg.Content)
			for _, call := range msg.ToolCalls {
				input := json.RawMessage(call.Function.Arguments)
				if len(input) == 0 {
					input = json.RawMessage("{}")
				}
				blocks = append(blocks, contentBlock{
					Type:  "tool_use",
					ID:    call.ID,
					Name:  call.Function.Name,
					Input: input,
				})
			}
			apiMessages = append(apiMessages, message{Role: "assistant", Content: blocks})
		default:
			apiMessages = append(apiMessages, message{
				Role:    "user",
				Content: contentBlocksFromLLM(msg.Content),
			})
		}
	}
	return apiMessages
}

func isToolResultTurn(msg message) bool {
	return msg.Role == "user" && len(msg.Content) > 0 && msg.Content[0].Type == "tool_result"
}

func toolChoiceFromLLM(choice llm.ToolChoice) toolChoice {
	switch choice {
	case llm.ToolChoiceRequired:
		return toolChoice{Type: "any"}
	case llm.ToolChoiceNone:
		return toolChoice{Type: "none"}
	default:
		return toolChoice{Type: "auto"}
	}
}

func (c *Codec) ParseResponse(body []byte) (*llm.ChatResponse, error) {
	var wire messageResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, llm.ParseError(c.Vendor(), err)
	}

	resp := &llm.ChatResponse{
		ID:           wire.ID,
		Model:        wire.Model,
		FinishReason: finishReasonFromWire(wire.StopReason),
	}
	toolIndex := 0
	for _, block := range wire.Content {
		switch block.Type {
		case "text":
			resp.Content += block.Text
		case "tool_use":
			resp.ToolCalls = append(resp.ToolCalls, llm.ToolCall{
				ID:    block.ID,
				Type:  llm.ToolTypeFunction,
				Index: toolIndex,
				Function: llm.FunctionCall{
					Name:      block.Name,
					Arguments: string(block.Input),
				},
			})
			toolIndex++
		}
	}
	if wire.Usage != nil {
		u := wire.Usage.toLLM(0)
		resp.Usage = &u
	}
	return resp, nil
}

func (c *Codec) ParseError(status int, body []byte) error {
	apiErr := &llm.Error{
		Vendor: c.Vendor(),
		Kind:   llm.KindFromStatus(status),
		Status: status,
		Raw:    string(body),
	}
	var wire errorResponse
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error != nil {
		apiErr.Message = wire.Error.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func finishReasonFromWire(stopReason string) llm.FinishReason {
	switch stopReason {
	case "end_turn", "stop_sequence":
		return llm.FinishStop
	case "max_tokens":
		return llm.FinishLength
	case "tool_use":
		return llm.FinishToolCalls
	case "refusal":
		return llm.FinishContentFilter
	default:
		return llm.FinishStop
	}
}

func (c *Codec) NewEventMapper() llm.EventMapper {
	return &eventMapper{vendor: c.Vendor(), toolIndexes: map[int]int{}}
}
