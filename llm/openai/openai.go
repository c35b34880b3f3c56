// Package openai implements the chat-completions wire format spoken by
// OpenAI and by OpenAI-compatible vendors such as DeepSeek and Ollama.
package openai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/parlancehq/parlance/llm"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Option configures a Codec.
type Option func(*Codec)

// WithBaseURL sets the codec's default host, including any version prefix
// (e.g. "https://api.deepseek.com/v1"). A per-client base URL still wins.
func WithBaseURL(baseURL string) Option {
	return func(c *Codec) {
		c.baseURL = baseURL
	}
}

// WithVendorName sets the vendor identifier reported in errors and logs, for
// OpenAI-compatible vendors that aren't OpenAI.
func WithVendorName(name string) Option {
	return func(c *Codec) {
		c.name = name
	}
}

// WithoutImages marks the vendor as text-only. Image content degrades to a
// textual placeholder instead of failing the request.
func WithoutImages() Option {
	return func(c *Codec) {
		c.images = false
	}
}

// Codec translates canonical requests to the chat-completions wire format.
type Codec struct {
	apiKey  string
	name    string
	baseURL string
	images  bool
}

// New returns a Codec for the OpenAI API. An empty apiKey sends no
// Authorization header, which is what local Ollama deployments expect.
func New(apiKey string, opts ...Option) *Codec {
	c := &Codec{
		apiKey:  apiKey,
		name:    "openai",
		baseURL: defaultBaseURL,
		images:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) Vendor() string {
	return c.name
}

func (c *Codec) Endpoint(baseURL, model string, stream bool) string {
	base := baseURL
	if base == "" {
		base = c.baseURL
	}
	return strings.TrimSuffix(base, "/") + "/chat/completions"
}

func (c *Codec) Headers() http.Header {
	headers := make(http.Header)
	if c.apiKey != "" {
		headers.Set("Authorization", "Bearer "+c.apiKey)
	}
	return headers
}

func (c *Codec) BuildRequest(req *llm.ChatRequest, stream bool) ([]byte, error) {
	apiMessages := make([]message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		apiMessages = append(apiMessages, messageFromLLM(msg, c.images))
	}

	payload := map[string]any{
		"model":    req.Model,
		"messages": apiMessages,
	}
	if len(req.Tools) > 0 {
		tools := make([]toolDefinition, len(req.Tools))
		for i, t := range req.Tools {
			tools[i] = toolDefinition{
				Type: llm.ToolTypeFunction,
				Function: functionDefinition{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  json.RawMessage(t.Parameters),
				},
			}
		}
		payload["tools"] = tools
	}
	if req.ToolChoice != "" {
		payload["tool_choice"] = string(req.ToolChoice)
	}
	if req.Temperature != nil {
		payload["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		payload["top_p"] = *req.TopP
	}
	if req.MaxTokens != nil {
		payload["max_tokens"] = *req.MaxTokens
	}
	if len(req.Stop) > 0 {
		payload["stop"] = req.Stop
	}
	if req.PresencePenalty != nil {
		payload["presence_penalty"] = *req.PresencePenalty
	}
	if req.FrequencyPenalty != nil {
		payload["frequency_penalty"] = *req.FrequencyPenalty
	}
	if req.Seed != nil {
		payload["seed"] = *req.Seed
	}
	if stream {
		payload["stream"] = true
		payload["stream_options"] = map[string]any{"include_usage": true}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error encoding JSON: %w", err)
	}
	return data, nil
}

func (c *Codec) ParseResponse(body []byte) (*llm.ChatResponse, error) {
	var completion chatCompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, llm.ParseError(c.name, err)
	}
	resp := &llm.ChatResponse{
		ID:    completion.ID,
		Model: completion.Model,
	}
	if completion.Usage != nil {
		usage := completion.Usage.toLLM()
		resp.Usage = &usage
	}
	if len(completion.Choices) == 0 {
		// No choices is a valid empty response, not a parse failure.
		return resp, nil
	}
	choice := completion.Choices[0]
	resp.Content = choice.Message.Content
	for i, tc := range choice.Message.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, tc.toLLM(i))
	}
	resp.FinishReason = finishReasonFromWire(choice.FinishReason)
	return resp, nil
}

func (c *Codec) ParseError(status int, body []byte) error {
	var envelope errorResponse
	var message string
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		message = envelope.Error.Message
	}
	return llm.StatusError(c.name, status, message, string(body))
}

func (c *Codec) NewEventMapper() llm.EventMapper {
	return &eventMapper{vendor: c.name}
}

func finishReasonFromWire(reason string) llm.FinishReason {
	switch reason {
	case "stop":
		return llm.FinishStop
	case "length":
		return llm.FinishLength
	case "tool_calls", "function_call":
		return llm.FinishToolCalls
	case "content_filter":
		return llm.FinishContentFilter
	default:
		return llm.FinishStop
	}
}
