// Package google speaks the Gemini generative language API, both the
// unary generateContent call and its streamGenerateContent SSE flavor.
package google

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/parlancehq/parlance/llm"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Option configures the codec.
type Option func(*Codec)

// WithBaseURL points the codec at a different API host, e.g. a proxy.
func WithBaseURL(baseURL string) Option {
	return func(c *Codec) {
		c.baseURL = baseURL
	}
}

// Codec translates between the canonical chat types and the Gemini API wire
// format.
type Codec struct {
	apiKey  string
	baseURL string
}

// New returns a codec for the Gemini generative language API.
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
	return "google"
}

// Endpoint bakes the model name into the URL path, unlike the other vendors
// where it travels in the request body.
func (c *Codec) Endpoint(baseURL, model string, stream bool) string {
	base := baseURL
	if base == "" {
		base = c.baseURL
	}
	base = strings.TrimSuffix(base, "/")
	if stream {
		return fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", base, model)
	}
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", base, model)
}

// Headers carries the API key rather than embedding it in the endpoint URL,
// keeping credentials out of anything that logs request targets.
func (c *Codec) Headers() http.Header {
	headers := http.Header{}
	headers.Set("x-goog-api-key", c.apiKey)
	return headers
}

func (c *Codec) BuildRequest(req *llm.ChatRequest, stream bool) ([]byte, error) {
	payload := map[string]any{
		"contents": contentsFromLLM(req.Messages),
	}
	if system := systemParts(req.Messages); len(system) > 0 {
		payload["systemInstruction"] = map[string]any{"parts": system}
	}
	if config := generationConfig(req); len(config) > 0 {
		payload["generationConfig"] = config
	}
	if len(req.Tools) > 0 {
		declarations := make([]map[string]any, 0, len(req.Tools))
		for _, t := range req.Tools {
			decl := map[string]any{"name": t.Name}
			if t.Description != "" {
				decl["description"] = t.Description
			}
			if len(t.Parameters) > 0 {
				decl["parameters"] = t.Parameters
			}
			declarations = append(declarations, decl)
		}
		payload["tools"] = []any{
			map[string]any{"functionDeclarations": declarations},
		}
		if req.ToolChoice != "" {
			payload["toolConfig"] = map[string]any{
				"functionCallingConfig": map[string]any{
					"mode": functionCallingMode(req.ToolChoice),
				},
			}
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error encoding JSON: %w", err)
	}
	return body, nil
}

func systemParts(messages []llm.Message) parts {
	var p parts
	for _, msg := range messages {
		if msg.Role == llm.RoleSystem {
			p = append(p, partsFromLLM(msg.Content)...)
		}
	}
	return p
}

func contentsFromLLM(messages []llm.Message) []message {
	var contents []message
	for _, msg := range messages {
		if msg.Role == llm.RoleSystem {
			// Hoisted into systemInstruction.
			continue
		}
		wire := messageFromLLM(msg)
		// Responses to parallel function calls share one user turn.
		if msg.Role == llm.RoleTool {
			if n := len(contents); n > 0 && isFunctionResponseTurn(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, wire.Parts...)
				continue
			}
		}
		contents = append(contents, wire)
	}
	return contents
}

func isFunctionResponseTurn(msg message) bool {
	return msg.Role == "user" && len(msg.Parts) > 0 && msg.Parts[0].FunctionResponse != nil
}

func generationConfig(req *llm.ChatRequest) map[string]any {
	config := map[string]any{}
	if req.Temperature != nil {
		config["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		config["topP"] = *req.TopP
	}
	if req.MaxTokens != nil {
		config["maxOutputTokens"] = *req.MaxTokens
	}
	if len(req.Stop) > 0 {
		config["stopSequences"] = req.Stop
	}
	if req.PresencePenalty != nil {
		config["presencePenalty"] = *req.PresencePenalty
	}
	if req.FrequencyPenalty != nil {
		config["frequencyPenalty"] = *req.FrequencyPenalty
	}
	if req.Seed != nil {
		config["seed"] = *req.Seed
	}
	return config
}

func functionCallingMode(choice llm.ToolChoice) string {
	switch choice {
	case llm.ToolChoiceRequired:
		return "ANY"
	case llm.ToolChoiceNone:
		return "NONE"
	default:
		return "AUTO"
	}
}

func (c *Codec) ParseResponse(body []byte) (*llm.ChatResponse, error) {
	var wire generateResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, llm.ParseError(c.Vendor(), err)
	}

	resp := &llm.ChatResponse{
		ID:           wire.ResponseID,
		Model:        wire.ModelVersion,
		FinishReason: llm.FinishStop,
	}
	if wire.UsageMetadata != nil {
		u := wire.UsageMetadata.toLLM()
		resp.Usage = &u
	}
	if len(wire.Candidates) == 0 {
		return resp, nil
	}

	cand := wire.Candidates[0]
	for _, p := range cand.Content.Parts {
		if p.Text != nil {
			resp.Content += *p.Text
		}
		if p.FunctionCall != nil {
			index := len(resp.ToolCalls)
			resp.ToolCalls = append(resp.ToolCalls, callFromWire(index, *p.FunctionCall))
		}
	}
	resp.FinishReason = finishReasonFromWire(cand.FinishReason, len(resp.ToolCalls) > 0)
	return resp, nil
}

func callFromWire(index int, fc functionCall) llm.ToolCall {
	args := string(fc.Args)
	if args == "" {
		args = "{}"
	}
	return llm.ToolCall{
		ID:    synthesizeCallID(index, fc.Name),
		Type:  llm.ToolTypeFunction,
		Index: index,
		Function: llm.FunctionCall{
			Name:      fc.Name,
			Arguments: args,
		},
	}
}

func (c *Codec) ParseError(status int, body []byte) error {
	apiErr := &llm.Error{
		Vendor: c.Vendor(),
		Kind:   llm.KindFromStatus(status),
		Status: status,
		Raw:    string(body),
	}
	var wire errorResponse
	if err := json.Unmarshal(body, &wire); err == nil {
		apiErr.Message = wire.Error.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// finishReasonFromWire translates Gemini finish reasons, which never
// distinguish tool calls: a turn that ends in function calls still reports
// STOP, so the mapping promotes it when calls were seen.
func finishReasonFromWire(reason string, sawToolCalls bool) llm.FinishReason {
	switch reason {
	case "STOP", "":
		if sawToolCalls {
			return llm.FinishToolCalls
		}
		return llm.FinishStop
	case "MAX_TOKENS":
		return llm.FinishLength
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII":
		return llm.FinishContentFilter
	default:
		return llm.FinishStop
	}
}

func (c *Codec) NewEventMapper() llm.EventMapper {
	return &eventMapper{vendor: c.Vendor()}
}
