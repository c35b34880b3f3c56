package openai

import (
	"fmt"

	"github.com/parlancehq/parlance/llm"
)

type message struct {
	// Role can be "system", "user", "assistant", or "tool".
	Role string `json:"role"`
	// Content is either a flat string or a list of typed parts.
	Content any `json:"content"`
	// ToolCalls echoes the calls an assistant message asked for.
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
	// ToolCallID is the ID of the call a tool message answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

func messageFromLLM(m llm.Message, images bool) message {
	toolCalls := make([]toolCall, len(m.ToolCalls))
	for i, tc := range m.ToolCalls {
		toolCalls[i] = toolCall{
			ID:       tc.ID,
			Type:     llm.ToolTypeFunction,
			Function: toolCallFunction{Name: tc.Function.Name, Arguments: tc.Function.Arguments},
		}
	}
	return message{
		Role:       m.Role,
		Content:    contentFromLLM(m.Content, images),
		ToolCalls:  toolCalls,
		ToolCallID: m.ToolCallID,
	}
}

// contentFromLLM renders content as a flat string when it is text-only, which
// is what the vendors' own SDKs send, and as a part array otherwise. With
// images disabled every image block degrades to a fixed-form text placeholder.
func contentFromLLM(content llm.Content, images bool) any {
	textOnly := true
	for _, item := range content {
		if _, ok := item.(*llm.ImageURLContent); ok && images {
			textOnly = false
			break
		}
		if _, ok := item.(*llm.ImageDataContent); ok && images {
			textOnly = false
			break
		}
	}
	if textOnly {
		var text string
		for _, item := range content {
			switch v := item.(type) {
			case *llm.TextContent:
				text += v.Text
			case *llm.JSONContent:
				text += string(v.Data)
			case *llm.ImageURLContent:
				text += imagePlaceholder(v.URL)
			case *llm.ImageDataContent:
				text += imagePlaceholder(v.MediaType)
			}
		}
		return text
	}
	var parts []contentPart
	for _, item := range content {
		switch v := item.(type) {
		case *llm.TextContent:
			parts = append(parts, contentPart{Type: "text", Text: v.Text})
		case *llm.JSONContent:
			parts = append(parts, contentPart{Type: "text", Text: string(v.Data)})
		case *llm.ImageURLContent:
			parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: v.URL}})
		case *llm.ImageDataContent:
			uri := fmt.Sprintf("data:%s;base64,%s", v.MediaType, v.Data)
			parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: uri}})
		}
	}
	return parts
}

func imagePlaceholder(descriptor string) string {
	return fmt.Sprintf("[image: %s]", descriptor)
}

type toolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type toolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function toolCallFunction `json:"function"`
}

func (t toolCall) toLLM(index int) llm.ToolCall {
	return llm.ToolCall{
		ID:       t.ID,
		Type:     t.Type,
		Function: llm.FunctionCall{Name: t.Function.Name, Arguments: t.Function.Arguments},
		Index:    index,
	}
}

type toolCallDelta struct {
	toolCall
	Index int `json:"index"`
}

type toolDefinition struct {
	Type     string             `json:"type"`
	Function functionDefinition `json:"function"`
}

type functionDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
}

type chatCompletionDelta struct {
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	ToolCalls []toolCallDelta `json:"tool_calls"`
}

type chatCompletionChoice struct {
	Index        int                 `json:"index"`
	Delta        chatCompletionDelta `json:"delta"`
	FinishReason string              `json:"finish_reason"`
}

type chatCompletionChunk struct {
	ID                string                 `json:"id"`
	Object            string                 `json:"object"`
	Created           int64                  `json:"created"`
	Model             string                 `json:"model"`
	SystemFingerprint string                 `json:"system_fingerprint"`
	Choices           []chatCompletionChoice `json:"choices"`
	Usage             *usage                 `json:"usage"`
	Error             *errorDetail           `json:"error"`
}

type completionMessage struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []toolCall `json:"tool_calls"`
}

type completionChoice struct {
	Index        int               `json:"index"`
	Message      completionMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

type chatCompletion struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []completionChoice `json:"choices"`
	Usage   *usage             `json:"usage"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u usage) toLLM() llm.Usage {
	return llm.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

type errorResponse struct {
	Error *errorDetail `json:"error"`
}
