package anthropic

import (
	"encoding/json"

	"github.com/parlancehq/parlance/llm"
)

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

// contentBlock is the union of every block shape the messages API uses. The
// Type field decides which of the remaining fields are meaningful.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`

	// tool_use blocks.
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result blocks.
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`

	// image blocks.
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

func contentBlocksFromLLM(content llm.Content) []contentBlock {
	var blocks []contentBlock
	for _, item := range content {
		switch v := item.(type) {
		case *llm.TextContent:
			blocks = append(blocks, contentBlock{Type: "text", Text: v.Text})
		case *llm.JSONContent:
			blocks = append(blocks, contentBlock{Type: "text", Text: string(v.Data)})
		case *llm.ImageURLContent:
			blocks = append(blocks, contentBlock{
				Type:   "image",
				Source: &imageSource{Type: "url", URL: v.URL},
			})
		case *llm.ImageDataContent:
			blocks = append(blocks, contentBlock{
				Type:   "image",
				Source: &imageSource{Type: "base64", MediaType: v.MediaType, Data: v.Data},
			})
		}
	}
	return blocks
}

// flatText renders content to a plain string for places the API only takes
// text, like tool results.
func flatText(content llm.Content) string {
	var text string
	for _, item := range content {
		switch v := item.(type) {
		case *llm.TextContent:
			text += v.Text
		case *llm.JSONContent:
			text += string(v.Data)
		}
	}
	return text
}

type toolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type toolChoice struct {
	Type string `json:"type"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func (u usage) toLLM(inputTokens int) llm.Usage {
	if u.InputTokens != 0 {
		inputTokens = u.InputTokens
	}
	return llm.Usage{
		PromptTokens:     inputTokens,
		CompletionTokens: u.OutputTokens,
		TotalTokens:      inputTokens + u.OutputTokens,
	}
}

type messageResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      *usage         `json:"usage"`
}

// streamEvent is the union of every event payload the streaming API sends.
type streamEvent struct {
	Type         string           `json:"type"`
	Message      *messageResponse `json:"message,omitempty"`
	Index        int              `json:"index"`
	ContentBlock *contentBlock    `json:"content_block,omitempty"`
	Delta        *eventDelta      `json:"delta,omitempty"`
	Usage        *usage           `json:"usage,omitempty"`
	Error        *errorDetail     `json:"error,omitempty"`
}

type eventDelta struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
	StopReason  string `json:"stop_reason,omitempty"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Type  string       `json:"type"`
	Error *errorDetail `json:"error"`
}
