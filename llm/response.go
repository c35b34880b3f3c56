package llm

// FinishReason is the canonical reason a response stopped generating.
type FinishReason string

const (
	// FinishStop is a natural end of turn. Unknown vendor reasons map here.
	FinishStop FinishReason = "stop"
	// FinishLength means the response hit a token limit.
	FinishLength FinishReason = "length"
	// FinishToolCalls means the model stopped to call tools.
	FinishToolCalls FinishReason = "tool_calls"
	// FinishContentFilter means the vendor's safety system cut the response.
	FinishContentFilter FinishReason = "content_filter"
	// FinishError means the stream ended because of a vendor error event.
	FinishError FinishReason = "error"
)

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatResponse is the vendor-independent response for a completed exchange.
type ChatResponse struct {
	// ID is the vendor's response identifier, when it supplies one.
	ID string
	// Model that actually served the request.
	Model string
	// Content is the assembled text content. Empty content is a valid
	// outcome, distinct from any error.
	Content string
	// ToolCalls holds the completed calls, in index order.
	ToolCalls []ToolCall
	// FinishReason is the canonical stop reason.
	FinishReason FinishReason
	// Usage is set when the vendor reported token counts.
	Usage *Usage
}
