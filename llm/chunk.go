package llm

// ChunkKind discriminates the closed set of StreamChunk variants.
type ChunkKind string

const (
	// ChunkText carries an incremental piece of text content.
	ChunkText ChunkKind = "text"
	// ChunkToolCall carries a tool call. Mappers emit fragments; the stream
	// delivered to callers only ever carries complete snapshots.
	ChunkToolCall ChunkKind = "tool_call"
	// ChunkUsage carries token counts. Vendors may report usage several
	// times; the last occurrence is the one to trust.
	ChunkUsage ChunkKind = "usage"
	// ChunkFinish terminates a stream with the canonical finish reason.
	ChunkFinish ChunkKind = "finish"
)

// StreamChunk is one canonical streaming delta. Exactly the fields implied by
// Kind are set.
type StreamChunk struct {
	Kind         ChunkKind
	Text         string
	ToolCall     *ToolCall
	Usage        *Usage
	FinishReason FinishReason
}

// TextChunk returns a text delta chunk.
func TextChunk(text string) StreamChunk {
	return StreamChunk{Kind: ChunkText, Text: text}
}

// ToolCallChunk returns a tool-call chunk.
func ToolCallChunk(call ToolCall) StreamChunk {
	return StreamChunk{Kind: ChunkToolCall, ToolCall: &call}
}

// UsageChunk returns a usage chunk.
func UsageChunk(usage Usage) StreamChunk {
	return StreamChunk{Kind: ChunkUsage, Usage: &usage}
}

// FinishChunk returns the terminal chunk for a stream.
func FinishChunk(reason FinishReason) StreamChunk {
	return StreamChunk{Kind: ChunkFinish, FinishReason: reason}
}
