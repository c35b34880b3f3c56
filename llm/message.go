package llm

// Message roles shared by every supported vendor. Vendors that use different
// role names on the wire (Gemini's "model") translate in their codec.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

type Message struct {
	// Role is one of the Role constants.
	Role string
	// Content is the message content.
	Content Content
	// ToolCalls echoes the calls an assistant message asked for, so that tool
	// results can be matched back up by the vendor.
	ToolCalls []ToolCall
	// ToolCallID is the ID of the call a tool message answers.
	ToolCallID string
}

// SystemMessage returns a system message with the given instructions.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: Text(text)}
}

// UserMessage returns a user message with the given content.
func UserMessage(content Content) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage returns an assistant message with the given content.
func AssistantMessage(content Content) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolMessage returns a tool message carrying the result for the given call.
func ToolMessage(callID string, result Content) Message {
	return Message{Role: RoleTool, Content: result, ToolCallID: callID}
}
