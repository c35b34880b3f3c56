package google

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/parlancehq/parlance/llm"
)

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type fileData struct {
	MimeType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri"`
}

type functionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

type functionResponse struct {
	Name     string          `json:"name"`
	Response json.RawMessage `json:"response"`
}

type part struct {
	Text             *string           `json:"text,omitempty"`
	InlineData       *inlineData       `json:"inlineData,omitempty"`
	FileData         *fileData         `json:"fileData,omitempty"`
	FunctionCall     *functionCall     `json:"functionCall,omitempty"`
	FunctionResponse *functionResponse `json:"functionResponse,omitempty"`
}

type parts []part

func (p parts) MarshalJSON() ([]byte, error) {
	// A single part doesn't need the array wrapper.
	if len(p) == 1 {
		return json.Marshal(p[0])
	}
	return json.Marshal([]part(p))
}

func (p *parts) UnmarshalJSON(data []byte) error {
	// Try a single part first, then fall back to an array of them.
	var pp part
	if err := json.Unmarshal(data, &pp); err == nil {
		*p = parts{pp}
		return nil
	}
	var value []part
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*p = parts(value)
	return nil
}

func textPart(text string) part {
	return part{Text: &text}
}

func partsFromLLM(content llm.Content) parts {
	var p parts
	for _, item := range content {
		switch v := item.(type) {
		case *llm.TextContent:
			p = append(p, textPart(v.Text))
		case *llm.JSONContent:
			p = append(p, textPart(string(v.Data)))
		case *llm.ImageURLContent:
			if dataValue, found := strings.CutPrefix(v.URL, "data:"); found {
				if mimeType, data, ok := strings.Cut(dataValue, ";base64,"); ok {
					p = append(p, part{InlineData: &inlineData{MimeType: mimeType, Data: data}})
					continue
				}
			}
			p = append(p, part{FileData: &fileData{FileURI: v.URL}})
		case *llm.ImageDataContent:
			p = append(p, part{InlineData: &inlineData{MimeType: v.MediaType, Data: v.Data}})
		}
	}
	return p
}

type message struct {
	Role  string `json:"role"`
	Parts parts  `json:"parts"`
}

func messageFromLLM(m llm.Message) message {
	var role string
	switch m.Role {
	case llm.RoleAssistant:
		role = "model"
	case llm.RoleTool:
		role = "user"
	default:
		role = "user"
	}
	msg := message{Role: role}
	if m.Role == llm.RoleTool {
		msg.Parts = parts{{FunctionResponse: functionResponseFromLLM(m)}}
		return msg
	}
	msg.Parts = partsFromLLM(m.Content)
	for _, call := range m.ToolCalls {
		args := json.RawMessage(call.Function.Arguments)
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}
		msg.Parts = append(msg.Parts, part{
			FunctionCall: &functionCall{Name: call.Function.Name, Args: args},
		})
	}
	return msg
}

func functionResponseFromLLM(m llm.Message) *functionResponse {
	var response json.RawMessage
	if len(m.Content) == 1 {
		if jc, ok := m.Content[0].(*llm.JSONContent); ok {
			response = jc.Data
		}
	}
	if response == nil {
		data, err := json.Marshal(map[string]string{"result": m.Content.JoinText()})
		if err != nil {
			data = []byte(`{}`)
		}
		response = data
	}
	return &functionResponse{
		Name:     functionNameFromCallID(m.ToolCallID),
		Response: response,
	}
}

// functionNameFromCallID recovers the function name from the synthetic ids
// this codec hands out ("call_<n>_<name>"). Foreign ids pass through as-is;
// the API only requires the name to line up with what the model called.
func functionNameFromCallID(id string) string {
	rest, found := strings.CutPrefix(id, "call_")
	if !found {
		return id
	}
	seq, name, found := strings.Cut(rest, "_")
	if !found || name == "" {
		return id
	}
	if _, err := strconv.Atoi(seq); err != nil {
		return id
	}
	return name
}

func synthesizeCallID(index int, name string) string {
	return "call_" + strconv.Itoa(index) + "_" + name
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

func (u usageMetadata) toLLM() llm.Usage {
	total := u.TotalTokenCount
	if total == 0 {
		total = u.PromptTokenCount + u.CandidatesTokenCount
	}
	return llm.Usage{
		PromptTokens:     u.PromptTokenCount,
		CompletionTokens: u.CandidatesTokenCount,
		TotalTokens:      total,
	}
}

type candidateContent struct {
	Role  string `json:"role"`
	Parts parts  `json:"parts"`
}

type candidate struct {
	Content      candidateContent `json:"content"`
	FinishReason string           `json:"finishReason,omitempty"`
}

// generateResponse is both the non-streaming envelope and the shape of each
// streamed chunk; the API reuses it for both.
type generateResponse struct {
	Candidates    []candidate    `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata,omitempty"`
	ModelVersion  string         `json:"modelVersion,omitempty"`
	ResponseID    string         `json:"responseId,omitempty"`
}
