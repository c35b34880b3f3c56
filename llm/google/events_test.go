package google

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlancehq/parlance/llm"
	"github.com/parlancehq/parlance/sse"
)

func mapData(t *testing.T, mapper llm.EventMapper, data string) []llm.StreamChunk {
	t.Helper()
	chunks, err := mapper.MapEvent(sse.Event{Data: data})
	require.NoError(t, err, "MapEvent must succeed")
	return chunks
}

func TestMapEventText(t *testing.T) {
	mapper := New("AIza-test").NewEventMapper()

	chunks := mapData(t, mapper,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello"}]}}]}`)
	require.Len(t, chunks, 1)
	assert.Equal(t, llm.ChunkText, chunks[0].Kind)
	assert.Equal(t, "Hello", chunks[0].Text)
}

func TestMapEventEmptyTextSkipped(t *testing.T) {
	mapper := New("AIza-test").NewEventMapper()

	chunks := mapData(t, mapper,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":""}]}}]}`)
	assert.Empty(t, chunks)
}

func TestMapEventFunctionCallArrivesWhole(t *testing.T) {
	mapper := New("AIza-test").NewEventMapper()

	chunks := mapData(t, mapper,
		`{"candidates":[{"content":{"role":"model","parts":[{"functionCall":{"name":"get_weather","args":{"city":"Paris"}}}]}}]}`)
	require.Len(t, chunks, 1)
	require.NotNil(t, chunks[0].ToolCall)
	call := *chunks[0].ToolCall
	assert.True(t, call.Complete(), "Function calls arrive whole, never as fragments")
	assert.Equal(t, "call_0_get_weather", call.ID)
	assert.Equal(t, 0, call.Index)
	assert.JSONEq(t, `{"city":"Paris"}`, call.Function.Arguments)

	chunks = mapData(t, mapper,
		`{"candidates":[{"content":{"role":"model","parts":[{"functionCall":{"name":"get_time"}}]}}]}`)
	require.Len(t, chunks, 1)
	second := *chunks[0].ToolCall
	assert.Equal(t, "call_1_get_time", second.ID, "Indexes must follow arrival order")
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, "{}", second.Function.Arguments, "Missing args must become an empty object")
}

func TestMapEventUsageForwardedEachTime(t *testing.T) {
	mapper := New("AIza-test").NewEventMapper()

	chunks := mapData(t, mapper,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hi"}]}}],"usageMetadata":{"promptTokenCount":5,"candidatesTokenCount":1,"totalTokenCount":6}}`)
	require.Len(t, chunks, 2)
	assert.Equal(t, llm.ChunkUsage, chunks[0].Kind)
	assert.Equal(t, 5, chunks[0].Usage.PromptTokens)

	chunks = mapData(t, mapper,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"!"}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":5,"candidatesTokenCount":3,"totalTokenCount":8}}`)
	require.Len(t, chunks, 3, "Every usage occurrence must be forwarded")
	assert.Equal(t, 8, chunks[0].Usage.TotalTokens)
	assert.Equal(t, llm.ChunkFinish, chunks[2].Kind)
}

func TestMapEventFinishOnlyOnce(t *testing.T) {
	mapper := New("AIza-test").NewEventMapper()

	chunks := mapData(t, mapper, `{"candidates":[{"content":{"role":"model","parts":[{"text":"a"}]},"finishReason":"STOP"}]}`)
	require.Len(t, chunks, 2)
	assert.Equal(t, llm.FinishStop, chunks[1].FinishReason)

	chunks = mapData(t, mapper, `{"candidates":[{"content":{"role":"model","parts":[{"text":"b"}]},"finishReason":"STOP"}]}`)
	require.Len(t, chunks, 1, "A second finish reason must not emit another finish")
	assert.Equal(t, llm.ChunkText, chunks[0].Kind)
}

func TestMapEventFinishPromotedForToolCalls(t *testing.T) {
	mapper := New("AIza-test").NewEventMapper()

	chunks := mapData(t, mapper,
		`{"candidates":[{"content":{"role":"model","parts":[{"functionCall":{"name":"get_weather","args":{"city":"Paris"}}}]},"finishReason":"STOP"}]}`)
	require.Len(t, chunks, 2)
	assert.Equal(t, llm.FinishToolCalls, chunks[1].FinishReason,
		"STOP after function calls must normalize to the tool-calls finish")
}

func TestMapEventSafetyFinish(t *testing.T) {
	mapper := New("AIza-test").NewEventMapper()

	chunks := mapData(t, mapper, `{"candidates":[{"content":{"role":"model","parts":[]},"finishReason":"SAFETY"}]}`)
	require.Len(t, chunks, 1)
	assert.Equal(t, llm.FinishContentFilter, chunks[0].FinishReason)
}

func TestMapEventNoCandidates(t *testing.T) {
	mapper := New("AIza-test").NewEventMapper()

	chunks := mapData(t, mapper, `{"usageMetadata":{"promptTokenCount":5,"candidatesTokenCount":0,"totalTokenCount":5}}`)
	require.Len(t, chunks, 1)
	assert.Equal(t, llm.ChunkUsage, chunks[0].Kind)
}

func TestMapEventUnknownEventType(t *testing.T) {
	mapper := New("AIza-test").NewEventMapper()

	chunks, err := mapper.MapEvent(sse.Event{Type: "server_notice", Data: "not even json"})
	require.NoError(t, err, "Typed events outside the taxonomy must not fail the stream")
	assert.Empty(t, chunks)
}

func TestMapEventMalformed(t *testing.T) {
	mapper := New("AIza-test").NewEventMapper()

	_, err := mapper.MapEvent(sse.Event{Data: "not json"})
	var apiErr *llm.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, llm.ErrKindParse, apiErr.Kind)
	assert.Equal(t, "google", apiErr.Vendor)
}

func sseHandler(t *testing.T, lines []string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AIza-test", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, []string{"application/json"}, r.Header["Content-Type"],
			"Exactly one Content-Type value must reach the wire")
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "data: %s\n\n", line)
		}
	}
}

func TestChatStreamText(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hel"}]}}]}`,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"lo!"}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":4,"candidatesTokenCount":3,"totalTokenCount":7}}`,
	}))
	defer server.Close()

	client := llm.NewClient(New("AIza-test"), llm.WithBaseURL(server.URL))
	stream, err := client.ChatStream(context.Background(), llm.NewRequest("gemini-2.0-flash", []llm.Message{
		llm.UserMessage(llm.Text("Say hello")),
	}))
	require.NoError(t, err)

	resp, err := llm.Collect(stream)
	require.NoError(t, err)
	assert.Equal(t, "Hello!", resp.Content)
	assert.Equal(t, llm.FinishStop, resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 7, resp.Usage.TotalTokens)
}

func TestChatStreamFunctionCall(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{
		`{"candidates":[{"content":{"role":"model","parts":[{"functionCall":{"name":"get_weather","args":{"city":"Paris"}}}]},"finishReason":"STOP"}]}`,
	}))
	defer server.Close()

	client := llm.NewClient(New("AIza-test"), llm.WithBaseURL(server.URL))
	stream, err := client.ChatStream(context.Background(), llm.NewRequest("gemini-2.0-flash", []llm.Message{
		llm.UserMessage(llm.Text("Weather in Paris?")),
	}))
	require.NoError(t, err)

	resp, err := llm.Collect(stream)
	require.NoError(t, err)
	assert.Equal(t, llm.FinishToolCalls, resp.FinishReason)
	require.Len(t, resp.ToolCalls, 1)
	call := resp.ToolCalls[0]
	assert.Equal(t, "call_0_get_weather", call.ID)
	assert.Equal(t, "get_weather", call.Function.Name)
	assert.JSONEq(t, `{"city":"Paris"}`, call.Function.Arguments)
}

func TestChatStreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	}))
	defer server.Close()

	client := llm.NewClient(New("AIza-test"), llm.WithBaseURL(server.URL))
	_, err := client.ChatStream(context.Background(), llm.NewRequest("gemini-2.0-flash", []llm.Message{
		llm.UserMessage(llm.Text("Hi")),
	}))

	var apiErr *llm.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, llm.ErrKindBadRequest, apiErr.Kind)
	assert.Equal(t, "API key not valid", apiErr.Message)
}
