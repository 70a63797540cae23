package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aistats/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClient_Validation(t *testing.T) {
	_, err := NewOpenAIClient(Config{Model: "m"})
	assert.Error(t, err)

	_, err = NewOpenAIClient(Config{APIKey: "k"})
	assert.Error(t, err)
}

func TestOpenAIClient_ToolCallRoundTrip(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "test-model",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "descriptive_stats", "arguments": "{\"variables\":[\"age\"]}"}
					}]
				}
			}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(Config{APIKey: "sk-test", Model: "test-model", BaseURL: srv.URL + "/v1/", Timeout: 5 * time.Second})
	require.NoError(t, err)

	resp, err := client.Chat(context.Background(), ports.ChatRequest{
		Messages: []ports.ChatMessage{{Role: ports.RoleSystem, Content: "sys"}, {Role: ports.RoleUser, Content: "统计年龄"}},
		Tools: []ports.ToolDefinition{{
			Name:       "descriptive_stats",
			Parameters: map[string]any{"type": "object"},
		}},
		ToolChoice: "auto",
	})
	require.NoError(t, err)

	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, ports.ToolCall{ID: "call_1", Name: "descriptive_stats", Arguments: `{"variables":["age"]}`}, resp.ToolCalls[0])
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	assert.Equal(t, "auto", captured["tool_choice"])
	tools, ok := captured["tools"].([]any)
	require.True(t, ok)
	assert.Len(t, tools, 1)
	assert.Len(t, captured["messages"], 2)
}

func TestOpenAIClient_NoToolsOmitsToolChoice(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"你好"}}]}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(Config{APIKey: "k", Model: "m", BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := client.Chat(context.Background(), ports.ChatRequest{
		Messages:   []ports.ChatMessage{{Role: ports.RoleUser, Content: "hi"}},
		ToolChoice: "auto",
	})
	require.NoError(t, err)
	assert.Equal(t, "你好", resp.Content)
	assert.Empty(t, resp.ToolCalls)
	assert.NotContains(t, captured, "tools")
	assert.NotContains(t, captured, "tool_choice")
}

func TestOpenAIClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(Config{APIKey: "k", Model: "m", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), ports.ChatRequest{Messages: []ports.ChatMessage{{Role: ports.RoleUser, Content: "hi"}}})
	assert.Error(t, err)
}

func TestMockChatModel(t *testing.T) {
	boom := errors.New("boom")
	mock := NewMockChatModel(TextResponse("first"), nil)
	mock.Errors = []error{nil, boom}

	resp, err := mock.Chat(context.Background(), ports.ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Content)

	_, err = mock.Chat(context.Background(), ports.ChatRequest{})
	assert.ErrorIs(t, err, boom)

	_, err = mock.Chat(context.Background(), ports.ChatRequest{})
	assert.Error(t, err)
	assert.Equal(t, 3, mock.Calls())
}
