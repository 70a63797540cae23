package llm

import (
	"context"
	"fmt"
	"sync"

	"aistats/ports"
)

// MockChatModel replays scripted responses in order and records every request
type MockChatModel struct {
	mu        sync.Mutex
	Responses []*ports.ChatResponse
	Errors    []error // Errors[i], when non-nil, fails the i-th call
	Requests  []ports.ChatRequest
}

// NewMockChatModel creates a mock that returns responses in order
func NewMockChatModel(responses ...*ports.ChatResponse) *MockChatModel {
	return &MockChatModel{Responses: responses}
}

// Chat returns the next scripted response
func (m *MockChatModel) Chat(ctx context.Context, req ports.ChatRequest) (*ports.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := len(m.Requests)
	m.Requests = append(m.Requests, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if i < len(m.Errors) && m.Errors[i] != nil {
		return nil, m.Errors[i]
	}
	if i >= len(m.Responses) {
		return nil, fmt.Errorf("mock chat model: no scripted response for call %d", i+1)
	}
	return m.Responses[i], nil
}

// Calls returns the number of requests received
func (m *MockChatModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// TextResponse is a plain reply without tool calls
func TextResponse(content string) *ports.ChatResponse {
	return &ports.ChatResponse{Content: content}
}

// ToolCallResponse is a reply that requests the given calls
func ToolCallResponse(calls ...ports.ToolCall) *ports.ChatResponse {
	return &ports.ChatResponse{ToolCalls: calls}
}
