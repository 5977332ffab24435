package testutil

import (
	"context"
	"sync"

	"jarvis/api"
	"jarvis/model"
)

// MockChatAPI implements model.ChatAPI for testing
type MockChatAPI struct {
	// Configurable responses
	SendChatFunc func(ctx context.Context, req api.ChatRequest, onChunk api.ChunkCallback) (string, error)
	NewChatFunc  func(ctx context.Context) (*api.NewChatResponse, error)

	mu       sync.Mutex
	requests []api.ChatRequest
	newChats int
}

// NewMockChatAPI creates a mock that streams "Mock response" as one chunk
func NewMockChatAPI() *MockChatAPI {
	mock := &MockChatAPI{}
	mock.SendChatFunc = mock.defaultSendChat
	mock.NewChatFunc = mock.defaultNewChat
	return mock
}

func (m *MockChatAPI) defaultSendChat(ctx context.Context, req api.ChatRequest, onChunk api.ChunkCallback) (string, error) {
	onChunk("Mock response")
	return "Mock response", nil
}

func (m *MockChatAPI) defaultNewChat(ctx context.Context) (*api.NewChatResponse, error) {
	return &api.NewChatResponse{Message: "New chat started.", MemoryCleared: true}, nil
}

// StreamChunks makes SendChat deliver chunks in order and return their concatenation
func (m *MockChatAPI) StreamChunks(chunks ...string) {
	m.SendChatFunc = func(ctx context.Context, req api.ChatRequest, onChunk api.ChunkCallback) (string, error) {
		full := ""
		for _, c := range chunks {
			onChunk(c)
			full += c
		}
		return full, nil
	}
}

func (m *MockChatAPI) SendChat(ctx context.Context, req api.ChatRequest, onChunk api.ChunkCallback) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.SendChatFunc(ctx, req, onChunk)
}

func (m *MockChatAPI) NewChat(ctx context.Context) (*api.NewChatResponse, error) {
	m.mu.Lock()
	m.newChats++
	m.mu.Unlock()
	return m.NewChatFunc(ctx)
}

// Requests returns every chat request received so far
func (m *MockChatAPI) Requests() []api.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]api.ChatRequest(nil), m.requests...)
}

func (m *MockChatAPI) NewChatCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newChats
}

// RecordingNotifier keeps every notification it receives
type RecordingNotifier struct {
	mu            sync.Mutex
	notifications []model.Notification
}

func (r *RecordingNotifier) Notify(n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *RecordingNotifier) All() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Notification(nil), r.notifications...)
}

// Last returns the most recent notification, or the zero value
func (r *RecordingNotifier) Last() model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return model.Notification{}
	}
	return r.notifications[len(r.notifications)-1]
}
