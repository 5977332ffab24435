package storage

import (
	"sync"

	"jarvis/model"
)

// Memory keeps the snapshot in process. SaveErr and LoadErr force failures in tests.
type Memory struct {
	mu       sync.Mutex
	messages []model.Message
	saves    int

	LoadErr error
	SaveErr error
}

func NewMemory(initial ...model.Message) *Memory {
	return &Memory{messages: append([]model.Message(nil), initial...)}
}

func (m *Memory) Load() ([]model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, &PersistenceError{Op: "load", Path: "memory", Err: m.LoadErr}
	}
	return append([]model.Message{}, m.messages...), nil
}

func (m *Memory) Save(messages []model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return &PersistenceError{Op: "save", Path: "memory", Err: m.SaveErr}
	}
	m.messages = append([]model.Message(nil), messages...)
	m.saves++
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	return nil
}

// Saves counts successful Save calls
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
