package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"jarvis/model"
)

const jsonHistoryFile = "history.json"

// JSONFile stores the snapshot as a JSON array of messages
type JSONFile struct {
	path string
}

// NewJSONFile creates a JSON snapshot store in dataDir
func NewJSONFile(dataDir string) (*JSONFile, error) {
	// 0700 - conversation history is user-only
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	return &JSONFile{
		path: filepath.Join(dataDir, jsonHistoryFile),
	}, nil
}

func (s *JSONFile) Path() string {
	return s.path
}

// Load reads the snapshot. A missing file is an empty history.
func (s *JSONFile) Load() ([]model.Message, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []model.Message{}, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}

	var messages []model.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	if err := validate(messages); err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}

	return messages, nil
}

// Save overwrites the snapshot with messages
func (s *JSONFile) Save(messages []model.Message) error {
	if messages == nil {
		messages = []model.Message{}
	}

	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	// Write to a sibling temp file and rename so a crash never leaves half a snapshot
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	return nil
}

func (s *JSONFile) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return &PersistenceError{Op: "clear", Path: s.path, Err: err}
	}
	return nil
}

// validate rejects snapshots whose entries are not messages
func validate(messages []model.Message) error {
	for i, msg := range messages {
		switch msg.Role {
		case model.RoleUser, model.RoleAssistant, model.RoleSystem:
		default:
			return fmt.Errorf("message %d has unknown role %q", i, msg.Role)
		}
		if msg.ID == "" {
			return fmt.Errorf("message %d has no id", i)
		}
	}
	return nil
}
