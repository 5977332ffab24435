package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jarvis/model"
)

// GenerateExportPath returns ~/Downloads/jarvis-chat-<timestamp>.json
func GenerateExportPath(now time.Time) string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = "."
	}

	filename := fmt.Sprintf("jarvis-chat-%s.json", now.Format("20060102-150405"))
	return filepath.Join(homeDir, "Downloads", filename)
}

// ExportToJSON writes the full conversation, not just the persisted tail
func ExportToJSON(messages []model.Message, exportPath string) error {
	if messages == nil {
		messages = []model.Message{}
	}

	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	// Ensure directory exists (0700 - user-only access)
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// 0600 - exports contain conversation history
	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
