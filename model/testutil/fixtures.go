package testutil

import (
	"fmt"
	"time"

	"jarvis/model"
)

// TestMessages returns n alternating user/assistant messages one second apart
func TestMessages(n int) []model.Message {
	base := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	messages := make([]model.Message, 0, n)
	for i := 0; i < n; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		messages = append(messages, model.Message{
			ID:        fmt.Sprintf("msg-%03d", i),
			Role:      role,
			Content:   fmt.Sprintf("message %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
	}
	return messages
}
