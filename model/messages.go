package model

// StoreChangedMsg is delivered when the conversation or its flags changed.
type StoreChangedMsg struct{}

type MessageSentMsg struct {
	Reply string
	Mode  Mode
	Err   error
}

type ChatClearedMsg struct {
	Err error
}

type NotificationMsg struct {
	Notification Notification
}
