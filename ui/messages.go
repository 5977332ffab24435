package ui

import (
	appmodel "jarvis/model"
)

type Message = appmodel.Message

type voiceChangedMsg struct{}

type recordingStartedMsg struct {
	Err error
}

type playbackDoneMsg struct {
	Err error
}

type healthTickMsg struct{}

type healthCheckedMsg struct {
	Status string
	Err    error
}

type toastExpiredMsg struct {
	ID int
}

type exportDoneMsg struct {
	Path string
	Err  error
}

type flashTickMsg struct{}
