package voice

import (
	"errors"
	"fmt"
)

// ErrNotSupported is returned when no speech recognizer is available.
var ErrNotSupported = errors.New("voice input is not supported on this device")

// PermissionError means microphone access was refused.
type PermissionError struct {
	Err error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("microphone permission denied: %v", e.Err)
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

// RecognitionError is reported by the recognizer while recording.
type RecognitionError struct {
	Err error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("speech recognition failed: %v", e.Err)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// PlaybackError means synthesized audio could not be played.
type PlaybackError struct {
	Err error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("audio playback failed: %v", e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}
