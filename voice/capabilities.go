package voice

import (
	"context"

	"jarvis/api"
)

// Result is one recognition fragment. Interim fragments may be revised;
// final ones are not.
type Result struct {
	Text  string
	Final bool
}

// RecognitionCallbacks receive recognizer events. OnEnd fires exactly once
// per Start, after Stop or after the recognizer gives up on its own.
type RecognitionCallbacks struct {
	OnResult func(Result)
	OnError  func(error)
	OnEnd    func()
}

// Recognizer turns microphone audio into text continuously until stopped.
type Recognizer interface {
	Available() bool
	Start(ctx context.Context, cb RecognitionCallbacks) error
	Stop()
}

type Microphone interface {
	RequestPermission(ctx context.Context) error
}

// Player plays an audio file. Play blocks until playback ends, fails or ctx
// is canceled. Stop halts playback so the next Play starts from the beginning.
type Player interface {
	Play(ctx context.Context, path string) error
	Stop()
}

// Synthesizer is the part of api.Client that produces speech audio.
type Synthesizer interface {
	SynthesizeVoice(ctx context.Context, req api.VoiceRequest) ([]byte, error)
}
