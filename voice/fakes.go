package voice

import (
	"context"
	"os"
	"sync"

	"jarvis/api"
)

// FakeRecognizer is a scripted Recognizer. Tests drive it with Emit, Fail
// and End; Stop ends the session unless HoldEndOnStop is set.
type FakeRecognizer struct {
	Unavailable   bool
	StartErr      error
	HoldEndOnStop bool

	mu       sync.Mutex
	sessions []RecognitionCallbacks
	stops    int
}

func (f *FakeRecognizer) Available() bool {
	return !f.Unavailable
}

func (f *FakeRecognizer) Start(ctx context.Context, cb RecognitionCallbacks) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartErr != nil {
		return f.StartErr
	}
	f.sessions = append(f.sessions, cb)
	return nil
}

func (f *FakeRecognizer) Stop() {
	f.mu.Lock()
	f.stops++
	hold := f.HoldEndOnStop
	f.mu.Unlock()
	if !hold {
		f.End()
	}
}

func (f *FakeRecognizer) Emit(text string, final bool) {
	f.callbacks().OnResult(Result{Text: text, Final: final})
}

func (f *FakeRecognizer) Fail(err error) {
	f.callbacks().OnError(err)
}

// End fires the end event of the latest session.
func (f *FakeRecognizer) End() {
	f.EndSession(-1)
}

// EndSession fires the end event of the i-th started session; -1 is the latest.
func (f *FakeRecognizer) EndSession(i int) {
	f.mu.Lock()
	if i < 0 {
		i = len(f.sessions) - 1
	}
	var onEnd func()
	if i >= 0 && i < len(f.sessions) {
		onEnd = f.sessions[i].OnEnd
	}
	f.mu.Unlock()
	if onEnd != nil {
		onEnd()
	}
}

func (f *FakeRecognizer) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *FakeRecognizer) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

func (f *FakeRecognizer) callbacks() RecognitionCallbacks {
	f.mu.Lock()
	defer f.mu.Unlock()
	var cb RecognitionCallbacks
	if n := len(f.sessions); n > 0 {
		cb = f.sessions[n-1]
	}
	if cb.OnResult == nil {
		cb.OnResult = func(Result) {}
	}
	if cb.OnError == nil {
		cb.OnError = func(error) {}
	}
	return cb
}

// FakeMicrophone denies permission when Err is set.
type FakeMicrophone struct {
	Err error
}

func (f *FakeMicrophone) RequestPermission(ctx context.Context) error {
	return f.Err
}

// FakePlayer records what it played. With Block set, Play waits for Block to
// be closed or for ctx to end.
type FakePlayer struct {
	Err   error
	Block chan struct{}

	mu     sync.Mutex
	played [][]byte
	paths  []string
	stops  int
}

func (f *FakePlayer) Play(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.played = append(f.played, data)
	f.paths = append(f.paths, path)
	block := f.Block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.Err
}

func (f *FakePlayer) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *FakePlayer) Played() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.played...)
}

func (f *FakePlayer) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func (f *FakePlayer) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

// FakeSynthesizer returns Audio, or Err, for every request.
type FakeSynthesizer struct {
	Audio []byte
	Err   error

	mu       sync.Mutex
	requests []api.VoiceRequest
}

func (f *FakeSynthesizer) SynthesizeVoice(ctx context.Context, req api.VoiceRequest) ([]byte, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Audio, nil
}

func (f *FakeSynthesizer) Requests() []api.VoiceRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.VoiceRequest(nil), f.requests...)
}
