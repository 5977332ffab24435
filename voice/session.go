// Package voice drives speech capture and spoken replies.
package voice

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"jarvis/api"
	"jarvis/model"
)

type State int

const (
	StateIdle State = iota
	StateRecording
	// StateProcessing is reserved for a recognizer that transcribes after
	// capture ends. The built-in adapters transcribe live and never enter it.
	StateProcessing
	StateReview
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	case StateReview:
		return "review"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// TickerFunc returns a channel ticking once per second and a stop function.
type TickerFunc func() (<-chan time.Time, func())

func realTicker() (<-chan time.Time, func()) {
	t := time.NewTicker(time.Second)
	return t.C, t.Stop
}

type Option func(*Session)

// WithTicker replaces the one-second recording timer.
func WithTicker(f TickerFunc) Option {
	return func(s *Session) {
		s.ticker = f
	}
}

// WithTempDir sets where synthesized audio is written before playback.
func WithTempDir(dir string) Option {
	return func(s *Session) {
		s.tempDir = dir
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

func WithNotifier(n model.Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// Session is the voice state machine: idle -> recording -> review -> idle.
// All methods are safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	state      State
	transcript string
	elapsed    int
	generation uint64
	stopTicker func()

	playing    bool
	playGen    uint64
	cancelPlay context.CancelFunc

	mic        Microphone
	recognizer Recognizer
	player     Player
	synth      Synthesizer

	notifier model.Notifier
	logger   *zap.Logger
	ticker   TickerFunc
	tempDir  string

	changes chan struct{}
}

func NewSession(mic Microphone, recognizer Recognizer, player Player, synth Synthesizer, opts ...Option) *Session {
	s := &Session{
		mic:        mic,
		recognizer: recognizer,
		player:     player,
		synth:      synth,
		notifier:   model.NotifierFunc(func(model.Notification) {}),
		logger:     zap.NewNop(),
		ticker:     realTicker,
		tempDir:    os.TempDir(),
		changes:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Changes delivers a value after any state change, coalesced.
func (s *Session) Changes() <-chan struct{} {
	return s.changes
}

// Supported reports whether a recognizer is available at all.
func (s *Session) Supported() bool {
	return s.recognizer != nil && s.recognizer.Available()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

// Elapsed returns whole seconds recorded in the current session.
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *Session) ElapsedText() string {
	return FormatElapsed(s.Elapsed())
}

func (s *Session) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// StartRecording asks for microphone access and starts continuous
// recognition. It does nothing unless the session is idle.
func (s *Session) StartRecording(ctx context.Context) error {
	if s.State() != StateIdle {
		return nil
	}

	if !s.Supported() {
		s.notify("Not Supported", "Voice input is not supported on this device.")
		return ErrNotSupported
	}

	if s.mic != nil {
		if err := s.mic.RequestPermission(ctx); err != nil {
			s.logger.Warn("microphone permission denied", zap.Error(err))
			s.notify("Permission Denied", "Please allow microphone access to use voice input.")
			return &PermissionError{Err: err}
		}
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil
	}
	s.generation++
	gen := s.generation
	s.transcript = ""
	s.elapsed = 0
	s.state = StateRecording
	s.startTickerLocked(gen)
	s.mu.Unlock()
	s.emit()

	s.logger.Debug("recording started", zap.Uint64("generation", gen))

	err := s.recognizer.Start(ctx, RecognitionCallbacks{
		OnResult: func(r Result) { s.handleResult(gen, r) },
		OnError:  func(err error) { s.handleError(gen, err) },
		OnEnd:    func() { s.handleEnd(gen) },
	})
	if err != nil {
		s.handleError(gen, err)
		return &RecognitionError{Err: err}
	}
	return nil
}

// StopRecording asks the recognizer to finish. The session moves to review
// when the recognizer reports its end.
func (s *Session) StopRecording() {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return
	}
	s.clearTickerLocked()
	s.mu.Unlock()

	s.recognizer.Stop()
}

// SetTranscript replaces the transcript while recording or in review.
func (s *Session) SetTranscript(text string) {
	s.mu.Lock()
	if s.state != StateRecording && s.state != StateReview {
		s.mu.Unlock()
		return
	}
	s.transcript = text
	s.mu.Unlock()
	s.emit()
}

// Send hands the trimmed transcript to send and resets to idle. It reports
// false, without calling send, outside review or with a blank transcript.
func (s *Session) Send(send func(text string)) bool {
	s.mu.Lock()
	text := strings.TrimSpace(s.transcript)
	if s.state != StateReview || text == "" {
		s.mu.Unlock()
		return false
	}
	s.transcript = ""
	s.elapsed = 0
	s.state = StateIdle
	s.mu.Unlock()
	s.emit()

	send(text)
	return true
}

// DiscardRecording abandons the current recording from any state.
func (s *Session) DiscardRecording() {
	s.mu.Lock()
	wasRecording := s.state == StateRecording
	// Bump the generation so a late end event cannot move us to review
	s.generation++
	s.transcript = ""
	s.elapsed = 0
	s.state = StateIdle
	s.clearTickerLocked()
	s.mu.Unlock()
	s.emit()

	if wasRecording {
		s.recognizer.Stop()
	}
}

// Close stops recording and playback.
func (s *Session) Close() {
	s.DiscardRecording()
	s.StopPlayback()
}

func (s *Session) handleResult(gen uint64, r Result) {
	if !r.Final || r.Text == "" {
		return
	}
	s.mu.Lock()
	if gen != s.generation || s.state != StateRecording {
		s.mu.Unlock()
		return
	}
	s.transcript += r.Text
	s.mu.Unlock()
	s.emit()
}

func (s *Session) handleError(gen uint64, err error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.generation++
	s.state = StateIdle
	s.clearTickerLocked()
	s.mu.Unlock()
	s.emit()

	s.logger.Error("speech recognition error", zap.Error(err))
	s.notify("Voice Error", "Failed to recognize speech. Please try again.")
}

func (s *Session) handleEnd(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || s.state != StateRecording {
		s.mu.Unlock()
		return
	}
	s.state = StateReview
	s.clearTickerLocked()
	s.mu.Unlock()
	s.emit()
}

func (s *Session) startTickerLocked(gen uint64) {
	tick, stop := s.ticker()
	done := make(chan struct{})
	var once sync.Once
	s.stopTicker = func() {
		once.Do(func() {
			stop()
			close(done)
		})
	}

	go func() {
		for {
			select {
			case <-tick:
				s.mu.Lock()
				if gen == s.generation && s.state == StateRecording {
					s.elapsed++
				}
				s.mu.Unlock()
				s.emit()
			case <-done:
				return
			}
		}
	}()
}

func (s *Session) clearTickerLocked() {
	if s.stopTicker != nil {
		s.stopTicker()
		s.stopTicker = nil
	}
}

// PlayText synthesizes text and plays it, stopping any earlier playback.
// It blocks until playback ends.
func (s *Session) PlayText(ctx context.Context, text, voiceID string) error {
	s.StopPlayback()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.playGen++
	gen := s.playGen
	s.playing = true
	s.cancelPlay = cancel
	s.mu.Unlock()
	s.emit()
	defer s.finishPlayback(gen)

	if s.synth == nil || s.player == nil {
		s.notify("Voice Synthesis Error", "Failed to generate audio response.")
		return fmt.Errorf("failed to synthesize speech: no synthesizer or player configured")
	}

	audio, err := s.synth.SynthesizeVoice(ctx, api.VoiceRequest{Text: text, Voice: voiceID})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.logger.Error("voice synthesis failed", zap.Error(err))
		s.notify("Voice Synthesis Error", "Failed to generate audio response.")
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}

	path, err := s.writeAudio(audio)
	if err != nil {
		s.logger.Error("failed to stage audio", zap.Error(err))
		s.notify("Playback Error", "Failed to play audio response.")
		return &PlaybackError{Err: err}
	}
	defer os.Remove(path)

	if err := s.player.Play(ctx, path); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.logger.Error("audio playback failed", zap.Error(err))
		s.notify("Playback Error", "Failed to play audio response.")
		return &PlaybackError{Err: err}
	}
	return nil
}

// StopPlayback halts any active playback.
func (s *Session) StopPlayback() {
	s.mu.Lock()
	cancel := s.cancelPlay
	wasPlaying := s.playing
	s.cancelPlay = nil
	s.playing = false
	s.playGen++
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if wasPlaying && s.player != nil {
		s.player.Stop()
	}
	s.emit()
}

func (s *Session) finishPlayback(gen uint64) {
	s.mu.Lock()
	if gen != s.playGen {
		s.mu.Unlock()
		return
	}
	s.playing = false
	s.cancelPlay = nil
	s.mu.Unlock()
	s.emit()
}

// writeAudio stages audio as a private temp file for the player.
func (s *Session) writeAudio(audio []byte) (string, error) {
	f, err := os.CreateTemp(s.tempDir, "jarvis-voice-*.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create audio file: %w", err)
	}
	if _, err := f.Write(audio); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close audio file: %w", err)
	}
	return f.Name(), nil
}

func (s *Session) notify(title, description string) {
	s.notifier.Notify(model.Notification{
		Title:       title,
		Description: description,
		Variant:     model.VariantDestructive,
	})
}

func (s *Session) emit() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// FormatElapsed renders seconds as mm:ss.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
