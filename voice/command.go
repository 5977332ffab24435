package voice

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// stopGrace is how long a stopped recognizer may keep flushing final results.
const stopGrace = 2 * time.Second

// CommandRecognizer runs an external speech-to-text command that captures
// the microphone and prints one JSON object per line:
//
//	{"text": "hello there", "final": true}
//
// The command is interrupted on Stop and is expected to flush its last final
// result before exiting.
type CommandRecognizer struct {
	args   []string
	logger *zap.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	stopped bool
}

func NewCommandRecognizer(command string, logger *zap.Logger) *CommandRecognizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandRecognizer{args: strings.Fields(command), logger: logger}
}

func (r *CommandRecognizer) Available() bool {
	return commandExists(r.args)
}

func (r *CommandRecognizer) Start(ctx context.Context, cb RecognitionCallbacks) error {
	if !r.Available() {
		return ErrNotSupported
	}

	cmd := exec.CommandContext(ctx, r.args[0], r.args[1:]...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = stopGrace

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open recognizer output: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start recognizer: %w", err)
	}

	r.mu.Lock()
	r.cmd = cmd
	r.stopped = false
	r.mu.Unlock()

	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := scanner.Bytes()
			if !gjson.ValidBytes(line) {
				r.logger.Debug("skipping recognizer line", zap.ByteString("line", line))
				continue
			}
			if cb.OnResult != nil {
				cb.OnResult(Result{
					Text:  gjson.GetBytes(line, "text").String(),
					Final: gjson.GetBytes(line, "final").Bool(),
				})
			}
		}

		err := cmd.Wait()

		r.mu.Lock()
		stopped := r.stopped
		if r.cmd == cmd {
			r.cmd = nil
		}
		r.mu.Unlock()

		if err != nil && !stopped && ctx.Err() == nil && cb.OnError != nil {
			cb.OnError(&RecognitionError{Err: err})
		}
		if cb.OnEnd != nil {
			cb.OnEnd()
		}
	}()

	return nil
}

func (r *CommandRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd == nil || r.cmd.Process == nil {
		return
	}
	r.stopped = true
	if err := r.cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
		r.logger.Warn("failed to interrupt recognizer", zap.Error(err))
	}
}

// CommandMicrophone grants permission when the capture command can be found.
type CommandMicrophone struct {
	args []string
}

func NewCommandMicrophone(command string) *CommandMicrophone {
	return &CommandMicrophone{args: strings.Fields(command)}
}

func (m *CommandMicrophone) RequestPermission(ctx context.Context) error {
	if len(m.args) == 0 {
		return fmt.Errorf("no capture command configured")
	}
	if _, err := exec.LookPath(m.args[0]); err != nil {
		return fmt.Errorf("capture command %q not found: %w", m.args[0], err)
	}
	return nil
}

// CommandPlayer plays files with an external player such as aplay or afplay.
type CommandPlayer struct {
	args   []string
	logger *zap.Logger

	mu  sync.Mutex
	cmd *exec.Cmd
}

func NewCommandPlayer(command string, logger *zap.Logger) *CommandPlayer {
	if command == "" {
		command = DefaultPlayerCommand()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandPlayer{args: strings.Fields(command), logger: logger}
}

func (p *CommandPlayer) Available() bool {
	return commandExists(p.args)
}

func (p *CommandPlayer) Play(ctx context.Context, path string) error {
	if len(p.args) == 0 {
		return fmt.Errorf("no audio player configured")
	}

	args := append(append([]string(nil), p.args[1:]...), path)
	cmd := exec.CommandContext(ctx, p.args[0], args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	p.logger.Debug("playing audio", zap.String("player", p.args[0]), zap.String("path", path))

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", p.args[0], err)
	}

	p.mu.Lock()
	p.cmd = cmd
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		if p.cmd == cmd {
			p.cmd = nil
		}
		p.mu.Unlock()
	}()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w: %s", p.args[0], err, strings.TrimSpace(out.String()))
	}
	return nil
}

// Stop kills the running player. A later Play starts from the beginning.
func (p *CommandPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return
	}
	_ = p.cmd.Process.Kill()
}

// DefaultPlayerCommand picks the first audio player found on PATH.
func DefaultPlayerCommand() string {
	candidates := []string{"aplay -q", "paplay", "ffplay -nodisp -autoexit -loglevel quiet"}
	if runtime.GOOS == "darwin" {
		candidates = append([]string{"afplay"}, candidates...)
	}
	for _, c := range candidates {
		if commandExists(strings.Fields(c)) {
			return c
		}
	}
	return ""
}

func commandExists(args []string) bool {
	if len(args) == 0 {
		return false
	}
	_, err := exec.LookPath(args[0])
	return err == nil
}
