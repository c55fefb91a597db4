package playback

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"deckchat/internal/logging"
)

// ErrNoPlayer means no audio command is available; slides then advance on the timer.
var ErrNoPlayer = errors.New("no audio player available")

// Audio is one playing narration.
type Audio interface {
	Stop()
}

// Player starts narration. done is called once when playback ends on its own, with a
// non-nil error if it failed midway. done is not called after Stop.
type Player interface {
	Play(ref string, done func(error)) (Audio, error)
}

// NopPlayer never plays anything.
type NopPlayer struct{}

func (NopPlayer) Play(string, func(error)) (Audio, error) {
	return nil, ErrNoPlayer
}

// candidates are tried in order when no player command is configured.
var candidates = [][]string{
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"mpv", "--no-video", "--really-quiet"},
	{"afplay"},
	{"mpg123", "-q"},
}

// ExecPlayer plays files with an external command; the file path is the last argument.
type ExecPlayer struct {
	command []string
}

// NewExecPlayer uses command when given, otherwise the first installed candidate.
func NewExecPlayer(command []string) (*ExecPlayer, error) {
	if len(command) > 0 && strings.TrimSpace(command[0]) != "" {
		if _, err := exec.LookPath(command[0]); err != nil {
			return nil, fmt.Errorf("audio player %q: %w", command[0], err)
		}
		return &ExecPlayer{command: append([]string(nil), command...)}, nil
	}
	for _, c := range candidates {
		if _, err := exec.LookPath(c[0]); err == nil {
			return &ExecPlayer{command: c}, nil
		}
	}
	return nil, ErrNoPlayer
}

// Command returns the command line used for playback.
func (p *ExecPlayer) Command() []string {
	return append([]string(nil), p.command...)
}

func (p *ExecPlayer) Play(ref string, done func(error)) (Audio, error) {
	if _, err := os.Stat(ref); err != nil {
		return nil, fmt.Errorf("narration %s: %w", ref, err)
	}
	args := append(append([]string(nil), p.command[1:]...), ref)
	cmd := exec.Command(p.command[0], args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", p.command[0], err)
	}
	a := &execAudio{cmd: cmd}
	go func() {
		err := cmd.Wait()
		a.mu.Lock()
		stopped := a.stopped
		a.mu.Unlock()
		if stopped {
			return
		}
		if err != nil {
			logging.Debug().Err(err).Str("audio", ref).Msg("player exited with error")
		}
		done(err)
	}()
	return a, nil
}

type execAudio struct {
	mu      sync.Mutex
	cmd     *exec.Cmd
	stopped bool
}

func (a *execAudio) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	a.stopped = true
	if a.cmd.Process != nil {
		_ = a.cmd.Process.Kill()
	}
}
