// Package browser opens the deck viewer after the server starts.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/fredcamaral/slidegen/internal/domain/ports"
)

// ErrNoBrowser is returned when no candidate command is installed
var ErrNoBrowser = errors.New("no supported browser found on this system")

// Candidate is one way of opening a URL on a platform
type Candidate struct {
	Name    string
	Command string
	// Prefix is placed before the URL on the command line
	Prefix []string
}

// platformCandidates lists openers in preference order
var platformCandidates = map[string][]Candidate{
	"darwin": {
		{Name: "Default", Command: "open"},
	},
	"linux": {
		{Name: "xdg-open", Command: "xdg-open"},
		{Name: "Chrome", Command: "google-chrome"},
		{Name: "Chromium", Command: "chromium"},
		{Name: "Firefox", Command: "firefox"},
	},
	"windows": {
		{Name: "Default", Command: "rundll32", Prefix: []string{"url.dll,FileProtocolHandler"}},
	},
}

// Launcher implements ports.BrowserLauncher
type Launcher struct {
	candidates []Candidate
	lookPath   func(string) (string, error)
	start      func(ctx context.Context, name string, args ...string) error
}

// NewLauncher creates a launcher for the current platform. $BROWSER, when set, is tried first.
func NewLauncher() *Launcher {
	candidates := append([]Candidate(nil), platformCandidates[runtime.GOOS]...)
	if env := strings.TrimSpace(os.Getenv("BROWSER")); env != "" {
		candidates = append([]Candidate{{Name: "$BROWSER", Command: env}}, candidates...)
	}
	return NewLauncherWithCandidates(candidates)
}

// NewLauncherWithCandidates creates a launcher trying candidates in order
func NewLauncherWithCandidates(candidates []Candidate) *Launcher {
	return &Launcher{
		candidates: candidates,
		lookPath:   exec.LookPath,
		start:      startDetached,
	}
}

// Open opens url in the first installed candidate
func (l *Launcher) Open(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("refusing to open non-http url %q", url)
	}

	candidate, err := l.selectCandidate()
	if err != nil {
		return err
	}

	args := append(append([]string(nil), candidate.Prefix...), url)
	if err := l.start(ctx, candidate.Command, args...); err != nil {
		return fmt.Errorf("launching %s: %w", candidate.Name, err)
	}
	return nil
}

// Detect returns the name of the candidate Open would use
func (l *Launcher) Detect() (string, error) {
	candidate, err := l.selectCandidate()
	if err != nil {
		return "", err
	}
	return candidate.Name, nil
}

func (l *Launcher) selectCandidate() (Candidate, error) {
	for _, candidate := range l.candidates {
		if _, err := l.lookPath(candidate.Command); err == nil {
			return candidate, nil
		}
	}
	return Candidate{}, ErrNoBrowser
}

// startDetached starts the browser without waiting for it to exit
func startDetached(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 - command comes from the candidate table or $BROWSER
	if err := cmd.Start(); err != nil {
		return err
	}

	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

// Ensure Launcher implements ports.BrowserLauncher
var _ ports.BrowserLauncher = (*Launcher)(nil)
