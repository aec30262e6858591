package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line on stderr while a bundle runs. Once the
// engine reports iterations through Advance, the line also shows how far
// the force simulation has come.
type Spinner struct {
	message string
	w       io.Writer
	enabled bool

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	started sync.Once
	once    sync.Once

	mu        sync.Mutex
	iteration int
	total     int
	width     int // widest line drawn, for clearing
}

// stderrIsTerminal reports whether animation frames would reach a terminal.
func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newSpinner creates a spinner that stops when ctx is cancelled. It draws
// nothing unless stderr is a terminal.
func newSpinner(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message, stderrIsTerminal())
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string, enabled bool) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		w:       w,
		enabled: enabled,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation. Calls after the first are ignored.
func (s *Spinner) Start() {
	s.started.Do(s.run)
}

func (s *Spinner) run() {
	if !s.enabled {
		close(s.stopped)
		return
	}
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// Advance records simulation progress. It matches the pipeline's progress
// callback and is safe to call from another goroutine.
func (s *Spinner) Advance(iteration, total int) {
	s.mu.Lock()
	s.iteration, s.total = iteration, total
	s.mu.Unlock()
}

// line renders the status text after the frame.
func (s *Spinner) line() string {
	s.mu.Lock()
	it, total := s.iteration, s.total
	s.mu.Unlock()
	if total <= 0 {
		return s.message
	}
	return fmt.Sprintf("%s %s", s.message, StyleDim.Render(fmt.Sprintf("%d/%d", it, total)))
}

func (s *Spinner) draw(frame string) {
	text := fmt.Sprintf("%s %s", styleIconSpinner.Render(frame), s.line())
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(text); n > s.width {
		s.width = n
	}
	fmt.Fprintf(s.w, "\r%s", text)
}

// Stop ends the animation and clears the line. It may be called more than
// once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		s.started.Do(func() { close(s.stopped) })
		<-s.stopped
		if !s.enabled {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}
