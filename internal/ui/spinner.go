package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Spinner frames for animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows progress while a notifier or renewal call is in flight.
type Spinner struct {
	out      io.Writer
	message  string
	running  bool
	stopCh   chan struct{}
	done     chan struct{}
	mu       sync.Mutex
	style    lipgloss.Style
	interval time.Duration
	colored  bool
}

// NewSpinner creates a spinner writing to out.
func NewSpinner(out io.Writer, colored bool) *Spinner {
	return &Spinner{
		out:      out,
		style:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
		interval: 80 * time.Millisecond,
		colored:  colored,
	}
}

// Start begins the animation. Calling Start on a running spinner only
// changes its message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})

	go s.animate()
}

// Stop stops the spinner and clears the line
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	<-s.done
	fmt.Fprint(s.out, "\r\033[K")
}

func (s *Spinner) animate() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for frame := 0; ; frame = (frame + 1) % len(spinnerFrames) {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()

			char := spinnerFrames[frame]
			if s.colored {
				char = s.style.Render(char)
			}
			fmt.Fprintf(s.out, "\r\033[K%s %s", char, msg)
		}
	}
}
