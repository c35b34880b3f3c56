// Package spinner animates a small progress indicator on a terminal line,
// used while waiting for the first token of a response.
package spinner

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Animation is a cycle of single-rune frames.
type Animation []rune

var (
	Breathe = Animation("▉▊▋▌▍▎▏▎▍▌▋▊▉")
	Dots1   = Animation("⣾⣽⣻⢿⡿⣟⣯⣷")
	Dots2   = Animation("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")
)

// New returns a stopped spinner for the animation, writing to os.Stdout.
func (a Animation) New() *Spinner {
	return New(a, os.Stdout)
}

// Spinner redraws one line with an animation frame and an optional label
// until stopped. Stop clears the line, so the spinner never leaves residue in
// front of real output.
type Spinner struct {
	out     io.Writer
	frames  []rune
	current int

	mu      sync.Mutex
	label   string
	done    chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

func New(frames Animation, out io.Writer) *Spinner {
	return &Spinner{
		out:    out,
		frames: frames,
		done:   make(chan struct{}),
	}
}

// SetLabel sets the text shown after the spinner. An empty string hides it.
func (s *Spinner) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
}

// Start begins animating until Stop is called.
func (s *Spinner) Start() {
	fmt.Fprintf(s.out, "\r\033[K%c", s.frames[s.current])
	ticker := time.NewTicker(100 * time.Millisecond)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				fmt.Fprint(s.out, "\r\033[K")
				return
			case <-ticker.C:
				s.current = (s.current + 1) % len(s.frames)
				s.mu.Lock()
				label := s.label
				s.mu.Unlock()
				if label != "" {
					fmt.Fprintf(s.out, "\r\033[K%c %s", s.frames[s.current], label)
				} else {
					fmt.Fprintf(s.out, "\r\033[K%c", s.frames[s.current])
				}
			}
		}
	}()
}

// Stop halts the animation and clears the line. Stopping twice is harmless.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()
	close(s.done)
	s.wg.Wait()
}
