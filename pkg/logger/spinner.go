package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	colorSpinner = color.New(color.FgCyan)
	colorBar     = color.New(color.FgGreen)
)

// Spinner represents an animated spinner for long-running operations.
// When the output is not a terminal it prints nothing until it finishes.
type Spinner struct {
	mu       sync.Mutex
	out      io.Writer
	animate  bool
	active   bool
	message  string
	frames   []string
	interval time.Duration
	stopChan chan struct{}
	done     chan struct{}
}

// SpinnerDots are the default spinner frames
var SpinnerDots = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a spinner on stderr with the default frames
func NewSpinner(message string) *Spinner {
	return NewSpinnerTo(os.Stderr, message)
}

// NewSpinnerTo creates a spinner that draws on w
func NewSpinnerTo(w io.Writer, message string) *Spinner {
	return &Spinner{
		out:      w,
		animate:  IsTerminal(w),
		message:  message,
		frames:   SpinnerDots,
		interval: 100 * time.Millisecond,
	}
}

// Start starts the spinner animation
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	if !s.animate {
		return
	}

	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stopChan, s.done)
}

func (s *Spinner) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.mu.Lock()
		frame := s.frames[i%len(s.frames)]
		msg := s.message
		s.mu.Unlock()

		_, _ = fmt.Fprintf(s.out, "\r%s %s", colorSpinner.Sprint(frame), msg)

		select {
		case <-stop:
			_, _ = fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(msg)+4))
			return
		case <-ticker.C:
		}
	}
}

// Stop stops the spinner
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// Success stops the spinner and shows a success message
func (s *Spinner) Success(message string) {
	s.Stop()
	Success(message)
}

// Error stops the spinner and shows an error message
func (s *Spinner) Error(message string) {
	s.Stop()
	Error(message)
}

// UpdateMessage updates the spinner message
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// WithSpinner runs fn behind a spinner and reports how long it took
func WithSpinner(message string, fn func() error) error {
	spinner := NewSpinner(message)
	spinner.Start()

	started := time.Now()
	err := fn()
	took := time.Since(started).Round(time.Millisecond)

	if err != nil {
		spinner.Error(fmt.Sprintf("%s failed after %s: %v", message, took, err))
		return err
	}
	spinner.Success(fmt.Sprintf("%s done in %s", message, took))
	return nil
}

// ProgressBar draws step progress on a single line. It redraws in place only
// on terminals; elsewhere it writes one final line on Finish.
type ProgressBar struct {
	mu    sync.Mutex
	out   io.Writer
	live  bool
	steps int
	done  int
	width int
	label string
}

// NewProgressBar creates a progress bar on stderr
func NewProgressBar(total int, message string) *ProgressBar {
	return NewProgressBarTo(os.Stderr, total, message)
}

// NewProgressBarTo creates a progress bar that draws on w
func NewProgressBarTo(w io.Writer, total int, message string) *ProgressBar {
	return &ProgressBar{out: w, live: IsTerminal(w), steps: total, width: 40, label: message}
}

// Increment records one finished step
func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done < p.steps {
		p.done++
	}
	if p.live {
		p.draw()
	}
}

// Finish fills the bar and ends the line
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.steps <= 0 {
		return
	}
	p.done = p.steps
	p.draw()
	_, _ = fmt.Fprintln(p.out)
}

func (p *ProgressBar) draw() {
	if p.steps <= 0 {
		return
	}
	filled := p.done * p.width / p.steps
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)
	if colorEnabled() {
		bar = colorBar.Sprint(bar)
	}
	_, _ = fmt.Fprintf(p.out, "\r%s: %s %d/%d", p.label, bar, p.done, p.steps)
}
