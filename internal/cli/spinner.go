package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

const spinnerTick = 80 * time.Millisecond

// spinner animates a status line while a long phase runs. A count set with
// Set is shown after the label, so readers can report how far they got.
type spinner struct {
	w     io.Writer
	label string
	count atomic.Int64 // -1 until the first Set
	stop  context.CancelFunc
	done  chan struct{}

	width int // widest line drawn; owned by the animation goroutine
}

// startSpinner draws label on w until Stop is called or ctx ends.
func startSpinner(ctx context.Context, w io.Writer, label string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{w: w, label: label, stop: cancel, done: make(chan struct{})}
	s.count.Store(-1)
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-ticker.C:
			s.draw(spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}

func (s *spinner) text() string {
	if n := s.count.Load(); n >= 0 {
		return fmt.Sprintf("%s (%d)", s.label, n)
	}
	return s.label + "..."
}

func (s *spinner) draw(frame rune) {
	text := s.text()
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(string(frame)), StyleDim.Render(text))
	s.width = max(s.width, lipgloss.Width(text)+2)
}

func (s *spinner) clear() {
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// Set updates the count. It may be called from any goroutine.
func (s *spinner) Set(n int) { s.count.Store(int64(n)) }

// Stop ends the animation and clears its line. Calling it again is a no-op.
func (s *spinner) Stop() {
	s.stop()
	<-s.done
}

// Fail stops the spinner and prints msg as an error.
func (s *spinner) Fail(msg string) {
	s.Stop()
	printError(s.w, "%s", msg)
}
