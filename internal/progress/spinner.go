package progress

import (
	"fmt"
	"os"
	"sync"
	"time"
)

var frames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// slowWarnAfter is when the spinner flags a slow assistant response,
// shortly before the analyzer's hard deadline fires.
const slowWarnAfter = 75 * time.Second

// Spinner is a cooperative status display for one in-flight assistant
// call. It polls elapsed time on a ticker and writes to stderr; it has no
// effect on correctness and is skipped entirely in silent mode.
type Spinner struct {
	label string
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// Start launches the spinner goroutine.
func Start(label string) *Spinner {
	s := &Spinner{
		label: label,
		done:  make(chan struct{}),
	}

	s.wg.Add(1)
	go s.run()
	return s
}

func (s *Spinner) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	start := time.Now()
	i := 0

	for {
		select {
		case <-s.done:
			fmt.Fprint(os.Stderr, "\n")
			return
		case <-ticker.C:
			elapsed := time.Since(start)
			mins := int(elapsed.Minutes())
			secs := int(elapsed.Seconds()) % 60

			suffix := ""
			if elapsed >= slowWarnAfter {
				suffix = " 响应较慢..."
			}
			fmt.Fprintf(os.Stderr, "\r%s %c 已耗时: %02d:%02d%s", s.label, frames[i%len(frames)], mins, secs, suffix)
			i++
		}
	}
}

// Stop ends the display. Safe to call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}
