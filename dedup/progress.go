package dedup

import (
	"fmt"
	"strings"
	"sync"
)

// Reporter receives progress updates and phase summaries. Implementations
// must tolerate concurrent Progress calls: feature extraction workers report
// completion as they finish.
type Reporter interface {
	Progress(message string, done, total int)
	Summary(format string, args ...interface{})
}

// NopReporter discards everything; it satisfies quiet mode.
type NopReporter struct{}

func (NopReporter) Progress(message string, done, total int) {}

func (NopReporter) Summary(format string, args ...interface{}) {}

// ConsoleReporter prints carriage-return progress lines and plain summary
// lines to standard output.
type ConsoleReporter struct {
	ShowProgress bool

	mu       sync.Mutex
	lineOpen bool
}

func NewConsoleReporter(showProgress bool) *ConsoleReporter {
	return &ConsoleReporter{ShowProgress: showProgress}
}

func (c *ConsoleReporter) Progress(message string, done, total int) {
	if !c.ShowProgress {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	counter := fmt.Sprintf("%d/%d", done, total)
	fmt.Printf("\r%s %s", message, counter)
	c.lineOpen = true
}

func (c *ConsoleReporter) Summary(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Overwrite any progress line still on screen
	if c.lineOpen {
		fmt.Printf("\r%s\r", strings.Repeat(" ", 79))
		c.lineOpen = false
	}
	fmt.Printf(format+"\n", args...)
}
