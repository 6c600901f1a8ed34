package genetic

import (
	"fmt"
	"io"
	"sync"

	"github.com/copyleftdev/glassopt/internal/logging"
)

// Sink receives progress lines. It never blocks the search and returns
// nothing.
type Sink interface {
	LogLine(line string)
}

// LoggerSink writes each line as an info entry.
type LoggerSink struct {
	Logger *logging.Logger
}

// LogLine implements Sink.
func (s LoggerSink) LogLine(line string) {
	s.Logger.Info(line)
}

// MemorySink keeps every line for later reading.
type MemorySink struct {
	mu    sync.RWMutex
	lines []string
}

// LogLine implements Sink.
func (s *MemorySink) LogLine(line string) {
	s.mu.Lock()
	s.lines = append(s.lines, line)
	s.mu.Unlock()
}

// Lines returns a copy of the lines received so far.
func (s *MemorySink) Lines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// WriterSink prints lines to w. Write errors are dropped.
type WriterSink struct {
	mu sync.Mutex
	W  io.Writer
}

// LogLine implements Sink.
func (s *WriterSink) LogLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.W, line)
}

// Tee fans lines out to several sinks in order.
type Tee []Sink

// LogLine implements Sink.
func (t Tee) LogLine(line string) {
	for _, s := range t {
		s.LogLine(line)
	}
}

type discard struct{}

func (discard) LogLine(string) {}
