package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Logger writes leveled diagnostic lines. Debug lines are dropped unless
// verbose is set; warnings are always written.
type Logger struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
	s       styles
}

func NewLoggerWithWriter(w io.Writer, verbose bool) *Logger {
	return &Logger{
		w:       w,
		verbose: verbose,
		s:       newStyles(),
	}
}

func (l *Logger) Verbose() bool {
	if l == nil {
		return false
	}
	return l.verbose
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.Verbose() {
		return
	}
	l.write(l.s.dim, "debug", format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	if l == nil {
		return
	}
	l.write(l.s.yellow, "warn", format, args...)
}

func (l *Logger) write(label *color.Color, level string, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.w, "%s %s\n", label.Sprintf("[%s]", level), fmt.Sprintf(format, args...))
}
