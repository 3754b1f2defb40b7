// Package logs provides the leveled, free-function logging style used
// throughout this repository, grounded on rclone's fs.Debugf/fs.Errorf
// family in fs/log.
package logs

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	colorable "github.com/mattn/go-colorable"

	"github.com/isoburn/isoburn/internal/message"
)

// Level is an alias of message.Severity. Only lines at or above the
// threshold set by SetLevel are printed; no severity bypasses it.
type Level = message.Severity

var (
	mu        sync.Mutex
	output    io.Writer = colorable.NewColorableStderr()
	threshold Level      = message.NOTE
	queue     *message.Queue
)

// SetOutput redirects where formatted log lines are written. Tests use this
// to capture output; production wires it to stderr via go-colorable so ANSI
// colour survives on Windows consoles the way rclone's --progress output
// does.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetLevel sets the minimum severity printed to output. Messages are always
// also enqueued on the attached message.Queue (if any) regardless of level.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	threshold = l
}

// Attach wires a message.Queue so every log call also enqueues, giving the
// caller's dispatcher a second, programmatic channel.
func Attach(q *message.Queue) {
	mu.Lock()
	defer mu.Unlock()
	queue = q
}

func logf(sev Level, origin string, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	mu.Lock()
	q := queue
	if sev >= threshold {
		log.New(output, "", log.LstdFlags).Printf("%-7s %-12s %s", sev, origin, text)
	}
	mu.Unlock()
	if q != nil {
		q.Enqueue(sev, origin, text)
	}
}

// Debugf logs at DEBUG severity.
func Debugf(origin string, format string, args ...any) { logf(message.DEBUG, origin, format, args...) }

// Infof logs at UPDATE severity (routine progress, e.g. "wrote session 2").
func Infof(origin string, format string, args ...any) { logf(message.UPDATE, origin, format, args...) }

// Notef logs at NOTE severity.
func Notef(origin string, format string, args ...any) { logf(message.NOTE, origin, format, args...) }

// Warnf logs at WARNING severity.
func Warnf(origin string, format string, args ...any) { logf(message.WARNING, origin, format, args...) }

// Errorf logs at FAILURE severity.
func Errorf(origin string, format string, args ...any) { logf(message.FAILURE, origin, format, args...) }

// Fatalf logs at FATAL severity and exits the process, matching the
// resource-exhaustion handling this mandates.
func Fatalf(origin string, format string, args ...any) {
	logf(message.FATAL, origin, format, args...)
	os.Exit(1)
}
