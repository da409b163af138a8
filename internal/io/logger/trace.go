package logger

import (
	"fmt"
	"sync"

	"github.com/tved/tved/internal/constants"
)

// The trace-message ring holds the last few short messages shown to
// the user above the text area.
var traceMutex sync.Mutex
var traceRing []string

// Tracemsg appends a user-visible message to the trace ring and
// mirrors it into the log.
func Tracemsg(format string, args ...interface{}) string {
	message := fmt.Sprintf(format, args...)

	traceMutex.Lock()
	traceRing = append(traceRing, message)
	if len(traceRing) > constants.TraceSize {
		traceRing = traceRing[len(traceRing)-constants.TraceSize:]
	}
	traceMutex.Unlock()

	Debug("tracemsg", message)
	return message
}

// TraceLines returns a copy of the current trace ring, oldest first.
func TraceLines() []string {
	traceMutex.Lock()
	defer traceMutex.Unlock()

	lines := make([]string, len(traceRing))
	copy(lines, traceRing)
	return lines
}

// TraceDrop discards all pending trace messages.
func TraceDrop() {
	traceMutex.Lock()
	traceRing = traceRing[:0]
	traceMutex.Unlock()
}
