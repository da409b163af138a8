// Package logger provides the editor's non-blocking log writer and the
// trace-message ring. Log lines go to a daily log file below the
// configured log directory (and to stdout in debug mode); trace
// messages are the short user-visible notes rendered above the text
// area.
package logger

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/tved/tved/internal/color"
)

const (
	infoStr  string = "INFO"
	warnStr  string = "WARN"
	errorStr string = "ERROR"
	fatalStr string = "FATAL"
	debugStr string = "DEBUG"
	traceStr string = "TRACE"
)

// Modes controls what the logger writes and where.
type Modes struct {
	Debug bool
	Trace bool
	Quiet bool
	// Nothing disables logging entirely.
	Nothing bool
	// LogDir is where daily log files are created.
	LogDir string

	logToFile   bool
	logToStdout bool
}

// The configured logging mode(s)
var mode Modes

// Synchronise access to logging.
var mutex sync.Mutex

// File descriptor of log file when mode.logToFile enabled.
var fd *os.File

// File write buffer of log file when mode.logToFile enabled.
var writer *bufio.Writer

// File write buffer of stdout when mode.logToStdout enabled.
var stdoutWriter *bufio.Writer

// Used to detect change of day (create one log file per day)
var lastDateStr string

// Used to make logging non-blocking.
var fileLogBufCh chan buf
var stdoutBufCh chan string

// Helper type to make logging non-blocking.
type buf struct {
	time    time.Time
	message string
}

// Start logging.
func Start(ctx context.Context, myMode Modes) {
	mode = myMode

	if mode.Nothing {
		return
	}

	if mode.Trace {
		mode.Debug = true
	}

	stdoutWriter = bufio.NewWriter(os.Stdout)
	mode.logToFile = mode.LogDir != ""
	mode.logToStdout = mode.Debug || mode.Trace

	if mode.logToStdout {
		stdoutBufCh = make(chan string, runtime.NumCPU()*100)
		go writeToStdout(ctx)
	}

	if mode.logToFile {
		fileLogBufCh = make(chan buf, runtime.NumCPU()*100)
		go writeToFile(ctx)
	}
}

// Info message logging.
func Info(args ...interface{}) string {
	return log(infoStr, args)
}

// Warn message logging.
func Warn(args ...interface{}) string {
	return log(warnStr, args)
}

// Error message logging.
func Error(args ...interface{}) string {
	return log(errorStr, args)
}

// FatalExit logs an error and exits the process.
func FatalExit(args ...interface{}) {
	log(fatalStr, args)

	time.Sleep(time.Second)
	mutex.Lock()
	defer mutex.Unlock()

	closeWriter()
	os.Exit(3)
}

// Debug message logging.
func Debug(args ...interface{}) string {
	if mode.Debug {
		return log(debugStr, args)
	}
	return ""
}

// Trace message logging.
func Trace(args ...interface{}) string {
	if mode.Trace {
		return log(traceStr, args)
	}
	return ""
}

// Write log line to buffer and/or log file.
func write(severity, message string) {
	if mode.logToStdout {
		line := fmt.Sprintf("%s|%s\n", severity, message)

		if color.Colored {
			line = color.Colorfy(line)
		}

		stdoutBufCh <- line
	}

	if mode.logToFile {
		t := time.Now()
		timeStr := t.Format("20060102-150405")
		fileLogBufCh <- buf{
			time:    t,
			message: fmt.Sprintf("%s|%s|%s\n", severity, timeStr, message),
		}
	}
}

// Generic log message.
func log(severity string, args []interface{}) string {
	if mode.Nothing {
		return ""
	}
	if mode.Quiet && severity != errorStr && severity != fatalStr {
		return ""
	}

	var messages []string

	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			messages = append(messages, v)
		case int:
			messages = append(messages, fmt.Sprintf("%d", v))
		case error:
			messages = append(messages, v.Error())
		default:
			messages = append(messages, fmt.Sprintf("%v", v))
		}
	}

	message := strings.Join(messages, "|")
	write(severity, message)

	return message
}

// Close log writer (e.g. on change of day).
func closeWriter() {
	if writer != nil {
		writer.Flush()
		fd.Close()
	}
}

// Return the correct log file writer
func fileWriter(dateStr string) *bufio.Writer {
	if dateStr != lastDateStr {
		return updateFileWriter(dateStr)
	}
	return writer
}

// Update log file writer
func updateFileWriter(dateStr string) *bufio.Writer {
	// Detected change of day. Close current writer and create a new one.
	mutex.Lock()
	defer mutex.Unlock()
	closeWriter()

	if _, err := os.Stat(mode.LogDir); os.IsNotExist(err) {
		if err = os.MkdirAll(mode.LogDir, 0755); err != nil {
			mode.logToFile = false
			return bufio.NewWriter(os.Stderr)
		}
	}

	logFile := fmt.Sprintf("%s/%s.log", mode.LogDir, dateStr)
	newFd, err := os.OpenFile(logFile, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		mode.logToFile = false
		return bufio.NewWriter(os.Stderr)
	}

	fd = newFd
	writer = bufio.NewWriterSize(fd, 1)
	lastDateStr = dateStr

	return writer
}

// Flush all outstanding lines.
func Flush() {
	if stdoutWriter == nil {
		return
	}
	for {
		select {
		case message := <-stdoutBufCh:
			stdoutWriter.WriteString(message)
		default:
			stdoutWriter.Flush()
			return
		}
	}
}

func writeToStdout(ctx context.Context) {
	for {
		select {
		case message := <-stdoutBufCh:
			stdoutWriter.WriteString(message)
		case <-time.After(time.Millisecond * 100):
			stdoutWriter.Flush()
		case <-ctx.Done():
			Flush()
			return
		}
	}
}

func writeToFile(ctx context.Context) {
	for {
		select {
		case buf := <-fileLogBufCh:
			dateStr := buf.time.Format("20060102")
			w := fileWriter(dateStr)
			w.WriteString(buf.message)
		case <-ctx.Done():
			return
		}
	}
}
