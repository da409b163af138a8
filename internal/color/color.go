// Package color decides whether terminal output may carry ANSI colors
// and provides the few paint helpers the logger and renderer need.
package color

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Colored tells whether stdout is a terminal that accepts colors.
var Colored = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

// Attributes and colors, ANSI SGR codes.
const (
	AttrBold  = 1
	FgBlack   = 30
	FgRed     = 31
	FgGreen   = 32
	FgYellow  = 33
	FgBlue    = 34
	FgMagenta = 35
	FgCyan    = 36
	FgWhite   = 37
	BgBlue    = 44
	BgYellow  = 43
)

// PaintStr wraps a string into a foreground color.
func PaintStr(str string, fg int) string {
	if !Colored {
		return str
	}
	return fmt.Sprintf("\033[%dm%s\033[0m", fg, str)
}

// PaintStrWithAttr wraps a string into a colored, attributed sequence.
func PaintStrWithAttr(str string, fg, bg, attr int) string {
	if !Colored {
		return str
	}
	return fmt.Sprintf("\033[%d;%d;%dm%s\033[0m", attr, fg, bg, str)
}

// Colorfy highlights a severity-prefixed log line.
func Colorfy(line string) string {
	if !Colored {
		return line
	}
	switch {
	case strings.Contains(line, "|ERROR|"), strings.Contains(line, "|FATAL|"):
		return PaintStr(line, FgRed)
	case strings.Contains(line, "|WARN|"):
		return PaintStr(line, FgYellow)
	case strings.Contains(line, "|DEBUG|"), strings.Contains(line, "|TRACE|"):
		return PaintStr(line, FgCyan)
	default:
		return line
	}
}
