package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/tved/tved/internal/constants"
	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/ops"
	"github.com/tved/tved/internal/edit/search"
	"github.com/tved/tved/internal/editor"
	"github.com/tved/tved/internal/io/logger"
	"github.com/tved/tved/internal/io/signal"
)

// terminal is the minimal built-in front end: raw-mode input decoding
// and a plain ANSI redraw. The full key tree, color palettes and
// statusline layout live outside the core.
type terminal struct {
	cancel   context.CancelFunc
	oldState *term.State
	events   chan editor.Event
	rows     int
	cols     int
}

func newTerminal(ctx context.Context, cancel context.CancelFunc) (*terminal, error) {
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("cannot enter raw mode: %w", err)
	}

	t := &terminal{
		cancel:   cancel,
		oldState: oldState,
		events:   make(chan editor.Event, 64),
	}
	t.Resize()

	go t.readInput(ctx)
	go func() {
		resize := signal.ResizeCh(ctx)
		for {
			select {
			case <-resize:
				t.events <- editor.Event{Resize: true}
			case <-ctx.Done():
				return
			}
		}
	}()

	return t, nil
}

func (t *terminal) restore() {
	if t.oldState != nil {
		term.Restore(int(os.Stdin.Fd()), t.oldState)
	}
}

// Events implements editor.InputSource.
func (t *terminal) Events() <-chan editor.Event {
	return t.events
}

// readInput decodes terminal bytes into events: a tiny subset of the
// external key plane, enough to drive the core.
func (t *terminal) readInput(ctx context.Context) {
	buf := make([]byte, 64)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || ctx.Err() != nil {
			close(t.events)
			return
		}
		if n == 0 {
			continue
		}
		raw := make([]byte, n)
		copy(raw, buf[:n])
		t.events <- editor.Event{Raw: raw}
	}
}

// Resize implements editor.Renderer.
func (t *terminal) Resize() {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || cols <= 0 {
		cols, rows = 80, 24
	}
	t.cols, t.rows = cols, rows
}

// Render implements editor.Renderer: trace lines, the visible text
// window around the cursor, a one-line status.
func (t *terminal) Render(e *editor.Editor) {
	b := e.Current()
	if b == nil {
		return
	}

	var out strings.Builder
	out.WriteString("\033[2J\033[H")

	traces := logger.TraceLines()
	if len(traces) > constants.TraceSize {
		traces = traces[len(traces)-constants.TraceSize:]
	}
	for _, msg := range traces {
		out.WriteString(msg)
		out.WriteString("\r\n")
	}

	textRows := t.rows - len(traces) - 1
	if textRows < 1 {
		textRows = 1
	}

	lp := b.Curr
	shown := 0
	// walk half a window up over visible lines
	for i := 0; i < textRows/2; i++ {
		prev, _ := b.PrevLp(lp)
		if !prev.IsText() {
			break
		}
		lp = prev
	}
	if !lp.IsText() {
		lp, _ = b.NextLp(b.Top)
	}
	for lp.IsText() && shown < textRows {
		text := strings.TrimRight(string(lp.Buff), "\n")
		if len(text) > t.cols-1 {
			text = text[:t.cols-1]
		}
		marker := " "
		if lp == b.Curr {
			marker = ">"
		}
		out.WriteString(marker)
		out.WriteString(text)
		out.WriteString("\r\n")
		shown++
		lp, _ = b.NextLp(lp)
	}

	status := fmt.Sprintf("-- %s  %d/%d c%d --", b.Fname, b.Lineno, b.NumLines, b.Curpos)
	out.WriteString(status)
	os.Stdout.WriteString(out.String())
}

// Dispatch implements editor.Dispatcher: the built-in minimal key
// handling (the full command table is external).
func (t *terminal) Dispatch(e *editor.Editor, ev editor.Event) {
	b := e.Current()
	if b == nil || len(ev.Raw) == 0 {
		return
	}

	if b.Flags&buffer.Interact != 0 {
		// forward everything through the child's PTY
		e.TypePipeInput(ev.Raw)
		return
	}

	raw := ev.Raw
	switch {
	case raw[0] == 0x1b && len(raw) >= 3 && raw[1] == '[':
		switch raw[2] {
		case 'A':
			ops.GoUp(b)
		case 'B':
			ops.GoDown(b)
		case 'C':
			ops.GoRight(b)
		case 'D':
			ops.GoLeft(b)
		}
	case raw[0] == '\r' || raw[0] == '\n':
		ops.SplitLine(b)
	case raw[0] == 0x7f || raw[0] == 0x08:
		ops.DelbackChar(b)
	case raw[0] == 0x04: // ^D
		ops.DeleteChar(b)
	case raw[0] == 0x13: // ^S
		e.SaveCurrent()
	case raw[0] == 0x0e: // ^N
		e.NextFile()
	case raw[0] == 0x10: // ^P
		e.PrevFile()
	case raw[0] == 0x07: // ^G
		search.RepeatSearch(b)
	case raw[0] == 0x11: // ^Q
		t.cancel()
	case raw[0] >= 0x20 && raw[0] != 0x7f:
		ops.InsertChars(b, raw)
	}
}
