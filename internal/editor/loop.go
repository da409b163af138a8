package editor

import (
	"context"
	"time"

	"github.com/tved/tved/internal/constants"
	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/search"
	"github.com/tved/tved/internal/io/logger"
)

// Event is one decoded input event delivered by the external key
// plane.
type Event struct {
	// Resize is set when the terminal geometry changed.
	Resize bool
	// Rune carries a typed key, zero for control-only events.
	Rune rune
	// Raw carries undecoded bytes for the interactive pipe path.
	Raw []byte
}

// InputSource is the external key plane: it decodes terminal input
// into events. Delivery must never block the loop beyond the tick.
type InputSource interface {
	// Events returns the channel the loop selects on.
	Events() <-chan Event
}

// Renderer is the external display plane.
type Renderer interface {
	// Render draws the current state; called once per loop turn when
	// an update is pending.
	Render(e *Editor)
	// Resize recomputes the geometry.
	Resize()
}

// Dispatcher routes one input event into editing commands. The
// command table and key tree live outside the core.
type Dispatcher interface {
	Dispatch(e *Editor, ev Event)
}

// Run owns the single-threaded cooperative loop: wait for input with
// a ~100ms timeout; on timeout poll the pipes, and every ~5s re-stat
// the open files; on input dispatch. All buffer mutation happens on
// this goroutine.
func (e *Editor) Run(ctx context.Context, in InputSource, r Renderer, d Dispatcher) {
	ticker := time.NewTicker(constants.InputTimeout)
	defer ticker.Stop()

	lastStat := time.Now()
	update := true

	for {
		if update && r != nil {
			r.Render(e)
			update = false
		}

		select {
		case <-ctx.Done():
			e.shutdown()
			return

		case ev, ok := <-in.Events():
			if !ok {
				e.shutdown()
				return
			}
			if ev.Resize {
				if r != nil {
					r.Resize()
				}
				e.clampCursor()
				update = true
				continue
			}
			if d != nil {
				d.Dispatch(e, ev)
			}
			update = true

		case <-ticker.C:
			// poll children, one best-effort step each
			if e.BackgroundPipes() {
				update = true
			}
			if time.Since(lastStat) >= constants.FileStatPeriod {
				e.CheckFiles()
				lastStat = time.Now()
			}
			if e.drainWatch() {
				update = true
			}
		}
	}
}

// clampCursor keeps the cursor inside the buffer after a resize.
func (e *Editor) clampCursor() {
	b := e.Current()
	if b == nil {
		return
	}
	if b.Lineno > b.NumLines {
		b.GoBottom()
	}
	if b.Curr.IsText() && b.Lncol > b.Curr.Len()-1 {
		b.Lncol = b.Curr.Len() - 1
	}
}

// shutdown stops every child and flushes the log.
func (e *Editor) shutdown() {
	for ri := 0; ri < len(e.Ring.Slots); ri++ {
		if b := e.Ring.Slots[ri]; b != nil && b.Flags&buffer.Open != 0 {
			e.Ring.Curr = ri
			e.StopBgProcess()
		}
	}
	e.stopWatch()
	logger.Flush()
}

// ErrDump flushes the trace ring into the log; the errdump command.
func (e *Editor) ErrDump() {
	for _, msg := range logger.TraceLines() {
		logger.Info("errdump", msg)
	}
	logger.TraceDrop()
}

// RepeatSearchCurrent runs a repeat search on the current buffer; the
// common handler binds it to a key.
func (e *Editor) RepeatSearchCurrent() {
	if b := e.Current(); b != nil {
		search.RepeatSearch(b)
	}
}
