package editor

import (
	"github.com/tved/tved/internal/constants"
	"github.com/tved/tved/internal/edit/buffer"
)

// mhistPush records the current position before a cross-file jump.
func (e *Editor) mhistPush() {
	b := e.Current()
	if b == nil {
		return
	}
	e.MHist = append(e.MHist, Motion{RI: b.Index, Lineno: b.Lineno})
	if len(e.MHist) > constants.MotionHistory {
		e.MHist = e.MHist[1:]
	}
}

// MhistPop jumps back to the most recent recorded position.
func (e *Editor) MhistPop() bool {
	for len(e.MHist) > 0 {
		m := e.MHist[len(e.MHist)-1]
		e.MHist = e.MHist[:len(e.MHist)-1]

		b := e.Ring.Slots[m.RI]
		if b == nil || b.Flags&buffer.Open == 0 {
			continue
		}
		lineno := m.Lineno
		if lineno > b.NumLines {
			lineno = b.NumLines
		}
		lp := b.GotoLineno(lineno)
		if lp == nil {
			continue
		}
		e.Ring.Curr = m.RI
		b.SetPosition(lineno, lp)
		return true
	}
	return false
}

// mhistClear drops the history entries pointing at one ring slot.
func (e *Editor) mhistClear(ri int) {
	kept := e.MHist[:0]
	for _, m := range e.MHist {
		if m.RI != ri {
			kept = append(kept, m)
		}
	}
	e.MHist = kept
}
