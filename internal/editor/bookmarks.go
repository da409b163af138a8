package editor

import (
	"strings"
	"syscall"

	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/line"
	"github.com/tved/tved/internal/errors"
	"github.com/tved/tved/internal/io/logger"
)

func inodeOf(fi interface{ Sys() interface{} }) uint64 {
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		return st.Ino
	}
	return 0
}

// SetBookmark attaches bookmark index (1..9) to the current line,
// replacing a previous use of the same index.
func (e *Editor) SetBookmark(bmi int) error {
	b := e.Current()
	if b == nil || !b.Curr.IsText() {
		return errors.ErrLineRange
	}
	if bmi < 1 || bmi > 9 {
		return errors.ErrLineRange
	}

	// only one line per index
	e.ClrBookmark(bmi)
	// at most one bookmark per line
	if old := b.Curr.Bookmark(); old != 0 {
		e.Bookmarks[old] = Bookmark{RI: -1}
	}

	b.Curr.SetBookmark(bmi)
	sample := strings.TrimRight(string(b.Curr.Buff), "\n")
	if len(sample) > 40 {
		sample = sample[:40]
	}
	e.Bookmarks[bmi] = Bookmark{RI: b.Index, Sample: sample}
	return nil
}

// ClrBookmark removes one bookmark, walking the owner buffer to clear
// the line bit.
func (e *Editor) ClrBookmark(bmi int) {
	if bmi < 1 || bmi > 9 || e.Bookmarks[bmi].RI < 0 {
		return
	}
	if b := e.Ring.Slots[e.Bookmarks[bmi].RI]; b != nil {
		for lp := b.Top.Next(); lp.IsText(); lp = lp.Next() {
			if lp.Bookmark() == bmi {
				lp.ClearBookmark()
				break
			}
		}
	}
	e.Bookmarks[bmi] = Bookmark{RI: -1}
}

// clrOptBookmark forgets the bookmark attached to a line that is
// about to be removed.
func (e *Editor) clrOptBookmark(l *line.Line) {
	if bmi := l.Bookmark(); bmi != 0 {
		e.Bookmarks[bmi] = Bookmark{RI: -1}
		l.ClearBookmark()
	}
}

// clearBookmarks forgets every bookmark of one ring slot.
func (e *Editor) clearBookmarks(ri int) {
	for bmi := 1; bmi <= 9; bmi++ {
		if e.Bookmarks[bmi].RI == ri {
			e.Bookmarks[bmi] = Bookmark{RI: -1}
		}
	}
}

// JumpBookmark switches to the buffer and line of a bookmark, walking
// the list to find the marked line.
func (e *Editor) JumpBookmark(bmi int) error {
	if bmi < 1 || bmi > 9 || e.Bookmarks[bmi].RI < 0 {
		logger.Tracemsg("bookmark %d is not set", bmi)
		return errors.ErrLineRange
	}
	ri := e.Bookmarks[bmi].RI
	b := e.Ring.Slots[ri]
	if b == nil || b.Flags&buffer.Open == 0 {
		e.Bookmarks[bmi] = Bookmark{RI: -1}
		return errors.ErrNoBuffer
	}

	lineno := 0
	for lp := b.Top.Next(); lp.IsText(); lp = lp.Next() {
		lineno++
		if lp.Bookmark() == bmi {
			e.mhistPush()
			e.Ring.Curr = ri
			b.SetPosition(lineno, lp)
			lp.Flags &^= line.HideMask(b.FLevel) // make it visible
			return nil
		}
	}

	// the marked line is gone
	e.Bookmarks[bmi] = Bookmark{RI: -1}
	logger.Tracemsg("bookmark %d is not set", bmi)
	return errors.ErrLineRange
}
