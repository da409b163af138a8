package editor

import (
	"fmt"

	"github.com/tved/tved/internal/config"
	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/line"
	"github.com/tved/tved/internal/edit/ops"
	"github.com/tved/tved/internal/errors"
	"github.com/tved/tved/internal/io/logger"
)

// selBuf returns the buffer holding the selection, nil without one.
func (e *Editor) selBuf() *buffer.Buffer {
	if e.SelectRI < 0 {
		return nil
	}
	return e.Ring.Slots[e.SelectRI]
}

// LineSelect toggles or grows the selection on the current line. A
// fresh selection starts here; on a selected line the run shrinks
// towards the nearer border; outside, the gap towards the existing
// run is filled, biased by the watch line.
func (e *Editor) LineSelect() {
	b := e.Current()
	if b == nil || !b.Curr.IsText() {
		return
	}
	b.Flags &^= buffer.Cmd

	if e.SelectRI != b.Index {
		e.ResetSelect()
		e.SelectRI = b.Index
		e.SelectW = b.Lineno
		b.Curr.Flags |= line.Select
		return
	}

	if b.Curr.Flags&line.Select != 0 {
		// remove selection bit from some lines, towards the nearer border
		prev, next := b.Curr, b.Curr
		for prev.IsText() && prev.Flags&line.Select != 0 &&
			next.IsText() && next.Flags&line.Select != 0 {
			prev = prev.Prev()
			next = next.Next()
		}
		if prev.IsText() && prev.Flags&line.Select != 0 {
			// remove the shorter lower run
			for lx := b.Curr.Next(); lx.IsText() && lx.Flags&line.Select != 0; lx = lx.Next() {
				lx.Flags &^= line.Select
			}
		} else {
			for lx := b.Curr.Prev(); lx.IsText() && lx.Flags&line.Select != 0; lx = lx.Prev() {
				lx.Flags &^= line.Select
			}
		}
	} else {
		// extend selection towards the last selection (guess)
		dir := e.selectionDirection(b)
		if dir < 0 {
			for lx := b.Curr.Prev(); lx.IsText() && lx.Flags&line.Select == 0; lx = lx.Prev() {
				lx.Flags |= line.Select
			}
		} else if dir > 0 {
			for lx := b.Curr.Next(); lx.IsText() && lx.Flags&line.Select == 0; lx = lx.Next() {
				lx.Flags |= line.Select
			}
		}
	}

	b.Curr.Flags |= line.Select
	e.SelectW = b.Lineno
}

// selectionDirection guesses where the existing run lies relative to
// the cursor: -1 above, +1 below, 0 none.
func (e *Editor) selectionDirection(b *buffer.Buffer) int {
	searchUp := func() bool {
		for lx := b.Curr.Prev(); lx.IsText(); lx = lx.Prev() {
			if lx.Flags&line.Select != 0 {
				return true
			}
		}
		return false
	}
	searchDown := func() bool {
		for lx := b.Curr.Next(); lx.IsText(); lx = lx.Next() {
			if lx.Flags&line.Select != 0 {
				return true
			}
		}
		return false
	}

	if e.SelectW < b.Lineno {
		if searchUp() {
			return -1
		}
		if searchDown() {
			return 1
		}
	} else {
		if searchDown() {
			return 1
		}
		if searchUp() {
			return -1
		}
	}
	return 0
}

// ResetSelect drops the selection wherever it is.
func (e *Editor) ResetSelect() {
	sb := e.selBuf()
	if sb == nil {
		e.SelectRI = -1
		e.SelectW = 0
		return
	}
	for lx := sb.Top.Next(); lx.IsText(); lx = lx.Next() {
		lx.Flags &^= line.Select
	}
	e.SelectRI = -1
	e.SelectW = 0
}

// SelectAll selects every line of the current buffer without touching
// the filter bits.
func (e *Editor) SelectAll() {
	b := e.Current()
	if b == nil {
		return
	}
	e.ResetSelect()

	if b.NumLines == 0 {
		return
	}
	e.SelectW = 1
	e.SelectRI = b.Index

	count := 0
	for lx := b.Top.Next(); lx.IsText(); lx = lx.Next() {
		lx.Flags |= line.Select
		if !b.HiddenLine(lx) {
			count++
		}
	}
	if count == 0 {
		logger.Tracemsg("file is not empty, but selected lines are not visible")
	}
}

// selectionFirstLine returns the first line of the selection run and
// its line number, starting the scan near the owner's cursor.
func (e *Editor) selectionFirstLine() (*line.Line, int) {
	sb := e.selBuf()
	if sb == nil {
		return nil, 0
	}

	lp := sb.Curr
	lineno := sb.Lineno
	if !lp.IsText() || lp.Flags&line.Select == 0 {
		scan := func(up bool) (*line.Line, int) {
			if up {
				l, n := sb.Curr.Prev(), sb.Lineno-1
				for l.IsText() && l.Flags&line.Select == 0 {
					l = l.Prev()
					n--
				}
				return l, n
			}
			l, n := sb.Curr.Next(), sb.Lineno+1
			for l.IsText() && l.Flags&line.Select == 0 {
				l = l.Next()
				n++
			}
			return l, n
		}
		if e.SelectW < sb.Lineno {
			lp, lineno = scan(true)
			if !lp.IsText() {
				lp, lineno = scan(false)
			}
		} else {
			lp, lineno = scan(false)
			if !lp.IsText() {
				lp, lineno = scan(true)
			}
		}
	}
	if lp.IsText() && lp.Flags&line.Select != 0 {
		for lp.Prev().IsText() && lp.Prev().Flags&line.Select != 0 {
			lp = lp.Prev()
			lineno--
		}
	}
	return lp, lineno
}

// selectionLastLine returns the last line of the selection run and
// its line number.
func (e *Editor) selectionLastLine() (*line.Line, int) {
	sb := e.selBuf()
	if sb == nil {
		return nil, 0
	}
	lp := sb.Bottom.Prev()
	lineno := sb.NumLines
	for lp.IsText() {
		if lp.Flags&line.Select != 0 {
			break
		}
		lp = lp.Prev()
		lineno--
	}
	return lp, lineno
}

// GoSelectFirst moves the focus to the first visible selection line.
func (e *Editor) GoSelectFirst() error {
	if e.SelectRI < 0 {
		logger.Tracemsg("no selection")
		return errors.ErrNoSelection
	}
	sb := e.selBuf()
	lp, lineno := e.selectionFirstLine()
	if lp == nil || !lp.IsText() {
		logger.Tracemsg("no selection")
		e.SelectRI = -1
		return errors.ErrNoSelection
	}
	if sb.HiddenLine(lp) {
		var cnt int
		lp, cnt = sb.NextLp(lp)
		lineno += cnt
	}
	if lp.IsText() && lp.Flags&line.Select != 0 {
		e.Ring.Curr = e.SelectRI
		sb.SetPosition(lineno, lp)
		return nil
	}
	logger.Tracemsg("selection is not visible")
	return errors.ErrSelectInvisible
}

// GoSelectLast moves the focus to the last visible selection line.
func (e *Editor) GoSelectLast() error {
	if e.SelectRI < 0 {
		logger.Tracemsg("no selection")
		return errors.ErrNoSelection
	}
	sb := e.selBuf()
	lp, lineno := e.selectionLastLine()
	if lp == nil || !lp.IsText() {
		logger.Tracemsg("no selection")
		e.SelectRI = -1
		return errors.ErrNoSelection
	}
	if sb.HiddenLine(lp) {
		var cnt int
		lp, cnt = sb.PrevLp(lp)
		lineno -= cnt
	}
	if lp.IsText() && lp.Flags&line.Select != 0 {
		e.Ring.Curr = e.SelectRI
		sb.SetPosition(lineno, lp)
		return nil
	}
	logger.Tracemsg("selection is not visible")
	return errors.ErrSelectInvisible
}

// RecoverSelection makes the selection contiguous again after a
// surgical reload rearranged the lines.
func (e *Editor) RecoverSelection() {
	sb := e.selBuf()
	if sb == nil {
		return
	}

	first := -1
	lineno := 1
	lp := sb.Top.Next()
	for lp.IsText() {
		if lp.Flags&line.Select != 0 {
			first = lineno
			break
		}
		lp = lp.Next()
		lineno++
	}
	if first < 0 {
		// nothing found, no selection
		e.SelectW = 0
		e.SelectRI = -1
		return
	}

	last := -1
	lp = sb.Bottom.Prev()
	lineno = sb.NumLines
	for lp.IsText() {
		if lp.Flags&line.Select != 0 {
			last = lineno
			break
		}
		lp = lp.Prev()
		lineno--
	}

	// all lines between belong to the selection
	for lp.IsText() && lineno > first {
		lp.Flags |= line.Select
		lp = lp.Prev()
		lineno--
	}

	if e.SelectW < first {
		e.SelectW = first
	} else if e.SelectW > last {
		e.SelectW = last
	}
}

// CpSelect copies the visible selection lines after the focus line;
// the copies become the new selection.
func (e *Editor) CpSelect() error {
	b := e.Current()
	if e.SelectRI < 0 {
		logger.Tracemsg("no selection")
		return errors.ErrNoSelection
	}
	if b.Flags&buffer.NoAddLine != 0 {
		logger.Tracemsg("no line addition in this buffer")
		return errors.ErrNoAddLine
	}

	src, _ := e.selectionFirstLine()
	target := b.Curr
	if target == b.Bottom ||
		(target.Flags&line.Select != 0 && target.Next().Flags&line.Select != 0) {
		logger.Tracemsg("selection copy: target conflict")
		return errors.ErrSelectConflict
	}

	count := e.cpSelectEng(src, target)
	b.NumLines += count
	if count > 0 {
		b.Flags |= buffer.Change
	}
	e.SelectRI = b.Index
	return nil
}

// cpSelectEng copies lines from src after target while the source has
// the select bit; hidden lines are not copied but lose the bit.
func (e *Editor) cpSelectEng(src, target *line.Line) int {
	sb := e.selBuf()
	stopLoop := target
	count := 0

	for src.IsText() && src.Flags&line.Select != 0 {
		if !sb.HiddenLine(src) {
			lx := line.Append(target, src.Buff)
			if lx == nil {
				return count
			}
			target = lx
			target.Flags = src.Flags &^ line.BookmarkMask
			target.Flags &^= line.HideMaskAll
			target.Flags |= line.Change
			count++
		}
		src.Flags &^= line.Select
		if stopLoop == src {
			break
		}
		src = src.Next()
	}
	return count
}

// RmSelect removes the visible selection lines and resets the
// selection.
func (e *Editor) RmSelect() error {
	if e.SelectRI < 0 {
		logger.Tracemsg("no selection")
		return errors.ErrNoSelection
	}
	sb := e.selBuf()
	if sb.Flags&buffer.NoDelLine != 0 {
		logger.Tracemsg("no line delete in this buffer")
		return errors.ErrNoDelLine
	}

	first, lnoFirst := e.selectionFirstLine()

	// relocate current?
	if sb.Curr.Flags&line.Select != 0 {
		lp, cnt := sb.PrevLp(first)
		sb.Curr = lp
		sb.Lineno = lnoFirst - cnt
	}

	count := 0
	for lp := first; lp.IsText() && lp.Flags&line.Select != 0; {
		if sb.HiddenLine(lp) {
			lp.Flags &^= line.Select
			lp = lp.Next()
		} else {
			lp = sb.RemoveLine(lp)
			count++
		}
	}

	if lnoFirst < sb.Lineno {
		sb.Lineno -= count
	}
	if count > 0 {
		sb.Flags |= buffer.Change
	}
	e.SelectRI = -1
	e.SelectW = 0
	return nil
}

// MvSelect moves the visible selection lines after the focus line.
// Unless MoveReset is configured the moved lines stay selected.
func (e *Editor) MvSelect() error {
	b := e.Current()
	if e.SelectRI < 0 {
		logger.Tracemsg("no selection")
		return errors.ErrNoSelection
	}
	sb := e.selBuf()
	if b.Flags&buffer.NoAddLine != 0 {
		logger.Tracemsg("no line addition in this buffer")
		return errors.ErrNoAddLine
	}
	if sb.Flags&buffer.NoDelLine != 0 {
		logger.Tracemsg("no line delete in this buffer")
		return errors.ErrNoDelLine
	}

	src, lnoSrc := e.selectionFirstLine()
	target := b.Curr
	if target.Flags&line.Select != 0 {
		logger.Tracemsg("selection move conflict: target line in selection")
		return errors.ErrSelectConflict
	}

	if e.SelectRI != b.Index && sb.Curr.Flags&line.Select != 0 {
		// relocate current?
		lp, cnt := sb.PrevLp(src)
		sb.Curr = lp
		sb.Lineno = lnoSrc - cnt
	}

	moveReset := config.Common != nil && config.Common.MoveReset
	count := 0
	for lp := src; lp.IsText() && lp.Flags&line.Select != 0; {
		next := lp.Next()
		if moveReset {
			lp.Flags &^= line.Select
		}
		if !sb.HiddenLine(lp) {
			if lp.Bookmark() != 0 {
				e.clrOptBookmark(lp)
			}
			target = line.Move(lp, target)
			target.Flags &^= line.BookmarkMask | line.HideMaskAll
			target.Flags |= line.Change
			count++
		}
		lp = next
	}

	if lnoSrc < sb.Lineno {
		sb.Lineno -= count
	}
	sb.NumLines -= count
	b.NumLines += count
	if count > 0 {
		sb.Flags |= buffer.Change
		b.Flags |= buffer.Change
	}

	if moveReset {
		e.SelectRI = -1
		e.SelectW = 0
	} else {
		e.SelectRI = b.Index
		e.SelectW = lnoSrc + 1
	}
	return nil
}

// OverSelect overwrites the visible selection lines one-to-one with
// the lines of the *sh* buffer; extra source lines are appended,
// extra selection lines deleted.
func (e *Editor) OverSelect() error {
	b := e.Current()
	if b == nil || b.Fname != "*sh*" {
		logger.Tracemsg("selection overwrite only from *sh* buffer")
		return errors.ErrSelectConflict
	}
	srcRI := b.Index

	if e.SelectRI < 0 {
		logger.Tracemsg("no selection target")
		return errors.ErrNoSelection
	}
	targetRI := e.SelectRI
	tb := e.Ring.Slots[targetRI]
	if tb.Flags&buffer.ChMask != 0 {
		logger.Tracemsg("selection is in read/only buffer")
		return errors.ErrReadOnly
	}
	if targetRI == srcRI {
		logger.Tracemsg("selection target and source must be in different buffers")
		return errors.ErrSelectConflict
	}

	srcStart, _ := b.NextLp(b.Top)
	if err := e.overSelectEng(b, srcStart, tb); err != nil {
		if err == errors.ErrSelectInvisible {
			logger.Tracemsg("selection has no visible line(s)")
			return nil
		}
		return err
	}

	// drop source buffer
	if config.Common == nil || config.Common.CloseOver {
		e.Ring.Curr = srcRI
		e.DropBuffer()
	}

	e.Ring.Curr = targetRI
	ops.GoHome(tb)
	return nil
}

// overSelectEng is the overwrite engine: one-to-one over the visible
// selection, append the source surplus, delete the selection surplus.
func (e *Editor) overSelectEng(srcBuf *buffer.Buffer, src *line.Line, tb *buffer.Buffer) error {
	target, lnoFirst := e.selectionFirstLine()
	if target.IsText() && tb.HiddenLine(target) {
		var cnt int
		target, cnt = tb.NextLp(target)
		lnoFirst += cnt
	}
	targetEnd, lnoLast := e.selectionLastLine()
	if targetEnd.IsText() && tb.HiddenLine(targetEnd) {
		var cnt int
		targetEnd, cnt = tb.PrevLp(targetEnd)
		lnoLast -= cnt
	}
	if !target.IsText() || !targetEnd.IsText() {
		return errors.ErrSelectInvisible
	}
	e.ResetSelect()

	srcEnd := srcBuf.Bottom

	srcReady, targetReady := false, false
	over := 0
	for !srcReady && src.IsText() && !targetReady && target.IsText() {
		// in the range of the original selection, overwrite the buffer
		if err := target.Splice(0, target.Len(), src.Buff); err != nil {
			return err
		}
		target.Flags |= line.Change
		over++

		if src == srcEnd {
			srcReady = true
		}
		src, _ = srcBuf.NextLp(src)

		if target == targetEnd {
			targetReady = true
		}
		var cnt int
		target, cnt = tb.NextLp(target)
		lnoFirst += cnt
	}
	if over > 0 {
		tb.Flags |= buffer.Change
	}

	if !srcReady && src.IsText() {
		// append the rest of source
		insert := 0
		for !srcReady && src.IsText() {
			if src == srcEnd {
				srcReady = true
			}
			lp := line.InsertBefore(target, src.Buff)
			if lp == nil {
				return errors.ErrNoAddLine
			}
			lp.Flags |= line.Change
			insert++
			src, _ = srcBuf.NextLp(src)
		}
		if lnoFirst <= tb.Lineno {
			tb.Lineno += insert
		}
		tb.NumLines += insert
		if insert > 0 {
			tb.Flags |= buffer.Change
		}
	} else if !targetReady && target.IsText() {
		// remove the rest of the old selection range

		// relocate current (up) if it would be removed
		if lnoFirst <= tb.Lineno && tb.Lineno <= lnoLast {
			lp, cnt := tb.PrevLp(target)
			tb.Curr = lp
			tb.Lineno = lnoFirst - cnt
		}

		del := 0
		for !targetReady && target.IsText() {
			if target == targetEnd {
				targetReady = true
			}
			if tb.HiddenLine(target) {
				target = target.Next()
			} else {
				target = tb.RemoveLine(target)
				del++
			}
		}
		if lnoFirst < tb.Lineno {
			tb.Lineno -= del
		}
		if del > 0 {
			tb.Flags |= buffer.Change
		}
	}

	return nil
}

// WrSelect writes the visible selection lines to a writer, optionally
// marking runs of skipped hidden lines.
func (e *Editor) WrSelect(write func([]byte) error, withShadow bool) (int, error) {
	if e.SelectRI < 0 {
		return 0, errors.ErrNoSelection
	}
	sb := e.selBuf()

	lp, _ := e.selectionFirstLine()
	if lp.IsText() && sb.HiddenLine(lp) {
		lp, _ = sb.NextLp(lp)
	}

	count := 0
	shadow := 0
	shadowMark := func(n int) string {
		if n > 1 {
			return fmt.Sprintf("--- %d lines ---\n", n)
		}
		return "--- 1 line ---\n"
	}
	shadowEnabled := withShadow && config.Common != nil && config.Common.Shadow
	for lp.IsText() && lp.Flags&line.Select != 0 {
		if !sb.HiddenLine(lp) {
			if shadow > 0 {
				if err := write([]byte(shadowMark(shadow))); err != nil {
					return count, err
				}
				count++
			}
			if err := write(lp.Buff); err != nil {
				return count, err
			}
			count++
			shadow = 0
		} else if shadowEnabled {
			shadow++
		}
		lp = lp.Next()
	}
	return count, nil
}
