package editor

import (
	"strconv"

	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/line"
	"github.com/tved/tved/internal/edit/ops"
	"github.com/tved/tved/internal/errors"
	"github.com/tved/tved/internal/io/logger"
	"github.com/tved/tved/internal/regex"
)

type shiftType int

const (
	unindentLeft shiftType = iota
	indentRight
	shiftLeft
	shiftRight
)

// UnindentLeft shifts the visible selection lines left while their
// first character is blank.
func (e *Editor) UnindentLeft() error { return e.shiftEngine(unindentLeft) }

// IndentRight indents the visible selection lines by one space.
func (e *Editor) IndentRight() error { return e.shiftEngine(indentRight) }

// ShiftLeft cuts the first character off the visible selection lines.
func (e *Editor) ShiftLeft() error { return e.shiftEngine(shiftLeft) }

// ShiftRight duplicates the first character of each visible selection
// line.
func (e *Editor) ShiftRight() error { return e.shiftEngine(shiftRight) }

// visibleSelectionStart finds the first visible selection line or
// reports that the selection cannot be operated on.
func (e *Editor) visibleSelectionStart() (*buffer.Buffer, *line.Line, bool) {
	sb := e.selBuf()
	if sb == nil || e.SelectRI != e.Ring.Curr {
		return nil, nil, false
	}
	lp, _ := e.selectionFirstLine()
	if lp.IsText() && sb.HiddenLine(lp) {
		lp, _ = sb.NextLp(lp)
	}
	if !lp.IsText() || lp.Flags&line.Select == 0 {
		logger.Tracemsg("selection not visible")
		return nil, nil, false
	}
	return sb, lp, true
}

func (e *Editor) shiftEngine(t shiftType) error {
	sb, lp, ok := e.visibleSelectionStart()
	if !ok {
		return nil
	}

	mod := 0
	// do not change empty lines
	for lp.Flags&line.Select != 0 {
		if lp.Len() > 1 {
			switch t {
			case unindentLeft:
				if lp.Buff[0] == ' ' || lp.Buff[0] == '\t' {
					lp.Splice(0, 1, nil)
					mod++
					lp.Flags |= line.Change
				}
			case indentRight:
				if lp.Splice(0, 0, []byte(" ")) == nil {
					lp.Flags |= line.Change
					mod++
				}
			case shiftLeft:
				lp.Splice(0, 1, nil)
				mod++
				lp.Flags |= line.Change
			case shiftRight:
				if lp.Splice(0, 0, lp.Buff[:1]) == nil {
					mod++
					lp.Flags |= line.Change
				}
			}
		}
		lp, _ = sb.NextLp(lp)
	}

	if mod == 0 {
		logger.Tracemsg("nothing shifted")
	} else {
		if sb.Curr.Flags&line.Select != 0 {
			sb.Lncol = ops.GetCol(sb.Curr, sb.Curpos)
		}
		sb.Flags |= buffer.Change
	}
	return nil
}

// blockCurpos resolves the optional column argument of the block
// operations, falling back to the cursor's visual column.
func (e *Editor) blockCurpos(optCurpos string) int {
	sb := e.selBuf()
	curpos := 0
	if optCurpos == "" {
		if sb != nil {
			curpos = sb.Curpos
		}
	} else {
		curpos, _ = strconv.Atoi(optCurpos)
	}
	if curpos < 0 {
		curpos = 0
	}
	return curpos
}

// padLine pads one line with spaces up to the visual column. Returns
// false when the line was already long enough.
func padLine(lp *line.Line, padsize int) bool {
	lsize := ops.GetPos(lp, lp.Len()-1)
	if padsize <= lsize {
		return false
	}
	pad := make([]byte, padsize-lsize)
	for i := range pad {
		pad[i] = ' '
	}
	lp.Splice(lp.Len()-1, 0, pad)
	return true
}

// PadBlock pads the selection lines one-by-one with spaces up to the
// given or current cursor position.
func (e *Editor) PadBlock(optCurpos string) error {
	sb, lp, ok := e.visibleSelectionStart()
	if !ok {
		return nil
	}
	curpos := e.blockCurpos(optCurpos)

	mod := 0
	for lp.Flags&line.Select != 0 {
		if padLine(lp, curpos) {
			lp.Flags |= line.Change
			sb.Flags |= buffer.Change
			mod++
		}
		lp, _ = sb.NextLp(lp)
	}
	if mod == 0 {
		logger.Tracemsg("nothing changed")
	}
	return nil
}

// CutBlock cuts the selection lines one-by-one at the given or
// current cursor position.
func (e *Editor) CutBlock(optCurpos string) error {
	if e.SelectRI != e.Ring.Curr {
		return nil
	}
	sb := e.selBuf()
	curpos := e.blockCurpos(optCurpos)

	sb.Curpos = ops.GetPos(sb.Curr, sb.Lncol)
	if sb.Lnoff > sb.Curpos {
		sb.Lnoff = sb.Curpos
	}
	return e.lcutBlockEngine(curpos, false)
}

// LeftCutBlock cuts the selection lines to the left one-by-one at the
// given or current cursor position.
func (e *Editor) LeftCutBlock(optCurpos string) error {
	if e.SelectRI != e.Ring.Curr {
		return nil
	}
	sb := e.selBuf()
	curpos := e.blockCurpos(optCurpos)

	sb.Curpos = 0
	sb.Lncol = 0
	sb.Lnoff = 0
	return e.lcutBlockEngine(curpos, true)
}

// lcutBlockEngine cuts characters from the column to the left or to
// the line end on each selection line; lines are never removed.
func (e *Editor) lcutBlockEngine(curpos int, left bool) error {
	sb, lp, ok := e.visibleSelectionStart()
	if !ok {
		return nil
	}

	mod := 0
	for lp.Flags&line.Select != 0 {
		lncol := ops.GetCol(lp, curpos)
		if left {
			if lncol > 0 {
				lp.Splice(0, lncol, nil)
				mod++
				lp.Flags |= line.Change
				sb.Flags |= buffer.Change
			}
		} else {
			if lncol < lp.Len()-1 {
				lp.Splice(lncol, lp.Len(), []byte("\n"))
				mod++
				lp.Flags |= line.Change
				sb.Flags |= buffer.Change
			}
		}
		lp, _ = sb.NextLp(lp)
	}

	if mod == 0 {
		logger.Tracemsg("nothing changed")
	}
	return nil
}

// SplitBlock splits the selected lines in two separate lines each at
// the given or current cursor position; the tails collect after the
// selection.
func (e *Editor) SplitBlock(optCurpos string) error {
	if e.SelectRI != e.Ring.Curr {
		return nil
	}
	sb, src, ok := e.visibleSelectionStart()
	if !ok {
		return nil
	}
	curpos := e.blockCurpos(optCurpos)

	last, _ := e.selectionLastLine()
	if !last.IsText() {
		logger.Tracemsg("selection not visible")
		return nil
	}
	// first visible line after the selection
	target, _ := sb.NextLp(last)

	mod := 0
	for src.Flags&line.Select != 0 {
		lncol := ops.GetCol(src, curpos)

		lx := sb.InsertBefore(target, []byte("\n"))
		if lx == nil {
			logger.Tracemsg("split operation failed")
			return errors.ErrNoAddLine
		}
		mod++
		lx.Flags |= line.Change
		sb.Flags |= buffer.Change

		if lncol < src.Len()-1 {
			// move the tail bytes into the new line
			if err := lx.Splice(0, 0, src.Buff[lncol:src.Len()-1]); err != nil {
				return err
			}
			src.Splice(lncol, src.Len(), []byte("\n"))
			src.Flags |= line.Change
		}

		src, _ = sb.NextLp(src)
	}

	if mod == 0 {
		logger.Tracemsg("nothing changed")
	}
	return nil
}

// JoinBlock joins the two selection blocks around a separator line
// one-by-one; the separator is matched by the given pattern or the
// first empty line. Short upper lines are padded to the widest line
// of the upper block.
func (e *Editor) JoinBlock(separator string) error {
	if e.SelectRI != e.Ring.Curr {
		return nil
	}
	sb := e.selBuf()

	expr := separator
	switch {
	case expr == "":
		expr = "^$"
	case expr[0] != '^':
		expr = "^" + expr
	}
	p, err := regex.CompileExpanded(regex.Shorthands(expr))
	if err != nil {
		logger.Tracemsg("%s", err.Error())
		return err
	}

	// upper part of the selection starts here
	target, lineno := e.selectionFirstLine()
	if target.IsText() && sb.HiddenLine(target) {
		var cnt int
		target, cnt = sb.NextLp(target)
		lineno += cnt
	}
	if !target.IsText() || target.Flags&line.Select == 0 {
		logger.Tracemsg("selection not visible")
		return nil
	}

	// count down up to the separator, tracking the widest line
	count := 0
	padsize := 0
	lx := target
	for lx.Flags&line.Select != 0 {
		if p.MatchLine(lx.Buff) {
			break
		}
		if lsize := ops.GetPos(lx, lx.Len()-1); lsize > padsize {
			padsize = lsize
		}
		count++
		var cnt int
		lx, cnt = sb.NextLp(lx)
		lineno += cnt
	}
	if !lx.IsText() || lx.Flags&line.Select == 0 {
		logger.Tracemsg("separator line not found")
		return nil
	}
	e.SelectW = lineno
	if sb.Lineno > e.SelectW {
		sb.SetPosition(e.SelectW, lx)
	}

	// the next visible after the separator is the source
	src, _ := sb.NextLp(lx)

	mod := 0
	for count > 0 && src.Flags&line.Select != 0 {
		count--
		if err := target.Splice(target.Len()-1, 1, src.Buff); err != nil {
			logger.Tracemsg("join operation failed")
			return err
		}
		if src.Len() > 1 {
			target.Flags |= line.Change
		}
		src = sb.RemoveLine(src)
		if src.IsText() && sb.HiddenLine(src) {
			src, _ = sb.NextLp(src)
		}
		sb.Flags |= buffer.Change
		mod++
		target, _ = sb.NextLp(target)
	}

	// the target is now the separator; insert the rest before it
	if src.IsText() && src.Flags&line.Select != 0 {
		for src.Flags&line.Select != 0 {
			nl := sb.InsertBefore(target, []byte("\n"))
			if nl == nil {
				logger.Tracemsg("join operation failed")
				return errors.ErrNoAddLine
			}
			padLine(nl, padsize)
			if err := nl.Splice(nl.Len()-1, 1, src.Buff); err != nil {
				logger.Tracemsg("join operation failed")
				return err
			}
			nl.Flags |= line.Select | line.Change
			sb.Flags |= buffer.Change

			src = sb.RemoveLine(src)
			if src.IsText() && sb.HiddenLine(src) {
				src, _ = sb.NextLp(src)
			}
			mod++
		}
	}

	if mod == 0 {
		logger.Tracemsg("nothing changed")
	} else {
		if sb.Lncol >= sb.Curr.Len()-1 {
			ops.GoEnd(sb)
		}
		ops.UpdateCurpos(sb)
	}
	return nil
}
