package ops

import (
	"github.com/tved/tved/internal/config"
	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/line"
	"github.com/tved/tved/internal/errors"
	"github.com/tved/tved/internal/io/logger"
)

func smartIndent() bool {
	return config.Common != nil && config.Common.SmartIndent
}

// InsertChars inserts a string without newline into the current line
// at the cursor.
func InsertChars(b *buffer.Buffer, input []byte) error {
	if b.Flags&buffer.NoEdit != 0 {
		return errors.ErrNoEdit
	}
	if !b.Curr.IsText() || len(input) == 0 {
		return nil
	}

	// pre-update
	if b.Lncol > b.Curr.Len()-1 {
		GoEnd(b)
	}

	if err := b.Curr.Splice(b.Lncol, 0, input); err != nil {
		// failed, but the buffer remains
		return err
	}
	b.Lncol += len(input)
	b.Curr.Flags |= line.Change
	UpdateCurpos(b)
	b.Flags |= buffer.Change

	return nil
}

// DeleteChar deletes one character under the cursor; at end of line it
// joins the next visible line, on an empty line it deletes the line.
func DeleteChar(b *buffer.Buffer) error {
	if b.Flags&buffer.NoEdit != 0 {
		return errors.ErrNoEdit
	}
	if !b.Curr.IsText() {
		return nil
	}

	// at line end or over
	if b.Lncol >= b.Curr.Len()-1 {
		if b.Lncol == 0 {
			return Delline(b)
		}
		return JoinLine(b)
	}

	deleted := b.Curr.Buff[b.Lncol]
	if err := b.Curr.Splice(b.Lncol, 1, nil); err != nil {
		return err
	}
	b.Curr.Flags |= line.Change

	if deleted == '\t' {
		// recalculate, it was a TAB
		UpdateCurpos(b)
		if b.Lnoff > b.Curpos {
			b.Lnoff = b.Curpos
		}
	}
	b.Flags |= buffer.Change
	return nil
}

// DelbackChar goes left and deletes, or joins the current line to the
// previous visible one.
func DelbackChar(b *buffer.Buffer) error {
	if b.Flags&buffer.NoEdit != 0 {
		return errors.ErrNoEdit
	}
	if !b.Curr.IsText() {
		return nil
	}

	if b.Lncol > 0 {
		GoLeft(b)
		if b.Lncol < b.Curr.Len()-1 {
			return DeleteChar(b)
		}
		return nil
	}

	prev := b.Curr.Prev()
	if prev.Flags&line.Top != 0 {
		return nil // silent no
	}
	if b.HiddenLine(prev) {
		logger.Tracemsg("the previous line is not in-view")
		return nil
	}
	GoUp(b)
	GoEnd(b)
	return DeleteChar(b)
}

// Deleol deletes from the cursor to the end of line; at end of line it
// behaves like DeleteChar.
func Deleol(b *buffer.Buffer) error {
	if b.Flags&buffer.NoEdit != 0 {
		return errors.ErrNoEdit
	}
	if !b.Curr.IsText() {
		return nil
	}

	if b.Lncol >= b.Curr.Len()-1 {
		if b.Lncol == 0 {
			return Delline(b)
		}
		return JoinLine(b)
	}

	deleted := b.Curr.Buff[b.Lncol]
	if err := b.Curr.Splice(b.Lncol, b.Curr.Len(), []byte("\n")); err != nil {
		return err
	}
	if deleted == '\t' {
		UpdateCurpos(b)
		if b.Lnoff > b.Curpos {
			b.Lnoff = b.Curpos
		}
	}
	b.Flags |= buffer.Change
	b.Curr.Flags |= line.Change
	return nil
}

// Del2bol deletes from the cursor toward the beginning of the line.
func Del2bol(b *buffer.Buffer) error {
	if b.Flags&buffer.NoEdit != 0 {
		return errors.ErrNoEdit
	}
	if !b.Curr.IsText() {
		return nil
	}

	if b.Lncol > b.Curr.Len()-1 {
		b.Lncol = b.Curr.Len() - 1
	}
	if b.Lncol > 0 {
		if err := b.Curr.Splice(0, b.Lncol, nil); err != nil {
			return err
		}
		b.Flags |= buffer.Change
		b.Curr.Flags |= line.Change
	}
	b.Curpos = 0
	b.Lncol = 0
	b.Lnoff = 0
	return nil
}

// Delline deletes the current line.
func Delline(b *buffer.Buffer) error {
	if b.Flags&buffer.NoDelLine != 0 {
		return errors.ErrNoDelLine
	}
	if !b.Curr.IsText() {
		return nil
	}

	// save the next visible
	lp, cnt := b.NextLp(b.Curr)

	b.RemoveLine(b.Curr)
	b.Flags |= buffer.Change

	b.Curr = lp
	b.Lineno += cnt - 1
	b.Lncol = GetCol(b.Curr, b.Curpos)
	return nil
}

// Duplicate duplicates the current line and moves the cursor down.
func Duplicate(b *buffer.Buffer) error {
	if b.Flags&buffer.NoAddLine != 0 {
		return errors.ErrNoAddLine
	}
	if !b.Curr.IsText() {
		return nil
	}

	lx := b.Append(b.Curr, b.Curr.Buff)
	if lx == nil {
		return errors.ErrNoAddLine
	}
	lx.Flags = b.Curr.Flags &^ line.BookmarkMask
	lx.Flags |= line.Change
	b.Curr = lx
	b.Lineno++
	b.Flags |= buffer.Change
	return nil
}

// SplitLine splits the current line in two parts at the cursor. With
// smart indent the new line inherits the prefix blanks.
func SplitLine(b *buffer.Buffer) error {
	if b.Flags&buffer.NoAddLine != 0 {
		return errors.ErrNoAddLine
	}

	blanks := 0

	switch {
	case b.Curr.Flags&line.Bottom != 0:
		// insert empty line before bottom
		lx := b.InsertBefore(b.Curr, []byte("\n"))
		if lx == nil {
			return errors.ErrNoAddLine
		}
		lx.Flags |= line.Change
		b.Curr = lx
		// focus/lineno value doesn't change

	case b.Curr.Flags&line.Top != 0:
		// append empty line after top
		lx := b.Append(b.Curr, []byte("\n"))
		if lx == nil {
			return errors.ErrNoAddLine
		}
		lx.Flags |= line.Change
		b.Curr = lx
		b.Lineno++

	case b.Lncol >= b.Curr.Len()-1:
		// append empty line, cursor is at or past the end
		if smartIndent() {
			blanks = CountPrefixBlanks(b.Curr.Buff)
		}
		lx := b.Append(b.Curr, []byte("\n"))
		if lx == nil {
			return errors.ErrNoAddLine
		}
		lx.Flags |= line.Change
		lx.Flags |= b.Curr.Flags & line.Select
		if blanks > 0 {
			if err := lx.Splice(0, blanks, b.Curr.Buff[:blanks]); err != nil {
				return err
			}
		}
		b.Curr = lx
		b.Lineno++

	case b.Lncol == 0:
		// line is not empty, insert empty line before
		lx := b.InsertBefore(b.Curr, []byte("\n"))
		if lx == nil {
			return errors.ErrNoAddLine
		}
		lx.Flags |= line.Change
		lx.Flags |= b.Curr.Flags & line.Select
		// current line remains
		b.Lineno++
		blanks = 0

	default:
		// real split
		if smartIndent() {
			blanks = CountPrefixBlanks(b.Curr.Buff)
		}
		lx := b.Append(b.Curr, b.Curr.Buff[b.Lncol:])
		if lx == nil {
			return errors.ErrNoAddLine
		}
		if blanks > 0 {
			if err := lx.Splice(0, 0, b.Curr.Buff[:blanks]); err != nil {
				return err
			}
		}
		if err := b.Curr.Splice(b.Lncol, b.Curr.Len(), []byte("\n")); err != nil {
			return err
		}
		b.Curr.Flags |= line.Change
		lx.Flags |= line.Change
		lx.Flags |= b.Curr.Flags & (line.Tag1 | line.Select)
		b.Curr = lx
		b.Lineno++
	}

	b.Lncol = blanks
	UpdateCurpos(b)
	b.Flags |= buffer.Change
	return nil
}

// JoinLine joins the current line with the next visible text line.
func JoinLine(b *buffer.Buffer) error {
	if !b.Curr.IsText() {
		return nil
	}

	next := b.Curr.Next()
	nextIsEmpty := next.Len() <= 1

	if !next.IsText() {
		return nil
	}
	if b.HiddenLine(next) {
		logger.Tracemsg("the next line is not in-view")
		return nil
	}

	// pre-update
	if b.Lncol > b.Curr.Len()-1 {
		GoEnd(b)
	}

	if err := b.Curr.Splice(b.Curr.Len()-1, 1, next.Buff); err != nil {
		return err
	}

	b.RemoveLine(next)
	b.Flags |= buffer.Change
	if !nextIsEmpty {
		b.Curr.Flags |= line.Change
	}
	UpdateCurpos(b)
	return nil
}

// TypeText inserts multiline stream data at the cursor; smart indent
// is off while this action runs.
func TypeText(b *buffer.Buffer, str []byte) error {
	if len(str) == 0 {
		return nil
	}
	if b.Flags&buffer.NoEdit != 0 {
		return errors.ErrNoEdit
	}

	smartind := smartIndent()
	if smartind {
		config.Common.SmartIndent = false
		defer func() { config.Common.SmartIndent = true }()
	}

	begin := 0
	for begin < len(str) {
		last := begin
		for last < len(str) && str[last] != '\n' {
			last++
		}
		if begin < last {
			if err := InsertChars(b, str[begin:last]); err != nil {
				return err
			}
		}
		if last < len(str) && str[last] == '\n' {
			if err := SplitLine(b); err != nil {
				return err
			}
			last++
		}
		begin = last
	}
	return nil
}
