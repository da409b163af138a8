// Package filter implements the per-buffer, multi-level show/hide
// state: regex and predicate filtering, temporary full view, range
// expansion and the language-aware function fold.
package filter

import (
	"strconv"
	"strings"

	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/line"
	"github.com/tved/tved/internal/edit/ops"
	"github.com/tved/tved/internal/errors"
	"github.com/tved/tved/internal/io/logger"
	"github.com/tved/tved/internal/regex"
)

type action int

const (
	actionAll action = 1 << iota
	actionMore
	actionLess
)

// All resets every line to visible, then hides the lines not matching
// the predicate.
func All(b *buffer.Buffer, expr string) error {
	return base(b, actionAll, expr)
}

// More unhides the lines matching the predicate.
func More(b *buffer.Buffer, expr string) error {
	return base(b, actionMore, expr)
}

// Less hides the lines matching the predicate.
func Less(b *buffer.Buffer, expr string) error {
	return base(b, actionLess, expr)
}

// apply sets or clears the hide bit of one line for an action.
func apply(l *line.Line, act action, fmask line.Flag, matched bool) {
	if matched {
		if act&(actionMore|actionAll) != 0 {
			l.Flags &^= fmask
		} else if act&actionLess != 0 {
			l.Flags |= fmask
		}
	} else if act&actionAll != 0 {
		l.Flags |= fmask
	}
}

// base runs one filter action at the buffer's current level. The
// predicate is empty, a prefix of "alter" or "selection" or
// "function", ":N" for one line, or an extended regex.
func base(b *buffer.Buffer, act action, expr string) error {
	// activate filter
	b.Flags |= buffer.FilterMask(b.FLevel)
	fmask := line.HideMask(b.FLevel)

	var err error
	switch {
	case expr == "":
		switch act {
		case actionAll:
			// view all lines
			for lx := b.Top.Next(); lx.IsText(); lx = lx.Next() {
				lx.Flags &^= fmask
			}
		case actionLess:
			// hide all lines
			for lx := b.Top.Next(); lx.IsText(); lx = lx.Next() {
				lx.Flags |= fmask
			}
		}
		// nothing to do for more

	case strings.HasPrefix("alter", expr):
		for lx := b.Top.Next(); lx.IsText(); lx = lx.Next() {
			apply(lx, act, fmask, lx.Flags&(line.Alter|line.Change) != 0)
		}

	case strings.HasPrefix("selection", expr):
		for lx := b.Top.Next(); lx.IsText(); lx = lx.Next() {
			apply(lx, act, fmask, lx.Flags&line.Select != 0)
		}

	case strings.HasPrefix("function", expr):
		err = foldFunc(b, act, fmask)

	case expr[0] == ':':
		lineno, aerr := strconv.Atoi(expr[1:])
		if aerr != nil || lineno < 1 || lineno > b.NumLines {
			err = errors.ErrLineRange
			break
		}
		lx := b.GotoLineno(lineno)
		if lx == nil || !lx.IsText() {
			err = errors.ErrLineRange
			break
		}
		b.SetPosition(lineno, lx)
		if act&(actionMore|actionAll) != 0 {
			lx.Flags &^= fmask
		} else if act&actionLess != 0 {
			lx.Flags |= fmask
		}

	default:
		err = byRegex(b, act, fmask, expr)
	}

	skipToVisible(b)
	b.Lncol = ops.GetCol(b.Curr, b.Curpos)

	return err
}

// byRegex hides or unhides the lines matching an extended regex.
func byRegex(b *buffer.Buffer, act action, fmask line.Flag, expr string) error {
	p, err := regex.Compile(expr)
	if err != nil {
		logger.Tracemsg("%s", err.Error())
		return err
	}
	for lx := b.Top.Next(); lx.IsText(); lx = lx.Next() {
		apply(lx, act, fmask, p.MatchLine(lx.Buff))
	}
	return nil
}

// skipToVisible moves the cursor off a line the action just hid.
func skipToVisible(b *buffer.Buffer) {
	if !b.Curr.IsText() || !b.HiddenLine(b.Curr) {
		return
	}
	lx, cnt := b.NextLp(b.Curr)
	if lx.IsText() {
		b.Curr = lx
		b.Lineno += cnt
		return
	}
	lx, cnt = b.PrevLp(b.Curr)
	b.Curr = lx
	b.Lineno -= cnt
}

// TmpAll toggles between the filtered view and the full view without
// touching the per-line hide bits.
func TmpAll(b *buffer.Buffer) {
	if b.Flags&buffer.FilterMask(b.FLevel) != 0 {
		// temp view all
		b.Flags &^= buffer.FilterMask(b.FLevel)
		return
	}
	// restore filter bit
	b.Flags |= buffer.FilterMask(b.FLevel)
	if b.Curr.IsText() && b.HiddenLine(b.Curr) {
		lx, cnt := b.NextLp(b.Curr)
		b.Curr = lx
		b.Lineno += cnt
		b.Lncol = ops.GetCol(b.Curr, b.Curpos)
	}
}

// ExpandUp unhides the immediate hidden neighbour above and moves up.
func ExpandUp(b *buffer.Buffer) {
	if b.Curr.Flags&line.Top != 0 {
		return
	}
	prev := b.Curr.Prev()
	if prev.IsText() && b.HiddenLine(prev) {
		prev.Flags &^= line.HideMask(b.FLevel)
	}
	b.Curr = prev
	b.Lineno--
	b.Lncol = ops.GetCol(b.Curr, b.Curpos)
}

// ExpandDown unhides the immediate hidden neighbour below and moves
// down.
func ExpandDown(b *buffer.Buffer) {
	if b.Curr.Flags&line.Bottom != 0 {
		return
	}
	next := b.Curr.Next()
	if next.IsText() && b.HiddenLine(next) {
		next.Flags &^= line.HideMask(b.FLevel)
	}
	b.Curr = next
	b.Lineno++
	b.Lncol = ops.GetCol(b.Curr, b.Curpos)
}

// Restrict hides the current line and moves to the next visible one.
func Restrict(b *buffer.Buffer) {
	if !b.Curr.IsText() {
		return
	}
	b.Curr.Flags |= line.HideMask(b.FLevel)

	lx, cnt := b.NextLp(b.Curr)
	b.Curr = lx
	b.Lineno += cnt
	b.Lncol = ops.GetCol(b.Curr, b.Curpos)
}

// IncrLevel moves to the next filter level.
func IncrLevel(b *buffer.Buffer) error {
	b.FLevel++
	if line.HideMask(b.FLevel) == 0 {
		// out, already highest level
		b.FLevel--
		return errors.ErrLineRange
	}
	skipToVisible(b)
	b.Lncol = ops.GetCol(b.Curr, b.Curpos)
	return nil
}

// DecrLevel moves to the previous filter level.
func DecrLevel(b *buffer.Buffer) error {
	b.FLevel--
	if b.FLevel <= 0 {
		// out, already lowest level
		b.FLevel++
		return errors.ErrLineRange
	}
	skipToVisible(b)
	b.Lncol = ops.GetCol(b.Curr, b.Curpos)
	return nil
}

// copyLevelBits copies the active bit and every hide bit from one
// level to another.
func copyLevelBits(b *buffer.Buffer, from, to int) {
	fmask0 := line.HideMask(from)
	fmask1 := line.HideMask(to)

	if b.Flags&buffer.FilterMask(from) != 0 {
		b.Flags |= buffer.FilterMask(to)
	} else {
		b.Flags &^= buffer.FilterMask(to)
	}
	for lx := b.Top.Next(); lx.IsText(); lx = lx.Next() {
		if lx.Flags&fmask0 != 0 {
			lx.Flags |= fmask1
		} else {
			lx.Flags &^= fmask1
		}
	}
}

// Incr2Level moves to the next level and duplicates the filter bits.
func Incr2Level(b *buffer.Buffer) error {
	from := b.FLevel
	b.FLevel++
	if line.HideMask(b.FLevel) == 0 {
		b.FLevel--
		return errors.ErrLineRange
	}
	copyLevelBits(b, from, b.FLevel)
	logger.Tracemsg("filter level increased, filter bits copied")
	return nil
}

// Decr2Level moves to the previous level and duplicates the filter
// bits.
func Decr2Level(b *buffer.Buffer) error {
	from := b.FLevel
	b.FLevel--
	if b.FLevel <= 0 {
		b.FLevel++
		return errors.ErrLineRange
	}
	copyLevelBits(b, from, b.FLevel)
	logger.Tracemsg("filter level decreased, filter bits copied")
	return nil
}

// ColorTag marks lines with the color tag using the filter predicates
// empty, alter, selection and :N, or a regex; an empty pattern removes
// all marks from in-view lines, the simple predicates add marks, a
// regex sets the mark on matching in-view lines and clears it on the
// rest. The function predicate is not recognised here: such an
// expression is compiled as a regex.
func ColorTag(b *buffer.Buffer, expr string) error {
	fmask := line.Tag1

	if expr == "" {
		for lx, _ := b.NextLp(b.Top); lx.IsText(); lx, _ = b.NextLp(lx) {
			lx.Flags &^= fmask
		}
		return nil
	}

	switch {
	case strings.HasPrefix("alter", expr):
		for lx, _ := b.NextLp(b.Top); lx.IsText(); lx, _ = b.NextLp(lx) {
			if lx.Flags&(line.Alter|line.Change) != 0 {
				lx.Flags |= fmask
			}
		}
		return nil
	case strings.HasPrefix("selection", expr):
		for lx, _ := b.NextLp(b.Top); lx.IsText(); lx, _ = b.NextLp(lx) {
			if lx.Flags&line.Select != 0 {
				lx.Flags |= fmask
			}
		}
		return nil
	case expr[0] == ':':
		lineno, err := strconv.Atoi(expr[1:])
		if err != nil || lineno < 1 || lineno > b.NumLines {
			return errors.ErrLineRange
		}
		lx := b.GotoLineno(lineno)
		if lx == nil || b.HiddenLine(lx) {
			return errors.ErrLineRange
		}
		lx.Flags |= fmask
		return nil
	}

	p, err := regex.Compile(expr)
	if err != nil {
		logger.Tracemsg("%s", err.Error())
		return err
	}
	for lx, _ := b.NextLp(b.Top); lx.IsText(); lx, _ = b.NextLp(lx) {
		if p.MatchLine(lx.Buff) {
			lx.Flags |= fmask
		} else {
			lx.Flags &^= fmask
		}
	}
	return nil
}

// TagFocusLine toggles the color mark of the focus line.
func TagFocusLine(b *buffer.Buffer) error {
	if !b.Curr.IsText() {
		return errors.ErrLineRange
	}
	b.Curr.Flags ^= line.Tag1
	return nil
}
