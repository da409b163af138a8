// Package search implements forward regex search with anchor-aware
// stepping and the interactive change driver with backreference
// substitution.
package search

import (
	"github.com/tved/tved/internal/constants"
	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/line"
	"github.com/tved/tved/internal/edit/ops"
	"github.com/tved/tved/internal/errors"
	"github.com/tved/tved/internal/io/logger"
	"github.com/tved/tved/internal/regex"
)

// Reset drops the search state of a buffer.
func Reset(b *buffer.Buffer) {
	if b.Flags&(buffer.Tag2|buffer.Tag3) != 0 {
		b.SearchRe = regex.Pattern{}
		b.Flags &^= buffer.Tag2 | buffer.Tag3 | buffer.Tag4
	}
}

// Search starts a forward search with the given expression and
// advances to the first match. The search resets immediately when no
// match is found.
func Search(b *buffer.Buffer, expr string) error {
	Reset(b)

	if expr == "" {
		return nil
	}
	exprTmp := regex.CutDelimiters(expr)
	if exprTmp == "" {
		return nil
	}

	p, err := regex.CompileExpanded(regex.Shorthands(exprTmp))
	if err != nil {
		logger.Tracemsg("%s", err.Error())
		return err
	}

	b.SearchRe = p
	b.Flags |= buffer.Tag2
	if p.Anchored() {
		b.Flags |= buffer.Tag4
	} else {
		b.Flags &^= buffer.Tag4
	}

	if !repeatSearch(b, true) {
		Reset(b) // drop search
		return errors.ErrNoMatch
	}
	if len(expr) > constants.SearchStrSize {
		expr = expr[:constants.SearchStrSize]
	}
	b.SearchExpr = expr
	return nil
}

// RepeatSearch advances to the next match, restoring the position and
// resetting the search when there is none.
func RepeatSearch(b *buffer.Buffer) error {
	if !repeatSearch(b, false) {
		return errors.ErrNoMatch
	}
	return nil
}

// engine runs the raw forward scan from the buffer position. On a hit
// it moves the cursor behind the match and returns true.
func engine(b *buffer.Buffer) bool {
	lx := b.Curr
	lineno := b.Lineno
	xcol := b.Lncol
	anchored := b.Flags&buffer.Tag4 != 0

	for lx.Flags&line.Bottom == 0 {
		if xcol < lx.Len() {
			loc := b.SearchRe.FindLine(lx.Buff, xcol)
			if loc != nil {
				so, eo := loc[0], loc[1]
				if anchored && so == eo {
					if xcol+so == 0 || xcol+so == lx.Len()-1 {
						b.SetPosition(lineno, lx)
						b.Lncol = xcol + eo
						return true
					}
				} else if so < eo {
					b.SetPosition(lineno, lx)
					b.Lncol = xcol + eo
					return true
				}
			}
		}
		var cnt int
		lx, cnt = b.NextLp(lx)
		lineno += cnt
		xcol = 0
	}
	return false
}

func repeatSearch(b *buffer.Buffer, initial bool) bool {
	if b.Flags&buffer.Tag2 == 0 {
		return true
	}

	restoreLx := b.Curr
	restoreLineno := b.Lineno
	restoreLncol := b.Lncol

	// start search
	if b.Curr.Flags&line.Top != 0 {
		b.Curr = b.Curr.Next()
		b.Lineno++
	}

	// special skip before a repeated anchored search, to avoid
	// sticking on zero-width matches
	if !initial && b.Flags&buffer.Tag4 != 0 {
		b.Lncol++
	}

	// phase one -- search only the first match
	if engine(b) {
		ops.UpdateCurpos(b)
		b.Flags &^= buffer.Cmd
		return true
	}

	found := false
	if initial && restoreLx.Flags&line.Top == 0 {
		// phase two -- search only to show earlier matches
		b.Curr = b.Top
		b.Lineno = 0
		b.Lncol = 0
		if b.Curr.Next().IsText() {
			b.Curr = b.Curr.Next()
			b.Lineno = 1
		}
		found = engine(b)
	}

	// restore original position anyway
	b.Curr = restoreLx
	b.Lineno = restoreLineno
	b.Lncol = restoreLncol
	ops.UpdateCurpos(b)

	if found {
		// found, but before the cursor -- position reverted
		b.Flags &^= buffer.Cmd
		return true
	}

	logger.Tracemsg("search: no match")
	Reset(b)
	return false
}
