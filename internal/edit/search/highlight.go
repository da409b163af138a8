package search

import (
	"strings"

	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/ops"
	"github.com/tved/tved/internal/io/logger"
	"github.com/tved/tved/internal/regex"
)

// Highlight compiles the per-buffer highlight regex. Without an
// argument the word under the cursor is used; an explicit empty
// pattern (like "//") resets highlighting.
func Highlight(b *buffer.Buffer, expr string) error {
	// do reset
	if b.Flags&buffer.Tag5 != 0 {
		b.HighlightRe = regex.Pattern{}
		b.Flags &^= buffer.Tag5 | buffer.Tag6
	}

	var exprNew string
	if expr == "" {
		word := ops.SelectWord(b.Curr, b.Lncol)
		if word == "" {
			return nil
		}
		exprNew = strings.TrimLeft(word, ".>")
	} else {
		exprNew = regex.Shorthands(regex.CutDelimiters(expr))
		if exprNew == "" {
			return nil
		}
	}

	p, err := regex.CompileExpanded(exprNew)
	if err != nil {
		logger.Tracemsg("%s", err.Error())
		return err
	}

	b.HighlightRe = p
	b.Flags |= buffer.Tag5
	if p.Anchored() {
		b.Flags |= buffer.Tag6
	}
	return nil
}
