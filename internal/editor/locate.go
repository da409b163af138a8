package editor

import (
	"fmt"

	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/errors"
	"github.com/tved/tved/internal/io/logger"
	"github.com/tved/tved/internal/regex"
)

// InternalSearch scans all regular buffers for a pattern and appends
// the matches as "name:lineno: text" lines to the current (scratch)
// buffer, bounded by a header and a footer.
func (e *Editor) InternalSearch(pattern string) error {
	b := e.Current()
	if b == nil {
		return errors.ErrNoBuffer
	}

	p, err := regex.Compile(pattern)
	if err != nil {
		logger.Tracemsg("%s", err.Error())
		return err
	}

	// header
	lp := b.InsertBefore(b.Bottom, []byte("locate "+pattern+"\n"))
	if lp == nil {
		return errors.ErrNoAddLine
	}

	for ri := 0; ri < len(e.Ring.Slots); ri++ {
		src := e.Ring.Slots[ri]
		if src == nil || src.Flags&buffer.Open == 0 || src.Flags&buffer.Special != 0 {
			continue
		}
		lineno := 0
		for lx := src.Top.Next(); lx.IsText(); lx = lx.Next() {
			lineno++
			if !p.MatchLine(lx.Buff) {
				continue
			}
			text := fmt.Sprintf("%s:%d: ", src.Fname, lineno)
			hit := b.InsertBefore(b.Bottom, append([]byte(text), lx.Buff...))
			if hit == nil {
				return errors.ErrNoAddLine
			}
			lp = hit
		}
	}

	// footer
	b.InsertBefore(b.Bottom, []byte("\n"))

	b.GoBottom()
	return nil
}
