// Package diffload mutates a buffer in-place from the ed-script-like
// output of diff, preserving line attributes and bookmarks.
package diffload

import (
	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/line"
	"github.com/tved/tved/internal/errors"
	"github.com/tved/tved/internal/io/logger"
)

// ParseHeader parses a diff action header of the form
// "N[,M]{a|c|d}N[,M]". The result holds the left range, the action
// byte and the right range.
func ParseHeader(s []byte) (ra [5]int, ok bool) {
	i := 0
	num := func() (int, bool) {
		start := i
		v := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			v = v*10 + int(s[i]-'0')
			i++
		}
		return v, i > start
	}

	var got bool
	ra[0], got = num()
	if !got {
		return ra, false
	}
	ra[1] = ra[0]
	if i < len(s) && s[i] == ',' {
		i++
		ra[1], got = num()
		if !got {
			return ra, false
		}
	}

	if i >= len(s) || (s[i] != 'a' && s[i] != 'c' && s[i] != 'd') {
		return ra, false
	}
	ra[2] = int(s[i])
	i++

	ra[3], got = num()
	if !got {
		return ra, false
	}
	ra[4] = ra[3]
	if i < len(s) && s[i] == ',' {
		i++
		ra[4], got = num()
		if !got {
			return ra, false
		}
	}
	return ra, true
}

// Machine applies one diff stream line by line onto a buffer. The
// caller positions the buffer at TOP before the first Feed and reads
// OrigLineno back when the stream ends.
type Machine struct {
	b       *buffer.Buffer
	action  byte
	cntTo   int
	cntFrom int

	// OrigLineno tracks the caller's saved cursor line through the
	// additions and deletions that happen before it.
	OrigLineno int
	// Actions counts the processed diff headers.
	Actions int
}

// New creates a machine over a buffer whose cursor line number to
// preserve is origLineno.
func New(b *buffer.Buffer, origLineno int) *Machine {
	return &Machine{b: b, action: '.', OrigLineno: origLineno}
}

// Feed processes one line of diff output. Errors leave the buffer
// with the changes applied so far.
func (m *Machine) Feed(rb []byte) error {
	if n := len(rb); n > 0 && rb[n-1] == '\n' {
		rb = rb[:n-1]
	}
	if len(rb) == 0 && m.action == '.' {
		return nil
	}

	switch m.action {
	case '.':
		m.Actions++
		ra, ok := ParseHeader(rb)
		if !ok || len(rb) < 3 {
			return errors.ErrDiffSyntax
		}
		m.action = byte(ra[2])
		target := ra[3]
		m.cntTo = ra[4] - ra[3] + 1
		m.cntFrom = ra[1] - ra[0] + 1

		lp := m.b.GotoLineno(target)
		if lp == nil {
			logger.Debug("diffload", "cannot jump to line", target)
			return errors.ErrDiffSyntax
		}
		m.b.SetPosition(target, lp)

		switch {
		case m.action == 'a' && target < m.OrigLineno:
			m.OrigLineno += m.cntTo
		case m.action == 'd' && target < m.OrigLineno:
			m.OrigLineno -= m.cntFrom
		case m.action == 'c' && target < m.OrigLineno:
			m.OrigLineno += m.cntTo - m.cntFrom
		}

	case 'a':
		if len(rb) < 1 || rb[0] != '>' || m.cntTo <= 0 {
			return errors.ErrDiffSyntax
		}
		lp := m.b.InsertBefore(m.b.Curr, addedText(rb))
		if lp == nil {
			return errors.ErrDiffSyntax
		}
		m.b.Lineno++
		// diff says these match disk now
		lp.Flags &^= line.Change
		if m.cntTo--; m.cntTo == 0 {
			m.action = '.'
		}

	case 'd':
		if len(rb) < 1 || rb[0] != '<' || m.cntFrom <= 0 {
			return errors.ErrDiffSyntax
		}
		lp := m.b.Curr.Next()
		if !lp.IsText() {
			logger.Debug("diffload", "delete line failed")
			return errors.ErrDiffSyntax
		}
		m.b.RemoveLine(lp)
		if m.cntFrom--; m.cntFrom == 0 {
			m.action = '.'
		}

	case 'c':
		switch {
		case len(rb) > 0 && rb[0] == '<' && m.cntFrom > 0:
			lp := m.b.Curr
			if !lp.IsText() {
				return errors.ErrDiffSyntax
			}
			m.b.Curr = m.b.RemoveLine(lp)
			m.cntFrom--
		case len(rb) > 0 && rb[0] == '>' && m.cntTo > 0:
			lp := m.b.InsertBefore(m.b.Curr, addedText(rb))
			if lp == nil {
				return errors.ErrDiffSyntax
			}
			m.b.Lineno++
			lp.Flags &^= line.Change
			m.cntTo--
		case len(rb) > 0 && rb[0] == '-' && m.cntFrom == 0:
			// separator
		default:
			return errors.ErrDiffSyntax
		}
		if m.cntFrom == 0 && m.cntTo == 0 {
			m.action = '.'
		}
	}

	return nil
}

// addedText cuts the "> " prefix off an addition line.
func addedText(rb []byte) []byte {
	if len(rb) >= 2 {
		return rb[2:]
	}
	return nil
}
