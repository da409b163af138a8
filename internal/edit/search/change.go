package search

import (
	"strings"

	"github.com/tved/tved/internal/constants"
	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/line"
	"github.com/tved/tved/internal/edit/ops"
	"github.com/tved/tved/internal/errors"
	"github.com/tved/tved/internal/io/logger"
	"github.com/tved/tved/internal/regex"
)

// ReplaceQuestion is the prompt of the interactive change driver.
const ReplaceQuestion = "replace? yes/no/rest/quit"

// ChangeState carries one interactive search-and-replace session.
type ChangeState struct {
	lx     *line.Line
	lineno int
	lncol  int
	// pmatch holds the submatch index pairs relative to lncol.
	pmatch []int
	// repBuff is the accumulated replacement; rflag is non-zero while
	// the replacement is not known to be constant.
	repBuff []byte
	rflag   int
	// Count is the number of applied replacements.
	Count int
}

// parseChangeArgs splits "/from/to/[g]" into its parts.
func parseChangeArgs(argz string) (expr, repl string, global, ok bool) {
	if argz == "" {
		return "", "", false, false
	}
	beg := argz[0]
	if beg != '/' && beg != '\'' && beg != '"' && beg != '!' {
		return "", "", false, false
	}
	rest := argz[1:]
	i := strings.IndexByte(rest, beg)
	if i < 0 {
		return "", "", false, false
	}
	expr = rest[:i]
	rest = rest[i+1:]
	j := strings.IndexByte(rest, beg)
	if j < 0 {
		return expr, rest, false, true
	}
	repl = rest[:j]
	global = strings.HasPrefix(rest[j+1:], "g")
	return expr, repl, global, true
}

// Change starts a search and replace session like "/from/to/[g]".
// Without the g flag the returned state drives the interactive
// y/n/r/q prompt loop; with it every match from the cursor to the end
// of the buffer is changed quietly and the position restored.
func Change(b *buffer.Buffer, argz string) (*ChangeState, error) {
	Reset(b)

	if argz == "" {
		return nil, nil
	}

	expr, repl, global, ok := parseChangeArgs(argz)
	if !ok {
		logger.Tracemsg("failure: missing pattern delimiters")
		return nil, errors.ErrBadDelimiter
	}
	if expr == "" {
		return nil, nil
	}

	exprNew := regex.Shorthands(expr)
	replNew := regex.Shorthands(repl)

	p, err := regex.CompileExpanded(exprNew)
	if err != nil {
		logger.Tracemsg("%s", err.Error())
		return nil, err
	}

	b.SearchRe = p
	b.Flags |= buffer.Tag2 | buffer.Tag3
	if p.Anchored() {
		b.Flags |= buffer.Tag4
	} else {
		b.Flags &^= buffer.Tag4
	}
	b.SearchExpr = expr
	b.ReplaceExpr = replNew

	var gLx *line.Line
	var gLineno, gLncol int
	if global {
		gLx = b.Curr
		gLineno = b.Lineno
		gLncol = b.Lncol
	}

	cs := newChangeState(b)
	if !cs.searchForReplace(b) {
		Reset(b)
		logger.Tracemsg("change: no match")
		return nil, nil
	}
	cs.showMatch(b)
	b.Flags &^= buffer.Cmd

	if global {
		logger.TraceDrop()
		cs.Respond(b, 'r')
		// and to restore
		b.Curr = gLx
		b.Lineno = gLineno
		b.Lncol = gLncol
		ops.UpdateCurpos(b)
		return nil, nil
	}

	return cs, nil
}

func newChangeState(b *buffer.Buffer) *ChangeState {
	cs := &ChangeState{
		lx:      b.Curr,
		lineno:  b.Lineno,
		lncol:   b.Lncol,
		repBuff: make([]byte, 0, constants.RepAllocSize(0)),
		rflag:   0xff, // initially the replacement isn't known constant
	}
	if b.Curr.Flags&line.Top != 0 {
		lx, cnt := b.NextLp(b.Curr)
		cs.lx = lx
		cs.lineno += cnt
		cs.lncol = 0
	}
	return cs
}

// searchForReplace finds the next match strictly for change.
func (cs *ChangeState) searchForReplace(b *buffer.Buffer) bool {
	anchored := b.Flags&buffer.Tag4 != 0

	for cs.lx.Flags&line.Bottom == 0 {
		if cs.lncol < cs.lx.Len() {
			loc := b.SearchRe.FindLine(cs.lx.Buff, cs.lncol)
			if loc != nil {
				so, eo := loc[0], loc[1]
				if anchored && so == eo {
					if cs.lncol+so == 0 || cs.lncol+eo == cs.lx.Len()-1 {
						cs.pmatch = loc
						return true
					}
				} else if so < eo {
					cs.pmatch = loc
					return true
				}
			}
		}
		// not found, yet
		var cnt int
		cs.lx, cnt = b.NextLp(cs.lx)
		cs.lineno += cnt
		cs.lncol = 0 // column for the next line
	}
	return cs.lx.IsText()
}

// showMatch pulls the buffer position onto the current match.
func (cs *ChangeState) showMatch(b *buffer.Buffer) {
	b.SetPosition(cs.lineno, cs.lx)
	b.Lncol = cs.lncol + cs.pmatch[1]
	ops.UpdateCurpos(b)
	logger.Tracemsg(ReplaceQuestion)
}

// subMatch returns one captured group of the current match, relative
// to the line buffer.
func (cs *ChangeState) subMatch(nsub int) []byte {
	if 2*nsub+1 >= len(cs.pmatch) {
		return nil
	}
	so, eo := cs.pmatch[2*nsub], cs.pmatch[2*nsub+1]
	if so < 0 || eo < so {
		return nil
	}
	return cs.lx.Buff[cs.lncol+so : cs.lncol+eo]
}

// accumulate builds the replacement from the replace expression:
// \0..\9 insert capture groups, & the whole match, \\ and \& the
// literals, any other escape is kept as-is. Embedded newlines inside
// captured substrings are skipped. When no backreference was used the
// replacement is constant and later calls are skipped.
func (cs *ChangeState) accumulate(b *buffer.Buffer) {
	repl := b.ReplaceExpr
	out := cs.repBuff[:0]
	nsub := 0
	cs.rflag = 0

	appendSub := func(src []byte, fromSub int) {
		for _, ch := range src {
			if ch != '\n' {
				out = append(out, ch)
			}
		}
		if fromSub > 0 {
			cs.rflag |= 1
		} else {
			cs.rflag |= 2
		}
	}

	for i := 0; i < len(repl); i++ {
		ch := repl[i]
		if ch == '\\' {
			i++
			if i >= len(repl) {
				out = append(out, '\\')
				break
			}
			next := repl[i]
			switch {
			case next >= '0' && next <= '9':
				// replace \N with the Nth submatch
				nsub = int(next - '0')
				if src := cs.subMatch(nsub); len(src) > 0 {
					appendSub(src, nsub)
				}
			case next == '&' || next == '\\':
				out = append(out, next)
			default:
				// all other cases
				out = append(out, '\\', next)
			}
			continue
		}
		if ch == '&' {
			if src := cs.subMatch(0); len(src) > 0 {
				appendSub(src, 0)
			}
			continue
		}
		out = append(out, ch)
	}

	cs.repBuff = out
}

// doReplacement splices the accumulated replacement over the match.
func (cs *ChangeState) doReplacement(b *buffer.Buffer) error {
	so, eo := cs.pmatch[0], cs.pmatch[1]
	if err := cs.lx.Splice(cs.lncol+so, eo-so, cs.repBuff); err != nil {
		return err
	}
	cs.lx.Flags |= line.Change
	b.Flags |= buffer.Change
	return nil
}

// Respond feeds one response key into the change driver: y applies
// and advances, n skips, r applies all remaining without prompting,
// q aborts. It reports whether the session finished.
func (cs *ChangeState) Respond(b *buffer.Buffer, ch byte) bool {
	anchStep := 0
	if b.Flags&buffer.Tag4 != 0 {
		anchStep = 1
	}

	finish := func() bool {
		Reset(b)
		logger.Tracemsg("change count %d", cs.Count)
		return true
	}

	switch ch {
	case 'y', 'Y':
		if cs.rflag != 0 {
			cs.accumulate(b)
		}
		if cs.doReplacement(b) != nil {
			logger.Tracemsg("change aborted due to allocation error")
			return finish()
		}
		cs.Count++
		cs.lncol += cs.pmatch[0] + len(cs.repBuff) + anchStep
		b.Lncol = cs.lncol
		ops.UpdateCurpos(b)

	case 'n', 'N':
		cs.lncol += cs.pmatch[1] + anchStep
		b.Lncol = cs.lncol
		ops.UpdateCurpos(b)

	case 'r', 'R':
		for cs.lx.IsText() {
			if cs.rflag != 0 {
				cs.accumulate(b)
			}
			if cs.doReplacement(b) != nil {
				break
			}
			cs.Count++
			cs.lncol += cs.pmatch[0] + len(cs.repBuff) + anchStep
			if !cs.searchForReplace(b) {
				break
			}
		}
		// original byte column should be re-anchored
		b.Lncol = ops.GetCol(b.Curr, b.Curpos)
		return finish()

	default: // q, Q, ESC
		return finish()
	}

	if !cs.searchForReplace(b) {
		return finish()
	}
	cs.showMatch(b)
	return false
}
