// Package ops implements the in-line edit primitives and the
// tab-aware cursor model on top of the line list.
package ops

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/tved/tved/internal/config"
	"github.com/tved/tved/internal/constants"
	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/line"
)

func tabSize() int {
	if config.Common != nil && config.Common.TabSize > 0 {
		return config.Common.TabSize
	}
	return constants.DefaultTabSize
}

// GetPos returns the visual column of a byte column after tab
// expansion. A byte column past the end of line extrapolates with
// single-width cells.
func GetPos(l *line.Line, lncol int) int {
	if l == nil {
		return 0
	}
	ts := tabSize()
	body := l.Buff
	if n := len(body); n > 0 && body[n-1] == '\n' {
		body = body[:n-1]
	}

	pos := 0
	i := 0
	for i < len(body) && i < lncol {
		if body[i] == '\t' {
			pos += ts - pos%ts
			i++
			continue
		}
		r, size := utf8.DecodeRune(body[i:])
		pos += runewidth.RuneWidth(r)
		i += size
	}
	if lncol > len(body) {
		pos += lncol - len(body)
	}
	return pos
}

// GetCol returns the byte column whose visual position covers the
// given visual column; used after vertical moves to re-anchor the
// cursor.
func GetCol(l *line.Line, curpos int) int {
	if l == nil {
		return 0
	}
	ts := tabSize()
	body := l.Buff
	if n := len(body); n > 0 && body[n-1] == '\n' {
		body = body[:n-1]
	}

	pos := 0
	i := 0
	for i < len(body) {
		var next int
		var size int
		if body[i] == '\t' {
			next = pos + ts - pos%ts
			size = 1
		} else {
			r, s := utf8.DecodeRune(body[i:])
			next = pos + runewidth.RuneWidth(r)
			size = s
		}
		if next > curpos {
			return i
		}
		pos = next
		i += size
	}
	return i
}

// UpdateCurpos recomputes the visual column from the byte column.
func UpdateCurpos(b *buffer.Buffer) {
	b.Curpos = GetPos(b.Curr, b.Lncol)
}

// GoLeft moves the cursor one byte column left; over a TAB the visual
// column snaps back to the tab stop boundary.
func GoLeft(b *buffer.Buffer) {
	if b.Lncol > 0 {
		b.Lncol--
		UpdateCurpos(b)
	}
}

// GoRight moves the cursor one byte column right; the cursor may move
// past the end of the line.
func GoRight(b *buffer.Buffer) {
	b.Lncol++
	UpdateCurpos(b)
}

// GoUp moves to the previous visible line, re-anchoring the byte
// column to the visual column.
func GoUp(b *buffer.Buffer) {
	lx, cnt := b.PrevLp(b.Curr)
	if !lx.IsText() && lx.Flags&line.Top != 0 {
		return
	}
	b.Curr = lx
	b.Lineno -= cnt
	b.Lncol = GetCol(b.Curr, b.Curpos)
}

// GoDown moves to the next visible line, re-anchoring the byte column.
func GoDown(b *buffer.Buffer) {
	lx, cnt := b.NextLp(b.Curr)
	if !lx.IsText() {
		return
	}
	b.Curr = lx
	b.Lineno += cnt
	b.Lncol = GetCol(b.Curr, b.Curpos)
}

// GoHome moves the cursor to column zero.
func GoHome(b *buffer.Buffer) {
	b.Lncol = 0
	b.Curpos = 0
	b.Lnoff = 0
}

// GoSmartHome moves the cursor to the first non-blank column, or to
// zero when already there.
func GoSmartHome(b *buffer.Buffer) {
	col := 0
	for col < b.Curr.Len()-1 && (b.Curr.Buff[col] == ' ' || b.Curr.Buff[col] == '\t') {
		col++
	}
	if b.Lncol == col {
		col = 0
	}
	b.Lncol = col
	UpdateCurpos(b)
}

// GoEnd moves the cursor to the end of the line.
func GoEnd(b *buffer.Buffer) {
	if b.Curr.Len() > 0 {
		b.Lncol = b.Curr.Len() - 1
	} else {
		b.Lncol = 0
	}
	UpdateCurpos(b)
}

// CountPrefixBlanks returns the length of the leading blank prefix.
func CountPrefixBlanks(buff []byte) int {
	n := 0
	for n < len(buff) && (buff[n] == ' ' || buff[n] == '\t') {
		n++
	}
	return n
}

func isWordByte(ch byte) bool {
	return ch == '_' || (ch >= '0' && ch <= '9') ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// SelectWord returns the word under the byte column, empty when the
// cursor is not in a word.
func SelectWord(l *line.Line, lncol int) string {
	if l == nil || !l.IsText() {
		return ""
	}
	body := l.Buff
	if n := len(body); n > 0 && body[n-1] == '\n' {
		body = body[:n-1]
	}
	if lncol >= len(body) || !isWordByte(body[lncol]) {
		return ""
	}
	beg := lncol
	for beg > 0 && isWordByte(body[beg-1]) {
		beg--
	}
	end := lncol
	for end < len(body) && isWordByte(body[end]) {
		end++
	}
	return string(body[beg:end])
}

// PrevNonblank moves the cursor up to the previous non-blank line.
func PrevNonblank(b *buffer.Buffer) {
	lx, cnt := b.PrevLp(b.Curr)
	total := cnt
	for lx.IsText() && blankLine(lx) {
		lx, cnt = b.PrevLp(lx)
		total += cnt
	}
	if lx.IsText() {
		b.Curr = lx
		b.Lineno -= total
		b.Lncol = GetCol(b.Curr, b.Curpos)
	}
}

// NextNonblank moves the cursor down to the next non-blank line.
func NextNonblank(b *buffer.Buffer) {
	lx, cnt := b.NextLp(b.Curr)
	total := cnt
	for lx.IsText() && blankLine(lx) {
		lx, cnt = b.NextLp(lx)
		total += cnt
	}
	if lx.IsText() {
		b.Curr = lx
		b.Lineno += total
		b.Lncol = GetCol(b.Curr, b.Curpos)
	}
}

func blankLine(l *line.Line) bool {
	return CountPrefixBlanks(l.Buff) >= l.Len()-1
}
