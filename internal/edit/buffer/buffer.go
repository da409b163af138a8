// Package buffer implements the per-file buffer (line list, cursor,
// filter and search state, optional child pipe) and the fixed-size
// ring of open buffers.
package buffer

import (
	"os"
	"os/exec"

	"github.com/tved/tved/internal/edit/line"
	"github.com/tved/tved/internal/regex"
)

// Flag is the per-buffer bitset. The bits 8..14 mirror the line hide
// bits: a line is hidden iff its hide bit AND the buffer's active
// filter bit of the current level are both set.
type Flag uint32

const (
	Open    Flag = 1 << 0
	RO      Flag = 1 << 1
	Change  Flag = 1 << 2
	Scratch Flag = 1 << 3
	// Special marks buffers without on-disk backing (*sh* and friends).
	Special Flag = 1 << 4
	Hidden  Flag = 1 << 5
	// ExtCh marks a buffer whose file changed on disk.
	ExtCh Flag = 1 << 6
	// Cmd means the command line has focus instead of the text area.
	Cmd Flag = 1 << 7

	// FilterMaskAll covers the active-filter bits of all 7 levels
	// (same positions as the line hide bits).
	FilterMaskAll Flag = 0x7f00

	NoEdit    Flag = 1 << 15
	NoAddLine Flag = 1 << 16
	NoDelLine Flag = 1 << 17
	// Tag2/Tag3 mark active search / interactive replace; Tag4 an
	// anchored search pattern; Tag5/Tag6 the highlight regex.
	Tag2 Flag = 1 << 18
	Tag3 Flag = 1 << 19
	Tag4 Flag = 1 << 20
	Tag5 Flag = 1 << 21
	Tag6 Flag = 1 << 22
	// Interact marks a buffer talking to a PTY child.
	Interact Flag = 1 << 23

	// ChMask are the bits that forbid content changes.
	ChMask = RO | NoEdit
)

// FilterMask returns the active-filter bit of a level (1..7).
func FilterMask(level int) Flag {
	return Flag(line.HideMask(level))
}

// PipeState carries the child process plumbing of a buffer. The logic
// lives in the pipe package; the buffer only owns the resources.
type PipeState struct {
	// Cmd is the running child, nil when there is none.
	Cmd *exec.Cmd
	// Input is the parent-side writer to the child's stdin.
	Input *os.File
	// Output is the parent-side reader of the child's stdout.
	Output *os.File
	// OutFd is the non-blocking raw descriptor of Output.
	OutFd int
	// Opts are the pipe option bits.
	Opts int
	// ReadBuff is the line reassembly buffer, Next the carry index.
	ReadBuff []byte
	Next     int
	// Zombie counts consecutive empty PTY reads.
	Zombie int
	// LastInputLength supports prompt recognition in interactive mode.
	LastInputLength int
	// CloseRemote tears down a remote (ssh) child, when set.
	CloseRemote func() error
}

// Running tells whether the buffer has a live child pipe.
func (p *PipeState) Running() bool {
	return p.Output != nil || p.CloseRemote != nil
}

// Buffer is one ring slot: an open file or scratch buffer.
type Buffer struct {
	// Index is this buffer's ring slot.
	Index int

	// Identity
	Fname    string
	Fpath    string
	Basename string
	Dirname  string
	Stat     os.FileInfo
	Ftype    Ftype

	Flags Flag

	// Line list
	Top      *line.Line
	Bottom   *line.Line
	NumLines int

	// Position
	Curr   *line.Line
	Lineno int // 1-based; TOP=0, BOTTOM=NumLines+1
	Lncol  int // byte column, may temporarily exceed llen-1
	Curpos int // visual column after tab expansion
	Focus  int // row within the visible area
	Lnoff  int // horizontal scroll offset

	// Filter
	FLevel int // current filter level, 1..7

	// Search state
	SearchRe    regex.Pattern
	SearchExpr  string
	ReplaceExpr string
	HighlightRe regex.Pattern

	// Pipe state and the slot to jump back to
	Pipe   PipeState
	Origin int

	// OnLineRemove is called before a line leaves the list, so the
	// bookmark table can forget it.
	OnLineRemove func(*line.Line)
}

// New creates an empty open buffer for a ring slot.
func New(index int) *Buffer {
	b := &Buffer{
		Index:  index,
		Flags:  Open | Cmd | Scratch | FilterMaskAll,
		FLevel: 1,
		Origin: -1,
	}
	b.Top, b.Bottom = line.NewList()
	b.Curr = b.Top
	return b
}

// HiddenLine tells whether a line is hidden under the buffer's current
// filter level.
func (b *Buffer) HiddenLine(l *line.Line) bool {
	return uint32(l.Flags)&uint32(b.Flags)&uint32(line.HideMask(b.FLevel)) != 0
}

// NextLp advances to the next visible line (or BOTTOM) and returns it
// together with the number of list steps taken.
func (b *Buffer) NextLp(l *line.Line) (*line.Line, int) {
	count := 0
	for {
		if l.Next() == nil {
			return l, count
		}
		l = l.Next()
		count++
		if !l.IsText() || !b.HiddenLine(l) {
			return l, count
		}
	}
}

// PrevLp retreats to the previous visible line (or TOP) and returns it
// together with the number of list steps taken.
func (b *Buffer) PrevLp(l *line.Line) (*line.Line, int) {
	count := 0
	for {
		if l.Prev() == nil {
			return l, count
		}
		l = l.Prev()
		count++
		if !l.IsText() || !b.HiddenLine(l) {
			return l, count
		}
	}
}

// GotoLineno returns the line with the given 1-based number, walking
// from TOP, BOTTOM or the current line, whichever is nearest. It
// returns TOP for 0, BOTTOM for NumLines+1 and nil otherwise.
func (b *Buffer) GotoLineno(n int) *line.Line {
	switch {
	case n == 0:
		return b.Top
	case n == b.NumLines+1:
		return b.Bottom
	case n < 0 || n > b.NumLines:
		return nil
	}

	fromTop := n
	fromBottom := b.NumLines + 1 - n
	fromCurr := n - b.Lineno
	absCurr := fromCurr
	if absCurr < 0 {
		absCurr = -absCurr
	}

	if b.Curr != nil && absCurr <= fromTop && absCurr <= fromBottom {
		l := b.Curr
		for ; fromCurr > 0; fromCurr-- {
			l = l.Next()
		}
		for ; fromCurr < 0; fromCurr++ {
			l = l.Prev()
		}
		return l
	}
	if fromTop <= fromBottom {
		l := b.Top
		for i := 0; i < fromTop; i++ {
			l = l.Next()
		}
		return l
	}
	l := b.Bottom
	for i := 0; i < fromBottom; i++ {
		l = l.Prev()
	}
	return l
}

// Append inserts a new line after the given one and counts it.
func (b *Buffer) Append(after *line.Line, text []byte) *line.Line {
	l := line.Append(after, text)
	if l != nil {
		b.NumLines++
	}
	return l
}

// InsertBefore inserts a new line before the given one and counts it.
func (b *Buffer) InsertBefore(at *line.Line, text []byte) *line.Line {
	l := line.InsertBefore(at, text)
	if l != nil {
		b.NumLines++
	}
	return l
}

// RemoveLine unlinks a line, clears its bookmark via the hook and
// returns the successor. For the last real line that is the BOTTOM
// sentinel; the predecessor is never returned.
func (b *Buffer) RemoveLine(l *line.Line) *line.Line {
	if !l.IsText() {
		return nil
	}
	if b.OnLineRemove != nil && l.Bookmark() != 0 {
		b.OnLineRemove(l)
	}
	next := line.Remove(l)
	b.NumLines--
	return next
}

// SetPosition moves the cursor to a line with a known line number.
func (b *Buffer) SetPosition(lineno int, l *line.Line) {
	b.Curr = l
	b.Lineno = lineno
}

// GoTop positions the cursor on the TOP sentinel.
func (b *Buffer) GoTop() {
	b.Curr = b.Top
	b.Lineno = 0
	b.Lncol = 0
	b.Curpos = 0
	b.Lnoff = 0
}

// GoBottom positions the cursor on the last text line.
func (b *Buffer) GoBottom() {
	b.Curr = b.Bottom.Prev()
	b.Lineno = b.NumLines
	if !b.Curr.IsText() {
		b.Curr = b.Bottom
		b.Lineno = b.NumLines + 1
	}
}

// PullCurrentToBottom keeps the cursor on the growing tail of a pipe
// target buffer.
func (b *Buffer) PullCurrentToBottom() {
	b.Curr = b.Bottom.Prev()
	b.Lineno = b.NumLines
	b.Curr.Flags &^= line.HideMask(b.FLevel)
}
