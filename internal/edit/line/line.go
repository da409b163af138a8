// Package line implements the doubly linked line list bounded by the
// TOP and BOTTOM sentinels, and the low-level byte splicing every edit
// goes through.
package line

// Line is one mutable text line. For every non-sentinel line the
// buffer is at least one byte long and ends with '\n'. Sentinels carry
// fixed placeholder text and are never edited.
type Line struct {
	prev, next *Line
	Buff       []byte
	Flags      Flag
}

// Next returns the successor line, nil past BOTTOM.
func (l *Line) Next() *Line {
	return l.next
}

// Prev returns the predecessor line, nil before TOP.
func (l *Line) Prev() *Line {
	return l.prev
}

// Len returns the line length in bytes including the trailing newline.
func (l *Line) Len() int {
	return len(l.Buff)
}

// IsText tells whether this is a real text line, not a sentinel.
func (l *Line) IsText() bool {
	return l != nil && l.Flags&(Top|Bottom) == 0
}

// NewList creates an empty list: the TOP and BOTTOM sentinels linked
// to each other. TOP has no predecessor and BOTTOM no successor.
func NewList() (top, bottom *Line) {
	top = &Line{Buff: []byte("<top>\n"), Flags: Top}
	bottom = &Line{Buff: []byte("<bottom>\n"), Flags: Bottom}
	top.next = bottom
	bottom.prev = top
	return top, bottom
}

// newNode copies text into a fresh line, re-establishing the trailing
// newline when the input lacks one.
func newNode(text []byte) *Line {
	buff := make([]byte, len(text), cap4(len(text)+1))
	copy(buff, text)
	if n := len(buff); n == 0 || buff[n-1] != '\n' {
		buff = append(buff, '\n')
	}
	return &Line{Buff: buff}
}

// Append inserts a new line with the given text immediately after a
// given line. Appending after TOP prepends to the list. Appending
// after BOTTOM is refused.
func Append(after *Line, text []byte) *Line {
	if after == nil || after.Flags&Bottom != 0 {
		return nil
	}
	l := newNode(text)
	l.next = after.next
	l.prev = after
	after.next = l
	if l.next != nil {
		l.next.prev = l
	}
	return l
}

// InsertBefore inserts a new line with the given text immediately
// before a given line. Inserting before TOP is refused.
func InsertBefore(at *Line, text []byte) *Line {
	if at == nil || at.Flags&Top != 0 {
		return nil
	}
	l := newNode(text)
	l.prev = at.prev
	l.next = at
	at.prev = l
	if l.prev != nil {
		l.prev.next = l
	}
	return l
}

// Remove unlinks a line and returns the successor, or the predecessor
// when there is no successor. Sentinels are never removed.
func Remove(l *Line) *Line {
	if l == nil || !l.IsText() {
		return nil
	}
	next, prev := l.next, l.prev
	if prev != nil {
		prev.next = next
	}
	if next != nil {
		next.prev = prev
	}
	l.prev, l.next, l.Buff = nil, nil, nil
	if next != nil {
		return next
	}
	return prev
}

// Move unlinks src and relinks it immediately after target. It copes
// with src adjacent to target and allocates nothing.
func Move(src, target *Line) *Line {
	if src == nil || target == nil || src == target || !src.IsText() {
		return src
	}
	if target.next == src {
		return src
	}
	// unlink
	src.prev.next = src.next
	src.next.prev = src.prev
	// relink after target
	src.next = target.next
	src.prev = target
	target.next = src
	if src.next != nil {
		src.next.prev = src
	}
	return src
}

// MoveBefore unlinks src and relinks it immediately before target.
func MoveBefore(src, target *Line) *Line {
	if src == nil || target == nil || src == target || !src.IsText() {
		return src
	}
	if target.prev == src {
		return src
	}
	src.prev.next = src.next
	src.next.prev = src.prev
	src.prev = target.prev
	src.next = target
	target.prev = src
	if src.prev != nil {
		src.prev.next = src
	}
	return src
}
