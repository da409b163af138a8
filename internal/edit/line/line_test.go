package line

import (
	"bytes"
	"testing"
)

func checkInvariant(t *testing.T, top, bottom *Line) {
	t.Helper()
	if top.Prev() != nil {
		t.Error("TOP must have no predecessor")
	}
	if bottom.Next() != nil {
		t.Error("BOTTOM must have no successor")
	}
	for l := top.Next(); l != bottom; l = l.Next() {
		if l == nil {
			t.Fatal("chain broken before BOTTOM")
		}
		if l.Len() < 1 || l.Buff[l.Len()-1] != '\n' {
			t.Errorf("line %q violates the newline invariant", l.Buff)
		}
		if l.Next().Prev() != l {
			t.Error("next/prev links inconsistent")
		}
	}
}

func TestNewList(t *testing.T) {
	top, bottom := NewList()
	if top.Next() != bottom || bottom.Prev() != top {
		t.Fatal("empty list must link TOP to BOTTOM")
	}
	if top.IsText() || bottom.IsText() {
		t.Error("sentinels must not be text lines")
	}
	checkInvariant(t, top, bottom)
}

func TestAppendInsertRemove(t *testing.T) {
	top, bottom := NewList()

	a := Append(top, []byte("a\n"))
	b := Append(a, []byte("b\n"))
	c := InsertBefore(bottom, []byte("c\n"))
	if a == nil || b == nil || c == nil {
		t.Fatal("append/insert failed")
	}
	checkInvariant(t, top, bottom)

	var got []string
	for l := top.Next(); l.IsText(); l = l.Next() {
		got = append(got, string(l.Buff))
	}
	want := []string{"a\n", "b\n", "c\n"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}

	// missing newline is re-established
	d := Append(top, []byte("d"))
	if !bytes.Equal(d.Buff, []byte("d\n")) {
		t.Errorf("Append without newline = %q", d.Buff)
	}
	Remove(d)

	next := Remove(b)
	if next != c {
		t.Error("Remove must return the successor")
	}
	checkInvariant(t, top, bottom)

	// removing the last real line returns the BOTTOM sentinel
	next = Remove(c)
	if next != bottom {
		t.Error("Remove of the tail must return BOTTOM")
	}

	if Remove(top) != nil || Remove(bottom) != nil {
		t.Error("sentinels must never be removed")
	}
}

func TestMove(t *testing.T) {
	top, bottom := NewList()
	a := Append(top, []byte("a\n"))
	b := Append(a, []byte("b\n"))
	c := Append(b, []byte("c\n"))

	// adjacent move is a no-op
	Move(b, a)
	if a.Next() != b || b.Next() != c {
		t.Fatal("adjacent move must not change the order")
	}

	Move(a, c)
	var got []string
	for l := top.Next(); l.IsText(); l = l.Next() {
		got = append(got, string(l.Buff))
	}
	want := []string{"b\n", "c\n", "a\n"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("after move line %d = %q, want %q", i, got[i], want[i])
		}
	}
	checkInvariant(t, top, bottom)

	MoveBefore(a, b)
	if top.Next() != a {
		t.Error("MoveBefore must relink in front of the target")
	}
	checkInvariant(t, top, bottom)
}

func TestSplice(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		from   int
		length int
		repl   string
		want   string
	}{
		{"insert_front", "world\n", 0, 0, "hello ", "hello world\n"},
		{"delete_middle", "hello world\n", 5, 6, "", "hello\n"},
		{"replace", "abc\n", 1, 1, "XY", "aXYc\n"},
		{"strip_newline_refixed", "abc\n", 0, 4, "xyz", "xyz\n"},
		{"delete_all", "abc\n", 0, 4, "", "\n"},
		{"append_at_end", "ab\n", 2, 0, "c", "abc\n"},
		{"length_clamped", "ab\n", 1, 100, "", "a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, _ := NewList()
			l := Append(top, []byte(tt.start))
			if err := l.Splice(tt.from, tt.length, []byte(tt.repl)); err != nil {
				t.Fatalf("Splice: %v", err)
			}
			if string(l.Buff) != tt.want {
				t.Errorf("Splice = %q, want %q", l.Buff, tt.want)
			}
		})
	}
}

func TestSpliceErrors(t *testing.T) {
	top, bottom := NewList()
	if err := top.Splice(0, 0, []byte("x")); err == nil {
		t.Error("splicing TOP must fail")
	}
	if err := bottom.Splice(0, 0, []byte("x")); err == nil {
		t.Error("splicing BOTTOM must fail")
	}

	l := Append(top, []byte("abc\n"))
	if err := l.Splice(100, 0, []byte("x")); err == nil {
		t.Error("out-of-range from must fail")
	}
	if string(l.Buff) != "abc\n" {
		t.Error("line must stay unchanged after a failed splice")
	}
}

func TestBookmarkBits(t *testing.T) {
	top, _ := NewList()
	l := Append(top, []byte("x\n"))

	if l.Bookmark() != 0 {
		t.Error("fresh line must carry no bookmark")
	}
	l.SetBookmark(7)
	if l.Bookmark() != 7 {
		t.Errorf("Bookmark() = %d, want 7", l.Bookmark())
	}
	l.Flags |= Change | Select
	if l.Bookmark() != 7 {
		t.Error("bookmark must survive other flag changes")
	}
	l.ClearBookmark()
	if l.Bookmark() != 0 {
		t.Error("ClearBookmark failed")
	}
	if l.Flags&(Change|Select) == 0 {
		t.Error("ClearBookmark must not clear other flags")
	}
}

func TestHideMask(t *testing.T) {
	seen := map[Flag]bool{}
	for level := 1; level <= 7; level++ {
		m := HideMask(level)
		if m == 0 {
			t.Errorf("level %d must have a hide bit", level)
		}
		if m&HideMaskAll != m {
			t.Errorf("level %d mask outside HideMaskAll", level)
		}
		if seen[m] {
			t.Errorf("level %d mask not unique", level)
		}
		seen[m] = true
	}
	if HideMask(0) != 0 || HideMask(8) != 0 {
		t.Error("levels outside 1..7 must map to zero")
	}
}
