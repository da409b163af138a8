package diffload

import (
	"strings"
	"testing"

	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/line"
)

func newBuf(texts ...string) *buffer.Buffer {
	b := buffer.New(0)
	lp := b.Top
	for _, s := range texts {
		lp = b.Append(lp, []byte(s))
	}
	b.Curr = b.Top.Next()
	b.Lineno = 1
	return b
}

func lines(b *buffer.Buffer) []string {
	var out []string
	for lp := b.Top.Next(); lp.IsText(); lp = lp.Next() {
		out = append(out, string(lp.Buff))
	}
	return out
}

func feedAll(t *testing.T, m *Machine, script string) error {
	t.Helper()
	for _, ln := range strings.Split(script, "\n") {
		if ln == "" {
			continue
		}
		if err := m.Feed([]byte(ln + "\n")); err != nil {
			return err
		}
	}
	return nil
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		in   string
		want [5]int
		ok   bool
	}{
		{"5a6", [5]int{5, 5, 'a', 6, 6}, true},
		{"2,4d1", [5]int{2, 4, 'd', 1, 1}, true},
		{"3c3,5", [5]int{3, 3, 'c', 3, 5}, true},
		{"10,12c20,22", [5]int{10, 12, 'c', 20, 22}, true},
		{"abc", [5]int{}, false},
		{"5x6", [5]int{}, false},
		{"5a", [5]int{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseHeader([]byte(tt.in))
		if ok != tt.ok {
			t.Errorf("ParseHeader(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseHeader(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSmartReloadInsertion(t *testing.T) {
	// the on-disk version gained "MID" between lines 2 and 3; the
	// cursor was on original line 4
	b := newBuf("l1\n", "l2\n", "l3\n", "l4\n", "l5\n")
	fourth := b.GotoLineno(4)
	fourth.Flags |= line.Alter
	b.GoTop()

	m := New(b, 4)
	if err := feedAll(t, m, "2a3\n> MID"); err != nil {
		t.Fatal(err)
	}

	got := lines(b)
	want := []string{"l1\n", "l2\n", "MID\n", "l3\n", "l4\n", "l5\n"}
	if len(got) != 6 {
		t.Fatalf("lines = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i+1, got[i], want[i])
		}
	}
	if b.NumLines != 6 {
		t.Errorf("NumLines = %d, want 6", b.NumLines)
	}
	if m.OrigLineno != 5 {
		t.Errorf("cursor line adjusted to %d, want 5", m.OrigLineno)
	}

	mid := b.GotoLineno(3)
	if mid.Flags&line.Change != 0 {
		t.Error("inserted line must carry no CHANGE bit")
	}
	if fourth.Flags&line.Alter == 0 {
		t.Error("original line 4 must keep its ALTER bit")
	}
	if m.Actions != 1 {
		t.Errorf("actions = %d, want 1", m.Actions)
	}
}

func TestSmartReloadDelete(t *testing.T) {
	b := newBuf("a\n", "b\n", "c\n", "d\n")
	b.GoTop()

	m := New(b, 4)
	if err := feedAll(t, m, "2,3d1\n< b\n< c"); err != nil {
		t.Fatal(err)
	}
	got := lines(b)
	if len(got) != 2 || got[0] != "a\n" || got[1] != "d\n" {
		t.Errorf("after delete: %v", got)
	}
	if m.OrigLineno != 2 {
		t.Errorf("cursor adjusted to %d, want 2", m.OrigLineno)
	}
	if b.NumLines != 2 {
		t.Errorf("NumLines = %d", b.NumLines)
	}
}

func TestSmartReloadChange(t *testing.T) {
	b := newBuf("a\n", "old\n", "c\n")
	b.GoTop()

	m := New(b, 1)
	if err := feedAll(t, m, "2c2\n< old\n---\n> new"); err != nil {
		t.Fatal(err)
	}
	got := lines(b)
	want := []string{"a\n", "new\n", "c\n"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i+1, got[i], want[i])
		}
	}
}

func TestSmartReloadBookmarkCleared(t *testing.T) {
	b := newBuf("a\n", "b\n", "c\n")
	cleared := false
	b.OnLineRemove = func(l *line.Line) {
		cleared = true
		l.ClearBookmark()
	}
	b.GotoLineno(2).SetBookmark(4)
	b.GoTop()

	m := New(b, 1)
	if err := feedAll(t, m, "2d1\n< b"); err != nil {
		t.Fatal(err)
	}
	if !cleared {
		t.Error("removing a bookmarked line must call the bookmark hook")
	}
}

func TestTruncatedDiffNoUnderflow(t *testing.T) {
	scripts := []string{
		"2,3d1",              // header only, no payload
		"2,3d1\n< b",         // one of two deletions
		"1,3c1\n< a\n< b",    // change cut short
		"5a6\n> late",        // header past the end
		"garbage here",       // not a diff at all
		"1d1\n< a\n1d1\n< b", // second delete hits a shrunk buffer
	}
	for _, script := range scripts {
		b := newBuf("a\n", "b\n", "c\n")
		b.GoTop()
		m := New(b, 1)
		feedAll(t, m, script) // errors are acceptable, underflow is not

		if b.NumLines < 0 {
			t.Errorf("script %q underflowed NumLines to %d", script, b.NumLines)
		}
		real := len(lines(b))
		if b.NumLines != real {
			t.Errorf("script %q left NumLines %d but %d lines", script, b.NumLines, real)
		}
	}
}

func TestIdenticalStream(t *testing.T) {
	b := newBuf("same\n")
	b.GoTop()
	m := New(b, 1)
	// an empty diff stream means identical content
	if m.Actions != 0 {
		t.Errorf("actions = %d, want 0", m.Actions)
	}
	if got := lines(b); len(got) != 1 || got[0] != "same\n" {
		t.Errorf("buffer modified on identical input: %v", got)
	}
}
