package search

import (
	"testing"

	"github.com/tved/tved/internal/edit/buffer"
)

func newBuf(texts ...string) *buffer.Buffer {
	b := buffer.New(0)
	lp := b.Top
	for _, s := range texts {
		lp = b.Append(lp, []byte(s))
	}
	b.Curr = b.Top.Next()
	b.Lineno = 1
	if !b.Curr.IsText() {
		b.Curr = b.Top
		b.Lineno = 0
	}
	return b
}

func TestSearchBasic(t *testing.T) {
	b := newBuf("alpha\n", "beta\n", "gamma beta\n")

	if err := Search(b, "/beta/"); err != nil {
		t.Fatal(err)
	}
	if b.Flags&buffer.Tag2 == 0 {
		t.Error("Tag2 must be set while a search is active")
	}
	if b.Lineno != 2 || b.Lncol != 4 {
		t.Errorf("first match at line %d col %d, want 2/4", b.Lineno, b.Lncol)
	}

	if err := RepeatSearch(b); err != nil {
		t.Fatal(err)
	}
	if b.Lineno != 3 || b.Lncol != 10 {
		t.Errorf("second match at line %d col %d, want 3/10", b.Lineno, b.Lncol)
	}

	// no more matches: position restored, search reset
	if err := RepeatSearch(b); err == nil {
		t.Error("expected no match")
	}
	if b.Lineno != 3 {
		t.Errorf("position must be restored, at line %d", b.Lineno)
	}
	if b.Flags&buffer.Tag2 != 0 {
		t.Error("search state must reset on miss")
	}
}

func TestSearchNoMatchResets(t *testing.T) {
	b := newBuf("aaa\n")
	if err := Search(b, "/zzz/"); err == nil {
		t.Error("expected no match error")
	}
	if b.Flags&(buffer.Tag2|buffer.Tag3|buffer.Tag4) != 0 {
		t.Error("flags must be clean after a failed search")
	}
}

func TestSearchBadPattern(t *testing.T) {
	b := newBuf("aaa\n")
	if err := Search(b, "/a[/"); err == nil {
		t.Error("expected compile error")
	}
	if b.Flags&buffer.Tag2 != 0 {
		t.Error("no search state after a compile failure")
	}
}

func TestAnchoredSearchVisitsEveryLine(t *testing.T) {
	b := newBuf("foo\n", "\n", "foo\n")

	if err := Search(b, "/^/"); err != nil {
		t.Fatal(err)
	}
	if b.Flags&buffer.Tag4 == 0 {
		t.Fatal("^ pattern must set the anchored flag")
	}
	if b.Lineno != 1 || b.Lncol != 0 {
		t.Fatalf("initial anchored match at %d/%d, want 1/0", b.Lineno, b.Lncol)
	}

	if err := RepeatSearch(b); err != nil {
		t.Fatal(err)
	}
	if b.Lineno != 2 || b.Lncol != 0 {
		t.Errorf("second anchored match at %d/%d, want 2/0", b.Lineno, b.Lncol)
	}

	if err := RepeatSearch(b); err != nil {
		t.Fatal(err)
	}
	if b.Lineno != 3 || b.Lncol != 0 {
		t.Errorf("third anchored match at %d/%d, want 3/0", b.Lineno, b.Lncol)
	}

	if err := RepeatSearch(b); err == nil {
		t.Error("anchored search past the last line must miss")
	}
}

func TestInteractiveReplace(t *testing.T) {
	b := newBuf("x=1\n", "x=2\n", "y=3\n")

	cs, err := Change(b, `/^x=(\d)/X=\1/`)
	if err != nil {
		t.Fatal(err)
	}
	if cs == nil {
		t.Fatal("expected an interactive session")
	}
	if b.Flags&(buffer.Tag2|buffer.Tag3) == 0 {
		t.Error("Tag2|Tag3 must be set during change")
	}

	if done := cs.Respond(b, 'y'); done {
		t.Fatal("first y must continue prompting")
	}
	// the second y applies the last match and ends the session
	if done := cs.Respond(b, 'y'); !done {
		cs.Respond(b, 'q')
	}

	var got []string
	for lp := b.Top.Next(); lp.IsText(); lp = lp.Next() {
		got = append(got, string(lp.Buff))
	}
	want := []string{"X=1\n", "X=2\n", "y=3\n"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i+1, got[i], want[i])
		}
	}
	if cs.Count != 2 {
		t.Errorf("change count = %d, want 2", cs.Count)
	}
	if b.Flags&(buffer.Tag2|buffer.Tag3) != 0 {
		t.Error("flags must be reset after quit")
	}
}

func TestChangeGlobal(t *testing.T) {
	b := newBuf("a b a\n", "b a b\n")

	cs, err := Change(b, "/a/A/g")
	if err != nil {
		t.Fatal(err)
	}
	if cs != nil {
		t.Fatal("global change must not return an interactive session")
	}

	var got []string
	for lp := b.Top.Next(); lp.IsText(); lp = lp.Next() {
		got = append(got, string(lp.Buff))
	}
	want := []string{"A b A\n", "b A b\n"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i+1, got[i], want[i])
		}
	}
	if b.Lineno != 1 {
		t.Errorf("global change must restore the position, at %d", b.Lineno)
	}
}

func TestChangeIdempotent(t *testing.T) {
	b := newBuf("X marks\n", "no x here\n")

	if _, err := Change(b, "/X/X/g"); err != nil {
		t.Fatal(err)
	}
	first := string(b.Top.Next().Buff)

	if _, err := Change(b, "/X/X/g"); err != nil {
		t.Fatal(err)
	}
	if string(b.Top.Next().Buff) != first || first != "X marks\n" {
		t.Errorf("change X->X must be a byte-level no-op, got %q", b.Top.Next().Buff)
	}
}

func TestChangeBackrefs(t *testing.T) {
	tests := []struct {
		name string
		text string
		args string
		want string
	}{
		{"group", "ab12\n", `/([a-z]+)(\d+)/\2\1/g`, "12ab\n"},
		{"whole_match", "abc\n", `/b/[&]/g`, "a[b]c\n"},
		{"literal_amp", "x\n", `/x/a\&b/g`, "a&b\n"},
		{"literal_backslash", "x\n", `/x/a\\b/g`, `a\b` + "\n"},
		{"other_escape_kept", "x\n", `/x/a\qb/g`, `a\qb` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuf(tt.text)
			if _, err := Change(b, tt.args); err != nil {
				t.Fatal(err)
			}
			if got := string(b.Top.Next().Buff); got != tt.want {
				t.Errorf("result = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChangeMissingDelimiters(t *testing.T) {
	b := newBuf("x\n")
	if _, err := Change(b, "no-delims"); err == nil {
		t.Error("missing delimiters must be refused")
	}
}

func TestHighlight(t *testing.T) {
	b := newBuf("some word here\n")

	if err := Highlight(b, "/word/"); err != nil {
		t.Fatal(err)
	}
	if b.Flags&buffer.Tag5 == 0 {
		t.Error("Tag5 must be set")
	}
	if b.Flags&buffer.Tag6 != 0 {
		t.Error("Tag6 must stay clear for an unanchored pattern")
	}

	if err := Highlight(b, "/^word/"); err != nil {
		t.Fatal(err)
	}
	if b.Flags&buffer.Tag6 == 0 {
		t.Error("Tag6 must be set for an anchored pattern")
	}

	// empty expr with the cursor on a word
	b.Lncol = 5
	if err := Highlight(b, ""); err != nil {
		t.Fatal(err)
	}
	if b.Flags&buffer.Tag5 == 0 {
		t.Error("word under cursor must install a highlight")
	}
}
