package filter

import (
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
	if !b.Curr.IsText() {
		b.Curr = b.Top
		b.Lineno = 0
	}
	return b
}

func hiddenPattern(b *buffer.Buffer) []bool {
	var out []bool
	for lp := b.Top.Next(); lp.IsText(); lp = lp.Next() {
		out = append(out, b.HiddenLine(lp))
	}
	return out
}

func TestFilterAllRegex(t *testing.T) {
	b := newBuf("one\n", "foo two\n", "three\n", "a foo\n", "five\n")

	if err := All(b, "foo"); err != nil {
		t.Fatal(err)
	}
	want := []bool{true, false, true, false, true}
	got := hiddenPattern(b)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d hidden = %v, want %v", i+1, got[i], want[i])
		}
	}

	// idempotence: a second run leaves the same hide-bit set
	if err := All(b, "foo"); err != nil {
		t.Fatal(err)
	}
	got = hiddenPattern(b)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("second run: line %d hidden = %v, want %v", i+1, got[i], want[i])
		}
	}

	// more with the same predicate preserves visible lines
	if err := More(b, "foo"); err != nil {
		t.Fatal(err)
	}
	got = hiddenPattern(b)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("after more: line %d hidden = %v, want %v", i+1, got[i], want[i])
		}
	}
}

func TestFilterTmpAllToggle(t *testing.T) {
	b := newBuf("one\n", "foo\n", "three\n")
	All(b, "foo")

	hidden := hiddenPattern(b)
	if !hidden[0] || hidden[1] || !hidden[2] {
		t.Fatalf("setup: hidden = %v", hidden)
	}

	TmpAll(b)
	for i, h := range hiddenPattern(b) {
		if h {
			t.Errorf("tmp view: line %d still hidden", i+1)
		}
	}

	TmpAll(b)
	restored := hiddenPattern(b)
	if !restored[0] || restored[1] || !restored[2] {
		t.Errorf("restored view = %v, want the filtered one", restored)
	}
}

func TestFilterEmptyAndLess(t *testing.T) {
	b := newBuf("a\n", "b\n")
	Less(b, "")
	for i, h := range hiddenPattern(b) {
		if !h {
			t.Errorf("less with empty expr must hide line %d", i+1)
		}
	}
	All(b, "")
	for i, h := range hiddenPattern(b) {
		if h {
			t.Errorf("all with empty expr must unhide line %d", i+1)
		}
	}
}

func TestFilterAlterPredicate(t *testing.T) {
	b := newBuf("a\n", "b\n", "c\n")
	b.Top.Next().Next().Flags |= line.Change

	All(b, "alter")
	got := hiddenPattern(b)
	if !got[0] || got[1] || !got[2] {
		t.Errorf("alter filter = %v, want only changed visible", got)
	}

	// prefix form works as well
	All(b, "")
	All(b, "al")
	got = hiddenPattern(b)
	if !got[0] || got[1] || !got[2] {
		t.Errorf("alter prefix filter = %v", got)
	}
}

func TestFilterLineNumberPredicate(t *testing.T) {
	b := newBuf("a\n", "b\n", "c\n")

	// the :N predicate touches exactly one line
	Less(b, "")
	if err := More(b, ":2"); err != nil {
		t.Fatal(err)
	}
	got := hiddenPattern(b)
	if !got[0] || got[1] || !got[2] {
		t.Errorf(":2 filter = %v", got)
	}
	if b.Lineno != 2 {
		t.Errorf("cursor moved to %d, want 2", b.Lineno)
	}

	if err := Less(b, ":2"); err != nil {
		t.Fatal(err)
	}
	if !hiddenPattern(b)[1] {
		t.Error("less :2 must hide the line again")
	}

	if err := All(b, ":9"); err == nil {
		t.Error("out-of-range lineno must fail")
	}
}

func TestFilterCursorSkipsHidden(t *testing.T) {
	b := newBuf("a\n", "foo\n", "c\n")
	// cursor on line 1 which will be hidden
	All(b, "foo")
	if b.Lineno != 2 || string(b.Curr.Buff) != "foo\n" {
		t.Errorf("cursor at %d (%q), want the visible line 2", b.Lineno, b.Curr.Buff)
	}
}

func TestExpandAndRestrict(t *testing.T) {
	b := newBuf("a\n", "foo\n", "c\n")
	All(b, "foo")
	// cursor on line 2 now

	ExpandUp(b)
	if b.Lineno != 1 || b.HiddenLine(b.Curr) {
		t.Errorf("ExpandUp: line %d hidden=%v", b.Lineno, b.HiddenLine(b.Curr))
	}

	Restrict(b)
	if b.Lineno != 2 {
		t.Errorf("Restrict must move down, at %d", b.Lineno)
	}
	first := b.Top.Next()
	if !b.HiddenLine(first) {
		t.Error("Restrict must hide the former line")
	}

	ExpandDown(b)
	if b.Lineno != 3 || b.HiddenLine(b.Curr) {
		t.Errorf("ExpandDown: line %d", b.Lineno)
	}
}

func TestFilterLevels(t *testing.T) {
	b := newBuf("a\n", "foo\n", "c\n")
	All(b, "foo")

	if err := IncrLevel(b); err != nil {
		t.Fatal(err)
	}
	if b.FLevel != 2 {
		t.Fatalf("FLevel = %d", b.FLevel)
	}
	// level 2 has no bits yet: everything visible
	for i, h := range hiddenPattern(b) {
		if h {
			t.Errorf("level 2 must show line %d", i+1)
		}
	}

	if err := DecrLevel(b); err != nil {
		t.Fatal(err)
	}
	got := hiddenPattern(b)
	if !got[0] || got[1] || !got[2] {
		t.Errorf("level 1 bits lost: %v", got)
	}

	// copy variant duplicates the bits
	if err := Incr2Level(b); err != nil {
		t.Fatal(err)
	}
	got = hiddenPattern(b)
	if !got[0] || got[1] || !got[2] {
		t.Errorf("level 2 after copy: %v", got)
	}

	b.FLevel = 7
	if err := IncrLevel(b); err == nil {
		t.Error("level above 7 must be refused")
	}
	b.FLevel = 1
	if err := DecrLevel(b); err == nil {
		t.Error("level below 1 must be refused")
	}
}

func TestFoldCFunctions(t *testing.T) {
	b := newBuf(
		"#include <stdio.h>\n",
		"\n",
		"static int\n",
		"helper (int x)\n",
		"{\n",
		"\treturn x+1;\n",
		"}\n",
		"\n",
		"int\n",
		"main (void)\n",
		"{\n",
		"\treturn helper(1);\n",
		"}\n",
	)
	b.Ftype = buffer.CType

	if err := All(b, "function"); err != nil {
		t.Fatal(err)
	}

	got := hiddenPattern(b)
	// visible: the header lines, the braces; hidden: includes, blanks,
	// the function bodies
	wantVisible := map[int]bool{4: true, 5: true, 7: true, 10: true, 11: true, 13: true}
	for i, h := range got {
		lineno := i + 1
		if wantVisible[lineno] && h {
			t.Errorf("line %d must stay visible", lineno)
		}
	}
	for _, lineno := range []int{1, 2, 6, 8, 12} {
		if !got[lineno-1] {
			t.Errorf("line %d must be hidden", lineno)
		}
	}
}

func TestFoldPython(t *testing.T) {
	b := newBuf(
		"import os\n",
		"\n",
		"def first():\n",
		"    pass\n",
		"\n",
		"class Thing:\n",
		"    def method(self):\n",
		"        pass\n",
	)
	b.Ftype = buffer.PythonType

	if err := All(b, "function"); err != nil {
		t.Fatal(err)
	}
	got := hiddenPattern(b)
	for _, lineno := range []int{3, 6, 7} {
		if got[lineno-1] {
			t.Errorf("header line %d must stay visible", lineno)
		}
	}
	for _, lineno := range []int{1, 2, 4, 5, 8} {
		if !got[lineno-1] {
			t.Errorf("line %d must be hidden", lineno)
		}
	}
}

func TestFoldShell(t *testing.T) {
	b := newBuf(
		"#!/bin/sh\n",
		"do_work() {\n",
		"\techo hi\n",
		"}\n",
		"do_work\n",
	)
	b.Ftype = buffer.ShellType

	if err := All(b, "function"); err != nil {
		t.Fatal(err)
	}
	got := hiddenPattern(b)
	if got[1] || got[3] {
		t.Errorf("header and closing brace must stay visible: %v", got)
	}
	if !got[0] || !got[2] || !got[4] {
		t.Errorf("body and toplevel must be hidden: %v", got)
	}
}

func TestColorTag(t *testing.T) {
	b := newBuf("foo\n", "bar\n", "foo bar\n")

	if err := ColorTag(b, "foo"); err != nil {
		t.Fatal(err)
	}
	first := b.Top.Next()
	if first.Flags&line.Tag1 == 0 || first.Next().Flags&line.Tag1 != 0 {
		t.Error("regex tagging wrong")
	}

	if err := ColorTag(b, ""); err != nil {
		t.Fatal(err)
	}
	for lp := b.Top.Next(); lp.IsText(); lp = lp.Next() {
		if lp.Flags&line.Tag1 != 0 {
			t.Error("empty pattern must clear the marks")
		}
	}

	TagFocusLine(b)
	if b.Curr.Flags&line.Tag1 == 0 {
		t.Error("TagFocusLine must set the mark")
	}
	TagFocusLine(b)
	if b.Curr.Flags&line.Tag1 != 0 {
		t.Error("TagFocusLine must toggle the mark off")
	}
}
