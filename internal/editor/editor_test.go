package editor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/line"
	"github.com/tved/tved/internal/pipe"
)

func TestAddFileSwitchesOnSameInode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	os.WriteFile(path, []byte("x\n"), 0644)

	e := New()
	if err := e.AddFile(path); err != nil {
		t.Fatal(err)
	}
	first := e.Ring.Curr
	if err := e.AddFile(path); err != nil {
		t.Fatal(err)
	}
	if e.Ring.Size != 1 || e.Ring.Curr != first {
		t.Errorf("same inode must switch, not open: size=%d", e.Ring.Size)
	}
}

func TestScratchBufferReuse(t *testing.T) {
	e := New()
	b1, err := e.ScratchBuffer("*sh*")
	if err != nil {
		t.Fatal(err)
	}
	b2, err := e.ScratchBuffer("*sh*")
	if err != nil {
		t.Fatal(err)
	}
	if b1 != b2 || e.Ring.Size != 1 {
		t.Error("scratch buffers must be reused by name")
	}
	if b1.Flags&buffer.Special == 0 {
		t.Error("scratch buffer must be special")
	}
}

func TestDropBufferCleansUp(t *testing.T) {
	e := New()
	b, _ := e.ScratchBuffer("*sh*")
	lp := b.Append(b.Top, []byte("text\n"))
	b.Curr = lp
	b.Lineno = 1

	e.SelectRI = b.Index
	lp.Flags |= line.Select
	lp.SetBookmark(2)
	e.Bookmarks[2] = Bookmark{RI: b.Index, Sample: "text"}
	e.MHist = append(e.MHist, Motion{RI: b.Index, Lineno: 1})

	if err := e.DropBuffer(); err != nil {
		t.Fatal(err)
	}
	if e.SelectRI != -1 {
		t.Error("selection must reset on drop")
	}
	if e.Bookmarks[2].RI != -1 {
		t.Error("bookmarks must be forgotten on drop")
	}
	if len(e.MHist) != 0 {
		t.Error("motion history must be cleared on drop")
	}
	if e.Ring.Size != 0 {
		t.Error("slot must be released")
	}
}

func TestBookmarkLifecycle(t *testing.T) {
	e, b := testEditor(t, "one\n", "two\n", "three\n")

	b.Curr = b.GotoLineno(2)
	b.Lineno = 2
	if err := e.SetBookmark(5); err != nil {
		t.Fatal(err)
	}
	if b.Curr.Bookmark() != 5 {
		t.Fatal("line must carry the bookmark index")
	}
	if e.Bookmarks[5].RI != b.Index {
		t.Error("table must reference the buffer")
	}

	// jump from elsewhere
	b.Curr = b.Top.Next()
	b.Lineno = 1
	if err := e.JumpBookmark(5); err != nil {
		t.Fatal(err)
	}
	if b.Lineno != 2 {
		t.Errorf("jumped to %d, want 2", b.Lineno)
	}

	// removing the line clears the bookmark via the hook
	b.RemoveLine(b.Curr)
	if e.Bookmarks[5].RI != -1 {
		t.Error("bookmark must clear when its line is removed")
	}
}

func TestMotionHistoryJumpBack(t *testing.T) {
	e, b := testEditor(t, "one\n", "two\n", "three\n")
	b.Curr = b.GotoLineno(3)
	b.Lineno = 3

	e.mhistPush()
	b.Curr = b.GotoLineno(1)
	b.Lineno = 1

	if !e.MhistPop() {
		t.Fatal("jump back must succeed")
	}
	if b.Lineno != 3 {
		t.Errorf("jumped back to %d, want 3", b.Lineno)
	}
	if e.MhistPop() {
		t.Error("empty history must report false")
	}
}

func TestReadPipeShellScenario(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	e := New()

	err := e.ReadPipe("*sh*", "/bin/sh", "sh -c 'echo hello'",
		pipe.OptRedirErr|pipe.OptNoBg)
	if err != nil {
		t.Fatal(err)
	}
	b := e.Current()
	if b == nil || b.Fname != "*sh*" {
		t.Fatal("output must land in the *sh* scratch buffer")
	}

	got := lines(b)
	want := []string{"$ sh -c 'echo hello'\n", "hello\n", "\n"}
	if os.Geteuid() == 0 {
		want[0] = "# sh -c 'echo hello'\n"
	}
	if len(got) != 3 {
		t.Fatalf("lines = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i+1, got[i], want[i])
		}
	}
	if b.NumLines != 3 {
		t.Errorf("NumLines = %d, want 3", b.NumLines)
	}
	if b.Flags&(buffer.NoEdit|buffer.NoAddLine) == 0 {
		t.Error("pipe target must disable inline editing")
	}
}

func TestReadPipeFeedsSelection(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	e, b := testEditor(t, "bbb\n", "aaa\n")
	selectRange(e, b, 1, 2)

	err := e.ReadPipe("*sh*", "/bin/sh", "sh -c sort",
		pipe.OptRedirErr|pipe.OptSilent|pipe.OptNoBg|pipe.OptInOut)
	if err != nil {
		t.Fatal(err)
	}
	sh := e.Current()
	got := lines(sh)
	if len(got) != 2 || got[0] != "aaa\n" || got[1] != "bbb\n" {
		t.Errorf("sorted selection = %v", got)
	}
	if sh.Origin != b.Index {
		t.Errorf("origin = %d, want %d", sh.Origin, b.Index)
	}
}

func TestReloadByDiffScenario(t *testing.T) {
	diff := diffPath()
	if _, err := os.Stat(diff); err != nil {
		t.Skip("no diff binary")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "smart.txt")
	os.WriteFile(path, []byte("l1\nl2\nl3\nl4\nl5\n"), 0644)

	e := New()
	if err := e.AddFile(path); err != nil {
		t.Fatal(err)
	}
	b := e.Current()
	fourth := b.GotoLineno(4)
	fourth.Flags |= line.Alter
	b.Curr = fourth
	b.Lineno = 4

	// the on-disk file gains MID between lines 2 and 3
	time.Sleep(10 * time.Millisecond)
	os.WriteFile(path, []byte("l1\nl2\nMID\nl3\nl4\nl5\n"), 0644)

	if err := e.ReloadByDiff(); err != nil {
		t.Fatal(err)
	}
	if b.NumLines != 6 {
		t.Fatalf("NumLines = %d, want 6", b.NumLines)
	}
	if b.Lineno != 5 {
		t.Errorf("cursor at %d, want 5 (the old line 4)", b.Lineno)
	}
	if got := string(b.GotoLineno(3).Buff); got != "MID\n" {
		t.Errorf("line 3 = %q, want MID", got)
	}
	if b.GotoLineno(3).Flags&line.Change != 0 {
		t.Error("MID must carry no CHANGE bit")
	}
	if fourth.Flags&line.Alter == 0 {
		t.Error("old line 4 must keep ALTER")
	}
	if b.Flags&buffer.Change != 0 {
		t.Error("clean reload must not leave CHANGE")
	}
}

func TestReloadByDiffIdentical(t *testing.T) {
	diff := diffPath()
	if _, err := os.Stat(diff); err != nil {
		t.Skip("no diff binary")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "same.txt")
	os.WriteFile(path, []byte("a\nb\n"), 0644)

	e := New()
	if err := e.AddFile(path); err != nil {
		t.Fatal(err)
	}
	if err := e.ReloadByDiff(); err != nil {
		t.Fatal(err)
	}
	b := e.Current()
	if b.NumLines != 2 {
		t.Errorf("identical reload changed the buffer: %v", lines(b))
	}
}

func TestInternalSearch(t *testing.T) {
	e, b := testEditor(t, "alpha\n", "needle here\n")
	b.Fname = "src.txt"

	scratch, err := e.ScratchBuffer("*find*")
	if err != nil {
		t.Fatal(err)
	}
	if err := e.InternalSearch("needle"); err != nil {
		t.Fatal(err)
	}
	got := lines(scratch)
	if len(got) != 3 {
		t.Fatalf("locate output = %v", got)
	}
	if got[0] != "locate needle\n" {
		t.Errorf("header = %q", got[0])
	}
	if got[1] != "src.txt:2: needle here\n" {
		t.Errorf("hit = %q", got[1])
	}
}
