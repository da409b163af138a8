package pipe

import (
	"testing"
	"time"

	"github.com/tved/tved/internal/edit/buffer"
)

func drain(t *testing.T, b *buffer.Buffer) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for b.Pipe.Running() {
		if time.Now().After(deadline) {
			Stop(b)
			t.Fatal("child did not finish in time")
		}
		if ret := ReadOut(b); ret == 1 {
			time.Sleep(10 * time.Millisecond)
		} else if ret == -1 {
			t.Fatal("pipe read error")
		}
	}
}

func lines(b *buffer.Buffer) []string {
	var out []string
	for lp := b.Top.Next(); lp.IsText(); lp = lp.Next() {
		out = append(out, string(lp.Buff))
	}
	return out
}

func TestExecAndReadOut(t *testing.T) {
	b := buffer.New(0)
	b.Curr = b.Top

	err := Exec(b, "/bin/sh", "sh -c 'echo hello; echo world'", OptRedirErr|OptSilent)
	if err != nil {
		t.Fatal(err)
	}
	CloseInput(b)
	SetNonblocking(b)
	drain(t, b)

	got := lines(b)
	if len(got) != 2 || got[0] != "hello\n" || got[1] != "world\n" {
		t.Errorf("child output = %v", got)
	}
	if b.Pipe.Cmd != nil {
		t.Error("child must be reaped after end-of-stream")
	}
}

func TestExecFooterUnlessSilent(t *testing.T) {
	b := buffer.New(0)
	b.Curr = b.Top

	if err := Exec(b, "/bin/sh", "sh -c 'echo x'", OptRedirErr); err != nil {
		t.Fatal(err)
	}
	CloseInput(b)
	SetNonblocking(b)
	drain(t, b)

	got := lines(b)
	if len(got) != 2 || got[1] != "\n" {
		t.Errorf("expected footer line, got %v", got)
	}
}

func TestExecFeedsStdin(t *testing.T) {
	b := buffer.New(0)
	b.Curr = b.Top

	if err := Exec(b, "/bin/sh", "sh -c 'tr a-z A-Z'", OptRedirErr|OptSilent|OptInOut); err != nil {
		t.Fatal(err)
	}
	b.Pipe.Input.Write([]byte("upper me\n"))
	CloseInput(b)
	SetNonblocking(b)
	drain(t, b)

	got := lines(b)
	if len(got) != 1 || got[0] != "UPPER ME\n" {
		t.Errorf("filtered output = %v", got)
	}
}

func TestExecRefusedWhileRunning(t *testing.T) {
	b := buffer.New(0)
	b.Curr = b.Top

	if err := Exec(b, "/bin/sh", "sh -c 'sleep 5'", OptSilent); err != nil {
		t.Fatal(err)
	}
	if err := Exec(b, "/bin/sh", "sh -c 'echo no'", OptSilent); err == nil {
		t.Error("second child on the same buffer must be refused")
	}
	Stop(b)
	if b.Pipe.Running() {
		t.Error("Stop must clear the pipe state")
	}
}

func TestStopIdempotent(t *testing.T) {
	b := buffer.New(0)
	Stop(b)
	Stop(b) // closing twice must be harmless
}
