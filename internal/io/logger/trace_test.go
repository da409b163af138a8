package logger

import (
	"fmt"
	"testing"

	"github.com/tved/tved/internal/constants"
)

func TestTracemsgRing(t *testing.T) {
	TraceDrop()

	Tracemsg("first %d", 1)
	Tracemsg("second")

	lines := TraceLines()
	if len(lines) != 2 || lines[0] != "first 1" || lines[1] != "second" {
		t.Errorf("trace ring = %v", lines)
	}
}

func TestTracemsgRingBounded(t *testing.T) {
	TraceDrop()

	for i := 0; i < constants.TraceSize*2; i++ {
		Tracemsg(fmt.Sprintf("msg %d", i))
	}
	lines := TraceLines()
	if len(lines) != constants.TraceSize {
		t.Fatalf("ring holds %d lines, want %d", len(lines), constants.TraceSize)
	}
	if lines[len(lines)-1] != fmt.Sprintf("msg %d", constants.TraceSize*2-1) {
		t.Error("ring must keep the most recent messages")
	}
}

func TestTraceDrop(t *testing.T) {
	Tracemsg("pending")
	TraceDrop()
	if len(TraceLines()) != 0 {
		t.Error("TraceDrop must empty the ring")
	}
}
