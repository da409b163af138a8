package errors

import (
	"testing"
)

func TestWrap(t *testing.T) {
	err := Wrap(ErrReadOnly, "save")
	if err == nil {
		t.Fatal("Wrap must not drop the error")
	}
	if !Is(err, ErrReadOnly) {
		t.Error("wrapped error must keep its identity")
	}
	if Wrap(nil, "save") != nil {
		t.Error("Wrap(nil) must stay nil")
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(ErrLineRange, "line %d", 42)
	if !Is(err, ErrLineRange) {
		t.Error("Wrapf must keep the error identity")
	}
	if err.Error() != "line 42: line number out of range" {
		t.Errorf("message = %q", err.Error())
	}
	if Wrapf(nil, "x") != nil {
		t.Error("Wrapf(nil) must stay nil")
	}
}

func TestMultiError(t *testing.T) {
	var m MultiError
	if m.HasErrors() {
		t.Error("fresh MultiError must be empty")
	}
	if m.ErrorOrNil() != nil {
		t.Error("empty MultiError must collapse to nil")
	}

	m.Add(nil)
	if m.HasErrors() {
		t.Error("Add(nil) must be ignored")
	}

	m.Add(ErrBackup)
	if !m.HasErrors() || m.ErrorOrNil() == nil {
		t.Error("added error lost")
	}
	if m.Error() != ErrBackup.Error() {
		t.Errorf("single error message = %q", m.Error())
	}

	m.Add(ErrWriteFailed)
	if m.Error() == ErrBackup.Error() {
		t.Error("multiple errors must combine the message")
	}
}
