package line

import (
	"github.com/tved/tved/internal/constants"
	"github.com/tved/tved/internal/errors"
)

// cap4 rounds a requested capacity up to the allocation chunk size
// (minimum 32 bytes).
func cap4(n int) int {
	return constants.AllocSize(n)
}

// Splice is the internal line buff manager: it replaces the bytes
// [from, from+length) with repl, reallocating in chunks, and always
// re-establishes the trailing newline. This is a low-level function;
// callers update cursor and change flags. Sentinels are refused and
// the line stays unchanged on error.
func (l *Line) Splice(from, length int, repl []byte) error {
	if !l.IsText() {
		return errors.ErrNotRegular
	}

	llen := len(l.Buff)
	if from < 0 || from > llen {
		return errors.ErrLineRange
	}
	if length < 0 {
		length = 0
	}
	if from+length > llen {
		length = llen - from
	}

	n := llen - length + len(repl)
	var buff []byte
	if n+1 <= cap(l.Buff) {
		buff = l.Buff[:n]
		// shift the tail before overwriting the gap
		copy(buff[from+len(repl):], l.Buff[from+length:llen])
	} else {
		buff = make([]byte, n, cap4(n+1))
		copy(buff, l.Buff[:from])
		copy(buff[from+len(repl):], l.Buff[from+length:llen])
	}
	copy(buff[from:], repl)

	if n == 0 || buff[n-1] != '\n' {
		buff = append(buff, '\n')
	}
	l.Buff = buff

	return nil
}
