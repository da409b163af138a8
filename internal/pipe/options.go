// Package pipe implements the external-process plane: fork/exec
// pipelines with optional PTY, non-blocking line reassembly into a
// buffer, child reaping, and the remote (ssh) variant.
package pipe

// Pipe option bits.
const (
	// OptNoScratch skips the scratch buffer handling; the caller
	// consumes the output itself (smart reload).
	OptNoScratch = 1 << 0
	// OptNoApp wipes existing scratch content before the launch.
	OptNoApp = 1 << 1
	// OptNoBg drains the child synchronously.
	OptNoBg = 1 << 2
	// OptSilent suppresses the header and footer lines.
	OptSilent = 1 << 3
	// OptInteract runs the child on a PTY pair.
	OptInteract = 1 << 4
	// OptRedirErr redirects child stderr into the output pipe.
	OptRedirErr = 1 << 5

	// OptInOut feeds the child's stdin from the editor; the variants
	// select what is written.
	OptInOut        = 1 << 6
	OptInOutFocus   = OptInOut | 1<<7
	OptInOutRealAll = OptInOut | 1<<8
	OptInOutVisAll  = OptInOut | 1<<9
	// OptInOutShMark adds shadow marks for skipped hidden lines.
	OptInOutShMark = 1 << 10
)
