package pipe

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"

	"github.com/tved/tved/internal/config"
	"github.com/tved/tved/internal/constants"
	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/ops"
	"github.com/tved/tved/internal/errors"
	"github.com/tved/tved/internal/io/logger"
)

// Exec starts the external command with the given argv string and
// wires the pipes (or the PTY pair) into the buffer's pipe state. The
// caller feeds stdin and decides between synchronous drain and
// background polling.
func Exec(b *buffer.Buffer, cmdPath, argstr string, opts int) error {
	if b.Pipe.Running() {
		logger.Tracemsg("running background process!")
		return errors.ErrPipeRunning
	}

	args, err := ParseArgs(argstr)
	if err != nil {
		return err
	}
	if cmdPath == "" {
		return errors.ErrChildSpawn
	}

	cmd := &exec.Cmd{Path: cmdPath, Args: args}

	if opts&OptInteract != 0 {
		master, err := pty.Start(cmd)
		if err != nil {
			logger.Error("pty start", cmdPath, err)
			return errors.Wrap(errors.ErrChildSpawn, err.Error())
		}
		b.Pipe.Cmd = cmd
		b.Pipe.Input = master
		b.Pipe.Output = master
		b.Pipe.Opts = opts
		b.Pipe.OutFd = int(master.Fd())
		unix.SetNonblock(b.Pipe.OutFd, true)
		return nil
	}

	outR, outW, err := os.Pipe()
	if err != nil {
		return errors.Wrap(errors.ErrChildSpawn, err.Error())
	}
	cmd.Stdout = outW
	if opts&OptRedirErr != 0 {
		cmd.Stderr = outW
	}

	var inW *os.File
	if opts&OptInOut != 0 {
		inR, w, err := os.Pipe()
		if err != nil {
			outR.Close()
			outW.Close()
			return errors.Wrap(errors.ErrChildSpawn, err.Error())
		}
		cmd.Stdin = inR
		inW = w
		defer inR.Close()
	}

	err = cmd.Start()
	outW.Close() // parent keeps only the read end
	if err != nil {
		outR.Close()
		if inW != nil {
			inW.Close()
		}
		logger.Error("exec", cmdPath, err)
		return errors.Wrap(errors.ErrChildSpawn, err.Error())
	}

	b.Pipe.Cmd = cmd
	b.Pipe.Input = inW
	b.Pipe.Output = outR
	b.Pipe.Opts = opts
	b.Pipe.OutFd = int(outR.Fd())

	logger.Debug("exec", cmdPath, argstr, "pid", cmd.Process.Pid)
	return nil
}

// SetNonblocking switches the output descriptor to non-blocking mode
// for background polling.
func SetNonblocking(b *buffer.Buffer) {
	if b.Pipe.Output != nil {
		unix.SetNonblock(b.Pipe.OutFd, true)
	}
}

// CloseInput closes the child's stdin writer.
func CloseInput(b *buffer.Buffer) {
	if b.Pipe.Input != nil && b.Pipe.Input != b.Pipe.Output {
		b.Pipe.Input.Close()
	}
	b.Pipe.Input = nil
}

// readChunk does one non-blocking read from the child. It returns
// n=0, again=false on end-of-stream and again=true when no data is
// available this tick.
func readChunk(b *buffer.Buffer, chunk []byte) (n int, again bool, err error) {
	n, err = unix.Read(b.Pipe.OutFd, chunk)
	if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
		return 0, true, nil
	}
	if err == syscall.EIO {
		// PTY master returns EIO at child exit
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, false, nil
}

// appendReassembled cuts complete lines out of the reassembly buffer
// and appends them to the buffer's tail; partial trailing bytes stay
// for the next poll.
func appendReassembled(b *buffer.Buffer, data []byte, flush bool) error {
	fixCR := config.Common == nil || config.Common.FixCR
	rb := b.Pipe.ReadBuff

	for _, ch := range data {
		rb = append(rb, ch)
		if ch == '\n' || len(rb) >= constants.LineSizeInit-1 {
			text, _ := buffer.SanitizeLine(rb, fixCR)
			if lx := b.Append(b.Bottom.Prev(), text); lx == nil {
				b.Pipe.ReadBuff = rb[:0]
				return errors.ErrReadFailed
			}
			rb = rb[:0]
		}
	}

	if flush && len(rb) > 0 {
		text, _ := buffer.SanitizeLine(rb, fixCR)
		if lx := b.Append(b.Bottom.Prev(), text); lx == nil {
			b.Pipe.ReadBuff = rb[:0]
			return errors.ErrReadFailed
		}
		rb = rb[:0]
	}

	b.Pipe.ReadBuff = rb
	return nil
}

// ReadOut reads available child output into the buffer: one
// best-effort step per tick. Returns 1 when nothing happened, 0 after
// changes or on a finished stream, -1 on error.
func ReadOut(b *buffer.Buffer) int {
	if !b.Pipe.Running() {
		return 1
	}
	if b.Pipe.ReadBuff == nil {
		b.Pipe.ReadBuff = make([]byte, 0, constants.LineSizeInit+1)
	}

	if b.Flags&buffer.Interact != 0 {
		return readOutInteractive(b)
	}

	pull := b.Lineno >= b.NumLines
	chunk := make([]byte, constants.LineSizeInit)
	total := 0

	for total < constants.LineSizeInit {
		n, again, err := readChunk(b, chunk)
		if err != nil {
			logger.Error("pipe read", b.Fname, err)
			Stop(b)
			return -1
		}
		if again {
			if total == 0 {
				return 1
			}
			break
		}
		if n == 0 {
			// end-of-stream
			appendReassembled(b, nil, true)
			status := Wait4(b)
			logger.Debug("pipe finished", b.Fname, "status", status)
			if b.Pipe.Opts&OptSilent == 0 {
				// last line: footer
				b.InsertBefore(b.Bottom, []byte("\n"))
			}
			if pull {
				b.PullCurrentToBottom()
			}
			return 0
		}
		if err := appendReassembled(b, chunk[:n], false); err != nil {
			Stop(b)
			return -1
		}
		total += n
	}

	if pull {
		b.PullCurrentToBottom()
	}
	return 0
}

// readOutInteractive reads all-at-once from the PTY, strips ESC
// sequences and types the rest into the buffer's tail. Repeated empty
// reads trigger a zombie check.
func readOutInteractive(b *buffer.Buffer) int {
	chunk := make([]byte, constants.LineSizeInit)
	n, again, err := readChunk(b, chunk)
	if err != nil {
		Stop(b)
		return -1
	}
	if again {
		b.Pipe.Zombie++
		if b.Pipe.Zombie >= constants.ZombieDelay {
			b.Pipe.Zombie = 0
			if CheckZombie(b) != 0 {
				Stop(b) // defunct
				return 0
			}
		}
		return 1
	}
	if n == 0 {
		Stop(b)
		return 0
	}

	b.Pipe.Zombie = 0
	text := FilterEscSeq(chunk[:n])
	if err := ops.TypeText(b, text); err != nil {
		return -1
	}
	return 0
}

// Wait4 closes the pipes, frees the reassembly buffer and reaps the
// child, killing it when the wait does not succeed cleanly.
func Wait4(b *buffer.Buffer) int {
	if b.Pipe.Input != nil && b.Pipe.Input != b.Pipe.Output {
		b.Pipe.Input.Close()
	}
	if b.Pipe.Output != nil {
		b.Pipe.Output.Close()
	}
	b.Pipe.Input = nil
	b.Pipe.Output = nil
	b.Pipe.ReadBuff = nil

	status := 0
	if b.Pipe.Cmd != nil {
		if err := b.Pipe.Cmd.Wait(); err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				status = exitErr.ExitCode()
			} else {
				logger.Debug("wait", b.Fname, err)
				if b.Pipe.Cmd.Process != nil {
					b.Pipe.Cmd.Process.Kill()
				}
				status = -1
			}
		}
		b.Pipe.Cmd = nil
	}
	if b.Pipe.CloseRemote != nil {
		b.Pipe.CloseRemote()
		b.Pipe.CloseRemote = nil
	}
	b.Flags &^= buffer.Interact
	return status
}

// CheckZombie probes whether the child is still alive; non-zero means
// it is gone.
func CheckZombie(b *buffer.Buffer) int {
	if b.Pipe.Cmd == nil || b.Pipe.Cmd.Process == nil {
		return -1
	}
	if err := b.Pipe.Cmd.Process.Signal(syscall.Signal(0)); err != nil {
		return -1
	}
	return 0
}

// Stop terminates the running child of a buffer: close, kill, reap
// without blocking the loop.
func Stop(b *buffer.Buffer) {
	if b.Pipe.Input != nil && b.Pipe.Input != b.Pipe.Output {
		b.Pipe.Input.Close()
	}
	if b.Pipe.Output != nil {
		b.Pipe.Output.Close()
	}
	b.Pipe.Input = nil
	b.Pipe.Output = nil
	b.Pipe.ReadBuff = nil

	if b.Pipe.Cmd != nil {
		cmd := b.Pipe.Cmd
		b.Pipe.Cmd = nil
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		go cmd.Wait()
	}
	if b.Pipe.CloseRemote != nil {
		b.Pipe.CloseRemote()
		b.Pipe.CloseRemote = nil
	}
	b.Flags &^= buffer.Interact
}
