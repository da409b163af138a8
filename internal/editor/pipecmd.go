package editor

import (
	"fmt"
	"os"

	"github.com/tved/tved/internal/config"
	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/ops"
	"github.com/tved/tved/internal/errors"
	"github.com/tved/tved/internal/io/logger"
	"github.com/tved/tved/internal/pipe"
)

// ReadPipe starts the external command "cmdPath argstr" and routes its
// output into the scratch buffer named dest (or into the current
// buffer's custom pipe state with OptNoScratch). This is the single
// launch contract of the pipe plane.
func (e *Editor) ReadPipe(dest, cmdPath, argstr string, opts int) error {
	ringOrig := e.Ring.Curr
	standard := opts&pipe.OptNoScratch == 0

	var b *buffer.Buffer
	if standard {
		if opts&(pipe.OptNoBg|pipe.OptInteract) == pipe.OptNoBg|pipe.OptInteract {
			logger.Error("wrong options for", dest, "interactive must be background")
			return errors.ErrChildSpawn
		}
		var err error
		if b, err = e.ScratchBuffer(dest); err != nil {
			return err
		}
	} else {
		b = e.Current()
		if b == nil {
			return errors.ErrNoBuffer
		}
	}

	if b.Pipe.Running() {
		logger.Tracemsg("running background process!")
		e.Ring.Curr = ringOrig
		return nil
	}

	if standard && opts&pipe.OptNoApp != 0 && b.NumLines > 0 {
		b.Clean()
	}

	if err := pipe.Exec(b, cmdPath, argstr, opts); err != nil {
		logger.Tracemsg("failed to start external tool")
		return err
	}

	if opts&pipe.OptInOut != 0 && b.Pipe.Input != nil {
		// feed the child in the background so a large input cannot
		// deadlock against the filling output pipe
		in := b.Pipe.Input
		feed := e.collectFeed(ringOrig, opts)
		interact := opts&pipe.OptInteract != 0
		go func() {
			for _, text := range feed {
				if _, err := in.Write(text); err != nil {
					break
				}
			}
			if !interact {
				in.Close()
			}
		}()
		if !interact {
			b.Pipe.Input = nil
		}
	} else if opts&pipe.OptInteract == 0 {
		pipe.CloseInput(b)
	}

	if standard {
		b.Flags |= buffer.Special
		if opts&pipe.OptInteract != 0 {
			b.Flags |= buffer.Interact
			b.Pipe.LastInputLength = 0
		} else {
			// disable inline editing, adding lines
			b.Flags |= buffer.NoEdit | buffer.NoAddLine
		}

		if opts&pipe.OptSilent == 0 {
			// first line: header
			prompt := "$ "
			if os.Geteuid() == 0 {
				prompt = "# "
			}
			if b.InsertBefore(b.Bottom, []byte(prompt+argstr+"\n")) == nil {
				return errors.ErrNoAddLine
			}
		}
		if opts&pipe.OptInteract != 0 {
			ops.SplitLine(b)
			b.Flags &^= buffer.Cmd
		}

		silentAdj := 1
		if opts&pipe.OptSilent != 0 {
			silentAdj = 0
		}
		if b.Lineno >= b.NumLines-silentAdj {
			b.PullCurrentToBottom()
		}

		if ringOrig != e.Ring.Curr {
			b.Origin = ringOrig
		}

		if opts&pipe.OptNoBg != 0 {
			return e.FinishInFg()
		}
		pipe.SetNonblocking(b)
	}

	return nil
}

// collectFeed snapshots the input lines for the child according to
// the IN_OUT variant: the focus line, all real lines, all visible
// lines or the selection.
func (e *Editor) collectFeed(ringOrig, opts int) [][]byte {
	src := e.Ring.Slots[ringOrig]
	if src == nil {
		return nil
	}
	var feed [][]byte
	push := func(text []byte) {
		cp := make([]byte, len(text))
		copy(cp, text)
		feed = append(feed, cp)
	}

	switch {
	case opts&pipe.OptInOutFocus == pipe.OptInOutFocus:
		if src.Curr.IsText() {
			push(src.Curr.Buff)
		}
	case opts&pipe.OptInOutRealAll == pipe.OptInOutRealAll:
		for lp := src.Top.Next(); lp.IsText(); lp = lp.Next() {
			push(lp.Buff)
		}
	case opts&pipe.OptInOutVisAll == pipe.OptInOutVisAll:
		shadow := 0
		withShadow := opts&pipe.OptInOutShMark != 0 &&
			config.Common != nil && config.Common.Shadow
		for lp := src.Top.Next(); lp.IsText(); lp = lp.Next() {
			if src.HiddenLine(lp) {
				if withShadow {
					shadow++
				}
				continue
			}
			if shadow > 0 {
				push([]byte(fmt.Sprintf("--- %d lines ---\n", shadow)))
				shadow = 0
			}
			push(lp.Buff)
		}
	default:
		// selection lines
		e.WrSelect(func(text []byte) error {
			push(text)
			return nil
		}, opts&pipe.OptInOutShMark != 0)
	}
	return feed
}

// FinishInFg drains the current buffer's child synchronously until
// end-of-stream.
func (e *Editor) FinishInFg() error {
	b := e.Current()
	if b == nil {
		return errors.ErrNoBuffer
	}
	b.Pipe.Opts |= pipe.OptNoBg
	for b.Pipe.Running() {
		if ret := pipe.ReadOut(b); ret == -1 {
			return errors.ErrReadFailed
		}
	}
	return nil
}

// BackgroundPipes polls every buffer's running child once: the
// per-tick best-effort step. Reports whether the current buffer
// changed.
func (e *Editor) BackgroundPipes() bool {
	changed := false
	for ri := 0; ri < len(e.Ring.Slots); ri++ {
		b := e.Ring.Slots[ri]
		if b == nil || b.Flags&buffer.Open == 0 || !b.Pipe.Running() {
			continue
		}
		if ret := pipe.ReadOut(b); ret == 0 && ri == e.Ring.Curr {
			changed = true
		}
	}
	return changed
}

// StopBgProcess stops the running child of the current buffer.
func (e *Editor) StopBgProcess() {
	if b := e.Current(); b != nil {
		pipe.Stop(b)
	}
}

// ShCmd runs a shell command into the *sh* scratch buffer.
func (e *Editor) ShCmd(argstr string) error {
	return e.ReadPipe("*sh*", shPath(), "sh -c "+quoteArg(argstr),
		pipe.OptRedirErr)
}

// MakeCmd runs make into the *make* scratch buffer.
func (e *Editor) MakeCmd(argstr string) error {
	return e.ReadPipe("*make*", makePath(), "make "+argstr, pipe.OptRedirErr)
}

// FindCmd runs find/egrep into the *find* scratch buffer.
func (e *Editor) FindCmd(argstr string) error {
	return e.ReadPipe("*find*", findPath(), "find "+argstr, pipe.OptRedirErr)
}

// ShellCmd opens an interactive shell buffer talking over a PTY.
func (e *Editor) ShellCmd() error {
	return e.ReadPipe("*shell*", shPath(), "sh -i",
		pipe.OptRedirErr|pipe.OptSilent|pipe.OptInteract)
}

// SshCmd runs a command on a remote host, streaming into the *ssh*
// scratch buffer.
func (e *Editor) SshCmd(host, command string) error {
	ringOrig := e.Ring.Curr
	b, err := e.ScratchBuffer("*ssh*")
	if err != nil {
		return err
	}
	if b.Pipe.Running() {
		logger.Tracemsg("running background process!")
		e.Ring.Curr = ringOrig
		return nil
	}

	opts := pipe.OptRedirErr
	if err := pipe.ExecRemote(b, host, command, opts); err != nil {
		return err
	}
	b.Flags |= buffer.Special | buffer.NoEdit | buffer.NoAddLine
	if b.InsertBefore(b.Bottom, []byte("$ ssh "+host+" "+command+"\n")) != nil {
		b.PullCurrentToBottom()
	}
	if ringOrig != e.Ring.Curr {
		b.Origin = ringOrig
	}
	return nil
}

// FilterCmd pipes the visible lines (or the selection) through an
// external command into the *sh* buffer. It does not touch the
// selection itself; OverSelect, run from *sh*, writes that output
// over the selection.
func (e *Editor) FilterCmd(argstr string, visibleAll bool) error {
	opts := pipe.OptInOut | pipe.OptRedirErr | pipe.OptSilent
	if visibleAll {
		opts |= pipe.OptInOutVisAll
	}
	opts |= pipe.OptInOutShMark
	return e.ReadPipe("*sh*", shPath(), "sh -c "+quoteArg(argstr), opts)
}

func shPath() string {
	if config.Common != nil && config.Common.ShPath != "" {
		return config.Common.ShPath
	}
	return "/bin/sh"
}

func makePath() string {
	if config.Common != nil && config.Common.MakePath != "" {
		return config.Common.MakePath
	}
	return "/usr/bin/make"
}

func findPath() string {
	if config.Common != nil && config.Common.FindPath != "" {
		return config.Common.FindPath
	}
	return "/usr/bin/find"
}

func diffPath() string {
	if config.Common != nil && config.Common.DiffPath != "" {
		return config.Common.DiffPath
	}
	return "/usr/bin/diff"
}

// quoteArg wraps a shell command line into single quotes for the
// tokeniser, escaping embedded quotes.
func quoteArg(argstr string) string {
	out := []byte{'\''}
	for i := 0; i < len(argstr); i++ {
		if argstr[i] == '\'' {
			out = append(out, '\\', '\'')
		} else {
			out = append(out, argstr[i])
		}
	}
	return string(append(out, '\''))
}

// TypePipeInput forwards typed bytes of an interactive buffer's last
// line through the child's PTY.
func (e *Editor) TypePipeInput(text []byte) error {
	b := e.Current()
	if b == nil || b.Flags&buffer.Interact == 0 || b.Pipe.Input == nil {
		return errors.ErrNoBuffer
	}
	if _, err := b.Pipe.Input.Write(text); err != nil {
		return errors.Wrap(errors.ErrWriteFailed, err.Error())
	}
	b.Pipe.LastInputLength = len(text)
	return nil
}
