package editor

import (
	"bufio"
	"os"

	"github.com/tved/tved/internal/config"
	"github.com/tved/tved/internal/diffload"
	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/line"
	"github.com/tved/tved/internal/errors"
	"github.com/tved/tved/internal/io/logger"
	"github.com/tved/tved/internal/pipe"
)

// ReloadByDiff reloads the current regular buffer from disk smoothly,
// applying only the differences and keeping line attributes and
// bookmarks where possible. Errors keep the partial changes and leave
// CHANGE set so the user is warned.
func (e *Editor) ReloadByDiff() error {
	b := e.Current()
	if b == nil || b.Flags&buffer.Open == 0 || b.Flags&buffer.Special != 0 {
		// not for special buffers
		return nil
	}

	// refresh access and the stat snapshot
	fd, err := os.OpenFile(b.Fpath, os.O_RDWR, 0)
	if err == nil {
		b.Flags &^= buffer.RO
	} else {
		fd, err = os.Open(b.Fpath)
		if err == nil {
			b.Flags |= buffer.RO
		}
	}
	if err != nil {
		logger.Tracemsg("Cannot reload file [%s]: %s.", b.Fname, err.Error())
		b.Flags |= buffer.Scratch
		return errors.Wrap(errors.ErrReadFailed, err.Error())
	}
	if fi, serr := fd.Stat(); serr == nil {
		b.Stat = fi
	}
	fd.Close()

	argstr := "diff - " + b.Fpath
	if config.Common != nil && config.Common.FixCR {
		// diff should behave like the input sanitiser
		argstr = "diff --strip-trailing-cr - " + b.Fpath
	}

	if err := e.ReadPipe("*notused*", diffPath(), argstr,
		pipe.OptNoScratch|pipe.OptInOutRealAll); err != nil {
		logger.Tracemsg("reload failed")
		return err
	}

	origLineno := b.Lineno
	b.GoTop()

	m := diffload.New(b, origLineno)
	var applyErr error
	scanner := bufio.NewScanner(b.Pipe.Output)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if applyErr = m.Feed(scanner.Bytes()); applyErr != nil {
			break
		}
	}

	b.Flags &^= buffer.ExtCh | buffer.Scratch | buffer.RO | buffer.Change

	if applyErr != nil {
		logger.Debug("diff apply", applyErr)
		b.GoBottom()
		b.Flags |= buffer.Change
	} else {
		b.GoTop()
		if lp := b.GotoLineno(m.OrigLineno); lp != nil && lp.IsText() {
			b.SetPosition(m.OrigLineno, lp)
		} else {
			// out of range, can happen
			b.GoBottom()
		}
	}

	// selection handling
	if e.SelectRI == b.Index {
		e.RecoverSelection()
	}

	pipe.Wait4(b)

	if applyErr != nil {
		logger.Tracemsg("reload failed")
		return applyErr
	}

	if m.Actions > 0 {
		logger.Tracemsg("reload done")
	} else {
		logger.Tracemsg("identical")
	}
	// even identical lines may carry the change bit
	for lp := b.Top.Next(); lp.IsText(); lp = lp.Next() {
		if lp.Flags&line.Change != 0 {
			lp.Flags |= line.Alter
			lp.Flags &^= line.Change
		}
	}
	return nil
}

// ReloadHard drops the current buffer's content and re-reads the
// file from disk, losing line attributes.
func (e *Editor) ReloadHard() error {
	b := e.Current()
	if b == nil {
		return errors.ErrNoBuffer
	}
	pipe.Stop(b)
	if e.SelectRI == b.Index {
		e.ResetSelect()
	}
	return b.HardReload()
}

// ShowDiff pipes a unified diff of the buffer against its on-disk
// file into the *diff* scratch buffer.
func (e *Editor) ShowDiff(diffOpts string) error {
	b := e.Current()
	if b == nil || b.Flags&buffer.Open == 0 || b.Flags&buffer.Special != 0 {
		return nil
	}

	argstr := "diff -u"
	if diffOpts != "" {
		argstr += " " + diffOpts
	}
	argstr += " - " + b.Fpath

	return e.ReadPipe("*diff*", diffPath(), argstr,
		pipe.OptNoApp|pipe.OptInOutRealAll)
}
