package buffer

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/DataDog/zstd"
	"github.com/tved/tved/internal/config"
	"github.com/tved/tved/internal/constants"
	"github.com/tved/tved/internal/edit/line"
	"github.com/tved/tved/internal/errors"
	"github.com/tved/tved/internal/io/logger"
	"github.com/tved/tved/internal/io/pool"
)

// statInode extracts the inode from a stat snapshot, 0 when unknown.
func statInode(fi os.FileInfo) uint64 {
	if fi == nil {
		return 0
	}
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		return st.Ino
	}
	return 0
}

// SanitizeLine fixes inline CR and CR/LF and drops control chars:
// TAB passes, backspace collapses, CR survives only when FixCR is
// off. It reports whether the line needed fixing. The pipe plane
// filters its child output through the same rules.
func SanitizeLine(in []byte, fixCR bool) ([]byte, bool) {
	out := make([]byte, 0, len(in))
	changed := false

	for i := 0; i < len(in); i++ {
		ch := in[i]
		switch {
		case ch == '\n':
			if !fixCR && i > 0 && in[i-1] == '\r' {
				out = append(out, '\r')
			}
			out = append(out, '\n')
			return out, changed
		case ch == '\t':
			out = append(out, ch)
		case ch == 0x08:
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			changed = true
		case ch >= 0x20 && ch != 0x7f:
			// printable (but maybe utf-8)
			out = append(out, ch)
		default:
			// CR or control character
			changed = true
		}
	}
	return out, changed
}

// openReader opens the on-disk file for reading, transparently
// decompressing zstd archives (those buffers become read-only).
func openReader(path string) (io.ReadCloser, bool, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	if strings.HasSuffix(path, ".zst") {
		return struct {
			io.Reader
			io.Closer
		}{zstd.NewReader(fd), fd}, true, nil
	}
	return fd, false, nil
}

// ReadLines reads all lines from a stream after the given line,
// sanitising input and marking fixed lines CHANGE. Returns the count
// of appended lines.
func (b *Buffer) ReadLines(reader io.Reader, after *line.Line) (int, error) {
	r := bufio.NewReaderSize(reader, constants.ReadBufferSize)
	fixCR := config.Common != nil && config.Common.FixCR
	lp := after
	count := 0

	message := pool.BytesBuffer.Get().(*bytes.Buffer)
	defer pool.RecycleBytesBuffer(message)

	for {
		frag, err := r.ReadSlice('\n')
		if len(frag) > 0 {
			message.Write(frag)
		}
		if err == bufio.ErrBufferFull {
			// long line, keep collecting fragments
			continue
		}
		if message.Len() > 0 {
			text, changed := SanitizeLine(message.Bytes(), fixCR)
			lx := b.Append(lp, text)
			if lx == nil {
				return count, errors.ErrReadFailed
			}
			if changed {
				lx.Flags |= line.Change
			}
			lp = lx
			count++
			message.Reset()
		}
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
	}
}

// Open loads a file from disk into this (empty) buffer, setting the
// identity fields, the stat snapshot and the RO flag when write access
// is missing. A missing file leaves an empty scratch-backed buffer
// carrying the name.
func (b *Buffer) Open(path string) error {
	full, err := filepath.Abs(path)
	if err != nil {
		full = path
	}
	b.Fname = path
	b.Fpath = full
	b.Basename = filepath.Base(full)
	b.Dirname = filepath.Dir(full)
	b.Ftype = DetectFtype(full)

	fi, err := os.Stat(full)
	if err != nil {
		// new file: keep the scratch flag until the first save
		logger.Debug("open", path, "no such file, new buffer")
		b.Flags &^= Cmd
		return nil
	}
	if !fi.Mode().IsRegular() {
		return errors.ErrNotRegular
	}
	b.Stat = fi

	reader, compressed, err := openReader(full)
	if err != nil {
		if os.IsPermission(err) {
			b.Flags |= RO
		}
		return errors.Wrapf(err, "cannot open [%s]", path)
	}
	defer reader.Close()

	if _, err := b.ReadLines(reader, b.Top); err != nil {
		return err
	}

	b.Flags &^= Scratch | Cmd
	if compressed || !writable(full) {
		b.Flags |= RO
	}
	b.Curr = b.Top.Next()
	b.Lineno = 1
	if !b.Curr.IsText() {
		b.Curr = b.Top
		b.Lineno = 0
	}
	return nil
}

func writable(path string) bool {
	fd, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	fd.Close()
	return true
}

// backupFile copies the on-disk file to <path>~ before a save, falling
// back to /tmp/<base>~ when the directory is not writable. Returns the
// backup name; a missing source is not an error.
func backupFile(path string) (string, error) {
	ext := "~"
	if config.Common != nil && config.Common.BackupExt != "" {
		ext = config.Common.BackupExt
	}
	backup := path + ext

	src, err := os.Open(path)
	if err != nil {
		return "", nil // nothing on disk yet
	}
	defer src.Close()

	dst, err := os.OpenFile(backup, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		// 2nd chance
		backup = filepath.Join(os.TempDir(), filepath.Base(path)+ext)
		dst, err = os.OpenFile(backup, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return "", errors.Wrap(errors.ErrBackup, backup)
		}
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return backup, errors.Wrap(errors.ErrBackup, err.Error())
	}
	return backup, nil
}

// Save writes the buffer to disk: backup first, then unlink-and-create
// (in place when SaveInode is set). On success every line's CHANGE bit
// folds into the sticky ALTER bit and the stat snapshot is refreshed.
// Failures set RO (and SCRATCH when even reading fails back) so the
// user is warned.
func (b *Buffer) Save() error {
	if b.Flags&Special != 0 {
		// do not save temporary buffers
		return nil
	}
	if b.Flags&Change == 0 {
		return nil
	}
	return b.writeOut(b.Fpath, false)
}

// SaveAs writes the buffer to a new path. Overwriting a different
// existing inode is refused; the same inode is allowed.
func (b *Buffer) SaveAs(path string) error {
	full, err := filepath.Abs(path)
	if err != nil {
		full = path
	}
	if fi, err := os.Stat(full); err == nil {
		if statInode(fi) != statInode(b.Stat) {
			logger.Tracemsg("file [%s] exist. choose another.", path)
			return errors.ErrFileExists
		}
	}
	if err := b.writeOut(full, true); err != nil {
		return err
	}
	b.Fname = path
	b.Fpath = full
	b.Basename = filepath.Base(full)
	b.Dirname = filepath.Dir(full)
	b.Ftype = DetectFtype(full)
	return nil
}

func (b *Buffer) writeOut(path string, saveAs bool) error {
	backup, err := backupFile(path)
	if err != nil {
		logger.Tracemsg("backup failed. save aborted.")
		return err
	}

	if config.Common == nil || !config.Common.SaveInode {
		// unlink file before save to get an independent inode
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Debug("unlink before save", path, err)
		}
	}

	fd, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		logger.Tracemsg("cannot open [%s] for write.", path)
		b.Flags |= RO
		if _, rerr := os.Stat(b.Fpath); rerr != nil {
			b.Flags |= Scratch
		}
		return errors.Wrap(errors.ErrWriteFailed, err.Error())
	}

	w := bufio.NewWriterSize(fd, constants.ReadBufferSize)
	writeErr := error(nil)
	for lp := b.Top.Next(); lp.IsText(); lp = lp.Next() {
		if lp.Flags&line.Change != 0 {
			lp.Flags |= line.Alter
			lp.Flags &^= line.Change
		}
		if _, err := w.Write(lp.Buff); err != nil {
			writeErr = err
			break
		}
	}
	if err := w.Flush(); err != nil && writeErr == nil {
		writeErr = err
	}
	if fi, err := fd.Stat(); err == nil && writeErr == nil {
		b.Stat = fi
	}
	fd.Close()

	if writeErr != nil {
		logger.Tracemsg("Warning: save [%s] failed!", path)
		return errors.Wrap(errors.ErrWriteFailed, writeErr.Error())
	}

	if config.Common != nil && config.Common.NoKeep && backup != "" {
		os.Remove(backup)
	}
	b.Flags &^= Change | ChMask | Scratch | Special | RO | ExtCh
	logger.Tracemsg("file saved: %s", path)
	return nil
}

// Restat re-stats the on-disk file. A newer mtime sets ExtCh once; a
// vanished or inaccessible file degrades the buffer to SCRATCH/RO.
func (b *Buffer) Restat() int {
	if b.Flags&Open == 0 || b.Flags&Scratch != 0 || b.Fpath == "" {
		return 0
	}

	fi, err := os.Stat(b.Fpath)
	if err != nil {
		logger.Tracemsg("cannot stat %s file!", b.Fname)
		b.Flags |= Scratch
		return 0x100
	}

	ret := 0
	switch {
	case statInode(fi) != statInode(b.Stat):
		logger.Tracemsg("file %s on disk has new inode", b.Fname)
	case b.Stat != nil && fi.ModTime().After(b.Stat.ModTime()):
		if b.Flags&ExtCh == 0 {
			logger.Tracemsg("file %s modified on disk!!", b.Fname)
			b.Flags |= ExtCh
			ret = 1
		}
	case b.Flags&ExtCh != 0:
		b.Flags &^= ExtCh
		ret = 2
	}

	if writable(b.Fpath) {
		if b.Flags&RO != 0 {
			b.Flags &^= RO
			ret |= 16
		}
	} else if b.Flags&RO == 0 {
		b.Flags |= RO
		ret |= 4
	}

	return ret
}

// Clean empties the buffer's text area but keeps the search expression
// and the stat snapshot.
func (b *Buffer) Clean() {
	b.Flags = Scratch | Cmd | Open | FilterMaskAll |
		(b.Flags & (Special | NoEdit | NoAddLine | NoDelLine))
	b.Lineno = 0
	b.Lncol = 0
	b.Lnoff = 0
	b.Focus = 0
	b.Curpos = 0
	b.FLevel = 1
	lp := b.Top.Next()
	for lp.IsText() {
		lp = b.RemoveLine(lp)
	}
	b.NumLines = 0
	b.Curr = b.Top
}

// HardReload clears the line list and re-reads the file from disk.
func (b *Buffer) HardReload() error {
	if b.Fpath == "" || b.Flags&Special != 0 {
		return errors.ErrNotRegular
	}
	oldLineno := b.Lineno
	b.Clean()

	fi, err := os.Stat(b.Fpath)
	if err != nil {
		return errors.Wrapf(err, "cannot reload [%s]", b.Fname)
	}
	b.Stat = fi

	reader, compressed, err := openReader(b.Fpath)
	if err != nil {
		return errors.Wrapf(err, "cannot reload [%s]", b.Fname)
	}
	defer reader.Close()

	if _, err := b.ReadLines(reader, b.Top); err != nil {
		return err
	}
	b.Flags &^= Scratch | Cmd | ExtCh | Change
	if compressed || !writable(b.Fpath) {
		b.Flags |= RO
	}

	if lp := b.GotoLineno(oldLineno); lp != nil && lp.IsText() {
		b.SetPosition(oldLineno, lp)
	} else {
		b.GoBottom()
	}
	return nil
}
