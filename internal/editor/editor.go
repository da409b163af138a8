// Package editor owns the runtime state of one editor process: the
// buffer ring, the single selection, bookmarks, motion history, the
// external-process commands and the cooperative main loop. There are
// no singletons; commands receive the Editor value.
package editor

import (
	"os"

	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/line"
	"github.com/tved/tved/internal/errors"
	"github.com/tved/tved/internal/io/logger"
	"github.com/tved/tved/internal/pipe"
	"github.com/tved/tved/internal/regex"
)

// Editor is the explicit runtime state threaded through all commands.
type Editor struct {
	Ring *buffer.Ring

	// SelectRI is the ring index holding the selection (-1: none);
	// SelectW is the watch line biasing selection growth.
	SelectRI int
	SelectW  int

	Bookmarks [10]Bookmark
	MHist     []Motion

	watcher *watcher
}

// Bookmark pairs a ring index with a sample of the marked line.
type Bookmark struct {
	RI     int
	Sample string
}

// Motion is one entry of the jump-back stack.
type Motion struct {
	RI     int
	Lineno int
}

// New creates an editor with an empty ring.
func New() *Editor {
	e := &Editor{
		Ring:     buffer.NewRing(),
		SelectRI: -1,
	}
	for i := range e.Bookmarks {
		e.Bookmarks[i].RI = -1
	}
	return e
}

// Current returns the current buffer, nil with an empty ring.
func (e *Editor) Current() *buffer.Buffer {
	return e.Ring.Current()
}

// hookBuffer installs the line-removal hook clearing bookmarks.
func (e *Editor) hookBuffer(b *buffer.Buffer) {
	b.OnLineRemove = func(l *line.Line) {
		e.clrOptBookmark(l)
	}
}

// AddFile opens a file into a new ring slot, or switches to the slot
// already holding the same inode.
func (e *Editor) AddFile(path string) error {
	if fi, err := os.Stat(path); err == nil {
		if st := fi.Sys(); st != nil {
			if ri := e.Ring.QueryInode(inodeOf(fi)); ri >= 0 {
				e.Ring.Curr = ri
				return nil
			}
		}
	}

	origin := e.Ring.Curr
	hadBuffers := e.Ring.Size > 0
	b, err := e.Ring.Allocate()
	if err != nil {
		logger.Tracemsg("no free buffer slot")
		return err
	}
	e.hookBuffer(b)

	if err := b.Open(path); err != nil {
		logger.Tracemsg("cannot open [%s]", path)
		e.Ring.Drop()
		return err
	}
	if hadBuffers {
		b.Origin = origin
	}
	e.watchFile(b)
	return nil
}

// ScratchBuffer opens or switches to the special buffer with the
// given name.
func (e *Editor) ScratchBuffer(name string) (*buffer.Buffer, error) {
	if ri := e.Ring.QueryScratchName(name); ri >= 0 {
		e.Ring.Curr = ri
		return e.Ring.Current(), nil
	}
	b, err := e.Ring.Allocate()
	if err != nil {
		logger.Tracemsg("no free buffer slot")
		return nil, err
	}
	e.hookBuffer(b)
	b.Fname = name
	b.Flags |= buffer.Special
	b.Flags &^= buffer.Cmd
	return b, nil
}

// DropBuffer closes the current buffer: stops its child, forgets the
// bookmarks and motion history pointing at it, resets the selection
// when it lives here, then releases the slot.
func (e *Editor) DropBuffer() error {
	b := e.Current()
	if b == nil {
		return errors.ErrNoBuffer
	}
	ri := b.Index

	pipe.Stop(b)
	b.SearchRe = regex.Pattern{}
	b.HighlightRe = regex.Pattern{}

	if e.SelectRI == ri {
		e.ResetSelect()
	}
	e.clearBookmarks(ri)
	e.mhistClear(ri)
	e.unwatchFile(b)

	return e.Ring.Drop()
}

// NextFile cycles forward in the ring.
func (e *Editor) NextFile() error {
	return e.Ring.NextFile()
}

// PrevFile cycles backward in the ring.
func (e *Editor) PrevFile() error {
	return e.Ring.PrevFile()
}

// CheckFiles re-stats every open regular buffer (the ~5s idle sweep).
func (e *Editor) CheckFiles() {
	for ri := 0; ri < len(e.Ring.Slots); ri++ {
		if b := e.Ring.Slots[ri]; b != nil && b.Flags&buffer.Open != 0 {
			b.Restat()
		}
	}
}

// SaveCurrent saves the current buffer.
func (e *Editor) SaveCurrent() error {
	b := e.Current()
	if b == nil {
		return errors.ErrNoBuffer
	}
	return b.Save()
}
