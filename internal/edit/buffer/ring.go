package buffer

import (
	"github.com/tved/tved/internal/constants"
	"github.com/tved/tved/internal/errors"
	"github.com/tved/tved/internal/regex"
)

// Ring is the fixed-capacity array of buffer slots.
type Ring struct {
	Slots [constants.RingSize]*Buffer
	// Curr is the current slot index, Size the open count.
	Curr int
	Size int
}

// NewRing returns an empty ring.
func NewRing() *Ring {
	return &Ring{}
}

// Current returns the current buffer, nil when the ring is empty.
func (r *Ring) Current() *Buffer {
	if r.Curr < 0 || r.Curr >= constants.RingSize {
		return nil
	}
	return r.Slots[r.Curr]
}

// open tells whether a slot holds an open buffer.
func (r *Ring) open(ri int) bool {
	return ri >= 0 && ri < constants.RingSize &&
		r.Slots[ri] != nil && r.Slots[ri].Flags&Open != 0
}

// Allocate finds a free slot, creates an empty buffer there and makes
// it current.
func (r *Ring) Allocate() (*Buffer, error) {
	for ri := 0; ri < constants.RingSize; ri++ {
		if !r.open(ri) {
			b := New(ri)
			r.Slots[ri] = b
			r.Curr = ri
			r.Size++
			return b, nil
		}
	}
	return nil, errors.ErrRingFull
}

// NextFile switches to the next open buffer, skipping hidden ones
// unless only hidden buffers remain, then force-unhides the landing
// buffer.
func (r *Ring) NextFile() error {
	return r.cycle(+1)
}

// PrevFile switches to the previous open buffer with the same hidden
// handling.
func (r *Ring) PrevFile() error {
	return r.cycle(-1)
}

func (r *Ring) cycle(dir int) error {
	if r.Size <= 0 {
		return nil // accepted failure
	}

	step := func(ri int) int {
		ri += dir
		if ri >= constants.RingSize {
			return 0
		}
		if ri < 0 {
			return constants.RingSize - 1
		}
		return ri
	}

	ri := r.Curr
	for {
		ri = step(ri)
		if r.open(ri) && r.Slots[ri].Flags&Hidden == 0 {
			break
		}
		if ri == r.Curr {
			break
		}
	}

	if ri == r.Curr && (!r.open(ri) || r.Slots[ri].Flags&Hidden != 0) {
		// try again but allow hidden buffers also
		for {
			ri = step(ri)
			if r.open(ri) {
				r.Slots[ri].Flags &^= Hidden // force unhide here
				break
			}
			if ri == r.Curr {
				break
			}
		}
	}

	if !r.open(ri) {
		return errors.ErrNoBuffer
	}

	r.Curr = ri
	return nil
}

// QueryInode returns the slot of the open non-scratch buffer holding
// the given inode, -1 when there is none.
func (r *Ring) QueryInode(inode uint64) int {
	for ri := 0; ri < constants.RingSize; ri++ {
		if !r.open(ri) || r.Slots[ri].Flags&Scratch != 0 {
			continue
		}
		if statInode(r.Slots[ri].Stat) == inode {
			return ri
		}
	}
	return -1
}

// QueryScratchName returns the slot of the open special buffer with
// the given display name, -1 when there is none.
func (r *Ring) QueryScratchName(fname string) int {
	for ri := 0; ri < constants.RingSize; ri++ {
		if r.open(ri) && r.Slots[ri].Flags&Special != 0 &&
			r.Slots[ri].Fname == fname {
			return ri
		}
	}
	return -1
}

// Drop closes the current buffer: frees the compiled regexes and the
// line list, releases the slot and switches to the recorded origin
// buffer when still open, otherwise to the next file.
func (r *Ring) Drop() error {
	b := r.Current()
	if b == nil || b.Flags&Open == 0 {
		return errors.ErrNoBuffer
	}

	b.SearchRe = regex.Pattern{}
	b.HighlightRe = regex.Pattern{}
	b.Flags &^= Tag2 | Tag3 | Tag4 | Tag5 | Tag6

	lp := b.Top.Next()
	for lp.IsText() {
		lp = b.RemoveLine(lp)
	}

	origin := b.Origin
	b.Flags = 0
	r.Slots[r.Curr] = nil
	r.Size--

	if r.Size == 0 {
		return nil
	}
	if origin >= 0 && r.open(origin) {
		r.Curr = origin
		return nil
	}
	return r.NextFile()
}
