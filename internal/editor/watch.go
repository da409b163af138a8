package editor

import (
	"github.com/fsnotify/fsnotify"

	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/io/logger"
)

// watcher marks buffers EXTCH as soon as the kernel reports a write,
// between the periodic re-stat sweeps.
type watcher struct {
	fsw *fsnotify.Watcher
}

// watchFile registers a buffer's on-disk file with the watcher,
// creating the watcher lazily. Failures only degrade to the periodic
// re-stat.
func (e *Editor) watchFile(b *buffer.Buffer) {
	if b.Fpath == "" || b.Flags&buffer.Scratch != 0 {
		return
	}
	if e.watcher == nil {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			logger.Debug("fsnotify unavailable", err)
			return
		}
		e.watcher = &watcher{fsw: fsw}
	}
	if err := e.watcher.fsw.Add(b.Fpath); err != nil {
		logger.Debug("watch", b.Fpath, err)
	}
}

// unwatchFile removes a buffer's file from the watcher.
func (e *Editor) unwatchFile(b *buffer.Buffer) {
	if e.watcher == nil || b.Fpath == "" {
		return
	}
	e.watcher.fsw.Remove(b.Fpath)
}

// drainWatch consumes the pending notifications and re-stats the
// touched buffers immediately.
func (e *Editor) drainWatch() bool {
	if e.watcher == nil {
		return false
	}
	changed := false
	for {
		select {
		case ev, ok := <-e.watcher.fsw.Events:
			if !ok {
				return changed
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			for ri := 0; ri < len(e.Ring.Slots); ri++ {
				b := e.Ring.Slots[ri]
				if b != nil && b.Flags&buffer.Open != 0 && b.Fpath == ev.Name {
					if b.Restat() != 0 {
						changed = true
					}
				}
			}
		case err, ok := <-e.watcher.fsw.Errors:
			if !ok {
				return changed
			}
			logger.Debug("fsnotify", err)
		default:
			return changed
		}
	}
}

// stopWatch tears the watcher down on shutdown.
func (e *Editor) stopWatch() {
	if e.watcher != nil {
		e.watcher.fsw.Close()
		e.watcher = nil
	}
}
