// Package signal wires the process signals into channels the main
// loop can select on.
package signal

import (
	"context"
	"os"
	gosignal "os/signal"
	"syscall"
)

// InterruptCh returns a channel firing on termination signals.
func InterruptCh(ctx context.Context) <-chan os.Signal {
	sigCh := make(chan os.Signal, 10)
	gosignal.Notify(sigCh, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)

	out := make(chan os.Signal)
	go func() {
		for {
			select {
			case sig := <-sigCh:
				select {
				case out <- sig:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// ResizeCh returns a channel firing on terminal size changes.
func ResizeCh(ctx context.Context) <-chan struct{} {
	winchCh := make(chan os.Signal, 10)
	gosignal.Notify(winchCh, syscall.SIGWINCH)

	out := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-winchCh:
				select {
				case out <- struct{}{}:
				default:
					// a pending resize is enough
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
