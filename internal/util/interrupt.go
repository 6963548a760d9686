package util

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SetupInterruptHandler returns a context cancelled on the first SIGINT or
// SIGTERM. A second signal exits immediately. The returned stop func
// releases the handler and cancels the context.
func SetupInterruptHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go watchInterrupts(sig, done, ctx.Done(), cancel, os.Exit)

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(sig)
			close(done)
			cancel()
		})
	}
}

// watchInterrupts cancels on the first signal and calls exit on the second.
// It returns once done is closed, or when ctx ends before any signal.
func watchInterrupts(sig <-chan os.Signal, done, ctxDone <-chan struct{}, cancel context.CancelFunc, exit func(int)) {
	select {
	case <-sig:
	case <-ctxDone:
		return
	case <-done:
		return
	}

	fmt.Fprintln(os.Stderr, "\nInterrupt received. Stopping...")
	cancel()

	select {
	case <-sig:
		fmt.Fprintln(os.Stderr, "\nExiting due to interrupt.")
		exit(1)
	case <-done:
	}
}
