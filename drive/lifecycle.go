package drive

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// abortRegistry is the process-global set of drives a SIGINT/SIGTERM/SIGHUP
// handler should cancel.: "A global abort handler (installed
// on SIGINT/SIGTERM/SIGHUP if permitted) sets cancel on all drives and marks
// the library for shutdown."
var abortRegistry struct {
	mu      sync.Mutex
	drives  map[*Drive]struct{}
	handler sync.Once
}

func installAbortHandler() {
	abortRegistry.handler.Do(func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		go func() {
			<-ch
			abortRegistry.mu.Lock()
			for d := range abortRegistry.drives {
				d.Cancel()
			}
			abortRegistry.mu.Unlock()
		}()
	})
}

// registerForAbort adds d to the signal-driven cancel set.
func registerForAbort(d *Drive) {
	installAbortHandler()
	abortRegistry.mu.Lock()
	if abortRegistry.drives == nil {
		abortRegistry.drives = make(map[*Drive]struct{})
	}
	abortRegistry.drives[d] = struct{}{}
	abortRegistry.mu.Unlock()
}

// unregisterFromAbort removes d once it is released or disposed.
func unregisterFromAbort(d *Drive) {
	abortRegistry.mu.Lock()
	delete(abortRegistry.drives, d)
	abortRegistry.mu.Unlock()
}

// OpenAndCharacterize runs the Grab -> Probe sequence a typical caller
// needs before issuing any media-level operation, registering d with the
// process abort handler for the duration.
func OpenAndCharacterize(d *Drive, exclusive bool) error {
	if err := d.Grab(exclusive); err != nil {
		return err
	}
	registerForAbort(d)
	return d.Probe()
}

// Close releases d and removes it from the abort handler's set.
func Close(d *Drive) error {
	unregisterFromAbort(d)
	return d.Release()
}
