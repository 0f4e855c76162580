// Package eventloop implements the Event Manager: a single-threaded
// cooperative scheduler over OS primitives. It exposes five async
// operations, each returning a Handle whose drop cancels the pending work
// with no further callback, and a Run loop that dispatches exactly one
// handler per turn.
package eventloop

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sys/unix"
)

// Handle cancels a previously registered asynchronous operation. Dropping
// it before the operation fires guarantees the callback never runs;
// calling Cancel after it has already fired is a harmless no-op.
type Handle interface {
	Cancel()
}

// handle is the shared cancellation token behind every primitive below.
// settled guards the exactly-once transition out of "live": whichever of
// Cancel or firing wins the race performs the loop's live-count decrement,
// the other is a no-op.
type handle struct {
	canceled atomic.Bool
	settled  atomic.Bool
	cleanup  func()
}

func (h *handle) Cancel() {
	h.canceled.Store(true)
	if h.cleanup != nil {
		h.cleanup()
	}
}

// Loop is the Event Manager. It owns one dispatch channel ("turns") and
// every primitive delivers exactly one send on it per firing, which is how
// "only one handler runs per turn, never re-entrantly" is enforced: a
// callback running on the loop goroutine can only enqueue further turns,
// never invoke one directly.
type Loop struct {
	turns chan func()

	mu      sync.Mutex
	live    int
	watcher *fsnotify.Watcher
	watches map[string][]*fileWatch
}

type fileWatch struct {
	h  *handle
	cb func()
}

// New creates a Loop backed by an fsnotify watcher for onFileChange.
func New() (*Loop, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	l := &Loop{
		turns:   make(chan func(), 256),
		watches: make(map[string][]*fileWatch),
		watcher: w,
	}
	go l.pumpFsEvents()
	go func() {
		for range w.Errors {
		}
	}()
	return l, nil
}

// Run blocks, dispatching one handler per turn, until there are no live
// async operations and no pending turns, or ctx is cancelled. Syscall-level
// failures from inside the loop's own primitives are fatal per the
// failure model; they panic rather than return, since the loop is a
// trusted subsystem with no well-defined recovery.
func (l *Loop) Run(ctx context.Context) {
	for {
		if l.isIdle() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case turn := <-l.turns:
			turn()
		}
	}
}

func (l *Loop) isIdle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.live == 0 && len(l.turns) == 0
}

// Close releases the underlying fsnotify watcher. Call it after Run
// returns.
func (l *Loop) Close() error {
	return l.watcher.Close()
}

func (l *Loop) track() {
	l.mu.Lock()
	l.live++
	l.mu.Unlock()
}

func (l *Loop) untrack() {
	l.mu.Lock()
	if l.live > 0 {
		l.live--
	}
	l.mu.Unlock()
}

// settle performs the exactly-once live-count decrement for h. It returns
// true if this call won the race (the caller should treat the operation as
// genuinely settled by it), false if the operation was already settled by
// a concurrent Cancel or delivery.
func (l *Loop) settle(h *handle) bool {
	if h.settled.CompareAndSwap(false, true) {
		l.untrack()
		return true
	}
	return false
}

func (l *Loop) newHandle(cleanup func()) *handle {
	l.track()
	h := &handle{}
	h.cleanup = func() {
		l.settle(h)
		if cleanup != nil {
			cleanup()
		}
	}
	return h
}

// deliver enqueues cb's turn. If h was cancelled before this turn is
// dispatched, the turn settles the handle (a no-op if Cancel already did)
// and skips cb.
func (l *Loop) deliver(h *handle, cb func()) {
	l.turns <- func() {
		wasCanceled := h.canceled.Load()
		if l.settle(h) && !wasCanceled {
			cb()
		}
	}
}

// RunAsynchronously schedules cb to run on a later turn, after any OS
// events already pending this turn are drained. Multiple yields run in
// FIFO order.
func (l *Loop) RunAsynchronously(cb func()) Handle {
	h := l.newHandle(nil)
	l.deliver(h, cb)
	return h
}

// Hold creates a Handle that counts as live until Cancel is called, with no
// callback ever delivered. A caller that needs Run to keep blocking for as
// long as some condition outside the loop's own primitives holds — watch
// mode staying open regardless of whether any individual OnFileChange/
// OnReadable handle happens to be registered right now — cancels it when
// that condition ends.
func (l *Loop) Hold() Handle {
	return l.newHandle(nil)
}

// OnProcessExit waits for proc to terminate and delivers its raw exit
// status; a negative status indicates death by signal, matching the
// convention the driver's process-owning records interpret.
func (l *Loop) OnProcessExit(proc *os.Process, cb func(status int)) Handle {
	h := l.newHandle(nil)
	go func() {
		state, err := proc.Wait()
		if h.canceled.Load() {
			return
		}
		status := 0
		if err == nil {
			status = state.ExitCode()
		} else if ws, ok := state.Sys().(interface{ Signal() (int, bool) }); ok {
			if sig, signalled := ws.Signal(); signalled {
				status = -sig
			}
		}
		l.deliver(h, func() { cb(status) })
	}()
	return h
}

// OnReadable delivers cb the first time f becomes readable. It is
// one-shot: re-register after each firing to keep watching.
func (l *Loop) OnReadable(f *os.File, cb func()) Handle {
	return l.poll(f, unix.POLLIN, cb)
}

// OnWritable delivers cb the first time f becomes writable. One-shot, like
// OnReadable.
func (l *Loop) OnWritable(f *os.File, cb func()) Handle {
	return l.poll(f, unix.POLLOUT, cb)
}

func (l *Loop) poll(f *os.File, events int16, cb func()) Handle {
	h := l.newHandle(nil)
	go func() {
		fd := int32(f.Fd())
		for {
			if h.canceled.Load() {
				return
			}
			fds := []unix.PollFd{{Fd: fd, Events: events}}
			// A short timeout lets the loop observe cancellation promptly
			// instead of blocking forever on a descriptor that never fires.
			n, err := unix.Poll(fds, 200)
			if err != nil {
				if err == unix.EINTR {
					continue
				}
				panic(err)
			}
			if n > 0 {
				l.deliver(h, cb)
				return
			}
		}
	}()
	return h
}

// OnFileChange delivers cb the next time path's contents, existence, or
// type changes. One-shot; re-register to keep watching.
func (l *Loop) OnFileChange(path string, cb func()) (Handle, error) {
	l.mu.Lock()
	if err := l.watcher.Add(path); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	fw := &fileWatch{cb: cb}
	h := l.newHandle(func() {
		l.mu.Lock()
		l.removeWatchLocked(path, fw)
		l.mu.Unlock()
	})
	fw.h = h
	l.watches[path] = append(l.watches[path], fw)
	l.mu.Unlock()
	return h, nil
}

func (l *Loop) removeWatchLocked(path string, target *fileWatch) {
	ws := l.watches[path]
	for i, w := range ws {
		if w == target {
			l.watches[path] = append(ws[:i], ws[i+1:]...)
			break
		}
	}
	if len(l.watches[path]) == 0 {
		delete(l.watches, path)
		_ = l.watcher.Remove(path)
	}
}

func (l *Loop) pumpFsEvents() {
	for event := range l.watcher.Events {
		l.mu.Lock()
		ws := l.watches[event.Name]
		delete(l.watches, event.Name)
		l.mu.Unlock()
		for _, w := range ws {
			if w.h.canceled.Load() {
				continue
			}
			l.deliver(w.h, w.cb)
		}
	}
}
