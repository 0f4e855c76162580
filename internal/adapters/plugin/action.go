package plugin

import (
	"bufio"
	"context"
	"path/filepath"
	"strings"

	"ekam.build/ekam/internal/adapters/shell"
	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports"
	"ekam.build/ekam/internal/engine/action"
	"ekam.build/ekam/internal/engine/eventloop"
	"ekam.build/ekam/internal/engine/promise"
)

// Action runs executable as a subprocess and drives it through the plugin
// line protocol. file is nil for the root "learn" invocation of a rule
// script; otherwise it is the triggering file passed as the subprocess's
// sole argument.
type Action struct {
	executable ports.File
	verb       string
	silent     bool
	file       ports.File
}

func newAction(executable ports.File, verb string, silent bool, file ports.File) *Action {
	return &Action{executable: executable, verb: verb, silent: silent, file: file}
}

func (a *Action) Verb() string { return a.verb }
func (a *Action) Silent() bool { return a.silent }

// Start launches the subprocess and returns a promise that fulfills once it
// exits cleanly and its command stream has been fully consumed, or carries
// ErrActionFailed if it exited with a nonzero or signaled status.
func (a *Action) Start(loop *eventloop.Loop, ctx action.Context) *promise.Promise[action.Void] {
	p, fulfiller := promise.New[action.Void](loop)

	args := []string{}
	if a.file != nil {
		args = append(args, a.file.CanonicalName())
	}

	sp := shell.Subprocess{Executable: a.executable.CanonicalName(), Args: args}
	stdin, stdout, stderr, proc, err := shell.NewExecutor().StartPiped(context.Background(), sp)
	if err != nil {
		fulfiller.Reject(domain.ErrActionFailed)
		return p
	}

	reader := newCommandReader(ctx, a.executable, a.file, stdin)

	stderrDone := make(chan struct{})
	go func() {
		defer close(stderrDone)
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			line := scanner.Text()
			loop.RunAsynchronously(func() { ctx.Log(line) })
		}
	}()

	commandsDone := make(chan struct{})
	go func() {
		defer close(commandsDone)
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := scanner.Text()
			runOnLoop(loop, func() { reader.consume(line) })
		}
		runOnLoop(loop, reader.eof)
		_ = stdin.Close()
	}()

	waitDone := make(chan error, 1)
	go func() {
		waitDone <- proc.Wait()
	}()

	go func() {
		<-commandsDone
		<-stderrDone
		err := <-waitDone
		if err != nil {
			fulfiller.Reject(domain.ErrActionFailed)
			return
		}
		fulfiller.Fulfill(action.Void{})
	}()

	return p
}

// runOnLoop runs cb on loop's goroutine and blocks until it completes. The
// protocol is request-response: a subprocess command line is answered by a
// write to its stdin before it writes its next line, so the goroutine
// scanning stdout must not race ahead to the next line until cb — which
// touches Context state the event-loop thread otherwise owns exclusively —
// has finished.
func runOnLoop(loop *eventloop.Loop, cb func()) {
	done := make(chan struct{})
	loop.RunAsynchronously(func() {
		cb()
		close(done)
	})
	<-done
}

// verbFromExecutable derives a plugin-derived factory's default verb from
// its executable's basename, stripped of its extension — the starting
// point a "verb" command in the protocol may override.
func verbFromExecutable(executable ports.File) string {
	base := filepath.Base(executable.CanonicalName())
	return strings.TrimSuffix(base, filepath.Ext(base))
}
