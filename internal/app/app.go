// Package app implements the application layer: it wires the engine
// (Event Manager, Tag Index, Action Driver, Driver Root) to a Dashboard
// and a Logger and drives one build or one watch session end to end.
package app

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.trai.ch/zerr"

	"ekam.build/ekam/internal/adapters/plugin"
	"ekam.build/ekam/internal/adapters/watcher"
	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports"
	"ekam.build/ekam/internal/engine/driverroot"
	"ekam.build/ekam/internal/engine/eventloop"
)

// RunOptions configures one App.Run invocation.
type RunOptions struct {
	// SourceRoots are the directories the Driver Root walks to discover
	// the initial set of files.
	SourceRoots []string
	// OutputRoot is where derived outputs and install directories live.
	OutputRoot string
	// Concurrency bounds how many actions the Action Driver runs at once.
	Concurrency int
	// Watch keeps the Event Manager alive after the build converges,
	// instead of returning as soon as the Driver Root goes idle.
	Watch bool
}

// Result reports the outcome of a converged build.
type Result struct {
	Passed int
	Failed int
}

// App is the application layer.
type App struct {
	log    ports.Logger
	tracer ports.Tracer
}

// New creates an App logging through log. tracer may be nil, in which case
// the engine records no spans.
func New(log ports.Logger, tracer ports.Tracer) *App {
	return &App{log: log, tracer: tracer}
}

// Run walks opts.SourceRoots, drives the engine to convergence (or
// indefinitely, if opts.Watch), reporting every task to dash. It returns
// once the build has converged and opts.Watch is false, or ctx is
// cancelled.
func (a *App) Run(ctx context.Context, dash ports.Dashboard, opts RunOptions) (Result, error) {
	loop, err := eventloop.New()
	if err != nil {
		return Result{}, zerr.Wrap(err, "failed to start event manager")
	}
	defer func() { _ = loop.Close() }()

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	root := driverroot.New(loop, dash, a.log, a.tracer, opts.SourceRoots, opts.OutputRoot, concurrency)
	root.AddFactory(plugin.NewRootFactory())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var once sync.Once
	if !opts.Watch {
		root.OnIdle(func(int, int) { once.Do(cancel) })
	} else {
		// A converged build with no live OnFileChange/OnReadable handle of
		// its own (no ekam-rule files, or dependencies that are all
		// tag-index subscriptions rather than loop handles) would otherwise
		// let Run observe isIdle() and return, exiting watch mode like a
		// one-shot build. Hold keeps Run blocked for the whole watch
		// session regardless of what else is live.
		hold := loop.Hold()
		stopWatch := a.watchForNewFiles(loop, root, opts.SourceRoots)
		defer func() {
			stopWatch()
			hold.Cancel()
		}()
	}

	if err := root.Start(ctx); err != nil {
		return Result{}, err
	}

	loop.Run(runCtx)

	passed, failed := root.Census()
	result := Result{Passed: passed, Failed: failed}
	if failed > 0 {
		return result, domain.ErrActionFailed
	}
	return result, nil
}

// watchForNewFiles reseeds root whenever a new file appears under one of
// sourceRoots, the one part of watch mode that falls outside the ordinary
// tag-dependency graph: a brand-new file has no provider subscription for
// anything to react to. It returns a function that stops every watcher
// started.
func (a *App) watchForNewFiles(loop *eventloop.Loop, root *driverroot.Root, sourceRoots []string) func() {
	var watchers []ports.Watcher
	for _, dir := range sourceRoots {
		w, err := watcher.NewWatcher()
		if err != nil {
			a.log.Warn(fmt.Sprintf("failed to start watcher for %s: %s", dir, err))
			continue
		}
		if err := w.Start(context.Background(), dir); err != nil {
			a.log.Warn(fmt.Sprintf("failed to watch %s: %s", dir, err))
			continue
		}
		watchers = append(watchers, w)

		go func(w ports.Watcher) {
			for event := range w.Events() {
				if event.Operation != ports.OpCreate {
					continue
				}
				path := event.Path
				loop.RunAsynchronously(func() {
					if err := root.Seed(path); err != nil {
						a.log.Warn(fmt.Sprintf("failed to seed new file %s: %s", path, err))
					}
				})
			}
		}(w)
	}

	return func() {
		for _, w := range watchers {
			_ = w.Stop()
		}
	}
}

// Clean removes outputRoot, deleting every derived output and install
// directory the Driver Root has ever produced.
func (a *App) Clean(_ context.Context, outputRoot string) error {
	a.log.Info("removing build outputs")
	if err := os.RemoveAll(outputRoot); err != nil {
		return zerr.Wrap(err, "failed to remove build outputs")
	}
	a.log.Info("removed build outputs")
	return nil
}

