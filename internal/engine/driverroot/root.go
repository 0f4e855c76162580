// Package driverroot implements the Driver Root: it owns the set of
// registered Factories, the Tag Index, and the Action Driver, and performs
// the initial filesystem walk that seeds everything else with work.
package driverroot

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/zerr"

	"ekam.build/ekam/internal/adapters/fs"
	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports"
	"ekam.build/ekam/internal/engine/action"
	"ekam.build/ekam/internal/engine/actiondriver"
	"ekam.build/ekam/internal/engine/eventloop"
	"ekam.build/ekam/internal/engine/tagindex"
)

// fsOwner is the Tag Index owner recorded against every file discovered by
// the initial walk or by Seed. Disk files are never retracted; Seed checks
// ownership under this constant to skip a path that is already known.
const fsOwner = "driverroot:fs"

// Root is the Driver Root.
type Root struct {
	loop   *eventloop.Loop
	tags   *tagindex.Index
	driver *actiondriver.Driver
	walker *fs.Walker
	log    ports.Logger

	sourceRoots []string
	outputRoot  string

	mu         sync.Mutex
	factories  []action.Factory
	knownFiles []ports.File
}

// New creates a Driver Root rooted at sourceRoots for discovery and
// outputRoot for derived outputs and installs. dash receives per-action
// progress; limit caps concurrently running actions. tracer may be nil, in
// which case the Action Driver records no spans.
func New(loop *eventloop.Loop, dash ports.Dashboard, log ports.Logger, tracer ports.Tracer, sourceRoots []string, outputRoot string, limit int) *Root {
	r := &Root{
		loop:        loop,
		tags:        tagindex.New(loop),
		walker:      fs.NewWalker(),
		log:         log,
		sourceRoots: sourceRoots,
		outputRoot:  outputRoot,
	}
	r.driver = actiondriver.New(loop, r.tags, dash, log, tracer, actiondriver.Hooks{
		NewOutput:  r.newOutput,
		FindInput:  r.findInput,
		Install:    r.install,
		AddFactory: r.addFactory,
	}, limit)
	return r
}

// AddFactory registers factory before the initial walk runs. Use
// Context.AddActionType, which calls through to addFactory, to register one
// discovered mid-build instead.
func (r *Root) AddFactory(f action.Factory) {
	r.mu.Lock()
	r.factories = append(r.factories, f)
	r.mu.Unlock()
}

// OnIdle installs cb to run whenever the driver has nothing queued or
// running. See actiondriver.Driver.OnIdle.
func (r *Root) OnIdle(cb func(passed, failed int)) {
	r.driver.OnIdle(cb)
}

// Census returns the running totals of settled actions.
func (r *Root) Census() (passed, failed int) {
	return r.driver.Census()
}

// Start walks every source root, seeds the Tag Index with each file found,
// and offers each to every registered factory's trigger tags.
func (r *Root) Start(_ context.Context) error {
	if len(r.sourceRoots) == 0 {
		return domain.ErrNoRoots
	}
	for _, root := range r.sourceRoots {
		for path := range r.walker.WalkFiles(root) {
			if err := r.seed(path); err != nil {
				return err
			}
		}
	}
	// A walk that offers nothing never runs the driver's pump loop, so kick
	// it once explicitly; Offer handles every subsequent idle check itself.
	r.driver.Kick()
	return nil
}

// Seed adds a single file path to the Driver Root outside of the initial
// walk — the watch-mode hook for a file that appears in a previously
// walked directory after the build has already converged once. A path
// already known to the root is a no-op.
func (r *Root) Seed(path string) error {
	if r.tags.Owns(fsOwner, domain.NewTag("canonical:"+path)) {
		return nil
	}
	return r.seed(path)
}

func (r *Root) seed(path string) error {
	file, err := fs.New(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to resolve discovered file"), "path", path)
	}

	tags := fileTags(path)
	if err := r.tags.Commit(fsOwner, file, tags); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to seed discovered file"), "path", path)
	}

	r.mu.Lock()
	r.knownFiles = append(r.knownFiles, file)
	factories := append([]action.Factory(nil), r.factories...)
	r.mu.Unlock()

	for _, tag := range tags {
		r.offer(factories, tag, file)
	}
	return nil
}

// fileTags derives the synthetic tags a freshly discovered disk file is
// seeded under: one naming its exact location, one naming its extension so
// factories can trigger on file kind without knowing individual paths.
func fileTags(path string) []domain.Tag {
	tags := []domain.Tag{domain.NewTag("canonical:" + path)}
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		tags = append(tags, domain.NewTag("filetype:"+ext))
	}
	return tags
}

func (r *Root) offer(factories []action.Factory, tag domain.Tag, file ports.File) {
	for _, f := range factories {
		for _, trigger := range f.TriggerTags() {
			if trigger.String() != tag.String() {
				continue
			}
			if act, ok := f.TryMakeAction(tag, file); ok {
				r.driver.Offer(f, act, tag, file)
			}
		}
	}
}

// addFactory is the Hooks.AddFactory implementation: a newly registered
// factory is offered every disk file already known to the root (found by
// the walk or by Seed), under its canonical and filetype tags. Outputs of
// actions, running or committed, are not offered to it.
func (r *Root) addFactory(f action.Factory) {
	r.mu.Lock()
	r.factories = append(r.factories, f)
	known := append([]ports.File(nil), r.knownFiles...)
	r.mu.Unlock()

	for _, file := range known {
		for _, tag := range fileTags(file.CanonicalName()) {
			r.offer([]action.Factory{f}, tag, file)
		}
	}
}

func (r *Root) newOutput(path string) (ports.File, error) {
	full := path
	if !filepath.IsAbs(path) {
		full = filepath.Join(r.outputRoot, "out", path)
	}
	return fs.New(full)
}

func (r *Root) findInput(path string) (ports.File, bool) {
	if filepath.IsAbs(path) {
		f, err := fs.New(path)
		if err != nil {
			return nil, false
		}
		if _, err := f.Stat(); err != nil {
			return nil, false
		}
		return f, true
	}
	for _, root := range r.sourceRoots {
		candidate := filepath.Join(root, path)
		f, err := fs.New(candidate)
		if err != nil {
			continue
		}
		if _, err := f.Stat(); err == nil {
			return f, true
		}
	}
	return nil, false
}

func (r *Root) install(file ports.File, location domain.InstallLocation, name string) error {
	dir := filepath.Join(r.outputRoot, location.String())
	target, err := fs.New(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	return file.Link(target)
}
