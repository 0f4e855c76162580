// Package actiondriver implements the Action Driver: the per-action
// lifecycle state machine that turns a (Factory, tag, file) binding into a
// running Action, tracks the tags and files it reads as dependencies, and
// requeues it when one of those dependencies changes.
package actiondriver

import (
	"context"
	"sync"

	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports"
	"ekam.build/ekam/internal/engine/action"
	"ekam.build/ekam/internal/engine/eventloop"
	"ekam.build/ekam/internal/engine/promise"
	"ekam.build/ekam/internal/engine/tagindex"
)

// Hooks are the Driver Root capabilities a Record's BuildContext needs but
// the driver does not own itself: creating derived outputs, resolving
// inputs outside the tag system, installing finished files, and widening
// the set of registered factories.
type Hooks struct {
	NewOutput  func(path string) (ports.File, error)
	FindInput  func(path string) (ports.File, bool)
	Install    func(file ports.File, location domain.InstallLocation, name string) error
	AddFactory func(action.Factory)
}

// Driver is the Action Driver. It owns one priority-ordered ready queue per
// domain.Priority, a concurrency cap, and every live Record.
type Driver struct {
	loop   *eventloop.Loop
	tags   *tagindex.Index
	dash   ports.Dashboard
	hooks  Hooks
	limit  int
	tracer ports.Tracer

	log ports.Logger

	mu      sync.Mutex
	seq     uint64
	queues  [domain.NumPriorities][]*Record
	running map[*Record]struct{}

	passed int
	failed int

	onIdle func(passed, failed int)
}

// New creates a Driver bound to loop for scheduling, tags for dependency
// tracking and provision commits, and dash for progress reporting. limit
// caps the number of concurrently Running records; callers typically pass
// runtime.NumCPU(). tracer may be nil, in which case no spans are recorded.
func New(loop *eventloop.Loop, tags *tagindex.Index, dash ports.Dashboard, log ports.Logger, tracer ports.Tracer, hooks Hooks, limit int) *Driver {
	if limit < 1 {
		limit = 1
	}
	return &Driver{
		loop:    loop,
		tags:    tags,
		dash:    dash,
		hooks:   hooks,
		limit:   limit,
		tracer:  tracer,
		log:     log,
		running: make(map[*Record]struct{}),
	}
}

// OnIdle installs cb to run every time the driver finds its queues empty and
// nothing running. It may fire more than once, since a later dependency
// change can requeue work and drain again. Driver Root uses it to decide
// whether the build is finished (one-shot mode) or should keep the loop
// alive watching for changes (watch mode).
func (d *Driver) OnIdle(cb func(passed, failed int)) {
	d.onIdle = cb
}

// Census returns the running totals of settled actions.
func (d *Driver) Census() (passed, failed int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.passed, d.failed
}

// Kick runs an idle check with nothing freshly offered, the case Offer never
// exercises on its own: a walk that discovers zero files would otherwise
// never fire OnIdle, since nothing runs pump until an action is offered.
func (d *Driver) Kick() {
	d.pump()
}

// Offer enqueues a new Record for factory's action, triggered by file
// currently providing tag. It is the Driver Root's sole entry point for
// introducing work.
func (d *Driver) Offer(factory action.Factory, act action.Action, tag domain.Tag, file ports.File) {
	d.mu.Lock()
	d.seq++
	rec := newRecord(recordID(d.seq, file, act.Verb()), factory, act, tag, file)
	d.enqueueLocked(rec)
	d.mu.Unlock()
	d.pump()
}

func (d *Driver) enqueueLocked(rec *Record) {
	rec.status = domain.ActionPending
	p := rec.factory.Priority()
	d.queues[p] = append(d.queues[p], rec)
}

func (d *Driver) popNextLocked() *Record {
	for p := domain.Priority(0); p < domain.NumPriorities; p++ {
		q := d.queues[p]
		if len(q) == 0 {
			continue
		}
		rec := q[0]
		d.queues[p] = q[1:]
		return rec
	}
	return nil
}

func (d *Driver) queueLenLocked() int {
	n := 0
	for _, q := range d.queues {
		n += len(q)
	}
	return n
}

// pump starts as many queued records as the concurrency cap allows, and
// reports idleness once nothing more can run.
func (d *Driver) pump() {
	for {
		d.mu.Lock()
		if len(d.running) >= d.limit {
			d.mu.Unlock()
			return
		}
		rec := d.popNextLocked()
		if rec == nil {
			idle := len(d.running) == 0 && d.queueLenLocked() == 0
			passed, failed := d.passed, d.failed
			d.mu.Unlock()
			if idle && d.onIdle != nil {
				d.onIdle(passed, failed)
			}
			return
		}
		d.running[rec] = struct{}{}
		d.mu.Unlock()
		d.start(rec)
	}
}

func (d *Driver) start(rec *Record) {
	rec.status = domain.ActionRunning
	rec.task = d.dash.BeginTask(rec.act.Verb(), rec.label(), rec.act.Silent())
	rec.task.SetState(domain.TaskRunning)

	if d.tracer != nil {
		_, rec.span = d.tracer.Start(context.Background(), rec.act.Verb()+" "+rec.label())
		rec.span.SetAttribute("ekam.record_id", rec.id)
	}

	ctx := &recordContext{rec: rec, driver: d}
	p := rec.act.Start(d.loop, ctx)
	rec.promise = p

	promise.When1(d.loop, p,
		func(action.Void) action.Void {
			d.onSettled(rec, nil)
			return action.Void{}
		},
		func(r promise.Result[action.Void]) action.Void {
			d.onSettled(rec, r.Err)
			return action.Void{}
		},
	)
}

// onSettled runs once a record's start promise fulfills or rejects, or once
// BuildContext.Passed/Failed was called explicitly on its behalf.
func (d *Driver) onSettled(rec *Record, err error) {
	if rec.explicit || rec.status != domain.ActionRunning {
		return
	}
	d.finish(rec, err)
}

// finish commits a record's buffered provisions on success, reports the
// outcome to its task, and frees its dashboard and driver slots.
func (d *Driver) finish(rec *Record, err error) {
	if err == nil {
		err = d.commit(rec)
	}

	if err != nil {
		rec.status = domain.ActionFailed
		rec.task.SetState(domain.TaskFailed)
		rec.task.AddOutput(err.Error())
		if rec.span != nil {
			rec.span.SetAttribute("ekam.failed", true)
		}
		d.mu.Lock()
		d.failed++
		d.mu.Unlock()
	} else {
		rec.status = domain.ActionSucceeded
		rec.task.SetState(domain.TaskPassed)
		d.mu.Lock()
		d.passed++
		d.mu.Unlock()
	}
	if rec.span != nil {
		rec.span.End()
	}
	rec.task.Close()

	d.mu.Lock()
	delete(d.running, rec)
	d.mu.Unlock()

	d.pump()
}

// commit installs every buffered provision under rec.id. It is
// all-or-nothing at the record level even though the Tag Index commits one
// file at a time: if a later file's tags conflict, the files already
// installed for this record are retracted before the error is returned, so
// a failed multi-file action never leaves a partial set of provisions live
// in the Tag Index.
func (d *Driver) commit(rec *Record) error {
	for _, p := range rec.pending {
		if err := d.tags.Commit(rec.id, p.file, p.tags); err != nil {
			d.tags.Retract(rec.id)
			return err
		}
	}
	rec.pending = nil
	return nil
}

// onDependencyChanged is invoked, via the event loop, the next time a tag or
// file rec depended on changes. A Running record is cancelled in place; a
// settled one is retracted and requeued for a fresh run.
func (d *Driver) onDependencyChanged(rec *Record) {
	switch rec.status {
	case domain.ActionRunning:
		rec.promise.Cancel()
		rec.status = domain.ActionCancelled
		d.mu.Lock()
		delete(d.running, rec)
		d.mu.Unlock()
		rec.task.SetState(domain.TaskDone)
		rec.task.Close()
		if rec.span != nil {
			rec.span.SetAttribute("ekam.cancelled", true)
			rec.span.End()
			rec.span = nil
		}
	case domain.ActionSucceeded, domain.ActionFailed:
	default:
		return
	}
	d.requeue(rec)
}

func (d *Driver) requeue(rec *Record) {
	rec.clearDeps()
	rec.pending = nil
	rec.explicit = false
	d.tags.Retract(rec.id)
	d.mu.Lock()
	d.enqueueLocked(rec)
	d.mu.Unlock()
	d.pump()
}
