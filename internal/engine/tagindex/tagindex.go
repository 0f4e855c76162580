// Package tagindex implements the Tag Index: a bidirectional mapping
// between tags and the files currently providing them, with change
// notifications delivered through the Event Manager so subscribers never
// observe a mutation synchronously with the commit that caused it.
package tagindex

import (
	"sync"

	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports"
	"ekam.build/ekam/internal/engine/eventloop"
)

// Executor is the scheduling capability notifications are delivered
// through — always the Event Manager in practice.
type Executor interface {
	RunAsynchronously(cb func()) eventloop.Handle
}

// Index is the Tag Index. All mutation happens on the event-loop thread in
// practice, but the type serializes access with a mutex so tests may
// exercise it directly without a loop.
type Index struct {
	exec Executor

	mu          sync.Mutex
	byTag       map[string]domain.Provision
	handles     map[string]ports.File // canonical file name -> live handle
	byFile      map[string]map[string]struct{} // canonical file name -> tag names
	subscribers map[string]map[uint64]func()
	nextSubID   uint64
}

// New creates an empty Tag Index bound to exec for notification delivery.
func New(exec Executor) *Index {
	return &Index{
		exec:        exec,
		byTag:       make(map[string]domain.Provision),
		handles:     make(map[string]ports.File),
		byFile:      make(map[string]map[string]struct{}),
		subscribers: make(map[string]map[uint64]func()),
	}
}

// Lookup returns the file currently providing tag, if any. It does not
// itself register a subscription — callers that need change notifications
// call Subscribe separately, per the Action Driver's "record the
// dependency even when the lookup misses" rule.
func (idx *Index) Lookup(tag domain.Tag) (ports.File, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	p, ok := idx.byTag[tag.String()]
	if !ok {
		return nil, false
	}
	return idx.handles[p.File.String()], true
}

// Subscribe registers cb to run, via the executor, the next time tag's
// provider changes (is committed, retracted, or replaced). It fires at
// most once; callers that want to keep watching resubscribe. The returned
// func removes the subscription if it has not yet fired.
func (idx *Index) Subscribe(tag domain.Tag, cb func()) (unsubscribe func()) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	name := tag.String()
	if idx.subscribers[name] == nil {
		idx.subscribers[name] = make(map[uint64]func())
	}
	id := idx.nextSubID
	idx.nextSubID++
	idx.subscribers[name][id] = cb
	return func() {
		idx.mu.Lock()
		defer idx.mu.Unlock()
		delete(idx.subscribers[name], id)
	}
}

// Commit installs every (tag, file) pair in provisions under owner. The
// commit is all-or-nothing: if any tag is already provided by a different
// live owner, nothing is installed and ErrTagConflict is returned — "the
// second-to-commit is rejected... the first is not retracted." Re-
// committing the same tag from the same owner (a rerun) is not a conflict.
func (idx *Index) Commit(owner string, file ports.File, tags []domain.Tag) error {
	idx.mu.Lock()

	for _, tag := range tags {
		if existing, ok := idx.byTag[tag.String()]; ok && existing.Owner.String() != owner {
			idx.mu.Unlock()
			return domain.ErrTagConflict
		}
	}

	changed := make([]string, 0, len(tags))
	fileName := file.CanonicalName()
	idx.handles[fileName] = file
	for _, tag := range tags {
		name := tag.String()
		idx.byTag[name] = domain.Provision{
			Tag:   tag,
			File:  domain.NewInternedString(fileName),
			Owner: domain.NewInternedString(owner),
		}
		if idx.byFile[fileName] == nil {
			idx.byFile[fileName] = make(map[string]struct{})
		}
		idx.byFile[fileName][name] = struct{}{}
		changed = append(changed, name)
	}

	idx.mu.Unlock()
	idx.notify(changed)
	return nil
}

// Retract removes every provision owned by owner, atomically, and notifies
// their tags' subscribers.
func (idx *Index) Retract(owner string) {
	idx.mu.Lock()
	var changed []string
	for name, p := range idx.byTag {
		if p.Owner.String() != owner {
			continue
		}
		delete(idx.byTag, name)
		if fileTags := idx.byFile[p.File.String()]; fileTags != nil {
			delete(fileTags, name)
			if len(fileTags) == 0 {
				delete(idx.byFile, p.File.String())
				delete(idx.handles, p.File.String())
			}
		}
		changed = append(changed, name)
	}
	idx.mu.Unlock()
	idx.notify(changed)
}

// Owns reports whether tag is currently provided by owner. Used by the
// Action Driver to detect an action depending on its own provision.
func (idx *Index) Owns(owner string, tag domain.Tag) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	p, ok := idx.byTag[tag.String()]
	return ok && p.Owner.String() == owner
}

func (idx *Index) notify(tags []string) {
	if len(tags) == 0 {
		return
	}
	idx.mu.Lock()
	var callbacks []func()
	for _, name := range tags {
		for _, cb := range idx.subscribers[name] {
			callbacks = append(callbacks, cb)
		}
		delete(idx.subscribers, name)
	}
	idx.mu.Unlock()

	for _, cb := range callbacks {
		cb := cb
		idx.exec.RunAsynchronously(cb)
	}
}
