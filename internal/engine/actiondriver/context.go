package actiondriver

import (
	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports"
	"ekam.build/ekam/internal/engine/action"
)

// recordContext is the action.Context handed to exactly one Record's
// action.Start call. It records every lookup as a dependency before
// returning, so a later change to any of them reschedules the record
// regardless of whether the lookup found anything.
type recordContext struct {
	rec    *Record
	driver *Driver
}

func (c *recordContext) FindProvider(tag domain.Tag) (ports.File, bool) {
	if c.driver.tags.Owns(c.rec.id, tag) {
		return nil, false
	}
	unsub := c.driver.tags.Subscribe(tag, func() { c.driver.onDependencyChanged(c.rec) })
	c.rec.deps = append(c.rec.deps, unsub)
	return c.driver.tags.Lookup(tag)
}

func (c *recordContext) FindInput(path string) (ports.File, bool) {
	if h, err := c.driver.loop.OnFileChange(path, func() { c.driver.onDependencyChanged(c.rec) }); err == nil {
		c.rec.deps = append(c.rec.deps, h.Cancel)
	}
	if c.driver.hooks.FindInput == nil {
		return nil, false
	}
	return c.driver.hooks.FindInput(path)
}

func (c *recordContext) NewOutput(path string) (ports.File, error) {
	return c.driver.hooks.NewOutput(path)
}

func (c *recordContext) Provide(file ports.File, tags []domain.Tag) {
	c.rec.pending = append(c.rec.pending, provisionEntry{file: file, tags: tags})
}

func (c *recordContext) Install(file ports.File, location domain.InstallLocation, name string) error {
	return c.driver.hooks.Install(file, location, name)
}

func (c *recordContext) Log(text string) {
	c.rec.task.AddOutput(text)
}

func (c *recordContext) AddActionType(factory action.Factory) {
	if c.driver.hooks.AddFactory != nil {
		c.driver.hooks.AddFactory(factory)
	}
}

func (c *recordContext) Passed() {
	c.rec.explicit = true
	c.driver.finish(c.rec, nil)
}

func (c *recordContext) Failed() {
	c.rec.explicit = true
	c.driver.finish(c.rec, domain.ErrActionFailed)
}
