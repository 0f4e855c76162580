package driverroot_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports"
	"ekam.build/ekam/internal/engine/action"
	"ekam.build/ekam/internal/engine/driverroot"
	"ekam.build/ekam/internal/engine/eventloop"
	"ekam.build/ekam/internal/engine/promise"
)

type stubTask struct{}

func (*stubTask) SetState(domain.TaskState) {}
func (*stubTask) AddOutput(string)          {}
func (*stubTask) Close()                    {}

type stubDashboard struct{}

func (*stubDashboard) BeginTask(verb, noun string, silent bool) ports.Task { return &stubTask{} }

type nopLogger struct{}

func (nopLogger) Debug(string) {}
func (nopLogger) Info(string)  {}
func (nopLogger) Warn(string)  {}
func (nopLogger) Error(error)  {}

type fulfillsImmediately struct{ verb string }

func (a *fulfillsImmediately) Verb() string { return a.verb }
func (a *fulfillsImmediately) Silent() bool { return false }
func (a *fulfillsImmediately) Start(loop *eventloop.Loop, ctx action.Context) *promise.Promise[action.Void] {
	p, f := promise.New[action.Void](loop)
	f.Fulfill(action.Void{})
	return p
}

type cFactory struct{ seen []string }

func (f *cFactory) TriggerTags() []domain.Tag { return []domain.Tag{domain.NewTag("filetype:c")} }
func (f *cFactory) TryMakeAction(tag domain.Tag, file ports.File) (action.Action, bool) {
	f.seen = append(f.seen, file.CanonicalName())
	return &fulfillsImmediately{verb: "compile"}, true
}
func (f *cFactory) Priority() domain.Priority { return domain.PriorityCompilation }

func newTestLoop(t *testing.T) *eventloop.Loop {
	t.Helper()
	l, err := eventloop.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRoot_WalkOffersMatchingFilesToFactories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.c"), []byte("int main(){}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi"), 0o644))

	loop := newTestLoop(t)
	factory := &cFactory{}
	root := driverroot.New(loop, &stubDashboard{}, nopLogger{}, nil, []string{dir}, t.TempDir(), 4)
	root.AddFactory(factory)

	require.NoError(t, root.Start(context.Background()))

	require.Len(t, factory.seen, 1)
	assert.Contains(t, factory.seen[0], "main.c")

	idle := make(chan [2]int, 1)
	root.OnIdle(func(passed, failed int) { idle <- [2]int{passed, failed} })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go loop.Run(ctx)

	select {
	case counts := <-idle:
		assert.Equal(t, [2]int{1, 0}, counts)
	case <-ctx.Done():
		t.Fatal("root never went idle")
	}
}

func TestRoot_NoRootsIsAnError(t *testing.T) {
	loop := newTestLoop(t)
	root := driverroot.New(loop, &stubDashboard{}, nopLogger{}, nil, nil, t.TempDir(), 4)
	err := root.Start(context.Background())
	require.ErrorIs(t, err, domain.ErrNoRoots)
}
