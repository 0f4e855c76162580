package domain

// ActionStatus is the Action Driver's per-record state machine, matching
// the lifecycle diagram in the component design: an action starts Pending,
// moves to Running once the driver starts it, and settles into Succeeded,
// Failed, or Cancelled before a tag or file change moves it back to
// Pending for a re-run.
type ActionStatus uint8

const (
	// ActionPending means the action is queued but not yet started.
	ActionPending ActionStatus = iota
	// ActionRunning means the action's Start promise has not yet settled.
	ActionRunning
	// ActionSucceeded means the action's Start promise fulfilled.
	ActionSucceeded
	// ActionFailed means the action's Start promise rejected, or it called
	// BuildContext.Failed.
	ActionFailed
	// ActionCancelled means the record was dropped before it settled,
	// typically because one of its inputs changed while it was running.
	ActionCancelled
)

// String renders the status for logging and dashboard output.
func (s ActionStatus) String() string {
	switch s {
	case ActionPending:
		return "pending"
	case ActionRunning:
		return "running"
	case ActionSucceeded:
		return "succeeded"
	case ActionFailed:
		return "failed"
	case ActionCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// VertexStatus is a Dashboard-facing status vocabulary, a distinct type
// from ActionStatus so adapters never depend on engine-internal lifecycle
// types. Nothing converts an ActionStatus into it; the dashboards report a
// task's progress through TaskState.
type VertexStatus uint8

const (
	// VertexPending mirrors ActionPending.
	VertexPending VertexStatus = iota
	// VertexRunning mirrors ActionRunning.
	VertexRunning
	// VertexSucceeded mirrors ActionSucceeded.
	VertexSucceeded
	// VertexFailed mirrors ActionFailed.
	VertexFailed
	// VertexCancelled mirrors ActionCancelled.
	VertexCancelled
)

// String renders the vertex status for dashboard rendering.
func (s VertexStatus) String() string {
	switch s {
	case VertexPending:
		return "pending"
	case VertexRunning:
		return "running"
	case VertexSucceeded:
		return "succeeded"
	case VertexFailed:
		return "failed"
	case VertexCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// LogLevel mirrors the subset of slog levels a Task cares about, kept as
// its own type so ports.Dashboard never imports log/slog directly.
type LogLevel uint8

const (
	// LogLevelDebug is verbose, off by default in the text dashboard.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the default level for action stdout/stderr lines.
	LogLevelInfo
	// LogLevelWarn flags a non-fatal condition worth a reader's attention.
	LogLevelWarn
	// LogLevelError accompanies a Task's terminal failure.
	LogLevelError
)
