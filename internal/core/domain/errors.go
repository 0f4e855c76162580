package domain

import "go.trai.ch/zerr"

// ErrorKind classifies the error families enumerated in the error handling
// design: every error the engine produces traces back to exactly one of
// these.
type ErrorKind string

const (
	// ErrorKindIO covers failures reading, writing, or stat-ing a File.
	ErrorKindIO ErrorKind = "IO_ERROR"
	// ErrorKindActionFailed covers an action's own reported failure.
	ErrorKindActionFailed ErrorKind = "ACTION_FAILED"
	// ErrorKindTagConflict covers two actions committing the same tag.
	ErrorKindTagConflict ErrorKind = "TAG_CONFLICT"
	// ErrorKindPluginProtocol covers a malformed line from a plugin subprocess.
	ErrorKindPluginProtocol ErrorKind = "PLUGIN_PROTOCOL_ERROR"
	// ErrorKindCancelled covers cancellation; never user-visible.
	ErrorKindCancelled ErrorKind = "CANCELLED"
	// ErrorKindInternal covers defects in the engine itself.
	ErrorKindInternal ErrorKind = "INTERNAL"
)

var (
	// ErrTagConflict is returned when a second action tries to commit a tag
	// that is already provided by another live action.
	ErrTagConflict = zerr.New("tag already provided by another action")

	// ErrSelfDependency is returned when an action's declared inputs would
	// require its own output, which the driver refuses to schedule.
	ErrSelfDependency = zerr.New("action depends on its own provision")

	// ErrActionFailed is returned when an action reports failure explicitly
	// via BuildContext.Failed, or its start promise carries an exception.
	ErrActionFailed = zerr.New("action failed")

	// ErrPluginProtocol is returned when a plugin subprocess writes a line
	// that does not parse as a recognized verb.
	ErrPluginProtocol = zerr.New("plugin protocol violation")

	// ErrCancelled marks a promise or action record as cancelled. It is
	// swallowed at the record boundary and never surfaced to a Dashboard.
	ErrCancelled = zerr.New("cancelled")

	// ErrNoSuchTag names the case of a tag no file currently provides. The
	// Tag Index lookup does not return it: a miss is reported as ok == false.
	ErrNoSuchTag = zerr.New("no file currently provides tag")

	// ErrPromiseDropped names a promise whose fulfiller was released without
	// ever calling Fulfill. The promise runtime does not install it: such a
	// promise never settles.
	ErrPromiseDropped = zerr.New("promise dropped before fulfillment")

	// ErrEventLoopClosed is returned by any Event Manager primitive invoked
	// after the loop has stopped.
	ErrEventLoopClosed = zerr.New("event loop is closed")

	// ErrNoRoots is returned when the Driver Root is started without any
	// file tree roots to walk.
	ErrNoRoots = zerr.New("no source roots configured")

	// ErrUnknownInstallLocation is returned when BuildContext.Install is
	// called with an InstallLocation the Driver Root has no directory for.
	ErrUnknownInstallLocation = zerr.New("unknown install location")
)
