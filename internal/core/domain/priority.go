package domain

// Priority orders the Action Driver's ready queues. Lower values run first
// whenever more than one action is queued, re-queued actions included;
// correctness never depends on the order, only scheduling does.
type Priority uint8

const (
	// PriorityRules covers actions that discover further actions (e.g.
	// reading a build manifest) and should run ahead of everything else.
	PriorityRules Priority = iota
	// PriorityHostCompilation covers compiling tools that run on the host.
	PriorityHostCompilation
	// PriorityHostLink covers linking host tools.
	PriorityHostLink
	// PriorityCodeGen covers generated-source actions (parsers, stubs).
	PriorityCodeGen
	// PriorityCompilation covers ordinary target compilation.
	PriorityCompilation
	// PriorityLink covers linking target binaries.
	PriorityLink
	// PriorityEverythingElse covers tests, packaging, and anything else.
	PriorityEverythingElse

	// NumPriorities is the number of distinct priority levels, used to size
	// the Action Driver's per-priority queue array.
	NumPriorities
)

// String renders the priority's name for logging and dashboard output.
func (p Priority) String() string {
	switch p {
	case PriorityRules:
		return "rules"
	case PriorityHostCompilation:
		return "host-compilation"
	case PriorityHostLink:
		return "host-link"
	case PriorityCodeGen:
		return "codegen"
	case PriorityCompilation:
		return "compilation"
	case PriorityLink:
		return "link"
	case PriorityEverythingElse:
		return "everything-else"
	default:
		return "unknown"
	}
}
