package plugin

import (
	"io"
	"strings"

	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports"
	"ekam.build/ekam/internal/engine/action"
)

// commandReader consumes one plugin subprocess's command stream line by
// line and answers findProvider/findInput/findModifiers/newOutput requests
// by writing the resolved disk path back to the subprocess's stdin.
type commandReader struct {
	ctx        action.Context
	executable ports.File
	input      ports.File // nullable

	responses io.Writer

	verb     string
	silent   bool
	triggers []domain.Tag

	knownFiles map[string]ports.File // canonical path -> file, for "provide"/"install"
	cache      map[string]string     // full command line -> resolved path, for dedup
	pathCache  map[string]string     // "findInput "+path or "newOutput "+path -> resolved path

	providedOrder []string // canonical path order, for deterministic eof grouping
	provisions    map[string][]domain.Tag
	files         map[string]ports.File
}

func newCommandReader(ctx action.Context, executable, input ports.File, responses io.Writer) *commandReader {
	r := &commandReader{
		ctx:        ctx,
		executable: executable,
		input:      input,
		responses:  responses,
		verb:       verbFromExecutable(executable),
		knownFiles: make(map[string]ports.File),
		cache:      make(map[string]string),
		pathCache:  make(map[string]string),
		provisions: make(map[string][]domain.Tag),
		files:      make(map[string]ports.File),
	}
	if input != nil {
		r.knownFiles[input.CanonicalName()] = input
	}
	return r
}

func (r *commandReader) writeLine(s string) {
	_, _ = io.WriteString(r.responses, s)
	_, _ = io.WriteString(r.responses, "\n")
}

func splitToken(line string) (token, rest string) {
	idx := strings.IndexByte(line, ' ')
	if idx < 0 {
		return line, ""
	}
	return line[:idx], line[idx+1:]
}

func (r *commandReader) consume(line string) {
	if cached, ok := r.cache[line]; ok {
		r.writeLine(cached)
		return
	}

	command, args := splitToken(line)
	switch command {
	case "verb":
		r.verb = args
	case "silent":
		r.silent = true
	case "trigger":
		r.triggers = append(r.triggers, domain.NewTag(args))
	case "findProvider":
		r.respondToProviderLookup(line, domain.NewTag(args))
	case "findInput":
		r.respondToInputLookup(line, args)
	case "findModifiers":
		r.respondToModifiers(args)
	case "newProvider":
		r.ctx.Log("newProvider not implemented")
		r.ctx.Failed()
	case "noteInput":
		// The action reads a file outside its tracked inputs; ekam does not
		// yet trigger rebuilds off of these.
	case "newOutput":
		r.respondToNewOutput(line, args)
	case "provide":
		r.provide(args)
	case "install":
		r.install(args)
	case "passed":
		r.ctx.Passed()
	default:
		r.ctx.Log("invalid command: " + command)
		r.ctx.Failed()
	}
}

func (r *commandReader) remember(path string, file ports.File) {
	r.knownFiles[path] = file
}

func (r *commandReader) respondToProviderLookup(line string, tag domain.Tag) {
	provider, ok := r.ctx.FindProvider(tag)
	if !ok {
		r.writeLine("")
		return
	}
	path := provider.CanonicalName()
	r.cache[line] = path
	r.remember(path, provider)
	r.writeLine(path)
}

func (r *commandReader) respondToInputLookup(line, path string) {
	if r.input != nil && path == r.input.CanonicalName() {
		r.cache[line] = path
		r.writeLine(path)
		return
	}
	if cached, ok := r.pathCache["newOutput "+path]; ok {
		r.cache[line] = cached
		r.writeLine(cached)
		return
	}

	provider, ok := r.ctx.FindInput(path)
	if !ok {
		r.writeLine("")
		return
	}
	resolved := provider.CanonicalName()
	r.cache[line] = resolved
	r.pathCache["findInput "+path] = resolved
	r.remember(resolved, provider)
	r.writeLine(resolved)
}

func (r *commandReader) respondToModifiers(path string) {
	if r.input == nil {
		r.writeLine("")
		return
	}
	dir, err := r.input.Parent()
	if err != nil {
		r.writeLine("")
		return
	}

	var matches []ports.File
	for {
		if rel, relErr := dir.Relative(path); relErr == nil {
			tag := domain.NewTag("canonical:" + rel.CanonicalName())
			if provider, ok := r.ctx.FindProvider(tag); ok {
				matches = append(matches, provider)
			}
		}
		parent, parentErr := dir.Parent()
		if parentErr != nil || parent.CanonicalName() == dir.CanonicalName() {
			break
		}
		dir = parent
	}

	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		r.remember(m.CanonicalName(), m)
		r.writeLine(m.CanonicalName())
	}
	r.writeLine("")
}

func (r *commandReader) respondToNewOutput(line, path string) {
	file, err := r.ctx.NewOutput(path)
	if err != nil {
		r.ctx.Log(err.Error())
		r.ctx.Failed()
		r.writeLine("")
		return
	}
	resolved := file.CanonicalName()
	r.cache[line] = resolved
	r.pathCache["newOutput "+path] = resolved
	r.remember(resolved, file)
	r.writeLine(resolved)
}

func (r *commandReader) provide(args string) {
	filename, tagName := splitToken(args)
	file, ok := r.knownFiles[filename]
	if !ok {
		r.ctx.Log("file passed to \"provide\" not created with \"newOutput\" nor noted as an input: " + filename)
		r.ctx.Failed()
		return
	}
	if _, seen := r.provisions[filename]; !seen {
		r.provided(filename)
	}
	r.provisions[filename] = append(r.provisions[filename], domain.NewTag(tagName))
	r.files[filename] = file
}

func (r *commandReader) provided(filename string) {
	r.provisions[filename] = nil
	r.providedOrder = append(r.providedOrder, filename)
}

var installLocations = map[string]domain.InstallLocation{
	"bin":          domain.InstallBin,
	"lib":          domain.InstallLib,
	"node_modules": domain.InstallNodeModules,
}

func (r *commandReader) install(args string) {
	filename, rest := splitToken(args)
	file, ok := r.knownFiles[filename]
	if !ok {
		r.ctx.Log("file passed to \"install\" not created with \"newOutput\" nor noted as an input: " + filename)
		r.ctx.Failed()
		return
	}

	slash := strings.IndexByte(rest, '/')
	if slash < 0 || slash == len(rest)-1 {
		r.ctx.Log("invalid install location: " + rest)
		r.ctx.Failed()
		return
	}

	dirName, name := rest[:slash], rest[slash+1:]
	location, ok := installLocations[dirName]
	if !ok {
		r.ctx.Log("invalid install location: " + rest)
		return
	}
	if err := r.ctx.Install(file, location, name); err != nil {
		r.ctx.Log(err.Error())
		r.ctx.Failed()
	}
}

// eof runs once the subprocess closes its stdout: every grouped provision
// is handed to the context, and a factory derived from this run's trigger
// commands is registered so future matching files run the same executable.
func (r *commandReader) eof() {
	for _, filename := range r.providedOrder {
		tags := r.provisions[filename]
		if len(tags) == 0 {
			continue
		}
		r.ctx.Provide(r.files[filename], tags)
	}

	if len(r.triggers) > 0 {
		r.ctx.AddActionType(newDerivedFactory(r.executable, r.verb, r.silent, r.triggers))
	}
}
