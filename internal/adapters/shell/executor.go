// Package shell launches plugin subprocesses, the way the executor
// launched build task commands in the declarative scheduler this one
// replaced. Start attaches a PTY, giving the child one combined
// stdout/stderr stream; StartPiped attaches discrete stdin/stdout/stderr
// pipes instead, for a caller that must keep the two output streams
// apart.
package shell

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/zerr"
)

// Process is a running subprocess.
type Process interface {
	Wait() error
	Resize(rows, cols int) error
}

type ptyProcess struct {
	cmd    *exec.Cmd
	ptmx   *os.File
	ioDone <-chan struct{}
}

func (p *ptyProcess) Wait() error {
	err := p.cmd.Wait()
	<-p.ioDone
	return err
}

func (p *ptyProcess) Resize(rows, cols int) error {
	if rows > math.MaxUint16 || cols > math.MaxUint16 || rows < 0 || cols < 0 {
		return errors.New("terminal size out of bounds")
	}
	return pty.Setsize(p.ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Subprocess is an executable invocation: the plugin adapter builds one per
// subprocess-backed action. An empty Dir runs the child in the driver's
// working directory; Env entries are added on top of the allow-listed
// system variables.
type Subprocess struct {
	Executable string
	Args       []string
	Dir        string
	Env        map[string]string
}

// Executor starts Subprocesses, either under a PTY (Start) so interactive
// tools (compilers that colorize output when they detect one) behave the
// same way they would run from a terminal, or with plain pipes (StartPiped).
type Executor struct{}

// NewExecutor creates an Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// buildCommand resolves sp's executable against its own Env (not the
// caller's PATH) and returns the exec.Cmd ready for the caller to attach
// either a PTY or discrete stdio pipes to.
func buildCommand(ctx context.Context, sp Subprocess) (*exec.Cmd, error) {
	if sp.Executable == "" {
		return nil, zerr.New("no executable given")
	}

	cmdEnv := resolveEnvironment(os.Environ(), sp.Env)

	executable := sp.Executable
	if !filepath.IsAbs(executable) {
		if lp, err := lookPath(executable, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, sp.Args...) //nolint:gosec // plugin-supplied command
	if len(cmd.Args) > 0 {
		cmd.Args[0] = sp.Executable
	}
	if sp.Dir != "" {
		cmd.Dir = sp.Dir
	}
	cmd.Env = cmdEnv
	return cmd, nil
}

// Start launches sp and copies its combined PTY output to out as it
// arrives. The returned Process is live until Wait returns.
func (e *Executor) Start(ctx context.Context, sp Subprocess, out func(line []byte)) (Process, error) {
	cmd, err := buildCommand(ctx, sp)
	if err != nil {
		return nil, err
	}

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to start pty")
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = ptmx.Close() }()
		buf := make([]byte, 4096)
		for {
			n, readErr := ptmx.Read(buf)
			if n > 0 {
				out(buf[:n])
			}
			if readErr != nil {
				return
			}
		}
	}()

	return &ptyProcess{cmd: cmd, ptmx: ptmx, ioDone: ioDone}, nil
}

type pipedProcess struct {
	cmd *exec.Cmd
}

func (p *pipedProcess) Wait() error { return p.cmd.Wait() }

func (p *pipedProcess) Resize(int, int) error {
	return errors.New("resize not supported for a piped process")
}

// StartPiped launches sp with its own stdin, stdout, and stderr pipes
// instead of a PTY, for callers that must keep the two output streams
// distinct — the plugin line protocol answers requests on stdout and
// forwards free-form diagnostic text on stderr, and a PTY would merge them
// into a single stream.
func (e *Executor) StartPiped(ctx context.Context, sp Subprocess) (stdin io.WriteCloser, stdout, stderr io.ReadCloser, proc Process, err error) {
	cmd, err := buildCommand(ctx, sp)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, nil, nil, zerr.Wrap(err, "failed to open stdin pipe")
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, nil, nil, zerr.Wrap(err, "failed to open stdout pipe")
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, nil, nil, zerr.Wrap(err, "failed to open stderr pipe")
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, nil, nil, zerr.Wrap(err, "failed to start process")
	}

	return stdinPipe, stdoutPipe, stderrPipe, &pipedProcess{cmd: cmd}, nil
}

// allowListedEnvVars are the system environment variables inherited by every
// subprocess, independent of what the plugin itself asks for. Everything
// else must be set explicitly through Subprocess.Env.
var allowListedEnvVars = map[string]struct{}{
	"HOME": {},
	"TERM": {},
	"USER": {},
	"PATH": {},
}

func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := filterSystemEnv(sysEnv)
	for k, v := range overrides {
		envMap[k] = v
	}
	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

func filterSystemEnv(sysEnv []string) map[string]string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			if _, allowed := allowListedEnvVars[k]; allowed {
				envMap[k] = v
			}
		}
	}
	return envMap
}

func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
