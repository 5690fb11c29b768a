// Package launch starts external programs as children of the interpreter.
//
// A child is created by re-executing a small trampoline (the interpreter
// binary itself, see ExecCommand) which applies the redirections and signal
// dispositions of a Plan before replacing itself with the requested program.
// This keeps the pid returned to the parent identical to the pid of the final
// program.
package launch

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// ExecCommand is the hidden subcommand the interpreter binary runs as a child.
const ExecCommand = "__exec"

const NullDevice = "/dev/null"

// Plan describes the program a child becomes and how its stdio is bound.
type Plan struct {
	Argv       []string
	Input      string
	Output     string
	Background bool
}

// WithNullIO binds any unredirected stream to NullDevice.
func (p Plan) WithNullIO() Plan {
	if p.Input == "" {
		p.Input = NullDevice
	}
	if p.Output == "" {
		p.Output = NullDevice
	}
	return p
}

// Flags encodes the plan as trampoline arguments, see ParseFlags.
func (p Plan) Flags() []string {
	var args []string

	if p.Input != "" {
		args = append(args, "--input", p.Input)
	}
	if p.Output != "" {
		args = append(args, "--output", p.Output)
	}
	if p.Background {
		args = append(args, "--background")
	}

	args = append(args, "--")
	return append(args, p.Argv...)
}

// Launcher forks children through a trampoline executable.
type Launcher struct {
	// Path of the trampoline executable.
	Path string
	// Args precede the encoded plan; Args[0] is the child's argv[0].
	Args []string
	// Env of the trampoline, os.Environ() when nil. The final program
	// inherits it unchanged.
	Env []string

	Stdin, Stdout, Stderr *os.File
}

// New returns a Launcher that re-executes the running binary.
func New() (*Launcher, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}

	return &Launcher{
		Path: exe,
		Args: []string{exe, ExecCommand},
	}, nil
}

// Spawn creates the child process and returns its pid. Failures of the plan
// itself (bad redirection, unknown program) happen in the child and surface
// as its exit status.
func (l *Launcher) Spawn(plan Plan) (int, error) {
	if len(plan.Argv) == 0 {
		return 0, errors.New("empty command")
	}

	argv := make([]string, 0, len(l.Args)+len(plan.Argv)+6)
	argv = append(argv, l.Args...)
	argv = append(argv, plan.Flags()...)

	env := l.Env
	if env == nil {
		env = os.Environ()
	}

	return syscall.ForkExec(l.Path, argv, &syscall.ProcAttr{
		Env: env,
		Files: []uintptr{
			orDefault(l.Stdin, os.Stdin).Fd(),
			orDefault(l.Stdout, os.Stdout).Fd(),
			orDefault(l.Stderr, os.Stderr).Fd(),
		},
	})
}

func orDefault(f, def *os.File) *os.File {
	if f == nil {
		return def
	}
	return f
}
