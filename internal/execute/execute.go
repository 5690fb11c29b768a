package execute

import (
	"io"
	"os"

	"smallsh/internal/jobs"
	"smallsh/internal/parser"
)

type Kind int

const (
	KindEmpty Kind = iota
	KindBuiltin
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindBuiltin:
		return "builtin"
	default:
		return "external"
	}
}

// Classify decides how a parsed line is run.
func Classify(cmd parser.Command) Kind {
	switch {
	case cmd.Empty():
		return KindEmpty
	case AllBuiltins[cmd.Name()] != nil:
		return KindBuiltin
	default:
		return KindExternal
	}
}

// Dispatcher runs classified commands against the job supervisor.
type Dispatcher struct {
	Supervisor *jobs.Supervisor
	Stdout     io.Writer
}

func NewDispatcher(supervisor *jobs.Supervisor, stdout io.Writer) *Dispatcher {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Dispatcher{Supervisor: supervisor, Stdout: stdout}
}

// Run executes cmd. Built-ins ignore redirection and the background marker.
// The error is an *ExitError when the interpreter should stop.
func (d *Dispatcher) Run(cmd parser.Command) error {
	switch Classify(cmd) {
	case KindEmpty:
		return nil
	case KindBuiltin:
		return AllBuiltins[cmd.Name()](d, cmd.Args)
	}

	background := cmd.Background && d.Supervisor.State.BackgroundAllowed()

	redirected, err := parser.Redirect(cmd)
	if err != nil {
		return err
	}

	return d.Supervisor.Launch(redirected, background)
}
