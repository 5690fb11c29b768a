package execute

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

const (
	EnvHome = "HOME"
	EnvPWD  = "PWD"
)

// AllBuiltins holds the commands run inside the interpreter process.
var AllBuiltins = make(map[string]Builtin)

// Builtin runs a built-in; args[0] is its name.
type Builtin func(d *Dispatcher, args []string) error

// ExitError asks the interpreter to terminate with Code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// Exit kills every running job and stops the interpreter.
func Exit(d *Dispatcher, args []string) error {
	return &ExitError{Code: d.Supervisor.TerminateAll()}
}

// Cd changes the working directory, to HOME without an argument.
func Cd(d *Dispatcher, args []string) error {
	switch len(args) {
	case 1:
		home := os.Getenv(EnvHome)
		if home == "" {
			return fmt.Errorf("%s: %s not set", args[0], EnvHome)
		}
		args = append(args, home)
		fallthrough
	case 2:
		if err := os.Chdir(args[1]); err != nil {
			var pathErr *fs.PathError
			if errors.As(err, &pathErr) {
				err = pathErr.Err
			}
			return fmt.Errorf("%s: %s: %v", args[0], args[1], err)
		}
	default:
		return fmt.Errorf("%s: too many arguments", args[0])
	}

	if wd, err := os.Getwd(); err == nil {
		os.Setenv(EnvPWD, wd)
	}
	return nil
}

// Status prints how the last foreground job ended.
func Status(d *Dispatcher, args []string) error {
	_, err := fmt.Fprintln(d.Stdout, d.Supervisor.State.LastStatus())
	return err
}

func init() {
	AllBuiltins["exit"] = Exit
	AllBuiltins["cd"] = Cd
	AllBuiltins["status"] = Status
}
