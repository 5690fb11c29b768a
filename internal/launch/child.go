package launch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"

	"github.com/pborman/getopt/v2"
	"golang.org/x/sys/unix"
)

// ParseFlags decodes trampoline arguments. args[0] is the program name.
func ParseFlags(args []string) (Plan, error) {
	set := getopt.New()
	input := set.StringLong("input", 'i', "", "file to use as standard input")
	output := set.StringLong("output", 'o', "", "file to use as standard output")
	background := set.BoolLong("background", 'b', "leave interrupts ignored")

	if err := set.Getopt(args, nil); err != nil {
		return Plan{}, err
	}

	plan := Plan{
		Argv:       set.Args(),
		Input:      *input,
		Output:     *output,
		Background: *background,
	}
	if len(plan.Argv) == 0 {
		return Plan{}, errors.New("no program given")
	}

	return plan, nil
}

// RunChild is the trampoline entry point. It only returns if the program
// could not be started, with the status the child should exit with.
func RunChild(args []string, stderr io.Writer) int {
	// The trampoline starts with the default SIGTSTP action.
	signal.Ignore(unix.SIGTSTP)

	plan, err := ParseFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", ExecCommand, err)
		return 2
	}

	fmt.Fprintln(stderr, Exec(plan))
	return 1
}

// Exec turns the calling process into plan.Argv. It never returns on success.
func Exec(plan Plan) error {
	if plan.Input != "" {
		if err := redirect(plan.Input, unix.O_RDONLY, 0); err != nil {
			return fmt.Errorf("cannot open %s for input", plan.Input)
		}
	}

	if plan.Output != "" {
		if err := redirect(plan.Output, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 1); err != nil {
			return fmt.Errorf("cannot open %s for output", plan.Output)
		}
	}

	// Ignored dispositions survive exec, caught ones revert to the default.
	signal.Ignore(unix.SIGTSTP)
	if plan.Background {
		signal.Ignore(os.Interrupt)
	} else {
		signal.Notify(make(chan os.Signal, 1), os.Interrupt)
	}

	name := plan.Argv[0]
	path, err := exec.LookPath(name)
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return fmt.Errorf("%s: command not found", name)
	case err != nil:
		return fmt.Errorf("%s: %v", name, err)
	}

	if err := unix.Exec(path, plan.Argv, os.Environ()); err != nil {
		return fmt.Errorf("%s: %v", name, err)
	}

	return nil
}

func redirect(path string, mode int, target int) error {
	fd, err := unix.Open(path, mode|unix.O_CLOEXEC, 0644)
	if err != nil {
		return err
	}
	if fd == target {
		return nil
	}
	defer unix.Close(fd)

	return unix.Dup2(fd, target)
}
