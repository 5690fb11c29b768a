// Package shell is the interpreter loop: poll background jobs, read a line,
// parse it and dispatch it.
package shell

import (
	"errors"
	"io"
	"log"
	"os"

	"github.com/fatih/color"

	"smallsh/internal/config"
	"smallsh/internal/execute"
	"smallsh/internal/jobs"
	"smallsh/internal/logger"
	"smallsh/internal/parser"
	"smallsh/internal/prompt"
)

type Options struct {
	Config  *config.Configuration
	Spawner jobs.Spawner
	Reader  LineReader

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer

	Events jobs.EventRecorder
	Log    *log.Logger
}

type Shell struct {
	Supervisor *jobs.Supervisor
	Dispatcher *execute.Dispatcher

	reader  LineReader
	prompt  string
	limits  parser.Limits
	pid     int
	stderr  io.Writer
	events  jobs.EventRecorder
	log     *log.Logger
	errText *color.Color
}

func New(opts Options) *Shell {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Events == nil {
		opts.Events = logger.Nop().NewSession()
	}
	if opts.Log == nil {
		opts.Log = logger.NewDebug(nil, false)
	}

	supervisor := jobs.NewSupervisor(opts.Spawner, jobs.NewState(), jobs.Options{
		Out:    opts.Stdout,
		Drain:  cfg.DrainBackground,
		NullIO: cfg.BackgroundNullIO,
		Events: opts.Events,
		Log:    opts.Log,
	})

	return &Shell{
		Supervisor: supervisor,
		Dispatcher: execute.NewDispatcher(supervisor, opts.Stdout),
		reader:     opts.Reader,
		prompt:     cfg.Prompt,
		limits:     cfg.Limits(),
		pid:        os.Getpid(),
		stderr:     opts.Stderr,
		events:     opts.Events,
		log:        opts.Log,
		errText:    color.New(color.FgRed),
	}
}

// InstallSignals applies the interpreter's signal policy, writing mode
// notices to fd.
func (s *Shell) InstallSignals(fd int) *jobs.SignalPolicy {
	return jobs.InstallSignals(s.Supervisor.State, fd, func(allowed bool) {
		s.log.Printf("background allowed: %t", allowed)
		if err := s.events.Record(logger.Event{Type: logger.EventMode, BackgroundAllowed: &allowed}); err != nil {
			s.log.Printf("record mode event: %v", err)
		}
	})
}

// Run reads and executes lines until exit or end of input and returns the
// status the interpreter should exit with.
func (s *Shell) Run() int {
	for {
		s.Supervisor.PollBackground()

		line, err := s.reader.ReadLine(prompt.Render(s.prompt))
		switch {
		case errors.Is(err, io.EOF):
			s.log.Println("end of input")
			return s.Supervisor.TerminateAll()
		case err != nil:
			s.errorf("read: %v", err)
			return s.Supervisor.TerminateAll()
		}

		if code, done := s.Execute(line); done {
			return code
		}
	}
}

// Execute runs a single line. done reports whether the interpreter must stop
// with status code.
func (s *Shell) Execute(line string) (code int, done bool) {
	cmd, err := parser.Parse(line, s.pid, s.limits)
	if err != nil {
		s.errorf("%v", err)
		return 0, false
	}

	err = s.Dispatcher.Run(cmd)

	var exitErr *execute.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		return exitErr.Code, true
	case errors.Is(err, jobs.ErrSpawn):
		s.errorf("fatal: %v", err)
		s.Supervisor.TerminateAll()
		return 1, true
	default:
		s.errorf("%v", err)
	}

	return 0, false
}

func (s *Shell) errorf(format string, args ...interface{}) {
	s.errText.Fprintf(s.stderr, "smallsh: "+format+"\n", args...)
}
