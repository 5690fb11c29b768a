package jobs

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"

	"smallsh/internal/launch"
	"smallsh/internal/logger"
	"smallsh/internal/parser"
)

// ErrSpawn means no process could be created; the interpreter cannot go on.
var ErrSpawn = errors.New("cannot create process")

type Spawner interface {
	Spawn(plan launch.Plan) (int, error)
}

type EventRecorder interface {
	Record(e logger.Event) error
}

type Options struct {
	// Out receives job notices, os.Stdout when nil.
	Out io.Writer
	// Drain reports every completed background job per poll instead of one.
	Drain bool
	// NullIO binds unredirected background stdio to /dev/null.
	NullIO bool

	Events EventRecorder
	Log    *log.Logger
}

// Completion is a background job observed as finished.
type Completion struct {
	Job    Job
	Status ExitStatus
}

// Supervisor runs jobs and tracks them until they are reaped. Background
// jobs are reaped on SIGCHLD as they finish, so reports follow completion
// order even when several finish between polls.
type Supervisor struct {
	State *State
	Table *Table

	// mu orders spawning against reaping and guards finished.
	mu       sync.Mutex
	finished []Completion
	sigchld  chan os.Signal
	reaped   chan struct{}
	stopOnce sync.Once

	spawner Spawner
	out     io.Writer
	drain   bool
	nullIO  bool
	events  EventRecorder
	log     *log.Logger
}

func NewSupervisor(spawner Spawner, state *State, opts Options) *Supervisor {
	s := &Supervisor{
		State:   state,
		Table:   NewTable(),
		spawner: spawner,
		out:     opts.Out,
		drain:   opts.Drain,
		nullIO:  opts.NullIO,
		events:  opts.Events,
		log:     opts.Log,
	}

	if s.out == nil {
		s.out = os.Stdout
	}
	if s.events == nil {
		s.events = logger.Nop().NewSession()
	}
	if s.log == nil {
		s.log = logger.NewDebug(nil, false)
	}

	s.sigchld = make(chan os.Signal, 1)
	s.reaped = make(chan struct{})
	signal.Notify(s.sigchld, unix.SIGCHLD)
	go s.reapLoop()

	return s
}

func (s *Supervisor) reapLoop() {
	defer close(s.reaped)

	for range s.sigchld {
		s.mu.Lock()
		s.collect()
		s.mu.Unlock()
	}
}

func (s *Supervisor) stopReaper() {
	s.stopOnce.Do(func() {
		signal.Stop(s.sigchld)
		close(s.sigchld)
		<-s.reaped
	})
}

// collect reaps every finished background job onto the finished queue.
// s.mu must be held.
func (s *Supervisor) collect() {
	for _, pid := range s.Table.BackgroundPids() {
		var ws unix.WaitStatus
		wpid, err := unix.Wait4(pid, &ws, unix.WNOHANG, nil)
		for err == unix.EINTR {
			wpid, err = unix.Wait4(pid, &ws, unix.WNOHANG, nil)
		}

		switch {
		case err != nil:
			s.log.Printf("wait for pid %d: %v", pid, err)
			s.Table.Remove(pid)
			continue
		case wpid == 0:
			continue
		}

		status := FromWaitStatus(ws)
		job, _ := s.Table.Remove(pid)
		s.finished = append(s.finished, Completion{Job: job, Status: status})
		s.record(logger.Event{Type: logger.EventReap, Pid: pid, Background: true, Status: status.String()})
	}
}

// Launch starts cmd. A foreground job is waited for and becomes the last
// status; a background job is announced and left running.
func (s *Supervisor) Launch(cmd parser.Command, background bool) error {
	plan := launch.Plan{
		Argv:       cmd.Args,
		Input:      cmd.InFile,
		Output:     cmd.OutFile,
		Background: background,
	}
	if background && s.nullIO {
		plan = plan.WithNullIO()
	}

	s.mu.Lock()
	pid, err := s.spawner.Spawn(plan)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	job := Job{Pid: pid, CmdArgs: cmd.Args, Background: background}
	s.Table.Add(job)
	s.record(logger.Event{Type: logger.EventSpawn, Pid: pid, Argv: job.CmdArgs, Background: background})
	s.mu.Unlock()
	s.log.Printf("spawned pid %d: %v (background=%t)", pid, job.CmdArgs, background)

	if background {
		fmt.Fprintf(s.out, "background pid is %d\n", pid)
		return nil
	}

	status, err := wait(pid)
	s.Table.Remove(pid)
	if err != nil {
		return fmt.Errorf("wait for pid %d: %w", pid, err)
	}

	s.State.setLastStatus(status)
	s.record(logger.Event{Type: logger.EventReap, Pid: pid, Status: status.String()})

	if status.IsSignaled() {
		fmt.Fprintln(s.out, status)
	}

	return nil
}

// PollBackground reports finished background jobs without blocking, in
// completion order. Without drain it reports at most one per call.
func (s *Supervisor) PollBackground() []Completion {
	s.mu.Lock()
	s.collect()

	n := len(s.finished)
	if n > 1 && !s.drain {
		n = 1
	}
	if n == 0 {
		s.mu.Unlock()
		return nil
	}
	done := append([]Completion(nil), s.finished[:n]...)
	s.finished = s.finished[n:]
	s.mu.Unlock()

	for _, c := range done {
		fmt.Fprintf(s.out, "background pid %d is done: %s\n", c.Job.Pid, c.Status)
	}

	return done
}

// TerminateAll kills every job still running and returns the status the
// interpreter should exit with: 1 if any job was ever launched, 0 otherwise.
func (s *Supervisor) TerminateAll() int {
	s.stopReaper()

	for _, pid := range s.Table.Pids() {
		if err := unix.Kill(pid, unix.SIGKILL); err != nil {
			s.log.Printf("kill pid %d: %v", pid, err)
		}
		s.record(logger.Event{Type: logger.EventKill, Pid: pid})

		if _, err := wait(pid); err != nil {
			s.log.Printf("wait for pid %d: %v", pid, err)
		}
		s.Table.Remove(pid)
	}

	if s.Table.Launched() > 0 {
		return 1
	}
	return 0
}

func (s *Supervisor) record(e logger.Event) {
	if err := s.events.Record(e); err != nil {
		s.log.Printf("record %s event: %v", e.Type, err)
	}
}

func wait(pid int) (ExitStatus, error) {
	var ws unix.WaitStatus

	for {
		_, err := unix.Wait4(pid, &ws, 0, nil)
		switch {
		case err == unix.EINTR:
			continue
		case err != nil:
			return ExitStatus{}, err
		}
		return FromWaitStatus(ws), nil
	}
}
