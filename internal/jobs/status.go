package jobs

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ExitStatus is how a job ended: a normal exit with a code, or a signal.
type ExitStatus struct {
	Code     int
	Signal   unix.Signal
	signaled bool
}

func Exited(code int) ExitStatus {
	return ExitStatus{Code: code}
}

func Signaled(sig unix.Signal) ExitStatus {
	return ExitStatus{Signal: sig, signaled: true}
}

// FromWaitStatus converts the status reported by wait4 for a terminated child.
func FromWaitStatus(ws unix.WaitStatus) ExitStatus {
	if ws.Signaled() {
		return Signaled(ws.Signal())
	}
	return Exited(ws.ExitStatus())
}

func (s ExitStatus) IsSignaled() bool {
	return s.signaled
}

func (s ExitStatus) String() string {
	if s.signaled {
		return fmt.Sprintf("terminated by signal %d", int(s.Signal))
	}
	return fmt.Sprintf("exit value %d", s.Code)
}
