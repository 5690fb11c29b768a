package jobs

import "sync/atomic"

// State is the interpreter-wide job state. The last status is owned by the
// interpreter loop; the background flag is flipped from the signal goroutine.
type State struct {
	last              ExitStatus
	backgroundAllowed atomic.Bool
}

func NewState() *State {
	s := &State{last: Exited(0)}
	s.backgroundAllowed.Store(true)
	return s
}

// LastStatus is the status of the most recent foreground job.
func (s *State) LastStatus() ExitStatus {
	return s.last
}

func (s *State) setLastStatus(status ExitStatus) {
	s.last = status
}

func (s *State) BackgroundAllowed() bool {
	return s.backgroundAllowed.Load()
}

// ToggleBackground flips the background flag and returns its new value.
func (s *State) ToggleBackground() bool {
	for {
		old := s.backgroundAllowed.Load()
		if s.backgroundAllowed.CompareAndSwap(old, !old) {
			return !old
		}
	}
}
