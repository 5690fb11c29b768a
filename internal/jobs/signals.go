package jobs

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

var (
	enterForegroundOnly = []byte("\nEntering foreground-only mode (& is now ignored)\n")
	exitForegroundOnly  = []byte("\nExiting foreground-only mode\n")
)

// SignalPolicy owns the interpreter's signal dispositions: interrupts are
// ignored and every terminal stop toggles whether & is honored.
type SignalPolicy struct {
	state    *State
	fd       int
	sigs     chan os.Signal
	done     chan struct{}
	onToggle func(allowed bool)
}

// InstallSignals applies the policy. Mode notices are written straight to fd
// with a single write(2) of a fixed buffer. onToggle may be nil.
func InstallSignals(state *State, fd int, onToggle func(allowed bool)) *SignalPolicy {
	p := &SignalPolicy{
		state:    state,
		fd:       fd,
		sigs:     make(chan os.Signal, 1),
		done:     make(chan struct{}),
		onToggle: onToggle,
	}

	signal.Ignore(os.Interrupt)
	signal.Notify(p.sigs, unix.SIGTSTP)

	go p.loop()
	return p
}

func (p *SignalPolicy) loop() {
	defer close(p.done)

	for range p.sigs {
		allowed := p.state.ToggleBackground()

		msg := exitForegroundOnly
		if !allowed {
			msg = enterForegroundOnly
		}
		_, _ = unix.Write(p.fd, msg)

		if p.onToggle != nil {
			p.onToggle(allowed)
		}
	}
}

// Stop restores the default dispositions.
func (p *SignalPolicy) Stop() {
	signal.Stop(p.sigs)
	signal.Reset(os.Interrupt, unix.SIGTSTP)
	close(p.sigs)
	<-p.done
}
