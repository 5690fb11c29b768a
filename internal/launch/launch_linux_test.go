//go:build linux

package launch_test

import (
	"bufio"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"smallsh/internal/launch"
)

// ignoredSignals reads the SigIgn mask of a program started with plan.
func ignoredSignals(t *testing.T, background bool) uint64 {
	t.Helper()
	f := newFixture(t)

	f.run(t, launch.Plan{
		Argv:       []string{"cat", "/proc/self/status"},
		Output:     f.path("status"),
		Background: background,
	})

	s := bufio.NewScanner(strings.NewReader(f.read(t, "status")))
	for s.Scan() {
		if v, ok := strings.CutPrefix(s.Text(), "SigIgn:"); ok {
			mask, err := strconv.ParseUint(strings.TrimSpace(v), 16, 64)
			require.NoError(t, err)
			return mask
		}
	}

	t.Fatal("no SigIgn line in /proc/self/status")
	return 0
}

func bit(sig unix.Signal) uint64 {
	return 1 << (uint(sig) - 1)
}

func TestForegroundDispositions(t *testing.T) {
	mask := ignoredSignals(t, false)

	assert.Zero(t, mask&bit(unix.SIGINT), "interrupt should have its default action")
	assert.NotZero(t, mask&bit(unix.SIGTSTP), "terminal stop should be ignored")
}

func TestBackgroundDispositions(t *testing.T) {
	mask := ignoredSignals(t, true)

	assert.NotZero(t, mask&bit(unix.SIGINT), "interrupt should be ignored")
	assert.NotZero(t, mask&bit(unix.SIGTSTP), "terminal stop should be ignored")
}
