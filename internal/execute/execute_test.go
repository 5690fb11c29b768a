package execute

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smallsh/internal/jobs"
	"smallsh/internal/launch/launchtest"
	"smallsh/internal/parser"
)

func TestMain(m *testing.M) {
	launchtest.Main(m)
}

type fixture struct {
	*Dispatcher
	out *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	out := &bytes.Buffer{}
	supervisor := jobs.NewSupervisor(launchtest.Launcher(t), jobs.NewState(), jobs.Options{Out: out, Drain: true})
	t.Cleanup(func() { supervisor.TerminateAll() })

	return &fixture{Dispatcher: NewDispatcher(supervisor, out), out: out}
}

func (f *fixture) run(t *testing.T, line string) error {
	t.Helper()

	cmd, err := parser.Parse(line, os.Getpid(), parser.DefaultLimits())
	require.NoError(t, err)
	return f.Run(cmd)
}

// keepWd restores the working directory after a test that changes it.
func keepWd(t *testing.T) {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Setenv(EnvPWD, os.Getenv(EnvPWD))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func getwd(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	wd, err = filepath.EvalSymlinks(wd)
	require.NoError(t, err)
	return wd
}

func TestClassify(t *testing.T) {
	cases := []struct {
		args     []string
		expected Kind
	}{
		{nil, KindEmpty},
		{[]string{"#", "comment"}, KindEmpty},
		{[]string{"#cd"}, KindEmpty},
		{[]string{"exit"}, KindBuiltin},
		{[]string{"cd", "/tmp"}, KindBuiltin},
		{[]string{"status"}, KindBuiltin},
		{[]string{"Status"}, KindExternal},
		{[]string{"ls", "-l"}, KindExternal},
	}

	for _, tc := range cases {
		t.Run(tc.expected.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(parser.Command{Args: tc.args}))
		})
	}
}

func TestStatusBeforeAnyCommand(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "status"))
	assert.Equal(t, "exit value 0\n", f.out.String())
}

func TestStatusAfterCommands(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "false"))
	require.NoError(t, f.run(t, "status"))
	require.NoError(t, f.run(t, "true"))
	require.NoError(t, f.run(t, "status &"))

	assert.Equal(t, "exit value 1\nexit value 0\n", f.out.String())
}

func TestRunRedirect(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(t.TempDir(), "out.txt")

	require.NoError(t, f.run(t, "echo hello > "+out))
	require.NoError(t, f.run(t, "status"))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(b))
	assert.Equal(t, "exit value 0\n", f.out.String())
}

func TestRunMissingRedirectTarget(t *testing.T) {
	f := newFixture(t)

	err := f.run(t, "cat <")

	assert.ErrorIs(t, err, parser.ErrMissingTarget)
	assert.Zero(t, f.Supervisor.Table.Launched())
}

func TestRunBackground(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "sleep 30 &"))

	assert.Equal(t, 1, f.Supervisor.Table.Len())
	assert.Contains(t, f.out.String(), "background pid is ")
}

func TestRunForegroundOnlyMode(t *testing.T) {
	f := newFixture(t)
	f.Supervisor.State.ToggleBackground()

	require.NoError(t, f.run(t, "true &"))

	assert.Zero(t, f.Supervisor.Table.Len())
	assert.Equal(t, 1, f.Supervisor.Table.Launched())
	assert.NotContains(t, f.out.String(), "background pid")
}

func TestCd(t *testing.T) {
	t.Run("path", func(t *testing.T) {
		keepWd(t)
		dir, err := filepath.EvalSymlinks(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, newFixture(t).run(t, "cd "+dir))
		assert.Equal(t, dir, getwd(t))
		assert.Equal(t, dir, os.Getenv(EnvPWD))
	})

	t.Run("home", func(t *testing.T) {
		keepWd(t)
		dir, err := filepath.EvalSymlinks(t.TempDir())
		require.NoError(t, err)
		t.Setenv(EnvHome, dir)

		require.NoError(t, newFixture(t).run(t, "cd"))
		assert.Equal(t, dir, getwd(t))
	})

	t.Run("missing", func(t *testing.T) {
		keepWd(t)
		before := getwd(t)

		err := newFixture(t).run(t, "cd /nonexistent/path")

		assert.EqualError(t, err, "cd: /nonexistent/path: no such file or directory")
		assert.Equal(t, before, getwd(t))
	})

	t.Run("no-home", func(t *testing.T) {
		keepWd(t)
		t.Setenv(EnvHome, "")

		assert.EqualError(t, newFixture(t).run(t, "cd"), "cd: HOME not set")
	})

	t.Run("too-many", func(t *testing.T) {
		keepWd(t)

		assert.EqualError(t, newFixture(t).run(t, "cd a b"), "cd: too many arguments")
	})
}

func TestExit(t *testing.T) {
	t.Run("no-jobs", func(t *testing.T) {
		err := newFixture(t).run(t, "exit")

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 0, exitErr.Code)
	})

	t.Run("running-job", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.run(t, "sleep 30 &"))

		err := f.run(t, "exit")

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 1, exitErr.Code)
		assert.Zero(t, f.Supervisor.Table.Len())
	})
}
