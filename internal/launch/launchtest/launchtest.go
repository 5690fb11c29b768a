// Package launchtest runs the launch trampoline inside a test binary.
package launchtest

import (
	"os"
	"testing"

	"smallsh/internal/launch"
)

// EnvMarker tells a re-executed test binary to act as the trampoline.
const EnvMarker = "SMALLSH_LAUNCH_CHILD"

// Main must be called from TestMain of packages that spawn children.
func Main(m *testing.M) {
	if os.Getenv(EnvMarker) != "" {
		os.Exit(launch.RunChild(os.Args, os.Stderr))
	}
	os.Exit(m.Run())
}

// Launcher returns a launcher that re-executes the current test binary.
func Launcher(t testing.TB) *launch.Launcher {
	t.Helper()

	exe, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}

	return &launch.Launcher{
		Path: exe,
		Args: []string{exe},
		Env:  append(os.Environ(), EnvMarker+"=1"),
	}
}
