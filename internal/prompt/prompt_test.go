package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPlain(t *testing.T) {
	assert.Equal(t, Default, Render(Default))
	assert.Equal(t, "> ", Render("> "))
}

func TestRenderWorkingDirectory(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })

	home, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(home, "src"), 0755))
	require.NoError(t, os.Chdir(filepath.Join(home, "src")))
	t.Setenv("HOME", home)

	assert.Equal(t, "~/src: ", Render(`\w: `))
}

func TestRenderHost(t *testing.T) {
	host, err := os.Hostname()
	require.NoError(t, err)

	assert.Equal(t, "@"+host+" ", Render(`@\h `))
	assert.NotContains(t, Render(`\u\$`), `\`)
}
