package browser

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"hexplorer/internal/classify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCommandTextUsesEditor(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "myeditor --wait")

	cmd, interactive, err := openCommand("/tmp/a.txt", classify.Text)
	require.NoError(t, err)
	assert.True(t, interactive)
	assert.Equal(t, []string{"myeditor", "--wait", "/tmp/a.txt"}, cmd.Args)

	t.Setenv("VISUAL", "vis")
	cmd, _, err = openCommand("/tmp/a.txt", classify.Text)
	require.NoError(t, err)
	assert.Equal(t, []string{"vis", "/tmp/a.txt"}, cmd.Args)
}

func TestOpenCommandDefaultEditor(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "  ")

	cmd, _, err := openCommand("a.txt", classify.Text)
	require.NoError(t, err)
	assert.Equal(t, []string{defaultEditor, "a.txt"}, cmd.Args)
}

func TestOpenCommandBinaryUsesSystemOpener(t *testing.T) {
	want := map[string]string{"darwin": "open", "linux": "xdg-open", "windows": "cmd"}[runtime.GOOS]
	if want == "" {
		t.Skip("no opener expectation for " + runtime.GOOS)
	}

	cmd, interactive, err := openCommand("/tmp/a.bin", classify.Binary)
	require.NoError(t, err)
	assert.False(t, interactive)
	assert.Equal(t, want, cmd.Args[0])
	assert.Equal(t, "/tmp/a.bin", cmd.Args[len(cmd.Args)-1])
}

func TestOpenKey(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "true")
	f := newFixture(t)
	m := f.model(t)

	press(t, m, "tab")
	press(t, m, "down") // notes.txt previewed as text

	_, cmd := m.Update(key("e"))
	assert.NotNil(t, cmd)
	assert.Empty(t, m.errMsg)
}

func TestOpenKeyWithoutFile(t *testing.T) {
	f := newFixture(t)
	empty := filepath.Join(f.root, "alpha")
	m, err := NewModel(f.cfg, empty, false)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	_, cmd := m.Update(key("e"))
	assert.Nil(t, cmd)
}

func TestOpenedRefreshesPreview(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)
	path := filepath.Join(f.root, "notes.txt")

	press(t, m, "tab")
	press(t, m, "down")
	require.NotNil(t, m.Preview())

	// the editor saved new content
	require.NoError(t, os.WriteFile(path, []byte("edited\n"), 0644))
	_, cmd := m.Update(openedMsg{path: path})
	assert.Equal(t, "Opened notes.txt", m.statusMsg)
	deliver(m, cmd)

	require.NotNil(t, m.Preview())
	assert.Equal(t, "edited\n", m.Preview().String())
}

func TestOpenedError(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)

	_, cmd := m.Update(openedMsg{path: filepath.Join(f.root, "notes.txt"), err: errors.New("exit status 1")})
	assert.Nil(t, cmd)
	assert.Contains(t, m.errMsg, "exit status 1")
}
