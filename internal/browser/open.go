package browser

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"hexplorer/internal/classify"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultEditor = "vi"
	sniffBytes    = 4096
)

// openedMsg reports that an editor or opener started for path has finished.
type openedMsg struct {
	path string
	err  error
}

// openCommand builds the command that opens path. Text goes to $VISUAL or
// $EDITOR and needs the terminal; anything else goes to the platform opener,
// which does not.
func openCommand(path string, kind classify.Kind) (cmd *exec.Cmd, interactive bool, err error) {
	if kind == classify.Text {
		editor := os.Getenv("VISUAL")
		if editor == "" {
			editor = os.Getenv("EDITOR")
		}
		args := strings.Fields(editor)
		if len(args) == 0 {
			args = []string{defaultEditor}
		}
		return exec.Command(args[0], append(args[1:], path)...), true, nil
	}

	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path), false, nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path), false, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", path), false, nil
	}
	return nil, false, errors.New("no system opener on " + runtime.GOOS)
}

// openSelected opens the file under the cursor: in the editor when it is
// text, with the system opener otherwise.
func (m *Model) openSelected() tea.Cmd {
	path := m.currentFilePath()
	if path == "" {
		return nil
	}

	var kind classify.Kind
	if m.preview != nil && m.preview.Path == path {
		kind = m.preview.Kind
	} else {
		k, err := m.renderer.Sniff(path, sniffBytes)
		if err != nil {
			m.setError(err)
			return nil
		}
		kind = k
	}

	cmd, interactive, err := openCommand(path, kind)
	if err != nil {
		m.setError(err)
		return nil
	}
	m.log.WithField("path", path).WithField("command", cmd.Args[0]).Info("opening file")

	if interactive {
		return tea.ExecProcess(cmd, func(err error) tea.Msg {
			return openedMsg{path: path, err: err}
		})
	}
	return func() tea.Msg {
		return openedMsg{path: path, err: cmd.Run()}
	}
}

// handleOpened refreshes the listing and preview, since the editor may have
// changed or created files.
func (m *Model) handleOpened(msg openedMsg) tea.Cmd {
	if msg.err != nil {
		m.log.WithError(msg.err).WithField("path", msg.path).Warn("open failed")
		m.setError(msg.err)
		return nil
	}
	m.statusMsg = "Opened " + filepath.Base(msg.path)
	if filepath.Dir(msg.path) != m.dir {
		return nil
	}
	if err := m.relist(); err != nil {
		m.setError(err)
		return nil
	}
	if m.currentFilePath() != msg.path {
		return nil
	}
	status := m.statusMsg
	cmd := m.selectFile()
	if m.statusMsg == "" {
		m.statusMsg = status
	}
	return cmd
}
