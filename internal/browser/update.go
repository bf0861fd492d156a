package browser

import (
	"errors"
	"fmt"

	"hexplorer/internal/buffer"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) Init() tea.Cmd {
	return waitForChange(m.watcher)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case previewMsg:
		m.handlePreview(msg)
		return m, nil

	case dirChangedMsg:
		if msg.dir == m.dir {
			if err := m.relist(); err != nil {
				m.setError(err)
			}
		}
		return m, waitForChange(m.watcher)

	case openedMsg:
		return m, m.handleOpened(msg)

	case watchErrMsg:
		m.log.WithError(msg.err).Warn("watcher error")
		return m, waitForChange(m.watcher)
	}

	return m, nil
}

func (m *Model) handlePreview(msg previewMsg) {
	if msg.seq != m.previewSeq || msg.path != m.selected {
		return
	}
	m.loading = false
	if msg.err != nil {
		var ioErr *buffer.IOError
		if errors.As(msg.err, &ioErr) && ioErr.IsPermission() {
			m.errMsg = "Permission denied: " + ioErr.Path
		} else {
			m.errMsg = fmt.Sprintf("Error: %v", msg.err)
		}
		return
	}
	m.preview = msg.preview
	m.viewport.SetContent(displayText(msg.preview.String()))
	m.viewport.GotoTop()
}

func (m *Model) setError(err error) {
	if err != nil {
		m.errMsg = fmt.Sprintf("Error: %v", err)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Clear status message on any key
	m.statusMsg = ""
	m.errMsg = ""

	switch m.view {
	case ViewHelp:
		return m.handleHelpKey(msg)
	case ViewPath:
		return m.handlePathKey(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKey(msg)
	default:
		return m.handleMainKey(msg)
	}
}

func (m *Model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus == PanePreview {
		switch msg.String() {
		case "up", "down", "k", "j", "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.Close()
		return m, tea.Quit
	case "?":
		m.view = ViewHelp
	case "tab":
		m.focus = (m.focus + 1) % paneCount
	case "shift+tab":
		m.focus = (m.focus + paneCount - 1) % paneCount
	case "up", "k":
		return m, m.moveCursor(-1)
	case "down", "j":
		return m, m.moveCursor(1)
	case "pgup":
		return m, m.moveCursor(-m.listHeight())
	case "pgdown":
		return m, m.moveCursor(m.listHeight())
	case "enter", "right":
		switch m.focus {
		case PaneDirs:
			m.setError(m.enterDir())
		case PaneFiles:
			return m, m.selectFile()
		}
	case "backspace", "left":
		m.setError(m.goParent())
	case "b", "alt+left":
		m.setError(m.goBack())
	case "f", "alt+right":
		m.setError(m.goForward())
	case "o":
		m.setError(m.goHome())
	case "g":
		m.view = ViewPath
		m.pathInput.SetValue(m.dir)
		m.pathInput.CursorEnd()
		return m, m.pathInput.Focus()
	case "s":
		m.setError(m.toggleSort())
	case ".":
		m.setError(m.toggleHidden())
	case "L":
		return m, m.togglePreviewLarge()
	case "r":
		m.setError(m.relist())
	case "e":
		return m, m.openSelected()
	case "d":
		if m.currentFileName() != "" {
			m.view = ViewConfirmDelete
		}
	}
	return m, nil
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape, tea.KeyEnter:
		m.view = ViewMain
	default:
		if msg.String() == "?" || msg.String() == "q" {
			m.view = ViewMain
		}
	}
	return m, nil
}

func (m *Model) handlePathKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.pathInput.Blur()
		m.view = ViewMain
		return m, nil
	case tea.KeyEnter:
		m.pathInput.Blur()
		m.view = ViewMain
		m.setError(m.openDir(m.pathInput.Value(), true))
		return m, nil
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.view = ViewMain
		m.setError(m.deleteSelected())
	case "n", "N", "esc":
		m.view = ViewMain
		m.statusMsg = "File not deleted"
	}
	return m, nil
}
