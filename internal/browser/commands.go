package browser

import (
	"hexplorer/internal/preview"
	"hexplorer/internal/snapshot"

	tea "github.com/charmbracelet/bubbletea"
)

// previewMsg carries a finished preview back to the update loop. seq
// identifies the request so results for an abandoned selection are dropped.
type previewMsg struct {
	seq     int
	path    string
	preview *preview.Preview
	err     error
}

type dirChangedMsg struct {
	dir string
}

type watchErrMsg struct {
	err error
}

// loadPreview reads and renders path off the update loop.
func loadPreview(r *preview.Renderer, path string, maxBytes int64, seq int) tea.Cmd {
	return func() tea.Msg {
		p, err := r.Load(path, maxBytes)
		return previewMsg{seq: seq, path: path, preview: p, err: err}
	}
}

func waitForChange(w *snapshot.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case dir, ok := <-w.Changes():
			if !ok {
				return nil
			}
			return dirChangedMsg{dir: dir}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}
