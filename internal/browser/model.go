package browser

import (
	"fmt"
	"path/filepath"

	"hexplorer/internal/config"
	"hexplorer/internal/history"
	"hexplorer/internal/logging"
	"hexplorer/internal/preview"
	"hexplorer/internal/snapshot"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"
)

type Pane int

const (
	PaneDirs Pane = iota
	PaneFiles
	PanePreview
)

const paneCount = 3

type View int

const (
	ViewMain View = iota
	ViewHelp
	ViewPath
	ViewConfirmDelete
)

type Model struct {
	config   *config.Config
	styles   *config.Styles
	renderer *preview.Renderer
	policy   preview.Policy
	ignore   []glob.Glob
	history  *history.History
	watcher  *snapshot.Watcher
	log      *logrus.Entry

	dir       string
	dirs      []snapshot.Entry
	files     []snapshot.Entry
	dirIndex  int
	fileIndex int
	focus     Pane
	view      View

	pathInput textinput.Model
	viewport  viewport.Model

	selected   string
	info       *snapshot.Info
	preview    *preview.Preview
	previewSeq int
	loading    bool

	width  int
	height int

	statusMsg string
	errMsg    string
}

// NewModel opens start (or the configured home when empty) and records it
// as the first history entry. With watch set, the listed directory is
// refreshed when entries appear or disappear.
func NewModel(cfg *config.Config, start string, watch bool) (*Model, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	renderer, err := preview.NewRenderer(cfg.Preview.Encoding)
	if err != nil {
		return nil, err
	}
	ignore, err := snapshot.CompileIgnore(cfg.Browser.Ignore)
	if err != nil {
		return nil, err
	}

	ti := textinput.New()
	ti.Prompt = "Path: "
	ti.CharLimit = 4096

	m := &Model{
		config:    cfg,
		styles:    config.NewStyles(&cfg.Theme),
		renderer:  renderer,
		policy:    preview.PolicyFrom(cfg.Preview),
		ignore:    ignore,
		history:   history.NewDefault(),
		log:       logging.NewLogger("browser"),
		pathInput: ti,
		viewport:  viewport.New(0, 0),
		focus:     PaneDirs,
	}

	if watch {
		w, err := snapshot.NewWatcher()
		if err != nil {
			m.log.WithError(err).Warn("directory watching disabled")
		} else {
			m.watcher = w
		}
	}

	if start == "" {
		start = cfg.HomeDir()
	}
	if err := m.openDir(start, true); err != nil {
		m.Close()
		return nil, fmt.Errorf("failed to open %s: %w", start, err)
	}
	return m, nil
}

// Close stops the directory watcher.
func (m *Model) Close() {
	if m.watcher != nil {
		_ = m.watcher.Close()
		m.watcher = nil
	}
}

func (m *Model) Dir() string {
	return m.dir
}

func (m *Model) History() *history.History {
	return m.history
}

func (m *Model) Preview() *preview.Preview {
	return m.preview
}

func (m *Model) options() snapshot.Options {
	return snapshot.Options{
		ShowHidden: m.config.Browser.ShowHidden,
		Descending: m.config.Browser.SortDescending,
		Ignore:     m.ignore,
	}
}

// openDir lists path and makes it current. record adds it to the history;
// back and forward moves pass false.
func (m *Model) openDir(path string, record bool) error {
	dir, err := snapshot.Resolve(path)
	if err != nil {
		return err
	}
	listing, err := snapshot.List(dir, m.options())
	if err != nil {
		return err
	}

	m.dir = dir
	m.setListing(listing)
	m.dirIndex = 0
	m.fileIndex = 0
	m.clearPreview()

	if record {
		m.history.Advance(dir)
	}
	if m.watcher != nil {
		if err := m.watcher.Watch(dir); err != nil {
			m.log.WithError(err).WithField("dir", dir).Warn("watch failed")
		}
	}
	m.log.WithFields(logrus.Fields{"dir": dir, "recorded": record}).Debug("opened directory")
	return nil
}

func (m *Model) setListing(l *snapshot.Listing) {
	m.dirs = m.dirs[:0]
	if snapshot.Parent(l.Path) != l.Path {
		m.dirs = append(m.dirs, snapshot.Entry{Name: snapshot.ParentName, IsDir: true})
	}
	m.dirs = append(m.dirs, l.Dirs...)
	m.files = l.Files
}

// relist reloads the current directory, keeping the selection by name.
func (m *Model) relist() error {
	listing, err := snapshot.List(m.dir, m.options())
	if err != nil {
		return err
	}
	dirName := m.currentDirName()
	fileName := m.currentFileName()

	m.setListing(listing)
	m.dirIndex = indexOf(m.dirs, dirName)
	m.fileIndex = indexOf(m.files, fileName)

	if m.selected != "" && m.currentFilePath() != m.selected {
		m.clearPreview()
	}
	return nil
}

func indexOf(entries []snapshot.Entry, name string) int {
	for i, e := range entries {
		if e.Name == name {
			return i
		}
	}
	return 0
}

func (m *Model) currentDirName() string {
	if m.dirIndex < 0 || m.dirIndex >= len(m.dirs) {
		return ""
	}
	return m.dirs[m.dirIndex].Name
}

func (m *Model) currentFileName() string {
	if m.fileIndex < 0 || m.fileIndex >= len(m.files) {
		return ""
	}
	return m.files[m.fileIndex].Name
}

func (m *Model) currentFilePath() string {
	name := m.currentFileName()
	if name == "" {
		return ""
	}
	return filepath.Join(m.dir, name)
}

func (m *Model) clearPreview() {
	m.selected = ""
	m.info = nil
	m.preview = nil
	m.loading = false
	m.previewSeq++
	m.viewport.SetContent("")
	m.viewport.GotoTop()
}

func (m *Model) enterDir() error {
	name := m.currentDirName()
	if name == "" {
		return nil
	}
	target := filepath.Join(m.dir, name)
	if name == snapshot.ParentName {
		target = snapshot.Parent(m.dir)
	}
	return m.openDir(target, true)
}

func (m *Model) goParent() error {
	parent := snapshot.Parent(m.dir)
	if parent == m.dir {
		return nil
	}
	return m.openDir(parent, true)
}

func (m *Model) goBack() error {
	path, ok := m.history.Back()
	if !ok {
		m.statusMsg = "No earlier directory"
		return nil
	}
	m.log.WithField("dir", path).Debug("history back")
	return m.openDir(path, false)
}

func (m *Model) goForward() error {
	path, ok := m.history.Forward()
	if !ok {
		m.statusMsg = "No later directory"
		return nil
	}
	m.log.WithField("dir", path).Debug("history forward")
	return m.openDir(path, false)
}

func (m *Model) goHome() error {
	return m.openDir(m.config.HomeDir(), true)
}

// selectFile shows the attributes of the file under the cursor and starts a
// preview when the size policy allows it.
func (m *Model) selectFile() tea.Cmd {
	path := m.currentFilePath()
	m.clearPreview()
	if path == "" {
		return nil
	}

	info, err := snapshot.Stat(path)
	if err != nil {
		m.errMsg = fmt.Sprintf("Error: %v", err)
		return nil
	}
	m.selected = path
	m.info = info

	if !m.policy.Allows(info.Size) {
		m.statusMsg = "Large file: press L to preview large files"
		return nil
	}
	m.loading = true
	return loadPreview(m.renderer, path, m.policy.MaxBytes, m.previewSeq)
}

func (m *Model) toggleHidden() error {
	m.config.Browser.ShowHidden = !m.config.Browser.ShowHidden
	return m.relist()
}

func (m *Model) toggleSort() error {
	m.config.Browser.SortDescending = !m.config.Browser.SortDescending
	return m.relist()
}

func (m *Model) togglePreviewLarge() tea.Cmd {
	m.policy.PreviewLarge = !m.policy.PreviewLarge
	if m.policy.PreviewLarge {
		m.statusMsg = "Large file preview on"
	} else {
		m.statusMsg = "Large file preview off"
	}
	if m.policy.PreviewLarge && m.selected != "" && m.preview == nil && !m.loading {
		m.fileIndex = indexOf(m.files, filepath.Base(m.selected))
		return m.selectFile()
	}
	return nil
}

func (m *Model) deleteSelected() error {
	path := m.currentFilePath()
	if path == "" {
		return nil
	}
	if err := snapshot.Remove(path); err != nil {
		return err
	}
	m.log.WithField("path", path).Info("deleted file")
	m.statusMsg = "Deleted " + filepath.Base(path)
	m.clearPreview()
	return m.relist()
}

func (m *Model) moveCursor(delta int) tea.Cmd {
	switch m.focus {
	case PaneDirs:
		m.dirIndex = clamp(m.dirIndex+delta, len(m.dirs))
	case PaneFiles:
		prev := m.fileIndex
		m.fileIndex = clamp(m.fileIndex+delta, len(m.files))
		if m.fileIndex != prev || m.selected == "" {
			return m.selectFile()
		}
	}
	return nil
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
