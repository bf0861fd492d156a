package browser

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"hexplorer/internal/classify"
	"hexplorer/internal/snapshot"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	chromeHeight = 3 // legend, path bar, status line
	attrLines    = 5
	borderSize   = 2
)

func (m *Model) bodyHeight() int {
	return max(m.height-chromeHeight, borderSize+1)
}

func (m *Model) listHeight() int {
	return max(m.bodyHeight()-borderSize, 1)
}

func (m *Model) columnWidths() (dirs, files, right int) {
	dirs = max(m.width/5, 12)
	files = max(m.width/5, 12)
	right = max(m.width-dirs-files, 20)
	return dirs, files, right
}

func (m *Model) resizeViewport() {
	_, _, right := m.columnWidths()
	m.viewport.Width = max(right-borderSize, 1)
	m.viewport.Height = max(m.bodyHeight()-(attrLines+borderSize)-borderSize, 1)
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder

	// Legend
	b.WriteString(m.renderLegend())
	b.WriteString("\n")

	switch m.view {
	case ViewHelp:
		b.WriteString(m.renderHelp())
	case ViewPath:
		b.WriteString(m.pathInput.View())
		b.WriteString("\n")
		b.WriteString(m.renderBody())
	case ViewConfirmDelete:
		b.WriteString(m.renderPathBar())
		b.WriteString("\n")
		b.WriteString(m.renderConfirmDialog(
			fmt.Sprintf("Are you sure you want to delete this file?\n\n%s\n\n(Y)es / (N)o", m.currentFilePath())))
	default:
		b.WriteString(m.renderPathBar())
		b.WriteString("\n")
		b.WriteString(m.renderBody())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m *Model) renderLegend() string {
	var items []string

	hl := func(text string, highlightIdx int) string {
		var result strings.Builder
		for i, ch := range text {
			if i == highlightIdx {
				result.WriteString(m.styles.LegendHighlight.Render(string(ch)))
			} else {
				result.WriteString(m.styles.Legend.Render(string(ch)))
			}
		}
		return result.String()
	}

	items = append(items, hl("Quit", 0))
	items = append(items, m.styles.LegendHighlight.Render("?")+m.styles.Legend.Render(" Help"))

	if m.view == ViewMain {
		if m.history.CanBack() {
			items = append(items, hl("Back", 0))
		} else {
			items = append(items, m.styles.Disabled.Render("Back"))
		}
		if m.history.CanForward() {
			items = append(items, hl("Forward", 0))
		} else {
			items = append(items, m.styles.Disabled.Render("Forward"))
		}
		items = append(items, hl("hOme", 1))
		items = append(items, hl("Goto", 0))
		items = append(items, hl("Sort", 0))
		items = append(items, m.styles.LegendHighlight.Render(".")+m.styles.Legend.Render(" Hidden"))
		items = append(items, hl("Large", 0))
		items = append(items, hl("Edit", 0))
		items = append(items, hl("Delete", 0))
		items = append(items, m.styles.LegendHighlight.Render("TAB"))
	} else {
		items = append(items, m.styles.LegendHighlight.Render("ESC")+m.styles.Legend.Render(" Back"))
	}

	legend := strings.Join(items, m.styles.Legend.Render(" | "))
	return m.styles.Legend.Width(m.width).Render(legend)
}

func (m *Model) renderPathBar() string {
	var flags []string
	if m.config.Browser.ShowHidden {
		flags = append(flags, "hidden")
	}
	if m.config.Browser.SortDescending {
		flags = append(flags, "z-a")
	}
	if m.policy.PreviewLarge {
		flags = append(flags, "large")
	}
	bar := "Path: " + m.dir
	if len(flags) > 0 {
		bar += "  [" + strings.Join(flags, ",") + "]"
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(bar)
}

func (m *Model) paneStyle(p Pane) lipgloss.Style {
	if m.focus == p {
		return m.styles.ActivePane
	}
	return m.styles.InactivePane
}

func (m *Model) renderBody() string {
	dirW, fileW, rightW := m.columnWidths()
	h := m.listHeight()

	dirs := m.paneStyle(PaneDirs).
		Width(dirW - borderSize).
		Height(h).
		Render(m.renderList(m.dirs, m.dirIndex, dirW-borderSize, h, m.focus == PaneDirs))
	files := m.paneStyle(PaneFiles).
		Width(fileW - borderSize).
		Height(h).
		Render(m.renderList(m.files, m.fileIndex, fileW-borderSize, h, m.focus == PaneFiles))

	attrs := m.styles.Border.
		Width(rightW - borderSize).
		Height(attrLines).
		Render(m.renderAttributes(rightW - borderSize))
	content := m.paneStyle(PanePreview).
		Width(rightW - borderSize).
		Height(m.viewport.Height).
		Render(m.renderPreview())

	right := lipgloss.JoinVertical(lipgloss.Left, attrs, content)
	return lipgloss.JoinHorizontal(lipgloss.Top, dirs, files, right)
}

func (m *Model) renderList(entries []snapshot.Entry, index, width, height int, focused bool) string {
	if len(entries) == 0 {
		return m.styles.Disabled.Render("(empty)")
	}

	start := 0
	if index >= height {
		start = index - height + 1
	}

	clip := lipgloss.NewStyle().MaxWidth(width)
	var lines []string
	for i := start; i < len(entries) && i < start+height; i++ {
		e := entries[i]
		name := e.Name
		style := m.styles.Normal
		if e.IsDir {
			name += "/"
			style = m.styles.Directory
		}
		if i == index {
			if focused {
				style = m.styles.Selection
			}
			name = "> " + name
		} else {
			name = "  " + name
		}
		lines = append(lines, clip.Render(style.Render(name)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderAttributes(width int) string {
	if m.info == nil {
		return m.styles.Disabled.Render("No file selected")
	}

	attr := func(label, value string) string {
		line := m.styles.AttrLabel.Render(label+": ") + m.styles.AttrValue.Render(value)
		return lipgloss.NewStyle().MaxWidth(width).Render(line)
	}

	lines := []string{
		attr("File Size", fmt.Sprintf("%d bytes (%s)", m.info.Size, humanize.Bytes(uint64(m.info.Size)))),
		attr("Last Accessed", m.info.AccessTime.Format(time.ANSIC)),
		attr("Last Modified", fmt.Sprintf("%s (%s)", m.info.ModTime.Format(time.ANSIC), humanize.Time(m.info.ModTime))),
	}

	switch p := m.preview; {
	case m.loading:
		lines = append(lines, m.styles.Disabled.Render("Loading..."))
	case p == nil:
	case p.Kind == classify.Text:
		lines = append(lines,
			attr("Lines", humanize.Comma(int64(p.LineCount))),
			attr("Characters", humanize.Comma(int64(p.CharCount))))
	default:
		lines = append(lines,
			attr("Binary", fmt.Sprintf("%s rows, %d-digit addresses", humanize.Comma(int64(p.LineCount)), p.AddressWidth)))
	}
	if m.preview != nil && m.preview.Truncated {
		lines = append(lines, attr("Preview", fmt.Sprintf("first %s of %s",
			humanize.Bytes(uint64(m.policy.MaxBytes)), humanize.Bytes(uint64(m.preview.Size)))))
	}
	if len(lines) > attrLines {
		lines = lines[:attrLines]
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderPreview() string {
	if m.selected == "" {
		return ""
	}
	if m.preview == nil {
		return m.styles.Disabled.Render(filepath.Base(m.selected))
	}
	return m.viewport.View()
}

// displayText makes file content safe to hand to the terminal. CRLF becomes
// LF and other control characters become visible stand-ins (U+2400 block for
// C0, U+2421 for DEL, U+FFFD for C1), so content cannot emit escape
// sequences. Newlines and tabs are kept.
func displayText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20:
			return 0x2400 + r
		case r == 0x7f:
			return 0x2421
		case r >= 0x80 && r <= 0x9f:
			return utf8.RuneError
		}
		return r
	}, s)
}

func (m *Model) renderStatus() string {
	if m.errMsg != "" {
		return m.styles.Error.Render(m.errMsg)
	}
	if m.statusMsg != "" {
		return m.statusMsg
	}
	return m.styles.Disabled.Render(fmt.Sprintf("%d dirs, %d files | encoding %s | history %d/%d",
		len(m.dirs), len(m.files), m.renderer.Encoding(), m.history.Len(), m.history.Capacity()))
}

func (m *Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.styles.HelpTitle.Render("HEXPLORER HELP"))
	b.WriteString("\n\n")

	keys := []struct{ key, desc string }{
		{"TAB / Shift+TAB", "Cycle between directories, files and preview"},
		{"Up/Down, j/k", "Move selection or scroll the preview"},
		{"Enter / Right", "Open directory or preview file"},
		{"Backspace / Left", "Go to parent directory"},
		{"b / Alt+Left", "Back in history"},
		{"f / Alt+Right", "Forward in history"},
		{"o", "Home directory"},
		{"g", "Go to a typed path"},
		{"s", "Reverse sort order"},
		{".", "Show or hide hidden files"},
		{"L", "Preview large files"},
		{"e", "Open file: $EDITOR for text, system opener otherwise"},
		{"d", "Delete selected file"},
		{"r", "Reload directory"},
		{"q", "Quit"},
	}
	for _, k := range keys {
		b.WriteString(m.styles.HelpKey.Render(fmt.Sprintf("%-18s", k.key)))
		b.WriteString(m.styles.HelpDesc.Render(k.desc))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Files under %s are previewed automatically.\n",
		humanize.Bytes(uint64(m.policy.SmallFileThreshold))))
	return b.String()
}

func (m *Model) renderConfirmDialog(message string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.config.Theme.BorderColor)).
		Padding(1, 2).
		Render(message)
	return box
}
