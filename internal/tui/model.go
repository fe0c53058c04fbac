// Package tui implements the interactive entry list shown by the view
// command. The model owns a locked project session: every mutation is
// saved immediately while the lock is held, and the view aborts with a
// notice if the lock is lost to another process.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/flist-dev/flist/internal/logging"
	"github.com/flist-dev/flist/internal/project"
)

type mode int

const (
	modeEntries mode = iota
	modeArchive
	modeDrag
)

// InsertMsg delivers an entry forwarded by another process; the view's
// listener feeds these in via Program.Send.
type InsertMsg struct {
	Entry project.Entry
}

// StolenMsg tells the model its lock was reclaimed; the view must stop
// mutating and exit.
type StolenMsg struct{}

// Model is the bubbletea model for the entry list.
type Model struct {
	session *project.Session
	logger  *logging.Logger

	mode     mode
	cursor   int
	dragFrom int

	help   help.Model
	width  int
	height int

	notice string
	stolen bool
}

// New creates the entry list model over an open session.
func New(session *project.Session, logger *logging.Logger) *Model {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Model{
		session: session,
		logger:  logger.WithComponent("tui"),
		help:    help.New(),
	}
}

// Stolen reports whether the view exited because the lock was reclaimed.
func (m *Model) Stolen() bool {
	return m.stolen
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case InsertMsg:
		m.session.Project.Insert(msg.Entry)
		if m.mode == modeEntries || m.mode == modeDrag {
			// The list shifted down under the cursor.
			if m.cursor < len(m.session.Project.Entries)-1 {
				m.cursor++
			}
			if m.mode == modeDrag && m.dragFrom < len(m.session.Project.Entries)-1 {
				m.dragFrom++
			}
		}
		m.save()
		return m, nil

	case StolenMsg:
		m.stolen = true
		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) && m.mode != modeDrag {
			return m, tea.Quit
		}
		switch m.mode {
		case modeEntries:
			return m.updateEntries(msg)
		case modeArchive:
			return m.updateArchive(msg)
		case modeDrag:
			return m.updateDrag(msg)
		}
	}
	return m, nil
}

func (m *Model) updateEntries(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.session.Project.Entries
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(entries)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Home):
		m.cursor = 0
	case key.Matches(msg, keys.End):
		if len(entries) > 0 {
			m.cursor = len(entries) - 1
		}
	case key.Matches(msg, keys.OpenPreferred):
		m.openPreferred(entries)
	case key.Matches(msg, keys.Open):
		m.openSelected(entries)
	case key.Matches(msg, keys.Archive):
		if len(entries) == 0 {
			break
		}
		if err := m.session.Project.ArchiveEntry(m.cursor); err == nil {
			m.clampCursor(len(m.session.Project.Entries))
			m.save()
		}
	case key.Matches(msg, keys.Drag):
		if len(entries) > 0 {
			m.mode = modeDrag
			m.dragFrom = m.cursor
		}
	case key.Matches(msg, keys.ToggleArchive):
		if len(m.session.Project.Archive) > 0 {
			m.mode = modeArchive
			m.cursor = 0
		}
	}
	return m, nil
}

func (m *Model) updateArchive(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	archive := m.session.Project.Archive
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(archive)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Home):
		m.cursor = 0
	case key.Matches(msg, keys.End):
		if len(archive) > 0 {
			m.cursor = len(archive) - 1
		}
	case key.Matches(msg, keys.OpenPreferred):
		m.openPreferred(archive)
	case key.Matches(msg, keys.Open):
		m.openSelected(archive)
	case key.Matches(msg, keys.Restore):
		if err := m.session.Project.RestoreFromArchive(m.cursor); err == nil {
			m.mode = modeEntries
			m.cursor = 0
			m.save()
		}
	case key.Matches(msg, keys.Archive):
		if err := m.session.Project.RemoveFromArchive(m.cursor); err == nil {
			if len(m.session.Project.Archive) == 0 {
				m.mode = modeEntries
				m.cursor = 0
			} else {
				m.clampCursor(len(m.session.Project.Archive))
			}
			m.save()
		}
	case key.Matches(msg, keys.ToggleArchive):
		m.mode = modeEntries
		m.cursor = 0
	}
	return m, nil
}

func (m *Model) updateDrag(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.session.Project.Entries
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(entries)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Home):
		m.cursor = 0
	case key.Matches(msg, keys.End):
		if len(entries) > 0 {
			m.cursor = len(entries) - 1
		}
	case key.Matches(msg, keys.Confirm):
		if err := m.session.Project.Move(m.dragFrom, m.cursor); err == nil {
			m.save()
		}
		m.mode = modeEntries
	case key.Matches(msg, keys.Cancel):
		m.cursor = m.dragFrom
		m.mode = modeEntries
	}
	return m, nil
}

// openSelected launches the selected entry: the browser for URLs, the
// file manager for files and directories.
func (m *Model) openSelected(list []project.Entry) {
	if m.cursor >= len(list) {
		return
	}
	entry := list[m.cursor]
	var err error
	if entry.Link.Kind() == project.KindURL {
		err = entry.Link.Open()
	} else {
		err = entry.Link.Explore()
	}
	if err != nil {
		m.notice = err.Error()
		m.logger.Warn("open failed", "link", entry.Link.String(), "error", err.Error())
	}
}

// openPreferred quick-launches the entry's preferred file, falling back
// to exploring when no single file matches the configured suffixes.
func (m *Model) openPreferred(list []project.Entry) {
	if m.cursor >= len(list) {
		return
	}
	entry := list[m.cursor]
	pref, err := entry.Link.Preferred(m.session.Project.Config.PreferredSuffixes)
	if err == nil && pref != nil {
		if err := pref.File.Open(); err != nil {
			m.notice = err.Error()
		}
		return
	}
	m.openSelected(list)
}

func (m *Model) clampCursor(length int) {
	if length == 0 {
		m.cursor = 0
	} else if m.cursor >= length {
		m.cursor = length - 1
	}
}

func (m *Model) save() {
	if err := m.session.Save(); err != nil {
		m.notice = "save failed: " + err.Error()
		m.logger.Error("save failed", "error", err.Error())
	}
}

func (m *Model) View() string {
	if m.stolen {
		return noticeStyle.Render("project lock was taken by another process; no further changes were saved") + "\n"
	}

	var b strings.Builder

	title := "Entries"
	list := m.session.Project.Entries
	if m.mode == modeArchive {
		title = "Archive"
		list = m.session.Project.Archive
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(listBox.Render(m.renderList(list)))
	b.WriteString("\n")

	if entry := m.selectedEntry(list); entry != nil {
		b.WriteString(fmt.Sprintf("%s %s\n%s\n",
			detailName.Render(entry.Name),
			detailTime.Render("["+entry.TimeAdded.Format("01/02/06 3:04 PM")+"]"),
			detailLink.Render(entry.Link.String()),
		))
	}

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m *Model) renderList(list []project.Entry) string {
	if len(list) == 0 {
		return detailLink.Render("(no entries)")
	}

	// While dragging, preview the list with the entry in its tentative
	// position.
	selected := m.cursor
	if m.mode == modeDrag {
		preview := make([]project.Entry, 0, len(list))
		preview = append(preview, list[:m.dragFrom]...)
		preview = append(preview, list[m.dragFrom+1:]...)
		rest := append([]project.Entry{}, preview[selected:]...)
		preview = append(append(preview[:selected], list[m.dragFrom]), rest...)
		list = preview
	}

	var b strings.Builder
	for i, entry := range list {
		line := entry.Name
		switch {
		case i == selected && m.mode == modeDrag:
			line = draggedStyle.Render("≫ " + line)
		case i == selected:
			line = selectedStyle.Render("≫ " + line)
		default:
			line = "  " + line
		}
		b.WriteString(line)
		if i < len(list)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) selectedEntry(list []project.Entry) *project.Entry {
	if len(list) == 0 || m.cursor >= len(list) {
		return nil
	}
	if m.mode == modeDrag {
		return &m.session.Project.Entries[m.dragFrom]
	}
	return &list[m.cursor]
}
