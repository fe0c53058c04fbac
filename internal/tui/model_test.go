package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/flist-dev/flist/internal/project"
	"github.com/flist-dev/flist/internal/testutil"
)

func testSession(t *testing.T, names ...string) *project.Session {
	t.Helper()
	dir := testutil.SetupTestProjectWithEntries(t, names...)

	sess, err := project.Open(context.Background(), dir, testutil.FastLockConfig(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	return sess
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "delete":
			msg = tea.KeyMsg{Type: tea.KeyDelete}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func entryNames(sess *project.Session) []string {
	names := make([]string, len(sess.Project.Entries))
	for i, e := range sess.Project.Entries {
		names[i] = e.Name
	}
	return names
}

func TestArchiveKeyMovesEntry(t *testing.T) {
	sess := testSession(t, "a", "b", "c")
	m := New(sess, nil)

	press(m, "down", "delete")

	if got := entryNames(sess); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("entries after archive = %v, want [a c]", got)
	}
	if len(sess.Project.Archive) != 1 || sess.Project.Archive[0].Name != "b" {
		t.Errorf("archive = %+v, want b", sess.Project.Archive)
	}
}

func TestArchiveViewRestore(t *testing.T) {
	sess := testSession(t, "a", "b")
	m := New(sess, nil)

	// Archive "a", switch to the archive view, restore it.
	press(m, "delete", "a", "r")

	if len(sess.Project.Archive) != 0 {
		t.Errorf("archive = %+v, want empty after restore", sess.Project.Archive)
	}
	if got := entryNames(sess); got[0] != "a" {
		t.Errorf("restored entry should lead the list, got %v", got)
	}
}

func TestArchiveToggleRequiresArchivedEntries(t *testing.T) {
	sess := testSession(t, "a")
	m := New(sess, nil)

	press(m, "a")
	if m.mode != modeEntries {
		t.Error("toggle with an empty archive should stay on entries")
	}
}

func TestDragReorders(t *testing.T) {
	sess := testSession(t, "a", "b", "c")
	m := New(sess, nil)

	// Drag "a" below "c".
	press(m, "d", "down", "down", "enter")

	if got := entryNames(sess); got[0] != "b" || got[1] != "c" || got[2] != "a" {
		t.Errorf("entries after drag = %v, want [b c a]", got)
	}
}

func TestDragCancel(t *testing.T) {
	sess := testSession(t, "a", "b")
	m := New(sess, nil)

	press(m, "d", "down", "esc")

	if got := entryNames(sess); got[0] != "a" || got[1] != "b" {
		t.Errorf("canceled drag must not reorder, got %v", got)
	}
}

func TestInsertMsgPrepends(t *testing.T) {
	sess := testSession(t, "a")
	m := New(sess, nil)

	m.Update(InsertMsg{Entry: project.NewEntry("pushed", "https://example.com/p", nil)})

	if got := entryNames(sess); got[0] != "pushed" {
		t.Errorf("forwarded insert should lead the list, got %v", got)
	}
}

func TestStolenMsgQuits(t *testing.T) {
	sess := testSession(t, "a")
	m := New(sess, nil)

	updated, cmd := m.Update(StolenMsg{})
	if cmd == nil {
		t.Fatal("stolen lock should quit the program")
	}
	model := updated.(*Model)
	if !model.Stolen() {
		t.Error("model should remember the theft")
	}
	if !strings.Contains(model.View(), "lock was taken") {
		t.Errorf("view should explain the abort, got %q", model.View())
	}
}

func TestViewShowsEntries(t *testing.T) {
	sess := testSession(t, "first", "second")
	m := New(sess, nil)

	view := m.View()
	if !strings.Contains(view, "first") || !strings.Contains(view, "second") {
		t.Errorf("view should list the entries, got %q", view)
	}
	if !strings.Contains(view, "Entries") {
		t.Errorf("view should carry the list title, got %q", view)
	}
}
