package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/hypoviz/internal/model"
	"github.com/verte-zerg/hypoviz/internal/store"
)

func seededStore(t *testing.T, n int) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	for i := 0; i < n; i++ {
		snap := model.Snapshot{StdDev: 1, Alpha: 0.05, AltMean: float64(i), TypeI: 0.05, TypeII: 0.5, Power: 0.5}
		if _, err := st.InsertSnapshot(context.Background(), snap); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return st
}

func TestNewModelLoadsSnapshots(t *testing.T) {
	m := NewModel(seededStore(t, 3), 0, nil)
	if len(m.snapshots) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(m.snapshots))
	}
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	if !strings.Contains(view, "Snapshots: 3") {
		t.Fatalf("expected header count in view:\n%s", view)
	}
	if lines := strings.Count(view, "\n") + 1; lines != 30 {
		t.Fatalf("expected 30 lines, got %d", lines)
	}
}

func TestEnterChoosesSnapshot(t *testing.T) {
	m := NewModel(seededStore(t, 2), 0, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected quit after choosing")
	}
	snap, ok := m.Chosen()
	if !ok {
		t.Fatalf("expected a chosen snapshot")
	}
	if snap.ID != m.snapshots[0].ID {
		t.Fatalf("expected first row, got %+v", snap)
	}
}

func TestDeleteRemovesRow(t *testing.T) {
	st := seededStore(t, 2)
	m := NewModel(st, 0, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if len(m.snapshots) != 1 {
		t.Fatalf("expected 1 snapshot after delete, got %d", len(m.snapshots))
	}
	list, err := st.ListSnapshots(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected store to hold 1 snapshot, got %d", len(list))
	}
}

func TestLimitInput(t *testing.T) {
	m := NewModel(seededStore(t, 5), 0, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.limitMode {
		t.Fatalf("expected limit mode")
	}
	m.limitInput.SetValue("x")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.limitError == "" || !m.limitMode {
		t.Fatalf("expected validation error")
	}
	m.limitInput.SetValue("2")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.limitMode || m.limit != 2 || len(m.snapshots) != 2 {
		t.Fatalf("expected 2 snapshots with limit, got %d (limit %d)", len(m.snapshots), m.limit)
	}
}

func TestPowerTabRendersReport(t *testing.T) {
	m := NewModel(seededStore(t, 1), 0, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 60})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabPower {
		t.Fatalf("expected power tab")
	}
	view := m.View()
	for _, want := range []string{"Type II", "Power analysis"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestEmptyHistory(t *testing.T) {
	m := NewModel(seededStore(t, 0), 0, nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	if !strings.Contains(m.View(), "No snapshots saved.") {
		t.Fatalf("expected empty message")
	}
	if _, ok := m.Chosen(); ok {
		t.Fatalf("expected nothing chosen")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := m.Chosen(); ok {
		t.Fatalf("enter on empty table should not choose")
	}
}
