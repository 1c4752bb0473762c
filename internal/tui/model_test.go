package tui

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/hypoviz/internal/app"
	"github.com/verte-zerg/hypoviz/internal/model"
	"github.com/verte-zerg/hypoviz/internal/store"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestWindowSizeBuildsCanvas(t *testing.T) {
	m := newTestModel(t, model.DefaultParams())
	if m.View() != "" {
		t.Fatalf("expected empty view before sizing")
	}
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	if m.canvas == nil {
		t.Fatalf("expected canvas")
	}
	cols, rows := m.canvas.Cells()
	if cols != 80 || rows != 30-headerHeight-footerHeight {
		t.Fatalf("unexpected canvas %dx%d", cols, rows)
	}
	if got := m.session.Layout().Width; got != 160 {
		t.Fatalf("expected session width in dots, got %v", got)
	}
	view := m.View()
	if lines := strings.Count(view, "\n") + 1; lines != 30 {
		t.Fatalf("expected 30 lines, got %d", lines)
	}
}

func TestTogglesFlipSessionFlags(t *testing.T) {
	m := newTestModel(t, model.DefaultParams())
	for _, key := range []string{"a", "t", "i", "p", "x"} {
		m.Update(keyRunes(key))
	}
	p := m.session.Params()
	if !p.ShowAlt || !p.ShowTypeI || !p.ShowTypeII || !p.ShowPower || p.ShowLabels {
		t.Fatalf("unexpected toggles %+v", p)
	}
}

func TestStdDevInputApplies(t *testing.T) {
	m := newTestModel(t, model.DefaultParams())
	m.Update(keyRunes("s"))
	if m.inputMode != inputStdDev {
		t.Fatalf("expected stddev input mode")
	}
	m.input.SetValue("")
	typeText(m, "2.5")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.inputMode != inputNone {
		t.Fatalf("expected input mode closed")
	}
	if m.session.Null.StdDev() != 2.5 || m.session.Alt.StdDev() != 2.5 {
		t.Fatalf("stddev not applied: %v", m.session.Null.StdDev())
	}
}

func TestStdDevInputRejectsText(t *testing.T) {
	m := newTestModel(t, model.DefaultParams())
	m.Update(keyRunes("s"))
	m.input.SetValue("abc")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.session.Null.StdDev() != 1 {
		t.Fatalf("stddev changed to %v", m.session.Null.StdDev())
	}
	if !m.statusErr || m.status != `stddev "abc": value is not a number` {
		t.Fatalf("expected error status, got %q", m.status)
	}
}

func TestInputErrorsNamedOnce(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  string
	}{
		{key: "s", value: " -1 ", want: `stddev "-1": standard deviation must be > 0`},
		{key: "A", value: "x", want: `alpha "x": value is not a number`},
	}
	for _, tt := range tests {
		m := newTestModel(t, model.DefaultParams())
		m.Update(keyRunes(tt.key))
		m.input.SetValue(tt.value)
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if !m.statusErr || m.status != tt.want {
			t.Fatalf("%s %q: expected %q, got %q", tt.key, tt.value, tt.want, m.status)
		}
	}
}

func TestAlphaInputEscCancels(t *testing.T) {
	m := newTestModel(t, model.DefaultParams())
	m.Update(keyRunes("A"))
	m.input.SetValue("0.2")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.session.Null.Alpha() != 0.05 {
		t.Fatalf("alpha changed after cancel")
	}
}

func TestDegenerateAlphaReported(t *testing.T) {
	m := newTestModel(t, model.DefaultParams())
	m.Update(keyRunes("A"))
	m.input.SetValue("1.5")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.session.Null.Alpha() != 1.5 {
		t.Fatalf("expected alpha accepted")
	}
	if !m.statusErr {
		t.Fatalf("expected degenerate warning")
	}
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 24})
	_ = m.View()
}

func TestMouseDragMovesAlternative(t *testing.T) {
	p := model.DefaultParams()
	p.ShowAlt = true
	m := newTestModel(t, p)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m.Update(tea.MouseMsg{X: 10, Y: 20, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 20, Y: 20, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 20, Y: 20, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	// 10 cells are 20 dots at 0.01 per dot.
	if math.Abs(m.session.Alt.Mean()-0.2) > 1e-9 {
		t.Fatalf("expected mean 0.2, got %v", m.session.Alt.Mean())
	}
	m.Update(tea.MouseMsg{X: 40, Y: 20, Action: tea.MouseActionMotion})
	if math.Abs(m.session.Alt.Mean()-0.2) > 1e-9 {
		t.Fatalf("motion after release moved curve")
	}
}

func TestArrowKeysNudge(t *testing.T) {
	p := model.DefaultParams()
	p.ShowAlt = true
	m := newTestModel(t, p)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(keyRunes("h"))
	if math.Abs(m.session.Alt.Mean()-0.1) > 1e-9 {
		t.Fatalf("expected mean 0.1, got %v", m.session.Alt.Mean())
	}
}

func TestSaveWithoutStore(t *testing.T) {
	m := newTestModel(t, model.DefaultParams())
	m.Update(keyRunes("w"))
	if m.inputMode != inputNone || !m.statusErr {
		t.Fatalf("expected store error, got mode %v status %q", m.inputMode, m.status)
	}
}

func TestSaveSnapshot(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	p := model.DefaultParams()
	p.ShowAlt = true
	p.AltMean = 1.5
	session, err := app.NewSession(app.Layout{}, app.TerminalThemes(), p, nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	m := NewModel(session, st, nil, Options{})
	m.Update(keyRunes("w"))
	typeText(m, "first")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.statusErr || !strings.HasPrefix(m.status, "Saved snapshot #") {
		t.Fatalf("unexpected status %q", m.status)
	}
	snaps, err := st.ListSnapshots(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snaps) != 1 || snaps[0].Note != "first" || snaps[0].AltMean != 1.5 {
		t.Fatalf("unexpected snapshots %+v", snaps)
	}
}

func TestExportWritesPNG(t *testing.T) {
	dir := t.TempDir()
	session, err := app.NewSession(app.Layout{}, app.TerminalThemes(), model.DefaultParams(), nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	m := NewModel(session, nil, nil, Options{ExportDir: dir, ExportWidth: 300, ExportHeight: 240})
	m.Update(keyRunes("e"))
	if m.statusErr {
		t.Fatalf("export failed: %s", m.status)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".png" {
		t.Fatalf("unexpected exports %v", entries)
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t, model.DefaultParams())
	if _, cmd := m.Update(keyRunes("q")); cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Fatalf("expected quit command on ctrl+c")
	}
}
