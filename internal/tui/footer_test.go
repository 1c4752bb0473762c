package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/hypoviz/internal/app"
	"github.com/verte-zerg/hypoviz/internal/model"
)

func newTestModel(t *testing.T, params model.Params) *Model {
	t.Helper()
	session, err := app.NewSession(app.Layout{}, app.TerminalThemes(), params, nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return NewModel(session, nil, nil, Options{})
}

func TestRenderFooterFormats(t *testing.T) {
	p := model.DefaultParams()
	p.ShowAlt = true
	m := newTestModel(t, p)
	m.width = 200
	out := m.renderFooter()
	if !containsAll(out, []string{"Critical ±1.960σ", "Type I 0.05", "Type II 0.95", "Power 0.05", "q: quit"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterHidesAlternativeMetrics(t *testing.T) {
	m := newTestModel(t, model.DefaultParams())
	m.width = 200
	out := m.renderFooter()
	if strings.Contains(out, "Power ") || strings.Contains(out, "Type II") {
		t.Fatalf("unexpected alternative metrics: %s", out)
	}
}

func TestRenderFooterDegenerateAlpha(t *testing.T) {
	p := model.DefaultParams()
	p.Alpha = 1.5
	m := newTestModel(t, p)
	m.width = 200
	out := m.renderFooter()
	if !containsAll(out, []string{"Critical ±n/a", "Type I n/a"}) {
		t.Fatalf("expected n/a metrics: %s", out)
	}
}

func TestRenderFooterShowsError(t *testing.T) {
	m := newTestModel(t, model.DefaultParams())
	m.width = 200
	m.status = "stddev \"abc\": not a number"
	m.statusErr = true
	if !strings.Contains(m.renderFooter(), "not a number") {
		t.Fatalf("expected status in footer")
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
