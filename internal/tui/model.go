// Package tui provides the Bubble Tea curve explorer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/hypoviz/internal/app"
	"github.com/verte-zerg/hypoviz/internal/render"
	"github.com/verte-zerg/hypoviz/internal/store"
	"github.com/verte-zerg/hypoviz/internal/surface"
)

const (
	headerHeight = 1
	footerHeight = 2
	// Three text rows under each axis: the line itself, tick values, caption.
	axisBorderDots = 3 * 4
	cellDotsX      = 2
	cellDotsY      = 4
	nudgePixels    = 10
)

type inputKind int

const (
	inputNone inputKind = iota
	inputStdDev
	inputAlpha
	inputNote
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	onStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Options configures the curve explorer.
type Options struct {
	// ExportDir receives PNG exports.
	ExportDir    string
	ExportWidth  int
	ExportHeight int
}

// Model implements the Bubble Tea curve explorer.
type Model struct {
	session *app.Session
	store   *store.Store
	log     *logrus.Logger
	opts    Options

	width  int
	height int
	canvas *surface.Canvas

	inputMode inputKind
	input     textinput.Model

	status    string
	statusErr bool
}

// NewModel constructs the explorer around an existing session. st may be nil,
// in which case saving snapshots reports an error.
func NewModel(session *app.Session, st *store.Store, log *logrus.Logger, opts Options) *Model {
	if opts.ExportWidth <= 0 {
		opts.ExportWidth = app.DefaultExportWidth
	}
	if opts.ExportHeight <= 0 {
		opts.ExportHeight = app.DefaultExportHeight
	}
	input := textinput.New()
	input.CharLimit = 64
	input.Cursor.SetMode(cursor.CursorBlink)
	return &Model{
		session: session,
		store:   st,
		log:     log,
		opts:    opts,
		input:   input,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.inputMode != inputNone {
			return m.updateInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 || m.canvas == nil {
		return ""
	}
	m.session.Draw(m.canvas)
	header := padLine(m.renderHeader(), m.width)
	footer := m.renderFooter()
	return header + "\n" + m.canvas.String() + "\n" + footer
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	rows := height - headerHeight - footerHeight
	if width <= 0 || rows <= 0 {
		m.canvas = nil
		return
	}
	m.canvas = surface.NewCanvas(width, rows)
	w, h := m.canvas.Size()
	m.session.Resize(app.Layout{
		Width:  float64(w),
		Height: float64(h),
		Border: axisBorderDots,
		Grain:  cellDotsY,
	})
	m.input.Width = maxInt(10, width-lipgloss.Width(m.input.Prompt)-2)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	x := float64(msg.X * cellDotsX)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.session.Press(x)
		}
	case tea.MouseActionMotion:
		m.session.Move(x)
	case tea.MouseActionRelease:
		m.session.Move(x)
		m.session.Release()
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "s":
		return m, m.startInput(inputStdDev, "StdDev: ", strconv.FormatFloat(m.session.Null.StdDev(), 'g', -1, 64))
	case "A":
		return m, m.startInput(inputAlpha, "Alpha: ", strconv.FormatFloat(m.session.Null.Alpha(), 'g', -1, 64))
	case "w":
		if m.store == nil {
			m.setError(errors.New("snapshot store unavailable"))
			return m, nil
		}
		return m, m.startInput(inputNote, "Note: ", "")
	case "a":
		m.session.SetAltVisible(!m.session.Alt.Visible)
	case "t":
		m.session.SetTypeIShading(!m.session.Null.ShowOutside)
	case "i":
		m.session.SetTypeIIShading(!m.session.Alt.ShowInside)
	case "p":
		m.session.SetPowerShading(!m.session.Alt.ShowOutside)
	case "x":
		m.session.SetAxisLabels(!m.session.Null.ShowLabels)
	case "left", "h":
		m.session.ShiftAlt(-nudgePixels)
	case "right", "l":
		m.session.ShiftAlt(nudgePixels)
	case "e":
		m.exportPNG()
	}
	return m, nil
}

func (m *Model) startInput(kind inputKind, prompt, value string) tea.Cmd {
	m.inputMode = kind
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.status = ""
	m.statusErr = false
	return m.input.Focus()
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.stopInput()
		return m, nil
	case tea.KeyEnter:
		kind := m.inputMode
		value := m.input.Value()
		m.stopInput()
		m.applyInput(kind, value)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) stopInput() {
	m.inputMode = inputNone
	m.input.Blur()
}

func (m *Model) applyInput(kind inputKind, value string) {
	switch kind {
	case inputStdDev:
		if err := m.session.SetStdDev(value); err != nil {
			m.setError(err)
			return
		}
		m.setStatus(fmt.Sprintf("StdDev set to %g", m.session.Null.StdDev()))
	case inputAlpha:
		if err := m.session.SetAlpha(value); err != nil {
			m.setError(err)
			return
		}
		if m.session.Null.Degenerate() {
			m.setError(fmt.Errorf("alpha %g is outside (0,1); markers undefined", m.session.Null.Alpha()))
			return
		}
		m.setStatus(fmt.Sprintf("Alpha set to %g", m.session.Null.Alpha()))
	case inputNote:
		m.saveSnapshot(strings.TrimSpace(value))
	}
}

func (m *Model) saveSnapshot(note string) {
	if m.store == nil {
		m.setError(errors.New("snapshot store unavailable"))
		return
	}
	id, err := m.store.InsertSnapshot(context.Background(), m.session.Snapshot(note))
	if err != nil {
		m.logError(err, "failed to save snapshot")
		m.setError(fmt.Errorf("failed to save snapshot: %w", err))
		return
	}
	m.setStatus(fmt.Sprintf("Saved snapshot #%d", id))
}

func (m *Model) exportPNG() {
	if m.opts.ExportDir == "" {
		m.setError(errors.New("export directory not configured"))
		return
	}
	path, err := app.ExportPNG(m.opts.ExportDir, m.session.Params(), m.opts.ExportWidth, m.opts.ExportHeight, m.log)
	if err != nil {
		m.logError(err, "failed to export png")
		m.setError(fmt.Errorf("failed to export: %w", err))
		return
	}
	m.setStatus("Exported " + path)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m *Model) logError(err error, msg string) {
	if m.log != nil {
		m.log.WithError(err).Error(msg)
	}
}

func (m *Model) renderHeader() string {
	p := m.session.Params()
	params := fmt.Sprintf("σ=%g  α=%g  alt mean=%.2f", p.StdDev, p.Alpha, p.AltMean)
	toggles := strings.Join([]string{
		toggle("alt", p.ShowAlt),
		toggle("type1", p.ShowTypeI),
		toggle("type2", p.ShowTypeII),
		toggle("power", p.ShowPower),
		toggle("labels", p.ShowLabels),
	}, " ")
	return titleStyle.Render("hypoviz") + "  " + valueStyle.Render(params) + "  " + toggles
}

func (m *Model) renderFooter() string {
	metrics := m.renderMetrics()
	var second string
	switch {
	case m.inputMode != inputNone:
		second = m.input.View() + "  " + footerStyle.Render("enter: apply  esc: cancel")
	case m.status != "" && m.statusErr:
		second = errorStyle.Render(truncateLine(m.status, m.width))
	case m.status != "":
		second = statusStyle.Render(truncateLine(m.status, m.width))
	default:
		second = footerStyle.Render(truncateLine(helpText, m.width))
	}
	return padLine(metrics, m.width) + "\n" + padLine(second, m.width)
}

const helpText = "s: stddev  A: alpha  a: alternative  t/i/p: shading  x: labels  ←/→ or drag: move  w: save  e: export  q: quit"

func (m *Model) renderMetrics() string {
	metrics := m.session.Metrics()
	segments := []string{
		fmt.Sprintf("Critical ±%s", formatOffset(metrics.BoundaryOffset)),
		"Type I " + render.FormatProbability(metrics.TypeI),
	}
	if m.session.Alt.Visible {
		segments = append(segments,
			"Type II "+render.FormatProbability(metrics.TypeII),
			"Power "+render.FormatProbability(metrics.Power),
		)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func formatOffset(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.3fσ", v)
}

func toggle(name string, on bool) string {
	if on {
		return onStyle.Render("[" + name + "]")
	}
	return headerStyle.Render(" " + name + " ")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
