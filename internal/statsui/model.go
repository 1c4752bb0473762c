// Package statsui provides the Bubble Tea snapshot history interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/hypoviz/internal/model"
	"github.com/verte-zerg/hypoviz/internal/stats"
	"github.com/verte-zerg/hypoviz/internal/store"
)

const (
	tabSnapshots = iota
	tabPower
)

const (
	plotHeight = 10
	// Power curves span this many standard deviations either side of zero.
	powerSpan   = 4.0
	powerPoints = 33
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea snapshot history UI.
type Model struct {
	store *store.Store
	log   *logrus.Logger
	limit int

	snapshots []model.Snapshot
	errMsg    string

	tabs        []string
	activeTab   int
	snapTable   table.Model
	tableLayout tableLayout
	powerView   viewport.Model

	width  int
	height int

	limitMode  bool
	limitInput textinput.Model
	limitError string

	chosen *model.Snapshot
}

type tableLayout struct {
	width  int
	height int
}

// NewModel constructs a history UI model listing up to limit snapshots.
func NewModel(st *store.Store, limit int, log *logrus.Logger) *Model {
	m := &Model{
		store: st,
		log:   log,
		limit: limit,
		tabs:  []string{"Snapshots", "Power"},
	}
	m.limitInput = textinput.New()
	m.limitInput.Prompt = "Show last: "
	m.limitInput.Placeholder = "0 for all"
	m.limitInput.Cursor.SetMode(cursor.CursorBlink)
	m.snapTable = table.New(
		table.WithColumns(snapshotColumns()),
		table.WithFocused(true),
		table.WithStyles(snapshotTableStyles()),
	)
	m.powerView = viewport.New(0, 0)
	m.refresh()
	return m
}

// Chosen returns the snapshot picked with enter, if any.
func (m *Model) Chosen() (model.Snapshot, bool) {
	if m.chosen == nil {
		return model.Snapshot{}, false
	}
	return *m.chosen, true
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderPower()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.limitMode {
			return m.updateLimit(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			m.limitMode = true
			m.limitError = ""
			m.limitInput.SetValue(strconv.Itoa(m.limit))
			m.limitInput.CursorEnd()
			return m, m.limitInput.Focus()
		case "enter":
			if snap, ok := m.selected(); ok {
				m.chosen = &snap
				return m, tea.Quit
			}
			return m, nil
		case "d":
			m.deleteSelected()
			return m, nil
		}
		if m.activeTab == tabSnapshots {
			prev := m.snapTable.Cursor()
			var cmd tea.Cmd
			m.snapTable, cmd = m.snapTable.Update(msg)
			if m.snapTable.Cursor() != prev {
				m.renderPower()
			}
			return m, cmd
		}
		var cmd tea.Cmd
		m.powerView, cmd = m.powerView.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) refresh() {
	snaps, err := m.store.ListSnapshots(context.Background(), m.limit)
	if err != nil {
		m.errMsg = err.Error()
		if m.log != nil {
			m.log.WithError(err).Error("failed to list snapshots")
		}
		snaps = nil
	} else {
		m.errMsg = ""
	}
	m.snapshots = snaps
	rows := make([]table.Row, 0, len(snaps))
	for _, r := range stats.SnapshotRows(snaps) {
		rows = append(rows, table.Row(r))
	}
	m.snapTable.SetRows(rows)
	if m.snapTable.Cursor() >= len(rows) {
		m.snapTable.SetCursor(maxInt(0, len(rows)-1))
	}
	m.renderPower()
}

func (m *Model) selected() (model.Snapshot, bool) {
	idx := m.snapTable.Cursor()
	if idx < 0 || idx >= len(m.snapshots) {
		return model.Snapshot{}, false
	}
	return m.snapshots[idx], true
}

func (m *Model) deleteSelected() {
	snap, ok := m.selected()
	if !ok {
		return
	}
	if err := m.store.DeleteSnapshot(context.Background(), snap.ID); err != nil {
		m.errMsg = fmt.Sprintf("failed to delete snapshot #%d: %v", snap.ID, err)
		return
	}
	if m.log != nil {
		m.log.WithField("id", snap.ID).Info("deleted snapshot")
	}
	m.refresh()
}

func (m *Model) updateLimit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.limitMode = false
		m.limitError = ""
		m.limitInput.Blur()
		return m, nil
	case tea.KeyEnter:
		raw := strings.TrimSpace(m.limitInput.Value())
		limit := 0
		if raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				m.limitError = "invalid limit (use 0 or positive integer)"
				return m, nil
			}
			limit = parsed
		}
		m.limit = limit
		m.limitMode = false
		m.limitError = ""
		m.limitInput.Blur()
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.limitInput, cmd = m.limitInput.Update(msg)
	return m, cmd
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.limitMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.powerView.Width = m.width
	m.powerView.Height = bodyHeight
	m.setTableSize(m.width, bodyHeight)
	m.limitInput.Width = maxInt(10, m.width-lipgloss.Width(m.limitInput.Prompt)-2)
}

func (m *Model) setTableSize(width, height int) {
	if m.tableLayout.width == width && m.tableLayout.height == height {
		return
	}
	m.tableLayout = tableLayout{width: width, height: height}
	m.snapTable.SetWidth(width)
	m.snapTable.SetHeight(maxInt(1, height-1))
	// The header border adds rows the table does not count; shrink to fit.
	if extra := lipgloss.Height(m.snapTable.View()) - height; extra > 0 {
		m.snapTable.SetHeight(maxInt(1, m.snapTable.Height()-extra))
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabSnapshots {
		m.snapTable.Focus()
	} else {
		m.snapTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	last := "all"
	if m.limit > 0 {
		last = strconv.Itoa(m.limit)
	}
	summary := truncateLine(fmt.Sprintf("Snapshots: %d  last=%s", len(m.snapshots), last), m.width)
	return tabs + "\n" + padLines(headerStyle.Render(summary), m.width)
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Move: up/down  Open: enter  Delete: d  Limit: /  Quit: q")
}

func (m *Model) renderFooter() string {
	if m.limitMode {
		return headerStyle.Render("enter: apply  esc: cancel")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.limitMode {
		lines := []string{"Limit (enter to apply, esc to cancel)", m.limitInput.View()}
		if m.limitError != "" {
			lines = append(lines, errorStyle.Render(m.limitError))
		}
		return fitLines(strings.Join(lines, "\n"), m.width, height)
	}
	if m.activeTab == tabSnapshots {
		if len(m.snapshots) == 0 {
			return fitLines("No snapshots saved. Press w in the explorer to save one.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.snapTable.View()), m.width, height)
	}
	return fitLines(m.powerView.View(), m.width, height)
}

func (m *Model) renderPower() {
	snap, ok := m.selected()
	if !ok {
		m.powerView.SetContent("No snapshot selected.")
		return
	}
	m.powerView.SetContent(renderPowerTab(snap, m.width))
}

func renderPowerTab(snap model.Snapshot, width int) string {
	cards := []string{
		metricCard("Snapshot", fmt.Sprintf("#%d", snap.ID)),
		metricCard("Type I", formatProb(snap.TypeI)),
		metricCard("Type II", formatProb(snap.TypeII)),
		metricCard("Power", formatProb(snap.Power)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}
	shifts, err := stats.ShiftGrid(-powerSpan*snap.StdDev, powerSpan*snap.StdDev, powerPoints)
	if err != nil {
		return summary + "\n\n" + fmt.Sprintf("Failed to build shifts: %v", err)
	}
	points, err := stats.PowerCurve(snap.StdDev, snap.Alpha, shifts)
	if err != nil {
		return summary + "\n\n" + fmt.Sprintf("Failed to compute power: %v", err)
	}
	var buf bytes.Buffer
	if err := stats.RenderPowerReport(&buf, snap.StdDev, snap.Alpha, points, width, plotHeight, true); err != nil {
		return summary + "\n\n" + fmt.Sprintf("Failed to render power: %v", err)
	}
	return strings.TrimRight(summary+"\n\n"+buf.String(), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func snapshotColumns() []table.Column {
	widths := []int{4, 16, 7, 6, 8, 7, 7, 7, 20}
	headers := stats.SnapshotHeaders()
	columns := make([]table.Column, len(headers))
	for i, title := range headers {
		columns[i] = table.Column{Title: title, Width: widths[i]}
	}
	return columns
}

func snapshotTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func formatProb(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", p)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
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
