package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/hypoviz/internal/model"
)

const (
	savedLayout  = "2006-01-02 15:04"
	maxNoteWidth = 24
	ellipsis     = "…"
)

var (
	// Everything but the saved time and the note is numeric.
	snapshotRightAlign = map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	powerRightAlign    = map[int]bool{0: true, 1: true, 2: true, 3: true}
)

// SnapshotHeaders returns the column titles used for snapshot listings.
func SnapshotHeaders() []string {
	return []string{"ID", "Saved", "StdDev", "Alpha", "Alt mean", "Type I", "Type II", "Power", "Note"}
}

// SnapshotRows formats snapshots as table cells. Long notes are cut to keep
// the table within a terminal.
func SnapshotRows(snaps []model.Snapshot) [][]string {
	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.ID),
			s.CreatedAt.Local().Format(savedLayout),
			fmt.Sprintf("%g", s.StdDev),
			fmt.Sprintf("%g", s.Alpha),
			fmt.Sprintf("%.2f", s.AltMean),
			formatProb(s.TypeI),
			formatProb(s.TypeII),
			formatProb(s.Power),
			truncateCell(s.Note, maxNoteWidth),
		})
	}
	return rows
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlignCols map[int]bool) error {
	for _, line := range formatTable(headers, rows, rightAlignCols) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// truncateCell cuts value to at most width display columns, marking the cut.
func truncateCell(value string, width int) string {
	if width <= 0 || displayWidth(value) <= width {
		return value
	}
	return runewidth.Truncate(value, width, ellipsis)
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = displayWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return b.String()
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := displayWidth(value)
	if valueWidth >= width {
		return value
	}
	padding := width - valueWidth
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
