package statsui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/kanadraw/internal/stats"
)

var (
	tableTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))

	// Kana, Reading, Accuracy, Avg Score, Precision, Recall, Drawings.
	kanaColumnWidths = []int{5, 8, 9, 10, 10, 8, 9}
)

// kanaTable is the per-kana table, weakest kana first.
type kanaTable struct {
	table.Model
	width  int
	height int
}

func newKanaTable() kanaTable {
	cols := make([]table.Column, len(stats.CharTableHeaders))
	for i, title := range stats.CharTableHeaders {
		cols[i] = table.Column{Title: title, Width: kanaColumnWidths[i]}
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(1))
	t.SetStyles(kanaTableStyles())
	return kanaTable{Model: t}
}

func kanaTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1, 0, 0)
	styles.Cell = styles.Cell.Padding(0, 1, 0, 0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (t *kanaTable) setRows(rows []table.Row) {
	t.SetRows(rows)
	if t.Cursor() >= len(rows) {
		t.SetCursor(max(0, len(rows)-1))
	}
}

// resize fits the rendered table, header included, into height lines.
func (t *kanaTable) resize(width, height int) {
	height = max(1, height)
	if t.width == width && t.height == height {
		return
	}
	t.width, t.height = width, height
	t.SetWidth(width)
	t.SetHeight(height)
	if extra := lipgloss.Height(t.View()) - height; extra > 0 {
		t.SetHeight(max(1, height-extra))
	}
}

func (t *kanaTable) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return cmd
}

func (t *kanaTable) selectedKana() string {
	row := t.SelectedRow()
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

// kanaRows lists every kana of the report, weakest first.
func (m *Model) kanaRows() []table.Row {
	if len(m.report.Sessions) == 0 || len(m.report.CharAggsAll) == 0 {
		return nil
	}
	var reading func(string) string
	if m.dict != nil {
		reading = m.dict.Reading
	}
	cells := stats.CharTableRows(m.report.CharAggsAll, reading)
	rows := make([]table.Row, len(cells))
	for i, c := range cells {
		rows[i] = table.Row(c)
	}
	return rows
}
