// Package statsui provides the Bubble Tea stats browser.
package statsui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/kanadraw/internal/kana"
	"github.com/verte-zerg/kanadraw/internal/model"
	"github.com/verte-zerg/kanadraw/internal/stats"
	"github.com/verte-zerg/kanadraw/internal/store"
)

type tab int

const (
	tabOverview tab = iota
	tabKanaTable
	tabKanaCurves
	tabCount
)

func (t tab) String() string {
	switch t {
	case tabOverview:
		return "Overview"
	case tabKanaTable:
		return "Kana Table"
	case tabKanaCurves:
		return "Kana Curves"
	default:
		return ""
	}
}

const (
	plotHeight        = 10
	defaultCurveChars = 5
	fallbackWidth     = 80
	dateLayout        = "2006-01-02"
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B0B0B0")).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	dict  *kana.Dictionary
	cfg   model.StatsConfig

	report     stats.Report
	loadErr    string
	curveErr   string
	perSession map[string]map[string]model.CharAggregate

	active    tab
	pages     [tabCount]viewport.Model
	table     kanaTable
	selection kanaSelection

	// form and picker are non-nil while their overlay is open.
	form   *filterForm
	picker *kanaPicker

	width  int
	height int
}

// NewModel constructs a stats UI model. dict supplies readings for the
// kana table and may be nil.
func NewModel(st *store.Store, dict *kana.Dictionary, cfg model.StatsConfig) *Model {
	m := &Model{
		store: st,
		dict:  dict,
		cfg:   cfg,
		table: newKanaTable(),
	}
	m.selection.pin(parseChars(cfg.Chars))
	for i := range m.pages {
		m.pages[i] = viewport.New(0, 0)
	}
	m.reload()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.renderPages()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch {
		case m.form != nil:
			return m, m.updateForm(msg)
		case m.picker != nil:
			return m, m.updatePicker(msg)
		case msg.String() == "q":
			return m, tea.Quit
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left", "h":
		m.switchTab(-1)
		return tea.ClearScreen
	case "right", "l":
		m.switchTab(1)
		return tea.ClearScreen
	case "=", "+":
		m.setCurveWindow(nextCurveWindow(m.cfg.CurveWindow))
		return nil
	case "-":
		m.setCurveWindow(prevCurveWindow(m.cfg.CurveWindow))
		return nil
	case "/":
		m.form = newFilterForm(m.cfg, m.width)
		m.resize()
		return m.form.focusField(0)
	case "enter":
		switch m.active {
		case tabKanaTable:
			m.openCurve(m.table.selectedKana())
			return tea.ClearScreen
		case tabKanaCurves:
			m.picker = newKanaPicker(m.selection.chars, m.width)
			return m.picker.input.Focus()
		}
		return nil
	case "g", "home":
		if m.active == tabKanaTable {
			m.table.GotoTop()
		} else {
			m.pages[m.active].GotoTop()
		}
		return nil
	case "G", "end":
		if m.active == tabKanaTable {
			m.table.GotoBottom()
		} else {
			m.pages[m.active].GotoBottom()
		}
		return nil
	}
	if m.active == tabKanaTable {
		return m.table.update(msg)
	}
	var cmd tea.Cmd
	m.pages[m.active], cmd = m.pages[m.active].Update(msg)
	return cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.picker != nil {
		return fitLines(m.picker.view(m.width, m.height), m.width, m.height)
	}
	top, body, bottom := m.heights()
	return strings.Join([]string{
		fitLines(m.header(), m.width, top),
		fitLines(m.body(), m.width, body),
		fitLines(m.footer(), m.width, bottom),
	}, "\n")
}

func (m *Model) heights() (top, body, bottom int) {
	top = max(1, lipgloss.Height(activeTabStyle.Render("X"))) + 1
	bottom = 1
	if m.form == nil && m.loadErr != "" {
		bottom++
	}
	body = max(1, m.height-top-bottom)
	return top, body, bottom
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, body, _ := m.heights()
	for i := range m.pages {
		m.pages[i].Width = m.width
		m.pages[i].Height = body
	}
	m.table.resize(m.width, body)
	if m.form != nil {
		m.form.setWidth(m.width)
	}
}

func (m *Model) switchTab(delta int) {
	m.active = (m.active + tab(delta) + tabCount) % tabCount
	if m.active == tabKanaTable {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

// openCurve pins char as the only curve and shows it.
func (m *Model) openCurve(char string) {
	if char == "" {
		return
	}
	m.selection.pin([]string{char})
	m.loadKanaCurves()
	m.renderPages()
	m.active = tabKanaCurves
	m.table.Blur()
}

func (m *Model) setCurveWindow(n int) {
	m.cfg.CurveWindow = n
	m.reload()
	m.resize()
}

func (m *Model) reload() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.loadErr = err.Error()
		m.renderPages()
		return
	}
	m.loadErr = ""
	m.report = report
	m.selection.refresh(report.CharAggsAll)
	m.loadKanaCurves()
	m.table.setRows(m.kanaRows())
	_, body, _ := m.heights()
	m.table.resize(m.widthOr(), body)
	m.renderPages()
}

func (m *Model) renderPages() {
	if m.loadErr != "" {
		for i := range m.pages {
			m.pages[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.widthOr()
	m.pages[tabOverview].SetContent(overviewPage(m.report.Sessions, m.cfg.CurveWindow, width))
	m.pages[tabKanaCurves].SetContent(m.curvesPage(width))
}

func (m *Model) widthOr() int {
	if m.width <= 0 {
		return fallbackWidth
	}
	return m.width
}

func (m *Model) header() string {
	parts := make([]string, 0, tabCount)
	for t := tab(0); t < tabCount; t++ {
		style := tabStyle
		if t == m.active {
			style = activeTabStyle
		}
		parts = append(parts, style.Render(t.String()))
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return tabs + "\n" + mutedStyle.Render(truncateLine(m.settingsLine(), m.width))
}

func (m *Model) settingsLine() string {
	script, since, last := "any", "any", "all"
	if m.cfg.Script != "" {
		script = m.cfg.Script
	}
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(dateLayout)
	}
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	return fmt.Sprintf("Settings: script=%s  since=%s  last=%s  window=%d", script, since, last, m.cfg.CurveWindow)
}

func (m *Model) body() string {
	if m.form != nil {
		return m.form.view()
	}
	if m.loadErr == "" && m.active == tabKanaTable {
		switch {
		case len(m.report.Sessions) == 0:
			return "No sessions found."
		case len(m.report.CharAggsAll) == 0:
			return "No kana drawn yet."
		default:
			return tableTextStyle.Render(m.table.View())
		}
	}
	return m.pages[m.active].View()
}

func (m *Model) footer() string {
	if m.form != nil {
		return mutedStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q"
	switch m.active {
	case tabKanaTable:
		help = "Nav: left/right  Select: up/down  Open curve: enter  Window: -/=  Settings: /  Quit: q"
	case tabKanaCurves:
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Edit kana: enter  Window: -/=  Settings: /  Quit: q"
	}
	out := mutedStyle.Render(help)
	if m.loadErr != "" {
		out += "\n" + errorStyle.Render(m.loadErr)
	}
	return out
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.form = nil
		m.resize()
		return nil
	case tea.KeyEnter:
		cfg, err := m.form.config(m.cfg)
		if err != nil {
			m.form.err = err.Error()
			return nil
		}
		m.form = nil
		m.cfg = cfg
		m.reload()
		m.resize()
		return nil
	case tea.KeyTab, tea.KeyDown:
		return m.form.focusField(m.form.focus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m.form.focusField(m.form.focus - 1)
	}
	return m.form.updateInput(msg)
}

func (m *Model) updatePicker(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.picker = nil
		return nil
	case tea.KeyEnter:
		m.selection.pin(kana.Split(m.picker.input.Value()))
		m.selection.refresh(m.report.CharAggsAll)
		m.picker = nil
		m.loadKanaCurves()
		m.renderPages()
		return nil
	}
	var cmd tea.Cmd
	m.picker.input, cmd = m.picker.input.Update(msg)
	if clean := stripSeparators(m.picker.input.Value()); clean != m.picker.input.Value() {
		m.picker.input.SetValue(clean)
	}
	return cmd
}
