// Package tui provides the Bubble Tea drawing interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/kanadraw/internal/kana"
	"github.com/verte-zerg/kanadraw/internal/logging"
	"github.com/verte-zerg/kanadraw/internal/model"
	"github.com/verte-zerg/kanadraw/internal/session"
	statsPkg "github.com/verte-zerg/kanadraw/internal/stats"
	"github.com/verte-zerg/kanadraw/internal/store"
)

const (
	// Lines above the canvas: prompt, stage, blank.
	headerHeight = 3
	// Lines around the canvas in total: header plus blank, status, footer, help.
	chromeHeight  = headerHeight + 4
	minCanvasRows = 4
	mapGap        = 2
	barWidth      = 20
	sparkWindow   = 20
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	stageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

type stageAdvancedMsg struct {
	stage int
}

// Model implements the Bubble Tea drawing UI.
type Model struct {
	config            model.Config
	store             *store.Store
	dict              *kana.Dictionary
	ctrl              *session.Controller
	sessionID         string
	weakNoticePrinted bool

	width   int
	height  int
	surface session.Surface

	runAttempts  int
	runCorrect   int
	recentScores []float64

	lastAcc   float64
	lastScore float64
	hasLast   bool

	allAttempts int
	allCorrect  int
	allScoreSum float64

	saveErr string
}

// NewModel constructs a drawing TUI model. ctrl must already be started.
func NewModel(cfg model.Config, st *store.Store, dict *kana.Dictionary, ctrl *session.Controller, sessionID string, weakNoticePrinted bool) *Model {
	m := &Model{
		config:            cfg,
		store:             st,
		dict:              dict,
		ctrl:              ctrl,
		sessionID:         sessionID,
		weakNoticePrinted: weakNoticePrinted,
	}
	m.loadFooterStats()
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
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	case stageAdvancedMsg:
		if msg.stage != m.ctrl.State().Stage+1 {
			return m, nil
		}
		return m, m.dispatch(session.StageAdvanced{})
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.ctrl.State()
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "s":
		return m, m.dispatch(session.Submit{})
	case "enter", " ":
		if st.Phase == session.PhaseScored {
			return m, m.dispatch(session.Next{})
		}
		return m, m.dispatch(session.Submit{})
	case "n":
		return m, m.dispatch(session.Next{})
	case "c", "esc":
		return m, m.dispatch(session.Clear{})
	case "h":
		return m, m.dispatch(session.ToggleHint{})
	case "d":
		cmd := m.dispatch(session.ToggleDebugMaps{})
		m.layout()
		return m, cmd
	case "l":
		return m, m.dispatch(session.ToggleLock{})
	case "p":
		mode := session.PromptRomaji
		if st.Prompt == session.PromptRomaji {
			mode = session.PromptKana
		}
		return m, m.dispatch(session.SetPrompt{Mode: mode})
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	at, ok := m.surface.ToCanvas(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !ok {
			return nil
		}
		return m.dispatch(session.PointerDown{At: at})
	case tea.MouseActionMotion:
		if !ok {
			return m.dispatch(session.PointerLeave{})
		}
		return m.dispatch(session.PointerMove{At: at})
	case tea.MouseActionRelease:
		return m.dispatch(session.PointerUp{})
	}
	return nil
}

// dispatch feeds ev to the controller and acts on the host effects.
func (m *Model) dispatch(ev session.Event) tea.Cmd {
	var cmds []tea.Cmd
	for _, eff := range m.ctrl.Dispatch(ev) {
		switch eff := eff.(type) {
		case session.RecordVerdict:
			m.recordVerdict(eff)
		case session.StageAdvance:
			stage := eff.Stage
			cmds = append(cmds, tea.Tick(eff.Delay, func(time.Time) tea.Msg {
				return stageAdvancedMsg{stage: stage}
			}))
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	st := m.ctrl.State()
	cols, rows := canvasSize(m.width, m.height, st.ShowDebugMaps)
	blockWidth := cols
	if st.ShowDebugMaps {
		blockWidth += mapGap + cols/2
	}
	m.surface = session.Surface{
		Left: max(0, (m.width-blockWidth)/2),
		Top:  headerHeight,
		Cols: cols,
		Rows: rows,
		Size: m.ctrl.Question().Target.Width(),
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	st := m.ctrl.State()
	q := m.ctrl.Question()

	lines := []string{
		promptStyle.Render(centerLine(m.promptText(st), m.width)),
		stageStyle.Render(centerLine(m.stageText(st), m.width)),
		"",
	}
	block := renderBitmap(q.Visible, m.surface.Cols, m.surface.Rows)
	if st.ShowDebugMaps {
		block = lipgloss.JoinHorizontal(lipgloss.Top, block, strings.Repeat(" ", mapGap), m.renderMaps(q))
	}
	lines = append(lines, indent(block, m.surface.Left), "")
	lines = append(lines, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.statusText(st)))
	lines = append(lines, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.renderFooter()))
	lines = append(lines, mutedStyle.Render(centerLine(helpText, m.width)))
	return strings.Join(lines, "\n")
}

const helpText = "draw: mouse  s/enter submit  n next  c clear  h hint  p prompt  d maps  l lock  q quit"

func (m *Model) promptText(st session.State) string {
	if st.Current == "" {
		return ""
	}
	if st.Prompt == session.PromptRomaji && m.dict != nil {
		return "Draw: " + m.dict.Reading(st.Current)
	}
	return "Draw: " + st.Current
}

func (m *Model) stageText(st session.State) string {
	text := fmt.Sprintf("Stage %d (Write) %s %d/%d", st.Stage, progressBar(st.Progress, st.StageLength, barWidth), st.Progress, st.StageLength)
	if st.Locked {
		text += " (Locked)"
	}
	if st.ShowHint {
		text += " hint"
	}
	return text
}

// statusText is the verdict after a submission, else the live similarity.
func (m *Model) statusText(st session.State) string {
	if notice := m.ctrl.Notice(); notice != "" {
		return wrongStyle.Render(notice)
	}
	if m.saveErr != "" {
		return wrongStyle.Render(m.saveErr)
	}
	switch st.Phase {
	case session.PhaseScored:
		if !st.HasResult {
			return ""
		}
		r := st.Result
		detail := fmt.Sprintf("Score %.0f%% · Precision %.0f%% · Recall %.0f%%", r.Score*100, r.Precision*100, r.Recall*100)
		if r.Correct {
			return correctStyle.Render("Correct!") + "  " + detail + mutedStyle.Render("  (enter: next)")
		}
		return wrongStyle.Render("Not quite.") + "  " + detail + mutedStyle.Render("  (enter: next)")
	case session.PhaseStageComplete:
		return correctStyle.Render(fmt.Sprintf("Stage %d cleared!", st.Stage))
	case session.PhaseDrawing:
		rec, err := m.ctrl.Similarity()
		if err != nil {
			return ""
		}
		return mutedStyle.Render(fmt.Sprintf("Similarity %.0f%%", rec.Score*100))
	}
	return mutedStyle.Render("Draw the character, then press enter.")
}

func (m *Model) renderMaps(q *session.Question) string {
	rows := max(1, (m.surface.Rows-3)/3)
	cols := rows * 2
	if !q.HasDiagnostics {
		return mutedStyle.Render("Submit to see\nprecision and\nrecall maps.")
	}
	parts := []string{
		mutedStyle.Render("overlay"), renderBitmap(q.Diagnostics.Overlay, cols, rows),
		mutedStyle.Render("precision"), renderBitmap(q.Diagnostics.PrecisionMap, cols, rows),
		mutedStyle.Render("recall"), renderBitmap(q.Diagnostics.RecallMap, cols, rows),
	}
	return strings.Join(parts, "\n")
}

func (m *Model) recordVerdict(v session.RecordVerdict) {
	m.runAttempts++
	if v.Correct {
		m.runCorrect++
	}
	m.allAttempts++
	if v.Correct {
		m.allCorrect++
	}
	m.allScoreSum += v.Record.Score
	m.recentScores = append(m.recentScores, v.Record.Score*100)
	if len(m.recentScores) > sparkWindow {
		m.recentScores = m.recentScores[len(m.recentScores)-sparkWindow:]
	}
	if m.store == nil {
		return
	}

	st := m.ctrl.State()
	script, _ := kana.ScriptOf(v.Char)
	attempt := model.Attempt{
		SessionID: m.sessionID,
		CreatedAt: time.Now(),
		Char:      v.Char,
		Script:    string(script),
		Prompt:    string(st.Prompt),
		Hint:      st.ShowHint,
		Stage:     v.Stage,
		Score:     v.Record.Score,
		Precision: v.Record.Precision,
		Recall:    v.Record.Recall,
		Correct:   v.Correct,
		DrawnPx:   v.Record.Drawn,
		TargetPx:  v.Record.Target,
		DrawMs:    v.Elapsed.Milliseconds(),
	}
	if err := m.store.InsertAttempt(context.Background(), attempt); err != nil {
		logging.L().Error("failed to save attempt", "char", v.Char, "err", err)
		m.saveErr = fmt.Sprintf("failed to save attempt: %v", err)
	} else {
		m.saveErr = ""
	}
	if m.config.FocusWeak {
		m.refreshWeakSet()
	}
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	sessions, err := m.store.ListSessions(context.Background(), model.StatsConfig{})
	if err != nil {
		logging.L().Error("failed to load session stats", "err", err)
		return
	}
	if len(sessions) == 0 {
		return
	}
	m.lastAcc, m.lastScore = statsPkg.SessionMetrics(sessions[len(sessions)-1])
	m.hasLast = true
	for _, s := range sessions {
		m.allAttempts += s.Attempts
		m.allCorrect += s.Correct
		m.allScoreSum += s.ScoreSum
	}
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.runAttempts > 0 {
		segments = append(segments, fmt.Sprintf("Now %d/%d · %.1f%%", m.runCorrect, m.runAttempts, float64(m.runCorrect)/float64(m.runAttempts)*100))
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f%% · score %.1f%%", m.lastAcc*100, m.lastScore*100))
	}
	if m.allAttempts > 0 {
		acc, sc := statsPkg.SessionMetrics(model.SessionAggregate{Attempts: m.allAttempts, Correct: m.allCorrect, ScoreSum: m.allScoreSum})
		segments = append(segments, fmt.Sprintf("All-time %.1f%% · score %.1f%%", acc*100, sc*100))
	}
	if len(m.recentScores) > 1 {
		segments = append(segments, "["+statsPkg.Sparkline(m.recentScores)+"]")
	}
	if len(segments) == 0 {
		return ""
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) refreshWeakSet() {
	aggs, err := m.store.GetWeakChars(context.Background(), m.config.WeakWindow, "")
	if err != nil {
		logging.L().Error("failed to load weak chars", "err", err)
		return
	}
	if len(aggs) == 0 {
		if !m.weakNoticePrinted {
			logging.L().Info("no stats available for weak-char focus yet; using uniform selection")
			m.weakNoticePrinted = true
		}
		m.ctrl.SetWeakSet(nil)
		return
	}
	m.ctrl.SetWeakSet(statsPkg.SelectWeakChars(aggs, m.config.WeakTop))
}
