package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/kanadraw/internal/kana"
	"github.com/verte-zerg/kanadraw/internal/model"
	"github.com/verte-zerg/kanadraw/internal/stats"
)

var modalStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder(), true).
	BorderForeground(lipgloss.Color("#C89A3A")).
	Padding(1, 2)

// kanaSelection is the set of kana drawn on the curves tab. Unless the
// user pinned a choice it follows the most drawn kana of the report.
type kanaSelection struct {
	chars  []string
	pinned bool
}

func (s *kanaSelection) pin(chars []string) {
	s.chars = chars
	s.pinned = len(chars) > 0
}

func (s *kanaSelection) refresh(aggs []model.CharAggregate) {
	if !s.pinned {
		s.chars = stats.TopCharsByFrequency(aggs, defaultCurveChars)
	}
}

func (m *Model) loadKanaCurves() {
	m.curveErr = ""
	m.perSession = nil
	if len(m.report.Sessions) == 0 || len(m.selection.chars) == 0 {
		return
	}
	ids := stats.SessionIDs(m.report.Sessions)
	perSession, err := m.store.ListCharStatsForSessions(context.Background(), ids, m.selection.chars)
	if err != nil {
		m.curveErr = err.Error()
		return
	}
	m.perSession = perSession
}

func (m *Model) curvesPage(width int) string {
	switch {
	case len(m.report.Sessions) == 0:
		return "No sessions found."
	case m.curveErr != "":
		return "Failed to load kana curves: " + m.curveErr
	case len(m.selection.chars) == 0:
		return "No kana selected. Press Enter to choose."
	}
	title := "Kana: " + strings.Join(m.selection.chars, ", ")
	if m.dict != nil {
		readings := make([]string, len(m.selection.chars))
		for i, c := range m.selection.chars {
			readings[i] = m.dict.Reading(c)
		}
		title += " (" + strings.Join(readings, ", ") + ")"
	}
	var buf bytes.Buffer
	err := stats.RenderCharCurvesWithSize(&buf, m.report.Sessions, m.perSession, m.selection.chars, m.cfg.CurveWindow, width, plotHeight, true)
	if err != nil {
		return fmt.Sprintf("Failed to render kana curves: %v", err)
	}
	return strings.TrimRight(mutedStyle.Render(title)+"\n"+buf.String(), "\n")
}

// kanaPicker is the modal used to choose the kana for the curves tab.
type kanaPicker struct {
	input textinput.Model
}

func newKanaPicker(current []string, width int) *kanaPicker {
	in := newInput("Kana: ")
	in.Placeholder = "あいうえお"
	in.SetValue(strings.Join(current, ""))
	in.Width = max(10, modalInnerWidth(width)-lipgloss.Width(in.Prompt))
	return &kanaPicker{input: in}
}

func (p *kanaPicker) view(width, height int) string {
	body := strings.Join([]string{
		cardValueStyle.Render("Select Kana"),
		p.input.View(),
		mutedStyle.Render("Spaces and commas are ignored. Yōon like しゃ stay together."),
		mutedStyle.Render("Empty follows the most drawn kana."),
		mutedStyle.Render("Enter to apply / Esc to cancel"),
	}, "\n")
	box := modalStyle.Width(modalWidth(width)).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func newInput(prompt string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.CharLimit = 0
	in.Cursor.SetMode(cursor.CursorBlink)
	return in
}

// parseChars reads the --char flag: comma separated entries, or a run of
// kana split into characters.
func parseChars(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	if !strings.Contains(input, ",") {
		return kana.Split(input)
	}
	var out []string
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
