package statsui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/kanadraw/internal/kana"
	"github.com/verte-zerg/kanadraw/internal/model"
)

// filterField edits one setting of a StatsConfig.
type filterField struct {
	input textinput.Model
	show  func(model.StatsConfig) string
	parse func(string, *model.StatsConfig) error
}

type filterForm struct {
	fields []filterField
	focus  int
	err    string
}

func newFilterForm(cfg model.StatsConfig, width int) *filterForm {
	f := &filterForm{fields: []filterField{
		{input: newInput("Script (hiragana/katakana): "), show: showScript, parse: parseScript},
		{input: newInput("Since (YYYY-MM-DD): "), show: showSince, parse: parseSince},
		{input: newInput("Last sessions: "), show: showLast, parse: parseLast},
		{input: newInput("Curve window: "), show: showWindow, parse: parseWindow},
	}}
	for i := range f.fields {
		f.fields[i].input.SetValue(f.fields[i].show(cfg))
	}
	f.setWidth(width)
	return f
}

// config applies every field over base. base is returned unchanged on error.
func (f *filterForm) config(base model.StatsConfig) (model.StatsConfig, error) {
	cfg := base
	for _, field := range f.fields {
		if err := field.parse(strings.TrimSpace(field.input.Value()), &cfg); err != nil {
			return base, err
		}
	}
	return cfg, nil
}

func (f *filterForm) focusField(i int) tea.Cmd {
	n := len(f.fields)
	if n == 0 {
		return nil
	}
	f.focus = (i%n + n) % n
	var cmd tea.Cmd
	for j := range f.fields {
		if j == f.focus {
			cmd = f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
	return cmd
}

func (f *filterForm) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *filterForm) setWidth(width int) {
	for i := range f.fields {
		in := &f.fields[i].input
		in.Width = max(10, width-lipgloss.Width(in.Prompt)-2)
	}
}

func (f *filterForm) view() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, field := range f.fields {
		lines = append(lines, field.input.View())
	}
	if f.err != "" {
		lines = append(lines, errorStyle.Render(f.err))
	}
	return strings.Join(lines, "\n")
}

func showScript(cfg model.StatsConfig) string { return cfg.Script }

func parseScript(v string, cfg *model.StatsConfig) error {
	v = strings.ToLower(v)
	switch kana.Script(v) {
	case "", kana.Hiragana, kana.Katakana:
		cfg.Script = v
		return nil
	}
	return fmt.Errorf("invalid script %q (use hiragana or katakana)", v)
}

func showSince(cfg model.StatsConfig) string {
	if cfg.Since == nil {
		return ""
	}
	return cfg.Since.Format(dateLayout)
}

func parseSince(v string, cfg *model.StatsConfig) error {
	if v == "" {
		cfg.Since = nil
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, v, time.Local)
	if err != nil {
		return fmt.Errorf("invalid since date %q (expected YYYY-MM-DD)", v)
	}
	cfg.Since = &t
	return nil
}

func showLast(cfg model.StatsConfig) string {
	if cfg.Last <= 0 {
		return ""
	}
	return strconv.Itoa(cfg.Last)
}

func parseLast(v string, cfg *model.StatsConfig) error {
	if v == "" {
		cfg.Last = 0
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid last value %q (use 0 or a positive integer)", v)
	}
	cfg.Last = n
	return nil
}

func showWindow(cfg model.StatsConfig) string { return strconv.Itoa(cfg.CurveWindow) }

// parseWindow keeps the current window when the field is left empty.
func parseWindow(v string, cfg *model.StatsConfig) error {
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fmt.Errorf("invalid curve window %q (use an integer >= 1)", v)
	}
	cfg.CurveWindow = n
	return nil
}
