package statsui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/kanadraw/internal/model"
	"github.com/verte-zerg/kanadraw/internal/stats"
)

var (
	cardStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// cardsPerRow applies from this width up; narrower screens stack cards.
const (
	cardsPerRow   = 3
	wideCardWidth = 80
)

type summary struct {
	sessions int
	drawings int
	avgAcc   float64
	bestAcc  float64
	lastAcc  float64
	avgScore float64
}

func summarize(sessions []model.SessionAggregate) summary {
	s := summary{sessions: len(sessions)}
	if len(sessions) == 0 {
		return s
	}
	for _, sess := range sessions {
		acc, score := stats.SessionMetrics(sess)
		s.drawings += sess.Attempts
		s.avgAcc += acc
		s.avgScore += score
		s.bestAcc = max(s.bestAcc, acc)
		s.lastAcc = acc
	}
	n := float64(len(sessions))
	s.avgAcc /= n
	s.avgScore /= n
	return s
}

func overviewPage(sessions []model.SessionAggregate, window, width int) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	cards := summaryCards(summarize(sessions), width)
	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, sessions, window, width, plotHeight, true); err != nil {
		return cards + "\n\n" + fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(cards+"\n\n"+buf.String(), "\n")
}

func summaryCards(s summary, width int) string {
	cards := []string{
		card("Sessions", fmt.Sprintf("%d", s.sessions)),
		card("Drawings", fmt.Sprintf("%d", s.drawings)),
		card("Avg Score", percent(s.avgScore)),
		card("Avg Acc", percent(s.avgAcc)),
		card("Best Acc", percent(s.bestAcc)),
		card("Last Acc", percent(s.lastAcc)),
	}
	if width < wideCardWidth {
		return strings.Join(cards, "\n")
	}
	var rows []string
	for start := 0; start < len(cards); start += cardsPerRow {
		end := min(start+cardsPerRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func card(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
