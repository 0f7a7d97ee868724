package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)

	connectedDot    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	disconnectedDot = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const helpText = "1-4:corner  v:visible  c:clicks  d:forget  h:hide-for-app  X:clear  r:refresh  q:quit"

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		m.list.View(),
		m.renderFooter(),
	)
}

func (m model) renderHeader() string {
	if !m.connected {
		return headerStyle.Width(m.width).Render(disconnectedDot + " daemon not running")
	}
	s := m.status
	app := s.CurrentAppName
	if app == "" {
		app = s.CurrentApp
	}
	if app == "" {
		app = "-"
	}
	visible := "shown"
	if !s.Visible {
		visible = "hidden"
	}
	parts := []string{
		connectedDot + " " + s.State,
		visible,
		fmt.Sprintf("%.0f,%.0f (%s)", s.X, s.Y, s.CornerMode),
		"app:" + app,
	}
	if !m.positions.Enabled {
		parts = append(parts, "per-app off")
	}
	if s.IgnoreClicks {
		parts = append(parts, "clicks ignored")
	}
	return headerStyle.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m model) renderFooter() string {
	left := ""
	if m.statusText != "" {
		style := okStyle
		if m.statusErr {
			style = errStyle
		}
		left = style.Render(m.statusText)
	}
	right := helpStyle.Render(helpText)

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(left + strings.Repeat(" ", gap) + right)
}
