package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles for the chat view.
type Styles struct {
	Title     lipgloss.Style
	UserLine  lipgloss.Style
	Answer    lipgloss.Style
	Citation  lipgloss.Style
	NoHit     lipgloss.Style
	Failure   lipgloss.Style
	ModeBadge lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles returns the default chat theme.
func DefaultStyles() *Styles {
	return &Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		UserLine:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Answer:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Citation:  lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		NoHit:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Failure:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		ModeBadge: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("62")).Padding(0, 1),
		Help:      lipgloss.NewStyle().Faint(true),
	}
}
