package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Title   lipgloss.Style
	Help    lipgloss.Style
	Success lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
	Faint   lipgloss.Style
}

// NewTheme binds the styles to w, so color is only emitted for terminals.
func NewTheme(w io.Writer) Theme {
	r := lipgloss.NewRenderer(w)
	return Theme{
		Title:   r.NewStyle().Bold(true),
		Help:    r.NewStyle().Faint(true),
		Success: r.NewStyle().Foreground(lipgloss.Color("42")),
		Warn:    r.NewStyle().Foreground(lipgloss.Color("214")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Faint:   r.NewStyle().Faint(true),
	}
}
