package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/starford/notes/internal/notestore"
)

const cardWidth = 64

// Renderer draws store snapshots as note cards.
type Renderer struct {
	w io.Writer

	headerStyle  lipgloss.Style
	mutedStyle   lipgloss.Style
	idStyle      lipgloss.Style
	titleStyle   lipgloss.Style
	contentStyle lipgloss.Style
	cardStyle    lipgloss.Style
	errorStyle   lipgloss.Style
}

// NewRenderer returns a renderer writing to w. Colors are used only when w
// is a terminal.
func NewRenderer(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		w:            w,
		headerStyle:  r.NewStyle().Foreground(lipgloss.Color("75")).Bold(true),
		mutedStyle:   r.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		idStyle:      r.NewStyle().Foreground(lipgloss.Color("110")),
		titleStyle:   r.NewStyle().Foreground(lipgloss.Color("230")).Bold(true),
		contentStyle: r.NewStyle().Foreground(lipgloss.Color("252")),
		cardStyle:    r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1).Width(cardWidth),
		errorStyle:   r.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Bold(true),
	}
}

// View draws a snapshot: a header line, then one card per note.
func (r *Renderer) View(snap notestore.Snapshot) {
	header := fmt.Sprintf("%s (%d) · search by %s", snap.View, len(snap.Notes), snap.Mode)
	fmt.Fprintln(r.w, r.headerStyle.Render(header))

	if len(snap.Notes) == 0 {
		fmt.Fprintln(r.w, r.mutedStyle.Render(emptyText(snap.View)))
		return
	}

	// Title line width inside the card: border and padding take two columns each side.
	inner := cardWidth - 4
	for _, n := range snap.Notes {
		id := "#" + n.ID.String() + " "
		title := ansi.Truncate(n.Title, inner-ansi.StringWidth(id), "…")
		body := lipgloss.JoinVertical(lipgloss.Left,
			r.idStyle.Render(id)+r.titleStyle.Render(title),
			r.contentStyle.Render(n.Content),
		)
		fmt.Fprintln(r.w, r.cardStyle.Render(body))
	}
}

// Mode reports the current search mode.
func (r *Renderer) Mode(m notestore.Mode) {
	modes := make([]string, len(notestore.Modes))
	for i, mode := range notestore.Modes {
		modes[i] = string(mode)
	}
	fmt.Fprintf(r.w, "%s %s\n",
		r.headerStyle.Render("search by "+string(m)),
		r.mutedStyle.Render("("+strings.Join(modes, ", ")+")"),
	)
}

// Error reports a failed command. The previous view stays on screen.
func (r *Renderer) Error(err error) {
	fmt.Fprintln(r.w, r.errorStyle.Render(" error ")+" "+err.Error())
}

// Text prints plain text, such as help.
func (r *Renderer) Text(s string) {
	fmt.Fprintln(r.w, r.mutedStyle.Render(s))
}

func emptyText(v notestore.View) string {
	switch v {
	case notestore.ViewSingleResult:
		return "no note with that id"
	case notestore.ViewFiltered:
		return "no matching notes"
	default:
		return "no notes yet"
	}
}
