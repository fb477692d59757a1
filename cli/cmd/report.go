package cmd

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/polly/lang"
)

// report writes err to w as a located diagnostic when possible. Colors are
// used only when w is a terminal.
func report(w io.Writer, err error) {
	r := lipgloss.NewRenderer(w)
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	errStyle := base.Foreground(lipgloss.Color("9")).Bold(true)

	d, ok := lang.Diagnose(err)
	if !ok {
		_, _ = io.WriteString(w, errStyle.Render("error:")+" "+d.Message+"\n")

		return
	}

	lines := strings.Split(d.String(), "\n")

	// header, excerpt, caret
	if len(lines) == 3 {
		lines[0] = base.Bold(true).Render(d.Location()+":") + " " +
			errStyle.Render("error:") + " " + d.Message
		lines[2] = base.Foreground(lipgloss.Color("9")).Render(lines[2])
	}

	_, _ = io.WriteString(w, strings.Join(lines, "\n")+"\n")
}
