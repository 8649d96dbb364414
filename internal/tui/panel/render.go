package panel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/embark/internal/state"
)

// Catppuccin Mocha subset.
const (
	colorYellow   lipgloss.Color = "#f9e2af"
	colorLavender lipgloss.Color = "#b4befe"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorText     lipgloss.Color = "#cdd6f4"
	colorCrust    lipgloss.Color = "#11111b"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(colorOverlay1)
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCrust).Background(colorYellow).Padding(0, 1)
	groupStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorLavender)
	recordStyle  = lipgloss.NewStyle().Foreground(colorText)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorOverlay1).Italic(true)
)

// containerStyle realises the col-md-8/col-sm-2 classifiers as a width
// bound; zero leaves the width to the content.
func containerStyle(width int) lipgloss.Style {
	s := lipgloss.NewStyle().PaddingLeft(1)
	if width > 0 {
		s = s.Width(width)
	}
	return s
}

func renderLinkModeBanner(text string) string {
	return bannerStyle.Render(text)
}

func renderPDSRecordGroup(g Group, dateFormat string) string {
	var b strings.Builder
	b.WriteString(groupStyle.Render(g.PDS.Label()))
	if len(g.Records) == 0 {
		b.WriteString("\n  " + mutedStyle.Render("No records"))
		return b.String()
	}
	for _, r := range g.Records {
		b.WriteString("\n  " + recordStyle.Render(recordLine(r, dateFormat)))
	}
	return b.String()
}

func recordLine(r state.Record, dateFormat string) string {
	label := r.Label
	if label == "" {
		label = "Record"
	}
	id := r.ID
	if r.ExternalID != "" {
		id = r.ExternalID
	}
	line := fmt.Sprintf("• %s  %s", label, id)
	if !r.Created.IsZero() {
		line += "  " + r.Created.Format(dateFormat)
	}
	return line
}
