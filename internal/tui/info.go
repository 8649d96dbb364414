package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/embark/internal/state"
	"github.com/jask/embark/internal/tui/panel"
)

var (
	infoTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	infoLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
)

// subjectInfo is the nested view shown under the panel when the info panel
// is toggled on.
type subjectInfo struct {
	subject    state.Subject
	protocol   *state.Protocol
	records    int
	dateFormat string
}

func (v subjectInfo) View() string {
	rows := [][2]string{
		{"Subject", v.subject.Name()},
		{"Org ID", v.subject.OrganizationSubjectID},
	}
	if v.subject.DOB != nil {
		rows = append(rows, [2]string{"Born", v.subject.DOB.Format(v.dateFormat)})
	}
	if v.protocol != nil {
		rows = append(rows, [2]string{"Protocol", v.protocol.Name})
	}
	rows = append(rows, [2]string{"Records", fmt.Sprint(v.records)})

	lines := []string{infoTitleStyle.Render("Subject info")}
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s %s", infoLabelStyle.Render(fmt.Sprintf("%-9s", r[0])), r[1]))
	}
	return strings.Join(lines, "\n")
}

// actionSummary is the nested view shown when the action panel is toggled on.
type actionSummary struct {
	linkMode bool
	label    string
	record   *state.Record
}

func (v actionSummary) View() string {
	mode := "off"
	if v.linkMode {
		mode = "on"
	}
	lines := []string{
		infoTitleStyle.Render("Actions"),
		infoLabelStyle.Render("link mode ") + mode,
	}
	if v.label != "" {
		lines = append(lines, infoLabelStyle.Render("label     ")+v.label)
	}
	if v.record != nil {
		lines = append(lines, infoLabelStyle.Render("record    ")+v.record.ID)
	}
	return strings.Join(lines, "\n")
}

// stack joins several nested views top to bottom.
type stack []panel.Viewer

func (s stack) View() string {
	parts := make([]string, 0, len(s))
	for _, v := range s {
		parts = append(parts, v.View())
	}
	return strings.Join(parts, "\n\n")
}
