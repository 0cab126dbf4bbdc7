package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusPill returns a colored indicator for an assignment status.
func StatusPill(status domain.AssignmentStatus) string {
	switch status {
	case domain.StatusAssigned:
		return StyleGreen.Render("● assigned")
	case domain.StatusExcluded:
		return StyleYellow.Render("○ excluded")
	case domain.StatusNotAssigned:
		return StyleRed.Render("✖ not assigned")
	default:
		return StyleDim.Render(string(status))
	}
}

// ZoneBadge renders a time zone in its own color. The focus zone is bold.
func ZoneBadge(tz domain.TimeZone, focus bool) string {
	var style lipgloss.Style
	switch tz {
	case domain.ZoneMorning:
		style = StyleYellow
	case domain.ZoneAfternoon:
		style = StyleGreen
	case domain.ZoneEvening:
		style = StylePurple
	case domain.ZoneNight:
		style = StyleBlue
	default:
		style = StyleDim
	}
	label := strings.ToLower(string(tz))
	if focus {
		return style.Bold(true).Render(label + " ★")
	}
	return style.Render(label)
}

// Header renders a section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
