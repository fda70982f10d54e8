package shell

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/soyeahso/duckshell/internal/version"
)

// ColorDuck is the banner yellow.
const ColorDuck = lipgloss.Color("#FACC15")

var bannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorDuck)

var hintStyle = lipgloss.NewStyle().Faint(true)

// Banner is the greeting printed when the shell starts.
func Banner() string {
	return bannerStyle.Render(version.Banner() + " 🦆")
}
