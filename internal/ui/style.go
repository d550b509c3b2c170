package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// PrintLogo renders the colored ganttloom logo to stderr.
func PrintLogo() {
	w := os.Stderr
	frame := color.New(color.FgCyan)
	bars := color.New(color.FgYellow)
	crit := color.New(color.FgRed)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +------------------------------+")
	bars.Fprintln(w, "   |  ======                      |")
	crit.Fprintln(w, "   |        ==========            |")
	bars.Fprintln(w, "   |            =====             |")
	crit.Fprintln(w, "   |                  ========    |")
	frame.Fprintln(w, "   |==============================|")
	brand.Fprintln(w, "   |  G A N T T L O O M           |")
	frame.Fprintln(w, "   +------------------------------+")
	tag.Fprintf(w, "   %s Critical path scheduling\n", Dim("▦"))
	fmt.Fprintln(w)
}

// fileColors is a palette of distinct bold colors for differentiating project files.
var fileColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// fileColorIndex hashes a name to a palette index.
func fileColorIndex(name string) int {
	var h uint32
	for _, c := range name {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(fileColors)))
}

// FilePrefix returns a colored [name] prefix string.
// Each name gets a stable color from the palette.
func FilePrefix(name string) string {
	c := fileColors[fileColorIndex(name)]
	return Dim("[") + c(name) + Dim("]")
}

// CriticalMark returns the marker shown next to critical tasks.
func CriticalMark(critical bool) string {
	if critical {
		return BoldRed("●")
	}
	return Dim("○")
}

// Float colors a total float value: red when negative, yellow when zero,
// green when there is slack.
func Float(v float64) string {
	s := fmt.Sprintf("%gd", v)
	switch {
	case v < -1e-6:
		return BoldRed(s)
	case v < 1e-6:
		return Yellow(s)
	default:
		return Green(s)
	}
}

// StatusIcon returns a colored status icon for compact table display.
func StatusIcon(status string) string {
	switch status {
	case "scheduled":
		return Green("✓")
	case "failed":
		return Red("✗")
	default:
		return Dim("◌")
	}
}

// WaveStatus returns a colored wave label.
func WaveStatus(critical bool) string {
	if critical {
		return BoldRed("critical")
	}
	return Dim("slack")
}
