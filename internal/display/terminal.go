package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MaxIntensity is the brightest setting a MAX7219 accepts.
const MaxIntensity = 15

// Terminal draws the matrix to a terminal as a strip of LED dots, redrawing
// in place on each Flush.
type Terminal struct {
	*Matrix
	out       io.Writer
	lit       lipgloss.Style
	dark      lipgloss.Style
	frame     lipgloss.Style
	lastLines int
}

func NewTerminal(modules int, out io.Writer) *Terminal {
	t := &Terminal{
		Matrix: NewMatrix(modules),
		out:    out,
		dark:   lipgloss.NewStyle().Foreground(lipgloss.Color("#3a0d0d")),
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")),
	}
	t.SetIntensity(MaxIntensity / 2)
	return t
}

// SetIntensity scales the lit colour to level, clamped to 1..MaxIntensity.
func (t *Terminal) SetIntensity(level int) {
	level = min(max(level, 1), MaxIntensity)
	red := 0x60 + (0xff-0x60)*level/MaxIntensity
	t.lit = lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02x2020", red)))
}

func (t *Terminal) Flush() {
	t.Matrix.Flush()

	rows := t.Rows(t.lit.Render("●"), t.dark.Render("●"))
	view := t.frame.Render(strings.Join(rows, "\n"))

	if t.lastLines > 0 {
		// Move up over the last frame and erase it, it may have been wider.
		fmt.Fprintf(t.out, "\x1b[%dA\x1b[J", t.lastLines)
	}
	fmt.Fprintln(t.out, view)
	t.lastLines = lipgloss.Height(view)
}
