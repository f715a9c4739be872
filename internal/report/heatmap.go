package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/jgoulah/campusenergy/internal/gradient"
	"github.com/jgoulah/campusenergy/pkg/models"
)

var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// IsTerminal reports whether w is a terminal that can show colors
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Heatmap prints average energy by hour (rows) and weekday (columns). With
// color each cell gets a background from the dashboard gradient.
func Heatmap(w io.Writer, cells []models.HeatmapCell, color bool) {
	if len(cells) == 0 {
		fmt.Fprintln(w, "No heatmap data found")
		return
	}

	var grid [24][7]float64
	var present [24][7]bool
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range cells {
		if c.Hour < 0 || c.Hour > 23 || c.DayOfWeek < 0 || c.DayOfWeek > 6 {
			continue
		}
		grid[c.Hour][c.DayOfWeek] = c.EnergyKWh
		present[c.Hour][c.DayOfWeek] = true
		lo = math.Min(lo, c.EnergyKWh)
		hi = math.Max(hi, c.EnergyKWh)
	}

	var b strings.Builder
	b.WriteString("hour ")
	for _, d := range weekdays {
		fmt.Fprintf(&b, " %7s", d)
	}
	fmt.Fprintln(w, b.String())

	for h := 0; h < 24; h++ {
		b.Reset()
		fmt.Fprintf(&b, "%02d:00", h)
		for d := 0; d < 7; d++ {
			if !present[h][d] {
				fmt.Fprintf(&b, " %7s", "-")
				continue
			}
			cell := fmt.Sprintf("%7.0f", grid[h][d])
			if color {
				r, g, bl := gradient.At(gradient.Normalize(grid[h][d], lo, hi)).RGB()
				cell = fmt.Sprintf("\x1b[48;2;%d;%d;%dm\x1b[38;2;0;0;0m%s\x1b[0m", r, g, bl, cell)
			}
			b.WriteString(" ")
			b.WriteString(cell)
		}
		fmt.Fprintln(w, b.String())
	}

	fmt.Fprintf(w, "range: %.0f - %.0f kWh", lo, hi)
	if color {
		fmt.Fprintf(w, "  (%s low, %s high)", gradient.At(0).Hex(), gradient.At(1).Hex())
	}
	fmt.Fprintln(w)
}
