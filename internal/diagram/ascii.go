package diagram

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
)

// LoopData holds the response history used to draw a hysteresis diagram
type LoopData struct {
	Title string

	// Committed response
	Strain []float64
	Stress []float64

	// Undamaged backbone (optional)
	EnvelopeStrain []float64
	EnvelopeStress []float64

	// First failed step, -1 if none
	FailedAt int
}

// DrawForceHistory plots the force against the step number
func DrawForceHistory(data LoopData, width, height int) string {
	if len(data.Stress) == 0 {
		return "  (no data)\n"
	}
	caption := "force history"
	if data.Title != "" {
		caption = data.Title + " - " + caption
	}
	graph := asciigraph.Plot(data.Stress,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
	)
	return graph + "\n"
}

// DrawASCIILoop draws force against deformation on a character grid.
// The backbone is drawn with '·', the response with '●' and the failure
// point with 'X'.
func DrawASCIILoop(data LoopData, width, height int) string {
	var sb strings.Builder
	if len(data.Strain) == 0 || width < 10 || height < 5 {
		return "  (no data)\n"
	}

	umin, umax := bounds(data.Strain, data.EnvelopeStrain)
	fmin, fmax := bounds(data.Stress, data.EnvelopeStress)
	umin, umax = math.Min(umin, 0), math.Max(umax, 0)
	fmin, fmax = math.Min(fmin, 0), math.Max(fmax, 0)
	if umax == umin {
		umax = umin + 1
	}
	if fmax == fmin {
		fmax = fmin + 1
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	col := func(u float64) int {
		return int(math.Round((u - umin) / (umax - umin) * float64(width-1)))
	}
	row := func(f float64) int {
		return height - 1 - int(math.Round((f-fmin)/(fmax-fmin)*float64(height-1)))
	}

	// axes
	r0, c0 := row(0), col(0)
	for c := range grid[r0] {
		grid[r0][c] = '─'
	}
	for r := range grid {
		grid[r][c0] = '│'
	}
	grid[r0][c0] = '┼'

	for i := range data.EnvelopeStrain {
		grid[row(data.EnvelopeStress[i])][col(data.EnvelopeStrain[i])] = '·'
	}
	for i := range data.Strain {
		grid[row(data.Stress[i])][col(data.Strain[i])] = '●'
	}
	if data.FailedAt >= 0 && data.FailedAt < len(data.Strain) {
		grid[row(data.Stress[data.FailedAt])][col(data.Strain[data.FailedAt])] = 'X'
	}

	sb.WriteString("\n")
	if data.Title != "" {
		sb.WriteString(fmt.Sprintf("  %s\n", strings.ToUpper(data.Title)))
		sb.WriteString(fmt.Sprintf("  %s\n", strings.Repeat("─", len([]rune(data.Title)))))
	}
	sb.WriteString(fmt.Sprintf("  F = %.4g\n", fmax))
	for _, line := range grid {
		sb.WriteString("  ")
		sb.WriteString(string(line))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("  F = %.4g\n", fmin))
	sb.WriteString(fmt.Sprintf("  u: %.4g .. %.4g\n", umin, umax))
	sb.WriteString("\n")
	sb.WriteString("  Legend:\n")
	sb.WriteString("  ● = response   · = backbone   X = failure\n")
	return sb.String()
}

func bounds(series ...[]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return
}

// DrawSummaryBox creates a summary box for results
func DrawSummaryBox(title string, lines []string) string {
	var sb strings.Builder

	maxLen := len(title)
	for _, line := range lines {
		if len(line) > maxLen {
			maxLen = len(line)
		}
	}
	maxLen += 4

	border := strings.Repeat("═", maxLen)
	sb.WriteString(fmt.Sprintf("  ╔%s╗\n", border))
	sb.WriteString(fmt.Sprintf("  ║  %-*s  ║\n", maxLen-2, title))
	sb.WriteString(fmt.Sprintf("  ╠%s╣\n", border))
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("  ║  %-*s  ║\n", maxLen-2, line))
	}
	sb.WriteString(fmt.Sprintf("  ╚%s╝\n", border))

	return sb.String()
}
