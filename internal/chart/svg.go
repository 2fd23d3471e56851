package chart

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Opts customises the SVG renderers.
type Opts struct {
	Title       string
	Description string
	Width       int
	Height      int
	Padding     float64
	TickCount   int
	AxisColor   string
	GridColor   string
}

// Defaults for rendered charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 320
	DefaultPadding = 48.0
	DefaultTicks   = 5
)

var slicePalette = []string{
	"#2563eb", "#16a34a", "#f97316", "#9333ea", "#dc2626",
	"#0891b2", "#ca8a04", "#db2777", "#4d7c0f", "#475569",
}

// RenderLine renders a LineChart as an inline SVG with numeric axes, a legend and markers.
func RenderLine(c LineChart, opts Opts) (template.HTML, error) {
	if len(c.Series) == 0 {
		return "", fmt.Errorf("svg: at least one series required")
	}
	for _, s := range c.Series {
		if len(s.Points) == 0 {
			return "", fmt.Errorf("svg: series %q has no points", s.Name)
		}
	}
	for _, m := range c.Markers {
		if !finite(m.X) || !finite(m.Y) {
			return "", fmt.Errorf("svg: marker %q is not finite", m.Label)
		}
	}

	width, height, padding, tickCount := opts.dimensions()
	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#cbd5f5")

	chartWidth := float64(width) - 2*padding
	chartHeight := float64(height) - 2*padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	maxX, minY, maxY := c.bounds()
	if almostEqual(maxX, 0) {
		maxX = 1
	}
	if almostEqual(maxY, minY) {
		maxY = minY + 1
	}
	project := func(x, y float64) (float64, float64) {
		x = math.Max(0, x)
		return padding + x/maxX*chartWidth, padding + chartHeight - (y-minY)/(maxY-minY)*chartHeight
	}

	title := fallback(opts.Title, fallback(c.Title, "Line chart"))
	titleID := makeID(title, "line-title")
	descID := makeID(title, "line-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(title)))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Cost and revenue by sales volume"))))

	for i := 0; i <= tickCount; i++ {
		ratio := float64(i) / float64(tickCount)
		y := padding + chartHeight - ratio*chartHeight
		value := minY + (maxY-minY)*ratio
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", padding, y, padding+chartWidth, y, gridColor))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", padding-6, y+4, axisColor, template.HTMLEscapeString(formatTick(value))))

		x := padding + ratio*chartWidth
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", x, padding+chartHeight+14, axisColor, template.HTMLEscapeString(formatTick(maxX*ratio))))
	}

	_, zeroY := project(0, 0)
	b.WriteString(fmt.Sprintf("<g stroke=\"%s\" aria-label=\"Axes\">", axisColor))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", padding, padding, padding, padding+chartHeight))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", padding, zeroY, padding+chartWidth, zeroY))
	b.WriteString("</g>")

	if c.XLabel != "" {
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"middle\">%s</text>", padding+chartWidth/2, float64(height)-8, axisColor, template.HTMLEscapeString(c.XLabel)))
	}
	if c.YLabel != "" {
		b.WriteString(fmt.Sprintf("<text x=\"12\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"middle\" transform=\"rotate(-90 12 %.2f)\">%s</text>", padding+chartHeight/2, axisColor, padding+chartHeight/2, template.HTMLEscapeString(c.YLabel)))
	}

	for _, s := range c.Series {
		var path strings.Builder
		for i, p := range s.Points {
			x, y := project(p.X, p.Y)
			if i == 0 {
				path.WriteString(fmt.Sprintf("M%.2f %.2f", x, y))
			} else {
				path.WriteString(fmt.Sprintf(" L%.2f %.2f", x, y))
			}
		}
		dash := ""
		if s.Dashed {
			dash = " stroke-dasharray=\"6,4\""
		}
		b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\"%s stroke-linejoin=\"round\" stroke-linecap=\"round\" aria-label=\"%s\"></path>", path.String(), fallback(s.Color, "#2563eb"), dash, template.HTMLEscapeString(s.Name)))
	}

	for _, m := range c.Markers {
		x, y := project(m.X, m.Y)
		color := fallback(m.Color, axisColor)
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"2\" stroke-dasharray=\"2,3\"></line>", x, zeroY, x, y, color))
		b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\"></circle>", x, y, color))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", x, y-8, color, template.HTMLEscapeString(m.Label)))
	}

	legendX := padding
	legendY := padding - 20
	for _, s := range c.Series {
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", legendX, legendY-8, fallback(s.Color, "#2563eb")))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", legendX+14, legendY, axisColor, template.HTMLEscapeString(s.Name)))
		legendX += 110
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

// RenderDonut renders slices as a donut chart with a legend.
func RenderDonut(slices []Slice, opts Opts) (template.HTML, error) {
	if len(slices) == 0 {
		return "", fmt.Errorf("svg: slices required")
	}
	total := 0.0
	for _, s := range slices {
		if s.Value < 0 || !finite(s.Value) {
			return "", fmt.Errorf("svg: slice %q must be a non-negative number", s.Label)
		}
		total += s.Value
	}
	if total <= 0 {
		return "", fmt.Errorf("svg: slices must sum to a positive value")
	}

	width, height, padding, _ := opts.dimensions()
	axisColor := fallback(opts.AxisColor, "#475569")

	radius := math.Min(float64(height)-2*padding, float64(width)/2-2*padding) / 2
	if radius <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	inner := radius * 0.3
	cx := padding + radius
	cy := float64(height) / 2

	title := fallback(opts.Title, "Sales mix distribution")
	titleID := makeID(title, "donut-title")
	descID := makeID(title, "donut-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(title)))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Share of combined unit volume"))))

	start := -math.Pi / 2
	for i, s := range slices {
		color := slicePalette[i%len(slicePalette)]
		fraction := s.Value / total
		switch {
		case almostEqual(fraction, 0):
		case almostEqual(fraction, 1):
			mid := (radius + inner) / 2
			b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"%s\" stroke-width=\"%.2f\" aria-label=\"%s\"></circle>", cx, cy, mid, color, radius-inner, template.HTMLEscapeString(s.Label)))
		default:
			end := start + fraction*2*math.Pi
			b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"%s\" aria-label=\"%s\"></path>", arcPath(cx, cy, radius, inner, start, end), color, template.HTMLEscapeString(s.Label)))
			start = end
		}

		legendX := cx + radius + padding
		legendY := padding + float64(i)*18
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", legendX, legendY-8, color))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"start\">%s (%.1f%%)</text>", legendX+14, legendY, axisColor, template.HTMLEscapeString(s.Label), fraction*100))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func arcPath(cx, cy, outer, inner, start, end float64) string {
	large := 0
	if end-start > math.Pi {
		large = 1
	}
	x0, y0 := cx+outer*math.Cos(start), cy+outer*math.Sin(start)
	x1, y1 := cx+outer*math.Cos(end), cy+outer*math.Sin(end)
	x2, y2 := cx+inner*math.Cos(end), cy+inner*math.Sin(end)
	x3, y3 := cx+inner*math.Cos(start), cy+inner*math.Sin(start)
	return fmt.Sprintf("M%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 0 %.2f %.2f Z",
		x0, y0, outer, outer, large, x1, y1, x2, y2, inner, inner, large, x3, y3)
}

func (o Opts) dimensions() (width, height int, padding float64, ticks int) {
	width, height, padding, ticks = o.Width, o.Height, o.Padding, o.TickCount
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if padding <= 0 {
		padding = DefaultPadding
	}
	if ticks <= 0 {
		ticks = DefaultTicks
	}
	return width, height, padding, ticks
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return fmt.Sprintf("%s-%s", cleaned, suffix)
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	default:
		if almostEqual(v, math.Round(v)) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.2f", v)
	}
}
