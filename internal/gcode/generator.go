// Package gcode emits the machine program (C11) from ordered cut loops,
// and parses G-code back into structured moves for verification.
//
// Generator is adapted from the teacher's internal/gcode/generator.go: the
// header/footer boilerplate, the Z-axis plunge strategies (direct/ramp/
// helix), lead-in/lead-out, corner overcut, and tab (bridge) support all
// follow the teacher's approach, generalized from writing
// rectangular/outline sheet Placements to writing arbitrary ordered
// polygon loops produced by internal/cam and internal/toolpath. The
// teacher's onion-skin relief pass is not carried over: the generator does
// not read GCodeOptions.OnionSkinDepthMM.
package gcode

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/piwi3910/camcore/internal/config"
	"github.com/piwi3910/camcore/internal/geometry"
)

// Loop is one closed cut loop plus the metadata the generator needs to
// sequence and label it.
type Loop struct {
	Label    string
	Polygon  geometry.Polygon2D
	IsHole   bool
	TabCount int // >0 enables tab bridges on this loop's perimeter
}

// Generator turns ordered loops into a complete G-code program.
type Generator struct {
	Options config.GCodeOptions
}

// New builds a Generator from the given options.
func New(opt config.GCodeOptions) *Generator {
	return &Generator{Options: opt}
}

// Generate produces a full program for jobName: header, one multi-pass
// cutout program per loop (in the order given — callers should already
// have run internal/toolpath.Order), and a footer.
func Generate(g *Generator, jobName string, loops []Loop, cutout config.CutoutParams) string {
	var b strings.Builder
	g.writeHeader(&b, jobName, len(loops))

	for i, loop := range loops {
		g.writeLoop(&b, loop, i+1, cutout)
	}

	g.writeFooter(&b)
	return b.String()
}

func (g *Generator) writeHeader(b *strings.Builder, jobName string, loopCount int) {
	if !g.Options.IncludeHeader {
		return
	}
	if g.Options.IncludeComments {
		b.WriteString(g.comment(fmt.Sprintf("Job: %s", jobName)))
		b.WriteString(g.comment(fmt.Sprintf("Loops: %d", loopCount)))
		b.WriteString(g.comment(fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339))))
		if g.Options.MaterialType != "" {
			b.WriteString(g.comment(fmt.Sprintf("Material: %s", g.Options.MaterialType)))
		}
		if g.Options.SelectedToolID != "" {
			b.WriteString(g.comment(fmt.Sprintf("Tool: %s", g.Options.SelectedToolID)))
		}
	}
	if g.Options.Units == "in" {
		b.WriteString("G20\n")
	} else {
		b.WriteString("G21\n")
	}
	b.WriteString("G90\n") // absolute positioning
	b.WriteString("G17\n") // XY plane
	if g.Options.SpindleRPM > 0 {
		fmt.Fprintf(b, "M03 S%s\n", g.formatNum(g.Options.SpindleRPM))
	}
	fmt.Fprintf(b, "G0 Z%s\n", g.formatNum(g.Options.SafeHeightMM))
}

func (g *Generator) writeFooter(b *strings.Builder) {
	fmt.Fprintf(b, "G0 Z%s\n", g.formatNum(g.Options.SafeHeightMM))
	b.WriteString("M05\n")
	if g.Options.ReturnToOrigin {
		b.WriteString("G0 X0 Y0\n")
	}
	b.WriteString("END\n")
}

func (g *Generator) writeLoop(b *strings.Builder, loop Loop, index int, cutout config.CutoutParams) {
	if len(loop.Polygon) < 2 {
		return
	}
	label := loop.Label
	if label == "" {
		label = fmt.Sprintf("loop %d", index)
	}
	b.WriteString(g.comment(label))

	start := loop.Polygon[0]
	g.writeRapidTo(b, start)

	passes := cutout.Passes()
	for passIdx, z := range passes {
		g.writePlunge(b, z)
		g.writeLeadIn(b, loop.Polygon)
		g.writePerimeter(b, loop, passIdx == len(passes)-1)
		g.writeLeadOut(b, loop.Polygon)
	}
	fmt.Fprintf(b, "G0 Z%s\n", g.formatNum(g.Options.SafeHeightMM))
}

func (g *Generator) writeRapidTo(b *strings.Builder, p geometry.Point2D) {
	fmt.Fprintf(b, "G0 X%s Y%s\n", g.formatNum(p.X), g.formatNum(p.Y))
}

// writePlunge descends to depth z using the configured strategy: a
// straight plunge, a ramped entry along the first segment's direction, or
// a helical entry circling in place — mirroring the teacher's
// writeDirectPlunge/writeRampPlunge/writeHelixPlunge trio.
func (g *Generator) writePlunge(b *strings.Builder, z float64) {
	switch {
	case g.Options.UseHelixPlunge:
		g.writeHelixPlunge(b, z)
	case g.Options.UseRampPlunge:
		g.writeRampPlunge(b, z)
	default:
		g.writeDirectPlunge(b, z)
	}
}

func (g *Generator) writeDirectPlunge(b *strings.Builder, z float64) {
	rate := g.Options.PlungeRate
	fmt.Fprintf(b, "G1 Z%s F%s\n", g.formatNum(z), g.formatNum(rate))
}

func (g *Generator) writeRampPlunge(b *strings.Builder, z float64) {
	angle := g.Options.RampAngleDeg
	if angle <= 0 {
		angle = 3
	}
	// Horizontal run needed to descend |z| at the given ramp angle.
	run := math.Abs(z) / math.Tan(angle*math.Pi/180)
	fmt.Fprintf(b, "G1 X%s Z%s F%s\n", g.formatNum(run), g.formatNum(z), g.formatNum(g.Options.PlungeRate))
	fmt.Fprintf(b, "G1 X0\n")
}

func (g *Generator) writeHelixPlunge(b *strings.Builder, z float64) {
	r := g.Options.HelixRadiusMM
	if r <= 0 {
		r = 1.0
	}
	turns := int(math.Ceil(math.Abs(z) / (r * 0.5)))
	if turns < 1 {
		turns = 1
	}
	stepZ := z / float64(turns)
	for i := 0; i < turns; i++ {
		fmt.Fprintf(b, "G2 I%s J0 Z%s F%s\n", g.formatNum(-r), g.formatNum(stepZ*float64(i+1)), g.formatNum(g.Options.PlungeRate))
	}
}

// writeLeadIn emits a short tangential approach before cutting begins, if
// configured, mirroring the teacher's writeLeadIn.
func (g *Generator) writeLeadIn(b *strings.Builder, poly geometry.Polygon2D) {
	if g.Options.LeadInLengthMM <= 0 || len(poly) < 2 {
		return
	}
	p0, p1 := poly[0], poly[1]
	dir := geometry.Point2D{X: p1.X - p0.X, Y: p1.Y - p0.Y}
	n := math.Hypot(dir.X, dir.Y)
	if n < geometry.Epsilon {
		return
	}
	start := geometry.Point2D{
		X: p0.X - dir.X/n*g.Options.LeadInLengthMM,
		Y: p0.Y - dir.Y/n*g.Options.LeadInLengthMM,
	}
	fmt.Fprintf(b, "G1 X%s Y%s F%s\n", g.formatNum(start.X), g.formatNum(start.Y), g.formatNum(g.Options.FeedRate))
}

func (g *Generator) writeLeadOut(b *strings.Builder, poly geometry.Polygon2D) {
	if g.Options.LeadOutLengthMM <= 0 || len(poly) < 2 {
		return
	}
	last := poly[len(poly)-1]
	prev := poly[len(poly)-2]
	dir := geometry.Point2D{X: last.X - prev.X, Y: last.Y - prev.Y}
	n := math.Hypot(dir.X, dir.Y)
	if n < geometry.Epsilon {
		return
	}
	end := geometry.Point2D{
		X: last.X + dir.X/n*g.Options.LeadOutLengthMM,
		Y: last.Y + dir.Y/n*g.Options.LeadOutLengthMM,
	}
	fmt.Fprintf(b, "G1 X%s Y%s F%s\n", g.formatNum(end.X), g.formatNum(end.Y), g.formatNum(g.Options.FeedRate))
}

// writePerimeter cuts every edge of the loop in order, closing back to the
// first point, inserting tab bridges and corner overcuts where configured.
// Tabs are only applied on the final (deepest) pass, matching the
// teacher's convention that bridges must survive every pass above them.
func (g *Generator) writePerimeter(b *strings.Builder, loop Loop, isFinalPass bool) {
	n := len(loop.Polygon)
	tabZones := map[int]bool{}
	if isFinalPass && loop.TabCount > 0 {
		tabZones = calculateTabEdges(n, loop.TabCount)
	}

	for i := 0; i < n; i++ {
		next := loop.Polygon[(i+1)%n]
		if tabZones[i] {
			g.writeEdgeWithTab(b, loop.Polygon[i], next)
		} else {
			fmt.Fprintf(b, "G1 X%s Y%s F%s\n", g.formatNum(next.X), g.formatNum(next.Y), g.formatNum(g.Options.FeedRate))
		}
		if g.Options.CornerOvercutMM > 0 && i < n-1 {
			g.writeCornerOvercut(b, loop.Polygon[i], next, loop.Polygon[(i+2)%n])
		}
	}
}

// calculateTabEdges distributes tabCount bridge locations evenly across a
// loop's n edges, the same even-spacing approach as the teacher's
// calculateTabs.
func calculateTabEdges(n, tabCount int) map[int]bool {
	zones := map[int]bool{}
	if tabCount <= 0 || n == 0 {
		return zones
	}
	if tabCount > n {
		tabCount = n
	}
	step := n / tabCount
	if step < 1 {
		step = 1
	}
	for i := 0; i < tabCount; i++ {
		zones[(i*step)%n] = true
	}
	return zones
}

// writeEdgeWithTab cuts most of an edge but retracts to leave a short
// material bridge partway along it, mirroring writeSideWithTabs.
func (g *Generator) writeEdgeWithTab(b *strings.Builder, from, to geometry.Point2D) {
	tabWidth := g.Options.TabWidthMM
	if tabWidth <= 0 {
		tabWidth = 3
	}
	length := from.Dist(to)
	if length <= tabWidth*2 {
		fmt.Fprintf(b, "G1 X%s Y%s F%s\n", g.formatNum(to.X), g.formatNum(to.Y), g.formatNum(g.Options.FeedRate))
		return
	}
	half := tabWidth / 2 / length
	preTab := from.Lerp(to, 0.5-half)
	postTab := from.Lerp(to, 0.5+half)
	tabHeight := g.Options.TabHeightMM
	if tabHeight <= 0 {
		tabHeight = 1
	}

	fmt.Fprintf(b, "G1 X%s Y%s F%s\n", g.formatNum(preTab.X), g.formatNum(preTab.Y), g.formatNum(g.Options.FeedRate))
	fmt.Fprintf(b, "G1 Z%s\n", g.formatNum(tabHeight)) // rise onto the bridge
	fmt.Fprintf(b, "G1 X%s Y%s\n", g.formatNum(postTab.X), g.formatNum(postTab.Y))
	fmt.Fprintf(b, "G1 Z0\n") // back down after clearing the bridge
	fmt.Fprintf(b, "G1 X%s Y%s F%s\n", g.formatNum(to.X), g.formatNum(to.Y), g.formatNum(g.Options.FeedRate))
}

// writeCornerOvercut nudges the tool slightly past an interior corner
// along the bisector of the incoming/outgoing edges, a dogbone-style
// overcut so an inside corner actually clears the full tool radius.
func (g *Generator) writeCornerOvercut(b *strings.Builder, prev, corner, next geometry.Point2D) {
	v1 := geometry.Point2D{X: corner.X - prev.X, Y: corner.Y - prev.Y}
	v2 := geometry.Point2D{X: next.X - corner.X, Y: next.Y - corner.Y}
	n1, n2 := math.Hypot(v1.X, v1.Y), math.Hypot(v2.X, v2.Y)
	if n1 < geometry.Epsilon || n2 < geometry.Epsilon {
		return
	}
	bisector := geometry.Point2D{X: v1.X/n1 - v2.X/n2, Y: v1.Y/n1 - v2.Y/n2}
	bn := math.Hypot(bisector.X, bisector.Y)
	if bn < geometry.Epsilon {
		return
	}
	overcut := geometry.Point2D{
		X: corner.X + bisector.X/bn*g.Options.CornerOvercutMM,
		Y: corner.Y + bisector.Y/bn*g.Options.CornerOvercutMM,
	}
	fmt.Fprintf(b, "G1 X%s Y%s\n", g.formatNum(overcut.X), g.formatNum(overcut.Y))
	fmt.Fprintf(b, "G1 X%s Y%s\n", g.formatNum(corner.X), g.formatNum(corner.Y))
}

func (g *Generator) comment(s string) string {
	return "(" + s + ")\n"
}

func (g *Generator) formatNum(v float64) string {
	dp := g.Options.DecimalPlaces
	if dp <= 0 {
		dp = 3
	}
	return fmt.Sprintf("%.*f", dp, v)
}
