package plasmafilter

import (
	"fmt"
	"math"
	"strconv"
)

// Element is one synthetic sub-line of a replacement sequence. Motion
// elements carry endpoint and, for arcs, center-offset words; all other
// elements are literal code or comment text.
type Element struct {
	Code  string
	X, Y  float64
	I, J  float64
	HasXY bool
	HasIJ bool
}

// Render formats the element at the run's coordinate precision.
// Generated motion words print lowercase, matching the established
// output of this filter.
func (e Element) Render(precision int) string {
	switch {
	case e.HasIJ:
		return fmt.Sprintf("%s x%.*f y%.*f i%.*f j%.*f",
			e.Code, precision, e.X, precision, e.Y, precision, e.I, precision, e.J)
	case e.HasXY:
		return fmt.Sprintf("%s x%.*f y%.*f", e.Code, precision, e.X, precision, e.Y)
	default:
		return e.Code
	}
}

// formatNum prints a float without trailing zeros, for feed and dwell
// words whose precision is not coordinate-bound.
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// HoleBuilder synthesizes the literal replacement instruction sequence
// for a qualifying hole or a small-hole mark pulse.
type HoleBuilder struct {
	ctx      *RunContext
	torchOn  bool
	elements []Element
}

func NewHoleBuilder(ctx *RunContext) *HoleBuilder {
	return &HoleBuilder{ctx: ctx}
}

func (b *HoleBuilder) add(e Element) {
	b.elements = append(b.elements, e)
}

func (b *HoleBuilder) ccwArc(x, y, rx, ry float64) {
	b.add(Element{Code: "G3", X: x, Y: y, I: rx, J: ry, HasXY: true, HasIJ: true})
}

func (b *HoleBuilder) cwArc(x, y, rx, ry float64) {
	b.add(Element{Code: "G2", X: x, Y: y, I: rx, J: ry, HasXY: true, HasIJ: true})
}

func (b *HoleBuilder) lineTo(x, y float64, rapid bool) {
	code := "G1"
	if rapid {
		code = "G0"
	}
	b.add(Element{Code: code, X: x, Y: y, HasXY: true})
}

func (b *HoleBuilder) cutOnOff(on bool) {
	b.torchOn = on
	if on {
		b.add(Element{Code: "M3 $0"})
	} else {
		b.add(Element{Code: "M5 $-1"})
	}
}

func (b *HoleBuilder) kerfOff() {
	b.add(Element{Code: "G40"})
}

func (b *HoleBuilder) comment(txt string) {
	b.add(Element{Code: "(" + txt + ")"})
}

// debugComment emits bare diagnostic text, only under the debug flag.
func (b *HoleBuilder) debugComment(txt string) {
	if b.ctx.Settings.DebugComments {
		b.add(Element{Code: txt})
	}
}

func (b *HoleBuilder) dwell(t float64) {
	b.add(Element{Code: "G4 P" + formatNum(t)})
}

func (b *HoleBuilder) feed(rate float64) {
	b.add(Element{Code: "F" + formatNum(rate)})
}

func (b *HoleBuilder) absoluteArcs() {
	b.add(Element{Code: "G90.1"})
}

func (b *HoleBuilder) relativeArcs() {
	b.add(Element{Code: "G91.1"})
}

func (b *HoleBuilder) thcOffSynch() {
	b.add(Element{Code: "M62 P2"})
}

func (b *HoleBuilder) thcOnSynch() {
	b.add(Element{Code: "M63 P2"})
}

// markingVoltageWait waits on digital pin 4 going high.
func (b *HoleBuilder) markingVoltageWait() {
	b.add(Element{Code: "M66 P3 L3 Q10"})
}

// PlasmaMark builds the small-hole mark pulse: instead of cutting, the
// torch fires briefly at the hole center to leave a drill mark.
func (b *HoleBuilder) PlasmaMark(x, y, delay float64) []Element {
	b.elements = nil
	feedRate := b.ctx.ActiveFeedRate()

	b.comment("---- Marking Start ----")
	b.feed(feedRate)
	b.lineTo(x, y, true)
	b.cutOnOff(true)
	b.lineTo(x+0.001, y, false)
	b.markingVoltageWait()
	b.dwell(delay)
	b.cutOnOff(false)
	b.comment("---- Marking End ----")
	return b.elements
}

// PlasmaHole builds the smart-hole replacement for a detected circular
// hole: lead-in geometry chosen from the lead-in radius, then the hole
// body as segmented counter-clockwise arcs with staged feed rates.
//
// splits are segment lengths along the circumference (at most three);
// with none, the hole is four plain 90 degree arcs. modal is the arc
// line's snapshot; hidef marks the sequence as hidef-derived.
func (b *HoleBuilder) PlasmaHole(modal ModalSnapshot, x, y, d, kerf, leadinRadius float64,
	splits []float64, hidef bool) []Element {

	feedRate := b.ctx.ActiveFeedRate()
	arc1Feed := feedRate * b.ctx.Settings.Arc1FeedPercent
	arc2Feed := feedRate * b.ctx.Settings.Arc2FeedPercent
	arc3Feed := feedRate * b.ctx.Settings.Arc3FeedPercent
	leadinFeed := feedRate * b.ctx.Settings.LeadinFeedPercent

	compOff := modal.CompOff()

	r := d / 2
	kc := kerf / 2

	// Kerf as wide as the hole: the hole disappears. Mark that it was
	// ignored with a comment and emit no motion.
	if kc >= r {
		b.elements = nil
		b.comment("1/2 Kerf > Hole Radius.  Smart Hole processing skipped.")
		return b.elements
	}

	// Segment lengths convert to angles from 12 o'clock via
	// angle = arc_length / radius. Segment order must be kept; sorting
	// would put the overburn segment first.
	var splitAngles []float64
	for _, spt := range splits {
		splitAngles = append(splitAngles, spt/r)
	}

	// Compensate the hole and lead-in radii by half the kerf unless
	// cutter compensation is externally active.
	if compOff {
		r -= kc
		leadinRadius -= kc
	}

	// First real point of the hole, after the lead-in: 12 o'clock.
	arcX0 := x
	arcY0 := y + r

	b.elements = nil

	if modal.IncrementalArcs() {
		b.absoluteArcs()
	}
	if hidef {
		b.comment("---- HiDef Hole ----")
	}
	b.debugComment(fmt.Sprintf("Hole Center x=%v y=%v r=%v leadin_r=%v", x, y, r, leadinRadius))
	b.debugComment(fmt.Sprintf("First point on hole: x=%v y=%v", arcX0, arcY0))
	b.debugComment("Leadin...")

	gap := math.Abs(arcY0 - 2*leadinRadius - y)

	b.feed(leadinFeed)
	b.thcOffSynch()

	switch {
	case leadinRadius < 0 || leadinRadius >= r:
		// Lead-in radius too small or at least the hole radius: use a
		// straight lead-in from the hole center.
		b.debugComment("too small")
		b.lineTo(x, y, true)
		b.kerfOff()
		b.cutOnOff(true)
		b.lineTo(arcX0, arcY0, false)

	case leadinRadius <= r/2:
		// Half circle lead-in.
		b.debugComment("Half circle radius")
		b.debugComment(fmt.Sprintf("Half circle radius. Centre-to-Leadin-Gap=%v", gap))
		if gap < kerf {
			b.debugComment("... single arc")
			b.lineTo(x, y, true)
			b.kerfOff()
			b.cutOnOff(true)
			b.lineTo(x, arcY0-2*leadinRadius, false)
			b.ccwArc(arcX0, arcY0, x, arcY0-leadinRadius)
		} else {
			b.debugComment("... double back arc")
			b.lineTo(x, y, true)
			b.kerfOff()
			b.cutOnOff(true)
			b.cwArc(x, y+gap, x, y+gap/2)
			b.ccwArc(arcX0, arcY0, x, arcY0-leadinRadius)
		}

	default:
		// Between half and full radius: combination of a lead-in arc
		// and a smaller arc from the hole center.
		b.debugComment("Greater then Half circle radius")
		b.debugComment(fmt.Sprintf("Half circle radius. Centre-to-Leadin-Gap=%v", gap))
		if gap < kerf {
			b.debugComment("... single arc")
			b.lineTo(x, y, true)
			b.kerfOff()
			b.cutOnOff(true)
			b.lineTo(x, y-gap, false)
			b.ccwArc(arcX0, arcY0, x, arcY0-leadinRadius)
		} else {
			b.debugComment("... double back arc")
			b.lineTo(x, y, true)
			b.kerfOff()
			b.cutOnOff(true)
			b.ccwArc(x, y-gap, x, y-gap/2)
			b.ccwArc(arcX0, arcY0, x, arcY0-leadinRadius)
		}
	}

	b.comment("Hole...")
	cx, cy := x, y

	if len(splitAngles) > 0 {
		fullCircle := math.Pi * 2
		degs90 := math.Pi / 2
		for sector, sang := range splitAngles {
			endX := cx + r*math.Cos(sang+degs90)
			endY := cy + r*math.Sin(sang+degs90)
			if sang == fullCircle || sang == 0 {
				// Back at 12 o'clock; pin the coordinates so later
				// segments reference zero degrees exactly.
				endX = x
				endY = y + r
			}
			b.debugComment(fmt.Sprintf("Settings: angle = %v radians %v degrees", sang, sang*180/math.Pi))
			b.debugComment(fmt.Sprintf("Arc length = %v", r*sang))
			b.comment(fmt.Sprintf("Sector number: %d", sector))
			switch {
			case sector == 0:
				b.feed(arc1Feed)
			case sector == 1:
				b.feed(arc2Feed)
			case sector >= 2:
				// Overburn tail: torch off, keep moving so the arc
				// finishes without re-firing.
				b.cutOnOff(false)
				b.feed(arc3Feed)
			}
			b.ccwArc(endX, endY, cx, cy)
		}
	} else {
		// Plain hole as four arcs; no overburn or staged speeds.
		b.ccwArc(x-r, y, x, y)
		b.ccwArc(x, y-r, x, y)
		b.ccwArc(x+r, y, x, y)
		b.ccwArc(x, y+r, x, y)
	}

	if b.torchOn {
		b.cutOnOff(false)
	}
	b.thcOnSynch()
	b.feed(feedRate)
	if modal.IncrementalArcs() {
		b.relativeArcs()
	}
	return b.elements
}
