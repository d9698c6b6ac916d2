package plasmafilter

import (
	"math"
	"strings"

	"go.uber.org/zap"
)

// HoleDetector is the second pass. It has full random access over the
// materialized line list: recognizing a hole needs backward scans for
// the pre-arc cursor and both directions for the spindle on/off
// collapse, so this pass cannot stream and runs only after parsing
// completes.
type HoleDetector struct {
	ctx *RunContext
	log *zap.Logger
}

func NewHoleDetector(ctx *RunContext) *HoleDetector {
	return &HoleDetector{ctx: ctx, log: ctx.log}
}

func motionActive(snap ModalSnapshot) bool {
	switch snap.Motion() {
	case "G0", "G1", "G2", "G3":
		return true
	}
	return false
}

// lastAxisValue scans backward from before, for the nearest line that
// set the axis while a motion code was modally active.
func lastAxisValue(lines []*ProgramLine, before int, axis byte) (float64, bool) {
	for j := before - 1; j >= 0; j -= 1 {
		prev := lines[j]
		if v, ok := prev.Param(axis); ok && motionActive(prev.Modal) {
			return v, true
		}
	}
	return 0, false
}

// FlagHoles recognizes closed counter-clockwise arcs, selects a
// replacement strategy for each qualifying hole, attaches the generated
// sequence, and marks the surrounding approach and torch-off lines for
// removal. Only counter-clockwise (G3) circles are holes; clockwise
// cuts are outer edges.
func (d *HoleDetector) FlagHoles(lines []*ProgramLine) {
	for i, ln := range lines {
		if !ln.HasCommand || ln.Command.Letter != 'G' || ln.Command.Code != 3 {
			continue
		}
		d.flagHole(lines, i, ln)
	}
}

func (d *HoleDetector) flagHole(lines []*ProgramLine, i int, ln *ProgramLine) {
	// Recover the pre-arc cursor per axis; either axis falls back to
	// the arc line's own explicit value.
	lastX, okX := lastAxisValue(lines, i, 'X')
	if !okX {
		lastX, okX = ln.Param('X')
	}
	lastY, okY := lastAxisValue(lines, i, 'Y')
	if !okY {
		lastY, okY = ln.Param('Y')
	}
	if !okX || !okY {
		return
	}

	// Omitted endpoint axes carry the cursor forward.
	endX, ok := ln.Param('X')
	if !ok {
		endX = lastX
	}
	endY, ok := ln.Param('Y')
	if !ok {
		endY = lastY
	}

	// A hole is an arc that lands exactly where it started. No
	// tolerance: equality is exact.
	if endX != lastX || endY != lastY {
		return
	}

	arcI, okI := ln.Param('I')
	arcJ, okJ := ln.Param('J')
	if !okI || !okJ {
		d.log.Debug("closed arc without center offsets", zap.String("line", ln.Raw))
		return
	}

	centerX := endX + arcI
	centerY := endY + arcJ
	radius := math.Hypot(centerX-endX, centerY-endY)
	diameter := 2 * radius
	circumference := math.Pi * diameter

	ln.Hole = &HoleGeometry{
		CenterX:       centerX,
		CenterY:       centerY,
		Radius:        radius,
		Diameter:      diameter,
		Circumference: circumference,
	}

	s := d.ctx.Settings

	// HiDef resolves only when data exists for the active process
	// combination and every attribute interpolates at this diameter.
	var hidefVals [numHiDefAttrs]float64
	hidef := false
	if proc := d.ctx.ActiveProcess; proc != nil {
		rows, err := d.ctx.Processes.HiDefRows(proc.MachineID, proc.MaterialID, proc.ThicknessID)
		if err != nil {
			d.log.Warn("hidef lookup failed", zap.Error(err))
		} else if len(rows) > 0 {
			hidefVals, hidef = NewHiDefTable(rows).Resolve(diameter)
		}
	}

	builder := NewHoleBuilder(d.ctx)

	switch {
	case s.SmallHoleDetect && diameter < s.SmallHoleThreshold:
		// Too small to cut: replace the hole with a mark pulse.
		ln.Replacement = builder.PlasmaMark(centerX, centerY, s.MarkDelay)

	case hidef:
		speed2Dist := hidefVals[HiDefSpeed2Distance]
		offDist := hidefVals[HiDefOffDistance]
		overCut := hidefVals[HiDefOverCut]
		arc1 := circumference - speed2Dist - offDist
		arc2 := arc1 + speed2Dist
		arc3 := arc2 + overCut - circumference
		ln.Replacement = builder.PlasmaHole(ln.Modal, centerX, centerY, diameter,
			hidefVals[HiDefKerf], hidefVals[HiDefLeadinRadius],
			[]float64{arc1, arc2, arc3}, true)

	case diameter <= d.activeThickness()*s.ThicknessRatio || diameter <= s.MaxHoleSize:
		leadin := s.LeadinRadius
		if leadin == 0 {
			leadin = radius - radius/4 - s.KerfWidth/2
		}
		arc1 := circumference - s.Arc2Distance - s.TorchOffDistance
		arc2 := arc1 + s.Arc2Distance
		arc3 := arc2 + s.Arc3Distance - circumference
		ln.Replacement = builder.PlasmaHole(ln.Modal, centerX, centerY, diameter,
			s.KerfWidth, leadin, []float64{arc1, arc2, arc3}, false)

	default:
		// Not a qualifying hole; leave the arc unmodified.
		ln.Hole = nil
		return
	}

	d.collapseApproach(lines, i)
	d.collapseTail(lines, i)
}

func (d *HoleDetector) activeThickness() float64 {
	if d.ctx.ActiveProcess == nil {
		return 0
	}
	return d.ctx.ActiveProcess.Thickness
}

// collapseApproach marks for removal every line back to and including
// the most recent spindle-on, collapsing the rapid approach and
// torch-on the replacement sequence supersedes. Rapid-move lines keep
// being removed even past the spindle-on until motion mode changes.
func (d *HoleDetector) collapseApproach(lines []*ProgramLine, i int) {
	foundOn := false
	for j := i - 1; j >= 0; j -= 1 {
		prev := lines[j]
		if strings.HasPrefix(prev.Token, "M3") {
			foundOn = true
			prev.Kind = KindRemoved
		}
		if !foundOn {
			prev.Kind = KindRemoved
		}
		motion := prev.Modal.Motion()
		if motion == "" {
			break
		}
		if motion != "G0" && foundOn {
			break
		}
		if motion == "G0" {
			prev.Kind = KindRemoved
		}
	}
}

// collapseTail marks for removal every line up to and including the
// next spindle-off, collapsing the torch-off tail motion.
func (d *HoleDetector) collapseTail(lines []*ProgramLine, i int) {
	for j := i + 1; j < len(lines); j += 1 {
		next := lines[j]
		next.Kind = KindRemoved
		if strings.HasPrefix(next.Token, "M5") {
			break
		}
	}
}
