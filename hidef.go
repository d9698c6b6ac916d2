package plasmafilter

// HiDefAttr names one interpolatable attribute of a hidef breakpoint
// row.
type HiDefAttr int

const (
	HiDefLeadinRadius HiDefAttr = iota
	HiDefKerf
	HiDefCutHeight
	HiDefSpeed1
	HiDefSpeed2
	HiDefSpeed2Distance
	HiDefOffDistance
	HiDefOverCut

	numHiDefAttrs
)

// HiDefTable performs piecewise lookups of size-dependent cut
// parameters over ascending breakpoint rows. For each adjacent row pair
// the scale factor of an attribute is the upper row's value divided by
// the pair's hole-size delta; a lookup returns the target size times
// that factor. This is a deliberate size-proportional scaling rule,
// not linear interpolation between the two row values. The table is
// immutable after construction.
type HiDefTable struct {
	sizes  []float64
	scales [][numHiDefAttrs]float64 // scales[i] covers (sizes[i], sizes[i+1])
}

func attrValue(row HiDefRow, attr HiDefAttr) float64 {
	switch attr {
	case HiDefLeadinRadius:
		return row.LeadinRadius
	case HiDefKerf:
		return row.Kerf
	case HiDefCutHeight:
		return row.CutHeight
	case HiDefSpeed1:
		return row.Speed1
	case HiDefSpeed2:
		return row.Speed2
	case HiDefSpeed2Distance:
		return row.Speed2Distance
	case HiDefOffDistance:
		return row.PlasmaOffDistance
	case HiDefOverCut:
		return row.OverCut
	}
	return 0
}

// NewHiDefTable precomputes the per-pair scale factors for rows ordered
// by ascending hole size.
func NewHiDefTable(rows []HiDefRow) *HiDefTable {
	t := &HiDefTable{}
	for _, row := range rows {
		t.sizes = append(t.sizes, row.HoleSize)
	}
	for i := 1; i < len(rows); i += 1 {
		delta := rows[i].HoleSize - rows[i-1].HoleSize
		var scales [numHiDefAttrs]float64
		for attr := HiDefAttr(0); attr < numHiDefAttrs; attr += 1 {
			scales[attr] = attrValue(rows[i], attr) / delta
		}
		t.scales = append(t.scales, scales)
	}
	return t
}

// Lookup scales the attribute to the target hole size using the row
// pair whose sizes bracket it inclusively. It never extrapolates: with
// no bracketing pair, ok is false.
func (t *HiDefTable) Lookup(attr HiDefAttr, size float64) (float64, bool) {
	for i := 1; i < len(t.sizes); i += 1 {
		if t.sizes[i-1] <= size && size <= t.sizes[i] {
			return size * t.scales[i-1][attr], true
		}
	}
	return 0, false
}

// Resolve looks up every attribute at the target size. ok is true only
// when all of them interpolate; a partially resolvable table never
// qualifies a hole for hidef processing.
func (t *HiDefTable) Resolve(size float64) (vals [numHiDefAttrs]float64, ok bool) {
	for attr := HiDefAttr(0); attr < numHiDefAttrs; attr += 1 {
		v, found := t.Lookup(attr, size)
		if !found {
			return vals, false
		}
		vals[attr] = v
	}
	return vals, true
}
