package plasmafilter

// CutProcess is the result of a tool-id lookup in the cutchart table.
// It is immutable once fetched and becomes the active process context
// for all subsequent lines until the next tool change.
type CutProcess struct {
	ID          int
	CutSpeed    float64
	Thickness   float64
	ThicknessID int
	MaterialID  int
	MachineID   int
}

// HiDefRow is one breakpoint row of machine/material/thickness-specific
// hole-cutting overrides, keyed by ascending hole size.
type HiDefRow struct {
	HoleSize          float64
	LeadinRadius      float64
	Kerf              float64
	CutHeight         float64
	Speed1            float64
	Speed2            float64
	Speed2Distance    float64
	PlasmaOffDistance float64
	OverCut           float64
	Amps              float64
}

// ProcessSource is the process database collaborator. Implementations
// live outside this package; the SQLite one is in the process
// subpackage.
type ProcessSource interface {
	// CutByID looks up the cut process for a tool id. found is false
	// when no record exists for the id.
	CutByID(id int) (proc CutProcess, found bool, err error)

	// HiDefRows returns the hidef breakpoint rows for the combination,
	// ordered by ascending hole size. An empty slice means no hidef
	// data exists for the combination.
	HiDefRows(machineID, materialID, thicknessID int) ([]HiDefRow, error)
}
