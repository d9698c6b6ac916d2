package plasmafilter

// Modal group tables per the standard RS274/NGC grouping. Only one code
// in a group can be active at a time; applying a code overwrites its
// group's entry and leaves every other group alone.
var gModalGroups = map[int][]string{
	1: {"G0", "G1", "G2", "G3", "G33", "G38.n", "G73", "G76", "G80", "G81",
		"G82", "G83", "G84", "G85", "G86", "G87", "G88", "G89"},
	2:  {"G17", "G18", "G19", "G17.1", "G18.1", "G19.1"},
	3:  {"G90", "G91"},
	4:  {"G90.1", "G91.1"},
	5:  {"G93", "G94", "G95"},
	6:  {"G20", "G21"},
	7:  {"G40", "G41", "G42", "G41.1", "G42.1"},
	8:  {"G43", "G43.1", "G49"},
	10: {"G98", "G99"},
	12: {"G54", "G55", "G56", "G57", "G58", "G59", "G59.1", "G59.2", "G59.3"},
	13: {"G61", "G61.1", "G64"},
	14: {"G96", "G97"},
	15: {"G7", "G8"},
}

var mModalGroups = map[int][]string{
	4: {"M0", "M1", "M2", "M30", "M60"},
	7: {"M3", "M4", "M5"},
	9: {"M48", "M49"},
}

const (
	motionGroup  = 1 // G0/G1/G2/G3 and canned cycles
	arcModeGroup = 4 // G90.1/G91.1
	compGroup    = 7 // G40/G41/G42
)

// ModalState tracks the active code per modal group. It is owned by the
// Parser and updated once per line, in document order, with no
// lookahead.
type ModalState struct {
	gGroups map[int]string
	mGroups map[int]string
}

// NewModalState seeds the defaults the processor assumes before any
// code is seen: incremental arc mode and cutter compensation off.
func NewModalState() *ModalState {
	ms := &ModalState{
		gGroups: map[int]string{},
		mGroups: map[int]string{},
	}
	ms.Apply("G91.1")
	ms.Apply("G40")
	return ms
}

// Apply records code as its group's active code. Codes that belong to
// no tracked group are ignored.
func (ms *ModalState) Apply(code string) {
	for grp, codes := range gModalGroups {
		for _, c := range codes {
			if c == code {
				ms.gGroups[grp] = code
				return
			}
		}
	}
	for grp, codes := range mModalGroups {
		for _, c := range codes {
			if c == code {
				ms.mGroups[grp] = code
				return
			}
		}
	}
}

// Snapshot returns an immutable copy of the current state.
func (ms *ModalState) Snapshot() ModalSnapshot {
	snap := ModalSnapshot{
		G: make(map[int]string, len(ms.gGroups)),
		M: make(map[int]string, len(ms.mGroups)),
	}
	for grp, code := range ms.gGroups {
		snap.G[grp] = code
	}
	for grp, code := range ms.mGroups {
		snap.M[grp] = code
	}
	return snap
}

// ModalSnapshot is the group state captured for one program line,
// including the line's own effect.
type ModalSnapshot struct {
	G map[int]string
	M map[int]string
}

// Motion returns the active group-1 motion code, or "" if none has been
// seen yet.
func (s ModalSnapshot) Motion() string {
	return s.G[motionGroup]
}

// IncrementalArcs reports whether G91.1 is the active arc-center mode.
func (s ModalSnapshot) IncrementalArcs() bool {
	return s.G[arcModeGroup] == "G91.1"
}

// CompOff reports whether cutter compensation is off (G40 active).
func (s ModalSnapshot) CompOff() bool {
	return s.G[compGroup] == "G40"
}
