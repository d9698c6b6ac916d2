package plasmafilter

import "testing"

func TestModalDefaults(t *testing.T) {
	snap := NewModalState().Snapshot()
	if !snap.IncrementalArcs() {
		t.Errorf("fresh state: incremental arcs not active")
	}
	if !snap.CompOff() {
		t.Errorf("fresh state: cutter compensation not off")
	}
	if snap.Motion() != "" {
		t.Errorf("fresh state: got motion %q want none", snap.Motion())
	}
}

func TestModalApply(t *testing.T) {
	cases := []struct {
		codes  []string
		group  int
		gTable bool
		want   string
	}{
		{[]string{"G0"}, 1, true, "G0"},
		{[]string{"G0", "G3"}, 1, true, "G3"},
		{[]string{"G3", "G1", "G0"}, 1, true, "G0"},
		{[]string{"G90.1"}, 4, true, "G90.1"},
		{[]string{"G90.1", "G91.1"}, 4, true, "G91.1"},
		{[]string{"G20"}, 6, true, "G20"},
		{[]string{"G41"}, 7, true, "G41"},
		{[]string{"M3"}, 7, false, "M3"},
		{[]string{"M3", "M5"}, 7, false, "M5"},
		{[]string{"M30"}, 4, false, "M30"},
	}

	for _, c := range cases {
		ms := NewModalState()
		for _, code := range c.codes {
			ms.Apply(code)
		}
		snap := ms.Snapshot()
		got := snap.M[c.group]
		if c.gTable {
			got = snap.G[c.group]
		}
		if got != c.want {
			t.Errorf("apply %v: group %d got %q want %q", c.codes, c.group, got, c.want)
		}
	}
}

func TestModalApplyUntracked(t *testing.T) {
	ms := NewModalState()
	before := ms.Snapshot()
	for _, code := range []string{"G4", "M66", "F", "T", "", "G38"} {
		ms.Apply(code)
	}
	after := ms.Snapshot()
	if len(after.G) != len(before.G) || len(after.M) != len(before.M) {
		t.Errorf("untracked codes changed state: before %v/%v after %v/%v",
			before.G, before.M, after.G, after.M)
	}
}

func TestModalApplyLeavesOtherGroups(t *testing.T) {
	ms := NewModalState()
	ms.Apply("G0")
	ms.Apply("G90.1")
	ms.Apply("G1")
	snap := ms.Snapshot()
	if snap.Motion() != "G1" {
		t.Errorf("got motion %q want G1", snap.Motion())
	}
	if snap.IncrementalArcs() {
		t.Errorf("G1 clobbered the arc-center mode")
	}
	if !snap.CompOff() {
		t.Errorf("G1 clobbered the compensation group")
	}
}

func TestModalSnapshotIsolation(t *testing.T) {
	ms := NewModalState()
	ms.Apply("G0")
	snap := ms.Snapshot()
	ms.Apply("G3")
	if snap.Motion() != "G0" {
		t.Errorf("later apply leaked into snapshot: got %q want G0", snap.Motion())
	}
}
