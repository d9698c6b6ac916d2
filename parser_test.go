package plasmafilter

import (
	"strings"
	"testing"
)

const sampleProgram = `G21
G64 P0.1
M52 P1
T1
G0 X10 Y10
M3 $0
F600
G1 X0 Y0
G3 X0 Y0 I5 J0
X2 Y2
M5 $-1
M2
`

func TestParse(t *testing.T) {
	procs := &fakeProcesses{procs: map[int]CutProcess{
		1: {ID: 1, CutSpeed: 1800, Thickness: 3},
	}}
	ctx := testContext(Settings{}, procs)

	lines, err := NewParser(ctx).Parse(strings.NewReader(sampleProgram))
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if len(lines) != 12 {
		t.Fatalf("got %d lines want 12", len(lines))
	}

	wantKinds := []Kind{
		KindUnits, KindPassthrough, KindPassthrough, KindToolChange,
		KindLinear, KindPassthrough, KindFeed, KindLinear, KindArc,
		KindBareXY, KindPassthrough, KindPassthrough,
	}
	for i, want := range wantKinds {
		if lines[i].Kind != want {
			t.Errorf("line %d %q: got kind %d want %d", i, lines[i].Raw, lines[i].Kind, want)
		}
	}

	// A snapshot includes the line's own code.
	if lines[4].Modal.Motion() != "G0" {
		t.Errorf("line 4: got motion %q want G0", lines[4].Modal.Motion())
	}
	// Bare coordinate lines continue the active motion mode.
	if lines[9].Modal.Motion() != "G3" {
		t.Errorf("line 9: got motion %q want G3", lines[9].Modal.Motion())
	}
	// M5 lands in M group 7 and persists. M2 matches no classifier
	// token, so it never reaches the modal tracker.
	if lines[10].Modal.M[7] != "M5" {
		t.Errorf("line 10: got M7 %q want M5", lines[10].Modal.M[7])
	}
	if lines[11].Modal.M[7] != "M5" {
		t.Errorf("line 11: got M7 %q want M5", lines[11].Modal.M[7])
	}
	if _, ok := lines[11].Modal.M[4]; ok {
		t.Errorf("line 11: M group 4 tracked for unmatched M2")
	}

	// T1 resolved the active process, so the later F line carries the
	// chart feed instead of the literal.
	if ctx.ActiveProcess == nil || ctx.ActiveProcess.ID != 1 {
		t.Fatalf("active process not resolved: %+v", ctx.ActiveProcess)
	}
	if lines[6].Command.Code != 1800 {
		t.Errorf("line 6: got feed %v want 1800", lines[6].Command.Code)
	}
}

func TestParseEarlierSnapshotsUnaffected(t *testing.T) {
	ctx := testContext(Settings{}, nil)
	lines, err := NewParser(ctx).Parse(strings.NewReader("G0 X1 Y1\nG3 X0 Y0 I5 J0\n"))
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if lines[0].Modal.Motion() != "G0" {
		t.Errorf("line 0: got motion %q want G0", lines[0].Modal.Motion())
	}
	if lines[1].Modal.Motion() != "G3" {
		t.Errorf("line 1: got motion %q want G3", lines[1].Modal.Motion())
	}
}

func TestParseEmpty(t *testing.T) {
	ctx := testContext(Settings{}, nil)
	lines, err := NewParser(ctx).Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if len(lines) != 0 {
		t.Errorf("got %d lines want 0", len(lines))
	}
}

func TestParseIndentedLines(t *testing.T) {
	ctx := testContext(Settings{}, nil)
	lines, err := NewParser(ctx).Parse(strings.NewReader("   G1 X5 Y5\n"))
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if lines[0].Kind != KindLinear {
		t.Errorf("indented line: got kind %d want linear", lines[0].Kind)
	}
	if x, ok := lines[0].Param('X'); !ok || x != 5 {
		t.Errorf("indented line: got X %v, %t want 5, true", x, ok)
	}
}
