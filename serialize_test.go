package plasmafilter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func serialize(t *testing.T, ctx *RunContext, lines []*ProgramLine) string {
	t.Helper()
	var buf bytes.Buffer
	if err := NewSerializer(ctx).Write(&buf, lines); err != nil {
		t.Fatalf("Write: %s", err)
	}
	return buf.String()
}

func TestSerializeRoundTrip(t *testing.T) {
	procs := &fakeProcesses{procs: map[int]CutProcess{
		1: {ID: 1, CutSpeed: 1800},
	}}
	ctx := testContext(Settings{}, procs)

	input := strings.Join([]string{
		"G21",
		"M52 P1",
		"(setup)",
		"; note",
		"T1",
		"G0 X10 Y20",
		"F600",
		"G1 X-1.5",
		"X2 Y2",
		"G40",
		"G90",
	}, "\n") + "\n"

	lines := parseProgram(t, ctx, input)
	got := serialize(t, ctx, lines)

	// Literal feed substitutes the chart speed; the bare G40 serializes
	// empty because it carries no reconstructable words. Everything else
	// rebuilds verbatim.
	want := strings.Join([]string{
		"G21",
		"M52 P1",
		"(setup)",
		"; note",
		"T1",
		"G0 X10 Y20",
		"F1800",
		"G1 X-1.5",
		"X2 Y2",
		"",
		"G90",
	}, "\n") + "\n"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestSerializeRemoved(t *testing.T) {
	ctx := testContext(Settings{}, nil)
	lines := parseProgram(t, ctx, "G0 X1 Y1\nM3 $0\nG0 X2 Y2\n")
	lines[1].Kind = KindRemoved

	got := serialize(t, ctx, lines)
	want := "G0 X1 Y1\nG0 X2 Y2\n"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestSerializeUnknownTool(t *testing.T) {
	ctx := testContext(Settings{}, &fakeProcesses{})
	lines := parseProgram(t, ctx, "T9\n")

	got := serialize(t, ctx, lines)
	want := "; ERROR: Invalid Cutchart ID in Tx. Check CAM Tools: T9\n"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestSerializeReplacement(t *testing.T) {
	ctx := testContext(Settings{}, nil)
	lines := parseProgram(t, ctx, "G1 X0 Y0\nG3 X0 Y0 I5 J0\nG1 X9 Y9\n")
	lines[1].Replacement = []Element{
		{Code: "F500"},
		{Code: "G1", X: 0, Y: 4.5, HasXY: true},
	}

	got := serialize(t, ctx, lines)
	want := strings.Join([]string{
		"G1 X0 Y0",
		"(---- Smart Hole Start ----)",
		"F500",
		"G1 x0.0000 y4.5000",
		"(---- Smart Hole End ----)",
		"",
		"G1 X9 Y9",
	}, "\n") + "\n"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("replacement (-want +got):\n%s", diff)
	}
}

// TestPipelineIdempotent feeds the processor its own output. The
// generated segmented arcs never individually close, so a second pass
// finds nothing to replace.
func TestPipelineIdempotent(t *testing.T) {
	procs := &fakeProcesses{procs: map[int]CutProcess{
		1: {ID: 1, CutSpeed: 1000, Thickness: 3},
	}}

	ctx := testContext(detectorSettings(), procs)
	lines := parseProgram(t, ctx, holeProgram)
	NewHoleDetector(ctx).FlagHoles(lines)
	first := serialize(t, ctx, lines)

	if !strings.Contains(first, "(---- Smart Hole Start ----)") {
		t.Fatalf("first pass produced no smart hole:\n%s", first)
	}

	ctx2 := testContext(detectorSettings(), procs)
	lines2 := parseProgram(t, ctx2, first)
	NewHoleDetector(ctx2).FlagHoles(lines2)

	for _, ln := range lines2 {
		if ln.Replacement != nil {
			t.Fatalf("second pass replaced %q", ln.Raw)
		}
		if ln.Kind == KindRemoved {
			t.Fatalf("second pass removed %q", ln.Raw)
		}
	}
}
