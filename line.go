package plasmafilter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Kind classifies a program line for the later passes.
type Kind int

const (
	KindUnclassified Kind = iota
	KindComment
	KindLinear
	KindArc
	KindToolChange
	KindPassthrough
	KindBareXY
	KindRemoved // marked for removal; emits nothing
	KindUnits   // G20/G21
	KindFeed    // literal feed word
	KindControl // recognized control code carried only through modal state
)

// LineError identifies a recoverable per-line anomaly.
type LineError int

const (
	CutterCompensationDetected LineError = iota
)

// Command is the line's letter word and numeric code, e.g. G3 or T4.
type Command struct {
	Letter byte
	Code   float64
}

// Param is one axis or offset word. Params keep insertion order so the
// serializer can reconstruct lines in discovery order.
type Param struct {
	Letter byte
	Value  float64
}

// ProgramLine is one classified line of the program. It is created once
// by the Parser; only the hole detector mutates it afterwards.
type ProgramLine struct {
	Raw        string
	Kind       Kind
	Token      string // matched classifier prefix, e.g. "G3", "M5", "T"
	Command    Command
	HasCommand bool
	Params     []Param
	Comment    string
	Errors     map[LineError]string
	Modal      ModalSnapshot
	CutchartID int // resolved tool id, 0 if none

	Hole        *HoleGeometry
	Replacement []Element
}

// Param returns the value of the named word, if present.
func (ln *ProgramLine) Param(letter byte) (float64, bool) {
	for _, p := range ln.Params {
		if p.Letter == letter {
			return p.Value, true
		}
	}
	return 0, false
}

func (ln *ProgramLine) setParam(letter byte, value float64) {
	for i, p := range ln.Params {
		if p.Letter == letter {
			ln.Params[i].Value = value
			return
		}
	}
	ln.Params = append(ln.Params, Param{Letter: letter, Value: value})
}

func (ln *ProgramLine) addError(err LineError, msg string) {
	if ln.Errors == nil {
		ln.Errors = map[LineError]string{}
	}
	ln.Errors[err] = msg
}

// HoleGeometry is derived from a closed arc's start point and center
// offset.
type HoleGeometry struct {
	CenterX       float64
	CenterY       float64
	Radius        float64
	Diameter      float64
	Circumference float64
}

type tokenBinding struct {
	prefix string
	kind   Kind
	handle func(p *Parser, ln *ProgramLine)
}

// tokenTable is the classifier's fixed-priority binding list. First
// anchored prefix match wins, so the relative order matters: several
// prefixes are textual substrings of others (G20 before G2, F# before
// F) and the order is load-bearing.
var tokenTable = []tokenBinding{
	{"G0", KindLinear, (*Parser).parseLinear},
	{"G1", KindLinear, (*Parser).parseLinear},
	{"G20", KindUnits, (*Parser).setInches},
	{"G21", KindUnits, (*Parser).setMillimeters},
	{"G2", KindArc, (*Parser).parseArc},
	{"G3", KindArc, (*Parser).parseArc},
	{"G41", KindRemoved, (*Parser).cutterCompError},
	{"G42", KindRemoved, (*Parser).cutterCompError},
	{"G41.1", KindRemoved, (*Parser).cutterCompError},
	{"G42.1", KindRemoved, (*Parser).cutterCompError},
	{"G40", KindControl, (*Parser).placeholder},
	{"G64", KindPassthrough, (*Parser).parsePassthrough},
	{"M52", KindPassthrough, (*Parser).parsePassthrough},
	{"M3", KindPassthrough, (*Parser).parsePassthrough},
	{"M5", KindPassthrough, (*Parser).parsePassthrough},
	{"M190", KindPassthrough, (*Parser).parsePassthrough},
	{"M66", KindPassthrough, (*Parser).parsePassthrough},
	{"G91.1", KindPassthrough, (*Parser).parsePassthrough},
	{"G90.1", KindPassthrough, (*Parser).parsePassthrough},
	{"F#", KindPassthrough, (*Parser).parsePassthrough},
	{"F", KindFeed, (*Parser).parseFeedrate},
	{"#<HOLES>", KindControl, (*Parser).placeholder},
	{"#<H_DIAMETER>", KindControl, (*Parser).placeholder},
	{"#<H_VELOCITY>", KindControl, (*Parser).placeholder},
	{"#<OCLENGTH>", KindControl, (*Parser).placeholder},
	{"#<PIERCE-ONLY>", KindControl, (*Parser).placeholder},
	{";", KindComment, (*Parser).parseComment},
	{"(", KindComment, (*Parser).parseComment},
	{"T", KindToolChange, (*Parser).parseToolChange},
}

var (
	multiCodeRE = regexp.MustCompile(`G\d+|T\s*\d+|M\d+`)
	toolComboRE = regexp.MustCompile(`T\s*\d+|M6`)
	xyParamRE   = regexp.MustCompile(`([XY])([\d\+\.\-]+)`)
	arcParamRE  = regexp.MustCompile(`([XYIJP])([\d\+\.\-]+)`)
)

// classify turns one raw line into a ProgramLine. The modal snapshot is
// attached later by the parse loop, after the line's own code has been
// applied.
func (p *Parser) classify(raw string) *ProgramLine {
	ln := &ProgramLine{Raw: raw, Kind: KindUnclassified}
	upper := strings.ToUpper(strings.TrimSpace(raw))

	// A line can carry multiple codes; typical of CAM preambles. Such
	// lines pass through untouched apart from scanning for disallowed
	// codes and the Tx M6 tool change combination.
	multi := multiCodeRE.FindAllString(upper, -1)
	if len(multi) > 1 {
		ln.Kind = KindPassthrough
		for _, code := range multi {
			switch code {
			case "G41", "G42": // G41.1/G42.1 match as G41/G42 here
				p.cutterCompError(ln)
			}
		}
		if combo := toolComboRE.FindAllString(upper, -1); len(combo) == 2 {
			// Tool change combo, assumed in the form Tx M6. The process
			// lookup side effect still happens even though the line
			// itself passes through.
			p.resolveToolChange(ln, combo[0], true)
		}
		return ln
	}

	for _, tb := range tokenTable {
		if !strings.HasPrefix(strings.ToUpper(raw), tb.prefix) {
			continue
		}
		ln.Kind = tb.kind
		ln.Token = tb.prefix
		tb.handle(p, ln)
		if ln.Kind != KindComment {
			p.parseInlineComment(ln)
		}
		return ln
	}

	// No pattern matched. Continuation lines from CAM output repeat
	// only the coordinates under an already-active motion mode, so
	// re-scan for bare axis words before settling on passthrough.
	ln.Kind = KindPassthrough
	p.parseBareXY(ln)
	return ln
}

// stripInlineComment returns the text before any inline comment
// delimiter, trimmed.
func stripInlineComment(line string) string {
	if i := strings.IndexAny(line, ";("); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func (p *Parser) parseInlineComment(ln *ProgramLine) {
	// The first character is skipped so a leading delimiter does not
	// shadow a trailing comment on the same line.
	if len(ln.Raw) < 2 {
		return
	}
	if i := strings.IndexAny(ln.Raw[1:], ";("); i >= 0 {
		ln.Comment = ln.Raw[1+i:]
	}
}

func (p *Parser) parseComment(ln *ProgramLine) {
	ln.Comment = ln.Raw
	ln.Command = Command{Letter: ';'}
	ln.HasCommand = true
}

func (p *Parser) parsePassthrough(ln *ProgramLine) {
	ln.Kind = KindPassthrough
}

func (p *Parser) placeholder(ln *ProgramLine) {
	p.log.Debug("unhandled code", zap.String("token", ln.Token))
}

func (p *Parser) parseLinear(ln *ProgramLine) {
	code, _ := strconv.Atoi(ln.Token[1:])
	ln.Command = Command{Letter: 'G', Code: float64(code)}
	ln.HasCommand = true

	upper := strings.ToUpper(ln.Raw)
	rest := upper
	if _, after, ok := strings.Cut(upper, ln.Token); ok {
		rest = after
	}
	for _, m := range xyParamRE.FindAllStringSubmatch(strings.TrimSpace(rest), -1) {
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			ln.setParam(m[1][0], v)
		}
	}
}

func (p *Parser) parseArc(ln *ProgramLine) {
	code, _ := strconv.Atoi(ln.Token[1:])
	ln.Command = Command{Letter: 'G', Code: float64(code)}
	ln.HasCommand = true

	// Strip the inline comment first so comment text is never misparsed
	// as a parameter.
	upper := strings.ToUpper(stripInlineComment(ln.Raw))
	rest := upper
	if _, after, ok := strings.Cut(upper, ln.Token); ok {
		rest = after
	}
	for _, m := range arcParamRE.FindAllStringSubmatch(strings.TrimSpace(rest), -1) {
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			ln.setParam(m[1][0], v)
		}
	}
}

func (p *Parser) parseBareXY(ln *ProgramLine) {
	upper := strings.ToUpper(strings.TrimSpace(ln.Raw))
	for _, m := range xyParamRE.FindAllStringSubmatch(upper, -1) {
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			ln.setParam(m[1][0], v)
		}
		ln.Kind = KindBareXY
	}
}

func (p *Parser) parseFeedrate(ln *ProgramLine) {
	// The feed is assumed to be on its own line.
	line := stripInlineComment(ln.Raw)
	feed, err := strconv.ParseFloat(strings.TrimSpace(line[1:]), 64)
	if err != nil {
		p.log.Debug("unparseable feed word", zap.String("line", ln.Raw))
		ln.Kind = KindPassthrough
		return
	}
	if p.ctx.ActiveProcess != nil {
		feed = p.ctx.ActiveProcess.CutSpeed
	}
	ln.Command = Command{Letter: 'F', Code: feed}
	ln.HasCommand = true
}

func (p *Parser) setInches(ln *ProgramLine) {
	p.ctx.UnitsPerMM = mmPerInch
	ln.Command = Command{Letter: 'G', Code: 20}
	ln.HasCommand = true
}

func (p *Parser) setMillimeters(ln *ProgramLine) {
	p.ctx.UnitsPerMM = 1
	ln.Command = Command{Letter: 'G', Code: 21}
	ln.HasCommand = true
}

// cutterCompError flags a disallowed cutter compensation code. The
// processor requires all compensation baked into the tool path.
func (p *Parser) cutterCompError(ln *ProgramLine) {
	ln.addError(CutterCompensationDetected,
		"Cutter compensation detected. Ensure all compensation is baked into the tool path.")
	p.log.Error("ERROR:CUTTER_COMP:INVALID GCODE FOUND")
	ln.Kind = KindRemoved
}

func (p *Parser) parseToolChange(ln *ProgramLine) {
	line := stripInlineComment(ln.Raw)
	p.resolveToolChange(ln, line, false)
}

// resolveToolChange parses the tool id from tok ("Tn", possibly with
// embedded spaces) and resolves it against the process database. A tool
// change is a process change: the id keys the cutchart table and the
// resolved process becomes the active context for all later lines. On
// the Tx M6 combo path the line stays passthrough but the lookup side
// effect is identical.
func (p *Parser) resolveToolChange(ln *ProgramLine, tok string, combo bool) {
	_, after, ok := strings.Cut(strings.ToUpper(tok), "T")
	if !ok {
		return
	}
	tool, err := strconv.Atoi(strings.TrimSpace(after))
	if err != nil {
		p.log.Warn("unparseable tool id", zap.String("line", ln.Raw))
		ln.Kind = KindPassthrough
		return
	}

	if combo {
		ln.Kind = KindPassthrough
	} else {
		ln.Command = Command{Letter: 'T', Code: float64(tool)}
		ln.HasCommand = true
		ln.Kind = KindToolChange
	}

	proc, found, err := p.ctx.Processes.CutByID(tool)
	if err != nil {
		p.log.Warn("process lookup failed", zap.Int("tool", tool), zap.Error(err))
		found = false
	}
	if !found {
		// No cut is ever emitted for an unknown id: the line becomes an
		// explanatory error comment.
		ln.Comment = fmt.Sprintf("; ERROR: Invalid Cutchart ID in Tx. Check CAM Tools: %s", ln.Raw)
		ln.Kind = KindComment
		p.log.Warn("tool is not a valid cut process", zap.Int("tool", tool))
		return
	}

	ln.CutchartID = tool
	p.ctx.ActiveProcess = &proc
}
