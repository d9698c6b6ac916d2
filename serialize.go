package plasmafilter

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Serializer renders the annotated line list back to program text in a
// single forward pass, honoring removals and replacements. It never
// mutates the lines.
type Serializer struct {
	ctx *RunContext
}

func NewSerializer(ctx *RunContext) *Serializer {
	return &Serializer{ctx: ctx}
}

// Write renders lines to w in original order. Removed lines emit
// nothing; a line with an attached replacement emits that sequence
// wrapped in marker comments instead of its original text.
//
// BareXY lines are reconstructed solely from the discovered axis
// parameters; any other words originally on such a line are lost. This
// is a known limitation, relying on CAM output never mixing axis
// continuation with other words.
func (s *Serializer) Write(w io.Writer, lines []*ProgramLine) error {
	bw := bufio.NewWriter(w)
	for _, ln := range lines {
		if ln.Replacement != nil {
			fmt.Fprintln(bw, "(---- Smart Hole Start ----)")
			for _, e := range ln.Replacement {
				fmt.Fprintln(bw, e.Render(s.ctx.Precision))
			}
			fmt.Fprintln(bw, "(---- Smart Hole End ----)")
			fmt.Fprintln(bw)
			continue
		}

		switch ln.Kind {
		case KindRemoved:
			continue
		case KindComment:
			fmt.Fprintln(bw, ln.Comment)
		case KindPassthrough:
			fmt.Fprintln(bw, ln.Raw)
		default:
			fmt.Fprintln(bw, reconstruct(ln))
		}
	}
	return bw.Flush()
}

// reconstruct rebuilds "<letter><code> <params...> <comment>" from the
// parsed fields, parameters in discovery order.
func reconstruct(ln *ProgramLine) string {
	var sb strings.Builder
	if ln.HasCommand {
		sb.WriteByte(ln.Command.Letter)
		sb.WriteString(formatNum(ln.Command.Code))
	}
	for _, p := range ln.Params {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(p.Letter)
		sb.WriteString(formatNum(p.Value))
	}
	if ln.Comment != "" {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(ln.Comment)
	}
	return sb.String()
}
