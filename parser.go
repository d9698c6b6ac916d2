package plasmafilter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Parser drives the classifier and modal tracker across a whole
// program, in order, producing the ordered line list the hole detector
// works on. Pass one is strictly sequential with no lookahead: a line's
// modal snapshot depends only on lines already seen, including the
// line's own effect.
type Parser struct {
	ctx   *RunContext
	log   *zap.Logger
	modal *ModalState
	lines []*ProgramLine
}

func NewParser(ctx *RunContext) *Parser {
	return &Parser{
		ctx:   ctx,
		log:   ctx.log,
		modal: NewModalState(),
	}
}

// Parse reads the entire program from r and classifies it line by
// line. Only a read failure is an error; every per-line anomaly is
// recovered into the line itself.
func (p *Parser) Parse(r io.Reader) ([]*ProgramLine, error) {
	var raw []string
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		raw = append(raw, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}

	for _, line := range raw {
		ln := p.classify(strings.TrimSpace(line))
		p.modal.Apply(ln.Token)
		ln.Modal = p.modal.Snapshot()
		p.lines = append(p.lines, ln)
	}
	p.log.Debug("program parsed", zap.Int("lines", len(p.lines)))

	return p.lines, nil
}

// Lines returns the materialized line list from the last Parse call.
func (p *Parser) Lines() []*ProgramLine {
	return p.lines
}
