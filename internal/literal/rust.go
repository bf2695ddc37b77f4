// Package literal serializes Zobrist tables as source-embeddable literals and
// parses them back.
package literal

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hailam/zobristgen/internal/zobrist"
)

// WriteRust writes t as a nested Rust array literal, one u64 per line:
//
//	[
//	    [
//	    [
//	        0x0123456789ABCDEFu64,
//	    ],
//	    ],
//	]
func WriteRust(w io.Writer, t *zobrist.Table) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("[\n")
	for r := 0; r < zobrist.Ranks; r++ {
		bw.WriteString("    [\n")
		for f := 0; f < zobrist.Files; f++ {
			bw.WriteString("    [\n")
			for s := 0; s < zobrist.States; s++ {
				fmt.Fprintf(bw, "        0x%016Xu64,\n", t[r][f][s])
			}
			bw.WriteString("    ],\n")
		}
		bw.WriteString("    ],\n")
	}
	bw.WriteString("]\n")
	return bw.Flush()
}

// ParseRust reads a literal written by WriteRust. Whitespace, trailing
// commas and digit separators are free-form; elements must be separated by
// commas and the shape must be exactly [8][8][256].
func ParseRust(r io.Reader) (*zobrist.Table, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "literal: read rust table")
	}

	p := &rustParser{src: src}
	t := new(zobrist.Table)

	if err := p.open(); err != nil {
		return nil, err
	}
	for rank := 0; rank < zobrist.Ranks; rank++ {
		if err := p.open(); err != nil {
			return nil, err
		}
		for file := 0; file < zobrist.Files; file++ {
			if err := p.open(); err != nil {
				return nil, err
			}
			for s := 0; s < zobrist.States; s++ {
				v, err := p.value()
				if err != nil {
					return nil, err
				}
				t[rank][file][s] = v
			}
			if err := p.close(); err != nil {
				return nil, err
			}
		}
		if err := p.close(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(']'); err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ';' {
		p.pos++
		p.skipSpace()
	}
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input")
	}
	return t, nil
}

type rustParser struct {
	src []byte
	pos int
}

func (p *rustParser) errorf(format string, args ...any) error {
	line := 1
	for _, c := range p.src[:p.pos] {
		if c == '\n' {
			line++
		}
	}
	return errors.Errorf("literal: line %d: %s", line, fmt.Sprintf(format, args...))
}

func (p *rustParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *rustParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return p.errorf("unexpected end of input, want %q", c)
	}
	if p.src[p.pos] != c {
		return p.errorf("found %q, want %q", p.src[p.pos], c)
	}
	p.pos++
	return nil
}

func (p *rustParser) open() error {
	return p.expect('[')
}

// close consumes "]" of a nested array and the separator after it.
func (p *rustParser) close() error {
	if err := p.expect(']'); err != nil {
		return err
	}
	return p.separator()
}

// separator consumes the comma after an element. The comma may only be
// omitted before the closing "]".
func (p *rustParser) separator() error {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return p.errorf("unexpected end of input, want ',' or ']'")
	}
	switch p.src[p.pos] {
	case ',':
		p.pos++
		return nil
	case ']':
		return nil
	}
	return p.errorf("found %q, want ',' or ']'", p.src[p.pos])
}

// value consumes one 0x... literal with an optional u64 suffix.
func (p *rustParser) value() (uint64, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isLiteralByte(p.src[p.pos]) {
		p.pos++
	}
	tok := string(p.src[start:p.pos])
	if tok == "" {
		if p.pos >= len(p.src) {
			return 0, p.errorf("unexpected end of input, want value")
		}
		return 0, p.errorf("found %q, want value", p.src[p.pos])
	}

	digits := tok
	if len(digits) > 3 && digits[len(digits)-3:] == "u64" {
		digits = digits[:len(digits)-3]
	}
	if len(digits) < 3 || digits[0] != '0' || (digits[1] != 'x' && digits[1] != 'X') {
		return 0, p.errorf("malformed literal %q", tok)
	}
	hex := strings.ReplaceAll(digits[2:], "_", "")
	if hex == "" {
		return 0, p.errorf("malformed literal %q", tok)
	}
	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return 0, p.errorf("malformed literal %q: %v", tok, err)
	}
	if err := p.separator(); err != nil {
		return 0, err
	}
	return v, nil
}

func isLiteralByte(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
