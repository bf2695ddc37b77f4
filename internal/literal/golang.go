package literal

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/hailam/zobristgen/internal/zobrist"
)

// GoOptions controls the generated Go file.
type GoOptions struct {
	Package string // default "zobrist"
	Var     string // default "Keys"
	Seed    uint64
	Seeded  bool
}

func (o GoOptions) withDefaults() GoOptions {
	if o.Package == "" {
		o.Package = "zobrist"
	}
	if o.Var == "" {
		o.Var = "Keys"
	}
	return o
}

// WriteGo writes t as a gofmt'd Go source file declaring
// var <Var> = [8][8][256]uint64{...}.
func WriteGo(w io.Writer, t *zobrist.Table, opts GoOptions) error {
	opts = opts.withDefaults()
	if !token.IsIdentifier(opts.Package) {
		return errors.Errorf("literal: invalid package name %q", opts.Package)
	}
	if !token.IsIdentifier(opts.Var) {
		return errors.Errorf("literal: invalid variable name %q", opts.Var)
	}

	var buf bytes.Buffer
	buf.WriteString("// Code generated by zobristgen; DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", opts.Package)
	fmt.Fprintf(&buf, "// %s holds Zobrist keys indexed by [rank][file][square state].\n", opts.Var)
	if opts.Seeded {
		fmt.Fprintf(&buf, "// Seed: %d.\n", opts.Seed)
	}
	fmt.Fprintf(&buf, "// Fingerprint: %016x.\n", t.Fingerprint())
	fmt.Fprintf(&buf, "var %s = [%d][%d][%d]uint64{\n", opts.Var, zobrist.Ranks, zobrist.Files, zobrist.States)
	for r := 0; r < zobrist.Ranks; r++ {
		buf.WriteString("{\n")
		for f := 0; f < zobrist.Files; f++ {
			buf.WriteString("{\n")
			for s := 0; s < zobrist.States; s++ {
				fmt.Fprintf(&buf, "0x%016X,\n", t[r][f][s])
			}
			buf.WriteString("},\n")
		}
		buf.WriteString("},\n")
	}
	buf.WriteString("}\n")

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return errors.Wrap(err, "literal: format go source")
	}
	_, err = w.Write(src)
	return err
}

// ParseGo reads the first package-level variable initialized with a
// [8][8][256] composite literal from a Go source file.
func ParseGo(src []byte) (*zobrist.Table, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parser.SkipObjectResolution)
	if err != nil {
		return nil, errors.Wrap(err, "literal: parse go source")
	}

	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR {
			continue
		}
		for _, spec := range gen.Specs {
			vs := spec.(*ast.ValueSpec)
			for _, v := range vs.Values {
				lit, ok := v.(*ast.CompositeLit)
				if !ok {
					continue
				}
				t := new(zobrist.Table)
				if err := fillTable(fset, t, lit); err != nil {
					return nil, err
				}
				return t, nil
			}
		}
	}
	return nil, errors.New("literal: no table variable found")
}

func fillTable(fset *token.FileSet, t *zobrist.Table, lit *ast.CompositeLit) error {
	ranks, err := elements(fset, lit, zobrist.Ranks)
	if err != nil {
		return err
	}
	for r, rankExpr := range ranks {
		files, err := elements(fset, rankExpr, zobrist.Files)
		if err != nil {
			return err
		}
		for f, fileExpr := range files {
			states, err := elements(fset, fileExpr, zobrist.States)
			if err != nil {
				return err
			}
			for s, e := range states {
				v, err := uint64Lit(fset, e)
				if err != nil {
					return err
				}
				t[r][f][s] = v
			}
		}
	}
	return nil
}

// elements returns the n positional elements of a composite literal.
func elements(fset *token.FileSet, e ast.Expr, n int) ([]ast.Expr, error) {
	lit, ok := e.(*ast.CompositeLit)
	if !ok {
		return nil, errors.Errorf("literal: %s: expected composite literal", fset.Position(e.Pos()))
	}
	if len(lit.Elts) != n {
		return nil, errors.Errorf("literal: %s: got %d elements, want %d", fset.Position(lit.Pos()), len(lit.Elts), n)
	}
	for _, el := range lit.Elts {
		if _, keyed := el.(*ast.KeyValueExpr); keyed {
			return nil, errors.Errorf("literal: %s: keyed elements are not supported", fset.Position(el.Pos()))
		}
	}
	return lit.Elts, nil
}

func uint64Lit(fset *token.FileSet, e ast.Expr) (uint64, error) {
	bl, ok := e.(*ast.BasicLit)
	if !ok || bl.Kind != token.INT {
		return 0, errors.Errorf("literal: %s: expected integer literal", fset.Position(e.Pos()))
	}
	v, err := strconv.ParseUint(bl.Value, 0, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "literal: %s", fset.Position(bl.Pos()))
	}
	return v, nil
}
