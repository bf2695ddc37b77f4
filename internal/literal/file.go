package literal

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/hailam/zobristgen/internal/atomicfile"
	"github.com/hailam/zobristgen/internal/zobrist"
)

// DefaultPath is the output file name used when none is configured.
const DefaultPath = "table_values.rs"

// Format selects the serialization of a table.
type Format string

const (
	FormatRust   Format = "rust"
	FormatGo     Format = "go"
	FormatBinary Format = "bin"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatRust, FormatGo, FormatBinary:
		return f, nil
	}
	return "", errors.Errorf("literal: unknown format %q (want rust, go or bin)", s)
}

// Encode writes t to w in the given format. opts is only used by FormatGo.
func Encode(w io.Writer, format Format, t *zobrist.Table, opts GoOptions) error {
	switch format {
	case FormatRust:
		return WriteRust(w, t)
	case FormatGo:
		return WriteGo(w, t, opts)
	case FormatBinary:
		data, err := t.MarshalBinary()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return errors.Errorf("literal: unknown format %q", format)
}

// Decode reads a table in the given format.
func Decode(r io.Reader, format Format) (*zobrist.Table, error) {
	switch format {
	case FormatRust:
		return ParseRust(r)
	case FormatGo:
		src, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(err, "literal: read go table")
		}
		return ParseGo(src)
	case FormatBinary:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(err, "literal: read binary table")
		}
		t := new(zobrist.Table)
		if err := t.UnmarshalBinary(data); err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, errors.Errorf("literal: unknown format %q", format)
}

// WriteFile serializes t to path, replacing any existing file.
// The data goes to a temporary file in the same directory which is synced
// and renamed over path only once it is complete, so readers never see a
// partial table.
func WriteFile(path string, format Format, t *zobrist.Table, opts GoOptions) error {
	err := atomicfile.Write(path, func(w io.Writer) error {
		return Encode(w, format, t, opts)
	})
	return errors.Wrap(err, "literal")
}

// ReadFile parses a table previously written by WriteFile.
func ReadFile(path string, format Format) (*zobrist.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "literal: read %s", path)
	}
	t, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, errors.Wrapf(err, "literal: parse %s", path)
	}
	return t, nil
}
