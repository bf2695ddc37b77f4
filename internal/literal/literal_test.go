package literal

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/hailam/zobristgen/internal/zobrist"
)

var keyLine = regexp.MustCompile(`^        0x[0-9A-F]{16}u64,$`)

func TestWriteRustFormat(t *testing.T) {
	tbl := zobrist.GenerateSeeded(1)
	tbl[0][0][0] = 0x00000000000000AB

	var buf bytes.Buffer
	if err := WriteRust(&buf, tbl); err != nil {
		t.Fatalf("WriteRust failed: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	wantLines := 1 + 8*(1+8*(1+256+1)+1) + 1
	if len(lines) != wantLines {
		t.Fatalf("Expected %d lines, got %d", wantLines, len(lines))
	}

	head := []string{"[", "    [", "    [", "        0x00000000000000ABu64,"}
	for i, want := range head {
		if lines[i] != want {
			t.Errorf("Line %d = %q, want %q", i+1, lines[i], want)
		}
	}
	if lines[len(lines)-1] != "]" {
		t.Errorf("Last line = %q, want \"]\"", lines[len(lines)-1])
	}
	if lines[len(lines)-2] != "    ]," {
		t.Errorf("Second to last line = %q", lines[len(lines)-2])
	}

	keys := 0
	for _, line := range lines {
		if keyLine.MatchString(line) {
			keys++
			continue
		}
		switch line {
		case "[", "]", "    [", "    ],":
		default:
			t.Fatalf("Unexpected line %q", line)
		}
	}
	if keys != zobrist.Size {
		t.Errorf("Expected %d key lines, got %d", zobrist.Size, keys)
	}
}

func TestRustRoundTrip(t *testing.T) {
	tbl, err := zobrist.GenerateRandom()
	if err != nil {
		t.Fatal(err)
	}
	tbl[7][7][255] = ^uint64(0)
	tbl[3][2][1] = 0

	var buf bytes.Buffer
	if err := WriteRust(&buf, tbl); err != nil {
		t.Fatal(err)
	}
	back, err := ParseRust(&buf)
	if err != nil {
		t.Fatalf("ParseRust failed: %v", err)
	}
	if !back.Equal(tbl) {
		t.Fatal("Round trip changed the table")
	}

	// Both corners come back at their own index.
	if back.At(0, 0, 0) != tbl.At(0, 0, 0) {
		t.Errorf("Corner [0][0][0] = %016X, want %016X", back.At(0, 0, 0), tbl.At(0, 0, 0))
	}
	if back.At(7, 7, 255) != ^uint64(0) {
		t.Errorf("Corner [7][7][255] = %016X, want max uint64", back.At(7, 7, 255))
	}
}

func TestParseRustErrors(t *testing.T) {
	var good bytes.Buffer
	if err := WriteRust(&good, zobrist.GenerateSeeded(3)); err != nil {
		t.Fatal(err)
	}
	src := good.String()

	firstKey := strings.Index(src, "0x")

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not an array", "42"},
		{"missing value", strings.Replace(src, "        0x", "        ", 1)},
		{"bad digits", src[:firstKey] + "0xZZ" + src[firstKey+4:]},
		{"too many values", strings.Replace(src, "    ],\n", "        0x1u64,\n    ],\n", 1)},
		{"truncated", src[:len(src)/2]},
		{"trailing garbage", src + "extra"},
		{"overflow", src[:firstKey] + "0x1FFFFFFFFFFFFFFFFu64" + src[firstKey+21:]},
		{"missing comma between values", strings.Replace(src, "u64,\n", "u64\n", 1)},
		{"missing comma between arrays", strings.Replace(src, "    ],\n    [", "    ]\n    [", 1)},
		{"comma after outer array", strings.TrimSuffix(src, "\n") + ","},
		{"separators only", src[:firstKey] + "0x______________u64" + src[firstKey+21:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRust(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected parse error")
			}
		})
	}
}

func TestParseRustLenient(t *testing.T) {
	// Lower-case hex, no suffix, compact layout and a trailing semicolon.
	var sb strings.Builder
	sb.WriteString("[")
	for r := 0; r < zobrist.Ranks; r++ {
		sb.WriteString("[")
		for f := 0; f < zobrist.Files; f++ {
			sb.WriteString("[")
			for s := 0; s < zobrist.States; s++ {
				if s > 0 {
					sb.WriteString(",")
				}
				sb.WriteString("0xabc")
			}
			sb.WriteString("]")
			if f < zobrist.Files-1 {
				sb.WriteString(",")
			}
		}
		sb.WriteString("],")
	}
	sb.WriteString("];\n")

	tbl, err := ParseRust(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("ParseRust failed: %v", err)
	}
	if tbl.At(4, 4, 128) != 0xABC {
		t.Errorf("Expected 0xABC, got %X", tbl.At(4, 4, 128))
	}
}

func TestParseRustDigitSeparators(t *testing.T) {
	tbl := zobrist.GenerateSeeded(8)
	var buf bytes.Buffer
	if err := WriteRust(&buf, tbl); err != nil {
		t.Fatal(err)
	}

	// 0x4B46A55DF3611B9Bu64 -> 0x4B46A55D_F3611B9B_u64
	split := regexp.MustCompile(`0x([0-9A-F]{8})([0-9A-F]{8})u64`)
	src := split.ReplaceAllString(buf.String(), "0x${1}_${2}_u64")
	if !strings.Contains(src, "_u64,") {
		t.Fatal("Separators were not inserted")
	}

	back, err := ParseRust(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseRust failed: %v", err)
	}
	if !back.Equal(tbl) {
		t.Fatal("Separated digits parsed to a different table")
	}
}

func TestGoRoundTrip(t *testing.T) {
	tbl := zobrist.GenerateSeeded(99)

	var buf bytes.Buffer
	opts := GoOptions{Package: "keys", Var: "Table", Seed: 99, Seeded: true}
	if err := WriteGo(&buf, tbl, opts); err != nil {
		t.Fatalf("WriteGo failed: %v", err)
	}

	src := buf.String()
	if !strings.HasPrefix(src, "// Code generated by zobristgen; DO NOT EDIT.") {
		t.Error("Missing generated-code header")
	}
	if !strings.Contains(src, "package keys") {
		t.Error("Missing package clause")
	}
	if !strings.Contains(src, "var Table = [8][8][256]uint64{") {
		t.Error("Missing variable declaration")
	}
	if !strings.Contains(src, "// Seed: 99.") {
		t.Error("Missing seed comment")
	}

	back, err := ParseGo(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseGo failed: %v", err)
	}
	if !back.Equal(tbl) {
		t.Error("Go round trip changed the table")
	}
}

func TestWriteGoRejectsBadNames(t *testing.T) {
	tbl := zobrist.GenerateSeeded(1)
	if err := WriteGo(&bytes.Buffer{}, tbl, GoOptions{Package: "not-valid"}); err == nil {
		t.Error("Expected error for invalid package name")
	}
	if err := WriteGo(&bytes.Buffer{}, tbl, GoOptions{Var: "1keys"}); err == nil {
		t.Error("Expected error for invalid variable name")
	}
}

func TestParseGoErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "package x\nvar = {"},
		{"no table", "package x\nvar A = 1"},
		{"wrong shape", "package x\nvar A = [1][1][1]uint64{{{1}}}"},
		{"not integer", "package x\nvar A = [8]string{\"a\"}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseGo([]byte(tt.src)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"rust", "go", "bin"} {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", name, err)
		}
	}
	if _, err := ParseFormat("json"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestWriteFileFormats(t *testing.T) {
	tbl := zobrist.GenerateSeeded(5)
	dir := t.TempDir()

	for _, format := range []Format{FormatRust, FormatGo, FormatBinary} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(dir, "keys."+string(format))
			if err := WriteFile(path, format, tbl, GoOptions{}); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			back, err := ReadFile(path, format)
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if !back.Equal(tbl) {
				t.Error("File round trip changed the table")
			}
		})
	}
}

func TestWriteFileOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultPath)

	if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	first := zobrist.GenerateSeeded(1)
	second := zobrist.GenerateSeeded(2)
	if err := WriteFile(path, FormatRust, first, GoOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(path, FormatRust, second, GoOptions{}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != DefaultPath {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("Expected only %s, found %v", DefaultPath, names)
	}

	back, err := ReadFile(path, FormatRust)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !back.Equal(second) {
		t.Error("File should hold the most recent table")
	}
}

func TestWriteFileUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "table_values.rs")
	err := WriteFile(path, FormatRust, zobrist.GenerateSeeded(1), GoOptions{})
	if err == nil {
		t.Fatal("Expected error writing into a missing directory")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestWriteFileKeepsOldOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keys.go")
	tbl := zobrist.GenerateSeeded(8)
	if err := WriteFile(path, FormatGo, tbl, GoOptions{}); err != nil {
		t.Fatal(err)
	}

	// An invalid package name fails before anything is renamed.
	if err := WriteFile(path, FormatGo, zobrist.GenerateSeeded(9), GoOptions{Package: "bad name"}); err == nil {
		t.Fatal("Expected error")
	}

	back, err := ReadFile(path, FormatGo)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !back.Equal(tbl) {
		t.Error("Failed write replaced the existing file")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected temp file cleanup, found %d entries", len(entries))
	}
}
