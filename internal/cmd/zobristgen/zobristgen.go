// Package zobristgen implements the zobristgen command: generate a Zobrist
// key table and write it as a source-embeddable literal.
package zobristgen

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"

	"github.com/hailam/zobristgen/internal/literal"
	"github.com/hailam/zobristgen/internal/preview"
	"github.com/hailam/zobristgen/internal/storage"
	"github.com/hailam/zobristgen/internal/zobrist"
)

// Config holds zobristgen command configuration.
type Config struct {
	OutputPath  string
	Format      literal.Format
	Seed        uint64
	Package     string
	Var         string
	StoreDir    string
	Name        string
	Load        string
	List        bool
	PreviewPath string
	Verify      bool
}

type envConfig struct {
	OutputPath string `env:"ZOBRISTGEN_OUTPUT_PATH" envDefault:"table_values.rs"`
	Format     string `env:"ZOBRISTGEN_FORMAT" envDefault:"rust"`
	Seed       uint64 `env:"ZOBRISTGEN_SEED"`
	StoreDir   string `env:"ZOBRISTGEN_STORE_DIR"`
}

// ParseConfig reads the environment, then lets flags in args override it.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := env.Parse(&envCfg); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}

	cfg := Config{
		OutputPath: envCfg.OutputPath,
		Seed:       envCfg.Seed,
		StoreDir:   envCfg.StoreDir,
	}
	format := envCfg.Format

	fs.StringVar(&cfg.OutputPath, "o", cfg.OutputPath, "output path for the generated table")
	fs.StringVar(&cfg.OutputPath, "output_path", cfg.OutputPath, "same as -o")
	fs.StringVar(&format, "format", format, "output format: rust, go or bin")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "seed for a reproducible table (0 = fresh random table)")
	fs.StringVar(&cfg.Package, "package", "zobrist", "package name for -format go")
	fs.StringVar(&cfg.Var, "var", "Keys", "variable name for -format go")
	fs.StringVar(&cfg.StoreDir, "store", cfg.StoreDir, "table registry directory (default: platform data dir)")
	fs.StringVar(&cfg.Name, "name", "", "save the table in the registry under this name")
	fs.StringVar(&cfg.Load, "load", "", "emit a table from the registry instead of generating one")
	fs.BoolVar(&cfg.List, "list", false, "list tables in the registry")
	fs.StringVar(&cfg.PreviewPath, "preview", "", "write a PNG diagnostic of the table to this path")
	fs.BoolVar(&cfg.Verify, "verify", false, "re-read the output and check it matches")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, errors.Errorf("unexpected arguments: %v", fs.Args())
	}

	f, err := literal.ParseFormat(format)
	if err != nil {
		return Config{}, err
	}
	cfg.Format = f
	if cfg.OutputPath == "" {
		cfg.OutputPath = literal.DefaultPath
	}
	if cfg.Load != "" && cfg.Name != "" {
		return Config{}, errors.New("-load and -name cannot be combined")
	}
	return cfg, nil
}

func (cfg Config) needsStore() bool {
	return cfg.List || cfg.Name != "" || cfg.Load != ""
}

// Run executes the zobristgen command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	logger := log.New(errOut, "zobristgen: ", 0)

	var store *storage.Storage
	if cfg.needsStore() {
		var err error
		if cfg.StoreDir != "" {
			store, err = storage.Open(cfg.StoreDir)
		} else {
			store, err = storage.NewStorage()
		}
		if err != nil {
			return err
		}
		defer store.Close()
	}

	if cfg.List {
		return listTables(store, out)
	}

	table, rec, err := obtainTable(cfg, store, logger)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Register before writing: a table that reaches disk is always one the
	// registry can reproduce.
	if cfg.Name != "" {
		rec.Name = cfg.Name
		if err := store.Save(rec, table); err != nil {
			return err
		}
		logger.Printf("saved table as %q", cfg.Name)
	}

	opts := literal.GoOptions{Package: cfg.Package, Var: cfg.Var, Seed: rec.Seed, Seeded: rec.Seeded}
	if err := literal.WriteFile(cfg.OutputPath, cfg.Format, table, opts); err != nil {
		return err
	}
	logger.Printf("wrote %s (%s, fingerprint %016x)", cfg.OutputPath, cfg.Format, table.Fingerprint())

	if cfg.Verify {
		if err := verify(cfg, table, logger); err != nil {
			return err
		}
	}

	if cfg.PreviewPath != "" {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := preview.WritePNG(cfg.PreviewPath, table); err != nil {
			return err
		}
		logger.Printf("wrote preview %s", cfg.PreviewPath)
	}
	return nil
}

// obtainTable loads, seeds or freshly generates the table described by cfg.
func obtainTable(cfg Config, store *storage.Storage, logger *log.Logger) (*zobrist.Table, *storage.Record, error) {
	switch {
	case cfg.Load != "":
		rec, t, err := store.Load(cfg.Load)
		if err != nil {
			return nil, nil, err
		}
		logger.Printf("loaded table %q", cfg.Load)
		return t, rec, nil

	case cfg.Seed != 0:
		logger.Printf("generating table from seed %d", cfg.Seed)
		return zobrist.GenerateSeeded(cfg.Seed), &storage.Record{Seed: cfg.Seed, Seeded: true}, nil

	default:
		t, err := zobrist.GenerateRandom()
		if err != nil {
			return nil, nil, err
		}
		return t, &storage.Record{}, nil
	}
}

func verify(cfg Config, want *zobrist.Table, logger *log.Logger) error {
	got, err := literal.ReadFile(cfg.OutputPath, cfg.Format)
	if err != nil {
		return errors.Wrap(err, "verify")
	}
	if !got.Equal(want) {
		return errors.Errorf("verify: %s does not match the generated table", cfg.OutputPath)
	}

	rep := zobrist.Analyze(got)
	logger.Printf("verified %d keys: max bit bias %.4f, mean popcount %.3f, duplicates %d, zeros %d",
		rep.Keys, rep.MaxBitBias(), rep.MeanPopcount, rep.Duplicates, rep.Zeros)
	if rep.Duplicates > 0 || rep.Zeros > 0 {
		logger.Printf("warning: table has %d duplicate and %d zero keys", rep.Duplicates, rep.Zeros)
	}
	return nil
}

func listTables(store *storage.Storage, out io.Writer) error {
	records, err := store.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No stored tables.")
		return nil
	}
	for _, rec := range records {
		seed := "random"
		if rec.Seeded {
			seed = fmt.Sprintf("seed %d", rec.Seed)
		}
		fmt.Fprintf(out, "%-20s %016x  %-24s %s\n",
			rec.Name, rec.Fingerprint, seed, rec.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
