// zobristgen writes an [8][8][256] table of random 64-bit Zobrist keys as a
// source literal. With no flags it writes a fresh, non-reproducible table to
// table_values.rs in the working directory; pass -seed for a reproducible one.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hailam/zobristgen/internal/cmd/zobristgen"
)

func main() {
	fs := flag.NewFlagSet("zobristgen", flag.ExitOnError)
	cfg, err := zobristgen.ParseConfig(fs, os.Args[1:])
	if err != nil {
		log.Printf("zobristgen: %v", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := zobristgen.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		stop()
		log.Fatalf("zobristgen: %v", err)
	}
}
