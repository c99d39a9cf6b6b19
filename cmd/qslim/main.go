// qslim simplifies triangle meshes by iterated quadric-error pair
// contraction and expands them back by replaying recorded vertex splits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/qslim/internal/logger"
	"github.com/Faultbox/qslim/internal/qconfig"
	"github.com/Faultbox/qslim/pkg/expand"
	"github.com/Faultbox/qslim/pkg/objfile"
	"github.com/Faultbox/qslim/pkg/simplify"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr *os.File) int {
	cfg, err := qconfig.Load("")
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("qslim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(fs, stderr) }

	targetFaces := fs.Int("n", 0, "target face count (required, >= 1)")
	algorithm := fs.String("a", cfg.Algorithm, "simplification algorithm")
	distanceThreshold := fs.Float64("d", cfg.DistanceThreshold, "distance threshold for non-edge pairing")
	output := fs.String("o", "", "output path (default: input basename + _out + extension)")
	strict := fs.Bool("s", false, "fail on a degenerate input face instead of dropping it")
	emitSplits := fs.Bool("p", false, "record vertex splits for later expansion (input must carry none)")
	expandMode := fs.Bool("r", false, "expand instead of simplify, replaying the input's recorded splits")
	verbose := fs.Bool("v", false, "verbose logging")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if *showVersion {
		fmt.Fprintln(stderr, "qslim version "+version)
		return 0
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: expected exactly one input file")
		fs.Usage()
		return 1
	}
	input := fs.Arg(0)

	if *targetFaces < 1 {
		fmt.Fprintln(stderr, "Error: -n is required and must be >= 1")
		return 1
	}
	if !strings.EqualFold(*algorithm, "PairContract") {
		fmt.Fprintf(stderr, "Error: unknown algorithm %q (only PairContract is implemented)\n", *algorithm)
		return 1
	}
	if *emitSplits && *expandMode {
		fmt.Fprintln(stderr, "Error: -p and -r are mutually exclusive")
		return 1
	}

	level := cfg.Logging.Level
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	m, err := objfile.ParseFile(input)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if *emitSplits && len(m.Splits) != 0 {
		fmt.Fprintln(stderr, "Error: -p requires the input mesh to carry no splits")
		return 1
	}

	if *expandMode {
		logger.Info("expanding mesh", zap.String("input", input), zap.Int("target_faces", *targetFaces))
		if _, err := expand.Expand(m, *targetFaces); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		logger.Info("simplifying mesh", zap.String("input", input), zap.Int("target_faces", *targetFaces))
		opts := simplify.Options{
			TargetFaces:       *targetFaces,
			RecordSplits:      *emitSplits,
			Strict:            *strict,
			DistanceThreshold: *distanceThreshold,
			Logger:            logger.Log,
		}
		if _, err := simplify.Simplify(m, opts); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	outPath := *output
	if outPath == "" {
		outPath = defaultOutputPath(input)
	}
	if err := objfile.WriteFile(outPath, m); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger.Info("done", zap.String("output", outPath), zap.Int("faces", m.FaceCount()))
	return 0
}

func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	return base + "_out" + ext
}

func printUsage(fs *flag.FlagSet, stderr *os.File) {
	fmt.Fprintln(stderr, `qslim - quadric-error mesh simplifier and progressive-mesh expander

Usage:
  qslim [options] <input.obj>

Options:`)
	fs.PrintDefaults()
}
