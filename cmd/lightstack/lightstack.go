package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	"github.com/abworrall/lightstack/pkg/elog"
	"github.com/abworrall/lightstack/pkg/lstack"
)

// A usageError means the command line was wrong, rather than the run failing.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stderr)
	stop()

	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "lightstack: %v\n", err)
		if errors.As(err, &usageError{}) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("lightstack", flag.ContinueOnError)
	fs.SetOutput(stderr)

	verbosity := fs.IntP("verbosity", "v", 0, "how verbose to get")
	ext := fs.String("ext", "", "extension of the image files in each batch (default .png)")
	configFile := fs.String("config", lstack.DefaultConfigFilename, "yaml config file")
	parallelism := fs.IntP("jobs", "j", 1, "how many batches to composite at once")
	keepGoing := fs.Bool("keepgoing", false, "if a batch fails, carry on with the rest (the run still fails)")
	selectionMaps := fs.Bool("selectionmaps", false, "write an image per composite showing which photo each pixel came from")
	manifest := fs.Bool("manifest", true, "write "+lstack.ManifestFilename+" into the run folder")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: lightstack [flags]\n\n")
		fmt.Fprintf(stderr, "Composites each batch folder in source/ into results/run_<n>/{Lighten,Darken}.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 0 {
		fs.Usage()
		return usageError{fmt.Sprintf("takes no arguments, got %q", fs.Args())}
	}

	cfg, err := lstack.LoadConfig(*configFile, fs.Changed("config"))
	if err != nil {
		return err
	}

	// Override the config file with command line args, if set
	if fs.Changed("verbosity") {
		cfg.Verbosity = *verbosity
	}
	if *ext != "" {
		cfg.Ext = *ext
	}
	if fs.Changed("jobs") {
		cfg.Parallelism = *parallelism
	}
	if fs.Changed("keepgoing") {
		cfg.ContinueOnError = *keepGoing
	}
	if fs.Changed("selectionmaps") {
		cfg.DumpSelectionMaps = *selectionMaps
	}
	if fs.Changed("manifest") {
		cfg.WriteManifest = *manifest
	}
	if err := cfg.Finalize(); err != nil {
		return err
	}

	log := elog.NewTo(stderr, cfg.Verbosity)
	defer log.Sync()
	log.Debugf("Final configuration:-\n\n%s", cfg.AsYaml())

	base, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "getwd")
	}

	// The run number is picked once, before any batch is looked at.
	r, err := lstack.AllocateRun(filepath.Join(base, cfg.ResultsDir))
	if err != nil {
		return err
	}
	log.Infof("Starting %s", r)

	return lstack.NewCompositor(cfg, r, log).RunAll(ctx, filepath.Join(base, cfg.SourceDir))
}
