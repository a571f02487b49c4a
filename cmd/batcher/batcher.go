package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	"github.com/abworrall/lightstack/pkg/batch"
	"github.com/abworrall/lightstack/pkg/elog"
	"github.com/abworrall/lightstack/pkg/lstack"
)

// A usageError means the command line was wrong, rather than the run failing.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func main() {
	err := run(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "batcher: %v\n", err)
		if errors.As(err, &usageError{}) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("batcher", flag.ContinueOnError)
	fs.SetOutput(stderr)

	verbosity := fs.IntP("verbosity", "v", 0, "how verbose to get")
	ext := fs.String("ext", "", "extension of the image files to batch up (default .png)")
	configFile := fs.String("config", lstack.DefaultConfigFilename, "yaml config file")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: batcher [flags] <batchsize>\n\n")
		fmt.Fprintf(stderr, "Copies raw/<n>.png into source/0, source/1, ... in runs of <batchsize>.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return usageError{fmt.Sprintf("wanted one argument, the batch size; got %d", fs.NArg())}
	}
	perBatch, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return usageError{fmt.Sprintf("batch size '%s' is not an integer", fs.Arg(0))}
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
		if err := cfg.Finalize(); err != nil {
			return err
		}
	}

	log := elog.NewTo(stderr, cfg.Verbosity)
	defer log.Sync()

	base, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "getwd")
	}

	batches, err := batch.Partition(batch.Config{
		SourceDir: filepath.Join(base, cfg.RawDir),
		DestDir:   filepath.Join(base, cfg.SourceDir),
		BatchSize: perBatch,
		Ext:       cfg.Ext,
		Log:       log,
	})
	if err != nil {
		return err
	}

	log.Infof("%d batch folders written to %s", len(batches), filepath.Join(base, cfg.SourceDir))
	return nil
}
