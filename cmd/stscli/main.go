// Command stscli is a thin driver that reads a bit sequence from a file
// or stdin, runs the statistical test suite against it through the
// TestRunner, and prints one line per result.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	iofs "io/fs"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/config"
	"github.com/riesinger-e/nist-sts/internal/runner"
	"github.com/riesinger-e/nist-sts/internal/ststest"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "stscli:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if err := godotenv.Overload(".env"); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		log.Printf("dotenv: %v", err)
	}

	fs := flag.NewFlagSet("stscli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("file", "", "path to a file of ASCII '0'/'1' bits (default: read from stdin)")
	threads := fs.Int("threads", 0, "worker pool size (0 lets the runner pick a default)")
	lossy := fs.Bool("lossy", false, "skip non '0'/'1' characters instead of rejecting the input")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *threads > 0 {
		cfg.MaxThreads = *threads
	}

	var reader io.Reader = stdin
	if *path != "" {
		f, err := os.Open(*path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", *path, err)
		}
		defer f.Close()
		reader = f
	}

	raw, err := io.ReadAll(bufio.NewReader(reader))
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	text := strings.TrimSpace(string(raw))

	var data *bitseq.BitSequence
	if *lossy {
		data = bitseq.FromASCIILossy(text)
	} else {
		data, err = bitseq.FromASCIIStrict(text)
		if err != nil {
			return fmt.Errorf("parsing input: %s", err.Error())
		}
	}

	if cfg.MaxThreads > 0 {
		if err := runner.SetMaxThreads(cfg.MaxThreads); err != nil {
			return fmt.Errorf("setting worker pool size: %s", err.Error())
		}
	}

	log.Printf("stscli: running the full suite against %d bits", data.Len())
	r := runner.New()
	status := r.RunAll(data)
	log.Printf("stscli: run finished, status=%s", status)
	fmt.Fprintf(stdout, "status: %s\n", status)

	for _, id := range ststest.AllIdentities() {
		outcome, ok := r.GetResult(id)
		if !ok {
			continue
		}
		if outcome.Err != nil {
			fmt.Fprintf(stdout, "%-32s ERROR %s\n", id.String(), outcome.Err.Error())
			continue
		}
		for _, res := range outcome.Results {
			if res.Comment != "" {
				fmt.Fprintf(stdout, "%-32s p=%.6f  %s\n", id.String(), res.PValue, res.Comment)
			} else {
				fmt.Fprintf(stdout, "%-32s p=%.6f\n", id.String(), res.PValue)
			}
		}
	}

	return nil
}
