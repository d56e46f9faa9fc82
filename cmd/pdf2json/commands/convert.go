package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Shimizu-Technology/pdf2json/internal/logging"
	"github.com/Shimizu-Technology/pdf2json/internal/services/converter"
	"github.com/Shimizu-Technology/pdf2json/internal/services/emitter"
	"github.com/Shimizu-Technology/pdf2json/internal/services/pdf"
	"github.com/Shimizu-Technology/pdf2json/internal/services/source"
)

type convertOptions struct {
	*rootOptions
	outDir  string
	stdout  bool
	timeout time.Duration
	maxSize int64
}

func newConvertCmd(root *rootOptions) *cobra.Command {
	opts := &convertOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "convert <source>",
		Short: "Convert a PDF to converted.json",
		Long: `Convert a PDF to converted.json. The source can be:

  path/to/file.pdf                a local file
  -                               PDF bytes on stdin
  https://example.com/doc.pdf     a URL, fetched once
  '{"url": "https://..."}'        an object carrying a URL`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "output", "o", ".", "directory to save converted.json in")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "write the JSON to stdout instead of a file")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "fetch timeout for URL sources (0 = none)")
	cmd.Flags().Int64Var(&opts.maxSize, "max-size", pdf.DefaultSettings.MaxPDFSize, "largest PDF to read, in bytes")

	return cmd
}

func runConvert(cmd *cobra.Command, opts *convertOptions, arg string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	log := logging.New(logging.Config{Level: level, Format: "console", Output: cmd.ErrOrStderr()})

	if err := pdf.Init(pdf.Settings{MaxPDFSize: opts.maxSize}); err != nil && !errors.Is(err, pdf.ErrAlreadyInitialized) {
		return err
	}

	src, closeSrc, err := parseSource(cmd.InOrStdin(), arg)
	if err != nil {
		return err
	}
	defer closeSrc()

	var d emitter.Deliverer = emitter.DirDeliverer{Dir: opts.outDir}
	if opts.stdout {
		d = emitter.WriterDeliverer{W: cmd.OutOrStdout()}
	}

	conv := converter.New(source.NewNormalizer(opts.timeout), pdf.NewExtractor(), log)

	// The spinner switches itself off when the terminal isn't interactive.
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " Converting " + src.Kind() + " source..."
	s.Start()
	artifact, err := conv.Convert(ctx, src)
	s.Stop()
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := d.Deliver(ctx, artifact); err != nil {
		return err
	}

	if !opts.stdout {
		color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "✓ Saved %s\n", filepath.Join(opts.outDir, artifact.Filename))
	}
	return nil
}

// parseSource decides which kind of Source arg names. The returned func
// closes anything parseSource opened.
func parseSource(stdin io.Reader, arg string) (source.Source, func(), error) {
	noop := func() {}
	trimmed := strings.TrimSpace(arg)

	switch {
	case arg == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, noop, fmt.Errorf("read stdin: %w", err)
		}
		return source.Bytes(data), noop, nil

	case strings.HasPrefix(trimmed, "{"):
		var ref source.URLRef
		if err := json.Unmarshal([]byte(trimmed), &ref); err != nil {
			return nil, noop, fmt.Errorf("parse URL object: %w", err)
		}
		return ref, noop, nil

	case strings.HasPrefix(trimmed, "http://"), strings.HasPrefix(trimmed, "https://"):
		return source.URL(trimmed), noop, nil
	}

	f, err := os.Open(arg)
	if err != nil {
		return nil, noop, err
	}
	return source.File{R: f, Name: filepath.Base(arg)}, func() { f.Close() }, nil
}
