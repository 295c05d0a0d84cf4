// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/hydragen/internal/annotations"
	"github.com/retroenv/hydragen/internal/config"
	"github.com/retroenv/hydragen/internal/loader"
	"github.com/retroenv/hydragen/internal/options"
	"github.com/retroenv/hydragen/internal/verification"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// Processor runs the load, validate and generate workflow for one
// annotation file.
type Processor struct {
	logger *log.Logger
	loader *loader.Loader
	stdout io.Writer
	create func(name string) (io.WriteCloser, error)
}

// New returns a processor that writes console output to stdout.
func New(logger *log.Logger) *Processor {
	return &Processor{
		logger: logger,
		loader: loader.New(),
		stdout: os.Stdout,
		create: func(name string) (io.WriteCloser, error) {
			return os.Create(name)
		},
	}
}

// ProcessFile handles the complete file processing workflow. The output is
// only written once generation succeeded.
func (p *Processor) ProcessFile(ctx context.Context, opts options.Program) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := p.loader.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading annotations: %w", err)
	}

	m, err := annotations.New(p.logger, in)
	if err != nil {
		return fmt.Errorf("validating annotations: %w", err)
	}
	p.logger.Debug("Annotations validated",
		log.Int("functions", len(m.Functions)),
		log.Int("structs", len(m.Structs)),
		log.Int("globals", len(m.Globals)),
		log.Int("text_regions", len(m.TextRegions)))

	generate, err := config.CreateGenerator(opts.Mode)
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := generate(buf, m); err != nil {
		return fmt.Errorf("generating %s: %w", opts.Mode, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := p.writeOutput(opts, buf.Bytes()); err != nil {
		return err
	}

	if opts.Verify {
		if err := verification.VerifyOutput(p.logger, opts, m); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}

	return nil
}

func (p *Processor) writeOutput(opts options.Program, data []byte) (err error) {
	writer, err := p.createWriter(opts)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing output file: %w", closeErr)
		}
	}()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if !opts.WritesToStdout() {
		p.logger.Info("Output written", log.String("file", opts.Output), log.String("mode", opts.Mode))
	}
	return nil
}

func (p *Processor) createWriter(opts options.Program) (io.WriteCloser, error) {
	if opts.WritesToStdout() {
		return &nopCloser{p.stdout}, nil
	}

	file, err := p.create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("hydragen - hydra annotation compiler",
		log.String("version", buildinfo.Version(version, commit, date)))
}

// nopCloser wraps an io.Writer to add a no-op Close method
type nopCloser struct {
	io.Writer
}

func (nc *nopCloser) Close() error {
	return nil
}
