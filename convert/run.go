package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"cssdecl/config"
	"cssdecl/css/diag"
	"cssdecl/state"
)

// stdio names standard input or output on command line.
const stdio = "-"

// Run reformats CSS found in SOURCE: a stylesheet, a declaration list or an
// HTML document with <style> elements and style attributes.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("format")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src != stdio {
		if src, err = filepath.Abs(src); err != nil {
			return err
		}
	}
	dst := cmd.Args().Get(1)
	if len(dst) > 0 && dst != stdio {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	// command line overwrites configuration
	if cmd.IsSet("minify") {
		env.Cfg.Output.Minify = cmd.Bool("minify")
	}
	if cmd.IsSet("lenient") {
		env.Cfg.Parser.Lenient = cmd.Bool("lenient")
	}
	kind := env.Cfg.Parser.Input
	if cmd.IsSet("input") {
		if kind, err = config.ParseInputKind(cmd.String("input")); err != nil {
			log.Warn("Unknown input kind requested, detecting by file name", zap.Error(err))
			kind = config.InputKindAuto
		}
	}
	env.Overwrite = cmd.Bool("overwrite")

	cp := env.Cfg.Parser.Charset
	if cmd.IsSet("charset") {
		cp = cmd.String("charset")
	}
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcing input character set", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("input", kind))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, kind, cmd.Bool("fail-on-error"), log)
}

// process handles the core formatting logic independently of CLI framework. It
// determines the input type (standard input, directory, archive, path inside
// archive or single file) and processes accordingly.
func process(ctx context.Context, src, dst string, kind config.InputKind, failOnError bool, log *zap.Logger) error {
	b := &batch{
		env:     state.EnvFromContext(ctx),
		kind:    kind,
		log:     log,
		written: make(map[string]bool),
	}

	if src == stdio {
		if err := b.single(ctx, os.Stdin, src, dst); err != nil {
			return err
		}
	} else if err := b.source(ctx, src, dst); err != nil {
		return err
	}

	if failOnError && b.problems != nil {
		return fmt.Errorf("invalid CSS in input: %w", b.problems)
	}
	return nil
}

// reportProblems logs everything collected so far and returns combined errors.
func reportProblems(c *diag.Collector, log *zap.Logger) error {
	if c == nil {
		return nil
	}
	var errs, warns int
	for _, p := range c.Problems() {
		if p.Warning {
			warns++
			log.Debug("CSS warning", zap.String("scope", p.Scope), zap.String("problem", p.Message))
			continue
		}
		errs++
		log.Warn("Invalid CSS dropped", zap.String("scope", p.Scope), zap.String("problem", p.Message))
	}
	if errs+warns > 0 {
		log.Info("Problems found in input", zap.Int("errors", errs), zap.Int("warnings", warns))
	}
	err := c.Err()
	c.Reset()
	return err
}
