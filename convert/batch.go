package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssdecl/archive"
	"cssdecl/config"
	"cssdecl/state"
)

// batch carries state of a single format invocation which may touch many
// files when source is a directory or an archive.
type batch struct {
	env  *state.LocalEnv
	kind config.InputKind
	log  *zap.Logger

	// problems accumulates invalid CSS reports from all processed files.
	problems error
	// written prevents two inputs from being formatted into the same output.
	written map[string]bool
}

// format reformats whole input according to its kind.
func (b *batch) format(ctx context.Context, r io.Reader, src string, kind config.InputKind) ([]byte, error) {
	f := &formatter{p: b.env.Parser(), minify: b.env.Cfg.Output.Minify, rpt: b.env.Rpt, log: b.log}

	var out bytes.Buffer
	switch kind {
	case config.InputKindHtml:
		if err := f.htmlDocument(ctx, r, &out, b.env.CodePage); err != nil {
			return nil, err
		}
	case config.InputKindXhtml:
		if err := f.xhtmlDocument(ctx, r, &out, b.env.CodePage); err != nil {
			return nil, err
		}
	default:
		text, err := readText(r, b.env.CodePage)
		if err != nil {
			return nil, fmt.Errorf("unable to read input: %w", err)
		}
		if kind == config.InputKindInline {
			out.WriteString(f.inline(string(text)))
		} else {
			out.WriteString(f.stylesheet(text, src))
		}
		out.WriteByte('\n')
	}

	b.problems = multierr.Append(b.problems, reportProblems(b.env.Diag, b.log))
	return out.Bytes(), nil
}

// write puts formatted data into output file or standard output when
// outputName is empty.
func (b *batch) write(outputName, reportName string, data []byte) error {
	b.env.Rpt.StoreData("output/"+filepath.ToSlash(reportName), data)

	if len(outputName) == 0 {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("unable to write output: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(outputName, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}

// file formats single file on disk.
func (b *batch) file(ctx context.Context, src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("unable to open input: %w", err)
	}
	defer f.Close()

	if err := b.env.Rpt.StoreCopy("input/"+filepath.Base(src), src); err != nil {
		b.log.Warn("Unable to store input in debug report", zap.Error(err))
	}
	return b.single(ctx, f, src, dst)
}

// single formats input to destination file, existing directory or
// standard output.
func (b *batch) single(ctx context.Context, r io.Reader, src, dst string) error {
	kind := b.kind.Resolve(src)
	data, err := b.format(ctx, r, src, kind)
	if err != nil {
		return err
	}

	outputName, err := buildOutputPath(src, dst, kind, b.env)
	if err != nil {
		return err
	}
	return b.write(outputName, buildFileName(src, kind, b.env), data)
}

// entry formats file found in directory or archive. rel is file path relative
// to the walked root, output mirrors it under dst. orig is the file on disk if
// any.
func (b *batch) entry(ctx context.Context, r io.Reader, rel, orig, dst string) error {
	kind := b.kind.Resolve(rel)
	data, err := b.format(ctx, r, rel, kind)
	if err != nil {
		return err
	}

	outputName := filepath.Join(dst, filepath.Dir(rel), buildFileName(rel, kind, b.env))
	if outputName == orig {
		return fmt.Errorf("output would overwrite input: %s", orig)
	}
	if b.written[outputName] {
		return fmt.Errorf("output file has been already produced by this run: %s", outputName)
	}
	if err := prepareOutput(outputName, b.env); err != nil {
		return err
	}
	b.written[outputName] = true

	reportName, err := filepath.Rel(dst, outputName)
	if err != nil {
		reportName = filepath.Base(outputName)
	}
	return b.write(outputName, reportName, data)
}

// source finds out what src is: a file, a directory or an archive, possibly
// followed by path inside it ("book.epub/OEBPS/Styles").
func (b *batch) source(ctx context.Context, src, dst string) error {
	for head := src; len(head) != 0; head, _ = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		tail := strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
		switch {
		case fi.IsDir():
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s): %w", head, tail, os.ErrNotExist)
			}
			return b.walkDir(ctx, head, dst)
		case !fi.Mode().IsRegular():
			return fmt.Errorf("unexpected path mode for %s", head)
		}

		arc, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		switch {
		case arc:
			return b.walkArchive(ctx, head, filepath.ToSlash(tail), dst)
		case len(tail) != 0:
			return fmt.Errorf("input source was not found (%s) => (%s): %w", head, tail, os.ErrNotExist)
		}
		return b.file(ctx, head, dst)
	}
	return fmt.Errorf("input source was not found (%s): %w", src, os.ErrNotExist)
}

// walkDir walks directory tree finding stylesheets and markup and processes them.
func (b *batch) walkDir(ctx context.Context, dir, dst string) (err error) {
	if len(dst) == 0 || dst == stdio {
		return errors.New("destination directory is required when source is a directory")
	}

	count := 0
	defer func() {
		if err == nil && count == 0 {
			b.log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			b.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if info.IsDir() && path == dst {
			// do not pick up our own output
			return filepath.SkipDir
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if !isStyleSource(path) {
			b.log.Debug("Skipping file, not recognized as stylesheet or markup", zap.String("file", path))
			return nil
		}

		count++

		file, err := os.Open(path)
		if err != nil {
			b.log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			return nil
		}
		defer file.Close()

		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := b.entry(ctx, file, rel, path, dst); err != nil {
			b.log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
	return err
}

// walkArchive walks files inside zip archive under pathIn (everything when
// empty) and processes stylesheets and markup found there. Output goes to
// directory named after archive.
func (b *batch) walkArchive(ctx context.Context, path, pathIn, dst string) (err error) {
	if len(dst) == 0 || dst == stdio {
		return errors.New("destination directory is required when source is an archive")
	}
	if err := b.env.Rpt.StoreCopy("input/"+filepath.Base(path), path); err != nil {
		b.log.Warn("Unable to store input in debug report", zap.Error(err))
	}

	count := 0
	defer func(start time.Time) {
		if err == nil && count == 0 {
			b.log.Debug("Nothing to process", zap.String("archive", path), zap.String("path", pathIn))
		}
		b.log.Debug("Archive processed", zap.String("archive", path), zap.Int("files", count), zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	match := archive.Extensions(styleExtensions...)
	if len(pathIn) != 0 {
		pathIn = strings.TrimSuffix(pathIn, "/")
		inside, styles := archive.Prefix(pathIn+"/"), match
		match = func(name string) bool {
			return (name == pathIn || inside(name)) && styles(name)
		}
	}

	outDir := filepath.Join(dst, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	err = archive.Walk(path, match, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		count++

		r, err := f.Open()
		if err != nil {
			b.log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		if err := b.entry(ctx, r, filepath.FromSlash(f.FileHeader.Name), "", outDir); err != nil {
			b.log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("unable to process archive: %w", err)
	}
	return nil
}
