package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"cssdecl/config"
	"cssdecl/state"
)

// buildOutputPath returns output file path based on source and destination.
// Empty result means standard output. When destination is an existing
// directory output file name is derived from source name, either by default
// naming scheme or by user-defined template.
func buildOutputPath(src, dst string, kind config.InputKind, env *state.LocalEnv) (string, error) {
	if len(dst) == 0 || dst == stdio {
		return "", nil
	}

	outputName := dst
	if fi, err := os.Stat(dst); err == nil && fi.IsDir() {
		outputName = filepath.Join(dst, buildFileName(src, kind, env))
	}

	if outputName == src {
		return "", fmt.Errorf("output would overwrite input: %s", src)
	}
	if err := prepareOutput(outputName, env); err != nil {
		return "", err
	}
	return outputName, nil
}

// prepareOutput checks if output file already exists and creates directories
// leading to it.
func prepareOutput(outputName string, env *state.LocalEnv) error {
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		env.Log.Warn("Overwriting existing file", zap.String("file", outputName))
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

// buildFileName returns relative output file name, which may include
// subdirectories when template produces them.
func buildFileName(src string, kind config.InputKind, env *state.LocalEnv) string {
	minify := env.Cfg.Output.Minify
	translit := env.Cfg.Output.Transliterate

	if env.Cfg.Output.NameTemplate == "" {
		return outputFileName(src, minify, translit)
	}

	values := buildValues(config.OutputNameTemplateFieldName, src, kind, minify)
	expandedName, err := expandTemplate(config.OutputNameTemplateFieldName, env.Cfg.Output.NameTemplate, values)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return outputFileName(src, minify, translit)
	}

	pathSegments := splitAndCleanPath(filepath.FromSlash(expandedName))
	if len(pathSegments) == 0 {
		// fallback to default name if template produced nothing
		return outputFileName(src, minify, translit)
	}
	for i := range pathSegments {
		pathSegments[i] = cleanPathSegment(pathSegments[i], translit)
	}
	pathSegments[len(pathSegments)-1] += values.Ext
	return filepath.Join(pathSegments...)
}

// outputFileName derives output name from source: "a.css" becomes "a.min.css"
// for minified output, standard input is named "stdin.css".
func outputFileName(src string, minify, translit bool) string {
	if src == stdio {
		src = "stdin.css"
	}
	ext := filepath.Ext(src)
	baseName := strings.TrimSuffix(filepath.Base(src), ext)
	if strings.HasSuffix(baseName, ".min") {
		minify = true
		baseName = strings.TrimSuffix(baseName, ".min")
	}
	baseName = cleanPathSegment(baseName, translit)
	if minify {
		baseName += ".min"
	}
	return baseName + ext
}

func splitAndCleanPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}
	return segments
}

func cleanPathSegment(segment string, translit bool) string {
	if translit {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
