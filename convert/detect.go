package convert

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/h2non/filetype"
)

// isArchiveFile checks if file is zip archive, EPUB books included. Both
// extension and content signature have to agree.
func isArchiveFile(path string) (bool, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".epub":
	default:
		return false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	// 262 bytes is enough for any signature filetype knows about
	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return filetype.Is(head[:n], "zip") || filetype.Is(head[:n], "epub"), nil
}

// styleExtensions select files worth looking at when walking directories and
// archives.
var styleExtensions = []string{".css", ".html", ".htm", ".xhtml", ".xht"}

func isStyleSource(name string) bool {
	return slices.Contains(styleExtensions, strings.ToLower(filepath.Ext(name)))
}
