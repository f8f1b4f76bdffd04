package convert

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
)

// Input detection. Archives are sniffed by content since law bundles are
// distributed under arbitrary names; law documents are matched by the .xml
// extension, the actual encoding is resolved while parsing.

// isArchiveFile reports whether path is a zip archive.
func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, 262)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}

	kind, err := filetype.Match(header[:n])
	if err != nil {
		return false, err
	}
	return kind == matchers.TypeZip, nil
}

// isLawFile reports whether path looks like a law XML document.
func isLawFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xml")
}

// isLawInArchive reports whether an archive entry looks like a law XML
// document.
func isLawInArchive(f *zip.File) bool {
	return isLawFile(f.FileHeader.Name)
}
