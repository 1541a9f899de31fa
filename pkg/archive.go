package evb

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	gzip "github.com/klauspost/compress/gzip"
)

// UnpackRunArchive extracts the regular files of a run tarball (tar.gz) into
// dir. Entries are flattened to their base names; directory entries and
// anything carrying a path traversal are skipped.
func UnpackRunArchive(archivePath, dir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return &ErrArchive{Archive: archivePath, Err: err}
	}
	defer file.Close()

	decompressor, err := gzip.NewReader(file)
	if err != nil {
		return &ErrArchive{Archive: archivePath, Err: err}
	}
	defer decompressor.Close()

	reader := tar.NewReader(decompressor)
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return &ErrArchive{Archive: archivePath, Err: err}
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		name := filepath.Base(header.Name)
		if name == "." || name == ".." || strings.Contains(name, "..") {
			continue
		}

		out, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return &ErrArchive{Archive: archivePath, Err: err}
		}
		if _, err := io.Copy(out, reader); err != nil {
			out.Close()
			return &ErrArchive{Archive: archivePath, Err: err}
		}
		if err := out.Close(); err != nil {
			return &ErrArchive{Archive: archivePath, Err: err}
		}
	}
	return nil
}
