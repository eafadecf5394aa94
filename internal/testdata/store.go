// Package testdata stages problem test files into a scratch directory
// before any execution: inputs are CRLF-normalized (a stray \r\n breaks
// most validators), zstd-compressed files are decompressed, and an optional
// remote test archive is downloaded first.
package testdata

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/ngthanhtrung23/VO-problemtools/internal/problem"
)

type Store struct {
	dir string

	// downloadFunc fetches url into path; nil disables remote fetches.
	downloadFunc func(url string, path string) error
}

func NewStore(dir string, downloadFunc func(url string, path string) error) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create testdata dir: %w", err)
	}
	return &Store{dir: dir, downloadFunc: downloadFunc}, nil
}

// Stage materializes one test's input and expected output in the scratch
// dir and returns the test with paths rewritten to the staged copies.
func (s *Store) Stage(t problem.Test) (problem.Test, error) {
	staged := t

	in, err := s.stageFile(t.InputPath, true)
	if err != nil {
		return staged, fmt.Errorf("failed to stage input for test %s: %w", t.Name, err)
	}
	staged.InputPath = in

	out, err := s.stageFile(t.OutputPath, false)
	if err != nil {
		return staged, fmt.Errorf("failed to stage output for test %s: %w", t.Name, err)
	}
	staged.OutputPath = out

	return staged, nil
}

func (s *Store) stageFile(path string, normalize bool) (string, error) {
	content, err := readMaybeCompressed(path)
	if err != nil {
		return "", err
	}
	if normalize {
		content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	}

	dst := filepath.Join(s.dir, filepath.Base(path))
	// Write to a temp name and rename into place so a crashed run never
	// leaves a half-staged file behind.
	tmp, err := os.CreateTemp(s.dir, ".staging.*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	return dst, nil
}

func readMaybeCompressed(path string) ([]byte, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		path = path + ".zst"
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if filepath.Ext(path) != ".zst" {
		return io.ReadAll(f)
	}

	d, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer d.Close()
	return io.ReadAll(d)
}

// FetchArchive downloads a zstd-compressed tar of the tests directory and
// extracts it into destDir. Used when the package declares tests_url and
// the tests are not committed next to the config.
func (s *Store) FetchArchive(url string, destDir string) error {
	if s.downloadFunc == nil {
		return fmt.Errorf("no download function configured for %s", url)
	}

	tmp := filepath.Join(s.dir, "tests.tar.zst")
	if err := s.downloadFunc(url, tmp); err != nil {
		return fmt.Errorf("failed to download test archive: %w", err)
	}
	defer os.Remove(tmp)

	f, err := os.Open(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	d, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer d.Close()

	tr := tar.NewReader(d)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read test archive: %w", err)
		}

		// Reject entries that would escape destDir.
		target := filepath.Join(destDir, filepath.Clean("/"+hdr.Name))
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			out, err := os.Create(target)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}
