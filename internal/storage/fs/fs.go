// Package fs stores original images and their generated variants on the
// local file system under a single upload root, laid out by year/month.
package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Storage struct {
	rootPath string
}

func New(rootPath string) (*Storage, error) {
	// Clean to prevent path traversal issues like "media/../"
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload root %s: %w", p, err)
	}

	return &Storage{rootPath: p}, nil
}

func (s *Storage) Root() string {
	return s.rootPath
}

// Save writes an original into the upload root under a year/month
// subdirectory and returns its slash-separated relative path. When the
// name is taken the usual "-1", "-2" suffixes are tried; originals are
// never overwritten.
func (s *Storage) Save(fileData io.Reader, filename string, now time.Time) (string, error) {
	filename = sanitizeFilename(filename)
	if filename == "" {
		return "", fmt.Errorf("empty file name")
	}

	subdir := now.UTC().Format("2006/01")
	dir := filepath.Join(s.rootPath, filepath.FromSlash(subdir))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create subdirectories: %w", err)
	}

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	name := filename
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s-%d%s", base, i, ext)
	}

	fullPath := filepath.Join(dir, name)
	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, fileData); err != nil {
		os.Remove(fullPath) // best effort, the partial file is useless
		return "", fmt.Errorf("failed to copy file data: %w", err)
	}

	return subdir + "/" + name, nil
}

// Open opens a stored file for reading by its relative path.
func (s *Storage) Open(relPath string) (io.ReadCloser, error) {
	file, err := os.Open(s.absPath(relPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("media file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Exists reports whether a regular file is present at the relative path.
func (s *Storage) Exists(relPath string) bool {
	info, err := os.Stat(s.absPath(relPath))
	return err == nil && info.Mode().IsRegular()
}

// Delete removes a single file. A file that is already gone is not an error.
func (s *Storage) Delete(relPath string) error {
	err := os.Remove(s.absPath(relPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *Storage) absPath(relPath string) string {
	return filepath.Join(s.rootPath, filepath.FromSlash(relPath))
}

// sanitizeFilename strips directory components and characters that have no
// business in a stored file name.
func sanitizeFilename(name string) string {
	name = filepath.Base(filepath.Clean(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), ".")
}
