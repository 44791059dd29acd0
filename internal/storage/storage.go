// Package storage owns the upload and output directories: it validates
// upload types, generates collision-free filenames and resolves client
// supplied output names back to files without allowing path escapes.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnsupportedType reports an upload with an extension outside the
// accepted set.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrNotFound reports an output filename that does not resolve to a stored
// file.
var ErrNotFound = errors.New("file not found")

var allowedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".gif":  true,
}

// Store manages the two working directories of the service.
type Store struct {
	UploadDir string
	OutputDir string
}

// New creates both directories if needed.
func New(uploadDir, outputDir string) (*Store, error) {
	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return &Store{UploadDir: uploadDir, OutputDir: outputDir}, nil
}

// Allowed reports whether the filename's extension is accepted for upload.
func Allowed(name string) bool {
	return allowedExt[strings.ToLower(filepath.Ext(name))]
}

// SaveUpload writes the uploaded stream into the upload directory under a
// sanitized, timestamped name and returns the stored path.
func (s *Store) SaveUpload(r io.Reader, originalName string) (string, error) {
	if !Allowed(originalName) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filepath.Ext(originalName))
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	base := sanitizeFilename(strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName)))
	if base == "" {
		base = "upload"
	}
	name := fmt.Sprintf("%s_%s_%s%s", base, time.Now().Format("20060102_150405"), uuid.New().String()[:8], ext)

	path := filepath.Join(s.UploadDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("save upload: %w", err)
	}
	return path, nil
}

// OutputPath returns a fresh output path for the given prefix, always PNG so
// results survive lossless.
func (s *Store) OutputPath(prefix string) string {
	name := fmt.Sprintf("%s_%s_%s.png", prefix, time.Now().Format("20060102_150405"), uuid.New().String()[:8])
	return filepath.Join(s.OutputDir, name)
}

// ResolveOutput maps a client-supplied filename to a path inside the output
// directory. Only the base name is honored, so traversal components are
// dropped rather than rejected.
func (s *Store) ResolveOutput(name string) (string, error) {
	base := filepath.Base(filepath.Clean(name))
	if base == "." || base == ".." || base == "/" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	path := filepath.Join(s.OutputDir, base)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %q", ErrNotFound, base)
	}
	return path, nil
}

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	s := replacer.Replace(name)
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
