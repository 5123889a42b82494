// Package ingest hashes source documents and extracts raw text lines from them.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileType selects an extractor.
type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeImage FileType = "image"
)

var ErrUnsupportedFileType = errors.New("ingest: unsupported file type (allowed: PDF, PNG, JPG/JPEG)")

// DetectFileType maps a file extension to its extractor, case-insensitively.
func DetectFileType(name string) (FileType, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".pdf":
		return FileTypePDF, nil
	case ".png", ".jpg", ".jpeg":
		return FileTypeImage, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
}

// FileSHA256 streams the file at path and returns its lower-case hex digest.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("ingest: hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
