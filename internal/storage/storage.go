// Package storage saves user-uploaded images on local disk.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	ErrContentMismatch     = errors.New("file content does not match its extension")
	ErrFileTooLarge        = errors.New("file too large")
	ErrEmptyFile           = errors.New("file is empty")
)

// allowedExtensions maps each accepted extension to the MIME type its content must sniff as.
var allowedExtensions = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
}

const sniffLen = 3072

type LocalStorage struct {
	dir      string
	maxBytes int64
}

func NewLocalStorage(dir string, maxBytes int64) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &LocalStorage{dir: dir, maxBytes: maxBytes}, nil
}

// Dir is the directory files are written to; it is served under /uploads.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// AllowedExtension reports whether filename carries an accepted image extension.
func AllowedExtension(filename string) bool {
	_, ok := allowedExtensions[extension(filename)]
	return ok
}

// Save stores the content of r under a fresh name that keeps the original extension
// and returns that name. The client-supplied name never reaches the filesystem.
func (s *LocalStorage) Save(filename string, r io.Reader) (string, error) {
	ext := extension(filename)
	wantMIME, ok := allowedExtensions[ext]
	if !ok {
		return "", ErrExtensionNotAllowed
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if n == 0 {
		return "", ErrEmptyFile
	}
	head = head[:n]
	if !mimetype.Detect(head).Is(wantMIME) {
		return "", ErrContentMismatch
	}

	name := uuid.NewString() + "." + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}

	body := io.MultiReader(bytes.NewReader(head), r)
	written, err := io.Copy(dst, io.LimitReader(body, s.maxBytes+1))
	closeErr := dst.Close()

	switch {
	case err != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	case written > s.maxBytes:
		_ = os.Remove(path)
		return "", ErrFileTooLarge
	case closeErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("close upload: %w", closeErr)
	}

	return name, nil
}

func extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}
