// Package assignments stores the template documents referenced by
// assignment checkpoints (ContentItem.AssignmentRef).
package assignments

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// TemplateStore holds assignment template blobs keyed by their ref.
type TemplateStore interface {
	Put(ref string, r io.Reader) (string, error) // returns canonical ref
	Get(ref string) (io.ReadCloser, error)
}

type FSStore struct{ base string }

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data/assignments"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base}, nil
}

func (s *FSStore) Put(ref string, r io.Reader) (string, error) {
	if ref == "" {
		return "", errors.New("empty ref")
	}
	dst := filepath.Join(s.base, filepath.Clean(ref))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *FSStore) Get(ref string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.base, filepath.Clean(ref)))
}
