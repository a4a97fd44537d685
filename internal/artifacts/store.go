// Package artifacts persists each stage's validated output under fixed,
// stage-indexed names, so a re-run overwrites the previous run in place and
// a failed run leaves every earlier artifact on disk for inspection.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteError marks a failed artifact write.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write artifact %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// Store writes artifacts under one output directory.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifacts: create output dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// Path is the stable location of a named artifact, identical across runs.
func (s *Store) Path(name string) string { return filepath.Join(s.dir, name) }

// WriteJSON persists v as indented JSON under name.
func (s *Store) WriteJSON(name string, v any) (string, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", &WriteError{Path: s.Path(name), Err: err}
	}
	return s.write(name, append(raw, '\n'))
}

// WriteDoc persists rendered markup verbatim.
func (s *Store) WriteDoc(name string, doc []byte) (string, error) {
	return s.write(name, doc)
}

// write lands bytes atomically: tmp in the same dir, rename over the stable
// path.
func (s *Store) write(name string, data []byte) (string, error) {
	path := s.Path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", &WriteError{Path: path, Err: err}
	}
	return path, nil
}
