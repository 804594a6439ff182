// Package store persists registered face encodings and the class registry.
//
// Both stores are small gob files with a version header. Writes go through
// a temp-file-and-rename so a crash mid-write never leaves a half-written
// store behind, and a mutex enforces a single writer per process.
package store

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"sync"
)

var (
	// ErrCorruptStore means a persisted store file exists but cannot be
	// decoded. Store-dependent operations must halt rather than silently
	// start from an empty store.
	ErrCorruptStore = errors.New("store file is corrupt")
)

const faceFormatVersion = 1

// faceFile is the on-disk layout of the embedding store.
type faceFile struct {
	Version   int
	Encodings [][]float32
	Metadata  []Identity
}

// FaceStore holds face encodings and identity metadata in parallel
// sequences. Index i of one sequence always corresponds to index i of the
// other; Append updates both under one lock and one persisted write.
type FaceStore struct {
	mu        sync.RWMutex
	path      string
	dim       int
	encodings [][]float32
	metadata  []Identity
}

// NewFaceStore creates an empty store backed by the given file. dim is the
// required encoding length for appended vectors.
func NewFaceStore(path string, dim int) *FaceStore {
	return &FaceStore{path: path, dim: dim}
}

// Load reads the persisted store. A missing file is not an error and leaves
// the store empty; an unreadable or wrong-version file returns ErrCorruptStore.
func (s *FaceStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.encodings = nil
		s.metadata = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading face store %s: %w", s.path, err)
	}

	var file faceFile
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&file); err != nil {
		return fmt.Errorf("decoding face store %s: %w", s.path, ErrCorruptStore)
	}
	if file.Version != faceFormatVersion {
		return fmt.Errorf("face store %s has version %d: %w", s.path, file.Version, ErrCorruptStore)
	}
	if len(file.Encodings) != len(file.Metadata) {
		return fmt.Errorf("face store %s has %d encodings but %d metadata records: %w",
			s.path, len(file.Encodings), len(file.Metadata), ErrCorruptStore)
	}

	s.encodings = file.Encodings
	s.metadata = file.Metadata
	return nil
}

// Append validates the encoding and identity, appends both sequences, and
// persists the whole store. The two appends and the write happen under one
// lock so the parallel-sequence invariant holds at all times.
func (s *FaceStore) Append(encoding []float32, id Identity) error {
	if len(encoding) != s.dim {
		return &ValidationError{
			Field:  "encoding",
			Reason: fmt.Sprintf("expected %d dimensions, got %d", s.dim, len(encoding)),
		}
	}
	if err := ValidateIdentity(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.encodings = append(s.encodings, encoding)
	s.metadata = append(s.metadata, id)

	if err := s.persist(); err != nil {
		// Roll the in-memory append back so memory matches disk.
		s.encodings = s.encodings[:len(s.encodings)-1]
		s.metadata = s.metadata[:len(s.metadata)-1]
		return err
	}
	return nil
}

// persist writes the full store to disk via temp file and rename.
// Caller must hold the write lock.
func (s *FaceStore) persist() error {
	var buf bytes.Buffer
	file := faceFile{
		Version:   faceFormatVersion,
		Encodings: s.encodings,
		Metadata:  s.metadata,
	}
	if err := gob.NewEncoder(&buf).Encode(&file); err != nil {
		return fmt.Errorf("encoding face store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing face store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing face store: %w", err)
	}
	return nil
}

// Snapshot returns copies of both sequences for lock-free reading.
func (s *FaceStore) Snapshot() ([][]float32, []Identity) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	encodings := make([][]float32, len(s.encodings))
	copy(encodings, s.encodings)
	metadata := make([]Identity, len(s.metadata))
	copy(metadata, s.metadata)
	return encodings, metadata
}

// Count returns the number of registered identities.
func (s *FaceStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.metadata)
}

// Dim returns the required encoding length.
func (s *FaceStore) Dim() int {
	return s.dim
}
