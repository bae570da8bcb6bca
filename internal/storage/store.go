package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Storer is the persistence contract for a single record type. Records are
// validated on load and writes are atomic, so a crash never leaves a
// half-written record behind.
type Storer[T ValidatingSpec] interface {
	Save(string, T) error
	Get(string) T
	GetAll() map[string]T
	Delete(string) error
}

// FileStore keeps one JSON file per record under a directory. The full record
// set is cached in memory; reads never touch the disk after load.
type FileStore[T ValidatingSpec] struct {
	path    string
	records map[string]T

	mu sync.RWMutex
}

func NewFileStore[T ValidatingSpec](path string) (*FileStore[T], error) {
	s := &FileStore[T]{
		path:    path,
		records: map[string]T{},
	}

	err := s.load()
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *FileStore[T]) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = map[string]T{}

	return filepath.Walk(s.path, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		record, err := s.loadRecord(path)
		if err != nil {
			return err
		}

		err = record.Validate()
		if err != nil {
			return fmt.Errorf("validating %s: %w", filepath.Base(path), err)
		}

		if _, ok := s.records[record.Identifier]; ok {
			return fmt.Errorf("duplicate key detected: %s", record.Identifier)
		}

		s.records[record.Identifier] = record.Spec
		return nil
	})
}

func (s *FileStore[T]) Save(id string, o T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[id] = o

	record := &Record[T]{
		Version:    1,
		Identifier: id,
		Spec:       o,
	}

	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	return atomicWrite(s.filePath(id), jsonData, 0644)
}

// Delete removes a record from the cache and from disk. Deleting a record
// that does not exist is a no-op.
func (s *FileStore[T]) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)

	err := os.Remove(s.filePath(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing record file: %w", err)
	}
	return nil
}

func (s *FileStore[T]) Get(id string) T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.records[id]
	if !ok {
		var nilVal T
		return nilVal
	}

	return val
}

func (s *FileStore[T]) GetAll() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vals := map[string]T{}
	for id, v := range s.records {
		vals[id] = v
	}

	return vals
}

func (s *FileStore[T]) filePath(id string) string {
	return filepath.Join(s.path, fmt.Sprintf("%s.json", id))
}

func (s *FileStore[T]) loadRecord(path string) (*Record[T], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	// Ignoring close error - file is read-only, error is not actionable
	defer func() { _ = file.Close() }()

	jsonData, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var spec T
	record := &Record[T]{
		Spec: spec,
	}
	err = json.Unmarshal(jsonData, record)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling record: %w", err)
	}

	return record, nil
}

// atomicWrite writes data to a temp file then renames it to the target path.
// This prevents partial or empty files if the process is interrupted.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
