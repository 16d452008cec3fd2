package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps each partition in a CSV file under a root directory,
// one file per partition, first line a header. Partition "pending/ignored"
// maps to <root>/pending/ignored.csv.
type FileStore struct {
	root    string
	headers map[string]string // first partition segment -> header line
}

// NewFileStore creates a FileStore. headers maps the first partition
// path segment (e.g. "pending", "ledger") to the CSV header line
// written when a partition file is first created.
func NewFileStore(root string, headers map[string]string) *FileStore {
	return &FileStore{root: root, headers: headers}
}

// GetRows reads all rows of a partition, skipping the header. A missing
// partition file returns no rows.
func (s *FileStore) GetRows(partition string) ([]Row, error) {
	f, err := os.Open(s.path(partition))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening partition %s: %w", partition, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading partition %s: %w", partition, err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, Row(rec))
	}
	return rows, nil
}

// AppendRows appends rows, creating the partition file (with header) on
// first write.
func (s *FileStore) AppendRows(partition string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	path := s.path(partition)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating partition dir for %s: %w", partition, err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening partition %s: %w", partition, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if isNew {
		if err := cw.Write(strings.Split(s.header(partition), ",")); err != nil {
			return fmt.Errorf("writing header for %s: %w", partition, err)
		}
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d to %s: %w", i, partition, err)
		}
	}
	return cw.Error()
}

// UpdateRow replaces the row with the given ID in place.
func (s *FileStore) UpdateRow(partition, id string, row Row) error {
	rows, err := s.GetRows(partition)
	if err != nil {
		return err
	}
	found := false
	for i := range rows {
		if rows[i].ID() == id {
			rows[i] = row
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("updating %s: row %s not found", partition, id)
	}
	return s.ReplaceAll(partition, rows)
}

// DeleteRow removes the row with the given ID. Absent IDs are a no-op.
func (s *FileStore) DeleteRow(partition, id string) error {
	rows, err := s.GetRows(partition)
	if err != nil {
		return err
	}
	kept := rows[:0]
	found := false
	for _, row := range rows {
		if row.ID() == id {
			found = true
			continue
		}
		kept = append(kept, row)
	}
	if !found {
		return nil
	}
	return s.ReplaceAll(partition, kept)
}

// ReplaceAll rewrites the partition with exactly the given rows.
func (s *FileStore) ReplaceAll(partition string, rows []Row) error {
	path := s.path(partition)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating partition dir for %s: %w", partition, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating partition %s: %w", partition, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if err := cw.Write(strings.Split(s.header(partition), ",")); err != nil {
		return fmt.Errorf("writing header for %s: %w", partition, err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d to %s: %w", i, partition, err)
		}
	}
	return cw.Error()
}

func (s *FileStore) path(partition string) string {
	return filepath.Join(s.root, filepath.FromSlash(partition)+".csv")
}

func (s *FileStore) header(partition string) string {
	segment, _, _ := strings.Cut(partition, "/")
	return s.headers[segment]
}
