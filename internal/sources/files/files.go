// Package files reads the input tables from CSV exports in a directory.
package files

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"aceiro/internal/core"
	"aceiro/internal/sources"
)

var _ sources.TableReader = (*Store)(nil)

// Store reads <entity>_rows.csv files from a base directory.
type Store struct {
	base string
}

func New(base string) *Store {
	if base == "" {
		base = "data"
	}
	return &Store{base: base}
}

// Path returns the file an entity is read from.
func (s *Store) Path(entity core.Entity) string {
	return filepath.Join(s.base, entity.FileName())
}

func (s *Store) Describe() string {
	return "csv:" + s.base
}

// ReadTable reads the whole file. Rows may have a different number of fields
// than the header; missing cells read as blank.
func (s *Store) ReadTable(ctx context.Context, entity core.Entity) (core.RawTable, error) {
	path := s.Path(entity)
	if err := ctx.Err(); err != nil {
		return core.RawTable{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return core.RawTable{}, &core.LoadError{Entity: entity, Source: path, Err: err}
	}
	defer f.Close()

	t, err := Decode(f, entity)
	if err != nil {
		return core.RawTable{}, &core.LoadError{Entity: entity, Source: path, Err: err}
	}
	t.Source = path
	return t, nil
}

// Decode reads a CSV document whose first record is the header. An empty
// document is an error; a header without rows is not.
func Decode(r io.Reader, entity core.Entity) (core.RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return core.RawTable{}, errors.New("empty file")
	}
	if err != nil {
		return core.RawTable{}, fmt.Errorf("read header: %w", err)
	}

	t := core.RawTable{Entity: entity, Header: header, Rows: [][]string{}, Lines: []int{}}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return core.RawTable{}, fmt.Errorf("read record: %w", err)
		}
		if blankRecord(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		t.Rows = append(t.Rows, rec)
		t.Lines = append(t.Lines, line)
	}
	return t, nil
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if v != "" {
			return false
		}
	}
	return true
}
