// Package source reads the CSV exports into raw tables. It does no type
// conversion; that is the parser's job.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mapmedia/mapview/internal/diag"
	"github.com/mapmedia/mapview/internal/model/core"
)

// Row is one data row with its 1-based line number in the file.
type Row struct {
	Line  int
	Cells []string
}

// Table is a fully read CSV file.
type Table struct {
	Source core.Source
	File   string
	Header []string
	Rows   []Row

	// Errors holds rows the CSV reader itself could not split.
	Errors []*diag.RowParseError
}

// ReadFile reads path as a CSV table. A file that cannot be opened yields
// diag.ErrUnreadableFile, a file without a header yields diag.ErrEmptyInput.
func ReadFile(path string, src core.Source) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, diag.ErrUnreadableFile, err)
	}
	defer f.Close()

	return Read(f, path, src)
}

// Read reads a CSV table from r. name is only used for diagnostics.
func Read(r io.Reader, name string, src core.Source) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	t := &Table{Source: src, File: name}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", name, diag.ErrEmptyInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", name, diag.ErrUnreadableFile, err)
	}
	if blank(header) {
		return nil, fmt.Errorf("%s: %w: blank header", name, diag.ErrEmptyInput)
	}
	t.Header = header

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, fmt.Errorf("%s: %w: %v", name, diag.ErrUnreadableFile, err)
			}
			t.Errors = append(t.Errors, &diag.RowParseError{
				Source: src,
				Line:   perr.StartLine,
				Field:  "row",
				Err:    perr.Err,
			})
			continue
		}
		if blank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		t.Rows = append(t.Rows, Row{Line: line, Cells: rec})
	}

	return t, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
