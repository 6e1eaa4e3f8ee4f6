// Package bulkimport turns a CSV export of a building master list into
// reference records and hands them to the local reference store. The import
// is destructive by design: it refreshes the whole list, it never merges.
package bulkimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"visitbook/internal/domain"
)

// ErrEmptyDataset indicates the file parsed cleanly but contained no data
// rows. The store is left untouched.
var ErrEmptyDataset = errors.New("no data rows in import file")

// ParseError reports a structurally malformed row with its line number.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Header names recognized as the building name and address columns. The
// source datasets carry Korean headers; English is accepted as well. Any
// other column passes through into Attrs verbatim.
var (
	nameHeaders    = map[string]bool{"name": true, "건물명": true, "building name": true}
	addressHeaders = map[string]bool{"address": true, "주소": true}
)

type Result struct {
	Count int
}

// replacer is the subset of refstore.Store that Importer requires.
type replacer interface {
	ReplaceAll(ctx context.Context, records []domain.Building) (int, error)
}

type Importer struct {
	store replacer
}

func NewImporter(store replacer) *Importer {
	return &Importer{store: store}
}

// Import parses r as UTF-8 CSV with a header row and atomically replaces
// the reference store contents with the parsed records. Blank lines are
// skipped. Returns ErrEmptyDataset when no data rows remain, a *ParseError
// on malformed row structure, and propagates store failures (which wrap
// refstore.ErrImportAborted) unchanged.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	records, err := parse(r)
	if err != nil {
		return Result{}, err
	}
	if len(records) == 0 {
		return Result{}, ErrEmptyDataset
	}

	count, err := im.store.ReplaceAll(ctx, records)
	if err != nil {
		return Result{}, err
	}
	return Result{Count: count}, nil
}

func parse(r io.Reader) ([]domain.Building, error) {
	cr := csv.NewReader(r)
	// Row width is validated against the header below so the line number in
	// the error is ours, not the csv package's.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, &ParseError{Line: 1, Err: err}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []domain.Building
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, &ParseError{Line: line, Err: err}
		}
		line, _ := cr.FieldPos(0)
		if isBlank(row) {
			continue
		}
		if len(row) != len(header) {
			return nil, &ParseError{
				Line: line,
				Err:  fmt.Errorf("expected %d fields, got %d", len(header), len(row)),
			}
		}

		var b domain.Building
		for i, value := range row {
			key := strings.ToLower(header[i])
			switch {
			case nameHeaders[key]:
				b.Name = value
			case addressHeaders[key]:
				b.Address = value
			default:
				if b.Attrs == nil {
					b.Attrs = make(map[string]string)
				}
				b.Attrs[header[i]] = value
			}
		}
		records = append(records, b)
	}

	return records, nil
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
