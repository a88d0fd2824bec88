package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Source yields raw table rows by table name.
type Source interface {
	// ReadTable returns the rows of a table. ok is false when the source has no such table.
	ReadTable(ctx context.Context, name string) (rows []Row, ok bool, err error)
	// Describe names the source for logs.
	Describe() string
}

// Open returns a Source for path: a directory of CSV files or an .xlsx workbook.
func Open(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat data source: %w", err)
	}
	if info.IsDir() {
		return NewDirSource(path), nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return OpenWorkbook(path)
	}
	return nil, fmt.Errorf("unsupported data source %q: want a directory or .xlsx workbook", path)
}

// DirSource reads one "<table>.csv" file per table from a directory.
type DirSource struct {
	dir string
}

// NewDirSource returns a DirSource over dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (d *DirSource) Describe() string { return d.dir }

// ReadTable reads dir/name.csv.
func (d *DirSource) ReadTable(ctx context.Context, name string) ([]Row, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	path := filepath.Join(d.dir, name+".csv")
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := readCSV(f)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rows, true, nil
}

func readCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return rowsFromRecords(records), nil
}

// Workbook holds the rows of every sheet of an .xlsx file, keyed by normalized sheet name.
type Workbook struct {
	path   string
	sheets map[string][]Row
}

// OpenWorkbook reads every sheet of the workbook at path.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := &Workbook{path: path, sheets: make(map[string][]Row)}
	for _, sheet := range f.GetSheetList() {
		records, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		w.sheets[normalizeKey(sheet)] = rowsFromRecords(records)
	}
	return w, nil
}

func (w *Workbook) Describe() string { return w.path }

// ReadTable returns the sheet whose normalized name matches name.
func (w *Workbook) ReadTable(ctx context.Context, name string) ([]Row, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	rows, ok := w.sheets[normalizeKey(name)]
	return rows, ok, nil
}
