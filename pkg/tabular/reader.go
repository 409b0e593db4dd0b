package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row maps column name to the raw cell text. Missing cells are absent keys.
type Row map[string]string

// Table is a fully-parsed tabular dataset: ordered column names plus data
// rows keyed by column name. Parsing happens entirely up front so callers
// never hold a file handle (or a database transaction) while iterating.
type Table struct {
	Columns []string
	Rows    []Row
}

// Cell returns the raw value for the named column and whether it was set.
func (r Row) Cell(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// Read parses the named upload into a Table, dispatching on file extension.
// Excel workbooks (.xlsx, .xlsm) are read from the first sheet; anything
// else is treated as delimited text.
func Read(filename string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r)
	default:
		return ReadCSV(r)
	}
}

// ReadXLSX parses the first sheet of an Excel workbook.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return fromRecords(rows)
}

// ReadCSV parses comma-delimited text.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRecords(records)
}

func fromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	header := records[0]
	columns := make([]string, 0, len(header))
	for _, name := range header {
		columns = append(columns, strings.TrimSpace(name))
	}

	table := &Table{Columns: columns}
	for _, record := range records[1:] {
		row := make(Row, len(columns))
		for i, name := range columns {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
