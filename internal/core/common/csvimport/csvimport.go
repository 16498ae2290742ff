package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Upload size and row limits for CSV processing.
const (
	MaxUploadSize = 5 << 20
	MaxRows       = 20000
)

var (
	ErrTooManyRows = fmt.Errorf("csv exceeds %d rows", MaxRows)
	ErrEmptyFile   = errors.New("csv file is empty")
)

// Column maps a header onto a logical field when the lower-cased header contains
// every AllOf fragment and none of the NoneOf fragments.
type Column struct {
	Field  string
	AllOf  []string
	NoneOf []string
}

func (c Column) matches(header string) bool {
	for _, frag := range c.AllOf {
		if !strings.Contains(header, frag) {
			return false
		}
	}
	for _, frag := range c.NoneOf {
		if strings.Contains(header, frag) {
			return false
		}
	}
	return true
}

type Options struct {
	Columns []Column
	// Delimiter forces a separator; zero means detect from the header line.
	Delimiter rune
	MaxRows   int
}

type Row struct {
	Line   int
	values []string
	index  map[string]int
}

// Get returns the trimmed value of field, or "" when the column is absent.
func (r Row) Get(field string) string {
	i, ok := r.index[field]
	if !ok || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

type Table struct {
	Delimiter rune
	Headers   []string
	Rows      []Row
	index     map[string]int
}

// Has reports whether a header matched field.
func (t *Table) Has(field string) bool {
	_, ok := t.index[field]
	return ok
}

type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type Result struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

func (r *Result) Fail(line int, reason string) {
	r.Skipped++
	r.Errors = append(r.Errors, RowError{Line: line, Reason: reason})
}

// DetectDelimiter picks '|' when the header line holds more pipes than commas.
func DetectDelimiter(headerLine string) rune {
	if strings.Count(headerLine, "|") > strings.Count(headerLine, ",") {
		return '|'
	}
	return ','
}

// Parse reads a headed CSV. Unrecognized columns are ignored, never rejected.
func Parse(r io.Reader, opts Options) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	delimiter := opts.Delimiter
	if delimiter == 0 {
		firstLine := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			firstLine = data[:i]
		}
		delimiter = DetectDelimiter(string(firstLine))
	}

	maxRows := opts.MaxRows
	if maxRows <= 0 {
		maxRows = MaxRows
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	table := &Table{
		Delimiter: delimiter,
		Headers:   headers,
		index:     matchHeaders(headers, opts.Columns),
	}

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line, _ := reader.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlank(rec) {
			continue
		}
		if len(table.Rows) >= maxRows {
			return nil, ErrTooManyRows
		}
		table.Rows = append(table.Rows, Row{Line: line, values: rec, index: table.index})
	}

	return table, nil
}

// matchHeaders assigns each column to the first rule it satisfies; a field keeps its first column.
func matchHeaders(headers []string, columns []Column) map[string]int {
	index := make(map[string]int, len(columns))
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		for _, c := range columns {
			if _, taken := index[c.Field]; taken {
				continue
			}
			if c.matches(norm) {
				index[c.Field] = i
				break
			}
		}
	}
	return index
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
