package blm

import (
	"fmt"
	"strings"
)

// Parser splits records of a File into fields and looks fields up by column name.
// It holds only the most recently loaded record.
type Parser struct {
	file    *File
	columns map[string]int
	row     []string
	index   int
}

// NewParser creates a parser over f
func NewParser(f *File) *Parser {
	columns := make(map[string]int, len(f.Map()))
	for i, name := range f.Map() {
		// First occurrence wins for duplicated column names
		if _, ok := columns[name]; !ok {
			columns[name] = i
		}
	}
	return &Parser{
		file:    f,
		columns: columns,
		index:   -1,
	}
}

// File returns the file the parser reads from
func (p *Parser) File() *File {
	return p.file
}

// RecordCount returns the number of records in the file
func (p *Parser) RecordCount() (int, error) {
	return p.file.RecordCount()
}

// LoadRecord makes record i the current record
func (p *Parser) LoadRecord(i int) error {
	raw, err := p.file.Record(i)
	if err != nil {
		return err
	}
	p.Parse(i, raw)
	return nil
}

// Parse makes raw, the bytes of record i as returned by File.Record or a
// RecordIterator, the current record
func (p *Parser) Parse(i int, raw []byte) {
	p.row = SplitRecord(raw, p.file.EOF())
	p.index = i
}

// Index returns the position of the current record, or -1 before the first load
func (p *Parser) Index() int {
	return p.index
}

// Query returns the value of field in the current record. Unknown fields and
// fields missing from a short row yield "".
func (p *Parser) Query(field string) string {
	i, ok := p.columns[field]
	if !ok || i >= len(p.row) {
		return ""
	}
	return p.row[i]
}

// Lookup is Query with the reason for an empty result
func (p *Parser) Lookup(field string) (string, error) {
	i, ok := p.columns[field]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if i >= len(p.row) {
		return "", nil
	}
	return p.row[i], nil
}

// Record returns every field of the current record in file order
func (p *Parser) Record() []string {
	return p.row
}

// Fields returns the current record keyed by column name. Columns beyond the end
// of a short row map to "".
func (p *Parser) Fields() map[string]string {
	fields := make(map[string]string, len(p.columns))
	for name := range p.columns {
		fields[name] = p.Query(name)
	}
	return fields
}

// SplitRecord trims surrounding whitespace from a raw record and splits it on the
// field delimiter
func SplitRecord(raw []byte, eof byte) []string {
	record := strings.TrimSpace(string(raw))
	if eof == 0 {
		return []string{record}
	}
	return strings.Split(record, string([]byte{eof}))
}
