// Package export renders report rows as CSV and parses statement files back.
//
// Output is UTF-8, comma separated, with every field double-quoted and embedded
// quotes doubled. Input is read with encoding/csv, which accepts quoted and bare fields.
package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Table is a header plus rows of equal width.
type Table struct {
	Header []string
	Rows   [][]string
}

// WriteCSV writes t to w with every field quoted.
func WriteCSV(w io.Writer, t Table) error {
	bw := bufio.NewWriter(w)
	if err := writeRecord(bw, t.Header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			return fmt.Errorf("row %d has %d fields, header has %d", i+1, len(row), len(t.Header))
		}
		if err := writeRecord(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

// ReadCSV parses a CSV stream whose first record is the header.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, errors.New("empty csv: missing header")
	}
	if err != nil {
		return Table{}, fmt.Errorf("read csv header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	t := Table{Header: header}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read csv: %w", err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// Column returns the index of name in the header, case-insensitively, or -1.
func (t Table) Column(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}
