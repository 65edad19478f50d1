// Package fetcher reads ledger sheets from local or FTP locations into
// header-plus-rows tables.
package fetcher

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a sheet split into its header row and data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// TableOptions selects what ReadTable reads from a file.
type TableOptions struct {
	// Sheet names the workbook sheet. Empty reads the first sheet.
	Sheet string
	// Delimiter for delimited text. Zero means ','.
	Delimiter rune
	// Charset of delimited text, as an HTML encoding label. Empty means UTF-8.
	Charset string
}

// ReadTable reads a local ledger file, picking the parser by extension.
func ReadTable(ctx context.Context, path string, opts TableOptions) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		rows [][]string
		err  error
	)
	switch ext {
	case ".xlsx", ".xlsm":
		rows, err = ReadXLSX(path, XLSXOptions{SheetName: opts.Sheet})
	case ".csv", ".txt", ".tsv":
		delim := opts.Delimiter
		if delim == 0 {
			delim = sniffDelimiter(path)
		}
		rows, err = ReadCSVFile(ctx, path, CSVOptions{Delimiter: delim, Charset: opts.Charset, LazyQuotes: true})
	default:
		return nil, eris.Errorf("fetcher: unsupported ledger format %q", ext)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read %s", filepath.Base(path))
	}
	return NewTable(rows), nil
}

// NewTable takes the first non-blank row as the header and keeps the
// remaining non-blank rows. Header cells are trimmed.
func NewTable(rows [][]string) *Table {
	t := &Table{Rows: [][]string{}}
	for _, row := range rows {
		if blank(row) {
			continue
		}
		if t.Header == nil {
			t.Header = make([]string, len(row))
			for i, c := range row {
				t.Header[i] = strings.TrimSpace(c)
			}
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Index maps each header name to its first column position.
func (t *Table) Index() map[string]int {
	idx := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}
	return idx
}

// sniffDelimiter picks the most frequent of ',', ';' and tab on the first
// line, preferring ',' on ties.
func sniffDelimiter(path string) rune {
	f, err := os.Open(path)
	if err != nil {
		return ','
	}
	defer f.Close() //nolint:errcheck

	line, _ := bufio.NewReader(f).ReadString('\n')
	best, bestN := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
