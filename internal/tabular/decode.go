package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const utf8BOM = "\xEF\xBB\xBF"

// DecodeOptions configures delimited-text decoding.
type DecodeOptions struct {
	Delimiter rune   // column delimiter, default comma
	NoHeader  bool   // first line is data; column names become col_1, col_2, ...
	Encoding  string // "" / "utf-8" | "latin-1" | "windows-1252"
}

// DecodeCSV parses delimited text into an ordered sequence of Records using
// the first line as the header. A UTF-8 BOM on the first header cell is
// stripped. Empty input and header-only input both yield zero records.
// Empty cells decode as null; rows shorter than the header are padded with
// nulls; rows longer than the header are an error.
func DecodeCSV(data []byte, opts DecodeOptions) ([]*Record, error) {
	decoded, err := decodeCharset(data, opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // width enforced against the header below

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var headers []string
	if opts.NoHeader {
		headers = make([]string, len(rows[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i+1)
		}
	} else {
		headers = rows[0]
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
		rows = rows[1:]
	}

	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if h == "" {
			return nil, fmt.Errorf("parse csv: empty column name in header")
		}
		if seen[h] {
			return nil, fmt.Errorf("parse csv: duplicate column %q in header", h)
		}
		seen[h] = true
	}

	records := make([]*Record, 0, len(rows))
	for i, row := range rows {
		if len(row) > len(headers) {
			return nil, fmt.Errorf("parse csv: row %d has %d fields, header has %d", i+1, len(row), len(headers))
		}
		rec := NewRecord()
		for j, h := range headers {
			if j < len(row) && row[j] != "" {
				rec.Set(h, row[j])
			} else {
				rec.SetNull(h)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// decodeCharset converts raw bytes to UTF-8 according to the named encoding.
func decodeCharset(data []byte, encoding string) ([]byte, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return data, nil
	case "latin-1", "latin1", "iso-8859-1":
		return transformBytes(data, charmap.ISO8859_1)
	case "windows-1252", "cp1252":
		return transformBytes(data, charmap.Windows1252)
	default:
		return nil, fmt.Errorf("unsupported encoding: %q", encoding)
	}
}

func transformBytes(data []byte, cm *charmap.Charmap) ([]byte, error) {
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), cm.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}
	return out, nil
}
