package tabular

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// DecodeExcel parses the first sheet of an .xlsx workbook into Records,
// using the first row as the header. Cells are read as display text, so the
// output is uniformly textual like DecodeCSV.
func DecodeExcel(data []byte) ([]*Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in workbook")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := rows[0]
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if h == "" {
			return nil, fmt.Errorf("empty column name in header row")
		}
		if seen[h] {
			return nil, fmt.Errorf("duplicate column %q in header row", h)
		}
		seen[h] = true
	}

	records := make([]*Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// excelize trims trailing empty cells; pad to header width.
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
