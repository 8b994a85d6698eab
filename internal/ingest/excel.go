package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// parseExcel reads the first sheet of a workbook. The first row is the
// header row.
func parseExcel(data []byte) ([]string, []Row, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFileCorrupted, err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrFileEmpty
	}

	records, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFileCorrupted, err)
	}
	if len(records) == 0 {
		return nil, nil, ErrFileEmpty
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		row := make(Row, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = NewValue(record[i])
			} else {
				row[header] = Value{}
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}
