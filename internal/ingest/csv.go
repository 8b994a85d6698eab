package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// parseCSV reads a header row plus data rows. Ragged records are tolerated;
// short rows leave the trailing columns blank.
func parseCSV(data []byte) ([]string, []Row, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
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

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
