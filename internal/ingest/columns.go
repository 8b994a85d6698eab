package ingest

import (
	"strings"
	"time"
)

// Column type labels.
const (
	ColumnNumber  = "number"
	ColumnString  = "string"
	ColumnDate    = "date"
	ColumnUnknown = "unknown"
)

// maxSampleValues limits how many cells a column report carries.
const maxSampleValues = 5

// numericShare is the fraction of numeric cells above which a column is
// classified as numeric.
const numericShare = 0.5

// ColumnInfo classifies one column of a parsed file.
type ColumnInfo struct {
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	SampleValues   []string `json:"sampleValues"`
	HasNumericData bool     `json:"hasNumericData"`
}

var dateLayouts = []string{"2006-01-02", "02.01.2006", "01/02/2006"}

// AnalyzeColumns classifies every column by the share of numeric cells among
// its non-blank values.
func AnalyzeColumns(headers []string, rows []Row) []ColumnInfo {
	columns := make([]ColumnInfo, 0, len(headers))
	for _, header := range headers {
		var nonEmpty []Value
		for _, row := range rows {
			if value, ok := row[header]; ok && strings.TrimSpace(value.Raw) != "" {
				nonEmpty = append(nonEmpty, value)
			}
		}

		info := ColumnInfo{Name: header, Type: ColumnUnknown}
		for _, value := range nonEmpty {
			if len(info.SampleValues) == maxSampleValues {
				break
			}
			info.SampleValues = append(info.SampleValues, value.Raw)
		}

		if len(nonEmpty) > 0 {
			numeric := 0
			for _, value := range nonEmpty {
				if value.IsNumber {
					numeric++
				}
			}
			info.HasNumericData = float64(numeric) > float64(len(nonEmpty))*numericShare
			switch {
			case info.HasNumericData:
				info.Type = ColumnNumber
			case anyDate(nonEmpty):
				info.Type = ColumnDate
			default:
				info.Type = ColumnString
			}
		}
		columns = append(columns, info)
	}
	return columns
}

func anyDate(values []Value) bool {
	for _, value := range values {
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, value.Raw); err == nil {
				return true
			}
		}
	}
	return false
}
