package fixtures

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// WriteSession writes one session in the configured format and returns
// the file path.
func WriteSession(config *Config, session Session) (string, error) {
	if err := os.MkdirAll(config.OutputDir, directoryPermission); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	format := strings.ToLower(config.Format)
	path := filepath.Join(config.OutputDir, session.Name+"."+format)

	var err error
	switch format {
	case "csv":
		err = writeCSV(path, session)
	case "json":
		err = writeJSON(path, session)
	case "xml":
		err = writeXML(path, session)
	case "xlsx":
		err = writeXLSX(path, session)
	default:
		return "", fmt.Errorf("unsupported fixture format %q", config.Format)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

func writeCSV(path string, session Session) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(session.Headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range session.Rows {
		record := make([]string, len(session.Headers))
		for i, header := range session.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeJSON(path string, session Session) error {
	envelope := map[string]any{"players": session.Rows}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// xmlSession mirrors the <session><player>...</player></session> shape
// vendor exports use.
type xmlSession struct {
	XMLName xml.Name    `xml:"session"`
	Players []xmlPlayer `xml:"player"`
}

type xmlPlayer struct {
	Fields []xmlField
}

type xmlField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

func writeXML(path string, session Session) error {
	doc := xmlSession{Players: make([]xmlPlayer, 0, len(session.Rows))}
	for _, row := range session.Rows {
		player := xmlPlayer{Fields: make([]xmlField, 0, len(session.Headers))}
		for _, header := range session.Headers {
			value, ok := row[header]
			if !ok {
				continue
			}
			player.Fields = append(player.Fields, xmlField{
				XMLName: xml.Name{Local: xmlElementName(header)},
				Value:   value,
			})
		}
		doc.Players = append(doc.Players, player)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// xmlElementName makes a header usable as an XML element name.
func xmlElementName(header string) string {
	return strings.ReplaceAll(strings.TrimSpace(header), " ", "_")
}

func writeXLSX(path string, session Session) error {
	book := excelize.NewFile()
	defer func() { _ = book.Close() }()

	sheet := book.GetSheetName(0)
	for i, header := range session.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to place header: %w", err)
		}
		if err := book.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for r, row := range session.Rows {
		for c, header := range session.Headers {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("failed to place cell: %w", err)
			}
			if err := book.SetCellValue(sheet, cell, row[header]); err != nil {
				return fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	if err := book.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
