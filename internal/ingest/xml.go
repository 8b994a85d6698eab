package ingest

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// parseXML collects <player> or <athlete> elements, case-insensitive.
// Attributes and child elements of each matched element become columns.
func parseXML(data []byte) ([]string, []Row, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var (
		headers []string
		seen    = make(map[string]struct{})
		rows    []Row
	)
	addHeader := func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			headers = append(headers, name)
		}
	}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrFileCorrupted, err)
		}

		start, ok := token.(xml.StartElement)
		if !ok || !isPlayerElement(start.Name.Local) {
			continue
		}

		row := make(Row)
		for _, attr := range start.Attr {
			addHeader(attr.Name.Local)
			row[attr.Name.Local] = NewValue(attr.Value)
		}

		if err := readPlayerChildren(decoder, start.Name, row, addHeader); err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: no player elements found", ErrFileEmpty)
	}
	return headers, rows, nil
}

func isPlayerElement(name string) bool {
	lower := strings.ToLower(name)
	return lower == "player" || lower == "athlete"
}

// readPlayerChildren consumes tokens up to the element's closing tag,
// turning each direct child element into a column holding its text content.
func readPlayerChildren(decoder *xml.Decoder, parent xml.Name, row Row, addHeader func(string)) error {
	for {
		token, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFileCorrupted, err)
		}

		switch typed := token.(type) {
		case xml.StartElement:
			text, err := collectText(decoder)
			if err != nil {
				return err
			}
			addHeader(typed.Name.Local)
			row[typed.Name.Local] = NewValue(text)
		case xml.EndElement:
			if typed.Name == parent {
				return nil
			}
		}
	}
}

// collectText gathers all character data inside an element, nested tags
// included.
func collectText(decoder *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrFileCorrupted, err)
		}
		switch typed := token.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			b.Write(typed)
		}
	}
	return strings.TrimSpace(b.String()), nil
}
