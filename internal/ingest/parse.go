// Package ingest turns uploaded vendor files into rows ready for column
// mapping and validation. Four formats are accepted: Excel, CSV, JSON and
// XML. Parsing never interprets metrics; it only produces headers, cells and
// the player names found in the file.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/clubops/gpscanon/pkg/logger"
	"github.com/clubops/gpscanon/pkg/metrics"
)

// DefaultMaxFileSize caps uploads at 10MB.
const DefaultMaxFileSize = 10 << 20

// Metadata describes a parsed file.
type Metadata struct {
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	Format      string `json:"format"`
	RowCount    int    `json:"rowCount"`
	ColumnCount int    `json:"columnCount"`
}

// ParsedFile is the format-independent result of parsing an upload.
type ParsedFile struct {
	Headers     []string `json:"headers"`
	Rows        []Row    `json:"-"`
	PlayerNames []string `json:"playerNames"`
	Metadata    Metadata `json:"metadata"`
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxFileSize overrides the upload size limit.
func WithMaxFileSize(limit int64) Option {
	return func(p *Parser) {
		if limit > 0 {
			p.maxFileSize = limit
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(p *Parser) {
		p.log = log
	}
}

// Parser decodes vendor uploads.
type Parser struct {
	maxFileSize int64
	log         logger.Logger
}

// NewParser creates a Parser with the default size limit.
func NewParser(opts ...Option) *Parser {
	p := &Parser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decodes the upload according to its file extension.
func (p *Parser) Parse(ctx context.Context, data []byte, filename string) (*ParsedFile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrFileEmpty, filename)
	}
	if int64(len(data)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileSize, filename, len(data), p.maxFileSize)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	start := time.Now()

	var (
		headers []string
		rows    []Row
		err     error
	)
	switch format {
	case "xlsx", "xls":
		headers, rows, err = parseExcel(data)
	case "csv":
		headers, rows, err = parseCSV(data)
	case "json":
		headers, rows, err = parseJSON(data)
	case "xml":
		headers, rows, err = parseXML(data)
	default:
		metrics.RecordFileParsed(format, "rejected")
		return nil, fmt.Errorf("%w: %q, expected xlsx, xls, csv, json or xml", ErrFileFormat, format)
	}
	if err != nil {
		metrics.RecordFileParsed(format, "failed")
		return nil, err
	}

	metrics.RecordFileParsed(format, "ok")
	metrics.RecordParseDuration(format, float64(time.Since(start).Milliseconds()))

	parsed := &ParsedFile{
		Headers:     headers,
		Rows:        rows,
		PlayerNames: ExtractPlayerNames(headers, rows),
		Metadata: Metadata{
			FileName:    filename,
			FileSize:    int64(len(data)),
			Format:      format,
			RowCount:    len(rows),
			ColumnCount: len(headers),
		},
	}
	if p.log != nil {
		p.log.Info(ctx, "file parsed",
			logger.String("file", filename),
			logger.String("format", format),
			logger.Int("rows", len(rows)),
			logger.Int("columns", len(headers)),
			logger.Int("players", len(parsed.PlayerNames)))
	}
	return parsed, nil
}
