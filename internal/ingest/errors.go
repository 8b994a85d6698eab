package ingest

import "errors"

var (
	// ErrFileFormat is returned for extensions outside the supported set.
	ErrFileFormat = errors.New("unsupported file format")

	// ErrFileSize is returned when the upload exceeds the size limit.
	ErrFileSize = errors.New("file exceeds size limit")

	// ErrFileEmpty is returned when the file holds no data rows.
	ErrFileEmpty = errors.New("file is empty")

	// ErrFileCorrupted is returned when the file cannot be decoded.
	ErrFileCorrupted = errors.New("file is corrupted")
)
