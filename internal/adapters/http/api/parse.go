// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/clubops/gpscanon/internal/ingest"
)

// maxUploadBytes caps the request body before the parser sees it.
const maxUploadBytes = 32 << 20

// ParseHandler inspects an uploaded vendor file without persisting it.
type ParseHandler struct {
	deps ParseDependencies
}

// NewParseHandler creates a new parse handler.
func NewParseHandler(deps ParseDependencies) *ParseHandler {
	return &ParseHandler{deps: deps}
}

// HandlePostParse handles POST /parse requests. The file arrives either as
// multipart form data under the "file" field or as a raw body with the
// filename in the "filename" query parameter.
func (h *ParseHandler) HandlePostParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	data, filename, err := readUpload(r)
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file_too_large", err)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_upload", err)
		return
	}

	result, err := h.deps.ParseVendorFile(r.Context(), data, filename)
	switch {
	case errors.Is(err, ingest.ErrFileSize):
		writeError(w, http.StatusRequestEntityTooLarge, "file_too_large", err)
		return
	case errors.Is(err, ingest.ErrFileFormat),
		errors.Is(err, ingest.ErrFileEmpty),
		errors.Is(err, ingest.ErrFileCorrupted):
		writeError(w, http.StatusBadRequest, "invalid_file", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "parse_failed", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// readUpload extracts the file bytes and name from a multipart or raw request.
func readUpload(r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", Wrap("read multipart file", err)
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", Wrap("read multipart file", err)
		}
		return data, header.Filename, nil
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = r.Header.Get("X-Filename")
	}
	if filename == "" {
		return nil, "", NewKind("resolve filename", ErrBadRequest)
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", NewKind("read request body", ErrTooLarge)
		}
		return nil, "", Wrap("read request body", err)
	}
	if len(data) == 0 {
		return nil, "", NewKind("read request body", ErrBadRequest)
	}
	return data, filename, nil
}
