// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	service "github.com/clubops/gpscanon/internal/app"
	"github.com/clubops/gpscanon/internal/ingest"
)

// ReportHandler ingests vendor reports and serves stored results.
type ReportHandler struct {
	deps ReportDependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandlePostReport handles POST /reports requests. The body is multipart
// form data with a "file" field plus "name", "teamId", "eventId" and
// "profileId" fields. An optional "playerMappings" field carries a JSON
// object of report name to player id decisions made before the upload.
func (h *ReportHandler) HandlePostReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_upload", Wrap("read multipart file", err))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_upload", Wrap("read multipart file", err))
		return
	}

	in := service.IngestInput{
		Name:      r.FormValue("name"),
		TeamID:    r.FormValue("teamId"),
		EventID:   r.FormValue("eventId"),
		ProfileID: r.FormValue("profileId"),
		FileName:  header.Filename,
	}
	if raw := r.FormValue("playerMappings"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.PlayerMappings); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_player_mappings", Wrap("decode player mappings", err))
			return
		}
	}
	if in.ProfileID == "" {
		writeError(w, http.StatusBadRequest, "missing_profile_id", NewKind("resolve profile id", ErrBadRequest))
		return
	}
	if in.Name == "" {
		in.Name = header.Filename
	}

	parsed, err := h.deps.ParseFile(r.Context(), data, header.Filename)
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
	in.File = parsed

	report, err := h.deps.IngestReport(r.Context(), in)
	switch {
	case errors.Is(err, service.ErrValidationFailed):
		writeJSON(w, http.StatusUnprocessableEntity, report)
		return
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "profile_not_found", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "ingest_failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

// HandleReportByID handles GET /reports/{id} and GET /reports/{id}/data.
func (h *ReportHandler) HandleReportByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/reports/"), "/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}

	switch sub {
	case "":
		report, err := h.deps.GetReport(r.Context(), id)
		if err != nil {
			h.writeReadError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	case "data":
		rows, err := h.deps.GetReportData(r.Context(), id)
		if err != nil {
			h.writeReadError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	default:
		writeError(w, http.StatusNotFound, "not_found", nil)
	}
}

func (h *ReportHandler) writeReadError(w http.ResponseWriter, err error) {
	if isNotFound(err) {
		writeError(w, http.StatusNotFound, "report_not_found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "report_read_failed", err)
}
