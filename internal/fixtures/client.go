package fixtures

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/clubops/gpscanon/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// postJSON performs a POST request with a JSON body and decodes the reply.
func (c *HTTPClient) postJSON(path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	resp, err := c.client.Post(c.baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to POST %s: %w", path, err)
	}
	return decodeResponse(resp, path, out)
}

func decodeResponse(resp *http.Response, path string, out any) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.BaseURL, config.Timeout)
	resp, err := client.client.Get(config.BaseURL + "/healthz")
	if err != nil {
		return fmt.Errorf("service unreachable: %w", err)
	}
	return decodeResponse(resp, "/healthz", nil)
}

// createProfile registers a column mapping profile that matches the
// generated headers and returns its id.
func createProfile(ctx context.Context, config *Config) (string, error) {
	logger.Get().Info(ctx, "creating mapping profile", logger.String("gpsSystem", config.GpsSystem))

	client := newHTTPClient(config.BaseURL, config.Timeout)
	body := map[string]any{
		"name":      "Generated fixture profile",
		"gpsSystem": config.GpsSystem,
		"columns": []map[string]any{
			{"canonicalMetric": "total_distance", "sourceColumn": "TD", "sourceUnit": "m", "displayUnit": "km"},
			{"canonicalMetric": "max_speed", "sourceColumn": "Max Speed", "sourceUnit": "km/h", "displayUnit": "km/h"},
			{"canonicalMetric": "hsr_distance", "sourceColumn": "HSR", "sourceUnit": "m"},
			{"canonicalMetric": "sprint_distance", "sourceColumn": "Sprint Distance", "sourceUnit": "m"},
			{"canonicalMetric": "player_load", "sourceColumn": "Load"},
			{"canonicalMetric": "duration", "sourceColumn": "Time", "displayUnit": "min"},
		},
	}

	var profile struct {
		ID string `json:"id"`
	}
	if err := client.postJSON("/profiles", body, &profile); err != nil {
		return "", err
	}
	return profile.ID, nil
}

// uploadSession posts one generated file to the report endpoint.
func uploadSession(ctx context.Context, config *Config, profileID, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}
	_ = mw.WriteField("name", filepath.Base(path))
	_ = mw.WriteField("teamId", config.TeamID)
	_ = mw.WriteField("profileId", profileID)
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}

	client := newHTTPClient(config.BaseURL, config.Timeout)
	resp, err := client.client.Post(config.BaseURL+"/reports", mw.FormDataContentType(), &buf)
	if err != nil {
		return fmt.Errorf("failed to POST /reports: %w", err)
	}

	var report struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		RowCount int    `json:"rowCount"`
	}
	if err := decodeResponse(resp, "/reports", &report); err != nil {
		return err
	}

	logger.Get().Info(ctx, "report ingested",
		logger.String("file", filepath.Base(path)),
		logger.String("reportId", report.ID),
		logger.String("status", report.Status),
		logger.Int("rows", report.RowCount))
	return nil
}
