// Package api implements the REST client for the Cloudey backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Client talks to the Cloudey backend. All intelligence lives server-side;
// the client only fetches and submits.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
}

// NewClient creates a backend client. Tracer and meter follow the
// process-global providers set up by telemetry.InitTelemetry.
func NewClient(baseURL string, logger *slog.Logger, tracer trace.Tracer, meter metric.Meter) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
		tracer:     tracer,
		meter:      meter,
	}
}

// Query sends a question to the AI agent and returns the answer text.
func (c *Client) Query(ctx context.Context, question string, userID int, sessionID, provider string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "query_api_call")
	defer span.End()

	reqBody := QueryRequest{
		Question:      question,
		ModelProvider: provider,
		UserID:        userID,
		SessionID:     sessionID,
	}

	var resp QueryResponse
	if err := c.postJSON(ctx, "/query", reqBody, &resp); err != nil {
		return "", err
	}
	if resp.Answer == "" {
		return "", fmt.Errorf("empty answer from backend")
	}
	return resp.Answer, nil
}

// ListSessions fetches the session catalogue for a user.
func (c *Client) ListSessions(ctx context.Context, userID int) ([]SessionSummary, error) {
	ctx, span := c.tracer.Start(ctx, "list_sessions_api_call")
	defer span.End()

	var resp SessionsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/sessions/%d", userID), &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// SessionMessages fetches the ordered message history of a session.
func (c *Client) SessionMessages(ctx context.Context, userID int, sessionID string) ([]Message, error) {
	ctx, span := c.tracer.Start(ctx, "session_messages_api_call")
	defer span.End()

	var resp MessagesResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/sessions/%d/%s/messages", userID, sessionID), &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// DeleteSession deletes a session on the backend.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	ctx, span := c.tracer.Start(ctx, "delete_session_api_call")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/sessions/"+sessionID, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if _, err := c.do(req); err != nil {
		return err
	}
	c.logger.Info("deleted session", "session_id", sessionID)
	return nil
}

// Dashboard fetches the aggregated dashboard payload.
// forceRefresh instructs the backend to bypass its cache.
func (c *Client) Dashboard(ctx context.Context, userID int, forceRefresh bool) (*DashboardData, error) {
	ctx, span := c.tracer.Start(ctx, "dashboard_api_call")
	defer span.End()

	var resp DashboardData
	if err := c.getJSON(ctx, refreshPath(fmt.Sprintf("/dashboard/%d", userID), forceRefresh), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DetailedCosts fetches the compartment/service/resource breakdowns.
func (c *Client) DetailedCosts(ctx context.Context, userID int, forceRefresh bool) (*DetailedCosts, error) {
	ctx, span := c.tracer.Start(ctx, "detailed_costs_api_call")
	defer span.End()

	var resp DetailedCosts
	if err := c.getJSON(ctx, refreshPath(fmt.Sprintf("/costs/detailed/%d", userID), forceRefresh), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Recommendations fetches insights, recommendations and quick wins.
func (c *Client) Recommendations(ctx context.Context, userID int) (*RecommendationsData, error) {
	ctx, span := c.tracer.Start(ctx, "recommendations_api_call")
	defer span.End()

	var resp RecommendationsData
	if err := c.getJSON(ctx, fmt.Sprintf("/recommendations/%d", userID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SyncMetrics triggers a backend utilization-metrics refresh job.
func (c *Client) SyncMetrics(ctx context.Context, userID int) (*SyncResponse, error) {
	ctx, span := c.tracer.Start(ctx, "sync_metrics_api_call")
	defer span.End()

	var resp SyncResponse
	if err := c.postJSON(ctx, fmt.Sprintf("/metrics/sync/%d", userID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SyncResources triggers a backend resource-inventory refresh job.
func (c *Client) SyncResources(ctx context.Context, userID int) (*SyncResponse, error) {
	ctx, span := c.tracer.Start(ctx, "sync_resources_api_call")
	defer span.End()

	var resp SyncResponse
	if err := c.postJSON(ctx, fmt.Sprintf("/resources/sync/%d", userID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResourceStats fetches the lightweight resource counters shown on the dashboard.
func (c *Client) ResourceStats(ctx context.Context, userID int) (*SyncStats, error) {
	ctx, span := c.tracer.Start(ctx, "resource_stats_api_call")
	defer span.End()

	var resp SyncStats
	if err := c.getJSON(ctx, fmt.Sprintf("/resources/stats/%d", userID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health probes the backend.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.getJSON(ctx, "/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadOCIConfig uploads provider credentials as a multipart form,
// including the private key file itself.
func (c *Client) UploadOCIConfig(ctx context.Context, cfg OCIConfig) error {
	ctx, span := c.tracer.Start(ctx, "upload_oci_config_api_call")
	defer span.End()

	keyPath, err := expandHome(cfg.PrivateKeyPath)
	if err != nil {
		return err
	}
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"email":        cfg.Email,
		"tenancy_ocid": cfg.TenancyOCID,
		"user_ocid":    cfg.UserOCID,
		"fingerprint":  cfg.Fingerprint,
		"region":       cfg.Region,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	part, err := w.CreateFormFile("private_key_file", filepath.Base(keyPath))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(keyData); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/config/oci", &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	if _, err := c.do(req); err != nil {
		return err
	}

	c.logger.Info("uploaded OCI config", "region", cfg.Region)
	return nil
}

// expandHome resolves a leading ~ in a user-supplied path, since key paths
// are typically written shell-style ("~/.oci/key.pem").
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// getJSON issues a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// postJSON issues a POST with an optional JSON body and decodes the response.
func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("content-type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// do executes the request, records the duration histogram and maps non-2xx
// statuses to errors, preferring the backend's JSON "detail" field.
func (c *Client) do(req *http.Request) ([]byte, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	duration := time.Since(start)
	histogram, err := c.meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err == nil {
		histogram.Record(req.Context(), float64(duration.Milliseconds()))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail errorDetail
		if json.Unmarshal(body, &detail) == nil && detail.Detail != "" {
			return nil, fmt.Errorf("API error: %s - %s", resp.Status, detail.Detail)
		}
		return nil, fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	return body, nil
}

func refreshPath(path string, forceRefresh bool) string {
	if forceRefresh {
		return path + "?force_refresh=true"
	}
	return path
}
