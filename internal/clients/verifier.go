package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"adaptive-truth/internal/config"
	"adaptive-truth/internal/logger"
	"adaptive-truth/internal/models"

	"github.com/sirupsen/logrus"
)

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 4 << 20

type correlationKey struct{}

// WithCorrelationID attaches a correlation ID that is forwarded upstream
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationKey{}, correlationID)
}

// CorrelationIDFromContext extracts the correlation ID, if any
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok {
		return id
	}
	return ""
}

// VerificationClientInterface defines the interface for the verification service client
type VerificationClientInterface interface {
	Verify(ctx context.Context, claim models.Claim) (*models.VerificationResult, error)
	Ping(ctx context.Context) error
}

// VerificationClient handles communication with the claim verification service
type VerificationClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewVerificationClient creates a new verification service client
func NewVerificationClient(cfg *config.Config) *VerificationClient {
	return &VerificationClient{
		baseURL: cfg.VerifyServiceURL,
		httpClient: &http.Client{
			Timeout: cfg.VerifyTimeout,
		},
		logger: logger.Log,
	}
}

// BaseURL returns the service location the client talks to
func (c *VerificationClient) BaseURL() string {
	return c.baseURL
}

// Verify sends exactly one claim to POST /verify. There is no retry.
func (c *VerificationClient) Verify(ctx context.Context, claim models.Claim) (*models.VerificationResult, error) {
	start := time.Now()
	correlationID := CorrelationIDFromContext(ctx)

	c.logger.WithFields(map[string]interface{}{
		"correlation_id": correlationID,
		"claim_length":   len(claim),
	}).Info("Sending claim for verification")

	requestBody, err := json.Marshal(models.VerificationRequest{Claim: claim.String()})
	if err != nil {
		return nil, NewTransportError("failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", bytes.NewReader(requestBody))
	if err != nil {
		return nil, NewTransportError("failed to create HTTP request", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if correlationID != "" {
		httpReq.Header.Set("X-Correlation-ID", correlationID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewTransportError("verification request failed", err)
	}
	defer resp.Body.Close()

	// Non-2xx bodies are not required to be parseable, so they are not read.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithFields(map[string]interface{}{
			"correlation_id": correlationID,
			"status_code":    resp.StatusCode,
			"duration_ms":    time.Since(start).Milliseconds(),
		}).Warn("Verification service returned an error status")
		return nil, NewAPIError(resp.StatusCode)
	}

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, NewTransportError("failed to read response body", err)
	}

	result, err := models.DecodeVerificationResult(responseBody)
	if err != nil {
		return nil, NewTransportError("malformed verification response", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"correlation_id": correlationID,
		"duration_ms":    time.Since(start).Milliseconds(),
		"verdict":        result.Verdict,
		"evidence_count": len(result.Evidence),
	}).Info("Verification completed")

	return result, nil
}

// Ping checks that the service root answers with a 2xx status
func (c *VerificationClient) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return NewTransportError("failed to create HTTP request", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return NewTransportError("verification service unreachable", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("verification service health check: %w", NewAPIError(resp.StatusCode))
	}
	return nil
}
