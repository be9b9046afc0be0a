package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"firstaccess/pkg/masking"
)

// HTTPClient talks to the real user directory over HTTP with a bounded
// per-call timeout.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPClient builds a directory client for the given base URL.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Lookup fetches user details for (subjectID, issuer). A 404 maps to
// ErrNotFound; any other non-200 status or transport error maps to
// ErrUnavailable.
func (c *HTTPClient) Lookup(ctx context.Context, subjectID, issuer string) (*UserDetail, error) {
	endpoint := fmt.Sprintf("%s/users/%s?creditorName=%s",
		c.baseURL, url.PathEscape(subjectID), url.QueryEscape(issuer))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "user directory request failed",
			"subject_id", masking.Document(subjectID),
			"error", err.Error(),
		)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		c.logger.ErrorContext(ctx, "user directory returned unexpected status",
			"subject_id", masking.Document(subjectID),
			"status", resp.StatusCode,
		)
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var detail UserDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return &detail, nil
}
