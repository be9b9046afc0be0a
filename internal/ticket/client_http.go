package ticket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"firstaccess/pkg/masking"
)

// HTTPDispatcher posts delivery requests to the real channel with a
// bounded per-call timeout.
type HTTPDispatcher struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPDispatcher builds a dispatcher for the given base URL.
func NewHTTPDispatcher(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPDispatcher {
	return &HTTPDispatcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Send implements Dispatcher. The token itself is never logged.
func (d *HTTPDispatcher) Send(ctx context.Context, dispatch DispatchRequest) error {
	payload, err := json.Marshal(dispatch)
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/ticket/v4/email", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.ErrorContext(ctx, "token dispatch request failed",
			"subject_id", masking.Document(dispatch.SubjectID),
			"address", masking.Email(dispatch.Address),
			"error", err.Error(),
		)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var result DispatchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK || !result.Success {
		d.logger.ErrorContext(ctx, "token dispatch rejected",
			"subject_id", masking.Document(dispatch.SubjectID),
			"status", resp.StatusCode,
			"message", result.Message,
		)
		if result.Message != "" {
			return fmt.Errorf("%w: %s", ErrRejected, result.Message)
		}
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	return nil
}
