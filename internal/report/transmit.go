package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/IshaanBansal2006/p5-sub000/internal/types"
)

// Transmitter submits error collections to the triage service endpoint.
type Transmitter struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewTransmitter creates a transmitter with its own bounded HTTP client so
// a slow endpoint can never hang the task run.
func NewTransmitter(endpoint string, timeout time.Duration, logger *zap.Logger) *Transmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Transmitter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Send posts the collection as JSON. It returns an error for the caller to
// log; callers treat any failure as non-fatal since error reporting is
// best-effort.
func (t *Transmitter) Send(ctx context.Context, col types.ErrorCollection) error {
	body, err := json.Marshal(col)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("submit errors: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("triage service returned %s", resp.Status)
	}

	t.logger.Info("error collection submitted",
		zap.String("session", col.SessionID),
		zap.String("repository", col.Repository.Key()),
		zap.Int("errors", col.TotalErrors))
	return nil
}
