package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/commitsmith/commitsmith/internal/pkg/errors"
)

// ProbeTimeout bounds the reachability checks against local servers.
// Generation requests rely on the transport defaults and carry no timeout.
const ProbeTimeout = 5 * time.Second

// postJSON sends body to url and returns the raw response.
// Transport failures are returned as err with a nil body.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body interface{}) ([]byte, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}
	apperrors.LogBody("Request body", payload)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, httpResp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	apperrors.LogAPIResponse(provider, httpResp.StatusCode, len(raw), time.Since(start))
	apperrors.LogBody("Response body", raw)
	return raw, httpResp.StatusCode, nil
}

// get performs a probe request and returns the body of any answer.
func get(ctx context.Context, client *http.Client, url string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	apperrors.Debug("Probing %s", url)
	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, httpResp.StatusCode, err
	}
	return raw, httpResp.StatusCode, nil
}
