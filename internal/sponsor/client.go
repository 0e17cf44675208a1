package sponsor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
)

const defaultClientTimeout = 30 * time.Second

// Client calls the sponsor service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a sponsor client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = defaultClientTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SubmitBid sends a signed permit to the sponsor and returns the hash of
// the sponsored transaction.
func (c *Client) SubmitBid(ctx context.Context, signed SignedPermit) (domain.TransactionHash, error) {
	data, err := json.Marshal(signed)
	if err != nil {
		return "", fmt.Errorf("sponsor: marshal permit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/bid", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("sponsor: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sponsor call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("sponsor: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sponsor http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		Hash domain.TransactionHash `json:"hash"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("sponsor: parse response: %w", err)
	}
	return result.Hash, nil
}
