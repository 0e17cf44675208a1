// Package verifier implements the HTTP client for the verifier service:
// challenge retrieval, statement retrieval, and the proof-to-token exchange.
package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Client calls the verifier's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a verifier client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// GetStatement fetches the statement the verifier demands proofs for.
func (c *Client) GetStatement(ctx context.Context) (domain.Statement, error) {
	var resp statementResponse
	if err := c.get(ctx, "/v1/statement", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Statement, nil
}

// GetChallenge fetches a fresh single-use challenge for the account.
func (c *Client) GetChallenge(ctx context.Context, account domain.AccountAddress) (domain.Challenge, error) {
	query := url.Values{"address": {string(account)}}
	var resp challengeResponse
	if err := c.get(ctx, "/v1/challenge", query, &resp); err != nil {
		return "", err
	}
	return resp.Challenge, nil
}

// Authorize exchanges a proof for an auth token. The challenge is consumed
// by this call whether or not the proof verifies.
func (c *Client) Authorize(ctx context.Context, proof *domain.IDProof) (domain.AuthToken, error) {
	var resp authorizeResponse
	if err := c.post(ctx, "/v1/authorize", authorizeRequest{Proof: proof}, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Wire types shared with the server.

type statementResponse struct {
	Statement domain.Statement `json:"statement"`
}

type challengeResponse struct {
	Challenge domain.Challenge `json:"challenge"`
}

type authorizeRequest struct {
	Proof *domain.IDProof `json:"proof"`
}

type authorizeResponse struct {
	Token domain.AuthToken `json:"token"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("verifier call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("verifier http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
