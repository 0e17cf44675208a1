package sponsor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
	"github.com/BukiOffor/concordium-dapp-examples/internal/indexing/metrics"
)

func newTestHandler(t *testing.T, n *fakeNode, limiter RateLimiter) (*httptest.Server, *testAccount) {
	t.Helper()
	svc, _ := newTestService(t, n, limiter)
	mux := http.NewServeMux()
	NewHandler(svc).Register(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	user := newTestAccount(t)
	n.register(user)
	return ts, user
}

func postBid(t *testing.T, ts *httptest.Server, body []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/bid", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/bid failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleBid_Accepted(t *testing.T) {
	n := &fakeNode{dryRun: successDryRun(), nextNonce: 7}
	ts, user := newTestHandler(t, n, nil)

	accepted := testutil.ToFloat64(metrics.SponsoredBidsTotal.WithLabelValues("accepted"))

	signed := user.sign(t, Permit{
		Params: domain.BidParams{ItemIndex: 1, Amount: 50, TokenID: "01"},
		Expiry: time.Now().Add(time.Hour),
	})
	body, err := json.Marshal(signed)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	resp := postBid(t, ts, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Hash domain.TransactionHash `json:"hash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if result.Hash == "" {
		t.Error("Expected non-empty transaction hash")
	}

	got := testutil.ToFloat64(metrics.SponsoredBidsTotal.WithLabelValues("accepted"))
	if got != accepted+1 {
		t.Errorf("Expected accepted counter %v, got %v", accepted+1, got)
	}
}

func TestHandleBid_TamperedPermitIsRejected(t *testing.T) {
	n := &fakeNode{dryRun: successDryRun()}
	ts, user := newTestHandler(t, n, nil)

	rejected := testutil.ToFloat64(metrics.SponsoredBidsTotal.WithLabelValues("rejected"))

	signed := user.sign(t, Permit{
		Params: domain.BidParams{ItemIndex: 1, Amount: 50},
		Expiry: time.Now().Add(time.Hour),
	})
	signed.Permit.Params.Amount = 999 // tamper after signing
	body, _ := json.Marshal(signed)

	resp := postBid(t, ts, body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}
	if len(n.submitted) != 0 {
		t.Error("Expected no submission for tampered permit")
	}

	got := testutil.ToFloat64(metrics.SponsoredBidsTotal.WithLabelValues("rejected"))
	if got != rejected+1 {
		t.Errorf("Expected rejected counter %v, got %v", rejected+1, got)
	}
}

func TestHandleBid_RateLimited(t *testing.T) {
	n := &fakeNode{dryRun: successDryRun()}
	ts, user := newTestHandler(t, n, &fakeLimiter{limit: 0})

	signed := user.sign(t, Permit{
		Params: domain.BidParams{ItemIndex: 1, Amount: 50},
		Expiry: time.Now().Add(time.Hour),
	})
	body, _ := json.Marshal(signed)

	resp := postBid(t, ts, body)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", resp.StatusCode)
	}
}

func TestHandleBid_MalformedBody(t *testing.T) {
	n := &fakeNode{dryRun: successDryRun()}
	ts, _ := newTestHandler(t, n, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+"/v1/bid", bytes.NewReader([]byte("{not json")))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}
}
