package contract

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
	"github.com/BukiOffor/concordium-dapp-examples/internal/node"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeNode struct {
	invokeResult *node.InvokeResult
	invokeErr    error
	invoked      []node.InvokeRequest

	submitted  []node.SubmitRequest
	submitHash domain.TransactionHash
	nonce      domain.Nonce
}

func (f *fakeNode) InvokeInstance(ctx context.Context, req node.InvokeRequest) (*node.InvokeResult, error) {
	f.invoked = append(f.invoked, req)
	if f.invokeErr != nil {
		return nil, f.invokeErr
	}
	return f.invokeResult, nil
}

func (f *fakeNode) SendBlockItem(ctx context.Context, req node.SubmitRequest) (domain.TransactionHash, error) {
	f.submitted = append(f.submitted, req)
	return f.submitHash, nil
}

func (f *fakeNode) GetNextNonce(ctx context.Context, address domain.AccountAddress) (domain.Nonce, error) {
	return f.nonce, nil
}

type fakeSigner struct {
	account domain.AccountAddress
	key     ed25519.PrivateKey
}

func newFakeSigner(t *testing.T) *fakeSigner {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	raw := make([]byte, domain.AccountAddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("rand failed: %v", err)
	}
	return &fakeSigner{
		account: domain.AccountAddress(hex.EncodeToString(raw)),
		key:     priv,
	}
}

func (s *fakeSigner) Account() (domain.AccountAddress, bool) {
	return s.account, !s.account.IsZero()
}

func (s *fakeSigner) SignMessage(payload []byte) ([]byte, error) {
	return ed25519.Sign(s.key, payload), nil
}

func successResult(returnValue string, used domain.Energy) *node.InvokeResult {
	return &node.InvokeResult{
		Tag:         node.OutcomeSuccess,
		ReturnValue: json.RawMessage(returnValue),
		UsedEnergy:  used,
	}
}

// =============================================================================
// Update flow
// =============================================================================

func TestAddItem_EnergyBudget(t *testing.T) {
	n := &fakeNode{
		invokeResult: successResult(`{}`, 2345),
		submitHash:   "abc123",
		nonce:        7,
	}
	c := NewClient(n, domain.ContractAddress{Index: 7399})

	hash, err := c.AddItem(context.Background(), newFakeSigner(t), domain.AddItemParams{
		Name:       "painting",
		MinimumBid: 10,
		TokenID:    "01",
	})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if hash != "abc123" {
		t.Errorf("Expected hash abc123, got %s", hash)
	}

	if len(n.submitted) != 1 {
		t.Fatalf("Expected 1 submission, got %d", len(n.submitted))
	}
	sub := n.submitted[0]
	if sub.Energy != 2345+EnergyEpsilon {
		t.Errorf("Expected energy %d, got %d", 2345+EnergyEpsilon, sub.Energy)
	}
	if sub.Nonce != 7 {
		t.Errorf("Expected nonce 7, got %d", sub.Nonce)
	}
	if sub.Entrypoint != EntrypointAddItem {
		t.Errorf("Expected entrypoint %s, got %s", EntrypointAddItem, sub.Entrypoint)
	}
	if len(sub.Signature) == 0 {
		t.Error("Expected submission to be signed")
	}
}

func TestAddItem_DryRunFailureNeverSubmits(t *testing.T) {
	n := &fakeNode{
		invokeResult: &node.InvokeResult{
			Tag:          node.OutcomeFailure,
			RejectReason: domain.RejectBidNotGreaterCurrentBid,
			RawResponse:  json.RawMessage(`{"tag":"failure"}`),
		},
	}
	c := NewClient(n, domain.ContractAddress{Index: 7399})

	_, err := c.AddItem(context.Background(), newFakeSigner(t), domain.AddItemParams{})
	if !errors.Is(err, ErrDryRunRejected) {
		t.Fatalf("Expected ErrDryRunRejected, got %v", err)
	}
	if len(n.submitted) != 0 {
		t.Fatalf("Expected no submission after failed dry run, got %d", len(n.submitted))
	}
	// The decoded reason name must appear in the error.
	if got := err.Error(); !strings.Contains(got, "BidNotGreaterCurrentBid") {
		t.Errorf("Expected decoded reject reason in error, got %q", got)
	}
}

func TestAddItem_MissingReturnValueNeverSubmits(t *testing.T) {
	n := &fakeNode{
		invokeResult: &node.InvokeResult{Tag: node.OutcomeSuccess, UsedEnergy: 100},
	}
	c := NewClient(n, domain.ContractAddress{Index: 7399})

	_, err := c.AddItem(context.Background(), newFakeSigner(t), domain.AddItemParams{})
	if !errors.Is(err, ErrNoReturnValue) {
		t.Fatalf("Expected ErrNoReturnValue, got %v", err)
	}
	if len(n.submitted) != 0 {
		t.Fatalf("Expected no submission, got %d", len(n.submitted))
	}
}

func TestBid_NoAccountConnected(t *testing.T) {
	n := &fakeNode{invokeResult: successResult(`{}`, 1)}
	c := NewClient(n, domain.ContractAddress{Index: 7399})

	signer := &fakeSigner{} // zero account
	if _, err := c.Bid(context.Background(), signer, domain.BidParams{}); err == nil {
		t.Fatal("Expected error when no account is connected")
	}
	if len(n.invoked) != 0 {
		t.Errorf("Expected no dry run without an account, got %d", len(n.invoked))
	}
}

// =============================================================================
// View flow
// =============================================================================

func TestViewItemState_DecodesReturnValue(t *testing.T) {
	n := &fakeNode{
		invokeResult: successResult(`{"name":"painting","auctionState":"not_sold_yet","highestBid":42}`, 10),
	}
	c := NewClient(n, domain.ContractAddress{Index: 7399})

	state, err := c.ViewItemState(context.Background(), 0)
	if err != nil {
		t.Fatalf("ViewItemState failed: %v", err)
	}
	if state.Name != "painting" {
		t.Errorf("Expected name painting, got %s", state.Name)
	}
	if state.Phase != domain.PhaseNotSoldYet {
		t.Errorf("Expected phase not_sold_yet, got %s", state.Phase)
	}
	if state.HighestBid != 42 {
		t.Errorf("Expected highest bid 42, got %d", state.HighestBid)
	}
}

func TestViewItemState_DryRunFailure(t *testing.T) {
	n := &fakeNode{
		invokeResult: &node.InvokeResult{
			Tag:          node.OutcomeFailure,
			RejectReason: domain.RejectNoItem,
		},
	}
	c := NewClient(n, domain.ContractAddress{Index: 7399})

	_, err := c.ViewItemState(context.Background(), 99)
	if !errors.Is(err, ErrDryRunRejected) {
		t.Fatalf("Expected ErrDryRunRejected, got %v", err)
	}
}

func TestViewItemState_DecodeFailureIsDistinct(t *testing.T) {
	n := &fakeNode{
		invokeResult: successResult(`not-json`, 10),
	}
	c := NewClient(n, domain.ContractAddress{Index: 7399})

	_, err := c.ViewItemState(context.Background(), 0)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("Expected ErrDecode, got %v", err)
	}
	if errors.Is(err, ErrDryRunRejected) {
		t.Error("Decode failure must be distinct from dry-run rejection")
	}
}

func TestView_DecodesFullState(t *testing.T) {
	n := &fakeNode{
		invokeResult: successResult(`{"itemCount":2,"items":{"0":{"name":"a"},"1":{"name":"b"}}}`, 10),
	}
	c := NewClient(n, domain.ContractAddress{Index: 7399})

	state, err := c.View(context.Background())
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if state.ItemCount != 2 || len(state.Items) != 2 {
		t.Errorf("Expected 2 items, got count=%d len=%d", state.ItemCount, len(state.Items))
	}
}
