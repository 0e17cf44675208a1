// Package node implements the gRPC client for the blockchain node:
// contract dry runs, transaction submission, account lookups and block
// event retrieval.
package node

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
)

const (
	methodInvokeInstance  = "/auction.v1.Node/InvokeInstance"
	methodSendBlockItem   = "/auction.v1.Node/SendBlockItem"
	methodGetAccountInfo  = "/auction.v1.Node/GetAccountInfo"
	methodGetNextNonce    = "/auction.v1.Node/GetNextNonce"
	methodGetConsensus    = "/auction.v1.Node/GetConsensusInfo"
	methodGetBlockEvents  = "/auction.v1.Node/GetBlockEvents"
	defaultDialTimeout    = 10 * time.Second
	defaultInvokeEnergyCap domain.Energy = 1_000_000
)

// Config holds node connection settings.
type Config struct {
	Endpoint    string
	DialTimeout time.Duration
	CallTimeout time.Duration
	Retry       *RetryConfig // nil means DefaultRetryConfig
}

// Client talks to a single node over gRPC.
type Client struct {
	endpoint    string
	conn        *grpc.ClientConn
	callTimeout time.Duration
	retry       RetryConfig
}

// NewClient dials the node. TLS is selected by the endpoint scheme, the
// scheme itself is stripped before dialing.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	target := cfg.Endpoint
	var opts []grpc.DialOption

	if strings.HasPrefix(target, "https://") || strings.HasSuffix(target, ":443") {
		creds := credentials.NewTLS(&tls.Config{})
		opts = append(opts, grpc.WithTransportCredentials(creds))
		target = strings.TrimPrefix(target, "https://")
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		target = strings.TrimPrefix(target, "http://")
	}

	opts = append(opts, grpc.WithBlock()) // Wait for connection

	dialTimeout := cfg.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = defaultDialTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, err := grpc.DialContext(dialCtx, target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial node endpoint %s: %w", target, err)
	}

	retry := DefaultRetryConfig
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}

	return &Client{
		endpoint:    cfg.Endpoint,
		conn:        conn,
		callTimeout: cfg.CallTimeout,
		retry:       retry,
	}, nil
}

// Conn returns the underlying gRPC connection.
func (c *Client) Conn() *grpc.ClientConn {
	return c.conn
}

// Close cleans up resources.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invokeOnce(ctx context.Context, method string, in, out any) error {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}
	if err := c.conn.Invoke(ctx, method, in, out, callOptions()...); err != nil {
		return fmt.Errorf("node call %s: %w", method, err)
	}
	return nil
}

// invoke retries transient failures with backoff. Submissions must not go
// through here: a retried SendBlockItem could double-submit.
func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return callWithRetry(ctx, c.retry, func(ctx context.Context) error {
		return c.invokeOnce(ctx, method, in, out)
	})
}

// InvokeInstance performs a contract dry run against the last finalized
// block. A rejected invocation is reported in the result, not as an error.
func (c *Client) InvokeInstance(ctx context.Context, req InvokeRequest) (*InvokeResult, error) {
	if req.Energy == 0 {
		req.Energy = defaultInvokeEnergyCap
	}
	var result InvokeResult
	if err := c.invoke(ctx, methodInvokeInstance, &req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendBlockItem submits a signed transaction and returns its hash.
func (c *Client) SendBlockItem(ctx context.Context, req SubmitRequest) (domain.TransactionHash, error) {
	var result SubmitResult
	if err := c.invokeOnce(ctx, methodSendBlockItem, &req, &result); err != nil {
		return "", err
	}
	return result.Hash, nil
}

// GetAccountInfo looks up the registered state of an account.
func (c *Client) GetAccountInfo(ctx context.Context, address domain.AccountAddress) (*AccountInfo, error) {
	var info AccountInfo
	if err := c.invoke(ctx, methodGetAccountInfo, &AccountInfoRequest{Address: address}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetNextNonce returns the next sequence number of an account.
func (c *Client) GetNextNonce(ctx context.Context, address domain.AccountAddress) (domain.Nonce, error) {
	var info AccountInfo
	if err := c.invoke(ctx, methodGetNextNonce, &AccountInfoRequest{Address: address}, &info); err != nil {
		return 0, err
	}
	return info.Nonce, nil
}

// GetConsensusInfo reports the last finalized height.
func (c *Client) GetConsensusInfo(ctx context.Context) (*ConsensusInfo, error) {
	var info ConsensusInfo
	if err := c.invoke(ctx, methodGetConsensus, &struct{}{}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetBlockEvents returns the contract events of one finalized block.
func (c *Client) GetBlockEvents(ctx context.Context, height uint64) ([]domain.ContractEvent, error) {
	var events BlockEvents
	if err := c.invoke(ctx, methodGetBlockEvents, &BlockEventsRequest{Height: height}, &events); err != nil {
		return nil, err
	}
	return events.Events, nil
}
