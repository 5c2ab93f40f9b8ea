package suiclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/halcyon-labs/suipool/params"
	"github.com/halcyon-labs/suipool/types"
)

// RPCClient talks JSON-RPC 2.0 to a fullnode over HTTP. The zero value is
// not usable; construct with Dial or NewRPCClient.
type RPCClient struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter // nil when unlimited
	reqID    uint64
}

var _ Client = (*RPCClient)(nil)

// Option configures an RPCClient.
type Option func(*RPCClient)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(rc *RPCClient) { rc.client = c }
}

// WithRateLimit throttles outgoing requests to rps requests per second.
// Public fullnode endpoints enforce per-IP limits; the client-side limiter
// avoids burning retries on 429 responses.
func WithRateLimit(rps float64, burst int) Option {
	return func(rc *RPCClient) { rc.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// Dial connects a client to the given URL.
func Dial(rawurl string, opts ...Option) *RPCClient {
	return NewRPCClient(rawurl, opts...)
}

// NewRPCClient creates a client for the given fullnode endpoint.
func NewRPCClient(endpoint string, opts ...Option) *RPCClient {
	rc := &RPCClient{endpoint: endpoint, client: http.DefaultClient}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

type jsonrpcMessage struct {
	Version string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Method  string          `json:"method,omitempty"`
	Params  []interface{}   `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonError      `json:"error,omitempty"`
}

type jsonError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *jsonError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// CallContext performs a JSON-RPC call with the given arguments, decoding the
// result into result unless it is nil.
func (rc *RPCClient) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if rc.limiter != nil {
		if err := rc.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	msg := jsonrpcMessage{
		Version: "2.0",
		ID:      atomic.AddUint64(&rc.reqID, 1),
		Method:  method,
		Params:  args,
	}
	if msg.Params == nil {
		msg.Params = []interface{}{}
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rc.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := rc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s: http status %d: %s", method, resp.StatusCode, bytes.TrimSpace(body))
	}
	var reply jsonrpcMessage
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if reply.Error != nil {
		return reply.Error
	}
	if result == nil {
		return nil
	}
	if len(reply.Result) == 0 {
		return fmt.Errorf("%s: empty result", method)
	}
	return json.Unmarshal(reply.Result, result)
}

// ListOwnedObjects returns one page of objects owned by owner.
func (rc *RPCClient) ListOwnedObjects(ctx context.Context, owner types.Address, cursor *string) (*ObjectPage, error) {
	query := map[string]interface{}{
		"options": map[string]bool{"showType": true, "showOwner": true},
	}
	var page ObjectPage
	err := rc.CallContext(ctx, &page, "suix_getOwnedObjects", owner, query, cursor, params.OwnedObjectsPageSize)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetObject fetches one object with the requested detail options.
func (rc *RPCClient) GetObject(ctx context.Context, id types.ObjectID, opts ObjectDataOptions) (*ObjectData, error) {
	var entry ObjectEntry
	if err := rc.CallContext(ctx, &entry, "sui_getObject", id, opts); err != nil {
		return nil, err
	}
	if entry.Error != nil {
		return nil, fmt.Errorf("object %s: backend error %s", id, entry.Error.Code)
	}
	if entry.Data == nil {
		return nil, fmt.Errorf("object %s: empty response", id)
	}
	return entry.Data, nil
}

// GetCoins returns one page of coins of coinType owned by owner.
func (rc *RPCClient) GetCoins(ctx context.Context, owner types.Address, coinType string, cursor *string) (*CoinPage, error) {
	var page CoinPage
	err := rc.CallContext(ctx, &page, "suix_getCoins", owner, coinType, cursor, params.OwnedObjectsPageSize)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ReferenceGasPrice returns the current epoch reference gas price.
func (rc *RPCClient) ReferenceGasPrice(ctx context.Context) (uint64, error) {
	var price string
	if err := rc.CallContext(ctx, &price, "suix_getReferenceGasPrice"); err != nil {
		return 0, err
	}
	var out uint64
	if _, err := fmt.Sscanf(price, "%d", &out); err != nil {
		return 0, fmt.Errorf("invalid reference gas price %q: %w", price, err)
	}
	return out, nil
}

// DryRunTransaction simulates serialized transaction bytes.
func (rc *RPCClient) DryRunTransaction(ctx context.Context, txBytes []byte) (*DryRunResult, error) {
	var res DryRunResult
	enc := base64.StdEncoding.EncodeToString(txBytes)
	if err := rc.CallContext(ctx, &res, "sui_dryRunTransactionBlock", enc); err != nil {
		return nil, err
	}
	return &res, nil
}

// ExecuteTransaction submits signed transaction bytes.
func (rc *RPCClient) ExecuteTransaction(ctx context.Context, req ExecuteRequest) (*TransactionResult, error) {
	var res TransactionResult
	enc := base64.StdEncoding.EncodeToString(req.TxBytes)
	err := rc.CallContext(ctx, &res, "sui_executeTransactionBlock",
		enc, req.Signatures, req.Options, req.RequestType)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
