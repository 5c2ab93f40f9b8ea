package suiclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/halcyon-labs/suipool/types"
)

// rpcFixture serves canned results per JSON-RPC method and records the raw
// requests it saw.
type rpcFixture struct {
	t        *testing.T
	results  map[string]string // method → raw result JSON
	errors   map[string]string // method → raw error JSON
	requests []jsonrpcMessage
}

func newFixture(t *testing.T) (*rpcFixture, *RPCClient) {
	t.Helper()
	f := &rpcFixture{t: t, results: make(map[string]string), errors: make(map[string]string)}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, Dial(srv.URL)
}

func (f *rpcFixture) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" {
		f.t.Errorf("content type: have %q want application/json", ct)
	}
	var msg jsonrpcMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		f.t.Errorf("decode request: %v", err)
		return
	}
	f.requests = append(f.requests, msg)
	if errBody, ok := f.errors[msg.Method]; ok {
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"error":%s}`, msg.ID, errBody)
		return
	}
	result, ok := f.results[msg.Method]
	if !ok {
		f.t.Errorf("unexpected method %q", msg.Method)
		result = "null"
	}
	fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":%s}`, msg.ID, result)
}

func (f *rpcFixture) last() jsonrpcMessage {
	f.t.Helper()
	if len(f.requests) == 0 {
		f.t.Fatal("no request recorded")
	}
	return f.requests[len(f.requests)-1]
}

func TestGetObjectDecodesOwner(t *testing.T) {
	f, client := newFixture(t)
	id := types.MustObjectID("0x0000000000000000000000000000000000000000000000000000000000000042")
	owner := "0x00000000000000000000000000000000000000000000000000000000000000aa"
	f.results["sui_getObject"] = fmt.Sprintf(`{
		"data": {
			"objectId": "%s",
			"version": "7",
			"digest": "9WzS",
			"type": "0x2::coin::Coin<0x2::sui::SUI>",
			"owner": {"AddressOwner": "%s"}
		}
	}`, id.Hex(), owner)

	data, err := client.GetObject(context.Background(), id, ObjectDataOptions{ShowOwner: true, ShowType: true})
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	if data.ObjectID != id {
		t.Fatalf("object id: have %s want %s", data.ObjectID, id)
	}
	if data.Version != 7 {
		t.Fatalf("version: have %d want 7", data.Version)
	}
	if data.Owner == nil || data.Owner.Kind != types.OwnerAddress || data.Owner.Address.Hex() != owner {
		t.Fatalf("owner not decoded: %+v", data.Owner)
	}
	if !data.Owned().IsGasCoin() {
		t.Fatal("gas coin type tag lost")
	}
}

func TestGetObjectBackendError(t *testing.T) {
	f, client := newFixture(t)
	f.results["sui_getObject"] = `{"error": {"code": "notExists"}}`

	id := types.MustObjectID("0x01")
	_, err := client.GetObject(context.Background(), id, ObjectDataOptions{})
	if err == nil || !strings.Contains(err.Error(), "notExists") {
		t.Fatalf("have %v want notExists error", err)
	}
}

func TestListOwnedObjectsPaging(t *testing.T) {
	f, client := newFixture(t)
	f.results["suix_getOwnedObjects"] = `{
		"data": [
			{"data": {"objectId": "0x0000000000000000000000000000000000000000000000000000000000000001", "version": 1, "digest": "aa"}},
			{"error": {"code": "deleted"}}
		],
		"nextCursor": "0x01",
		"hasNextPage": true
	}`

	owner := types.MustAddress("0xbb")
	page, err := client.ListOwnedObjects(context.Background(), owner, nil)
	if err != nil {
		t.Fatalf("ListOwnedObjects: %v", err)
	}
	if len(page.Data) != 2 {
		t.Fatalf("have %d entries want 2", len(page.Data))
	}
	if page.Data[0].Data == nil || page.Data[1].Error == nil {
		t.Fatalf("entry cells miswired: %+v", page.Data)
	}
	if !page.HasNextPage || page.NextCursor == nil || *page.NextCursor != "0x01" {
		t.Fatalf("cursor not decoded: %+v", page)
	}

	req := f.last()
	if req.Method != "suix_getOwnedObjects" {
		t.Fatalf("method: have %q", req.Method)
	}
	if len(req.Params) != 4 {
		t.Fatalf("have %d params want 4", len(req.Params))
	}
}

func TestReferenceGasPrice(t *testing.T) {
	f, client := newFixture(t)
	f.results["suix_getReferenceGasPrice"] = `"1000"`

	price, err := client.ReferenceGasPrice(context.Background())
	if err != nil {
		t.Fatalf("ReferenceGasPrice: %v", err)
	}
	if price != 1000 {
		t.Fatalf("have %d want 1000", price)
	}
}

func TestDryRunTransactionEncodesBase64(t *testing.T) {
	f, client := newFixture(t)
	f.results["sui_dryRunTransactionBlock"] = `{"effects": {"status": {"status": "failure", "error": "InsufficientGas"}}}`

	raw := []byte{0xde, 0xad, 0xbe, 0xef}
	res, err := client.DryRunTransaction(context.Background(), raw)
	if err != nil {
		t.Fatalf("DryRunTransaction: %v", err)
	}
	if res.Effects.Status.Success() || res.Effects.Status.Error != "InsufficientGas" {
		t.Fatalf("effects not decoded: %+v", res.Effects)
	}

	req := f.last()
	if have, want := req.Params[0], base64.StdEncoding.EncodeToString(raw); have != want {
		t.Fatalf("tx bytes param: have %v want %q", have, want)
	}
}

func TestExecuteTransactionParams(t *testing.T) {
	f, client := newFixture(t)
	f.results["sui_executeTransactionBlock"] = `{"digest": "D1", "effects": {"status": {"status": "success"}}}`

	res, err := client.ExecuteTransaction(context.Background(), ExecuteRequest{
		TxBytes:     []byte{0x01},
		Signatures:  []string{"sig"},
		Options:     ExecuteOptions{ShowEffects: true},
		RequestType: RequestTypeWaitForLocalExecution,
	})
	if err != nil {
		t.Fatalf("ExecuteTransaction: %v", err)
	}
	if res.Digest != "D1" || res.Effects == nil || !res.Effects.Status.Success() {
		t.Fatalf("result not decoded: %+v", res)
	}

	req := f.last()
	if len(req.Params) != 4 {
		t.Fatalf("have %d params want 4", len(req.Params))
	}
	if req.Params[3] != RequestTypeWaitForLocalExecution {
		t.Fatalf("request type param: %v", req.Params[3])
	}
}

func TestCallContextRPCError(t *testing.T) {
	f, client := newFixture(t)
	f.errors["suix_getReferenceGasPrice"] = `{"code": -32602, "message": "invalid params"}`

	_, err := client.ReferenceGasPrice(context.Background())
	if err == nil || !strings.Contains(err.Error(), "rpc error -32602") {
		t.Fatalf("have %v want rpc error -32602", err)
	}
}

func TestCallContextHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := Dial(srv.URL)
	err := client.CallContext(context.Background(), nil, "suix_getReferenceGasPrice")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("have %v want http status 429", err)
	}
}

func TestRequestIDsIncrease(t *testing.T) {
	f, client := newFixture(t)
	f.results["suix_getReferenceGasPrice"] = `"1"`

	for i := 0; i < 3; i++ {
		if _, err := client.ReferenceGasPrice(context.Background()); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	for i := 1; i < len(f.requests); i++ {
		if f.requests[i].ID <= f.requests[i-1].ID {
			t.Fatalf("request ids not increasing: %d then %d", f.requests[i-1].ID, f.requests[i].ID)
		}
	}
}

func TestRateLimitThrottles(t *testing.T) {
	f := &rpcFixture{t: t, results: make(map[string]string), errors: make(map[string]string)}
	f.results["suix_getReferenceGasPrice"] = `"1"`
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	// 10 rps with burst 1: three calls need at least two refill periods.
	client := Dial(srv.URL, WithRateLimit(10, 1))
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.ReferenceGasPrice(context.Background()); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Fatalf("three calls finished in %v, limiter not applied", elapsed)
	}
}

func TestRateLimitHonoursCancellation(t *testing.T) {
	f := &rpcFixture{t: t, results: make(map[string]string), errors: make(map[string]string)}
	f.results["suix_getReferenceGasPrice"] = `"1"`
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	// Burst of one: the first call consumes the token, the second waits ~100s.
	client := Dial(srv.URL, WithRateLimit(0.01, 1))
	if _, err := client.ReferenceGasPrice(context.Background()); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := client.ReferenceGasPrice(ctx); err == nil {
		t.Fatal("expected context error while waiting on the limiter")
	} else if !strings.Contains(err.Error(), "context") {
		t.Fatalf("have %v want context error", err)
	}
}
