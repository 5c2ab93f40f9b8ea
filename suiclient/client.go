// Package suiclient provides a typed client for the Sui fullnode JSON-RPC API.
// The Client interface is the contract consumed by the pool and executor
// layers; RPCClient implements it over HTTP.
package suiclient

import (
	"context"

	"github.com/halcyon-labs/suipool/types"
)

// Client is the RPC surface the pool layer depends on. Implementations must
// be safe for concurrent use.
type Client interface {
	// ListOwnedObjects returns one page of the objects owned by owner,
	// starting at cursor (nil for the first page).
	ListOwnedObjects(ctx context.Context, owner types.Address, cursor *string) (*ObjectPage, error)

	// GetObject fetches one object with the requested detail options.
	GetObject(ctx context.Context, id types.ObjectID, opts ObjectDataOptions) (*ObjectData, error)

	// GetCoins returns one page of coins of coinType owned by owner.
	GetCoins(ctx context.Context, owner types.Address, coinType string, cursor *string) (*CoinPage, error)

	// ReferenceGasPrice returns the current epoch reference gas price.
	ReferenceGasPrice(ctx context.Context) (uint64, error)

	// DryRunTransaction simulates serialized transaction bytes without
	// committing them.
	DryRunTransaction(ctx context.Context, txBytes []byte) (*DryRunResult, error)

	// ExecuteTransaction submits signed transaction bytes and waits for the
	// requested response detail.
	ExecuteTransaction(ctx context.Context, req ExecuteRequest) (*TransactionResult, error)
}

// ObjectDataOptions selects which fields GetObject populates.
type ObjectDataOptions struct {
	ShowOwner bool `json:"showOwner,omitempty"`
	ShowType  bool `json:"showType,omitempty"`
}

// ObjectData is the decoded payload of one object query or page entry.
type ObjectData struct {
	ObjectID types.ObjectID `json:"objectId"`
	Version  types.Version  `json:"version"`
	Digest   types.Digest   `json:"digest"`
	Type     string         `json:"type,omitempty"`
	Owner    *types.Owner   `json:"owner,omitempty"`
}

// Owned converts the entry into a registry object.
func (d *ObjectData) Owned() types.OwnedObject {
	return types.OwnedObject{ObjectID: d.ObjectID, Digest: d.Digest, Version: d.Version, Type: d.Type}
}

// ObjectError is the per-entry error cell of a page response.
type ObjectError struct {
	Code     string          `json:"code"`
	ObjectID *types.ObjectID `json:"object_id,omitempty"`
}

// ObjectEntry is one cell of an owned-objects page: exactly one of Data and
// Error is set.
type ObjectEntry struct {
	Data  *ObjectData  `json:"data,omitempty"`
	Error *ObjectError `json:"error,omitempty"`
}

// ObjectPage is one page of the paginated owned-objects endpoint.
type ObjectPage struct {
	Data        []ObjectEntry `json:"data"`
	NextCursor  *string       `json:"nextCursor,omitempty"`
	HasNextPage bool          `json:"hasNextPage"`
}

// Coin is one entry of a coin page.
type Coin struct {
	CoinType     string         `json:"coinType"`
	CoinObjectID types.ObjectID `json:"coinObjectId"`
	Version      types.Version  `json:"version"`
	Digest       types.Digest   `json:"digest"`
	Balance      uint64         `json:"balance,string"`
}

// Reference returns the coin's exact-version object reference.
func (c *Coin) Reference() types.ObjectRef {
	return types.ObjectRef{ObjectID: c.CoinObjectID, Version: c.Version, Digest: c.Digest}
}

// CoinPage is one page of the paginated coins endpoint.
type CoinPage struct {
	Data        []Coin  `json:"data"`
	NextCursor  *string `json:"nextCursor,omitempty"`
	HasNextPage bool    `json:"hasNextPage"`
}

// DryRunResult is the decoded response of a transaction dry run.
type DryRunResult struct {
	Effects types.TransactionEffects `json:"effects"`
}

// ExecuteOptions selects the response detail of a transaction submission.
type ExecuteOptions struct {
	ShowEffects bool `json:"showEffects,omitempty"`
}

// Request types for transaction submission.
const (
	RequestTypeWaitForLocalExecution = "WaitForLocalExecution"
	RequestTypeWaitForEffectsCert    = "WaitForEffectsCert"
)

// ExecuteRequest carries one signed transaction submission.
type ExecuteRequest struct {
	TxBytes     []byte
	Signatures  []string
	Options     ExecuteOptions
	RequestType string
}

// TransactionResult is the decoded response of a transaction submission.
type TransactionResult struct {
	Digest  types.Digest              `json:"digest"`
	Effects *types.TransactionEffects `json:"effects,omitempty"`
}
