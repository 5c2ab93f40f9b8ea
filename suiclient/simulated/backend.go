// Package simulated provides an in-memory fullnode backend implementing the
// suiclient.Client interface. It tracks owned objects per address, pages
// them out like the real endpoint, and applies scripted or default effects
// on execution. Intended for tests and local demos.
package simulated

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/halcyon-labs/suipool/params"
	"github.com/halcyon-labs/suipool/signer"
	"github.com/halcyon-labs/suipool/suiclient"
	"github.com/halcyon-labs/suipool/txbuilder"
	"github.com/halcyon-labs/suipool/types"
)

// DryRunHook lets a test script the dry-run verdict for a transaction.
type DryRunHook func(sum *txbuilder.Summary) *types.ExecutionStatus

// ExecuteHook lets a test replace the default effects of an execution.
type ExecuteHook func(sum *txbuilder.Summary) (*types.TransactionEffects, error)

type record struct {
	obj   types.OwnedObject
	owner types.Owner
}

// Backend is an in-memory chain state behind the suiclient.Client interface.
// All methods are safe for concurrent use.
type Backend struct {
	mu      sync.Mutex
	records map[types.ObjectID]*record
	seq     uint64 // object id / digest sequence

	pageSize  int
	gasPrice  uint64
	execDelay time.Duration

	pageErr *suiclient.ObjectError // injected into the next page, once

	dryRunHook  DryRunHook
	executeHook ExecuteHook

	gasLog [][]types.ObjectRef // gas payment of every committed tx
}

var _ suiclient.Client = (*Backend)(nil)

// NewBackend creates an empty simulated backend.
func NewBackend() *Backend {
	return &Backend{
		records:  make(map[types.ObjectID]*record),
		pageSize: int(params.OwnedObjectsPageSize),
		gasPrice: 1000,
	}
}

// SetPageSize overrides the owned-objects page size.
func (b *Backend) SetPageSize(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pageSize = n
}

// SetExecDelay makes every execution take at least d, to simulate slow
// transactions.
func (b *Backend) SetExecDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.execDelay = d
}

// SetDryRunHook scripts dry-run verdicts.
func (b *Backend) SetDryRunHook(h DryRunHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dryRunHook = h
}

// SetExecuteHook scripts execution effects.
func (b *Backend) SetExecuteHook(h ExecuteHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.executeHook = h
}

// InjectPageError makes the next owned-objects page carry an error cell.
func (b *Backend) InjectPageError(code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pageErr = &suiclient.ObjectError{Code: code}
}

// GasLog returns the gas payment of every committed transaction, in commit
// order.
func (b *Backend) GasLog() [][]types.ObjectRef {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]types.ObjectRef, len(b.gasLog))
	copy(out, b.gasLog)
	return out
}

func (b *Backend) nextID() types.ObjectID {
	b.seq++
	return types.BytesToObjectID([]byte(fmt.Sprintf("obj-%06d", b.seq)))
}

func (b *Backend) nextDigest() types.Digest {
	b.seq++
	return types.Digest(fmt.Sprintf("digest-%06d", b.seq))
}

// CreateObject adds an address-owned object of the given type and returns
// its id.
func (b *Backend) CreateObject(owner types.Address, typeTag string) types.ObjectID {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID()
	b.records[id] = &record{
		obj:   types.OwnedObject{ObjectID: id, Digest: b.nextDigest(), Version: 1, Type: typeTag},
		owner: types.Owner{Kind: types.OwnerAddress, Address: owner},
	}
	return id
}

// CreateGasCoins adds n gas coins owned by owner.
func (b *Backend) CreateGasCoins(owner types.Address, n int) []types.ObjectID {
	ids := make([]types.ObjectID, n)
	for i := range ids {
		ids[i] = b.CreateObject(owner, params.GasCoinType)
	}
	return ids
}

// CreateImmutableObject adds an immutable object and returns its id.
func (b *Backend) CreateImmutableObject(typeTag string) types.ObjectID {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID()
	b.records[id] = &record{
		obj:   types.OwnedObject{ObjectID: id, Digest: b.nextDigest(), Version: 1, Type: typeTag},
		owner: types.Owner{Kind: types.OwnerImmutable},
	}
	return id
}

// ownedSorted returns owner's objects in a deterministic order.
func (b *Backend) ownedSorted(owner types.Address) []*record {
	var out []*record
	for _, rec := range b.records {
		if rec.owner.OwnedBy(owner) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].obj.ObjectID.Hex() < out[j].obj.ObjectID.Hex()
	})
	return out
}

// ListOwnedObjects implements suiclient.Client.
func (b *Backend) ListOwnedObjects(ctx context.Context, owner types.Address, cursor *string) (*suiclient.ObjectPage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	owned := b.ownedSorted(owner)
	start := 0
	if cursor != nil {
		if _, err := fmt.Sscanf(*cursor, "%d", &start); err != nil {
			return nil, fmt.Errorf("invalid cursor %q", *cursor)
		}
	}
	end := start + b.pageSize
	if end > len(owned) {
		end = len(owned)
	}
	page := &suiclient.ObjectPage{}
	if b.pageErr != nil {
		page.Data = append(page.Data, suiclient.ObjectEntry{Error: b.pageErr})
		b.pageErr = nil
	}
	for _, rec := range owned[start:end] {
		owner := rec.owner
		page.Data = append(page.Data, suiclient.ObjectEntry{Data: &suiclient.ObjectData{
			ObjectID: rec.obj.ObjectID,
			Version:  rec.obj.Version,
			Digest:   rec.obj.Digest,
			Type:     rec.obj.Type,
			Owner:    &owner,
		}})
	}
	if end < len(owned) {
		next := fmt.Sprintf("%d", end)
		page.NextCursor = &next
		page.HasNextPage = true
	}
	return page, nil
}

// GetObject implements suiclient.Client.
func (b *Backend) GetObject(ctx context.Context, id types.ObjectID, opts suiclient.ObjectDataOptions) (*suiclient.ObjectData, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.records[id]
	if !ok {
		return nil, fmt.Errorf("object %s: not found", id)
	}
	data := &suiclient.ObjectData{
		ObjectID: rec.obj.ObjectID,
		Version:  rec.obj.Version,
		Digest:   rec.obj.Digest,
	}
	if opts.ShowType {
		data.Type = rec.obj.Type
	}
	if opts.ShowOwner {
		owner := rec.owner
		data.Owner = &owner
	}
	return data, nil
}

// GetCoins implements suiclient.Client.
func (b *Backend) GetCoins(ctx context.Context, owner types.Address, coinType string, cursor *string) (*suiclient.CoinPage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	page := &suiclient.CoinPage{}
	for _, rec := range b.ownedSorted(owner) {
		if rec.obj.Type != coinType {
			continue
		}
		page.Data = append(page.Data, suiclient.Coin{
			CoinType:     rec.obj.Type,
			CoinObjectID: rec.obj.ObjectID,
			Version:      rec.obj.Version,
			Digest:       rec.obj.Digest,
			Balance:      1_000_000_000,
		})
	}
	return page, nil
}

// ReferenceGasPrice implements suiclient.Client.
func (b *Backend) ReferenceGasPrice(ctx context.Context) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gasPrice, nil
}

// DryRunTransaction implements suiclient.Client.
func (b *Backend) DryRunTransaction(ctx context.Context, txBytes []byte) (*suiclient.DryRunResult, error) {
	sum, err := txbuilder.Parse(txBytes)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	hook := b.dryRunHook
	b.mu.Unlock()
	status := types.ExecutionStatus{Status: types.ExecutionStatusSuccess}
	if hook != nil {
		if s := hook(sum); s != nil {
			status = *s
		}
	}
	return &suiclient.DryRunResult{Effects: types.TransactionEffects{Status: status}}, nil
}

// ExecuteTransaction implements suiclient.Client. The default behavior
// verifies the signature, bumps every gas coin's version, and reports them
// mutated back to the sender.
func (b *Backend) ExecuteTransaction(ctx context.Context, req suiclient.ExecuteRequest) (*suiclient.TransactionResult, error) {
	sum, err := txbuilder.Parse(req.TxBytes)
	if err != nil {
		return nil, err
	}
	if len(req.Signatures) != 1 {
		return nil, fmt.Errorf("want exactly one signature, got %d", len(req.Signatures))
	}
	if sender, ok := signer.VerifyTransaction(req.TxBytes, req.Signatures[0]); !ok || sender != sum.Sender {
		return nil, fmt.Errorf("signature does not verify for sender %s", sum.Sender)
	}

	b.mu.Lock()
	delay := b.execDelay
	hook := b.executeHook
	b.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var effects *types.TransactionEffects
	if hook != nil {
		effects, err = hook(sum)
		if err != nil {
			return nil, err
		}
	} else {
		effects = b.defaultEffects(sum)
	}

	b.mu.Lock()
	b.gasLog = append(b.gasLog, sum.GasPayment)
	b.applyEffectsLocked(sum.Sender, effects)
	digest := b.nextDigest()
	b.mu.Unlock()

	res := &suiclient.TransactionResult{Digest: digest, Effects: effects}
	if !req.Options.ShowEffects {
		res.Effects = nil
	}
	return res, nil
}

// defaultEffects mutates each gas payment coin back to the sender.
func (b *Backend) defaultEffects(sum *txbuilder.Summary) *types.TransactionEffects {
	b.mu.Lock()
	defer b.mu.Unlock()
	effects := &types.TransactionEffects{
		Status:  types.ExecutionStatus{Status: types.ExecutionStatusSuccess},
		GasUsed: types.GasCostSummary{ComputationCost: 1000, StorageCost: 100, StorageRebate: 10},
	}
	for _, ref := range sum.GasPayment {
		effects.Mutated = append(effects.Mutated, types.OwnedObjectRef{
			Owner: types.Owner{Kind: types.OwnerAddress, Address: sum.Sender},
			Reference: types.ObjectRef{
				ObjectID: ref.ObjectID,
				Version:  ref.Version + 1,
				Digest:   b.nextDigest(),
			},
		})
	}
	return effects
}

// applyEffectsLocked folds effects into the backend's object table.
func (b *Backend) applyEffectsLocked(sender types.Address, effects *types.TransactionEffects) {
	if effects == nil {
		return
	}
	for _, entry := range effects.Touched() {
		id := entry.Reference.ObjectID
		rec, ok := b.records[id]
		if !ok {
			rec = &record{obj: types.OwnedObject{ObjectID: id}}
			b.records[id] = rec
		}
		rec.obj.Version = entry.Reference.Version
		rec.obj.Digest = entry.Reference.Digest
		rec.owner = entry.Owner
	}
	for _, ref := range effects.Removed() {
		delete(b.records, ref.ObjectID)
	}
}
