// Package pool partitions a signer's owned objects into disjoint sets, each
// with its own gas coins, so transactions running on different pools can
// never equivocate on the same object.
package pool

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/crypto/blake2b"

	"github.com/halcyon-labs/suipool/log"
	"github.com/halcyon-labs/suipool/metrics"
	"github.com/halcyon-labs/suipool/signer"
	"github.com/halcyon-labs/suipool/suiclient"
	"github.com/halcyon-labs/suipool/txbuilder"
	"github.com/halcyon-labs/suipool/types"
)

// immutableCacheSize bounds the per-pool cache of objects known immutable.
const immutableCacheSize = 256

var (
	splitCounter   = metrics.NewCounter("pool/splits")
	mergeCounter   = metrics.NewCounter("pool/merges")
	executeCounter = metrics.NewCounter("pool/executions")
	fetchCounter   = metrics.NewCounter("pool/fetches")
)

// Pool is an ownership-disjoint partition of a signer's objects plus a
// single-flight execution channel: at most one SignAndExecute runs per pool
// at a time, and it pays gas with all of the pool's coins so sibling pools
// stay non-interfering.
type Pool struct {
	id     string
	signer *signer.Signer
	client suiclient.Client

	mu       sync.Mutex // serializes registry, feed and execution
	registry *ObjectRegistry
	gasCoins map[types.ObjectID]types.OwnedObject
	feed     *ObjectFeed

	immutable *lru.Cache // object id → struct{}, ownership-check shortcut
}

func newPool(s *signer.Signer, client suiclient.Client) *Pool {
	cache, _ := lru.New(immutableCacheSize)
	return &Pool{
		id:        newPoolID(s.Address()),
		signer:    s,
		client:    client,
		registry:  NewObjectRegistry(),
		gasCoins:  make(map[types.ObjectID]types.OwnedObject),
		feed:      NewObjectFeed(client, s.Address()),
		immutable: cache,
	}
}

// newPoolID derives a short identifier from the signer address and fresh
// randomness.
func newPoolID(addr types.Address) string {
	var nonce [8]byte
	rand.Read(nonce[:])
	h, _ := blake2b.New256(nil)
	h.Write(addr.Bytes())
	h.Write(nonce[:])
	return hex.EncodeToString(h.Sum(nil))[:8]
}

// NewFull creates a pool for the signer and drains the first batch of its
// owned objects, so the pool has split candidates from the start. Fails with
// ErrInitialFetch when the owner has nothing on chain.
func NewFull(ctx context.Context, s *signer.Signer, client suiclient.Client) (*Pool, error) {
	p := newPool(s, client)
	progress, err := p.fetchMore(ctx)
	if err != nil {
		return nil, err
	}
	if !progress {
		return nil, ErrInitialFetch
	}
	log.Debug("pool created", "id", p.id, "address", s.Address(), "objects", p.registry.Len(), "gasCoins", len(p.gasCoins))
	return p, nil
}

// ID returns the pool's short identifier.
func (p *Pool) ID() string { return p.id }

// Address returns the signer address owning the pool's objects.
func (p *Pool) Address() types.Address { return p.signer.Address() }

// Signer returns the pool's signer.
func (p *Pool) Signer() *signer.Signer { return p.signer }

// Objects returns a copy of the pool's object registry.
func (p *Pool) Objects() map[types.ObjectID]types.OwnedObject {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.registry.All()
}

// GasCoins returns a copy of the pool's gas coins.
func (p *Pool) GasCoins() map[types.ObjectID]types.OwnedObject {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[types.ObjectID]types.OwnedObject, len(p.gasCoins))
	for id, obj := range p.gasCoins {
		out[id] = obj
	}
	return out
}

// fetchMore pulls the next feed batch into the registry. It reports whether
// any new object was added.
func (p *Pool) fetchMore(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetchMoreLocked(ctx)
}

func (p *Pool) fetchMoreLocked(ctx context.Context) (bool, error) {
	batch, ok, err := p.feed.Next(ctx)
	if err != nil || !ok {
		return false, err
	}
	fetchCounter.Inc(1)
	progress := false
	for id, obj := range batch {
		// An object already claimed by this pool keeps its tracked state;
		// the feed may lag behind effects the pool has applied itself.
		if p.registry.Has(id) {
			continue
		}
		p.registry.Add(obj)
		progress = true
	}
	p.recomputeGasCoinsLocked()
	return progress, nil
}

func (p *Pool) recomputeGasCoinsLocked() {
	p.gasCoins = p.registry.Coins()
}

// Split produces a new pool holding the subset of this pool's objects chosen
// by strategy. Candidates are offered newest-first; when a full pass leaves
// the strategy unsatisfied, more objects are fetched and offered until the
// feed runs out.
func (p *Pool) Split(ctx context.Context, strategy SplitStrategy) (*Pool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.registry.Len() == 0 {
		progress, err := p.fetchMoreLocked(ctx)
		if err != nil {
			return nil, err
		}
		if !progress {
			return nil, ErrSplitExhausted
		}
	}

	next := newPool(p.signer, p.client)
	for {
	pass:
		for _, obj := range p.registry.Snapshot() {
			switch strategy.Decide(obj) {
			case Move:
				p.registry.Delete(obj.ObjectID)
				next.registry.Add(obj)
			case Stop:
				break pass
			}
		}
		if strategy.Succeeded() {
			break
		}
		progress, err := p.fetchMoreLocked(ctx)
		if err != nil {
			return nil, err
		}
		if !progress {
			return nil, ErrStrategyUnsatisfied
		}
	}

	p.recomputeGasCoinsLocked()
	next.recomputeGasCoinsLocked()
	splitCounter.Inc(1)
	log.Debug("pool split", "from", p.id, "to", next.id,
		"moved", next.registry.Len(), "kept", p.registry.Len(), "movedCoins", len(next.gasCoins))
	return next, nil
}

// Merge absorbs all of other's objects into p and empties other. The two
// pools are disjoint by construction; a collision fails the merge and means
// the partition invariant was already broken.
func (p *Pool) Merge(other *Pool) error {
	if p == other {
		return nil
	}
	first, second := p, other
	if second.id < first.id {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	for id, obj := range other.registry.All() {
		if p.registry.Has(id) {
			return &MergeCollisionError{ObjectID: id}
		}
		p.registry.Add(obj)
	}
	other.registry.Clear()
	other.gasCoins = make(map[types.ObjectID]types.OwnedObject)
	p.recomputeGasCoinsLocked()
	mergeCounter.Inc(1)
	log.Debug("pool merged", "into", p.id, "from", other.id, "objects", p.registry.Len())
	return nil
}

// SignAndExecute runs the full pipeline for one transaction: set the sender,
// verify input ownership, pay gas with all of the pool's coins, dry-run,
// submit, and fold the reported effects back into the registry. The call is
// single-flight per pool.
func (p *Pool) SignAndExecute(ctx context.Context, tx *txbuilder.Transaction) (*suiclient.TransactionResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tx.SetSender(p.signer.Address())

	if err := p.checkOwnershipLocked(ctx, tx); err != nil {
		return nil, err
	}

	if len(p.gasCoins) == 0 {
		return nil, ErrNoGasCoin
	}
	refs := make([]types.ObjectRef, 0, len(p.gasCoins))
	for _, coin := range p.gasCoins {
		refs = append(refs, coin.Reference())
	}
	tx.SetGasPayment(refs)

	txBytes, err := tx.Build(ctx, p.client)
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}
	dry, err := p.client.DryRunTransaction(ctx, txBytes)
	if err != nil {
		return nil, fmt.Errorf("dry run: %w", err)
	}
	if !dry.Effects.Status.Success() {
		return nil, &DryRunError{Reason: dry.Effects.Status.Error}
	}

	res, err := p.client.ExecuteTransaction(ctx, suiclient.ExecuteRequest{
		TxBytes:     txBytes,
		Signatures:  []string{p.signer.SignTransaction(txBytes)},
		Options:     suiclient.ExecuteOptions{ShowEffects: true},
		RequestType: suiclient.RequestTypeWaitForLocalExecution,
	})
	if err != nil {
		return nil, &ExecutionError{Err: err}
	}
	executeCounter.Inc(1)

	if res.Effects != nil {
		p.applyEffectsLocked(res.Effects)
	}
	log.Debug("pool executed transaction", "id", p.id, "digest", res.Digest,
		"status", statusOf(res), "objects", p.registry.Len(), "gasCoins", len(p.gasCoins))
	return res, nil
}

func statusOf(res *suiclient.TransactionResult) string {
	if res.Effects == nil {
		return "unknown"
	}
	return res.Effects.Status.Status
}

// applyEffectsLocked folds a transaction's effects into the registry:
// created, unwrapped and mutated entries owned by the signer are inserted or
// refreshed, wrapped and deleted entries are dropped, and the gas-coin view
// is recomputed.
func (p *Pool) applyEffectsLocked(effects *types.TransactionEffects) {
	for _, entry := range effects.Touched() {
		if !entry.Owner.OwnedBy(p.signer.Address()) {
			continue
		}
		typeTag := ""
		if prev, ok := p.registry.Get(entry.Reference.ObjectID); ok {
			typeTag = prev.Type
		}
		p.registry.Add(types.OwnedObject{
			ObjectID: entry.Reference.ObjectID,
			Digest:   entry.Reference.Digest,
			Version:  entry.Reference.Version,
			Type:     typeTag,
		})
	}
	for _, ref := range effects.Removed() {
		p.registry.Delete(ref.ObjectID)
	}
	p.recomputeGasCoinsLocked()
}

// CheckOwnership reports whether every object input of tx is either owned by
// this pool or certified immutable on chain. The error return is reserved
// for RPC failures during the immutability lookup.
func (p *Pool) CheckOwnership(ctx context.Context, tx *txbuilder.Transaction) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.checkOwnershipLocked(ctx, tx)
	if err == nil {
		return true, nil
	}
	var violation *OwnershipError
	if errors.As(err, &violation) {
		return false, nil
	}
	return false, err
}

func (p *Pool) checkOwnershipLocked(ctx context.Context, tx *txbuilder.Transaction) error {
	for _, id := range tx.ObjectInputs() {
		if p.registry.Has(id) {
			continue
		}
		if p.immutable.Contains(id) {
			continue
		}
		obj, err := p.client.GetObject(ctx, id, suiclient.ObjectDataOptions{ShowOwner: true})
		if err != nil {
			return fmt.Errorf("look up owner of %s: %w", id, err)
		}
		if obj.Owner != nil && obj.Owner.Kind == types.OwnerImmutable {
			p.immutable.Add(id, struct{}{})
			continue
		}
		return &OwnershipError{ObjectID: id}
	}
	return nil
}
