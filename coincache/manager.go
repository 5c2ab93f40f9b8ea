package coincache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/halcyon-labs/suipool/log"
	"github.com/halcyon-labs/suipool/params"
	"github.com/halcyon-labs/suipool/suiclient"
	"github.com/halcyon-labs/suipool/types"
)

// ErrInsufficientBalance means the cached coins cannot cover the requested
// budget even after a refresh.
var ErrInsufficientBalance = errors.New("coincache: insufficient coin balance for budget")

// Manager selects gas coins for arbitrary budgets out of a persistent cache,
// refreshing the cache from the coins RPC endpoint when it runs dry. Safe
// for concurrent use; TakeCoins hands each coin out at most once until it is
// returned or refreshed.
type Manager struct {
	client suiclient.Client
	store  Store
	owner  types.Address

	mu    sync.Mutex
	taken map[types.ObjectID]struct{}
}

// NewManager creates a manager over the given store for owner's gas coins.
func NewManager(client suiclient.Client, store Store, owner types.Address) *Manager {
	return &Manager{
		client: client,
		store:  store,
		owner:  owner,
		taken:  make(map[types.ObjectID]struct{}),
	}
}

// Refresh repopulates the cache from the coins endpoint, dropping records
// for coins that no longer exist on chain.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stale, err := m.store.Keys()
	if err != nil {
		return fmt.Errorf("list cached coins: %w", err)
	}
	live := make(map[string]struct{})

	var cursor *string
	for {
		page, err := m.client.GetCoins(ctx, m.owner, params.GasCoinType, cursor)
		if err != nil {
			return fmt.Errorf("fetch coins: %w", err)
		}
		for i := range page.Data {
			coin := &page.Data[i]
			rec := &CoinRecord{
				ObjectID: coin.CoinObjectID,
				Digest:   coin.Digest,
				Version:  coin.Version,
				Balance:  coin.Balance,
			}
			data, err := EncodeRecord(rec)
			if err != nil {
				return err
			}
			key := coin.CoinObjectID.Hex()
			if err := m.store.Set(key, data); err != nil {
				return fmt.Errorf("cache coin %s: %w", key, err)
			}
			live[key] = struct{}{}
		}
		if !page.HasNextPage || page.NextCursor == nil {
			break
		}
		cursor = page.NextCursor
	}

	var gone []string
	for _, key := range stale {
		if _, ok := live[key]; !ok {
			gone = append(gone, key)
		}
	}
	if len(gone) > 0 {
		if err := m.store.Delete(gone...); err != nil {
			return fmt.Errorf("drop stale coins: %w", err)
		}
	}
	m.taken = make(map[types.ObjectID]struct{})
	log.Debug("coin cache refreshed", "owner", m.owner, "coins", len(live), "dropped", len(gone))
	return nil
}

// TakeCoins returns cached coins whose balances sum to at least budget,
// marking them taken. When the cache cannot cover the budget it is refreshed
// once before giving up with ErrInsufficientBalance.
func (m *Manager) TakeCoins(ctx context.Context, budget uint64) ([]CoinRecord, error) {
	coins, err := m.takeOnce(budget)
	if err == nil {
		return coins, nil
	}
	if !errors.Is(err, ErrInsufficientBalance) {
		return nil, err
	}
	if err := m.Refresh(ctx); err != nil {
		return nil, err
	}
	return m.takeOnce(budget)
}

func (m *Manager) takeOnce(budget uint64) ([]CoinRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys, err := m.store.Keys()
	if err != nil {
		return nil, fmt.Errorf("list cached coins: %w", err)
	}
	var (
		picked []CoinRecord
		total  uint64
	)
	for _, key := range keys {
		data, err := m.store.Get(key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read cached coin %s: %w", key, err)
		}
		rec, err := DecodeRecord(data)
		if err != nil {
			// A corrupt record is dropped, not fatal.
			log.Warn("dropping corrupt coin record", "key", key, "err", err)
			m.store.Delete(key)
			continue
		}
		if _, ok := m.taken[rec.ObjectID]; ok {
			continue
		}
		picked = append(picked, *rec)
		total += rec.Balance
		if total >= budget {
			for _, c := range picked {
				m.taken[c.ObjectID] = struct{}{}
			}
			return picked, nil
		}
	}
	return nil, ErrInsufficientBalance
}

// ReturnCoins releases previously taken coins back to the selectable set,
// for callers whose transaction never made it on chain.
func (m *Manager) ReturnCoins(coins []CoinRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range coins {
		delete(m.taken, c.ObjectID)
	}
}

// ApplyEffects folds a committed transaction's effects into the cache:
// mutated coins get their new digest and version, deleted or wrapped coins
// are dropped. Balances are unknown post-mutation and refreshed lazily.
func (m *Manager) ApplyEffects(effects *types.TransactionEffects) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range effects.Touched() {
		key := entry.Reference.ObjectID.Hex()
		data, err := m.store.Get(key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		rec, err := DecodeRecord(data)
		if err != nil {
			m.store.Delete(key)
			continue
		}
		rec.Digest = entry.Reference.Digest
		rec.Version = entry.Reference.Version
		updated, err := EncodeRecord(rec)
		if err != nil {
			return err
		}
		if err := m.store.Set(key, updated); err != nil {
			return err
		}
		delete(m.taken, rec.ObjectID)
	}
	for _, ref := range effects.Removed() {
		if err := m.store.Delete(ref.ObjectID.Hex()); err != nil {
			return err
		}
		delete(m.taken, ref.ObjectID)
	}
	return nil
}
