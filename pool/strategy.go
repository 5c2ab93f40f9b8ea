package pool

import (
	"strings"

	"github.com/halcyon-labs/suipool/types"
)

// Decision is a split strategy's verdict on one candidate object.
type Decision int

const (
	// Keep leaves the candidate in the source pool.
	Keep Decision = iota
	// Move transfers the candidate to the new pool.
	Move
	// Stop ends the split pass; all remaining candidates stay.
	Stop
)

// SplitStrategy decides which objects move into the pool produced by a
// split. Strategies are stateful and single-use: instantiate a fresh one for
// every split.
type SplitStrategy interface {
	// Decide classifies one candidate object.
	Decide(obj types.OwnedObject) Decision
	// Succeeded reports whether the new pool's required contents are
	// complete. When false after a full pass, the splitter fetches more
	// objects and runs another pass.
	Succeeded() bool
}

// StrategyFactory produces a fresh strategy per split attempt.
type StrategyFactory func() SplitStrategy

// DefaultStrategy moves exactly one gas coin into the new pool, enough for
// the receiving pool to pay for one transaction at a time.
type DefaultStrategy struct {
	coinsWanted int
}

// NewDefaultStrategy returns a strategy claiming a single gas coin.
func NewDefaultStrategy() *DefaultStrategy {
	return &DefaultStrategy{coinsWanted: 1}
}

// Decide implements SplitStrategy.
func (s *DefaultStrategy) Decide(obj types.OwnedObject) Decision {
	if s.coinsWanted == 0 {
		return Stop
	}
	if obj.IsGasCoin() {
		s.coinsWanted--
		return Move
	}
	return Keep
}

// Succeeded implements SplitStrategy.
func (s *DefaultStrategy) Succeeded() bool { return s.coinsWanted == 0 }

// IncludeAdminCapStrategy moves one gas coin, one generic (non-coin) object
// and the admin capability of the given package into the new pool. Intended
// for transactions that need package-admin authority next to gas.
type IncludeAdminCapStrategy struct {
	packageID     string
	coinsWanted   int
	objectsWanted int
	adminCapFound bool
}

// NewIncludeAdminCapStrategy returns a strategy claiming the admin cap of
// packageID plus one gas coin and one generic object.
func NewIncludeAdminCapStrategy(packageID string) *IncludeAdminCapStrategy {
	return &IncludeAdminCapStrategy{packageID: packageID, coinsWanted: 1, objectsWanted: 1}
}

// Decide implements SplitStrategy.
func (s *IncludeAdminCapStrategy) Decide(obj types.OwnedObject) Decision {
	if !s.adminCapFound && s.isAdminCap(obj) {
		s.adminCapFound = true
		return Move
	}
	if s.Succeeded() {
		return Stop
	}
	if obj.IsGasCoin() {
		if s.coinsWanted > 0 {
			s.coinsWanted--
			return Move
		}
		return Keep
	}
	if s.objectsWanted > 0 {
		s.objectsWanted--
		return Move
	}
	return Keep
}

// Succeeded implements SplitStrategy.
func (s *IncludeAdminCapStrategy) Succeeded() bool {
	return s.adminCapFound && s.coinsWanted == 0 && s.objectsWanted == 0
}

func (s *IncludeAdminCapStrategy) isAdminCap(obj types.OwnedObject) bool {
	return strings.Contains(obj.Type, "AdminCap") && strings.Contains(obj.Type, s.packageID)
}
