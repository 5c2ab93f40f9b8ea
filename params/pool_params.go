package params

import "time"

// Gas coin identification. An object pays for gas iff its fully-qualified
// type tag equals GasCoinType.
const (
	SuiFramework = "0x2"
	GasCoinType  = "0x2::coin::Coin<0x2::sui::SUI>"
)

// These are the multipliers for gas denominations.
// Example: a budget of 0.05 SUI is 5 * params.MistPerSui / 100 mist.
const (
	Mist       = 1
	MistPerSui = 1e9
)

const (
	// OwnedObjectsPageSize is the page size requested from the owned-objects
	// RPC endpoint. The endpoint may return fewer entries per page.
	OwnedObjectsPageSize uint64 = 50

	// DefaultGasBudget is the gas budget attached to transactions that do not
	// set one explicitly.
	DefaultGasBudget uint64 = 50_000_000 // 0.05 SUI

	// DefaultWorkerAcquireTimeout bounds how long an execute call waits for a
	// free worker pool before escalating to a split of the main pool.
	DefaultWorkerAcquireTimeout = 10 * time.Second

	// DefaultExecuteRetries is the retry budget of one execute call.
	DefaultExecuteRetries = 3
)
