package types

// Execution status strings reported in transaction effects.
const (
	ExecutionStatusSuccess = "success"
	ExecutionStatusFailure = "failure"
)

// ExecutionStatus is the outcome of a (dry-run or committed) execution.
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Success reports whether the execution succeeded.
func (s ExecutionStatus) Success() bool { return s.Status == ExecutionStatusSuccess }

// OwnedObjectRef pairs an object reference with the owner it ended up with.
type OwnedObjectRef struct {
	Owner     Owner     `json:"owner"`
	Reference ObjectRef `json:"reference"`
}

// GasCostSummary is the gas breakdown of one transaction.
type GasCostSummary struct {
	ComputationCost uint64 `json:"computationCost,string"`
	StorageCost     uint64 `json:"storageCost,string"`
	StorageRebate   uint64 `json:"storageRebate,string"`
}

// Total returns the net gas charge of the transaction.
func (g GasCostSummary) Total() uint64 {
	return g.ComputationCost + g.StorageCost - g.StorageRebate
}

// TransactionEffects is the object-level change summary of one transaction,
// as reported by the RPC layer.
type TransactionEffects struct {
	Status    ExecutionStatus  `json:"status"`
	Created   []OwnedObjectRef `json:"created,omitempty"`
	Unwrapped []OwnedObjectRef `json:"unwrapped,omitempty"`
	Mutated   []OwnedObjectRef `json:"mutated,omitempty"`
	Wrapped   []ObjectRef      `json:"wrapped,omitempty"`
	Deleted   []ObjectRef      `json:"deleted,omitempty"`
	GasUsed   GasCostSummary   `json:"gasUsed"`
}

// Touched returns the created, unwrapped and mutated entries in that order.
// These are the entries that may introduce or refresh registry state.
func (e *TransactionEffects) Touched() []OwnedObjectRef {
	out := make([]OwnedObjectRef, 0, len(e.Created)+len(e.Unwrapped)+len(e.Mutated))
	out = append(out, e.Created...)
	out = append(out, e.Unwrapped...)
	out = append(out, e.Mutated...)
	return out
}

// Removed returns the wrapped and deleted references. These entries leave the
// sender's reach and must be dropped from any registry tracking them.
func (e *TransactionEffects) Removed() []ObjectRef {
	out := make([]ObjectRef, 0, len(e.Wrapped)+len(e.Deleted))
	out = append(out, e.Wrapped...)
	out = append(out, e.Deleted...)
	return out
}
