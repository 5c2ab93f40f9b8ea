// Package txbuilder assembles programmable transactions: a list of inputs
// plus a list of commands over them, with sender and gas metadata attached
// before serialization.
package txbuilder

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/halcyon-labs/suipool/params"
	"github.com/halcyon-labs/suipool/suiclient"
	"github.com/halcyon-labs/suipool/types"
)

// InputKind distinguishes object inputs, which are subject to ownership
// checks, from pure value inputs.
type InputKind int

const (
	// PureInput is an inline value (amount, address, raw bytes).
	PureInput InputKind = iota
	// ObjectInput references an owned or immutable on-chain object.
	ObjectInput
)

// Input is one transaction input.
type Input struct {
	Kind InputKind
	ID   types.ObjectID // set for ObjectInput
	Pure []byte         // set for PureInput
}

// Arg references an input slot, a command result, or the gas coin.
type Arg struct {
	kind  argKind
	index int
}

type argKind int

const (
	argInput argKind = iota
	argResult
	argGasCoin
)

// GasCoin returns the argument referencing the transaction's gas payment.
func GasCoin() Arg { return Arg{kind: argGasCoin} }

type commandKind int

const (
	cmdSplitCoins commandKind = iota
	cmdTransferObjects
	cmdMoveCall
)

type command struct {
	kind    commandKind
	target  string // MoveCall: package::module::function
	args    []Arg
	objects []Arg // TransferObjects
}

// Transaction is a mutable transaction under construction. It is not safe
// for concurrent use.
type Transaction struct {
	sender     types.Address
	hasSender  bool
	gasPayment []types.ObjectRef
	gasBudget  uint64
	gasPrice   uint64
	inputs     []Input
	commands   []command
}

// New creates an empty transaction with the default gas budget.
func New() *Transaction {
	return &Transaction{gasBudget: params.DefaultGasBudget}
}

// SetSender sets the transaction sender.
func (t *Transaction) SetSender(addr types.Address) {
	t.sender = addr
	t.hasSender = true
}

// Sender returns the configured sender address.
func (t *Transaction) Sender() (types.Address, bool) { return t.sender, t.hasSender }

// SetGasPayment sets the coins paying for the transaction.
func (t *Transaction) SetGasPayment(refs []types.ObjectRef) {
	t.gasPayment = append([]types.ObjectRef(nil), refs...)
}

// GasPayment returns the configured gas payment references.
func (t *Transaction) GasPayment() []types.ObjectRef {
	return append([]types.ObjectRef(nil), t.gasPayment...)
}

// SetGasBudget overrides the default gas budget.
func (t *Transaction) SetGasBudget(budget uint64) { t.gasBudget = budget }

// SetGasPrice pins the gas price; when left zero, Build resolves the current
// reference gas price from the RPC client.
func (t *Transaction) SetGasPrice(price uint64) { t.gasPrice = price }

// Object adds (or reuses) an object input and returns its argument.
func (t *Transaction) Object(id types.ObjectID) Arg {
	for i, in := range t.inputs {
		if in.Kind == ObjectInput && in.ID == id {
			return Arg{kind: argInput, index: i}
		}
	}
	t.inputs = append(t.inputs, Input{Kind: ObjectInput, ID: id})
	return Arg{kind: argInput, index: len(t.inputs) - 1}
}

// Pure adds a pure value input and returns its argument. Supported values:
// uint64, string, []byte and types.Address.
func (t *Transaction) Pure(v interface{}) Arg {
	var raw []byte
	switch x := v.(type) {
	case uint64:
		raw = make([]byte, 8)
		binary.LittleEndian.PutUint64(raw, x)
	case string:
		raw = []byte(x)
	case []byte:
		raw = x
	case types.Address:
		raw = x.Bytes()
	default:
		panic(fmt.Sprintf("txbuilder: unsupported pure value %T", v))
	}
	t.inputs = append(t.inputs, Input{Kind: PureInput, Pure: raw})
	return Arg{kind: argInput, index: len(t.inputs) - 1}
}

// SplitCoins splits amounts off coin and returns the result argument.
func (t *Transaction) SplitCoins(coin Arg, amounts ...Arg) Arg {
	t.commands = append(t.commands, command{kind: cmdSplitCoins, args: append([]Arg{coin}, amounts...)})
	return Arg{kind: argResult, index: len(t.commands) - 1}
}

// TransferObjects transfers objs to the recipient argument.
func (t *Transaction) TransferObjects(recipient Arg, objs ...Arg) {
	t.commands = append(t.commands, command{kind: cmdTransferObjects, args: []Arg{recipient}, objects: objs})
}

// MoveCall invokes target ("package::module::function") with args and
// returns the result argument.
func (t *Transaction) MoveCall(target string, args ...Arg) Arg {
	t.commands = append(t.commands, command{kind: cmdMoveCall, target: target, args: args})
	return Arg{kind: argResult, index: len(t.commands) - 1}
}

// Inputs returns a copy of the transaction's input list.
func (t *Transaction) Inputs() []Input {
	return append([]Input(nil), t.inputs...)
}

// ObjectInputs returns the ids of all object inputs, the ones subject to
// the pool's ownership check.
func (t *Transaction) ObjectInputs() []types.ObjectID {
	var out []types.ObjectID
	for _, in := range t.inputs {
		if in.Kind == ObjectInput {
			out = append(out, in.ID)
		}
	}
	return out
}

// Build errors.
var (
	ErrNoSender     = errors.New("txbuilder: sender not set")
	ErrNoGasPayment = errors.New("txbuilder: gas payment not set")
	ErrNoCommands   = errors.New("txbuilder: transaction has no commands")
)

// Build serializes the transaction. The encoding is deterministic: building
// the same transaction twice yields identical bytes, so a dry run and the
// following submission sign over the same payload. The gas price is resolved
// from rpc when not pinned.
func (t *Transaction) Build(ctx context.Context, rpc suiclient.Client) ([]byte, error) {
	if !t.hasSender {
		return nil, ErrNoSender
	}
	if len(t.gasPayment) == 0 {
		return nil, ErrNoGasPayment
	}
	if len(t.commands) == 0 {
		return nil, ErrNoCommands
	}
	price := t.gasPrice
	if price == 0 {
		p, err := rpc.ReferenceGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve gas price: %w", err)
		}
		price = p
	}

	var w encoder
	w.bytes(t.sender.Bytes())
	w.uint64(price)
	w.uint64(t.gasBudget)
	w.uint64(uint64(len(t.gasPayment)))
	for _, ref := range t.gasPayment {
		w.bytes(ref.ObjectID.Bytes())
		w.uint64(uint64(ref.Version))
		w.bytes([]byte(ref.Digest))
	}
	w.uint64(uint64(len(t.inputs)))
	for _, in := range t.inputs {
		w.uint64(uint64(in.Kind))
		if in.Kind == ObjectInput {
			w.bytes(in.ID.Bytes())
		} else {
			w.bytes(in.Pure)
		}
	}
	w.uint64(uint64(len(t.commands)))
	for _, cmd := range t.commands {
		w.uint64(uint64(cmd.kind))
		w.bytes([]byte(cmd.target))
		w.args(cmd.args)
		w.args(cmd.objects)
	}
	return w.buf, nil
}

// encoder is a length-prefixed binary writer.
type encoder struct {
	buf []byte
}

func (e *encoder) uint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

func (e *encoder) bytes(b []byte) {
	e.uint64(uint64(len(b)))
	e.buf = append(e.buf, b...)
}

func (e *encoder) args(args []Arg) {
	e.uint64(uint64(len(args)))
	for _, a := range args {
		e.uint64(uint64(a.kind))
		e.uint64(uint64(a.index))
	}
}
