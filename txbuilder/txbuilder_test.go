package txbuilder

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/halcyon-labs/suipool/suiclient"
	"github.com/halcyon-labs/suipool/types"
)

// mockClient stubs the one RPC call Build makes, the gas-price lookup.
type mockClient struct{ price uint64 }

var _ suiclient.Client = mockClient{}

func (c mockClient) ReferenceGasPrice(ctx context.Context) (uint64, error) {
	return c.price, nil
}

func (c mockClient) ListOwnedObjects(context.Context, types.Address, *string) (*suiclient.ObjectPage, error) {
	return nil, errors.New("not implemented")
}

func (c mockClient) GetObject(context.Context, types.ObjectID, suiclient.ObjectDataOptions) (*suiclient.ObjectData, error) {
	return nil, errors.New("not implemented")
}

func (c mockClient) GetCoins(context.Context, types.Address, string, *string) (*suiclient.CoinPage, error) {
	return nil, errors.New("not implemented")
}

func (c mockClient) DryRunTransaction(context.Context, []byte) (*suiclient.DryRunResult, error) {
	return nil, errors.New("not implemented")
}

func (c mockClient) ExecuteTransaction(context.Context, suiclient.ExecuteRequest) (*suiclient.TransactionResult, error) {
	return nil, errors.New("not implemented")
}

func gasRef(seed byte) types.ObjectRef {
	return types.ObjectRef{
		ObjectID: types.BytesToObjectID([]byte{seed}),
		Version:  3,
		Digest:   "d",
	}
}

func sampleTx() *Transaction {
	tx := New()
	tx.SetSender(types.MustAddress("0xaa"))
	tx.SetGasPayment([]types.ObjectRef{gasRef(1), gasRef(2)})
	out := tx.SplitCoins(GasCoin(), tx.Pure(uint64(500)))
	tx.TransferObjects(tx.Pure(types.MustAddress("0xbb")), out)
	return tx
}

func TestObjectInputsDeduplicated(t *testing.T) {
	tx := New()
	id := types.MustObjectID("0x01")
	a := tx.Object(id)
	b := tx.Object(id)
	if a != b {
		t.Fatalf("same object produced distinct args: %v vs %v", a, b)
	}
	if got := tx.ObjectInputs(); len(got) != 1 || got[0] != id {
		t.Fatalf("object inputs: %v", got)
	}
}

func TestObjectInputsExcludePure(t *testing.T) {
	tx := New()
	tx.Pure(uint64(7))
	tx.Pure("memo")
	obj := types.MustObjectID("0x02")
	tx.Object(obj)
	tx.Pure(types.MustAddress("0x03"))

	if got := tx.ObjectInputs(); !reflect.DeepEqual(got, []types.ObjectID{obj}) {
		t.Fatalf("object inputs: %v", got)
	}
	if got := len(tx.Inputs()); got != 4 {
		t.Fatalf("inputs: have %d want 4", got)
	}
}

func TestBuildDeterministic(t *testing.T) {
	rpc := mockClient{price: 750}
	first, err := sampleTx().Build(context.Background(), rpc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := sampleTx().Build(context.Background(), rpc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("identical transactions serialized differently")
	}
}

func TestBuildParseRoundTrip(t *testing.T) {
	tx := sampleTx()
	tx.SetGasBudget(9_000_000)
	tx.SetGasPrice(820)

	raw, err := tx.Build(context.Background(), mockClient{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sum, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sum.Sender != types.MustAddress("0xaa") {
		t.Fatalf("sender: %s", sum.Sender)
	}
	if sum.GasPrice != 820 || sum.GasBudget != 9_000_000 {
		t.Fatalf("gas: price=%d budget=%d", sum.GasPrice, sum.GasBudget)
	}
	if want := []types.ObjectRef{gasRef(1), gasRef(2)}; !reflect.DeepEqual(sum.GasPayment, want) {
		t.Fatalf("gas payment: %v", sum.GasPayment)
	}
}

func TestBuildResolvesGasPrice(t *testing.T) {
	raw, err := sampleTx().Build(context.Background(), mockClient{price: 1234})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sum, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sum.GasPrice != 1234 {
		t.Fatalf("gas price: have %d want 1234", sum.GasPrice)
	}
}

func TestBuildValidation(t *testing.T) {
	for _, tc := range []struct {
		name string
		tx   func() *Transaction
		want error
	}{
		{"no sender", func() *Transaction {
			tx := sampleTx()
			return &Transaction{gasPayment: tx.gasPayment, commands: tx.commands, gasBudget: tx.gasBudget}
		}, ErrNoSender},
		{"no gas payment", func() *Transaction {
			tx := sampleTx()
			tx.gasPayment = nil
			return tx
		}, ErrNoGasPayment},
		{"no commands", func() *Transaction {
			tx := sampleTx()
			tx.commands = nil
			return tx
		}, ErrNoCommands},
	} {
		if _, err := tc.tx().Build(context.Background(), mockClient{}); !errors.Is(err, tc.want) {
			t.Fatalf("%s: have %v want %v", tc.name, err, tc.want)
		}
	}
}

func TestParseTruncated(t *testing.T) {
	raw, err := sampleTx().Build(context.Background(), mockClient{price: 1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, cut := range []int{0, 7, 8, len(raw) / 2} {
		if _, err := Parse(raw[:cut]); !errors.Is(err, ErrTruncated) {
			t.Fatalf("cut at %d: have %v want ErrTruncated", cut, err)
		}
	}
}

func TestPureRejectsUnsupported(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Pure accepted an unsupported value")
		}
	}()
	New().Pure(3.14)
}
