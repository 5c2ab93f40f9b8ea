package pool

import (
	"context"
	"errors"
	"testing"

	"github.com/halcyon-labs/suipool/params"
	"github.com/halcyon-labs/suipool/signer"
	"github.com/halcyon-labs/suipool/suiclient/simulated"
)

func testSigner(t *testing.T, seed byte) *signer.Signer {
	t.Helper()
	raw := make([]byte, 32)
	raw[0] = seed
	s, err := signer.FromSeed(raw)
	if err != nil {
		t.Fatalf("signer.FromSeed: %v", err)
	}
	return s
}

func TestFeedPaginatesUntilTerminal(t *testing.T) {
	backend := simulated.NewBackend()
	backend.SetPageSize(2)
	owner := testSigner(t, 1)
	backend.CreateGasCoins(owner.Address(), 5)

	feed := NewObjectFeed(backend, owner.Address())
	total := 0
	batches := 0
	for {
		batch, ok, err := feed.Next(context.Background())
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		if len(batch) == 0 {
			t.Fatal("feed yielded empty batch")
		}
		total += len(batch)
		batches++
	}
	if total != 5 || batches != 3 {
		t.Fatalf("unexpected drain: %d objects in %d batches", total, batches)
	}
	if !feed.Done() {
		t.Fatal("feed should be terminal")
	}
	// Terminal is idempotent.
	for i := 0; i < 3; i++ {
		if batch, ok, err := feed.Next(context.Background()); batch != nil || ok || err != nil {
			t.Fatalf("terminal call %d: batch=%v ok=%v err=%v", i, batch, ok, err)
		}
	}
}

func TestFeedCarriesTypeTag(t *testing.T) {
	backend := simulated.NewBackend()
	owner := testSigner(t, 2)
	backend.CreateObject(owner.Address(), params.GasCoinType)

	feed := NewObjectFeed(backend, owner.Address())
	batch, ok, err := feed.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}
	for _, obj := range batch {
		if obj.Type != params.GasCoinType {
			t.Fatalf("type tag lost: %q", obj.Type)
		}
	}
}

func TestFeedErrorCell(t *testing.T) {
	backend := simulated.NewBackend()
	owner := testSigner(t, 3)
	backend.CreateGasCoins(owner.Address(), 1)
	backend.InjectPageError("notExists")

	feed := NewObjectFeed(backend, owner.Address())
	_, _, err := feed.Next(context.Background())
	var backendErr *BackendObjectError
	if !errors.As(err, &backendErr) {
		t.Fatalf("have %v, want BackendObjectError", err)
	}
	if backendErr.Code != "notExists" {
		t.Fatalf("unexpected code %q", backendErr.Code)
	}
}
