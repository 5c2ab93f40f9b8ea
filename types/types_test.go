package types

import (
	"encoding/json"
	"testing"
)

func TestObjectIDHexRoundTrip(t *testing.T) {
	hex := "0x00000000000000000000000000000000000000000000000000000000000000ab"
	id, err := HexToObjectID(hex)
	if err != nil {
		t.Fatalf("HexToObjectID: %v", err)
	}
	if id.Hex() != hex {
		t.Fatalf("have %s want %s", id.Hex(), hex)
	}
}

func TestHexShortFormsPadLeft(t *testing.T) {
	a := MustObjectID("0x2")
	b := MustObjectID("0x0000000000000000000000000000000000000000000000000000000000000002")
	if a != b {
		t.Fatalf("short form diverged: %s vs %s", a, b)
	}
}

func TestHexRejectsInvalid(t *testing.T) {
	if _, err := HexToObjectID("0xzz"); err == nil {
		t.Fatal("non-hex accepted")
	}
	if _, err := HexToAddress("0x" + "00" + "0000000000000000000000000000000000000000000000000000000000000001"); err == nil {
		t.Fatal("overlong hex accepted")
	}
}

func TestObjectIDJSON(t *testing.T) {
	id := MustObjectID("0xcafe")
	data, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back ObjectID
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != id {
		t.Fatalf("round trip changed id: %s vs %s", back, id)
	}
}

func TestVersionAcceptsNumberAndString(t *testing.T) {
	for _, input := range []string{`42`, `"42"`} {
		var v Version
		if err := json.Unmarshal([]byte(input), &v); err != nil {
			t.Fatalf("unmarshal %s: %v", input, err)
		}
		if v != 42 {
			t.Fatalf("input %s: have %d want 42", input, v)
		}
	}
	var v Version
	if err := json.Unmarshal([]byte(`"many"`), &v); err == nil {
		t.Fatal("non-numeric version accepted")
	}
}

func TestVersionMarshalsAsString(t *testing.T) {
	data, err := json.Marshal(Version(7))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"7"` {
		t.Fatalf("have %s want \"7\"", data)
	}
}

func TestOwnerJSONVariants(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  OwnerKind
	}{
		{`"Immutable"`, OwnerImmutable},
		{`{"AddressOwner": "0x01"}`, OwnerAddress},
		{`{"ObjectOwner": "0x02"}`, OwnerObject},
		{`{"Shared": {"initial_shared_version": 3}}`, OwnerShared},
	} {
		var o Owner
		if err := json.Unmarshal([]byte(tc.input), &o); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.input, err)
		}
		if o.Kind != tc.want {
			t.Fatalf("input %s: have kind %d want %d", tc.input, o.Kind, tc.want)
		}
	}
}

func TestOwnerJSONRoundTrip(t *testing.T) {
	for _, o := range []Owner{
		{Kind: OwnerImmutable},
		{Kind: OwnerAddress, Address: MustAddress("0x09")},
		{Kind: OwnerObject, Address: MustAddress("0x0a")},
	} {
		data, err := json.Marshal(o)
		if err != nil {
			t.Fatalf("marshal %+v: %v", o, err)
		}
		var back Owner
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back.Kind != o.Kind || back.Address != o.Address {
			t.Fatalf("round trip changed owner: %+v vs %+v", back, o)
		}
	}
}

func TestOwnedBy(t *testing.T) {
	addr := MustAddress("0x0b")
	if !(Owner{Kind: OwnerAddress, Address: addr}).OwnedBy(addr) {
		t.Fatal("address owner not matched")
	}
	if (Owner{Kind: OwnerAddress, Address: addr}).OwnedBy(MustAddress("0x0c")) {
		t.Fatal("foreign address matched")
	}
	if (Owner{Kind: OwnerShared}).OwnedBy(addr) {
		t.Fatal("shared object reported owned")
	}
}

func TestIsGasCoin(t *testing.T) {
	coin := OwnedObject{Type: "0x2::coin::Coin<0x2::sui::SUI>"}
	if !coin.IsGasCoin() {
		t.Fatal("SUI coin not recognized")
	}
	other := OwnedObject{Type: "0x2::coin::Coin<0xabc::usdc::USDC>"}
	if other.IsGasCoin() {
		t.Fatal("non-SUI coin recognized as gas")
	}
}

func TestEffectsTouchedAndRemoved(t *testing.T) {
	e := &TransactionEffects{
		Created:   []OwnedObjectRef{{Reference: ObjectRef{ObjectID: MustObjectID("0x01")}}},
		Unwrapped: []OwnedObjectRef{{Reference: ObjectRef{ObjectID: MustObjectID("0x02")}}},
		Mutated:   []OwnedObjectRef{{Reference: ObjectRef{ObjectID: MustObjectID("0x03")}}},
		Wrapped:   []ObjectRef{{ObjectID: MustObjectID("0x04")}},
		Deleted:   []ObjectRef{{ObjectID: MustObjectID("0x05")}},
	}
	if got := len(e.Touched()); got != 3 {
		t.Fatalf("touched: have %d want 3", got)
	}
	if got := len(e.Removed()); got != 2 {
		t.Fatalf("removed: have %d want 2", got)
	}
}

func TestGasCostSummaryTotal(t *testing.T) {
	g := GasCostSummary{ComputationCost: 1000, StorageCost: 200, StorageRebate: 50}
	if got := g.Total(); got != 1150 {
		t.Fatalf("total: have %d want 1150", got)
	}
}
