package types

import (
	"encoding/json"
	"fmt"
)

// OwnerKind classifies the ownership of an on-chain object.
type OwnerKind int

const (
	// OwnerUnknown is the zero value; the backend reported no owner.
	OwnerUnknown OwnerKind = iota
	// OwnerAddress means the object is exclusively owned by an account.
	OwnerAddress
	// OwnerObject means the object is a dynamic field of another object.
	OwnerObject
	// OwnerShared means the object is shared and versioned by consensus.
	OwnerShared
	// OwnerImmutable means the object is frozen and usable by anyone.
	OwnerImmutable
)

// String implements fmt.Stringer.
func (k OwnerKind) String() string {
	switch k {
	case OwnerAddress:
		return "AddressOwner"
	case OwnerObject:
		return "ObjectOwner"
	case OwnerShared:
		return "Shared"
	case OwnerImmutable:
		return "Immutable"
	default:
		return "Unknown"
	}
}

// Owner is the decoded owner field of an object. Address is only meaningful
// for OwnerAddress and OwnerObject kinds.
type Owner struct {
	Kind    OwnerKind
	Address Address
}

// OwnedBy reports whether the object is address-owned by addr.
func (o Owner) OwnedBy(addr Address) bool {
	return o.Kind == OwnerAddress && o.Address == addr
}

// UnmarshalJSON decodes the two wire shapes of the owner field: the string
// sentinel "Immutable" and the single-key variant objects
// {"AddressOwner": "0x…"}, {"ObjectOwner": "0x…"}, {"Shared": {…}}.
func (o *Owner) UnmarshalJSON(input []byte) error {
	var sentinel string
	if err := json.Unmarshal(input, &sentinel); err == nil {
		if sentinel != "Immutable" {
			return fmt.Errorf("unknown owner sentinel %q", sentinel)
		}
		*o = Owner{Kind: OwnerImmutable}
		return nil
	}
	var variant struct {
		AddressOwner *Address        `json:"AddressOwner"`
		ObjectOwner  *Address        `json:"ObjectOwner"`
		Shared       json.RawMessage `json:"Shared"`
	}
	if err := json.Unmarshal(input, &variant); err != nil {
		return fmt.Errorf("invalid owner field: %w", err)
	}
	switch {
	case variant.AddressOwner != nil:
		*o = Owner{Kind: OwnerAddress, Address: *variant.AddressOwner}
	case variant.ObjectOwner != nil:
		*o = Owner{Kind: OwnerObject, Address: *variant.ObjectOwner}
	case variant.Shared != nil:
		*o = Owner{Kind: OwnerShared}
	default:
		*o = Owner{Kind: OwnerUnknown}
	}
	return nil
}

// MarshalJSON encodes the owner back into its wire shape.
func (o Owner) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case OwnerImmutable:
		return json.Marshal("Immutable")
	case OwnerAddress:
		return json.Marshal(map[string]Address{"AddressOwner": o.Address})
	case OwnerObject:
		return json.Marshal(map[string]Address{"ObjectOwner": o.Address})
	case OwnerShared:
		return json.Marshal(map[string]struct{}{"Shared": {}})
	default:
		return []byte("null"), nil
	}
}
