// Package types contains the object and effects data types shared by the
// suipool client, pool and executor layers.
package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/halcyon-labs/suipool/params"
)

const (
	// AddressLength is the length of an address or object id, in bytes.
	AddressLength = 32
)

// ObjectID is the 32-byte identifier of an on-chain object, stable across
// mutations of the object.
type ObjectID [AddressLength]byte

// Address is the 32-byte account address derived from a signer's public key.
type Address [AddressLength]byte

// Digest is the opaque content fingerprint of one object version. It changes
// with every mutation and is carried verbatim from the RPC layer (base58).
type Digest string

// Version is the monotonically increasing version counter of an object.
// RPC servers encode it either as a JSON number or a decimal string.
type Version uint64

// ObjectRef identifies one exact version of an object. It is the form used
// for transaction inputs and gas payment.
type ObjectRef struct {
	ObjectID ObjectID `json:"objectId"`
	Version  Version  `json:"version"`
	Digest   Digest   `json:"digest"`
}

// OwnedObject is one entry of a pool's object registry: the latest known
// reference of an object plus its fully-qualified type tag. Type is the empty
// string when the backend omitted it.
type OwnedObject struct {
	ObjectID ObjectID
	Digest   Digest
	Version  Version
	Type     string
}

// Reference returns the object's exact-version reference.
func (o OwnedObject) Reference() ObjectRef {
	return ObjectRef{ObjectID: o.ObjectID, Version: o.Version, Digest: o.Digest}
}

// IsGasCoin reports whether the object can pay for gas.
func (o OwnedObject) IsGasCoin() bool {
	return o.Type == params.GasCoinType
}

func bytesToFixed(b []byte) (out [AddressLength]byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(out[AddressLength-len(b):], b)
	return out
}

func fixedFromHex(s string) ([AddressLength]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return [AddressLength]byte{}, err
	}
	if len(b) > AddressLength {
		return [AddressLength]byte{}, fmt.Errorf("hex string too long, want at most %d bytes", AddressLength)
	}
	return bytesToFixed(b), nil
}

// BytesToObjectID returns the ObjectID with value b. If b is larger than 32
// bytes, b is cropped from the left.
func BytesToObjectID(b []byte) ObjectID { return ObjectID(bytesToFixed(b)) }

// HexToObjectID parses a 0x-prefixed hex object id.
func HexToObjectID(s string) (ObjectID, error) {
	v, err := fixedFromHex(s)
	return ObjectID(v), err
}

// MustObjectID is HexToObjectID that panics on invalid input. Intended for
// tests and static initializers.
func MustObjectID(s string) ObjectID {
	id, err := HexToObjectID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Bytes returns the id as a byte slice.
func (id ObjectID) Bytes() []byte { return id[:] }

// Hex returns the 0x-prefixed hex encoding of the id.
func (id ObjectID) Hex() string { return "0x" + hex.EncodeToString(id[:]) }

// String implements fmt.Stringer.
func (id ObjectID) String() string { return id.Hex() }

// ShortString returns an abbreviated id for log output.
func (id ObjectID) ShortString() string { return id.Hex()[:10] + "…" }

// MarshalText implements encoding.TextMarshaler.
func (id ObjectID) MarshalText() ([]byte, error) { return []byte(id.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ObjectID) UnmarshalText(input []byte) error {
	v, err := fixedFromHex(string(input))
	if err != nil {
		return fmt.Errorf("invalid object id %q: %w", input, err)
	}
	*id = ObjectID(v)
	return nil
}

// BytesToAddress returns the Address with value b. If b is larger than 32
// bytes, b is cropped from the left.
func BytesToAddress(b []byte) Address { return Address(bytesToFixed(b)) }

// HexToAddress parses a 0x-prefixed hex address.
func HexToAddress(s string) (Address, error) {
	v, err := fixedFromHex(s)
	return Address(v), err
}

// MustAddress is HexToAddress that panics on invalid input.
func MustAddress(s string) Address {
	a, err := HexToAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the 0x-prefixed hex encoding of the address.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) { return []byte(a.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(input []byte) error {
	v, err := fixedFromHex(string(input))
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", input, err)
	}
	*a = Address(v)
	return nil
}

// MarshalJSON encodes the version as a decimal string, the canonical wire
// form of fullnode servers.
func (v Version) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(v), 10))
}

// UnmarshalJSON accepts both a JSON number and a decimal string.
func (v *Version) UnmarshalJSON(input []byte) error {
	s := strings.Trim(string(input), `"`)
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid object version %q: %w", input, err)
	}
	*v = Version(n)
	return nil
}
