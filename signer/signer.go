// Package signer implements the ed25519 keypair used to own objects and sign
// transactions.
package signer

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/halcyon-labs/suipool/types"
)

// SchemeFlagEd25519 is the signature-scheme byte prepended to public keys and
// serialized signatures.
const SchemeFlagEd25519 byte = 0x00

// intentTransactionData is the intent prefix of user transaction signing:
// scope=TransactionData, version=V0, app=Sui.
var intentTransactionData = []byte{0x00, 0x00, 0x00}

// Signer holds an ed25519 keypair and its derived address. It is read-only
// after construction and safe for concurrent use.
type Signer struct {
	priv    ed25519.PrivateKey
	pub     ed25519.PublicKey
	address types.Address
}

// New wraps an existing private key.
func New(priv ed25519.PrivateKey) *Signer {
	pub := priv.Public().(ed25519.PublicKey)
	return &Signer{priv: priv, pub: pub, address: deriveAddress(pub)}
}

// Generate creates a signer with a fresh random keypair.
func Generate() (*Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return New(priv), nil
}

// FromSeed derives a signer from a 32-byte seed.
func FromSeed(seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid seed length %d, want %d", len(seed), ed25519.SeedSize)
	}
	return New(ed25519.NewKeyFromSeed(seed)), nil
}

// FromHexSeed derives a signer from a hex-encoded 32-byte seed.
func FromHexSeed(s string) (*Signer, error) {
	seed, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid seed hex: %w", err)
	}
	return FromSeed(seed)
}

// deriveAddress computes blake2b-256(flag || pubkey).
func deriveAddress(pub ed25519.PublicKey) types.Address {
	h, _ := blake2b.New256(nil)
	h.Write([]byte{SchemeFlagEd25519})
	h.Write(pub)
	return types.BytesToAddress(h.Sum(nil))
}

// Address returns the account address owning the signer's objects.
func (s *Signer) Address() types.Address { return s.address }

// PublicKey returns the raw ed25519 public key.
func (s *Signer) PublicKey() ed25519.PublicKey { return s.pub }

// SignTransaction signs serialized transaction bytes and returns the
// base64 serialized signature envelope flag || sig || pubkey. The signed
// digest is blake2b-256 over the transaction-data intent plus the bytes.
func (s *Signer) SignTransaction(txBytes []byte) string {
	h, _ := blake2b.New256(nil)
	h.Write(intentTransactionData)
	h.Write(txBytes)
	sig := ed25519.Sign(s.priv, h.Sum(nil))

	envelope := make([]byte, 0, 1+len(sig)+len(s.pub))
	envelope = append(envelope, SchemeFlagEd25519)
	envelope = append(envelope, sig...)
	envelope = append(envelope, s.pub...)
	return base64.StdEncoding.EncodeToString(envelope)
}

// VerifyTransaction checks a serialized signature envelope against txBytes.
func VerifyTransaction(txBytes []byte, serialized string) (types.Address, bool) {
	raw, err := base64.StdEncoding.DecodeString(serialized)
	if err != nil || len(raw) != 1+ed25519.SignatureSize+ed25519.PublicKeySize || raw[0] != SchemeFlagEd25519 {
		return types.Address{}, false
	}
	sig := raw[1 : 1+ed25519.SignatureSize]
	pub := ed25519.PublicKey(raw[1+ed25519.SignatureSize:])

	h, _ := blake2b.New256(nil)
	h.Write(intentTransactionData)
	h.Write(txBytes)
	if !ed25519.Verify(pub, h.Sum(nil), sig) {
		return types.Address{}, false
	}
	return deriveAddress(pub), true
}
