package signer

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
)

func TestFromSeedDeterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x11}, 32)
	a, err := FromSeed(seed)
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	b, err := FromSeed(seed)
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	if a.Address() != b.Address() {
		t.Fatalf("same seed, different addresses: %s vs %s", a.Address(), b.Address())
	}
	if !strings.HasPrefix(a.Address().Hex(), "0x") || len(a.Address().Hex()) != 66 {
		t.Fatalf("malformed address %q", a.Address().Hex())
	}
}

func TestFromSeedRejectsBadLength(t *testing.T) {
	if _, err := FromSeed([]byte{1, 2, 3}); err == nil {
		t.Fatal("short seed accepted")
	}
}

func TestFromHexSeed(t *testing.T) {
	s, err := FromHexSeed(strings.Repeat("22", 32))
	if err != nil {
		t.Fatalf("FromHexSeed: %v", err)
	}
	want, _ := FromSeed(bytes.Repeat([]byte{0x22}, 32))
	if s.Address() != want.Address() {
		t.Fatalf("hex seed diverged: %s vs %s", s.Address(), want.Address())
	}
	if _, err := FromHexSeed("zz"); err == nil {
		t.Fatal("invalid hex accepted")
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	s, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	txBytes := []byte("serialized transaction")
	sig := s.SignTransaction(txBytes)

	addr, ok := VerifyTransaction(txBytes, sig)
	if !ok {
		t.Fatal("valid signature rejected")
	}
	if addr != s.Address() {
		t.Fatalf("recovered address: have %s want %s", addr, s.Address())
	}
}

func TestVerifyRejectsTamperedBytes(t *testing.T) {
	s, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	sig := s.SignTransaction([]byte("original"))
	if _, ok := VerifyTransaction([]byte("tampered"), sig); ok {
		t.Fatal("signature verified over different bytes")
	}
}

func TestVerifyRejectsBadEnvelope(t *testing.T) {
	for _, sig := range []string{
		"",
		"!!!not base64!!!",
		base64.StdEncoding.EncodeToString([]byte{0x00, 0x01, 0x02}),
		base64.StdEncoding.EncodeToString(append([]byte{0x42}, make([]byte, 96)...)), // wrong scheme flag
	} {
		if _, ok := VerifyTransaction([]byte("tx"), sig); ok {
			t.Fatalf("envelope %q accepted", sig)
		}
	}
}

func TestSignatureEnvelopeShape(t *testing.T) {
	s, err := FromSeed(bytes.Repeat([]byte{0x33}, 32))
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(s.SignTransaction([]byte("tx")))
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if len(raw) != 1+64+32 {
		t.Fatalf("envelope length: have %d want 97", len(raw))
	}
	if raw[0] != SchemeFlagEd25519 {
		t.Fatalf("scheme flag: have %#x", raw[0])
	}
	if !bytes.Equal(raw[65:], s.PublicKey()) {
		t.Fatal("public key not appended")
	}
}
