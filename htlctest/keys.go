package htlctest

import (
	"crypto/rand"
	"testing"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/crypto/ed25519"
)

// NewKey returns the address of a freshly generated ed25519 key pair. The
// private part is dropped, signatures are implied by the transaction signers
// list.
func NewKey(t testing.TB) solana.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("cannot generate a key: %s", err)
	}
	return solana.PublicKeyFromBytes(pub)
}

// RandomSecret returns a random 32 byte swap secret.
func RandomSecret(t testing.TB) [32]byte {
	t.Helper()
	var secret [32]byte
	if _, err := rand.Read(secret[:]); err != nil {
		t.Fatalf("cannot generate a secret: %s", err)
	}
	return secret
}
