package swap

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/minio/sha256-simd"
)

// HashSize is the size of a secret, a secret hash and a commitment.
const HashSize = 32

// nativeToken is hashed in place of a token program for payments in the
// ledger's native unit.
var nativeToken solana.PublicKey

// Commitment returns the hash binding the terms of a payment. A nil token
// stands for the native unit.
//
// The order of the fields is part of the protocol, funding and settlement
// must hash the same bytes.
func Commitment(receiver, sender solana.PublicKey, secretHash []byte, token *solana.PublicKey, amount uint64) [HashSize]byte {
	h := sha256.New()
	h.Write(receiver[:])
	h.Write(sender[:])
	h.Write(secretHash)
	if token != nil {
		h.Write(token[:])
	} else {
		h.Write(nativeToken[:])
	}
	var amt [8]byte
	binary.LittleEndian.PutUint64(amt[:], amount)
	h.Write(amt[:])

	var sum [HashSize]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// HashSecret returns the secret hash a payment is locked with.
func HashSecret(secret []byte) [HashSize]byte {
	return sha256.Sum256(secret)
}
