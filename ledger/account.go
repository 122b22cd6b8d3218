package ledger

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc/errors"
)

// Account is the persisted state of a single ledger account.
type Account struct {
	Lamports uint64
	Owner    solana.PublicKey
	Data     []byte
}

// NewSystemAccount returns an account owned by the system program that holds
// only a balance.
func NewSystemAccount(lamports uint64) *Account {
	return &Account{
		Lamports: lamports,
		Owner:    solana.SystemProgramID,
	}
}

// Marshal serializes the account using the borsh layout.
func (a *Account) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(a); err != nil {
		return nil, errors.Wrap(err, "encode account")
	}
	return buf.Bytes(), nil
}

// Unmarshal loads the account from its borsh serialized form.
func (a *Account) Unmarshal(raw []byte) error {
	if err := bin.NewBorshDecoder(raw).Decode(a); err != nil {
		return errors.Wrap(err, "decode account")
	}
	return nil
}

func accountKey(addr solana.PublicKey) []byte {
	return append([]byte("acct:"), addr[:]...)
}
