package htlc

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// AccountInfo is the view of a single ledger account handed to a program for
// the duration of one instruction.
//
// IsSigner and IsWritable reflect the caller's transaction, not the account
// itself. Changes to Lamports, Owner and Data are kept only if the whole
// transaction succeeds.
type AccountInfo struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool
	Lamports   uint64
	Owner      solana.PublicKey
	Data       []byte
}

// IsUnused returns true if the account was never created: it holds no
// balance, no data and is owned by the system program.
func (a *AccountInfo) IsUnused() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.Owner.Equals(solana.SystemProgramID)
}

// Seeds are the derivation inputs of a program derived account. Passing them
// to the Runtime is the only way a program can act on behalf of an account it
// derived.
type Seeds [][]byte

// Runtime is implemented by the ledger and gives a program access to the
// system primitives. Every call is bound to the program currently executing.
type Runtime interface {
	// CreateAccount moves lamports from the funding account into a new
	// account, allocates space bytes of zeroed data for it and assigns it
	// to owner. The new account must be derived from the given seeds.
	CreateAccount(ctx context.Context, from, to *AccountInfo, lamports, space uint64, owner solana.PublicKey, signer Seeds) error

	// Transfer moves lamports between two system owned accounts. The source
	// must either sign the transaction or be derived from the given seeds.
	Transfer(ctx context.Context, from, to *AccountInfo, lamports uint64, signer Seeds) error
}

// Program processes instructions addressed to its id.
type Program interface {
	ID() solana.PublicKey
	Process(ctx context.Context, rt Runtime, accounts []*AccountInfo, data []byte) error
}
