package ledger

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// runtime implements htlc.Runtime for a single instruction of the program
// identified by programID.
type runtime struct {
	programID solana.PublicKey
}

var _ htlc.Runtime = (*runtime)(nil)

func (r *runtime) CreateAccount(ctx context.Context, from, to *htlc.AccountInfo, lamports, space uint64, owner solana.PublicKey, signer htlc.Seeds) error {
	derived, err := r.derive(signer)
	if err != nil {
		return err
	}
	if !from.IsSigner {
		return errors.Wrapf(errors.ErrMissingSignature, "funding account %s", from.Key)
	}
	if !authorized(to, derived) {
		return errors.Wrapf(errors.ErrMissingSignature, "new account %s", to.Key)
	}
	if !from.IsWritable || !to.IsWritable {
		return errors.Wrap(errors.ErrNotWritable, "create account")
	}
	if !to.IsUnused() {
		return errors.Wrapf(errors.ErrAccountInUse, "account %s", to.Key)
	}
	if err := debit(from, lamports); err != nil {
		return err
	}
	to.Lamports = lamports
	to.Data = make([]byte, space)
	to.Owner = owner

	htlc.GetLogger(ctx).Debug("account created", "address", to.Key.String(), "space", space, "owner", owner.String())
	return nil
}

func (r *runtime) Transfer(ctx context.Context, from, to *htlc.AccountInfo, lamports uint64, signer htlc.Seeds) error {
	derived, err := r.derive(signer)
	if err != nil {
		return err
	}
	if !authorized(from, derived) {
		return errors.Wrapf(errors.ErrMissingSignature, "transfer source %s", from.Key)
	}
	if !from.IsWritable || !to.IsWritable {
		return errors.Wrap(errors.ErrNotWritable, "transfer")
	}
	if !from.Owner.Equals(solana.SystemProgramID) || len(from.Data) != 0 {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "transfer source %s must be a system account", from.Key)
	}
	if from.Key.Equals(to.Key) {
		return nil
	}
	sum := to.Lamports + lamports
	if sum < to.Lamports {
		return errors.Wrapf(errors.ErrOverflow, "transfer to %s", to.Key)
	}
	if err := debit(from, lamports); err != nil {
		return err
	}
	to.Lamports = sum

	htlc.GetLogger(ctx).Debug("transfer", "from", from.Key.String(), "to", to.Key.String(), "lamports", lamports)
	return nil
}

// derive returns the address the executing program derives from given seeds.
// Nil seeds authorize nothing.
func (r *runtime) derive(seeds htlc.Seeds) (*solana.PublicKey, error) {
	if seeds == nil {
		return nil, nil
	}
	addr, err := solana.CreateProgramAddress(seeds, r.programID)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidSeeds, "derive: %s", err)
	}
	return &addr, nil
}

func authorized(acc *htlc.AccountInfo, derived *solana.PublicKey) bool {
	if acc.IsSigner {
		return true
	}
	return derived != nil && derived.Equals(acc.Key)
}

func debit(acc *htlc.AccountInfo, lamports uint64) error {
	if acc.Lamports < lamports {
		return errors.Wrapf(errors.ErrInsufficientFunds, "account %s holds %d, %d required", acc.Key, acc.Lamports, lamports)
	}
	acc.Lamports -= lamports
	return nil
}
