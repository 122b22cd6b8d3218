package swap

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// escrowAccounts is the positional account list shared by all instructions.
type escrowAccounts struct {
	// payer funds a swap or settles it, depending on the instruction.
	payer     *htlc.AccountInfo
	vaultData *htlc.AccountInfo
	vault     *htlc.AccountInfo
	system    *htlc.AccountInfo
}

// commonAccounts takes the first four accounts. Extra accounts are ignored.
func commonAccounts(accounts []*htlc.AccountInfo) (escrowAccounts, error) {
	if len(accounts) < 4 {
		return escrowAccounts{}, errors.Wrapf(errors.ErrNotEnoughAccounts, "4 accounts required, got %d", len(accounts))
	}
	return escrowAccounts{
		payer:     accounts[0],
		vaultData: accounts[1],
		vault:     accounts[2],
		system:    accounts[3],
	}, nil
}

// validateAccounts checks the accounts of an instruction. The vault must
// still be a system account. When programID is given the vault-data account
// must be owned by it, which proves it was created by a funding.
func validateAccounts(acc escrowAccounts, programID *solana.PublicKey) error {
	if !acc.payer.IsSigner {
		return errors.Wrapf(errors.ErrMissingSignature, "account %s", acc.payer.Key)
	}
	if !acc.vaultData.IsWritable || !acc.vault.IsWritable {
		return errors.Wrap(errors.ErrNotWritable, "vault and vault data must be writable")
	}
	if !acc.vault.Owner.Equals(solana.SystemProgramID) {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "vault owned by %s", acc.vault.Owner)
	}
	if !acc.system.Key.Equals(solana.SystemProgramID) {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "system program expected, got %s", acc.system.Key)
	}
	if programID != nil && !acc.vaultData.Owner.Equals(*programID) {
		return errors.Wrapf(errors.ErrInvalidOwner, "vault data owned by %s", acc.vaultData.Owner)
	}
	return nil
}

// validatePaymentParams rejects payments that could never be claimed.
func validatePaymentParams(receiver solana.PublicKey, amount uint64) error {
	if receiver.IsZero() {
		return errors.ErrReceiverSetToDefault.New("receiver")
	}
	if amount == 0 {
		return errors.ErrAmountZero.New("amount")
	}
	return nil
}
