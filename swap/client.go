package swap

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc/errors"
)

// NewFundInstruction builds the instruction locking msg.Amount paid by
// sender. The bumps carried by msg must be the ones returned by FindEscrow.
func NewFundInstruction(programID, sender solana.PublicKey, msg *FundMsg) (solana.Instruction, error) {
	return newInstruction(programID, sender, msg.LockTime, msg.SecretHash, msg.VaultBump, msg.VaultDataBump, msg)
}

// NewFundTokenInstruction builds the instruction recording a token payment
// made by sender.
func NewFundTokenInstruction(programID, sender solana.PublicKey, msg *FundTokenMsg) (solana.Instruction, error) {
	return newInstruction(programID, sender, msg.LockTime, msg.SecretHash, msg.VaultBump, msg.VaultDataBump, msg)
}

// NewSpendInstruction builds the instruction by which receiver claims a
// payment revealing the secret.
func NewSpendInstruction(programID, receiver solana.PublicKey, msg *ReceiverSpendMsg) (solana.Instruction, error) {
	secretHash := HashSecret(msg.Secret[:])
	return newInstruction(programID, receiver, msg.LockTime, secretHash, msg.VaultBump, msg.VaultDataBump, msg)
}

// NewRefundInstruction builds the instruction by which sender takes a payment
// back.
func NewRefundInstruction(programID, sender solana.PublicKey, msg *SenderRefundMsg) (solana.Instruction, error) {
	return newInstruction(programID, sender, msg.LockTime, msg.SecretHash, msg.VaultBump, msg.VaultDataBump, msg)
}

func newInstruction(programID, payer solana.PublicKey, lockTime uint64, secretHash [HashSize]byte, vaultBump, dataBump uint8, msg Msg) (solana.Instruction, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	vault, err := DeriveAddress(programID, VaultSeeds(lockTime, secretHash, vaultBump))
	if err != nil {
		return nil, errors.Wrap(err, "vault")
	}
	vaultData, err := DeriveAddress(programID, VaultDataSeeds(lockTime, secretHash, dataBump))
	if err != nil {
		return nil, errors.Wrap(err, "vault data")
	}
	data, err := Pack(msg)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(vaultData, true, false),
		solana.NewAccountMeta(vault, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}
