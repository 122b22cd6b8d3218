package swap

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// Program is the escrow program. It is stateless, all swap state lives in
// the accounts handed to Process.
type Program struct {
	id solana.PublicKey
}

var _ htlc.Program = (*Program)(nil)

// NewProgram returns the escrow program deployed at id.
func NewProgram(id solana.PublicKey) *Program {
	return &Program{id: id}
}

// ID returns the address the program is deployed at.
func (p *Program) ID() solana.PublicKey {
	return p.id
}

// Process decodes the instruction and runs it against the accounts. Nothing
// is written to the accounts before all checks pass.
func (p *Program) Process(ctx context.Context, rt htlc.Runtime, accounts []*htlc.AccountInfo, data []byte) error {
	msg, err := Unpack(data)
	if err != nil {
		return err
	}
	htlc.GetLogger(ctx).Debug("instruction decoded", "tag", msg.Tag(), "accounts", len(accounts))

	switch m := msg.(type) {
	case *FundMsg:
		return p.fund(ctx, rt, accounts, m)
	case *FundTokenMsg:
		return p.fundToken(ctx, rt, accounts, m)
	case *ReceiverSpendMsg:
		return p.receiverSpend(ctx, rt, accounts, m)
	case *SenderRefundMsg:
		return p.senderRefund(ctx, rt, accounts, m)
	default:
		return errors.Wrapf(errors.ErrHuman, "unhandled instruction %T", msg)
	}
}

// fund creates the payment record and moves the amount, together with the
// rent exemption, into the vault.
func (p *Program) fund(ctx context.Context, rt htlc.Runtime, accounts []*htlc.AccountInfo, msg *FundMsg) error {
	acc, err := p.fundingAccounts(accounts, msg.Receiver, msg.Amount)
	if err != nil {
		return err
	}

	commitment := Commitment(msg.Receiver, acc.payer.Key, msg.SecretHash[:], nil, msg.Amount)
	dataSeeds := VaultDataSeeds(msg.LockTime, msg.SecretHash, msg.VaultDataBump)
	if err := p.createPayment(ctx, rt, acc, msg.RentExemption, dataSeeds, NewPayment(commitment, msg.LockTime)); err != nil {
		return err
	}

	total := msg.Amount + msg.RentExemption
	if total < msg.Amount {
		return errors.Wrap(errors.ErrOverflow, "amount with rent exemption")
	}
	vaultSeeds := VaultSeeds(msg.LockTime, msg.SecretHash, msg.VaultBump)
	if err := rt.Transfer(ctx, acc.payer, acc.vault, total, vaultSeeds); err != nil {
		return errors.Wrap(err, "fund vault")
	}

	htlc.GetLogger(ctx).Info("swap funded",
		"vault_data", acc.vaultData.Key.String(),
		"vault", acc.vault.Key.String(),
		"amount", msg.Amount)
	return nil
}

// fundToken creates the payment record only. Moving the tokens into the
// vault is a separate token program instruction.
func (p *Program) fundToken(ctx context.Context, rt htlc.Runtime, accounts []*htlc.AccountInfo, msg *FundTokenMsg) error {
	acc, err := p.fundingAccounts(accounts, msg.Receiver, msg.Amount)
	if err != nil {
		return err
	}

	commitment := Commitment(msg.Receiver, acc.payer.Key, msg.SecretHash[:], &msg.TokenProgram, msg.Amount)
	dataSeeds := VaultDataSeeds(msg.LockTime, msg.SecretHash, msg.VaultDataBump)
	if err := p.createPayment(ctx, rt, acc, msg.RentExemption, dataSeeds, NewPayment(commitment, msg.LockTime)); err != nil {
		return err
	}

	htlc.GetLogger(ctx).Info("token swap funded",
		"vault_data", acc.vaultData.Key.String(),
		"token_program", msg.TokenProgram.String(),
		"amount", msg.Amount)
	return nil
}

// receiverSpend releases the vault to the receiver revealing the secret.
func (p *Program) receiverSpend(ctx context.Context, rt htlc.Runtime, accounts []*htlc.AccountInfo, msg *ReceiverSpendMsg) error {
	acc, err := p.settlementAccounts(accounts)
	if err != nil {
		return err
	}

	secretHash := HashSecret(msg.Secret[:])
	commitment := Commitment(acc.payer.Key, msg.Sender, secretHash[:], &msg.TokenProgram, msg.Amount)
	if err := updatePaymentState(acc.vaultData, commitment, Funded, Spent); err != nil {
		return err
	}
	if !msg.TokenProgram.IsZero() {
		return errors.Wrapf(errors.ErrNotSupported, "spend in token %s", msg.TokenProgram)
	}
	vaultSeeds := VaultSeeds(msg.LockTime, secretHash, msg.VaultBump)
	if err := rt.Transfer(ctx, acc.vault, acc.payer, msg.Amount, vaultSeeds); err != nil {
		return errors.Wrap(err, "release vault")
	}

	htlc.GetLogger(ctx).Info("swap spent",
		"vault_data", acc.vaultData.Key.String(),
		"receiver", acc.payer.Key.String(),
		"amount", msg.Amount)
	return nil
}

// senderRefund returns the vault to the sender repeating the payment terms.
func (p *Program) senderRefund(ctx context.Context, rt htlc.Runtime, accounts []*htlc.AccountInfo, msg *SenderRefundMsg) error {
	acc, err := p.settlementAccounts(accounts)
	if err != nil {
		return err
	}

	commitment := Commitment(msg.Receiver, acc.payer.Key, msg.SecretHash[:], &msg.TokenProgram, msg.Amount)
	if err := updatePaymentState(acc.vaultData, commitment, Funded, Refunded); err != nil {
		return err
	}
	if !msg.TokenProgram.IsZero() {
		return errors.Wrapf(errors.ErrNotSupported, "refund in token %s", msg.TokenProgram)
	}
	vaultSeeds := VaultSeeds(msg.LockTime, msg.SecretHash, msg.VaultBump)
	if err := rt.Transfer(ctx, acc.vault, acc.payer, msg.Amount, vaultSeeds); err != nil {
		return errors.Wrap(err, "refund vault")
	}

	htlc.GetLogger(ctx).Info("swap refunded",
		"vault_data", acc.vaultData.Key.String(),
		"sender", acc.payer.Key.String(),
		"amount", msg.Amount)
	return nil
}

// fundingAccounts does all common pre-processing of both funding instructions.
func (p *Program) fundingAccounts(accounts []*htlc.AccountInfo, receiver solana.PublicKey, amount uint64) (escrowAccounts, error) {
	if err := validatePaymentParams(receiver, amount); err != nil {
		return escrowAccounts{}, err
	}
	acc, err := commonAccounts(accounts)
	if err != nil {
		return escrowAccounts{}, err
	}
	if err := validateAccounts(acc, nil); err != nil {
		return escrowAccounts{}, err
	}
	return acc, nil
}

// settlementAccounts does all common pre-processing of spend and refund.
func (p *Program) settlementAccounts(accounts []*htlc.AccountInfo) (escrowAccounts, error) {
	acc, err := commonAccounts(accounts)
	if err != nil {
		return escrowAccounts{}, err
	}
	if err := validateAccounts(acc, &p.id); err != nil {
		return escrowAccounts{}, err
	}
	return acc, nil
}

// createPayment creates the vault-data account, owned by the program and
// derived from seeds, and writes the payment into it.
func (p *Program) createPayment(ctx context.Context, rt htlc.Runtime, acc escrowAccounts, rent uint64, seeds htlc.Seeds, payment *Payment) error {
	if err := rt.CreateAccount(ctx, acc.payer, acc.vaultData, rent, PaymentSize, p.id, seeds); err != nil {
		return errors.Wrap(err, "create vault data")
	}
	return payment.WriteTo(acc.vaultData.Data)
}

// updatePaymentState moves the payment kept by the vault-data account from
// expected to next, provided its commitment matches. The account is written
// only on success.
func updatePaymentState(vaultData *htlc.AccountInfo, commitment [HashSize]byte, expected, next PaymentState) error {
	payment, err := LoadPayment(vaultData)
	if err != nil {
		return errors.Wrap(err, "load payment")
	}
	if payment.Commitment != commitment {
		return errors.Wrapf(errors.ErrInvalidPaymentHash, "account %s", vaultData.Key)
	}
	if err := payment.Transition(expected, next); err != nil {
		return err
	}
	return payment.WriteTo(vaultData.Data)
}
