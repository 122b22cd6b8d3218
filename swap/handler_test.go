package swap_test

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/htlctest"
	"github.com/iov-one/htlc/htlctest/assert"
	"github.com/iov-one/htlc/ledger"
	"github.com/iov-one/htlc/swap"
)

const (
	lockTime       = 1000
	amount         = 500
	rentExemption  = 100
	initialBalance = 10000
)

// fixture is a ledger running the escrow program with a funded sender and
// receiver, and a swap agreed between them but not funded yet.
type fixture struct {
	programID  solana.PublicKey
	sender     solana.PublicKey
	receiver   solana.PublicKey
	secret     [swap.HashSize]byte
	secretHash [swap.HashSize]byte
	escrow     swap.Escrow
	ledger     *ledger.Ledger
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	f := &fixture{
		programID: htlctest.NewKey(t),
		sender:    htlctest.NewKey(t),
		receiver:  htlctest.NewKey(t),
		secret:    htlctest.RandomSecret(t),
	}
	f.secretHash = swap.HashSecret(f.secret[:])

	escrow, err := swap.FindEscrow(f.programID, lockTime, f.secretHash)
	assert.Nil(t, err)
	f.escrow = escrow

	f.ledger = htlctest.NewLedger(t, []htlc.Program{swap.NewProgram(f.programID)},
		htlctest.Balance{Address: f.sender, Lamports: initialBalance},
		htlctest.Balance{Address: f.receiver, Lamports: initialBalance},
	)
	return f
}

func (f *fixture) fundMsg() *swap.FundMsg {
	return &swap.FundMsg{
		SecretHash:    f.secretHash,
		LockTime:      lockTime,
		Amount:        amount,
		Receiver:      f.receiver,
		RentExemption: rentExemption,
		VaultBump:     f.escrow.VaultBump,
		VaultDataBump: f.escrow.VaultDataBump,
	}
}

func (f *fixture) fundTokenMsg(token solana.PublicKey) *swap.FundTokenMsg {
	return &swap.FundTokenMsg{
		SecretHash:    f.secretHash,
		LockTime:      lockTime,
		Amount:        amount,
		Receiver:      f.receiver,
		TokenProgram:  token,
		RentExemption: rentExemption,
		VaultBump:     f.escrow.VaultBump,
		VaultDataBump: f.escrow.VaultDataBump,
	}
}

func (f *fixture) spendMsg() *swap.ReceiverSpendMsg {
	return &swap.ReceiverSpendMsg{
		Secret:        f.secret,
		LockTime:      lockTime,
		Amount:        amount,
		Sender:        f.sender,
		VaultBump:     f.escrow.VaultBump,
		VaultDataBump: f.escrow.VaultDataBump,
	}
}

func (f *fixture) refundMsg() *swap.SenderRefundMsg {
	return &swap.SenderRefundMsg{
		SecretHash:    f.secretHash,
		LockTime:      lockTime,
		Amount:        amount,
		Receiver:      f.receiver,
		VaultBump:     f.escrow.VaultBump,
		VaultDataBump: f.escrow.VaultDataBump,
	}
}

// execute runs msg signed by payer against the escrow accounts of the
// fixture, whatever the msg content is.
func (f *fixture) execute(ctx context.Context, t testing.TB, payer solana.PublicKey, msg swap.Msg) error {
	t.Helper()
	data, err := swap.Pack(msg)
	assert.Nil(t, err)
	ins := solana.NewInstruction(f.programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(f.escrow.VaultData, true, false),
		solana.NewAccountMeta(f.escrow.Vault, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, data)
	return f.ledger.Execute(ctx, ledger.Transaction{
		Signers:      []solana.PublicKey{payer},
		Instructions: []solana.Instruction{ins},
	})
}

func (f *fixture) payment(t testing.TB) *swap.Payment {
	t.Helper()
	acc, err := f.ledger.Account(f.escrow.VaultData)
	assert.Nil(t, err)
	p, err := swap.LoadPayment(&htlc.AccountInfo{Key: f.escrow.VaultData, Owner: acc.Owner, Data: acc.Data})
	assert.Nil(t, err)
	return p
}

func TestFund(t *testing.T) {
	cases := map[string]struct {
		setup   func(t *testing.T, ctx context.Context, f *fixture)
		mutator func(msg *swap.FundMsg)
		wantErr *errors.Error
	}{
		"happy path": {
			wantErr: nil,
		},
		"default receiver": {
			mutator: func(msg *swap.FundMsg) { msg.Receiver = solana.PublicKey{} },
			wantErr: errors.ErrReceiverSetToDefault,
		},
		"zero amount": {
			mutator: func(msg *swap.FundMsg) { msg.Amount = 0 },
			wantErr: errors.ErrInvalidAmount,
		},
		"zero lock time": {
			mutator: func(msg *swap.FundMsg) { msg.LockTime = 0 },
			wantErr: errors.ErrInvalidLockTime,
		},
		"not enough lamports": {
			mutator: func(msg *swap.FundMsg) { msg.Amount = initialBalance },
			wantErr: errors.ErrInsufficientFunds,
		},
		"rent exemption above balance": {
			mutator: func(msg *swap.FundMsg) { msg.RentExemption = ^uint64(0) - amount + 1 },
			wantErr: errors.ErrInsufficientFunds,
		},
		"funded twice": {
			setup: func(t *testing.T, ctx context.Context, f *fixture) {
				assert.Nil(t, f.execute(ctx, t, f.sender, f.fundMsg()))
			},
			wantErr: errors.ErrAccountInUse,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := htlctest.Context(t)
			f := newFixture(t)
			if tc.setup != nil {
				tc.setup(t, ctx, f)
			}
			senderBefore := htlctest.BalanceOf(t, f.ledger, f.sender)
			vaultBefore := htlctest.BalanceOf(t, f.ledger, f.escrow.Vault)

			msg := f.fundMsg()
			if tc.mutator != nil {
				tc.mutator(msg)
			}
			err := f.execute(ctx, t, f.sender, msg)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %+v error, got %+v", tc.wantErr, err)
			}
			if tc.wantErr != nil {
				assert.Equal(t, senderBefore, htlctest.BalanceOf(t, f.ledger, f.sender))
				assert.Equal(t, vaultBefore, htlctest.BalanceOf(t, f.ledger, f.escrow.Vault))
				return
			}

			assert.Equal(t, uint64(initialBalance-amount-2*rentExemption), htlctest.BalanceOf(t, f.ledger, f.sender))
			assert.Equal(t, uint64(amount+rentExemption), htlctest.BalanceOf(t, f.ledger, f.escrow.Vault))
			assert.Equal(t, uint64(rentExemption), htlctest.BalanceOf(t, f.ledger, f.escrow.VaultData))

			acc, err := f.ledger.Account(f.escrow.VaultData)
			assert.Nil(t, err)
			assert.Equal(t, f.programID, acc.Owner)
			assert.Equal(t, swap.PaymentSize, len(acc.Data))

			want := swap.NewPayment(swap.Commitment(f.receiver, f.sender, f.secretHash[:], nil, amount), lockTime)
			assert.Equal(t, want, f.payment(t))
		})
	}
}

func TestFundToken(t *testing.T) {
	ctx := htlctest.Context(t)
	f := newFixture(t)
	token := htlctest.NewKey(t)

	assert.Nil(t, f.execute(ctx, t, f.sender, f.fundTokenMsg(token)))

	// Only the record is paid for, tokens are moved by the token program.
	assert.Equal(t, uint64(initialBalance-rentExemption), htlctest.BalanceOf(t, f.ledger, f.sender))
	assert.Equal(t, uint64(0), htlctest.BalanceOf(t, f.ledger, f.escrow.Vault))

	want := swap.NewPayment(swap.Commitment(f.receiver, f.sender, f.secretHash[:], &token, amount), lockTime)
	assert.Equal(t, want, f.payment(t))

	spend := f.spendMsg()
	spend.TokenProgram = token
	err := f.execute(ctx, t, f.receiver, spend)
	assert.IsErr(t, errors.ErrNotSupported, err)
	assert.Equal(t, swap.Funded, f.payment(t).State)

	refund := f.refundMsg()
	refund.TokenProgram = token
	err = f.execute(ctx, t, f.sender, refund)
	assert.IsErr(t, errors.ErrNotSupported, err)
	assert.Equal(t, swap.Funded, f.payment(t).State)
}

func TestReceiverSpend(t *testing.T) {
	cases := map[string]struct {
		fund      bool
		setup     func(t *testing.T, ctx context.Context, f *fixture)
		signer    func(f *fixture) solana.PublicKey
		mutator   func(msg *swap.ReceiverSpendMsg)
		wantErr   *errors.Error
		wantState swap.PaymentState
	}{
		"happy path": {
			fund:      true,
			wantErr:   nil,
			wantState: swap.Spent,
		},
		"wrong secret": {
			fund:      true,
			mutator:   func(msg *swap.ReceiverSpendMsg) { msg.Secret[31] ^= 0x01 },
			wantErr:   errors.ErrInvalidPaymentHash,
			wantState: swap.Funded,
		},
		"wrong sender": {
			fund:      true,
			mutator:   func(msg *swap.ReceiverSpendMsg) { msg.Sender[0] ^= 0x01 },
			wantErr:   errors.ErrInvalidPaymentHash,
			wantState: swap.Funded,
		},
		"wrong amount": {
			fund:      true,
			mutator:   func(msg *swap.ReceiverSpendMsg) { msg.Amount = amount - 1 },
			wantErr:   errors.ErrInvalidPaymentHash,
			wantState: swap.Funded,
		},
		"claimed by sender": {
			fund:      true,
			signer:    func(f *fixture) solana.PublicKey { return f.sender },
			wantErr:   errors.ErrInvalidPaymentHash,
			wantState: swap.Funded,
		},
		"already spent": {
			fund: true,
			setup: func(t *testing.T, ctx context.Context, f *fixture) {
				assert.Nil(t, f.execute(ctx, t, f.receiver, f.spendMsg()))
			},
			wantErr:   errors.ErrInvalidPaymentState,
			wantState: swap.Spent,
		},
		"already refunded": {
			fund: true,
			setup: func(t *testing.T, ctx context.Context, f *fixture) {
				assert.Nil(t, f.execute(ctx, t, f.sender, f.refundMsg()))
			},
			wantErr:   errors.ErrInvalidPaymentState,
			wantState: swap.Refunded,
		},
		"not funded": {
			fund:    false,
			wantErr: errors.ErrInvalidOwner,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := htlctest.Context(t)
			f := newFixture(t)
			if tc.fund {
				assert.Nil(t, f.execute(ctx, t, f.sender, f.fundMsg()))
			}
			if tc.setup != nil {
				tc.setup(t, ctx, f)
			}
			signer := f.receiver
			if tc.signer != nil {
				signer = tc.signer(f)
			}
			signerBefore := htlctest.BalanceOf(t, f.ledger, signer)
			vaultBefore := htlctest.BalanceOf(t, f.ledger, f.escrow.Vault)

			msg := f.spendMsg()
			if tc.mutator != nil {
				tc.mutator(msg)
			}
			err := f.execute(ctx, t, signer, msg)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %+v error, got %+v", tc.wantErr, err)
			}
			if !tc.fund {
				return
			}
			assert.Equal(t, tc.wantState, f.payment(t).State)
			if tc.wantErr != nil {
				assert.Equal(t, signerBefore, htlctest.BalanceOf(t, f.ledger, signer))
				assert.Equal(t, vaultBefore, htlctest.BalanceOf(t, f.ledger, f.escrow.Vault))
				return
			}
			assert.Equal(t, signerBefore+amount, htlctest.BalanceOf(t, f.ledger, signer))
			assert.Equal(t, vaultBefore-amount, htlctest.BalanceOf(t, f.ledger, f.escrow.Vault))
		})
	}
}

func TestSenderRefund(t *testing.T) {
	cases := map[string]struct {
		fund      bool
		setup     func(t *testing.T, ctx context.Context, f *fixture)
		signer    func(f *fixture) solana.PublicKey
		mutator   func(msg *swap.SenderRefundMsg)
		wantErr   *errors.Error
		wantState swap.PaymentState
	}{
		"happy path": {
			fund:      true,
			wantErr:   nil,
			wantState: swap.Refunded,
		},
		"wrong secret hash": {
			fund:      true,
			mutator:   func(msg *swap.SenderRefundMsg) { msg.SecretHash[0] ^= 0x80 },
			wantErr:   errors.ErrInvalidPaymentHash,
			wantState: swap.Funded,
		},
		"wrong receiver": {
			fund:      true,
			mutator:   func(msg *swap.SenderRefundMsg) { msg.Receiver[5] ^= 0x01 },
			wantErr:   errors.ErrInvalidPaymentHash,
			wantState: swap.Funded,
		},
		"refunded by receiver": {
			fund:      true,
			signer:    func(f *fixture) solana.PublicKey { return f.receiver },
			wantErr:   errors.ErrInvalidPaymentHash,
			wantState: swap.Funded,
		},
		"native payment refunded as token": {
			fund: true,
			mutator: func(msg *swap.SenderRefundMsg) {
				msg.TokenProgram = solana.PublicKeyFromBytes([]byte{1})
			},
			wantErr:   errors.ErrInvalidPaymentHash,
			wantState: swap.Funded,
		},
		"already spent": {
			fund: true,
			setup: func(t *testing.T, ctx context.Context, f *fixture) {
				assert.Nil(t, f.execute(ctx, t, f.receiver, f.spendMsg()))
			},
			wantErr:   errors.ErrInvalidPaymentState,
			wantState: swap.Spent,
		},
		"already refunded": {
			fund: true,
			setup: func(t *testing.T, ctx context.Context, f *fixture) {
				assert.Nil(t, f.execute(ctx, t, f.sender, f.refundMsg()))
			},
			wantErr:   errors.ErrInvalidPaymentState,
			wantState: swap.Refunded,
		},
		"not funded": {
			fund:    false,
			wantErr: errors.ErrInvalidOwner,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := htlctest.Context(t)
			f := newFixture(t)
			if tc.fund {
				assert.Nil(t, f.execute(ctx, t, f.sender, f.fundMsg()))
			}
			if tc.setup != nil {
				tc.setup(t, ctx, f)
			}
			signer := f.sender
			if tc.signer != nil {
				signer = tc.signer(f)
			}
			signerBefore := htlctest.BalanceOf(t, f.ledger, signer)

			msg := f.refundMsg()
			if tc.mutator != nil {
				tc.mutator(msg)
			}
			err := f.execute(ctx, t, signer, msg)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %+v error, got %+v", tc.wantErr, err)
			}
			if !tc.fund {
				return
			}
			assert.Equal(t, tc.wantState, f.payment(t).State)
			if tc.wantErr != nil {
				assert.Equal(t, signerBefore, htlctest.BalanceOf(t, f.ledger, signer))
				return
			}
			assert.Equal(t, signerBefore+amount, htlctest.BalanceOf(t, f.ledger, signer))
			assert.Equal(t, uint64(rentExemption), htlctest.BalanceOf(t, f.ledger, f.escrow.Vault))
		})
	}
}

func TestProcessRejectsDefaultReceiverBeforeAccounts(t *testing.T) {
	f := newFixture(t)
	msg := f.fundMsg()
	msg.Receiver = solana.PublicKey{}
	data, err := swap.Pack(msg)
	assert.Nil(t, err)
	assert.Equal(t, 92, len(data))

	// Neither accounts nor a runtime are available, any access would panic.
	err = swap.NewProgram(f.programID).Process(htlctest.Context(t), nil, nil, data)
	assert.IsErr(t, errors.ErrReceiverSetToDefault, err)
}

func TestProcessRejectsMissingAccounts(t *testing.T) {
	f := newFixture(t)
	data, err := swap.Pack(f.spendMsg())
	assert.Nil(t, err)
	err = swap.NewProgram(f.programID).Process(htlctest.Context(t), nil, nil, data)
	assert.IsErr(t, errors.ErrNotEnoughAccounts, err)
}

func TestFailedSettlementKeepsPaymentFunded(t *testing.T) {
	cases := map[string]struct {
		signer func(f *fixture) solana.PublicKey
		msg    func(f *fixture, vaultBump uint8) swap.Msg
	}{
		"spend": {
			signer: func(f *fixture) solana.PublicKey { return f.receiver },
			msg: func(f *fixture, vaultBump uint8) swap.Msg {
				msg := f.spendMsg()
				msg.VaultBump = vaultBump
				return msg
			},
		},
		"refund": {
			signer: func(f *fixture) solana.PublicKey { return f.sender },
			msg: func(f *fixture, vaultBump uint8) swap.Msg {
				msg := f.refundMsg()
				msg.VaultBump = vaultBump
				return msg
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := htlctest.Context(t)
			f := newFixture(t)
			assert.Nil(t, f.execute(ctx, t, f.sender, f.fundMsg()))
			signer := tc.signer(f)
			signerBefore := htlctest.BalanceOf(t, f.ledger, signer)

			// The payment is marked settled before the vault transfer, which
			// fails as the bump does not derive the vault.
			if err := f.execute(ctx, t, signer, tc.msg(f, f.escrow.VaultBump+1)); err == nil {
				t.Fatal("transfer with a wrong vault bump must fail")
			}
			assert.Equal(t, swap.Funded, f.payment(t).State)
			assert.Equal(t, signerBefore, htlctest.BalanceOf(t, f.ledger, signer))
			assert.Equal(t, uint64(amount+rentExemption), htlctest.BalanceOf(t, f.ledger, f.escrow.Vault))

			assert.Nil(t, f.execute(ctx, t, signer, tc.msg(f, f.escrow.VaultBump)))
			assert.Equal(t, signerBefore+amount, htlctest.BalanceOf(t, f.ledger, signer))
			assert.Equal(t, uint64(rentExemption), htlctest.BalanceOf(t, f.ledger, f.escrow.Vault))
		})
	}
}
