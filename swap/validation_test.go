package swap

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/htlctest"
)

func TestValidateAccounts(t *testing.T) {
	programID := htlctest.NewKey(t)

	valid := func() []*htlc.AccountInfo {
		return []*htlc.AccountInfo{
			{Key: htlctest.NewKey(t), IsSigner: true, IsWritable: true, Owner: solana.SystemProgramID},
			{Key: htlctest.NewKey(t), IsWritable: true, Owner: programID},
			{Key: htlctest.NewKey(t), IsWritable: true, Owner: solana.SystemProgramID},
			{Key: solana.SystemProgramID, Owner: solana.SystemProgramID},
		}
	}

	cases := map[string]struct {
		mutate    func([]*htlc.AccountInfo) []*htlc.AccountInfo
		programID *solana.PublicKey
		wantErr   *errors.Error
	}{
		"valid funding": {
			wantErr: nil,
		},
		"valid settlement": {
			programID: &programID,
			wantErr:   nil,
		},
		"extra accounts are ignored": {
			mutate: func(a []*htlc.AccountInfo) []*htlc.AccountInfo {
				return append(a, &htlc.AccountInfo{Key: htlctest.NewKey(t)})
			},
			wantErr: nil,
		},
		"not enough accounts": {
			mutate:  func(a []*htlc.AccountInfo) []*htlc.AccountInfo { return a[:3] },
			wantErr: errors.ErrNotEnoughAccounts,
		},
		"payer did not sign": {
			mutate: func(a []*htlc.AccountInfo) []*htlc.AccountInfo {
				a[0].IsSigner = false
				return a
			},
			wantErr: errors.ErrMissingSignature,
		},
		"read only vault data": {
			mutate: func(a []*htlc.AccountInfo) []*htlc.AccountInfo {
				a[1].IsWritable = false
				return a
			},
			wantErr: errors.ErrNotWritable,
		},
		"read only vault": {
			mutate: func(a []*htlc.AccountInfo) []*htlc.AccountInfo {
				a[2].IsWritable = false
				return a
			},
			wantErr: errors.ErrNotWritable,
		},
		"vault owned by a program": {
			mutate: func(a []*htlc.AccountInfo) []*htlc.AccountInfo {
				a[2].Owner = programID
				return a
			},
			wantErr: errors.ErrIncorrectProgramID,
		},
		"wrong system program": {
			mutate: func(a []*htlc.AccountInfo) []*htlc.AccountInfo {
				a[3].Key = htlctest.NewKey(t)
				return a
			},
			wantErr: errors.ErrIncorrectProgramID,
		},
		"vault data not owned by the program": {
			mutate: func(a []*htlc.AccountInfo) []*htlc.AccountInfo {
				a[1].Owner = solana.SystemProgramID
				return a
			},
			programID: &programID,
			wantErr:   errors.ErrInvalidOwner,
		},
		"vault data owner ignored when funding": {
			mutate: func(a []*htlc.AccountInfo) []*htlc.AccountInfo {
				a[1].Owner = solana.SystemProgramID
				return a
			},
			wantErr: nil,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			accounts := valid()
			if tc.mutate != nil {
				accounts = tc.mutate(accounts)
			}
			acc, err := commonAccounts(accounts)
			if err == nil {
				err = validateAccounts(acc, tc.programID)
			}
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestValidatePaymentParams(t *testing.T) {
	cases := map[string]struct {
		receiver solana.PublicKey
		amount   uint64
		wantErr  *errors.Error
	}{
		"valid":            {receiver: htlctest.NewKey(t), amount: 1},
		"default receiver": {receiver: solana.PublicKey{}, amount: 1, wantErr: errors.ErrReceiverSetToDefault},
		"zero amount":      {receiver: htlctest.NewKey(t), amount: 0, wantErr: errors.ErrAmountZero},
		"both invalid":     {receiver: solana.PublicKey{}, amount: 0, wantErr: errors.ErrReceiverSetToDefault},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := validatePaymentParams(tc.receiver, tc.amount); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}
