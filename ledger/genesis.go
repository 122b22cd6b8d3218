package ledger

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

const optKey = "ledger"

// GenesisAccount is used to parse the json from genesis file.
// Address is base58 encoded.
type GenesisAccount struct {
	Address  solana.PublicKey `json:"address"`
	Lamports uint64           `json:"lamports"`
}

// Genesis is the initial state of a ledger.
type Genesis struct {
	Accounts []GenesisAccount `json:"accounts"`
}

// Validate ensures every account is funded and listed once.
func (g Genesis) Validate() error {
	seen := make(map[solana.PublicKey]bool, len(g.Accounts))
	for i, a := range g.Accounts {
		if a.Address.IsZero() {
			return errors.Wrapf(errors.ErrInvalidGenesis, "account %d: address required", i)
		}
		if a.Lamports == 0 {
			return errors.Wrapf(errors.ErrInvalidGenesis, "account %s: lamports required", a.Address)
		}
		if seen[a.Address] {
			return errors.Wrapf(errors.ErrInvalidGenesis, "account %s: duplicated", a.Address)
		}
		seen[a.Address] = true
	}
	return nil
}

// FromGenesis will parse initial account info from genesis
// and credit it on the ledger
func FromGenesis(opts htlc.Options, l *Ledger) error {
	var gen Genesis
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return err
	}
	if err := gen.Validate(); err != nil {
		return err
	}
	for _, a := range gen.Accounts {
		if err := l.Credit(a.Address, a.Lamports); err != nil {
			return errors.Wrapf(err, "genesis account %s", a.Address)
		}
	}
	return nil
}
