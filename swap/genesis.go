package swap

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

const optKey = "swap"

// Configuration is the genesis section of the escrow program.
type Configuration struct {
	ProgramID solana.PublicKey `json:"program_id"`
}

// Validate ensures the program is given an address.
func (c Configuration) Validate() error {
	if c.ProgramID.IsZero() {
		return errors.Wrap(errors.ErrInvalidGenesis, "program_id required")
	}
	return nil
}

// FromGenesis returns the escrow program configured in genesis.
func FromGenesis(opts htlc.Options) (*Program, error) {
	var conf Configuration
	if err := opts.ReadOptions(optKey, &conf); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return NewProgram(conf.ProgramID), nil
}
