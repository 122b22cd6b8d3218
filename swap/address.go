package swap

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

const (
	vaultSeed     = "swap"
	vaultDataSeed = "swap_data"
)

// VaultSeeds returns the derivation seeds of the account holding the funds
// of a swap.
func VaultSeeds(lockTime uint64, secretHash [HashSize]byte, bump uint8) htlc.Seeds {
	return append(escrowSeeds(vaultSeed, lockTime, secretHash), []byte{bump})
}

// VaultDataSeeds returns the derivation seeds of the account holding the
// payment record of a swap.
func VaultDataSeeds(lockTime uint64, secretHash [HashSize]byte, bump uint8) htlc.Seeds {
	return append(escrowSeeds(vaultDataSeed, lockTime, secretHash), []byte{bump})
}

func escrowSeeds(tag string, lockTime uint64, secretHash [HashSize]byte) htlc.Seeds {
	lt := make([]byte, 8)
	binary.LittleEndian.PutUint64(lt, lockTime)
	hash := make([]byte, HashSize)
	copy(hash, secretHash[:])
	return htlc.Seeds{[]byte(tag), lt, hash}
}

// DeriveAddress returns the address the program derives from seeds. It fails
// if the seeds, bump included, do not produce a valid derived address.
func DeriveAddress(programID solana.PublicKey, seeds htlc.Seeds) (solana.PublicKey, error) {
	addr, err := solana.CreateProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, errors.Wrapf(errors.ErrInvalidSeeds, "%s", err)
	}
	return addr, nil
}

// Escrow holds the addresses of both accounts of a swap together with the
// bumps needed to derive them.
type Escrow struct {
	Vault         solana.PublicKey `json:"vault"`
	VaultBump     uint8            `json:"vault_bump"`
	VaultData     solana.PublicKey `json:"vault_data"`
	VaultDataBump uint8            `json:"vault_data_bump"`
}

// FindEscrow searches for the bumps of a swap. This is done by clients, the
// program only checks the bumps it is given.
func FindEscrow(programID solana.PublicKey, lockTime uint64, secretHash [HashSize]byte) (Escrow, error) {
	vault, vaultBump, err := solana.FindProgramAddress(escrowSeeds(vaultSeed, lockTime, secretHash), programID)
	if err != nil {
		return Escrow{}, errors.Wrapf(errors.ErrInvalidSeeds, "vault: %s", err)
	}
	data, dataBump, err := solana.FindProgramAddress(escrowSeeds(vaultDataSeed, lockTime, secretHash), programID)
	if err != nil {
		return Escrow{}, errors.Wrapf(errors.ErrInvalidSeeds, "vault data: %s", err)
	}
	return Escrow{
		Vault:         vault,
		VaultBump:     vaultBump,
		VaultData:     data,
		VaultDataBump: dataBump,
	}, nil
}
