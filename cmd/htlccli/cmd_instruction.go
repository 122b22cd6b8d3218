package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc/swap"
)

// defaultRentExemption is the minimal balance of a vault-data account
// allocating swap.PaymentSize bytes.
const defaultRentExemption = (128 + swap.PaymentSize) * 3480 * 2

func cmdFund(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Create an instruction locking an amount of lamports until the receiver reveals
the secret or the sender takes it back.
		`)
		fl.PrintDefaults()
	}
	var (
		programFl    = flPubkey(fl, "program", env(envProgramID, ""), "Address of the escrow program. Required to find the escrow bumps.")
		secretHashFl = flHex(fl, "secret-hash", "", "Hex encoded sha256 of the secret.")
		lockTimeFl   = fl.Uint64("lock-time", 0, "Lock time of the swap.")
		amountFl     = fl.Uint64("amount", 0, "Amount of lamports to lock.")
		receiverFl   = flPubkey(fl, "receiver", "", "Address of the receiver.")
		rentFl       = fl.Uint64("rent", defaultRentExemption, "Lamports paid for the creation of the vault data account.")
	)
	fl.Parse(args)

	secretHash, err := secretHashFl.hash()
	if err != nil {
		return fmt.Errorf("invalid secret hash: %s", err)
	}
	escrow, err := findEscrow(programFl.key(), *lockTimeFl, secretHash)
	if err != nil {
		return err
	}
	return writeInstruction(output, &swap.FundMsg{
		SecretHash:    secretHash,
		LockTime:      *lockTimeFl,
		Amount:        *amountFl,
		Receiver:      receiverFl.key(),
		RentExemption: *rentFl,
		VaultBump:     escrow.VaultBump,
		VaultDataBump: escrow.VaultDataBump,
	})
}

func cmdFundToken(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Create an instruction recording a token payment. Tokens must be moved to the
vault with a separate token program instruction.
		`)
		fl.PrintDefaults()
	}
	var (
		programFl    = flPubkey(fl, "program", env(envProgramID, ""), "Address of the escrow program. Required to find the escrow bumps.")
		secretHashFl = flHex(fl, "secret-hash", "", "Hex encoded sha256 of the secret.")
		lockTimeFl   = fl.Uint64("lock-time", 0, "Lock time of the swap.")
		amountFl     = fl.Uint64("amount", 0, "Amount of tokens to lock.")
		receiverFl   = flPubkey(fl, "receiver", "", "Address of the receiver.")
		tokenFl      = flPubkey(fl, "token", "", "Address of the token program.")
		rentFl       = fl.Uint64("rent", defaultRentExemption, "Lamports paid for the creation of the vault data account.")
	)
	fl.Parse(args)

	secretHash, err := secretHashFl.hash()
	if err != nil {
		return fmt.Errorf("invalid secret hash: %s", err)
	}
	escrow, err := findEscrow(programFl.key(), *lockTimeFl, secretHash)
	if err != nil {
		return err
	}
	return writeInstruction(output, &swap.FundTokenMsg{
		SecretHash:    secretHash,
		LockTime:      *lockTimeFl,
		Amount:        *amountFl,
		Receiver:      receiverFl.key(),
		TokenProgram:  tokenFl.key(),
		RentExemption: *rentFl,
		VaultBump:     escrow.VaultBump,
		VaultDataBump: escrow.VaultDataBump,
	})
}

func cmdSpend(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Create an instruction claiming a swap by revealing its secret. It must be
signed by the receiver.
		`)
		fl.PrintDefaults()
	}
	var (
		programFl  = flPubkey(fl, "program", env(envProgramID, ""), "Address of the escrow program. Required to find the escrow bumps.")
		secretFl   = flHex(fl, "secret", "", "Hex encoded 32 bytes secret.")
		lockTimeFl = fl.Uint64("lock-time", 0, "Lock time of the swap.")
		amountFl   = fl.Uint64("amount", 0, "Amount locked by the swap.")
		senderFl   = flPubkey(fl, "sender", "", "Address of the sender that funded the swap.")
		tokenFl    = flPubkey(fl, "token", "", "Optional address of the token program. Native lamports by default.")
	)
	fl.Parse(args)

	secret, err := secretFl.hash()
	if err != nil {
		return fmt.Errorf("invalid secret: %s", err)
	}
	escrow, err := findEscrow(programFl.key(), *lockTimeFl, swap.HashSecret(secret[:]))
	if err != nil {
		return err
	}
	return writeInstruction(output, &swap.ReceiverSpendMsg{
		Secret:        secret,
		LockTime:      *lockTimeFl,
		Amount:        *amountFl,
		Sender:        senderFl.key(),
		TokenProgram:  tokenFl.key(),
		VaultBump:     escrow.VaultBump,
		VaultDataBump: escrow.VaultDataBump,
	})
}

func cmdRefund(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Create an instruction returning a swap to its sender. It must be signed by the
sender.
		`)
		fl.PrintDefaults()
	}
	var (
		programFl    = flPubkey(fl, "program", env(envProgramID, ""), "Address of the escrow program. Required to find the escrow bumps.")
		secretHashFl = flHex(fl, "secret-hash", "", "Hex encoded sha256 of the secret.")
		lockTimeFl   = fl.Uint64("lock-time", 0, "Lock time of the swap.")
		amountFl     = fl.Uint64("amount", 0, "Amount locked by the swap.")
		receiverFl   = flPubkey(fl, "receiver", "", "Address of the receiver.")
		tokenFl      = flPubkey(fl, "token", "", "Optional address of the token program. Native lamports by default.")
	)
	fl.Parse(args)

	secretHash, err := secretHashFl.hash()
	if err != nil {
		return fmt.Errorf("invalid secret hash: %s", err)
	}
	escrow, err := findEscrow(programFl.key(), *lockTimeFl, secretHash)
	if err != nil {
		return err
	}
	return writeInstruction(output, &swap.SenderRefundMsg{
		SecretHash:    secretHash,
		LockTime:      *lockTimeFl,
		Amount:        *amountFl,
		Receiver:      receiverFl.key(),
		TokenProgram:  tokenFl.key(),
		VaultBump:     escrow.VaultBump,
		VaultDataBump: escrow.VaultDataBump,
	})
}

func findEscrow(programID solana.PublicKey, lockTime uint64, secretHash [swap.HashSize]byte) (swap.Escrow, error) {
	if programID.IsZero() {
		return swap.Escrow{}, fmt.Errorf("program address required, use -program flag or HTLC_PROGRAM_ID variable")
	}
	escrow, err := swap.FindEscrow(programID, lockTime, secretHash)
	if err != nil {
		return escrow, fmt.Errorf("cannot find escrow: %s", err)
	}
	return escrow, nil
}

// writeInstruction validates and encodes msg, writing it as a single line of
// hex.
func writeInstruction(w io.Writer, msg swap.Msg) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid instruction: %s", err)
	}
	raw, err := swap.Pack(msg)
	if err != nil {
		return fmt.Errorf("cannot serialize instruction: %s", err)
	}
	_, err = fmt.Fprintln(w, hex.EncodeToString(raw))
	return err
}
