package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/swap"
)

func cmdEscrow(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Print the addresses and bumps of the vault and the vault data accounts of a
swap.
		`)
		fl.PrintDefaults()
	}
	var (
		programFl    = flPubkey(fl, "program", env(envProgramID, ""), "Address of the escrow program.")
		secretHashFl = flHex(fl, "secret-hash", "", "Hex encoded sha256 of the secret.")
		lockTimeFl   = fl.Uint64("lock-time", 0, "Lock time of the swap.")
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
	pretty, err := json.MarshalIndent(escrow, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(pretty))
	return err
}

func cmdHashSecret(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Print the hex encoded hash of a secret. The hash is used to fund a swap.
		`)
		fl.PrintDefaults()
	}
	secretFl := flHex(fl, "secret", "", "Hex encoded 32 bytes secret.")
	fl.Parse(args)

	secret, err := secretFl.hash()
	if err != nil {
		return fmt.Errorf("invalid secret: %s", err)
	}
	hash := swap.HashSecret(secret[:])
	_, err = fmt.Fprintln(output, hex.EncodeToString(hash[:]))
	return err
}

func cmdCommitment(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Print the hex encoded commitment of a payment, as stored in the vault data
account.
		`)
		fl.PrintDefaults()
	}
	var (
		receiverFl   = flPubkey(fl, "receiver", "", "Address of the receiver.")
		senderFl     = flPubkey(fl, "sender", "", "Address of the sender.")
		secretHashFl = flHex(fl, "secret-hash", "", "Hex encoded sha256 of the secret.")
		tokenFl      = flPubkey(fl, "token", "", "Optional address of the token program. Native lamports by default.")
		amountFl     = fl.Uint64("amount", 0, "Amount locked by the swap.")
	)
	fl.Parse(args)

	if _, err := secretHashFl.hash(); err != nil {
		return fmt.Errorf("invalid secret hash: %s", err)
	}
	var token *solana.PublicKey
	if t := tokenFl.key(); !t.IsZero() {
		token = &t
	}
	c := swap.Commitment(receiverFl.key(), senderFl.key(), *secretHashFl, token, *amountFl)
	_, err := fmt.Fprintln(output, hex.EncodeToString(c[:]))
	return err
}

func cmdVersion(input io.Reader, output io.Writer, args []string) error {
	_, err := fmt.Fprintln(output, htlc.Version())
	return err
}
