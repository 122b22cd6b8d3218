package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc/swap"
)

func cmdView(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Decode and display a hex encoded instruction. Before signing you should check
what kind of operation are you authorizing.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return fmt.Errorf("cannot read instruction: %s", err)
	}
	encoded := strings.TrimSpace(string(raw))
	if len(encoded) == 0 {
		return errors.New("no input data")
	}
	data, err := hex.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("cannot hex decode instruction: %s", err)
	}
	msg, err := swap.Unpack(data)
	if err != nil {
		return fmt.Errorf("cannot deserialize instruction: %s", err)
	}

	pretty, err := json.MarshalIndent(viewOf(msg), "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = output.Write(pretty)
	return err
}

// instructionView is the JSON summary of an instruction. Fields that do not
// apply to the instruction are omitted.
type instructionView struct {
	Type          string            `json:"type"`
	Secret        string            `json:"secret,omitempty"`
	SecretHash    string            `json:"secret_hash"`
	LockTime      uint64            `json:"lock_time"`
	Amount        uint64            `json:"amount"`
	Receiver      *solana.PublicKey `json:"receiver,omitempty"`
	Sender        *solana.PublicKey `json:"sender,omitempty"`
	TokenProgram  *solana.PublicKey `json:"token_program,omitempty"`
	RentExemption uint64            `json:"rent_exemption,omitempty"`
	VaultBump     uint8             `json:"vault_bump"`
	VaultDataBump uint8             `json:"vault_data_bump"`
}

func viewOf(msg swap.Msg) instructionView {
	switch m := msg.(type) {
	case *swap.FundMsg:
		return instructionView{
			Type:          "fund",
			SecretHash:    hex.EncodeToString(m.SecretHash[:]),
			LockTime:      m.LockTime,
			Amount:        m.Amount,
			Receiver:      &m.Receiver,
			RentExemption: m.RentExemption,
			VaultBump:     m.VaultBump,
			VaultDataBump: m.VaultDataBump,
		}
	case *swap.FundTokenMsg:
		return instructionView{
			Type:          "fund_token",
			SecretHash:    hex.EncodeToString(m.SecretHash[:]),
			LockTime:      m.LockTime,
			Amount:        m.Amount,
			Receiver:      &m.Receiver,
			TokenProgram:  &m.TokenProgram,
			RentExemption: m.RentExemption,
			VaultBump:     m.VaultBump,
			VaultDataBump: m.VaultDataBump,
		}
	case *swap.ReceiverSpendMsg:
		hash := swap.HashSecret(m.Secret[:])
		return instructionView{
			Type:          "receiver_spend",
			Secret:        hex.EncodeToString(m.Secret[:]),
			SecretHash:    hex.EncodeToString(hash[:]),
			LockTime:      m.LockTime,
			Amount:        m.Amount,
			Sender:        &m.Sender,
			TokenProgram:  tokenOrNil(m.TokenProgram),
			VaultBump:     m.VaultBump,
			VaultDataBump: m.VaultDataBump,
		}
	case *swap.SenderRefundMsg:
		return instructionView{
			Type:          "sender_refund",
			SecretHash:    hex.EncodeToString(m.SecretHash[:]),
			LockTime:      m.LockTime,
			Amount:        m.Amount,
			Receiver:      &m.Receiver,
			TokenProgram:  tokenOrNil(m.TokenProgram),
			VaultBump:     m.VaultBump,
			VaultDataBump: m.VaultDataBump,
		}
	default:
		return instructionView{Type: fmt.Sprintf("%T", msg)}
	}
}

func tokenOrNil(token solana.PublicKey) *solana.PublicKey {
	if token.IsZero() {
		return nil
	}
	return &token
}
