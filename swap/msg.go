package swap

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc/errors"
)

// Tag is the first byte of every instruction and selects its variant.
type Tag uint8

const (
	TagFund Tag = iota
	TagFundToken
	TagReceiverSpend
	TagSenderRefund
)

// Instruction sizes, tag byte included. The record following the tag repeats
// the tag as its variant index.
const (
	fundSize          = 92
	fundTokenSize     = 124
	receiverSpendSize = 116
	senderRefundSize  = 116
)

// Msg is one of the instructions understood by the program: *FundMsg,
// *FundTokenMsg, *ReceiverSpendMsg or *SenderRefundMsg.
type Msg interface {
	Tag() Tag
	// Validate checks the fields of a decoded instruction.
	Validate() error
}

var (
	_ Msg = (*FundMsg)(nil)
	_ Msg = (*FundTokenMsg)(nil)
	_ Msg = (*ReceiverSpendMsg)(nil)
	_ Msg = (*SenderRefundMsg)(nil)
)

// FundMsg locks an amount of the native unit.
type FundMsg struct {
	SecretHash [HashSize]byte
	LockTime   uint64
	Amount     uint64
	Receiver   solana.PublicKey
	// RentExemption funds the creation of the vault-data account and is
	// added on top of the amount moved into the vault.
	RentExemption uint64
	VaultBump     uint8
	VaultDataBump uint8
}

// FundTokenMsg records a payment in a token unit. The tokens themselves are
// moved by the token program.
type FundTokenMsg struct {
	SecretHash    [HashSize]byte
	LockTime      uint64
	Amount        uint64
	Receiver      solana.PublicKey
	TokenProgram  solana.PublicKey
	RentExemption uint64
	VaultBump     uint8
	VaultDataBump uint8
}

// ReceiverSpendMsg releases a payment to the receiver that reveals the secret.
type ReceiverSpendMsg struct {
	Secret        [HashSize]byte
	LockTime      uint64
	Amount        uint64
	Sender        solana.PublicKey
	TokenProgram  solana.PublicKey
	VaultBump     uint8
	VaultDataBump uint8
}

// SenderRefundMsg returns a payment to its sender.
type SenderRefundMsg struct {
	SecretHash    [HashSize]byte
	LockTime      uint64
	Amount        uint64
	Receiver      solana.PublicKey
	TokenProgram  solana.PublicKey
	VaultBump     uint8
	VaultDataBump uint8
}

func (FundMsg) Tag() Tag          { return TagFund }
func (FundTokenMsg) Tag() Tag     { return TagFundToken }
func (ReceiverSpendMsg) Tag() Tag { return TagReceiverSpend }
func (SenderRefundMsg) Tag() Tag  { return TagSenderRefund }

func (m *FundMsg) Validate() error {
	if err := validateCommonFields(m.SecretHash[:], m.LockTime, m.Amount); err != nil {
		return err
	}
	return validateKey(errors.ErrInvalidReceiver, "receiver", m.Receiver[:])
}

func (m *FundTokenMsg) Validate() error {
	if err := validateCommonFields(m.SecretHash[:], m.LockTime, m.Amount); err != nil {
		return err
	}
	if err := validateKey(errors.ErrInvalidReceiver, "receiver", m.Receiver[:]); err != nil {
		return err
	}
	return validateKey(errors.ErrInvalidTokenProgram, "token program", m.TokenProgram[:])
}

func (m *ReceiverSpendMsg) Validate() error {
	if len(m.Secret) != HashSize {
		return errors.Wrapf(errors.ErrInvalidSecret, "secret should be exactly %d bytes long", HashSize)
	}
	if err := validateCommonFields(m.Secret[:], m.LockTime, m.Amount); err != nil {
		return err
	}
	if err := validateKey(errors.ErrInvalidSender, "sender", m.Sender[:]); err != nil {
		return err
	}
	return validateKey(errors.ErrInvalidTokenProgram, "token program", m.TokenProgram[:])
}

func (m *SenderRefundMsg) Validate() error {
	if err := validateCommonFields(m.SecretHash[:], m.LockTime, m.Amount); err != nil {
		return err
	}
	if err := validateKey(errors.ErrInvalidReceiver, "receiver", m.Receiver[:]); err != nil {
		return err
	}
	return validateKey(errors.ErrInvalidTokenProgram, "token program", m.TokenProgram[:])
}

// validateCommonFields checks the fields shared by all instructions.
func validateCommonFields(secretHash []byte, lockTime, amount uint64) error {
	if len(secretHash) != HashSize {
		return errors.Wrapf(errors.ErrInvalidSecretHash, "secret hash is sha256 and therefore should be exactly %d bytes", HashSize)
	}
	if lockTime == 0 {
		return errors.Wrap(errors.ErrInvalidLockTime, "lock time is required")
	}
	if amount == 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "amount is required")
	}
	return nil
}

// validateKey checks the length of a public key field, reporting kind.
func validateKey(kind *errors.Error, name string, key []byte) error {
	if len(key) != solana.PublicKeyLength {
		return errors.Wrapf(kind, "%s should be exactly %d bytes", name, solana.PublicKeyLength)
	}
	return nil
}

// Unpack decodes and validates an instruction buffer.
func Unpack(data []byte) (Msg, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInstruction, "empty instruction")
	}

	var (
		msg  Msg
		size int
	)
	switch tag := Tag(data[0]); tag {
	case TagFund:
		msg, size = &FundMsg{}, fundSize
	case TagFundToken:
		msg, size = &FundTokenMsg{}, fundTokenSize
	case TagReceiverSpend:
		msg, size = &ReceiverSpendMsg{}, receiverSpendSize
	case TagSenderRefund:
		msg, size = &SenderRefundMsg{}, senderRefundSize
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInstruction, "tag %d", tag)
	}
	if len(data) != size {
		return nil, errors.Wrapf(errors.ErrInvalidInputLength, "tag %d requires %d bytes, got %d", data[0], size, len(data))
	}
	if data[1] != data[0] {
		return nil, errors.Wrapf(errors.ErrMalformedRecord, "record variant %d under tag %d", data[1], data[0])
	}
	if err := bin.NewBorshDecoder(data[2:]).Decode(msg); err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedRecord, "tag %d: %s", data[0], err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

// Pack encodes an instruction: the tag followed by the record, which starts
// with the tag again as its variant index.
func Pack(msg Msg) ([]byte, error) {
	var record interface{}
	switch m := msg.(type) {
	case *FundMsg:
		record = *m
	case *FundTokenMsg:
		record = *m
	case *ReceiverSpendMsg:
		record = *m
	case *SenderRefundMsg:
		record = *m
	default:
		return nil, errors.Wrapf(errors.ErrHuman, "unknown instruction %T", msg)
	}

	var buf bytes.Buffer
	buf.WriteByte(byte(msg.Tag()))
	buf.WriteByte(byte(msg.Tag()))
	if err := bin.NewBorshEncoder(&buf).Encode(record); err != nil {
		return nil, errors.Wrapf(err, "encode %T", msg)
	}
	return buf.Bytes(), nil
}
