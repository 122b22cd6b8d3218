package swap

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// PaymentSize is the serialized size of a Payment and the size allocated for
// every vault-data account.
const PaymentSize = 41

// PaymentState is the lifecycle state of a payment.
type PaymentState uint8

const (
	// Funded is the state of every payment when it is created.
	Funded PaymentState = iota
	// Spent is final, the receiver claimed the funds.
	Spent
	// Refunded is final, the sender took the funds back.
	Refunded
)

func (s PaymentState) String() string {
	switch s {
	case Funded:
		return "funded"
	case Spent:
		return "spent"
	case Refunded:
		return "refunded"
	default:
		return fmt.Sprintf("PaymentState(%d)", uint8(s))
	}
}

// Validate returns an error if the state is outside of the known range.
func (s PaymentState) Validate() error {
	if s > Refunded {
		return errors.Wrapf(errors.ErrInvalidPaymentRecord, "state %d", uint8(s))
	}
	return nil
}

// Payment is the record kept in a vault-data account.
type Payment struct {
	Commitment [HashSize]byte
	LockTime   uint64
	State      PaymentState
}

// NewPayment returns a payment in the Funded state.
func NewPayment(commitment [HashSize]byte, lockTime uint64) *Payment {
	return &Payment{
		Commitment: commitment,
		LockTime:   lockTime,
		State:      Funded,
	}
}

// Marshal serializes the payment into its fixed width layout: commitment,
// little endian lock time and the state byte.
func (p *Payment) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(PaymentSize)
	if err := bin.NewBorshEncoder(&buf).Encode(*p); err != nil {
		return nil, errors.Wrap(err, "encode payment")
	}
	return buf.Bytes(), nil
}

// Unmarshal loads the payment from the beginning of raw. Trailing bytes are
// ignored.
func (p *Payment) Unmarshal(raw []byte) error {
	if len(raw) < PaymentSize {
		return errors.Wrapf(errors.ErrInvalidPaymentRecord, "%d bytes, %d required", len(raw), PaymentSize)
	}
	var res Payment
	if err := bin.NewBorshDecoder(raw[:PaymentSize]).Decode(&res); err != nil {
		return errors.Wrapf(errors.ErrInvalidPaymentRecord, "decode: %s", err)
	}
	if err := res.State.Validate(); err != nil {
		return err
	}
	*p = res
	return nil
}

// WriteTo serializes the payment into the beginning of dst.
func (p *Payment) WriteTo(dst []byte) error {
	raw, err := p.Marshal()
	if err != nil {
		return err
	}
	if len(dst) < len(raw) {
		return errors.Wrapf(errors.ErrAccountDataTooSmall, "%d bytes, %d required", len(dst), len(raw))
	}
	copy(dst, raw)
	return nil
}

// Transition moves the payment from the expected state to next. The payment
// is left unchanged if it is not in the expected state.
func (p *Payment) Transition(expected, next PaymentState) error {
	if p.State != expected {
		return errors.Wrapf(errors.ErrInvalidPaymentState, "payment is %s, %s required", p.State, expected)
	}
	p.State = next
	return nil
}

// LoadPayment reads the payment kept by a vault-data account.
func LoadPayment(acc *htlc.AccountInfo) (*Payment, error) {
	if len(acc.Data) == 0 {
		return nil, errors.Wrapf(errors.ErrSwapAccountNotFound, "account %s holds no payment", acc.Key)
	}
	var p Payment
	if err := p.Unmarshal(acc.Data); err != nil {
		return nil, errors.Wrapf(err, "account %s", acc.Key)
	}
	return &p, nil
}
