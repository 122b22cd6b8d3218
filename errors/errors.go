package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthorized is used whenever a request without sufficient
	// authorization is handled.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is used when a requested operation cannot be completed
	// due to missing data.
	ErrNotFound = Register(3, "not found")

	// ErrHuman is returned when application reaches a code path which should not
	// ever be reached if the code was written as expected by the framework
	ErrHuman = Register(7, "coding error")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info
	ErrPanic = Register(111222, "panic")
)

// Instruction decoding and field validation.
var (
	// ErrInvalidInstruction is returned for an unknown instruction tag.
	ErrInvalidInstruction = Register(1000, "invalid atomic swap instruction")

	// ErrInvalidInputLength is returned when an instruction buffer does not
	// have the exact length required by its tag.
	ErrInvalidInputLength = Register(1001, "invalid input length")

	// ErrMalformedRecord is returned when the fixed-width record following
	// the tag cannot be decoded.
	ErrMalformedRecord = Register(1002, "malformed instruction record")

	ErrInvalidSecretHash   = Register(1003, "invalid secret hash")
	ErrInvalidSecret       = Register(1004, "invalid secret")
	ErrInvalidLockTime     = Register(1005, "invalid lock time")
	ErrInvalidAmount       = Register(1006, "invalid amount")
	ErrInvalidReceiver     = Register(1007, "invalid receiver pubkey")
	ErrInvalidSender       = Register(1008, "invalid sender pubkey")
	ErrInvalidTokenProgram = Register(1009, "invalid token program")

	// ErrReceiverSetToDefault is returned when a payment names the default
	// (all zero) key as its receiver.
	ErrReceiverSetToDefault = Register(1010, "receiver set to default")

	// ErrAmountZero is returned when a payment moves nothing.
	ErrAmountZero = Register(1011, "amount zero")
)

// Account shape.
var (
	ErrMissingSignature   = Register(1012, "missing required signature")
	ErrNotWritable        = Register(1013, "account not writable")
	ErrIncorrectProgramID = Register(1014, "incorrect program id")

	// ErrInvalidOwner is returned when the vault-data account is not owned
	// by the escrow program, that is it was not created by a funding.
	ErrInvalidOwner = Register(1015, "invalid owner")

	ErrNotEnoughAccounts = Register(1016, "not enough account keys")
)

// Settlement and storage.
var (
	// ErrInvalidPaymentHash is returned when a recomputed commitment does not
	// match the stored one.
	ErrInvalidPaymentHash = Register(1017, "invalid payment hash")

	// ErrInvalidPaymentState is returned when a payment is not in the state
	// an operation requires.
	ErrInvalidPaymentState = Register(1018, "invalid payment state")

	ErrNotSupported         = Register(1019, "not supported")
	ErrAccountDataTooSmall  = Register(1020, "account data too small")
	ErrSwapAccountNotFound  = Register(1021, "swap account not found")
	ErrInvalidPaymentRecord = Register(1022, "invalid payment record")
)

// Ledger.
var (
	ErrAccountInUse      = Register(1100, "account already in use")
	ErrInsufficientFunds = Register(1101, "insufficient funds")
	ErrInvalidSeeds      = Register(1102, "invalid seeds")
	ErrUnknownProgram    = Register(1103, "unknown program")
	ErrOverflow          = Register(1104, "an operation cannot be completed due to value overflow")
	ErrInvalidGenesis    = Register(1105, "invalid genesis")
)

// Register returns an error instance that should be used as the base for
// creating error instances during runtime.
//
// This function ensures that no error code is used twice. Attempt to reuse an
// error code results in panic.
//
// Use this function only during a program startup phase.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

// usedCodes is keeping track of used codes to ensure their uniqueness. No two
// error instances should share the same error code.
var usedCodes = map[uint32]*Error{
	1: nil, // Error code 1 is restricted for unregistered errors and must not be used.
}

// Error represents a root error.
//
// Each instance created during the runtime should wrap one of the declared
// root errors. This allows error tests and returning all errors to the client
// in a safe manner.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the stable numeric code of this error.
func (e Error) Code() uint32 {
	return e.code
}

// New returns a new error. Returned instance is having the root cause set to
// this error. Below two lines are equal
//
//	e.New("my description")
//	Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is basically New with formatting capabilities
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is check if given error instance is of a given kind/type. This involves
// unwrapping given error using the Cause method if available.
func (kind *Error) Is(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if kind == nil {
		if err == nil {
			return true
		}
		return reflect.ValueOf(err).Kind() == reflect.Ptr && reflect.ValueOf(err).IsNil()
	}

	for {
		if err == kind {
			return true
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// Wrap extends given error with an additional information.
//
// If the wrapped error does not provide a Code method (ie. stdlib errors),
// it will be labeled as internal error.
//
// If err is nil, this returns nil, avoiding the need for an if statement when
// wrapping a error returned at the end of a function
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// If this error does not carry the stacktrace information yet, attach
	// one. This should be done only once per error at the lowest frame
	// possible (most inner wrap).
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends given error with an additional information.
//
// This function works like Wrap function with additional funtionality of
// formatting the input as specified.
func Wrapf(err error, format string, args ...interface{}) error {
	desc := fmt.Sprintf(format, args...)
	return Wrap(err, desc)
}

type wrappedError struct {
	// This error layer description.
	msg string
	// The underlying error that triggered this one.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Format prints the message chain and, for %+v, the stack trace recorded at
// the innermost wrap.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s", e.Error())
		if st := stackTrace(e); st != nil {
			fmt.Fprintf(s, "%+v", st)
		}
		return
	}
	fmt.Fprint(s, e.Error())
}

// Recover captures a panic and stop its propagation. If panic happens it is
// transformed into a ErrPanic instance and assigned to given error. Call this
// function using defer in order to work as expected.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// causer is an interface implemented by an error that supports wrapping. Use
// it to test if an error wraps another error instance.
type causer interface {
	Cause() error
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the first found stack trace frame carried by given error
// or any wrapped error. It returns nil if no stack trace is found.
func stackTrace(err error) errors.StackTrace {
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}
