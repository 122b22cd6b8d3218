/*
Package htlc defines the contracts between the escrow hash-time-locked
contract program and the ledger that hosts it.

A ledger keeps accounts at 32 byte addresses. For every instruction it hands
the program the accounts named by the caller as AccountInfo values, together
with a Runtime that exposes the ledger's own primitives: account creation and
balance transfer. A program never touches ledger storage directly. It mutates
the AccountInfo values it was given and the ledger persists them only when the
whole transaction succeeds.

Accounts derived from a program (escrow vaults) have no private key. A program
proves authority over such an account by passing the Seeds the address was
derived from; the ledger re-derives the address under the calling program id
and rejects the call if it does not match.

We pass context through context.Context between the ledger and programs. The
logger is stored in the context:

	WithLogger(Context, log.Logger) Context
	GetLogger(Context) log.Logger
*/
package htlc
