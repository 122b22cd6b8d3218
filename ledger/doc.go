/*
Package ledger implements an in-process host ledger for programs implementing
htlc.Program.

The ledger keeps accounts (balance, owner, data) in a store.CacheableKVStore
keyed by address. A Transaction is executed against a cache wrap of that store
and written back only if every instruction succeeds, so a failing instruction
never leaves partial effects. Transactions are executed one at a time; two
transactions touching the same account are therefore always serialized.

The system primitives offered to programs follow the usual rules of a
program-derived-address ledger: an account can act as a source of funds or be
created only if it signed the transaction or if the executing program proves,
through the derivation seeds, that it derived the account's address.
*/
package ledger
