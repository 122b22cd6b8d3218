/*
Package swap implements an escrow hash-time-locked contract for atomic swaps.

A sender locks funds behind the sha256 hash of a secret. The funds are kept
in a vault account and the terms of the payment are sealed into a single
commitment stored in a second, vault-data account. Both accounts are derived
from the program id, the lock time and the secret hash, so a given swap can
exist only once.

The algorithm is as follows:
1. Sender generates a secret, stores it in a secure place.
2. Sender makes a sha256 hash out of the secret.
3. With this hash sender funds the swap. The vault-data account is created
holding the commitment over (receiver, sender, secret hash, token, amount) in
the Funded state and the amount is moved into the vault.
4. The receiver claims the funds by revealing the secret. The program hashes
the secret, recomputes the commitment and, if it matches the stored one,
marks the payment Spent and releases the vault to the receiver.
5. Otherwise the sender takes the funds back by repeating the payment terms.
The payment is marked Refunded.
6. Spent and Refunded are final. Accounts are never deleted.

The lock time only takes part in the derivation of the escrow addresses and in
the commitment. Comparing it against the ledger clock is left to whoever
submits the spend or refund.

Payments in a token unit can be funded, which records the commitment, but not
settled: moving token balances is done by a separate token program.
*/
package swap
