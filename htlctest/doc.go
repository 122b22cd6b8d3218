/*
Package htlctest provides fixtures used by tests of the escrow program and
the ledger it runs on.
*/
package htlctest
