package htlctest

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/ledger"
	"github.com/iov-one/htlc/store"
	"github.com/tendermint/tendermint/libs/log"
)

// Balance is the initial lamports held by an address.
type Balance struct {
	Address  solana.PublicKey
	Lamports uint64
}

// NewLedger returns an in memory ledger running given programs, with all
// balances credited.
func NewLedger(t testing.TB, programs []htlc.Program, balances ...Balance) *ledger.Ledger {
	t.Helper()
	l := ledger.New(store.MemStore(), programs...)
	for _, b := range balances {
		if err := l.Credit(b.Address, b.Lamports); err != nil {
			t.Fatalf("cannot credit %s: %s", b.Address, err)
		}
	}
	return l
}

// Context returns a context logging to the test output when running
// verbose, and discarding everything otherwise.
func Context(t testing.TB) context.Context {
	logger := log.NewNopLogger()
	if testing.Verbose() {
		logger = log.NewTMLogger(log.NewSyncWriter(testWriter{t}))
	}
	return htlc.WithLogger(context.Background(), logger)
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

// BalanceOf returns the lamports held by addr, failing the test on error.
func BalanceOf(t testing.TB, l *ledger.Ledger, addr solana.PublicKey) uint64 {
	t.Helper()
	n, err := l.Balance(addr)
	if err != nil {
		t.Fatalf("cannot read balance of %s: %s", addr, err)
	}
	return n
}
