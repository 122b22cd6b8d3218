package ledger

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/store"
)

// Store is the root state of a ledger.
type Store interface {
	store.ReadOnlyKVStore
	CacheWrap() store.KVCacheWrap
}

// committer is implemented by stores that persist a new version after every
// successful write.
type committer interface {
	Commit() (store.CommitID, error)
}

// Transaction is a list of instructions executed atomically. Signers are the
// accounts that authorized the transaction.
type Transaction struct {
	Signers      []solana.PublicKey
	Instructions []solana.Instruction
}

// Ledger executes transactions against a store of accounts.
type Ledger struct {
	mu       sync.Mutex
	db       Store
	programs map[solana.PublicKey]htlc.Program
}

// New returns a ledger over given store that dispatches instructions to the
// given programs.
func New(db Store, programs ...htlc.Program) *Ledger {
	l := &Ledger{
		db:       db,
		programs: make(map[solana.PublicKey]htlc.Program),
	}
	for _, p := range programs {
		l.programs[p.ID()] = p
	}
	return l
}

// Account returns the state of the account at given address. An address that
// was never written is returned as an empty system account.
func (l *Ledger) Account(addr solana.PublicKey) (*Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return loadAccount(l.db, addr)
}

// Balance returns the lamports held by given address.
func (l *Ledger) Balance(addr solana.PublicKey) (uint64, error) {
	acc, err := l.Account(addr)
	if err != nil {
		return 0, err
	}
	return acc.Lamports, nil
}

// Credit adds lamports to given address out of thin air. It is meant for
// genesis and tests only.
func (l *Ledger) Credit(addr solana.PublicKey, lamports uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cache := l.db.CacheWrap()
	acc, err := loadAccount(cache, addr)
	if err != nil {
		cache.Discard()
		return err
	}
	sum := acc.Lamports + lamports
	if sum < acc.Lamports {
		cache.Discard()
		return errors.Wrapf(errors.ErrOverflow, "credit %s", addr)
	}
	acc.Lamports = sum
	if err := saveAccount(cache, addr, acc); err != nil {
		cache.Discard()
		return err
	}
	return l.write(cache)
}

// Execute runs all instructions of the transaction in order. Account changes
// are persisted only if every instruction succeeds.
func (l *Ledger) Execute(ctx context.Context, tx Transaction) (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	logger := htlc.GetLogger(ctx)
	cache := l.db.CacheWrap()
	defer func() {
		if err != nil {
			cache.Discard()
			code, _ := errors.Info(err, false)
			logger.Info("transaction failed", "code", code, "err", err.Error())
		}
	}()

	for i, ins := range tx.Instructions {
		if err := l.executeInstruction(ctx, cache, tx.Signers, ins); err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
	}
	return l.write(cache)
}

func (l *Ledger) write(cache store.KVCacheWrap) error {
	cache.Write()
	if c, ok := l.db.(committer); ok {
		if _, err := c.Commit(); err != nil {
			return errors.Wrap(err, "commit")
		}
	}
	return nil
}

func (l *Ledger) executeInstruction(ctx context.Context, db store.KVStore, signers []solana.PublicKey, ins solana.Instruction) (err error) {
	defer errors.Recover(&err)

	programID := ins.ProgramID()
	program, ok := l.programs[programID]
	if !ok {
		return errors.Wrapf(errors.ErrUnknownProgram, "program %s", programID)
	}
	data, err := ins.Data()
	if err != nil {
		return errors.Wrap(err, "instruction data")
	}

	infos, unique, err := loadInfos(db, signers, ins.Accounts())
	if err != nil {
		return err
	}
	before := make(map[solana.PublicKey]*Account, len(unique))
	for _, info := range unique {
		before[info.Key] = snapshot(info)
	}

	ctx = htlc.WithLogInfo(ctx, "program", programID.String())
	rt := &runtime{programID: programID}
	if err := program.Process(ctx, rt, infos, data); err != nil {
		return err
	}

	var sumBefore, sumAfter uint64
	for _, info := range unique {
		prev := before[info.Key]
		sumBefore += prev.Lamports
		sumAfter += info.Lamports
		if !changed(prev, info) {
			continue
		}
		if !info.IsWritable {
			return errors.Wrapf(errors.ErrNotWritable, "read only account %s modified", info.Key)
		}
		if err := saveAccount(db, info.Key, snapshot(info)); err != nil {
			return err
		}
	}
	if sumBefore != sumAfter {
		return errors.Wrapf(errors.ErrHuman, "lamports not balanced: %d before, %d after", sumBefore, sumAfter)
	}
	return nil
}

// loadInfos builds the account views for an instruction. An address listed
// more than once shares a single view so that changes are never lost.
func loadInfos(db store.ReadOnlyKVStore, signers []solana.PublicKey, metas []*solana.AccountMeta) ([]*htlc.AccountInfo, []*htlc.AccountInfo, error) {
	signed := make(map[solana.PublicKey]bool, len(signers))
	for _, s := range signers {
		signed[s] = true
	}

	byKey := make(map[solana.PublicKey]*htlc.AccountInfo, len(metas))
	infos := make([]*htlc.AccountInfo, 0, len(metas))
	var unique []*htlc.AccountInfo
	for _, m := range metas {
		if m.IsSigner && !signed[m.PublicKey] {
			return nil, nil, errors.Wrapf(errors.ErrMissingSignature, "account %s", m.PublicKey)
		}
		info, ok := byKey[m.PublicKey]
		if !ok {
			acc, err := loadAccount(db, m.PublicKey)
			if err != nil {
				return nil, nil, err
			}
			info = &htlc.AccountInfo{
				Key:      m.PublicKey,
				Lamports: acc.Lamports,
				Owner:    acc.Owner,
				Data:     acc.Data,
			}
			byKey[m.PublicKey] = info
			unique = append(unique, info)
		}
		info.IsSigner = info.IsSigner || m.IsSigner
		info.IsWritable = info.IsWritable || m.IsWritable
		infos = append(infos, info)
	}
	return infos, unique, nil
}

func snapshot(info *htlc.AccountInfo) *Account {
	data := make([]byte, len(info.Data))
	copy(data, info.Data)
	return &Account{
		Lamports: info.Lamports,
		Owner:    info.Owner,
		Data:     data,
	}
}

func changed(prev *Account, info *htlc.AccountInfo) bool {
	if prev.Lamports != info.Lamports || !prev.Owner.Equals(info.Owner) || len(prev.Data) != len(info.Data) {
		return true
	}
	for i := range prev.Data {
		if prev.Data[i] != info.Data[i] {
			return true
		}
	}
	return false
}

func loadAccount(db store.ReadOnlyKVStore, addr solana.PublicKey) (*Account, error) {
	raw := db.Get(accountKey(addr))
	if raw == nil {
		return NewSystemAccount(0), nil
	}
	var acc Account
	if err := acc.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "account %s", addr)
	}
	// The decoded data may share memory with the stored value. Programs write
	// into it in place, which must not reach the store before the
	// transaction succeeds.
	acc.Data = append([]byte(nil), acc.Data...)
	return &acc, nil
}

func saveAccount(db store.SetDeleter, addr solana.PublicKey, acc *Account) error {
	// An empty system account is indistinguishable from a missing one.
	if acc.Lamports == 0 && len(acc.Data) == 0 && acc.Owner.Equals(solana.SystemProgramID) {
		db.Delete(accountKey(addr))
		return nil
	}
	raw, err := acc.Marshal()
	if err != nil {
		return err
	}
	db.Set(accountKey(addr), raw)
	return nil
}
