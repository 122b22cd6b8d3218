package store

// EmptyKVStore holds nothing. It is the bottom layer of a MemStore.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (EmptyKVStore) Get(key []byte) []byte { return nil }
func (EmptyKVStore) Has(key []byte) bool   { return false }
func (EmptyKVStore) Set(key, value []byte) {}
func (EmptyKVStore) Delete(key []byte)     {}
func (e EmptyKVStore) NewBatch() Batch     { return NewNonAtomicBatch(e) }

// pendingWrite is a queued set, or a delete when value is nil.
type pendingWrite struct {
	key   []byte
	value []byte
}

// NonAtomicBatch queues writes and replays them in order on Write. A failure
// half way through Write leaves the target partially updated, which is fine
// for the in-memory and cache layers it backs.
type NonAtomicBatch struct {
	out     SetDeleter
	pending []pendingWrite
}

var _ Batch = (*NonAtomicBatch)(nil)

// NewNonAtomicBatch returns an empty batch writing to out.
func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

func (b *NonAtomicBatch) Set(key, value []byte) {
	if value == nil {
		value = []byte{}
	}
	b.pending = append(b.pending, pendingWrite{key: key, value: value})
}

func (b *NonAtomicBatch) Delete(key []byte) {
	b.pending = append(b.pending, pendingWrite{key: key})
}

// Len returns the number of queued writes.
func (b *NonAtomicBatch) Len() int {
	return len(b.pending)
}

// Write replays the queued writes and empties the batch.
func (b *NonAtomicBatch) Write() {
	for _, w := range b.pending {
		if w.value == nil {
			b.out.Delete(w.key)
		} else {
			b.out.Set(w.key, w.value)
		}
	}
	b.pending = nil
}
