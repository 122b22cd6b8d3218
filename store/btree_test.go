package store

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBTreeCacheGetSet does basic sanity checks on our cache
//
// Other tests should handle deletes, setting same value,
// and general fuzzing
func TestBTreeCacheGetSet(t *testing.T) {
	// devnull is a black hole... just to keep our types proper
	devnull := BTreeCacheable{EmptyKVStore{}}

	// base is the root of our data, we can layer on top and
	// all queries should work
	base := devnull.CacheWrap()

	// make sure the btree is empty at start but returns results
	// that are writen to it
	k, v := []byte("french"), []byte("fry")
	assert.Nil(t, base.Get(k))
	assert.False(t, base.Has(k))
	base.Set(k, v)
	assert.Equal(t, v, base.Get(k))
	assert.True(t, base.Has(k))

	// now layer another btree on top and make sure that we get
	// base data
	cache := base.CacheWrap()
	assert.Equal(t, v, cache.Get(k))
	assert.True(t, cache.Has(k))

	// writing more data is only visible in the cache
	k2, v2 := []byte("LA"), []byte("Dodgers")
	assert.Nil(t, cache.Get(k2))
	assert.False(t, cache.Has(k2))
	cache.Set(k2, v2)
	assert.Equal(t, v2, cache.Get(k2))
	assert.Nil(t, base.Get(k2))
	assert.True(t, cache.Has(k2))
	assert.False(t, base.Has(k2))

	// we can write the cache to the base layer...
	cache.Write()
	assert.Equal(t, v, base.Get(k))
	assert.Equal(t, v2, base.Get(k2))
	assert.True(t, base.Has(k))
	assert.True(t, base.Has(k2))

	// we can discard one
	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	assert.Equal(t, v, c2.Get(k))
	assert.Equal(t, v2, c2.Get(k2))
	c2.Set(k3, v3)
	c2.Discard()

	// and commit another
	c3 := base.CacheWrap()
	assert.Equal(t, v, c3.Get(k))
	assert.Equal(t, v2, c3.Get(k2))
	c3.Delete(k)
	c3.Write()

	// make sure it commits proper
	assert.Nil(t, base.Get(k))
	assert.Equal(t, v2, base.Get(k2))
	assert.Nil(t, base.Get(k3))

	// and to test devnull....
	base.Write()
	assert.Nil(t, devnull.Get(k2))
}

type model struct {
	key   []byte
	value []byte
}

// TestBTreeCacheConflicts checks that we can handle
// overwriting values and deleting underlying values
func TestBTreeCacheConflicts(t *testing.T) {
	// make 10 keys and 20 values....
	ks := randKeys(t, 10, 16)
	vs := randKeys(t, 20, 40)

	// a nil value stands for a delete
	type write struct {
		key, value []byte
	}
	apply := func(kv SetDeleter, writes []write) {
		for _, w := range writes {
			if w.value == nil {
				kv.Delete(w.key)
			} else {
				kv.Set(w.key, w.value)
			}
		}
	}

	cases := map[string]struct {
		parentWrites  []write
		childWrites   []write
		parentQueries []model // key is what we query, value is what we expect
		childQueries  []model
	}{
		"overwrite one, delete another, add a third": {
			parentWrites:  []write{{ks[1], vs[1]}, {ks[2], vs[2]}},
			childWrites:   []write{{ks[1], vs[11]}, {ks[3], vs[7]}, {ks[2], nil}},
			parentQueries: []model{{ks[1], vs[1]}, {ks[2], vs[2]}, {ks[3], nil}},
			childQueries:  []model{{ks[1], vs[11]}, {ks[2], nil}, {ks[3], vs[7]}},
		},
		"delete and recreate": {
			parentWrites:  []write{{ks[4], vs[4]}},
			childWrites:   []write{{ks[4], nil}, {ks[4], vs[14]}},
			parentQueries: []model{{ks[4], vs[4]}},
			childQueries:  []model{{ks[4], vs[14]}},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent := MemStore().CacheWrap()
			apply(parent, tc.parentWrites)

			child := parent.CacheWrap()
			apply(child, tc.childWrites)

			// now check the parent is unaffected
			for _, q := range tc.parentQueries {
				assert.Equal(t, q.value, parent.Get(q.key))
				assert.Equal(t, q.value != nil, parent.Has(q.key))
			}

			// the child shows changes
			for _, q := range tc.childQueries {
				assert.Equal(t, q.value, child.Get(q.key))
				assert.Equal(t, q.value != nil, child.Has(q.key))
			}

			// write child to parent and make sure it also shows proper data
			child.Write()
			for _, q := range tc.childQueries {
				assert.Equal(t, q.value, parent.Get(q.key))
				assert.Equal(t, q.value != nil, parent.Has(q.key))
			}
		})
	}
}

func TestNonAtomicBatchKeepsOrder(t *testing.T) {
	kv := MemStore()
	b := NewNonAtomicBatch(kv)
	k := []byte("key")
	b.Set(k, []byte("one"))
	b.Delete(k)
	b.Set(k, []byte("two"))
	assert.Equal(t, 3, b.Len())
	assert.Nil(t, kv.Get(k))

	b.Write()
	assert.Equal(t, []byte("two"), kv.Get(k))
	assert.Equal(t, 0, b.Len())
}

func randKeys(t testing.TB, count, size int) [][]byte {
	t.Helper()
	res := make([][]byte, count)
	for i := range res {
		res[i] = make([]byte, size)
		_, err := rand.Read(res[i])
		require.NoError(t, err)
	}
	return res
}
