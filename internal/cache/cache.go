// Package cache is the per-search response cache behind FullForward: it
// lets every one of the eight symmetries of the root position be
// evaluated once and reused for the lifetime of a single Driver.Search
// call, mirroring original_source/libdg_mcts/global_cache.rs's
// get_or_insert. It is backed by an in-memory Badger instance, grounded
// on the teacher's internal/storage/storage.go Badger usage.
package cache

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"

	"github.com/dgoengine/mctscore/internal/game"
)

// Response is the cached (value, policy) pair for one (board, color,
// transform) triple.
type Response struct {
	Value  float32
	Policy []float32
}

// Cache scopes a Badger instance to the lifetime of one search. It must
// be closed with Close when the search finishes.
type Cache struct {
	db *badger.DB
}

// New opens a fresh in-memory Badger instance. The database is never
// persisted to disk and carries no state across searches, matching the
// original's process-lifetime global_cache.
func New() (*Cache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying Badger instance.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key hashes a board's feature tensor together with the color to move
// and the symmetry under which it was evaluated, so that the same
// logical position under the same transform always maps to the same
// cache entry.
func Key(board game.Board, toMove game.Color, t game.Transform) []byte {
	h := xxhash.New()

	var header [2]byte
	header[0] = byte(toMove)
	header[1] = byte(t)
	h.Write(header[:])

	features := board.Features(toMove, t)
	buf := make([]byte, 4)
	for _, f := range features {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
		h.Write(buf)
	}

	var out [8]byte
	binary.BigEndian.PutUint64(out[:], h.Sum64())
	return out[:]
}

// GetOrInsert returns the cached response for key, computing and
// storing it via compute if absent. compute runs only when key is not
// yet stored. Two overlapping calls for the same absent key are not
// serialized here; FullForward, the only caller, goes through the
// symmetries one after another on a single goroutine.
func (c *Cache) GetOrInsert(key []byte, compute func() (float32, []float32)) (float32, []float32, error) {
	var value float32
	var policy []float32

	err := c.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == nil {
			return item.Value(func(val []byte) error {
				value, policy = decode(val)
				return nil
			})
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		value, policy = compute()
		return txn.Set(key, encode(value, policy))
	})

	return value, policy, err
}

func encode(value float32, policy []float32) []byte {
	out := make([]byte, 4+4*len(policy))
	binary.BigEndian.PutUint32(out[0:4], math.Float32bits(value))
	for i, p := range policy {
		binary.BigEndian.PutUint32(out[4+4*i:8+4*i], math.Float32bits(p))
	}
	return out
}

func decode(buf []byte) (float32, []float32) {
	value := math.Float32frombits(binary.BigEndian.Uint32(buf[0:4]))
	policy := make([]float32, (len(buf)-4)/4)
	for i := range policy {
		policy[i] = math.Float32frombits(binary.BigEndian.Uint32(buf[4+4*i : 8+4*i]))
	}
	return value, policy
}
