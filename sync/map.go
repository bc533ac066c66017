/*
Package sync provides synchronization primitives similar to the sync
package of Go's standard library, however here with a focus on
parallel performance rather than concurrency.

Map is a parallel map consisting of individually locked splits. Bag is
an unordered concurrent collection built on Map. Pool is a pool of
element buffers with scoped acquisition. For other synchronization
primitives, such as condition variables, mutual exclusion locks, or
atomic memory primitives, please use the standard library.
*/
package sync

import (
	"encoding/binary"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/exascience/parpat/parallel"
)

/*
Hash computes a hash value for keys of the built-in integer, float, and
string types with xxhash. Float keys that compare equal, such as 0 and
-0, hash to the same value. Keys of other types are hashed through their
default formatting, which is correct but slow; such keys should get a
dedicated hash function passed to NewMap.
*/
func Hash[K comparable](key K) uint64 {
	var buf [8]byte
	switch k := any(key).(type) {
	case string:
		return xxhash.Sum64String(k)
	case int:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
	case int64:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
	case int32:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
	case uint:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
	case uint64:
		binary.LittleEndian.PutUint64(buf[:], k)
	case uint32:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
	case float64:
		binary.LittleEndian.PutUint64(buf[:], floatBits(k))
	case float32:
		binary.LittleEndian.PutUint64(buf[:], floatBits(float64(k)))
	default:
		return xxhash.Sum64String(fmt.Sprint(k))
	}
	return xxhash.Sum64(buf[:])
}

func floatBits(f float64) uint64 {
	if f == 0 {
		f = 0
	}
	return math.Float64bits(f)
}

/*
A Split is a partial map that belongs to a larger Map, which can be
individually locked. Its enclosed map can then be individually
accessed without blocking accesses to other splits.
*/
type Split[K comparable, V any] struct {
	sync.RWMutex
	Map map[K]V
}

/*
A Map is a parallel map that consists of several split maps that can
be individually locked and accessed.

The zero Map is not valid.
*/
type Map[K comparable, V any] struct {
	splits []Split[K, V]
	hash   func(K) uint64
}

/*
NewMap returns a map with size splits that uses hash to assign keys to
splits.

If size is <= 0, runtime.GOMAXPROCS(0) is used instead. If hash is nil,
Hash is used instead.
*/
func NewMap[K comparable, V any](size int, hash func(K) uint64) *Map[K, V] {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	if hash == nil {
		hash = Hash[K]
	}
	splits := make([]Split[K, V], size)
	for i := range splits {
		splits[i].Map = make(map[K]V)
	}
	return &Map[K, V]{splits: splits, hash: hash}
}

/*
Split retrieves the split for a particular key.

The split must be locked/unlocked properly by user programs to safely
access its contents. In many cases, it is easier to use one of the
high-level methods, like Load and Modify, which
implicitly take care of proper locking.
*/
func (m *Map[K, V]) Split(key K) *Split[K, V] {
	splits := m.splits
	return &splits[m.hash(key)%uint64(len(splits))]
}

/*
Load returns the value stored in the map for a key, or the zero value
if no value is present. The ok result indicates whether value was
found in the map.
*/
func (m *Map[K, V]) Load(key K) (value V, ok bool) {
	split := m.Split(key)
	split.RLock()
	value, ok = split.Map[key]
	split.RUnlock()
	return
}

/*
Modify looks up a value for the key if present and passes it to the
modifier. The ok parameter indicates whether value was found in the
map. The replacement returned by the modifier is then stored as a
value for key in the map if storeNotDelete is true, otherwise the
value is deleted from the map. Modify returns the same results as
modifier.

The modifier is invoked exactly once. While modifier is executing, a
lock is being held on a portion of the map, so the function should be
brief.
*/
func (m *Map[K, V]) Modify(key K, modifier func(value V, ok bool) (replacement V, storeNotDelete bool)) (replacement V, storeNotDelete bool) {
	split := m.Split(key)
	split.Lock()
	value, ok := split.Map[key]
	if replacement, storeNotDelete = modifier(value, ok); storeNotDelete {
		split.Map[key] = replacement
	} else {
		delete(split.Map, key)
	}
	split.Unlock()
	return
}

// Len returns the number of keys in the map. It does not correspond to a
// consistent snapshot if the map is modified concurrently.
func (m *Map[K, V]) Len() (n int) {
	for i := range m.splits {
		split := &m.splits[i]
		split.RLock()
		n += len(split.Map)
		split.RUnlock()
	}
	return
}

func (split *Split[K, V]) splitRange(f func(key K, value V) bool) bool {
	split.RLock()
	defer split.RUnlock()
	for key, value := range split.Map {
		if !f(key, value) {
			return false
		}
	}
	return true
}

/*
Range calls f sequentially for each key and value present in the
map. If f returns false, Range stops the iteration.

Range does not necessarily correspond to any consistent snapshot of
the Map's contents: no key will be visited more than once, but if the
value for any key is stored or deleted concurrently, Range may reflect
any mapping for that key from any point during the Range call.

f must not modify the map.
*/
func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	for i := range m.splits {
		if !m.splits[i].splitRange(f) {
			return
		}
	}
}

/*
ParallelRange calls f in parallel for each key and value present in
the map. If f returns false, ParallelRange stops the iteration of the
split it is visiting. f must be safe for concurrent use.

ParallelRange has the same consistency guarantees as Range.
*/
func (m *Map[K, V]) ParallelRange(f func(key K, value V) bool) error {
	splits := m.splits
	_, err := parallel.RangeAnd(0, len(splits), 0, func(low, high int) (bool, error) {
		for i := low; i < high; i++ {
			if !splits[i].splitRange(f) {
				return false, nil
			}
		}
		return true, nil
	})
	return err
}
