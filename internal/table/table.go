// Package table implements wisp's open-addressed hash table.
//
// Table is used for two different jobs inside the VM: the global-variable
// environment (string name -> Value) and the string intern pool (string
// content -> the one canonical *object.String for that content). Both jobs
// share the same probing and growth code; only the lookup entry point
// differs (Get probes by key identity, FindString probes by content and
// hash, since the intern pool's whole purpose is to hand back an existing
// key object for content that doesn't have one yet).
//
// Collision strategy: linear probing, starting at hash mod capacity.
// Deletion leaves a tombstone rather than compacting the probe chain,
// because removing an entry outright would break the probe sequence for
// every key that hashed to the same slot and was pushed further down by
// linear probing.
package table

import "github.com/kristofer/wisp/internal/value"

// Key is anything that can be used as a Table key: something hashable with
// byte content comparable for the intern pool's content lookup. Defined as
// an interface (rather than a concrete *object.String) so this package does
// not need to import package object — object is the one that needs table,
// for interning, and a dependency the other way would cycle.
type Key interface {
	Hash() uint32
	Bytes() string
}

// entryState distinguishes the three states an entry slot can be in.
type entryState int

const (
	stateEmpty entryState = iota
	stateLive
	stateTombstone
)

type entry struct {
	key   Key
	value value.Value
	state entryState
}

// maxLoad is the load factor beyond which the table grows. Tombstones
// count toward it: they occupy slots and lengthen probe chains exactly
// like live entries do, so a table full of tombstones still needs to grow.
const maxLoad = 0.75

// minCapacity is the smallest capacity a non-empty table grows to.
const minCapacity = 8

// Table is an open-addressed hash map from Key to value.Value.
type Table struct {
	count    int // live entries + tombstones
	entries  []entry
	capacity int
}

// New returns an empty table. The zero Table is also ready to use; New
// exists for symmetry with the rest of the package's constructors.
func New() *Table {
	return &Table{}
}

// Len reports the number of live entries (tombstones are not counted here;
// count tracks live+tombstone internally for load-factor purposes only).
func (t *Table) Len() int {
	if t.capacity == 0 {
		return 0
	}
	n := 0
	for _, e := range t.entries {
		if e.state == stateLive {
			n++
		}
	}
	return n
}

func (t *Table) findEntry(entries []entry, capacity int, key Key) int {
	index := int(key.Hash() % uint32(capacity))
	tombstone := -1

	for {
		e := &entries[index]
		switch e.state {
		case stateEmpty:
			if tombstone != -1 {
				return tombstone
			}
			return index
		case stateTombstone:
			if tombstone == -1 {
				tombstone = index
			}
		case stateLive:
			if e.key == key {
				return index
			}
		}
		index = (index + 1) % capacity
	}
}

func (t *Table) adjustCapacity(capacity int) {
	entries := make([]entry, capacity)

	count := 0
	for _, e := range t.entries {
		if e.state != stateLive {
			continue
		}
		idx := t.findEntry(entries, capacity, e.key)
		entries[idx] = entry{key: e.key, value: e.value, state: stateLive}
		count++
	}

	t.entries = entries
	t.capacity = capacity
	t.count = count
}

func growCapacity(capacity int) int {
	if capacity < minCapacity {
		return minCapacity
	}
	return capacity * 2
}

// Set inserts or overwrites key's value. It returns true iff key was not
// already present (a genuinely new entry), false on overwrite.
func (t *Table) Set(key Key, v value.Value) bool {
	if float64(t.count+1) > float64(t.capacity)*maxLoad {
		t.adjustCapacity(growCapacity(t.capacity))
	}

	idx := t.findEntry(t.entries, t.capacity, key)
	e := &t.entries[idx]
	isNew := e.state != stateLive

	if isNew && e.state == stateEmpty {
		t.count++
	}

	e.key = key
	e.value = v
	e.state = stateLive
	return isNew
}

// Get looks up key by identity. It reports whether the key was found.
func (t *Table) Get(key Key) (value.Value, bool) {
	if t.count == 0 {
		return value.Value{}, false
	}

	idx := t.findEntry(t.entries, t.capacity, key)
	e := &t.entries[idx]
	if e.state != stateLive {
		return value.Value{}, false
	}
	return e.value, true
}

// Delete removes key, leaving a tombstone in its slot so later probes for
// other keys that collided with it still find them. Reports whether key
// was present.
func (t *Table) Delete(key Key) bool {
	if t.count == 0 {
		return false
	}

	idx := t.findEntry(t.entries, t.capacity, key)
	e := &t.entries[idx]
	if e.state != stateLive {
		return false
	}

	e.key = nil
	e.state = stateTombstone
	return true
}

// AddAll copies every live entry of src into dst.
func AddAll(src, dst *Table) {
	for _, e := range src.entries {
		if e.state == stateLive {
			dst.Set(e.key, e.value)
		}
	}
}

// FindString performs the intern pool's content-and-hash lookup: unlike Get,
// it does not require an existing Key object, since the whole point is to
// find the canonical Key for content that may not have one yet. It returns
// the canonical key and true if an entry with matching hash and bytes
// exists.
func (t *Table) FindString(bytes string, hash uint32) (Key, bool) {
	if t.capacity == 0 {
		return nil, false
	}

	index := int(hash % uint32(t.capacity))
	for {
		e := &t.entries[index]
		switch e.state {
		case stateEmpty:
			return nil, false
		case stateLive:
			if e.key.Hash() == hash && e.key.Bytes() == bytes {
				return e.key, true
			}
		}
		index = (index + 1) % t.capacity
	}
}
