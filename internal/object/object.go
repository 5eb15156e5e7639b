// Package object implements wisp's heap-allocated values.
//
// The only object kind the language has today is String (spec.md's
// Non-goals rule out closures, user functions, and runtime classes, so
// there is nothing else to box). Every object handed out by this package
// is linked into a Heap's intrusive list, which Heap.Objects walks; there
// is no explicit free — Go's garbage collector reclaims the objects once
// the Heap is dropped. There is no reference counting and no cycle
// collector, because immutable interned strings cannot form cycles.
package object

import (
	"github.com/kristofer/wisp/internal/table"
	"github.com/kristofer/wisp/internal/value"
)

// String is wisp's only heap object kind: an immutable byte sequence with
// a precomputed FNV-1a hash. Two String objects held by the same Heap are
// guaranteed to have different byte content — see Heap.Intern — which is
// what lets the VM treat string equality as reference equality.
type String struct {
	chars string
	hash  uint32
	next  *String // intrusive heap list link
}

// ObjType implements value.Obj.
func (s *String) ObjType() string { return "string" }

// String implements fmt.Stringer so value.Format can print it directly.
func (s *String) String() string { return s.chars }

// Chars returns the string's raw bytes.
func (s *String) Chars() string { return s.chars }

// Hash implements table.Key.
func (s *String) Hash() uint32 { return s.hash }

// Bytes implements table.Key.
func (s *String) Bytes() string { return s.chars }

// hashString computes wisp's string hash: 32-bit FNV-1a over the raw bytes.
func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// present is the sentinel value stored against every intern-pool entry;
// only the key (the *String itself) carries meaning there.
var present = value.Bool(true)

// Heap owns every object allocated during one VM's lifetime plus the
// intern pool that deduplicates string content. Its zero value is not
// ready to use — call NewHeap.
type Heap struct {
	strings *table.Table
	head    *String // intrusive list of every allocated object, most recent first
}

// NewHeap returns an empty heap with an initialized intern pool.
func NewHeap() *Heap {
	return &Heap{strings: table.New()}
}

// Intern returns the canonical *String for the given bytes: if a String
// with identical content is already interned, that same object is
// returned; otherwise a new one is allocated, installed in the intern
// pool, and linked into the heap.
//
// This plays the role of the reference implementation's copy_string; there
// is no take_string variant. The new String keeps the caller's Go string
// as is, which is safe because Go strings are immutable — there is no
// separate "caller's buffer" to release on an intern hit the way the C
// implementation has to for a malloc'd char*.
func (h *Heap) Intern(s string) *String {
	hash := hashString(s)

	if key, ok := h.strings.FindString(s, hash); ok {
		return key.(*String)
	}

	obj := &String{chars: s, hash: hash}
	h.strings.Set(obj, present)
	obj.next = h.head
	h.head = obj
	return obj
}

// Strings exposes the intern pool Table directly, so the VM's globals
// table (a distinct Table instance) can reuse its Set/Get/Delete/AddAll
// operations without this package re-exposing them one by one.
func (h *Heap) Strings() *table.Table { return h.strings }

// Objects returns every object currently linked into the heap, most
// recently allocated first. Exists for teardown bookkeeping and tests; the
// VM does not otherwise need to walk this list since Go's own garbage
// collector reclaims unreachable Strings once the Heap itself is dropped.
func (h *Heap) Objects() []*String {
	var out []*String
	for o := h.head; o != nil; o = o.next {
		out = append(out, o)
	}
	return out
}
