package vm

import "sort"

// Entry is a single key/value pair of an object.
type Entry struct {
	Key   Value
	Value Value
}

// ObjectValue maps Values to Values. Storage is bucketed by key hash and has
// no meaningful order; anything observable (equality, ordering, hashing,
// display) goes through the key-sorted Entries.
type ObjectValue struct {
	buckets map[uint64][]Entry
	size    int
}

func (*ObjectValue) isValue()     {}
func (*ObjectValue) AsBool() bool { return true }
func (*ObjectValue) Kind() Kind   { return KindObject }

func NewObject() *ObjectValue {
	return &ObjectValue{buckets: make(map[uint64][]Entry)}
}

// Len counts every key present, tombstoned keys included.
func (o *ObjectValue) Len() int {
	return o.size
}

func (o *ObjectValue) find(key Value) (uint64, int) {
	h := Hash(key)
	for i, e := range o.buckets[h] {
		if Equal(e.Key, key) {
			return h, i
		}
	}
	return h, -1
}

func (o *ObjectValue) Get(key Value) (Value, bool) {
	h, i := o.find(key)
	if i < 0 {
		return Null, false
	}
	return Clone(o.buckets[h][i].Value), true
}

// Index reads the value stored under key, or Null when the key is absent.
func (o *ObjectValue) Index(key Value) Value {
	v, _ := o.Get(key)
	return v
}

func (o *ObjectValue) Set(key, val Value) {
	if o.buckets == nil {
		o.buckets = make(map[uint64][]Entry)
	}
	h, i := o.find(key)
	if i >= 0 {
		o.buckets[h][i].Value = Clone(val)
		return
	}
	o.buckets[h] = append(o.buckets[h], Entry{Key: Clone(key), Value: Clone(val)})
	o.size++
}

// Delete tombstones key: the entry stays (and still counts towards Len) but
// reads back as Null. Deleting an absent key inserts the tombstone.
func (o *ObjectValue) Delete(key Value) {
	o.Set(key, Null)
}

// Entries returns the entries sorted by key. The returned values are owned
// by the object and must not be mutated.
func (o *ObjectValue) Entries() []Entry {
	out := make([]Entry, 0, o.size)
	for _, bucket := range o.buckets {
		out = append(out, bucket...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := Order(out[i].Key, out[j].Key); c != 0 {
			return c < 0
		}
		// NaN keys never match each other, so one may repeat.
		return Order(out[i].Value, out[j].Value) < 0
	})
	return out
}

// Compare orders objects lexicographically over their sorted entries; an
// object whose entries are a strict prefix of the other's is less.
func (o *ObjectValue) Compare(other *ObjectValue) int {
	a, b := o.Entries(), other.Entries()
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Order(a[i].Key, b[i].Key); c != 0 {
			return c
		}
		if c := Order(a[i].Value, b[i].Value); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func (o *ObjectValue) Clone() *ObjectValue {
	out := NewObject()
	for h, bucket := range o.buckets {
		cp := make([]Entry, len(bucket))
		for i, e := range bucket {
			cp[i] = Entry{Key: Clone(e.Key), Value: Clone(e.Value)}
		}
		out.buckets[h] = cp
	}
	out.size = o.size
	return out
}
