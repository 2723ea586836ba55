package ir

// Keystore is an insertion-ordered map. Replacing an existing key keeps the
// key's original position; this matters for CTEs, where order determines
// visibility for recursive references.
//
// Put returns a new Keystore; the receiver is never modified.
type Keystore[V any] struct {
	keys []string
	vals map[string]V
}

// NewKeystore returns an empty keystore.
func NewKeystore[V any]() *Keystore[V] {
	return &Keystore[V]{vals: map[string]V{}}
}

// Len returns the number of entries. A nil keystore is empty.
func (k *Keystore[V]) Len() int {
	if k == nil {
		return 0
	}
	return len(k.keys)
}

// Has reports whether key is present.
func (k *Keystore[V]) Has(key string) bool {
	if k == nil {
		return false
	}
	_, ok := k.vals[key]
	return ok
}

// Get returns the value for key.
func (k *Keystore[V]) Get(key string) (V, bool) {
	if k == nil {
		var zero V
		return zero, false
	}
	v, ok := k.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (k *Keystore[V]) Keys() []string {
	if k == nil {
		return nil
	}
	out := make([]string, len(k.keys))
	copy(out, k.keys)
	return out
}

// Put returns a copy of the keystore with key set to v. An existing key
// keeps its position; a new key appends.
func (k *Keystore[V]) Put(key string, v V) *Keystore[V] {
	next := &Keystore[V]{vals: make(map[string]V, k.Len()+1)}
	if k != nil {
		next.keys = append(next.keys, k.keys...)
		for kk, vv := range k.vals {
			next.vals[kk] = vv
		}
	}
	if _, ok := next.vals[key]; !ok {
		next.keys = append(next.keys, key)
	}
	next.vals[key] = v
	return next
}

// Each calls fn for every entry in insertion order, stopping early if fn
// returns false.
func (k *Keystore[V]) Each(fn func(key string, v V) bool) {
	if k == nil {
		return
	}
	for _, key := range k.keys {
		if !fn(key, k.vals[key]) {
			return
		}
	}
}
