// Package identity provides opaque keys that keep same-named occupants and
// chores distinct.
package identity

import "fmt"

// Key is an opaque (name, sequence) pair. It is comparable and can be used
// as a map key; nothing outside this package should interpret its fields.
type Key struct {
	Name string
	Seq  uint64
}

func (k Key) String() string {
	return fmt.Sprintf("%s#%d", k.Name, k.Seq)
}

// Registry hands out sequence numbers per name.
type Registry struct {
	next map[string]uint64
}

func NewRegistry() *Registry {
	return &Registry{next: make(map[string]uint64)}
}

// NewKey allocates the next key for name. Two calls with the same name
// return distinct keys.
func (r *Registry) NewKey(name string) Key {
	seq := r.next[name]
	r.next[name] = seq + 1
	return Key{Name: name, Seq: seq}
}

// Restore registers an externally stored key so future NewKey calls never
// collide with it.
func (r *Registry) Restore(key Key) {
	if key.Seq >= r.next[key.Name] {
		r.next[key.Name] = key.Seq + 1
	}
}
