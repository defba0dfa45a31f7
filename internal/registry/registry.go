// Package registry maps subscriber addresses to their delivery handlers.
// The map is lock-free (haxmap) so routing reads never contend with
// subscribe/unsubscribe churn.
package registry

import (
	"sort"

	"github.com/alphadose/haxmap"
)

// Registry holds at most one live entry per address. Re-registering an
// address overwrites atomically.
type Registry[T any] struct {
	values *haxmap.Map[string, T]
}

// New creates an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		values: haxmap.New[string, T](),
	}
}

// Get returns the handler registered for the address.
func (r *Registry[T]) Get(address string) (T, bool) {
	return r.values.Get(address)
}

// Set registers the handler for the address, replacing any previous entry.
func (r *Registry[T]) Set(address string, value T) {
	r.values.Set(address, value)
}

// Del removes the address. No-op if it was never registered.
func (r *Registry[T]) Del(address string) {
	r.values.Del(address)
}

// Len returns the number of registered addresses.
func (r *Registry[T]) Len() int {
	return int(r.values.Len())
}

// Addresses returns every registered address in sorted order, so callers
// that fan out (broadcast) do so deterministically.
func (r *Registry[T]) Addresses() []string {
	out := make([]string, 0, r.values.Len())
	r.values.ForEach(func(address string, _ T) bool {
		out = append(out, address)
		return true
	})
	sort.Strings(out)
	return out
}
