// Package repokit defines the repo binding seams shared by all modules
package repokit

import "equilex/internal/platform/store"

// Queryer is the sql surface repos are written against; both a pool and a
// transaction satisfy it
type Queryer = store.RowQuerier

// Binder produces a repo of type T bound to a specific Queryer
type Binder[T any] interface {
	Bind(q Queryer) T
}

// BindFunc adapts a function to the Binder interface
type BindFunc[T any] func(q Queryer) T

// Bind implements Binder
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind binds against q, panicking if q is nil. Wiring-time guard
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: nil queryer")
	}
	return b.Bind(q)
}
