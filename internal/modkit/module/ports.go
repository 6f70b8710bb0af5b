// Package module provides typed access to a module's ports
package module

import "fmt"

// PortsHolder is implemented by modules that expose a ports value
type PortsHolder interface{ Ports() any }

// PortsOf returns the module's ports as T, or an error on mismatch
func PortsOf[T any](m PortsHolder) (T, error) {
	var zero T
	if m == nil {
		return zero, fmt.Errorf("nil module")
	}
	p, ok := m.Ports().(T)
	if !ok {
		return zero, fmt.Errorf("module ports are %T, not %T", m.Ports(), zero)
	}
	return p, nil
}

// MustPortsOf is PortsOf or panic; for wiring code where a mismatch is fatal
func MustPortsOf[T any](m PortsHolder) T {
	p, err := PortsOf[T](m)
	if err != nil {
		panic(err)
	}
	return p
}
