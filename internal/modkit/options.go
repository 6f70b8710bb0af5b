package modkit

import "net/http"

// Option mutates a Built during module construction
type Option func(*Built)

// WithName sets the module's name (used in logs)
func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix sets the mount prefix, e.g. "/resolve"
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithMiddlewares appends router middleware applied at mount time
func WithMiddlewares(mws ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Middlewares = append(b.Middlewares, mws...) }
}

// WithPorts stores the module's typed ports value; retrieve it with
// module.PortsOf
func WithPorts(ports any) Option { return func(b *Built) { b.Ports = ports } }

// WithRegister sets the route registration hook
func WithRegister(fn RegisterFunc) Option { return func(b *Built) { b.Register = fn } }
