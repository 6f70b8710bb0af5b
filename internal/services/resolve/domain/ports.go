package domain

import (
	"context"
	"time"

	"equilex/internal/core/rulecatalog"
	"equilex/internal/modkit/scope"
)

// Scope is the caller's visibility grants; lookups never widen past it
type Scope = scope.Scope

// Record is one reference-store row: id plus the searchable display fields
// declared by the kind's lookup strategy
type Record struct {
	ID     string
	Fields map[string]string
}

// Display returns the first populated field in the strategy's declared
// order, for clarification payloads
func (r Record) Display(searchFields []string) string {
	for _, f := range searchFields {
		if v := r.Fields[f]; v != "" {
			return v
		}
	}
	return r.ID
}

// ReferencePort is the reference store consumed by name lookups.
// Search returns up to limit rows whose search fields contain query,
// case-insensitively; an empty result is a clean miss. Transport or
// store errors come back as lookup failures, never as a miss
type ReferencePort interface {
	Search(ctx context.Context, kind rulecatalog.Lookup, query string, visibleIDs []string, limit int) ([]Record, error)
	ListAll(ctx context.Context, kind rulecatalog.Lookup, visibleIDs []string) ([]Record, error)
}

// CachePort memoizes successful resolutions per (category, query, scope)
type CachePort interface {
	Get(category, query, scopeFP string) ([]Value, bool)
	Put(category, query, scopeFP string, vals []Value, ttl time.Duration)
}

// ResolverPort is the public engine API
type ResolverPort interface {
	ResolveStatus(value string, kind rulecatalog.StatusKind) Value
	ResolvePlanType(value string) Value
	ResolveMetric(value string) Value
	ResolveCountry(value string) Value
	ResolveDateExpression(phrase string, now time.Time) Value
	ResolveOrganization(ctx context.Context, name string, sc Scope) ([]Value, error)
	ResolvePerson(ctx context.Context, name string, sc Scope) ([]Value, error)
	Resolve(ctx context.Context, bundle Bundle, sc Scope) (*FilterSet, error)
}
