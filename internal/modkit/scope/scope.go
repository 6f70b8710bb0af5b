// Package scope carries the caller's visibility grants: the reference
// entities a request is allowed to resolve against. Lookups never widen
// past the scope on the context
package scope

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Scope lists the entity ids visible to the caller, per kind.
// A nil slice means no grants for that kind (lookups return nothing),
// matching deny-by-default
type Scope struct {
	ClientIDs      []string
	PlanIDs        []string
	ParticipantIDs []string
}

// Empty reports whether the scope carries no grants at all
func (s Scope) Empty() bool {
	return len(s.ClientIDs) == 0 && len(s.PlanIDs) == 0 && len(s.ParticipantIDs) == 0
}

// Fingerprint returns a stable digest of the grants, insensitive to id
// order. Used in cache keys so entries never leak across scopes
func (s Scope) Fingerprint() string {
	h := sha256.New()
	for _, group := range [][]string{s.ClientIDs, s.PlanIDs, s.ParticipantIDs} {
		ids := append([]string(nil), group...)
		sort.Strings(ids)
		h.Write([]byte(strings.Join(ids, ",")))
		h.Write([]byte{'|'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

type ctxKey struct{}

// Into stores s on the context
func Into(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// From returns the scope on ctx, or a zero scope when absent
func From(ctx context.Context) Scope {
	if s, ok := ctx.Value(ctxKey{}).(Scope); ok {
		return s
	}
	return Scope{}
}
