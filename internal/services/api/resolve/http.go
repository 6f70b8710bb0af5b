package resolve

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"equilex/internal/modkit/httpkit"
	"equilex/internal/modkit/scope"
	perr "equilex/internal/platform/errors"
	"equilex/internal/platform/logger"
	pnet "equilex/internal/platform/net"
	"equilex/internal/services/resolve/domain"
)

type scopeBody struct {
	ClientIDs      []string `json:"client_ids"`
	PlanIDs        []string `json:"plan_ids"`
	ParticipantIDs []string `json:"participant_ids"`
}

func (s scopeBody) scope() domain.Scope {
	return scope.Scope{
		ClientIDs:      s.ClientIDs,
		PlanIDs:        s.PlanIDs,
		ParticipantIDs: s.ParticipantIDs,
	}
}

// scopedCtx tags ctx with the request id and scope fingerprint so
// engine log lines carry both
func scopedCtx(r *http.Request, sc domain.Scope) context.Context {
	ctx := r.Context()
	return logger.WithRequest(ctx, pnet.RequestID(ctx), sc.Fingerprint())
}

type resolveRequest struct {
	Bundle domain.Bundle `json:"bundle"`
	Scope  scopeBody     `json:"scope"`
}

func (m *Module) handleResolve() http.HandlerFunc {
	return httpkit.JSON(func(r *http.Request, req resolveRequest) httpkit.Response {
		if req.Bundle.Empty() {
			return httpkit.Error(perr.InvalidArgf("bundle has nothing to resolve"))
		}
		sc := req.Scope.scope()
		fs, err := m.ports.Resolver.Resolve(scopedCtx(r, sc), req.Bundle, sc)
		if err != nil {
			return httpkit.Error(err)
		}
		return httpkit.Data(fs)
	})
}

type dateRequest struct {
	Phrase string `json:"phrase" validate:"required"`
	// Now anchors relative phrases; RFC3339, defaults to the server clock
	Now string `json:"now,omitempty"`
}

func (m *Module) handleDate() http.HandlerFunc {
	return httpkit.JSON(func(r *http.Request, req dateRequest) httpkit.Response {
		now := time.Now().UTC()
		if req.Now != "" {
			parsed, err := time.Parse(time.RFC3339, req.Now)
			if err != nil {
				return httpkit.Error(perr.InvalidArgf("now must be RFC3339: %v", err))
			}
			now = parsed
		}
		return httpkit.Data(m.ports.Resolver.ResolveDateExpression(req.Phrase, now))
	})
}

type lookupRequest struct {
	Name  string    `json:"name" validate:"required"`
	Scope scopeBody `json:"scope"`
}

type lookupResponse struct {
	Matches   []domain.Value `json:"matches"`
	Ambiguous bool           `json:"ambiguous"`
}

func (m *Module) handleLookup() http.HandlerFunc {
	return httpkit.JSON(func(r *http.Request, req lookupRequest) httpkit.Response {
		kind := chi.URLParam(r, "kind")
		sc := req.Scope.scope()

		var (
			vals []domain.Value
			err  error
		)
		ctx := scopedCtx(r, sc)
		switch kind {
		case "client":
			vals, err = m.ports.Resolver.ResolveOrganization(ctx, req.Name, sc)
		case "participant":
			vals, err = m.ports.Resolver.ResolvePerson(ctx, req.Name, sc)
		default:
			return httpkit.Error(perr.InvalidArgf("unknown lookup kind %q", kind))
		}
		if err != nil {
			return httpkit.Error(err)
		}
		return httpkit.Data(lookupResponse{Matches: vals, Ambiguous: len(vals) > 1})
	})
}
