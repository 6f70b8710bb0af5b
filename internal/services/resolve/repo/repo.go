// Package repo implements the reference store against Postgres. Every
// query is scoped to the caller's visible ids in SQL; the scope boundary
// is never widened, fuzzy fallback included
package repo

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"equilex/internal/core/rulecatalog"
	"equilex/internal/modkit/repokit"
	perr "equilex/internal/platform/errors"
	"equilex/internal/services/resolve/domain"
)

// kindTables maps lookup kinds to their reference tables
var kindTables = map[string]string{
	"client":      "clients",
	"participant": "participants",
	"plan":        "plans",
}

// identRX guards column names interpolated into SQL. Search fields come
// from the validated rules document, but identifiers still get checked
var identRX = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type pg struct{ q repokit.Queryer }

// NewPG returns a binder producing the Postgres reference store
func NewPG() repokit.Binder[domain.ReferencePort] {
	return repokit.BindFunc[domain.ReferencePort](func(q repokit.Queryer) domain.ReferencePort {
		return &pg{q: q}
	})
}

func tableFor(kind rulecatalog.Lookup) (string, []string, error) {
	table, ok := kindTables[kind.Kind]
	if !ok {
		return "", nil, perr.InvalidArgf("unknown lookup kind %q", kind.Kind)
	}
	for _, f := range kind.SearchFields {
		if !identRX.MatchString(f) {
			return "", nil, perr.InvalidArgf("bad search field %q for kind %q", f, kind.Kind)
		}
	}
	return table, kind.SearchFields, nil
}

// likeEscape neutralizes LIKE metacharacters in user input so the
// pattern only ever matches literally (backslash is the pg default
// escape character)
func likeEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Search matches query as a case-insensitive substring of the kind's
// search fields, restricted to visibleIDs and capped at limit rows.
// An empty result is a clean miss
func (r *pg) Search(ctx context.Context, kind rulecatalog.Lookup, query string, visibleIDs []string, limit int) ([]domain.Record, error) {
	if len(visibleIDs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	table, fields, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	args := make([]any, 0, 3)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	b.WriteString("SELECT id")
	for _, f := range fields {
		b.WriteString(", ")
		b.WriteString(f)
	}
	b.WriteString(" FROM ")
	b.WriteString(table)
	b.WriteString(" WHERE id = ANY(")
	b.WriteString(arg(visibleIDs))
	b.WriteString(") AND (")
	q := arg("%" + likeEscape(query) + "%")
	for i, f := range fields {
		if i > 0 {
			b.WriteString(" OR ")
		}
		b.WriteString(f)
		b.WriteString(" ILIKE ")
		b.WriteString(q)
	}
	b.WriteString(") ORDER BY id LIMIT ")
	b.WriteString(arg(limit))

	rows, err := r.q.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, perr.LookupWrap(err, "search %s %q", kind.Kind, query)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows, fields)
		if err != nil {
			return nil, perr.LookupWrap(err, "scan %s row", kind.Kind)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.LookupWrap(err, "search %s %q", kind.Kind, query)
	}
	return out, nil
}

// ListAll returns the visible rows for fuzzy scanning, capped by the
// kind's scan cap
func (r *pg) ListAll(ctx context.Context, kind rulecatalog.Lookup, visibleIDs []string) ([]domain.Record, error) {
	if len(visibleIDs) == 0 {
		return nil, nil
	}
	table, fields, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	args := make([]any, 0, 2)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	b.WriteString("SELECT id")
	for _, f := range fields {
		b.WriteString(", ")
		b.WriteString(f)
	}
	b.WriteString(" FROM ")
	b.WriteString(table)
	b.WriteString(" WHERE id = ANY(")
	b.WriteString(arg(visibleIDs))
	b.WriteString(") ORDER BY id LIMIT ")
	b.WriteString(arg(kind.ScanCap))

	rows, err := r.q.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, perr.LookupWrap(err, "list %s", kind.Kind)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows, fields)
		if err != nil {
			return nil, perr.LookupWrap(err, "scan %s row", kind.Kind)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.LookupWrap(err, "list %s", kind.Kind)
	}
	return out, nil
}

type scanner interface{ Scan(dest ...any) error }

func scanRecord(row scanner, fields []string) (domain.Record, error) {
	dest := make([]any, len(fields)+1)
	var id string
	dest[0] = &id
	vals := make([]any, len(fields)) // any tolerates NULL display columns
	for i := range fields {
		dest[i+1] = &vals[i]
	}
	if err := row.Scan(dest...); err != nil {
		return domain.Record{}, err
	}
	rec := domain.Record{ID: id, Fields: make(map[string]string, len(fields))}
	for i, f := range fields {
		if s, ok := vals[i].(string); ok {
			rec.Fields[f] = s
		}
	}
	return rec, nil
}
