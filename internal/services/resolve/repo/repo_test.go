package repo

import (
	"context"
	"strings"
	"testing"

	"equilex/internal/core/rulecatalog"
	perr "equilex/internal/platform/errors"
	"equilex/internal/platform/store"
)

func TestLikeEscape(t *testing.T) {
	cases := []struct{ in, want string }{
		{"plain name", "plain name"},
		{"J%", `J\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
		{"%_%", `\%\_\%`},
	}
	for _, tc := range cases {
		if got := likeEscape(tc.in); got != tc.want {
			t.Errorf("likeEscape(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// captureQuerier records the SQL and args of the last Query call and
// fails it, so tests can inspect the statement without a database
type captureQuerier struct {
	sql  string
	args []any
}

func (c *captureQuerier) Exec(ctx context.Context, sql string, args ...any) (store.CommandTag, error) {
	return nil, perr.DBf("not implemented")
}

func (c *captureQuerier) Query(ctx context.Context, sql string, args ...any) (store.Rows, error) {
	c.sql, c.args = sql, args
	return nil, perr.DBf("capture only")
}

func (c *captureQuerier) QueryRow(ctx context.Context, sql string, args ...any) store.Row {
	return nil
}

func lookupKind() rulecatalog.Lookup {
	return rulecatalog.Lookup{
		Kind:         "client",
		PrimaryKey:   "id",
		SearchFields: []string{"name"},
		ScanCap:      100,
	}
}

func TestSearchPatternEscapesWildcards(t *testing.T) {
	q := &captureQuerier{}
	ref := NewPG().Bind(q)

	_, err := ref.Search(context.Background(), lookupKind(), "J%", []string{"c-1"}, 5)
	if err == nil {
		t.Fatal("capture querier always errors")
	}

	if len(q.args) != 3 {
		t.Fatalf("args = %v", q.args)
	}
	pattern, ok := q.args[1].(string)
	if !ok || pattern != `%J\%%` {
		t.Fatalf("pattern = %v, wildcard must be escaped", q.args[1])
	}
	if limit, ok := q.args[2].(int); !ok || limit != 5 {
		t.Fatalf("limit arg = %v", q.args[2])
	}
	if !strings.Contains(q.sql, "id = ANY($1)") || !strings.Contains(q.sql, "name ILIKE $2") {
		t.Fatalf("sql = %s", q.sql)
	}
	if !strings.Contains(q.sql, "LIMIT $3") {
		t.Fatalf("sql = %s", q.sql)
	}
}

func TestSearchRejectsBadField(t *testing.T) {
	kind := lookupKind()
	kind.SearchFields = []string{"name; drop table clients"}
	ref := NewPG().Bind(&captureQuerier{})

	_, err := ref.Search(context.Background(), kind, "acme", []string{"c-1"}, 5)
	if err == nil || perr.CodeOf(err) != perr.ErrorCodeInvalidArgument {
		t.Fatalf("err = %v", err)
	}
}
