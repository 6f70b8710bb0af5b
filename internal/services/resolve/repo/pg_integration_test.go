//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"equilex/internal/core/rulecatalog"
	perr "equilex/internal/platform/errors"
	"equilex/internal/platform/store"
)

func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mapped.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func clientKind() rulecatalog.Lookup {
	return rulecatalog.Lookup{
		Kind:         "client",
		PrimaryKey:   "id",
		SearchFields: []string{"name"},
		ScanCap:      100,
	}
}

func TestReferenceStore_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	s, err := store.Open(ctx, store.Config{
		AppName: "equilex-repo-integration",
		PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 4},
	})
	if err != nil {
		t.Fatalf("store open: %v", err)
	}
	defer s.Close(ctx)

	if _, err := s.PG.Exec(ctx, `create table clients (id text primary key, name text)`); err != nil {
		t.Fatalf("setup: %v", err)
	}
	c1, c2, c3 := uuid.NewString(), uuid.NewString(), uuid.NewString()
	if _, err := s.PG.Exec(ctx,
		`insert into clients (id, name) values ($1, 'Acme Corp'), ($2, 'Globex'), ($3, 'Acme Corp')`,
		c1, c2, c3); err != nil {
		t.Fatalf("setup: %v", err)
	}

	ref := NewPG().Bind(s.PG)
	kind := clientKind()

	t.Run("search is case-insensitive substring", func(t *testing.T) {
		recs, err := ref.Search(ctx, kind, "acme", []string{c1, c2}, 10)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(recs) != 1 || recs[0].ID != c1 || recs[0].Fields["name"] != "Acme Corp" {
			t.Fatalf("recs = %+v", recs)
		}
	})

	t.Run("duplicate names both surface", func(t *testing.T) {
		recs, err := ref.Search(ctx, kind, "acme corp", []string{c1, c2, c3}, 10)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(recs) != 2 {
			t.Fatalf("want both Acme Corp rows, got %+v", recs)
		}
	})

	t.Run("clean miss is empty", func(t *testing.T) {
		recs, err := ref.Search(ctx, kind, "initech", []string{c1, c2}, 10)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(recs) != 0 {
			t.Fatalf("recs = %+v", recs)
		}
	})

	t.Run("like metacharacters match literally", func(t *testing.T) {
		recs, err := ref.Search(ctx, kind, "%", []string{c1, c2, c3}, 10)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(recs) != 0 {
			t.Fatalf("wildcard leaked into the pattern: %+v", recs)
		}
	})

	t.Run("scope excludes out-of-set rows", func(t *testing.T) {
		recs, err := ref.Search(ctx, kind, "acme corp", []string{c3}, 10)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(recs) != 1 || recs[0].ID != c3 {
			t.Fatalf("recs = %+v", recs)
		}

		recs, err = ref.Search(ctx, kind, "globex", []string{c1}, 10)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(recs) != 0 {
			t.Fatalf("out-of-scope row returned: %+v", recs)
		}
	})

	t.Run("empty scope returns nothing", func(t *testing.T) {
		recs, err := ref.Search(ctx, kind, "acme corp", nil, 10)
		if err != nil || recs != nil {
			t.Fatalf("recs = %+v, err = %v", recs, err)
		}
	})

	t.Run("list all respects scope and cap", func(t *testing.T) {
		recs, err := ref.ListAll(ctx, kind, []string{c1, c2})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(recs) != 2 {
			t.Fatalf("len = %d", len(recs))
		}

		capped := kind
		capped.ScanCap = 1
		recs, err = ref.ListAll(ctx, capped, []string{c1, c2, c3})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(recs) != 1 {
			t.Fatalf("cap not applied, len = %d", len(recs))
		}
	})

	t.Run("store error surfaces as lookup failure", func(t *testing.T) {
		bad := kind
		bad.Kind = "participant" // participants table was never created
		bad.SearchFields = []string{"name"}
		_, err := ref.Search(ctx, bad, "anyone", []string{"p-1"}, 10)
		if err == nil {
			t.Fatal("expected error")
		}
		if !perr.IsLookupFailure(err) {
			t.Fatalf("code = %v", perr.CodeOf(err))
		}
	})
}
