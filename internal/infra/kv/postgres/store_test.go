package postgres

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"kanbancore/internal/infra/kv/postgres/testutil"
	"kanbancore/internal/kv/kvtest"
)

func withStubDB(t *testing.T) *testutil.StubConn {
	t.Helper()
	db, conn := testutil.NewStubDB()
	orig := sqlOpen
	sqlOpen = func(driverName, dsn string) (*sql.DB, error) {
		if driverName != defaultDriver {
			t.Fatalf("unexpected driver %s", driverName)
		}
		return db, nil
	}
	t.Cleanup(func() { sqlOpen = orig })
	return conn
}

func TestStoreBehaviour(t *testing.T) {
	conn := withStubDB(t)
	store, err := New(context.Background(), "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	kvtest.Exercise(t, store)
	if len(conn.Execs) == 0 || !strings.Contains(conn.Execs[0], "CREATE TABLE IF NOT EXISTS kv") {
		t.Fatalf("expected kv table ensured first, got %v", conn.Execs)
	}
}

func TestNewSurfacesPingAndDDLFailures(t *testing.T) {
	conn := withStubDB(t)
	conn.FailPing = true
	if _, err := New(context.Background(), "postgres://example"); err == nil || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("expected ping error, got %v", err)
	}

	conn = withStubDB(t)
	conn.FailExec = true
	if _, err := New(context.Background(), "postgres://example"); err == nil || !strings.Contains(err.Error(), "ensure kv table") {
		t.Fatalf("expected ddl error, got %v", err)
	}
}

func TestGetWrapsQueryErrors(t *testing.T) {
	conn := withStubDB(t)
	store, err := New(context.Background(), "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	conn.FailQuery = true
	if _, err := store.Get(context.Background(), "k"); err == nil || !strings.Contains(err.Error(), "select k") {
		t.Fatalf("expected wrapped select error, got %v", err)
	}
}
