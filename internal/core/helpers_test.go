package core

import (
	"context"
	"testing"
	"time"

	"kanbancore/internal/infra/persistence/memory"
	"kanbancore/pkg/domain"
)

var testNow = time.Date(2025, 1, 7, 15, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	store := memory.NewStore(memory.WithClock(func() time.Time { return testNow }))
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewService(store, opts...)
}

// must is called as must(svc.Op(...))(t) so a (value, error) pair can be
// checked inline.
func must[T any](v T, err error) func(*testing.T) T {
	return func(t *testing.T) T {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return v
	}
}

// ChangeSinkFunc adapts a function to ChangeSink.
type ChangeSinkFunc func(ctx context.Context, changes []domain.Change) error

func (f ChangeSinkFunc) Publish(ctx context.Context, changes []domain.Change) error {
	return f(ctx, changes)
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// seedBoard creates workspace w1 with project p1.
func seedBoard(t *testing.T, svc *Service) (domain.Workspace, domain.Project) {
	t.Helper()
	ctx := context.Background()
	ws := must(svc.CreateWorkspace(ctx, domain.Workspace{Name: "Engineering"}))(t)
	p := must(svc.CreateProject(ctx, domain.Project{Name: "Alpha", WorkspaceID: ws.ID}))(t)
	return ws, p
}

func ids[T any](values []T, idOf func(T) string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, idOf(v))
	}
	return out
}

func sprintIDs(values []domain.Sprint) []string {
	return ids(values, func(s domain.Sprint) string { return s.ID })
}

func taskIDs(values []domain.Task) []string {
	return ids(values, func(t domain.Task) string { return t.ID })
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
