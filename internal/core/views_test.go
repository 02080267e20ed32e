package core

import (
	"context"
	"testing"
	"time"

	"kanbancore/pkg/domain"
)

func TestActiveSprintBoundsAreInclusive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, p := seedBoard(t, svc)
	// testNow is 2025-01-07.
	endsToday := must(svc.CreateSprint(ctx, domain.Sprint{ProjectID: p.ID, StartDate: "2024-12-25", EndDate: "2025-01-07"}))(t)
	must(svc.CreateSprint(ctx, domain.Sprint{ProjectID: p.ID, StartDate: "2025-01-07", EndDate: "2025-01-20"}))(t)

	active, ok := svc.ActiveSprintByProject(ctx, p.ID)
	if !ok || active.ID != endsToday.ID {
		t.Fatalf("expected earliest inserted overlapping sprint %s, got %+v ok=%v", endsToday.ID, active, ok)
	}

	// Late in the UTC day still counts as the same calendar day.
	store := svc.Store()
	late := NewService(store, WithClock(func() time.Time { return time.Date(2025, 1, 7, 23, 59, 59, 0, time.UTC) }))
	if got, ok := late.ActiveSprintByProject(ctx, p.ID); !ok || got.ID != endsToday.ID {
		t.Fatalf("expected end day inclusive, got %+v", got)
	}
	next := NewService(store, WithClock(func() time.Time { return time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC) }))
	if _, ok := next.ActiveSprintByProject(ctx, p.ID); ok {
		t.Fatalf("expected no active sprint after both end")
	}
}

func TestActiveSprintIgnoresStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, p := seedBoard(t, svc)
	sp := must(svc.CreateSprint(ctx, domain.Sprint{ProjectID: p.ID, StartDate: "2025-01-01", EndDate: "2025-01-14"}))(t)
	must(svc.CompleteSprint(ctx, sp.ID))(t)
	if got, ok := svc.ActiveSprintByProject(ctx, p.ID); !ok || got.ID != sp.ID {
		t.Fatalf("expected date-based activity regardless of status")
	}
}

func TestUpcomingAndCompletedSprintOrdering(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, p := seedBoard(t, svc)
	create := func(start, end string) domain.Sprint {
		return must(svc.CreateSprint(ctx, domain.Sprint{ProjectID: p.ID, StartDate: domain.Date(start), EndDate: domain.Date(end)}))(t)
	}
	later := create("2025-03-01", "2025-03-14")
	sooner := create("2025-01-08", "2025-01-21")
	older := create("2024-11-01", "2024-11-14")
	recent := create("2024-12-01", "2025-01-06")
	create("2025-01-01", "2025-01-10")

	up := sprintIDs(svc.UpcomingSprintsByProject(ctx, p.ID))
	if !equalStrings(up, []string{sooner.ID, later.ID}) {
		t.Fatalf("expected upcoming by start ascending, got %v", up)
	}
	done := sprintIDs(svc.CompletedSprintsByProject(ctx, p.ID))
	if !equalStrings(done, []string{recent.ID, older.ID}) {
		t.Fatalf("expected completed by end descending, got %v", done)
	}
}

func TestTaskBoardHasLaneForEveryColumn(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, p := seedBoard(t, svc)
	a := must(svc.CreateTask(ctx, domain.Task{ProjectID: p.ID, Title: "a", Status: "review"}))(t)
	b := must(svc.CreateTask(ctx, domain.Task{ProjectID: p.ID, Title: "b", Status: "review"}))(t)

	board := svc.TasksByStatus(ctx, p.ID)
	if !equalStrings(board.ColumnIDs(), []string{"todo", "inprogress", "review", "done"}) {
		t.Fatalf("unexpected lanes %v", board.ColumnIDs())
	}
	if got := board.Get("todo"); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil todo lane, got %v", got)
	}
	if !equalStrings(taskIDs(board.Get("review")), []string{a.ID, b.ID}) {
		t.Fatalf("expected insertion order in lane, got %v", taskIDs(board.Get("review")))
	}
	if board.Get("archive") != nil {
		t.Fatalf("expected nil for unknown column")
	}
}

func TestTaskFilterMatchesTitleOrDescription(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, p := seedBoard(t, svc)
	login := must(svc.CreateTask(ctx, domain.Task{ProjectID: p.ID, Title: "Fix LOGIN", Status: "todo"}))(t)
	docs := must(svc.CreateTask(ctx, domain.Task{ProjectID: p.ID, Title: "Docs", Description: "explain login flow", Status: "todo"}))(t)
	must(svc.CreateTask(ctx, domain.Task{ProjectID: p.ID, Title: "Other", Status: "todo"}))(t)

	must(svc.SetTaskFilter(ctx, "login"))(t)
	if got := taskIDs(svc.SessionTasks(ctx, p.ID)); !equalStrings(got, []string{login.ID, docs.ID}) {
		t.Fatalf("unexpected filtered tasks %v", got)
	}
	must(svc.SetTaskFilter(ctx, ""))(t)
	if got := svc.SessionTasks(ctx, p.ID); len(got) != 3 {
		t.Fatalf("expected empty filter to match all, got %d", len(got))
	}
}

func TestEpicItemViews(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, p := seedBoard(t, svc)
	sp := must(svc.CreateSprint(ctx, domain.Sprint{ProjectID: p.ID, StartDate: "2025-01-01", EndDate: "2025-01-14"}))(t)
	e := must(svc.CreateEpic(ctx, domain.Epic{ProjectID: p.ID, Name: "Billing"}))(t)
	inSprint := must(svc.CreateEpicItem(ctx, domain.EpicItem{EpicID: e.ID, Title: "Invoices", SprintID: sp.ID}))(t)
	must(svc.CreateEpicItem(ctx, domain.EpicItem{EpicID: e.ID, Title: "Refunds"}))(t)
	task := must(svc.CreateTask(ctx, domain.Task{ProjectID: p.ID, Status: "todo"}))(t)
	must(svc.UpdateEpicItem(ctx, inSprint.ID, domain.EpicItemPatch{Tasks: []string{task.ID, "t404"}}))(t)

	if got := svc.EpicsByProject(ctx, p.ID); len(got) != 1 || got[0].ID != e.ID {
		t.Fatalf("unexpected epics %+v", got)
	}
	if got := svc.EpicItemsByEpic(ctx, e.ID); len(got) != 2 {
		t.Fatalf("expected two items, got %d", len(got))
	}
	if got := svc.EpicItemsByEpicAndSprint(ctx, e.ID, sp.ID); len(got) != 1 || got[0].ID != inSprint.ID {
		t.Fatalf("unexpected sprint items %+v", got)
	}
	if got := taskIDs(svc.EpicItemTasks(ctx, inSprint.ID)); !equalStrings(got, []string{task.ID}) {
		t.Fatalf("expected dangling task ids skipped, got %v", got)
	}
}

func TestTeamViewsSkipDanglingMembers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ada := must(svc.CreateUser(ctx, domain.User{Name: "Ada"}))(t)
	bob := must(svc.CreateUser(ctx, domain.User{Name: "Bob"}))(t)
	core := must(svc.CreateTeam(ctx, domain.Team{Name: "Core", Members: []string{ada.ID, bob.ID}}))(t)
	ops := must(svc.CreateTeam(ctx, domain.Team{Name: "Ops", Members: []string{bob.ID}}))(t)

	mustNoErr(t, svc.DeleteUser(ctx, ada.ID))
	members := ids(svc.TeamMembers(ctx, core.ID), func(u domain.User) string { return u.ID })
	if !equalStrings(members, []string{bob.ID}) {
		t.Fatalf("expected dangling member skipped, got %v", members)
	}
	got, _ := svc.GetTeamByID(ctx, core.ID)
	if !equalStrings(got.Members, []string{ada.ID, bob.ID}) {
		t.Fatalf("expected stored members untouched, got %v", got.Members)
	}

	if teams := svc.CurrentUserTeams(ctx); len(teams) != 0 {
		t.Fatalf("expected no teams without a current user")
	}
	must(svc.SetCurrentUser(ctx, bob.ID))(t)
	teamIDs := ids(svc.CurrentUserTeams(ctx), func(t domain.Team) string { return t.ID })
	if !equalStrings(teamIDs, []string{core.ID, ops.ID}) {
		t.Fatalf("unexpected teams %v", teamIDs)
	}
	if u, ok := svc.CurrentUser(ctx); !ok || u.ID != bob.ID {
		t.Fatalf("expected current user %s", bob.ID)
	}
}

func TestTaskTagsResolveInOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, p := seedBoard(t, svc)
	bug := must(svc.CreateTag(ctx, domain.Tag{Label: "bug"}))(t)
	ui := must(svc.CreateTag(ctx, domain.Tag{Label: "ui"}))(t)
	task := must(svc.CreateTask(ctx, domain.Task{ProjectID: p.ID, Status: "todo", Tags: []string{ui.ID, bug.ID}}))(t)

	got := ids(svc.TaskTags(ctx, task.ID), func(t domain.Tag) string { return t.ID })
	if !equalStrings(got, []string{ui.ID, bug.ID}) {
		t.Fatalf("unexpected tags %v", got)
	}
	if len(svc.TaskTags(ctx, "t404")) != 0 {
		t.Fatalf("expected no tags for unknown task")
	}
}
