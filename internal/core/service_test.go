package core

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"kanbancore/pkg/domain"
)

func TestCreatedRecordsRoundTripAndIDsStayUnique(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, p := seedBoard(t, svc)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		task := must(svc.CreateTask(ctx, domain.Task{ProjectID: p.ID, Title: "x", Status: "todo"}))(t)
		got, ok := svc.GetTaskByID(ctx, task.ID)
		if !ok || !reflect.DeepEqual(got, task) {
			t.Fatalf("expected stored task to equal created one:\n%+v\n%+v", got, task)
		}
		seen[task.ID] = true
		mustNoErr(t, svc.DeleteTask(ctx, task.ID))
	}
	next := must(svc.CreateTask(ctx, domain.Task{ProjectID: p.ID, Status: "todo"}))(t)
	if seen[next.ID] {
		t.Fatalf("id %s reused after delete", next.ID)
	}
}

func TestCreateReportsMissingRequiredField(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateTask(ctx, domain.Task{Status: "todo"})
	var ve domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "projectId" || ve.Entity != domain.EntityTask {
		t.Fatalf("expected projectId validation error, got %v", err)
	}
	_, err = svc.CreateProject(ctx, domain.Project{Name: "Alpha", WorkspaceID: "w404"})
	var ie domain.IntegrityError
	if !errors.As(err, &ie) || ie.RefID != "w404" || !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected integrity error naming w404, got %v", err)
	}
	if svc.LastError() == nil {
		t.Fatalf("expected last error recorded")
	}
	must(svc.CreateTag(ctx, domain.Tag{Label: "ok"}))(t)
	if svc.LastError() != nil {
		t.Fatalf("expected last error cleared after success")
	}
}

func TestUpdateTaskMergeLaw(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, p := seedBoard(t, svc)
	tag := must(svc.CreateTag(ctx, domain.Tag{Label: "bug"}))(t)
	before := must(svc.CreateTask(ctx, domain.Task{
		ProjectID: p.ID, Title: "Draft", Description: "notes", Status: "todo", Priority: "high",
	}))(t)

	after := must(svc.UpdateTask(ctx, before.ID, domain.TaskPatch{
		Title: domain.Ptr("Final"),
		Tags:  []string{tag.ID},
	}))(t)

	expected := before
	expected.Title = "Final"
	expected.Tags = []string{tag.ID}
	expected.UpdatedAt = after.UpdatedAt
	if !reflect.DeepEqual(after, expected) {
		t.Fatalf("merge law violated:\nwant %+v\ngot  %+v", expected, after)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("expected updatedAt strictly greater: %v -> %v", before.UpdatedAt, after.UpdatedAt)
	}
	got, _ := svc.GetTaskByID(ctx, before.ID)
	if !reflect.DeepEqual(got, after) {
		t.Fatalf("expected stored task to match update result")
	}
}

func TestUpdateUnknownIDsReturnNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	checks := []struct {
		entity domain.EntityType
		err    error
	}{
		{domain.EntityProject, func() error { _, err := svc.UpdateProject(ctx, "p9", domain.ProjectPatch{}); return err }()},
		{domain.EntityTask, svc.DeleteTask(ctx, "t9")},
		{domain.EntityTag, func() error { _, err := svc.UpdateTag(ctx, "tag9", domain.TagPatch{}); return err }()},
		{domain.EntityUser, svc.DeleteUser(ctx, "u9")},
		{domain.EntityEpicItem, svc.DeleteEpicItem(ctx, "ei9")},
		{domain.EntityWorkspace, svc.DeleteWorkspace(ctx, "w9")},
	}
	for _, c := range checks {
		var nf domain.NotFoundError
		if !errors.As(c.err, &nf) || nf.Entity != c.entity {
			t.Fatalf("expected %s not found, got %v", c.entity, c.err)
		}
	}
}

func TestDeleteProjectCleansWorkspaceAndChildren(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ws, p := seedBoard(t, svc)
	other := must(svc.CreateProject(ctx, domain.Project{Name: "Beta", WorkspaceID: ws.ID}))(t)
	must(svc.CreateSprint(ctx, domain.Sprint{ProjectID: p.ID, StartDate: "2025-01-01", EndDate: "2025-01-02"}))(t)
	task := must(svc.CreateTask(ctx, domain.Task{ProjectID: p.ID, Status: "todo"}))(t)
	keep := must(svc.CreateTask(ctx, domain.Task{ProjectID: other.ID, Status: "todo"}))(t)
	must(svc.SetCurrentProject(ctx, p.ID))(t)
	must(svc.SetCurrentTask(ctx, task.ID))(t)

	mustNoErr(t, svc.DeleteProject(ctx, p.ID))

	got, _ := svc.GetWorkspaceByID(ctx, ws.ID)
	if !equalStrings(got.Projects, []string{other.ID}) {
		t.Fatalf("expected only %s left in workspace, got %v", other.ID, got.Projects)
	}
	if len(svc.SprintsByProject(ctx, p.ID)) != 0 || len(svc.TasksByProject(ctx, p.ID)) != 0 {
		t.Fatalf("expected sprints and tasks cascaded")
	}
	if _, ok := svc.GetTaskByID(ctx, keep.ID); !ok {
		t.Fatalf("expected unrelated task kept")
	}
	sess := svc.Session(ctx)
	if sess.CurrentProject != "" || sess.CurrentTask != "" {
		t.Fatalf("expected selections cleared, got %+v", sess)
	}
}

func TestTeamMembershipIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	u := must(svc.CreateUser(ctx, domain.User{Name: "Ada"}))(t)
	team := must(svc.CreateTeam(ctx, domain.Team{Name: "Core"}))(t)

	once := must(svc.AddUserToTeam(ctx, team.ID, u.ID))(t)
	twice := must(svc.AddUserToTeam(ctx, team.ID, u.ID))(t)
	if !equalStrings(once.Members, twice.Members) || !equalStrings(twice.Members, []string{u.ID}) {
		t.Fatalf("expected single membership, got %v then %v", once.Members, twice.Members)
	}

	removed := must(svc.RemoveUserFromTeam(ctx, team.ID, u.ID))(t)
	if len(removed.Members) != 0 {
		t.Fatalf("expected member removed, got %v", removed.Members)
	}
	if _, err := svc.RemoveUserFromTeam(ctx, team.ID, u.ID); err != nil {
		t.Fatalf("removing an absent member should be a no-op: %v", err)
	}

	if _, err := svc.AddUserToTeam(ctx, "team9", u.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected missing team error, got %v", err)
	}
	if _, err := svc.AddUserToTeam(ctx, team.ID, "u9"); !errors.Is(err, domain.ErrIntegrity) {
		t.Fatalf("expected missing user integrity error, got %v", err)
	}
}

func TestConfigureSprintsReplacesAll(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, p := seedBoard(t, svc)
	old := must(svc.CreateSprint(ctx, domain.Sprint{ProjectID: p.ID, StartDate: "2025-01-01", EndDate: "2025-01-14"}))(t)
	e := must(svc.CreateEpic(ctx, domain.Epic{ProjectID: p.ID, Name: "E"}))(t)
	item := must(svc.CreateEpicItem(ctx, domain.EpicItem{EpicID: e.ID, Title: "I", SprintID: old.ID}))(t)

	milestone := "Beta"
	sprints := must(svc.ConfigureSprints(ctx, p.ID, []domain.SprintPlan{
		{StartDate: "2025-02-01", EndDate: "2025-02-14"},
		{StartDate: "2025-02-15", EndDate: "2025-02-28", Milestone: &milestone},
	}))(t)
	if len(sprints) != 2 || sprints[0].Name != "Sprint 1" || sprints[1].Goal != "Complete sprint 2 objectives" {
		t.Fatalf("unexpected configured sprints %+v", sprints)
	}
	if sprints[1].Milestone == nil || *sprints[1].Milestone != "Beta" {
		t.Fatalf("expected milestone carried over")
	}
	if !equalStrings(sprintIDs(svc.SprintsByProject(ctx, p.ID)), sprintIDs(sprints)) {
		t.Fatalf("expected only configured sprints to remain")
	}
	for _, s := range sprints {
		if s.ID == old.ID || s.Status != domain.SprintPlanned {
			t.Fatalf("expected fresh planned sprint, got %+v", s)
		}
	}
	got, _ := svc.GetEpicItemByID(ctx, item.ID)
	if got.SprintID != old.ID {
		t.Fatalf("expected epic item to keep dangling sprint id")
	}

	_, err := svc.ConfigureSprints(ctx, p.ID, []domain.SprintPlan{{StartDate: "2025-03-10", EndDate: "2025-03-01"}})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for inverted dates, got %v", err)
	}
	if !equalStrings(sprintIDs(svc.SprintsByProject(ctx, p.ID)), sprintIDs(sprints)) {
		t.Fatalf("expected failed configure to leave sprints untouched")
	}
}

func TestToggleFavoriteAndFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, p := seedBoard(t, svc)
	done := must(svc.CreateProject(ctx, domain.Project{Name: "Done", Progress: 100}))(t)
	if done.Progress != 0 {
		t.Fatalf("expected create to ignore caller progress, got %d", done.Progress)
	}
	done = must(svc.UpdateProject(ctx, done.ID, domain.ProjectPatch{Progress: domain.Ptr(100)}))(t)
	fav := must(svc.ToggleFavorite(ctx, p.ID))(t)
	if !fav.IsFavorite {
		t.Fatalf("expected favorite")
	}

	cases := []struct {
		filter ProjectFilter
		want   []string
	}{
		{FilterAll, []string{p.ID, done.ID}},
		{FilterFavorites, []string{p.ID}},
		{FilterActive, []string{p.ID}},
		{FilterCompleted, []string{done.ID}},
	}
	for _, tc := range cases {
		got := ids(svc.ProjectsFiltered(ctx, tc.filter), func(p domain.Project) string { return p.ID })
		if !equalStrings(got, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.filter, tc.want, got)
		}
	}

	must(svc.SetProjectFilter(ctx, FilterCompleted))(t)
	if got := svc.SessionProjects(ctx); len(got) != 1 || got[0].ID != done.ID {
		t.Fatalf("expected session filter applied, got %+v", got)
	}
}

func TestSessionSetters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ws, p := seedBoard(t, svc)
	must(svc.SetCurrentWorkspace(ctx, ws.ID))(t)
	must(svc.SetCurrentProject(ctx, p.ID))(t)
	sess := must(svc.SetView(ctx, domain.ViewList))(t)
	if sess.CurrentWorkspace != ws.ID || sess.CurrentProject != p.ID || sess.View != domain.ViewList {
		t.Fatalf("unexpected session %+v", sess)
	}
	if _, err := svc.SetCurrentUser(ctx, "u42"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}
	sess = must(svc.SetCurrentProject(ctx, ""))(t)
	if sess.CurrentProject != "" {
		t.Fatalf("expected selection cleared")
	}

	created := must(svc.CreateProject(ctx, domain.Project{Name: "Joined"}))(t)
	if created.WorkspaceID != ws.ID {
		t.Fatalf("expected project to join current workspace, got %q", created.WorkspaceID)
	}
}

func TestAddCommentDefaultsAuthorToCurrentUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, p := seedBoard(t, svc)
	u := must(svc.CreateUser(ctx, domain.User{Name: "Ada"}))(t)
	must(svc.SetCurrentUser(ctx, u.ID))(t)
	task := must(svc.CreateTask(ctx, domain.Task{ProjectID: p.ID, Status: "todo"}))(t)

	updated := must(svc.AddComment(ctx, task.ID, domain.Comment{Body: "looks good"}))(t)
	if len(updated.Comments) != 1 {
		t.Fatalf("expected one comment, got %d", len(updated.Comments))
	}
	c := updated.Comments[0]
	if c.ID != "c1" || c.AuthorID != u.ID || !c.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected comment %+v", c)
	}
	if _, err := svc.AddComment(ctx, task.ID, domain.Comment{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected empty body rejected, got %v", err)
	}
}

type recordingScheduler struct{ calls int }

func (r *recordingScheduler) Schedule() { r.calls++ }

func TestCommitNotifiesSchedulerAndSink(t *testing.T) {
	var published [][]domain.Change
	sink := ChangeSinkFunc(func(_ context.Context, changes []domain.Change) error {
		published = append(published, changes)
		return nil
	})
	sched := &recordingScheduler{}
	svc := newTestService(t, WithChangeSink(sink), WithSnapshotScheduler(sched))
	ctx := context.Background()

	must(svc.CreateTag(ctx, domain.Tag{Label: "a"}))(t)
	_, _ = svc.CreateTag(ctx, domain.Tag{})

	if sched.calls != 1 {
		t.Fatalf("expected one snapshot schedule, got %d", sched.calls)
	}
	if len(published) != 1 || published[0][0].Entity != domain.EntityTag || published[0][0].Action != domain.ActionCreate {
		t.Fatalf("unexpected published changes %+v", published)
	}
}

func TestSinkFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	sink := ChangeSinkFunc(func(context.Context, []domain.Change) error { return errors.New("broker down") })
	svc := newTestService(t, WithChangeSink(sink), WithLogger(zap.New(core)))

	if _, err := svc.CreateUser(context.Background(), domain.User{Name: "Ada"}); err != nil {
		t.Fatalf("sink failure leaked into mutation: %v", err)
	}
	entries := logs.FilterMessage("change sink publish failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	if entries[0].ContextMap()["operation"] != "create_user" {
		t.Fatalf("expected operation field, got %v", entries[0].ContextMap())
	}
}

func TestMultiChangeSinkJoinsErrors(t *testing.T) {
	calls := 0
	ok := ChangeSinkFunc(func(context.Context, []domain.Change) error { calls++; return nil })
	bad := ChangeSinkFunc(func(context.Context, []domain.Change) error { calls++; return errors.New("bad") })
	err := MultiChangeSink{ok, nil, bad}.Publish(context.Background(), nil)
	if err == nil || calls != 2 {
		t.Fatalf("expected joined error after both sinks ran, err=%v calls=%d", err, calls)
	}
	if err := NewLogChangeSink(nil).Publish(context.Background(), []domain.Change{{Entity: domain.EntityTag}}); err != nil {
		t.Fatalf("log sink: %v", err)
	}
}

func TestDeferredResolvesInIssueOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	first := Defer(ctx, func(ctx context.Context) (domain.Tag, error) {
		return svc.CreateTag(ctx, domain.Tag{Label: "first"})
	})
	second := Defer(ctx, func(ctx context.Context) (domain.Tag, error) {
		return svc.CreateTag(ctx, domain.Tag{Label: "second"})
	})
	a := must(first.Await(ctx))(t)
	b := must(second.Await(ctx))(t)
	if a.ID != "tag1" || b.ID != "tag2" {
		t.Fatalf("expected issue order ids, got %s %s", a.ID, b.ID)
	}

	failed := DeferErr(ctx, func(ctx context.Context) error { return svc.DeleteTag(ctx, "tag9") })
	select {
	case <-failed.Done():
	default:
		t.Fatalf("expected resolved deferred")
	}
	if _, err := failed.Await(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found through deferred, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := first.Await(cancelled); err != nil {
		t.Fatalf("resolved deferred should not depend on ctx: %v", err)
	}
}
