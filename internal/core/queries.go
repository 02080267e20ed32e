package core

import (
	"context"

	"kanbancore/pkg/domain"
)

// read runs fn against a fresh read-only view. Views never fail, so the store
// error is dropped.
func read[T any](ctx context.Context, s *Service, fn func(v domain.TransactionView) T) T {
	var out T
	_ = s.store.View(ctx, func(v domain.TransactionView) error {
		out = fn(v)
		return nil
	})
	return out
}

// Session returns the persisted selection state.
func (s *Service) Session(ctx context.Context) domain.Session {
	return read(ctx, s, func(v domain.TransactionView) domain.Session { return v.Session() })
}

// Columns returns the board columns.
func (s *Service) Columns(ctx context.Context) []domain.Column {
	return read(ctx, s, func(v domain.TransactionView) []domain.Column { return v.Columns() })
}

// GetWorkspaceByID looks up a workspace.
func (s *Service) GetWorkspaceByID(ctx context.Context, id string) (domain.Workspace, bool) {
	return find(ctx, s, func(v domain.TransactionView) (domain.Workspace, bool) { return v.FindWorkspace(id) })
}

// GetProjectByID looks up a project.
func (s *Service) GetProjectByID(ctx context.Context, id string) (domain.Project, bool) {
	return find(ctx, s, func(v domain.TransactionView) (domain.Project, bool) { return v.FindProject(id) })
}

// GetEpicByID looks up an epic.
func (s *Service) GetEpicByID(ctx context.Context, id string) (domain.Epic, bool) {
	return find(ctx, s, func(v domain.TransactionView) (domain.Epic, bool) { return v.FindEpic(id) })
}

// GetEpicItemByID looks up an epic item.
func (s *Service) GetEpicItemByID(ctx context.Context, id string) (domain.EpicItem, bool) {
	return find(ctx, s, func(v domain.TransactionView) (domain.EpicItem, bool) { return v.FindEpicItem(id) })
}

// GetSprintByID looks up a sprint.
func (s *Service) GetSprintByID(ctx context.Context, id string) (domain.Sprint, bool) {
	return find(ctx, s, func(v domain.TransactionView) (domain.Sprint, bool) { return v.FindSprint(id) })
}

// GetTaskByID looks up a task.
func (s *Service) GetTaskByID(ctx context.Context, id string) (domain.Task, bool) {
	return find(ctx, s, func(v domain.TransactionView) (domain.Task, bool) { return v.FindTask(id) })
}

// GetTagByID looks up a tag.
func (s *Service) GetTagByID(ctx context.Context, id string) (domain.Tag, bool) {
	return find(ctx, s, func(v domain.TransactionView) (domain.Tag, bool) { return v.FindTag(id) })
}

// GetUserByID looks up a user.
func (s *Service) GetUserByID(ctx context.Context, id string) (domain.User, bool) {
	return find(ctx, s, func(v domain.TransactionView) (domain.User, bool) { return v.FindUser(id) })
}

// GetTeamByID looks up a team.
func (s *Service) GetTeamByID(ctx context.Context, id string) (domain.Team, bool) {
	return find(ctx, s, func(v domain.TransactionView) (domain.Team, bool) { return v.FindTeam(id) })
}

type lookup[T any] struct {
	value T
	ok    bool
}

func find[T any](ctx context.Context, s *Service, fn func(v domain.TransactionView) (T, bool)) (T, bool) {
	res := read(ctx, s, func(v domain.TransactionView) lookup[T] {
		value, ok := fn(v)
		return lookup[T]{value: value, ok: ok}
	})
	return res.value, res.ok
}

// ListWorkspaces returns every workspace.
func (s *Service) ListWorkspaces(ctx context.Context) []domain.Workspace {
	return read(ctx, s, func(v domain.TransactionView) []domain.Workspace { return v.ListWorkspaces() })
}

// ListProjects returns every project.
func (s *Service) ListProjects(ctx context.Context) []domain.Project {
	return read(ctx, s, func(v domain.TransactionView) []domain.Project { return v.ListProjects() })
}

// ListTags returns every tag.
func (s *Service) ListTags(ctx context.Context) []domain.Tag {
	return read(ctx, s, func(v domain.TransactionView) []domain.Tag { return v.ListTags() })
}

// ListUsers returns every user.
func (s *Service) ListUsers(ctx context.Context) []domain.User {
	return read(ctx, s, func(v domain.TransactionView) []domain.User { return v.ListUsers() })
}

// ListTeams returns every team.
func (s *Service) ListTeams(ctx context.Context) []domain.Team {
	return read(ctx, s, func(v domain.TransactionView) []domain.Team { return v.ListTeams() })
}

// ProjectsFiltered applies a named project filter.
func (s *Service) ProjectsFiltered(ctx context.Context, f ProjectFilter) []domain.Project {
	return read(ctx, s, func(v domain.TransactionView) []domain.Project { return ProjectsFiltered(v, f) })
}

// SessionProjects applies the project filter stored in the session.
func (s *Service) SessionProjects(ctx context.Context) []domain.Project {
	return read(ctx, s, func(v domain.TransactionView) []domain.Project {
		return ProjectsFiltered(v, ProjectFilter(v.Session().ProjectFilter))
	})
}

// WorkspaceProjects resolves a workspace's projects.
func (s *Service) WorkspaceProjects(ctx context.Context, workspaceID string) []domain.Project {
	return read(ctx, s, func(v domain.TransactionView) []domain.Project { return WorkspaceProjects(v, workspaceID) })
}

// EpicsByProject returns a project's epics.
func (s *Service) EpicsByProject(ctx context.Context, projectID string) []domain.Epic {
	return read(ctx, s, func(v domain.TransactionView) []domain.Epic { return EpicsByProject(v, projectID) })
}

// EpicItemsByEpic returns an epic's items.
func (s *Service) EpicItemsByEpic(ctx context.Context, epicID string) []domain.EpicItem {
	return read(ctx, s, func(v domain.TransactionView) []domain.EpicItem { return EpicItemsByEpic(v, epicID) })
}

// EpicItemsByEpicAndSprint returns an epic's items placed on a sprint.
func (s *Service) EpicItemsByEpicAndSprint(ctx context.Context, epicID, sprintID string) []domain.EpicItem {
	return read(ctx, s, func(v domain.TransactionView) []domain.EpicItem {
		return EpicItemsByEpicAndSprint(v, epicID, sprintID)
	})
}

// EpicItemTasks resolves an epic item's tasks.
func (s *Service) EpicItemTasks(ctx context.Context, itemID string) []domain.Task {
	return read(ctx, s, func(v domain.TransactionView) []domain.Task { return EpicItemTasks(v, itemID) })
}

// SprintsByProject returns a project's sprints.
func (s *Service) SprintsByProject(ctx context.Context, projectID string) []domain.Sprint {
	return read(ctx, s, func(v domain.TransactionView) []domain.Sprint { return SprintsByProject(v, projectID) })
}

// ActiveSprintByProject returns the sprint running today.
func (s *Service) ActiveSprintByProject(ctx context.Context, projectID string) (domain.Sprint, bool) {
	now := s.now()
	return find(ctx, s, func(v domain.TransactionView) (domain.Sprint, bool) {
		return ActiveSprintByProject(v, projectID, now)
	})
}

// UpcomingSprintsByProject returns sprints starting after today.
func (s *Service) UpcomingSprintsByProject(ctx context.Context, projectID string) []domain.Sprint {
	now := s.now()
	return read(ctx, s, func(v domain.TransactionView) []domain.Sprint {
		return UpcomingSprintsByProject(v, projectID, now)
	})
}

// CompletedSprintsByProject returns sprints that ended before today.
func (s *Service) CompletedSprintsByProject(ctx context.Context, projectID string) []domain.Sprint {
	now := s.now()
	return read(ctx, s, func(v domain.TransactionView) []domain.Sprint {
		return CompletedSprintsByProject(v, projectID, now)
	})
}

// TasksByProject returns a project's tasks.
func (s *Service) TasksByProject(ctx context.Context, projectID string) []domain.Task {
	return read(ctx, s, func(v domain.TransactionView) []domain.Task { return TasksByProject(v, projectID) })
}

// SessionTasks applies the task filter stored in the session to a project.
func (s *Service) SessionTasks(ctx context.Context, projectID string) []domain.Task {
	return read(ctx, s, func(v domain.TransactionView) []domain.Task {
		return TasksMatching(v, projectID, v.Session().TaskFilter)
	})
}

// TasksByStatus returns a project's task board.
func (s *Service) TasksByStatus(ctx context.Context, projectID string) TaskBoard {
	return read(ctx, s, func(v domain.TransactionView) TaskBoard { return TasksByStatus(v, projectID) })
}

// TaskTags resolves a task's tags.
func (s *Service) TaskTags(ctx context.Context, taskID string) []domain.Tag {
	return read(ctx, s, func(v domain.TransactionView) []domain.Tag { return TaskTags(v, taskID) })
}

// TeamMembers resolves a team's members.
func (s *Service) TeamMembers(ctx context.Context, teamID string) []domain.User {
	return read(ctx, s, func(v domain.TransactionView) []domain.User { return TeamMembers(v, teamID) })
}

// TeamsByUser returns the teams listing a user.
func (s *Service) TeamsByUser(ctx context.Context, userID string) []domain.Team {
	return read(ctx, s, func(v domain.TransactionView) []domain.Team { return TeamsByUser(v, userID) })
}

// CurrentUser resolves the selected user.
func (s *Service) CurrentUser(ctx context.Context) (domain.User, bool) {
	return find(ctx, s, CurrentUser)
}

// CurrentUserTeams returns the selected user's teams.
func (s *Service) CurrentUserTeams(ctx context.Context) []domain.Team {
	return read(ctx, s, CurrentUserTeams)
}
