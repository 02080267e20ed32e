package core

import (
	"slices"
	"strings"
	"time"

	"kanbancore/pkg/domain"
)

// Views are pure functions over a read-only store view. They never fail:
// missing inputs yield empty results, and dangling ids are skipped.

// ProjectFilter names a fixed project list filter.
type ProjectFilter string

// Supported project filters.
const (
	FilterAll       ProjectFilter = "all"
	FilterFavorites ProjectFilter = "favorites"
	FilterActive    ProjectFilter = "active"
	FilterCompleted ProjectFilter = "completed"
)

// Predicate returns the match function for the filter. Unknown filters match
// every project.
func (f ProjectFilter) Predicate() func(domain.Project) bool {
	switch f {
	case FilterFavorites:
		return func(p domain.Project) bool { return p.IsFavorite }
	case FilterActive:
		return func(p domain.Project) bool { return p.Progress < 100 }
	case FilterCompleted:
		return func(p domain.Project) bool { return p.Progress == 100 }
	default:
		return func(domain.Project) bool { return true }
	}
}

// ProjectsMatching returns the projects satisfying match, in insertion order.
func ProjectsMatching(v domain.TransactionView, match func(domain.Project) bool) []domain.Project {
	return filter(v.ListProjects(), match)
}

// ProjectsFiltered applies a named project filter.
func ProjectsFiltered(v domain.TransactionView, f ProjectFilter) []domain.Project {
	return ProjectsMatching(v, f.Predicate())
}

// WorkspaceProjects resolves a workspace's project list in its own order.
func WorkspaceProjects(v domain.TransactionView, workspaceID string) []domain.Project {
	ws, ok := v.FindWorkspace(workspaceID)
	if !ok {
		return []domain.Project{}
	}
	return resolve(ws.Projects, v.FindProject)
}

// EpicsByProject returns the project's epics.
func EpicsByProject(v domain.TransactionView, projectID string) []domain.Epic {
	return filter(v.ListEpics(), func(e domain.Epic) bool { return e.ProjectID == projectID })
}

// EpicItemsByEpic returns the epic's items.
func EpicItemsByEpic(v domain.TransactionView, epicID string) []domain.EpicItem {
	return filter(v.ListEpicItems(), func(item domain.EpicItem) bool { return item.EpicID == epicID })
}

// EpicItemsByEpicAndSprint returns the epic's items placed on the sprint.
func EpicItemsByEpicAndSprint(v domain.TransactionView, epicID, sprintID string) []domain.EpicItem {
	return filter(v.ListEpicItems(), func(item domain.EpicItem) bool {
		return item.EpicID == epicID && item.SprintID == sprintID
	})
}

// EpicItemTasks resolves an epic item's task list, skipping deleted tasks.
func EpicItemTasks(v domain.TransactionView, itemID string) []domain.Task {
	item, ok := v.FindEpicItem(itemID)
	if !ok {
		return []domain.Task{}
	}
	return resolve(item.Tasks, v.FindTask)
}

// SprintsByProject returns the project's sprints.
func SprintsByProject(v domain.TransactionView, projectID string) []domain.Sprint {
	return filter(v.ListSprints(), func(s domain.Sprint) bool { return s.ProjectID == projectID })
}

// sprintWindow parses a sprint's dates; ok is false when either is invalid.
func sprintWindow(s domain.Sprint) (start, end time.Time, ok bool) {
	start, errStart := s.StartDate.Time()
	end, errEnd := s.EndDate.Time()
	return start, end, errStart == nil && errEnd == nil
}

func today(now time.Time) time.Time {
	t, _ := domain.NewDate(now).Time()
	return t
}

// ActiveSprintByProject returns the first sprint, in insertion order, whose
// date range contains the calendar day of now (UTC, both ends inclusive).
// It reads dates only and ignores the sprint status.
func ActiveSprintByProject(v domain.TransactionView, projectID string, now time.Time) (domain.Sprint, bool) {
	day := today(now)
	for _, s := range SprintsByProject(v, projectID) {
		start, end, ok := sprintWindow(s)
		if ok && !start.After(day) && !end.Before(day) {
			return s, true
		}
	}
	return domain.Sprint{}, false
}

// UpcomingSprintsByProject returns sprints starting after today, earliest first.
func UpcomingSprintsByProject(v domain.TransactionView, projectID string, now time.Time) []domain.Sprint {
	day := today(now)
	out := filter(SprintsByProject(v, projectID), func(s domain.Sprint) bool {
		start, _, ok := sprintWindow(s)
		return ok && start.After(day)
	})
	slices.SortStableFunc(out, func(a, b domain.Sprint) int { return a.StartDate.Compare(b.StartDate) })
	return out
}

// CompletedSprintsByProject returns sprints that ended before today, most
// recently ended first.
func CompletedSprintsByProject(v domain.TransactionView, projectID string, now time.Time) []domain.Sprint {
	day := today(now)
	out := filter(SprintsByProject(v, projectID), func(s domain.Sprint) bool {
		_, end, ok := sprintWindow(s)
		return ok && end.Before(day)
	})
	slices.SortStableFunc(out, func(a, b domain.Sprint) int { return b.EndDate.Compare(a.EndDate) })
	return out
}

// TasksByProject returns the project's tasks.
func TasksByProject(v domain.TransactionView, projectID string) []domain.Task {
	return filter(v.ListTasks(), func(t domain.Task) bool { return t.ProjectID == projectID })
}

// TasksMatching returns the project's tasks whose title or description
// contains query, ignoring case. An empty query matches every task.
func TasksMatching(v domain.TransactionView, projectID, query string) []domain.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	return filter(TasksByProject(v, projectID), func(t domain.Task) bool {
		return q == "" ||
			strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q)
	})
}

// Lane is one board column with its tasks.
type Lane struct {
	Column domain.Column `json:"column"`
	Tasks  []domain.Task `json:"tasks"`
}

// TaskBoard groups a project's tasks by column in column declaration order.
// Every column has a lane, even when empty.
type TaskBoard struct {
	Lanes []Lane `json:"lanes"`
}

// Get returns the tasks in the column, or nil for an unknown column.
func (b TaskBoard) Get(columnID string) []domain.Task {
	for _, lane := range b.Lanes {
		if lane.Column.ID == columnID {
			return lane.Tasks
		}
	}
	return nil
}

// ColumnIDs returns the lane keys in order.
func (b TaskBoard) ColumnIDs() []string {
	ids := make([]string, 0, len(b.Lanes))
	for _, lane := range b.Lanes {
		ids = append(ids, lane.Column.ID)
	}
	return ids
}

// TasksByStatus builds the project's task board.
func TasksByStatus(v domain.TransactionView, projectID string) TaskBoard {
	tasks := TasksByProject(v, projectID)
	columns := v.Columns()
	board := TaskBoard{Lanes: make([]Lane, 0, len(columns))}
	for _, col := range columns {
		board.Lanes = append(board.Lanes, Lane{
			Column: col,
			Tasks:  filter(tasks, func(t domain.Task) bool { return t.Status == col.ID }),
		})
	}
	return board
}

// TaskTags resolves a task's tags.
func TaskTags(v domain.TransactionView, taskID string) []domain.Tag {
	task, ok := v.FindTask(taskID)
	if !ok {
		return []domain.Tag{}
	}
	return resolve(task.Tags, v.FindTag)
}

// TeamMembers resolves a team's members, skipping users that no longer exist.
func TeamMembers(v domain.TransactionView, teamID string) []domain.User {
	team, ok := v.FindTeam(teamID)
	if !ok {
		return []domain.User{}
	}
	return resolve(team.Members, v.FindUser)
}

// TeamsByUser returns the teams listing the user.
func TeamsByUser(v domain.TransactionView, userID string) []domain.Team {
	if userID == "" {
		return []domain.Team{}
	}
	return filter(v.ListTeams(), func(t domain.Team) bool { return slices.Contains(t.Members, userID) })
}

// CurrentUser resolves the selected user.
func CurrentUser(v domain.TransactionView) (domain.User, bool) {
	id := v.Session().CurrentUser
	if id == "" {
		return domain.User{}, false
	}
	return v.FindUser(id)
}

// CurrentUserTeams returns the teams of the selected user.
func CurrentUserTeams(v domain.TransactionView) []domain.Team {
	return TeamsByUser(v, v.Session().CurrentUser)
}

func filter[T any](values []T, keep func(T) bool) []T {
	out := make([]T, 0, len(values))
	for _, v := range values {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func resolve[T any](ids []string, find func(string) (T, bool)) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if v, ok := find(id); ok {
			out = append(out, v)
		}
	}
	return out
}
