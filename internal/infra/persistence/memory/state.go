package memory

import "kanbancore/pkg/domain"

type (
	// Workspace aliases domain.Workspace for in-memory persistence operations.
	Workspace = domain.Workspace
	// Project aliases domain.Project.
	Project = domain.Project
	// Epic aliases domain.Epic.
	Epic = domain.Epic
	// EpicItem aliases domain.EpicItem.
	EpicItem = domain.EpicItem
	// Sprint aliases domain.Sprint.
	Sprint = domain.Sprint
	// Task aliases domain.Task.
	Task = domain.Task
	// Comment aliases domain.Comment.
	Comment = domain.Comment
	// Tag aliases domain.Tag.
	Tag = domain.Tag
	// User aliases domain.User.
	User = domain.User
	// Team aliases domain.Team.
	Team = domain.Team
	// Column aliases domain.Column.
	Column = domain.Column
	// Session aliases domain.Session.
	Session = domain.Session
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result returned from committed transactions.
	Result = domain.Result
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

type memoryState struct {
	workspaces collection[Workspace]
	projects   collection[Project]
	epics      collection[Epic]
	epicItems  collection[EpicItem]
	sprints    collection[Sprint]
	tasks      collection[Task]
	tags       collection[Tag]
	users      collection[User]
	teams      collection[Team]
	columns    []Column
	session    Session
	counters   map[domain.EntityType]uint64
}

func newMemoryState() memoryState {
	return memoryState{
		workspaces: newCollection[Workspace](),
		projects:   newCollection[Project](),
		epics:      newCollection[Epic](),
		epicItems:  newCollection[EpicItem](),
		sprints:    newCollection[Sprint](),
		tasks:      newCollection[Task](),
		tags:       newCollection[Tag](),
		users:      newCollection[User](),
		teams:      newCollection[Team](),
		columns:    domain.DefaultColumns(),
		session:    Session{View: domain.ViewGrid},
		counters:   make(map[domain.EntityType]uint64),
	}
}

func (s memoryState) clone() memoryState {
	counters := make(map[domain.EntityType]uint64, len(s.counters))
	for k, v := range s.counters {
		counters[k] = v
	}
	return memoryState{
		workspaces: s.workspaces.clone(cloneWorkspace),
		projects:   s.projects.clone(cloneProject),
		epics:      s.epics.clone(cloneEpic),
		epicItems:  s.epicItems.clone(cloneEpicItem),
		sprints:    s.sprints.clone(cloneSprint),
		tasks:      s.tasks.clone(cloneTask),
		tags:       s.tags.clone(cloneTag),
		users:      s.users.clone(cloneUser),
		teams:      s.teams.clone(cloneTeam),
		columns:    append([]Column(nil), s.columns...),
		session:    s.session,
		counters:   counters,
	}
}

func (s *memoryState) hasColumn(id string) bool {
	for _, c := range s.columns {
		if c.ID == id {
			return true
		}
	}
	return false
}

// workspaceOf returns the workspace listing the project, or "".
func (s *memoryState) workspaceOf(projectID string) string {
	owner := ""
	s.workspaces.each(func(id string, w Workspace) bool {
		if containsString(w.Projects, projectID) {
			owner = id
			return false
		}
		return true
	})
	return owner
}

func decorateProject(state *memoryState, p Project) Project {
	p.WorkspaceID = state.workspaceOf(p.ID)
	p.TaskCount = len(state.tasks.ids(func(t Task) bool { return t.ProjectID == p.ID }))
	p.SprintCount = len(state.sprints.ids(func(s Sprint) bool { return s.ProjectID == p.ID }))
	return p
}

// stripProject clears the fields derived at read time before storage.
func stripProject(p Project) Project {
	p.WorkspaceID = ""
	p.TaskCount = 0
	p.SprintCount = 0
	return p
}

func cloneWorkspace(w Workspace) Workspace {
	w.Projects = cloneStrings(w.Projects)
	return w
}

func cloneProject(p Project) Project { return p }
func cloneEpic(e Epic) Epic          { return e }

func cloneEpicItem(item EpicItem) EpicItem {
	item.Tasks = cloneStrings(item.Tasks)
	return item
}

func cloneSprint(s Sprint) Sprint {
	if s.Milestone != nil {
		m := *s.Milestone
		s.Milestone = &m
	}
	if s.StartedAt != nil {
		t := *s.StartedAt
		s.StartedAt = &t
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		s.CompletedAt = &t
	}
	return s
}

func cloneTask(t Task) Task {
	t.Tags = cloneStrings(t.Tags)
	t.Comments = append(make([]Comment, 0, len(t.Comments)), t.Comments...)
	return t
}

func cloneTag(t Tag) Tag    { return t }
func cloneUser(u User) User { return u }

func cloneTeam(t Team) Team {
	t.Members = cloneStrings(t.Members)
	return t
}

// cloneStrings copies values, never returning nil so lists encode as [].
func cloneStrings(values []string) []string {
	return append(make([]string, 0, len(values)), values...)
}

func containsString(values []string, id string) bool {
	for _, existing := range values {
		if existing == id {
			return true
		}
	}
	return false
}

func removeString(values []string, id string) ([]string, bool) {
	out := make([]string, 0, len(values))
	removed := false
	for _, v := range values {
		if v == id {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out, removed
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func filterIDs(values []string, exists func(string) bool) ([]string, bool) {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	changed := false
	for _, v := range values {
		if _, ok := seen[v]; ok {
			changed = true
			continue
		}
		seen[v] = struct{}{}
		if !exists(v) {
			changed = true
			continue
		}
		out = append(out, v)
	}
	return out, changed
}
