package memory

import "kanbancore/pkg/domain"

// SnapshotVersion is the format version written by ExportState.
const SnapshotVersion = 1

// Snapshot captures a point-in-time clone of the store state. Collections are
// ordered arrays so insertion order survives a round trip.
type Snapshot struct {
	Version    int               `json:"version"`
	Workspaces []Workspace       `json:"workspaces"`
	Projects   []Project         `json:"projects"`
	Epics      []Epic            `json:"epics"`
	EpicItems  []EpicItem        `json:"epicItems"`
	Sprints    []Sprint          `json:"sprints"`
	Tasks      []Task            `json:"tasks"`
	Tags       []Tag             `json:"tags"`
	Users      []User            `json:"users"`
	Teams      []Team            `json:"teams"`
	Columns    []Column          `json:"columns"`
	Session    Session           `json:"session"`
	Counters   map[string]uint64 `json:"counters"`
}

// SnapshotFromDataset converts a bootstrap dataset into an importable
// snapshot. The first user becomes the current user.
func SnapshotFromDataset(ds domain.Dataset) Snapshot {
	s := Snapshot{
		Version:    SnapshotVersion,
		Workspaces: ds.Workspaces,
		Projects:   ds.Projects,
		Epics:      ds.Epics,
		EpicItems:  ds.EpicItems,
		Sprints:    ds.Sprints,
		Tasks:      ds.Tasks,
		Tags:       ds.Tags,
		Users:      ds.Users,
		Teams:      ds.Teams,
		Columns:    ds.Columns,
		Session:    Session{View: domain.ViewGrid},
	}
	if len(ds.Users) > 0 {
		s.Session.CurrentUser = ds.Users[0].ID
	}
	return s
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	counters := make(map[string]uint64, len(state.counters))
	for k, v := range state.counters {
		counters[string(k)] = v
	}
	return Snapshot{
		Version:    SnapshotVersion,
		Workspaces: state.workspaces.values(cloneWorkspace),
		Projects:   state.projects.values(cloneProject),
		Epics:      state.epics.values(cloneEpic),
		EpicItems:  state.epicItems.values(cloneEpicItem),
		Sprints:    state.sprints.values(cloneSprint),
		Tasks:      state.tasks.values(cloneTask),
		Tags:       state.tags.values(cloneTag),
		Users:      state.users.values(cloneUser),
		Teams:      state.teams.values(cloneTeam),
		Columns:    append([]Column{}, state.columns...),
		Session:    state.session,
		Counters:   counters,
	}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for _, w := range s.Workspaces {
		state.workspaces.put(w.ID, cloneWorkspace(w))
	}
	for _, p := range s.Projects {
		state.projects.put(p.ID, stripProject(p))
	}
	for _, e := range s.Epics {
		state.epics.put(e.ID, cloneEpic(e))
	}
	for _, item := range s.EpicItems {
		state.epicItems.put(item.ID, cloneEpicItem(item))
	}
	for _, sp := range s.Sprints {
		state.sprints.put(sp.ID, cloneSprint(sp))
	}
	for _, t := range s.Tasks {
		state.tasks.put(t.ID, cloneTask(t))
	}
	for _, t := range s.Tags {
		state.tags.put(t.ID, cloneTag(t))
	}
	for _, u := range s.Users {
		state.users.put(u.ID, cloneUser(u))
	}
	for _, t := range s.Teams {
		state.teams.put(t.ID, cloneTeam(t))
	}
	state.columns = append([]Column{}, s.Columns...)
	state.session = s.Session
	for k, v := range s.Counters {
		state.counters[domain.EntityType(k)] = v
	}
	return state
}

// migrateSnapshot normalises a decoded snapshot: blank ids are dropped,
// defaults are filled, strong references that no longer resolve are removed,
// and weak references (epic item sprints and tasks, team members) are kept.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if len(snapshot.Columns) == 0 {
		snapshot.Columns = domain.DefaultColumns()
	}
	if snapshot.Counters == nil {
		snapshot.Counters = map[string]uint64{}
	}

	projects := make(map[string]bool, len(snapshot.Projects))
	snapshot.Projects = keepWithID(snapshot.Projects, func(p Project) string { return p.ID })
	for _, p := range snapshot.Projects {
		projects[p.ID] = true
	}

	owned := make(map[string]bool)
	snapshot.Workspaces = keepWithID(snapshot.Workspaces, func(w Workspace) string { return w.ID })
	for i, w := range snapshot.Workspaces {
		ids, _ := filterIDs(w.Projects, func(id string) bool { return projects[id] && !owned[id] })
		for _, id := range ids {
			owned[id] = true
		}
		snapshot.Workspaces[i].Projects = ids
	}

	snapshot.Epics = keepWithID(snapshot.Epics, func(e Epic) string { return e.ID })
	snapshot.Epics = keepIf(snapshot.Epics, func(e Epic) bool { return projects[e.ProjectID] })
	epics := make(map[string]bool, len(snapshot.Epics))
	for _, e := range snapshot.Epics {
		epics[e.ID] = true
	}

	snapshot.EpicItems = keepWithID(snapshot.EpicItems, func(item EpicItem) string { return item.ID })
	snapshot.EpicItems = keepIf(snapshot.EpicItems, func(item EpicItem) bool { return epics[item.EpicID] })
	for i := range snapshot.EpicItems {
		item := &snapshot.EpicItems[i]
		item.Tasks = dedupeStrings(item.Tasks)
		if item.SprintSpan < 1 {
			item.SprintSpan = 1
		}
		if item.Status == "" {
			item.Status = domain.EpicItemTodo
		}
	}

	snapshot.Sprints = keepWithID(snapshot.Sprints, func(s Sprint) string { return s.ID })
	snapshot.Sprints = keepIf(snapshot.Sprints, func(s Sprint) bool { return projects[s.ProjectID] })
	for i := range snapshot.Sprints {
		if snapshot.Sprints[i].Status == "" {
			snapshot.Sprints[i].Status = domain.SprintPlanned
		}
	}

	tags := make(map[string]bool, len(snapshot.Tags))
	snapshot.Tags = keepWithID(snapshot.Tags, func(t Tag) string { return t.ID })
	for _, t := range snapshot.Tags {
		tags[t.ID] = true
	}

	snapshot.Tasks = keepWithID(snapshot.Tasks, func(t Task) string { return t.ID })
	snapshot.Tasks = keepIf(snapshot.Tasks, func(t Task) bool { return projects[t.ProjectID] })
	for i := range snapshot.Tasks {
		task := &snapshot.Tasks[i]
		task.Tags, _ = filterIDs(task.Tags, func(id string) bool { return tags[id] })
		if task.Comments == nil {
			task.Comments = []Comment{}
		}
		if task.UpdatedAt.Before(task.CreatedAt) {
			task.UpdatedAt = task.CreatedAt
		}
	}

	snapshot.Users = keepWithID(snapshot.Users, func(u User) string { return u.ID })
	snapshot.Teams = keepWithID(snapshot.Teams, func(t Team) string { return t.ID })
	for i := range snapshot.Teams {
		snapshot.Teams[i].Members = dedupeStrings(snapshot.Teams[i].Members)
	}
	for i := range snapshot.Workspaces {
		if snapshot.Workspaces[i].Projects == nil {
			snapshot.Workspaces[i].Projects = []string{}
		}
	}
	return snapshot
}

// keepWithID drops records with blank or repeated ids, keeping the first.
func keepWithID[T any](values []T, idOf func(T) string) []T {
	seen := make(map[string]struct{}, len(values))
	return keepIf(values, func(v T) bool {
		id := idOf(v)
		if id == "" {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
		return true
	})
}

func keepIf[T any](values []T, keep func(T) bool) []T {
	out := make([]T, 0, len(values))
	for _, v := range values {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// sanitizeSession clears selections that no longer resolve.
func sanitizeSession(state *memoryState) {
	sess := &state.session
	if sess.CurrentWorkspace != "" && !state.workspaces.has(sess.CurrentWorkspace) {
		sess.CurrentWorkspace = ""
	}
	if sess.CurrentProject != "" && !state.projects.has(sess.CurrentProject) {
		sess.CurrentProject = ""
	}
	if sess.CurrentTask != "" && !state.tasks.has(sess.CurrentTask) {
		sess.CurrentTask = ""
	}
	if sess.CurrentUser != "" && !state.users.has(sess.CurrentUser) {
		sess.CurrentUser = ""
	}
	if sess.View != domain.ViewGrid && sess.View != domain.ViewList {
		sess.View = domain.ViewGrid
	}
}
