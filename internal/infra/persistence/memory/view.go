package memory

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListWorkspaces returns all workspaces in insertion order.
func (v transactionView) ListWorkspaces() []Workspace {
	return v.state.workspaces.values(cloneWorkspace)
}

// FindWorkspace retrieves a workspace by id.
func (v transactionView) FindWorkspace(id string) (Workspace, bool) {
	w, ok := v.state.workspaces.get(id)
	if !ok {
		return Workspace{}, false
	}
	return cloneWorkspace(w), true
}

// ListProjects returns all projects with their derived fields filled in.
func (v transactionView) ListProjects() []Project {
	out := make([]Project, 0, v.state.projects.len())
	v.state.projects.each(func(_ string, p Project) bool {
		out = append(out, decorateProject(v.state, p))
		return true
	})
	return out
}

// FindProject retrieves a project by id with its derived fields filled in.
func (v transactionView) FindProject(id string) (Project, bool) {
	p, ok := v.state.projects.get(id)
	if !ok {
		return Project{}, false
	}
	return decorateProject(v.state, p), true
}

// ListEpics returns all epics in insertion order.
func (v transactionView) ListEpics() []Epic { return v.state.epics.values(cloneEpic) }

// FindEpic retrieves an epic by id.
func (v transactionView) FindEpic(id string) (Epic, bool) {
	return v.state.epics.get(id)
}

// ListEpicItems returns all epic items in insertion order.
func (v transactionView) ListEpicItems() []EpicItem {
	return v.state.epicItems.values(cloneEpicItem)
}

// FindEpicItem retrieves an epic item by id.
func (v transactionView) FindEpicItem(id string) (EpicItem, bool) {
	item, ok := v.state.epicItems.get(id)
	if !ok {
		return EpicItem{}, false
	}
	return cloneEpicItem(item), true
}

// ListSprints returns all sprints in insertion order.
func (v transactionView) ListSprints() []Sprint { return v.state.sprints.values(cloneSprint) }

// FindSprint retrieves a sprint by id.
func (v transactionView) FindSprint(id string) (Sprint, bool) {
	s, ok := v.state.sprints.get(id)
	if !ok {
		return Sprint{}, false
	}
	return cloneSprint(s), true
}

// ListTasks returns all tasks in insertion order.
func (v transactionView) ListTasks() []Task { return v.state.tasks.values(cloneTask) }

// FindTask retrieves a task by id.
func (v transactionView) FindTask(id string) (Task, bool) {
	t, ok := v.state.tasks.get(id)
	if !ok {
		return Task{}, false
	}
	return cloneTask(t), true
}

// ListTags returns all tags in insertion order.
func (v transactionView) ListTags() []Tag { return v.state.tags.values(cloneTag) }

// FindTag retrieves a tag by id.
func (v transactionView) FindTag(id string) (Tag, bool) { return v.state.tags.get(id) }

// ListUsers returns all users in insertion order.
func (v transactionView) ListUsers() []User { return v.state.users.values(cloneUser) }

// FindUser retrieves a user by id.
func (v transactionView) FindUser(id string) (User, bool) { return v.state.users.get(id) }

// ListTeams returns all teams in insertion order.
func (v transactionView) ListTeams() []Team { return v.state.teams.values(cloneTeam) }

// FindTeam retrieves a team by id.
func (v transactionView) FindTeam(id string) (Team, bool) {
	t, ok := v.state.teams.get(id)
	if !ok {
		return Team{}, false
	}
	return cloneTeam(t), true
}

// Columns returns the board columns in declaration order.
func (v transactionView) Columns() []Column {
	return append([]Column{}, v.state.columns...)
}

// Session returns the persisted selection state.
func (v transactionView) Session() Session { return v.state.session }
