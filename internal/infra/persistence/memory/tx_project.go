package memory

import "kanbancore/pkg/domain"

// CreateProject stores a project and lists it in its workspace. Without an
// explicit workspace the project joins the currently selected one, if any.
// Progress and favorite always start cleared; only updates change them.
func (tx *transaction) CreateProject(p Project) (Project, error) {
	p.ID = ""
	p.Progress = 0
	p.IsFavorite = false
	if err := domain.Validate(domain.EntityProject, "", p); err != nil {
		return Project{}, err
	}
	workspaceID := p.WorkspaceID
	if workspaceID == "" {
		if current := tx.state.session.CurrentWorkspace; tx.state.workspaces.has(current) {
			workspaceID = current
		}
	}
	if workspaceID != "" && !tx.state.workspaces.has(workspaceID) {
		return Project{}, missingRef(domain.EntityProject, "", domain.EntityWorkspace, workspaceID)
	}
	p.ID = tx.state.allocate(domain.EntityProject)
	p.LastUpdated = tx.now
	tx.state.projects.put(p.ID, stripProject(p))
	if workspaceID != "" {
		if err := tx.attachProject(workspaceID, p.ID); err != nil {
			return Project{}, err
		}
	}
	created := decorateProject(&tx.state, p)
	if err := tx.record(domain.EntityProject, domain.ActionCreate, p.ID, nil, created); err != nil {
		return Project{}, err
	}
	return created, nil
}

// UpdateProject mutates an existing project. A changed WorkspaceID moves the
// project between workspace lists; an empty one detaches it.
func (tx *transaction) UpdateProject(id string, mutator func(*Project) error) (Project, error) {
	stored, ok := tx.state.projects.get(id)
	if !ok {
		return Project{}, notFound(domain.EntityProject, id)
	}
	before := decorateProject(&tx.state, stored)
	current := before
	if err := mutator(&current); err != nil {
		return Project{}, err
	}
	current.ID = id
	if err := domain.Validate(domain.EntityProject, id, current); err != nil {
		return Project{}, err
	}
	if current.WorkspaceID != before.WorkspaceID {
		if current.WorkspaceID != "" && !tx.state.workspaces.has(current.WorkspaceID) {
			return Project{}, missingRef(domain.EntityProject, id, domain.EntityWorkspace, current.WorkspaceID)
		}
		if err := tx.detachProject(id); err != nil {
			return Project{}, err
		}
		if current.WorkspaceID != "" {
			if err := tx.attachProject(current.WorkspaceID, id); err != nil {
				return Project{}, err
			}
		}
	}
	current.LastUpdated = tx.now
	tx.state.projects.put(id, stripProject(current))
	after := decorateProject(&tx.state, current)
	if err := tx.record(domain.EntityProject, domain.ActionUpdate, id, before, after); err != nil {
		return Project{}, err
	}
	return after, nil
}

// DeleteProject removes a project together with its epics, epic items,
// sprints, and tasks, and drops it from its workspace list.
func (tx *transaction) DeleteProject(id string) error {
	stored, ok := tx.state.projects.get(id)
	if !ok {
		return notFound(domain.EntityProject, id)
	}
	before := decorateProject(&tx.state, stored)
	if err := tx.detachProject(id); err != nil {
		return err
	}
	for _, epicID := range tx.state.epics.ids(func(e Epic) bool { return e.ProjectID == id }) {
		if err := tx.DeleteEpic(epicID); err != nil {
			return err
		}
	}
	for _, sprintID := range tx.state.sprints.ids(func(s Sprint) bool { return s.ProjectID == id }) {
		if err := tx.DeleteSprint(sprintID); err != nil {
			return err
		}
	}
	for _, taskID := range tx.state.tasks.ids(func(t Task) bool { return t.ProjectID == id }) {
		if err := tx.DeleteTask(taskID); err != nil {
			return err
		}
	}
	tx.state.projects.remove(id)
	if tx.state.session.CurrentProject == id {
		tx.state.session.CurrentProject = ""
	}
	return tx.record(domain.EntityProject, domain.ActionDelete, id, before, nil)
}
