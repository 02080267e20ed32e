package memory

import (
	"fmt"

	"kanbancore/pkg/domain"
)

// checkWorkspaceProjects enforces that every listed project exists and is not
// already listed by another workspace.
func (tx *transaction) checkWorkspaceProjects(w Workspace) error {
	for _, projectID := range w.Projects {
		if !tx.state.projects.has(projectID) {
			return missingRef(domain.EntityWorkspace, w.ID, domain.EntityProject, projectID)
		}
		if owner := tx.state.workspaceOf(projectID); owner != "" && owner != w.ID {
			return domain.IntegrityError{
				Entity: domain.EntityWorkspace,
				ID:     w.ID,
				Ref:    domain.EntityProject,
				RefID:  projectID,
				Reason: fmt.Sprintf("already belongs to workspace %q", owner),
			}
		}
	}
	return nil
}

// CreateWorkspace stores a workspace record.
func (tx *transaction) CreateWorkspace(w Workspace) (Workspace, error) {
	w.ID = ""
	w.Projects = dedupeStrings(w.Projects)
	if err := domain.Validate(domain.EntityWorkspace, "", w); err != nil {
		return Workspace{}, err
	}
	w.ID = tx.state.allocate(domain.EntityWorkspace)
	if err := tx.checkWorkspaceProjects(w); err != nil {
		return Workspace{}, err
	}
	tx.state.workspaces.put(w.ID, cloneWorkspace(w))
	if err := tx.record(domain.EntityWorkspace, domain.ActionCreate, w.ID, nil, w); err != nil {
		return Workspace{}, err
	}
	return cloneWorkspace(w), nil
}

// UpdateWorkspace mutates an existing workspace record.
func (tx *transaction) UpdateWorkspace(id string, mutator func(*Workspace) error) (Workspace, error) {
	current, ok := tx.state.workspaces.get(id)
	if !ok {
		return Workspace{}, notFound(domain.EntityWorkspace, id)
	}
	before := cloneWorkspace(current)
	current = cloneWorkspace(current)
	if err := mutator(&current); err != nil {
		return Workspace{}, err
	}
	current.ID = id
	current.Projects = dedupeStrings(current.Projects)
	if err := domain.Validate(domain.EntityWorkspace, id, current); err != nil {
		return Workspace{}, err
	}
	if err := tx.checkWorkspaceProjects(current); err != nil {
		return Workspace{}, err
	}
	tx.state.workspaces.put(id, cloneWorkspace(current))
	if err := tx.record(domain.EntityWorkspace, domain.ActionUpdate, id, before, current); err != nil {
		return Workspace{}, err
	}
	return cloneWorkspace(current), nil
}

// DeleteWorkspace removes a workspace. Its projects stay, unassigned.
func (tx *transaction) DeleteWorkspace(id string) error {
	current, ok := tx.state.workspaces.get(id)
	if !ok {
		return notFound(domain.EntityWorkspace, id)
	}
	tx.state.workspaces.remove(id)
	if tx.state.session.CurrentWorkspace == id {
		tx.state.session.CurrentWorkspace = ""
	}
	return tx.record(domain.EntityWorkspace, domain.ActionDelete, id, current, nil)
}

// detachProject removes the project from whichever workspace lists it.
func (tx *transaction) detachProject(projectID string) error {
	ownerID := tx.state.workspaceOf(projectID)
	if ownerID == "" {
		return nil
	}
	owner, _ := tx.state.workspaces.get(ownerID)
	before := cloneWorkspace(owner)
	owner.Projects, _ = removeString(owner.Projects, projectID)
	tx.state.workspaces.put(ownerID, owner)
	return tx.record(domain.EntityWorkspace, domain.ActionUpdate, ownerID, before, cloneWorkspace(owner))
}

// attachProject appends the project to the workspace list.
func (tx *transaction) attachProject(workspaceID, projectID string) error {
	w, ok := tx.state.workspaces.get(workspaceID)
	if !ok {
		return missingRef(domain.EntityProject, projectID, domain.EntityWorkspace, workspaceID)
	}
	before := cloneWorkspace(w)
	w = cloneWorkspace(w)
	w.Projects = append(w.Projects, projectID)
	tx.state.workspaces.put(workspaceID, w)
	return tx.record(domain.EntityWorkspace, domain.ActionUpdate, workspaceID, before, cloneWorkspace(w))
}
