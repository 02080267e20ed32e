package memory

import "kanbancore/pkg/domain"

// UpdateSession mutates the selection state. Every non-empty selection must
// name an existing record.
func (tx *transaction) UpdateSession(mutator func(*Session) error) (Session, error) {
	current := tx.state.session
	if err := mutator(&current); err != nil {
		return Session{}, err
	}
	checks := []struct {
		entity domain.EntityType
		id     string
		exists func(string) bool
	}{
		{domain.EntityWorkspace, current.CurrentWorkspace, tx.state.workspaces.has},
		{domain.EntityProject, current.CurrentProject, tx.state.projects.has},
		{domain.EntityTask, current.CurrentTask, tx.state.tasks.has},
		{domain.EntityUser, current.CurrentUser, tx.state.users.has},
	}
	for _, c := range checks {
		if c.id != "" && !c.exists(c.id) {
			return Session{}, notFound(c.entity, c.id)
		}
	}
	switch current.View {
	case "":
		current.View = domain.ViewGrid
	case domain.ViewGrid, domain.ViewList:
	default:
		return Session{}, domain.ValidationError{Entity: "session", Field: "view", Reason: "must be one of: grid, list"}
	}
	tx.state.session = current
	return current, nil
}
