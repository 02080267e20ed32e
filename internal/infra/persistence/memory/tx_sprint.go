package memory

import (
	"fmt"

	"kanbancore/pkg/domain"
)

// CreateSprint stores a planned sprint. A blank name becomes "Sprint <n>",
// numbered after the project's existing sprints.
func (tx *transaction) CreateSprint(s Sprint) (Sprint, error) {
	s.ID = ""
	s.Status = domain.SprintPlanned
	s.StartedAt = nil
	s.CompletedAt = nil
	if err := domain.Validate(domain.EntitySprint, "", s); err != nil {
		return Sprint{}, err
	}
	if !tx.state.projects.has(s.ProjectID) {
		return Sprint{}, missingRef(domain.EntitySprint, "", domain.EntityProject, s.ProjectID)
	}
	if s.Name == "" {
		n := len(tx.state.sprints.ids(func(existing Sprint) bool { return existing.ProjectID == s.ProjectID }))
		s.Name = fmt.Sprintf("Sprint %d", n+1)
	}
	s.ID = tx.state.allocate(domain.EntitySprint)
	tx.state.sprints.put(s.ID, cloneSprint(s))
	if err := tx.record(domain.EntitySprint, domain.ActionCreate, s.ID, nil, s); err != nil {
		return Sprint{}, err
	}
	return cloneSprint(s), nil
}

// UpdateSprint mutates an existing sprint. Status transitions are not
// guarded; any status may follow any other.
func (tx *transaction) UpdateSprint(id string, mutator func(*Sprint) error) (Sprint, error) {
	current, ok := tx.state.sprints.get(id)
	if !ok {
		return Sprint{}, notFound(domain.EntitySprint, id)
	}
	before := cloneSprint(current)
	current = cloneSprint(current)
	if err := mutator(&current); err != nil {
		return Sprint{}, err
	}
	current.ID = id
	if err := domain.Validate(domain.EntitySprint, id, current); err != nil {
		return Sprint{}, err
	}
	if !tx.state.projects.has(current.ProjectID) {
		return Sprint{}, missingRef(domain.EntitySprint, id, domain.EntityProject, current.ProjectID)
	}
	tx.state.sprints.put(id, cloneSprint(current))
	if err := tx.record(domain.EntitySprint, domain.ActionUpdate, id, before, current); err != nil {
		return Sprint{}, err
	}
	return cloneSprint(current), nil
}

// DeleteSprint removes a sprint. Epic items keep their sprint reference.
func (tx *transaction) DeleteSprint(id string) error {
	current, ok := tx.state.sprints.get(id)
	if !ok {
		return notFound(domain.EntitySprint, id)
	}
	tx.state.sprints.remove(id)
	return tx.record(domain.EntitySprint, domain.ActionDelete, id, current, nil)
}

// ReplaceSprints discards every sprint of the project and stores the given
// ones in order with fresh ids and planned status. Blank names and goals get
// numbered defaults.
func (tx *transaction) ReplaceSprints(projectID string, sprints []Sprint) ([]Sprint, error) {
	if !tx.state.projects.has(projectID) {
		return nil, notFound(domain.EntityProject, projectID)
	}
	for _, id := range tx.state.sprints.ids(func(s Sprint) bool { return s.ProjectID == projectID }) {
		if err := tx.DeleteSprint(id); err != nil {
			return nil, err
		}
	}
	out := make([]Sprint, 0, len(sprints))
	for i, s := range sprints {
		s.ProjectID = projectID
		if s.Name == "" {
			s.Name = fmt.Sprintf("Sprint %d", i+1)
		}
		if s.Goal == "" {
			s.Goal = fmt.Sprintf("Complete sprint %d objectives", i+1)
		}
		created, err := tx.CreateSprint(s)
		if err != nil {
			return nil, fmt.Errorf("sprint %d: %w", i+1, err)
		}
		out = append(out, created)
	}
	return out, nil
}
