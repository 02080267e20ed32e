package memory

import "kanbancore/pkg/domain"

// CreateEpic stores an epic under an existing project.
func (tx *transaction) CreateEpic(e Epic) (Epic, error) {
	e.ID = ""
	if err := domain.Validate(domain.EntityEpic, "", e); err != nil {
		return Epic{}, err
	}
	if !tx.state.projects.has(e.ProjectID) {
		return Epic{}, missingRef(domain.EntityEpic, "", domain.EntityProject, e.ProjectID)
	}
	e.ID = tx.state.allocate(domain.EntityEpic)
	tx.state.epics.put(e.ID, e)
	if err := tx.record(domain.EntityEpic, domain.ActionCreate, e.ID, nil, e); err != nil {
		return Epic{}, err
	}
	return e, nil
}

// UpdateEpic mutates an existing epic.
func (tx *transaction) UpdateEpic(id string, mutator func(*Epic) error) (Epic, error) {
	current, ok := tx.state.epics.get(id)
	if !ok {
		return Epic{}, notFound(domain.EntityEpic, id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return Epic{}, err
	}
	current.ID = id
	if err := domain.Validate(domain.EntityEpic, id, current); err != nil {
		return Epic{}, err
	}
	if !tx.state.projects.has(current.ProjectID) {
		return Epic{}, missingRef(domain.EntityEpic, id, domain.EntityProject, current.ProjectID)
	}
	tx.state.epics.put(id, current)
	if err := tx.record(domain.EntityEpic, domain.ActionUpdate, id, before, current); err != nil {
		return Epic{}, err
	}
	return current, nil
}

// DeleteEpic removes an epic and its epic items. Tasks referenced by the
// items belong to the project and are left alone.
func (tx *transaction) DeleteEpic(id string) error {
	current, ok := tx.state.epics.get(id)
	if !ok {
		return notFound(domain.EntityEpic, id)
	}
	for _, itemID := range tx.state.epicItems.ids(func(item EpicItem) bool { return item.EpicID == id }) {
		if err := tx.DeleteEpicItem(itemID); err != nil {
			return err
		}
	}
	tx.state.epics.remove(id)
	return tx.record(domain.EntityEpic, domain.ActionDelete, id, current, nil)
}

// CreateEpicItem stores an epic item with an empty task list.
func (tx *transaction) CreateEpicItem(item EpicItem) (EpicItem, error) {
	item.ID = ""
	item.Tasks = []string{}
	if item.SprintSpan == 0 {
		item.SprintSpan = 1
	}
	if item.Status == "" {
		item.Status = domain.EpicItemTodo
	}
	if err := domain.Validate(domain.EntityEpicItem, "", item); err != nil {
		return EpicItem{}, err
	}
	if !tx.state.epics.has(item.EpicID) {
		return EpicItem{}, missingRef(domain.EntityEpicItem, "", domain.EntityEpic, item.EpicID)
	}
	if item.SprintID != "" && !tx.state.sprints.has(item.SprintID) {
		return EpicItem{}, missingRef(domain.EntityEpicItem, "", domain.EntitySprint, item.SprintID)
	}
	item.ID = tx.state.allocate(domain.EntityEpicItem)
	tx.state.epicItems.put(item.ID, cloneEpicItem(item))
	if err := tx.record(domain.EntityEpicItem, domain.ActionCreate, item.ID, nil, item); err != nil {
		return EpicItem{}, err
	}
	return cloneEpicItem(item), nil
}

// UpdateEpicItem mutates an existing epic item. A sprint reference is only
// checked when it changes, so items left pointing at a deleted sprint stay
// editable.
func (tx *transaction) UpdateEpicItem(id string, mutator func(*EpicItem) error) (EpicItem, error) {
	current, ok := tx.state.epicItems.get(id)
	if !ok {
		return EpicItem{}, notFound(domain.EntityEpicItem, id)
	}
	before := cloneEpicItem(current)
	current = cloneEpicItem(current)
	if err := mutator(&current); err != nil {
		return EpicItem{}, err
	}
	current.ID = id
	current.Tasks = dedupeStrings(current.Tasks)
	if err := domain.Validate(domain.EntityEpicItem, id, current); err != nil {
		return EpicItem{}, err
	}
	if !tx.state.epics.has(current.EpicID) {
		return EpicItem{}, missingRef(domain.EntityEpicItem, id, domain.EntityEpic, current.EpicID)
	}
	if current.SprintID != before.SprintID && current.SprintID != "" && !tx.state.sprints.has(current.SprintID) {
		return EpicItem{}, missingRef(domain.EntityEpicItem, id, domain.EntitySprint, current.SprintID)
	}
	tx.state.epicItems.put(id, cloneEpicItem(current))
	if err := tx.record(domain.EntityEpicItem, domain.ActionUpdate, id, before, current); err != nil {
		return EpicItem{}, err
	}
	return cloneEpicItem(current), nil
}

// DeleteEpicItem removes an epic item.
func (tx *transaction) DeleteEpicItem(id string) error {
	current, ok := tx.state.epicItems.get(id)
	if !ok {
		return notFound(domain.EntityEpicItem, id)
	}
	tx.state.epicItems.remove(id)
	return tx.record(domain.EntityEpicItem, domain.ActionDelete, id, current, nil)
}
