package memory

import "kanbancore/pkg/domain"

// CreateTag stores a tag.
func (tx *transaction) CreateTag(t Tag) (Tag, error) {
	t.ID = ""
	if err := domain.Validate(domain.EntityTag, "", t); err != nil {
		return Tag{}, err
	}
	t.ID = tx.state.allocate(domain.EntityTag)
	tx.state.tags.put(t.ID, t)
	if err := tx.record(domain.EntityTag, domain.ActionCreate, t.ID, nil, t); err != nil {
		return Tag{}, err
	}
	return t, nil
}

// UpdateTag mutates an existing tag.
func (tx *transaction) UpdateTag(id string, mutator func(*Tag) error) (Tag, error) {
	current, ok := tx.state.tags.get(id)
	if !ok {
		return Tag{}, notFound(domain.EntityTag, id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return Tag{}, err
	}
	current.ID = id
	if err := domain.Validate(domain.EntityTag, id, current); err != nil {
		return Tag{}, err
	}
	tx.state.tags.put(id, current)
	if err := tx.record(domain.EntityTag, domain.ActionUpdate, id, before, current); err != nil {
		return Tag{}, err
	}
	return current, nil
}

// DeleteTag removes a tag and strips it from every task.
func (tx *transaction) DeleteTag(id string) error {
	current, ok := tx.state.tags.get(id)
	if !ok {
		return notFound(domain.EntityTag, id)
	}
	for _, taskID := range tx.state.tasks.ids(func(t Task) bool { return containsString(t.Tags, id) }) {
		task, _ := tx.state.tasks.get(taskID)
		before := cloneTask(task)
		task = cloneTask(task)
		task.Tags, _ = removeString(task.Tags, id)
		tx.state.tasks.put(taskID, task)
		if err := tx.record(domain.EntityTask, domain.ActionUpdate, taskID, before, task); err != nil {
			return err
		}
	}
	tx.state.tags.remove(id)
	return tx.record(domain.EntityTag, domain.ActionDelete, id, current, nil)
}

// CreateUser stores a user.
func (tx *transaction) CreateUser(u User) (User, error) {
	u.ID = ""
	if err := domain.Validate(domain.EntityUser, "", u); err != nil {
		return User{}, err
	}
	u.ID = tx.state.allocate(domain.EntityUser)
	tx.state.users.put(u.ID, u)
	if err := tx.record(domain.EntityUser, domain.ActionCreate, u.ID, nil, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// UpdateUser mutates an existing user.
func (tx *transaction) UpdateUser(id string, mutator func(*User) error) (User, error) {
	current, ok := tx.state.users.get(id)
	if !ok {
		return User{}, notFound(domain.EntityUser, id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return User{}, err
	}
	current.ID = id
	if err := domain.Validate(domain.EntityUser, id, current); err != nil {
		return User{}, err
	}
	tx.state.users.put(id, current)
	if err := tx.record(domain.EntityUser, domain.ActionUpdate, id, before, current); err != nil {
		return User{}, err
	}
	return current, nil
}

// DeleteUser removes a user. Team membership lists keep the id; readers
// resolve members lazily and skip the ones that no longer exist.
func (tx *transaction) DeleteUser(id string) error {
	current, ok := tx.state.users.get(id)
	if !ok {
		return notFound(domain.EntityUser, id)
	}
	tx.state.users.remove(id)
	if tx.state.session.CurrentUser == id {
		tx.state.session.CurrentUser = ""
	}
	return tx.record(domain.EntityUser, domain.ActionDelete, id, current, nil)
}

// checkNewMembers requires every member not already listed in prev to exist.
func (tx *transaction) checkNewMembers(t Team, prev []string) error {
	for _, userID := range t.Members {
		if containsString(prev, userID) {
			continue
		}
		if !tx.state.users.has(userID) {
			return missingRef(domain.EntityTeam, t.ID, domain.EntityUser, userID)
		}
	}
	return nil
}

// CreateTeam stores a team with a duplicate-free member list.
func (tx *transaction) CreateTeam(t Team) (Team, error) {
	t.ID = ""
	t.Members = dedupeStrings(t.Members)
	if err := domain.Validate(domain.EntityTeam, "", t); err != nil {
		return Team{}, err
	}
	if err := tx.checkNewMembers(t, nil); err != nil {
		return Team{}, err
	}
	t.ID = tx.state.allocate(domain.EntityTeam)
	tx.state.teams.put(t.ID, cloneTeam(t))
	if err := tx.record(domain.EntityTeam, domain.ActionCreate, t.ID, nil, t); err != nil {
		return Team{}, err
	}
	return cloneTeam(t), nil
}

// UpdateTeam mutates an existing team.
func (tx *transaction) UpdateTeam(id string, mutator func(*Team) error) (Team, error) {
	current, ok := tx.state.teams.get(id)
	if !ok {
		return Team{}, notFound(domain.EntityTeam, id)
	}
	before := cloneTeam(current)
	current = cloneTeam(current)
	if err := mutator(&current); err != nil {
		return Team{}, err
	}
	current.ID = id
	current.Members = dedupeStrings(current.Members)
	if err := domain.Validate(domain.EntityTeam, id, current); err != nil {
		return Team{}, err
	}
	if err := tx.checkNewMembers(current, before.Members); err != nil {
		return Team{}, err
	}
	tx.state.teams.put(id, cloneTeam(current))
	if err := tx.record(domain.EntityTeam, domain.ActionUpdate, id, before, current); err != nil {
		return Team{}, err
	}
	return cloneTeam(current), nil
}

// DeleteTeam removes a team.
func (tx *transaction) DeleteTeam(id string) error {
	current, ok := tx.state.teams.get(id)
	if !ok {
		return notFound(domain.EntityTeam, id)
	}
	tx.state.teams.remove(id)
	return tx.record(domain.EntityTeam, domain.ActionDelete, id, current, nil)
}
