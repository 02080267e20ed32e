package memory

import (
	"time"

	"kanbancore/pkg/domain"
)

func (tx *transaction) checkTask(t Task) error {
	if err := domain.Validate(domain.EntityTask, t.ID, t); err != nil {
		return err
	}
	if !tx.state.projects.has(t.ProjectID) {
		return missingRef(domain.EntityTask, t.ID, domain.EntityProject, t.ProjectID)
	}
	if !tx.state.hasColumn(t.Status) {
		return domain.ValidationError{Entity: domain.EntityTask, ID: t.ID, Field: "status", Reason: "must name a board column"}
	}
	for _, tagID := range t.Tags {
		if !tx.state.tags.has(tagID) {
			return missingRef(domain.EntityTask, t.ID, domain.EntityTag, tagID)
		}
	}
	return nil
}

// touch returns a timestamp strictly after prev, falling back to prev+1ns when
// the clock has not advanced.
func (tx *transaction) touch(prev time.Time) time.Time {
	if tx.now.After(prev) {
		return tx.now
	}
	return prev.Add(time.Nanosecond)
}

// CreateTask stores a task with no comments.
func (tx *transaction) CreateTask(t Task) (Task, error) {
	t.ID = ""
	t.Tags = dedupeStrings(t.Tags)
	t.Comments = []Comment{}
	if err := tx.checkTask(t); err != nil {
		return Task{}, err
	}
	t.ID = tx.state.allocate(domain.EntityTask)
	t.CreatedAt = tx.now
	t.UpdatedAt = tx.now
	tx.state.tasks.put(t.ID, cloneTask(t))
	if err := tx.record(domain.EntityTask, domain.ActionCreate, t.ID, nil, t); err != nil {
		return Task{}, err
	}
	return cloneTask(t), nil
}

// UpdateTask mutates an existing task and advances UpdatedAt.
func (tx *transaction) UpdateTask(id string, mutator func(*Task) error) (Task, error) {
	current, ok := tx.state.tasks.get(id)
	if !ok {
		return Task{}, notFound(domain.EntityTask, id)
	}
	before := cloneTask(current)
	current = cloneTask(current)
	if err := mutator(&current); err != nil {
		return Task{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.Tags = dedupeStrings(current.Tags)
	if current.Comments == nil {
		current.Comments = []Comment{}
	}
	if err := tx.checkTask(current); err != nil {
		return Task{}, err
	}
	current.UpdatedAt = tx.touch(before.UpdatedAt)
	tx.state.tasks.put(id, cloneTask(current))
	if err := tx.record(domain.EntityTask, domain.ActionUpdate, id, before, current); err != nil {
		return Task{}, err
	}
	return cloneTask(current), nil
}

// DeleteTask removes a task. Epic items keep their task references.
func (tx *transaction) DeleteTask(id string) error {
	current, ok := tx.state.tasks.get(id)
	if !ok {
		return notFound(domain.EntityTask, id)
	}
	tx.state.tasks.remove(id)
	if tx.state.session.CurrentTask == id {
		tx.state.session.CurrentTask = ""
	}
	return tx.record(domain.EntityTask, domain.ActionDelete, id, current, nil)
}

// AddComment appends a comment to a task. The author, when set, must exist.
func (tx *transaction) AddComment(taskID string, c Comment) (Task, error) {
	if !tx.state.tasks.has(taskID) {
		return Task{}, notFound(domain.EntityTask, taskID)
	}
	if err := domain.Validate(domain.EntityComment, "", c); err != nil {
		return Task{}, err
	}
	if c.AuthorID != "" && !tx.state.users.has(c.AuthorID) {
		return Task{}, missingRef(domain.EntityComment, "", domain.EntityUser, c.AuthorID)
	}
	c.ID = tx.state.allocate(domain.EntityComment)
	c.CreatedAt = tx.now
	return tx.UpdateTask(taskID, func(t *Task) error {
		t.Comments = append(t.Comments, c)
		return nil
	})
}
