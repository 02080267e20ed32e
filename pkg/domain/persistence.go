package domain

import (
	"context"
	"time"
)

// Transaction exposes the mutations a persistence implementation must support
// within an atomic scope. Every method applies its cascades inside the same
// scope; a returned error from the enclosing function discards all of them.
type Transaction interface {
	Snapshot() TransactionView

	CreateWorkspace(Workspace) (Workspace, error)
	UpdateWorkspace(id string, mutator func(*Workspace) error) (Workspace, error)
	DeleteWorkspace(id string) error

	CreateProject(Project) (Project, error)
	UpdateProject(id string, mutator func(*Project) error) (Project, error)
	DeleteProject(id string) error

	CreateEpic(Epic) (Epic, error)
	UpdateEpic(id string, mutator func(*Epic) error) (Epic, error)
	DeleteEpic(id string) error

	CreateEpicItem(EpicItem) (EpicItem, error)
	UpdateEpicItem(id string, mutator func(*EpicItem) error) (EpicItem, error)
	DeleteEpicItem(id string) error

	CreateSprint(Sprint) (Sprint, error)
	UpdateSprint(id string, mutator func(*Sprint) error) (Sprint, error)
	DeleteSprint(id string) error
	ReplaceSprints(projectID string, sprints []Sprint) ([]Sprint, error)

	CreateTask(Task) (Task, error)
	UpdateTask(id string, mutator func(*Task) error) (Task, error)
	DeleteTask(id string) error
	AddComment(taskID string, comment Comment) (Task, error)

	CreateTag(Tag) (Tag, error)
	UpdateTag(id string, mutator func(*Tag) error) (Tag, error)
	DeleteTag(id string) error

	CreateUser(User) (User, error)
	UpdateUser(id string, mutator func(*User) error) (User, error)
	DeleteUser(id string) error

	CreateTeam(Team) (Team, error)
	UpdateTeam(id string, mutator func(*Team) error) (Team, error)
	DeleteTeam(id string) error

	UpdateSession(mutator func(*Session) error) (Session, error)

	// Now returns the timestamp stamped on every record written by the transaction.
	Now() time.Time
}

// TransactionView provides read-only access to store state. Every returned
// value is a copy; list results preserve insertion order.
type TransactionView interface {
	ListWorkspaces() []Workspace
	FindWorkspace(id string) (Workspace, bool)
	ListProjects() []Project
	FindProject(id string) (Project, bool)
	ListEpics() []Epic
	FindEpic(id string) (Epic, bool)
	ListEpicItems() []EpicItem
	FindEpicItem(id string) (EpicItem, bool)
	ListSprints() []Sprint
	FindSprint(id string) (Sprint, bool)
	ListTasks() []Task
	FindTask(id string) (Task, bool)
	ListTags() []Tag
	FindTag(id string) (Tag, bool)
	ListUsers() []User
	FindUser(id string) (User, bool)
	ListTeams() []Team
	FindTeam(id string) (Team, bool)
	Columns() []Column
	Session() Session
}

// Result summarises a committed transaction.
type Result struct {
	Changes []Change
}

// PersistentStore is the store abstraction consumed by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
}
