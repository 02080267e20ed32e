// Package domain defines the persistent entities, value types, and contracts
// shared by the kanbancore data layer.
package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the data layer.
type EntityType string

// Supported entity type identifiers used in Change records, errors, and id allocation.
const (
	// EntityWorkspace identifies a workspace record.
	EntityWorkspace EntityType = "workspace"
	// EntityProject identifies a project record.
	EntityProject EntityType = "project"
	// EntityEpic identifies an epic record.
	EntityEpic EntityType = "epic"
	// EntityEpicItem identifies a feature/component inside an epic.
	EntityEpicItem EntityType = "epic_item"
	// EntitySprint identifies a sprint record.
	EntitySprint EntityType = "sprint"
	// EntityTask identifies a task record.
	EntityTask EntityType = "task"
	// EntityTag identifies a tag record.
	EntityTag EntityType = "tag"
	// EntityComment identifies a comment embedded in a task.
	EntityComment EntityType = "comment"
	// EntityUser identifies a user record.
	EntityUser EntityType = "user"
	// EntityTeam identifies a team record.
	EntityTeam EntityType = "team"
	// EntityColumn identifies a board column.
	EntityColumn EntityType = "column"
)

var idPrefixes = map[EntityType]string{
	EntityWorkspace: "w",
	EntityProject:   "p",
	EntityEpic:      "e",
	EntityEpicItem:  "ei",
	EntitySprint:    "s",
	EntityTask:      "t",
	EntityTag:       "tag",
	EntityComment:   "c",
	EntityUser:      "u",
	EntityTeam:      "team",
}

// AllocatedEntities lists the entity types whose identifiers come from the allocator.
func AllocatedEntities() []EntityType {
	return []EntityType{
		EntityWorkspace, EntityProject, EntityEpic, EntityEpicItem, EntitySprint,
		EntityTask, EntityTag, EntityComment, EntityUser, EntityTeam,
	}
}

// IDPrefix returns the identifier prefix for the entity type, or "" when the
// type does not allocate identifiers.
func (t EntityType) IDPrefix() string {
	return idPrefixes[t]
}

// FormatID renders the n-th identifier of the entity type.
func (t EntityType) FormatID(n uint64) string {
	return t.IDPrefix() + strconv.FormatUint(n, 10)
}

// ParseID extracts the numeric suffix of an id allocated for the entity type.
// It reports false when the id does not follow the <prefix><digits> form.
func (t EntityType) ParseID(id string) (uint64, bool) {
	prefix := t.IDPrefix()
	if prefix == "" || !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	digits := id[len(prefix):]
	if digits == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// EpicItemStatus tracks the workflow state of an epic item.
type EpicItemStatus string

// Canonical epic item statuses.
const (
	EpicItemTodo       EpicItemStatus = "todo"
	EpicItemInProgress EpicItemStatus = "inprogress"
	EpicItemReview     EpicItemStatus = "review"
	EpicItemDone       EpicItemStatus = "done"
)

// SprintStatus tracks the explicit sprint lifecycle: planned -> active -> completed.
type SprintStatus string

// Canonical sprint statuses. Transitions are explicit only; dates never move a sprint.
const (
	SprintPlanned   SprintStatus = "planned"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
)

// ViewMode is the project list presentation persisted with the session.
type ViewMode string

// Supported project list presentations.
const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// DateLayout is the calendar-day layout used by Date.
const DateLayout = "2006-01-02"

// Date is a calendar day encoded as YYYY-MM-DD.
type Date string

// NewDate formats t as a calendar day in UTC.
func NewDate(t time.Time) Date {
	return Date(t.UTC().Format(DateLayout))
}

// Time parses the date as midnight UTC.
func (d Date) Time() (time.Time, error) {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", string(d), err)
	}
	return t, nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d == "" }

// Compare orders two dates. Unparseable dates sort before valid ones.
func (d Date) Compare(other Date) int {
	a, errA := d.Time()
	b, errB := other.Time()
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(string(d), string(other))
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return a.Compare(b)
}

// Workspace groups an ordered list of projects.
type Workspace struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	Projects    []string `json:"projects"`
}

// Project is the root of epics, sprints, and tasks. WorkspaceID, TaskCount, and
// SprintCount are derived from the other collections when read.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	WorkspaceID string    `json:"workspaceId,omitempty"`
	Progress    int       `json:"progress" validate:"min=0,max=100"`
	IsFavorite  bool      `json:"isFavorite"`
	LastUpdated time.Time `json:"lastUpdated"`
	TaskCount   int       `json:"taskCount"`
	SprintCount int       `json:"sprintCount"`
}

// Epic is a large body of work inside a project.
type Epic struct {
	ID          string `json:"id"`
	ProjectID   string `json:"projectId" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	StartDate   Date   `json:"startDate,omitempty" validate:"omitempty,date"`
	EndDate     Date   `json:"endDate,omitempty" validate:"omitempty,date"`
	Progress    int    `json:"progress" validate:"min=0,max=100"`
}

// EpicItem is a feature or component of an epic, optionally placed on a sprint.
// SprintID and Tasks are weak references and may dangle.
type EpicItem struct {
	ID          string         `json:"id"`
	EpicID      string         `json:"epicId" validate:"required"`
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description,omitempty"`
	SprintID    string         `json:"sprintId,omitempty"`
	SprintSpan  int            `json:"sprintSpan" validate:"min=1"`
	Status      EpicItemStatus `json:"status" validate:"oneof=todo inprogress review done"`
	Tasks       []string       `json:"tasks"`
}

// Sprint is a time box inside a project.
type Sprint struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"projectId" validate:"required"`
	Name        string       `json:"name"`
	StartDate   Date         `json:"startDate" validate:"required,date"`
	EndDate     Date         `json:"endDate" validate:"required,date"`
	Goal        string       `json:"goal,omitempty"`
	Status      SprintStatus `json:"status" validate:"oneof=planned active completed"`
	Milestone   *string      `json:"milestone,omitempty"`
	StartedAt   *time.Time   `json:"startedAt,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
}

// Comment is owned by a task and only created through it.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId,omitempty"`
	Body      string    `json:"body" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task is a unit of work on a project board. Status holds a Column id.
type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId" validate:"required"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status" validate:"required"`
	Priority    string    `json:"priority,omitempty"`
	AssigneeID  string    `json:"assigneeId,omitempty"`
	DueDate     Date      `json:"dueDate,omitempty" validate:"omitempty,date"`
	Tags        []string  `json:"tags"`
	Comments    []Comment `json:"comments" validate:"dive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Tag labels tasks.
type Tag struct {
	ID    string `json:"id"`
	Label string `json:"label" validate:"required"`
	Color string `json:"color,omitempty"`
}

// User is a person who can join teams and author comments.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Team holds an ordered, duplicate-free membership list. Members are weak
// references and may dangle after a user is deleted.
type Team struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	Members     []string `json:"members"`
}

// Column is a board lane; task statuses must name one.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Color string `json:"color,omitempty"`
}

// DefaultColumns is used when neither a snapshot nor the seed declares columns.
func DefaultColumns() []Column {
	return []Column{
		{ID: "todo", Title: "To Do"},
		{ID: "inprogress", Title: "In Progress"},
		{ID: "review", Title: "Review"},
		{ID: "done", Title: "Done"},
	}
}

// Session captures the selection and presentation state that survives restarts.
type Session struct {
	CurrentWorkspace string   `json:"currentWorkspace,omitempty"`
	CurrentProject   string   `json:"currentProject,omitempty"`
	CurrentTask      string   `json:"currentTask,omitempty"`
	CurrentUser      string   `json:"currentUser,omitempty"`
	View             ViewMode `json:"view,omitempty"`
	ProjectFilter    string   `json:"projectFilter,omitempty"`
	TaskFilter       string   `json:"taskFilter,omitempty"`
}

// Action indicates the type of modification performed.
type Action string

// Supported change actions.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	// ActionDelete indicates an entity was deleted.
	ActionDelete Action = "delete"
)

// Change describes a committed mutation of a single entity. Cascaded deletes
// produce one Change per removed entity.
type Change struct {
	Entity EntityType    `json:"entity"`
	Action Action        `json:"action"`
	ID     string        `json:"id"`
	Before ChangePayload `json:"before,omitempty"`
	After  ChangePayload `json:"after,omitempty"`
}
