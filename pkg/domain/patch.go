package domain

// Patches carry partial updates. A nil pointer or nil slice retains the
// current value; anything else overwrites it.

// WorkspacePatch updates a workspace.
type WorkspacePatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Projects    []string `json:"projects,omitempty"`
}

// Apply merges the patch into w.
func (p WorkspacePatch) Apply(w *Workspace) {
	setString(&w.Name, p.Name)
	setString(&w.Description, p.Description)
	if p.Projects != nil {
		w.Projects = append([]string{}, p.Projects...)
	}
}

// ProjectPatch updates a project. WorkspaceID moves the project; an empty
// string detaches it from its workspace.
type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	WorkspaceID *string `json:"workspaceId,omitempty"`
	Progress    *int    `json:"progress,omitempty"`
	IsFavorite  *bool   `json:"isFavorite,omitempty"`
}

// Apply merges the patch into pr.
func (p ProjectPatch) Apply(pr *Project) {
	setString(&pr.Name, p.Name)
	setString(&pr.Description, p.Description)
	setString(&pr.Color, p.Color)
	setString(&pr.WorkspaceID, p.WorkspaceID)
	if p.Progress != nil {
		pr.Progress = *p.Progress
	}
	if p.IsFavorite != nil {
		pr.IsFavorite = *p.IsFavorite
	}
}

// EpicPatch updates an epic.
type EpicPatch struct {
	ProjectID   *string `json:"projectId,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	StartDate   *Date   `json:"startDate,omitempty"`
	EndDate     *Date   `json:"endDate,omitempty"`
	Progress    *int    `json:"progress,omitempty"`
}

// Apply merges the patch into e.
func (p EpicPatch) Apply(e *Epic) {
	setString(&e.ProjectID, p.ProjectID)
	setString(&e.Name, p.Name)
	setString(&e.Description, p.Description)
	setDate(&e.StartDate, p.StartDate)
	setDate(&e.EndDate, p.EndDate)
	if p.Progress != nil {
		e.Progress = *p.Progress
	}
}

// EpicItemPatch updates an epic item. An empty SprintID removes the item from
// its sprint.
type EpicItemPatch struct {
	EpicID      *string         `json:"epicId,omitempty"`
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	SprintID    *string         `json:"sprintId,omitempty"`
	SprintSpan  *int            `json:"sprintSpan,omitempty"`
	Status      *EpicItemStatus `json:"status,omitempty"`
	Tasks       []string        `json:"tasks,omitempty"`
}

// Apply merges the patch into item.
func (p EpicItemPatch) Apply(item *EpicItem) {
	setString(&item.EpicID, p.EpicID)
	setString(&item.Title, p.Title)
	setString(&item.Description, p.Description)
	setString(&item.SprintID, p.SprintID)
	if p.SprintSpan != nil {
		item.SprintSpan = *p.SprintSpan
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.Tasks != nil {
		item.Tasks = append([]string{}, p.Tasks...)
	}
}

// SprintPatch updates a sprint. An empty Milestone clears it. Status changes
// should go through the start and complete operations so their timestamps
// are stamped.
type SprintPatch struct {
	Name      *string       `json:"name,omitempty"`
	Goal      *string       `json:"goal,omitempty"`
	StartDate *Date         `json:"startDate,omitempty"`
	EndDate   *Date         `json:"endDate,omitempty"`
	Status    *SprintStatus `json:"status,omitempty"`
	Milestone *string       `json:"milestone,omitempty"`
}

// Apply merges the patch into s.
func (p SprintPatch) Apply(s *Sprint) {
	setString(&s.Name, p.Name)
	setString(&s.Goal, p.Goal)
	setDate(&s.StartDate, p.StartDate)
	setDate(&s.EndDate, p.EndDate)
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Milestone != nil {
		if *p.Milestone == "" {
			s.Milestone = nil
		} else {
			m := *p.Milestone
			s.Milestone = &m
		}
	}
}

// SprintPlan describes one sprint in a configureSprints request. Empty names
// and goals are filled with numbered defaults.
type SprintPlan struct {
	Name      string  `json:"name,omitempty"`
	Goal      string  `json:"goal,omitempty"`
	StartDate Date    `json:"startDate"`
	EndDate   Date    `json:"endDate"`
	Milestone *string `json:"milestone,omitempty"`
}

// TaskPatch updates a task.
type TaskPatch struct {
	ProjectID   *string  `json:"projectId,omitempty"`
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Priority    *string  `json:"priority,omitempty"`
	AssigneeID  *string  `json:"assigneeId,omitempty"`
	DueDate     *Date    `json:"dueDate,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Apply merges the patch into t.
func (p TaskPatch) Apply(t *Task) {
	setString(&t.ProjectID, p.ProjectID)
	setString(&t.Title, p.Title)
	setString(&t.Description, p.Description)
	setString(&t.Status, p.Status)
	setString(&t.Priority, p.Priority)
	setString(&t.AssigneeID, p.AssigneeID)
	setDate(&t.DueDate, p.DueDate)
	if p.Tags != nil {
		t.Tags = append([]string{}, p.Tags...)
	}
}

// TagPatch updates a tag.
type TagPatch struct {
	Label *string `json:"label,omitempty"`
	Color *string `json:"color,omitempty"`
}

// Apply merges the patch into t.
func (p TagPatch) Apply(t *Tag) {
	setString(&t.Label, p.Label)
	setString(&t.Color, p.Color)
}

// UserPatch updates a user profile.
type UserPatch struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
	Role   *string `json:"role,omitempty"`
}

// Apply merges the patch into u.
func (p UserPatch) Apply(u *User) {
	setString(&u.Name, p.Name)
	setString(&u.Email, p.Email)
	setString(&u.Avatar, p.Avatar)
	setString(&u.Role, p.Role)
}

// TeamPatch updates a team. Members replaces the whole membership list.
type TeamPatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Members     []string `json:"members,omitempty"`
}

// Apply merges the patch into t.
func (p TeamPatch) Apply(t *Team) {
	setString(&t.Name, p.Name)
	setString(&t.Description, p.Description)
	if p.Members != nil {
		t.Members = append([]string{}, p.Members...)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDate(dst *Date, v *Date) {
	if v != nil {
		*dst = *v
	}
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T { return &v }
