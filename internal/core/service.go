package core

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"kanbancore/pkg/domain"
)

// SnapshotScheduler is notified after every committed transaction so the
// store state can be persisted in the background.
type SnapshotScheduler interface {
	Schedule()
}

// Service exposes the mutation pipeline and the derived views over a store.
// Every mutation runs in one store transaction; its cascades commit or roll
// back together.
type Service struct {
	store     domain.PersistentStore
	logger    *zap.Logger
	metrics   MetricsRecorder
	tracer    Tracer
	sink      ChangeSink
	snapshots SnapshotScheduler
	now       func() time.Time

	mu      sync.Mutex
	lastErr error
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the operation metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the operation tracer.
func WithTracer(t Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithChangeSink sets the receiver of committed changes.
func WithChangeSink(sink ChangeSink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithSnapshotScheduler sets the background persister notified on commit.
func WithSnapshotScheduler(p SnapshotScheduler) Option {
	return func(s *Service) { s.snapshots = p }
}

// WithClock sets the time source for date-based views.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		logger:  zap.NewNop(),
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// LastError reports the failure of the most recent mutation, or nil when it
// succeeded. It is informational; each operation returns its own error.
func (s *Service) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Service) setLastError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Service) run(ctx context.Context, op string, fn func(tx domain.Transaction) error) error {
	ctx, span := s.tracer.Start(ctx, op)
	started := time.Now()
	res, err := s.store.RunInTransaction(ctx, fn)
	s.metrics.Observe(ctx, op, err == nil, time.Since(started))
	span.End(err)
	s.setLastError(err)
	if err != nil {
		s.logger.Debug("mutation rejected", zap.String("operation", op), zap.Error(err))
		return err
	}
	if s.snapshots != nil {
		s.snapshots.Schedule()
	}
	if s.sink != nil && len(res.Changes) > 0 {
		if err := s.sink.Publish(ctx, res.Changes); err != nil {
			s.logger.Warn("change sink publish failed",
				zap.String("operation", op),
				zap.Int("changes", len(res.Changes)),
				zap.Error(err),
			)
		}
	}
	return nil
}

func mutate[T any](ctx context.Context, s *Service, op string, fn func(tx domain.Transaction) (T, error)) (T, error) {
	var out T
	err := s.run(ctx, op, func(tx domain.Transaction) error {
		var err error
		out, err = fn(tx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// CreateWorkspace persists a new workspace.
func (s *Service) CreateWorkspace(ctx context.Context, w domain.Workspace) (domain.Workspace, error) {
	return mutate(ctx, s, "create_workspace", func(tx domain.Transaction) (domain.Workspace, error) {
		return tx.CreateWorkspace(w)
	})
}

// UpdateWorkspace merges a patch into a workspace.
func (s *Service) UpdateWorkspace(ctx context.Context, id string, patch domain.WorkspacePatch) (domain.Workspace, error) {
	return mutate(ctx, s, "update_workspace", func(tx domain.Transaction) (domain.Workspace, error) {
		return tx.UpdateWorkspace(id, func(w *domain.Workspace) error {
			patch.Apply(w)
			return nil
		})
	})
}

// DeleteWorkspace removes a workspace; its projects stay, unassigned.
func (s *Service) DeleteWorkspace(ctx context.Context, id string) error {
	return s.run(ctx, "delete_workspace", func(tx domain.Transaction) error {
		return tx.DeleteWorkspace(id)
	})
}

// CreateProject persists a new project and lists it in its workspace.
func (s *Service) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	return mutate(ctx, s, "create_project", func(tx domain.Transaction) (domain.Project, error) {
		return tx.CreateProject(p)
	})
}

// UpdateProject merges a patch into a project.
func (s *Service) UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) (domain.Project, error) {
	return mutate(ctx, s, "update_project", func(tx domain.Transaction) (domain.Project, error) {
		return tx.UpdateProject(id, func(p *domain.Project) error {
			patch.Apply(p)
			return nil
		})
	})
}

// ToggleFavorite flips a project's favorite flag.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (domain.Project, error) {
	return mutate(ctx, s, "toggle_favorite", func(tx domain.Transaction) (domain.Project, error) {
		return tx.UpdateProject(id, func(p *domain.Project) error {
			p.IsFavorite = !p.IsFavorite
			return nil
		})
	})
}

// DeleteProject removes a project with its epics, sprints, and tasks.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	return s.run(ctx, "delete_project", func(tx domain.Transaction) error {
		return tx.DeleteProject(id)
	})
}

// CreateEpic persists a new epic.
func (s *Service) CreateEpic(ctx context.Context, e domain.Epic) (domain.Epic, error) {
	return mutate(ctx, s, "create_epic", func(tx domain.Transaction) (domain.Epic, error) {
		return tx.CreateEpic(e)
	})
}

// UpdateEpic merges a patch into an epic.
func (s *Service) UpdateEpic(ctx context.Context, id string, patch domain.EpicPatch) (domain.Epic, error) {
	return mutate(ctx, s, "update_epic", func(tx domain.Transaction) (domain.Epic, error) {
		return tx.UpdateEpic(id, func(e *domain.Epic) error {
			patch.Apply(e)
			return nil
		})
	})
}

// DeleteEpic removes an epic and its items.
func (s *Service) DeleteEpic(ctx context.Context, id string) error {
	return s.run(ctx, "delete_epic", func(tx domain.Transaction) error {
		return tx.DeleteEpic(id)
	})
}

// CreateEpicItem persists a new epic item.
func (s *Service) CreateEpicItem(ctx context.Context, item domain.EpicItem) (domain.EpicItem, error) {
	return mutate(ctx, s, "create_epic_item", func(tx domain.Transaction) (domain.EpicItem, error) {
		return tx.CreateEpicItem(item)
	})
}

// UpdateEpicItem merges a patch into an epic item.
func (s *Service) UpdateEpicItem(ctx context.Context, id string, patch domain.EpicItemPatch) (domain.EpicItem, error) {
	return mutate(ctx, s, "update_epic_item", func(tx domain.Transaction) (domain.EpicItem, error) {
		return tx.UpdateEpicItem(id, func(item *domain.EpicItem) error {
			patch.Apply(item)
			return nil
		})
	})
}

// DeleteEpicItem removes an epic item.
func (s *Service) DeleteEpicItem(ctx context.Context, id string) error {
	return s.run(ctx, "delete_epic_item", func(tx domain.Transaction) error {
		return tx.DeleteEpicItem(id)
	})
}

// CreateSprint persists a new planned sprint.
func (s *Service) CreateSprint(ctx context.Context, sp domain.Sprint) (domain.Sprint, error) {
	return mutate(ctx, s, "create_sprint", func(tx domain.Transaction) (domain.Sprint, error) {
		return tx.CreateSprint(sp)
	})
}

// UpdateSprint merges a patch into a sprint.
func (s *Service) UpdateSprint(ctx context.Context, id string, patch domain.SprintPatch) (domain.Sprint, error) {
	return mutate(ctx, s, "update_sprint", func(tx domain.Transaction) (domain.Sprint, error) {
		return tx.UpdateSprint(id, func(sp *domain.Sprint) error {
			patch.Apply(sp)
			return nil
		})
	})
}

// DeleteSprint removes a sprint; epic items keep their sprint id.
func (s *Service) DeleteSprint(ctx context.Context, id string) error {
	return s.run(ctx, "delete_sprint", func(tx domain.Transaction) error {
		return tx.DeleteSprint(id)
	})
}

// StartSprint marks a sprint active and stamps StartedAt. The current status
// is not checked.
func (s *Service) StartSprint(ctx context.Context, id string) (domain.Sprint, error) {
	return mutate(ctx, s, "start_sprint", func(tx domain.Transaction) (domain.Sprint, error) {
		return tx.UpdateSprint(id, func(sp *domain.Sprint) error {
			now := tx.Now()
			sp.Status = domain.SprintActive
			sp.StartedAt = &now
			return nil
		})
	})
}

// CompleteSprint marks a sprint completed and stamps CompletedAt. The current
// status is not checked.
func (s *Service) CompleteSprint(ctx context.Context, id string) (domain.Sprint, error) {
	return mutate(ctx, s, "complete_sprint", func(tx domain.Transaction) (domain.Sprint, error) {
		return tx.UpdateSprint(id, func(sp *domain.Sprint) error {
			now := tx.Now()
			sp.Status = domain.SprintCompleted
			sp.CompletedAt = &now
			return nil
		})
	})
}

// ConfigureSprints destructively replaces every sprint of the project with
// the planned ones. Epic items pointing at the old sprints keep dangling ids.
func (s *Service) ConfigureSprints(ctx context.Context, projectID string, plans []domain.SprintPlan) ([]domain.Sprint, error) {
	return mutate(ctx, s, "configure_sprints", func(tx domain.Transaction) ([]domain.Sprint, error) {
		sprints := make([]domain.Sprint, 0, len(plans))
		for _, plan := range plans {
			sprints = append(sprints, domain.Sprint{
				Name:      plan.Name,
				Goal:      plan.Goal,
				StartDate: plan.StartDate,
				EndDate:   plan.EndDate,
				Milestone: plan.Milestone,
			})
		}
		return tx.ReplaceSprints(projectID, sprints)
	})
}

// CreateTask persists a new task.
func (s *Service) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	return mutate(ctx, s, "create_task", func(tx domain.Transaction) (domain.Task, error) {
		return tx.CreateTask(t)
	})
}

// UpdateTask merges a patch into a task and advances UpdatedAt.
func (s *Service) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	return mutate(ctx, s, "update_task", func(tx domain.Transaction) (domain.Task, error) {
		return tx.UpdateTask(id, func(t *domain.Task) error {
			patch.Apply(t)
			return nil
		})
	})
}

// UpdateTaskStatus moves a task to another board column.
func (s *Service) UpdateTaskStatus(ctx context.Context, id, status string) (domain.Task, error) {
	return s.UpdateTask(ctx, id, domain.TaskPatch{Status: &status})
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	return s.run(ctx, "delete_task", func(tx domain.Transaction) error {
		return tx.DeleteTask(id)
	})
}

// AddComment appends a comment to a task. Without an author the current user
// is recorded.
func (s *Service) AddComment(ctx context.Context, taskID string, c domain.Comment) (domain.Task, error) {
	return mutate(ctx, s, "add_comment", func(tx domain.Transaction) (domain.Task, error) {
		if c.AuthorID == "" {
			c.AuthorID = tx.Snapshot().Session().CurrentUser
		}
		return tx.AddComment(taskID, c)
	})
}

// CreateTag persists a new tag.
func (s *Service) CreateTag(ctx context.Context, t domain.Tag) (domain.Tag, error) {
	return mutate(ctx, s, "create_tag", func(tx domain.Transaction) (domain.Tag, error) {
		return tx.CreateTag(t)
	})
}

// UpdateTag merges a patch into a tag.
func (s *Service) UpdateTag(ctx context.Context, id string, patch domain.TagPatch) (domain.Tag, error) {
	return mutate(ctx, s, "update_tag", func(tx domain.Transaction) (domain.Tag, error) {
		return tx.UpdateTag(id, func(t *domain.Tag) error {
			patch.Apply(t)
			return nil
		})
	})
}

// DeleteTag removes a tag and strips it from every task.
func (s *Service) DeleteTag(ctx context.Context, id string) error {
	return s.run(ctx, "delete_tag", func(tx domain.Transaction) error {
		return tx.DeleteTag(id)
	})
}

// CreateUser persists a new user.
func (s *Service) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	return mutate(ctx, s, "create_user", func(tx domain.Transaction) (domain.User, error) {
		return tx.CreateUser(u)
	})
}

// UpdateUser merges a patch into a user.
func (s *Service) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error) {
	return mutate(ctx, s, "update_user", func(tx domain.Transaction) (domain.User, error) {
		return tx.UpdateUser(id, func(u *domain.User) error {
			patch.Apply(u)
			return nil
		})
	})
}

// DeleteUser removes a user. Team membership lists are left as they are.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.run(ctx, "delete_user", func(tx domain.Transaction) error {
		return tx.DeleteUser(id)
	})
}

// CreateTeam persists a new team.
func (s *Service) CreateTeam(ctx context.Context, t domain.Team) (domain.Team, error) {
	return mutate(ctx, s, "create_team", func(tx domain.Transaction) (domain.Team, error) {
		return tx.CreateTeam(t)
	})
}

// UpdateTeam merges a patch into a team.
func (s *Service) UpdateTeam(ctx context.Context, id string, patch domain.TeamPatch) (domain.Team, error) {
	return mutate(ctx, s, "update_team", func(tx domain.Transaction) (domain.Team, error) {
		return tx.UpdateTeam(id, func(t *domain.Team) error {
			patch.Apply(t)
			return nil
		})
	})
}

// DeleteTeam removes a team.
func (s *Service) DeleteTeam(ctx context.Context, id string) error {
	return s.run(ctx, "delete_team", func(tx domain.Transaction) error {
		return tx.DeleteTeam(id)
	})
}

// AddUserToTeam appends a user to a team. Adding a present member is a no-op.
func (s *Service) AddUserToTeam(ctx context.Context, teamID, userID string) (domain.Team, error) {
	return mutate(ctx, s, "add_team_member", func(tx domain.Transaction) (domain.Team, error) {
		team, ok := tx.Snapshot().FindTeam(teamID)
		if !ok {
			return domain.Team{}, domain.NotFoundError{Entity: domain.EntityTeam, ID: teamID}
		}
		if slices.Contains(team.Members, userID) {
			return team, nil
		}
		return tx.UpdateTeam(teamID, func(t *domain.Team) error {
			t.Members = append(t.Members, userID)
			return nil
		})
	})
}

// RemoveUserFromTeam drops a user from a team. Removing an absent member is a
// no-op.
func (s *Service) RemoveUserFromTeam(ctx context.Context, teamID, userID string) (domain.Team, error) {
	return mutate(ctx, s, "remove_team_member", func(tx domain.Transaction) (domain.Team, error) {
		team, ok := tx.Snapshot().FindTeam(teamID)
		if !ok {
			return domain.Team{}, domain.NotFoundError{Entity: domain.EntityTeam, ID: teamID}
		}
		if !slices.Contains(team.Members, userID) {
			return team, nil
		}
		return tx.UpdateTeam(teamID, func(t *domain.Team) error {
			t.Members = slices.DeleteFunc(t.Members, func(id string) bool { return id == userID })
			return nil
		})
	})
}

func (s *Service) updateSession(ctx context.Context, op string, mutator func(*domain.Session)) (domain.Session, error) {
	return mutate(ctx, s, op, func(tx domain.Transaction) (domain.Session, error) {
		return tx.UpdateSession(func(sess *domain.Session) error {
			mutator(sess)
			return nil
		})
	})
}

// SetCurrentWorkspace selects a workspace; an empty id clears the selection.
func (s *Service) SetCurrentWorkspace(ctx context.Context, id string) (domain.Session, error) {
	return s.updateSession(ctx, "set_current_workspace", func(sess *domain.Session) { sess.CurrentWorkspace = id })
}

// SetCurrentProject selects a project; an empty id clears the selection.
func (s *Service) SetCurrentProject(ctx context.Context, id string) (domain.Session, error) {
	return s.updateSession(ctx, "set_current_project", func(sess *domain.Session) { sess.CurrentProject = id })
}

// SetCurrentTask selects a task; an empty id clears the selection.
func (s *Service) SetCurrentTask(ctx context.Context, id string) (domain.Session, error) {
	return s.updateSession(ctx, "set_current_task", func(sess *domain.Session) { sess.CurrentTask = id })
}

// SetCurrentUser selects the acting user; an empty id clears the selection.
func (s *Service) SetCurrentUser(ctx context.Context, id string) (domain.Session, error) {
	return s.updateSession(ctx, "set_current_user", func(sess *domain.Session) { sess.CurrentUser = id })
}

// SetView selects the project list presentation.
func (s *Service) SetView(ctx context.Context, mode domain.ViewMode) (domain.Session, error) {
	return s.updateSession(ctx, "set_view", func(sess *domain.Session) { sess.View = mode })
}

// SetProjectFilter stores the project list filter.
func (s *Service) SetProjectFilter(ctx context.Context, f ProjectFilter) (domain.Session, error) {
	return s.updateSession(ctx, "set_project_filter", func(sess *domain.Session) { sess.ProjectFilter = string(f) })
}

// SetTaskFilter stores the task search query.
func (s *Service) SetTaskFilter(ctx context.Context, query string) (domain.Session, error) {
	return s.updateSession(ctx, "set_task_filter", func(sess *domain.Session) { sess.TaskFilter = query })
}
