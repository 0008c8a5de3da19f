package application

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/taskflow-app/taskflow/internal/domain/entity"
	repo "github.com/taskflow-app/taskflow/internal/domain/repository"
	"github.com/taskflow-app/taskflow/pkg/helpers"
	"github.com/taskflow-app/taskflow/pkg/validation"
)

// TaskService implements the user-scoped task operations. Every method
// takes the authenticated caller's user id; tasks owned by anyone else
// are indistinguishable from tasks that do not exist.
type TaskService struct {
	Repo     repo.TaskRepository
	Redis    *redis.Client
	Logger   *logrus.Logger
	StatsTTL time.Duration
}

func NewTaskService(r repo.TaskRepository, rdb *redis.Client, logger *logrus.Logger, statsTTL time.Duration) *TaskService {
	return &TaskService{Repo: r, Redis: rdb, Logger: logger, StatsTTL: statsTTL}
}

func statsKey(userID string) string {
	return "task:stats:" + userID
}

// CreateTaskInput carries the client-supplied fields for a new task.
// The owning user is never part of the input.
type CreateTaskInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

// UpdateTaskInput is a partial task patch; nil fields are untouched.
type UpdateTaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

// dueDate accepts a bare date or a full RFC3339 timestamp.
var dueDateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDueDate(s string) (time.Time, bool) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func validateStatus(s string) (entity.Status, *validation.Error) {
	st := entity.Status(s)
	if !st.Valid() {
		return "", validation.Fail("status", "must be one of [Todo, In Progress, Completed]")
	}
	return st, nil
}

func validatePriority(p string) (entity.Priority, *validation.Error) {
	pr := entity.Priority(p)
	if !pr.Valid() {
		return "", validation.Fail("priority", "must be one of [Low, Medium, High]")
	}
	return pr, nil
}

func (s *TaskService) List(ctx context.Context, userID string, f repo.TaskFilter) ([]*entity.Task, error) {
	return s.Repo.List(ctx, userID, f)
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (*entity.Task, error) {
	return s.Repo.GetByID(ctx, userID, id)
}

// Create validates input, applies defaults, and persists a task owned
// by userID regardless of anything the payload claimed.
func (s *TaskService) Create(ctx context.Context, userID string, in CreateTaskInput) (*entity.Task, error) {
	t := &entity.Task{
		Title:    strings.TrimSpace(in.Title),
		Status:   entity.StatusTodo,
		Priority: entity.PriorityMedium,
		UserID:   userID,
	}
	if t.Title == "" {
		return nil, validation.Fail("title", "is required")
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		st, verr := validateStatus(*in.Status)
		if verr != nil {
			return nil, verr
		}
		t.Status = st
	}
	if in.Priority != nil {
		pr, verr := validatePriority(*in.Priority)
		if verr != nil {
			return nil, verr
		}
		t.Priority = pr
	}
	if in.DueDate != nil && *in.DueDate != "" {
		d, ok := parseDueDate(*in.DueDate)
		if !ok {
			return nil, validation.Fail("dueDate", "must be a valid date")
		}
		t.DueDate = &d
	}

	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, userID)
	return t, nil
}

// Update applies the present fields of in to the caller's task. An
// empty patch still refreshes updatedAt.
func (s *TaskService) Update(ctx context.Context, userID, id string, in UpdateTaskInput) (*entity.Task, error) {
	t, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, validation.Fail("title", "is not allowed to be empty")
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		st, verr := validateStatus(*in.Status)
		if verr != nil {
			return nil, verr
		}
		t.Status = st
	}
	if in.Priority != nil {
		pr, verr := validatePriority(*in.Priority)
		if verr != nil {
			return nil, verr
		}
		t.Priority = pr
	}
	if in.DueDate != nil {
		if *in.DueDate == "" {
			t.DueDate = nil
		} else {
			d, ok := parseDueDate(*in.DueDate)
			if !ok {
				return nil, validation.Fail("dueDate", "must be a valid date")
			}
			t.DueDate = &d
		}
	}

	if err := s.Repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, userID)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.invalidateStats(ctx, userID)
	return nil
}

// Stats returns the caller's aggregate counts, served from the redis
// cache when warm. Priorities with zero tasks stay absent from
// ByPriority.
func (s *TaskService) Stats(ctx context.Context, userID string) (*entity.TaskStats, error) {
	if s.Redis != nil && s.StatsTTL > 0 {
		var cached entity.TaskStats
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, statsKey(userID), &cached); err == nil && ok {
			return &cached, nil
		}
	}

	stats, err := s.Repo.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil && s.StatsTTL > 0 {
		if err := helpers.RedisSetJSON(ctx, s.Redis, statsKey(userID), stats, s.StatsTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", statsKey(userID)).Warn("stats cache write failed")
		}
	}
	return stats, nil
}

func (s *TaskService) invalidateStats(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, statsKey(userID)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("key", statsKey(userID)).Warn("stats cache invalidation failed")
	}
}
