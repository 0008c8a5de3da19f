package repository

import (
	"context"

	"github.com/taskflow-app/taskflow/internal/domain/entity"
)

// TaskFilter narrows a task listing. Zero values (or "all") mean no
// filter for that dimension. Search matches case-insensitively as a
// substring against title or description.
type TaskFilter struct {
	Status   string
	Priority string
	Search   string
}

// TaskRepository defines task persistence scoped by owning user. Every
// operation takes the owner's user id; rows belonging to other users
// behave as if they did not exist.
type TaskRepository interface {
	List(ctx context.Context, userID string, f TaskFilter) ([]*entity.Task, error)
	GetByID(ctx context.Context, userID, id string) (*entity.Task, error)
	Create(ctx context.Context, t *entity.Task) error
	Update(ctx context.Context, t *entity.Task) error
	Delete(ctx context.Context, userID, id string) error
	Stats(ctx context.Context, userID string) (*entity.TaskStats, error)
}
