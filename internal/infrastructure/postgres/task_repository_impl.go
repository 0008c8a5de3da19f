package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskflow-app/taskflow/internal/domain/entity"
	"github.com/taskflow-app/taskflow/internal/domain/repository"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = "id, title, description, status, priority, due_date, user_id, created_at, updated_at"

func scanTask(row pgx.Row) (*entity.Task, error) {
	t := &entity.Task{}
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.DueDate, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) List(ctx context.Context, userID string, f repository.TaskFilter) ([]*entity.Task, error) {
	sql := "SELECT " + taskColumns + " FROM tasks WHERE user_id = $1"
	args := []any{userID}

	if f.Status != "" && f.Status != "all" {
		args = append(args, f.Status)
		sql += " AND status = $" + strconv.Itoa(len(args))
	}
	if f.Priority != "" && f.Priority != "all" {
		args = append(args, f.Priority)
		sql += " AND priority = $" + strconv.Itoa(len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n := strconv.Itoa(len(args))
		sql += " AND (title ILIKE $" + n + " OR description ILIKE $" + n + ")"
	}
	sql += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*entity.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) GetByID(ctx context.Context, userID, id string) (*entity.Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, status, priority, due_date, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.UserID)

	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepository) Update(ctx context.Context, t *entity.Task) error {
	t.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, due_date = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.UpdatedAt, t.ID, t.UserID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM tasks
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Stats(ctx context.Context, userID string) (*entity.TaskStats, error) {
	stats := &entity.TaskStats{ByPriority: map[string]int{}}

	row := r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = $2)
		FROM tasks
		WHERE user_id = $1
	`, userID, entity.StatusCompleted)
	if err := row.Scan(&stats.Total, &stats.Completed); err != nil {
		return nil, err
	}
	stats.Pending = stats.Total - stats.Completed

	rows, err := r.pool.Query(ctx, `
		SELECT priority, count(*)
		FROM tasks
		WHERE user_id = $1
		GROUP BY priority
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p string
		var n int
		if err := rows.Scan(&p, &n); err != nil {
			return nil, err
		}
		stats.ByPriority[p] = n
	}
	return stats, rows.Err()
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
