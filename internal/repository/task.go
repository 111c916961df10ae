package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/datapulse/datapulse-go/internal/model"
)

var ErrTaskNotFound = errors.New("task not found")

const taskColumns = `id, owner_id, title, description, due_date, priority, status, created_at, updated_at`

// TaskRepository handles task persistence. Every read and write is scoped to
// the owning user.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts task, assigning its ID and timestamps.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	now := timestamp(time.Now())
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.DueDate != nil {
		d := timestamp(*task.DueDate)
		task.DueDate = &d
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.OwnerID, task.Title, nullString(task.Description), nullTime(task.DueDate),
		string(task.Priority), string(task.Status), task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetForOwner retrieves a task by ID if it belongs to ownerID.
func (r *TaskRepository) GetForOwner(ctx context.Context, ownerID, id string) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	return scanTask(row)
}

// List returns one page of the owner's tasks matching filter, newest first,
// along with the total number of matches.
func (r *TaskRepository) List(ctx context.Context, ownerID string, filter model.TaskFilter) ([]model.Task, int, error) {
	where := []string{"owner_id = ?"}
	args := []any{ownerID}

	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.DueBefore != nil {
		where = append(where, "due_date <= ?")
		args = append(args, timestamp(*filter.DueBefore))
	}
	if filter.DueAfter != nil {
		where = append(where, "due_date >= ?")
		args = append(args, timestamp(*filter.DueAfter))
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		where = append(where, "(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '!')")
		args = append(args, pattern, pattern)
	}
	clause := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + clause + ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update writes every mutable field of task and bumps updated_at.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = timestamp(time.Now())

	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, due_date = ?, priority = ?, status = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		task.Title, nullString(task.Description), nullTime(task.DueDate),
		string(task.Priority), string(task.Status), task.UpdatedAt,
		task.ID, task.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		// MySQL reports changed rows, so confirm the row still exists.
		if _, err := r.GetForOwner(ctx, task.OwnerID, task.ID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteForOwner removes a task if it belongs to ownerID.
func (r *TaskRepository) DeleteForOwner(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(result, ErrTaskNotFound)
}

// CountByOwner returns the number of tasks owned by ownerID.
func (r *TaskRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE owner_id = ?`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func scanTask(row rowScanner) (*model.Task, error) {
	var (
		t           model.Task
		description sql.NullString
		dueDate     sql.NullTime
		priority    string
		status      string
	)
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &description, &dueDate, &priority, &status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.Description = stringPtr(description)
	t.DueDate = timePtr(dueDate)
	t.Priority = model.TaskPriority(priority)
	t.Status = model.TaskStatus(status)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike makes s match literally inside a LIKE pattern with ESCAPE '!'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
