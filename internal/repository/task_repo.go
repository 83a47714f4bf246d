package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tasktracker/internal/docstore"
	"tasktracker/internal/model"

	"go.uber.org/zap"
)

// TaskRepository does CRUD over the tasks collection and returns shaped documents.
type TaskRepository struct {
	store  docstore.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewTaskRepository(store docstore.Store, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{store: store, logger: logger, now: time.Now}
}

// List returns every task, most recently created first.
func (r *TaskRepository) List(ctx context.Context) ([]map[string]any, error) {
	r.logger.Debug("Listing tasks")

	docs, err := r.store.Query(ctx, model.Collection, docstore.Query{
		OrderBy: model.FieldCreatedAt,
		Desc:    true,
	})
	if err != nil {
		r.logger.Error("Failed to query tasks", zap.Error(err))
		return nil, &StoreError{Op: "list", Err: err}
	}

	tasks := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, docstore.Shape(d))
	}
	r.logger.Info("Tasks listed successfully", zap.Int("count", len(tasks)))
	return tasks, nil
}

// Get returns a single task.
func (r *TaskRepository) Get(ctx context.Context, id string) (map[string]any, error) {
	doc, err := r.store.Get(ctx, model.Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get task", zap.String("task_id", id), zap.Error(err))
		return nil, &StoreError{Op: "get", Err: err}
	}
	return docstore.Shape(doc), nil
}

// Create stores a new task. title and date are required; completed defaults
// to false, priority to medium, createdAt is the current time.
func (r *TaskRepository) Create(ctx context.Context, in model.TaskInput) (map[string]any, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	fields, err := in.Fields()
	if err != nil {
		return nil, err
	}
	if _, ok := fields[model.FieldCompleted]; !ok {
		fields[model.FieldCompleted] = false
	}
	if _, ok := fields[model.FieldPriority]; !ok {
		fields[model.FieldPriority] = string(model.PriorityMedium)
	}
	fields[model.FieldCreatedAt] = r.now()

	r.logger.Debug("Inserting task", zap.String("title", *in.Title))

	doc, err := r.store.Create(ctx, model.Collection, fields)
	if err != nil {
		r.logger.Error("Failed to insert task", zap.String("title", *in.Title), zap.Error(err))
		return nil, &StoreError{Op: "create", Write: true, Err: err}
	}

	r.logger.Info("Task inserted successfully", zap.String("task_id", doc.ID))
	return docstore.Shape(doc), nil
}

// Update overwrites the sent fields of an existing task. A missing task is
// reported before the patch is validated. The write itself is conditional on
// the task still existing.
func (r *TaskRepository) Update(ctx context.Context, id string, in model.TaskInput) (map[string]any, error) {
	r.logger.Debug("Updating task", zap.String("task_id", id))

	if _, err := r.store.Get(ctx, model.Collection, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			r.logger.Info("Task to update not found", zap.String("task_id", id))
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to check task before update", zap.String("task_id", id), zap.Error(err))
		return nil, &StoreError{Op: "update", Write: true, Err: err}
	}

	if in.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", model.ErrInvalidTask)
	}
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	fields, err := in.Fields()
	if err != nil {
		return nil, err
	}

	doc, err := r.store.Update(ctx, model.Collection, id, fields)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			r.logger.Warn("Task deleted during update", zap.String("task_id", id))
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to update task", zap.String("task_id", id), zap.Error(err))
		return nil, &StoreError{Op: "update", Write: true, Err: err}
	}

	r.logger.Info("Task updated successfully", zap.String("task_id", id))
	return docstore.Shape(doc), nil
}

// Delete removes a task permanently.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debug("Deleting task", zap.String("task_id", id))

	if _, err := r.store.Get(ctx, model.Collection, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			r.logger.Info("Task to delete not found", zap.String("task_id", id))
			return ErrNotFound
		}
		r.logger.Error("Failed to check task before delete", zap.String("task_id", id), zap.Error(err))
		return &StoreError{Op: "delete", Err: err}
	}

	if err := r.store.Delete(ctx, model.Collection, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			r.logger.Warn("Task deleted concurrently", zap.String("task_id", id))
			return ErrNotFound
		}
		r.logger.Error("Failed to delete task", zap.String("task_id", id), zap.Error(err))
		return &StoreError{Op: "delete", Err: err}
	}

	r.logger.Info("Task deleted successfully", zap.String("task_id", id))
	return nil
}
