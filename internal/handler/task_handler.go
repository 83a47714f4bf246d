package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	mqcontracts "tasktracker/contracts/mq"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/metrics"
	"tasktracker/pkg/mq"
	"tasktracker/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const idempotencyScope = "task.create"

// IdempotencyKeys is satisfied by util.IdempotencyKeys.
type IdempotencyKeys interface {
	Acquire(ctx context.Context, scope, key string) (string, bool, error)
	Complete(ctx context.Context, scope, key, id string)
	Release(ctx context.Context, scope, key string)
}

type TaskHandler struct {
	repo      *repository.TaskRepository
	publisher mq.EventPublisher
	idem      IdempotencyKeys
	logger    *zap.Logger
}

// NewTaskHandler wires the task endpoints. idem may be nil to disable
// Idempotency-Key support.
func NewTaskHandler(repo *repository.TaskRepository, publisher mq.EventPublisher, idem IdempotencyKeys, logger *zap.Logger) *TaskHandler {
	if publisher == nil {
		publisher = mq.NoopPublisher{}
	}
	return &TaskHandler{repo: repo, publisher: publisher, idem: idem, logger: logger}
}

// errMalformedBody is what clients see for any body the decoder refuses; the
// decoder's own text names Go types and stays in the log.
var errMalformedBody = fmt.Errorf("%w: malformed request body", model.ErrInvalidTask)

// decodeTaskInput rejects unknown fields, mistyped values and trailing data.
func decodeTaskInput(c *gin.Context, log *zap.Logger) (model.TaskInput, error) {
	var in model.TaskInput
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		log.Warn("Failed to decode task body", zap.Error(err))
		return in, errMalformedBody
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		log.Warn("Task body has trailing data", zap.Error(err))
		return in, errMalformedBody
	}
	return in, nil
}

// ListTasks handles GET /api/tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	// date is accepted for client compatibility; filtering happens client side
	log.Info("ListTasks request received", zap.String("date", c.Query("date")))

	tasks, err := h.repo.List(c.Request.Context())
	if err != nil {
		log.Error("ListTasks: failed to fetch tasks", zap.Error(err))
		writeError(c, log, err, "Failed to fetch tasks")
		return
	}

	log.Info("ListTasks: success", zap.Int("task_count", len(tasks)))
	c.JSON(http.StatusOK, tasks)
}

// CreateTask handles POST /api/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithTrace(ctx, h.logger)

	in, err := decodeTaskInput(c, log)
	if err != nil {
		writeError(c, log, err, "")
		return
	}

	key := c.GetHeader("Idempotency-Key")
	if key != "" && h.idem != nil {
		existingID, first, err := h.idem.Acquire(ctx, idempotencyScope, key)
		if errors.Is(err, util.ErrKeyInFlight) {
			c.JSON(http.StatusConflict, gin.H{"message": "A request with this Idempotency-Key is in progress"})
			return
		}
		if !first {
			task, err := h.repo.Get(ctx, existingID)
			if err == nil {
				log.Info("CreateTask: replayed", zap.String("task_id", existingID))
				c.JSON(http.StatusCreated, task)
				return
			}
			log.Warn("CreateTask: replayed task no longer readable, creating again",
				zap.String("task_id", existingID), zap.Error(err))
		}
	}

	task, err := h.repo.Create(ctx, in)
	if err != nil {
		if key != "" && h.idem != nil {
			h.idem.Release(ctx, idempotencyScope, key)
		}
		log.Error("CreateTask: failed", zap.Error(err))
		writeError(c, log, err, "Failed to create task")
		return
	}

	id, _ := task["id"].(string)
	if key != "" && h.idem != nil {
		h.idem.Complete(ctx, idempotencyScope, key, id)
	}
	metrics.IncrementTaskLifecycle("created")

	payload := mqcontracts.TaskCreatedPayload{TaskID: id, Title: *in.Title}
	payload.Date, _ = model.ParseDate(*in.Date)
	payload.Priority, _ = task[model.FieldPriority].(string)
	payload.Category, _ = task[model.FieldCategory].(string)
	h.publish(ctx, log, mqcontracts.RoutingTaskCreated, payload)

	log.Info("CreateTask: success", zap.String("task_id", id))
	c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithTrace(ctx, h.logger)
	id := c.Param("id")

	in, err := decodeTaskInput(c, log)
	if err != nil {
		writeError(c, log, err, "")
		return
	}

	task, err := h.repo.Update(ctx, id, in)
	if err != nil {
		log.Error("UpdateTask: failed", zap.String("task_id", id), zap.Error(err))
		writeError(c, log, err, "Failed to update task")
		return
	}
	metrics.IncrementTaskLifecycle("updated")

	fields, _ := in.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	h.publish(ctx, log, mqcontracts.RoutingTaskUpdated, mqcontracts.TaskUpdatedPayload{
		TaskID:    id,
		Fields:    names,
		Completed: in.Completed,
	})

	log.Info("UpdateTask: success", zap.String("task_id", id))
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithTrace(ctx, h.logger)
	id := c.Param("id")

	if err := h.repo.Delete(ctx, id); err != nil {
		log.Error("DeleteTask: failed", zap.String("task_id", id), zap.Error(err))
		writeError(c, log, err, "Failed to delete task")
		return
	}
	metrics.IncrementTaskLifecycle("deleted")
	h.publish(ctx, log, mqcontracts.RoutingTaskDeleted, mqcontracts.TaskDeletedPayload{TaskID: id})

	log.Info("DeleteTask: success", zap.String("task_id", id))
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// publish never fails the request; the write already happened.
func (h *TaskHandler) publish(ctx context.Context, log *zap.Logger, routingKey string, payload any) {
	if err := h.publisher.Publish(ctx, routingKey, payload); err != nil {
		metrics.IncrementEventPublishFailure(routingKey)
		log.Error("Failed to publish task event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}
