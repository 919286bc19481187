package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskhub/api/transport"
	"github.com/fastygo/taskhub/domain"
	"github.com/fastygo/taskhub/pkg/httpcontext"
	taskUC "github.com/fastygo/taskhub/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks
// @Tags tasks
// @Router /api/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	h.run(ctx, func(stdCtx context.Context, userID int64) ([]domain.Task, error) {
		return h.uc.List(stdCtx, userID, string(ctx.QueryArgs().Peek("search")))
	})
}

// @Summary Create task
// @Tags tasks
// @Router /api/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	var req transport.TaskCreateRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.run(ctx, func(stdCtx context.Context, userID int64) ([]domain.Task, error) {
		return h.uc.Create(stdCtx, userID, req.Title, req.Description)
	})
}

// @Summary Update task
// @Tags tasks
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}
	var req transport.TaskUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.run(ctx, func(stdCtx context.Context, userID int64) ([]domain.Task, error) {
		return h.uc.Update(stdCtx, userID, id, req.Title, req.Description, req.Status)
	})
}

// @Summary Delete task
// @Tags tasks
// @Router /api/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}
	h.run(ctx, func(stdCtx context.Context, userID int64) ([]domain.Task, error) {
		return h.uc.Delete(stdCtx, userID, id)
	})
}

// @Summary Mark task done
// @Tags tasks
// @Router /api/tasks/{id}/complete [patch]
func (h *TaskHandler) CompleteTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}
	h.run(ctx, func(stdCtx context.Context, userID int64) ([]domain.Task, error) {
		return h.uc.Complete(stdCtx, userID, id)
	})
}

// run resolves the authenticated user, calls op and writes the resulting list.
func (h *TaskHandler) run(ctx *fasthttp.RequestCtx, op func(context.Context, int64) ([]domain.Task, error)) {
	userID, ok := httpcontext.UserID(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(domain.ErrMissingToken.Message))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := op(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, tasks)
}

func (h *TaskHandler) taskID(ctx *fasthttp.RequestCtx) (int64, bool) {
	id, ok := parseID(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError("invalid task id"))
	}
	return id, ok
}
