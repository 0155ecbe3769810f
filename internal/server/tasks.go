package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"multi-tenant-crm/backend/internal/mediator"
	"multi-tenant-crm/backend/internal/server/response"
	taskdomain "multi-tenant-crm/backend/internal/task/domain"
	taskhandler "multi-tenant-crm/backend/internal/task/handler"
)

type createTaskRequest struct {
	DealID      string  `json:"deal_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	IsDone      *bool   `json:"is_done"`
}

// dueDate parses an optional due_date body field.
func dueDate(v *string) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	t, err := parseTime(*v)
	if err != nil {
		return nil, &requestError{Param: "due_date", Reason: "must be a date (YYYY-MM-DD) or an RFC 3339 timestamp"}
	}
	return &t, nil
}

// GET /api/v1/tasks
// Filters: deal_id, is_done, due_from, due_to plus the common list parameters.
func (a *api) listTasks(c *gin.Context) {
	f, err := listFilter(c, a.defaultPageSize, a.maxPageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	q := taskhandler.GetTasks{Caller: caller(c), Filter: f}
	if q.DealID, err = queryUUID(c, "deal_id"); err != nil {
		response.Error(c, err)
		return
	}
	if q.IsDone, err = queryBool(c, "is_done"); err != nil {
		response.Error(c, err)
		return
	}
	if q.DueFrom, err = queryTime(c, "due_from"); err != nil {
		response.Error(c, err)
		return
	}
	if q.DueTo, err = queryTime(c, "due_to"); err != nil {
		response.Error(c, err)
		return
	}
	page, err := mediator.Ask[*taskhandler.TaskPage](c.Request.Context(), a.m, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, pageDTO[taskDTO]{
		Items:    mapItems(page.Items, toTaskDTO),
		Total:    page.Total,
		Page:     f.Page,
		PageSize: f.PageSize,
	})
}

// POST /api/v1/tasks
func (a *api) createTask(c *gin.Context) {
	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := checkUUID("deal_id", req.DealID); err != nil {
		response.Error(c, err)
		return
	}
	due, err := dueDate(req.DueDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	task, err := mediator.SendOne[*taskdomain.Task](c.Request.Context(), a.m, taskhandler.CreateTask{
		Caller:      caller(c),
		DealID:      req.DealID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toTaskDTO(task))
}

// GET /api/v1/tasks/:id
func (a *api) getTask(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	task, err := mediator.Ask[*taskdomain.Task](c.Request.Context(), a.m, taskhandler.GetTaskByID{Caller: caller(c), TaskID: id})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toTaskDTO(task))
}

// PATCH /api/v1/tasks/:id
func (a *api) updateTask(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req updateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	due, err := dueDate(req.DueDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	task, err := mediator.SendOne[*taskdomain.Task](c.Request.Context(), a.m, taskhandler.UpdateTask{
		Caller:      caller(c),
		TaskID:      id,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		IsDone:      req.IsDone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toTaskDTO(task))
}
