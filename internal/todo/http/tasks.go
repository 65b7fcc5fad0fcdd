package http

import (
	"net/http"

	"github.com/aussiebroadwan/todo/internal/todo/domain"
	"github.com/aussiebroadwan/todo/internal/todo/service"
	"github.com/aussiebroadwan/todo/pkg/httpx"
	"github.com/aussiebroadwan/todo/pkg/todosdk"
)

type TaskHandler struct {
	TaskService *service.TaskService
}

// HandleList returns the caller's tasks.
//
//	@Summary		List tasks
//	@Description	Returns the caller's tasks, oldest first.
//	@Tags			Tasks
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		todosdk.Task
//	@Failure		401	{object}	todosdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/tasks [get].
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.TaskService.List(r.Context(), httpx.AccountIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]todosdk.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTask(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate adds a task.
//
//	@Summary		Create task
//	@Description	Titles are 3 to 100 characters of letters, digits, spaces and punctuation,
//	@Description	unique per account ignoring case. An account holds at most 1000 tasks.
//	@Tags			Tasks
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		todosdk.CreateTaskRequest	true	"Task title"
//	@Success		201		{object}	todosdk.Task
//	@Failure		400		{object}	todosdk.ErrorResponse	"Invalid title, duplicate or quota reached"
//	@Failure		401		{object}	todosdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/tasks [post].
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req todosdk.CreateTaskRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	t, err := h.TaskService.Add(r.Context(), httpx.AccountIDFromContext(r.Context()), req.Title)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/tasks/"+t.ID)
	httpx.WriteJSON(w, http.StatusCreated, toTask(t))
}

// HandleGet returns one task.
//
//	@Summary		Get task
//	@Tags			Tasks
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Task ID"
//	@Success		200	{object}	todosdk.Task
//	@Failure		401	{object}	todosdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		404	{object}	todosdk.ErrorResponse	"Task not found"
//	@Router			/tasks/{id} [get].
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.TaskService.Get(r.Context(), httpx.AccountIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTask(t))
}

// HandleToggle flips a task's completion flag.
//
//	@Summary		Toggle task
//	@Tags			Tasks
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Task ID"
//	@Success		200	{object}	todosdk.Task
//	@Failure		401	{object}	todosdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		404	{object}	todosdk.ErrorResponse	"Task not found"
//	@Router			/tasks/{id}/toggle [put].
func (h *TaskHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	t, err := h.TaskService.Toggle(r.Context(), httpx.AccountIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTask(t))
}

// HandleDelete removes a task.
//
//	@Summary		Delete task
//	@Tags			Tasks
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Task ID"
//	@Success		204
//	@Failure		401	{object}	todosdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		404	{object}	todosdk.ErrorResponse	"Task not found"
//	@Router			/tasks/{id} [delete].
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.TaskService.Delete(r.Context(), httpx.AccountIDFromContext(r.Context()), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toTask(t domain.Task) todosdk.Task {
	return todosdk.Task{
		ID:         t.ID,
		Title:      t.Title,
		IsComplete: t.IsComplete,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}
