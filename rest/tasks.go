package rest

import (
	"encoding/json"
	"net/http"

	"bitbucket.org/kleinnic74/geosnap/rest/cursor"
	"bitbucket.org/kleinnic74/geosnap/tasks"
	"github.com/gorilla/mux"
)

type TaskHandler struct {
	executor tasks.TaskExecutor
	repo     *tasks.TaskRepository
}

func NewTaskHandler(executor tasks.TaskExecutor, repo *tasks.TaskRepository) *TaskHandler {
	return &TaskHandler{executor: executor, repo: repo}
}

func (h *TaskHandler) InitRoutes(r *mux.Router) {
	r.HandleFunc("/taskdefinitions", h.getTaskDefinitions).Methods("GET").Name("/taskdefinitions")
	r.HandleFunc("/tasks", h.postTask).Methods("POST").Name("/tasks")
	r.HandleFunc("/tasks", h.listTasks).Methods("GET").Name("/tasks")
}

func (h *TaskHandler) getTaskDefinitions(w http.ResponseWriter, r *http.Request) {
	defined := h.repo.DefinedTasksWithFilter(func(t tasks.TaskDefinition) bool { return t.UserRunnable })
	Respond(r).WithJSON(w, http.StatusOK, &simplePayload{Data: defined})
}

type taskRequest struct {
	Type       string          `json:"type"`
	Parameters json.RawMessage `json:"parameters"`
}

func (h *TaskHandler) postTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.parseTask(r)
	if err != nil {
		Respond(r).WithError(w, http.StatusBadRequest, err)
		return
	}
	execution, err := h.executor.Submit(r.Context(), task)
	if err != nil {
		Respond(r).WithError(w, http.StatusServiceUnavailable, err)
		return
	}
	Respond(r).WithJSON(w, http.StatusAccepted, execution)
}

func (h *TaskHandler) listTasks(w http.ResponseWriter, r *http.Request) {
	Respond(r).WithJSON(w, http.StatusOK, cursor.Unpaged(h.executor.ListTasks(r.Context())))
}

func (h *TaskHandler) parseTask(r *http.Request) (t tasks.Task, err error) {
	var tmp taskRequest
	if err = decodeBody(r, &tmp); err != nil {
		return
	}
	if t, err = h.repo.CreateTask(tmp.Type); err != nil {
		return
	}
	if len(tmp.Parameters) > 0 {
		err = json.Unmarshal(tmp.Parameters, t)
	}
	return
}
