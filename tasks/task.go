// Package tasks runs background work on the photo collection one task at a
// time
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/kleinnic74/geosnap/library"
	"bitbucket.org/kleinnic74/geosnap/logging"
)

type Task interface {
	Describe() string
	Execute(context.Context, TaskExecutor, library.MetadataSource) error
}

type TaskInitFunc func() Task

type TaskProperties struct {
	UserRunnable bool `json:"userRunnable"`
}

type TaskDefinition struct {
	TaskProperties
	Name       string `json:"name"`
	init       TaskInitFunc
	Parameters []string `json:"parameters,omitempty"`
}

var logger = logging.From(context.Background()).Named("tasks")

type UndefinedTaskType string

func (err UndefinedTaskType) Error() string {
	return fmt.Sprintf("Undefined task type '%s'", string(err))
}

type ExecutionStatus string

const (
	Pending   = ExecutionStatus("pending")
	Running   = ExecutionStatus("running")
	Completed = ExecutionStatus("completed")
	Error     = ExecutionStatus("error")
)

type TaskID uint64

type Execution struct {
	ID        TaskID          `json:"id"`
	Title     string          `json:"title"`
	Status    ExecutionStatus `json:"status"`
	Submitted time.Time       `json:"submitted,omitempty"`
	Completed time.Time       `json:"completed,omitempty"`
	Error     string          `json:"error,omitempty"`
	task      Task
}

type TaskExecutor interface {
	Submit(context.Context, Task) (Execution, error)
	ListTasks(context.Context) []Execution
	DrainTasks(context.Context)
}

var ErrExecutorNotRunning = errors.New("TaskExecutor is not running")

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
