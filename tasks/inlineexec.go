package tasks

import (
	"context"
	"sync"
	"time"

	"bitbucket.org/kleinnic74/geosnap/library"
)

type inlineExecutor struct {
	lock       sync.Mutex
	nextID     TaskID
	executions []Execution
	md         library.MetadataSource
}

// NewInlineExecutor returns an executor running each task synchronously
// inside Submit. ListTasks returns all executions ever submitted.
func NewInlineExecutor(md library.MetadataSource) TaskExecutor {
	return &inlineExecutor{executions: []Execution{}, md: md}
}

func (exec *inlineExecutor) Submit(ctx context.Context, t Task) (Execution, error) {
	exec.lock.Lock()
	e := Execution{ID: exec.nextID, task: t, Title: t.Describe(), Status: Running, Submitted: time.Now()}
	exec.nextID++
	exec.lock.Unlock()

	err := t.Execute(ctx, exec, exec.md)
	e.Completed = time.Now()
	e.Error = errorString(err)
	if err != nil {
		e.Status = Error
	} else {
		e.Status = Completed
	}
	exec.lock.Lock()
	exec.executions = append(exec.executions, e)
	exec.lock.Unlock()
	return e, nil
}

func (exec *inlineExecutor) ListTasks(ctx context.Context) []Execution {
	exec.lock.Lock()
	defer exec.lock.Unlock()
	return append([]Execution{}, exec.executions...)
}

func (exec *inlineExecutor) DrainTasks(ctx context.Context) {}
