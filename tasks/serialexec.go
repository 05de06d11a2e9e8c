package tasks

import (
	"context"
	"sort"
	"time"

	"bitbucket.org/kleinnic74/geosnap/library"
	"bitbucket.org/kleinnic74/geosnap/logging"
	"go.uber.org/zap"
)

type taskSubmission struct {
	task      Task
	exec      chan<- Execution
	submitted time.Time
}

type executionQuery chan<- []Execution

// serialTaskExecutor runs one task at a time in submission order. All state
// is owned by the DrainTasks loop.
type serialTaskExecutor struct {
	ids      TaskID
	submitCh chan taskSubmission
	queryCh  chan executionQuery
	done     chan struct{}

	md library.MetadataSource
}

func NewSerialTaskExecutor(md library.MetadataSource) TaskExecutor {
	return &serialTaskExecutor{
		md:       md,
		submitCh: make(chan taskSubmission),
		queryCh:  make(chan executionQuery),
		done:     make(chan struct{}),
	}
}

func (t *serialTaskExecutor) Submit(ctx context.Context, task Task) (Execution, error) {
	ch := make(chan Execution, 1)
	s := taskSubmission{task: task, exec: ch, submitted: time.Now()}
	select {
	case t.submitCh <- s:
		return <-ch, nil
	case <-t.done:
		return Execution{}, ErrExecutorNotRunning
	case <-ctx.Done():
		return Execution{}, ctx.Err()
	}
}

func (t *serialTaskExecutor) DrainTasks(ctx context.Context) {
	logger := logging.From(ctx).Named("TaskExecutor")
	queue := make(map[TaskID]Execution)
	taskCh := make(chan Execution)
	resCh := make(chan Execution)
	go func() {
		log := logger.Named("Worker")
		for e := range taskCh {
			log.Info("Executing task", zap.Uint64("taskID", uint64(e.ID)), zap.String("title", e.Title))
			err := e.task.Execute(ctx, t, t.md)
			e.Completed = time.Now()
			e.Error = errorString(err)
			if err != nil {
				e.Status = Error
			} else {
				e.Status = Completed
			}
			select {
			case resCh <- e:
			case <-ctx.Done():
			}
		}
		log.Info("Terminating")
	}()
	defer func() {
		close(t.done)
		close(taskCh)
	}()
	var pending []Execution
	busy := false
	for {
		select {
		case s := <-t.submitCh:
			id := t.ids
			t.ids++
			e := Execution{ID: id, Status: Pending, Submitted: s.submitted, task: s.task, Title: s.task.Describe()}
			logger.Info("Task submitted", zap.String("title", e.Title), zap.Uint64("taskID", uint64(id)))
			if !busy {
				e.Status = Running
				taskCh <- e
				busy = true
			} else {
				pending = append(pending, e)
			}
			queue[id] = e
			s.exec <- e
		case res := <-resCh:
			logger.Info("Task completed",
				zap.Uint64("taskID", uint64(res.ID)),
				zap.String("taskStatus", string(res.Status)),
				zap.String("error", res.Error))
			delete(queue, res.ID)
			busy = false
			if len(pending) > 0 {
				e := pending[0]
				pending = pending[1:]
				e.Status = Running
				taskCh <- e
				busy = true
				queue[e.ID] = e
			}
		case q := <-t.queryCh:
			executions := make([]Execution, 0, len(queue))
			for _, v := range queue {
				executions = append(executions, v)
			}
			sortExecutions(executions)
			q <- executions
		case <-ctx.Done():
			logger.Info("Task executor interrupted", zap.Int("pending", len(pending)))
			return
		}
	}
}

func (t *serialTaskExecutor) ListTasks(ctx context.Context) []Execution {
	resCh := make(chan []Execution, 1)
	select {
	case t.queryCh <- resCh:
		return <-resCh
	case <-t.done:
		return []Execution{}
	case <-ctx.Done():
		return []Execution{}
	}
}

func sortExecutions(executions []Execution) {
	sort.Slice(executions, func(i, j int) bool { return executions[i].ID < executions[j].ID })
}
