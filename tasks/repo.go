package tasks

import (
	"reflect"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// TaskRepository knows the task types that can be created by name, the
// parameters of a task are the JSON fields of its type
type TaskRepository struct {
	taskTypes map[string]TaskDefinition
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		taskTypes: make(map[string]TaskDefinition),
	}
}

func (r *TaskRepository) Register(name string, init TaskInitFunc) {
	r.RegisterWithProperties(name, init, TaskProperties{})
}

func (r *TaskRepository) RegisterWithProperties(name string, init TaskInitFunc, properties TaskProperties) {
	t := reflect.TypeOf(init())
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	log := logger.With(zap.String("type", name))
	var parameters []string
	for i := 0; i < t.NumField(); i++ {
		tag, found := t.Field(i).Tag.Lookup("json")
		if !found || len(tag) == 0 || tag == "-" {
			continue
		}
		parameters = append(parameters, strings.SplitN(tag, ",", 2)[0])
	}
	log.Info("Task type registered", zap.Strings("parameters", parameters))
	r.taskTypes[name] = TaskDefinition{
		Name:           name,
		TaskProperties: properties,
		init:           init,
		Parameters:     parameters,
	}
}

// DefinedTasks returns the registered task types sorted by name
func (r *TaskRepository) DefinedTasks() []TaskDefinition {
	return r.DefinedTasksWithFilter(func(TaskDefinition) bool { return true })
}

func (r *TaskRepository) DefinedTasksWithFilter(filter func(t TaskDefinition) bool) (tasks []TaskDefinition) {
	tasks = []TaskDefinition{}
	for _, d := range r.taskTypes {
		if filter(d) {
			tasks = append(tasks, d)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })
	return
}

func (r *TaskRepository) CreateTask(taskType string) (Task, error) {
	def, found := r.taskTypes[taskType]
	if !found {
		return nil, UndefinedTaskType(taskType)
	}
	return def.init(), nil
}
