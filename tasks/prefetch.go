package tasks

import (
	"context"
	"fmt"

	"bitbucket.org/kleinnic74/geosnap/library"
	"bitbucket.org/kleinnic74/geosnap/logging"
	"go.uber.org/zap"
)

const PrefetchTaskType = "prefetch"

// PrefetchTask reads the tags and GPS records of photos so that sorting and
// filtering them later is served from the caches. When the metadata source
// implements library.Membership, photos no longer in the collection are
// skipped.
type PrefetchTask struct {
	Paths []string `json:"paths"`
}

func NewPrefetchTask(paths ...library.PhotoPath) PrefetchTask {
	t := PrefetchTask{Paths: make([]string, len(paths))}
	for i, p := range paths {
		t.Paths[i] = string(p)
	}
	return t
}

func (t PrefetchTask) Describe() string {
	return fmt.Sprintf("Reading metadata of %d photos", len(t.Paths))
}

func (t PrefetchTask) Execute(ctx context.Context, executor TaskExecutor, md library.MetadataSource) error {
	log := logging.From(ctx).Named("prefetch")
	members, bound := md.(library.Membership)
	located, skipped := 0, 0
	for i, p := range t.Paths {
		if err := ctx.Err(); err != nil {
			log.Info("Prefetch interrupted", zap.Int("done", i), zap.Int("total", len(t.Paths)))
			return err
		}
		path := library.PhotoPath(p)
		if bound && !members.Contains(path) {
			skipped++
			continue
		}
		md.Tags(ctx, path)
		if md.GPS(ctx, path) != nil {
			located++
		}
	}
	log.Info("Prefetch done", zap.Int("photos", len(t.Paths)), zap.Int("located", located), zap.Int("skipped", skipped))
	return nil
}

// RegisterTasks registers the task types that can be started by name
func RegisterTasks(repo *TaskRepository) {
	repo.RegisterWithProperties(PrefetchTaskType, func() Task {
		return &PrefetchTask{}
	}, TaskProperties{UserRunnable: true})
}
