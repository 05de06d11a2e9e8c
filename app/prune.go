package app

import (
	"context"

	"bitbucket.org/kleinnic74/geosnap/filesystem"
	"bitbucket.org/kleinnic74/geosnap/library"
	"bitbucket.org/kleinnic74/geosnap/library/boltstore"
	"bitbucket.org/kleinnic74/geosnap/tasks"
)

const pruneTaskType = "pruneMetadata"

// pruneTask removes the stored tags of files that do not exist anymore
type pruneTask struct {
	store *boltstore.BoltStore
}

func registerPruneTask(repo *tasks.TaskRepository, store *boltstore.BoltStore) {
	repo.RegisterWithProperties(pruneTaskType, func() tasks.Task {
		return pruneTask{store: store}
	}, tasks.TaskProperties{UserRunnable: true})
}

func (t pruneTask) Describe() string {
	return "Removing metadata of deleted files"
}

func (t pruneTask) Execute(ctx context.Context, executor tasks.TaskExecutor, md library.MetadataSource) error {
	_, err := t.store.Prune(ctx, filesystem.Local.Exists)
	return err
}
