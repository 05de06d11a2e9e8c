package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"bitbucket.org/kleinnic74/geosnap/domain/gps"
	"bitbucket.org/kleinnic74/geosnap/domain/tags"
	"bitbucket.org/kleinnic74/geosnap/filesystem"
	"bitbucket.org/kleinnic74/geosnap/library"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMetadata struct {
	lock    sync.Mutex
	visited []library.PhotoPath
}

func (m *recordingMetadata) Tags(ctx context.Context, path library.PhotoPath) tags.Set {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.visited = append(m.visited, path)
	return tags.Set{}
}

func (m *recordingMetadata) GPS(ctx context.Context, path library.PhotoPath) *gps.Record {
	if path == "/located.jpg" {
		return &gps.Record{Latitude: 1, Longitude: 2}
	}
	return nil
}

func (m *recordingMetadata) Stat(path library.PhotoPath) (filesystem.FileInfo, error) {
	return filesystem.FileInfo{}, errors.New("Not implemented")
}

func (m *recordingMetadata) Exists(path library.PhotoPath) bool { return true }

func (m *recordingMetadata) ImageConfig(path library.PhotoPath) (image.Config, error) {
	return image.Config{}, errors.New("Not implemented")
}

func (m *recordingMetadata) Forget(paths ...library.PhotoPath) {}

type blockingTask struct {
	started chan struct{}
	release chan struct{}
}

func (t blockingTask) Describe() string { return "blocking" }

func (t blockingTask) Execute(ctx context.Context, executor TaskExecutor, md library.MetadataSource) error {
	close(t.started)
	select {
	case <-t.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestPrefetchTask(t *testing.T) {
	md := &recordingMetadata{}
	exec := NewInlineExecutor(md)
	task := NewPrefetchTask("/a.jpg", "/located.jpg")
	e, err := exec.Submit(context.Background(), task)
	if err != nil {
		t.Fatalf("Failed to submit task: %s", err)
	}
	assert.Equal(t, Completed, e.Status)
	assert.Equal(t, "Reading metadata of 2 photos", e.Title)
	assert.Equal(t, []library.PhotoPath{"/a.jpg", "/located.jpg"}, md.visited)
	assert.Len(t, exec.ListTasks(context.Background()), 1)
}

type collectionMetadata struct {
	*recordingMetadata
	members map[library.PhotoPath]bool
}

func (m collectionMetadata) Contains(path library.PhotoPath) bool {
	return m.members[path]
}

func TestPrefetchTaskSkipsRemovedPhotos(t *testing.T) {
	md := collectionMetadata{
		recordingMetadata: &recordingMetadata{},
		members:           map[library.PhotoPath]bool{"/kept.jpg": true},
	}
	err := NewPrefetchTask("/removed.jpg", "/kept.jpg").Execute(context.Background(), nil, md)
	require.NoError(t, err)
	assert.Equal(t, []library.PhotoPath{"/kept.jpg"}, md.visited)
}

func TestPrefetchTaskStopsWhenCancelled(t *testing.T) {
	md := &recordingMetadata{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewPrefetchTask("/a.jpg").Execute(ctx, nil, md)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, md.visited)
}

func TestSerialExecutorRunsTasksInOrder(t *testing.T) {
	md := &recordingMetadata{}
	exec := NewSerialTaskExecutor(md)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go exec.DrainTasks(ctx)

	first := blockingTask{started: make(chan struct{}), release: make(chan struct{})}
	e1, err := exec.Submit(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, Running, e1.Status)
	<-first.started

	e2, err := exec.Submit(ctx, NewPrefetchTask("/b.jpg"))
	require.NoError(t, err)
	assert.Equal(t, Pending, e2.Status)

	pending := exec.ListTasks(ctx)
	require.Len(t, pending, 2)
	assert.Equal(t, e1.ID, pending[0].ID)
	assert.Equal(t, e2.ID, pending[1].ID)

	close(first.release)
	assert.Eventually(t, func() bool {
		return len(exec.ListTasks(ctx)) == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []library.PhotoPath{"/b.jpg"}, md.visited)
}

func TestSerialExecutorStopped(t *testing.T) {
	exec := NewSerialTaskExecutor(&recordingMetadata{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		exec.DrainTasks(ctx)
		close(done)
	}()
	cancel()
	<-done
	_, err := exec.Submit(context.Background(), NewPrefetchTask())
	assert.ErrorIs(t, err, ErrExecutorNotRunning)
	assert.Empty(t, exec.ListTasks(context.Background()))
}

func TestRepositoryCreatesTasksByName(t *testing.T) {
	repo := NewTaskRepository()
	RegisterTasks(repo)

	defined := repo.DefinedTasks()
	require.Len(t, defined, 1)
	assert.Equal(t, PrefetchTaskType, defined[0].Name)
	assert.Equal(t, []string{"paths"}, defined[0].Parameters)
	assert.True(t, defined[0].UserRunnable)

	task, err := repo.CreateTask(PrefetchTaskType)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(`{"paths":["/x.jpg"]}`), task))
	assert.Equal(t, &PrefetchTask{Paths: []string{"/x.jpg"}}, task)

	_, err = repo.CreateTask("import")
	assert.Equal(t, UndefinedTaskType("import"), err)
}
