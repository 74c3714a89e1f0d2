package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookscanner/internal/config"
)

func newTestClient(t *testing.T) (*Client, string) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, tmpDir
}

func TestNewClient(t *testing.T) {
	_, tmpDir := newTestClient(t)

	_, err := os.Stat(filepath.Join(tmpDir, "test-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")
}

func TestTasksDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "books-tasks.db"), TasksDBPath(filepath.Join("data", "books.db")))
	assert.Equal(t, "books-tasks.db", TasksDBPath("books"))
}

func TestClientStartStop(t *testing.T) {
	client, _ := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestClientStopBeforeStart(t *testing.T) {
	client, _ := newTestClient(t)
	assert.True(t, client.Stop(context.Background()))
}

type fakeFetcher struct {
	done chan CacheCoverTask
	err  error
}

func (f *fakeFetcher) Prefetch(_ context.Context, id uint, url string) error {
	f.done <- CacheCoverTask{RecordID: id, CoverURL: url}
	return f.err
}

func TestEnqueueCover(t *testing.T) {
	client, _ := newTestClient(t)

	fetcher := &fakeFetcher{done: make(chan CacheCoverTask, 1)}
	client.Register(NewCacheCoverQueue(fetcher))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	require.NoError(t, client.EnqueueCover(ctx, 42, "https://covers.example/42.jpg"))

	select {
	case got := <-fetcher.done:
		assert.Equal(t, CacheCoverTask{RecordID: 42, CoverURL: "https://covers.example/42.jpg"}, got)
	case <-time.After(5 * time.Second):
		t.Fatal("cover task was not executed within timeout")
	}
}

func TestCacheCoverProcessor(t *testing.T) {
	fetcher := &fakeFetcher{done: make(chan CacheCoverTask, 1), err: errors.New("status 500")}
	process := CacheCoverProcessor(fetcher)

	err := process(context.Background(), CacheCoverTask{RecordID: 7, CoverURL: "https://x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 7")

	err = CacheCoverProcessor(nil)(context.Background(), CacheCoverTask{RecordID: 7})
	assert.Error(t, err)
}

// TestTask is a simple task for testing
type TestTask struct {
	Value string `json:"value"`
}

func (t TestTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "test_task",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestTaskEnqueue(t *testing.T) {
	client, _ := newTestClient(t)

	executed := make(chan string, 1)
	client.Register(backlite.NewQueue(func(ctx context.Context, task TestTask) error {
		executed <- task.Value
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	ids, err := client.Add(TestTask{Value: "hello"}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	select {
	case val := <-executed:
		assert.Equal(t, "hello", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestCacheCoverTaskConfig(t *testing.T) {
	cfg := CacheCoverTask{}.Config()

	assert.Equal(t, "cache_cover", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Backoff)
	assert.Equal(t, time.Minute, cfg.Timeout)
	require.NotNil(t, cfg.Retention)
	assert.Equal(t, 24*time.Hour, cfg.Retention.Duration)
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.Tasks{Workers: 4})
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)

	assert.Equal(t, DefaultConfig(), FromConfig(config.Tasks{}))
}
