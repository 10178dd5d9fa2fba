package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/config"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	// Verify tasks database was created
	_, err = os.Stat(filepath.Join(tmpDir, "test-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")
	assert.NoError(t, client.Ping(context.Background()))

	err = client.Close()
	assert.NoError(t, err)
}

func TestDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "bookshelf-tasks.db"), DBPath("data/bookshelf.db"))
	assert.Equal(t, "shelf-tasks", DBPath("shelf"))
}

func TestClientStartStop(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.False(t, client.Running())
	go client.Start(ctx)

	// Give it time to start
	time.Sleep(50 * time.Millisecond)
	assert.True(t, client.Running())

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	success := client.Stop(stopCtx)
	assert.True(t, success, "stop should succeed gracefully")
	assert.False(t, client.Running())
}

type recordingNormalizer struct {
	mu    sync.Mutex
	calls chan uint
	err   error
}

func (r *recordingNormalizer) NormalizePositions(ctx context.Context, owner uint) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls <- owner
	return 2, r.err
}

func TestNormalizePositionsTask_Enqueue(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	normalizer := &recordingNormalizer{calls: make(chan uint, 1)}
	client.Register(NewNormalizePositionsQueue(normalizer, cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	ids, err := client.Add(NormalizePositionsTask{UserID: 42}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	select {
	case owner := <-normalizer.calls:
		assert.Equal(t, uint(42), owner)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestNormalizePositionsProcessor(t *testing.T) {
	normalizer := &recordingNormalizer{calls: make(chan uint, 1), err: errors.New("locked")}
	process := NormalizePositionsProcessor(normalizer)

	err := process(context.Background(), NormalizePositionsTask{UserID: 3})

	assert.ErrorContains(t, err, "user 3")
	assert.Equal(t, uint(3), <-normalizer.calls)

	assert.Error(t, NormalizePositionsProcessor(nil)(context.Background(), NormalizePositionsTask{}))
}

func TestNormalizePositionsTaskConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRetries = 5
	NewNormalizePositionsQueue(nil, cfg)
	t.Cleanup(func() { NewNormalizePositionsQueue(nil, DefaultConfig()) })

	queueCfg := NormalizePositionsTask{UserID: 1}.Config()

	assert.Equal(t, NormalizePositionsQueue, queueCfg.Name)
	assert.Equal(t, 5, queueCfg.MaxAttempts)
	assert.Equal(t, time.Minute, queueCfg.Backoff)
	assert.Equal(t, 5*time.Minute, queueCfg.Timeout)
	assert.NotNil(t, queueCfg.Retention)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.Tasks{Workers: 4, TaskTimeout: time.Minute})

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 3, cfg.MaxRetries, "unset values keep defaults")
}

var _ backlite.Task = NormalizePositionsTask{}
