package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"contenthub/internal/model"
	"contenthub/internal/repository"
	"contenthub/internal/service"
	"contenthub/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) repository.TreeStore {
	db, err := database.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrateTree(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return repository.NewGormTreeStore(db)
}

func addContent(t *testing.T, store repository.TreeStore, categoryID *string) {
	require.NoError(t, store.Contents().Create(context.Background(), &model.Content{
		ID: uuid.NewString(), CategoryID: categoryID, Name: "item", Keywords: []string{}, Checklist: []string{},
	}))
}

func TestOrphanSweeperRemovesOnlyOrphans(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	live := &model.Category{ID: uuid.NewString(), Name: "Live", Keywords: []string{}, Enabled: true}
	require.NoError(t, store.Categories().Create(ctx, live))
	ghost := uuid.NewString()

	addContent(t, store, &live.ID)
	addContent(t, store, &ghost)
	addContent(t, store, &ghost)
	addContent(t, store, nil)

	sweeper := NewOrphanSweeper(store, service.NoopPublisher{}, "@every 1h")
	removed, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	ids, err := store.Contents().DistinctCategoryIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{live.ID}, ids)

	removed, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

type countingJob struct {
	runs int32
}

func (j *countingJob) Name() string     { return "counting" }
func (j *countingJob) Schedule() string { return "@every 1s" }
func (j *countingJob) Run(context.Context) {
	atomic.AddInt32(&j.runs, 1)
}

func TestRunnerRunsScheduledJobs(t *testing.T) {
	job := &countingJob{}
	r := NewRunner(context.Background(), job)
	require.NoError(t, r.Start())
	defer r.Stop()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&job.runs) > 0 }, 3*time.Second, 50*time.Millisecond)
}

type badScheduleJob struct{ countingJob }

func (badScheduleJob) Schedule() string { return "not a schedule" }

func TestRunnerRejectsInvalidSchedule(t *testing.T) {
	r := NewRunner(context.Background(), &badScheduleJob{})
	assert.Error(t, r.Start())
}
