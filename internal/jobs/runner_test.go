package jobs

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
)

type blockingJob struct {
	runs    atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (b *blockingJob) Run() {
	b.runs.Add(1)
	close(b.started)
	<-b.release
}

func TestRunExclusive_SkipsRunningJob(t *testing.T) {
	var mu sync.Mutex
	running := mapset.NewSet[Job]()
	job := &blockingJob{started: make(chan struct{}), release: make(chan struct{})}

	done := make(chan struct{})
	go func() {
		defer close(done)
		runExclusive[Job](&mu, running, job)
	}()
	<-job.started

	// the second run returns at once and releases the lock
	runExclusive[Job](&mu, running, job)
	assert.Equal(t, int32(1), job.runs.Load())
	assert.True(t, mu.TryLock())
	mu.Unlock()

	close(job.release)
	<-done
	assert.False(t, running.Contains(job))
}

type countingJob struct {
	schedule string
	runs     atomic.Int32
}

func (c *countingJob) Schedule() string { return c.schedule }
func (c *countingJob) Run()             { c.runs.Add(1) }

func TestTaskExecutor_RunsCronJobs(t *testing.T) {
	job := &countingJob{schedule: "@every 1s"}
	executor := NewTaskExecutor(nil, []CronJob{job})
	executor.Run()
	defer executor.Stop()

	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestTaskExecutor_InvalidSchedule(t *testing.T) {
	executor := NewTaskExecutor(nil, []CronJob{&countingJob{schedule: "every day"}})
	assert.Panics(t, executor.Run)
}
