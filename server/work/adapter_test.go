package work

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Daskott/addressbook/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// safeBuffer guards a bytes.Buffer shared with worker goroutines
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) WriteString(s string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.WriteString(s)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPerform(t *testing.T) {
	models.InitializeTestDb()

	workerPool := NewWorkerAdapter("UTC", true)
	outputBuffer := &safeBuffer{}

	// Register job function
	writeToBuffer := func(args map[string]interface{}) error {
		_, err := outputBuffer.WriteString("Hello " + args["name"].(string))
		return err
	}
	err := workerPool.Register("write_to_buffer", writeToBuffer)
	require.Nil(t, err)

	err = workerPool.Register("write_to_buffer", writeToBuffer)
	assert.ErrorIs(t, err, ErrDuplicateHandler)

	err = workerPool.Perform(JobParams{
		Name:    "write_to_buffer",
		Handler: "write_to_buffer",
		Args:    map[string]interface{}{"name": "Mike"},
	})
	assert.Nil(t, err)

	// A duplicate is dropped without an error
	err = workerPool.Perform(JobParams{
		Name:    "write_to_buffer",
		Handler: "write_to_buffer",
		Args:    map[string]interface{}{"name": "Harvey"},
	})
	assert.Nil(t, err)
	assert.Empty(t, outputBuffer.String(), "Expected outputBuffer to be empty before workers start")

	workerPool.Start()

	// Wait for job to be processed
	time.Sleep(2 * time.Second)

	workerPool.Stop()

	assert.Equal(t, "Hello Mike", outputBuffer.String(), "Expected job to write to outputBuffer once")

	jobs, err := models.FindJobsByName("write_to_buffer")
	require.Nil(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.SUCCESSFUL_JOB, jobs[0].JobStatus.Name)
}

func TestFailingJobIsRetriedUntilDead(t *testing.T) {
	models.InitializeTestDb()

	workerPool := NewWorkerAdapter("UTC", true)

	attempts := 0
	mu := sync.Mutex{}
	err := workerPool.Register("always_fails", func(map[string]interface{}) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		return errors.New("boom")
	})
	require.Nil(t, err)

	err = workerPool.Register("panics", func(map[string]interface{}) error {
		panic("unexpected")
	})
	require.Nil(t, err)

	assert.Nil(t, workerPool.Perform(JobParams{Name: "always_fails", Handler: "always_fails"}))
	assert.Nil(t, workerPool.Perform(JobParams{Name: "panics", Handler: "panics"}))
	assert.Nil(t, workerPool.Perform(JobParams{Name: "unknown", Handler: "not_registered"}))

	workerPool.Start()
	time.Sleep(3 * time.Second)
	workerPool.Stop()

	mu.Lock()
	assert.Equal(t, MAX_FAILS, attempts, "Should stop retrying after MAX_FAILS attempts")
	mu.Unlock()

	for _, name := range []string{"always_fails", "panics", "unknown"} {
		jobs, err := models.FindJobsByName(name)
		require.Nil(t, err)
		require.Len(t, jobs, 1, name)
		assert.Equal(t, models.DEAD_JOB, jobs[0].JobStatus.Name, name)
		assert.Equal(t, MAX_FAILS, jobs[0].Fails, name)
	}
}

func TestPeriodicallyPerform(t *testing.T) {
	models.InitializeTestDb()

	workerPool := NewWorkerAdapter("UTC", true)

	err := workerPool.PeriodicallyPerform("0 9 * * *", JobParams{Name: "daily", Handler: "daily"})
	assert.Nil(t, err)

	// Rescheduling under the same name replaces the job
	err = workerPool.PeriodicallyPerform("30 8 * * *", JobParams{Name: "daily", Handler: "daily"})
	assert.Nil(t, err)

	err = workerPool.PeriodicallyPerform("not a cron", JobParams{Name: "broken", Handler: "daily"})
	assert.NotNil(t, err)

	workerPool.RemovePeriodicJob("daily")
	workerPool.RemovePeriodicJob("never-scheduled")
}
