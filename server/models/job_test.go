package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUniqueJobByName(t *testing.T) {
	InitializeTestDb()

	err := CreateUniqueJobByName("suits", "donna", `{"first_name":"mike"}`)
	require.Nil(t, err)

	err = CreateUniqueJobByName("suits", "donna", `{}`)
	assert.ErrorIs(t, err, ErrDuplicateJob, "Should not queue a job twice while it's enqueued")

	job, err := NextJob(ENQUEUED_JOB, false)
	require.Nil(t, err)
	assert.Equal(t, "suits", job.Name)
	assert.Contains(t, job.Args, "mike")

	claimed, err := job.MarkAsClaimed()
	require.Nil(t, err)
	assert.True(t, claimed)

	claimed, err = job.MarkAsClaimed()
	require.Nil(t, err)
	assert.False(t, claimed, "Should only be claimed once")

	err = CreateUniqueJobByName("suits", "donna", `{}`)
	assert.ErrorIs(t, err, ErrDuplicateJob, "Should not queue a job twice while it's in-progress")

	successful, err := FindJobStatus(SUCCESSFUL_JOB)
	require.Nil(t, err)
	require.Nil(t, job.Update(map[string]interface{}{"claimed": false, "job_status_id": successful.ID}))

	err = CreateUniqueJobByName("suits", "donna", `{}`)
	assert.Nil(t, err, "Should queue the job again once the previous run is done")

	jobs, err := FindJobsByName("suits")
	require.Nil(t, err)
	assert.Len(t, jobs, 2)
}
