package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseUpdateJobPayloadRoundTrip(t *testing.T) {
	original := CourseUpdateJobPayload{
		CourseID:  42,
		UpdatedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}

	restored, err := CourseUpdateJobPayloadFromMap(original.ToMap())
	require.NoError(t, err)

	assert.Equal(t, original.CourseID, restored.CourseID)
	assert.True(t, original.UpdatedAt.Equal(restored.UpdatedAt))
}

func TestJobStatusTransitions(t *testing.T) {
	job := &Job{
		ID:         "test-job",
		Type:       JobTypeCourseUpdateNotification,
		Status:     JobStatusPending,
		MaxRetries: DefaultMaxRetries,
	}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)
	assert.Empty(t, job.ErrorMsg)
}

func TestJobRetryAccounting(t *testing.T) {
	job := &Job{
		ID:         "retry-job",
		Type:       JobTypeCourseUpdateNotification,
		Status:     JobStatusPending,
		MaxRetries: 2,
	}

	job.MarkAsFailed("smtp unreachable")
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsFailed("smtp unreachable")
	assert.Equal(t, 2, job.RetryCount)
	assert.False(t, job.IsRetryable(), "retries are exhausted at MaxRetries")
}

func TestIsRetryableRequiresFailedStatus(t *testing.T) {
	job := &Job{Status: JobStatusProcessing, RetryCount: 0, MaxRetries: 3}
	assert.False(t, job.IsRetryable())
}
