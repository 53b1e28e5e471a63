package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   JobStatus
		expected string
	}{
		{"Pending", JobStatusPending, "pending"},
		{"Processing", JobStatusProcessing, "processing"},
		{"Completed", JobStatusCompleted, "completed"},
		{"Failed", JobStatusFailed, "failed"},
		{"Retrying", JobStatusRetrying, "retrying"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.status))
		})
	}
	assert.Equal(t, "send_mail", string(JobTypeSendMail))
}

func TestJob_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		retryable bool
	}{
		{"Failed job with retries remaining", &Job{Status: JobStatusFailed, RetryCount: 1, MaxRetries: 3}, true},
		{"Failed job with no retries remaining", &Job{Status: JobStatusFailed, RetryCount: 3, MaxRetries: 3}, false},
		{"Completed job", &Job{Status: JobStatusCompleted, RetryCount: 1, MaxRetries: 3}, false},
		{"Pending job", &Job{Status: JobStatusPending, MaxRetries: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.IsRetryable())
		})
	}
}

func TestJob_Lifecycle(t *testing.T) {
	job := &Job{Status: JobStatusPending, MaxRetries: 2}
	before := time.Now()

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)
	assert.False(t, job.ProcessedAt.Before(before))

	job.MarkAsFailed("smtp: connection refused")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "smtp: connection refused", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)
	assert.Empty(t, job.ErrorMsg)
}

func TestMailJobPayloadFromMap(t *testing.T) {
	data := map[string]interface{}{
		"to":      "jane@example.com",
		"subject": "Your account has been suspended",
		"body":    "...",
		"kind":    MailKindAccountSuspended,
	}

	payload, err := MailJobPayloadFromMap(data)
	require.NoError(t, err)
	assert.Equal(t, &MailJobPayload{
		To:      "jane@example.com",
		Subject: "Your account has been suspended",
		Body:    "...",
		Kind:    MailKindAccountSuspended,
	}, payload)
}

func TestMailJobPayloadFromMap_InvalidData(t *testing.T) {
	payload, err := MailJobPayloadFromMap(map[string]interface{}{"to": make(chan int)})
	assert.Error(t, err)
	assert.Nil(t, payload)

	payload, err = MailJobPayloadFromMap(map[string]interface{}{"to": 42})
	assert.Error(t, err)
	assert.Nil(t, payload)
}
