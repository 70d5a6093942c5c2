package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastAttempt(t *testing.T) {
	job := &Job{}
	for i := 0; i < MaxRetries-1; i++ {
		assert.False(t, job.LastAttempt(), "attempt %d", job.Attempt)
		job.Attempt++
	}
	assert.True(t, job.LastAttempt())
}
