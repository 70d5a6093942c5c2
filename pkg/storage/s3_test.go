package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExportKey(t *testing.T) {
	assert.Equal(t, "exports/survey-12/0b7c.csv", ExportKey(12, "0b7c"))
}

func TestPresignExpireDefaultsToFifteenMinutes(t *testing.T) {
	assert.Equal(t, 15*time.Minute, (&S3{}).presignExpire())
	assert.Equal(t, 5*time.Minute, (&S3{cfg: S3Config{PresignExpireMinutes: 5}}).presignExpire())
}
