package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportStatus tracks a CSV export job.
type ExportStatus string

const (
	ExportPending   ExportStatus = "pending"
	ExportCompleted ExportStatus = "completed"
	ExportFailed    ExportStatus = "failed"
)

// ResponseExport is a request to render a survey's responses to CSV in object storage.
type ResponseExport struct {
	ID          uuid.UUID    `json:"id"`
	SurveyID    int64        `json:"surveyId"`
	RequestedBy int64        `json:"requestedBy"`
	Status      ExportStatus `json:"status"`
	S3Key       string       `json:"s3Key,omitempty"`
	RowCount    int          `json:"rowCount"`
	Error       string       `json:"error,omitempty"`
	DownloadURL string       `json:"downloadUrl,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
