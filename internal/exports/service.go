package exports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/apperr"
	"github.com/survey-app/backend/pkg/database"
	"github.com/survey-app/backend/pkg/queue"
	"github.com/survey-app/backend/pkg/storage"
)

const (
	msgExportNotFound = "Export not found"
	msgSurveyNotFound = "Survey not found"
)

// ErrDisabled is returned when exports have no queue or object storage configured.
var ErrDisabled = errors.New("exports are not configured")

// Store persists export records.
type Store interface {
	CreateExport(ctx context.Context, e *models.ResponseExport) error
	GetExport(ctx context.Context, id uuid.UUID) (*models.ResponseExport, error)
	CompleteExport(ctx context.Context, id uuid.UUID, key string, rows int) error
	FailExport(ctx context.Context, id uuid.UUID, reason string) error
}

// SurveyReader loads a survey with questions.
type SurveyReader interface {
	GetByID(ctx context.Context, id int64) (*models.Survey, error)
}

// DetailReader loads the responses of a survey with question and option texts.
type DetailReader interface {
	ListDetails(ctx context.Context, surveyID int64) ([]models.ResponseDetail, error)
}

// Enqueuer schedules export jobs.
type Enqueuer interface {
	EnqueueExport(ctx context.Context, p queue.ExportPayload) error
}

// ObjectStore keeps rendered exports.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	PresignDownload(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// Service schedules, renders and serves CSV exports of survey responses.
type Service struct {
	store   Store
	surveys SurveyReader
	details DetailReader
	queue   Enqueuer
	objects ObjectStore
	logger  *zap.Logger
}

// NewService creates an export service. With a nil queue or object store Request returns ErrDisabled.
func NewService(store Store, surveys SurveyReader, details DetailReader, q Enqueuer, objects ObjectStore, logger *zap.Logger) *Service {
	return &Service{store: store, surveys: surveys, details: details, queue: q, objects: objects, logger: logger}
}

// Enabled reports whether exports can be scheduled.
func (s *Service) Enabled() bool {
	return s.queue != nil && s.objects != nil
}

// Request records a pending export of surveyID and enqueues it.
func (s *Service) Request(ctx context.Context, surveyID, requestedBy int64) (*models.ResponseExport, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	if _, err := s.surveys.GetByID(ctx, surveyID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound(msgSurveyNotFound)
		}
		return nil, err
	}
	e := &models.ResponseExport{
		ID:          uuid.New(),
		SurveyID:    surveyID,
		RequestedBy: requestedBy,
		Status:      models.ExportPending,
	}
	if err := s.store.CreateExport(ctx, e); err != nil {
		return nil, err
	}
	if err := s.queue.EnqueueExport(ctx, queue.ExportPayload{ExportID: e.ID, SurveyID: surveyID}); err != nil {
		if ferr := s.store.FailExport(ctx, e.ID, "enqueue failed"); ferr != nil {
			s.logger.Error("mark export failed", zap.String("export_id", e.ID.String()), zap.Error(ferr))
		}
		return nil, fmt.Errorf("enqueue export: %w", err)
	}
	return e, nil
}

// Get returns an export. Completed exports carry a presigned download URL.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.ResponseExport, error) {
	e, err := s.store.GetExport(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound(msgExportNotFound)
		}
		return nil, err
	}
	if e.Status == models.ExportCompleted && e.S3Key != "" && s.objects != nil {
		url, err := s.objects.PresignDownload(ctx, e.S3Key)
		if err != nil {
			return nil, err
		}
		e.DownloadURL = url
	}
	return e, nil
}

// Process renders the export to CSV, uploads it and marks it completed. Completed exports are skipped.
func (s *Service) Process(ctx context.Context, id uuid.UUID) error {
	if s.objects == nil {
		return ErrDisabled
	}
	e, err := s.store.GetExport(ctx, id)
	if err != nil {
		return fmt.Errorf("load export %s: %w", id, err)
	}
	if e.Status == models.ExportCompleted {
		s.logger.Info("export already completed", zap.String("export_id", id.String()))
		return nil
	}
	survey, err := s.surveys.GetByID(ctx, e.SurveyID)
	if err != nil {
		return fmt.Errorf("load survey %d: %w", e.SurveyID, err)
	}
	details, err := s.details.ListDetails(ctx, e.SurveyID)
	if err != nil {
		return fmt.Errorf("load responses: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, survey, details); err != nil {
		return fmt.Errorf("render csv: %w", err)
	}
	key := storage.ExportKey(e.SurveyID, id.String())
	if err := s.objects.Upload(ctx, key, storage.ContentTypeCSV, &buf); err != nil {
		return err
	}
	if err := s.store.CompleteExport(ctx, id, key, len(details)); err != nil {
		if derr := s.objects.DeleteObject(ctx, key); derr != nil {
			s.logger.Warn("delete orphaned export object", zap.String("s3_key", key), zap.Error(derr))
		}
		return fmt.Errorf("complete export: %w", err)
	}
	s.logger.Info("export completed", zap.String("export_id", id.String()), zap.String("s3_key", key), zap.Int("rows", len(details)))
	return nil
}

// Fail marks an export failed after its retries are exhausted.
func (s *Service) Fail(ctx context.Context, id uuid.UUID, cause error) error {
	return s.store.FailExport(ctx, id, cause.Error())
}
