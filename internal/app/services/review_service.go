package services

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
	"github.com/monchobi/artschool/internal/pkg/cache"
	"github.com/monchobi/artschool/internal/pkg/email"
	"github.com/monchobi/artschool/internal/pkg/events"
	"github.com/monchobi/artschool/internal/pkg/filestorage"
	"github.com/monchobi/artschool/internal/pkg/helpers"
	"github.com/monchobi/artschool/internal/pkg/metrics"
)

// ReviewService defines the interface for class submission and review operations
type ReviewService interface {
	SubmitClass(ctx context.Context, details models.ClassDetails, submitterEmail string) (*models.Class, error)
	UploadClassImage(ctx context.Context, file *multipart.FileHeader) (string, error)
	ListSubmissions(ctx context.Context, filter models.SubmissionFilter) ([]*models.Class, error)
	GetSubmission(ctx context.Context, classID string) (*models.Class, error)
	SetStatus(ctx context.Context, classID string, status models.ClassStatus) (*models.Class, error)
	SetFeedback(ctx context.Context, classID string, feedback string) (*models.Class, error)
	ListApproved(ctx context.Context) ([]*models.ArchivedClass, error)
	ListDenied(ctx context.Context) ([]*models.ArchivedClass, error)
}

// reviewServiceImpl implements ReviewService
type reviewServiceImpl struct {
	classes   ClassStore
	storage   filestorage.FileStorage
	publisher events.Publisher
	cache     cache.Cache
	cacheTTL  time.Duration
	mailer    email.EmailService
	logger    zerolog.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	classes ClassStore,
	storage filestorage.FileStorage,
	publisher events.Publisher,
	cache cache.Cache,
	cacheTTL time.Duration,
	mailer email.EmailService,
	logger zerolog.Logger,
) ReviewService {
	return &reviewServiceImpl{
		classes:   classes,
		storage:   storage,
		publisher: publisher,
		cache:     cache,
		cacheTTL:  cacheTTL,
		mailer:    mailer,
		logger:    logger,
	}
}

// validateDetails validates submission data before database operations
func validateDetails(d models.ClassDetails) error {
	switch {
	case strings.TrimSpace(d.Title) == "":
		return apperrors.NewBadRequestError("title cannot be empty")
	case strings.TrimSpace(d.InstructorName) == "":
		return apperrors.NewBadRequestError("instructor name cannot be empty")
	case d.Price < 0:
		return apperrors.NewBadRequestError("price cannot be negative")
	case d.SeatsAvailable < 0:
		return apperrors.NewBadRequestError("seats cannot be negative")
	}
	return nil
}

// SubmitClass creates a pending class owned by submitterEmail.
func (s *reviewServiceImpl) SubmitClass(ctx context.Context, details models.ClassDetails, submitterEmail string) (*models.Class, error) {
	submitterEmail = helpers.NormalizeEmail(submitterEmail)
	if submitterEmail == "" {
		return nil, apperrors.NewBadRequestError("submitter email is required")
	}
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	now := helpers.NowUTC()
	class := &models.Class{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(details.Title),
		Description:     details.Description,
		ImageURL:        details.ImageURL,
		InstructorName:  strings.TrimSpace(details.InstructorName),
		InstructorEmail: submitterEmail,
		Price:           details.Price,
		SeatsAvailable:  details.SeatsAvailable,
		Status:          models.ClassStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.classes.Create(ctx, class); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.New(events.EventClassSubmitted, class.ID, events.ClassSubmittedPayload{
		ClassID:         class.ID,
		Title:           class.Title,
		InstructorEmail: class.InstructorEmail,
	}))
	s.logger.Info().Str("classID", class.ID).Str("instructor", submitterEmail).Msg("Class submitted for review")
	return class, nil
}

// UploadClassImage stores an image an instructor can reference from a submission.
func (s *reviewServiceImpl) UploadClassImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	return s.storage.SaveImage(ctx, file, "classes")
}

// ListSubmissions lists classes, most recent first, optionally for one instructor.
func (s *reviewServiceImpl) ListSubmissions(ctx context.Context, filter models.SubmissionFilter) ([]*models.Class, error) {
	filter.InstructorEmail = helpers.NormalizeEmail(filter.InstructorEmail)
	return s.classes.List(ctx, filter)
}

// GetSubmission retrieves a class by ID
func (s *reviewServiceImpl) GetSubmission(ctx context.Context, classID string) (*models.Class, error) {
	return s.classes.GetByID(ctx, classID)
}

// SetStatus moves a class to status. Only a change of the stored value
// archives the class, so repeating a decision never duplicates archive entries.
// Moving a reviewed class back to pending is rejected.
func (s *reviewServiceImpl) SetStatus(ctx context.Context, classID string, status models.ClassStatus) (*models.Class, error) {
	if _, ok := models.ParseClassStatus(string(status)); !ok {
		return nil, apperrors.ErrUnknownClassStatus
	}

	if !status.Archived() {
		current, err := s.classes.GetByID(ctx, classID)
		if err != nil {
			return nil, err
		}
		if !models.CanTransition(current.Status, status) {
			return nil, apperrors.ErrInvalidTransition
		}
		return current, nil
	}

	class, changed, err := s.classes.UpdateStatus(ctx, classID, status)
	if err != nil {
		return nil, err
	}
	if !changed {
		return class, nil
	}

	metrics.ObserveReviewTransition(string(status))
	s.invalidate(ctx, class.ID)
	s.publisher.Publish(ctx, events.New(events.EventClassStatusChanged, class.ID, events.ClassStatusChangedPayload{
		ClassID: class.ID,
		Status:  string(class.Status),
	}))
	if err := s.mailer.SendReviewDecision(class.InstructorEmail, class.InstructorName, class.Title, string(class.Status)); err != nil {
		s.logger.Warn().Err(err).Str("classID", class.ID).Msg("Failed to send review decision email")
	}

	s.logger.Info().Str("classID", class.ID).Str("status", string(class.Status)).Msg("Class status changed")
	return class, nil
}

// SetFeedback overwrites the reviewer feedback of a class. Status is untouched.
func (s *reviewServiceImpl) SetFeedback(ctx context.Context, classID string, feedback string) (*models.Class, error) {
	class, err := s.classes.UpdateFeedback(ctx, classID, feedback)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, class.ID)
	s.publisher.Publish(ctx, events.New(events.EventClassFeedbackSet, class.ID, events.ClassFeedbackSetPayload{ClassID: class.ID}))
	if feedback != "" {
		if err := s.mailer.SendReviewFeedback(class.InstructorEmail, class.InstructorName, class.Title, feedback); err != nil {
			s.logger.Warn().Err(err).Str("classID", class.ID).Msg("Failed to send feedback email")
		}
	}
	return class, nil
}

// ListApproved returns the approved archive, most recent first.
func (s *reviewServiceImpl) ListApproved(ctx context.Context) ([]*models.ArchivedClass, error) {
	var archived []*models.ArchivedClass
	if s.cachedGet(ctx, cache.KeyApprovedArchive, &archived) {
		return archived, nil
	}

	archived, err := s.classes.ListArchive(ctx, models.ClassStatusApproved)
	if err != nil {
		return nil, err
	}
	s.cachedSet(ctx, cache.KeyApprovedArchive, archived)
	return archived, nil
}

// ListDenied returns the denied archive, most recent first.
func (s *reviewServiceImpl) ListDenied(ctx context.Context) ([]*models.ArchivedClass, error) {
	return s.classes.ListArchive(ctx, models.ClassStatusDenied)
}

func (s *reviewServiceImpl) invalidate(ctx context.Context, classID string) {
	if err := s.cache.Delete(ctx, cache.KeyCatalog, cache.KeyApprovedArchive, cache.ClassKey(classID)); err != nil {
		s.logger.Warn().Err(err).Str("classID", classID).Msg("Failed to invalidate catalog cache")
	}
}

func (s *reviewServiceImpl) cachedGet(ctx context.Context, key string, dst any) bool {
	hit, err := s.cache.GetJSON(ctx, key, dst)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Catalog cache read failed")
		return false
	}
	metrics.ObserveCacheLookup(cacheLabel(key), hit)
	return hit
}

func (s *reviewServiceImpl) cachedSet(ctx context.Context, key string, v any) {
	if err := s.cache.SetJSON(ctx, key, v, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Catalog cache write failed")
	}
}
