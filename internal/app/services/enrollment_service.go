package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/monchobi/artschool/internal/app/auth"
	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
	"github.com/monchobi/artschool/internal/pkg/cache"
	"github.com/monchobi/artschool/internal/pkg/email"
	"github.com/monchobi/artschool/internal/pkg/events"
	"github.com/monchobi/artschool/internal/pkg/helpers"
	"github.com/monchobi/artschool/internal/pkg/metrics"
	"github.com/monchobi/artschool/internal/pkg/payment"
)

// EnrollmentService defines the interface for seat reservation and payment operations
type EnrollmentService interface {
	ReserveSeat(ctx context.Context, classID string, details models.EnrollmentDetails) (*models.Enrollment, error)
	CancelEnrollment(ctx context.Context, enrollmentID string, caller auth.Principal) error
	ListEnrollments(ctx context.Context, email string) ([]*models.Enrollment, error)
	FinalizePayment(ctx context.Context, details models.PaymentDetails, caller auth.Principal) (*models.PaymentResult, error)
	ListPayments(ctx context.Context, email string) ([]*models.Payment, error)
	CreatePaymentIntent(ctx context.Context, enrollmentID string, caller auth.Principal) (*models.PaymentIntent, error)
}

// EnrollmentConfig tunes enrollment behaviour.
type EnrollmentConfig struct {
	// RestoreSeatOnCancel hands the seat back to the class when an enrollment is cancelled.
	RestoreSeatOnCancel bool
	Currency            string
}

// enrollmentServiceImpl implements EnrollmentService
type enrollmentServiceImpl struct {
	enrollments EnrollmentStore
	payments    PaymentStore
	provider    payment.Provider
	publisher   events.Publisher
	cache       cache.Cache
	mailer      email.EmailService
	config      EnrollmentConfig
	logger      zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(
	enrollments EnrollmentStore,
	payments PaymentStore,
	provider payment.Provider,
	publisher events.Publisher,
	cache cache.Cache,
	mailer email.EmailService,
	config EnrollmentConfig,
	logger zerolog.Logger,
) EnrollmentService {
	if config.Currency == "" {
		config.Currency = "usd"
	}
	return &enrollmentServiceImpl{
		enrollments: enrollments,
		payments:    payments,
		provider:    provider,
		publisher:   publisher,
		cache:       cache,
		mailer:      mailer,
		config:      config,
		logger:      logger,
	}
}

// ReserveSeat takes one seat of a class for details.Email.
func (s *enrollmentServiceImpl) ReserveSeat(ctx context.Context, classID string, details models.EnrollmentDetails) (*models.Enrollment, error) {
	email := helpers.NormalizeEmail(details.Email)
	if email == "" {
		return nil, apperrors.NewBadRequestError("email is required")
	}

	enrollment := &models.Enrollment{
		ID:        uuid.NewString(),
		ClassID:   strings.TrimSpace(classID),
		Email:     email,
		CreatedAt: helpers.NowUTC(),
	}

	if err := s.enrollments.Reserve(ctx, enrollment); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNoCapacity):
			metrics.ObserveReservation(metrics.OutcomeNoCapacity)
		case errors.Is(err, apperrors.ErrResourceNotFound):
			metrics.ObserveReservation(metrics.OutcomeNotFound)
		default:
			metrics.ObserveReservation(metrics.OutcomeError)
			s.logger.Error().Err(err).Str("classID", classID).Msg("Failed to reserve seat")
		}
		return nil, err
	}

	metrics.ObserveReservation(metrics.OutcomeReserved)
	s.invalidateClass(ctx, enrollment.ClassID)
	s.publisher.Publish(ctx, events.New(events.EventSeatReserved, enrollment.ClassID, events.SeatReservedPayload{
		EnrollmentID: enrollment.ID,
		ClassID:      enrollment.ClassID,
		Email:        enrollment.Email,
	}))

	s.logger.Info().
		Str("enrollmentID", enrollment.ID).
		Str("classID", enrollment.ClassID).
		Str("email", enrollment.Email).
		Msg("Seat reserved")
	return enrollment, nil
}

// CancelEnrollment deletes an enrollment owned by caller (or any, for admins).
func (s *enrollmentServiceImpl) CancelEnrollment(ctx context.Context, enrollmentID string, caller auth.Principal) error {
	existing, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return err
	}
	if err := auth.Require(caller, auth.OwnerOrAdmin(existing.Email)); err != nil {
		return err
	}

	deleted, err := s.enrollments.Delete(ctx, enrollmentID, s.config.RestoreSeatOnCancel)
	if err != nil {
		return err
	}

	metrics.ObserveCancellation()
	s.invalidateClass(ctx, deleted.ClassID)
	s.publisher.Publish(ctx, events.New(events.EventEnrollmentCancelled, deleted.ClassID, events.EnrollmentCancelledPayload{
		EnrollmentID: deleted.ID,
		ClassID:      deleted.ClassID,
		SeatRestored: s.config.RestoreSeatOnCancel,
	}))
	return nil
}

// ListEnrollments returns all enrollments of email. Unknown or empty emails
// yield an empty list.
func (s *enrollmentServiceImpl) ListEnrollments(ctx context.Context, email string) ([]*models.Enrollment, error) {
	email = helpers.NormalizeEmail(email)
	if email == "" {
		return []*models.Enrollment{}, nil
	}
	return s.enrollments.ListByEmail(ctx, email)
}

// FinalizePayment records a payment and removes the enrollment it pays for.
// An enrollment that is already gone does not fail the payment; the result
// reports it with EnrollmentDeleted set to false.
func (s *enrollmentServiceImpl) FinalizePayment(ctx context.Context, details models.PaymentDetails, caller auth.Principal) (*models.PaymentResult, error) {
	existing, err := s.enrollments.GetByID(ctx, details.EnrollmentID)
	switch {
	case err == nil:
		if err := auth.Require(caller, auth.OwnerOrAdmin(existing.Email)); err != nil {
			return nil, err
		}
	case !errors.Is(err, apperrors.ErrResourceNotFound):
		return nil, err
	}

	email := helpers.NormalizeEmail(details.Email)
	if email == "" {
		email = helpers.NormalizeEmail(caller.Email)
	}
	currency := strings.ToLower(details.Currency)
	if currency == "" {
		currency = s.config.Currency
	}

	p := &models.Payment{
		ID:            uuid.NewString(),
		Email:         email,
		Currency:      currency,
		EnrollmentID:  details.EnrollmentID,
		TransactionID: details.TransactionID,
		CreatedAt:     helpers.NowUTC(),
	}

	deleted, err := s.payments.Finalize(ctx, p, details.Amount)
	if err != nil {
		return nil, err
	}

	result := &models.PaymentResult{Payment: p, EnrollmentDeleted: deleted}
	if deleted {
		result.DeletedEnrollmentID = p.EnrollmentID
		s.invalidateClass(ctx, p.ClassID)
	} else {
		s.logger.Warn().
			Str("paymentID", p.ID).
			Str("enrollmentID", p.EnrollmentID).
			Msg("Payment recorded but enrollment was already removed")
	}

	metrics.ObservePayment(deleted)
	s.publisher.Publish(ctx, events.New(events.EventPaymentFinalized, p.ClassID, events.PaymentFinalizedPayload{
		PaymentID:         p.ID,
		EnrollmentID:      p.EnrollmentID,
		EnrollmentDeleted: deleted,
		AmountCents:       p.Amount,
		Currency:          p.Currency,
	}))
	if err := s.mailer.SendPaymentReceipt(p.Email, p.ClassTitle, p.Amount, p.Currency); err != nil {
		s.logger.Warn().Err(err).Str("paymentID", p.ID).Msg("Failed to send payment receipt")
	}

	return result, nil
}

// ListPayments returns the payments of email, most recent first.
func (s *enrollmentServiceImpl) ListPayments(ctx context.Context, email string) ([]*models.Payment, error) {
	email = helpers.NormalizeEmail(email)
	if email == "" {
		return []*models.Payment{}, nil
	}
	return s.payments.ListByEmail(ctx, email)
}

// CreatePaymentIntent asks the payment provider to prepare a charge for the
// price of an enrollment.
func (s *enrollmentServiceImpl) CreatePaymentIntent(ctx context.Context, enrollmentID string, caller auth.Principal) (*models.PaymentIntent, error) {
	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := auth.Require(caller, auth.OwnerOrAdmin(enrollment.Email)); err != nil {
		return nil, err
	}
	if enrollment.Price <= 0 {
		return nil, apperrors.NewBadRequestError("enrollment has nothing to pay")
	}

	return s.provider.CreateIntent(ctx, enrollment.Price, s.config.Currency, map[string]string{
		"enrollment_id": enrollment.ID,
		"class_id":      enrollment.ClassID,
		"email":         enrollment.Email,
	})
}

// invalidateClass drops cached catalog entries after the seat count of classID changed.
func (s *enrollmentServiceImpl) invalidateClass(ctx context.Context, classID string) {
	keys := []string{cache.KeyCatalog}
	if classID != "" {
		keys = append(keys, cache.ClassKey(classID))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn().Err(err).Str("classID", classID).Msg("Failed to invalidate catalog cache")
	}
}
