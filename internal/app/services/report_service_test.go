package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
	"github.com/monchobi/artschool/internal/pkg/events"
	"github.com/monchobi/artschool/internal/pkg/payment"
)

func TestClassRoster(t *testing.T) {
	store := newMemStore()
	store.addClass(models.Class{ID: "c1", Status: models.ClassStatusApproved, Title: "Ink", Price: 1500, SeatsAvailable: 3})
	enrollments := NewEnrollmentService(enrollmentStore{store}, paymentStore{store}, payment.Disabled{}, events.Noop{},
		newMapCache(), &mailbox{}, EnrollmentConfig{}, zerolog.Nop())
	reports := NewReportService(store, enrollmentStore{store}, paymentStore{store})
	ctx := context.Background()

	paid, err := enrollments.ReserveSeat(ctx, "c1", models.EnrollmentDetails{Email: "a@example.com"})
	require.NoError(t, err)
	_, err = enrollments.ReserveSeat(ctx, "c1", models.EnrollmentDetails{Email: "b@example.com"})
	require.NoError(t, err)
	_, err = enrollments.FinalizePayment(ctx, models.PaymentDetails{EnrollmentID: paid.ID}, student("a@example.com"))
	require.NoError(t, err)

	wb, class, err := reports.ClassRoster(ctx, "c1")
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, "Ink", class.Title)

	rows, err := wb.File.GetRows("Enrollments")
	require.NoError(t, err)
	assert.Len(t, rows, 2, "header plus the unpaid enrollment")

	rows, err = wb.File.GetRows("Payments")
	require.NoError(t, err)
	assert.Len(t, rows, 2, "header plus one payment")

	_, _, err = reports.ClassRoster(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
