package services

import (
	"context"

	"github.com/monchobi/artschool/internal/app/models"
)

// Services defined in this package:
// - EnrollmentService: seat reservations, cancellations and payments
// - ReviewService: class submissions and their review
// - CatalogService: the public class catalog
// - AuthService: user profiles, roles and token issuance
// - ReportService: XLSX rosters for administrators

// ClassStore persists classes and their review archives.
type ClassStore interface {
	Create(ctx context.Context, class *models.Class) error
	GetByID(ctx context.Context, id string) (*models.Class, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]*models.Class, error)
	UpdateStatus(ctx context.Context, id string, status models.ClassStatus) (*models.Class, bool, error)
	UpdateFeedback(ctx context.Context, id string, feedback string) (*models.Class, error)
	ListArchive(ctx context.Context, status models.ClassStatus) ([]*models.ArchivedClass, error)
}

// EnrollmentStore persists enrollments. Reserve and Delete adjust the seat
// count of the class atomically with the enrollment itself.
type EnrollmentStore interface {
	Reserve(ctx context.Context, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, id string) (*models.Enrollment, error)
	Delete(ctx context.Context, id string, restoreSeat bool) (*models.Enrollment, error)
	ListByEmail(ctx context.Context, email string) ([]*models.Enrollment, error)
	ListByClass(ctx context.Context, classID string) ([]*models.Enrollment, error)
}

// PaymentStore persists payments.
type PaymentStore interface {
	Finalize(ctx context.Context, payment *models.Payment, amount *int64) (bool, error)
	ListByEmail(ctx context.Context, email string) ([]*models.Payment, error)
	ListByClass(ctx context.Context, classID string) ([]*models.Payment, error)
}

// UserStore persists user profiles.
type UserStore interface {
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	EnsureRole(ctx context.Context, email string, role models.RoleType) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetRole(ctx context.Context, email string, role models.RoleType) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}
