package services

import (
	"context"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/pkg/export"
)

// ReportService builds spreadsheets for administrators.
type ReportService struct {
	classes     ClassStore
	enrollments EnrollmentStore
	payments    PaymentStore
}

// NewReportService creates a new ReportService
func NewReportService(classes ClassStore, enrollments EnrollmentStore, payments PaymentStore) *ReportService {
	return &ReportService{
		classes:     classes,
		enrollments: enrollments,
		payments:    payments,
	}
}

// ClassRoster returns the roster workbook of a class. The caller must Close it.
func (s *ReportService) ClassRoster(ctx context.Context, classID string) (*export.Workbook, *models.Class, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, nil, err
	}
	enrollments, err := s.enrollments.ListByClass(ctx, class.ID)
	if err != nil {
		return nil, nil, err
	}
	payments, err := s.payments.ListByClass(ctx, class.ID)
	if err != nil {
		return nil, nil, err
	}

	wb, err := export.ClassRoster(class, enrollments, payments)
	if err != nil {
		return nil, nil, err
	}
	return wb, class, nil
}
