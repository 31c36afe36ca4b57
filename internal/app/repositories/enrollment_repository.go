package repositories

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/db"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
	"github.com/monchobi/artschool/internal/pkg/dberrors"
	"github.com/monchobi/artschool/internal/pkg/logger"
)

var enrollmentColumns = []string{"id", "class_id", "email", "class_title", "price", "created_at"}

// EnrollmentRepository handles database operations for enrollments.
type EnrollmentRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(pg *db.PostgresDB) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: pg,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanEnrollment(row pgx.Row) (*models.Enrollment, error) {
	var e models.Enrollment
	if err := row.Scan(&e.ID, &e.ClassID, &e.Email, &e.ClassTitle, &e.Price, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// Reserve takes one seat of enrollment.ClassID and records the enrollment in a
// single transaction. The seat decrement is a conditional update, so concurrent
// reservations never oversell a class. Only approved classes can be reserved.
// ClassTitle and Price are filled from the class.
func (r *EnrollmentRepository) Reserve(ctx context.Context, enrollment *models.Enrollment) error {
	if _, err := uuid.Parse(enrollment.ClassID); err != nil {
		return apperrors.ErrClassNotFound
	}

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Update("classes").
			Set("seats_available", squirrel.Expr("seats_available - 1")).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": enrollment.ClassID, "status": models.ClassStatusApproved}).
			Where(squirrel.Gt{"seats_available": 0}).
			Suffix("RETURNING title, price").
			ToSql()
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, sql, args...).Scan(&enrollment.ClassTitle, &enrollment.Price)
		if errors.Is(err, pgx.ErrNoRows) {
			return r.reserveFailure(ctx, tx, enrollment.ClassID)
		}
		if err != nil {
			if dberrors.IsCheckViolation(err) {
				return apperrors.ErrClassFull
			}
			logger.Error().Err(err).Str("classID", enrollment.ClassID).Msg("Error decrementing class seats")
			return dberrors.Wrap(err, "reserve seat")
		}

		sql, args, err = r.sb.Insert("enrollments").
			Columns(enrollmentColumns...).
			Values(enrollment.ID, enrollment.ClassID, enrollment.Email, enrollment.ClassTitle, enrollment.Price, enrollment.CreatedAt).
			ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			logger.Error().Err(err).Str("classID", enrollment.ClassID).Msg("Error inserting enrollment")
			return dberrors.Wrap(err, "insert enrollment")
		}
		return nil
	})
}

// reserveFailure tells a missing class apart from a full one after the
// conditional decrement matched no row. Classes still under review or denied
// are not bookable and count as missing.
func (r *EnrollmentRepository) reserveFailure(ctx context.Context, q db.Querier, classID string) error {
	sql, args, err := r.sb.Select("status").From("classes").Where(squirrel.Eq{"id": classID}).ToSql()
	if err != nil {
		return err
	}

	var status models.ClassStatus
	err = q.QueryRow(ctx, sql, args...).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrClassNotFound
	}
	if err != nil {
		return dberrors.Wrap(err, "check class status")
	}
	if status != models.ClassStatusApproved {
		return apperrors.ErrClassNotFound
	}
	return apperrors.ErrClassFull
}

// GetByID retrieves an enrollment by ID
func (r *EnrollmentRepository) GetByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrEnrollmentNotFound
	}

	sql, args, err := r.sb.Select(enrollmentColumns...).From("enrollments").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	enrollment, err := scanEnrollment(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		return nil, dberrors.Wrap(err, "get enrollment")
	}
	return enrollment, nil
}

// Delete removes an enrollment and, when restoreSeat is set, hands its seat
// back to the class in the same transaction.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string, restoreSeat bool) (*models.Enrollment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrEnrollmentNotFound
	}

	var deleted *models.Enrollment
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Delete("enrollments").
			Where(squirrel.Eq{"id": id}).
			Suffix("RETURNING " + joinColumns(enrollmentColumns)).
			ToSql()
		if err != nil {
			return err
		}

		deleted, err = scanEnrollment(tx.QueryRow(ctx, sql, args...))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrEnrollmentNotFound
			}
			logger.Error().Err(err).Str("enrollmentID", id).Msg("Error deleting enrollment")
			return dberrors.Wrap(err, "delete enrollment")
		}

		if !restoreSeat {
			return nil
		}

		sql, args, err = r.sb.Update("classes").
			Set("seats_available", squirrel.Expr("seats_available + 1")).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": deleted.ClassID}).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return dberrors.Wrap(err, "restore seat")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// ListByEmail returns all enrollments of email, oldest first.
func (r *EnrollmentRepository) ListByEmail(ctx context.Context, email string) ([]*models.Enrollment, error) {
	return r.list(ctx, squirrel.Eq{"email": email})
}

// ListByClass returns all enrollments of a class, oldest first.
func (r *EnrollmentRepository) ListByClass(ctx context.Context, classID string) ([]*models.Enrollment, error) {
	if _, err := uuid.Parse(classID); err != nil {
		return []*models.Enrollment{}, nil
	}
	return r.list(ctx, squirrel.Eq{"class_id": classID})
}

func (r *EnrollmentRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*models.Enrollment, error) {
	sql, args, err := r.sb.Select(enrollmentColumns...).
		From("enrollments").
		Where(where).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing enrollments")
		return nil, dberrors.Wrap(err, "list enrollments")
	}
	defer rows.Close()

	enrollments := make([]*models.Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, dberrors.Wrap(err, "scan enrollment")
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, dberrors.Wrap(err, "list enrollments")
	}
	return enrollments, nil
}
