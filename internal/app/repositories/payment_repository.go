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

const paymentsEnrollmentKey = "payments_enrollment_id_key"

var paymentColumns = []string{
	"id", "email", "amount", "currency", "enrollment_id",
	"COALESCE(class_id::text, '') AS class_id", "class_title", "transaction_id", "created_at",
}

// PaymentRepository handles database operations for payments.
type PaymentRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(pg *db.PostgresDB) *PaymentRepository {
	return &PaymentRepository{
		db: pg,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Finalize deletes the enrollment payment.EnrollmentID refers to and records
// payment, both in one transaction. When the enrollment still exists its class
// and, if amount is nil, its price are copied onto the payment. deleted reports
// whether an enrollment was removed.
func (r *PaymentRepository) Finalize(ctx context.Context, payment *models.Payment, amount *int64) (deleted bool, err error) {
	if _, err := uuid.Parse(payment.EnrollmentID); err != nil {
		return false, apperrors.ErrEnrollmentNotFound
	}

	err = r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		deleted = false

		sql, args, err := r.sb.Delete("enrollments").
			Where(squirrel.Eq{"id": payment.EnrollmentID}).
			Suffix("RETURNING class_id, class_title, price").
			ToSql()
		if err != nil {
			return err
		}

		var price int64
		err = tx.QueryRow(ctx, sql, args...).Scan(&payment.ClassID, &payment.ClassTitle, &price)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			logger.Error().Err(err).Str("enrollmentID", payment.EnrollmentID).Msg("Error deleting paid enrollment")
			return dberrors.Wrap(err, "delete paid enrollment")
		default:
			deleted = true
		}

		switch {
		case amount != nil:
			payment.Amount = *amount
		case deleted:
			payment.Amount = price
		default:
			return apperrors.ErrAmountRequired
		}

		var classID any
		if payment.ClassID != "" {
			classID = payment.ClassID
		}

		sql, args, err = r.sb.Insert("payments").
			Columns("id", "email", "amount", "currency", "enrollment_id", "class_id", "class_title", "transaction_id", "created_at").
			Values(payment.ID, payment.Email, payment.Amount, payment.Currency, payment.EnrollmentID,
				classID, payment.ClassTitle, payment.TransactionID, payment.CreatedAt).
			ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			if dberrors.IsDuplicateConstraintError(err, paymentsEnrollmentKey) {
				return apperrors.ErrPaymentAlreadyRecorded
			}
			logger.Error().Err(err).Str("enrollmentID", payment.EnrollmentID).Msg("Error inserting payment")
			return dberrors.Wrap(err, "insert payment")
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// ListByEmail returns the payments of email, most recent first.
func (r *PaymentRepository) ListByEmail(ctx context.Context, email string) ([]*models.Payment, error) {
	return r.list(ctx, squirrel.Eq{"email": email})
}

// ListByClass returns the payments recorded for a class, most recent first.
func (r *PaymentRepository) ListByClass(ctx context.Context, classID string) ([]*models.Payment, error) {
	if _, err := uuid.Parse(classID); err != nil {
		return []*models.Payment{}, nil
	}
	return r.list(ctx, squirrel.Eq{"class_id": classID})
}

func (r *PaymentRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*models.Payment, error) {
	sql, args, err := r.sb.Select(paymentColumns...).
		From("payments").
		Where(where).
		OrderBy("created_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing payments")
		return nil, dberrors.Wrap(err, "list payments")
	}

	payments, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[models.Payment])
	if err != nil {
		return nil, dberrors.Wrap(err, "collect payments")
	}
	return payments, nil
}
