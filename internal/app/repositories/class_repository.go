package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/db"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
	"github.com/monchobi/artschool/internal/pkg/dberrors"
	"github.com/monchobi/artschool/internal/pkg/logger"
)

var classColumns = []string{
	"id", "title", "description", "image_url", "instructor_name", "instructor_email",
	"price", "seats_available", "status", "feedback", "created_at", "updated_at",
}

var archiveTables = map[models.ClassStatus]string{
	models.ClassStatusApproved: "approved_classes",
	models.ClassStatusDenied:   "denied_classes",
}

// ClassRepository handles database operations for classes and their review archives.
type ClassRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewClassRepository creates a new class repository
func NewClassRepository(pg *db.PostgresDB) *ClassRepository {
	return &ClassRepository{
		db: pg,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// scanClass scans a row selected with classColumns.
func scanClass(row pgx.Row) (*models.Class, error) {
	var c models.Class
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.ImageURL, &c.InstructorName, &c.InstructorEmail,
		&c.Price, &c.SeatsAvailable, &c.Status, &c.Feedback, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	sql, args, err := r.sb.Insert("classes").
		Columns("id", "title", "description", "image_url", "instructor_name", "instructor_email",
			"price", "seats_available", "status", "feedback", "created_at", "updated_at").
		Values(class.ID, class.Title, class.Description, class.ImageURL, class.InstructorName, class.InstructorEmail,
			class.Price, class.SeatsAvailable, class.Status, class.Feedback, class.CreatedAt, class.UpdatedAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create class SQL")
		return err
	}

	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("title", class.Title).Msg("Error executing create class query")
		return dberrors.Wrap(err, "create class")
	}
	return nil
}

// GetByID retrieves a class by ID
func (r *ClassRepository) GetByID(ctx context.Context, id string) (*models.Class, error) {
	return r.getByID(ctx, r.db.Pool, id)
}

func (r *ClassRepository) getByID(ctx context.Context, q db.Querier, id string) (*models.Class, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrClassNotFound
	}

	sql, args, err := r.sb.Select(classColumns...).From("classes").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	class, err := scanClass(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrClassNotFound
		}
		logger.Error().Err(err).Str("classID", id).Msg("Error retrieving class")
		return nil, dberrors.Wrap(err, "get class")
	}
	return class, nil
}

// List returns classes matching filter, most recent first.
func (r *ClassRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]*models.Class, error) {
	query := r.sb.Select(classColumns...).From("classes").OrderBy("created_at DESC", "id")
	if filter.InstructorEmail != "" {
		query = query.Where(squirrel.Eq{"instructor_email": filter.InstructorEmail})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list classes SQL")
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing classes")
		return nil, dberrors.Wrap(err, "list classes")
	}
	defer rows.Close()

	classes := make([]*models.Class, 0)
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, dberrors.Wrap(err, "scan class")
		}
		classes = append(classes, class)
	}
	if err := rows.Err(); err != nil {
		return nil, dberrors.Wrap(err, "list classes")
	}
	return classes, nil
}

// UpdateStatus sets the status of a class. When the stored value changes to an
// archived status, a snapshot is written to the matching archive table in the
// same transaction. changed is false when the class already had status.
func (r *ClassRepository) UpdateStatus(ctx context.Context, id string, status models.ClassStatus) (class *models.Class, changed bool, err error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false, apperrors.ErrClassNotFound
	}

	err = r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Update("classes").
			Set("status", status).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": id}).
			Where(squirrel.NotEq{"status": status}).
			Suffix("RETURNING " + joinColumns(classColumns)).
			ToSql()
		if err != nil {
			return err
		}

		updated, err := scanClass(tx.QueryRow(ctx, sql, args...))
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the class does not exist or it already has this status.
			class, err = r.getByID(ctx, tx, id)
			return err
		}
		if err != nil {
			return dberrors.Wrap(err, "update class status")
		}

		class, changed = updated, true
		if table, ok := archiveTables[status]; ok {
			return r.archive(ctx, tx, table, updated)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return class, changed, nil
}

func (r *ClassRepository) archive(ctx context.Context, tx pgx.Tx, table string, class *models.Class) error {
	snapshot, err := json.Marshal(class)
	if err != nil {
		return fmt.Errorf("marshal class snapshot: %w", err)
	}

	sql, args, err := r.sb.Insert(table).
		Columns("id", "class_id", "snapshot", "archived_at").
		Values(uuid.NewString(), class.ID, snapshot, class.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("classID", class.ID).Str("table", table).Msg("Error archiving class")
		return dberrors.Wrap(err, "archive class")
	}
	return nil
}

// UpdateFeedback overwrites the review feedback of a class.
func (r *ClassRepository) UpdateFeedback(ctx context.Context, id string, feedback string) (*models.Class, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrClassNotFound
	}

	sql, args, err := r.sb.Update("classes").
		Set("feedback", feedback).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(classColumns)).
		ToSql()
	if err != nil {
		return nil, err
	}

	class, err := scanClass(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrClassNotFound
		}
		logger.Error().Err(err).Str("classID", id).Msg("Error updating class feedback")
		return nil, dberrors.Wrap(err, "update class feedback")
	}
	return class, nil
}

// ListArchive returns the archive for status, most recent first.
func (r *ClassRepository) ListArchive(ctx context.Context, status models.ClassStatus) ([]*models.ArchivedClass, error) {
	table, ok := archiveTables[status]
	if !ok {
		return nil, apperrors.ErrUnknownClassStatus
	}

	sql, args, err := r.sb.Select("id", "class_id", "snapshot", "archived_at").
		From(table).
		OrderBy("archived_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", table).Msg("Error listing class archive")
		return nil, dberrors.Wrap(err, "list class archive")
	}
	defer rows.Close()

	archived := make([]*models.ArchivedClass, 0)
	for rows.Next() {
		var (
			a        models.ArchivedClass
			snapshot []byte
		)
		if err := rows.Scan(&a.ID, &a.ClassID, &snapshot, &a.ArchivedAt); err != nil {
			return nil, dberrors.Wrap(err, "scan class archive")
		}
		if err := json.Unmarshal(snapshot, &a.Snapshot); err != nil {
			return nil, fmt.Errorf("decode class snapshot %s: %w", a.ID, err)
		}
		a.Status = status
		archived = append(archived, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, dberrors.Wrap(err, "list class archive")
	}
	return archived, nil
}
