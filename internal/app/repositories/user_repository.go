package repositories

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/db"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
	"github.com/monchobi/artschool/internal/pkg/dberrors"
	"github.com/monchobi/artschool/internal/pkg/logger"
)

var userColumns = []string{"email", "name", "photo_url", "role", "created_at", "updated_at"}

// UserRepository handles database operations for user profiles.
type UserRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pg *db.PostgresDB) *UserRepository {
	return &UserRepository{
		db: pg,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Upsert inserts the profile or updates name and photo of an existing one.
// The role is only written on insert.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	role := user.Role
	if !role.Valid() {
		role = models.RoleStudent
	}

	sql, args, err := r.sb.Insert("users").
		Columns("email", "name", "photo_url", "role").
		Values(user.Email, user.Name, user.PhotoURL, role).
		Suffix(`ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			photo_url = EXCLUDED.photo_url,
			updated_at = NOW()
		RETURNING ` + joinColumns(userColumns)).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert user SQL")
		return nil, err
	}

	return r.queryOne(ctx, sql, args, "upsert user")
}

// EnsureRole creates the user if needed and sets its role.
func (r *UserRepository) EnsureRole(ctx context.Context, email string, role models.RoleType) (*models.User, error) {
	sql, args, err := r.sb.Insert("users").
		Columns("email", "role").
		Values(email, role).
		Suffix(`ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()
		RETURNING ` + joinColumns(userColumns)).
		ToSql()
	if err != nil {
		return nil, err
	}

	return r.queryOne(ctx, sql, args, "ensure user role")
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").Where(squirrel.Eq{"email": email}).ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryOne(ctx, sql, args, "get user")
}

// SetRole changes the role of an existing user.
func (r *UserRepository) SetRole(ctx context.Context, email string, role models.RoleType) (*models.User, error) {
	sql, args, err := r.sb.Update("users").
		Set("role", role).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"email": email}).
		Suffix("RETURNING " + joinColumns(userColumns)).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryOne(ctx, sql, args, "set user role")
}

// List returns every user ordered by email.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").OrderBy("email").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, dberrors.Wrap(err, "list users")
	}

	users, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[models.User])
	if err != nil {
		return nil, dberrors.Wrap(err, "collect users")
	}
	return users, nil
}

func (r *UserRepository) queryOne(ctx context.Context, sql string, args []interface{}, op string) (*models.User, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error executing user query")
		return nil, dberrors.Wrap(err, op)
	}

	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[models.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, dberrors.Wrap(err, op)
	}
	return user, nil
}
