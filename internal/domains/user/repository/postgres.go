package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bookshelf-backend/internal/domains/user/model"
	"bookshelf-backend/internal/shared/query"
	"bookshelf-backend/pkg/database"
)

// Source is the list definition for GET /users.
var Source = &query.Source{
	Table:  "users",
	Select: model.Columns,
	Columns: map[string]query.ColumnType{
		"id":         query.Integer,
		"name":       query.Text,
		"email":      query.Text,
		"username":   query.Text,
		"role":       query.Text,
		"created_at": query.Timestamp,
		"updated_at": query.Timestamp,
	},
	SearchFields: []string{"name", "email", "username"},
}

var userColumns = strings.Join(model.Columns, ", ")

type postgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) RepositoryInterface {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) List(ctx context.Context, params query.Params) ([]model.User, query.PageInfo, error) {
	return query.List[model.User](ctx, r.db, Source, params)
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.one(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.one(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

func (r *postgresRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) Register(ctx context.Context, u *model.User) (*model.User, error) {
	sql := `
		INSERT INTO users (name, email, username, password_hash, role)
		VALUES ($1, $2, $3, $4,
		        CASE WHEN EXISTS (SELECT 1 FROM users) THEN 'user' ELSE 'admin' END)
		RETURNING ` + userColumns

	return r.one(ctx, sql, u.Name, u.Email, u.Username, u.PasswordHash)
}

func (r *postgresRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	sql := `
		INSERT INTO users (name, email, username, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	return r.one(ctx, sql, u.Name, u.Email, u.Username, u.PasswordHash, u.Role)
}

func (r *postgresRepository) Update(ctx context.Context, u *model.User) (*model.User, error) {
	sql, args, err := query.Dialect().Update("users").Prepared(true).
		Set(goqu.Record{
			"name":          u.Name,
			"email":         u.Email,
			"username":      u.Username,
			"password_hash": u.PasswordHash,
			"role":          u.Role,
			"updated_at":    goqu.L("NOW()"),
		}).
		Where(goqu.C("id").Eq(u.ID)).
		Returning(goqu.L(userColumns)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build user update: %w", err)
	}

	return r.one(ctx, sql, args...)
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) one(ctx context.Context, sql string, args ...any) (*model.User, error) {
	var u model.User
	if err := pgxscan.Get(ctx, r.db, &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, model.ErrUserNotFound
		}
		if constraint, ok := database.UniqueViolation(err); ok {
			return nil, uniqueError(constraint, err)
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// uniqueError maps users_email_key / users_username_key to field errors.
func uniqueError(constraint string, cause error) error {
	switch {
	case strings.Contains(constraint, "username"):
		return model.ErrUsernameTaken.WithCause(cause)
	case strings.Contains(constraint, "email"):
		return model.ErrEmailTaken.WithCause(cause)
	default:
		return fmt.Errorf("failed to write user: %w", cause)
	}
}
