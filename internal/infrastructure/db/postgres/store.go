package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements account.Store on PostgreSQL.
type Store struct {
	*repo
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{repo: &repo{q: db}, db: db}
}

// WithTx runs fn in a READ COMMITTED transaction and commits if fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(r account.Repo) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
		ReadOnly:  false,
	})
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&repo{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.ErrDBUnavailable(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

// CreatePost inserts a post. Used by dev seeding and tests only.
func (s *Store) CreatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	const q = `
INSERT INTO posts (id, user_email, title, content)
VALUES ($1, $2, $3, $4)
RETURNING created_at;
`
	if err := s.db.QueryRowContext(ctx, q, p.ID, p.UserEmail, p.Title, p.Content).Scan(&p.CreatedAt); err != nil {
		return domain.Post{}, domain.ErrDBUnavailable(err)
	}
	return p, nil
}

// repo holds the account.Repo queries, shared by the pool and transactions.
type repo struct {
	q queryer
}

func (r *repo) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `
SELECT username, email, password_hash, external_id, created_at
FROM users WHERE email = $1
LIMIT 1;
`
	var (
		u   domain.User
		ext sql.NullString
	)
	err := r.q.QueryRowContext(ctx, q, email).Scan(&u.Username, &u.Email, &u.PasswordHash, &ext, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.ErrDBUnavailable(err)
	}
	if ext.Valid {
		id := ext.String
		u.ExternalID = &id
	}
	return &u, nil
}

func (r *repo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}

	const q = `
INSERT INTO users (username, email, password_hash)
VALUES ($1, $2, $3)
RETURNING created_at;
`
	if err := r.q.QueryRowContext(ctx, q, u.Username, u.Email, u.PasswordHash).Scan(&u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	u.ExternalID = nil
	return u, nil
}

func (r *repo) SetExternalID(ctx context.Context, email, externalID string) (int64, error) {
	const q = `UPDATE users SET external_id = $2 WHERE email = $1;`

	res, err := r.q.ExecContext(ctx, q, email, externalID)
	if err != nil {
		return 0, domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *repo) ListPostsByOwner(ctx context.Context, email string) ([]domain.Post, error) {
	const q = `
SELECT id, title, content, user_email, created_at
FROM posts WHERE user_email = $1;
`
	rows, err := r.q.QueryContext(ctx, q, email)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	posts := make([]domain.Post, 0)
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.UserEmail, &p.CreatedAt); err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return posts, nil
}

func (r *repo) DeletePostsByOwner(ctx context.Context, email string) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM posts WHERE user_email = $1;`, email)
	if err != nil {
		return 0, domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *repo) DeleteUser(ctx context.Context, email string) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE email = $1;`, email)
	if err != nil {
		return 0, domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
