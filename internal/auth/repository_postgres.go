package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserRepository stores accounts in the public.users table.
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Save(user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	_, err := r.db.Exec(context.Background(), `
		INSERT INTO users (id, name, email, password, role)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Name, user.Email, user.Password, user.Role)

	// The unique index on email can still fire between the service's
	// ExistsByEmail check and this insert.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) ExistsByEmail(email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}
	return exists, nil
}

func (r *PostgresUserRepository) FindByEmail(email string) (*User, error) {
	user := &User{}
	err := r.db.QueryRow(context.Background(), `
		SELECT id, name, email, password, role
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) UpdateRole(userID, role string) error {
	tag, err := r.db.Exec(context.Background(), `
		UPDATE users SET role = $1 WHERE id = $2
	`, role, userID)
	if err != nil {
		return fmt.Errorf("updating role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
