package user

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrUserNotFound = errors.New("user not found")

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, name, email, passwordHash, role, cpf string) (*User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, role, cpf)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, email, password_hash, role, cpf, created_at
	`

	var user User
	err := r.db.GetContext(ctx, &user, query, name, email, passwordHash, role, cpf)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, password_hash, role, cpf, created_at
		FROM users
		WHERE email = $1
	`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return &user, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT id, name, email, password_hash, role, cpf, created_at
		FROM users
		WHERE id = $1
	`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return &user, nil
}

func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, err
	}

	return exists, nil
}
