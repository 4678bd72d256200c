package pgstorage

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/kedr891/wishlist-tracker/internal/entity"
)

var userColumns = []string{"id", "username", "email", "created_at"}

func (s *Storage) CreateUser(ctx context.Context, user *entity.User) error {
	qb := s.builder.
		Insert(usersTable).
		Columns(userColumns...).
		Values(user.ID, user.Username, user.Email, user.CreatedAt)

	if _, err := s.exec(ctx, qb); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (s *Storage) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	row, err := s.queryRow(ctx, s.builder.
		Select(userColumns...).
		From(usersTable).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	var user entity.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt); err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, classify(err))
	}

	return &user, nil
}
