package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type UserOperations struct {
	q Querier
}

func (o *UserOperations) CreateUser(ctx context.Context, u *User) error {
	result, err := o.q.ExecContext(ctx, InsertUser,
		u.UUID, u.Name, u.Email, u.PasswordHash, u.Rank, u.Status)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get user id: %w", err)
	}
	u.ID = id
	return nil
}

func (o *UserOperations) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return o.getUser(ctx, GetUserByID, id)
}

func (o *UserOperations) GetUserByUUID(ctx context.Context, uuid string) (*User, error) {
	return o.getUser(ctx, GetUserByUUID, uuid)
}

func (o *UserOperations) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return o.getUser(ctx, GetUserByEmail, email)
}

func (o *UserOperations) getUser(ctx context.Context, query string, arg any) (*User, error) {
	u := &User{}
	err := o.q.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.UUID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Rank, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (o *UserOperations) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := o.q.QueryContext(ctx, ListUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u := &User{}
		if err := rows.Scan(
			&u.ID, &u.UUID, &u.Name, &u.Email, &u.PasswordHash,
			&u.Rank, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserNames maps user ids to display names.
func (o *UserOperations) UserNames(ctx context.Context) (map[int64]string, error) {
	rows, err := o.q.QueryContext(ctx, ListUserNames)
	if err != nil {
		return nil, fmt.Errorf("failed to list user names: %w", err)
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan user name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

func (o *UserOperations) UpdateRankStatus(ctx context.Context, id int64, rank, status string) error {
	if _, err := o.q.ExecContext(ctx, UpdateUserRankStatus, rank, status, id); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

type UsageOperations struct {
	q Querier
}

func (o *UsageOperations) RecordUsage(ctx context.Context, u *FilamentUsage) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	result, err := o.q.ExecContext(ctx, InsertFilamentUsage,
		u.FilamentID, u.JobID, u.RequestedGrams, u.DeductedGrams, u.Reason, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record filament usage: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get filament usage id: %w", err)
	}
	u.ID = id
	return nil
}

func (o *UsageOperations) ListUsage(ctx context.Context, filamentID int64, limit, offset int) ([]*FilamentUsage, error) {
	rows, err := o.q.QueryContext(ctx, ListFilamentUsage, filamentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list filament usage: %w", err)
	}
	defer rows.Close()

	var usage []*FilamentUsage
	for rows.Next() {
		u := &FilamentUsage{}
		if err := rows.Scan(
			&u.ID, &u.FilamentID, &u.JobID, &u.RequestedGrams,
			&u.DeductedGrams, &u.Reason, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan filament usage: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}
