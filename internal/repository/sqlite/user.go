package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, username, first_name, last_name, password_hash, avatar, github_id, created_at, updated_at`

// profileColumns expects the viewer id as the first bound argument.
const profileColumns = `u.id, u.email, u.username, u.first_name, u.last_name, u.avatar,
	EXISTS (SELECT 1 FROM follows f WHERE f.follower_id = ? AND f.author_id = u.id)`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var (
		u        model.User
		githubID sql.NullInt64
	)
	err := s.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.PasswordHash,
		&u.Avatar,
		&githubID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if githubID.Valid {
		id := githubID.Int64
		u.GitHubID = &id
	}
	return &u, nil
}

func scanProfile(s scanner) (*model.Profile, error) {
	var (
		p      model.Profile
		avatar string
	)
	if err := s.Scan(&p.ID, &p.Email, &p.Username, &p.FirstName, &p.LastName, &avatar, &p.IsSubscribed); err != nil {
		return nil, err
	}
	if avatar != "" {
		p.Avatar = &avatar
	}
	return &p, nil
}

// mapUserConflict turns a UNIQUE violation on users into a Conflict naming
// the offending field.
func mapUserConflict(err error) error {
	switch {
	case violatedColumn(err, "users.email"):
		return apperror.Conflict("email", "a user with this email already exists")
	case violatedColumn(err, "users.username"):
		return apperror.Conflict("username", "a user with this username already exists")
	case violatedColumn(err, "users.github_id"):
		return apperror.Conflict("github_id", "this GitHub account is already linked")
	default:
		return apperror.Conflict("", "user already exists")
	}
}

// CreateUser inserts a new user and fills in ID and timestamps.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	var githubID any
	if user.GitHubID != nil {
		githubID = *user.GitHubID
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (email, username, first_name, last_name, password_hash, avatar, github_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Email,
		user.Username,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Avatar,
		githubID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return mapUserConflict(err)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	user.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading user id: %w", err)
	}
	return nil
}

// UpsertGitHubUser returns the existing account linked to user.GitHubID, or
// creates one. On the update path only the first name is refreshed;
// email and username stay as they were first registered.
func (db *DB) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	if user.GitHubID == nil {
		return fmt.Errorf("sqlite: upserting GitHub user without a GitHub id")
	}

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_id = ?`, *user.GitHubID)
	existing, err := scanUser(row)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", *user.GitHubID, err)
	}

	if existing == nil {
		return db.CreateUser(ctx, user)
	}

	existing.FirstName = user.FirstName
	existing.UpdatedAt = time.Now().UTC()
	_, err = db.conn.ExecContext(ctx,
		`UPDATE users SET first_name = ?, updated_at = ? WHERE id = ?`,
		existing.FirstName,
		existing.UpdatedAt,
		existing.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %d: %w", existing.ID, err)
	}

	*user = *existing
	return nil
}

// GetUserByID retrieves a user by id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return u, nil
}

// GetUserByEmail looks a user up by email, case-insensitively.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower(?)`, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

func (db *DB) GetProfile(ctx context.Context, id, viewerID int64) (*model.Profile, error) {
	return getProfile(ctx, db.conn, id, viewerID)
}

func getProfile(ctx context.Context, q querier, id, viewerID int64) (*model.Profile, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM users u WHERE u.id = ?`, viewerID, id)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting profile %d: %w", id, err)
	}
	return p, nil
}

// ListProfiles pages through all users ordered by username.
func (db *DB) ListProfiles(ctx context.Context, viewerID int64, opts repository.ListOptions) ([]model.Profile, int, error) {
	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting users: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM users u
		 ORDER BY u.username
		 LIMIT ? OFFSET ?`,
		viewerID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	profiles, err := collectProfiles(rows)
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func collectProfiles(rows *sql.Rows) ([]model.Profile, error) {
	profiles := []model.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning profile row: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating profiles: %w", err)
	}
	return profiles, nil
}

// UpdateAvatar sets or clears (avatar == "") the user's avatar URL.
func (db *DB) UpdateAvatar(ctx context.Context, id int64, avatar string) error {
	return db.updateUserColumn(ctx, id, "avatar", avatar)
}

func (db *DB) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return db.updateUserColumn(ctx, id, "password_hash", passwordHash)
}

// updateUserColumn is only called with column names fixed in this file.
func (db *DB) updateUserColumn(ctx context.Context, id int64, column string, value any) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating %s of user %d: %w", column, id, err)
	}
	return requireAffected(result, apperror.NotFound("user", id))
}

// DeleteUser removes the user. Foreign keys cascade to their recipes,
// follows, favorites and shopping-list entries.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}
	return requireAffected(result, apperror.NotFound("user", id))
}

// requireAffected returns notFound when the statement matched no rows.
func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
