package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

var _ repository.FollowRepository = (*DB)(nil)

// CreateFollow inserts the (follower, author) edge. The table's CHECK and
// UNIQUE constraints back up the service's pre-checks.
func (db *DB) CreateFollow(ctx context.Context, followerID, authorID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO follows (follower_id, author_id, created_at) VALUES (?, ?, ?)`,
		followerID, authorID, time.Now().UTC(),
	)
	switch {
	case err == nil:
		return nil
	case isCheckViolation(err):
		return apperror.ValidationFailed("author", "you cannot subscribe to yourself")
	case isUniqueViolation(err):
		return apperror.Conflict("author", fmt.Sprintf("already subscribed to user %d", authorID))
	case isForeignKeyViolation(err):
		return apperror.NotFound("user", authorID)
	default:
		return fmt.Errorf("sqlite: creating follow %d -> %d: %w", followerID, authorID, err)
	}
}

func (db *DB) DeleteFollow(ctx context.Context, followerID, authorID int64) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND author_id = ?`,
		followerID, authorID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting follow %d -> %d: %w", followerID, authorID, err)
	}
	return requireAffected(result,
		apperror.NotFoundMessage(fmt.Sprintf("you are not subscribed to user %d", authorID)))
}

func (db *DB) IsFollowing(ctx context.Context, followerID, authorID int64) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = ? AND author_id = ?)`,
		followerID, authorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking follow %d -> %d: %w", followerID, authorID, err)
	}
	return exists, nil
}

// ListFollowing returns the authors followed by followerID, most recently
// followed first. is_subscribed is true for every row by construction.
func (db *DB) ListFollowing(ctx context.Context, followerID int64, opts repository.ListOptions) ([]model.Profile, int, error) {
	var total int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_id = ?`, followerID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting follows of %d: %w", followerID, err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+profileColumns+`
		 FROM follows fl
		 JOIN users u ON u.id = fl.author_id
		 WHERE fl.follower_id = ?
		 ORDER BY fl.id DESC
		 LIMIT ? OFFSET ?`,
		followerID, followerID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing follows of %d: %w", followerID, err)
	}
	defer rows.Close()

	profiles, err := collectProfiles(rows)
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}
