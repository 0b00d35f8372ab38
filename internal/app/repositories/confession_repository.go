package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/mesconnect/backend/internal/app/models"
	"github.com/mesconnect/backend/internal/db"
	"github.com/mesconnect/backend/internal/pkg/apperrors"
	"github.com/mesconnect/backend/internal/pkg/dberrors"
)

// ConfessionRepository handles database operations for the confession pipeline
type ConfessionRepository struct {
	db *db.PostgresDB
}

// NewConfessionRepository creates a new ConfessionRepository
func NewConfessionRepository(database *db.PostgresDB) *ConfessionRepository {
	return &ConfessionRepository{db: database}
}

// Create inserts a confession. Anonymous posts carry no author id.
func (r *ConfessionRepository) Create(ctx context.Context, confession *models.Confession) error {
	query := `
		INSERT INTO confessions (user_id, confession_text, tags, is_anonymous)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		confession.UserID,
		confession.Body,
		confession.Tags,
		confession.IsAnonymous,
	).Scan(&confession.ID, &confession.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating confession: %w", err)
	}

	return nil
}

// GetByID retrieves a confession by id
func (r *ConfessionRepository) GetByID(ctx context.Context, id int64) (*models.Confession, error) {
	query := `
		SELECT id, user_id, confession_text, tags, is_anonymous, approved_by_admin,
		       likes_count, comments_count, is_featured, created_at
		FROM confessions
		WHERE id = $1
	`

	var c models.Confession
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.UserID,
		&c.Body,
		&c.Tags,
		&c.IsAnonymous,
		&c.Approved,
		&c.LikesCount,
		&c.CommentsCount,
		&c.IsFeatured,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConfessionNotFound
		}
		return nil, fmt.Errorf("error retrieving confession: %w", err)
	}

	return &c, nil
}

// SetModeration updates the approval flag and, when provided, the featured flag
func (r *ConfessionRepository) SetModeration(ctx context.Context, id int64, approved bool, featured *bool) error {
	builder := squirrel.Update("confessions").
		Set("approved_by_admin", approved).
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)
	if featured != nil {
		builder = builder.Set("is_featured", *featured)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error moderating confession: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConfessionNotFound
	}
	return nil
}

// ToggleLike flips the user's like in one transaction. The confession row is
// locked first so likes_count always equals the number of like rows.
func (r *ConfessionRepository) ToggleLike(ctx context.Context, confessionID, userID int64) (liked bool, likesCount int64, err error) {
	err = r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		lockQuery := `SELECT likes_count FROM confessions WHERE id = $1 FOR UPDATE`
		if err := tx.QueryRow(ctx, lockQuery, confessionID).Scan(&likesCount); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrConfessionNotFound
			}
			return fmt.Errorf("error locking confession: %w", err)
		}

		deleteQuery := `DELETE FROM confession_likes WHERE confession_id = $1 AND user_id = $2`
		tag, err := tx.Exec(ctx, deleteQuery, confessionID, userID)
		if err != nil {
			return fmt.Errorf("error removing like: %w", err)
		}

		if tag.RowsAffected() > 0 {
			liked = false
			likesCount--
		} else {
			insertQuery := `INSERT INTO confession_likes (confession_id, user_id) VALUES ($1, $2)`
			if _, err := tx.Exec(ctx, insertQuery, confessionID, userID); err != nil {
				if dberrors.IsUniqueViolation(err) {
					return apperrors.NewConflictError("like already recorded")
				}
				return fmt.Errorf("error inserting like: %w", err)
			}
			liked = true
			likesCount++
		}

		countQuery := `UPDATE confessions SET likes_count = $1 WHERE id = $2`
		if _, err := tx.Exec(ctx, countQuery, likesCount, confessionID); err != nil {
			return fmt.Errorf("error updating like count: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	return liked, likesCount, nil
}

// Feed retrieves a page of approved confessions, optionally filtered by tag,
// sorted by recency or like count with recency as tiebreak.
func (r *ConfessionRepository) Feed(ctx context.Context, tag *string, sort string, offset, limit int) ([]*models.Confession, error) {
	builder := squirrel.Select(
		"c.id", "c.user_id", "c.confession_text", "c.tags", "c.is_anonymous",
		"c.approved_by_admin", "c.likes_count", "c.comments_count", "c.is_featured", "c.created_at",
	).
		From("confessions c").
		Where("c.approved_by_admin").
		Offset(uint64(offset)).
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if tag != nil {
		builder = builder.Where("c.tags ILIKE ?", "%"+*tag+"%")
	}

	if sort == "most_liked" {
		builder = builder.OrderBy("c.likes_count DESC", "c.created_at DESC", "c.id DESC")
	} else {
		builder = builder.OrderBy("c.created_at DESC", "c.id DESC")
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving feed: %w", err)
	}
	defer rows.Close()

	return scanConfessions(rows)
}

// FeedCount counts approved confessions matching the feed filter
func (r *ConfessionRepository) FeedCount(ctx context.Context, tag *string) (int64, error) {
	builder := squirrel.Select("COUNT(*)").
		From("confessions c").
		Where("c.approved_by_admin").
		PlaceholderFormat(squirrel.Dollar)

	if tag != nil {
		builder = builder.Where("c.tags ILIKE ?", "%"+*tag+"%")
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("error counting feed: %w", err)
	}
	return total, nil
}

// ListByAuthor retrieves a user's attributed confessions, newest first.
// Anonymous posts carry no author id and never appear here.
func (r *ConfessionRepository) ListByAuthor(ctx context.Context, userID int64) ([]*models.Confession, error) {
	query := `
		SELECT id, user_id, confession_text, tags, is_anonymous, approved_by_admin,
		       likes_count, comments_count, is_featured, created_at
		FROM confessions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing confessions: %w", err)
	}
	defer rows.Close()

	return scanConfessions(rows)
}

// ListPending retrieves confessions awaiting moderation, oldest first
func (r *ConfessionRepository) ListPending(ctx context.Context, limit int) ([]*models.Confession, error) {
	query := `
		SELECT id, user_id, confession_text, tags, is_anonymous, approved_by_admin,
		       likes_count, comments_count, is_featured, created_at
		FROM confessions
		WHERE NOT approved_by_admin
		ORDER BY created_at ASC, id ASC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing pending confessions: %w", err)
	}
	defer rows.Close()

	return scanConfessions(rows)
}

// Delete removes a confession; like rows cascade
func (r *ConfessionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM confessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting confession: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConfessionNotFound
	}
	return nil
}

// LikedByUser reports which of the given confessions the user has liked
func (r *ConfessionRepository) LikedByUser(ctx context.Context, userID int64, confessionIDs []int64) (map[int64]bool, error) {
	liked := make(map[int64]bool, len(confessionIDs))
	if len(confessionIDs) == 0 {
		return liked, nil
	}

	query := `SELECT confession_id FROM confession_likes WHERE user_id = $1 AND confession_id = ANY($2)`
	rows, err := r.db.Pool.Query(ctx, query, userID, confessionIDs)
	if err != nil {
		return nil, fmt.Errorf("error retrieving likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning like: %w", err)
		}
		liked[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating likes: %w", err)
	}

	return liked, nil
}

func scanConfessions(rows pgx.Rows) ([]*models.Confession, error) {
	var confessions []*models.Confession
	for rows.Next() {
		var c models.Confession
		err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.Body,
			&c.Tags,
			&c.IsAnonymous,
			&c.Approved,
			&c.LikesCount,
			&c.CommentsCount,
			&c.IsFeatured,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning confession: %w", err)
		}
		confessions = append(confessions, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating confessions: %w", err)
	}

	return confessions, nil
}
