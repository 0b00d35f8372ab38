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

const groupColumns = `
	g.id, g.creator_id, g.name, g.description, g.group_type, g.is_public,
	g.max_members, g.created_at,
	(SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id AND NOT gm.is_banned) AS member_count
`

// GroupRepository handles database operations for groups and memberships
type GroupRepository struct {
	db *db.PostgresDB
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(database *db.PostgresDB) *GroupRepository {
	return &GroupRepository{db: database}
}

// Create inserts the group and its creator's admin membership in one
// transaction, so a group is never observable without an admin.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		groupQuery := `
			INSERT INTO groups (creator_id, name, description, group_type, is_public, max_members)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`
		err := tx.QueryRow(ctx, groupQuery,
			group.CreatorID,
			group.Name,
			group.Description,
			group.GroupType,
			group.IsPublic,
			group.MaxMembers,
		).Scan(&group.ID, &group.CreatedAt)
		if err != nil {
			return fmt.Errorf("error creating group: %w", err)
		}

		memberQuery := `INSERT INTO group_members (group_id, user_id, role) VALUES ($1, $2, 'admin')`
		if _, err := tx.Exec(ctx, memberQuery, group.ID, group.CreatorID); err != nil {
			return fmt.Errorf("error adding creator membership: %w", err)
		}

		group.MemberCount = 1
		return nil
	})
}

// GetByID retrieves a group with its member count
func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.id = $1`

	var group models.Group
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&group.ID,
		&group.CreatorID,
		&group.Name,
		&group.Description,
		&group.GroupType,
		&group.IsPublic,
		&group.MaxMembers,
		&group.CreatedAt,
		&group.MemberCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, fmt.Errorf("error retrieving group: %w", err)
	}

	return &group, nil
}

// GetMember retrieves a user's membership in a group, banned or not
func (r *GroupRepository) GetMember(ctx context.Context, groupID, userID int64) (*models.GroupMember, error) {
	query := `
		SELECT id, group_id, user_id, role, joined_at, is_banned
		FROM group_members
		WHERE group_id = $1 AND user_id = $2
	`

	var member models.GroupMember
	err := r.db.Pool.QueryRow(ctx, query, groupID, userID).Scan(
		&member.ID,
		&member.GroupID,
		&member.UserID,
		&member.Role,
		&member.JoinedAt,
		&member.IsBanned,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotMember
		}
		return nil, fmt.Errorf("error retrieving membership: %w", err)
	}

	return &member, nil
}

// Join adds the user as a member inside a transaction. The group row is
// locked before counting so max_members can never be exceeded by concurrent
// joins. Banned members cannot rejoin.
func (r *GroupRepository) Join(ctx context.Context, groupID, userID int64) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		lockQuery := `SELECT max_members FROM groups WHERE id = $1 FOR UPDATE`
		var maxMembers *int
		if err := tx.QueryRow(ctx, lockQuery, groupID).Scan(&maxMembers); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrGroupNotFound
			}
			return fmt.Errorf("error locking group: %w", err)
		}

		var banned bool
		banQuery := `SELECT is_banned FROM group_members WHERE group_id = $1 AND user_id = $2`
		err := tx.QueryRow(ctx, banQuery, groupID, userID).Scan(&banned)
		if err == nil {
			if banned {
				return apperrors.ErrMemberBanned
			}
			return apperrors.ErrAlreadyMember
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("error checking membership: %w", err)
		}

		if maxMembers != nil {
			var count int64
			countQuery := `SELECT COUNT(*) FROM group_members WHERE group_id = $1 AND NOT is_banned`
			if err := tx.QueryRow(ctx, countQuery, groupID).Scan(&count); err != nil {
				return fmt.Errorf("error counting members: %w", err)
			}
			if count >= int64(*maxMembers) {
				return apperrors.ErrGroupFull
			}
		}

		insertQuery := `INSERT INTO group_members (group_id, user_id, role) VALUES ($1, $2, 'member')`
		if _, err := tx.Exec(ctx, insertQuery, groupID, userID); err != nil {
			if dberrors.IsUniqueViolation(err) {
				return apperrors.ErrAlreadyMember
			}
			return fmt.Errorf("error inserting membership: %w", err)
		}
		return nil
	})
}

// Leave removes the user's membership inside a transaction. A sole admin may
// not leave while other members remain; when the leaving admin is the last
// member the group row is deleted with the membership.
func (r *GroupRepository) Leave(ctx context.Context, groupID, userID int64) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		lockQuery := `SELECT id FROM groups WHERE id = $1 FOR UPDATE`
		var id int64
		if err := tx.QueryRow(ctx, lockQuery, groupID).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrGroupNotFound
			}
			return fmt.Errorf("error locking group: %w", err)
		}

		var role models.GroupRole
		roleQuery := `SELECT role FROM group_members WHERE group_id = $1 AND user_id = $2`
		if err := tx.QueryRow(ctx, roleQuery, groupID, userID).Scan(&role); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrNotMember
			}
			return fmt.Errorf("error retrieving membership: %w", err)
		}

		var members, admins int64
		countQuery := `
			SELECT COUNT(*), COUNT(*) FILTER (WHERE role = 'admin')
			FROM group_members
			WHERE group_id = $1
		`
		if err := tx.QueryRow(ctx, countQuery, groupID).Scan(&members, &admins); err != nil {
			return fmt.Errorf("error counting members: %w", err)
		}

		if role == models.GroupRoleAdmin && admins == 1 && members > 1 {
			return apperrors.ErrLastGroupAdmin
		}

		if members == 1 {
			// Memberships cascade with the group row
			if _, err := tx.Exec(ctx, `DELETE FROM groups WHERE id = $1`, groupID); err != nil {
				return fmt.Errorf("error deleting empty group: %w", err)
			}
			return nil
		}

		deleteQuery := `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`
		if _, err := tx.Exec(ctx, deleteQuery, groupID, userID); err != nil {
			return fmt.Errorf("error deleting membership: %w", err)
		}
		return nil
	})
}

// SetRole changes a member's role inside a transaction. Demoting the last
// admin is refused.
func (r *GroupRepository) SetRole(ctx context.Context, groupID, userID int64, role models.GroupRole) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var current models.GroupRole
		roleQuery := `SELECT role FROM group_members WHERE group_id = $1 AND user_id = $2 FOR UPDATE`
		if err := tx.QueryRow(ctx, roleQuery, groupID, userID).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrNotMember
			}
			return fmt.Errorf("error retrieving membership: %w", err)
		}

		if current == models.GroupRoleAdmin && role != models.GroupRoleAdmin {
			var admins int64
			countQuery := `SELECT COUNT(*) FROM group_members WHERE group_id = $1 AND role = 'admin'`
			if err := tx.QueryRow(ctx, countQuery, groupID).Scan(&admins); err != nil {
				return fmt.Errorf("error counting admins: %w", err)
			}
			if admins == 1 {
				return apperrors.ErrLastGroupAdmin
			}
		}

		updateQuery := `UPDATE group_members SET role = $1 WHERE group_id = $2 AND user_id = $3`
		if _, err := tx.Exec(ctx, updateQuery, role, groupID, userID); err != nil {
			return fmt.Errorf("error updating role: %w", err)
		}
		return nil
	})
}

// SetBanned flips a member's ban flag
func (r *GroupRepository) SetBanned(ctx context.Context, groupID, userID int64, banned bool) error {
	query := `UPDATE group_members SET is_banned = $1 WHERE group_id = $2 AND user_id = $3`

	tag, err := r.db.Pool.Exec(ctx, query, banned, groupID, userID)
	if err != nil {
		return fmt.Errorf("error updating ban flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotMember
	}
	return nil
}

// Discover retrieves groups the user is not a member of, optionally filtered
// by type, newest first. Private groups are listed; joining them is what
// requires approval.
func (r *GroupRepository) Discover(ctx context.Context, userID int64, groupType *string, limit int) ([]*models.Group, error) {
	builder := squirrel.Select(
		"g.id", "g.creator_id", "g.name", "g.description", "g.group_type",
		"g.is_public", "g.max_members", "g.created_at",
		"(SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id AND NOT gm.is_banned) AS member_count",
	).
		From("groups g").
		Where(`NOT EXISTS (
			SELECT 1 FROM group_members gm
			WHERE gm.group_id = g.id AND gm.user_id = ?
		)`, userID).
		OrderBy("g.created_at DESC", "g.id DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if groupType != nil {
		builder = builder.Where("g.group_type = ?", *groupType)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error discovering groups: %w", err)
	}
	defer rows.Close()

	return scanGroups(rows)
}

// ListByMember retrieves the groups the user belongs to together with their
// role in each.
func (r *GroupRepository) ListByMember(ctx context.Context, userID int64) ([]*models.Group, []models.GroupRole, error) {
	query := `
		SELECT ` + groupColumns + `, gm.role
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = $1 AND NOT gm.is_banned
		ORDER BY gm.joined_at DESC, g.id DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("error listing groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	var roles []models.GroupRole
	for rows.Next() {
		var group models.Group
		var role models.GroupRole
		err := rows.Scan(
			&group.ID,
			&group.CreatorID,
			&group.Name,
			&group.Description,
			&group.GroupType,
			&group.IsPublic,
			&group.MaxMembers,
			&group.CreatedAt,
			&group.MemberCount,
			&role,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("error scanning group: %w", err)
		}
		groups = append(groups, &group)
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating groups: %w", err)
	}

	return groups, roles, nil
}

// Members retrieves a group's members with directory info, admins first then
// by join time.
func (r *GroupRepository) Members(ctx context.Context, groupID int64) ([]*models.GroupMember, error) {
	query := `
		SELECT gm.id, gm.group_id, gm.user_id, gm.role, gm.joined_at, gm.is_banned,
		` + summaryColumns + `
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		` + summaryJoins + `
		WHERE gm.group_id = $1
		ORDER BY CASE gm.role WHEN 'admin' THEN 0 WHEN 'moderator' THEN 1 ELSE 2 END,
		         gm.joined_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("error listing members: %w", err)
	}
	defer rows.Close()

	var members []*models.GroupMember
	for rows.Next() {
		var member models.GroupMember
		var summary models.UserSummary
		err := rows.Scan(
			&member.ID,
			&member.GroupID,
			&member.UserID,
			&member.Role,
			&member.JoinedAt,
			&member.IsBanned,
			&summary.ID,
			&summary.Username,
			&summary.DisplayName,
			&summary.Role,
			&summary.Branch,
			&summary.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning member: %w", err)
		}
		member.Member = &summary
		members = append(members, &member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}

func scanGroups(rows pgx.Rows) ([]*models.Group, error) {
	var groups []*models.Group
	for rows.Next() {
		var group models.Group
		err := rows.Scan(
			&group.ID,
			&group.CreatorID,
			&group.Name,
			&group.Description,
			&group.GroupType,
			&group.IsPublic,
			&group.MaxMembers,
			&group.CreatedAt,
			&group.MemberCount,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning group: %w", err)
		}
		groups = append(groups, &group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}

	return groups, nil
}
