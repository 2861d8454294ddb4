package family

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository handles persistence of families and their members.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new family repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create stores f and adds its owner as the first member.
func (r *Repository) Create(ctx context.Context, f Family) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO families (id, name, owner_id, telegram_chat_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.OwnerID, f.TelegramChatID, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert family: %w", err)
	}

	if err := addMember(ctx, tx, Member{FamilyID: f.ID, UserID: f.OwnerID, Role: RoleOwner, JoinedAt: f.CreatedAt}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit family: %w", err)
	}
	return nil
}

// Get returns the family with the given ID, or nil.
func (r *Repository) Get(ctx context.Context, id string) (*Family, error) {
	var f Family
	err := r.db.GetContext(ctx, &f,
		`SELECT id, name, owner_id, telegram_chat_id, created_at FROM families WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get family %s: %w", id, err)
	}
	return &f, nil
}

// FamilyOf returns the family userID belongs to, or nil.
func (r *Repository) FamilyOf(ctx context.Context, userID string) (*Family, error) {
	var f Family
	err := r.db.GetContext(ctx, &f, `
		SELECT f.id, f.name, f.owner_id, f.telegram_chat_id, f.created_at
		FROM families f JOIN family_members m ON m.family_id = f.id
		WHERE m.user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get family of user %s: %w", userID, err)
	}
	return &f, nil
}

// Members lists the members of a family in join order.
func (r *Repository) Members(ctx context.Context, familyID string) ([]Member, error) {
	var members []Member
	err := r.db.SelectContext(ctx, &members,
		`SELECT family_id, user_id, role, joined_at FROM family_members WHERE family_id = ? ORDER BY joined_at, user_id`,
		familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	return members, nil
}

// AddMember adds a user to a family. A user belongs to at most one family.
func (r *Repository) AddMember(ctx context.Context, m Member) error {
	return addMember(ctx, r.db, m)
}

// SetTelegramChat stores the chat that receives the family's notifications.
func (r *Repository) SetTelegramChat(ctx context.Context, familyID string, chatID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE families SET telegram_chat_id = ? WHERE id = ?`, chatID, familyID)
	if err != nil {
		return fmt.Errorf("failed to set telegram chat: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func addMember(ctx context.Context, ex sqlx.ExecerContext, m Member) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO family_members (family_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
		m.FamilyID, m.UserID, m.Role, m.JoinedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyMember
		}
		return fmt.Errorf("failed to add family member: %w", err)
	}
	return nil
}
