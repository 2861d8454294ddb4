package family

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultInviteTTL = 72 * time.Hour

// Service implements family sharing on top of a Repository.
type Service struct {
	repo      *Repository
	secret    []byte
	inviteTTL time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a family service. Invites are signed with secret and
// stay valid for inviteTTL (three days when zero).
func NewService(repo *Repository, secret string, inviteTTL time.Duration, logger *zap.Logger) *Service {
	if inviteTTL <= 0 {
		inviteTTL = defaultInviteTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		secret:    []byte(secret),
		inviteTTL: inviteTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Create makes a new family owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID, name string) (*Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyFamilyName
	}

	existing, err := s.repo.FamilyOf(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	f := Family{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}

	s.logger.Info("family created", zap.String("family_id", f.ID), zap.String("owner_id", ownerID))
	return &f, nil
}

// FamilyOf returns the user's family, or nil when the user has none.
func (s *Service) FamilyOf(ctx context.Context, userID string) (*Family, error) {
	return s.repo.FamilyOf(ctx, userID)
}

// Members lists the members of userID's family in join order.
func (s *Service) Members(ctx context.Context, userID string) ([]Member, error) {
	f, err := s.repo.FamilyOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrNotMember
	}
	return s.repo.Members(ctx, f.ID)
}

// HouseholdFor returns the ID data is shared under: the family ID for family
// members, the user ID otherwise.
func (s *Service) HouseholdFor(ctx context.Context, userID string) (string, error) {
	f, err := s.repo.FamilyOf(ctx, userID)
	if err != nil {
		return "", err
	}
	if f == nil {
		return userID, nil
	}
	return f.ID, nil
}

// Invite issues a signed token that lets another user join inviterID's family.
func (s *Service) Invite(ctx context.Context, inviterID string) (string, time.Time, error) {
	f, err := s.repo.FamilyOf(ctx, inviterID)
	if err != nil {
		return "", time.Time{}, err
	}
	if f == nil {
		return "", time.Time{}, ErrNotMember
	}

	now := s.now()
	token, err := signInvite(s.secret, f.ID, inviterID, now, s.inviteTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, now.Add(s.inviteTTL).UTC(), nil
}

// Join verifies an invite token and adds userID to its family.
func (s *Service) Join(ctx context.Context, token, userID string) (*Family, error) {
	familyID, err := parseInvite(s.secret, token, s.now)
	if err != nil {
		return nil, err
	}

	f, err := s.repo.Get(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("%w: family no longer exists", ErrInvalidInvite)
	}

	if err := s.repo.AddMember(ctx, Member{FamilyID: f.ID, UserID: userID, Role: RoleMember, JoinedAt: s.now().UTC()}); err != nil {
		return nil, err
	}

	s.logger.Info("user joined family", zap.String("family_id", f.ID), zap.String("user_id", userID))
	return f, nil
}

// SetTelegramChat sets the notification chat of userID's family.
func (s *Service) SetTelegramChat(ctx context.Context, userID string, chatID int64) (*Family, error) {
	f, err := s.repo.FamilyOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrNotMember
	}
	if err := s.repo.SetTelegramChat(ctx, f.ID, chatID); err != nil {
		return nil, err
	}
	f.TelegramChatID = chatID
	return f, nil
}
