package family

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/database/dbtest"
)

func newTestService(t *testing.T) (*Service, *time.Time) {
	t.Helper()
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s := NewService(NewRepository(dbtest.New(t)), "test-secret", time.Hour, nil)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestService(t *testing.T) {
	ctx := context.Background()
	s, now := newTestService(t)

	var fam *Family
	t.Run("Create", func(t *testing.T) {
		var err error
		fam, err = s.Create(ctx, "alice", "  The Smiths ")
		require.NoError(t, err)
		assert.Equal(t, "The Smiths", fam.Name)
		assert.NoError(t, uuid.Validate(fam.ID))

		_, err = s.Create(ctx, "alice", "Again")
		assert.ErrorIs(t, err, ErrAlreadyMember)

		_, err = s.Create(ctx, "carol", " ")
		assert.ErrorIs(t, err, ErrEmptyFamilyName)
	})

	t.Run("HouseholdFor", func(t *testing.T) {
		h, err := s.HouseholdFor(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, fam.ID, h)

		h, err = s.HouseholdFor(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, "bob", h)
	})

	t.Run("InviteAndJoin", func(t *testing.T) {
		token, expires, err := s.Invite(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, now.Add(time.Hour), expires)

		joined, err := s.Join(ctx, token, "bob")
		require.NoError(t, err)
		assert.Equal(t, fam.ID, joined.ID)

		h, err := s.HouseholdFor(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, fam.ID, h)

		_, err = s.Join(ctx, token, "bob")
		assert.ErrorIs(t, err, ErrAlreadyMember)

		members, err := s.Members(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, members, 2)
		assert.Equal(t, RoleOwner, members[0].Role)
		assert.Equal(t, RoleMember, members[1].Role)
		assert.Equal(t, "bob", members[1].UserID)
	})

	t.Run("InviteRequiresFamily", func(t *testing.T) {
		_, _, err := s.Invite(ctx, "dave")
		assert.ErrorIs(t, err, ErrNotMember)

		_, err = s.Members(ctx, "dave")
		assert.ErrorIs(t, err, ErrNotMember)
	})

	t.Run("ExpiredInvite", func(t *testing.T) {
		token, _, err := s.Invite(ctx, "alice")
		require.NoError(t, err)

		*now = now.Add(2 * time.Hour)
		_, err = s.Join(ctx, token, "erin")
		assert.ErrorIs(t, err, ErrInvalidInvite)
	})

	t.Run("ForgedInvite", func(t *testing.T) {
		other := NewService(s.repo, "another-secret", time.Hour, nil)
		other.now = s.now
		token, _, err := other.Invite(ctx, "alice")
		require.NoError(t, err)

		_, err = s.Join(ctx, token, "frank")
		assert.ErrorIs(t, err, ErrInvalidInvite)

		_, err = s.Join(ctx, "not-a-token", "frank")
		assert.ErrorIs(t, err, ErrInvalidInvite)
	})

	t.Run("SetTelegramChat", func(t *testing.T) {
		f, err := s.SetTelegramChat(ctx, "bob", 12345)
		require.NoError(t, err)
		assert.Equal(t, int64(12345), f.TelegramChatID)

		stored, err := s.FamilyOf(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(12345), stored.TelegramChatID)

		_, err = s.SetTelegramChat(ctx, "nobody", 1)
		assert.ErrorIs(t, err, ErrNotMember)
	})
}
