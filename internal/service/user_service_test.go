package service

import (
	"context"
	"errors"
	"testing"

	"trustflow-service/internal/auth"
	"trustflow-service/internal/errs"
	"trustflow-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpgradeTier(t *testing.T) {
	f := newFakeStore()
	f.addUser(models.User{ID: 1, Role: models.RoleBuyer, Tier: models.TierBronze})
	audit := &fakeAudit{}
	svc := NewUserService(f, audit)

	user, err := svc.UpgradeTier(context.Background(), auth.Identity{UserID: 1, Role: models.RoleBuyer}, testOrigin, &UpgradeTierRequest{Tier: models.TierGold})
	require.NoError(t, err)

	assert.Equal(t, models.TierGold, user.Tier)
	assert.Equal(t, []string{"USER_UPGRADE_GOLD"}, audit.actions)
}

func TestUpgradeTierRejectsUnknownTier(t *testing.T) {
	f := newFakeStore()
	f.addUser(models.User{ID: 1, Role: models.RoleBuyer})
	svc := NewUserService(f, &fakeAudit{})

	_, err := svc.UpgradeTier(context.Background(), auth.Identity{UserID: 1}, testOrigin, &UpgradeTierRequest{Tier: "diamond"})
	assert.True(t, errors.Is(err, errs.ErrInvalidState))
}

func TestMeReturnsOwnRecord(t *testing.T) {
	f := newFakeStore()
	f.addUser(models.User{ID: 1, Role: models.RoleBuyer, Email: "alice@example.com"})
	svc := NewUserService(f, &fakeAudit{})

	user, err := svc.Me(context.Background(), auth.Identity{UserID: 1, Role: models.RoleBuyer})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestListCarriers(t *testing.T) {
	f := newFakeStore()
	f.addUser(models.User{ID: 1, Role: models.RoleBuyer})
	f.addUser(models.User{ID: 3, Role: models.RoleCarrier})
	svc := NewUserService(f, &fakeAudit{})

	carriers, err := svc.ListCarriers(context.Background())
	require.NoError(t, err)
	require.Len(t, carriers, 1)
	assert.Equal(t, int64(3), carriers[0].ID)
}
