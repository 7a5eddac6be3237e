package database

import (
	"context"
	"testing"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/utils/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeder_SeedAllIsIdempotent(t *testing.T) {
	store, err := NewMemoryStore(t.Name())
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	seeder := NewSeeder(store.GetDB())
	accounts := []SeedAccount{
		{Email: "root@collegebuddy.in", Password: "superSecret1", Name: "Super Admin", Role: model.RoleSuperAdmin},
		{Email: "admin@collegebuddy.in", Password: "adminSecret1", Name: "Content Admin", Role: model.RoleAdmin},
		{Name: "No Credentials", Role: model.RoleAdmin},
	}

	require.NoError(t, seeder.SeedAll(ctx, accounts...))
	require.NoError(t, seeder.SeedAll(ctx, accounts...))

	var users []model.User
	require.NoError(t, store.GetDB().Order("id").Find(&users).Error)
	require.Len(t, users, 2)
	assert.Equal(t, model.RoleSuperAdmin, users[0].Role)
	assert.NotEmpty(t, users[0].ReferralCode)
	assert.NotEqual(t, users[0].ReferralCode, users[1].ReferralCode)
	assert.NoError(t, auth.VerifyPassword(users[0].PasswordHash, "superSecret1"))

	var courses int64
	store.GetDB().Model(&model.Course{}).Count(&courses)
	assert.Equal(t, int64(3), courses)

	var subjects int64
	store.GetDB().Model(&model.Subject{}).Count(&subjects)
	assert.Equal(t, int64(6), subjects)

	var gigs int64
	store.GetDB().Model(&model.Gig{}).Count(&gigs)
	assert.Equal(t, int64(2), gigs)
}

func TestMigrate_RerunIsNoop(t *testing.T) {
	store, err := NewMemoryStore(t.Name())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Init())
	assert.True(t, store.GetDB().Migrator().HasTable(&model.Earning{}))
	assert.True(t, store.GetDB().Migrator().HasIndex(&model.Earning{}, "idx_earning_referral_kind"))
	assert.NoError(t, store.HealthCheck())
	assert.False(t, IsPostgres(store.GetDB()))
}
