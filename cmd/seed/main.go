package main

import (
	"context"

	"github.com/collegebuddy/api/config"
	"github.com/collegebuddy/api/database"
	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/utils/logger"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := config.LoadENV(); err != nil {
		panic(err)
	}

	env, err := config.Get()
	if err != nil {
		panic(err)
	}

	if err := logger.Init(env.IsProduction()); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Named("seed")

	store, err := database.StartGORM(env)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	seeder := database.NewSeeder(store.GetDB())
	err = seeder.SeedAll(context.Background(),
		database.SeedAccount{
			Email:    env.SEED_SUPERADMIN_EMAIL,
			Password: env.SEED_SUPERADMIN_PASSWORD,
			Name:     "Super Admin",
			Role:     model.RoleSuperAdmin,
		},
		database.SeedAccount{
			Email:    env.SEED_ADMIN_EMAIL,
			Password: env.SEED_ADMIN_PASSWORD,
			Name:     "Admin",
			Role:     model.RoleAdmin,
		},
	)
	if err != nil {
		log.Fatal("seeding failed", zap.Error(err))
	}

	log.Info("seeding completed, accounts come from SEED_SUPERADMIN_* and SEED_ADMIN_*")
}
