package main

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tienda/internal/config"
	"tienda/internal/db"
	"tienda/internal/model"
	"tienda/internal/repository"
)

// Demo accounts for local development. The fixed IDs keep re-runs and docs
// stable; the passwords are demo-only.
var sampleUsers = []struct {
	ID       string
	Email    string
	Password string
	FullName string
	Role     string
}{
	{
		ID:       "11111111-1111-1111-1111-111111111111",
		Email:    "admin@example.com",
		Password: "admin123",
		FullName: "Admin User",
		Role:     model.RoleAdmin,
	},
	{
		ID:       "22222222-2222-2222-2222-222222222222",
		Email:    "user@example.com",
		Password: "user123",
		FullName: "Normal User",
		Role:     model.RoleUser,
	},
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.Info("seeding sample users")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logrus.Fatalf("connect database: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		logrus.Fatalf("auto-migrate: %v", err)
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)

	for _, sample := range sampleUsers {
		existing, err := userRepo.FindByEmail(ctx, sample.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.Fatalf("check user %s: %v", sample.Email, err)
		}
		if existing != nil {
			logrus.Infof("user %s already present, skipping", sample.Email)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(sample.Password), 10)
		if err != nil {
			logrus.Fatalf("hash password for %s: %v", sample.Email, err)
		}

		user := &model.User{
			ID:           uuid.MustParse(sample.ID),
			Email:        sample.Email,
			PasswordHash: string(hash),
			FullName:     sample.FullName,
			Role:         sample.Role,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			logrus.Fatalf("insert user %s: %v", sample.Email, err)
		}
		logrus.Infof("inserted user %s (%s)", sample.Email, sample.Role)
	}

	logrus.Info("seed complete")
}
