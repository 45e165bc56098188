// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"stackit/internal/config"
	"stackit/internal/database"
	"stackit/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NewTestDB returns a migrated, private in-memory SQLite database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{Env: "test", DBDriver: "sqlite", DBPath: ":memory:"}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewTestRedis starts a miniredis server and returns a client connected to it.
func NewTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// CreateUser inserts a user with default preferences.
func CreateUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	email := fmt.Sprintf("%s@example.com", name)
	u := &models.User{
		Name:        name,
		Email:       &email,
		Password:    "$2a$04$invalidhashforfixturesonly000000000000000000000000000",
		Avatar:      models.DefaultAvatarURL(name),
		Language:    models.LanguageEnglish,
		IsActive:    true,
		Preferences: models.DefaultPreferences(),
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}
