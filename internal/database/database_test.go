package database

import (
	"testing"

	"stackit/internal/config"
	modelspkg "stackit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig() *config.Config {
	return &config.Config{Env: "test", DBDriver: "sqlite", DBPath: ":memory:"}
}

func TestConnectWithOptions_SQLiteMigrates(t *testing.T) {
	db, err := ConnectWithOptions(sqliteConfig(), ConnectOptions{ApplySchema: true})
	require.NoError(t, err)

	for _, model := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.True(t, db.Migrator().HasIndex(&modelspkg.Answer{}, "idx_answers_question_author"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestConnectWithOptions_UnknownDriver(t *testing.T) {
	cfg := sqliteConfig()
	cfg.DBDriver = "oracle"
	_, err := ConnectWithOptions(cfg, ConnectOptions{})
	assert.Error(t, err)
}

func TestSchemaStatus(t *testing.T) {
	db, err := ConnectWithOptions(sqliteConfig(), ConnectOptions{})
	require.NoError(t, err)

	before, err := SchemaStatus(db)
	require.NoError(t, err)
	for _, s := range before {
		assert.False(t, s.Exists, s.Table)
	}

	require.NoError(t, Migrate(db))
	require.NoError(t, db.Create(&modelspkg.User{Name: "Ada", Password: "x", Language: "en"}).Error)

	after, err := SchemaStatus(db)
	require.NoError(t, err)
	require.Len(t, after, len(PersistentModels()))
	assert.Equal(t, "users", after[0].Table)
	assert.True(t, after[0].Exists)
	assert.Equal(t, int64(1), after[0].Rows)
}

func TestPersistentModels_IncludesNotification(t *testing.T) {
	found := false
	for _, model := range PersistentModels() {
		if _, ok := model.(*modelspkg.Notification); ok {
			found = true
			break
		}
	}
	require.True(t, found, "PersistentModels should include Notification")
}

func TestClearAll(t *testing.T) {
	db, err := ConnectWithOptions(sqliteConfig(), ConnectOptions{ApplySchema: true})
	require.NoError(t, err)

	user := &modelspkg.User{Name: "Ada", Password: "x", Language: "en"}
	require.NoError(t, db.Create(user).Error)
	q := &modelspkg.Question{Title: "How do sequences work?", Content: "body", AuthorID: user.ID, Language: "en"}
	require.NoError(t, db.Create(q).Error)
	require.NoError(t, db.Create(&modelspkg.Answer{Content: "answer", AuthorID: user.ID, QuestionID: q.ID}).Error)

	require.NoError(t, ClearAll(db))
	require.NoError(t, ResetSequences(db))

	status, err := SchemaStatus(db)
	require.NoError(t, err)
	for _, s := range status {
		assert.Zero(t, s.Rows, s.Table)
	}
}
