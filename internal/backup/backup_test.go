package backup

import (
	"bytes"
	"context"
	"testing"

	"stackit/internal/models"
	"stackit/internal/seed"
	"stackit/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func seeded(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.NewTestDB(t)
	f, err := seed.LoadFixtures()
	require.NoError(t, err)
	_, err = seed.NewSeeder(db).WithBcryptCost(bcrypt.MinCost).SeedFixtures(f)
	require.NoError(t, err)

	john := uint(1)
	require.NoError(t, db.Create(&models.Notification{
		Type:         models.NotificationAnswer,
		Title:        "New answer",
		Message:      "Jane Smith answered your question",
		UserID:       1,
		FromUserID:   &john,
		RelatedID:    1,
		RelatedModel: "Question",
	}).Error)
	return db
}

func TestDumpWriteReadRestore(t *testing.T) {
	ctx := context.Background()
	src := seeded(t)

	snap, err := Dump(ctx, src, "stackit")
	require.NoError(t, err)
	assert.Equal(t, Stats{Users: 3, Questions: 3, Answers: 3, Notifications: 1}, snap.Stats)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snap))
	assert.Contains(t, buf.String(), `"passwordHash"`)
	assert.NotContains(t, buf.String(), `"password"`)

	decoded, err := Read(&buf)
	require.NoError(t, err)

	dst := testutil.NewTestDB(t)
	testutil.CreateUser(t, dst, "stale")
	stats, err := Restore(ctx, dst, decoded)
	require.NoError(t, err)
	assert.Equal(t, snap.Stats, stats)

	var users []models.User
	require.NoError(t, dst.Order("id").Find(&users).Error)
	require.Len(t, users, 3)
	assert.Equal(t, "John Doe", users[0].Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte(seed.DefaultPassword)))

	var q models.Question
	require.NoError(t, dst.Preload("Answers").First(&q, snap.Collections.Questions[0].ID).Error)
	assert.Equal(t, snap.Collections.Questions[0].Upvotes, q.Upvotes)
	assert.Equal(t, snap.Collections.Questions[0].Tags, q.Tags)
	require.Len(t, q.Answers, 1)
	assert.True(t, q.Answers[0].IsAccepted)

	again, err := Dump(ctx, dst, "stackit")
	require.NoError(t, err)
	assert.Equal(t, snap.Stats, again.Stats)
}

func TestRead_RejectsGarbage(t *testing.T) {
	_, err := Read(bytes.NewBufferString("{not json"))
	assert.Error(t, err)
}
