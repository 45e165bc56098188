package repository

import (
	"context"
	"testing"

	"stackit/internal/models"
	"stackit/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	john := testutil.CreateUser(t, f.db, "john")
	jane := testutil.CreateUser(t, f.db, "jane")

	var ids []uint
	for i := 0; i < 3; i++ {
		n := &models.Notification{
			Type: models.NotificationVote, Title: "Question Upvoted", Message: "jane upvoted your question",
			UserID: john.ID, FromUserID: &jane.ID, RelatedID: 1, RelatedModel: models.RelatedQuestion,
		}
		require.NoError(t, f.notes.Create(ctx, n))
		ids = append(ids, n.ID)
	}
	require.NoError(t, f.notes.Create(ctx, &models.Notification{
		Type: models.NotificationFollow, Title: "Question Followed", Message: "m", UserID: jane.ID,
	}))

	list, total, err := f.notes.ListByUser(ctx, john.ID, false, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	require.NotNil(t, list[0].FromUserCard)
	assert.Equal(t, "jane", list[0].FromUserCard.Name)

	require.NoError(t, f.notes.MarkRead(ctx, ids[0]))
	unread, err := f.notes.CountUnread(ctx, john.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	onlyUnread, total, err := f.notes.ListByUser(ctx, john.ID, true, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, onlyUnread, 2)

	n, err := f.notes.MarkAllRead(ctx, john.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, f.notes.Delete(ctx, ids[1]))
	_, err = f.notes.GetByID(ctx, ids[1])
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	cleared, err := f.notes.DeleteAllForUser(ctx, john.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)

	janes, err := f.notes.CountUnread(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), janes)
}

func TestDeleteRelatedNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	john := testutil.CreateUser(t, f.db, "john")

	for _, id := range []uint{1, 2, 3} {
		require.NoError(t, f.notes.Create(ctx, &models.Notification{
			Type: models.NotificationAnswer, Title: "New Answer", Message: "m",
			UserID: john.ID, RelatedID: id, RelatedModel: models.RelatedAnswer,
		}))
	}
	require.NoError(t, deleteRelatedNotifications(f.db.WithContext(ctx), models.RelatedAnswer, []uint{1, 3}))
	require.NoError(t, deleteRelatedNotifications(f.db.WithContext(ctx), models.RelatedAnswer, nil))

	count, err := f.notes.CountUnread(ctx, john.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	k := &keyedMutex{locks: make(map[string]*refLock)}
	unlock := k.Lock("question:1")
	assert.Len(t, k.locks, 1)
	unlock()
	assert.Empty(t, k.locks)
}

func TestLikePatternEscapes(t *testing.T) {
	assert.Equal(t, `%100\%%`, likePattern(" 100% "))
	assert.Equal(t, `%a\_b%`, likePattern("A_B"))
}
