package voting

import (
	"testing"

	"stackit/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestVoteDeltas(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		actor    uint
		previous models.VoteDirection
		current  models.VoteDirection
		want     []Delta
	}{
		{"new upvote", 2, models.VoteNone, models.VoteUp, []Delta{{UserID: 1, Amount: UpvoteReward}}},
		{"new downvote", 2, models.VoteNone, models.VoteDown, nil},
		{"up to down", 2, models.VoteUp, models.VoteDown, []Delta{{UserID: 1, Amount: -UpvoteReward}}},
		{"down to up", 2, models.VoteDown, models.VoteUp, []Delta{{UserID: 1, Amount: UpvoteReward}}},
		{"repeat", 2, models.VoteUp, models.VoteUp, nil},
		{"self vote", 1, models.VoteNone, models.VoteUp, nil},
	}

	for _, tt := range tests {
		got := VoteDeltas(1, tt.actor, VoteResult{Previous: tt.previous, Current: tt.current})
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestAcceptDeltas(t *testing.T) {
	t.Parallel()

	prev := &models.Answer{ID: 1, AuthorID: 5}
	next := &models.Answer{ID: 2, AuthorID: 6}

	got := AcceptDeltas(1, AcceptResult{Accepted: next, Previous: prev, Changed: true, Notify: true})
	assert.Equal(t, []Delta{{UserID: 5, Amount: -AcceptReward}, {UserID: 6, Amount: AcceptReward}}, got)

	assert.Empty(t, AcceptDeltas(1, AcceptResult{Accepted: next}))
	assert.Empty(t, AcceptDeltas(6, AcceptResult{Accepted: next, Changed: true}))
}

func TestUnacceptDeltas(t *testing.T) {
	t.Parallel()

	a := &models.Answer{ID: 1, AuthorID: 5}
	assert.Equal(t, []Delta{{UserID: 5, Amount: -AcceptReward}}, UnacceptDeltas(1, a, true))
	assert.Empty(t, UnacceptDeltas(1, a, false))
	assert.Empty(t, UnacceptDeltas(5, a, true))
}
