package voting

import "stackit/internal/models"

// Reputation rewards applied to content authors.
const (
	UpvoteReward = 2
	AcceptReward = 10
)

// Delta is a reputation change for one user.
type Delta struct {
	UserID uint
	Amount int
}

// VoteDeltas returns the reputation change caused by a vote transition on an item owned
// by ownerID. Only upvotes are rewarded; withdrawing one takes the reward back.
func VoteDeltas(ownerID, actorID uint, r VoteResult) []Delta {
	if ownerID == actorID || !r.Changed() {
		return nil
	}
	amount := 0
	if r.Previous == models.VoteUp {
		amount -= UpvoteReward
	}
	if r.Current == models.VoteUp {
		amount += UpvoteReward
	}
	if amount == 0 {
		return nil
	}
	return []Delta{{UserID: ownerID, Amount: amount}}
}

// AcceptDeltas returns the reputation change caused by an accept transition.
func AcceptDeltas(actorID uint, r AcceptResult) []Delta {
	var out []Delta
	if r.Previous != nil && r.Previous.AuthorID != actorID {
		out = append(out, Delta{UserID: r.Previous.AuthorID, Amount: -AcceptReward})
	}
	if r.Changed && r.Accepted.AuthorID != actorID {
		out = append(out, Delta{UserID: r.Accepted.AuthorID, Amount: AcceptReward})
	}
	return out
}

// UnacceptDeltas returns the reputation change for clearing an accepted answer.
func UnacceptDeltas(actorID uint, a *models.Answer, wasAccepted bool) []Delta {
	if !wasAccepted || a.AuthorID == actorID {
		return nil
	}
	return []Delta{{UserID: a.AuthorID, Amount: -AcceptReward}}
}
