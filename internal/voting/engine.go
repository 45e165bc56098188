// Package voting holds the state transitions for votes, follows and accepted answers.
// Every function here is pure: callers load the documents, apply a transition, and
// persist the result under their own serialization.
package voting

import (
	"stackit/internal/models"
)

// Votable is anything carrying a vote set and an owner.
type Votable interface {
	Tally() *models.VoteSet
	OwnerID() uint
}

// VoteResult describes a vote transition.
type VoteResult struct {
	Previous models.VoteDirection
	Current  models.VoteDirection
	// Notify is set when the owner should hear about a fresh upvote.
	Notify bool
}

// Changed reports whether the actor moved sides.
func (r VoteResult) Changed() bool {
	return r.Previous != r.Current
}

// ApplyVote removes actorID from both sides of target's vote set, adds it to the
// side named by dir and recounts. Casting the same direction twice is not a toggle.
func ApplyVote(target Votable, actorID uint, dir models.VoteDirection) (VoteResult, error) {
	if !dir.Valid() {
		return VoteResult{}, models.NewValidationError("Vote type must be 'up' or 'down'")
	}

	set := target.Tally()
	previous := set.DirectionOf(actorID)

	set.Upvotes.Remove(actorID)
	set.Downvotes.Remove(actorID)
	if dir == models.VoteUp {
		set.Upvotes.Add(actorID)
	} else {
		set.Downvotes.Add(actorID)
	}
	set.Recount()

	return VoteResult{
		Previous: previous,
		Current:  dir,
		Notify:   dir == models.VoteUp && previous != models.VoteUp && actorID != target.OwnerID(),
	}, nil
}

// FollowResult describes a follow toggle.
type FollowResult struct {
	Following bool
	Notify    bool
}

// ToggleFollow adds actorID to the question's followers, or removes it when already present.
func ToggleFollow(q *models.Question, actorID uint) FollowResult {
	if q.Followers.Remove(actorID) {
		return FollowResult{Following: false}
	}
	q.Followers.Add(actorID)
	return FollowResult{Following: true, Notify: actorID != q.AuthorID}
}

// AcceptResult describes an accept transition.
type AcceptResult struct {
	Accepted *models.Answer
	// Previous is the answer that lost its accepted flag, if any.
	Previous *models.Answer
	// Changed is false when the answer was already the accepted one.
	Changed bool
	Notify  bool
}

// AcceptAnswer marks answerID as the question's accepted answer and clears the flag on
// every sibling. q.Answers must hold all of the question's answers.
func AcceptAnswer(q *models.Question, answerID, actorID uint) (AcceptResult, error) {
	if actorID != q.AuthorID {
		return AcceptResult{}, models.NewForbiddenError("Only the question author can accept answers")
	}

	target := q.AnswerByID(answerID)
	if target == nil {
		return AcceptResult{}, models.NewNotFoundError("Answer", answerID)
	}

	var result AcceptResult
	for i := range q.Answers {
		a := &q.Answers[i]
		if a.ID == answerID {
			continue
		}
		if a.IsAccepted {
			a.IsAccepted = false
			result.Previous = a
		}
	}

	alreadyAccepted := target.IsAccepted
	target.IsAccepted = true
	id := target.ID
	q.AcceptedAnswerID = &id

	result.Accepted = target
	result.Changed = !alreadyAccepted
	result.Notify = result.Changed && target.AuthorID != actorID
	return result, nil
}

// UnacceptAnswer clears the accepted flag on answerID only; no other answer is promoted.
// The question's pointer is cleared when it referenced this answer.
func UnacceptAnswer(q *models.Question, answerID, actorID uint) (*models.Answer, bool, error) {
	if actorID != q.AuthorID {
		return nil, false, models.NewForbiddenError("Only the question author can unaccept answers")
	}

	target := q.AnswerByID(answerID)
	if target == nil {
		return nil, false, models.NewNotFoundError("Answer", answerID)
	}

	wasAccepted := target.IsAccepted
	target.IsAccepted = false
	if q.AcceptedAnswerID != nil && *q.AcceptedAnswerID == answerID {
		q.AcceptedAnswerID = nil
	}
	return target, wasAccepted, nil
}
