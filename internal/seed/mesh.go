package seed

import (
	"fmt"
	"strings"
	"time"

	"stackit/internal/models"
	"stackit/internal/validation"
	"stackit/internal/voting"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MeshOptions shape a generated community.
type MeshOptions struct {
	Users int
	// QuestionsPerUser is the upper bound of questions each user asks.
	QuestionsPerUser int
	// MaxDays spreads creation times over the last MaxDays days.
	MaxDays int
	// Seed makes the generated content reproducible; zero picks a time-based seed.
	Seed int64
}

// SeedFakeMesh generates users who ask, answer, vote on and accept each other's
// content. Every mutation goes through the voting engine, and reputation is the sum
// of the resulting deltas.
func (s *Seeder) SeedFakeMesh(opts MeshOptions) (Stats, error) {
	var stats Stats
	if opts.Users <= 0 {
		return stats, nil
	}
	if opts.QuestionsPerUser <= 0 {
		opts.QuestionsPerUser = 2
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(opts.Seed)

	hash, err := s.hashPassword()
	if err != nil {
		return stats, err
	}
	now := s.now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		users := make([]*models.User, 0, opts.Users)
		for i := 0; i < opts.Users; i++ {
			u := fakeUser(faker, i, hash, now.AddDate(0, 0, -opts.MaxDays))
			if err := tx.Create(u).Error; err != nil {
				return fmt.Errorf("create fake user: %w", err)
			}
			users = append(users, u)
		}
		stats.Users = len(users)
		if len(users) < 2 {
			return nil
		}

		reputation := make(map[uint]int, len(users))
		for _, author := range users {
			asked := faker.Number(0, opts.QuestionsPerUser)
			for n := 0; n < asked; n++ {
				created := now.Add(-time.Duration(faker.Number(0, opts.MaxDays*24*60)) * time.Minute)
				q := fakeQuestion(faker, author, created)
				if err := tx.Create(q).Error; err != nil {
					return fmt.Errorf("create fake question: %w", err)
				}
				stats.Questions++

				answered, votes, err := s.discuss(tx, faker, q, users, reputation, now)
				if err != nil {
					return err
				}
				stats.Answers += answered
				stats.Votes += votes
			}
		}

		for _, u := range users {
			if delta := reputation[u.ID]; delta > 0 {
				if err := tx.Model(u).Update("reputation", delta).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	return stats, err
}

// discuss adds answers and votes to q from random members and possibly accepts one.
func (s *Seeder) discuss(tx *gorm.DB, faker *gofakeit.Faker, q *models.Question, users []*models.User, reputation map[uint]int, now time.Time) (int, int, error) {
	votes := 0
	credit := func(deltas []voting.Delta) {
		for _, d := range deltas {
			reputation[d.UserID] += d.Amount
		}
	}

	for _, i := range faker.Rand.Perm(len(users))[:faker.Number(0, min(3, len(users)-1))] {
		answerer := users[i]
		if answerer.ID == q.AuthorID {
			continue
		}
		a := models.Answer{
			Content:    validation.Sanitize(faker.Paragraph(1, 3, 12, " ")),
			AuthorID:   answerer.ID,
			QuestionID: q.ID,
			CreatedAt:  between(faker, q.CreatedAt, now),
		}
		if err := tx.Create(&a).Error; err != nil {
			return 0, 0, fmt.Errorf("create fake answer: %w", err)
		}
		q.Answers = append(q.Answers, a)
	}

	for _, voter := range users {
		if voter.ID == q.AuthorID || faker.Number(0, 2) != 0 {
			continue
		}
		res, err := voting.ApplyVote(q, voter.ID, randomDirection(faker))
		if err != nil {
			return 0, 0, err
		}
		credit(voting.VoteDeltas(q.AuthorID, voter.ID, res))
		votes++
	}
	for i := range q.Answers {
		a := &q.Answers[i]
		for _, voter := range users {
			if voter.ID == a.AuthorID || faker.Number(0, 3) != 0 {
				continue
			}
			res, err := voting.ApplyVote(a, voter.ID, randomDirection(faker))
			if err != nil {
				return 0, 0, err
			}
			credit(voting.VoteDeltas(a.AuthorID, voter.ID, res))
			votes++
		}
		if err := tx.Model(a).Select("votes", "upvotes", "downvotes").Updates(a).Error; err != nil {
			return 0, 0, err
		}
	}

	if len(q.Answers) > 0 && faker.Bool() {
		pick := q.Answers[faker.Number(0, len(q.Answers)-1)].ID
		res, err := voting.AcceptAnswer(q, pick, q.AuthorID)
		if err != nil {
			return 0, 0, err
		}
		credit(voting.AcceptDeltas(q.AuthorID, res))
		if err := saveAcceptance(tx, q); err != nil {
			return 0, 0, err
		}
	}

	err := tx.Model(q).Omit(clause.Associations).Select("votes", "upvotes", "downvotes", "views").Updates(q).Error
	return len(q.Answers), votes, err
}

func fakeUser(faker *gofakeit.Faker, i int, hash string, joinedAfter time.Time) *models.User {
	name := faker.Name()
	if len(name) > 50 {
		name = name[:50]
	}
	email := fmt.Sprintf("%s.%d@example.com", strings.ToLower(faker.Username()), i)
	language := models.LanguageEnglish
	if faker.Number(0, 3) == 0 {
		language = models.LanguageHindi
	}
	joined := between(faker, joinedAfter, time.Now())
	return &models.User{
		Name:         name,
		Email:        &email,
		Password:     hash,
		Avatar:       models.DefaultAvatarURL(name),
		Bio:          faker.Sentence(8),
		Language:     language,
		IsVerified:   faker.Bool(),
		IsActive:     true,
		JoinDate:     joined,
		LastSeen:     joined,
		Preferences:  models.DefaultPreferences(),
		FollowedTags: models.StringSet(validation.NormalizeTags([]string{faker.ProgrammingLanguage(), faker.ProgrammingLanguage()})),
	}
}

func fakeQuestion(faker *gofakeit.Faker, author *models.User, created time.Time) *models.Question {
	lang := faker.ProgrammingLanguage()
	tags := validation.NormalizeTags([]string{lang, faker.Noun(), faker.Noun()})
	for i, t := range tags {
		if len(t) > 20 {
			tags[i] = t[:20]
		}
	}
	return &models.Question{
		Title:     fmt.Sprintf("How do I %s a %s in %s?", faker.Verb(), faker.Noun(), lang),
		Content:   validation.Sanitize(faker.Paragraph(2, 4, 14, "\n\n")),
		AuthorID:  author.ID,
		Tags:      models.StringSet(tags),
		Language:  author.Language,
		Views:     faker.Number(0, 500),
		CreatedAt: created,
	}
}

func randomDirection(faker *gofakeit.Faker) models.VoteDirection {
	if faker.Number(0, 4) == 0 {
		return models.VoteDown
	}
	return models.VoteUp
}

func between(faker *gofakeit.Faker, from, to time.Time) time.Time {
	span := to.Sub(from)
	if span <= 0 {
		return from
	}
	return from.Add(time.Duration(faker.Int64() % int64(span)).Abs())
}
