// Package seed fills a database with sample forum content for development and demos.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"stackit/internal/database"
	"stackit/internal/models"
	"stackit/internal/voting"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

//go:embed fixtures.yaml
var fixturesYAML []byte

// Fixtures is the hand-written sample content.
type Fixtures struct {
	Users     []UserFixture     `yaml:"users"`
	Questions []QuestionFixture `yaml:"questions"`
	Answers   []AnswerFixture   `yaml:"answers"`
}

type UserFixture struct {
	Name       string `yaml:"name"`
	Email      string `yaml:"email"`
	Language   string `yaml:"language"`
	Reputation int    `yaml:"reputation"`
	Verified   bool   `yaml:"verified"`
}

type QuestionFixture struct {
	Author   int      `yaml:"author"`
	Title    string   `yaml:"title"`
	Content  string   `yaml:"content"`
	Tags     []string `yaml:"tags"`
	Language string   `yaml:"language"`
	Views    int      `yaml:"views"`
	Upvotes  []int    `yaml:"upvotes"`
}

type AnswerFixture struct {
	Question int    `yaml:"question"`
	Author   int    `yaml:"author"`
	Content  string `yaml:"content"`
	Upvotes  []int  `yaml:"upvotes"`
	Accepted bool   `yaml:"accepted"`
}

// LoadFixtures parses the embedded fixture set.
func LoadFixtures() (*Fixtures, error) {
	return ParseFixtures(fixturesYAML)
}

// ParseFixtures decodes a fixture document and checks its cross references.
func ParseFixtures(raw []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	users, questions := len(f.Users), len(f.Questions)
	for i, q := range f.Questions {
		if q.Author < 0 || q.Author >= users {
			return nil, fmt.Errorf("question %d: unknown author %d", i, q.Author)
		}
		if err := checkVoters(q.Upvotes, users); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
	}
	for i, a := range f.Answers {
		if a.Question < 0 || a.Question >= questions {
			return nil, fmt.Errorf("answer %d: unknown question %d", i, a.Question)
		}
		if a.Author < 0 || a.Author >= users {
			return nil, fmt.Errorf("answer %d: unknown author %d", i, a.Author)
		}
		if err := checkVoters(a.Upvotes, users); err != nil {
			return nil, fmt.Errorf("answer %d: %w", i, err)
		}
	}
	return &f, nil
}

func checkVoters(voters []int, users int) error {
	for _, v := range voters {
		if v < 0 || v >= users {
			return fmt.Errorf("unknown voter %d", v)
		}
	}
	return nil
}

// Stats counts what a seeding run created.
type Stats struct {
	Users     int
	Questions int
	Answers   int
	Votes     int
}

// Seeder writes sample content through GORM.
type Seeder struct {
	db         *gorm.DB
	bcryptCost int
	now        func() time.Time
}

// NewSeeder creates a seeder hashing passwords at bcrypt.DefaultCost.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, bcryptCost: bcrypt.DefaultCost, now: time.Now}
}

// WithBcryptCost overrides the password hashing cost.
func (s *Seeder) WithBcryptCost(cost int) *Seeder {
	s.bcryptCost = cost
	return s
}

// ClearAll removes all forum content.
func (s *Seeder) ClearAll() error {
	return database.ClearAll(s.db)
}

func (s *Seeder) hashPassword() (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// SeedFixtures inserts f in one transaction. Vote tallies come from the listed
// voters so every stored vote set is consistent.
func (s *Seeder) SeedFixtures(f *Fixtures) (Stats, error) {
	var stats Stats
	hash, err := s.hashPassword()
	if err != nil {
		return stats, err
	}
	now := s.now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		users := make([]*models.User, 0, len(f.Users))
		for _, uf := range f.Users {
			email := uf.Email
			u := &models.User{
				Name:        uf.Name,
				Email:       &email,
				Password:    hash,
				Avatar:      models.DefaultAvatarURL(uf.Name),
				Language:    uf.Language,
				Reputation:  uf.Reputation,
				IsVerified:  uf.Verified,
				IsActive:    true,
				JoinDate:    now,
				LastSeen:    now,
				Preferences: models.DefaultPreferences(),
			}
			if err := tx.Create(u).Error; err != nil {
				return fmt.Errorf("create user %s: %w", uf.Name, err)
			}
			users = append(users, u)
		}
		stats.Users = len(users)

		questions := make([]*models.Question, 0, len(f.Questions))
		for i, qf := range f.Questions {
			q := &models.Question{
				Title:     qf.Title,
				Content:   qf.Content,
				AuthorID:  users[qf.Author].ID,
				Tags:      models.StringSet(qf.Tags),
				Language:  qf.Language,
				Views:     qf.Views,
				CreatedAt: now.Add(-time.Duration(len(f.Questions)-i) * time.Hour),
			}
			for _, v := range qf.Upvotes {
				if _, err := voting.ApplyVote(q, users[v].ID, models.VoteUp); err != nil {
					return err
				}
				stats.Votes++
			}
			if err := tx.Create(q).Error; err != nil {
				return fmt.Errorf("create question %q: %w", qf.Title, err)
			}
			questions = append(questions, q)
		}
		stats.Questions = len(questions)

		for _, af := range f.Answers {
			q := questions[af.Question]
			a := models.Answer{
				Content:    af.Content,
				AuthorID:   users[af.Author].ID,
				QuestionID: q.ID,
				CreatedAt:  q.CreatedAt.Add(30 * time.Minute),
			}
			for _, v := range af.Upvotes {
				if _, err := voting.ApplyVote(&a, users[v].ID, models.VoteUp); err != nil {
					return err
				}
				stats.Votes++
			}
			if err := tx.Create(&a).Error; err != nil {
				return fmt.Errorf("create answer: %w", err)
			}
			q.Answers = append(q.Answers, a)
			if af.Accepted {
				if _, err := voting.AcceptAnswer(q, a.ID, q.AuthorID); err != nil {
					return err
				}
				if err := saveAcceptance(tx, q); err != nil {
					return err
				}
			}
			stats.Answers++
		}
		return nil
	})
	return stats, err
}

// saveAcceptance persists the accepted flags of q's answers and its pointer.
func saveAcceptance(tx *gorm.DB, q *models.Question) error {
	for i := range q.Answers {
		a := &q.Answers[i]
		if err := tx.Model(a).Update("is_accepted", a.IsAccepted).Error; err != nil {
			return err
		}
	}
	return tx.Model(q).Omit(clause.Associations).Update("accepted_answer_id", q.AcceptedAnswerID).Error
}
