// Package backup dumps the forum database to a JSON document and restores it.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"stackit/internal/database"
	"stackit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 200

// Snapshot is the on-disk backup document.
type Snapshot struct {
	Timestamp   time.Time   `json:"timestamp"`
	Database    string      `json:"database"`
	Collections Collections `json:"collections"`
	Stats       Stats       `json:"stats"`
}

// Collections holds every persisted row.
type Collections struct {
	Users         []UserRecord           `json:"users"`
	Questions     []*models.Question     `json:"questions"`
	Answers       []*models.Answer       `json:"answers"`
	Notifications []*models.Notification `json:"notifications"`
}

// UserRecord carries the password hash that the API representation hides.
type UserRecord struct {
	*models.User
	PasswordHash string `json:"passwordHash"`
}

// Stats counts the rows per collection.
type Stats struct {
	Users         int `json:"users"`
	Questions     int `json:"questions"`
	Answers       int `json:"answers"`
	Notifications int `json:"notifications"`
}

func (c *Collections) stats() Stats {
	return Stats{
		Users:         len(c.Users),
		Questions:     len(c.Questions),
		Answers:       len(c.Answers),
		Notifications: len(c.Notifications),
	}
}

// Dump reads every collection in id order.
func Dump(ctx context.Context, db *gorm.DB, name string) (*Snapshot, error) {
	db = db.WithContext(ctx)
	var (
		users []*models.User
		snap  = &Snapshot{Database: name}
	)
	if err := db.Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("dump users: %w", err)
	}
	if err := db.Order("id").Find(&snap.Collections.Questions).Error; err != nil {
		return nil, fmt.Errorf("dump questions: %w", err)
	}
	if err := db.Order("id").Find(&snap.Collections.Answers).Error; err != nil {
		return nil, fmt.Errorf("dump answers: %w", err)
	}
	if err := db.Order("id").Find(&snap.Collections.Notifications).Error; err != nil {
		return nil, fmt.Errorf("dump notifications: %w", err)
	}

	snap.Collections.Users = make([]UserRecord, 0, len(users))
	for _, u := range users {
		snap.Collections.Users = append(snap.Collections.Users, UserRecord{User: u, PasswordHash: u.Password})
	}
	snap.Timestamp = time.Now().UTC()
	snap.Stats = snap.Collections.stats()
	return snap, nil
}

// Write encodes snap as indented JSON.
func Write(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Read decodes a snapshot written by Write.
func Read(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	return &snap, nil
}

// Restore replaces the database contents with snap in one transaction and returns
// the number of rows written per collection.
func Restore(ctx context.Context, db *gorm.DB, snap *Snapshot) (Stats, error) {
	users := make([]*models.User, 0, len(snap.Collections.Users))
	for _, rec := range snap.Collections.Users {
		if rec.User == nil {
			continue
		}
		u := *rec.User
		u.Password = rec.PasswordHash
		users = append(users, &u)
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.ClearAll(tx); err != nil {
			return err
		}
		if err := insert(tx, users); err != nil {
			return fmt.Errorf("restore users: %w", err)
		}
		for _, q := range snap.Collections.Questions {
			q.Answers = nil
		}
		if err := insert(tx, snap.Collections.Questions); err != nil {
			return fmt.Errorf("restore questions: %w", err)
		}
		if err := insert(tx, snap.Collections.Answers); err != nil {
			return fmt.Errorf("restore answers: %w", err)
		}
		if err := insert(tx, snap.Collections.Notifications); err != nil {
			return fmt.Errorf("restore notifications: %w", err)
		}
		return database.ResetSequences(tx)
	})
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Users:         len(users),
		Questions:     len(snap.Collections.Questions),
		Answers:       len(snap.Collections.Answers),
		Notifications: len(snap.Collections.Notifications),
	}, nil
}

func insert[T any](tx *gorm.DB, rows []*T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).CreateInBatches(rows, batchSize).Error
}
