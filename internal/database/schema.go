package database

import (
	"fmt"

	"gorm.io/gorm"
)

// TableStatus reports whether a model's table exists and how many rows it holds.
type TableStatus struct {
	Table  string
	Exists bool
	Rows   int64
}

// SchemaStatus inspects every persistent model's table.
func SchemaStatus(db *gorm.DB) ([]TableStatus, error) {
	migrator := db.Migrator()
	out := make([]TableStatus, 0, len(PersistentModels()))
	for _, model := range PersistentModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, err
		}
		status := TableStatus{Table: stmt.Schema.Table, Exists: migrator.HasTable(model)}
		if status.Exists {
			if err := db.Model(model).Count(&status.Rows).Error; err != nil {
				return nil, err
			}
		}
		out = append(out, status)
	}
	return out, nil
}

// ClearAll deletes every row of every persistent model, children first.
func ClearAll(db *gorm.DB) error {
	all := PersistentModels()
	return db.Transaction(func(tx *gorm.DB) error {
		for i := len(all) - 1; i >= 0; i-- {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(all[i]).Error; err != nil {
				return fmt.Errorf("clear %T: %w", all[i], err)
			}
		}
		return nil
	})
}

// ResetSequences moves each table's id sequence past its largest id after rows were
// inserted with explicit ids. It is a no-op outside PostgreSQL.
func ResetSequences(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, model := range PersistentModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return err
		}
		table := stmt.Schema.Table
		err := db.Exec(fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', 'id'),
			GREATEST((SELECT COALESCE(MAX(id), 1) FROM %s), 1), true)`, table, table)).Error
		if err != nil {
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}
	return nil
}
