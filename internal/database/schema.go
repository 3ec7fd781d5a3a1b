package database

import (
	"fmt"
	"slices"

	"gorm.io/gorm"
)

// TableStatus describes one schema-managed table.
type TableStatus struct {
	Table   string
	Exists  bool
	Columns []string
}

// Status reports which model tables exist and their columns.
func Status(db *gorm.DB) ([]TableStatus, error) {
	m := db.Migrator()
	out := make([]TableStatus, 0, len(PersistentModels()))
	for _, model := range PersistentModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model: %w", err)
		}
		st := TableStatus{Table: stmt.Schema.Table, Exists: m.HasTable(model)}
		if st.Exists {
			cols, err := m.ColumnTypes(model)
			if err != nil {
				return nil, fmt.Errorf("columns of %s: %w", st.Table, err)
			}
			for _, c := range cols {
				st.Columns = append(st.Columns, c.Name())
			}
		}
		out = append(out, st)
	}
	return out, nil
}

// Reset drops every model table, dependents first, and migrates again.
func Reset(db *gorm.DB) error {
	models := slices.Clone(PersistentModels())
	slices.Reverse(models)
	if err := db.Migrator().DropTable(models...); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return Migrate(db)
}
