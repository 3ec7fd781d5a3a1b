package seed

import (
	_ "embed"
	"fmt"

	"yatube/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInGroup is one entry of groups.yaml.
type BuiltInGroup struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

//go:embed groups.yaml
var groupsYAML []byte

// BuiltInGroups parses the embedded group list.
func BuiltInGroups() ([]BuiltInGroup, error) {
	return parseGroups(groupsYAML)
}

func parseGroups(raw []byte) ([]BuiltInGroup, error) {
	var groups []BuiltInGroup
	if err := yaml.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("parse groups: %w", err)
	}
	for i, g := range groups {
		if g.Slug == "" || g.Title == "" {
			return nil, fmt.Errorf("group %d: title and slug are required", i)
		}
	}
	return groups, nil
}

// Groups inserts the built-in groups. Existing slugs are left alone, so it
// is safe to run on every start.
func Groups(db *gorm.DB) ([]models.Group, error) {
	builtIns, err := BuiltInGroups()
	if err != nil {
		return nil, err
	}

	rows := make([]models.Group, 0, len(builtIns))
	for _, g := range builtIns {
		rows = append(rows, models.Group{Title: g.Title, Slug: g.Slug, Description: g.Description})
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("insert groups: %w", err)
	}

	slugs := make([]string, 0, len(builtIns))
	for _, g := range builtIns {
		slugs = append(slugs, g.Slug)
	}
	var groups []models.Group
	if err := db.Where("slug IN ?", slugs).Order("id").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}
