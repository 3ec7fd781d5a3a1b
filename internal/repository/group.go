package repository

import (
	"context"

	"yatube/internal/models"

	"gorm.io/gorm"
)

// GroupRepository defines persistence operations for groups.
type GroupRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
	List(ctx context.Context) ([]*models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id uint) error
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository returns a new GroupRepository implementation.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, notFoundOr(err, "Group", id)
	}
	return &group, nil
}

func (r *groupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, notFoundOr(err, "Group", slug)
	}
	return &group, nil
}

func (r *groupRepository) List(ctx context.Context) ([]*models.Group, error) {
	var groups []*models.Group
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&groups).Error; err != nil {
		return nil, internal(err)
	}
	return groups, nil
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		if IsUniqueViolation(err) {
			return models.NewFieldError("slug", "Group with this Slug already exists.")
		}
		return internal(err)
	}
	logWrite(ctx, "groups", "create", group.ID)
	return nil
}

func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	if _, err := r.GetByID(ctx, group.ID); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Model(&models.Group{ID: group.ID}).Updates(map[string]interface{}{
		"title":       group.Title,
		"slug":        group.Slug,
		"description": group.Description,
	}).Error
	if err != nil {
		if IsUniqueViolation(err) {
			return models.NewFieldError("slug", "Group with this Slug already exists.")
		}
		return internal(err)
	}

	logWrite(ctx, "groups", "update", group.ID)
	return nil
}

// Delete removes the group; its posts keep existing with group_id NULL.
func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Group{}, id).Error; err != nil {
		return internal(err)
	}
	logWrite(ctx, "groups", "delete", id)
	return nil
}
