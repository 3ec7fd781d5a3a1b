package service

import (
	"context"
	"strings"

	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/validation"
)

// GroupInput holds the editable fields of a group.
type GroupInput struct {
	Title       string `form:"title" validate:"nonblank,max=200"`
	Slug        string `form:"slug" validate:"required,max=50,slug"`
	Description string `form:"description" validate:"nonblank"`
}

type GroupService struct {
	groupRepo repository.GroupRepository
}

func NewGroupService(groupRepo repository.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

func (s *GroupService) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return s.groupRepo.GetBySlug(ctx, slug)
}

func (s *GroupService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.groupRepo.List(ctx)
}

func (s *GroupService) CreateGroup(ctx context.Context, in GroupInput) (*models.Group, error) {
	in = in.normalized()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	group := &models.Group{
		Title:       in.Title,
		Slug:        in.Slug,
		Description: in.Description,
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// UpdateGroup replaces the fields of the group currently at slug.
func (s *GroupService) UpdateGroup(ctx context.Context, slug string, in GroupInput) (*models.Group, error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	in = in.normalized()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	group.Title = in.Title
	group.Slug = in.Slug
	group.Description = in.Description
	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup removes a group. Its posts stay, without a group.
func (s *GroupService) DeleteGroup(ctx context.Context, slug string) error {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return s.groupRepo.Delete(ctx, group.ID)
}

func (in GroupInput) normalized() GroupInput {
	return GroupInput{
		Title:       strings.TrimSpace(in.Title),
		Slug:        strings.TrimSpace(in.Slug),
		Description: strings.TrimSpace(in.Description),
	}
}
