package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// FollowStats is what a profile page shows about the follow graph.
type FollowStats struct {
	Following      bool
	FollowersCount int64
	FollowingCount int64
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// Follow makes userID follow the author named username and returns the
// author. Following yourself or someone already followed changes nothing.
func (s *FollowService) Follow(ctx context.Context, userID uint, username string) (*models.User, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if author.ID == userID {
		return author, nil
	}
	if err := s.followRepo.Create(ctx, userID, author.ID); err != nil {
		return nil, err
	}
	return author, nil
}

// Unfollow removes the edge if it exists.
func (s *FollowService) Unfollow(ctx context.Context, userID uint, username string) (*models.User, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.followRepo.Delete(ctx, userID, author.ID); err != nil {
		return nil, err
	}
	return author, nil
}

// Stats reports the follow counts of author and whether viewerID follows
// them. viewerID 0 is a guest.
func (s *FollowService) Stats(ctx context.Context, viewerID, authorID uint) (*FollowStats, error) {
	stats := &FollowStats{}
	var err error

	if viewerID != 0 {
		if stats.Following, err = s.followRepo.Exists(ctx, viewerID, authorID); err != nil {
			return nil, err
		}
	}
	if stats.FollowersCount, err = s.followRepo.CountFollowers(ctx, authorID); err != nil {
		return nil, err
	}
	if stats.FollowingCount, err = s.followRepo.CountFollowing(ctx, authorID); err != nil {
		return nil, err
	}
	return stats, nil
}
