package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/repository"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	getByIDFn  func(context.Context, uint) (*models.Post, error)
	countFn    func(context.Context, repository.PostFilter) (int64, error)
	listFn     func(context.Context, repository.PostFilter, int, int) ([]*models.Post, error)
	createFn   func(context.Context, *models.Post) error
	updateFn   func(context.Context, *models.Post) error
	setGroupFn func(context.Context, uint, *uint) error
	deleteFn   func(context.Context, uint) error
}

func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Count(ctx context.Context, f repository.PostFilter) (int64, error) {
	return s.countFn(ctx, f)
}
func (s *postRepoStub) List(ctx context.Context, f repository.PostFilter, offset, limit int) ([]*models.Post, error) {
	return s.listFn(ctx, f, offset, limit)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) SetGroup(ctx context.Context, postID uint, groupID *uint) error {
	return s.setGroupFn(ctx, postID, groupID)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		countFn: func(_ context.Context, _ repository.PostFilter) (int64, error) { return 0, nil },
		listFn: func(_ context.Context, _ repository.PostFilter, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		createFn:   func(_ context.Context, _ *models.Post) error { return nil },
		updateFn:   func(_ context.Context, _ *models.Post) error { return nil },
		setGroupFn: func(_ context.Context, _ uint, _ *uint) error { return nil },
		deleteFn:   func(_ context.Context, _ uint) error { return nil },
	}
}

// groupRepoStub is a stub for repository.GroupRepository.
type groupRepoStub struct {
	getByIDFn   func(context.Context, uint) (*models.Group, error)
	getBySlugFn func(context.Context, string) (*models.Group, error)
	listFn      func(context.Context) ([]*models.Group, error)
	createFn    func(context.Context, *models.Group) error
	updateFn    func(context.Context, *models.Group) error
	deleteFn    func(context.Context, uint) error
}

func (s *groupRepoStub) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	return s.getByIDFn(ctx, id)
}
func (s *groupRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *groupRepoStub) List(ctx context.Context) ([]*models.Group, error) {
	return s.listFn(ctx)
}
func (s *groupRepoStub) Create(ctx context.Context, g *models.Group) error {
	return s.createFn(ctx, g)
}
func (s *groupRepoStub) Update(ctx context.Context, g *models.Group) error {
	return s.updateFn(ctx, g)
}
func (s *groupRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopGroupRepo() *groupRepoStub {
	return &groupRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Group, error) {
			return &models.Group{ID: id, Slug: "g"}, nil
		},
		getBySlugFn: func(_ context.Context, slug string) (*models.Group, error) {
			return &models.Group{ID: 1, Slug: slug}, nil
		},
		listFn:   func(_ context.Context) ([]*models.Group, error) { return nil, nil },
		createFn: func(_ context.Context, _ *models.Group) error { return nil },
		updateFn: func(_ context.Context, _ *models.Group) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.User, error)
	getByUsernameFn  func(context.Context, string) (*models.User, error)
	createFn         func(context.Context, *models.User) error
	updatePasswordFn func(context.Context, uint, string) error
	setStaffFn       func(context.Context, uint, bool) error
	deleteFn         func(context.Context, uint) error
	listFn           func(context.Context) ([]*models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	return s.createFn(ctx, u)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}
func (s *userRepoStub) SetStaff(ctx context.Context, id uint, staff bool) error {
	return s.setStaffFn(ctx, id, staff)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context) ([]*models.User, error) {
	return s.listFn(ctx)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", username)
		},
		createFn:         func(_ context.Context, _ *models.User) error { return nil },
		updatePasswordFn: func(_ context.Context, _ uint, _ string) error { return nil },
		setStaffFn:       func(_ context.Context, _ uint, _ bool) error { return nil },
		deleteFn:         func(_ context.Context, _ uint) error { return nil },
		listFn:           func(_ context.Context) ([]*models.User, error) { return nil, nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	createFn         func(context.Context, uint, uint) error
	deleteFn         func(context.Context, uint, uint) error
	existsFn         func(context.Context, uint, uint) (bool, error)
	countFollowersFn func(context.Context, uint) (int64, error)
	countFollowingFn func(context.Context, uint) (int64, error)
}

func (s *followRepoStub) Create(ctx context.Context, userID, authorID uint) error {
	return s.createFn(ctx, userID, authorID)
}
func (s *followRepoStub) Delete(ctx context.Context, userID, authorID uint) error {
	return s.deleteFn(ctx, userID, authorID)
}
func (s *followRepoStub) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	return s.existsFn(ctx, userID, authorID)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	return s.countFollowersFn(ctx, authorID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn:         func(_ context.Context, _, _ uint) error { return nil },
		deleteFn:         func(_ context.Context, _, _ uint) error { return nil },
		existsFn:         func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		countFollowersFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countFollowingFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
	}
}
