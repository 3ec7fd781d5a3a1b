package service

import (
	"context"
	"strconv"
	"strings"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/pagination"
	"yatube/internal/repository"
	"yatube/internal/validation"
)

// PostInput is the post form shared by create and edit.
type PostInput struct {
	Text string `form:"text" validate:"nonblank"`
	// Group is the selected group id; empty means no group.
	Group      string `form:"group"`
	ClearImage bool   `form:"clear_image"`
	Image      *ImageUpload
}

type PostService struct {
	postRepo     repository.PostRepository
	groupRepo    repository.GroupRepository
	images       *ImageService
	postsPerPage int
}

func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	images *ImageService,
	postsPerPage int,
) *PostService {
	if postsPerPage <= 0 {
		postsPerPage = pagination.DefaultPerPage
	}
	return &PostService{
		postRepo:     postRepo,
		groupRepo:    groupRepo,
		images:       images,
		postsPerPage: postsPerPage,
	}
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// ListPosts returns one page of posts matching filter, newest first.
func (s *PostService) ListPosts(ctx context.Context, filter repository.PostFilter, rawPage string) (*pagination.Page[*models.Post], error) {
	return pagination.Paginate(ctx, rawPage, s.postsPerPage,
		func(ctx context.Context) (int64, error) {
			return s.postRepo.Count(ctx, filter)
		},
		func(ctx context.Context, offset, limit int) ([]*models.Post, error) {
			return s.postRepo.List(ctx, filter, offset, limit)
		},
	)
}

// SearchPosts is the admin listing: newest first, at most limit rows.
func (s *PostService) SearchPosts(ctx context.Context, filter repository.PostFilter, limit int) ([]*models.Post, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.postRepo.List(ctx, filter, 0, limit)
}

func (s *PostService) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.postRepo.Count(ctx, repository.PostFilter{AuthorID: authorID})
}

func (s *PostService) CreatePost(ctx context.Context, authorID uint, in PostInput) (_ *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "CreatePost")
	defer func() { observability.EndSpan(span, err) }()

	groupID, decoded, err := s.clean(ctx, in)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     strings.TrimSpace(in.Text),
		AuthorID: authorID,
		GroupID:  groupID,
	}
	if decoded != nil {
		if err := s.attachImage(ctx, post, decoded); err != nil {
			return nil, err
		}
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost edits a post on behalf of editorID. Anyone other than the
// author gets a forbidden error and nothing changes.
func (s *PostService) UpdatePost(ctx context.Context, postID, editorID uint, in PostInput) (_ *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "UpdatePost")
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.AuthorizeEdit(ctx, postID, editorID)
	if err != nil {
		return nil, err
	}

	groupID, decoded, err := s.clean(ctx, in)
	if err != nil {
		return nil, err
	}

	post.Text = strings.TrimSpace(in.Text)
	post.GroupID = groupID
	switch {
	case decoded != nil:
		if err := s.attachImage(ctx, post, decoded); err != nil {
			return nil, err
		}
	case in.ClearImage:
		post.Image, post.ImageThumb, post.ImageThumbWebP = "", "", ""
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// AuthorizeEdit loads the post and checks that editorID wrote it.
func (s *PostService) AuthorizeEdit(ctx context.Context, postID, editorID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != editorID {
		return post, models.NewForbiddenError("Only the author can edit this post")
	}
	return post, nil
}

// SetGroup moves a post to the group with slug, or out of any group when
// slug is "-" or empty.
func (s *PostService) SetGroup(ctx context.Context, postID uint, slug string) error {
	slug = strings.TrimSpace(slug)
	if slug == "" || slug == "-" {
		return s.postRepo.SetGroup(ctx, postID, nil)
	}
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return s.postRepo.SetGroup(ctx, postID, &group.ID)
}

func (s *PostService) DeletePost(ctx context.Context, postID uint) error {
	return s.postRepo.Delete(ctx, postID)
}

// clean validates the form, resolves the group and decodes the image. All
// field errors are reported together.
func (s *PostService) clean(ctx context.Context, in PostInput) (*uint, *DecodedImage, error) {
	formErr := newFormError()
	if err := collect(formErr, validation.Struct(in)); err != nil {
		return nil, nil, err
	}

	groupID, err := s.resolveGroup(ctx, in.Group)
	if err != nil {
		if !models.IsValidation(err) {
			return nil, nil, err
		}
		formErr.WithField("group", validation.MsgInvalidChoice)
	}

	var decoded *DecodedImage
	if in.Image != nil {
		decoded, err = s.images.Decode(*in.Image)
		if err != nil {
			if !models.IsValidation(err) {
				return nil, nil, err
			}
			formErr.WithField("image", err.Error())
		}
	}

	if len(formErr.Fields) > 0 {
		return nil, nil, formErr
	}
	return groupID, decoded, nil
}

func (s *PostService) resolveGroup(ctx context.Context, raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, models.NewFieldError("group", validation.MsgInvalidChoice)
	}
	group, err := s.groupRepo.GetByID(ctx, uint(id))
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewFieldError("group", validation.MsgInvalidChoice)
		}
		return nil, err
	}
	return &group.ID, nil
}

func (s *PostService) attachImage(ctx context.Context, post *models.Post, decoded *DecodedImage) error {
	stored, err := s.images.Save(ctx, decoded)
	if err != nil {
		return err
	}
	post.Image = stored.Original
	post.ImageThumb = stored.Thumb
	post.ImageThumbWebP = stored.ThumbWebP
	return nil
}
