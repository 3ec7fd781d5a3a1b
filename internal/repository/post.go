package repository

import (
	"context"
	"strings"

	"yatube/internal/models"
	"yatube/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows a post listing. Zero values mean "no restriction".
type PostFilter struct {
	GroupID  uint
	AuthorID uint
	// FollowerID keeps posts whose author the given user follows.
	FollowerID uint
	// Search matches post text case-insensitively.
	Search string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
	List(ctx context.Context, filter PostFilter, offset, limit int) ([]*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	SetGroup(ctx context.Context, postID uint, groupID *uint) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) scoped(ctx context.Context, f PostFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if f.GroupID != 0 {
		q = q.Where("posts.group_id = ?", f.GroupID)
	}
	if f.AuthorID != 0 {
		q = q.Where("posts.author_id = ?", f.AuthorID)
	}
	if f.FollowerID != 0 {
		q = q.Where("posts.author_id IN (?)",
			r.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", f.FollowerID))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(posts.text) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	return q
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (_ *models.Post, err error) {
	ctx, span := startSpan(ctx, "posts", "GetByID")
	defer func() { observability.EndSpan(span, err) }()

	var post models.Post
	err = r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	defer observability.TrackQuery("count", "posts")()

	var n int64
	if err := r.scoped(ctx, filter).Count(&n).Error; err != nil {
		return 0, internal(err)
	}
	return n, nil
}

// List returns posts newest first. The id tie-break keeps pages stable when
// two posts share a timestamp.
func (r *postRepository) List(ctx context.Context, filter PostFilter, offset, limit int) (posts []*models.Post, err error) {
	ctx, span := startSpan(ctx, "posts", "List")
	defer func() { observability.EndSpan(span, err) }()

	posts = []*models.Post{}
	err = r.scoped(ctx, filter).
		Preload("Author").
		Preload("Group").
		Order("posts.pub_date DESC").
		Order("posts.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, internal(err)
	}
	return posts, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return internal(err)
	}
	logWrite(ctx, "posts", "create", post.ID)
	return nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(&models.Post{ID: post.ID}).Updates(map[string]interface{}{
		"text":             post.Text,
		"group_id":         post.GroupID,
		"image":            post.Image,
		"image_thumb":      post.ImageThumb,
		"image_thumb_webp": post.ImageThumbWebP,
	})
	if res.Error != nil {
		return internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	logWrite(ctx, "posts", "update", post.ID)
	return nil
}

func (r *postRepository) SetGroup(ctx context.Context, postID uint, groupID *uint) error {
	res := r.db.WithContext(ctx).Model(&models.Post{ID: postID}).Update("group_id", groupID)
	if res.Error != nil {
		return internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	logWrite(ctx, "posts", "set_group", postID)
	return nil
}

// Delete removes the post and, by cascade, its comments.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	logWrite(ctx, "posts", "delete", id)
	return nil
}
