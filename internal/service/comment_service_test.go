package service

import (
	"context"
	"testing"

	"yatube/internal/models"
	"yatube/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_CreateComment_Validation(t *testing.T) {
	t.Parallel()

	comments := noopCommentRepo()
	comments.createFn = func(context.Context, *models.Comment) error {
		t.Fatal("create must not be called for blank text")
		return nil
	}
	svc := NewCommentService(comments, noopPostRepo())

	_, err := svc.CreateComment(context.Background(), 1, 2, CommentInput{Text: "   "})
	require.Error(t, err)
	appErr, ok := models.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, validation.MsgRequired, appErr.Fields["text"])
}

func TestCommentService_CreateComment_UnknownPost(t *testing.T) {
	t.Parallel()

	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	svc := NewCommentService(noopCommentRepo(), posts)

	_, err := svc.CreateComment(context.Background(), 404, 2, CommentInput{Text: "hello"})
	assert.True(t, models.IsNotFound(err))
}

func TestCommentService_CreateComment_Success(t *testing.T) {
	t.Parallel()

	var created *models.Comment
	comments := noopCommentRepo()
	comments.createFn = func(_ context.Context, c *models.Comment) error {
		created = c
		return nil
	}
	svc := NewCommentService(comments, noopPostRepo())

	comment, err := svc.CreateComment(context.Background(), 5, 2, CommentInput{Text: " nice post "})
	require.NoError(t, err)
	require.Same(t, created, comment)
	assert.Equal(t, uint(5), comment.PostID)
	assert.Equal(t, uint(2), comment.AuthorID)
	assert.Equal(t, "nice post", comment.Text)
}
