package server

import (
	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/internal/repository"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

func listing(page *pagination.Page[*models.Post], data fiber.Map) fiber.Map {
	data["page_obj"] = page
	data["page_range"] = page.ElidedRange()
	return data
}

// Index renders the newest posts of the whole site.
func (s *Server) Index(c *fiber.Ctx) error {
	page, err := s.postService.ListPosts(c.UserContext(), repository.PostFilter{}, c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "posts/index", listing(page, fiber.Map{
		"title": "Main page for project Yatube",
	}))
}

// GroupPosts renders the posts of one group.
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	group, err := s.groupService.GetBySlug(ctx, c.Params("slug"))
	if err != nil {
		return err
	}
	page, err := s.postService.ListPosts(ctx, repository.PostFilter{GroupID: group.ID}, c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "posts/group_list", listing(page, fiber.Map{
		"group": group,
	}))
}

// Profile renders an author's posts and follow counters.
func (s *Server) Profile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	author, err := s.userService.GetUserByUsername(ctx, c.Params("username"))
	if err != nil {
		return err
	}
	page, err := s.postService.ListPosts(ctx, repository.PostFilter{AuthorID: author.ID}, c.Query("page"))
	if err != nil {
		return err
	}
	stats, err := s.followService.Stats(ctx, viewerID(c), author.ID)
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "posts/profile", listing(page, fiber.Map{
		"author":          author,
		"posts_count":     page.Count,
		"following":       stats.Following,
		"followers_count": stats.FollowersCount,
		"following_count": stats.FollowingCount,
	}))
}

// PostDetail renders a post with its comments and the comment form.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return s.renderPostDetail(c, id)
}

func (s *Server) renderPostDetail(c *fiber.Ctx, id uint) error {
	ctx := c.UserContext()
	post, err := s.postService.GetPost(ctx, id)
	if err != nil {
		return err
	}
	postsCount, err := s.postService.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return err
	}
	comments, err := s.commentService.ListComments(ctx, post.ID)
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "posts/post_detail", fiber.Map{
		"post":        post,
		"posts_count": postsCount,
		"comments":    comments,
		"form":        service.CommentInput{},
	})
}

// PostCreateForm shows an empty post form.
func (s *Server) PostCreateForm(c *fiber.Ctx) error {
	return s.renderPostForm(c, fiber.StatusOK, service.PostInput{}, nil, nil)
}

// PostCreate saves a new post and sends the author to their profile.
func (s *Server) PostCreate(c *fiber.Ctx) error {
	in, err := postInput(c)
	if err != nil {
		return err
	}
	user := currentUser(c)
	if _, err := s.postService.CreatePost(c.UserContext(), user.ID, in); err != nil {
		errs, ok := formErrors(err)
		if !ok {
			return err
		}
		return s.renderPostForm(c, fiber.StatusOK, in, nil, errs)
	}
	return c.Redirect(profileURL(user.Username), fiber.StatusFound)
}

// PostEditForm shows the post form filled with the post. Anyone but the
// author is sent to the post page.
func (s *Server) PostEditForm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	post, err := s.postService.AuthorizeEdit(c.UserContext(), id, currentUser(c).ID)
	if err != nil {
		if models.HasCode(err, models.CodeForbidden) {
			return c.Redirect(postURL(id), fiber.StatusFound)
		}
		return err
	}
	in := service.PostInput{Text: post.Text}
	if post.GroupID != nil {
		in.Group = uintString(*post.GroupID)
	}
	return s.renderPostForm(c, fiber.StatusOK, in, post, nil)
}

// PostEdit saves changes to a post.
func (s *Server) PostEdit(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	in, err := postInput(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	if _, err := s.postService.UpdatePost(ctx, id, currentUser(c).ID, in); err != nil {
		if models.HasCode(err, models.CodeForbidden) {
			return c.Redirect(postURL(id), fiber.StatusFound)
		}
		errs, ok := formErrors(err)
		if !ok {
			return err
		}
		post, gerr := s.postService.GetPost(ctx, id)
		if gerr != nil {
			return gerr
		}
		return s.renderPostForm(c, fiber.StatusOK, in, post, errs)
	}
	return c.Redirect(postURL(id), fiber.StatusFound)
}

// renderPostForm renders create_post. post is nil when creating.
func (s *Server) renderPostForm(c *fiber.Ctx, status int, in service.PostInput, post *models.Post, errs map[string]string) error {
	groups, err := s.groupService.ListGroups(c.UserContext())
	if err != nil {
		return err
	}
	data := fiber.Map{
		"form":    in,
		"errors":  errs,
		"groups":  groups,
		"is_edit": post != nil,
	}
	if post != nil {
		data["required_post"] = post
	}
	return s.render(c, status, "posts/create_post", data)
}

func postInput(c *fiber.Ctx) (service.PostInput, error) {
	image, err := readImage(c)
	if err != nil {
		return service.PostInput{}, err
	}
	return service.PostInput{
		Text:       c.FormValue("text"),
		Group:      c.FormValue("group"),
		ClearImage: c.FormValue("clear_image") != "",
		Image:      image,
	}, nil
}

// AddComment stores a comment and always returns to the post. Blank
// comments are dropped.
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	in := service.CommentInput{Text: c.FormValue("text")}
	if _, err := s.commentService.CreateComment(c.UserContext(), id, currentUser(c).ID, in); err != nil {
		if _, ok := formErrors(err); !ok {
			return err
		}
	}
	return c.Redirect(postURL(id), fiber.StatusFound)
}

// FollowIndex renders posts by the authors the user follows.
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	filter := repository.PostFilter{FollowerID: currentUser(c).ID}
	page, err := s.postService.ListPosts(c.UserContext(), filter, c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "posts/follow", listing(page, fiber.Map{
		"title": "Page to follow author",
	}))
}

// ProfileFollow subscribes the user to an author.
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	author, err := s.followService.Follow(c.UserContext(), currentUser(c).ID, c.Params("username"))
	if err != nil {
		return err
	}
	return c.Redirect(profileURL(author.Username), fiber.StatusFound)
}

// ProfileUnfollow drops the subscription, if any.
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	author, err := s.followService.Unfollow(c.UserContext(), currentUser(c).ID, c.Params("username"))
	if err != nil {
		return err
	}
	return c.Redirect(profileURL(author.Username), fiber.StatusFound)
}
