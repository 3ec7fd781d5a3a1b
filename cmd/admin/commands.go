package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/service"

	"github.com/urfave/cli/v2"
)

// emptyValue is printed for a missing group.
const emptyValue = "-пусто-"

// describe turns a validation error into one line per field.
func describe(err error) error {
	appErr, ok := models.AsAppError(err)
	if !ok || len(appErr.Fields) == 0 {
		return err
	}
	lines := make([]string, 0, len(appErr.Fields))
	for _, field := range appErr.FieldNames() {
		lines = append(lines, field+": "+appErr.Fields[field])
	}
	return cli.Exit(strings.Join(lines, "\n"), 1)
}

func (a *admin) groupCreate(c *cli.Context) error {
	slug, err := argAt(c, 0, "slug")
	if err != nil {
		return err
	}
	g, err := a.groups.CreateGroup(c.Context, service.GroupInput{
		Title:       c.String("title"),
		Slug:        slug,
		Description: c.String("description"),
	})
	if err != nil {
		return describe(err)
	}
	a.printf("created group %d %s\n", g.ID, g.Slug)
	return nil
}

func (a *admin) groupList(c *cli.Context) error {
	groups, err := a.groups.ListGroups(c.Context)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSLUG\tTITLE")
	for _, g := range groups {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
	}
	return w.Flush()
}

func (a *admin) groupUpdate(c *cli.Context) error {
	slug, err := argAt(c, 0, "slug")
	if err != nil {
		return err
	}
	current, err := a.groups.GetBySlug(c.Context, slug)
	if err != nil {
		return describe(err)
	}
	in := service.GroupInput{Title: current.Title, Slug: current.Slug, Description: current.Description}
	if c.IsSet("title") {
		in.Title = c.String("title")
	}
	if c.IsSet("slug") {
		in.Slug = c.String("slug")
	}
	if c.IsSet("description") {
		in.Description = c.String("description")
	}

	g, err := a.groups.UpdateGroup(c.Context, slug, in)
	if err != nil {
		return describe(err)
	}
	a.printf("updated group %d %s\n", g.ID, g.Slug)
	return nil
}

func (a *admin) groupDelete(c *cli.Context) error {
	slug, err := argAt(c, 0, "slug")
	if err != nil {
		return err
	}
	if err := a.groups.DeleteGroup(c.Context, slug); err != nil {
		return describe(err)
	}
	a.printf("deleted group %s\n", slug)
	return nil
}

func (a *admin) postList(c *cli.Context) error {
	filter := repository.PostFilter{Search: c.String("search")}
	if name := c.String("author"); name != "" {
		author, err := a.users.GetUserByUsername(c.Context, name)
		if err != nil {
			return describe(err)
		}
		filter.AuthorID = author.ID
	}

	posts, err := a.posts.SearchPosts(c.Context, filter, c.Int("limit"))
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PK\tTEXT\tPUB_DATE\tAUTHOR\tGROUP")
	for _, p := range posts {
		group := emptyValue
		if p.Group != nil {
			group = p.Group.Title
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			p.ID, strings.ReplaceAll(p.String(), "\n", " "), p.PubDate.Format("2006-01-02 15:04"), p.Author.Username, group)
	}
	return w.Flush()
}

func parsePostID(c *cli.Context) (uint, error) {
	raw, err := argAt(c, 0, "post_id")
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, cli.Exit(fmt.Sprintf("invalid post id %q", raw), 2)
	}
	return uint(id), nil
}

func (a *admin) postSetGroup(c *cli.Context) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}
	slug, err := argAt(c, 1, "slug")
	if err != nil {
		return err
	}
	if err := a.posts.SetGroup(c.Context, id, slug); err != nil {
		return describe(err)
	}
	a.printf("post %d group set to %s\n", id, slug)
	return nil
}

func (a *admin) postDelete(c *cli.Context) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}
	if err := a.posts.DeletePost(c.Context, id); err != nil {
		return describe(err)
	}
	a.printf("deleted post %d\n", id)
	return nil
}

func (a *admin) userList(c *cli.Context) error {
	users, err := a.users.ListUsers(c.Context)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tSTAFF\tJOINED")
	for _, u := range users {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\n", u.ID, u.Username, u.FullName(), u.IsStaff, u.DateJoined.Format("2006-01-02"))
	}
	return w.Flush()
}

func (a *admin) userDelete(c *cli.Context) error {
	username, err := argAt(c, 0, "username")
	if err != nil {
		return err
	}
	if err := a.users.DeleteUser(c.Context, username); err != nil {
		return describe(err)
	}
	a.printf("deleted user %s\n", username)
	return nil
}

func (a *admin) userStaff(c *cli.Context) error {
	username, err := argAt(c, 0, "username")
	if err != nil {
		return err
	}
	raw, err := argAt(c, 1, "on|off")
	if err != nil {
		return err
	}
	var staff bool
	switch strings.ToLower(raw) {
	case "on", "true", "yes":
		staff = true
	case "off", "false", "no":
	default:
		return cli.Exit(fmt.Sprintf("expected on or off, got %q", raw), 2)
	}

	u, err := a.users.SetStaff(c.Context, username, staff)
	if err != nil {
		return describe(err)
	}
	a.printf("user %s staff=%t\n", u.Username, u.IsStaff)
	return nil
}

func (a *admin) cacheClear(c *cli.Context) error {
	if err := a.pages.Clear(c.Context); err != nil {
		return err
	}
	a.printf("page cache cleared\n")
	return nil
}
