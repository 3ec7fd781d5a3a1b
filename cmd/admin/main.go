// Command admin manages groups, posts, users and the page cache from the
// command line.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"yatube/internal/bootstrap"
	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/repository"
	"yatube/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

// admin holds what the subcommands act on.
type admin struct {
	out    io.Writer
	pages  cache.PageStore
	groups *service.GroupService
	posts  *service.PostService
	users  *service.UserService
}

func newAdmin(out io.Writer, db *gorm.DB, rdb *redis.Client, postsPerPage int) *admin {
	postRepo := repository.NewPostRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	return &admin{
		out:    out,
		pages:  cache.NewPageStore(rdb),
		groups: service.NewGroupService(groupRepo),
		posts:  service.NewPostService(postRepo, groupRepo, nil, postsPerPage),
		users:  service.NewUserService(repository.NewUserRepository(db)),
	}
}

func (a *admin) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	a := newAdmin(os.Stdout, db, rdb, cfg.PostsPerPage)
	if err := a.app().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func (a *admin) app() *cli.App {
	app := cli.NewApp()
	app.Name = "yatube-admin"
	app.Usage = "manage Yatube content out of band"
	app.Action = cli.ShowAppHelp
	app.Writer = a.out
	app.ExitErrHandler = func(*cli.Context, error) {}
	app.Commands = []*cli.Command{
		{
			Name:     "group",
			Usage:    "Manage groups",
			Category: "Content",
			Subcommands: []*cli.Command{
				{
					Name:      "create",
					Usage:     "Create a group",
					ArgsUsage: "<slug>",
					Flags:     groupFlags(true),
					Action:    a.groupCreate,
				},
				{
					Name:   "list",
					Usage:  "List groups",
					Action: a.groupList,
				},
				{
					Name:      "update",
					Usage:     "Update a group; omitted flags keep their value",
					ArgsUsage: "<slug>",
					Flags:     append(groupFlags(false), &cli.StringFlag{Name: "slug", Usage: "new slug"}),
					Action:    a.groupUpdate,
				},
				{
					Name:      "delete",
					Usage:     "Delete a group; its posts stay without a group",
					ArgsUsage: "<slug>",
					Action:    a.groupDelete,
				},
			},
		},
		{
			Name:     "post",
			Usage:    "Manage posts",
			Category: "Content",
			Subcommands: []*cli.Command{
				{
					Name:  "list",
					Usage: "List posts, newest first",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "search", Usage: "only posts whose text contains `TEXT`"},
						&cli.StringFlag{Name: "author", Usage: "only posts by `USERNAME`"},
						&cli.IntFlag{Name: "limit", Value: 50, Usage: "at most `N` rows"},
					},
					Action: a.postList,
				},
				{
					Name:      "set-group",
					Usage:     "Move a post to a group, or out of any group with -",
					ArgsUsage: "<post_id> <slug|->",
					Action:    a.postSetGroup,
				},
				{
					Name:      "delete",
					Usage:     "Delete a post with its comments",
					ArgsUsage: "<post_id>",
					Action:    a.postDelete,
				},
			},
		},
		{
			Name:     "user",
			Usage:    "Manage users",
			Category: "Accounts",
			Subcommands: []*cli.Command{
				{
					Name:   "list",
					Usage:  "List users",
					Action: a.userList,
				},
				{
					Name:      "delete",
					Usage:     "Delete a user with their posts, comments and follows",
					ArgsUsage: "<username>",
					Action:    a.userDelete,
				},
				{
					Name:      "staff",
					Usage:     "Grant or revoke the staff flag",
					ArgsUsage: "<username> <on|off>",
					Action:    a.userStaff,
				},
			},
		},
		{
			Name:     "cache",
			Usage:    "Manage the page cache",
			Category: "Operations",
			Subcommands: []*cli.Command{
				{
					Name:   "clear",
					Usage:  "Drop every cached page",
					Action: a.cacheClear,
				},
			},
		},
	}
	return app
}

func groupFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Required: required, Usage: "group title"},
		&cli.StringFlag{Name: "description", Required: required, Usage: "group description"},
	}
}

// argAt returns the i-th positional argument or a usage error.
func argAt(c *cli.Context, i int, name string) (string, error) {
	if c.NArg() <= i {
		return "", cli.Exit(fmt.Sprintf("missing %s; usage: %s %s", name, c.Command.FullName(), c.Command.ArgsUsage), 2)
	}
	return c.Args().Get(i), nil
}
