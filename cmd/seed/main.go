// Command seed fills the database with fake users, posts, comments and
// follows for development.
package main

import (
	"log"
	"os"

	"yatube/internal/bootstrap"
	"yatube/internal/config"
	"yatube/internal/seed"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "yatube-seed"
	app.Usage = "populate the database with test data"
	app.Flags = []cli.Flag{
		&cli.IntFlag{Name: "users", Value: 20, Usage: "number of users to create"},
		&cli.IntFlag{Name: "posts", Value: 120, Usage: "number of posts to create"},
		&cli.IntFlag{Name: "comments", Value: 200, Usage: "number of comments to create"},
		&cli.IntFlag{Name: "follows", Value: 3, Usage: "authors each user follows"},
		&cli.IntFlag{Name: "days", Value: 90, Usage: "spread publication dates over this many days"},
		&cli.BoolFlag{Name: "clean", Value: true, Usage: "delete users, posts, comments and follows first"},
		&cli.BoolFlag{Name: "dry-run", Usage: "build the data without writing it"},
		&cli.Int64Flag{Name: "rand-seed", Usage: "seed for repeatable data"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return err
	}

	sum, err := seed.Seed(db, seed.Options{
		NumUsers:       c.Int("users"),
		NumPosts:       c.Int("posts"),
		NumComments:    c.Int("comments"),
		FollowsPerUser: c.Int("follows"),
		MaxDays:        c.Int("days"),
		ShouldClean:    c.Bool("clean"),
		DryRun:         c.Bool("dry-run"),
		RandSeed:       c.Int64("rand-seed"),
	})
	if err != nil {
		return err
	}

	log.Printf("✨ All done: %d users, %d groups, %d posts, %d comments, %d follows.",
		sum.Users, sum.Groups, sum.Posts, sum.Comments, sum.Follows)
	log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
	return nil
}
