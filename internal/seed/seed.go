package seed

import (
	"fmt"
	"log"

	"yatube/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	NumComments int
	// FollowsPerUser is how many authors each generated user follows.
	FollowsPerUser int
	MaxDays        int
	ShouldClean    bool
	SkipBcrypt     bool
	DryRun         bool
	// RandSeed makes runs repeatable when non-zero.
	RandSeed int64
}

// Summary counts what a Seed run created.
type Summary struct {
	Users    int
	Groups   int
	Posts    int
	Comments int
	Follows  int
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) (*Summary, error) {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	f := NewFactory(db, opts)
	sum := &Summary{}

	var groups []models.Group
	if !opts.DryRun {
		var err error
		if groups, err = Groups(db); err != nil {
			return nil, fmt.Errorf("failed to create groups: %w", err)
		}
	}
	sum.Groups = len(groups)
	log.Printf("✓ %d groups available", sum.Groups)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	log.Printf("✓ %d users created", sum.Users)
	if len(users) == 0 {
		return sum, nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.rnd.Intn(len(users))]
		var group *models.Group
		// About a third of posts stay outside any group.
		if len(groups) > 0 && f.rnd.Intn(3) > 0 {
			group = &groups[f.rnd.Intn(len(groups))]
		}
		posts = append(posts, f.BuildPost(author, group))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	sum.Posts = len(posts)
	log.Printf("✓ %d posts created", sum.Posts)

	if len(posts) > 0 {
		for i := 0; i < opts.NumComments; i++ {
			post := posts[f.rnd.Intn(len(posts))]
			author := users[f.rnd.Intn(len(users))]
			if _, err := f.CreateComment(author, post); err != nil {
				return nil, fmt.Errorf("failed to create comment: %w", err)
			}
			sum.Comments++
		}
	}
	log.Printf("✓ %d comments created", sum.Comments)

	if !opts.DryRun {
		for _, u := range users {
			for _, idx := range f.rnd.Perm(len(users))[:min(opts.FollowsPerUser, len(users))] {
				author := users[idx]
				if author.ID == u.ID {
					continue
				}
				if err := f.CreateFollow(u, author); err != nil {
					return nil, fmt.Errorf("failed to create follow: %w", err)
				}
				sum.Follows++
			}
		}
	}
	log.Printf("✓ %d follows created", sum.Follows)

	log.Println("🎉 Database seeding completed successfully!")
	return sum, nil
}

// clearData removes everything but the groups, children first so it works
// without cascades.
func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	for _, model := range []any{&models.Comment{}, &models.Follow{}, &models.Post{}, &models.User{}} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
