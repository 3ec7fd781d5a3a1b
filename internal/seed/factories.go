// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"yatube/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every generated user.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by Seed and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rnd  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
	hash   string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	return &Factory{
		db:     db,
		opts:   opts,
		rnd:    rand.New(rand.NewSource(seed)), //nolint:gosec // fake data only
		nextID: 1000,
	}
}

func (f *Factory) passwordHash() string {
	if f.opts.SkipBcrypt {
		return DefaultPassword
	}
	if f.hash == "" {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
		f.hash = string(hashed)
	}
	return f.hash
}

func (f *Factory) fakeID() uint {
	f.nextID++
	return f.nextID
}

// pastTime returns a moment within the last MaxDays days.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rnd.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rnd.Intn(24))*time.Hour +
		time.Duration(f.rnd.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

// CreateUser constructs and persists a sample user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	user := &models.User{
		Username:   fmt.Sprintf("%s_%s%d", strings.ToLower(first), strings.ToLower(last), gofakeit.Number(100, 999)),
		FirstName:  first,
		LastName:   last,
		Email:      gofakeit.Email(),
		Password:   f.passwordHash(),
		DateJoined: f.pastTime(),
	}
	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		user.ID = f.fakeID()
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post by author, optionally in group, without saving
// it. Useful for batching.
func (f *Factory) BuildPost(author *models.User, group *models.Group, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Text:     gofakeit.Paragraph(1, f.rnd.Intn(4)+1, 12, "\n"),
		AuthorID: author.ID,
		PubDate:  f.pastTime(),
	}
	if group != nil {
		post.GroupID = &group.ID
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			p.ID = f.fakeID()
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.CreateInBatches(posts, 100).Error
}

// CreateComment constructs and persists a comment by author on post.
func (f *Factory) CreateComment(author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Text:     gofakeit.Sentence(f.rnd.Intn(10) + 3),
		Created:  post.PubDate.Add(time.Duration(f.rnd.Intn(72)+1) * time.Hour),
	}
	if comment.Created.After(time.Now()) {
		comment.Created = time.Now()
	}
	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		comment.ID = f.fakeID()
		return comment, nil
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateFollow makes user follow author. Existing edges and self-follows are
// skipped.
func (f *Factory) CreateFollow(user, author *models.User) error {
	if user.ID == author.ID || f.opts.DryRun {
		return nil
	}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{UserID: user.ID, AuthorID: author.ID}).Error
}
