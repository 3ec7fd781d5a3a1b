// Package server contains the HTTP handlers and HTML views of the site.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/featureflags"
	"yatube/internal/middleware"
	"yatube/internal/repository"
	"yatube/internal/service"
	"yatube/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const csrfContextKey = "csrf"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	store          storage.Storage
	pages          cache.PageStore
	sessions       *middleware.SessionManager
	formLimiter    *middleware.FormLimiter
	flags          *featureflags.Flags
	stopTracing    func(context.Context) error

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	groupRepo   repository.GroupRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository

	images         *service.ImageService
	postService    *service.PostService
	commentService *service.CommentService
	followService  *service.FollowService
	groupService   *service.GroupService
	userService    *service.UserService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; the page cache then lives in process memory and
// logout cannot revoke sessions server-side.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.Storage) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("media storage is required")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("yatube"),
		store:          store,
		pages:          cache.NewPageStore(redisClient),
		flags:          featureflags.Parse(cfg.FeatureFlags),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		groupRepo:      repository.NewGroupRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		followRepo:     repository.NewFollowRepository(db),
	}

	s.images = service.NewImageService(store, cfg)
	s.postService = service.NewPostService(s.postRepo, s.groupRepo, s.images, cfg.PostsPerPage)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo)
	s.followService = service.NewFollowService(s.followRepo, s.userRepo)
	s.groupService = service.NewGroupService(s.groupRepo)
	s.userService = service.NewUserService(s.userRepo)
	s.sessions = middleware.NewSessionManager(cfg, redisClient, s.userRepo.GetByID)
	s.formLimiter = middleware.NewFormLimiter(cfg, redisClient)

	return s, nil
}

// NewApp builds the Fiber app with views, middleware and routes.
func (s *Server) NewApp() (*fiber.App, error) {
	engine, err := s.newViews()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               "Yatube",
		Views:                 engine,
		ViewsLayout:           baseLayout,
		BodyLimit:             (s.config.ImageMaxUploadSizeMB + 1) * 1024 * 1024,
		StrictRouting:         false,
		DisableStartupMessage: s.config.IsTest(),
		ErrorHandler:          s.ErrorHandler,
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	app.Use(helmet.New(helmet.Config{
		// Post images may come from an S3 host.
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))
	app.Use(compress.New())

	app.Use(s.sessions.LoadSession())
	app.Use(middleware.StructuredLogger())

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return s.config.IsTest()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	}))

	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrfmiddlewaretoken",
		CookieName:     "csrftoken",
		CookieSameSite: "Lax",
		CookieSecure:   s.config.IsProduction(),
		Expiration:     12 * time.Hour,
		ContextKey:     csrfContextKey,
		Next: func(c *fiber.Ctx) bool {
			return s.config.IsTest()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.WarnContext(c.UserContext(), "csrf check failed", "path", c.Path(), "error", err)
			return s.render(c, fiber.StatusForbidden, "core/403csrf", fiber.Map{"reason": err.Error()})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if s.config.MediaBackend == "" || s.config.MediaBackend == "local" {
		app.Static(s.config.MediaURL, s.config.MediaRoot, fiber.Static{MaxAge: 3600})
	}

	login := middleware.LoginRequired()

	app.Get("/", s.PageCache(), s.Index)
	app.Get("/group/:slug/", s.GroupPosts)
	app.Get("/profile/:username/", s.Profile)
	app.Get("/profile/:username/follow/", login, s.ProfileFollow)
	app.Get("/profile/:username/unfollow/", login, s.ProfileUnfollow)
	app.Get("/posts/:id/", s.PostDetail)
	app.Get("/posts/:id/edit/", login, s.PostEditForm)
	app.Post("/posts/:id/edit/", login, s.PostEdit)
	app.Post("/posts/:id/comment/", login,
		s.formLimiter.Limit("comment", 10, time.Minute), s.AddComment)
	app.Get("/create/", login, s.PostCreateForm)
	app.Post("/create/", login,
		s.formLimiter.Limit("create_post", 10, time.Minute), s.PostCreate)
	app.Get("/follow/", login, s.FollowIndex)

	about := app.Group("/about")
	about.Get("/author/", s.AboutAuthor)
	about.Get("/tech/", s.AboutTech)

	auth := app.Group("/auth")
	auth.Get("/signup/", s.SignupForm)
	auth.Post("/signup/", s.formLimiter.Limit("signup", 5, 10*time.Minute), s.Signup)
	auth.Get("/login/", s.LoginForm)
	auth.Post("/login/", s.formLimiter.Limit("login", 10, 5*time.Minute), s.Login)
	auth.Get("/logout/", s.Logout)
	auth.Get("/password_change/", login, s.PasswordChangeForm)
	auth.Post("/password_change/", login, s.PasswordChange)
	auth.Get("/password_change/done/", login, s.PasswordChangeDone)

	app.Use(s.NotFound)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so
// only the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// SetTracingShutdown registers the tracer provider's shutdown, run between
// the HTTP server and the database on Shutdown.
func (s *Server) SetTracingShutdown(fn func(context.Context) error) {
	s.stopTracing = fn
}

// Start starts the server
func (s *Server) Start() error {
	app, err := s.NewApp()
	if err != nil {
		return err
	}
	s.app = app

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops the HTTP server, flushes traces, then closes the database
// and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.stopTracing != nil {
		if err := s.stopTracing(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
