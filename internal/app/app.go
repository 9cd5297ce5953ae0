package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/tripdiary/tripadmin/internal/config"
	"github.com/tripdiary/tripadmin/internal/db"
	"github.com/tripdiary/tripadmin/internal/images"
	"github.com/tripdiary/tripadmin/internal/markdown"
	"github.com/tripdiary/tripadmin/internal/repository"
	"github.com/tripdiary/tripadmin/internal/service"
	"github.com/tripdiary/tripadmin/internal/storage"
)

type App struct {
	Cfg                *config.Config
	DB                 *sqlx.DB
	Storage            storage.Storage
	AuthService        *service.AuthService
	UserService        *service.UserService
	PlanService        *service.PlanService
	DiaryService       *service.DiaryService
	CommentService     *service.CommentService
	DestinationService *service.DestinationService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	planRepository := repository.NewPlanRepository(database)
	diaryRepository := repository.NewDiaryRepository(database)
	commentRepository := repository.NewCommentRepository(database)
	destinationRepository := repository.NewDestinationRepository(database)

	// Storage
	imageStorage, err := storage.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	imageManager := images.NewManager(imageStorage, images.NewImagingCompressor(), cfg.ImageMaxWidth, cfg.ImageMaxHeight)

	// Services
	authService := service.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTExpiry)
	userService := service.NewUserService(userRepository, authService)
	planService := service.NewPlanService(planRepository)
	diaryService := service.NewDiaryService(diaryRepository, planRepository)
	commentService := service.NewCommentService(commentRepository, diaryRepository)
	destinationService := service.NewDestinationService(destinationRepository, imageManager, markdown.NewParser())

	return &App{
		Cfg:                cfg,
		DB:                 database,
		Storage:            imageStorage,
		AuthService:        authService,
		UserService:        userService,
		PlanService:        planService,
		DiaryService:       diaryService,
		CommentService:     commentService,
		DestinationService: destinationService,
	}, nil
}

func (a *App) Close() error {
	return db.Close(a.DB)
}
