package cli

import (
	"log"

	"gorm.io/gorm"

	"chore-board/internal/config"
	"chore-board/internal/repository"
	"chore-board/internal/service"
)

// app holds the wired repositories and services for one command run.
type app struct {
	cfg config.Config
	db  *gorm.DB

	users   *repository.UserRepository
	tasks   *repository.TaskRepository
	types   *repository.TaskTypeRepository
	targets *repository.TargetRepository

	auth      *service.AuthService
	boards    *service.BoardService
	reviews   *service.ReviewService
	reminders *service.ReminderService
	catalogue *service.TaskService
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := repository.NewDB(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return wire(cfg, db), nil
}

func wire(cfg config.Config, db *gorm.DB) *app {
	a := &app{
		cfg:     cfg,
		db:      db,
		users:   repository.NewUserRepository(db),
		tasks:   repository.NewTaskRepository(db),
		types:   repository.NewTaskTypeRepository(db),
		targets: repository.NewTargetRepository(db),
	}
	a.auth = service.NewAuthService(a.users, cfg.SessionTimeout)
	a.boards = service.NewBoardService(a.tasks, a.targets, cfg.WritePolicy)
	a.reviews = service.NewReviewService(a.tasks, a.boards, cfg.ReviewerRole)
	a.reminders = service.NewReminderService(a.boards)
	a.catalogue = service.NewTaskService(a.tasks, a.types, a.targets)
	return a
}

func (a *app) Close() {
	sqlDB, err := a.db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("close db: %v", err)
	}
}
