package connection

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sitecrew/config"
	"sitecrew/controller"
	"sitecrew/controller/admin"
	"sitecrew/controller/assigned"
	"sitecrew/controller/attachments"
	"sitecrew/controller/auth"
	"sitecrew/controller/checklist"
	"sitecrew/controller/feedback"
	"sitecrew/controller/material"
	"sitecrew/controller/notification"
	"sitecrew/controller/project"
	"sitecrew/controller/schedule"
	"sitecrew/controller/task"
	"sitecrew/controller/timesheet"
	"sitecrew/controller/user"
	"sitecrew/middleware"
	"sitecrew/notify"
	"sitecrew/services"
	"sitecrew/storage"
	"sitecrew/store"
)

// App holds the long-lived connections shared by the server, the scheduler
// and the CLI.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *gorm.DB
	Store    *store.Store
	Firebase *Firebase
	Notifier notify.Notifier

	function *services.FunctionProcedure
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := DBConnection(cfg.DatabaseEnv, logger)
	if err != nil {
		return nil, err
	}
	fb, err := FBConnection(ctx, cfg.FirebaseEnv)
	if err != nil {
		return nil, err
	}
	if fb == nil {
		logger.Info("firebase is not configured, firestore mirror and FCM are disabled")
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Store:    store.New(db, store.NewCache(cfg.CacheEnv.Size, cfg.CacheEnv.TTL)),
		Firebase: fb,
	}
	app.Notifier = app.buildNotifier()

	if cfg.ImportEnv.Mode == "function" {
		app.function, err = services.NewFunctionProcedure(app.Store, cfg.ImportEnv.FunctionName)
		if err != nil {
			return nil, err
		}
	}
	return app, nil
}

func (a *App) Close() {
	if err := a.Firebase.Close(); err != nil {
		a.Logger.Warn("failed to close firestore client", zap.Error(err))
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

// buildNotifier fans out to every configured channel.
func (a *App) buildNotifier() notify.Notifier {
	var channels notify.Multi
	if a.Config.ChatEnv.WebhookURL != "" {
		channels = append(channels, notify.NewChat(a.Config.ChatEnv))
	}
	if a.Firebase != nil {
		channels = append(channels, notify.NewFCM(a.Store, notify.NewFirestoreTokens(a.Firebase.Firestore), a.Firebase.Messaging, a.Logger))
	}
	if a.Config.WebPushEnv.Enabled() {
		channels = append(channels, notify.NewWebPush(a.Config.WebPushEnv, a.Store, a.Logger))
	}
	if len(channels) == 0 {
		a.Logger.Info("no notification channel is configured")
		return notify.Nop{}
	}
	return channels
}

func (a *App) Mirror() services.AssignmentMirror {
	if a.Firebase == nil {
		return services.NopMirror{}
	}
	return services.NewFirestoreMirror(a.Firebase.Firestore)
}

// Importer builds the schedule import workflow; createdBy owns any project
// the import creates.
func (a *App) Importer(createdBy string) *services.ImportService {
	var proc services.ScheduleProcedure = services.NewTxProcedure(a.Store, createdBy)
	if a.function != nil {
		proc = a.function
	}
	return services.NewImportService(proc, a.Store, a.Logger)
}

func (a *App) Deps(ctx context.Context) (*controller.Deps, error) {
	deps := &controller.Deps{
		Config:   a.Config,
		Logger:   a.Logger,
		Store:    a.Store,
		Tokens:   middleware.NewTokens(a.Config.AuthEnv),
		Assign:   services.NewAssignmentService(a.Store, a.Mirror(), a.Notifier, a.Logger),
		Importer: a.Importer,
	}
	if a.Firebase != nil {
		deps.Firestore = a.Firebase.Firestore
	}
	if a.Config.S3Env.Bucket != "" {
		files, err := storage.NewS3Presigner(ctx, a.Config.S3Env)
		if err != nil {
			return nil, err
		}
		deps.Files = files
	}
	return deps, nil
}

func Router(deps *controller.Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(deps.Logger))
	router.Use(cors.New(corsConfig(deps.Config.HTTPEnv)))

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Api is running!"})
	})

	auth.AuthController(router, deps)
	user.UserController(router, deps)
	admin.AdminController(router, deps)

	project.ProjectController(router, deps)
	task.TaskController(router, deps)
	checklist.ChecklistController(router, deps)
	assigned.AssignedController(router, deps)
	attachments.AttachmentsController(router, deps)

	schedule.ScheduleController(router, deps)
	timesheet.TimesheetController(router, deps)
	material.MaterialController(router, deps)

	feedback.FeedbackController(router, deps)
	notification.NotificationController(router, deps)

	return router
}

func corsConfig(env config.HTTPEnv) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	if len(env.CORSOrigins) == 0 || (len(env.CORSOrigins) == 1 && env.CORSOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = env.CORSOrigins
	}
	return cfg
}

// StartServer serves until ctx is cancelled, then drains for up to ten
// seconds.
func (a *App) StartServer(ctx context.Context) error {
	deps, err := a.Deps(ctx)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              a.Config.HTTPEnv.Addr(),
		Handler:           Router(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	a.Logger.Info("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}
