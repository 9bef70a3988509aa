package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sitecrew/config"
	"sitecrew/connection"
	"sitecrew/logger"
	"sitecrew/scheduler"
)

type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rt := &runtime{}
	root := &cobra.Command{
		Use:           "sitecrew",
		Short:         "Construction project management API",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.LogEnv)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(log)
			gin.SetMode(cfg.HTTPEnv.GinMode)
			rt.cfg, rt.logger = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}
	root.AddCommand(serveCmd(rt), schedulerCmd(rt), migrateCmd(rt), importCmd(rt))
	return root
}

func serveCmd(rt *runtime) *cobra.Command {
	var withScheduler bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := connection.NewApp(cmd.Context(), rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer app.Close()

			if withScheduler {
				s, err := scheduler.New(app.Store, app.Notifier, rt.logger, rt.cfg.SchedulerEnv)
				if err != nil {
					return err
				}
				s.Start()
				defer s.Stop()
			}
			return app.StartServer(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "also run the cron jobs in this process")
	return cmd
}

func schedulerCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Run the cron jobs (due-task reminders, invite purge)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := connection.NewApp(cmd.Context(), rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer app.Close()

			s, err := scheduler.New(app.Store, app.Notifier, rt.logger, rt.cfg.SchedulerEnv)
			if err != nil {
				return err
			}
			s.Start()
			<-cmd.Context().Done()
			s.Stop()
			return nil
		},
	}
}

func migrateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := rt.cfg.DatabaseEnv
			env.AutoMigrate = true
			db, err := connection.DBConnection(env, rt.logger)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}
