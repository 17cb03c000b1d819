// Command transitctl runs maintenance jobs against the project manager
// database: seeding a demo tenant and sending action center digests.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nfredmond/project-manager/initializers"
	service "github.com/nfredmond/project-manager/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "transitctl",
	Short:         "Maintenance commands for the transit project manager",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.AddCommand(seedCmd, digestCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// deps is what every subcommand needs: config, logger and a database.
type deps struct {
	cfg    initializers.Config
	logger *zap.Logger
	db     *gorm.DB
}

func openDeps() (*deps, error) {
	bootstrap, err := initializers.NewLogger("info")
	if err != nil {
		return nil, err
	}
	if err := initializers.LoadEnv(bootstrap, envFile); err != nil {
		return nil, err
	}
	cfg, err := initializers.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := initializers.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	db, err := initializers.ConnectDB(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	if cfg.RunMigrations {
		if err := initializers.Migrate(db, cfg.MigrationsPath, logger); err != nil {
			return nil, err
		}
	}
	return &deps{cfg: cfg, logger: logger, db: db}, nil
}

func (r *deps) agencyService() *service.AgencyService {
	notifier := service.NewEventNotifier(service.NotifierOptions{
		SlackWebhookURL: r.cfg.Notifications.SlackWebhookURL,
		SMTPHost:        r.cfg.Notifications.SMTPHost,
		SMTPPort:        r.cfg.Notifications.SMTPPort,
		SMTPUsername:    r.cfg.Notifications.SMTPUsername,
		SMTPPassword:    r.cfg.Notifications.SMTPPassword,
		FromEmail:       r.cfg.Notifications.FromEmail,
		AlertRecipient:  r.cfg.Notifications.AlertRecipient,
		Timeout:         r.cfg.Notifications.Timeout,
	}, nil, r.logger)
	return service.NewAgencyService(r.db, notifier, nil, r.logger, r.cfg.AppURL)
}

func (r *deps) close() {
	if sqlDB, err := r.db.DB(); err == nil {
		sqlDB.Close()
	}
	r.logger.Sync()
}
