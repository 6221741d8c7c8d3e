// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/javajoker/fashion-storefront/internal/broker"
	"github.com/javajoker/fashion-storefront/internal/config"
	"github.com/javajoker/fashion-storefront/internal/database"
	"github.com/javajoker/fashion-storefront/internal/i18n"
	"github.com/javajoker/fashion-storefront/internal/models"
	"github.com/javajoker/fashion-storefront/internal/redisclient"
	"github.com/javajoker/fashion-storefront/internal/router"
	"github.com/javajoker/fashion-storefront/internal/services"
	"github.com/javajoker/fashion-storefront/internal/utils"
)

func main() {
	app := &cli.App{
		Name:   "storefront",
		Usage:  "fashion storefront API server",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema",
				Action: migrate,
			},
			{
				Name:  "create-admin",
				Usage: "create an admin account, or promote an existing user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
					&cli.StringFlag{Name: "name", Value: "Administrator"},
				},
				Action: createAdmin,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("Command failed")
	}
}

func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	utils.ConfigureLogger(cfg.Environment, cfg.LogLevel)
	utils.SetBcryptCost(cfg.Security.BcryptCost)
	return cfg, nil
}

func migrate(_ *cli.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		return err
	}
	logrus.Info("Migrations completed")
	return nil
}

func createAdmin(c *cli.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		return err
	}

	user, created, err := services.NewUserService(db).EnsureAdmin(c.Context, services.CreateUserParams{
		Name:     c.String("name"),
		Email:    c.String("email"),
		Password: c.String("password"),
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
		"created": created,
	}).Info("Admin account ready")
	return nil
}

func serve(_ *cli.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		return err
	}

	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		return fmt.Errorf("initialize i18n: %w", err)
	}

	tp, err := utils.InitTracer(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
	if err != nil {
		return err
	}
	if tp != nil {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logrus.WithError(err).Warn("Failed to flush traces")
			}
		}()
	}

	var deps router.Dependencies
	if cfg.Redis.Addr != "" {
		rdb, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logrus.WithError(err).Warn("Redis unavailable, keeping revoked sessions in the database")
		} else {
			defer rdb.Close()
			deps.Revoker = rdb
		}
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		deps.Publisher = producer
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := router.Initialize(db, cfg, deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logrus.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Deliver in-flight order events before the producer is closed.
	if err := r.Close(ctx); err != nil {
		logrus.WithError(err).Warn("Pending order events were not delivered before shutdown")
	}

	logrus.Info("Server exited")
	return nil
}
