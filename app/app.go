package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arulyan/cfauth/config"
	"github.com/arulyan/cfauth/database"
	"github.com/arulyan/cfauth/handlers"
	"github.com/arulyan/cfauth/models"
	"github.com/arulyan/cfauth/server"
	"github.com/arulyan/cfauth/services/auth"
	"github.com/arulyan/cfauth/services/codeforces"
	"github.com/arulyan/cfauth/services/logging"
	"github.com/arulyan/cfauth/services/mail"
	"github.com/arulyan/cfauth/services/verification"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

type App struct {
	fx     *fx.App
	logger *logging.Service
}

// New assembles the full application: config, logging, database (with
// migrations), mail, the Codeforces oracle, the verification and auth
// services, and the HTTP surface.
func New(customConfig *config.Config) *App {
	app := &App{}

	app.fx = fx.New(
		config.NewProvider(customConfig),
		logging.Module,
		fx.Supply(database.WithModels(&models.User{}, &models.UserVerification{})),
		database.Module,
		mail.Module,
		codeforces.Module,
		verification.Module,
		auth.Module,
		server.NewProvider(),
		handlers.Module,
		fx.Populate(&app.logger),
		fx.WithLogger(func(logger *logging.Service) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Logger()}
		}),
	)

	return app
}

func (a *App) Start(ctx context.Context) error {
	return a.fx.Start(ctx)
}

func (a *App) Stop(ctx context.Context) error {
	return a.fx.Stop(ctx)
}

// Run starts the application and blocks until SIGINT/SIGTERM, then shuts
// down gracefully.
func (a *App) Run() {
	if err := a.Start(context.Background()); err != nil {
		log.Fatalf("failed to start application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	a.logger.Info("received shutdown signal, stopping gracefully", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.Stop(ctx); err != nil {
		a.logger.Error("failed to stop application gracefully", zap.Error(err))
	}

	_ = a.logger.Sync()
}
