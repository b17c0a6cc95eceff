package app

import (
	"context"

	"log/slog"

	"github.com/aurelab/aurelab-manager/config"
	httpapi "github.com/aurelab/aurelab-manager/internal/api/http"
	"github.com/aurelab/aurelab-manager/internal/apisrv/admin"
	"github.com/aurelab/aurelab-manager/internal/apisrv/auth"
	"github.com/aurelab/aurelab-manager/internal/apisrv/frontend"
	"github.com/aurelab/aurelab-manager/internal/dependency"
	"github.com/aurelab/aurelab-manager/internal/mail"
	"github.com/aurelab/aurelab-manager/internal/ordercleanup"
	"github.com/aurelab/aurelab-manager/internal/store"
)

// App is the main application
type App struct {
	hs      *httpapi.Server
	db      dependency.Repository
	mailer  dependency.Mailer
	cleanup *ordercleanup.Worker
	c       *config.Config
	done    chan struct{}
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// Start connects the store and brings up the workers and the http server.
func (a *App) Start(ctx context.Context) error {
	var err error
	slog.Default().InfoContext(ctx, "starting aurelab manager")

	a.db, err = store.New(ctx, a.c.DB)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't connect to mysql",
			slog.String("err", err.Error()),
		)
		return err
	}

	authS, err := auth.New(&a.c.Auth, a.db.Admin())
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed to create auth server",
			slog.String("err", err.Error()),
		)
		return err
	}
	if err := authS.EnsureRootUser(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "failed to ensure root user",
			slog.String("err", err.Error()),
		)
		return err
	}

	a.mailer, err = mail.New(&a.c.Mailer, a.db.Mail())
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed to create mailer",
			slog.String("err", err.Error()),
		)
		return err
	}
	if err := a.mailer.Start(ctx); err != nil {
		return err
	}

	a.cleanup = ordercleanup.New(&a.c.OrderCleanup, a.db, a.mailer)
	if err := a.cleanup.Start(ctx); err != nil {
		return err
	}

	adminS := admin.New(a.db, a.mailer, authS)
	frontendS := frontend.New(a.db, a.mailer)

	a.hs = httpapi.New(&a.c.HTTP)
	if err := a.hs.Start(ctx, adminS, frontendS, authS); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server",
			slog.String("err", err.Error()),
		)
		return err
	}

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	if a.cleanup != nil {
		if err := a.cleanup.Stop(); err != nil {
			slog.Default().ErrorContext(ctx, "can't stop order cleanup worker",
				slog.String("err", err.Error()),
			)
		}
	}
	if a.mailer != nil {
		if err := a.mailer.Stop(); err != nil {
			slog.Default().ErrorContext(ctx, "can't stop mailer",
				slog.String("err", err.Error()),
			)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	close(a.done)
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() chan struct{} {
	return a.done
}
