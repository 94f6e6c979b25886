package auth

import (
	"context"

	"github.com/smallbiznis/haccp/internal/auth/domain"
	"github.com/smallbiznis/haccp/internal/auth/repository"
	"github.com/smallbiznis/haccp/internal/auth/service"
	"github.com/smallbiznis/haccp/internal/auth/token"
	"github.com/smallbiznis/haccp/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(token.NewManager),
	fx.Provide(service.New),
	fx.Invoke(registerBootstrapAdmin),
)

func registerBootstrapAdmin(lc fx.Lifecycle, cfg config.Config, svc domain.Service, log *zap.Logger) {
	if !cfg.BootstrapAdmin.Enabled {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			user, err := svc.EnsureBootstrapAdmin(ctx, cfg.BootstrapAdmin.Email, cfg.BootstrapAdmin.Password, cfg.BootstrapAdmin.Name)
			if err != nil {
				return err
			}
			if user != nil {
				log.Info("bootstrap admin created", zap.String("email", user.Email))
			}
			return nil
		},
	})
}
