package training

import (
	"github.com/smallbiznis/haccp/internal/training/repository"
	"github.com/smallbiznis/haccp/internal/training/service"
	"go.uber.org/fx"
)

var Module = fx.Module("training.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
