package temperature

import (
	"github.com/smallbiznis/haccp/internal/temperature/repository"
	"github.com/smallbiznis/haccp/internal/temperature/service"
	"go.uber.org/fx"
)

var Module = fx.Module("temperature.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
