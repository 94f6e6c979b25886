package reception

import (
	"github.com/smallbiznis/haccp/internal/reception/repository"
	"github.com/smallbiznis/haccp/internal/reception/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reception.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
