package cleaning

import (
	"github.com/smallbiznis/haccp/internal/cleaning/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cleaning.service",
	fx.Provide(service.New),
)
