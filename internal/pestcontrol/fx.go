package pestcontrol

import (
	"github.com/smallbiznis/haccp/internal/pestcontrol/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pestcontrol.service",
	fx.Provide(service.New),
)
