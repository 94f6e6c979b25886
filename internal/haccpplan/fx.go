package haccpplan

import (
	"github.com/smallbiznis/haccp/internal/haccpplan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("haccpplan.service",
	fx.Provide(service.New),
)
