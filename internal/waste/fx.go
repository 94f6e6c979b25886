package waste

import (
	"github.com/smallbiznis/haccp/internal/waste/service"
	"go.uber.org/fx"
)

var Module = fx.Module("waste.service",
	fx.Provide(service.New),
)
