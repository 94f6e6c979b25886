package labtest

import (
	"github.com/smallbiznis/haccp/internal/labtest/service"
	"go.uber.org/fx"
)

var Module = fx.Module("labtest.service",
	fx.Provide(service.New),
)
