package material

import (
	"github.com/smallbiznis/haccp/internal/material/repository"
	"github.com/smallbiznis/haccp/internal/material/service"
	"go.uber.org/fx"
)

var Module = fx.Module("material.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
