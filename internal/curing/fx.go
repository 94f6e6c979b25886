package curing

import (
	"github.com/smallbiznis/haccp/internal/curing/repository"
	"github.com/smallbiznis/haccp/internal/curing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("curing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
