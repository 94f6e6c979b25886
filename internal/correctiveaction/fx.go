package correctiveaction

import (
	"github.com/smallbiznis/haccp/internal/correctiveaction/repository"
	"github.com/smallbiznis/haccp/internal/correctiveaction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("correctiveaction.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
