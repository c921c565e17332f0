package audit

import (
	"github.com/keygatehq/keygate/internal/audit/repository"
	"github.com/keygatehq/keygate/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
