package license

import (
	"github.com/keygatehq/keygate/internal/license/repository"
	"github.com/keygatehq/keygate/internal/license/service"
	"go.uber.org/fx"
)

var Module = fx.Module("license.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
