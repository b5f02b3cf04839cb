//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/spatialcore/internal/core/config"
	"github.com/zeusync/spatialcore/internal/core/world"
)

func InitializeWorld(cfg config.Config) (*world.World, error) {
	wire.Build(WorldSet)
	return nil, nil
}
