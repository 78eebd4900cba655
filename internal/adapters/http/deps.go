package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/selene/internal/adapters/postgres"
	"github.com/samirrijal/selene/internal/adapters/valkey"
	"github.com/samirrijal/selene/internal/core/ports"
	"github.com/samirrijal/selene/internal/core/usecases"
	"github.com/samirrijal/selene/internal/pkg/assets"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Selection *usecases.SelectionService
	Paths     assets.Paths
	// Source serves row browsing when no Datasets repository is configured.
	Source   ports.DatasetSource
	Datasets ports.DatasetRepository
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}
